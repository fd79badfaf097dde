package integrator

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v2"
)

// PatchOp is one RFC 6902 operation turning the target into the merged document.
type PatchOp struct {
	Op    string `json:"op" yaml:"op"`
	Path  string `json:"path" yaml:"path"`
	Value any    `json:"value" yaml:"value"`
}

// Report describes a completed run.
type Report struct {
	RunID      string    `json:"runId" yaml:"runId"`
	Source     string    `json:"source" yaml:"source"`
	Target     string    `json:"target" yaml:"target"`
	Output     string    `json:"output" yaml:"output"`
	AddedKeys  []string  `json:"addedKeys" yaml:"addedKeys"`
	AddedCount int       `json:"addedCount" yaml:"addedCount"`
	DryRun     bool      `json:"dryRun" yaml:"dryRun"`
	Written    bool      `json:"written" yaml:"written"`
	Patch      []PatchOp `json:"patch" yaml:"patch"`
}

// Report output formats.
const (
	FormatText = "text"
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// Render writes r to w in the given format.
func (r *Report) Render(w io.Writer, format string) error {
	switch strings.ToLower(format) {
	case "", FormatText:
		return r.renderText(w)
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		enc.SetEscapeHTML(false)
		return enc.Encode(r)
	case FormatYAML:
		data, err := yaml.Marshal(r)
		if err != nil {
			return err
		}
		_, err = w.Write(data)
		return err
	default:
		return fmt.Errorf("unsupported report format %q (expected text, json or yaml)", format)
	}
}

func (r *Report) renderText(w io.Writer) error {
	var b strings.Builder
	if r.DryRun {
		b.WriteString("Dry run complete (nothing written)\n\n")
	} else {
		b.WriteString("Operation complete\n\n")
	}
	fmt.Fprintf(&b, "Keys added: %d\n", r.AddedCount)
	for _, k := range r.AddedKeys {
		fmt.Fprintf(&b, "  + %s\n", k)
	}
	if r.DryRun {
		fmt.Fprintf(&b, "Would save: %s\n", r.Output)
	} else {
		fmt.Fprintf(&b, "Saved path: %s\n", r.Output)
	}

	_, err := io.WriteString(w, b.String())
	return err
}
