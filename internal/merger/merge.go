// Package merger adds the keys of a source JSON object that are missing from a
// target object. Added keys get an empty-string value; existing target keys are
// never overwritten or removed.
package merger

import (
	"path/filepath"
	"strings"

	"keymerger/internal/jsonobj"
)

// DefaultSuffix is appended to the target's file stem to name the output.
const DefaultSuffix = "_integrated"

// MissingKeys returns the keys of source absent from target, in source order.
func MissingKeys(source, target *jsonobj.Object) []string {
	var missing []string
	for _, k := range source.Keys() {
		if !target.Has(k) {
			missing = append(missing, k)
		}
	}
	return missing
}

// Merge returns a copy of target with every key of source that target lacks set to "".
// The count of added keys is returned alongside. target itself is not modified.
func Merge(source, target *jsonobj.Object) (*jsonobj.Object, int, error) {
	if source == nil {
		return nil, 0, &InvalidStructureError{Document: "source", Detail: "found null"}
	}
	if target == nil {
		return nil, 0, &InvalidStructureError{Document: "target", Detail: "found null"}
	}

	merged := target.Clone()
	added := MissingKeys(source, target)
	for _, k := range added {
		merged.Set(k, "")
	}
	return merged, len(added), nil
}

// MergeValues is Merge for decoded documents of unknown shape.
func MergeValues(source, target any) (*jsonobj.Object, int, error) {
	src, ok := source.(*jsonobj.Object)
	if !ok {
		return nil, 0, &InvalidStructureError{Document: "source", Detail: "found " + jsonobj.TypeName(source)}
	}
	tgt, ok := target.(*jsonobj.Object)
	if !ok {
		return nil, 0, &InvalidStructureError{Document: "target", Detail: "found " + jsonobj.TypeName(target)}
	}
	return Merge(src, tgt)
}

// OutputPath names the merged document: same directory as targetPath, file stem
// plus suffix, ".json" extension.
func OutputPath(targetPath, suffix string) string {
	dir := filepath.Dir(targetPath)
	base := filepath.Base(targetPath)

	stem := strings.TrimSuffix(base, filepath.Ext(base))
	if stem == "" {
		// ".env" has no stem
		stem = base
	}
	return filepath.Join(dir, stem+suffix+".json")
}
