package integrator

import (
	"context"
	"fmt"
	"log/slog"

	"keymerger/internal/jsonobj"
	"keymerger/internal/merger"
	"keymerger/internal/storage"
	"keymerger/internal/validation"

	"github.com/google/uuid"
	"github.com/wI2L/jsondiff"
)

// DefaultIndent is the number of spaces per nesting level in written documents.
const DefaultIndent = 4

// Options controls how merged documents are named and formatted.
type Options struct {
	Suffix string
	Indent int
}

// Service merges documents from a DocumentStore and writes the results back.
type Service struct {
	store     storage.DocumentStore
	validator validation.StructureValidator
	opts      Options
	logger    *slog.Logger
}

// NewService creates a new Service with the given dependencies.
func NewService(store storage.DocumentStore, v validation.StructureValidator, opts Options, logger *slog.Logger) *Service {
	if opts.Suffix == "" {
		opts.Suffix = merger.DefaultSuffix
	}
	if opts.Indent <= 0 {
		opts.Indent = DefaultIndent
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		store:     store,
		validator: v,
		opts:      opts,
		logger:    logger,
	}
}

// Request names the documents for one run.
type Request struct {
	Source string
	Target string
	DryRun bool
}

// Result is the in-memory outcome of merging two documents.
type Result struct {
	Merged    []byte
	AddedKeys []string
	Patch     []PatchOp
}

// AddedCount returns the number of keys added to the target.
func (r *Result) AddedCount() int {
	return len(r.AddedKeys)
}

// MergeDocuments parses, validates and merges two raw documents and encodes the result.
// Both documents are parsed before either is checked for structure, so a syntax error
// in either one wins over a non-object in the other.
func (s *Service) MergeDocuments(sourceData, targetData []byte) (*Result, error) {
	sourceValue, err := parse("source", sourceData)
	if err != nil {
		return nil, err
	}
	targetValue, err := parse("target", targetData)
	if err != nil {
		return nil, err
	}

	source, err := s.object("source", sourceData, sourceValue)
	if err != nil {
		return nil, err
	}
	target, err := s.object("target", targetData, targetValue)
	if err != nil {
		return nil, err
	}

	merged, _, err := merger.Merge(source, target)
	if err != nil {
		return nil, err
	}

	encoded, err := jsonobj.Encode(merged, s.opts.Indent)
	if err != nil {
		return nil, fmt.Errorf("failed to encode merged document: %w", err)
	}

	patch, err := jsondiff.CompareJSON(targetData, encoded)
	if err != nil {
		return nil, fmt.Errorf("failed to compute patch: %w", err)
	}

	return &Result{
		Merged:    encoded,
		AddedKeys: merger.MissingKeys(source, target),
		Patch:     patchOps(patch),
	}, nil
}

func parse(name string, data []byte) (any, error) {
	v, err := jsonobj.Decode(data)
	if err != nil {
		return nil, &merger.ParseError{Document: name, Err: err}
	}
	return v, nil
}

func (s *Service) object(name string, data []byte, v any) (*jsonobj.Object, error) {
	if s.validator != nil {
		if err := s.validator.Validate(data); err != nil {
			return nil, &merger.InvalidStructureError{Document: name, Detail: err.Error()}
		}
	}

	obj, ok := v.(*jsonobj.Object)
	if !ok {
		return nil, &merger.InvalidStructureError{Document: name, Detail: "found " + jsonobj.TypeName(v)}
	}
	return obj, nil
}

// Run merges req.Source into req.Target and, unless req.DryRun is set, writes the
// result next to the target. Nothing is written when any step before it fails.
func (s *Service) Run(ctx context.Context, req Request) (*Report, error) {
	var missing []string
	if req.Source == "" {
		missing = append(missing, "source")
	}
	if req.Target == "" {
		missing = append(missing, "target")
	}
	if len(missing) > 0 {
		return nil, &merger.MissingInputError{Fields: missing}
	}

	runID := uuid.NewString()
	log := s.logger.With("run_id", runID, "source", req.Source, "target", req.Target)
	log.Debug("Starting merge", "dry_run", req.DryRun)

	sourceData, err := s.store.ReadDocument(ctx, req.Source)
	if err != nil {
		return nil, s.fail(log, &merger.IOError{Op: "read", Path: req.Source, Err: err})
	}
	targetData, err := s.store.ReadDocument(ctx, req.Target)
	if err != nil {
		return nil, s.fail(log, &merger.IOError{Op: "read", Path: req.Target, Err: err})
	}

	result, err := s.MergeDocuments(sourceData, targetData)
	if err != nil {
		return nil, s.fail(log, err)
	}

	report := &Report{
		RunID:      runID,
		Source:     req.Source,
		Target:     req.Target,
		Output:     merger.OutputPath(req.Target, s.opts.Suffix),
		AddedKeys:  result.AddedKeys,
		AddedCount: result.AddedCount(),
		DryRun:     req.DryRun,
		Patch:      result.Patch,
	}
	if report.AddedKeys == nil {
		report.AddedKeys = []string{}
	}

	if req.DryRun {
		log.Info("Dry run complete", "added", report.AddedCount, "output", report.Output)
		return report, nil
	}

	if err := s.store.WriteDocument(ctx, report.Output, result.Merged); err != nil {
		return nil, s.fail(log, &merger.IOError{Op: "write", Path: report.Output, Err: err})
	}
	report.Written = true

	log.Info("Merge complete", "added", report.AddedCount, "output", report.Output)
	return report, nil
}

func (s *Service) fail(log *slog.Logger, err error) error {
	log.Error("Merge failed", "kind", merger.Kind(err), "error", err)
	return err
}

func patchOps(p jsondiff.Patch) []PatchOp {
	ops := make([]PatchOp, 0, len(p))
	for _, op := range p {
		ops = append(ops, PatchOp{
			Op:    op.Type,
			Path:  string(op.Path),
			Value: op.Value,
		})
	}
	return ops
}
