package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"keymerger/internal/integrator"
	"keymerger/internal/merger"
	"keymerger/internal/storage"

	"github.com/danielgtaylor/huma/v2"
)

// MergeHandlers handles merge-related API requests.
type MergeHandlers struct {
	service *integrator.Service
}

// NewMergeHandlers registers merge handlers with the API.
func NewMergeHandlers(api huma.API, svc *integrator.Service) {
	h := &MergeHandlers{
		service: svc,
	}

	huma.Register(api, huma.Operation{
		OperationID: "merge-documents",
		Method:      http.MethodPost,
		Path:        "/api/v1/merge",
		Summary:     "Merge two JSON objects",
		Description: "Adds every key of the source object that the target lacks, with an empty-string value, and returns the result.",
		Tags:        []string{"Merge"},
	}, h.MergeDocuments)

	huma.Register(api, huma.Operation{
		OperationID: "create-integration",
		Method:      http.MethodPost,
		Path:        "/api/v1/integrations",
		Summary:     "Merge stored documents",
		Description: "Merges the source document into the target document from the configured store and writes <target>_integrated.json next to the target.",
		Tags:        []string{"Merge"},
	}, h.CreateIntegration)
}

type MergeDocumentsInput struct {
	Body struct {
		Source json.RawMessage `json:"source,omitempty" doc:"The object supplying candidate keys"`
		Target json.RawMessage `json:"target,omitempty" doc:"The object being augmented"`
	}
}

type MergeDocumentsOutput struct {
	Body struct {
		Merged     json.RawMessage      `json:"merged" doc:"The target object with missing keys added"`
		AddedCount int                  `json:"addedCount" doc:"The number of keys added"`
		AddedKeys  []string             `json:"addedKeys" doc:"The keys added, in source order"`
		Patch      []integrator.PatchOp `json:"patch" doc:"RFC 6902 operations turning the target into the merged object"`
	}
}

type CreateIntegrationInput struct {
	Body struct {
		Source string `json:"source,omitempty" doc:"Reference of the source document"`
		Target string `json:"target,omitempty" doc:"Reference of the target document"`
		DryRun bool   `json:"dryRun,omitempty" doc:"Report the changes without writing the output"`
	}
}

type CreateIntegrationOutput struct {
	Body *integrator.Report
}

// MergeDocuments merges two inline JSON objects.
func (h *MergeHandlers) MergeDocuments(ctx context.Context, input *MergeDocumentsInput) (*MergeDocumentsOutput, error) {
	var missing []string
	if len(input.Body.Source) == 0 {
		missing = append(missing, "source")
	}
	if len(input.Body.Target) == 0 {
		missing = append(missing, "target")
	}
	if len(missing) > 0 {
		return nil, toHTTPError(&merger.MissingInputError{Fields: missing})
	}

	result, err := h.service.MergeDocuments(input.Body.Source, input.Body.Target)
	if err != nil {
		slog.Warn("MergeDocuments: merge failed", "kind", merger.Kind(err), "error", err)
		return nil, toHTTPError(err)
	}

	resp := &MergeDocumentsOutput{}
	resp.Body.Merged = result.Merged
	resp.Body.AddedCount = result.AddedCount()
	resp.Body.AddedKeys = result.AddedKeys
	if resp.Body.AddedKeys == nil {
		resp.Body.AddedKeys = []string{}
	}
	resp.Body.Patch = result.Patch
	return resp, nil
}

// CreateIntegration merges two documents held by the configured store.
func (h *MergeHandlers) CreateIntegration(ctx context.Context, input *CreateIntegrationInput) (*CreateIntegrationOutput, error) {
	report, err := h.service.Run(ctx, integrator.Request{
		Source: input.Body.Source,
		Target: input.Body.Target,
		DryRun: input.Body.DryRun,
	})
	if err != nil {
		return nil, toHTTPError(err)
	}
	return &CreateIntegrationOutput{Body: report}, nil
}

func toHTTPError(err error) error {
	switch merger.Kind(err) {
	case "MissingInput", "ParseError":
		return huma.Error400BadRequest(err.Error())
	case "InvalidStructure":
		return huma.Error422UnprocessableEntity(err.Error())
	case "IOError":
		if errors.Is(err, storage.ErrDocumentNotFound) {
			return huma.Error404NotFound(err.Error())
		}
		if errors.Is(err, storage.ErrInvalidRef) {
			return huma.Error400BadRequest(err.Error())
		}
		return huma.Error500InternalServerError(err.Error())
	default:
		return huma.Error500InternalServerError(err.Error())
	}
}
