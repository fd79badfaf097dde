package storage

import (
	"context"
	"errors"
)

// ErrDocumentNotFound is returned when a referenced document does not exist.
var ErrDocumentNotFound = errors.New("document not found")

// ErrInvalidRef is returned when a reference cannot be used by the store, such as a
// path that leaves the file store's base directory.
var ErrInvalidRef = errors.New("invalid document reference")

// DocumentStore reads and writes raw JSON documents by reference.
// For the file store a reference is a path; for MongoDB it is the document _id.
type DocumentStore interface {
	ReadDocument(ctx context.Context, ref string) ([]byte, error)
	WriteDocument(ctx context.Context, ref string, data []byte) error
	Close(ctx context.Context) error
}
