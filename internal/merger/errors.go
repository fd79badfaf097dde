package merger

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for programmatic checks via errors.Is().
var (
	// ErrMissingInput indicates a source or target path was not supplied.
	ErrMissingInput = errors.New("missing input")

	// ErrParse indicates a document is not well-formed JSON.
	ErrParse = errors.New("parse error")

	// ErrInvalidStructure indicates a document's top level is not a JSON object.
	ErrInvalidStructure = errors.New("invalid structure")

	// ErrIO indicates a document could not be read or written.
	ErrIO = errors.New("io error")
)

// MissingInputError lists the inputs that were not supplied.
type MissingInputError struct {
	Fields []string
}

func (e *MissingInputError) Error() string {
	if len(e.Fields) == 0 {
		return ErrMissingInput.Error()
	}
	return fmt.Sprintf("%s: %s required", ErrMissingInput.Error(), strings.Join(e.Fields, " and "))
}

func (e *MissingInputError) Is(target error) bool { return target == ErrMissingInput }

// ParseError wraps a decoder failure for one document.
type ParseError struct {
	Document string // "source", "target" or a path
	Err      error
}

func (e *ParseError) Error() string {
	if e.Document == "" {
		return fmt.Sprintf("%s: %v", ErrParse.Error(), e.Err)
	}
	return fmt.Sprintf("%s: %s: %v", ErrParse.Error(), e.Document, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

func (e *ParseError) Is(target error) bool { return target == ErrParse }

// InvalidStructureError reports a document whose top level is not an object.
type InvalidStructureError struct {
	Document string
	Detail   string
}

func (e *InvalidStructureError) Error() string {
	msg := "top-level structure of JSON must be an object"
	if e.Detail != "" {
		msg += " (" + e.Detail + ")"
	}
	if e.Document == "" {
		return fmt.Sprintf("%s: %s", ErrInvalidStructure.Error(), msg)
	}
	return fmt.Sprintf("%s: %s: %s", ErrInvalidStructure.Error(), e.Document, msg)
}

func (e *InvalidStructureError) Is(target error) bool { return target == ErrInvalidStructure }

// IOError wraps a storage failure.
type IOError struct {
	Op   string // "read" or "write"
	Path string
	Err  error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("%s: %s %s: %v", ErrIO.Error(), e.Op, e.Path, e.Err)
}

func (e *IOError) Unwrap() error { return e.Err }

func (e *IOError) Is(target error) bool { return target == ErrIO }

// Kind names the failure kind of err, or "" when err is not part of the taxonomy.
func Kind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrMissingInput):
		return "MissingInput"
	case errors.Is(err, ErrParse):
		return "ParseError"
	case errors.Is(err, ErrInvalidStructure):
		return "InvalidStructure"
	case errors.Is(err, ErrIO):
		return "IOError"
	default:
		return ""
	}
}
