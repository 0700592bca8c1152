package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound indicates the input file does not exist.
	ErrNotFound = errors.New("file not found")

	// ErrUnsupportedFormat indicates a file extension with no extractor.
	ErrUnsupportedFormat = errors.New("unsupported file format")

	// ErrEmptyContent indicates extraction produced no chunks.
	ErrEmptyContent = errors.New("document has no content after processing")

	// ErrDecode indicates none of the configured text encodings could decode the file.
	ErrDecode = errors.New("unable to decode file with supported encodings")

	// ErrRetrieval indicates the chunks and query could not be vectorised.
	ErrRetrieval = errors.New("retrieval failed")

	// ErrGeneration indicates the text generation call failed.
	ErrGeneration = errors.New("generation failed")

	// ErrNoDocument indicates an operation that needs a loaded document was called without one.
	ErrNoDocument = errors.New("no document loaded")

	// ErrNothingToReview is returned by a review request before any chunk has been read.
	ErrNothingToReview = errors.New("nothing has been read yet")
)

// GenerationError wraps a failed generation call and keeps the underlying cause.
type GenerationError struct {
	Kind      RequestKind
	Retryable bool
	Err       error
}

func (e *GenerationError) Error() string {
	if e.Retryable {
		return fmt.Sprintf("%s generation failed (retryable): %v", e.Kind, e.Err)
	}
	return fmt.Sprintf("%s generation failed: %v", e.Kind, e.Err)
}

func (e *GenerationError) Unwrap() error { return e.Err }

// Is reports ErrGeneration as a match so callers can test with errors.Is.
func (e *GenerationError) Is(target error) bool { return target == ErrGeneration }
