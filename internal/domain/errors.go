package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrHistoryUnavailable means the shell history file is missing or unreadable.
	// Callers treat it as an empty history.
	ErrHistoryUnavailable = errors.New("shell history unavailable")

	// ErrEmbeddingFailed aborts a memory insert; nothing is written.
	ErrEmbeddingFailed = errors.New("embedding failed")

	// ErrStoreCorrupt means the on-disk memory store cannot be read.
	ErrStoreCorrupt = errors.New("memory store corrupt")

	// ErrMetadataUnavailable is matched by every *MetadataUnavailableError.
	ErrMetadataUnavailable = errors.New("metadata unavailable")

	// ErrNoCommand is returned when the model produced no usable command.
	ErrNoCommand = errors.New("unable to generate a command")
)

// MetadataUnavailableError reports that a single metadata group failed.
type MetadataUnavailableError struct {
	Kind MetadataKind
	Err  error
}

func (e *MetadataUnavailableError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s metadata unavailable", e.Kind)
	}
	return fmt.Sprintf("%s metadata unavailable: %v", e.Kind, e.Err)
}

func (e *MetadataUnavailableError) Unwrap() error {
	return e.Err
}

// Is lets errors.Is(err, ErrMetadataUnavailable) match any group failure.
func (e *MetadataUnavailableError) Is(target error) bool {
	return target == ErrMetadataUnavailable
}

// MetadataUnavailable builds a group failure for kind.
func MetadataUnavailable(kind MetadataKind, err error) *MetadataUnavailableError {
	return &MetadataUnavailableError{Kind: kind, Err: err}
}
