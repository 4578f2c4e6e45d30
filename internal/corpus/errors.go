// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package corpus

import (
	"errors"
	"fmt"
)

// ErrRootNotFound is returned when the corpus root does not exist.
var ErrRootNotFound = errors.New("data directory not found")

// ErrorKind classifies a per-document failure.
type ErrorKind string

const (
	// KindRead means the file could not be read.
	KindRead ErrorKind = "read"
	// KindParse means the file is not valid JSON.
	KindParse ErrorKind = "parse"
	// KindWrite means a merge was computed but could not be persisted.
	KindWrite ErrorKind = "write"
)

// DocumentError records why one document could not be processed.
type DocumentError struct {
	Path string
	Kind ErrorKind
	Err  error
}

func (e *DocumentError) Error() string {
	return fmt.Sprintf("%s: %s error: %v", e.Path, e.Kind, e.Err)
}

func (e *DocumentError) Unwrap() error {
	return e.Err
}
