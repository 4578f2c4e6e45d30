// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package corpus

import (
	"errors"

	"github.com/pdiddy/section-combiner/internal/sections"
)

// FileResult is the outcome of processing one document.
type FileResult struct {
	// Path is the document path as discovered.
	Path string

	// Modified is true when the merge changed the section list. In dry-run
	// mode the file is still left untouched.
	Modified bool

	// Merges is the number of pairs merged (merge mode).
	Merges int

	// Matches lists the eligible pairs (audit mode).
	Matches []sections.Match

	// Err is set when the document could not be processed.
	Err *DocumentError
}

// MergeFile merges eligible section pairs in the document at path and
// rewrites it when anything changed. With dryRun the merge is computed and
// counted but the file is not written.
func MergeFile(path string, dryRun bool) FileResult {
	res := FileResult{Path: path}

	doc, err := LoadDocument(path)
	if err != nil {
		res.Err = asDocumentError(path, KindRead, err)
		return res
	}

	count, _ := sections.MergeDocument(doc)
	if count == 0 {
		return res
	}

	if !dryRun {
		if err := WriteDocument(path, doc); err != nil {
			res.Err = asDocumentError(path, KindWrite, err)
			return res
		}
	}
	res.Modified = true
	res.Merges = count
	return res
}

// AuditFile reports the eligible pairs in the document at path without
// changing it.
func AuditFile(path string, previewLen int) FileResult {
	res := FileResult{Path: path}

	doc, err := LoadDocument(path)
	if err != nil {
		res.Err = asDocumentError(path, KindRead, err)
		return res
	}
	res.Matches = sections.FindDocumentMatches(doc, previewLen)
	return res
}

func asDocumentError(path string, kind ErrorKind, err error) *DocumentError {
	var de *DocumentError
	if errors.As(err, &de) {
		return de
	}
	return &DocumentError{Path: path, Kind: kind, Err: err}
}
