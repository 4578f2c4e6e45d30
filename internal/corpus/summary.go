// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package corpus

import (
	"fmt"
	"io"
	"time"

	"github.com/pdiddy/section-combiner/pkg/types"
)

// DefaultMaxErrors is how many document errors Print lists by default.
const DefaultMaxErrors = 10

// Summary aggregates the outcome of a corpus run.
type Summary struct {
	Mode   types.Mode
	Root   string
	DryRun bool

	// RootMissing is set when the root directory did not exist.
	RootMissing bool

	Documents int
	Modified  int
	Merges    int

	// FilesWithMatches and Matches are filled in audit mode.
	FilesWithMatches int
	Matches          int

	Errors  []*DocumentError
	Results []FileResult

	StartedAt  time.Time
	FinishedAt time.Time
}

// HasErrors reports whether any document failed.
func (s *Summary) HasErrors() bool {
	return len(s.Errors) > 0
}

func (s *Summary) add(res FileResult) {
	s.Documents++
	s.Results = append(s.Results, res)
	if res.Err != nil {
		s.Errors = append(s.Errors, res.Err)
		return
	}
	if res.Modified {
		s.Modified++
		s.Merges += res.Merges
	}
	if len(res.Matches) > 0 {
		s.FilesWithMatches++
		s.Matches += len(res.Matches)
	}
}

// Print writes the end-of-run summary. At most maxErrors errors are listed;
// maxErrors <= 0 selects DefaultMaxErrors.
func (s *Summary) Print(w io.Writer, maxErrors int) {
	if maxErrors <= 0 {
		maxErrors = DefaultMaxErrors
	}

	fmt.Fprintf(w, "\nSummary:\n")
	switch s.Mode {
	case types.ModeAudit:
		fmt.Fprintf(w, "  Files scanned: %d\n", s.Documents)
		fmt.Fprintf(w, "  Files with matches: %d\n", s.FilesWithMatches)
		fmt.Fprintf(w, "  Total matches: %d\n", s.Matches)
	default:
		if s.DryRun {
			fmt.Fprintf(w, "  Files that would be modified: %d\n", s.Modified)
			fmt.Fprintf(w, "  Total pairs that would be combined: %d\n", s.Merges)
		} else {
			fmt.Fprintf(w, "  Files modified: %d\n", s.Modified)
			fmt.Fprintf(w, "  Total pairs combined: %d\n", s.Merges)
		}
	}

	if len(s.Errors) == 0 {
		return
	}
	fmt.Fprintf(w, "\nErrors (%d):\n", len(s.Errors))
	for i, e := range s.Errors {
		if i == maxErrors {
			break
		}
		fmt.Fprintf(w, "  %s: %s error: %v\n", DisplayPath(e.Path), e.Kind, e.Err)
	}
	if len(s.Errors) > maxErrors {
		fmt.Fprintf(w, "  ... and %d more errors\n", len(s.Errors)-maxErrors)
	}
}
