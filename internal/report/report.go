// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package report writes the outcome of a corpus run to a file, as YAML,
// JSON or the plain-text console summary depending on the file extension.
package report

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/section-combiner/internal/corpus"
	"github.com/pdiddy/section-combiner/internal/sections"
)

// Report is the serializable form of a corpus run.
type Report struct {
	Mode       string    `json:"mode" yaml:"mode"`
	Root       string    `json:"root" yaml:"root"`
	DryRun     bool      `json:"dry_run" yaml:"dry_run"`
	StartedAt  time.Time `json:"started_at" yaml:"started_at"`
	FinishedAt time.Time `json:"finished_at" yaml:"finished_at"`
	Totals     Totals    `json:"totals" yaml:"totals"`
	Documents  []Entry   `json:"documents" yaml:"documents"`

	summary *corpus.Summary
}

// Totals holds the run counters.
type Totals struct {
	Documents int `json:"documents" yaml:"documents"`
	Modified  int `json:"modified" yaml:"modified"`
	Merges    int `json:"merges" yaml:"merges"`
	Matches   int `json:"matches" yaml:"matches"`
	Errors    int `json:"errors" yaml:"errors"`
}

// Entry describes one document that changed, matched or failed. Documents
// with nothing to report are left out.
type Entry struct {
	Path      string           `json:"path" yaml:"path"`
	Merges    int              `json:"merges,omitempty" yaml:"merges,omitempty"`
	Matches   []sections.Match `json:"matches,omitempty" yaml:"matches,omitempty"`
	ErrorKind string           `json:"error_kind,omitempty" yaml:"error_kind,omitempty"`
	Error     string           `json:"error,omitempty" yaml:"error,omitempty"`
}

// Build converts a run summary into a Report.
func Build(s *corpus.Summary) *Report {
	r := &Report{
		Mode:       string(s.Mode),
		Root:       s.Root,
		DryRun:     s.DryRun,
		StartedAt:  s.StartedAt,
		FinishedAt: s.FinishedAt,
		Totals: Totals{
			Documents: s.Documents,
			Modified:  s.Modified,
			Merges:    s.Merges,
			Matches:   s.Matches,
			Errors:    len(s.Errors),
		},
		Documents: []Entry{},
		summary:   s,
	}

	for _, res := range s.Results {
		e := Entry{Path: corpus.DisplayPath(res.Path)}
		switch {
		case res.Err != nil:
			e.ErrorKind = string(res.Err.Kind)
			e.Error = res.Err.Err.Error()
		case res.Modified:
			e.Merges = res.Merges
		case len(res.Matches) > 0:
			e.Matches = res.Matches
		default:
			continue
		}
		r.Documents = append(r.Documents, e)
	}
	return r
}

// WriteFile writes r to path. ".yaml" and ".yml" produce YAML, ".json"
// produces indented JSON, and any other extension the text summary with
// every error listed.
func WriteFile(path string, r *Report) error {
	var (
		data []byte
		err  error
	)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		data, err = yaml.Marshal(r)
		if err != nil {
			return fmt.Errorf("marshaling YAML: %w", err)
		}
	case ".json":
		data, err = json.MarshalIndent(r, "", "  ")
		if err != nil {
			return fmt.Errorf("marshaling JSON: %w", err)
		}
		data = append(data, '\n')
	default:
		data = r.text()
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating report directory: %w", err)
		}
	}
	return os.WriteFile(path, data, 0o644)
}

func (r *Report) text() []byte {
	var b bytes.Buffer
	fmt.Fprintf(&b, "%s run of %s at %s\n\n", r.Mode, r.Root, r.StartedAt.Format(time.RFC3339))
	for _, e := range r.Documents {
		switch {
		case e.Error != "":
			continue
		case e.Merges > 0 && r.DryRun:
			fmt.Fprintf(&b, "✓ %s - Would combine %d pair(s)\n", e.Path, e.Merges)
		case e.Merges > 0:
			fmt.Fprintf(&b, "✓ %s - Combined %d pair(s)\n", e.Path, e.Merges)
		default:
			fmt.Fprintf(&b, "%s:\n", e.Path)
			for _, m := range e.Matches {
				fmt.Fprintf(&b, "  - Index %d: '%s'\n", m.Index, m.Title)
			}
		}
	}
	if r.summary != nil {
		r.summary.Print(&b, len(r.summary.Errors))
	}
	return b.Bytes()
}
