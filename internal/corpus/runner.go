// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package corpus runs the section merger or matcher over every JSON document
// under a root directory. Each document is read, processed and (in merge
// mode) rewritten on its own, so a failing document never stops the batch.
package corpus

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/pdiddy/section-combiner/internal/sections"
	"github.com/pdiddy/section-combiner/pkg/types"
)

// DefaultRoot is the corpus root used when none is configured.
const DefaultRoot = "data/frc"

// Runner processes a corpus according to a CombineConfig.
type Runner struct {
	cfg types.CombineConfig
}

// NewRunner returns a Runner with defaults filled in for unset fields.
func NewRunner(cfg types.CombineConfig) (*Runner, error) {
	if cfg.Root == "" {
		cfg.Root = DefaultRoot
	}
	if cfg.Mode == "" {
		cfg.Mode = types.ModeMerge
	}
	if !cfg.Mode.Valid() {
		return nil, fmt.Errorf("unsupported mode %q: use audit or merge", cfg.Mode)
	}
	if cfg.Extension == "" {
		cfg.Extension = DefaultExtension
	}
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	if cfg.PreviewLength <= 0 {
		cfg.PreviewLength = sections.DefaultPreviewLength
	}
	if cfg.MaxErrors <= 0 {
		cfg.MaxErrors = DefaultMaxErrors
	}
	return &Runner{cfg: cfg}, nil
}

// Config returns the effective configuration.
func (r *Runner) Config() types.CombineConfig {
	return r.cfg
}

// Run discovers the documents under the root and processes each one,
// writing a line to w for every document that changed (merge) or has
// matches (audit), followed by the summary.
//
// A missing root or an empty corpus is reported on w and is not an error.
// The returned error is non-nil only when the root cannot be read or ctx is
// cancelled; the summary then covers the documents finished so far.
func (r *Runner) Run(ctx context.Context, w io.Writer) (*Summary, error) {
	summary := &Summary{
		Mode:      r.cfg.Mode,
		Root:      r.cfg.Root,
		DryRun:    r.cfg.DryRun,
		StartedAt: time.Now().UTC(),
	}
	defer func() { summary.FinishedAt = time.Now().UTC() }()

	paths, err := Discover(r.cfg.Root, r.cfg.Extension, r.cfg.Ignore)
	if err != nil {
		if errors.Is(err, ErrRootNotFound) {
			fmt.Fprintf(w, "Data directory not found: %s\n", r.cfg.Root)
			summary.RootMissing = true
			return summary, nil
		}
		return summary, err
	}

	switch r.cfg.Mode {
	case types.ModeAudit:
		fmt.Fprintf(w, "Searching %d files in %s...\n\n", len(paths), r.cfg.Root)
	default:
		fmt.Fprintf(w, "Found %d JSON files to process...\n\n", len(paths))
	}
	if len(paths) == 0 {
		fmt.Fprintln(w, "No JSON files found. Exiting.")
		return summary, nil
	}

	results := make([]FileResult, len(paths))
	done := make([]bool, len(paths))
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.cfg.Workers)

	for i, path := range paths {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if gctx.Err() != nil {
				return nil
			}
			res := r.process(path)

			mu.Lock()
			defer mu.Unlock()
			results[i] = res
			done[i] = true
			r.announce(w, res)
			return nil
		})
	}
	// Workers never return errors; per-document failures live in results.
	_ = g.Wait()

	for i, res := range results {
		if done[i] {
			summary.add(res)
		}
	}

	summary.Print(w, r.cfg.MaxErrors)

	if err := ctx.Err(); err != nil {
		return summary, err
	}
	return summary, nil
}

func (r *Runner) process(path string) FileResult {
	if r.cfg.Mode == types.ModeAudit {
		return AuditFile(path, r.cfg.PreviewLength)
	}
	return MergeFile(path, r.cfg.DryRun)
}

// announce writes the streaming progress line for one finished document.
func (r *Runner) announce(w io.Writer, res FileResult) {
	if res.Err != nil {
		return
	}
	rel := DisplayPath(res.Path)

	switch r.cfg.Mode {
	case types.ModeAudit:
		if len(res.Matches) == 0 {
			return
		}
		fmt.Fprintf(w, "%s:\n", rel)
		for _, m := range res.Matches {
			fmt.Fprintf(w, "  - Index %d: '%s' (%s)\n", m.Index, m.Title, m.Kind)
		}
		fmt.Fprintln(w)
	default:
		if !res.Modified {
			return
		}
		if r.cfg.DryRun {
			fmt.Fprintf(w, "✓ %s - Would combine %d pair(s)\n", rel, res.Merges)
			return
		}
		fmt.Fprintf(w, "✓ %s - Combined %d pair(s)\n", rel, res.Merges)
	}
}

// DisplayPath returns path relative to the working directory when possible.
func DisplayPath(path string) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		return path
	}
	wd, err := os.Getwd()
	if err != nil {
		return path
	}
	rel, err := filepath.Rel(wd, abs)
	if err != nil {
		return path
	}
	return rel
}
