// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package ledger

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"go.yaml.in/yaml/v3"
)

// ExportYAML writes up to limit runs, with their document rows, to path.
func (s *Store) ExportYAML(ctx context.Context, path string, limit int) error {
	runs, err := s.exportRuns(ctx, limit)
	if err != nil {
		return err
	}
	data, err := yaml.Marshal(runs)
	if err != nil {
		return fmt.Errorf("marshaling YAML: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// ExportJSON writes up to limit runs, with their document rows, to path.
func (s *Store) ExportJSON(ctx context.Context, path string, limit int) error {
	runs, err := s.exportRuns(ctx, limit)
	if err != nil {
		return err
	}
	data, err := json.MarshalIndent(runs, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling JSON: %w", err)
	}
	return os.WriteFile(path, append(data, '\n'), 0o644)
}

func (s *Store) exportRuns(ctx context.Context, limit int) ([]Run, error) {
	runs, err := s.Runs(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("querying for export: %w", err)
	}
	for i := range runs {
		runs[i].Entries, err = s.Documents(ctx, runs[i].ID)
		if err != nil {
			return nil, err
		}
	}
	if runs == nil {
		runs = []Run{}
	}
	return runs, nil
}
