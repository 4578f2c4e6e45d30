// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// Mode selects what a corpus run does with each document.
type Mode string

const (
	// ModeAudit reports mergeable section pairs without writing.
	ModeAudit Mode = "audit"
	// ModeMerge merges section pairs and rewrites modified documents.
	ModeMerge Mode = "merge"
)

// Valid reports whether m is a known mode.
func (m Mode) Valid() bool {
	return m == ModeAudit || m == ModeMerge
}

// CombineConfig holds settings for a corpus run.
type CombineConfig struct {
	// Root is the directory searched recursively for documents (default "data/frc").
	Root string `json:"root" yaml:"root"`

	// Mode is audit or merge.
	Mode Mode `json:"mode" yaml:"mode"`

	// Extension selects document files by suffix (default ".json").
	Extension string `json:"extension" yaml:"extension"`

	// Ignore lists directory names that are not entered during discovery.
	Ignore []string `json:"ignore,omitempty" yaml:"ignore,omitempty"`

	// Workers is the number of documents processed at once (default 1).
	Workers int `json:"workers" yaml:"workers"`

	// DryRun computes merges without writing any file.
	DryRun bool `json:"dry_run" yaml:"dry_run"`

	// PreviewLength is the number of characters shown per side of an audit match (default 100).
	PreviewLength int `json:"preview_length" yaml:"preview_length"`

	// MaxErrors caps how many document errors the summary lists (default 10).
	MaxErrors int `json:"max_errors" yaml:"max_errors"`

	// ReportPath, when set, receives a report of the run (.yaml, .json or text).
	ReportPath string `json:"report_path,omitempty" yaml:"report_path,omitempty"`
}

// LedgerConfig holds settings for the run history database.
type LedgerConfig struct {
	// Path is the SQLite database file. Empty disables recording.
	Path string `json:"path" yaml:"path"`
}

// Config groups all settings read from the config file, environment and flags.
type Config struct {
	Combine CombineConfig `json:"combine" yaml:"combine"`
	Ledger  LedgerConfig  `json:"ledger" yaml:"ledger"`
}
