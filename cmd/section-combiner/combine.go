// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/section-combiner/internal/corpus"
	"github.com/pdiddy/section-combiner/internal/ledger"
	"github.com/pdiddy/section-combiner/internal/report"
	"github.com/pdiddy/section-combiner/pkg/types"
)

// --- audit subcommand ---

var auditCmd = &cobra.Command{
	Use:   "audit [root]",
	Short: "List mergeable text/code section pairs without changing anything",
	Long: `Audit scans every JSON document under the root and reports each text
section that is immediately followed by a code or code-tabs section with the
same title, with a short preview of both. No file is written.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runCorpus(cmd, args, types.ModeAudit)
	},
}

// --- merge subcommand ---

var mergeCmd = &cobra.Command{
	Use:   "merge [root]",
	Short: "Merge text/code section pairs and rewrite the documents",
	Long: `Merge replaces each text section followed by a code or code-tabs section
with the same title by one section. The text becomes the description of the
code section; all other fields are kept. Only documents that changed are
rewritten. Use --dry-run to see what would change.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runCorpus(cmd, args, types.ModeMerge)
	},
}

func runCorpus(cmd *cobra.Command, args []string, mode types.Mode) error {
	cfg := loadConfig(args, mode)

	runner, err := corpus.NewRunner(cfg.Combine)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	out := cmd.OutOrStdout()
	summary, err := runner.Run(ctx, out)
	if err != nil {
		return err
	}
	if summary.RootMissing {
		return nil
	}

	if cfg.Combine.ReportPath != "" {
		if err := report.WriteFile(cfg.Combine.ReportPath, report.Build(summary)); err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "warning: report write failed: %v\n", err)
		} else {
			fmt.Fprintf(out, "\nReport written to %s\n", cfg.Combine.ReportPath)
		}
	}

	recordRun(ctx, cfg.Ledger, summary, cmd.ErrOrStderr())
	return nil
}

// recordRun stores the run in the ledger when one is configured. Ledger
// failures are reported but do not fail the run.
func recordRun(ctx context.Context, cfg types.LedgerConfig, summary *corpus.Summary, w io.Writer) {
	store, err := ledger.Open(cfg)
	if errors.Is(err, ledger.ErrDisabled) {
		return
	}
	if err != nil {
		fmt.Fprintf(w, "warning: ledger unavailable: %v\n", err)
		return
	}
	defer store.Close()

	id, err := store.Record(ctx, summary)
	if err != nil {
		fmt.Fprintf(w, "warning: recording run failed: %v\n", err)
		return
	}
	fmt.Fprintf(w, "Recorded run %s\n", id)
}

// --- shared helpers ---

func loadConfig(args []string, mode types.Mode) types.Config {
	root := viper.GetString("combine.root")
	if len(args) > 0 {
		root = args[0]
	}

	cfg := types.Config{
		Combine: types.CombineConfig{
			Root:          root,
			Mode:          mode,
			Extension:     viper.GetString("combine.extension"),
			Ignore:        viper.GetStringSlice("combine.ignore"),
			Workers:       viper.GetInt("combine.workers"),
			MaxErrors:     viper.GetInt("combine.max_errors"),
			ReportPath:    viper.GetString("combine.report_path"),
			PreviewLength: viper.GetInt("combine.preview_length"),
		},
		Ledger: types.LedgerConfig{
			Path: viper.GetString("ledger.path"),
		},
	}
	if mode == types.ModeMerge {
		cfg.Combine.DryRun = viper.GetBool("combine.dry_run")
	}
	return cfg
}

func init() {
	auditCmd.Flags().Int("preview", 100, "characters of content shown per side of a match")
	mergeCmd.Flags().Bool("dry-run", false, "report merges without writing any file")

	mustBind(viper.BindPFlag("combine.preview_length", auditCmd.Flags().Lookup("preview")))
	mustBind(viper.BindPFlag("combine.dry_run", mergeCmd.Flags().Lookup("dry-run")))

	rootCmd.AddCommand(auditCmd)
	rootCmd.AddCommand(mergeCmd)
}
