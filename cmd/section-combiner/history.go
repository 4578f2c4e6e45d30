// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/section-combiner/internal/ledger"
	"github.com/pdiddy/section-combiner/pkg/types"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recorded audit and merge runs",
	Long: `History reads the run ledger configured with --ledger (or ledger.path in
the config file) and lists past runs, newest first. Use the show and export
subcommands for per-document detail.`,
	RunE: runHistoryList,
}

func runHistoryList(cmd *cobra.Command, args []string) error {
	store, err := openLedger()
	if err != nil {
		return err
	}
	defer store.Close()

	limit, _ := cmd.Flags().GetInt("limit")
	runs, err := store.Runs(cmd.Context(), limit)
	if err != nil {
		return err
	}

	jsonOutput, _ := cmd.Flags().GetBool("json")
	return formatRuns(cmd.OutOrStdout(), runs, jsonOutput)
}

func formatRuns(w io.Writer, runs []ledger.Run, jsonOutput bool) error {
	if jsonOutput {
		if runs == nil {
			runs = []ledger.Run{}
		}
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(runs)
	}

	if len(runs) == 0 {
		fmt.Fprintln(w, "No runs recorded.")
		return nil
	}

	fmt.Fprintf(w, "%-36s  %-5s  %-20s  %-9s  %-8s  %-7s  %s\n",
		"ID", "Mode", "Started", "Documents", "Modified", "Pairs", "Errors")
	fmt.Fprintln(w, strings.Repeat("-", 106))

	for _, r := range runs {
		mode := r.Mode
		if r.DryRun {
			mode += "*"
		}
		pairs := r.Merges
		if r.Mode == string(types.ModeAudit) {
			pairs = r.Matches
		}
		fmt.Fprintf(w, "%-36s  %-5s  %-20s  %-9d  %-8d  %-7d  %d\n",
			r.ID, mode, r.StartedAt.Format("2006-01-02 15:04:05"),
			r.Documents, r.Modified, pairs, r.Errors)
	}
	fmt.Fprintf(w, "\n%d runs (* = dry run)\n", len(runs))
	return nil
}

var historyShowCmd = &cobra.Command{
	Use:   "show <run-id>",
	Short: "Show the documents recorded for one run",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openLedger()
		if err != nil {
			return err
		}
		defer store.Close()

		run, err := store.Get(cmd.Context(), args[0])
		if err != nil {
			return err
		}

		w := cmd.OutOrStdout()
		fmt.Fprintf(w, "Run %s (%s of %s)\n", run.ID, run.Mode, run.Root)
		fmt.Fprintf(w, "  Started:   %s\n", run.StartedAt.Format("2006-01-02 15:04:05"))
		fmt.Fprintf(w, "  Documents: %d, modified: %d, merges: %d, matches: %d, errors: %d\n\n",
			run.Documents, run.Modified, run.Merges, run.Matches, run.Errors)
		for _, d := range run.Entries {
			switch {
			case d.ErrorKind != "":
				fmt.Fprintf(w, "  ✗ %s: %s error: %s\n", d.Path, d.ErrorKind, d.Error)
			case d.Merges > 0:
				fmt.Fprintf(w, "  ✓ %s - Combined %d pair(s)\n", d.Path, d.Merges)
			default:
				fmt.Fprintf(w, "  - %s - %d match(es)\n", d.Path, d.Matches)
			}
		}
		return nil
	},
}

var historyExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export recorded runs to YAML or JSON",
	RunE: func(cmd *cobra.Command, args []string) error {
		format, _ := cmd.Flags().GetString("format")
		out, _ := cmd.Flags().GetString("out")
		limit, _ := cmd.Flags().GetInt("limit")

		store, err := openLedger()
		if err != nil {
			return err
		}
		defer store.Close()

		switch format {
		case "yaml", "":
			if out == "" {
				out = "history.yaml"
			}
			err = store.ExportYAML(cmd.Context(), out, limit)
		case "json":
			if out == "" {
				out = "history.json"
			}
			err = store.ExportJSON(cmd.Context(), out, limit)
		default:
			return fmt.Errorf("unsupported format %q: use yaml or json", format)
		}
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Exported to %s\n", out)
		return nil
	},
}

func openLedger() (*ledger.Store, error) {
	return ledger.Open(types.LedgerConfig{Path: viper.GetString("ledger.path")})
}

func init() {
	historyCmd.Flags().Int("limit", 20, "maximum number of runs listed")
	historyCmd.Flags().Bool("json", false, "output runs as JSON")

	historyExportCmd.Flags().String("format", "yaml", "export format: yaml or json")
	historyExportCmd.Flags().String("out", "", "output file (default history.yaml or history.json)")
	historyExportCmd.Flags().Int("limit", 1000, "maximum number of runs exported")

	historyCmd.AddCommand(historyShowCmd)
	historyCmd.AddCommand(historyExportCmd)

	rootCmd.AddCommand(historyCmd)
}
