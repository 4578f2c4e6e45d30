// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the section-combiner CLI.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// version is set at build time via ldflags.
var version = "dev"

// rootCmd is the base command for the section-combiner CLI.
var rootCmd = &cobra.Command{
	Use:   "section-combiner",
	Short: "Merge split text and code sections in JSON documents",
	Long: `section-combiner normalizes a corpus of JSON documents whose "sections"
array contains a text section immediately followed by a code or code-tabs
section with the same title. Such pairs are merged into one section that keeps
the text as its description.

Use audit to list the pairs without changing anything, and merge to rewrite
the documents. Runs can be recorded in a SQLite ledger and inspected with
history.`,
	SilenceUsage: true,
}

func init() {
	cobra.OnInitialize(initConfig)

	pf := rootCmd.PersistentFlags()
	pf.String("config", "", "config file (default: ./section-combiner.yaml or ~/.config/section-combiner/config.yaml)")
	pf.String("root", "data/frc", "directory searched recursively for documents")
	pf.String("ext", ".json", "file extension of documents")
	pf.StringSlice("ignore", nil, "directory names to skip during discovery")
	pf.Int("workers", 1, "number of documents processed concurrently")
	pf.Int("max-errors", 10, "maximum number of document errors listed in the summary")
	pf.String("report", "", "write a run report to this path (.yaml, .json, or text)")
	pf.String("ledger", "", "SQLite database recording run history (empty disables)")

	bindFlag("combine.root", "root")
	bindFlag("combine.extension", "ext")
	bindFlag("combine.ignore", "ignore")
	bindFlag("combine.workers", "workers")
	bindFlag("combine.max_errors", "max-errors")
	bindFlag("combine.report_path", "report")
	bindFlag("ledger.path", "ledger")
}

func bindFlag(key, flag string) {
	mustBind(viper.BindPFlag(key, rootCmd.PersistentFlags().Lookup(flag)))
}

// mustBind panics on a flag binding error, which only happens when a flag
// name is misspelled.
func mustBind(err error) {
	if err != nil {
		panic(fmt.Sprintf("binding flag: %v", err))
	}
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("section-combiner")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "section-combiner"))
		}
	}

	// SECTION_COMBINER_COMBINE_ROOT sets combine.root, and so on.
	viper.SetEnvPrefix("SECTION_COMBINER")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
