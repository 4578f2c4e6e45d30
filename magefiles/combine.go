//go:build mage

package main

import (
	"path/filepath"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

const (
	ledgerPath = ".section-combiner/history.db"
	reportsDir = "reports"
)

func bin() string {
	return filepath.Join(binDir, binName)
}

// Audit lists mergeable section pairs under data/frc and writes reports/audit.yaml.
func Audit() error {
	mg.Deps(Build, Init)
	return sh.RunV(bin(), "audit",
		"--ledger", ledgerPath,
		"--report", filepath.Join(reportsDir, "audit.yaml"))
}

// Merge merges section pairs under data/frc and writes reports/combine-results.txt.
func Merge() error {
	mg.Deps(Build, Init)
	return sh.RunV(bin(), "merge",
		"--ledger", ledgerPath,
		"--report", filepath.Join(reportsDir, "combine-results.txt"))
}

// History lists the recorded runs.
func History() error {
	mg.Deps(Build)
	return sh.RunV(bin(), "history", "--ledger", ledgerPath)
}
