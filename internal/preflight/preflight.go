package preflight

import (
	"truinconv/internal/config"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// RunAll executes the directory checks applicable to the given config.
func RunAll(cfg *config.Config) []Result {
	if cfg == nil {
		return nil
	}

	var results []Result

	// State directory (always checked)
	results = append(results, CheckDirectoryAccess("State directory", cfg.Paths.StateDir))

	// Default output directory (when configured)
	if cfg.Paths.OutputDir != "" {
		results = append(results, CheckDirectoryAccess("Output directory", cfg.Paths.OutputDir))
	}

	return results
}

// Failed returns the subset of results that did not pass.
func Failed(results []Result) []Result {
	var failed []Result
	for _, r := range results {
		if !r.Passed {
			failed = append(failed, r)
		}
	}
	return failed
}
