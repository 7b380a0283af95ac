// Package main hosts the truinconv CLI entrypoint and command graph.
//
// The Cobra command tree turns terminal invocations into conversion batches,
// format table lookups, source probing, history maintenance, and
// configuration scaffolding. Configuration and logger construction live in
// commandContext so subcommands only describe their flags and output.
package main
