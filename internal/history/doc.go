// Package history persists conversion batches and their per-file results in
// SQLite.
//
// Every batch run by the CLI opens a row in batches (keyed by a uuid), records
// one row per file in conversions, and is finalized with succeeded/failed
// totals once the worker drains. The store is used read-only by the history
// subcommands and pruned according to history.retention_days.
//
// The schema is embedded and versioned. A mismatched version is reported as
// ErrSchemaMismatch; delete the database file to start over.
package history
