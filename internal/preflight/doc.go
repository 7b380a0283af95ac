// Package preflight provides readiness checks for the external binaries
// and filesystem paths truinconv depends on.
//
// The batch runner calls EnsureOutputDirectory before converting anything so
// a read-only target fails once instead of once per file. The CLI "status"
// command uses RunAll and CheckSystemDeps to display overall health.
package preflight
