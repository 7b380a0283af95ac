// Package batch runs a conversion job over a list of files on a single
// background worker.
//
// A job is validated up front (files, formats, output directory), files that
// do not carry the source extension are skipped, and every remaining file is
// attempted independently: one failure never stops the batch. Output names
// are derived from the input stem and the target extension, with " (1)",
// " (2)" ... appended when a name is taken and overwriting is off. The output
// directory is locked for the duration of the batch so two runs cannot pick
// the same name.
//
// Cancellation stops the batch after the file in flight; files that never
// started are reported as canceled.
package batch
