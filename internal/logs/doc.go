// Package logs reads the truinconv log file for the `logs` command.
//
// Tail returns the last N lines with bounded memory and the offset to resume
// from; Follow polls from that offset until its context ends, starting over
// when the file is truncated or rotated. A substring filter narrows output to
// one batch or file.
package logs
