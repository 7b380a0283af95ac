// Package drapto integrates the Drapto Go library as an optional AV1 engine
// for MKV video targets.
//
// It exposes a Client interface, a Library implementation that calls Drapto
// directly, a reporter adapter that translates Drapto's Reporter callbacks
// into ProgressUpdate values, and an Engine that places Drapto's output at
// the path the batch runner chose. Tests swap in a fake Client to avoid
// running the real encoder.
package drapto
