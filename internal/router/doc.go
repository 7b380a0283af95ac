// Package router dispatches a single file conversion to the converter for
// its category.
//
// Requests in the Media grouping are resolved to Audio or Video from the
// target format before dispatch. When the drapto engine is configured, MKV
// video targets go to Drapto instead of ffmpeg.
package router
