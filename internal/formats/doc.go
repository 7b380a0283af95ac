// Package formats owns the conversion categories and the static lookup tables
// that decide which target formats a source format may be converted to.
//
// Formats are upper-case extension names without the leading dot ("MP3",
// "TIFF"). Normalize converts user input into that shape; every other helper
// expects normalized input but tolerates raw strings.
package formats
