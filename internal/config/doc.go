// Package config loads, normalizes, and validates truinconv configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks such as
// TRUINCONV_FFMPEG. The Config type centralizes every knob the converters,
// the batch runner, and the CLI need so that binaries, output directories,
// and history retention are discovered in one pass.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical log formats, and clear validation errors.
package config
