// Package services defines shared utilities consumed by the converters and
// external tool integrations.
//
// Key responsibilities:
//   - Context helpers that stamp batch identifiers, file paths, and
//     conversion categories for logging.
//   - Structured error markers plus the Wrap helper that translate failures
//     into consistent history statuses (failed vs rejected vs canceled).
//
// Use these helpers when wiring new converters so operational behaviour
// (error handling, observability) stays uniform across categories.
package services
