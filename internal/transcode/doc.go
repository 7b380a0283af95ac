// Package transcode derives quality-preserving ffmpeg parameters from a
// probed source and runs the conversion.
//
// Audio targets keep the source sample rate and channel layout and never
// drop below 128 kb/s. Video targets keep the source frame size, clamp the
// bitrate into a per-container window, and cap the frame rate at 60. Sources
// without the relevant stream fall back to fixed defaults so a conversion
// always has a complete parameter set.
//
// Encoder wraps ffprobe and ffmpeg: it probes, derives settings, runs ffmpeg
// with machine-readable progress, and promotes the finished file into place
// only on success.
package transcode
