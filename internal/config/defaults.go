package config

const (
	defaultStateDir             = "~/.local/share/truinconv"
	defaultOutputDir            = ""
	defaultJPEGQuality          = 95
	defaultFFmpegBinary         = "ffmpeg"
	defaultFFprobeBinary        = "ffprobe"
	defaultSofficeBinary        = "soffice"
	defaultDocumentTimeout      = 300
	defaultVideoEngine          = VideoEngineFFmpeg
	defaultHistoryEnabled       = true
	defaultHistoryRetentionDays = 90
	defaultLogFormat            = "console"
	defaultLogLevel             = "info"
)

// Video engines accepted by video.engine.
const (
	VideoEngineFFmpeg = "ffmpeg"
	VideoEngineDrapto = "drapto"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			StateDir:  defaultStateDir,
			OutputDir: defaultOutputDir,
		},
		Image: Image{
			JPEGQuality: defaultJPEGQuality,
		},
		Media: Media{
			FFmpegBinary:  defaultFFmpegBinary,
			FFprobeBinary: defaultFFprobeBinary,
		},
		Video: Video{
			Engine: defaultVideoEngine,
		},
		Document: Document{
			SofficeBinary:  defaultSofficeBinary,
			TimeoutSeconds: defaultDocumentTimeout,
		},
		History: History{
			Enabled:       defaultHistoryEnabled,
			RetentionDays: defaultHistoryRetentionDays,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
