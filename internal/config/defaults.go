package config

const (
	defaultLogDir        = "~/.local/share/clipgif/logs"
	defaultFFmpegBinary  = "ffmpeg"
	defaultFFprobeBinary = "ffprobe"
	defaultFPS           = 15
	defaultFrameFormat   = "png"
	defaultEncoderSpeed  = 10
	defaultDuration      = "00:00:05"
	defaultOutput        = "output.gif"
	defaultLogFormat     = "console"
	defaultLogLevel      = "info"
	defaultLogMaxSizeMB  = 10
	defaultLogMaxBackups = 3
	defaultLogMaxAgeDays = 14
	minEncoderSpeed      = 1
	maxEncoderSpeed      = 30
	maxFPS               = 50
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			LogDir:   defaultLogDir,
			StateDir: defaultStateDir(),
		},
		FFmpeg: FFmpeg{
			Binary:        defaultFFmpegBinary,
			FFprobeBinary: defaultFFprobeBinary,
			ProbeSource:   true,
		},
		Extraction: Extraction{
			FPS:         defaultFPS,
			FrameFormat: defaultFrameFormat,
			WatchFrames: true,
		},
		Encoder: Encoder{
			Speed:              defaultEncoderSpeed,
			ValidateDimensions: true,
		},
		Conversion: Conversion{
			DefaultDuration: defaultDuration,
			DefaultOutput:   defaultOutput,
		},
		Logging: Logging{
			Format:     defaultLogFormat,
			Level:      defaultLogLevel,
			MaxSizeMB:  defaultLogMaxSizeMB,
			MaxBackups: defaultLogMaxBackups,
			MaxAgeDays: defaultLogMaxAgeDays,
		},
	}
}
