package transcode

import (
	"strconv"
)

// Settings is a derived parameter set that can render an ffmpeg command line.
type Settings interface {
	Args(input, output string) []string
	Extension() string
}

// Args renders the ffmpeg argument list for settings.
func Args(settings Settings, input, output string) []string {
	return settings.Args(input, output)
}

// Extension returns the target file extension without a dot.
func (s AudioSettings) Extension() string { return s.Format }

// Extension returns the target file extension without a dot.
func (s VideoSettings) Extension() string { return s.Format }

// Args renders an audio-only conversion. Any video or cover-art stream in the
// source is dropped with -vn.
func (s AudioSettings) Args(input, output string) []string {
	args := []string{"-y", "-hide_banner", "-i", input, "-vn"}
	args = append(args, s.streamArgs()...)
	args = append(args, "-f", Muxer(s.Format), output)
	return args
}

func (s AudioSettings) streamArgs() []string {
	return []string{
		"-c:a", s.Codec,
		"-b:a", strconv.FormatInt(s.BitRate, 10),
		"-ar", strconv.Itoa(s.SampleRate),
		"-ac", strconv.Itoa(s.Channels),
	}
}

// Args renders a video conversion. Sources without audio get -an.
func (s VideoSettings) Args(input, output string) []string {
	args := []string{
		"-y", "-hide_banner", "-i", input,
		"-c:v", s.Codec,
		"-b:v", strconv.FormatInt(s.BitRate, 10),
		"-r", strconv.Itoa(s.FrameRate),
	}
	if s.Width > 0 && s.Height > 0 {
		args = append(args, "-s", strconv.Itoa(s.Width)+"x"+strconv.Itoa(s.Height))
	}
	if s.Audio != nil {
		args = append(args, s.Audio.streamArgs()...)
	} else {
		args = append(args, "-an")
	}
	args = append(args, "-f", Muxer(s.Format), output)
	return args
}
