package deps

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
)

// EncoderNames are the ffmpeg encoders the quality-preserving settings select.
var EncoderNames = []string{"libmp3lame", "aac", "flac", "libvorbis", "pcm_s16le", "libx264", "libvpx"}

// CheckFFmpegEncoders runs `ffmpeg -encoders` and reports which of the
// requested encoders the build lacks. A build without libx264 still runs but
// every MP4/AVI/MKV/MOV conversion would fail, so status output surfaces it.
func CheckFFmpegEncoders(ctx context.Context, binary string, names []string) (Status, []string) {
	binary = strings.TrimSpace(binary)
	if binary == "" {
		binary = "ffmpeg"
	}
	result := Status{
		Name:        "FFmpeg encoders",
		Command:     binary,
		Description: strings.Join(names, ", "),
	}

	output, err := exec.CommandContext(ctx, binary, "-hide_banner", "-encoders").Output()
	if err != nil {
		result.Detail = fmt.Sprintf("list encoders: %v", err)
		return result, names
	}

	available := parseEncoderList(output)
	var missing []string
	for _, name := range names {
		if _, ok := available[name]; !ok {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		result.Detail = "missing " + strings.Join(missing, ", ")
		return result, missing
	}
	result.Available = true
	return result, nil
}

// parseEncoderList reads lines shaped like " A..... aac   AAC (Advanced Audio Coding)".
func parseEncoderList(output []byte) map[string]struct{} {
	encoders := make(map[string]struct{})
	scanner := bufio.NewScanner(bytes.NewReader(output))
	pastHeader := false
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if !pastHeader {
			if strings.HasPrefix(line, "------") {
				pastHeader = true
			}
			continue
		}
		fields := strings.Fields(line)
		if len(fields) < 2 || len(fields[0]) != 6 {
			continue
		}
		encoders[fields[1]] = struct{}{}
	}
	return encoders
}
