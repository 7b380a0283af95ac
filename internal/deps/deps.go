package deps

import (
	"fmt"
	"os/exec"
	"strings"

	"truinconv/internal/config"
)

// Requirement defines an external dependency truinconv relies on.
type Requirement struct {
	Name        string
	Command     string
	Description string
	Optional    bool
}

// Status reports the availability of a dependency.
type Status struct {
	Name        string
	Command     string
	Description string
	Optional    bool
	Available   bool
	Detail      string
}

// Requirements lists the binaries the configured converters invoke.
// LibreOffice is optional: only document conversions need it.
func Requirements(cfg *config.Config) []Requirement {
	if cfg == nil {
		return nil
	}
	reqs := []Requirement{
		{Name: "FFmpeg", Command: cfg.Media.FFmpegBinary, Description: "Audio and video transcoding"},
		{Name: "FFprobe", Command: cfg.Media.FFprobeBinary, Description: "Source stream inspection"},
		{Name: "LibreOffice", Command: cfg.Document.SofficeBinary, Description: "DOCX and PDF conversion", Optional: true},
	}
	if cfg.Video.Engine == config.VideoEngineDrapto {
		reqs[0].Description = "Audio and video transcoding (also used by Drapto)"
	}
	return reqs
}

// CheckBinaries evaluates the provided requirements and reports availability.
func CheckBinaries(requirements []Requirement) []Status {
	results := make([]Status, 0, len(requirements))
	for _, req := range requirements {
		cmd := strings.TrimSpace(req.Command)
		status := Status{
			Name:        req.Name,
			Command:     cmd,
			Description: strings.TrimSpace(req.Description),
			Optional:    req.Optional,
		}
		if cmd == "" {
			status.Available = false
			status.Detail = "command not configured"
			results = append(results, status)
			continue
		}
		if _, err := exec.LookPath(cmd); err != nil {
			status.Available = false
			status.Detail = fmt.Sprintf("binary %q not found", cmd)
			results = append(results, status)
			continue
		}
		status.Available = true
		results = append(results, status)
	}
	return results
}

// MissingRequired returns the names of unavailable, non-optional dependencies.
func MissingRequired(statuses []Status) []string {
	var missing []string
	for _, status := range statuses {
		if !status.Available && !status.Optional {
			missing = append(missing, status.Name)
		}
	}
	return missing
}
