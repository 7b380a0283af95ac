package batch

import (
	"fmt"
	"path/filepath"
	"strings"

	"truinconv/internal/fileutil"
)

// planner picks output names for one batch. It remembers names already
// handed out so two inputs with the same stem never share an output.
type planner struct {
	dir       string
	ext       string
	overwrite bool
	claimed   map[string]struct{}
	exists    func(string) bool
}

func newPlanner(dir, target string, overwrite bool) *planner {
	return &planner{
		dir:       dir,
		ext:       strings.ToLower(strings.TrimPrefix(strings.TrimSpace(target), ".")),
		overwrite: overwrite,
		claimed:   make(map[string]struct{}),
		exists:    fileutil.Exists,
	}
}

// next returns the output path for input and claims it.
func (p *planner) next(input string) string {
	base := filepath.Base(input)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	candidate := filepath.Join(p.dir, stem+"."+p.ext)
	for n := 1; p.taken(candidate); n++ {
		candidate = filepath.Join(p.dir, fmt.Sprintf("%s (%d).%s", stem, n, p.ext))
	}
	p.claimed[candidate] = struct{}{}
	return candidate
}

func (p *planner) taken(path string) bool {
	if _, ok := p.claimed[path]; ok {
		return true
	}
	if p.overwrite {
		return false
	}
	return p.exists(path)
}
