package corpus

import (
	"path/filepath"
	"strings"
)

// Mapping mirrors relative paths of the input tree into the output tree.
type Mapping struct {
	InRoot  string
	OutRoot string
}

// NewMapping cleans both roots, which drops any trailing separator.
func NewMapping(inRoot, outRoot string) Mapping {
	return Mapping{InRoot: filepath.Clean(inRoot), OutRoot: filepath.Clean(outRoot)}
}

// Map returns the absolute source and destination of rel. Only the output side
// is rewritten: a ".flac" suffix becomes ".wav".
func (m Mapping) Map(rel string) (in, out string) {
	return filepath.Join(m.InRoot, rel), filepath.Join(m.OutRoot, OutputRel(rel))
}

// OutputRel is the relative output path for rel.
func OutputRel(rel string) string {
	if strings.HasSuffix(rel, ".flac") {
		return strings.TrimSuffix(rel, ".flac") + ".wav"
	}
	return rel
}

// overlap reports whether OutRoot equals InRoot, and when OutRoot lies inside
// InRoot returns it spelled the way a walk of InRoot would reach it.
func (m Mapping) overlap() (same bool, nested string) {
	in, err := filepath.Abs(m.InRoot)
	if err != nil {
		return false, ""
	}
	out, err := filepath.Abs(m.OutRoot)
	if err != nil {
		return false, ""
	}
	rel, err := filepath.Rel(in, out)
	if err != nil {
		return false, ""
	}
	if rel == "." {
		return true, ""
	}
	if rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return false, ""
	}
	return false, filepath.Join(m.InRoot, rel)
}
