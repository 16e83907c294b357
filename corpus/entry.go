package corpus

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Kind says how a file is carried into the output tree.
type Kind int

const (
	KindOther Kind = iota // copied verbatim
	KindAudio             // run through the degradation filter
)

func (k Kind) String() string {
	if k == KindAudio {
		return "audio"
	}
	return "other"
}

// Classify matches the literal, case-sensitive suffixes ".wav" and ".flac".
// "X.WAV" is therefore copied, not degraded.
func Classify(name string) Kind {
	if strings.HasSuffix(name, ".wav") || strings.HasSuffix(name, ".flac") {
		return KindAudio
	}
	return KindOther
}

// Entry is one file of the source tree, relative to its root.
type Entry struct {
	RelPath string
	Kind    Kind
}

// Scan lists every file under root, sorted by relative path.
//
// Symlinks are included when they resolve to a regular file. Devices, sockets,
// pipes and dangling links are skipped. Directories listed in exclude (absolute
// paths) are not descended into; the transformer uses this to keep an output
// tree nested inside the input tree out of its own input.
func Scan(root string, exclude ...string) ([]Entry, error) {
	root = filepath.Clean(root)

	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("input corpus: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("input corpus %q is not a directory", root)
	}

	skip := make(map[string]bool, len(exclude))
	for _, x := range exclude {
		skip[filepath.Clean(x)] = true
	}

	entries := make([]Entry, 0, 128)
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}

		if d.IsDir() {
			if path != root && skip[path] {
				return filepath.SkipDir
			}
			return nil
		}

		if !isRegular(path, d) {
			return nil
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}

		entries = append(entries, Entry{RelPath: rel, Kind: Classify(d.Name())})
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(entries, func(i, j int) bool { return entries[i].RelPath < entries[j].RelPath })
	return entries, nil
}

func isRegular(path string, d fs.DirEntry) bool {
	if d.Type().IsRegular() {
		return true
	}
	if d.Type()&fs.ModeSymlink == 0 {
		return false
	}
	fi, err := os.Stat(path)
	return err == nil && fi.Mode().IsRegular()
}

// Partition splits entries by kind, keeping their order.
func Partition(entries []Entry) (audio, other []Entry) {
	for _, e := range entries {
		if e.Kind == KindAudio {
			audio = append(audio, e)
		} else {
			other = append(other, e)
		}
	}
	return audio, other
}
