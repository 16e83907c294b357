// Package corpus mirrors an audio corpus into a new directory tree, passing
// every .wav and .flac file through a GSM phone-line simulation and copying
// everything else unchanged.
package corpus

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	sox "github.com/thadeu/soxcorpus"
	"github.com/thadeu/soxcorpus/gsm"
)

// ErrorPolicy decides what a per-file failure does to the rest of the run.
type ErrorPolicy int

const (
	// PolicyHalt stops the run at the first failing file.
	PolicyHalt ErrorPolicy = iota
	// PolicySkip records the failure in Report.Failed and moves on.
	PolicySkip
)

// ErrSameRoot is returned when the output root is the input root.
var ErrSameRoot = errors.New("output corpus must differ from input corpus")

// ErrOutputCollision is returned when two inputs mirror onto the same output,
// as "x.flac" and "x.wav" in one directory do.
var ErrOutputCollision = errors.New("output path collision")

// FileError is a failure tied to one file of the corpus.
type FileError struct {
	RelPath string
	Op      string // "mkdir", "copy" or "degrade"
	Err     error
}

func (e *FileError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.RelPath, e.Err)
}

func (e *FileError) Unwrap() error { return e.Err }

// Options configures a Transformer.
type Options struct {
	Normalize bool
	Policy    ErrorPolicy
	Observer  Observer
}

// Transformer degrades a corpus with a gsm.Filter.
type Transformer struct {
	Filter  gsm.Filter
	Options Options
}

// New returns a Transformer; a nil Observer is replaced by NopObserver.
func New(f gsm.Filter, opts Options) *Transformer {
	if opts.Observer == nil {
		opts.Observer = NopObserver{}
	}
	return &Transformer{Filter: f, Options: opts}
}

// Run mirrors inRoot into outRoot. Files are handled one at a time: every
// non-audio file is copied first, then every audio file is degraded.
//
// Nothing is created when the filter check fails, the input root is unusable,
// or the output mapping has a collision.
func (t *Transformer) Run(ctx context.Context, inRoot, outRoot string) (report Report, err error) {
	obs := t.Options.Observer
	if obs == nil {
		obs = NopObserver{}
	}
	defer func() { obs.OnFinish(report) }()

	m := NewMapping(inRoot, outRoot)
	same, nested := m.overlap()
	if same {
		return report, ErrSameRoot
	}

	if err := t.Filter.Check(ctx); err != nil {
		return report, err
	}

	var exclude []string
	if nested != "" {
		exclude = append(exclude, nested)
	}
	entries, err := Scan(m.InRoot, exclude...)
	if err != nil {
		return report, err
	}
	if err := checkCollisions(entries); err != nil {
		return report, err
	}

	if err := EnsureDir(m.OutRoot); err != nil {
		return report, fmt.Errorf("output corpus: %w", err)
	}

	audio, other := Partition(entries)
	ordered := append(other, audio...)

	report.Total = len(ordered)
	obs.OnStart(report.Total)

	for i, e := range ordered {
		if err := ctx.Err(); err != nil {
			return report, err
		}

		idx := i + 1
		obs.OnFile(idx, report.Total, e)
		ferr := t.process(ctx, m, e)
		obs.OnFileDone(idx, report.Total, e, ferr)

		if ferr == nil {
			if e.Kind == KindAudio {
				report.Audio++
			} else {
				report.Copied++
			}
			continue
		}

		if t.Options.Policy == PolicyHalt || errors.Is(ferr, sox.ErrCircuitOpen) || ctx.Err() != nil {
			return report, ferr
		}
		var fe *FileError
		if errors.As(ferr, &fe) {
			report.Failed = append(report.Failed, fe)
		}
	}

	return report, nil
}

func (t *Transformer) process(ctx context.Context, m Mapping, e Entry) error {
	in, out := m.Map(e.RelPath)

	if err := EnsureDir(filepath.Dir(out)); err != nil {
		return &FileError{RelPath: e.RelPath, Op: "mkdir", Err: err}
	}

	if e.Kind == KindOther {
		if err := CopyFile(in, out); err != nil {
			return &FileError{RelPath: e.RelPath, Op: "copy", Err: err}
		}
		return nil
	}

	if err := gsm.Degrade(ctx, t.Filter, in, out, t.Options.Normalize); err != nil {
		return &FileError{RelPath: e.RelPath, Op: "degrade", Err: err}
	}
	return nil
}

// checkCollisions rejects trees where two inputs share an output path, or
// where an input's output sits on the intermediate file of an audio input.
func checkCollisions(entries []Entry) error {
	seen := make(map[string]string, len(entries))
	for _, e := range entries {
		out := OutputRel(e.RelPath)
		if prev, ok := seen[out]; ok {
			return fmt.Errorf("%w: %q and %q both map to %q", ErrOutputCollision, prev, e.RelPath, out)
		}
		seen[out] = e.RelPath
	}

	for _, e := range entries {
		if e.Kind != KindAudio {
			continue
		}
		artifact := gsm.ArtifactPath(OutputRel(e.RelPath))
		if prev, ok := seen[artifact]; ok {
			return fmt.Errorf("%w: %q maps to %q, the intermediate file of %q", ErrOutputCollision, prev, artifact, e.RelPath)
		}
	}
	return nil
}
