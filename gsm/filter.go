// Package gsm simulates a narrowband phone line by round-tripping audio
// through the GSM 06.10 codec.
package gsm

import (
	"context"
	"errors"
	"fmt"
	"os"

	sox "github.com/thadeu/soxcorpus"
)

// ArtifactExt is the suffix of the intermediate encoded file.
const ArtifactExt = ".gsm"

// SampleRate of both the intermediate artifact and the decoded output.
const SampleRate = 8000

// ErrDependencyMissing means the filter cannot be invoked at all.
var ErrDependencyMissing = errors.New("degradation filter unavailable")

// Effects is the SoX effects chain applied while encoding: a 4kHz lowpass and
// a compander that squashes the dynamic range the way a phone line does.
var Effects = []string{
	"lowpass", "4000",
	"compand", "0.02,0.05", "-60,-60,-30,-10,-20,-8,-5,-8,-2,0", "-10", "-7", "0.05",
}

// Filter is the two-stage degradation pipeline.
type Filter interface {
	// Check reports whether the filter can run. Errors wrap ErrDependencyMissing.
	Check(ctx context.Context) error
	// Encode writes a narrowband lossy copy of inPath to artifactPath.
	Encode(ctx context.Context, inPath, artifactPath string, normalize bool) error
	// Decode writes artifactPath back out as signed-integer PCM at outPath.
	Decode(ctx context.Context, artifactPath, outPath string) error
}

// SoxFilter implements Filter with the sox binary.
type SoxFilter struct {
	Options sox.ConversionOptions
	Breaker *sox.CircuitBreaker
}

// NewSoxFilter returns a SoxFilter using opts for every sox call.
func NewSoxFilter(opts sox.ConversionOptions) *SoxFilter {
	return &SoxFilter{Options: opts}
}

func (f *SoxFilter) Check(ctx context.Context) error {
	if err := sox.CheckSoxInstalled(ctx, f.Options.SoxPath); err != nil {
		return fmt.Errorf("%w: GSM degradation requires sox to be installed: %w", ErrDependencyMissing, err)
	}
	return nil
}

func (f *SoxFilter) Encode(ctx context.Context, inPath, artifactPath string, normalize bool) error {
	opts := f.Options
	opts.Normalize = normalize
	opts.Effects = Effects

	conv := sox.NewConverter(sox.WAV_AUTO, sox.GSM_8K_MONO).WithOptions(opts).WithCircuitBreaker(f.Breaker)
	if err := conv.ConvertFile(ctx, inPath, artifactPath); err != nil {
		return fmt.Errorf("encode %s: %w", inPath, err)
	}
	return nil
}

func (f *SoxFilter) Decode(ctx context.Context, artifactPath, outPath string) error {
	opts := f.Options
	opts.Normalize = false
	opts.Effects = nil

	conv := sox.NewConverter(sox.WAV_AUTO, sox.WAV_8K_MONO_PCM16).WithOptions(opts).WithCircuitBreaker(f.Breaker)
	if err := conv.ConvertFile(ctx, artifactPath, outPath); err != nil {
		return fmt.Errorf("decode %s: %w", artifactPath, err)
	}
	return nil
}

// ArtifactPath returns where the intermediate file for outPath lives.
func ArtifactPath(outPath string) string {
	return outPath + ArtifactExt
}

// Degrade runs both stages for one file. The intermediate artifact is removed
// on every return path, including encode failure and cancellation. When the
// decode fails after sox started, the partial output is removed as well; an
// output left by an earlier run survives failures that never reach decode.
func Degrade(ctx context.Context, f Filter, inPath, outPath string, normalize bool) (err error) {
	artifact := ArtifactPath(outPath)
	defer func() {
		if rmErr := os.Remove(artifact); rmErr != nil && !errors.Is(rmErr, os.ErrNotExist) {
			err = errors.Join(err, fmt.Errorf("remove intermediate artifact: %w", rmErr))
		}
	}()

	if err := f.Encode(ctx, inPath, artifact, normalize); err != nil {
		return err
	}
	if err := f.Decode(ctx, artifact, outPath); err != nil {
		// a half-written output must not pass for a finished one
		if !outputUntouched(err) {
			_ = os.Remove(outPath)
		}
		return err
	}
	return nil
}

// outputUntouched reports whether err stopped the decode before sox could
// open its output.
func outputUntouched(err error) bool {
	return errors.Is(err, sox.ErrCircuitOpen) ||
		errors.Is(err, sox.ErrNotStarted) ||
		errors.Is(err, sox.ErrInvalidFormat)
}
