// Package features computes per-frame spectral features of audio files:
// mean log mel-filterbank energies and mean MFCCs, one row per frame.
package features

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"

	sox "github.com/thadeu/soxcorpus"
)

// ErrTooShort is returned when a signal holds less than one frame.
var ErrTooShort = errors.New("signal shorter than one frame")

// Extractor turns one audio file into a feature table.
type Extractor interface {
	Extract(ctx context.Context, path string) (*Table, error)
}

// FrameExtractor slides a frame of FrameSec seconds over the signal in steps
// of a fifth of a frame and summarises the first step-long slice of every
// position.
type FrameExtractor struct {
	FrameSec   float64
	SampleRate int // analysis rate; used only when Sox is set
	NFFT       int
	Hop        int
	NumMels    int
	NumMFCC    int

	// Sox, when set, decodes every file through sox at SampleRate. Without it
	// files are read natively at their own rate.
	Sox *sox.ConversionOptions
}

// NewFrameExtractor returns an extractor with the usual speech defaults:
// 22050Hz, 2048-point FFT, hop 512, 128 mel bands, 20 MFCCs.
func NewFrameExtractor(frameSec float64) *FrameExtractor {
	return &FrameExtractor{
		FrameSec:   frameSec,
		SampleRate: 22050,
		NFFT:       2048,
		Hop:        512,
		NumMels:    128,
		NumMFCC:    20,
	}
}

func (e *FrameExtractor) Extract(ctx context.Context, path string) (*Table, error) {
	var (
		sig Signal
		err error
	)
	if e.Sox != nil {
		sig, err = Resample(ctx, *e.Sox, path, e.SampleRate)
	} else {
		sig, err = Load(path)
	}
	if err != nil {
		return nil, err
	}

	t, err := e.ExtractSignal(ctx, sig)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return t, nil
}

// ExtractSignal computes the feature table of an already decoded signal.
func (e *FrameExtractor) ExtractSignal(ctx context.Context, sig Signal) (*Table, error) {
	if e.FrameSec <= 0 {
		return nil, fmt.Errorf("frame length must be positive, got %v", e.FrameSec)
	}
	if e.NumMFCC > e.NumMels {
		return nil, fmt.Errorf("%d MFCCs requested from %d mel bands", e.NumMFCC, e.NumMels)
	}

	frame := int(float64(sig.SampleRate) * e.FrameSec)
	step := frame / 5
	if step == 0 || len(sig.Samples)-frame <= 0 {
		return nil, fmt.Errorf("%w: %d samples, frame of %d", ErrTooShort, len(sig.Samples), frame)
	}

	bank := melFilterbank(sig.SampleRate, e.NFFT, e.NumMels, 0, float64(sig.SampleRate)/2)
	t := &Table{Columns: e.columns()}

	for i := 0; i < len(sig.Samples)-frame; i += step {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		mel := applyFilterbank(powerSpectrogram(sig.Samples[i:i+step], e.NFFT, e.Hop), bank)

		row := make([]float64, 0, e.NumMels+e.NumMFCC)
		row = append(row, meanLog(mel)...)
		row = append(row, meanMFCC(mel, e.NumMFCC)...)
		t.Rows = append(t.Rows, row)
	}

	return t, nil
}

func (e *FrameExtractor) columns() []string {
	cols := make([]string, 0, e.NumMels+e.NumMFCC)
	for i := 0; i < e.NumMels; i++ {
		cols = append(cols, "filterbank_"+strconv.Itoa(i))
	}
	for i := 0; i < e.NumMFCC; i++ {
		cols = append(cols, "mfcc_"+strconv.Itoa(i))
	}
	return cols
}

// meanLog averages log energies of each band over time. Energies are floored
// at amin so silent bands stay finite.
func meanLog(mel [][]float64) []float64 {
	out := make([]float64, len(mel[0]))
	for _, frame := range mel {
		for i, v := range frame {
			out[i] += math.Log(math.Max(amin, v))
		}
	}
	for i := range out {
		out[i] /= float64(len(mel))
	}
	return out
}

// meanMFCC averages the MFCCs of each time step. mel is not modified.
func meanMFCC(mel [][]float64, k int) []float64 {
	db := make([][]float64, len(mel))
	for t, frame := range mel {
		db[t] = append([]float64(nil), frame...)
	}
	powerToDB(db)

	out := make([]float64, k)
	for _, frame := range db {
		for i, c := range dct2(frame, k) {
			out[i] += c
		}
	}
	for i := range out {
		out[i] /= float64(len(db))
	}
	return out
}
