package features

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/faiface/beep/wav"
	"github.com/mewkiz/flac"

	sox "github.com/thadeu/soxcorpus"
)

// ErrUnsupportedFormat is returned by Load for anything but WAV and FLAC.
var ErrUnsupportedFormat = errors.New("unsupported audio format")

// Signal is mono audio in [-1, 1].
type Signal struct {
	Samples    []float64
	SampleRate int
}

// Duration in seconds.
func (s Signal) Duration() float64 {
	if s.SampleRate == 0 {
		return 0
	}
	return float64(len(s.Samples)) / float64(s.SampleRate)
}

// Load decodes a WAV or FLAC file at its own sample rate, averaging channels.
func Load(path string) (Signal, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".wav":
		return loadWAV(path)
	case ".flac":
		return loadFLAC(path)
	default:
		return Signal{}, fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
	}
}

func loadWAV(path string) (Signal, error) {
	f, err := os.Open(path)
	if err != nil {
		return Signal{}, err
	}
	defer f.Close()

	stream, format, err := wav.Decode(f)
	if err != nil {
		return Signal{}, fmt.Errorf("decode %s: %w", path, err)
	}
	defer stream.Close()

	// beep scales 16 and 24-bit samples by 2^bits-1 instead of 2^(bits-1)
	scale := 1.0
	if p := format.Precision; p == 2 || p == 3 {
		bits := uint(8 * p)
		scale = float64(uint64(1)<<bits-1) / float64(uint64(1)<<(bits-1))
	}

	sig := Signal{SampleRate: int(format.SampleRate)}
	if n := stream.Len(); n > 0 {
		sig.Samples = make([]float64, 0, n)
	}

	buf := make([][2]float64, 1024)
	for {
		n, ok := stream.Stream(buf)
		for i := 0; i < n; i++ {
			sig.Samples = append(sig.Samples, (buf[i][0]+buf[i][1])/2*scale)
		}
		if !ok {
			break
		}
	}
	if err := stream.Err(); err != nil {
		return Signal{}, fmt.Errorf("decode %s: %w", path, err)
	}

	return sig, nil
}

func loadFLAC(path string) (Signal, error) {
	stream, err := flac.ParseFile(path)
	if err != nil {
		return Signal{}, fmt.Errorf("decode %s: %w", path, err)
	}
	defer stream.Close()

	sig := Signal{SampleRate: int(stream.Info.SampleRate)}
	scale := float64(int64(1) << (stream.Info.BitsPerSample - 1))

	for {
		frame, err := stream.ParseNext()
		if err == io.EOF {
			break
		}
		if err != nil {
			return Signal{}, fmt.Errorf("decode %s: %w", path, err)
		}

		channels := float64(len(frame.Subframes))
		for i := range frame.Subframes[0].Samples {
			var sum float64
			for _, sub := range frame.Subframes {
				sum += float64(sub.Samples[i])
			}
			sig.Samples = append(sig.Samples, sum/channels/scale)
		}
	}

	return sig, nil
}

// Resample decodes any file SoX understands into a mono Signal at rate by
// piping it through sox as raw 32-bit floats.
func Resample(ctx context.Context, opts sox.ConversionOptions, path string, rate int) (Signal, error) {
	f, err := os.Open(path)
	if err != nil {
		return Signal{}, err
	}
	defer f.Close()

	in := sox.AudioFormat{Type: strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")}
	opts.Effects = nil
	opts.Normalize = false

	var out bytes.Buffer
	conv := sox.NewConverter(in, sox.RAW_F32_MONO(rate)).WithOptions(opts)
	if err := conv.Convert(ctx, f, &out); err != nil {
		return Signal{}, fmt.Errorf("resample %s: %w", path, err)
	}

	raw := out.Bytes()
	samples := make([]float64, len(raw)/4)
	for i := range samples {
		samples[i] = float64(math.Float32frombits(binary.LittleEndian.Uint32(raw[i*4:])))
	}

	return Signal{Samples: samples, SampleRate: rate}, nil
}
