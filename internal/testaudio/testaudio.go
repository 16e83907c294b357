// Package testaudio writes small audio fixtures for tests.
package testaudio

import (
	"math"
	"os"
	"testing"

	"github.com/faiface/beep"
	"github.com/faiface/beep/wav"
	"github.com/stretchr/testify/require"
)

// Sine returns seconds of a sine tone at freq Hz sampled at rate.
func Sine(rate int, freq, seconds float64) []float64 {
	n := int(float64(rate) * seconds)
	out := make([]float64, n)
	for i := range out {
		out[i] = 0.5 * math.Sin(2*math.Pi*freq*float64(i)/float64(rate))
	}
	return out
}

// WriteWAV writes samples as a 16-bit mono WAV file.
func WriteWAV(t testing.TB, path string, rate int, samples []float64) {
	t.Helper()

	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()

	pos := 0
	streamer := beep.StreamerFunc(func(buf [][2]float64) (int, bool) {
		if pos >= len(samples) {
			return 0, false
		}
		n := copy2(buf, samples[pos:])
		pos += n
		return n, true
	})

	format := beep.Format{SampleRate: beep.SampleRate(rate), NumChannels: 1, Precision: 2}
	require.NoError(t, wav.Encode(f, streamer, format))
}

func copy2(dst [][2]float64, src []float64) int {
	n := len(dst)
	if len(src) < n {
		n = len(src)
	}
	for i := 0; i < n; i++ {
		dst[i][0], dst[i][1] = src[i], src[i]
	}
	return n
}
