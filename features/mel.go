package features

import (
	"math"
	"math/cmplx"

	"github.com/mjibson/go-dsp/fft"
	"github.com/r9y9/gossp/stft"
)

// Slaney mel scale: linear below 1kHz, logarithmic above.
const (
	melFSP      = 200.0 / 3
	melMinLogHz = 1000.0
	melMinLog   = melMinLogHz / melFSP
)

var melLogStep = math.Log(6.4) / 27.0

func hzToMel(hz float64) float64 {
	if hz < melMinLogHz {
		return hz / melFSP
	}
	return melMinLog + math.Log(hz/melMinLogHz)/melLogStep
}

func melToHz(mel float64) float64 {
	if mel < melMinLog {
		return mel * melFSP
	}
	return melMinLogHz * math.Exp(melLogStep*(mel-melMinLog))
}

// melFilterbank returns nMels area-normalised triangular filters over the
// nFFT/2+1 bins of a real FFT at sampleRate.
func melFilterbank(sampleRate, nFFT, nMels int, fmin, fmax float64) [][]float64 {
	bins := nFFT/2 + 1
	freqs := make([]float64, bins)
	for j := range freqs {
		freqs[j] = float64(j) * float64(sampleRate) / float64(nFFT)
	}

	lo, hi := hzToMel(fmin), hzToMel(fmax)
	edges := make([]float64, nMels+2)
	for i := range edges {
		edges[i] = melToHz(lo + (hi-lo)*float64(i)/float64(nMels+1))
	}

	bank := make([][]float64, nMels)
	for i := range bank {
		left, center, right := edges[i], edges[i+1], edges[i+2]
		norm := 2.0 / (right - left)
		w := make([]float64, bins)
		for j, f := range freqs {
			up := (f - left) / (center - left)
			down := (right - f) / (right - center)
			if v := math.Min(up, down); v > 0 {
				w[j] = v * norm
			}
		}
		bank[i] = w
	}
	return bank
}

// powerSpectrogram returns |STFT|^2 frames of y, zero-padded by nFFT/2 on each
// side so frames are centred on multiples of hop.
func powerSpectrogram(y []float64, nFFT, hop int) [][]float64 {
	padded := make([]float64, len(y)+nFFT)
	copy(padded[nFFT/2:], y)

	stftFrames := stft.New(hop, nFFT).STFT(padded)

	bins := nFFT/2 + 1
	power := make([][]float64, len(stftFrames))
	for i, frame := range stftFrames {
		p := make([]float64, bins)
		for j := 0; j < bins; j++ {
			a := cmplx.Abs(frame[j])
			p[j] = a * a
		}
		power[i] = p
	}
	return power
}

// applyFilterbank projects each power frame onto the mel filters.
func applyFilterbank(power, bank [][]float64) [][]float64 {
	mel := make([][]float64, len(power))
	for t, frame := range power {
		m := make([]float64, len(bank))
		for i, w := range bank {
			var sum float64
			for j, v := range frame {
				sum += w[j] * v
			}
			m[i] = sum
		}
		mel[t] = m
	}
	return mel
}

const (
	amin  = 1e-10
	topDB = 80.0
)

// powerToDB converts in place to decibels relative to 1.0, flooring at topDB
// below the loudest cell.
func powerToDB(s [][]float64) {
	peak := math.Inf(-1)
	for _, row := range s {
		for i, v := range row {
			db := 10 * math.Log10(math.Max(amin, v))
			row[i] = db
			peak = math.Max(peak, db)
		}
	}
	floor := peak - topDB
	for _, row := range s {
		for i, v := range row {
			row[i] = math.Max(v, floor)
		}
	}
}

// dct2 returns the first k coefficients of the orthonormal DCT-II of x,
// computed from an FFT of the even extension of x.
func dct2(x []float64, k int) []float64 {
	n := len(x)
	ext := make([]float64, 2*n)
	for i, v := range x {
		ext[i] = v
		ext[2*n-1-i] = v
	}
	coeffs := fft.FFTReal(ext)

	if k > n {
		k = n
	}
	out := make([]float64, k)
	for j := 0; j < k; j++ {
		twiddle := cmplx.Exp(complex(0, -math.Pi*float64(j)/float64(2*n)))
		y := real(coeffs[j] * twiddle)
		if j == 0 {
			out[j] = y * math.Sqrt(1/float64(4*n))
		} else {
			out[j] = y * math.Sqrt(1/float64(2*n))
		}
	}
	return out
}
