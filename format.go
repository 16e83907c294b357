package sox

import (
	"fmt"
	"strconv"
)

const (
	TYPE_RAW  = "raw"
	TYPE_WAV  = "wav"
	TYPE_FLAC = "flac"
	TYPE_GSM  = "gsm"

	SIGNED_INTEGER   = "signed-integer"
	UNSIGNED_INTEGER = "unsigned-integer"
	FLOATING_POINT   = "floating-point"
	GSM_FULL_RATE    = "gsm-full-rate"
)

// AudioFormat defines the audio format parameters for one side of a conversion.
// Zero fields are left out of the command line so SoX can infer them from the
// file header or the other side of the conversion.
type AudioFormat struct {
	Type       string // "raw", "wav", "flac", "gsm", ...
	Encoding   string // "signed-integer", "floating-point", "gsm-full-rate", ...
	SampleRate int    // Hz
	Channels   int    // 1 = mono
	BitDepth   int    // bits per sample

	IgnoreLength bool   // --ignore-length, input only
	Endian       string // --endian little|big|swap

	// CustomArgs is appended verbatim after the known options.
	CustomArgs []string
}

var (
	// WAV_AUTO leaves every parameter to SoX. Used for corpus inputs, which may
	// be WAV or FLAC at any rate.
	WAV_AUTO = AudioFormat{}

	// GSM_8K_MONO is the narrowband GSM 06.10 container used for the
	// intermediate artifact of the phone-line simulation.
	GSM_8K_MONO = AudioFormat{
		Type:       TYPE_GSM,
		SampleRate: 8000,
		Channels:   1,
	}

	// WAV_8K_MONO_PCM16 is 8kHz 16-bit signed PCM, the decoded phone-line output.
	WAV_8K_MONO_PCM16 = AudioFormat{
		Type:       TYPE_WAV,
		Encoding:   SIGNED_INTEGER,
		SampleRate: 8000,
		BitDepth:   16,
	}
)

// RAW_F32_MONO returns headerless 32-bit little-endian float mono at rate.
func RAW_F32_MONO(rate int) AudioFormat {
	return AudioFormat{
		Type:       TYPE_RAW,
		Encoding:   FLOATING_POINT,
		SampleRate: rate,
		Channels:   1,
		BitDepth:   32,
		Endian:     "little",
	}
}

// buildArgs converts AudioFormat to SoX format options.
// isInput: true for input format, false for output format
func (f *AudioFormat) buildArgs(isInput bool) []string {
	var args []string

	if isInput && f.IgnoreLength {
		args = append(args, "--ignore-length")
	}
	if f.Type != "" {
		args = append(args, "-t", f.Type)
	}
	if f.Encoding != "" {
		args = append(args, "-e", f.Encoding)
	}
	if f.BitDepth > 0 {
		args = append(args, "-b", strconv.Itoa(f.BitDepth))
	}
	if f.Endian != "" {
		args = append(args, "--endian", f.Endian)
	}
	if f.Channels > 0 {
		args = append(args, "-c", strconv.Itoa(f.Channels))
	}
	if f.SampleRate > 0 {
		args = append(args, "-r", strconv.Itoa(f.SampleRate))
	}

	return append(args, f.CustomArgs...)
}

// Validate checks if the AudioFormat has usable parameters
func (f *AudioFormat) Validate() error {
	if f.Type == TYPE_RAW {
		if f.Encoding == "" && len(f.CustomArgs) == 0 {
			return fmt.Errorf("%w: raw format needs an encoding", ErrInvalidFormat)
		}
		if f.SampleRate <= 0 {
			return fmt.Errorf("%w: raw format needs a sample rate", ErrInvalidFormat)
		}
	}

	if f.Endian != "" && f.Endian != "little" && f.Endian != "big" && f.Endian != "swap" {
		return fmt.Errorf("%w: endian must be 'little', 'big', or 'swap'", ErrInvalidFormat)
	}

	if f.SampleRate < 0 || f.Channels < 0 || f.BitDepth < 0 {
		return fmt.Errorf("%w: negative sample rate, channels or bit depth", ErrInvalidFormat)
	}

	return nil
}
