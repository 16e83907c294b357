package sox

import "time"

// ConversionOptions provides additional options for audio conversion
type ConversionOptions struct {
	// SoxPath specifies the path to the sox binary (defaults to "sox")
	SoxPath string

	// Effects is the SoX effects chain appended after the output file.
	// Example: []string{"lowpass", "4000"}
	Effects []string

	// Normalize passes --norm so SoX guards against clipping and raises the
	// level to 0dBFS before the effects chain.
	Normalize bool

	// ShowProgress enables progress output from SoX (written to stderr)
	ShowProgress bool

	// Verbose enables verbose output from SoX for debugging
	Verbose bool

	// Timeout sets maximum duration for one conversion (0 = no timeout)
	Timeout time.Duration
}

// DefaultOptions returns ConversionOptions with sensible defaults
func DefaultOptions() ConversionOptions {
	return ConversionOptions{
		SoxPath: "sox",
	}
}

func (o *ConversionOptions) binary() string {
	if o.SoxPath == "" {
		return "sox"
	}
	return o.SoxPath
}

// buildGlobalArgs converts ConversionOptions to SoX global arguments
func (o *ConversionOptions) buildGlobalArgs() []string {
	var args []string

	if !o.ShowProgress && !o.Verbose {
		args = append(args, "-q")
	}
	if o.Verbose {
		args = append(args, "-V")
	}
	if o.Normalize {
		args = append(args, "--norm")
	}

	return args
}
