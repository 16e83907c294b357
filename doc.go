// Package sox provides a small Go wrapper for SoX (Sound eXchange), used by
// soxcorpus to drive the GSM phone-line simulation and to decode audio for
// feature extraction.
//
// Every conversion runs one sox process with an explicit argument vector;
// paths are never interpolated into a shell command.
//
// # Basic Usage
//
// File to file:
//
//	conv := sox.NewConverter(sox.WAV_AUTO, sox.GSM_8K_MONO)
//	conv.Options.Effects = []string{"lowpass", "4000"}
//	err := conv.ConvertFile(ctx, "in.wav", "out.gsm")
//
// Through pipes:
//
//	conv := sox.NewConverter(sox.WAV_AUTO, sox.RAW_F32_MONO(22050))
//	err := conv.Convert(ctx, file, &buf)
//
// # Resilience
//
// A CircuitBreaker attached with WithCircuitBreaker rejects conversions with
// ErrCircuitOpen after a run of consecutive failures. GetMonitor exposes
// process counters for diagnostics.
//
// # Requirements
//
// SoX must be installed and accessible in PATH (or configured through
// ConversionOptions.SoxPath):
//   - macOS: brew install sox
//   - Ubuntu/Debian: apt-get install sox
//   - RHEL/CentOS: yum install sox
//
// Verify installation:
//
//	err := sox.CheckSoxInstalled(ctx, "")
package sox
