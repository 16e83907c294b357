package cli

import (
	"bufio"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/thadeu/soxcorpus/features"
)

var featFrameSecFlag float64
var featSampleRateFlag int
var featNativeFlag bool
var featScriptFlag string
var featPythonFlag string
var featEnvFlag string
var featFormatFlag string
var featOutputFlag string

func newFeaturesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "features FILE",
		Short: "Print per-frame filterbank and MFCC features of an audio file",
		Long: `Compute one row of features per analysis frame of FILE: the mean log mel
filterbank energy of each of 128 bands followed by the mean of 20 MFCCs.

Audio is decoded and resampled by sox unless --native is given, in which case
WAV and FLAC are read in-process at their own rate.

With --script an external extractor is run instead:
  PYTHON SCRIPT --wav_path=FILE --feature_save_path=TMP.csv
inside "conda run -n ENV" when --env is set, and its CSV is printed.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if featFormatFlag != "csv" && featFormatFlag != "table" {
				return fmt.Errorf("unknown format %q (want csv or table)", featFormatFlag)
			}
			if !cmd.Flags().Changed("frame-sec") {
				featFrameSecFlag = cfg.FrameSec
			}

			var ex features.Extractor
			if featScriptFlag != "" {
				se := features.NewScriptExtractor(featScriptFlag, featEnvFlag)
				se.Interpreter = featPythonFlag
				ex = se
			} else {
				fe := features.NewFrameExtractor(featFrameSecFlag)
				fe.SampleRate = featSampleRateFlag
				if !featNativeFlag {
					opts := soxOptions()
					fe.Sox = &opts
				}
				ex = fe
			}

			t, err := ex.Extract(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			if featOutputFlag != "" {
				return writeTableFile(t, featOutputFlag, featFormatFlag)
			}
			return writeTable(t, cmd.OutOrStdout(), featFormatFlag)
		},
	}
	cmd.Flags().Float64Var(&featFrameSecFlag, "frame-sec", 1.0, "frame length in seconds (default $SOXCORPUS_FRAME_SEC or 1)")
	cmd.Flags().IntVar(&featSampleRateFlag, "sample-rate", 22050, "analysis sample rate when decoding with sox")
	cmd.Flags().BoolVar(&featNativeFlag, "native", false, "decode WAV/FLAC in-process instead of with sox")
	cmd.Flags().StringVar(&featScriptFlag, "script", "", "external feature extraction script")
	cmd.Flags().StringVar(&featPythonFlag, "python", "python", "interpreter for --script")
	cmd.Flags().StringVar(&featEnvFlag, "env", "", "conda environment to run --script in")
	cmd.Flags().StringVarP(&featFormatFlag, "format", "f", "csv", "output format: csv or table")
	cmd.Flags().StringVarP(&featOutputFlag, "output", "o", "", "write to this file instead of stdout")

	return cmd
}

func writeTable(t *features.Table, w io.Writer, format string) error {
	if format == "table" {
		t.WriteText(w)
		return nil
	}
	return t.WriteCSV(w)
}

// writeTableFile reports write, flush and close failures of path, which the
// table renderer alone would swallow.
func writeTableFile(t *features.Table, path, format string) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	bw := bufio.NewWriter(f)
	if err := writeTable(t, bw, format); err != nil {
		return err
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
