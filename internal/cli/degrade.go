package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	sox "github.com/thadeu/soxcorpus"
	"github.com/thadeu/soxcorpus/corpus"
	"github.com/thadeu/soxcorpus/gsm"
	"github.com/thadeu/soxcorpus/internal/progress"
)

var newFilter = func(opts sox.ConversionOptions, breaker *sox.CircuitBreaker) gsm.Filter {
	f := gsm.NewSoxFilter(opts)
	f.Breaker = breaker
	return f
}

var newObserver = func(w io.Writer, verbose bool) corpus.Observer {
	return progress.New(w, verbose)
}

var degradeInFlag string
var degradeOutFlag string
var degradeNormFlag bool
var degradeKeepGoingFlag bool
var degradeMaxFailuresFlag int

func newDegradeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "degrade --in DIR --out DIR",
		Short: "Mirror a corpus with every .wav/.flac passed through GSM",
		Long: `Mirror the input corpus into the output directory.

Files ending in .wav or .flac are encoded to 8kHz mono GSM after a 4kHz
lowpass and compander, then decoded back to 16-bit WAV; .flac outputs are
renamed to .wav. All other files are copied byte for byte.

sox is checked before anything is written. By default the first failing file
stops the run; with --keep-going failures are listed at the end and the exit
status is non-zero.

The flags -in_corpus_path, -out_corpus_path and -norm are accepted as
aliases of --in, --out and --norm.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !cmd.Flags().Changed("max-failures") {
				degradeMaxFailuresFlag = cfg.MaxFailures
			}

			opts := corpus.Options{
				Normalize: degradeNormFlag,
				Policy:    corpus.PolicyHalt,
				Observer:  newObserver(cmd.ErrOrStderr(), verboseFlag),
			}
			var breaker *sox.CircuitBreaker
			if degradeKeepGoingFlag {
				opts.Policy = corpus.PolicySkip
				breaker = sox.NewCircuitBreakerWithConfig(degradeMaxFailuresFlag, 0)
			}

			t := corpus.New(newFilter(soxOptions(), breaker), opts)
			report, err := t.Run(cmd.Context(), degradeInFlag, degradeOutFlag)

			l := logger(cmd)
			for _, fe := range report.Failed {
				l.Printf("FAILED %v", fe)
			}
			if verboseFlag {
				st := sox.GetMonitor().GetStats()
				l.Printf("sox: %d processes, %d failed, %.1f%% success", st.TotalConversions, st.FailedConversions, st.SuccessRate)
			}

			if err != nil {
				return err
			}
			if n := len(report.Failed); n > 0 {
				return fmt.Errorf("%d of %d files failed", n, report.Total)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&degradeInFlag, "in", "", "input corpus directory")
	cmd.Flags().StringVar(&degradeOutFlag, "out", "", "output corpus directory")
	cmd.Flags().BoolVar(&degradeNormFlag, "norm", false, "normalize audio before encoding")
	cmd.Flags().BoolVarP(&degradeKeepGoingFlag, "keep-going", "k", false, "continue past failing files")
	cmd.Flags().IntVar(&degradeMaxFailuresFlag, "max-failures", 5, "with --keep-going, stop after this many consecutive sox failures, 0 for never (default $SOXCORPUS_MAX_FAILURES)")
	_ = cmd.MarkFlagRequired("in")
	_ = cmd.MarkFlagRequired("out")

	return cmd
}
