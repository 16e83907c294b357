// Package cli provides the soxcorpus command tree.
package cli

import (
	"context"
	"log"
	"time"

	"github.com/spf13/cobra"

	sox "github.com/thadeu/soxcorpus"
	"github.com/thadeu/soxcorpus/internal/config"
)

var cfg = config.Default()

var envFileFlag string
var soxPathFlag string
var timeoutFlag time.Duration
var verboseFlag bool

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "soxcorpus",
		Short: "Simulate phone-line audio over a speech corpus",
		Long: `soxcorpus mirrors a speech corpus into a new directory tree. Every .wav and
.flac file is band-limited, companded and round-tripped through GSM full-rate
with sox; every other file is copied unchanged.

Settings may also come from the environment or a .env file:
  SOX_PATH                sox binary
  SOX_TIMEOUT             per-process limit, e.g. 2m
  SOXCORPUS_MAX_FAILURES  consecutive sox failures tolerated with --keep-going
  SOXCORPUS_FRAME_SEC     default --frame-sec for features`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			loaded, err := config.Load(envFileFlag)
			if err != nil {
				return err
			}
			cfg = loaded

			if !cmd.Flags().Changed("sox") {
				soxPathFlag = cfg.SoxPath
			}
			if !cmd.Flags().Changed("timeout") {
				timeoutFlag = cfg.Timeout
			}
			return nil
		},
	}
	cmd.PersistentFlags().StringVar(&envFileFlag, "env-file", ".env", "file of KEY=VALUE settings loaded before the environment is read")
	cmd.PersistentFlags().StringVar(&soxPathFlag, "sox", "sox", "sox binary (default $SOX_PATH or sox)")
	cmd.PersistentFlags().DurationVar(&timeoutFlag, "timeout", 0, "limit for each sox process, 0 for none (default $SOX_TIMEOUT)")
	cmd.PersistentFlags().BoolVarP(&verboseFlag, "verbose", "v", false, "show sox diagnostics and process stats")

	return cmd
}

func newCmdTree() *cobra.Command {
	root := newRootCmd()
	root.AddCommand(newDegradeCmd(), newFeaturesCmd())
	return root
}

// Execute runs soxcorpus with args (without the program name).
func Execute(ctx context.Context, args []string) error {
	root := newCmdTree()
	root.SetArgs(rewriteLegacyArgs(args))
	return root.ExecuteContext(ctx)
}

func soxOptions() sox.ConversionOptions {
	opts := sox.DefaultOptions()
	opts.SoxPath = soxPathFlag
	opts.Timeout = timeoutFlag
	opts.Verbose = verboseFlag
	return opts
}

func logger(cmd *cobra.Command) *log.Logger {
	return log.New(cmd.ErrOrStderr(), log.Prefix(), log.Flags())
}
