package cli

import (
	"io"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// NewRootCmd builds the repscore command tree. Results are written to out,
// logs go to stderr.
func NewRootCmd(out io.Writer) *cobra.Command {
	var verbose bool

	rootCmd := &cobra.Command{
		Use:           "repscore",
		Short:         "Count exercise repetitions and score workout quality",
		Long:          `Offline front-end of the repscore analysis engine. Use 'analyze --help' for input formats.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			log.SetOutput(cmd.ErrOrStderr())
			if verbose {
				log.SetLevel(log.DebugLevel)
			} else {
				log.SetLevel(log.WarnLevel)
			}
		},
	}
	rootCmd.SetOut(out)
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging to stderr")

	rootCmd.AddCommand(newExercisesCmd())
	rootCmd.AddCommand(newAnalyzeCmd())

	return rootCmd
}

// Execute runs the CLI with the process arguments.
func Execute(out io.Writer) error {
	return NewRootCmd(out).Execute()
}
