package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/2beens/repscore/internal/exercise"

	"github.com/spf13/cobra"
)

func newExercisesCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "exercises",
		Short: "List the supported exercises and their thresholds",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			profiles := exercise.All()
			if asJSON {
				return writeJSON(cmd.OutOrStdout(), profiles)
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tNAME\tJOINT\tUP\tDOWN")
			for _, p := range profiles {
				fmt.Fprintf(w, "%s\t%s\t%s-%s-%s\t%.0f\t%.0f\n",
					p.ID, p.Name, p.Landmarks[0], p.Landmarks[1], p.Landmarks[2], p.UpThreshold, p.DownThreshold)
			}
			return w.Flush()
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the registry as JSON")

	return cmd
}
