package cmd

import (
	"github.com/spf13/cobra"

	"github.com/intune-audio/intune/logging"
)

var verbose bool

var rootCmd = &cobra.Command{
	Use:   "intune",
	Short: "Real-time singing pitch analysis and performance grading",
	Long: `intune estimates the fundamental frequency of a sung performance,
tracks it against a reference melody, and grades pitch accuracy, rhythm
and stability.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if verbose {
			logging.SetLevel(logging.DebugLevel)
		}
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
}

func Execute() {
	cobra.CheckErr(rootCmd.Execute())
}
