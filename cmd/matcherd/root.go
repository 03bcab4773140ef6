// Command matcherd is the host process CLI around the matcher core: a
// `check` subcommand that runs one event through a configuration directory
// and prints the processed result, and a `daemon` subcommand that keeps a
// live Matcher snapshot hot-reloaded against the configuration directory.
// Neither subcommand dispatches actions to a bus.
package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/0x4d31/matcherd/internal/logutil"
)

var (
	flagConfigFile string
	flagVerbose    bool
)

var rootCmd = &cobra.Command{
	Use:   "matcherd",
	Short: "Rule-based event matcher",
	Long: `matcherd evaluates events against a directory tree of filters and
rulesets and renders matched rules' actions.`,
	PersistentPreRunE: initializeGlobals,
	SilenceUsage:      true,
	SilenceErrors:     true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&flagConfigFile, "config", "c", "", "path to the matcherd host config file (env: MATCHERD_CONFIG)")
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "increase output verbosity")

	rootCmd.AddCommand(newCheckCmd())
	rootCmd.AddCommand(newDaemonCmd())
	rootCmd.AddCommand(newVersionCmd())
}

func initializeGlobals(_ *cobra.Command, _ []string) error {
	if flagVerbose {
		logutil.SetVerbosity(logutil.VerboseLevel)
		logutil.SetTimestamps(true)
	}
	if flagConfigFile == "" {
		flagConfigFile = os.Getenv("MATCHERD_CONFIG")
	}
	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		logutil.Error("%v", err)
		os.Exit(1)
	}
}
