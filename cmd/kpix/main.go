package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/teranos/kpix/cmd/kpix/commands"
	"github.com/teranos/kpix/errors"
	"github.com/teranos/kpix/logger"
)

var logJSON bool

var rootCmd = &cobra.Command{
	Use:   "kpix",
	Short: "kpix - KPI export importer for Elasticsearch",
	Long: `kpix - bulk-import ;-separated KPI exports into Elasticsearch.

Available commands:
  import  - Import a KPI export into an index
  ping    - Check the connection to Elasticsearch
  config  - Show, create and check configuration
  version - Show build information

Examples:
  kpix import                                   # default export into 'kpis'
  kpix import output/combined_kpis_1744632932827.csv kpis
  kpix ping                                     # check ES_HOST:ES_PORT
  kpix config show                              # effective configuration`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		verbosity, _ := cmd.Flags().GetCount("verbose")
		if err := logger.Initialize(logJSON, verbosity); err != nil {
			return errors.Wrap(err, "failed to initialize logger")
		}
		logger.Debugw("Logger initialized", "verbosity", logger.LevelName(verbosity))
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().CountP("verbose", "v", "Increase output verbosity (repeat for more detail: -v, -vv, -vvv)")
	rootCmd.PersistentFlags().BoolVar(&logJSON, "log-json", false, "Write logs to stderr as JSON")

	rootCmd.AddCommand(commands.ImportCmd)
	rootCmd.AddCommand(commands.PingCmd)
	rootCmd.AddCommand(commands.ConfigCmd)
	rootCmd.AddCommand(commands.VersionCmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	err := rootCmd.ExecuteContext(ctx)
	stop()
	logger.Cleanup()

	if err != nil {
		printError(err)
		os.Exit(1)
	}
}

// printError reports err with any hints attached along the way
func printError(err error) {
	pterm.Error.WithWriter(os.Stderr).Println(err.Error())
	for _, hint := range errors.GetAllHints(err) {
		pterm.Info.WithWriter(os.Stderr).Println(hint)
	}
}
