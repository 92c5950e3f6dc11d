package commands

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/teranos/kpix/config"
	"github.com/teranos/kpix/display"
	"github.com/teranos/kpix/errors"
	"github.com/teranos/kpix/importer"
	"github.com/teranos/kpix/logger"
	"github.com/teranos/kpix/metrics"
	"github.com/teranos/kpix/store/elastic"
)

// ImportCmd imports a delimited KPI export into an Elasticsearch index
var ImportCmd = &cobra.Command{
	Use:   "import [source-path] [index-name]",
	Short: "Bulk-import a ;-separated KPI export into Elasticsearch",
	Long: `Read a ;-separated KPI export and write one document per data row into an
Elasticsearch index using a single bulk request per chunk.

Empty cells are dropped from the document. Column values are typed per column:
integers, floats and True/False become JSON numbers and booleans, everything
else stays a string. Documents get store-generated IDs, so importing the same
file twice appends a second copy.

If source-path is a directory, the newest combined_kpis_<timestamp>.csv in it
is imported.

Connection settings come from ES_HOST (default localhost) and ES_PORT
(default 9200). The index defaults to ES_INDEX, then "kpis".

Examples:
  kpix import                                      # default export into 'kpis'
  kpix import output/combined_kpis_1744632932827.csv
  kpix import output/ kpis_2025q1                  # newest export in output/
  kpix import export.csv --dry-run -v              # parse and report, write nothing
  ES_HOST=es.internal kpix import export.csv --refresh`,
	Args: cobra.MaximumNArgs(2),
	RunE: runImport,
}

func init() {
	ImportCmd.Flags().Bool("dry-run", false, "Parse the source and report what would be imported without contacting Elasticsearch")
	ImportCmd.Flags().Bool("refresh", false, "Refresh the index after each bulk request so documents are searchable immediately")
	ImportCmd.Flags().Bool("derive-period", false, "Add 'Period Start' and 'Period End' dates parsed from 'Reference Period'")
	ImportCmd.Flags().Int("chunk-size", 0, "Documents per bulk request (default from config, 500)")
	ImportCmd.Flags().String("delimiter", "", "Field delimiter (default from config, ';')")
	ImportCmd.Flags().BoolP("json", "j", false, "Output the import result as JSON")
}

// loadConfig and newStore are replaced in tests
var (
	loadConfig = config.Load

	newStore = func(cfg *config.Config, verbosity int) (importer.Store, error) {
		return elastic.New(elasticConfig(cfg, verbosity), logger.ComponentLogger("elastic"))
	}
)

func elasticConfig(cfg *config.Config, verbosity int) elastic.Config {
	return elastic.Config{
		Address:   cfg.Elasticsearch.Address(),
		Timeout:   time.Duration(cfg.Elasticsearch.TimeoutSeconds) * time.Second,
		ChunkSize: cfg.Import.ChunkSize,
		Refresh:   cfg.Import.Refresh,
		Trace:     logger.ShouldLogTrace(verbosity),

		RequestsPerSecond: cfg.Import.RequestsPerSecond,
	}
}

// applyImportFlags overlays explicitly set flags on the loaded configuration
func applyImportFlags(cmd *cobra.Command, cfg *config.Config) error {
	flags := cmd.Flags()
	if flags.Changed("refresh") {
		cfg.Import.Refresh, _ = flags.GetBool("refresh")
	}
	if flags.Changed("derive-period") {
		cfg.Import.DerivePeriod, _ = flags.GetBool("derive-period")
	}
	if flags.Changed("chunk-size") {
		cfg.Import.ChunkSize, _ = flags.GetInt("chunk-size")
	}
	if flags.Changed("delimiter") {
		cfg.Import.Delimiter, _ = flags.GetString("delimiter")
	}
	return cfg.Validate()
}

func runImport(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	ctx = logger.WithComponent(ctx, cmd.Name())
	dryRun, _ := cmd.Flags().GetBool("dry-run")
	verbosity, _ := cmd.Flags().GetCount("verbose")
	useJSON := display.ShouldOutputJSON(cmd)
	stdout, stderr := cmd.OutOrStdout(), cmd.ErrOrStderr()

	cfg, err := loadConfig()
	if err != nil {
		return errors.Wrap(err, "failed to load config")
	}
	if err := applyImportFlags(cmd, cfg); err != nil {
		return err
	}

	source := cfg.Import.Source
	if len(args) > 0 {
		source = args[0]
	}
	index := cfg.Elasticsearch.Index
	if len(args) > 1 {
		index = args[1]
	}

	status := statusPrinter(stderr, verbosity, useJSON)
	if dryRun {
		status.Warning.Println("DRY RUN MODE: nothing will be written")
	}
	status.Info.Printfln("Source: %s", source)
	status.Info.Printfln("Target: %s/%s", cfg.Elasticsearch.Address(), index)

	var store importer.Store
	if !dryRun {
		store, err = newStore(cfg, verbosity)
		if err != nil {
			return err
		}
	}

	im := importer.New(store, importer.Options{
		Delimiter:    cfg.DelimiterRune(),
		NAValues:     cfg.Import.NAValues,
		DerivePeriod: cfg.Import.DerivePeriod,
		DryRun:       dryRun,
	}, logger.ComponentLogger("importer"))

	result, runErr := im.Run(ctx, source, index)

	collector := metrics.NewCollector(logger.ComponentLogger("metrics"))
	collector.Observe(result, runErr)
	if !dryRun {
		if err := collector.Push(ctx, cfg.Metrics.PushgatewayURL, cfg.Metrics.Job, index); err != nil {
			logger.LoggerFromContext(ctx).Warnw("Metrics push failed",
				logger.FieldAddress, cfg.Metrics.PushgatewayURL,
				logger.FieldError, err)
		}
	}

	if useJSON {
		if err := display.OutputJSON(stdout, result); err != nil {
			return err
		}
		return runErr
	}
	if runErr != nil {
		if result.Indexed > 0 || result.Failed > 0 {
			status.Warning.Printfln("%d of %d documents indexed before the failure", result.Indexed, result.Submitted)
		}
		return runErr
	}

	if dryRun {
		fmt.Fprintf(stdout, "Would import %d records into index '%s'\n", result.Submitted, index)
		return nil
	}
	status.Success.Printfln("Done in %s", result.Duration().Round(time.Millisecond))
	fmt.Fprintln(stdout, result.Message)
	return nil
}

// statusPrinters write human progress lines to stderr; they are silent
// unless -v was given, and always silent in JSON mode.
type statusPrinters struct {
	Info    *pterm.PrefixPrinter
	Warning *pterm.PrefixPrinter
	Success *pterm.PrefixPrinter
}

func statusPrinter(w io.Writer, verbosity int, useJSON bool) statusPrinters {
	if useJSON || verbosity < logger.VerbosityInfo {
		w = io.Discard
	}
	return statusPrinters{
		Info:    pterm.Info.WithWriter(w),
		Warning: pterm.Warning.WithWriter(w),
		Success: pterm.Success.WithWriter(w),
	}
}
