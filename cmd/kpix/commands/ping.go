package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/teranos/kpix/display"
	"github.com/teranos/kpix/logger"
	"github.com/teranos/kpix/store/elastic"
)

// PingCmd checks that the configured cluster is reachable and supported
var PingCmd = &cobra.Command{
	Use:   "ping",
	Short: "Check the connection to Elasticsearch",
	Long: `Contact the cluster at ES_HOST:ES_PORT, print its name and version and check
the version against elasticsearch.version_constraint.`,
	Args: cobra.NoArgs,
	RunE: runPing,
}

func init() {
	PingCmd.Flags().BoolP("json", "j", false, "Output cluster info as JSON")
}

// pingResult is the JSON shape of a successful ping
type pingResult struct {
	Address string `json:"address"`
	Cluster string `json:"cluster"`
	Version string `json:"version"`
}

func runPing(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	verbosity, _ := cmd.Flags().GetCount("verbose")

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	client, err := elastic.New(elasticConfig(cfg, verbosity), logger.ComponentLogger("elastic"))
	if err != nil {
		return err
	}

	info, err := client.Ping(ctx)
	if err != nil {
		return err
	}
	logger.Infow("Cluster reachable",
		logger.FieldOperation, "ping",
		logger.FieldAddress, client.Address(),
		logger.FieldVersion, info.Version.Number)

	if err := elastic.CheckVersion(info.Version.Number, cfg.Elasticsearch.VersionConstraint); err != nil {
		return err
	}

	result := pingResult{Address: client.Address(), Cluster: info.Name, Version: info.Version.Number}
	if display.ShouldOutputJSON(cmd) {
		return display.OutputJSON(cmd.OutOrStdout(), result)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Connected to cluster '%s' (Elasticsearch %s) at %s\n",
		result.Cluster, result.Version, result.Address)
	return nil
}
