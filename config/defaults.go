package config

import (
	"github.com/spf13/viper"
)

// Defaults for the importer
const (
	DefaultHost      = "localhost"
	DefaultPort      = 9200
	DefaultIndex     = "kpis"
	DefaultSource    = "output/combined_kpis_1744632932827.csv"
	DefaultDelimiter = ";"
	// Matches the chunk size of the bulk helper the importer was first written against.
	DefaultChunkSize         = 500
	DefaultVersionConstraint = ">= 7.11.0-0"
	DefaultMetricsJob        = "kpix_import"
)

// SetDefaults configures default values for all configuration options
func SetDefaults(v *viper.Viper) {
	v.SetDefault("elasticsearch.host", DefaultHost)
	v.SetDefault("elasticsearch.port", DefaultPort)
	v.SetDefault("elasticsearch.index", DefaultIndex)
	v.SetDefault("elasticsearch.timeout_seconds", 0)
	v.SetDefault("elasticsearch.version_constraint", DefaultVersionConstraint)

	v.SetDefault("import.source", DefaultSource)
	v.SetDefault("import.delimiter", DefaultDelimiter)
	v.SetDefault("import.chunk_size", DefaultChunkSize)
	v.SetDefault("import.refresh", false)
	v.SetDefault("import.derive_period", false)
	v.SetDefault("import.requests_per_second", 0.0)

	v.SetDefault("metrics.pushgateway_url", "")
	v.SetDefault("metrics.job", DefaultMetricsJob)
}

// BindEnvVars binds the historical connection variables. Everything else is
// reachable through the KPIX_ prefix (e.g. KPIX_IMPORT_CHUNK_SIZE).
func BindEnvVars(v *viper.Viper) {
	_ = v.BindEnv("elasticsearch.host", "ES_HOST")
	_ = v.BindEnv("elasticsearch.port", "ES_PORT")
	_ = v.BindEnv("elasticsearch.index", "ES_INDEX")
	_ = v.BindEnv("metrics.pushgateway_url", "KPIX_PUSHGATEWAY_URL")
}
