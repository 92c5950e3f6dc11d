// Package config loads kpix configuration from defaults, an optional TOML
// file and the environment, in that order of precedence.
package config

import "fmt"

// Config represents the kpix configuration
type Config struct {
	Elasticsearch ElasticsearchConfig `mapstructure:"elasticsearch" toml:"elasticsearch" yaml:"elasticsearch"`
	Import        ImportConfig        `mapstructure:"import" toml:"import" yaml:"import"`
	Metrics       MetricsConfig       `mapstructure:"metrics" toml:"metrics" yaml:"metrics"`
}

// ElasticsearchConfig addresses the destination store
type ElasticsearchConfig struct {
	// ES_HOST
	Host string `mapstructure:"host" toml:"host" yaml:"host"`
	// ES_PORT
	Port int `mapstructure:"port" toml:"port" yaml:"port"`
	// ES_INDEX, used when no index argument is given
	Index string `mapstructure:"index" toml:"index" yaml:"index"`
	// 0 = client default
	TimeoutSeconds int `mapstructure:"timeout_seconds" toml:"timeout_seconds" yaml:"timeout_seconds"`
	// semver constraint checked by ping
	VersionConstraint string `mapstructure:"version_constraint" toml:"version_constraint" yaml:"version_constraint"`
}

// ImportConfig controls how source files are read and submitted
type ImportConfig struct {
	Source    string `mapstructure:"source" toml:"source" yaml:"source"`
	Delimiter string `mapstructure:"delimiter" toml:"delimiter" yaml:"delimiter"` // single character
	ChunkSize int    `mapstructure:"chunk_size" toml:"chunk_size" yaml:"chunk_size"`
	Refresh   bool   `mapstructure:"refresh" toml:"refresh" yaml:"refresh"`
	// Reference Period -> Period Start/End
	DerivePeriod bool `mapstructure:"derive_period" toml:"derive_period" yaml:"derive_period"`
	// nil = built-in NA markers
	NAValues []string `mapstructure:"na_values" toml:"na_values,omitempty" yaml:"na_values,omitempty"`
	// bulk requests per second, 0 = unlimited
	RequestsPerSecond float64 `mapstructure:"requests_per_second" toml:"requests_per_second" yaml:"requests_per_second"`
}

// MetricsConfig configures the Prometheus Pushgateway for batch-job metrics
type MetricsConfig struct {
	PushgatewayURL string `mapstructure:"pushgateway_url" toml:"pushgateway_url" yaml:"pushgateway_url"` // empty = disabled
	Job            string `mapstructure:"job" toml:"job" yaml:"job"`
}

// File system constants
const (
	DefaultDirPermissions  = 0755
	DefaultFilePermissions = 0644
)

// Address returns the HTTP base URL of the store.
func (e ElasticsearchConfig) Address() string {
	return fmt.Sprintf("http://%s:%d", e.Host, e.Port)
}

// String returns a string representation of the config
func (c *Config) String() string {
	return fmt.Sprintf("Config{Elasticsearch: %s, Index: %s, Import: {Source: %s, ChunkSize: %d}}",
		c.Elasticsearch.Address(), c.Elasticsearch.Index, c.Import.Source, c.Import.ChunkSize)
}
