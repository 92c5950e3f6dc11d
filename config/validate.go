package config

import (
	"unicode/utf8"

	"github.com/Masterminds/semver/v3"

	"github.com/teranos/kpix/errors"
)

// Validate checks that the configuration is valid
func (c *Config) Validate() error {
	if c.Elasticsearch.Host == "" {
		return invalid(errors.New("elasticsearch.host cannot be empty"))
	}
	if c.Elasticsearch.Port < 1 || c.Elasticsearch.Port > 65535 {
		return invalid(errors.Newf("elasticsearch.port must be in 1..65535, got %d", c.Elasticsearch.Port))
	}
	if c.Elasticsearch.Index == "" {
		return invalid(errors.New("elasticsearch.index cannot be empty"))
	}
	// 0 = client default
	if c.Elasticsearch.TimeoutSeconds < 0 {
		return invalid(errors.Newf("elasticsearch.timeout_seconds must be >= 0, got %d", c.Elasticsearch.TimeoutSeconds))
	}
	if c.Elasticsearch.VersionConstraint != "" {
		if _, err := semver.NewConstraint(c.Elasticsearch.VersionConstraint); err != nil {
			return invalid(errors.Wrapf(err, "elasticsearch.version_constraint %q", c.Elasticsearch.VersionConstraint))
		}
	}

	if utf8.RuneCountInString(c.Import.Delimiter) != 1 {
		return invalid(errors.Newf("import.delimiter must be a single character, got %q", c.Import.Delimiter))
	}
	if c.Import.ChunkSize <= 0 {
		return invalid(errors.Newf("import.chunk_size must be > 0, got %d", c.Import.ChunkSize))
	}
	if c.Import.RequestsPerSecond < 0 {
		return invalid(errors.Newf("import.requests_per_second must be >= 0, got %g", c.Import.RequestsPerSecond))
	}

	return nil
}

func invalid(err error) error {
	return errors.Mark(err, errors.ErrInvalidConfig)
}

// DelimiterRune returns the configured delimiter as a rune. Only valid after Validate.
func (c *Config) DelimiterRune() rune {
	r, _ := utf8.DecodeRuneInString(c.Import.Delimiter)
	return r
}
