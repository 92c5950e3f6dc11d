package config

import (
	"sort"

	"github.com/BurntSushi/toml"

	"github.com/teranos/kpix/errors"
)

// CheckFile decodes a TOML config file strictly and returns the keys that do
// not correspond to any configuration option. Viper ignores such keys, so a
// typo like "chunksize" would otherwise silently fall back to the default.
func CheckFile(path string) ([]string, error) {
	var cfg Config
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return nil, errors.Mark(errors.Wrapf(err, "failed to parse %s", path), errors.ErrInvalidConfig)
	}

	var unknown []string
	for _, key := range meta.Undecoded() {
		unknown = append(unknown, key.String())
	}
	sort.Strings(unknown)
	return unknown, nil
}
