// Package source resolves the file an import reads from.
package source

import (
	"os"
	"path/filepath"
	"regexp"
	"strconv"

	"github.com/teranos/kpix/errors"
)

var exportPattern = regexp.MustCompile(`^combined_kpis_(\d+)\.csv$`)

// Resolve returns path unchanged when it names a file. When path is a
// directory it returns the combined_kpis_<timestamp>.csv inside it with the
// highest timestamp.
func Resolve(path string) (string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return "", errors.Mark(errors.Wrapf(err, "failed to stat source %s", path), errors.ErrSourceFile)
	}
	if !info.IsDir() {
		return path, nil
	}
	return Latest(path)
}

// Latest finds the newest combined_kpis_<timestamp>.csv in dir.
func Latest(dir string) (string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", errors.Mark(errors.Wrapf(err, "failed to list %s", dir), errors.ErrSourceFile)
	}

	var (
		best   string
		bestTS int64 = -1
	)
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		m := exportPattern.FindStringSubmatch(e.Name())
		if m == nil {
			continue
		}
		ts, err := strconv.ParseInt(m[1], 10, 64)
		if err != nil {
			continue
		}
		if ts > bestTS {
			best, bestTS = e.Name(), ts
		}
	}

	if best == "" {
		err := errors.Newf("no combined_kpis_*.csv files found in %s", dir)
		return "", errors.Mark(errors.WithHint(err, "pass a file path, or export the combined KPIs first"), errors.ErrSourceFile)
	}
	return filepath.Join(dir, best), nil
}
