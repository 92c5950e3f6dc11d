// Package metrics records batch-job metrics for imports and pushes them to a
// Prometheus Pushgateway.
package metrics

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/push"
	"go.uber.org/zap"

	"github.com/teranos/kpix/errors"
	"github.com/teranos/kpix/importer"
	"github.com/teranos/kpix/logger"
)

const namespace = "kpix"

// Collector holds the metrics of one import run. Each Collector owns its
// registry so a push carries only this run's series.
type Collector struct {
	registry *prometheus.Registry

	documentsTotal *prometheus.CounterVec
	duration       prometheus.Gauge
	lastSuccess    prometheus.Gauge
	lastFailure    *prometheus.GaugeVec

	logger *zap.SugaredLogger
}

// NewCollector creates a collector with a private registry
func NewCollector(log *zap.SugaredLogger) *Collector {
	if log == nil {
		log = logger.ComponentLogger("metrics")
	}
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	c := &Collector{registry: reg, logger: log}

	c.documentsTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "import",
			Name:      "documents_total",
			Help:      "Documents handled by the import, by result",
		},
		[]string{"result"},
	)

	c.duration = factory.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: "import",
		Name:      "duration_seconds",
		Help:      "Wall time of the last import in seconds",
	})

	c.lastSuccess = factory.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: "import",
		Name:      "last_success_timestamp_seconds",
		Help:      "Unix time of the last successful import",
	})

	c.lastFailure = factory.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "import",
			Name:      "last_failure_timestamp_seconds",
			Help:      "Unix time of the last failed import, by error category",
		},
		[]string{"category"},
	)

	return c
}

// Registry exposes the collector's registry
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// Observe records the outcome of an import. A dry run records nothing.
func (c *Collector) Observe(result *importer.Result, err error) {
	if result == nil || result.DryRun {
		return
	}
	c.documentsTotal.WithLabelValues("indexed").Add(float64(result.Indexed))
	c.documentsTotal.WithLabelValues("failed").Add(float64(result.Failed))
	c.duration.Set(result.Duration().Seconds())

	if err != nil {
		c.lastFailure.WithLabelValues(errors.Category(err)).Set(float64(result.EndTime.Unix()))
		return
	}
	c.lastSuccess.Set(float64(result.EndTime.Unix()))
}

// Push sends the registry to the Pushgateway at url, grouped by index.
// An empty url disables pushing.
func (c *Collector) Push(ctx context.Context, url, job, index string) error {
	if url == "" {
		return nil
	}
	start := time.Now()

	err := push.New(url, job).
		Gatherer(c.registry).
		Grouping("index", index).
		PushContext(ctx)
	if err != nil {
		return errors.Wrapf(err, "failed to push metrics to %s", url)
	}

	c.logger.Debugw("Pushed import metrics",
		logger.FieldAddress, url,
		logger.FieldIndex, index,
		logger.FieldDurationMS, time.Since(start).Milliseconds())
	return nil
}
