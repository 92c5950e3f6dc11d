package metrics

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/teranos/kpix/errors"
	"github.com/teranos/kpix/importer"
)

func newResult(indexed, failed int) *importer.Result {
	start := time.Unix(1744632932, 0)
	return &importer.Result{
		Index:     "kpis",
		Indexed:   indexed,
		Failed:    failed,
		StartTime: start,
		EndTime:   start.Add(1500 * time.Millisecond),
	}
}

func TestObserve_Success(t *testing.T) {
	c := NewCollector(zap.NewNop().Sugar())

	c.Observe(newResult(42, 0), nil)

	assert.Equal(t, 42.0, testutil.ToFloat64(c.documentsTotal.WithLabelValues("indexed")))
	assert.Equal(t, 0.0, testutil.ToFloat64(c.documentsTotal.WithLabelValues("failed")))
	assert.Equal(t, 1.5, testutil.ToFloat64(c.duration))
	assert.Equal(t, float64(1744632933), testutil.ToFloat64(c.lastSuccess))
}

func TestObserve_Failure(t *testing.T) {
	c := NewCollector(zap.NewNop().Sugar())

	err := errors.Mark(errors.New("rejected"), errors.ErrBulkWrite)
	c.Observe(newResult(3, 2), err)

	assert.Equal(t, 3.0, testutil.ToFloat64(c.documentsTotal.WithLabelValues("indexed")))
	assert.Equal(t, 2.0, testutil.ToFloat64(c.documentsTotal.WithLabelValues("failed")))
	assert.Equal(t, 0.0, testutil.ToFloat64(c.lastSuccess))
	assert.Equal(t, float64(1744632933), testutil.ToFloat64(c.lastFailure.WithLabelValues("bulk")))
}

func TestObserve_DryRunRecordsNothing(t *testing.T) {
	c := NewCollector(zap.NewNop().Sugar())

	r := newResult(0, 0)
	r.DryRun = true
	c.Observe(r, nil)
	c.Observe(nil, nil)

	assert.Equal(t, 0, testutil.CollectAndCount(c.documentsTotal))
}

func TestPush(t *testing.T) {
	var path, body string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		data, _ := io.ReadAll(r.Body)
		body = string(data)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := NewCollector(zap.NewNop().Sugar())
	c.Observe(newResult(7, 0), nil)

	require.NoError(t, c.Push(context.Background(), srv.URL, "kpix_import", "kpis"))
	assert.Equal(t, "/metrics/job/kpix_import/index/kpis", path)
	assert.Contains(t, body, "kpix_import_documents_total")
}

func TestPush_DisabledWithoutURL(t *testing.T) {
	c := NewCollector(zap.NewNop().Sugar())
	assert.NoError(t, c.Push(context.Background(), "", "kpix_import", "kpis"))
}

func TestPush_GatewayError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := NewCollector(zap.NewNop().Sugar())
	err := c.Push(context.Background(), srv.URL, "kpix_import", "kpis")
	require.Error(t, err)
	assert.Contains(t, err.Error(), srv.URL)
}
