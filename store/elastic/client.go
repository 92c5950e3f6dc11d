// Package elastic implements the importer's Store on the Elasticsearch bulk API.
package elastic

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/Masterminds/semver/v3"
	"github.com/elastic/elastic-transport-go/v8/elastictransport"
	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/teranos/kpix/errors"
	"github.com/teranos/kpix/internal/httpclient"
	"github.com/teranos/kpix/logger"
)

// DefaultChunkSize is the number of index actions per bulk request body
const DefaultChunkSize = 500

// Config addresses an Elasticsearch cluster
type Config struct {
	Address   string        // e.g. http://localhost:9200
	Timeout   time.Duration // per request; 0 = client default
	ChunkSize int           // <= 0 selects DefaultChunkSize
	Refresh   bool          // refresh=true on every bulk request
	// RequestsPerSecond caps the bulk request rate; 0 = unlimited
	RequestsPerSecond float64

	// Transport overrides the HTTP transport, mainly for tests
	Transport http.RoundTripper
	// Trace logs full request and response bodies to stderr
	Trace bool
}

// Client is a handle on one cluster. It is created once per invocation and
// passed to whoever needs it.
type Client struct {
	es      *elasticsearch.Client
	cfg     Config
	limiter *rate.Limiter // nil = unlimited
	logger  *zap.SugaredLogger
}

// New creates a client. No request is made until the first call.
func New(cfg Config, log *zap.SugaredLogger) (*Client, error) {
	if cfg.ChunkSize <= 0 {
		cfg.ChunkSize = DefaultChunkSize
	}
	if log == nil {
		log = logger.ComponentLogger("elastic")
	}

	if err := httpclient.ValidateBaseURL(cfg.Address); err != nil {
		return nil, err
	}
	if cfg.Transport == nil {
		cfg.Transport = httpclient.NewTransport(cfg.Timeout)
	}

	esCfg := elasticsearch.Config{
		Addresses: []string{cfg.Address},
		Transport: cfg.Transport,
	}
	if cfg.Trace {
		esCfg.Logger = &elastictransport.ColorLogger{
			Output:             os.Stderr,
			EnableRequestBody:  true,
			EnableResponseBody: true,
		}
	}

	es, err := elasticsearch.NewClient(esCfg)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to create Elasticsearch client for %s", cfg.Address)
	}
	c := &Client{es: es, cfg: cfg, logger: log}
	if cfg.RequestsPerSecond > 0 {
		c.limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), 1)
	}
	return c, nil
}

// Address returns the cluster URL the client talks to
func (c *Client) Address() string {
	return c.cfg.Address
}

func (c *Client) requestContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.cfg.Timeout > 0 {
		return context.WithTimeout(ctx, c.cfg.Timeout)
	}
	return context.WithCancel(ctx)
}

func (c *Client) connectionError(err error) error {
	err = errors.Wrapf(err, "failed to reach Elasticsearch at %s", c.cfg.Address)
	err = errors.WithHint(err, "check that the cluster is running and ES_HOST/ES_PORT point at it")
	return errors.Mark(err, errors.ErrConnection)
}

// ClusterInfo is the subset of the root endpoint response kpix reports
type ClusterInfo struct {
	Name        string `json:"cluster_name"`
	ClusterUUID string `json:"cluster_uuid"`
	Version     struct {
		Number       string `json:"number"`
		Distribution string `json:"distribution,omitempty"`
	} `json:"version"`
}

// Ping fetches cluster information from the root endpoint
func (c *Client) Ping(ctx context.Context) (*ClusterInfo, error) {
	ctx, cancel := c.requestContext(ctx)
	defer cancel()

	res, err := c.es.Info(c.es.Info.WithContext(ctx))
	if err != nil {
		return nil, c.connectionError(err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return nil, errors.Mark(errors.Newf("cluster info request failed: %s", res.Status()), errors.ErrConnection)
	}

	var info ClusterInfo
	if err := json.NewDecoder(res.Body).Decode(&info); err != nil {
		return nil, errors.Wrap(err, "failed to decode cluster info")
	}
	return &info, nil
}

// CheckVersion reports whether version satisfies constraint. An empty
// constraint accepts any version.
func CheckVersion(version, constraint string) error {
	if constraint == "" {
		return nil
	}
	v, err := semver.NewVersion(version)
	if err != nil {
		return errors.Wrapf(err, "cluster reported unparseable version %q", version)
	}
	c, err := semver.NewConstraint(constraint)
	if err != nil {
		return errors.Wrapf(err, "invalid version constraint %q", constraint)
	}
	if !c.Check(v) {
		return errors.WithHintf(errors.Newf("cluster version %s does not satisfy %s", version, constraint),
			"set elasticsearch.version_constraint to accept this cluster")
	}
	return nil
}

func drain(res *esapi.Response) {
	_, _ = io.Copy(io.Discard, res.Body)
	res.Body.Close()
}
