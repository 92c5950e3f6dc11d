// Package httpclient builds the HTTP plumbing used to talk to the cluster.
package httpclient

import (
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/teranos/kpix/errors"
)

// Transport defaults
const (
	DefaultDialTimeout         = 10 * time.Second
	DefaultKeepAlive           = 30 * time.Second
	DefaultIdleConnTimeout     = 90 * time.Second
	DefaultTLSHandshakeTimeout = 10 * time.Second
)

// allowedSchemes are the schemes a cluster address may use
var allowedSchemes = []string{"http", "https"}

// NewTransport returns a transport for a single cluster. responseTimeout
// bounds the wait for response headers; 0 leaves it unbounded so a large
// bulk request is limited only by the request context.
func NewTransport(responseTimeout time.Duration) *http.Transport {
	dialer := &net.Dialer{
		Timeout:   DefaultDialTimeout,
		KeepAlive: DefaultKeepAlive,
	}
	return &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		DialContext:           dialer.DialContext,
		MaxIdleConnsPerHost:   4,
		IdleConnTimeout:       DefaultIdleConnTimeout,
		TLSHandshakeTimeout:   DefaultTLSHandshakeTimeout,
		ResponseHeaderTimeout: responseTimeout,
		ExpectContinueTimeout: 1 * time.Second,
	}
}

// ValidateBaseURL checks that raw is a bare http(s)://host:port address.
// Credentials, paths and queries are rejected: the cluster is addressed by
// host and port only.
func ValidateBaseURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return invalid(errors.Wrapf(err, "invalid cluster address %q", raw))
	}

	scheme := strings.ToLower(u.Scheme)
	allowed := false
	for _, s := range allowedSchemes {
		if scheme == s {
			allowed = true
			break
		}
	}
	if !allowed {
		return invalid(errors.Newf("cluster address %q: scheme %q not allowed (allowed: %v)", raw, u.Scheme, allowedSchemes))
	}
	if u.User != nil {
		return invalid(errors.Newf("cluster address %q must not contain credentials", raw))
	}
	if u.Hostname() == "" {
		return invalid(errors.Newf("cluster address %q has no host", raw))
	}
	if (u.Path != "" && u.Path != "/") || u.RawQuery != "" {
		return invalid(errors.Newf("cluster address %q must not have a path or query", raw))
	}
	return nil
}

func invalid(err error) error {
	return errors.WithHint(errors.Mark(err, errors.ErrInvalidConfig), "check ES_HOST and ES_PORT")
}
