// Package httpclient is the HTTP transport used by downloads.
//
// It owns connection pooling and every timeout: dialing, waiting for
// response headers and waiting between body reads. The download core
// only sees the download.Getter interface.
package httpclient

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/veranemoloko/downloadtask/internal/download"
)

// Options configures the HTTP client.
type Options struct {
	// ConnectTimeout bounds dialing and the TLS handshake.
	// Default: 60s
	ConnectTimeout time.Duration

	// ReadTimeout bounds the wait for response headers and the gap
	// between two successful body reads. Zero disables the body check.
	// Default: 60s
	ReadTimeout time.Duration

	// MaxIdleConnsPerHost sets the maximum idle connections per host.
	// Default: 16
	MaxIdleConnsPerHost int

	// UserAgent is sent with every request when set.
	UserAgent string
}

// DefaultOptions returns options with sensible defaults.
func DefaultOptions() Options {
	return Options{
		ConnectTimeout:      60 * time.Second,
		ReadTimeout:         60 * time.Second,
		MaxIdleConnsPerHost: 16,
	}
}

// Client issues GET requests for downloads. It is safe for concurrent use
// and is meant to be shared so connections are reused.
type Client struct {
	client *http.Client
	opts   Options
}

var _ download.Getter = (*Client)(nil)

// NewClient creates a new HTTP client with the given options.
func NewClient(opts Options) *Client {
	dialer := &net.Dialer{
		Timeout:   opts.ConnectTimeout,
		KeepAlive: 30 * time.Second,
	}
	transport := &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		DialContext:           dialer.DialContext,
		TLSHandshakeTimeout:   opts.ConnectTimeout,
		ResponseHeaderTimeout: opts.ReadTimeout,
		MaxIdleConnsPerHost:   opts.MaxIdleConnsPerHost,
		MaxIdleConns:          opts.MaxIdleConnsPerHost * 2,
		IdleConnTimeout:       90 * time.Second,
		DisableCompression:    true, // Content-Length must describe the bytes we write
	}

	return &Client{
		// Stalls are caught by the read watchdog, not a total Timeout.
		client: &http.Client{Transport: transport},
		opts:   opts,
	}
}

// Get performs a GET request. Status codes are not interpreted here; the
// caller owns the returned body.
func (c *Client) Get(ctx context.Context, url string) (*download.Response, error) {
	ctx, wd := newWatchdog(ctx, c.opts.ReadTimeout)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		wd.stop()
		return nil, fmt.Errorf("create request: %w", err)
	}
	if c.opts.UserAgent != "" {
		req.Header.Set("User-Agent", c.opts.UserAgent)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		wd.stop()
		return nil, wd.explain(err)
	}

	return &download.Response{
		StatusCode:    resp.StatusCode,
		ContentLength: resp.ContentLength,
		Body:          &watchedBody{ReadCloser: resp.Body, wd: wd},
	}, nil
}
