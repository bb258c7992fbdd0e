// Package upstream talks to the market-data lookup HTTP API.
package upstream

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"time"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"

	"github.com/shubham-shewale/options-relay/pkg/config"
	"github.com/shubham-shewale/options-relay/pkg/models"
)

const maxBodyBytes = 1 << 20

// HTTPClient describes an HTTP client.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

type Client struct {
	baseURL string
	token   string
	http    HTTPClient
	breaker *gobreaker.CircuitBreaker
	logger  *zap.Logger
}

type Option func(*Client)

// WithHTTPClient replaces the pooled default client.
func WithHTTPClient(h HTTPClient) Option {
	return func(c *Client) { c.http = h }
}

func NewClient(cfg config.UpstreamConfig, logger *zap.Logger, opts ...Option) *Client {
	c := &Client{
		baseURL: cfg.BaseURL,
		token:   cfg.Token,
		http:    newHTTPClient(cfg.Timeout),
		logger:  logger,
	}
	failures := cfg.BreakerFailures
	c.breaker = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "upstream",
		MaxRequests: 1,
		Timeout:     cfg.BreakerTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= failures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("Circuit breaker state changed",
				zap.String("breaker", name), zap.String("from", from.String()), zap.String("to", to.String()))
		},
	})
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func newHTTPClient(timeout time.Duration) *http.Client {
	transport := &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		DialContext:           (&net.Dialer{Timeout: 3 * time.Second, KeepAlive: 30 * time.Second}).DialContext,
		MaxIdleConns:          50,
		MaxIdleConnsPerHost:   10,
		ForceAttemptHTTP2:     true,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   3 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
		ResponseHeaderTimeout: timeout,
	}
	return &http.Client{Timeout: timeout, Transport: transport}
}

type searchResponse struct {
	Count  int                  `json:"count"`
	Result []models.SymbolMatch `json:"result"`
}

func (c *Client) Search(ctx context.Context, query string) ([]models.SymbolMatch, error) {
	var resp searchResponse
	if err := c.get(ctx, "/search", url.Values{"q": {query}}, &resp); err != nil {
		return nil, fmt.Errorf("search %q: %w", query, err)
	}
	if resp.Result == nil {
		return []models.SymbolMatch{}, nil
	}
	return resp.Result, nil
}

func (c *Client) Quote(ctx context.Context, symbol string) (models.UpstreamQuote, error) {
	var q models.UpstreamQuote
	if err := c.get(ctx, "/quote", url.Values{"symbol": {symbol}}, &q); err != nil {
		return models.UpstreamQuote{}, fmt.Errorf("quote %s: %w", symbol, err)
	}
	return q, nil
}

// get runs one request through the breaker and decodes a JSON body into out.
func (c *Client) get(ctx context.Context, path string, query url.Values, out any) error {
	if c.token != "" {
		query.Set("token", c.token)
	}
	endpoint := c.baseURL + path + "?" + query.Encode()

	_, err := c.breaker.Execute(func() (interface{}, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Accept", "application/json")

		res, err := c.http.Do(req)
		if err != nil {
			return nil, err
		}
		defer res.Body.Close()

		if res.StatusCode < 200 || res.StatusCode > 299 {
			io.Copy(io.Discard, io.LimitReader(res.Body, maxBodyBytes))
			return nil, fmt.Errorf("unexpected status %d", res.StatusCode)
		}
		if err := json.NewDecoder(io.LimitReader(res.Body, maxBodyBytes)).Decode(out); err != nil {
			return nil, fmt.Errorf("decode: %w", err)
		}
		return nil, nil
	})
	return err
}
