package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"storefront/clientcore/internal/repository"
)

const maxResponseSize = 4 << 20

// Config holds the remote API settings.
type Config struct {
	BaseURL       string
	Timeout       time.Duration
	RateLimit     float64 // requests per second, 0 = unlimited
	RateBurst     int
	ClientVersion string
}

// Observer receives one call per completed request. Status is 0 when no
// response was received.
type Observer interface {
	ObserveRequest(endpoint string, status int, elapsed time.Duration)
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

func WithLogger(l *zap.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

func WithObserver(o Observer) Option {
	return func(c *Client) { c.observer = o }
}

// Client is the transport shared by AuthAPI, ProductAPI and OrderAPI.
// The bearer token is read from the durable store on every request.
type Client struct {
	baseURL        string
	version        string
	http           *http.Client
	store          repository.KVStore
	limiter        *rate.Limiter
	logger         *zap.Logger
	observer       Observer
	onUnauthorized atomic.Pointer[func(context.Context)]
}

func New(cfg Config, store repository.KVStore, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		version: cfg.ClientVersion,
		http:    &http.Client{Timeout: cfg.Timeout},
		store:   store,
		logger:  zap.NewNop(),
	}
	if cfg.RateLimit > 0 {
		burst := cfg.RateBurst
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), burst)
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// OnUnauthorized registers fn to run after every 401 response.
func (c *Client) OnUnauthorized(fn func(context.Context)) {
	c.onUnauthorized.Store(&fn)
}

func (c *Client) saveToken(ctx context.Context, token string) {
	if token == "" || c.store == nil {
		return
	}
	if err := c.store.Set(ctx, repository.KeyToken, []byte(token)); err != nil {
		c.logger.Warn("failed to persist token", zap.Error(err))
	}
}

func (c *Client) dropToken(ctx context.Context) {
	if c.store == nil {
		return
	}
	if err := c.store.Delete(ctx, repository.KeyToken); err != nil {
		c.logger.Warn("failed to delete token", zap.Error(err))
	}
}

func (c *Client) bearer(ctx context.Context) string {
	if c.store == nil {
		return ""
	}
	raw, err := c.store.Get(ctx, repository.KeyToken)
	if err != nil {
		c.logger.Warn("failed to read token", zap.Error(err))
		return ""
	}
	return string(raw)
}

// do sends one request and returns the raw 2xx body. endpoint is a stable
// label for logs and metrics, e.g. "orders.get".
func (c *Client) do(ctx context.Context, endpoint, method, path string, query url.Values, in any) ([]byte, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, newNetworkError(err)
		}
	}

	var body io.Reader
	if in != nil {
		raw, err := json.Marshal(in)
		if err != nil {
			return nil, &Error{Kind: KindUnknown, Code: CodeUnknown, Message: "failed to encode request", Err: err}
		}
		body = bytes.NewReader(raw)
	}

	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return nil, newNetworkError(err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.version != "" {
		req.Header.Set("X-Client-Version", c.version)
	}
	if token := c.bearer(ctx); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.observe(endpoint, 0, time.Since(start))
		c.logger.Warn("api request failed",
			zap.String("endpoint", endpoint), zap.String("method", method), zap.Error(err))
		return nil, newNetworkError(err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	c.observe(endpoint, resp.StatusCode, time.Since(start))
	if err != nil {
		return nil, newNetworkError(err)
	}

	if resp.StatusCode >= 400 {
		apiErr := classify(resp.StatusCode, respBody)
		c.logger.Debug("api error response",
			zap.String("endpoint", endpoint),
			zap.Int("status", resp.StatusCode),
			zap.String("code", apiErr.Code),
			zap.String("message", apiErr.Message))
		if apiErr.Kind == KindSession {
			c.dropToken(ctx)
			if fn := c.onUnauthorized.Load(); fn != nil {
				(*fn)(ctx)
			}
		}
		return nil, apiErr
	}
	return respBody, nil
}

func (c *Client) observe(endpoint string, status int, elapsed time.Duration) {
	if c.observer != nil {
		c.observer.ObserveRequest(endpoint, status, elapsed)
	}
}
