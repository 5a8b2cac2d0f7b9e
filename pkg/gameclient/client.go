package gameclient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/valyala/fasthttp"

	"github.com/ojpark/agentchess/pkg/gamedto"
)

// HeaderProvider injects per-request headers, e.g. auth in front of a proxy.
type HeaderProvider func() map[string]string

// Client is a thin JSON client for the arena API. Safe for concurrent use.
type Client struct {
	baseURL string
	http    *fasthttp.Client
	headers HeaderProvider

	defaultTimeout time.Duration
	waitTimeout    time.Duration
	retryMax       int
}

type Option func(*Client)

func WithHeaderProvider(h HeaderProvider) Option {
	return func(c *Client) { c.headers = h }
}

func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.defaultTimeout = d }
}

// WithWaitTimeout bounds the blocking turn-wait call. It must exceed the
// server's wait ceiling or every long poll reads as a transport failure.
func WithWaitTimeout(d time.Duration) Option {
	return func(c *Client) { c.waitTimeout = d }
}

func WithMaxConnsPerHost(n int) Option {
	return func(c *Client) { c.http.MaxConnsPerHost = n }
}

func WithRetry(max int) Option {
	return func(c *Client) { c.retryMax = max }
}

func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:        strings.TrimRight(baseURL, "/"),
		http:           &fasthttp.Client{ReadTimeout: 45 * time.Second, WriteTimeout: 10 * time.Second, MaxConnsPerHost: 64},
		defaultTimeout: 10 * time.Second,
		waitTimeout:    40 * time.Second,
		retryMax:       3,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) Health(ctx context.Context) (*gamedto.HealthResponse, error) {
	var out gamedto.HealthResponse
	if err := c.doJSON(ctx, fasthttp.MethodGet, "/healthz", nil, &out, c.defaultTimeout, true); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) CreateGame(ctx context.Context, req gamedto.CreateGameRequest) (*gamedto.CreateGameResponse, error) {
	var out gamedto.CreateGameResponse
	if err := c.doJSON(ctx, fasthttp.MethodPost, "/api/games", req, &out, c.defaultTimeout, false); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) ListGames(ctx context.Context) (*gamedto.ListGamesResponse, error) {
	var out gamedto.ListGamesResponse
	if err := c.doJSON(ctx, fasthttp.MethodGet, "/api/games", nil, &out, c.defaultTimeout, true); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) GetGame(ctx context.Context, id string) (*gamedto.MoveResponse, error) {
	var out gamedto.MoveResponse
	if err := c.doJSON(ctx, fasthttp.MethodGet, "/api/games/"+url.PathEscape(id), nil, &out, c.defaultTimeout, true); err != nil {
		return nil, err
	}
	return &out, nil
}

// SubmitMove is never retried at the transport level: a timed-out submit may
// still have been applied, and replaying it would fail as illegal anyway.
func (c *Client) SubmitMove(ctx context.Context, id string, req gamedto.SubmitMoveRequest) (*gamedto.MoveResponse, error) {
	var out gamedto.MoveResponse
	path := "/api/games/" + url.PathEscape(id) + "/moves"
	if err := c.doJSON(ctx, fasthttp.MethodPost, path, req, &out, c.defaultTimeout, false); err != nil {
		return nil, err
	}
	return &out, nil
}

// WaitTurn blocks until it is side's turn, the game ends, or the server's
// wait ceiling elapses. A ceiling expiry comes back with TimedOut set, not
// as an error; callers should call again right away.
func (c *Client) WaitTurn(ctx context.Context, id string, side string) (*gamedto.TurnResponse, error) {
	path := "/api/games/" + url.PathEscape(id) + "/turn"
	if side != "" {
		path += "?side=" + url.QueryEscape(side)
	}
	var out gamedto.TurnResponse
	if err := c.doJSON(ctx, fasthttp.MethodGet, path, nil, &out, c.waitTimeout, false); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) doJSON(ctx context.Context, method, path string, in any, out any, timeout time.Duration, retry bool) error {
	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer func() {
		fasthttp.ReleaseRequest(req)
		fasthttp.ReleaseResponse(resp)
	}()

	req.Header.SetMethod(method)
	req.SetRequestURI(c.baseURL + path)
	req.Header.SetContentType("application/json")

	if c.headers != nil {
		for k, v := range c.headers() {
			if strings.TrimSpace(k) != "" && strings.TrimSpace(v) != "" {
				req.Header.Set(k, v)
			}
		}
	}

	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		req.SetBody(payload)
	}

	attempts := 1
	if retry {
		attempts = c.retryMax
		if attempts <= 0 {
			attempts = 1
		}
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		deadline := c.computeDeadline(ctx, timeout)
		err := c.http.DoDeadline(req, resp, deadline)
		if err != nil {
			if attempt == attempts || !retry {
				return fmt.Errorf("request failed: %w", err)
			}
			lastErr = err
			if sleepErr := c.sleepWithContext(ctx, backoffDuration(attempt)); sleepErr != nil {
				return lastErr
			}
			continue
		}

		status := resp.StatusCode()
		if status < 200 || status >= 300 {
			err := apiError(status, resp.Body())
			if attempt == attempts || !retry || !shouldRetryStatus(status) {
				return err
			}
			lastErr = err
			if sleepErr := c.sleepWithContext(ctx, backoffDuration(attempt)); sleepErr != nil {
				return lastErr
			}
			continue
		}

		if out != nil {
			if err := json.Unmarshal(resp.Body(), out); err != nil {
				return fmt.Errorf("decode response: %w", err)
			}
		}
		return nil
	}

	if lastErr == nil {
		lastErr = errors.New("unknown error")
	}
	return lastErr
}

// apiError decodes the server's structured error when it can, so callers
// can branch on the error kind.
func apiError(status int, body []byte) error {
	var wire gamedto.ErrorResponse
	if err := json.Unmarshal(body, &wire); err == nil && wire.Kind != "" {
		return wire
	}
	return fmt.Errorf("chess api error: status=%d body=%s", status, truncate(string(body), 512))
}

func (c *Client) computeDeadline(ctx context.Context, timeout time.Duration) time.Time {
	clientDL := time.Now().Add(timeout)
	if dl, ok := ctx.Deadline(); ok && dl.Before(clientDL) {
		return dl
	}
	return clientDL
}

func (c *Client) sleepWithContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func backoffDuration(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	if attempt > 6 {
		attempt = 6
	}
	base := 100 * time.Millisecond
	return time.Duration(1<<uint(attempt-1)) * base // 100ms, 200ms ...
}

func shouldRetryStatus(code int) bool {
	switch code {
	case 500, 502, 503, 504:
		return true
	default:
		return false
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
