package rpc

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"cleepadm/pkg/types"
)

const (
	defaultTimeout = 10 * time.Second
	// LongTimeout is used by module install/update/uninstall commands.
	LongTimeout = 300 * time.Second
)

// Command is a backend command addressed to a module.
type Command struct {
	Name    string
	To      string
	Params  map[string]any
	Timeout time.Duration
}

// Commander sends commands to the backend and returns the raw response data.
type Commander interface {
	Send(ctx context.Context, cmd Command) (json.RawMessage, error)
}

// Call sends cmd and decodes the response data into T.
func Call[T any](ctx context.Context, c Commander, cmd Command) (T, error) {
	var out T
	data, err := c.Send(ctx, cmd)
	if err != nil {
		return out, err
	}
	if len(data) == 0 || string(data) == "null" {
		return out, nil
	}
	if err := json.Unmarshal(data, &out); err != nil {
		return out, fmt.Errorf("decode %s response: %w", cmd.Name, err)
	}
	return out, nil
}

// Client posts commands to the backend's /command endpoint.
type Client struct {
	baseURL        string
	defaultTimeout time.Duration
	httpClient     *http.Client
	log            zerolog.Logger
}

// NewClient constructs a Client. A zero timeout uses the package default.
func NewClient(baseURL string, timeout time.Duration, log zerolog.Logger) *Client {
	tr := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   5 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		MaxIdleConns:    16,
		IdleConnTimeout: 90 * time.Second,
	}
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	// Timeout stays 0: every request carries its own context deadline.
	return &Client{
		baseURL:        strings.TrimRight(baseURL, "/"),
		defaultTimeout: timeout,
		httpClient:     &http.Client{Transport: tr},
		log:            log.With().Str("component", "rpc").Logger(),
	}
}

// Send implements Commander.
func (c *Client) Send(ctx context.Context, cmd Command) (json.RawMessage, error) {
	if cmd.Name == "" {
		return nil, errors.New("rpc: empty command name")
	}
	timeout := cmd.Timeout
	if timeout <= 0 {
		timeout = c.defaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	body, err := json.Marshal(types.CommandRequest{
		Command: cmd.Name,
		To:      cmd.To,
		Params:  cmd.Params,
		Timeout: timeout.Seconds(),
	})
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", cmd.Name, err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/command", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	rid := uuid.NewString()
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Request-ID", rid)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.log.Warn().Str("command", cmd.Name).Str("to", cmd.To).Str("request_id", rid).Err(err).Msg("command transport error")
		return nil, &TransportError{Command: cmd.Name, Err: err}
	}
	defer resp.Body.Close()
	raw, err := io.ReadAll(io.LimitReader(resp.Body, 8<<20))
	if err != nil {
		return nil, &TransportError{Command: cmd.Name, Err: err}
	}
	if resp.StatusCode != http.StatusOK {
		return nil, &TransportError{Command: cmd.Name, Err: fmt.Errorf("http status %d", resp.StatusCode)}
	}
	var out types.CommandResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, &TransportError{Command: cmd.Name, Err: fmt.Errorf("decode response: %w", err)}
	}
	c.log.Debug().Str("command", cmd.Name).Str("to", cmd.To).Str("request_id", rid).
		Dur("dur", time.Since(start)).Bool("error", out.Error).Msg("command done")
	if out.Error {
		return nil, &CommandError{Command: cmd.Name, Message: out.Message}
	}
	return out.Data, nil
}
