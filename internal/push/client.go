package push

import (
	"context"
	"encoding/json"
	"errors"
	"math/rand"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"cleepadm/pkg/types"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512 * 1024
	initialBackoff = 1 * time.Second
	maxBackoff     = 60 * time.Second
	backoffFactor  = 2.0
	jitterFactor   = 0.3
)

// Handler receives decoded notifications in arrival order.
type Handler func(Notification)

// Client reads push notifications from the backend websocket and hands them
// to a Handler. It reconnects with jittered exponential backoff.
type Client struct {
	url       string
	handler   Handler
	log       zerolog.Logger
	dialer    websocket.Dialer
	connected atomic.Bool
}

func NewClient(url string, handler Handler, log zerolog.Logger) *Client {
	return &Client{
		url:     url,
		handler: handler,
		log:     log.With().Str("component", "push").Logger(),
		dialer:  websocket.Dialer{HandshakeTimeout: 10 * time.Second},
	}
}

// Connected reports whether a websocket session is currently open.
func (c *Client) Connected() bool { return c.connected.Load() }

// Run connects and reads until ctx is canceled.
func (c *Client) Run(ctx context.Context) {
	backoff := initialBackoff
	for {
		if ctx.Err() != nil {
			return
		}
		conn, _, err := c.dialer.DialContext(ctx, c.url, nil)
		if err != nil {
			jitter := time.Duration(float64(backoff) * jitterFactor * (rand.Float64()*2 - 1))
			sleep := backoff + jitter
			if sleep < 0 {
				sleep = backoff
			}
			c.log.Warn().Err(err).Dur("retry_in", sleep).Msg("push connect failed")
			select {
			case <-ctx.Done():
				return
			case <-time.After(sleep):
			}
			backoff = time.Duration(float64(backoff) * backoffFactor)
			if backoff > maxBackoff {
				backoff = maxBackoff
			}
			continue
		}
		backoff = initialBackoff
		c.log.Info().Str("url", c.url).Msg("push connected")
		c.connected.Store(true)
		err = c.session(ctx, conn)
		c.connected.Store(false)
		if err != nil && ctx.Err() == nil {
			c.log.Warn().Err(err).Msg("push session ended")
		}
	}
}

// session runs one connection until it fails or ctx ends.
func (c *Client) session(ctx context.Context, conn *websocket.Conn) error {
	defer conn.Close()
	conn.SetReadLimit(maxMessageSize)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	done := make(chan struct{})
	defer close(done)
	go func() {
		ticker := time.NewTicker(pingPeriod)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ctx.Done():
				_ = conn.WriteControl(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
					time.Now().Add(writeWait))
				_ = conn.Close()
				return
			case <-ticker.C:
				if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
					return
				}
			}
		}
	}()

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return err
		}
		c.dispatch(data)
	}
}

func (c *Client) dispatch(data []byte) {
	var msg types.PushMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		c.log.Warn().Err(err).Msg("invalid push frame")
		return
	}
	n, err := Decode(msg)
	if err != nil {
		if errors.Is(err, ErrUnhandled) {
			c.log.Debug().Str("event", msg.Event).Msg("push event ignored")
			return
		}
		c.log.Warn().Str("event", msg.Event).Err(err).Msg("push event dropped")
		return
	}
	c.handler(n)
}
