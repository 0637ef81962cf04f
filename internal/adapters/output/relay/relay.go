package relay

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"hap-gsh-bridge/internal/domain/smarthome"
	"hap-gsh-bridge/internal/ports"
)

const (
	frameRequest  = "request"
	frameResponse = "response"
)

var ErrNotConnected = errors.New("relay not connected")

// frame is the envelope of every relay message that carries a request.
type frame struct {
	Type            string          `json:"type"`
	ServerRequestID string          `json:"serverRequestId,omitempty"`
	Body            json.RawMessage `json:"body,omitempty"`
}

type responseFrame struct {
	Type            string             `json:"type"`
	ServerRequestID string             `json:"serverRequestId"`
	Body            smarthome.Response `json:"body"`
}

// Client keeps a websocket open to the cloud relay. It delivers outgoing
// messages and answers fulfillment requests with an intent handler.
type Client struct {
	url           string
	token         string
	sslSkipVerify bool
	pingInterval  time.Duration
	writeTimeout  time.Duration
	minBackoff    time.Duration
	maxBackoff    time.Duration
	onConnected   func()
	logger        *zap.Logger

	handler ports.IntentHandler

	mu sync.Mutex
	ws *websocket.Conn
}

var _ ports.Transport = (*Client)(nil)

func New(url string, opts ...func(*Client)) *Client {
	c := &Client{
		url:          url,
		pingInterval: 30 * time.Second,
		writeTimeout: 10 * time.Second,
		minBackoff:   time.Second,
		maxBackoff:   time.Minute,
		logger:       zap.L().Named("relay"),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// SetHandler installs the handler for inbound requests. It must be called
// before Run.
func (c *Client) SetHandler(h ports.IntentHandler) {
	c.handler = h
}

// SendJSON writes payload as a single text frame.
func (c *Client) SendJSON(ctx context.Context, payload interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode relay message: %w", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.ws == nil {
		return ErrNotConnected
	}
	deadline := time.Now().Add(c.writeTimeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	_ = c.ws.SetWriteDeadline(deadline)
	if err := c.ws.WriteMessage(websocket.TextMessage, body); err != nil {
		c.ws.Close()
		c.ws = nil
		return err
	}
	return nil
}

// Run connects and serves the relay until ctx ends, reconnecting with
// exponential backoff after every failure.
func (c *Client) Run(ctx context.Context) error {
	backoff := c.minBackoff
	for {
		err := c.session(ctx)
		if ctx.Err() != nil {
			return nil
		}
		if errors.Is(err, errSessionEstablished) {
			backoff = c.minBackoff
		}
		c.logger.Warn("relay connection lost", zap.Error(err), zap.Duration("retryIn", backoff))

		select {
		case <-ctx.Done():
			return nil
		case <-time.After(backoff):
		}
		backoff *= 2
		if backoff > c.maxBackoff {
			backoff = c.maxBackoff
		}
	}
}

// errSessionEstablished wraps read errors of a session that did connect.
var errSessionEstablished = errors.New("session closed")

func (c *Client) session(ctx context.Context) error {
	dialer := &websocket.Dialer{
		HandshakeTimeout: 15 * time.Second,
		TLSClientConfig: &tls.Config{
			InsecureSkipVerify: c.sslSkipVerify,
		},
	}
	header := http.Header{}
	if c.token != "" {
		header.Set("Authorization", "Bearer "+c.token)
	}
	conn, _, err := dialer.DialContext(ctx, c.url, header)
	if err != nil {
		return fmt.Errorf("dial relay: %w", err)
	}

	c.mu.Lock()
	c.ws = conn
	c.mu.Unlock()
	c.logger.Info("connected to relay", zap.String("url", c.url))
	if c.onConnected != nil {
		go c.onConnected()
	}

	stop := make(chan struct{})
	defer close(stop)
	go func() {
		select {
		case <-ctx.Done():
			_ = conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(time.Second))
			conn.Close()
		case <-stop:
		}
	}()
	go c.ping(conn, stop)

	defer func() {
		c.mu.Lock()
		if c.ws == conn {
			c.ws = nil
		}
		c.mu.Unlock()
		conn.Close()
	}()

	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			return fmt.Errorf("%w: %v", errSessionEstablished, err)
		}
		go c.onMessage(ctx, msg)
	}
}

func (c *Client) ping(conn *websocket.Conn, stop <-chan struct{}) {
	if c.pingInterval <= 0 {
		return
	}
	ticker := time.NewTicker(c.pingInterval)
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(c.writeTimeout)); err != nil {
				return
			}
		}
	}
}

func (c *Client) onMessage(ctx context.Context, msg []byte) {
	var f frame
	if err := json.Unmarshal(msg, &f); err != nil {
		c.logger.Warn("invalid relay frame", zap.Error(err))
		return
	}
	if f.Type != frameRequest {
		c.logger.Debug("ignoring relay frame", zap.String("type", f.Type))
		return
	}
	if c.handler == nil {
		c.logger.Warn("no intent handler, dropping request", zap.String("serverRequestId", f.ServerRequestID))
		return
	}

	var req smarthome.Request
	if err := json.Unmarshal(f.Body, &req); err != nil {
		c.logger.Warn("invalid fulfillment request", zap.String("serverRequestId", f.ServerRequestID), zap.Error(err))
		return
	}
	resp := c.handler.Handle(ctx, req)
	if err := c.SendJSON(ctx, responseFrame{Type: frameResponse, ServerRequestID: f.ServerRequestID, Body: resp}); err != nil {
		c.logger.Error("failed to answer relay request", zap.String("serverRequestId", f.ServerRequestID), zap.Error(err))
	}
}
