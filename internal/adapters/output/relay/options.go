package relay

import (
	"time"

	"go.uber.org/zap"
)

func WithToken(token string) func(*Client) {
	return func(c *Client) {
		c.token = token
	}
}

func WithPingInterval(d time.Duration) func(*Client) {
	return func(c *Client) {
		c.pingInterval = d
	}
}

func WithBackoff(initial, limit time.Duration) func(*Client) {
	return func(c *Client) {
		c.minBackoff = initial
		c.maxBackoff = limit
	}
}

func WithLogger(l *zap.Logger) func(*Client) {
	return func(c *Client) {
		c.logger = l
	}
}

func InsecureSkipVerify() func(*Client) {
	return func(c *Client) {
		c.sslSkipVerify = true
	}
}

// OnConnected runs f in its own goroutine after every successful dial.
func OnConnected(f func()) func(*Client) {
	return func(c *Client) {
		c.onConnected = f
	}
}
