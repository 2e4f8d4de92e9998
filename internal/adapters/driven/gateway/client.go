// Package gateway is the TCP client of the query service.
package gateway

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"strings"
	"time"

	"github.com/ncdb-labs/ncdb-chat/internal/core/ports/driven"
)

// Ensure Client implements the interface.
var _ driven.QueryClient = (*Client)(nil)

// Default client settings.
const (
	DefaultTimeout       = 20 * time.Second
	DefaultMaxReplyBytes = 4096
)

// Client sends one question per connection and reads the reply until the
// server closes.
type Client struct {
	addr          string
	timeout       time.Duration
	maxReplyBytes int64
	dialer        net.Dialer
}

// New creates a client for addr. A non-positive timeout uses DefaultTimeout.
func New(addr string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		addr:          addr,
		timeout:       timeout,
		maxReplyBytes: DefaultMaxReplyBytes,
	}
}

// Query sends question and returns the trimmed reply.
func (c *Client) Query(ctx context.Context, question string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	conn, err := c.dialer.DialContext(ctx, "tcp", c.addr)
	if err != nil {
		return "", fmt.Errorf("connect to query service at %s: %w", c.addr, err)
	}
	defer conn.Close()

	deadline, _ := ctx.Deadline()
	if err := conn.SetDeadline(deadline); err != nil {
		return "", fmt.Errorf("set deadline: %w", err)
	}
	stop := context.AfterFunc(ctx, func() { conn.SetDeadline(time.Now()) })
	defer stop()

	if _, err := io.WriteString(conn, question); err != nil {
		return "", fmt.Errorf("send question: %w", err)
	}
	if tcp, ok := conn.(*net.TCPConn); ok {
		// Signals end of request; the server reads once either way.
		_ = tcp.CloseWrite()
	}

	reply, err := io.ReadAll(io.LimitReader(conn, c.maxReplyBytes))
	if err != nil {
		var ne net.Error
		if errors.As(err, &ne) && ne.Timeout() {
			return "", fmt.Errorf("query service timed out after %s: %w", c.timeout, err)
		}
		return "", fmt.Errorf("read reply: %w", err)
	}
	return strings.TrimSpace(string(reply)), nil
}
