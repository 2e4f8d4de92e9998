package gateway

import (
	"context"
	"io"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// serveOnce accepts a single connection, records the request and writes reply.
func serveOnce(t *testing.T, reply string, delay time.Duration) (string, <-chan string) {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { ln.Close() })

	got := make(chan string, 1)
	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		defer conn.Close()
		buf := make([]byte, 1024)
		n, _ := conn.Read(buf)
		got <- string(buf[:n])
		time.Sleep(delay)
		_, _ = io.WriteString(conn, reply)
	}()
	return ln.Addr().String(), got
}

func TestClient_Query(t *testing.T) {
	addr, got := serveOnce(t, "  The V16 had 16 cylinders. \n", 0)

	reply, err := New(addr, time.Second).Query(context.Background(), "how many cylinders?")
	require.NoError(t, err)
	assert.Equal(t, "The V16 had 16 cylinders.", reply)
	assert.Equal(t, "how many cylinders?", <-got)
}

func TestClient_Timeout(t *testing.T) {
	addr, _ := serveOnce(t, "late", 500*time.Millisecond)

	_, err := New(addr, 50*time.Millisecond).Query(context.Background(), "q")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "timed out")
}

func TestClient_ConnectionRefused(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := ln.Addr().String()
	require.NoError(t, ln.Close())

	_, err = New(addr, time.Second).Query(context.Background(), "q")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connect to query service")
}

func TestClient_ReplyIsBounded(t *testing.T) {
	long := make([]byte, DefaultMaxReplyBytes+100)
	for i := range long {
		long[i] = 'a'
	}
	addr, _ := serveOnce(t, string(long), 0)

	reply, err := New(addr, time.Second).Query(context.Background(), "q")
	require.NoError(t, err)
	assert.Len(t, reply, DefaultMaxReplyBytes)
}

func TestNew_DefaultTimeout(t *testing.T) {
	c := New("127.0.0.1:1", 0)
	assert.Equal(t, DefaultTimeout, c.timeout)
}
