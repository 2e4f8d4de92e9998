// Package server provides the TCP query service: one question per
// connection, answered and closed, one connection at a time.
package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/ncdb-labs/ncdb-chat/internal/core/domain"
	"github.com/ncdb-labs/ncdb-chat/internal/core/ports/driving"
	"github.com/ncdb-labs/ncdb-chat/internal/logger"
)

// Default limits.
const (
	DefaultMaxRequestBytes  = 1024
	DefaultMaxResponseBytes = 4096
	DefaultIOTimeout        = 30 * time.Second
)

// Config holds the listener address and per-connection limits.
type Config struct {
	// Addr is host:port; port 0 picks a free port.
	Addr string

	// MaxRequestBytes bounds the single read of a question (default: 1024).
	MaxRequestBytes int

	// MaxResponseBytes bounds the reply, cut on a UTF-8 boundary (default: 4096).
	MaxResponseBytes int

	// IOTimeout bounds reading the question and writing the reply (default: 30s).
	IOTimeout time.Duration
}

// Server answers questions over TCP.
type Server struct {
	mu       sync.Mutex
	answers  driving.AnswerService
	cfg      Config
	listener net.Listener
}

// New creates a server; call Listen then Serve.
func New(answers driving.AnswerService, cfg Config) *Server {
	if cfg.MaxRequestBytes <= 0 {
		cfg.MaxRequestBytes = DefaultMaxRequestBytes
	}
	if cfg.MaxResponseBytes <= 0 {
		cfg.MaxResponseBytes = DefaultMaxResponseBytes
	}
	if cfg.IOTimeout <= 0 {
		cfg.IOTimeout = DefaultIOTimeout
	}
	return &Server{answers: answers, cfg: cfg}
}

// Listen binds the address with SO_REUSEADDR. An address held by another
// listener yields domain.ErrAlreadyRunning.
func (s *Server) Listen(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	lc := net.ListenConfig{Control: reuseAddr}
	ln, err := lc.Listen(ctx, "tcp", s.cfg.Addr)
	if err != nil {
		if isAddrInUse(err) {
			return fmt.Errorf("%s: %w", s.cfg.Addr, domain.ErrAlreadyRunning)
		}
		return fmt.Errorf("failed to listen on %s: %w", s.cfg.Addr, err)
	}
	s.listener = ln
	return nil
}

// Addr returns the bound address, or nil before Listen.
func (s *Server) Addr() net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

// Serve accepts connections until ctx is cancelled. Each connection is
// handled to completion before the next is accepted.
func (s *Server) Serve(ctx context.Context) error {
	s.mu.Lock()
	ln := s.listener
	s.mu.Unlock()
	if ln == nil {
		return errors.New("server: Serve called before Listen")
	}

	stop := context.AfterFunc(ctx, func() { ln.Close() })
	defer stop()
	defer ln.Close()

	logger.Info("Server listening on %s", ln.Addr())
	for {
		conn, err := ln.Accept()
		if err != nil {
			if ctx.Err() != nil {
				logger.Info("Server stopped")
				return nil
			}
			var ne net.Error
			if errors.As(err, &ne) && ne.Timeout() {
				continue
			}
			return fmt.Errorf("accept: %w", err)
		}
		s.handle(ctx, conn)
	}
}

func (s *Server) handle(ctx context.Context, conn net.Conn) {
	defer conn.Close()

	logger.Debug("Connected by %s", conn.RemoteAddr())
	if err := conn.SetDeadline(time.Now().Add(s.cfg.IOTimeout)); err != nil {
		logger.Warn("Set deadline for %s: %v", conn.RemoteAddr(), err)
	}

	buf := make([]byte, s.cfg.MaxRequestBytes)
	n, err := conn.Read(buf)
	if err != nil && !errors.Is(err, io.EOF) {
		logger.Warn("Read from %s: %v", conn.RemoteAddr(), err)
		return
	}
	if n == 0 {
		return
	}

	query := strings.ToValidUTF8(string(buf[:n]), "")
	logger.Info("Query: %s", query)

	answer := truncateUTF8(s.answers.Answer(ctx, query), s.cfg.MaxResponseBytes)
	if _, err := conn.Write([]byte(answer)); err != nil {
		logger.Warn("Write to %s: %v", conn.RemoteAddr(), err)
		return
	}
	logger.Debug("Answered %s with %d bytes", conn.RemoteAddr(), len(answer))
}

// truncateUTF8 cuts s to at most limit bytes without splitting a rune.
func truncateUTF8(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	cut := limit
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}
