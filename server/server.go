// Package server hosts the debugger's transport: a TCP listener for the
// debugged processes, a broadcast hub for document updates and an HTTP API
// serving the rendered diagrams. The diagram core never imports this
// package; it only sees decoded command payloads.
package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/frantoso/jasm-debugger/eventstore"
	"github.com/frantoso/jasm-debugger/session"
)

// Server routes incoming debug commands to the session manager and
// broadcasts the resulting document updates.
type Server struct {
	sessions *session.Manager
	hub      *Hub
	store    eventstore.Store
	metrics  *Metrics
	log      *slog.Logger
}

// Option configures a Server.
type Option func(*Server)

// WithStore records every received command in the given store.
func WithStore(store eventstore.Store) Option {
	return func(s *Server) { s.store = store }
}

// WithLogger sets the server's logger.
func WithLogger(log *slog.Logger) Option {
	return func(s *Server) { s.log = log }
}

// WithMetrics registers the server's metrics on the given registerer.
func WithMetrics(reg prometheus.Registerer) Option {
	return func(s *Server) { s.metrics = NewMetrics(reg) }
}

// New creates a server around a session manager.
func New(sessions *session.Manager, opts ...Option) *Server {
	s := &Server{
		sessions: sessions,
		hub:      NewHub(),
		log:      slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.metrics == nil {
		s.metrics = NewMetrics(nil)
	}
	return s
}

// Hub returns the server's broadcast hub.
func (s *Server) Hub() *Hub { return s.hub }

// ListenTCP accepts debugged processes on addr until ctx is canceled. Each
// connection gets a fresh connection id and is handled on its own
// goroutine; commands within one connection apply strictly in order.
func (s *Server) ListenTCP(ctx context.Context, addr string) error {
	var cfg net.ListenConfig
	listener, err := cfg.Listen(ctx, "tcp", addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", addr, err)
	}

	go func() {
		<-ctx.Done()
		listener.Close()
	}()

	s.log.Info("accepting debugged processes", "addr", listener.Addr().String())

	var wg sync.WaitGroup
	for {
		conn, err := listener.Accept()
		if err != nil {
			if ctx.Err() != nil {
				break
			}
			s.log.Warn("accept failed", "err", err)
			continue
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.handleConn(ctx, conn)
		}()
	}

	wg.Wait()
	return nil
}

func (s *Server) handleConn(ctx context.Context, conn net.Conn) {
	defer conn.Close()

	connectionID := uuid.New().String()
	s.metrics.Connections.Inc()
	defer s.metrics.Connections.Dec()
	defer s.sessions.DropConnection(connectionID)

	log := s.log.With("connection", connectionID, "remote", conn.RemoteAddr().String())
	log.Info("process connected")
	defer log.Info("process disconnected")

	for {
		if ctx.Err() != nil {
			return
		}

		cmd, err := readFrame(conn)
		if errors.Is(err, io.EOF) {
			return
		}
		if err != nil {
			// A broken frame desynchronizes the stream; drop the
			// connection rather than guessing at the next boundary.
			log.Warn("closing connection on bad frame", "err", err)
			return
		}

		if err := s.Dispatch(connectionID, cmd); err != nil {
			log.Warn("command failed", "command", cmd.Kind, "err", err)
		}
	}
}

// Dispatch applies one decoded command for a connection and publishes the
// resulting update. Command errors leave the session untouched.
func (s *Server) Dispatch(connectionID string, cmd *Command) error {
	s.metrics.Commands.WithLabelValues(cmd.Kind).Inc()

	var live *session.Session
	var err error

	switch cmd.Kind {
	case eventstore.KindSetMachine:
		start := time.Now()
		live, err = s.sessions.SetMachine(connectionID, cmd.Data)
		if err == nil {
			s.metrics.LayoutDuration.Observe(time.Since(start).Seconds())
		}
	case eventstore.KindStateChanged:
		live, err = s.sessions.StateChanged(connectionID, cmd.Data)
	default:
		err = fmt.Errorf("unknown command %q", cmd.Kind)
	}

	if err != nil {
		s.metrics.CommandErrors.WithLabelValues(cmd.Kind).Inc()
		return err
	}

	machine := ""
	if live != nil {
		machine = live.Key().MachineName
	}
	s.record(connectionID, machine, cmd)

	if live != nil {
		s.hub.Publish(Update{Key: live.Key()})
	}
	return nil
}

// record appends the command to the configured store, best effort.
func (s *Server) record(connectionID, machine string, cmd *Command) {
	if s.store == nil {
		return
	}
	entry := eventstore.NewEntry(connectionID, machine, cmd.Kind, cmd.Data)
	if err := s.store.Append(context.Background(), entry); err != nil {
		s.log.Warn("recording command failed", "err", err)
	}
}
