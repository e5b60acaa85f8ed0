package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/frantoso/jasm-debugger/session"
)

// Handler returns the HTTP API for browsing live sessions.
//
//	GET /healthz                                   liveness probe
//	GET /metrics                                   prometheus metrics
//	GET /api/sessions                              list active session keys
//	GET /api/sessions/{connection}/{machine}.svg   rendered diagram
//	GET /api/events                                SSE stream of updates
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		fmt.Fprintln(w, "ok")
	})
	r.Handle("/metrics", promhttp.Handler())

	r.Get("/api/sessions", s.handleListSessions)
	r.Get("/api/sessions/{connection}/{machine}.svg", s.handleSessionSVG)
	r.Get("/api/events", s.handleEvents)

	return r
}

func (s *Server) handleListSessions(w http.ResponseWriter, _ *http.Request) {
	type item struct {
		ConnectionID string `json:"connectionId"`
		MachineName  string `json:"machineName"`
	}
	keys := s.sessions.Sessions()
	items := make([]item, 0, len(keys))
	for _, key := range keys {
		items = append(items, item{ConnectionID: key.ConnectionID, MachineName: key.MachineName})
	}
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(items); err != nil {
		s.log.Warn("writing session list failed", "err", err)
	}
}

func (s *Server) handleSessionSVG(w http.ResponseWriter, r *http.Request) {
	key := session.Key{
		ConnectionID: chi.URLParam(r, "connection"),
		MachineName:  chi.URLParam(r, "machine"),
	}
	live := s.sessions.Session(key)
	if live == nil {
		http.Error(w, "no such session", http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "image/svg+xml")
	w.Header().Set("Cache-Control", "no-store")
	if err := live.WriteDocument(w); err != nil {
		s.log.Warn("writing document failed", "err", err)
	}
}

// handleEvents streams session updates as server-sent events. Each event's
// data is the JSON key of the refreshed session; the client re-fetches the
// SVG it cares about.
func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	updates, cancel := s.hub.Subscribe(16)
	defer cancel()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-store")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	keepAlive := time.NewTicker(30 * time.Second)
	defer keepAlive.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case <-keepAlive.C:
			fmt.Fprint(w, ": keep-alive\n\n")
			flusher.Flush()
		case update, open := <-updates:
			if !open {
				return
			}
			data, err := json.Marshal(map[string]string{
				"connectionId": update.Key.ConnectionID,
				"machineName":  update.Key.MachineName,
			})
			if err != nil {
				continue
			}
			fmt.Fprintf(w, "event: update\ndata: %s\n\n", data)
			flusher.Flush()
		}
	}
}
