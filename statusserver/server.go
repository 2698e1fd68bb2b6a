// Package statusserver exposes a read-only view of a running pipeline
// over HTTP: a JSON snapshot endpoint and a server-sent-events stream of
// updates. It never influences scheduling; Publish is called by whatever
// drives the executor, purely for observers.
package statusserver

import (
	"encoding/json"
	"net/http"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/go-chi/render"
	"github.com/r3labs/sse"
)

// JobStatus is one job's state as seen from the outside.
type JobStatus struct {
	Name       string `json:"name"`
	Finished   bool   `json:"finished"`
	Successful bool   `json:"successful"`
}

// Snapshot is the full state of the stage currently running.
type Snapshot struct {
	RunID  string      `json:"run_id"`
	Runner string      `json:"runner"`
	Stage  string      `json:"stage"`
	Jobs   []JobStatus `json:"jobs"`
}

func (s Snapshot) Render(w http.ResponseWriter, r *http.Request) error { return nil }

const streamID = "pipeline"

// Server serves the current Snapshot and streams every update pushed via
// Publish to connected SSE clients.
type Server struct {
	mu     sync.RWMutex
	latest Snapshot

	sse    *sse.Server
	router chi.Router
}

// New builds a Server ready to mount or serve directly.
func New() *Server {
	s := &Server{sse: sse.New()}
	s.sse.CreateStream(streamID)

	r := chi.NewRouter()
	r.Use(cors.Handler(cors.Options{AllowedOrigins: []string{"*"}}))
	r.Get("/status", s.handleStatus)
	r.Get("/events", s.sse.HTTPHandler)
	s.router = r

	return s
}

// Handler returns the http.Handler this server mounts its routes on.
func (s *Server) Handler() http.Handler { return s.router }

// Publish updates the current snapshot and pushes it to every connected
// SSE client.
func (s *Server) Publish(snap Snapshot) {
	s.mu.Lock()
	s.latest = snap
	s.mu.Unlock()

	data, err := json.Marshal(snap)
	if err != nil {
		return
	}
	s.sse.Publish(streamID, &sse.Event{Data: data})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	snap := s.latest
	s.mu.RUnlock()
	render.Respond(w, r, snap)
}

// ListenAndServe is a convenience wrapper for running the server
// standalone (as the executor binary does when --status-addr is set).
func (s *Server) ListenAndServe(addr string) error {
	return http.ListenAndServe(addr, s.router)
}
