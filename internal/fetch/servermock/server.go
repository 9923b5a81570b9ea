// Package servermock serves policy metadata documents for tests.
package servermock

import (
	"net/http"
	"net/http/httptest"
	"sync"
)

// Path is where the mock serves its document.
const Path = "/manup.json"

// Server provides a mock metadata endpoint.
type Server struct {
	server *httptest.Server

	mu       sync.Mutex
	body     string
	status   int
	requests int
	queries  []string
}

// NewServer creates and starts a new mock metadata server.
func NewServer() *Server {
	s := &Server{status: http.StatusOK}

	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		defer s.mu.Unlock()

		s.requests++
		s.queries = append(s.queries, r.URL.RawQuery)

		if r.URL.Path != Path {
			http.Error(w, "Not found", http.StatusNotFound)
			return
		}
		if s.status != http.StatusOK {
			http.Error(w, http.StatusText(s.status), s.status)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(s.body))
	})

	s.server = httptest.NewServer(handler)
	return s
}

// URL returns the URL of the metadata document.
func (s *Server) URL() string {
	return s.server.URL + Path
}

// Close shuts down the mock server.
func (s *Server) Close() {
	s.server.Close()
}

// SetDocument sets the body served for the metadata document.
func (s *Server) SetDocument(body string) *Server {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.body = body
	return s
}

// SetStatus makes the server answer with the given status code.
func (s *Server) SetStatus(code int) *Server {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.status = code
	return s
}

// Requests returns how many requests have been served.
func (s *Server) Requests() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.requests
}

// Queries returns the raw query string of every request in order.
func (s *Server) Queries() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.queries...)
}

// WithDefaultDocument serves a document with an ios and an android branch.
func (s *Server) WithDefaultDocument() *Server {
	return s.SetDocument(`{
  "ios": {"minimum": "2.0.0", "latest": "2.5.0", "enabled": true, "url": "https://apps.apple.com/app/id0"},
  "android": {"minimum": "2.0.0", "latest": "2.5.0", "enabled": true, "url": "market://details?id=com.example"}
}`)
}
