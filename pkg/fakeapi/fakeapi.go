// Package fakeapi serves a fixed set of incidents over HTTP with the same pagination
// contract as the real incidents API. It backs `heroes fake-server` and the HTTP tests.
package fakeapi

import (
	"encoding/json"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/clcollins/heroes/pkg/api"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// DefaultPageSize matches the page size of the real API
const DefaultPageSize = 5

// Server holds the incidents being served and any injected failures
type Server struct {
	mu        sync.RWMutex
	incidents []api.Incident
	pageSize  int
	failures  map[int]int
	requests  int
}

func New(incidents []api.Incident, pageSize int) *Server {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	return &Server{
		incidents: incidents,
		pageSize:  pageSize,
		failures:  make(map[int]int),
	}
}

// FailPage makes requests for page answer with the given HTTP status until cleared with status 0
func (s *Server) FailPage(page, status int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if status == 0 {
		delete(s.failures, page)
		return
	}
	s.failures[page] = status
}

// Requests returns how many incident pages have been requested
func (s *Server) Requests() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.requests
}

// Router returns the HTTP handler for the fake API
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(requestLogger)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	r.Route("/incidents", func(r chi.Router) {
		r.Get("/available", s.listAvailable)
		r.Get("/{id}", s.getIncident)
	})

	return r
}

func (s *Server) listAvailable(w http.ResponseWriter, r *http.Request) {
	// Anything that is not a positive integer is treated as the first page
	page, err := strconv.Atoi(r.URL.Query().Get("page"))
	if err != nil || page < 1 {
		page = 1
	}

	s.mu.Lock()
	s.requests++
	status, failing := s.failures[page]
	s.mu.Unlock()

	if failing {
		http.Error(w, http.StatusText(status), status)
		return
	}

	s.mu.RLock()
	total := len(s.incidents)
	batch := []api.Incident{}
	start := (page - 1) * s.pageSize
	if start < total {
		end := min(start+s.pageSize, total)
		batch = append(batch, s.incidents[start:end]...)
	}
	s.mu.RUnlock()

	w.Header().Set(api.TotalCountHeader, strconv.Itoa(total))
	w.Header().Set("Access-Control-Expose-Headers", api.TotalCountHeader)
	writeJSON(w, http.StatusOK, batch)
}

func (s *Server) getIncident(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid incident id"})
		return
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, i := range s.incidents {
		if i.ID == id {
			writeJSON(w, http.StatusOK, i)
			return
		}
	}

	writeJSON(w, http.StatusNotFound, map[string]string{"error": "incident not found"})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error("fakeapi.writeJSON", "error", err)
	}
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		log.Debug("fakeapi", "method", r.Method, "path", r.URL.RequestURI(), "status", ww.Status(), "duration", time.Since(start))
	})
}
