// Package server implements the snapshot server that backs background
// sync: one whole-dataset snapshot per authenticated subject, stored on
// disk, exposed over PUT/GET endpoints guarded by HS256 bearer tokens.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/linktrove/linktrove/internal/export"
	"github.com/linktrove/linktrove/internal/logger"
)

// maxSnapshotBytes caps uploads; a bookmark dataset far larger than this
// is malformed or hostile.
const maxSnapshotBytes = 32 << 20

// checksumHeader lets the client supply the snapshot checksum so the
// server records it without re-hashing.
const checksumHeader = "X-Snapshot-Checksum"

// Config holds the server's listen address, signing secret, and storage
// directory.
type Config struct {
	Addr    string
	Secret  []byte
	DataDir string
}

// Server is the snapshot HTTP server.
type Server struct {
	http      *http.Server
	snapshots *snapshotStore
	log       logger.Logger
}

// New builds the server: router, middleware, routes.
func New(cfg Config, log logger.Logger) *Server {
	if log == nil {
		log = logger.Nop()
	}
	s := &Server{
		snapshots: newSnapshotStore(cfg.DataDir),
		log:       log,
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	r.Get("/healthz", s.handleHealth)
	r.Route("/v1", func(r chi.Router) {
		r.Use(requireAuth(cfg.Secret))
		r.Put("/snapshot", s.handlePutSnapshot)
		r.Get("/snapshot", s.handleGetSnapshot)
		r.Get("/snapshot/meta", s.handleGetMeta)
	})

	s.http = &http.Server{
		Addr:              cfg.Addr,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return s
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler { return s.http.Handler }

// Start blocks serving requests until Stop or a listener error.
func (s *Server) Start() error {
	s.log.Info("snapshot server listening", logger.String("addr", s.http.Addr))
	err := s.http.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Stop shuts the server down gracefully within the context deadline.
func (s *Server) Stop(ctx context.Context) error {
	s.log.Info("snapshot server shutting down")
	return s.http.Shutdown(ctx)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}

// handlePutSnapshot validates and stores the subject's snapshot. The body
// must decode as a backup document; garbage is rejected before it can
// poison a later pull.
func (s *Server) handlePutSnapshot(w http.ResponseWriter, r *http.Request) {
	subject := subjectFrom(r.Context())

	body, err := io.ReadAll(io.LimitReader(r.Body, maxSnapshotBytes+1))
	if err != nil {
		http.Error(w, "read failed", http.StatusBadRequest)
		return
	}
	if len(body) > maxSnapshotBytes {
		http.Error(w, "snapshot too large", http.StatusRequestEntityTooLarge)
		return
	}
	doc, err := export.Decode(body)
	if err != nil {
		http.Error(w, "malformed snapshot: "+err.Error(), http.StatusUnprocessableEntity)
		return
	}

	checksum, err := export.Checksum(doc)
	if err != nil {
		http.Error(w, "checksum failed", http.StatusInternalServerError)
		return
	}
	// Never trust the client's checksum: a stale or forged header would
	// poison convergence decisions on every later connect.
	if claimed := r.Header.Get(checksumHeader); claimed != "" && claimed != checksum {
		http.Error(w, "checksum mismatch", http.StatusUnprocessableEntity)
		return
	}

	meta, err := s.snapshots.Put(subject, body, checksum)
	if err != nil {
		s.log.Error("storing snapshot failed", logger.String("subject", subject), logger.Err(err))
		http.Error(w, "store failed", http.StatusInternalServerError)
		return
	}

	s.log.Info("snapshot stored",
		logger.String("subject", subject),
		logger.String("checksum", meta.Checksum),
		logger.Int("bytes", int(meta.Size)))
	writeJSON(w, http.StatusOK, meta)
}

func (s *Server) handleGetSnapshot(w http.ResponseWriter, r *http.Request) {
	subject := subjectFrom(r.Context())

	body, err := s.snapshots.Get(subject)
	if errors.Is(err, ErrNoSnapshot) {
		http.Error(w, "no snapshot", http.StatusNotFound)
		return
	}
	if err != nil {
		s.log.Error("reading snapshot failed", logger.String("subject", subject), logger.Err(err))
		http.Error(w, "read failed", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write(body)
}

func (s *Server) handleGetMeta(w http.ResponseWriter, r *http.Request) {
	subject := subjectFrom(r.Context())

	meta, err := s.snapshots.Meta(subject)
	if errors.Is(err, ErrNoSnapshot) {
		http.Error(w, "no snapshot", http.StatusNotFound)
		return
	}
	if err != nil {
		s.log.Error("reading snapshot meta failed", logger.String("subject", subject), logger.Err(err))
		http.Error(w, "read failed", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, meta)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
