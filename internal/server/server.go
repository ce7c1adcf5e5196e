// Package server exposes table extraction over HTTP.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/pdf2tree/go/internal/bridge"
	"github.com/pdf2tree/go/internal/config"
	"github.com/pdf2tree/go/internal/extractor"
	"github.com/pdf2tree/go/internal/logger"
	"github.com/pdf2tree/go/internal/models"
)

var Logger = logger.GetLogger("server")

// maxBody limits uploaded documents.
const maxBody = 64 << 20

type Server struct {
	cfg    config.Config
	router *chi.Mux
}

func New(cfg config.Config) *Server {
	s := &Server{cfg: cfg}
	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.health)
	r.Post("/tree", s.tree)
	r.Post("/pages", s.pages)
	s.router = r
	return s
}

func (s *Server) Handler() http.Handler { return s.router }

// ListenAndServe serves on cfg.Addr until ctx is done.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{Addr: s.cfg.Addr, Handler: s.router, ReadHeaderTimeout: 10 * time.Second}
	errc := make(chan error, 1)
	go func() { errc <- srv.ListenAndServe() }()
	Logger.Info("listening", "addr", s.cfg.Addr)

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
		shutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdown)
	}
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// tree extracts tables from a PDF sent as the request body.
func (s *Server) tree(w http.ResponseWriter, r *http.Request) {
	cfg, err := s.config(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	buf, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBody))
	if err != nil {
		writeError(w, http.StatusRequestEntityTooLarge, err)
		return
	}
	res, err := extractor.ProcessBuffer(r.Context(), buf, cfg)
	if err != nil {
		s.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// pages extracts tables from already decoded pages sent as JSON.
func (s *Server) pages(w http.ResponseWriter, r *http.Request) {
	cfg, err := s.config(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	var pages []models.Page
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBody)).Decode(&pages); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("invalid request body: %w", err))
		return
	}
	res, err := extractor.Process(r.Context(), pages, cfg)
	if err != nil {
		s.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// config applies the max_stroke_width and max_gap_width query parameters to the
// server defaults.
func (s *Server) config(r *http.Request) (config.Config, error) {
	cfg := s.cfg
	q := r.URL.Query()
	for name, dst := range map[string]*float64{
		"max_stroke_width": &cfg.MaxStrokeWidth,
		"max_gap_width":    &cfg.MaxGapWidth,
	} {
		v := q.Get(name)
		if v == "" {
			continue
		}
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return cfg, fmt.Errorf("%s: %w", name, err)
		}
		*dst = f
	}
	return cfg, cfg.Validate()
}

func (s *Server) fail(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, config.ErrNegativeWidth), errors.Is(err, bridge.ErrDecode):
		writeError(w, http.StatusBadRequest, err)
	case errors.Is(err, context.Canceled):
		writeError(w, http.StatusServiceUnavailable, err)
	default:
		Logger.Error("extraction failed", "error", err)
		writeError(w, http.StatusInternalServerError, err)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		Logger.Warn("write response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}
