package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	"github.com/dvoryanov/tipscraper/internal/tip"
	"github.com/dvoryanov/tipscraper/logger"
	"github.com/dvoryanov/tipscraper/services/cache"
	"github.com/dvoryanov/tipscraper/services/export"
)

// Refresher triggers one fetch/extract/cache pass on demand.
type Refresher interface {
	RefreshOnce() (int, error)
}

// Server exposes the cached tip batch over a small REST API.
type Server struct {
	batch     *cache.BatchCache
	refresher Refresher
	maxTips   int
	log       *logger.Logger
}

// New creates a server. refresher may be nil; the server then only ever
// serves what is already cached.
func New(batch *cache.BatchCache, refresher Refresher, maxTips int) *Server {
	return &Server{
		batch:     batch,
		refresher: refresher,
		maxTips:   maxTips,
		log:       logger.ForServer(),
	}
}

// Router builds the HTTP routes.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "OPTIONS"},
	}))

	r.Get("/health", s.handleHealth)
	r.Get("/api/tips", s.handleTips)
	r.Get("/api/tips/export", s.handleExport)

	return r
}

// tipsResponse is the wire shape of the tips endpoint.
type tipsResponse struct {
	Success  bool      `json:"success"`
	Tips     []tip.Tip `json:"tips"`
	Cached   bool      `json:"cached"`
	CacheAge float64   `json:"cacheAge"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleTips(w http.ResponseWriter, r *http.Request) {
	max := s.maxTips
	if v := r.URL.Query().Get("max"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 && parsed < max {
			max = parsed
		}
	}
	forceRefresh := r.URL.Query().Get("refresh") == "1"

	batch, age, refreshed := s.currentBatch(forceRefresh)
	if len(batch) == 0 {
		// nothing extracted and nothing cached: serve the demo batch so
		// the UI has something to render, flagged as unsuccessful
		writeJSON(w, http.StatusOK, tipsResponse{
			Success: false,
			Tips:    demoBatch(),
		})
		return
	}

	if len(batch) > max {
		batch = batch[:max]
	}

	writeJSON(w, http.StatusOK, tipsResponse{
		Success:  true,
		Tips:     batch,
		Cached:   !refreshed,
		CacheAge: age.Seconds(),
	})
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	batch, _, _ := s.currentBatch(false)
	if len(batch) == 0 {
		batch = demoBatch()
	}

	format := r.URL.Query().Get("format")
	if format == "" {
		format = "csv"
	}

	filename := fmt.Sprintf("tips_%s.%s", time.Now().Format("2006-01-02"), format)
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)

	var err error
	switch format {
	case "csv":
		w.Header().Set("Content-Type", "text/csv")
		err = export.WriteCSV(w, batch)
	case "xlsx":
		w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		err = export.WriteXLSX(w, batch)
	case "json":
		w.Header().Set("Content-Type", "application/json")
		err = export.WriteJSON(w, batch)
	default:
		http.Error(w, `{"error":"unknown format"}`, http.StatusBadRequest)
		return
	}

	if err != nil {
		s.log.Error().Err(err).Str("format", format).Msg("export failed")
	}
}

// currentBatch snapshots the cache, refreshing first when asked to or when
// the cache is stale or empty. A failed refresh falls back to whatever the
// cache still holds.
func (s *Server) currentBatch(forceRefresh bool) ([]tip.Tip, time.Duration, bool) {
	batch, age, fresh := s.batch.Snapshot()

	refreshed := false
	if s.refresher != nil && (forceRefresh || !fresh || len(batch) == 0) {
		if _, err := s.refresher.RefreshOnce(); err != nil {
			s.log.Debug().Err(err).Msg("on-demand refresh failed, serving cache")
		} else {
			refreshed = true
		}
		batch, age, _ = s.batch.Snapshot()
	}

	return batch, age, refreshed
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}
