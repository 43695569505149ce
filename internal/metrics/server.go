package metrics

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/edvin/vpngraph/internal/model"
)

// StatusReader serves the persisted outcome of the most recent sync run.
type StatusReader interface {
	Get(ctx context.Context) (*model.SyncStatus, error)
}

// NewServer creates the operational HTTP server: /metrics (Prometheus),
// /healthz, and /status with the last sync outcome.
func NewServer(addr string, status StatusReader, logger zerolog.Logger) *http.Server {
	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Handle("/metrics", promhttp.Handler())

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	r.Get("/status", func(w http.ResponseWriter, req *http.Request) {
		st, err := status.Get(req.Context())
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				writeJSON(w, http.StatusNotFound, map[string]string{"error": "no sync has run yet"})
				return
			}
			logger.Error().Err(err).Msg("read sync status")
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to read sync status"})
			return
		}
		writeJSON(w, http.StatusOK, st)
	})

	return &http.Server{
		Addr:    addr,
		Handler: r,
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
