package metrics

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edvin/vpngraph/internal/model"
)

type stubStatusReader struct {
	status *model.SyncStatus
	err    error
}

func (s *stubStatusReader) Get(_ context.Context) (*model.SyncStatus, error) {
	return s.status, s.err
}

func TestHealthz(t *testing.T) {
	srv := NewServer(":0", &stubStatusReader{}, zerolog.Nop())

	rec := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())
}

func TestStatusEndpoint(t *testing.T) {
	reader := &stubStatusReader{status: &model.SyncStatus{
		LastSyncTime:   time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC),
		LastSyncStatus: model.SyncStatusSuccess,
		NodesCount:     12,
		EdgesCount:     30,
	}}
	srv := NewServer(":0", reader, zerolog.Nop())

	rec := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/status", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var got model.SyncStatus
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, "Success", got.LastSyncStatus)
	assert.Equal(t, 12, got.NodesCount)
	assert.Equal(t, 30, got.EdgesCount)
}

func TestStatusEndpointNoRunsYet(t *testing.T) {
	srv := NewServer(":0", &stubStatusReader{err: pgx.ErrNoRows}, zerolog.Nop())

	rec := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/status", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestStatusEndpointReadError(t *testing.T) {
	srv := NewServer(":0", &stubStatusReader{err: errors.New("boom")}, zerolog.Nop())

	rec := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/status", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}
