// Package handlers exposes the thin JSON API over the ranking engine and
// the ingestion pipeline.
package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/melodexapp/melodex/internal/domain"
	"github.com/melodexapp/melodex/internal/ingest"
	"github.com/melodexapp/melodex/internal/logger"
	"github.com/melodexapp/melodex/internal/ranking"
)

// Ranker is the snapshot surface the API exposes.
type Ranker interface {
	GetSnapshot(sectionKey string) (*domain.Snapshot, error)
	RefreshSnapshot(sectionKey, note string) (*domain.RefreshResult, error)
}

// Ingester is the pipeline surface the API exposes.
type Ingester interface {
	TriggerArtist(channelID string, opts ingest.Options) bool
	IngestPlaylist(ctx context.Context, browseID string, kind domain.PlaylistKind, maxTracks int) (*domain.PlaylistIngestResult, bool)
}

type Handler struct {
	Ranker   Ranker
	Ingester Ingester
	Log      *logger.Logger
}

func NewHandler(ranker Ranker, ingester Ingester, log *logger.Logger) *Handler {
	return &Handler{
		Ranker:   ranker,
		Ingester: ingester,
		Log:      log.WithComponent("http"),
	}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/api/home/{section}", h.GetHomeSection)
	r.Post("/api/home/{section}/refresh", h.RefreshHomeSection)
	r.Post("/api/ingest/artist/{channelID}", h.IngestArtist)
	r.Post("/api/ingest/playlist/{browseID}", h.IngestPlaylist)
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		h.Log.Error("failed to encode response", "error", err)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, status int, msg string) {
	h.writeJSON(w, status, map[string]string{"error": msg})
}

func sectionStatus(err error) int {
	if errors.Is(err, ranking.ErrUnknownSection) {
		return http.StatusNotFound
	}
	return http.StatusInternalServerError
}
