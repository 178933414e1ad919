package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/melodexapp/melodex/internal/domain"
	"github.com/melodexapp/melodex/internal/ingest"
)

// GetHomeSection serves the currently valid snapshot. A section that has
// never been generated, or whose snapshot expired, yields an empty item
// list rather than an error.
func (h *Handler) GetHomeSection(w http.ResponseWriter, r *http.Request) {
	section := chi.URLParam(r, "section")
	snapshot, err := h.Ranker.GetSnapshot(section)
	if err != nil {
		h.writeError(w, sectionStatus(err), err.Error())
		return
	}
	if snapshot == nil {
		h.writeJSON(w, http.StatusOK, map[string]interface{}{
			"section_key": section,
			"items":       domain.RankedItems{},
		})
		return
	}
	h.writeJSON(w, http.StatusOK, snapshot)
}

// RefreshHomeSection regenerates one section on demand.
func (h *Handler) RefreshHomeSection(w http.ResponseWriter, r *http.Request) {
	section := chi.URLParam(r, "section")
	note := r.URL.Query().Get("note")
	if note == "" {
		note = "manual refresh"
	}

	result, err := h.Ranker.RefreshSnapshot(section, note)
	if err != nil {
		if result == nil {
			h.writeError(w, sectionStatus(err), err.Error())
			return
		}
		// The run row records the failure; surface it with the run id so
		// the caller can inspect it.
		h.writeJSON(w, http.StatusInternalServerError, map[string]interface{}{
			"run_id":    result.RunID,
			"persisted": false,
			"error":     err.Error(),
		})
		return
	}
	h.writeJSON(w, http.StatusOK, result)
}

// IngestArtist starts a background ingestion for the channel. A second
// request while one is in flight reports started=false instead of queueing
// a duplicate.
func (h *Handler) IngestArtist(w http.ResponseWriter, r *http.Request) {
	channelID := chi.URLParam(r, "channelID")
	started := h.Ingester.TriggerArtist(channelID, ingest.Options{})
	h.writeJSON(w, http.StatusAccepted, map[string]interface{}{
		"channel_id": channelID,
		"started":    started,
	})
}

// IngestPlaylist ingests a single playlist synchronously. Upstream
// failures degrade to zero counts rather than a server error.
func (h *Handler) IngestPlaylist(w http.ResponseWriter, r *http.Request) {
	browseID := chi.URLParam(r, "browseID")
	kind := domain.KindPlaylist
	if r.URL.Query().Get("kind") == "album" {
		kind = domain.KindAlbum
	}

	result, ok := h.Ingester.IngestPlaylist(r.Context(), browseID, kind, 0)
	if !ok || result == nil {
		result = &domain.PlaylistIngestResult{}
	}
	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"browse_id":   browseID,
		"ingested":    ok,
		"track_count": result.TrackCount,
		"link_count":  result.LinkCount,
	})
}
