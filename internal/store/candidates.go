package store

import (
	"fmt"

	sq "github.com/Masterminds/squirrel"

	"github.com/melodexapp/melodex/internal/domain"
)

// CandidateFilter narrows the ranking candidate projection.
type CandidateFilter struct {
	ChannelID string
	MinViews  int64
	Limit     uint64
}

// ListCandidates joins tracks to their view statistics, producing the
// read-only rows the ranking engine scores. The query is assembled
// dynamically so callers can bound the candidate set.
func (db *DB) ListCandidates(filter CandidateFilter) ([]*domain.CandidateRow, error) {
	builder := sq.Select(
		"t.id AS track_id",
		"t.video_id",
		"t.title",
		"t.artist_name",
		"t.thumbnail_url",
		"s.views_7d",
		"s.views_total",
		"s.quality",
		"s.validated",
		"s.refreshed_at",
		"s.last_interaction_at",
	).
		From("tracks t").
		Join("track_stats s ON s.track_id = t.id").
		OrderBy("s.views_total DESC")

	if filter.ChannelID != "" {
		builder = builder.Where(sq.Eq{"t.channel_id": filter.ChannelID})
	}
	if filter.MinViews > 0 {
		builder = builder.Where(sq.GtOrEq{"s.views_total": filter.MinViews})
	}
	if filter.Limit > 0 {
		builder = builder.Limit(filter.Limit)
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build candidate query: %w", err)
	}

	var rows []*domain.CandidateRow
	if err := db.Select(&rows, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list candidates: %w", err)
	}
	return rows, nil
}
