// Package ranking computes trending and most-popular snapshots from
// persisted view statistics.
package ranking

import (
	"math"
	"sort"
	"time"

	"github.com/melodexapp/melodex/internal/constants"
	"github.com/melodexapp/melodex/internal/domain"
)

// TrendingScore blends lifetime pull, 7-day velocity, refresh freshness,
// interaction recency, and editorial validation into one composite score,
// rounded to 4 decimal places.
func TrendingScore(row *domain.CandidateRow, now time.Time) float64 {
	v7 := float64(row.Views7d)
	if v7 < 0 {
		v7 = 0
	}
	quality := row.Quality
	if quality < 0 {
		quality = 0
	}

	evergreen := math.Log1p(float64(row.ViewsTotal))
	velocity := math.Sqrt(v7)

	daysSinceRefresh := daysSince(row.RefreshedAt, now)
	freshness := math.Max(0, 24-math.Min(daysSinceRefresh, 120)*0.2)

	recency := 0.0
	if row.LastInteractionAt != nil {
		daysSinceRecent := daysSince(*row.LastInteractionAt, now)
		recency = math.Max(0, 14-math.Min(daysSinceRecent, 28)*0.4)
	}

	validation := 0.0
	if row.Validated {
		validation = 4
	}

	score := v7*1.25 + velocity*3.25 + evergreen*1.85 + quality*2.6 + freshness + recency + validation
	return round4(score)
}

func daysSince(t, now time.Time) float64 {
	d := now.Sub(t).Hours() / 24
	if d < 0 {
		return 0
	}
	return d
}

func round4(v float64) float64 {
	return math.Round(v*10000) / 10000
}

// BuildTrending ranks candidates by trending score. Untitled rows are
// dropped, duplicates collapse to the first occurrence, and the result is
// truncated to the snapshot item ceiling. Ties break on ascending track id
// so the ordering is deterministic.
func BuildTrending(rows []*domain.CandidateRow, now time.Time) domain.RankedItems {
	items := make(domain.RankedItems, 0, len(rows))
	for _, row := range usable(rows) {
		items = append(items, rankedItem(row, TrendingScore(row, now)))
	}

	sort.SliceStable(items, func(i, j int) bool {
		if items[i].Score != items[j].Score {
			return items[i].Score > items[j].Score
		}
		return items[i].TrackID < items[j].TrackID
	})
	return finalize(items)
}

// BuildPopular ranks candidates on a two-key sort: lifetime views, then
// 7-day views. No decay terms apply here; the policy difference from the
// trending section is deliberate.
func BuildPopular(rows []*domain.CandidateRow) domain.RankedItems {
	kept := usable(rows)
	sort.SliceStable(kept, func(i, j int) bool {
		if kept[i].ViewsTotal != kept[j].ViewsTotal {
			return kept[i].ViewsTotal > kept[j].ViewsTotal
		}
		if kept[i].Views7d != kept[j].Views7d {
			return kept[i].Views7d > kept[j].Views7d
		}
		return kept[i].TrackID < kept[j].TrackID
	})

	items := make(domain.RankedItems, 0, len(kept))
	for _, row := range kept {
		items = append(items, rankedItem(row, float64(row.ViewsTotal)))
	}
	return finalize(items)
}

// usable drops rows with no usable title and collapses duplicate entity
// ids, first occurrence wins.
func usable(rows []*domain.CandidateRow) []*domain.CandidateRow {
	kept := make([]*domain.CandidateRow, 0, len(rows))
	seen := make(map[int64]bool, len(rows))
	for _, row := range rows {
		if row.Title == "" || seen[row.TrackID] {
			continue
		}
		seen[row.TrackID] = true
		kept = append(kept, row)
	}
	return kept
}

func rankedItem(row *domain.CandidateRow, score float64) domain.RankedItem {
	return domain.RankedItem{
		TrackID:      row.TrackID,
		VideoID:      row.VideoID,
		Title:        row.Title,
		ArtistName:   row.ArtistName,
		ThumbnailURL: row.ThumbnailURL,
		Score:        score,
	}
}

func finalize(items domain.RankedItems) domain.RankedItems {
	if len(items) > constants.SnapshotMaxItems {
		items = items[:constants.SnapshotMaxItems]
	}
	for i := range items {
		items[i].Rank = i + 1
	}
	return items
}
