package ranking

import (
	"fmt"
	"math"
	"testing"
	"time"

	"github.com/melodexapp/melodex/internal/constants"
	"github.com/melodexapp/melodex/internal/domain"
)

func candidate(id int64, title string, views7d, viewsTotal int64) *domain.CandidateRow {
	return &domain.CandidateRow{
		TrackID:     id,
		VideoID:     fmt.Sprintf("v%d", id),
		Title:       title,
		ArtistName:  "Artist",
		Views7d:     views7d,
		ViewsTotal:  viewsTotal,
		RefreshedAt: time.Now(),
	}
}

func TestTrendingScore(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	t.Run("worked example", func(t *testing.T) {
		row := &domain.CandidateRow{
			TrackID:           1,
			Title:             "Song",
			Views7d:           1000,
			ViewsTotal:        50000,
			RefreshedAt:       now,
			LastInteractionAt: &now,
		}
		got := TrendingScore(row, now)
		if math.Abs(got-1410.7907) > 0.0001 {
			t.Errorf("score = %v, want 1410.7907", got)
		}
	})

	t.Run("monotonic in weekly views", func(t *testing.T) {
		lo := candidate(1, "a", 100, 1000)
		hi := candidate(2, "b", 200, 1000)
		lo.RefreshedAt, hi.RefreshedAt = now, now
		if TrendingScore(lo, now) >= TrendingScore(hi, now) {
			t.Error("more weekly views should never score lower")
		}
	})

	t.Run("validation bonus", func(t *testing.T) {
		plain := candidate(1, "a", 50, 500)
		plain.RefreshedAt = now
		validated := *plain
		validated.Validated = true
		diff := TrendingScore(&validated, now) - TrendingScore(plain, now)
		if math.Abs(diff-4) > 0.0001 {
			t.Errorf("validation bonus = %v, want 4", diff)
		}
	})

	t.Run("freshness decays and floors at zero", func(t *testing.T) {
		fresh := candidate(1, "a", 0, 0)
		fresh.RefreshedAt = now
		stale := candidate(2, "b", 0, 0)
		stale.RefreshedAt = now.Add(-200 * 24 * time.Hour)
		if f, s := TrendingScore(fresh, now), TrendingScore(stale, now); f != 24 || s != 0 {
			t.Errorf("fresh = %v stale = %v, want 24 and 0", f, s)
		}
	})

	t.Run("missing interaction means no recency term", func(t *testing.T) {
		row := candidate(1, "a", 0, 0)
		row.RefreshedAt = now
		withRecent := *row
		withRecent.LastInteractionAt = &now
		if TrendingScore(&withRecent, now)-TrendingScore(row, now) != 14 {
			t.Error("interaction at refresh time should add the full recency term")
		}
	})

	t.Run("negative weekly views clamp to zero", func(t *testing.T) {
		neg := candidate(1, "a", -50, 100)
		zero := candidate(1, "a", 0, 100)
		neg.RefreshedAt, zero.RefreshedAt = now, now
		if TrendingScore(neg, now) != TrendingScore(zero, now) {
			t.Error("negative views_7d should score like zero")
		}
	})
}

func TestBuildTrending(t *testing.T) {
	now := time.Now()

	t.Run("orders by descending score with ranks", func(t *testing.T) {
		rows := []*domain.CandidateRow{
			candidate(1, "low", 10, 100),
			candidate(2, "high", 5000, 100000),
			candidate(3, "mid", 500, 10000),
		}
		items := BuildTrending(rows, now)
		if len(items) != 3 {
			t.Fatalf("expected 3 items, got %d", len(items))
		}
		if items[0].TrackID != 2 || items[1].TrackID != 3 || items[2].TrackID != 1 {
			t.Errorf("unexpected order: %v %v %v", items[0].TrackID, items[1].TrackID, items[2].TrackID)
		}
		for i, item := range items {
			if item.Rank != i+1 {
				t.Errorf("item %d has rank %d", i, item.Rank)
			}
		}
	})

	t.Run("equal scores break ties on ascending id", func(t *testing.T) {
		rows := []*domain.CandidateRow{
			candidate(9, "b", 100, 1000),
			candidate(3, "a", 100, 1000),
		}
		items := BuildTrending(rows, now)
		if items[0].TrackID != 3 || items[1].TrackID != 9 {
			t.Errorf("tie should order by id: got %d then %d", items[0].TrackID, items[1].TrackID)
		}
	})

	t.Run("drops untitled rows and duplicate ids", func(t *testing.T) {
		first := candidate(1, "keep", 100, 1000)
		dup := candidate(1, "dropped duplicate", 9999, 999999)
		rows := []*domain.CandidateRow{
			first,
			candidate(2, "", 5000, 50000),
			dup,
		}
		items := BuildTrending(rows, now)
		if len(items) != 1 {
			t.Fatalf("expected 1 item, got %d", len(items))
		}
		if items[0].Title != "keep" {
			t.Errorf("first occurrence should win, got %q", items[0].Title)
		}
	})

	t.Run("truncates to the item ceiling", func(t *testing.T) {
		var rows []*domain.CandidateRow
		for i := 1; i <= constants.SnapshotMaxItems+7; i++ {
			rows = append(rows, candidate(int64(i), fmt.Sprintf("t%d", i), int64(i*10), int64(i*100)))
		}
		items := BuildTrending(rows, now)
		if len(items) != constants.SnapshotMaxItems {
			t.Errorf("expected %d items, got %d", constants.SnapshotMaxItems, len(items))
		}
	})
}

func TestBuildPopular(t *testing.T) {
	rows := []*domain.CandidateRow{
		candidate(1, "old hit", 10, 900000),
		candidate(2, "spiking", 8000, 900000),
		candidate(3, "small", 9000, 1000),
	}
	items := BuildPopular(rows)
	if len(items) != 3 {
		t.Fatalf("expected 3 items, got %d", len(items))
	}
	// lifetime views decide first, weekly views only split the tie
	if items[0].TrackID != 2 || items[1].TrackID != 1 || items[2].TrackID != 3 {
		t.Errorf("unexpected order: %v %v %v", items[0].TrackID, items[1].TrackID, items[2].TrackID)
	}
}
