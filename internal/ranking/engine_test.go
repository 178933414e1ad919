package ranking

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/melodexapp/melodex/internal/constants"
	"github.com/melodexapp/melodex/internal/domain"
	"github.com/melodexapp/melodex/internal/logger"
	"github.com/melodexapp/melodex/internal/store"
)

func setupEngineDB(t *testing.T) *store.DB {
	t.Helper()
	db, err := store.NewSQLiteDB(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func seedTrack(t *testing.T, db *store.DB, videoID, title string, views7d, viewsTotal int64) int64 {
	t.Helper()
	ids, err := db.UpsertTracks([]*domain.Track{
		{VideoID: videoID, Title: title, ArtistName: "Seed Artist"},
	})
	if err != nil {
		t.Fatalf("failed to seed track: %v", err)
	}
	id := ids[videoID]
	err = db.UpsertTrackStats(&domain.TrackStats{
		TrackID:     id,
		Views7d:     views7d,
		ViewsTotal:  viewsTotal,
		RefreshedAt: time.Now(),
	})
	if err != nil {
		t.Fatalf("failed to seed stats: %v", err)
	}
	return id
}

func TestRefreshAndGetSnapshot(t *testing.T) {
	db := setupEngineDB(t)
	eng := NewEngine(db, logger.Default())

	seedTrack(t, db, "v1", "Quiet One", 10, 100)
	seedTrack(t, db, "v2", "Big Hit", 5000, 100000)
	seedTrack(t, db, "v3", "Riser", 500, 10000)

	result, err := eng.RefreshSnapshot(constants.SectionTrending, "test refresh")
	if err != nil {
		t.Fatalf("refresh failed: %v", err)
	}
	if !result.Persisted || result.RunID == "" || result.Snapshot == nil {
		t.Fatalf("unexpected result: %+v", result)
	}
	if len(result.Snapshot.Items) != 3 {
		t.Fatalf("expected 3 items, got %d", len(result.Snapshot.Items))
	}
	if result.Snapshot.Items[0].VideoID != "v2" {
		t.Errorf("top item = %s, want v2", result.Snapshot.Items[0].VideoID)
	}
	if result.Snapshot.ValidUntil == nil {
		t.Fatal("snapshot should carry a validity window")
	}
	wantExpiry := time.Now().Add(constants.TrendingValidity)
	if diff := result.Snapshot.ValidUntil.Sub(wantExpiry); diff < -time.Minute || diff > time.Minute {
		t.Errorf("valid_until off by %v", diff)
	}

	run, err := db.GetSectionRun(result.RunID)
	if err != nil {
		t.Fatalf("failed to load run: %v", err)
	}
	if run.Status != domain.RunStatusSuccess || run.FinishedAt == nil {
		t.Errorf("run not closed as success: %+v", run)
	}

	got, err := eng.GetSnapshot(constants.SectionTrending)
	if err != nil {
		t.Fatalf("get snapshot failed: %v", err)
	}
	if got == nil || got.ID != result.Snapshot.ID {
		t.Errorf("read back snapshot %+v, want id %d", got, result.Snapshot.ID)
	}
}

func TestRefreshSnapshotPopular(t *testing.T) {
	db := setupEngineDB(t)
	eng := NewEngine(db, logger.Default())

	seedTrack(t, db, "v1", "Evergreen", 10, 900000)
	seedTrack(t, db, "v2", "Fresh Spike", 9000, 1000)

	result, err := eng.RefreshSnapshot(constants.SectionPopular, "")
	if err != nil {
		t.Fatalf("refresh failed: %v", err)
	}
	if result.Snapshot.Items[0].VideoID != "v1" {
		t.Errorf("lifetime views should lead the popular section, got %s first",
			result.Snapshot.Items[0].VideoID)
	}
	wantExpiry := time.Now().Add(constants.PopularValidity)
	if diff := result.Snapshot.ValidUntil.Sub(wantExpiry); diff < -time.Minute || diff > time.Minute {
		t.Errorf("valid_until off by %v", diff)
	}
}

func TestGetSnapshotEmpty(t *testing.T) {
	db := setupEngineDB(t)
	eng := NewEngine(db, logger.Default())

	got, err := eng.GetSnapshot(constants.SectionTrending)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != nil {
		t.Errorf("expected nil snapshot before any refresh, got %+v", got)
	}
}

func TestUnknownSection(t *testing.T) {
	db := setupEngineDB(t)
	eng := NewEngine(db, logger.Default())

	if _, err := eng.GetSnapshot("nope"); !errors.Is(err, ErrUnknownSection) {
		t.Errorf("get: expected ErrUnknownSection, got %v", err)
	}
	if _, err := eng.RefreshSnapshot("nope", ""); !errors.Is(err, ErrUnknownSection) {
		t.Errorf("refresh: expected ErrUnknownSection, got %v", err)
	}
}

// flakyStore lets one persistence call fail while everything else hits the
// real database.
type flakyStore struct {
	*store.DB
	failInsert bool
}

func (f *flakyStore) InsertSnapshot(snapshot *domain.Snapshot) error {
	if f.failInsert {
		return errors.New("disk full")
	}
	return f.DB.InsertSnapshot(snapshot)
}

func TestFailedRefreshKeepsLastGoodSnapshot(t *testing.T) {
	db := setupEngineDB(t)
	flaky := &flakyStore{DB: db}
	eng := NewEngine(flaky, logger.Default())

	seedTrack(t, db, "v1", "Steady", 100, 10000)

	first, err := eng.RefreshSnapshot(constants.SectionTrending, "initial")
	if err != nil {
		t.Fatalf("first refresh failed: %v", err)
	}

	flaky.failInsert = true
	second, err := eng.RefreshSnapshot(constants.SectionTrending, "broken")
	if err == nil {
		t.Fatal("expected refresh error")
	}
	if second.Persisted || second.RunID == "" {
		t.Errorf("failed refresh should report persisted=false with a run id: %+v", second)
	}

	run, err := db.GetSectionRun(second.RunID)
	if err != nil {
		t.Fatalf("failed to load run: %v", err)
	}
	if run.Status != domain.RunStatusError || run.Error == "" {
		t.Errorf("run should be marked errored: %+v", run)
	}

	got, err := eng.GetSnapshot(constants.SectionTrending)
	if err != nil {
		t.Fatalf("get snapshot failed: %v", err)
	}
	if got == nil || got.ID != first.Snapshot.ID {
		t.Errorf("reads should still serve the last good snapshot")
	}
}
