// Package scheduler drives the recurring snapshot refreshes and the
// re-ingestion sweep on cron cadences.
package scheduler

import (
	"context"

	"github.com/robfig/cron/v3"

	"github.com/melodexapp/melodex/internal/constants"
	"github.com/melodexapp/melodex/internal/domain"
	"github.com/melodexapp/melodex/internal/ingest"
	"github.com/melodexapp/melodex/internal/logger"
)

// sweepBatchSize bounds how many artists one nightly sweep re-ingests.
const sweepBatchSize = 20

// Ranker is the snapshot surface the scheduler drives.
type Ranker interface {
	RefreshSnapshot(sectionKey, note string) (*domain.RefreshResult, error)
}

// ArtistLister supplies the artists due for re-ingestion.
type ArtistLister interface {
	ListArtistsForSweep(limit int) ([]*domain.Artist, error)
}

// Ingester triggers background artist ingestion.
type Ingester interface {
	TriggerArtist(channelID string, opts ingest.Options) bool
}

// Scheduler owns the cron runner. All jobs are best effort; failures are
// logged and the next tick tries again.
type Scheduler struct {
	cron     *cron.Cron
	ranker   Ranker
	ingester Ingester
	artists  ArtistLister
	log      *logger.Logger
}

func New(ranker Ranker, ingester Ingester, artists ArtistLister, log *logger.Logger) *Scheduler {
	return &Scheduler{
		cron:     cron.New(),
		ranker:   ranker,
		ingester: ingester,
		artists:  artists,
		log:      log.WithComponent("scheduler"),
	}
}

// Start registers the jobs and begins ticking. The cadences are staggered
// so the sweep, which spends API quota, never coincides with a ranking
// refresh.
func (s *Scheduler) Start() error {
	jobs := []struct {
		spec string
		name string
		run  func()
	}{
		{constants.TrendingCron, "refresh-trending", func() { s.refresh(constants.SectionTrending) }},
		{constants.PopularCron, "refresh-popular", func() { s.refresh(constants.SectionPopular) }},
		{constants.IngestSweepCron, "ingest-sweep", s.sweep},
	}
	for _, job := range jobs {
		if _, err := s.cron.AddFunc(job.spec, job.run); err != nil {
			return err
		}
		s.log.Info("scheduled job", "job", job.name, "spec", job.spec)
	}
	s.cron.Start()
	return nil
}

// Stop halts the ticker and waits for any running job to finish.
func (s *Scheduler) Stop(ctx context.Context) {
	done := s.cron.Stop()
	select {
	case <-done.Done():
	case <-ctx.Done():
		s.log.Warn("gave up waiting for running jobs", "error", ctx.Err())
	}
}

func (s *Scheduler) refresh(sectionKey string) {
	result, err := s.ranker.RefreshSnapshot(sectionKey, "scheduled refresh")
	if err != nil {
		s.log.Error("scheduled refresh failed", "section", sectionKey, "error", err)
		return
	}
	s.log.Info("scheduled refresh done",
		"section", sectionKey, "run_id", result.RunID, "items", len(result.Snapshot.Items))
}

// sweep re-triggers ingestion for the artists with the stalest data. The
// in-flight guard drops any artist already being ingested.
func (s *Scheduler) sweep() {
	artists, err := s.artists.ListArtistsForSweep(sweepBatchSize)
	if err != nil {
		s.log.Error("sweep listing failed", "error", err)
		return
	}
	triggered := 0
	for _, artist := range artists {
		if artist.ChannelID == nil {
			continue
		}
		if s.ingester.TriggerArtist(*artist.ChannelID, ingest.Options{}) {
			triggered++
		}
	}
	s.log.Info("ingest sweep triggered", "candidates", len(artists), "started", triggered)
}
