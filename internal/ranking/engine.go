package ranking

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/melodexapp/melodex/internal/constants"
	"github.com/melodexapp/melodex/internal/domain"
	"github.com/melodexapp/melodex/internal/logger"
	"github.com/melodexapp/melodex/internal/store"
)

// candidateLimit bounds how many stat rows one refresh pulls from the
// store before scoring.
const candidateLimit = 500

var ErrUnknownSection = errors.New("unknown section")

// Store is the persistence surface the engine needs.
type Store interface {
	ListCandidates(filter store.CandidateFilter) ([]*domain.CandidateRow, error)
	EnsureSection(key, title string) error
	CreateSectionRun(run *domain.SectionRun) error
	FinishSectionRun(runID string, status domain.RunStatus, errMsg string) error
	InsertSnapshot(snapshot *domain.Snapshot) error
	GetOpenSnapshot(sectionKey string) (*domain.Snapshot, error)
}

// Engine builds and persists home-section snapshots.
type Engine struct {
	store Store
	log   *logger.Logger
	now   func() time.Time
}

func NewEngine(st Store, log *logger.Logger) *Engine {
	return &Engine{
		store: st,
		log:   log.WithComponent("ranking"),
		now:   time.Now,
	}
}

type sectionPolicy struct {
	title    string
	validity time.Duration
	build    func(rows []*domain.CandidateRow, now time.Time) domain.RankedItems
}

func policyFor(sectionKey string) (sectionPolicy, error) {
	switch sectionKey {
	case constants.SectionTrending:
		return sectionPolicy{
			title:    "Trending",
			validity: constants.TrendingValidity,
			build:    BuildTrending,
		}, nil
	case constants.SectionPopular:
		return sectionPolicy{
			title:    "Most Popular",
			validity: constants.PopularValidity,
			build: func(rows []*domain.CandidateRow, _ time.Time) domain.RankedItems {
				return BuildPopular(rows)
			},
		}, nil
	default:
		return sectionPolicy{}, fmt.Errorf("%w: %s", ErrUnknownSection, sectionKey)
	}
}

// GetSnapshot returns the currently valid snapshot for the section, or nil
// when none has been generated yet. An expired snapshot is treated the same
// as a missing one.
func (e *Engine) GetSnapshot(sectionKey string) (*domain.Snapshot, error) {
	if _, err := policyFor(sectionKey); err != nil {
		return nil, err
	}
	snapshot, err := e.store.GetOpenSnapshot(sectionKey)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load snapshot for %s: %w", sectionKey, err)
	}
	return snapshot, nil
}

// RefreshSnapshot recomputes one section and persists the result under a
// fresh run row. When persistence fails the run is marked as errored and the
// previously stored snapshot stays untouched, so reads keep serving the last
// good data.
func (e *Engine) RefreshSnapshot(sectionKey, note string) (*domain.RefreshResult, error) {
	policy, err := policyFor(sectionKey)
	if err != nil {
		return nil, err
	}
	if err := e.store.EnsureSection(sectionKey, policy.title); err != nil {
		return nil, err
	}

	now := e.now()
	run := &domain.SectionRun{
		ID:         uuid.NewString(),
		SectionKey: sectionKey,
		Status:     domain.RunStatusRunning,
		Note:       note,
		StartedAt:  now,
	}
	if err := e.store.CreateSectionRun(run); err != nil {
		return nil, fmt.Errorf("failed to open run for %s: %w", sectionKey, err)
	}

	snapshot, err := e.generate(sectionKey, note, policy, now)
	if err != nil {
		if ferr := e.store.FinishSectionRun(run.ID, domain.RunStatusError, err.Error()); ferr != nil {
			e.log.Error("failed to record errored run", "run_id", run.ID, "error", ferr)
		}
		e.log.Error("snapshot refresh failed", "section", sectionKey, "run_id", run.ID, "error", err)
		return &domain.RefreshResult{Persisted: false, RunID: run.ID}, err
	}

	if err := e.store.FinishSectionRun(run.ID, domain.RunStatusSuccess, ""); err != nil {
		e.log.Error("failed to close run", "run_id", run.ID, "error", err)
	}
	e.log.Info("snapshot refreshed",
		"section", sectionKey, "run_id", run.ID, "items", len(snapshot.Items))
	return &domain.RefreshResult{Snapshot: snapshot, Persisted: true, RunID: run.ID}, nil
}

func (e *Engine) generate(sectionKey, note string, policy sectionPolicy, now time.Time) (*domain.Snapshot, error) {
	rows, err := e.store.ListCandidates(store.CandidateFilter{Limit: candidateLimit})
	if err != nil {
		return nil, fmt.Errorf("failed to list candidates: %w", err)
	}

	validUntil := now.Add(policy.validity)
	snapshot := &domain.Snapshot{
		SectionKey:  sectionKey,
		GeneratedAt: now,
		Items:       policy.build(rows, now),
		RefreshNote: note,
		ValidUntil:  &validUntil,
	}
	if err := e.store.InsertSnapshot(snapshot); err != nil {
		return nil, err
	}
	return snapshot, nil
}
