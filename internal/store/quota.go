package store

import (
	"fmt"
	"time"

	"github.com/melodexapp/melodex/internal/domain"
)

const quotaErrorMaxLen = 200

// RecordQuotaUsage appends one row to the quota burn log. The error text is
// truncated so a huge upstream body cannot bloat the log table.
func (db *DB) RecordQuotaUsage(usage *domain.QuotaUsage) error {
	if len(usage.Error) > quotaErrorMaxLen {
		usage.Error = usage.Error[:quotaErrorMaxLen]
	}
	usage.CreatedAt = time.Now()

	_, err := db.NamedExec(`INSERT INTO quota_usage
		(caller_key, endpoint, cost, status, error, created_at)
		VALUES (:caller_key, :endpoint, :cost, :status, :error, :created_at)`, usage)
	if err != nil {
		return fmt.Errorf("failed to record quota usage: %w", err)
	}
	return nil
}

// QuotaSpentSince sums quota cost accrued since the given time.
func (db *DB) QuotaSpentSince(since time.Time) (int, error) {
	var total int
	err := db.Get(&total, `SELECT COALESCE(SUM(cost), 0) FROM quota_usage WHERE created_at >= ?`, since)
	return total, err
}

// GetETag returns the stored ETag for a resource key, or "" when absent.
func (db *DB) GetETag(resourceKey string) (string, error) {
	var etag string
	err := db.Get(&etag, `SELECT etag FROM etags WHERE resource_key = ?`, resourceKey)
	if err != nil {
		return "", nil //nolint:nilerr // missing row means no conditional fetch
	}
	return etag, nil
}

func (db *DB) SetETag(resourceKey, etag string) error {
	_, err := db.Exec(`INSERT INTO etags (resource_key, etag, fetched_at) VALUES (?, ?, ?)
		ON CONFLICT(resource_key) DO UPDATE SET etag = excluded.etag, fetched_at = excluded.fetched_at`,
		resourceKey, etag, time.Now())
	return err
}
