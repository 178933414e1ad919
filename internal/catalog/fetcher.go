// Package catalog wraps outbound calls to the upstream catalog's paginated
// list endpoints and its internal browse API. Every call is tagged with its
// quota cost and endpoint name, logged on success and failure alike, and
// surfaced to callers as a FetchResult instead of an error.
package catalog

import (
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/go-resty/resty/v2"
	"golang.org/x/time/rate"

	"github.com/melodexapp/melodex/internal/constants"
	"github.com/melodexapp/melodex/internal/domain"
	"github.com/melodexapp/melodex/internal/logger"
)

// UsageStore is the slice of the store the fetcher needs: the append-only
// quota log and the ETag cache.
type UsageStore interface {
	RecordQuotaUsage(usage *domain.QuotaUsage) error
	GetETag(resourceKey string) (string, error)
	SetETag(resourceKey, etag string) error
}

// Config holds fetcher construction parameters.
type Config struct {
	DataAPIURL   string
	DataAPIKey   string
	InnertubeURL string
	CallerKey    string
	Timeout      time.Duration
}

// Fetcher issues quota-aware calls against the upstream catalog.
type Fetcher struct {
	data      *resty.Client
	innertube *resty.Client
	apiKey    string
	callerKey string // hashed once at construction
	limiter   *rate.Limiter
	store     UsageStore
	log       *logger.Logger
}

func NewFetcher(cfg Config, store UsageStore, log *logger.Logger) *Fetcher {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = constants.DefaultHTTPTimeout
	}

	sum := sha256.Sum256([]byte(cfg.CallerKey))

	return &Fetcher{
		data:      resty.New().SetBaseURL(cfg.DataAPIURL).SetTimeout(timeout),
		innertube: resty.New().SetBaseURL(cfg.InnertubeURL).SetTimeout(timeout),
		apiKey:    cfg.DataAPIKey,
		callerKey: hex.EncodeToString(sum[:])[:16],
		limiter:   rate.NewLimiter(rate.Limit(constants.RequestsPerSecond), 1),
		store:     store,
		log:       log.WithComponent("fetcher"),
	}
}

// logUsage appends one quota-log row. It runs in the cleanup phase of every
// call so operators see quota burn on both outcomes; a failing log write is
// itself only logged, never propagated.
func (f *Fetcher) logUsage(endpoint string, cost int, result FetchResult) {
	usage := &domain.QuotaUsage{
		CallerKey: f.callerKey,
		Endpoint:  endpoint,
		Cost:      cost,
		Status:    string(result.Status),
		Error:     result.errText(),
	}
	if err := f.store.RecordQuotaUsage(usage); err != nil {
		f.log.Error("failed to record quota usage", "endpoint", endpoint, "error", err)
	}
	f.log.Debug("upstream call", "endpoint", endpoint, "cost", cost, "status", result.Status)
}
