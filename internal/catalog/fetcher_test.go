package catalog

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/melodexapp/melodex/internal/domain"
	"github.com/melodexapp/melodex/internal/logger"
)

// memStore collects quota rows and etags in memory.
type memStore struct {
	usage []domain.QuotaUsage
	etags map[string]string
}

func newMemStore() *memStore {
	return &memStore{etags: make(map[string]string)}
}

func (m *memStore) RecordQuotaUsage(u *domain.QuotaUsage) error {
	m.usage = append(m.usage, *u)
	return nil
}

func (m *memStore) GetETag(key string) (string, error) {
	return m.etags[key], nil
}

func (m *memStore) SetETag(key, etag string) error {
	m.etags[key] = etag
	return nil
}

func newTestFetcher(t *testing.T, handler http.Handler) (*Fetcher, *memStore) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	store := newMemStore()
	f := NewFetcher(Config{
		DataAPIURL:   srv.URL,
		DataAPIKey:   "test-key",
		InnertubeURL: srv.URL,
		CallerKey:    "tester",
	}, store, logger.Default())
	return f, store
}

func TestValidateChannel(t *testing.T) {
	f, store := newTestFetcher(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("key") != "test-key" {
			t.Errorf("Expected api key on request")
		}
		fmt.Fprint(w, `{"items":[{"id":"UC1","snippet":{"title":"Daft Punk",
			"thumbnails":{"high":{"url":"hi.jpg"},"default":{"url":"lo.jpg"}}},
			"contentDetails":{"relatedPlaylists":{"uploads":"UU1"}}}]}`)
	}))

	info, result := f.ValidateChannel(context.Background(), "UC1")
	if !result.OK() {
		t.Fatalf("Expected ok, got %+v", result)
	}
	if info.Title != "Daft Punk" || info.UploadsPlaylistID != "UU1" {
		t.Errorf("Unexpected channel info: %+v", info)
	}
	if info.ThumbnailURL != "hi.jpg" {
		t.Errorf("Expected highest-res thumbnail, got %s", info.ThumbnailURL)
	}
	if len(store.usage) != 1 || store.usage[0].Endpoint != "channels.list" || store.usage[0].Status != "ok" {
		t.Errorf("Expected one ok quota row, got %+v", store.usage)
	}
	if store.usage[0].CallerKey == "tester" || len(store.usage[0].CallerKey) != 16 {
		t.Errorf("Expected hashed caller key, got %q", store.usage[0].CallerKey)
	}
}

func TestValidateChannel_UnknownChannel(t *testing.T) {
	f, _ := newTestFetcher(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"items":[]}`)
	}))
	info, result := f.ValidateChannel(context.Background(), "UCnope")
	if result.OK() || info != nil {
		t.Errorf("Expected failure for unknown channel, got %+v %+v", info, result)
	}
	if result.Status != StatusBadPayload {
		t.Errorf("Expected bad_payload, got %s", result.Status)
	}
}

func TestQuotaLoggedOnFailure(t *testing.T) {
	f, store := newTestFetcher(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "quota exceeded", http.StatusForbidden)
	}))

	_, result := f.ListChannelPlaylists(context.Background(), "UC1", 10)
	if result.OK() {
		t.Fatal("Expected failure result")
	}
	if result.Status != StatusHTTPError {
		t.Errorf("Expected http_error, got %s", result.Status)
	}
	// The quota row must fire on the failure path too.
	if len(store.usage) != 1 {
		t.Fatalf("Expected 1 quota row, got %d", len(store.usage))
	}
	if store.usage[0].Status != "http_error" || store.usage[0].Error == "" {
		t.Errorf("Expected failure row with error text, got %+v", store.usage[0])
	}
}

func TestListChannelPlaylists_ETagShortCircuit(t *testing.T) {
	calls := 0
	f, store := newTestFetcher(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if r.Header.Get("If-None-Match") == `W/"tag1"` {
			w.WriteHeader(http.StatusNotModified)
			return
		}
		w.Header().Set("ETag", `W/"tag1"`)
		fmt.Fprint(w, `{"items":[{"id":"PL1","snippet":{"title":"Discovery","channelId":"UC1"},
			"contentDetails":{"itemCount":14}}]}`)
	}))

	refs, result := f.ListChannelPlaylists(context.Background(), "UC1", 10)
	if !result.OK() || len(refs) != 1 {
		t.Fatalf("Expected 1 playlist, got %v %+v", refs, result)
	}
	if store.etags["playlists:UC1"] != `W/"tag1"` {
		t.Errorf("Expected etag stored, got %q", store.etags["playlists:UC1"])
	}

	refs, result = f.ListChannelPlaylists(context.Background(), "UC1", 10)
	if result.Status != StatusNotModified {
		t.Fatalf("Expected not_modified, got %s", result.Status)
	}
	if refs != nil {
		t.Errorf("Expected nil refs on 304, got %v", refs)
	}
	if calls != 2 {
		t.Errorf("Expected 2 upstream calls, got %d", calls)
	}
	// The 304 costs zero quota.
	last := store.usage[len(store.usage)-1]
	if last.Cost != 0 || last.Status != "not_modified" {
		t.Errorf("Expected zero-cost not_modified row, got %+v", last)
	}
}

func TestListPlaylistItems_Pagination(t *testing.T) {
	f, _ := newTestFetcher(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("pageToken") == "" {
			fmt.Fprint(w, `{"nextPageToken":"p2","items":[
				{"snippet":{"title":"One","position":0},"contentDetails":{"videoId":"v1"}}]}`)
			return
		}
		fmt.Fprint(w, `{"items":[
			{"snippet":{"title":"Two","position":1},"contentDetails":{"videoId":"v2"}}]}`)
	}))

	items, result := f.ListPlaylistItems(context.Background(), "PL1")
	if !result.OK() {
		t.Fatalf("Expected ok, got %+v", result)
	}
	if len(items) != 2 || items[0].VideoID != "v1" || items[1].VideoID != "v2" {
		t.Errorf("Unexpected items: %+v", items)
	}
}

func TestBatchVideoDetails_ChunksOf50(t *testing.T) {
	var batchSizes []int
	f, _ := newTestFetcher(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ids := strings.Split(r.URL.Query().Get("id"), ",")
		batchSizes = append(batchSizes, len(ids))
		fmt.Fprint(w, `{"items":[{"id":"`+ids[0]+`","snippet":{"title":"T"},
			"contentDetails":{"duration":"PT3M35S"},"statistics":{"viewCount":"1234"}}]}`)
	}))

	ids := make([]string, 60)
	for i := range ids {
		ids[i] = fmt.Sprintf("vid%02d", i)
	}
	details, result := f.BatchVideoDetails(context.Background(), ids)
	if !result.OK() {
		t.Fatalf("Expected ok, got %+v", result)
	}
	if len(batchSizes) != 2 || batchSizes[0] != 50 || batchSizes[1] != 10 {
		t.Errorf("Expected batches of 50 and 10, got %v", batchSizes)
	}
	d, okFound := details["vid00"]
	if !okFound {
		t.Fatal("Expected detail for vid00")
	}
	if d.DurationSeconds == nil || *d.DurationSeconds != 215 {
		t.Errorf("Expected 215 seconds, got %v", d.DurationSeconds)
	}
	if d.ViewCount != 1234 {
		t.Errorf("Expected 1234 views, got %d", d.ViewCount)
	}
}

func TestBrowse_ConsentInterstitial(t *testing.T) {
	f, store := newTestFetcher(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<html>please visit consent.youtube.com</html>`)
	}))

	body, result := f.Browse(context.Background(), "PL1")
	if result.OK() || body != nil {
		t.Fatalf("Expected consent failure, got %+v", result)
	}
	if result.Status != StatusConsent {
		t.Errorf("Expected consent status, got %s", result.Status)
	}
	if store.usage[len(store.usage)-1].Status != "consent" {
		t.Errorf("Expected consent row logged, got %+v", store.usage)
	}
}

func TestBrowse_OK(t *testing.T) {
	f, _ := newTestFetcher(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("Expected POST, got %s", r.Method)
		}
		fmt.Fprint(w, `{"contents":{}}`)
	}))

	body, result := f.Browse(context.Background(), "PL1")
	if !result.OK() {
		t.Fatalf("Expected ok, got %+v", result)
	}
	if string(body) != `{"contents":{}}` {
		t.Errorf("Expected raw body passthrough, got %s", body)
	}
}

func TestParseISODuration(t *testing.T) {
	tests := []struct {
		input    string
		expected int
		ok       bool
	}{
		{"PT3M35S", 215, true},
		{"PT1H2M10S", 3730, true},
		{"PT45S", 45, true},
		{"", 0, false},
		{"3:35", 0, false},
	}
	for _, tt := range tests {
		got := parseISODuration(tt.input)
		if tt.ok {
			if got == nil || *got != tt.expected {
				t.Errorf("parseISODuration(%q) = %v, want %d", tt.input, got, tt.expected)
			}
		} else if got != nil {
			t.Errorf("parseISODuration(%q) = %d, want nil", tt.input, *got)
		}
	}
}
