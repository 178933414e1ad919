package catalog

import (
	"bytes"
	"context"
	"fmt"
	"net/http"

	"github.com/melodexapp/melodex/internal/constants"
)

const (
	innertubeClientName    = "WEB_REMIX"
	innertubeClientVersion = "1.20250203.01.00"
)

// browseRequest is the minimal Innertube browse payload.
type browseRequest struct {
	Context  browseContext `json:"context"`
	BrowseID string        `json:"browseId"`
}

type browseContext struct {
	Client browseClient `json:"client"`
}

type browseClient struct {
	ClientName    string `json:"clientName"`
	ClientVersion string `json:"clientVersion"`
	Hl            string `json:"hl"`
	Gl            string `json:"gl"`
}

// Browse fetches one raw browse document for a playlist, album, or channel.
// The document is handed to the parser untouched; this layer only classifies
// transport-level failures. Innertube calls carry zero metered quota but are
// still logged for burn visibility.
func (f *Fetcher) Browse(ctx context.Context, browseID string) ([]byte, FetchResult) {
	var result FetchResult
	defer func() {
		f.logUsage("innertube.browse", constants.QuotaCostBrowse, result)
	}()

	if err := f.limiter.Wait(ctx); err != nil {
		result = failed(StatusHTTPError, err)
		return nil, result
	}

	payload := browseRequest{
		Context: browseContext{
			Client: browseClient{
				ClientName:    innertubeClientName,
				ClientVersion: innertubeClientVersion,
				Hl:            "en",
				Gl:            "US",
			},
		},
		BrowseID: browseID,
	}

	resp, err := f.innertube.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetQueryParam("prettyPrint", "false").
		SetBody(payload).
		Post("/browse")
	if err != nil {
		result = failed(StatusHTTPError, err)
		return nil, result
	}

	if isConsentInterstitial(resp.RawResponse, resp.Body()) {
		result = failed(StatusConsent, fmt.Errorf("innertube.browse: consent interstitial for %s", browseID))
		return nil, result
	}
	if resp.StatusCode() != http.StatusOK {
		result = failed(StatusHTTPError, fmt.Errorf("innertube.browse: HTTP %d: %s", resp.StatusCode(), truncate(resp.Body())))
		return nil, result
	}

	body := resp.Body()
	if len(body) == 0 || body[0] != '{' {
		result = failed(StatusBadPayload, fmt.Errorf("innertube.browse: non-JSON payload for %s", browseID))
		return nil, result
	}

	result = ok()
	return body, result
}

// isConsentInterstitial detects the regional consent redirect, which arrives
// as a 2xx HTML page rather than an error status.
func isConsentInterstitial(raw *http.Response, body []byte) bool {
	if raw != nil && raw.Request != nil && raw.Request.URL != nil {
		if raw.Request.URL.Host == "consent.youtube.com" {
			return true
		}
	}
	return bytes.Contains(body, []byte("consent.youtube.com"))
}
