// YouTube Data API v3 implementation of [DestinationProvider]
//
// Playlist mutations are throttled with a [rate.Limiter] because each
// insert/delete costs 50 quota units; search costs 100, which is why the
// engine caches resolved video IDs so aggressively.
package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/ytsync/internal/models"
	"github.com/desertthunder/ytsync/internal/shared"
	"golang.org/x/oauth2"
	"golang.org/x/time/rate"
)

const (
	googleTokenURL = "https://oauth2.googleapis.com/token"
	youtubeScope   = "https://www.googleapis.com/auth/youtube"

	defaultYTBaseURL = "https://www.googleapis.com/youtube/v3"

	maxSearchResults = 5
	maxRetries       = 3
)

// ytErrorResponse is the error envelope Google APIs return.
type ytErrorResponse struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Errors  []struct {
			Reason string `json:"reason"`
		} `json:"errors"`
	} `json:"error"`
}

// ytSnippet is the playlist item / search result snippet.
type ytSnippet struct {
	Title                  string `json:"title"`
	ChannelTitle           string `json:"channelTitle"`
	VideoOwnerChannelTitle string `json:"videoOwnerChannelTitle"`
	Position               int    `json:"position"`
}

// YouTubeService implements [DestinationProvider] for the YouTube Data API.
type YouTubeService struct {
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
	logger     *log.Logger

	// sleep is swappable so retry backoff can be observed without waiting.
	sleep func(time.Duration)
}

// YouTubeOpts contains configuration options for creating a YouTubeService.
type YouTubeOpts struct {
	BaseURL    string
	HTTPClient *http.Client
	RateLimit  float64 // mutating calls per second; <= 0 disables throttling
	Logger     *log.Logger
}

// NewYouTubeService creates a new YouTube Data API service instance.
func NewYouTubeService(opts YouTubeOpts) *YouTubeService {
	if opts.BaseURL == "" {
		opts.BaseURL = defaultYTBaseURL
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = http.DefaultClient
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}

	limit := rate.Inf
	if opts.RateLimit > 0 {
		limit = rate.Limit(opts.RateLimit)
	}

	return &YouTubeService{
		baseURL:    opts.BaseURL,
		httpClient: opts.HTTPClient,
		limiter:    rate.NewLimiter(limit, 1),
		logger:     opts.Logger,
		sleep:      time.Sleep,
	}
}

func (y *YouTubeService) Name() string {
	return "YouTube"
}

// Authenticate builds an [oauth2] client from a refresh token. Expects
// "client_id", "client_secret" and "refresh_token" in credentials; the
// access token is minted and renewed transparently.
func (y *YouTubeService) Authenticate(ctx context.Context, credentials map[string]string) error {
	clientID, ok := credentials["client_id"]
	if !ok || clientID == "" {
		return fmt.Errorf("%w: missing client_id", shared.ErrMissingCredentials)
	}

	clientSecret, ok := credentials["client_secret"]
	if !ok || clientSecret == "" {
		return fmt.Errorf("%w: missing client_secret", shared.ErrMissingCredentials)
	}

	refreshToken, ok := credentials["refresh_token"]
	if !ok || refreshToken == "" {
		return fmt.Errorf("%w: missing refresh_token", shared.ErrNoRefreshToken)
	}

	config := &oauth2.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		Scopes:       []string{youtubeScope},
		Endpoint:     oauth2.Endpoint{TokenURL: googleTokenURL},
	}

	y.httpClient = config.Client(ctx, &oauth2.Token{RefreshToken: refreshToken})
	return nil
}

// classify maps an API error response to the run-level failure taxonomy.
// Quota exhaustion and 409 SERVICE_UNAVAILABLE short-circuit the whole run;
// everything else is an ordinary per-operation failure.
func classify(status int, body []byte) error {
	var errResp ytErrorResponse
	_ = json.Unmarshal(body, &errResp)

	reason := ""
	if len(errResp.Error.Errors) > 0 {
		reason = errResp.Error.Errors[0].Reason
	}

	if status == http.StatusForbidden && (reason == "quotaExceeded" || strings.Contains(errResp.Error.Message, "quota")) {
		return fmt.Errorf("%w: %s", shared.ErrQuotaExceeded, errResp.Error.Message)
	}

	if status == http.StatusConflict && strings.Contains(errResp.Error.Message, "SERVICE_UNAVAILABLE") {
		return fmt.Errorf("%w: %s", shared.ErrSyncAborted, errResp.Error.Message)
	}

	if errResp.Error.Message != "" {
		return fmt.Errorf("%w: status %d: %s", shared.ErrAPIRequest, status, errResp.Error.Message)
	}
	return fmt.Errorf("%w: status %d", shared.ErrAPIRequest, status)
}

// retryable reports whether a failed request may be reissued. Quota and
// abort errors are final; server errors get exponential backoff.
func retryable(status int) bool {
	return status >= 500
}

// doRequest performs an authenticated request with retry for transient
// server errors and decodes the JSON response into result.
func (y *YouTubeService) doRequest(ctx context.Context, method, endpoint string, payload, result any) error {
	var body []byte
	if payload != nil {
		var err error
		body, err = json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
	}

	for attempt := 0; attempt < maxRetries; attempt++ {
		var reader io.Reader
		if body != nil {
			reader = bytes.NewReader(body)
		}

		req, err := http.NewRequestWithContext(ctx, method, y.baseURL+endpoint, reader)
		if err != nil {
			return fmt.Errorf("failed to create request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := y.httpClient.Do(req)
		if err != nil {
			if attempt < maxRetries-1 {
				wait := time.Duration(1<<attempt) * time.Second
				y.logger.Warn("network error, retrying", "endpoint", endpoint, "wait", wait, "err", err)
				y.sleep(wait)
				continue
			}
			return fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
		}

		respBody, readErr := io.ReadAll(resp.Body)
		resp.Body.Close()
		if readErr != nil {
			return fmt.Errorf("failed to read response: %w", readErr)
		}

		if resp.StatusCode >= 200 && resp.StatusCode < 300 {
			if result != nil {
				if err := json.Unmarshal(respBody, result); err != nil {
					return fmt.Errorf("failed to decode response: %w", err)
				}
			}
			return nil
		}

		if retryable(resp.StatusCode) && attempt < maxRetries-1 {
			wait := time.Duration(1<<attempt) * time.Second
			y.logger.Warn("server error, retrying", "endpoint", endpoint, "status", resp.StatusCode, "wait", wait)
			y.sleep(wait)
			continue
		}

		return classify(resp.StatusCode, respBody)
	}

	return fmt.Errorf("%w: %s failed after %d attempts", shared.ErrAPIRequest, endpoint, maxRetries)
}

// GetPlaylistItems retrieves the full ordered playlist snapshot, paging 50
// items at a time. Costs 1 quota unit per page.
func (y *YouTubeService) GetPlaylistItems(ctx context.Context, playlistID string) ([]models.PlaylistItem, error) {
	var items []models.PlaylistItem
	pageToken := ""

	for {
		endpoint := fmt.Sprintf("/playlistItems?part=snippet,contentDetails&playlistId=%s&maxResults=50", url.QueryEscape(playlistID))
		if pageToken != "" {
			endpoint += "&pageToken=" + url.QueryEscape(pageToken)
		}

		var page struct {
			Items []struct {
				ID             string    `json:"id"`
				Snippet        ytSnippet `json:"snippet"`
				ContentDetails struct {
					VideoID string `json:"videoId"`
				} `json:"contentDetails"`
			} `json:"items"`
			NextPageToken string `json:"nextPageToken"`
		}

		if err := y.doRequest(ctx, http.MethodGet, endpoint, nil, &page); err != nil {
			return nil, err
		}

		for _, item := range page.Items {
			if item.ID == "" || item.ContentDetails.VideoID == "" {
				continue
			}
			items = append(items, models.PlaylistItem{
				ItemID:   item.ID,
				VideoID:  item.ContentDetails.VideoID,
				Title:    item.Snippet.Title,
				Channel:  item.Snippet.VideoOwnerChannelTitle,
				Position: item.Snippet.Position,
			})
		}

		pageToken = page.NextPageToken
		if pageToken == "" {
			break
		}
	}

	return items, nil
}

// Search issues a music-category video search for "{title} {artist}
// official audio" and returns the results in API ranking order. Costs 100
// quota units, which is why callers consult the cache first.
func (y *YouTubeService) Search(ctx context.Context, title, artist string) ([]models.SearchResult, error) {
	query := fmt.Sprintf("%s %s official audio", title, artist)
	endpoint := fmt.Sprintf("/search?part=snippet&q=%s&type=video&videoCategoryId=10&maxResults=%d",
		url.QueryEscape(query), maxSearchResults)

	var page struct {
		Items []struct {
			ID struct {
				VideoID string `json:"videoId"`
			} `json:"id"`
			Snippet ytSnippet `json:"snippet"`
		} `json:"items"`
	}

	if err := y.doRequest(ctx, http.MethodGet, endpoint, nil, &page); err != nil {
		return nil, err
	}

	results := make([]models.SearchResult, 0, len(page.Items))
	for _, item := range page.Items {
		if item.ID.VideoID == "" {
			continue
		}
		results = append(results, models.SearchResult{
			VideoID: item.ID.VideoID,
			Title:   item.Snippet.Title,
			Channel: item.Snippet.ChannelTitle,
		})
	}

	return results, nil
}

// Insert adds a video to the playlist at the given target position.
// Costs 50 quota units.
func (y *YouTubeService) Insert(ctx context.Context, playlistID, videoID, title string, position int) error {
	if err := y.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}

	payload := map[string]any{
		"snippet": map[string]any{
			"playlistId": playlistID,
			"position":   position,
			"resourceId": map[string]any{
				"kind":    "youtube#video",
				"videoId": videoID,
			},
		},
	}

	if err := y.doRequest(ctx, http.MethodPost, "/playlistItems?part=snippet", payload, nil); err != nil {
		return err
	}

	y.logger.Info("added to playlist", "video", videoID, "title", title, "position", position)
	return nil
}

// Delete removes a playlist item by its stable item ID. Costs 50 quota units.
func (y *YouTubeService) Delete(ctx context.Context, itemID, title string) error {
	if err := y.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}

	endpoint := "/playlistItems?id=" + url.QueryEscape(itemID)
	if err := y.doRequest(ctx, http.MethodDelete, endpoint, nil, nil); err != nil {
		return err
	}

	y.logger.Info("removed from playlist", "item", itemID, "title", title)
	return nil
}
