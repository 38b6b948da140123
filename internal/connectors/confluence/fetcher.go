// Package confluence fetches pages from the Confluence REST API and
// normalises them into wiki source items.
package confluence

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/custodia-labs/curio/internal/connectors"
	"github.com/custodia-labs/curio/internal/connectors/htmltext"
	"github.com/custodia-labs/curio/internal/core/domain"
	"github.com/custodia-labs/curio/internal/core/ports/driven"
)

// Ensure Fetcher implements the interface.
var _ driven.Fetcher = (*Fetcher)(nil)

// DefaultTimeout is the per-request timeout.
const DefaultTimeout = 30 * time.Second

// Config holds configuration for the Confluence fetcher.
type Config struct {
	// BaseURL is the Confluence site URL including the /wiki context
	// path on Atlassian cloud, e.g. https://example.atlassian.net/wiki.
	BaseURL string

	// Email is the account email for basic auth.
	Email string

	// APIToken is the Atlassian API token paired with Email.
	APIToken string

	// Timeout is the request timeout (default: 30s).
	Timeout time.Duration
}

// Fetcher retrieves single Confluence pages by ID.
type Fetcher struct {
	client  *http.Client
	baseURL string
	email   string
	token   string
	limiter *connectors.RateLimiter
}

type pageResponse struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	Space struct {
		Key string `json:"key"`
	} `json:"space"`
	Body struct {
		Storage struct {
			Value string `json:"value"`
		} `json:"storage"`
	} `json:"body"`
	Links struct {
		WebUI string `json:"webui"`
	} `json:"_links"`
}

// NewFetcher creates a new Confluence fetcher.
func NewFetcher(cfg Config) (*Fetcher, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("confluence: base URL is required")
	}
	if cfg.Email == "" || cfg.APIToken == "" {
		return nil, fmt.Errorf("confluence: email and API token are required")
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}

	return &Fetcher{
		client:  &http.Client{Timeout: cfg.Timeout},
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		email:   cfg.Email,
		token:   cfg.APIToken,
		limiter: connectors.NewRateLimiter(connectors.ServiceConfluence),
	}, nil
}

// Fetch retrieves the page with the given ID. The storage-format HTML
// body is reduced to plain text before indexing.
func (f *Fetcher) Fetch(ctx context.Context, ref string) (*domain.SourceItem, error) {
	pageID := strings.TrimSpace(ref)
	if pageID == "" {
		return nil, fmt.Errorf("%w: empty page id", domain.ErrInvalidInput)
	}

	if err := f.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	endpoint := fmt.Sprintf("%s/rest/api/content/%s?expand=body.storage,space",
		f.baseURL, url.PathEscape(pageID))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.SetBasicAuth(f.email, f.token)
	req.Header.Set("Accept", "application/json")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound:
		return nil, fmt.Errorf("page %s: %w", pageID, domain.ErrNotFound)
	case http.StatusTooManyRequests:
		retryAfter, _ := strconv.Atoi(resp.Header.Get("Retry-After"))
		f.limiter.RecordRateLimitError(retryAfter)
		return nil, fmt.Errorf("confluence: rate limited fetching %s", pageID)
	default:
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("confluence error (status %d): %s", resp.StatusCode, string(body))
	}

	var page pageResponse
	if err := json.NewDecoder(resp.Body).Decode(&page); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	text := htmltext.Extract(page.Body.Storage.Value)
	content := page.Title
	if text != "" {
		content += "\n\n" + text
	}

	metadata := map[string]string{
		"source": "confluence",
		"space":  page.Space.Key,
	}
	if page.Links.WebUI != "" {
		metadata["url"] = f.baseURL + page.Links.WebUI
	}

	return &domain.SourceItem{
		ID:       page.ID,
		Title:    page.Title,
		Content:  content,
		Metadata: metadata,
	}, nil
}
