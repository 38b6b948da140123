// Package jira fetches issues from the Jira REST API and normalises
// them into ticket source items.
package jira

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
	"github.com/custodia-labs/curio/internal/core/domain"
	"github.com/custodia-labs/curio/internal/core/ports/driven"
)

// Ensure Fetcher implements the interface.
var _ driven.Fetcher = (*Fetcher)(nil)

// DefaultTimeout is the per-request timeout.
const DefaultTimeout = 30 * time.Second

// Config holds configuration for the Jira fetcher.
type Config struct {
	// BaseURL is the Jira site URL, e.g. https://example.atlassian.net.
	BaseURL string

	// Email is the account email for basic auth.
	Email string

	// APIToken is the Atlassian API token paired with Email.
	APIToken string

	// Timeout is the request timeout (default: 30s).
	Timeout time.Duration
}

// Fetcher retrieves single Jira issues by key.
type Fetcher struct {
	client  *http.Client
	baseURL string
	email   string
	token   string
	limiter *connectors.RateLimiter
}

type issueResponse struct {
	Key    string `json:"key"`
	Fields struct {
		Summary     string `json:"summary"`
		Description string `json:"description"`
		Status      struct {
			Name string `json:"name"`
		} `json:"status"`
		Comment struct {
			Comments []struct {
				Author struct {
					DisplayName string `json:"displayName"`
				} `json:"author"`
				Body string `json:"body"`
			} `json:"comments"`
		} `json:"comment"`
	} `json:"fields"`
}

// NewFetcher creates a new Jira fetcher.
func NewFetcher(cfg Config) (*Fetcher, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("jira: base URL is required")
	}
	if cfg.Email == "" || cfg.APIToken == "" {
		return nil, fmt.Errorf("jira: email and API token are required")
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}

	return &Fetcher{
		client:  &http.Client{Timeout: cfg.Timeout},
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		email:   cfg.Email,
		token:   cfg.APIToken,
		limiter: connectors.NewRateLimiter(connectors.ServiceJira),
	}, nil
}

// Fetch retrieves the issue with the given key, e.g. "AUTH-142". The
// returned content concatenates summary, description and comments.
func (f *Fetcher) Fetch(ctx context.Context, ref string) (*domain.SourceItem, error) {
	key := strings.TrimSpace(ref)
	if key == "" {
		return nil, fmt.Errorf("%w: empty issue key", domain.ErrInvalidInput)
	}

	if err := f.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	endpoint := fmt.Sprintf("%s/rest/api/2/issue/%s?fields=summary,description,status,comment",
		f.baseURL, url.PathEscape(key))
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
		return nil, fmt.Errorf("issue %s: %w", key, domain.ErrNotFound)
	case http.StatusTooManyRequests:
		retryAfter, _ := strconv.Atoi(resp.Header.Get("Retry-After"))
		f.limiter.RecordRateLimitError(retryAfter)
		return nil, fmt.Errorf("jira: rate limited fetching %s", key)
	default:
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("jira error (status %d): %s", resp.StatusCode, string(body))
	}

	var issue issueResponse
	if err := json.NewDecoder(resp.Body).Decode(&issue); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	var b strings.Builder
	b.WriteString(issue.Fields.Summary)
	if issue.Fields.Description != "" {
		b.WriteString("\n\n")
		b.WriteString(issue.Fields.Description)
	}
	for _, comment := range issue.Fields.Comment.Comments {
		b.WriteString("\n\n")
		if comment.Author.DisplayName != "" {
			b.WriteString(comment.Author.DisplayName)
			b.WriteString(": ")
		}
		b.WriteString(comment.Body)
	}

	return &domain.SourceItem{
		ID:      issue.Key,
		Title:   issue.Fields.Summary,
		Content: b.String(),
		Metadata: map[string]string{
			"source":  "jira",
			"status":  issue.Fields.Status.Name,
			"project": projectKey(issue.Key),
			"url":     f.baseURL + "/browse/" + issue.Key,
		},
	}, nil
}

// projectKey extracts the project prefix from an issue key.
// "AUTH-142" yields "AUTH".
func projectKey(issueKey string) string {
	if i := strings.IndexByte(issueKey, '-'); i > 0 {
		return issueKey[:i]
	}
	return issueKey
}
