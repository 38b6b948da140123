// Package stackexchange fetches question threads from the Stack
// Exchange API and normalises them into Q&A source items.
package stackexchange

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
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

// Default configuration values.
const (
	DefaultBaseURL = "https://api.stackexchange.com/2.3"
	DefaultSite    = "stackoverflow"
	DefaultTimeout = 30 * time.Second

	// maxAnswers bounds how many answers are folded into the content.
	maxAnswers = 5
)

// Config holds configuration for the Stack Exchange fetcher.
type Config struct {
	// BaseURL is the API base URL (default: the public 2.3 API).
	BaseURL string

	// Site is the Stack Exchange site (default: stackoverflow).
	Site string

	// Key is an optional API key for a higher request quota.
	Key string

	// Timeout is the request timeout (default: 30s).
	Timeout time.Duration
}

// Fetcher retrieves question threads by question ID.
type Fetcher struct {
	client  *http.Client
	baseURL string
	site    string
	key     string
	limiter *connectors.RateLimiter
}

type question struct {
	QuestionID int      `json:"question_id"`
	Title      string   `json:"title"`
	Body       string   `json:"body"`
	Tags       []string `json:"tags"`
	Link       string   `json:"link"`
	Score      int      `json:"score"`
}

type answer struct {
	Body       string `json:"body"`
	Score      int    `json:"score"`
	IsAccepted bool   `json:"is_accepted"`
}

type wrapper[T any] struct {
	Items        []T    `json:"items"`
	ErrorMessage string `json:"error_message"`
}

// NewFetcher creates a new Stack Exchange fetcher.
func NewFetcher(cfg Config) *Fetcher {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Site == "" {
		cfg.Site = DefaultSite
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}

	return &Fetcher{
		client:  &http.Client{Timeout: cfg.Timeout},
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		site:    cfg.Site,
		key:     cfg.Key,
		limiter: connectors.NewRateLimiter(connectors.ServiceStackExchange),
	}
}

// Fetch retrieves a question thread by numeric question ID. The
// content folds in the question body and the top answers, accepted
// answer first.
func (f *Fetcher) Fetch(ctx context.Context, ref string) (*domain.SourceItem, error) {
	id := strings.TrimSpace(ref)
	if _, err := strconv.Atoi(id); err != nil {
		return nil, fmt.Errorf("%w: question id must be numeric, got %q", domain.ErrInvalidInput, ref)
	}

	questions, err := getItems[question](ctx, f, "/questions/"+id, url.Values{"filter": {"withbody"}})
	if err != nil {
		return nil, err
	}
	if len(questions) == 0 {
		return nil, fmt.Errorf("question %s: %w", id, domain.ErrNotFound)
	}
	q := questions[0]

	answers, err := getItems[answer](ctx, f, "/questions/"+id+"/answers", url.Values{"filter": {"withbody"}, "sort": {"votes"}})
	if err != nil {
		return nil, err
	}

	// Accepted answer first, then by score.
	sort.SliceStable(answers, func(i, j int) bool {
		if answers[i].IsAccepted != answers[j].IsAccepted {
			return answers[i].IsAccepted
		}
		return answers[i].Score > answers[j].Score
	})

	var b strings.Builder
	b.WriteString(q.Title)
	b.WriteString("\n\n")
	b.WriteString(htmltext.Extract(q.Body))
	for i, a := range answers {
		if i == maxAnswers {
			break
		}
		b.WriteString("\n\n")
		if a.IsAccepted {
			b.WriteString("Accepted answer:\n")
		} else {
			b.WriteString(fmt.Sprintf("Answer (score %d):\n", a.Score))
		}
		b.WriteString(htmltext.Extract(a.Body))
	}

	return &domain.SourceItem{
		ID:      strconv.Itoa(q.QuestionID),
		Title:   q.Title,
		Content: b.String(),
		Metadata: map[string]string{
			"source": "stackexchange",
			"site":   f.site,
			"tags":   strings.Join(q.Tags, ","),
			"url":    q.Link,
		},
	}, nil
}

// getItems performs one API call and unwraps the item envelope.
func getItems[T any](ctx context.Context, f *Fetcher, path string, params url.Values) ([]T, error) {
	if err := f.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	params.Set("site", f.site)
	if f.key != "" {
		params.Set("key", f.key)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.baseURL+path+"?"+params.Encode(), http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		retryAfter, _ := strconv.Atoi(resp.Header.Get("Retry-After"))
		f.limiter.RecordRateLimitError(retryAfter)
		return nil, fmt.Errorf("stackexchange: rate limited on %s", path)
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("stackexchange error (status %d): %s", resp.StatusCode, string(body))
	}

	var envelope wrapper[T]
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if envelope.ErrorMessage != "" {
		return nil, fmt.Errorf("stackexchange error: %s", envelope.ErrorMessage)
	}
	return envelope.Items, nil
}
