package timedtext

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Cue is one caption event with millisecond timing.
type Cue struct {
	StartMs    int64
	DurationMs int64
	Text       string
}

type response struct {
	Events []event `json:"events"`
}

type event struct {
	TStartMs    int64     `json:"tStartMs"`
	DDurationMs int64     `json:"dDurationMs"`
	Segs        []segment `json:"segs,omitempty"`
}

type segment struct {
	UTF8 string `json:"utf8"`
}

// RetryConfig tunes transient-failure handling for caption fetches.
type RetryConfig struct {
	MaxRetries       int
	InitialBackoff   time.Duration
	MaxBackoff       time.Duration
	RetryStatusCodes []int
}

func (c RetryConfig) withDefaults() RetryConfig {
	if c.MaxRetries <= 0 {
		c.MaxRetries = 3
	}
	if c.InitialBackoff <= 0 {
		c.InitialBackoff = 500 * time.Millisecond
	}
	if c.MaxBackoff <= 0 {
		c.MaxBackoff = 4 * time.Second
	}
	if len(c.RetryStatusCodes) == 0 {
		c.RetryStatusCodes = []int{http.StatusTooManyRequests, http.StatusInternalServerError, http.StatusBadGateway, http.StatusServiceUnavailable}
	}
	return c
}

// Fetcher downloads caption tracks from the timedtext endpoint.
type Fetcher struct {
	client *http.Client
	retry  RetryConfig
}

func NewFetcher(client *http.Client, retry RetryConfig) *Fetcher {
	if client == nil {
		client = http.DefaultClient
	}
	return &Fetcher{
		client: client,
		retry:  retry.withDefaults(),
	}
}

// Fetch downloads and parses the caption track at trackURL. The json3
// format parameter is forced; any fmt already present is overridden.
func (f *Fetcher) Fetch(ctx context.Context, trackURL string, headers http.Header) ([]Cue, error) {
	u, err := url.Parse(trackURL)
	if err != nil {
		return nil, fmt.Errorf("invalid caption url: %w", err)
	}
	q := u.Query()
	q.Set("fmt", "json3")
	u.RawQuery = q.Encode()

	body, err := f.get(ctx, u.String(), headers)
	if err != nil {
		return nil, err
	}
	return Parse(body)
}

func (f *Fetcher) get(ctx context.Context, fetchURL string, headers http.Header) ([]byte, error) {
	backoff := f.retry.InitialBackoff
	var lastErr error
	for attempt := 0; attempt <= f.retry.MaxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(backoff):
			}
			backoff *= 2
			if backoff > f.retry.MaxBackoff {
				backoff = f.retry.MaxBackoff
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, fetchURL, nil)
		if err != nil {
			return nil, err
		}
		for k, values := range headers {
			for _, v := range values {
				req.Header.Add(k, v)
			}
		}

		resp, err := f.client.Do(req)
		if err != nil {
			lastErr = err
			continue
		}
		if resp.StatusCode == http.StatusOK {
			defer resp.Body.Close()
			return io.ReadAll(resp.Body)
		}
		resp.Body.Close()
		lastErr = &StatusError{StatusCode: resp.StatusCode}
		if !f.retryable(resp.StatusCode) {
			return nil, lastErr
		}
	}
	return nil, fmt.Errorf("caption fetch failed after %d attempt(s): %w", f.retry.MaxRetries+1, lastErr)
}

func (f *Fetcher) retryable(status int) bool {
	for _, code := range f.retry.RetryStatusCodes {
		if status == code {
			return true
		}
	}
	return false
}

// StatusError indicates a non-200 timedtext response.
type StatusError struct {
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("timedtext http status=%d", e.StatusCode)
}

// Parse decodes a json3 timedtext document into cues. Events without text
// segments (window styling, wave data) are skipped.
func Parse(data []byte) ([]Cue, error) {
	var resp response
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, fmt.Errorf("unmarshal timedtext json: %w", err)
	}

	var cues []Cue
	for _, ev := range resp.Events {
		if len(ev.Segs) == 0 {
			continue
		}
		var text strings.Builder
		for _, seg := range ev.Segs {
			text.WriteString(seg.UTF8)
		}
		trimmed := strings.TrimSpace(text.String())
		if trimmed == "" {
			continue
		}
		cues = append(cues, Cue{
			StartMs:    ev.TStartMs,
			DurationMs: ev.DDurationMs,
			Text:       trimmed,
		})
	}
	return cues, nil
}
