package monitor

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/quantpulse/signal-monitor/internal/models"
)

// FetcherFunc adapts a function to the SignalFetcher interface
type FetcherFunc func(ctx context.Context) ([]Observation, error)

// FetchSignals calls the wrapped function
func (f FetcherFunc) FetchSignals(ctx context.Context) ([]Observation, error) {
	return f(ctx)
}

// HTTPFeed fetches observations from an HTTP signal feed. The feed returns a
// JSON array of {symbol, source, signal} objects per poll.
type HTTPFeed struct {
	url    string
	client *http.Client
}

// NewHTTPFeed creates a feed client for the given URL
func NewHTTPFeed(url string, timeout time.Duration) *HTTPFeed {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &HTTPFeed{
		url: url,
		client: &http.Client{
			Timeout: timeout,
		},
	}
}

type feedItem struct {
	Symbol string        `json:"symbol"`
	Source string        `json:"source"`
	Signal models.Signal `json:"signal"`
}

// FetchSignals polls the feed once
func (f *HTTPFeed) FetchSignals(ctx context.Context) ([]Observation, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build feed request: %w", err)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("feed request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("feed returned status %d", resp.StatusCode)
	}

	var items []feedItem
	if err := json.NewDecoder(resp.Body).Decode(&items); err != nil {
		return nil, fmt.Errorf("failed to decode feed response: %w", err)
	}

	observations := make([]Observation, 0, len(items))
	for _, item := range items {
		observations = append(observations, Observation{
			Symbol: item.Symbol,
			Source: item.Source,
			Signal: item.Signal,
		})
	}
	return observations, nil
}
