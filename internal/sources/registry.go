// Package sources holds read-mostly reference data about the upstream
// producers of signal observations, with rolling success/error bookkeeping
// updated by the monitoring loop after each fetch.
package sources

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/quantpulse/signal-monitor/internal/models"
)

// Registry keeps the registered signal sources keyed by ID
type Registry struct {
	mu      sync.RWMutex
	sources map[string]*models.SignalSource
	// fetch counters feeding SuccessRate
	attempts map[string]int64
}

// NewRegistry creates a registry seeded with the built-in sources
func NewRegistry() *Registry {
	r := &Registry{
		sources:  make(map[string]*models.SignalSource),
		attempts: make(map[string]int64),
	}
	for _, src := range seedSources() {
		r.sources[src.ID] = src
	}
	return r
}

func seedSources() []*models.SignalSource {
	return []*models.SignalSource{
		{
			ID:              "technical",
			Name:            "Technical Indicators",
			Category:        "technical",
			Reliability:     0.85,
			ExpectedLatency: 2 * time.Second,
			Enabled:         true,
			SuccessRate:     1.0,
		},
		{
			ID:              "sentiment",
			Name:            "News Sentiment",
			Category:        "sentiment",
			Reliability:     0.7,
			ExpectedLatency: 30 * time.Second,
			Enabled:         true,
			SuccessRate:     1.0,
		},
		{
			ID:              "ai",
			Name:            "AI Signal Model",
			Category:        "ai",
			Reliability:     0.75,
			ExpectedLatency: 5 * time.Second,
			Enabled:         true,
			SuccessRate:     1.0,
		},
	}
}

// Register adds a source. Fails if the ID is already taken.
func (r *Registry) Register(src *models.SignalSource) error {
	if src == nil || src.ID == "" {
		return fmt.Errorf("source must have an ID")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.sources[src.ID]; exists {
		return fmt.Errorf("source already registered: %s", src.ID)
	}
	copied := *src
	r.sources[src.ID] = &copied
	return nil
}

// Get returns the source with the given ID, or nil if unknown
func (r *Registry) Get(id string) *models.SignalSource {
	r.mu.RLock()
	defer r.mu.RUnlock()

	src, exists := r.sources[id]
	if !exists {
		return nil
	}
	copied := *src
	return &copied
}

// List returns all registered sources ordered by ID
func (r *Registry) List() []*models.SignalSource {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*models.SignalSource, 0, len(r.sources))
	for _, src := range r.sources {
		copied := *src
		out = append(out, &copied)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].ID < out[j].ID
	})
	return out
}

// RecordSuccess records a successful fetch from a source
func (r *Registry) RecordSuccess(id string) {
	r.record(id, true)
}

// RecordError records a failed fetch from a source
func (r *Registry) RecordError(id string) {
	r.record(id, false)
}

func (r *Registry) record(id string, success bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	src, exists := r.sources[id]
	if !exists {
		return
	}

	r.attempts[id]++
	if !success {
		src.ErrorCount++
	}
	attempts := r.attempts[id]
	src.SuccessRate = float64(attempts-src.ErrorCount) / float64(attempts)
}
