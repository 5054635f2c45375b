package feed

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"yomu/internal/state"
)

var (
	metricFetchCount = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "yomu_source_fetch_total",
		Help: "The total number of source extractions",
	}, []string{"source", "status"})

	metricNewItems = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "yomu_new_items_total",
		Help: "The total number of new items found",
	}, []string{"source"})

	metricRecencyHits = promauto.NewCounter(prometheus.CounterOpts{
		Name: "yomu_recency_cache_hits_total",
		Help: "Undated items dropped because they were already delivered",
	})
)

// Result is the outcome of processing one source.
type Result struct {
	SourceURL string
	Title     string
	Items     []Item
}

// Processor runs the per-source pipeline: extract, filter against the last
// run marker, advance the marker. One Processor owns one RecencyCache shared
// by all sources, so ProcessSource calls must not run concurrently.
type Processor struct {
	extractor Extractor
	store     state.Store
	seen      *RecencyCache
	timeout   time.Duration
	now       func() time.Time
}

func NewProcessor(extractor Extractor, store state.Store, seen *RecencyCache, timeout time.Duration) *Processor {
	return &Processor{
		extractor: extractor,
		store:     store,
		seen:      seen,
		timeout:   timeout,
		now:       time.Now,
	}
}

// ProcessSource returns the items of sourceURL not delivered before. The run
// marker only advances when extraction succeeded.
func (p *Processor) ProcessSource(ctx context.Context, sourceURL string) (*Result, error) {
	logger := slog.With("source", sourceURL)
	logger.Info("Processing source")

	if p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}

	batch, err := p.extractor.Extract(ctx, sourceURL)
	if err != nil {
		metricFetchCount.WithLabelValues(sourceURL, "error").Inc()
		return nil, fmt.Errorf("extracting %s: %w", sourceURL, err)
	}
	metricFetchCount.WithLabelValues(sourceURL, "success").Inc()

	lastRun, err := p.store.GetLastRun(ctx, sourceURL)
	if err != nil {
		return nil, fmt.Errorf("reading last run for %s: %w", sourceURL, err)
	}

	fresh := Filter(batch.Items, lastRun, p.seen)
	if dropped := len(batch.Items) - len(fresh); dropped > 0 {
		logger.Info("Filtered older items", "filtered", dropped, "new", len(fresh))
	}

	if err := p.store.RecordRun(ctx, sourceURL, p.now().UTC()); err != nil {
		return nil, fmt.Errorf("recording run for %s: %w", sourceURL, err)
	}

	metricNewItems.WithLabelValues(sourceURL).Add(float64(len(fresh)))
	logger.Info("Processed source", "items", len(fresh))

	return &Result{SourceURL: sourceURL, Title: batch.Title, Items: fresh}, nil
}
