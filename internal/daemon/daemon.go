// Package daemon runs delivery passes on a set of cron schedules.
//
// The loop is strictly sequential: compute the next fire time from the
// current clock, sleep until then, run one pass, repeat. Passes never
// overlap, and a failed pass does not affect later fires.
package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"yomu/internal/newsletter"
	"yomu/internal/schedule"
)

var (
	metricDispatchCount = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "yomu_dispatch_total",
		Help: "The total number of delivery passes",
	}, []string{"status"})

	metricNextFire = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "yomu_next_fire_timestamp_seconds",
		Help: "Unix time of the next scheduled delivery pass",
	})
)

// Sender runs one delivery pass for recipient over sources.
type Sender interface {
	Send(ctx context.Context, recipient string, sources []string) error
}

type Daemon struct {
	schedules *schedule.Set
	sender    Sender
	recipient string
	sources   []string

	now   func() time.Time
	sleep func(ctx context.Context, d time.Duration) error
}

// New validates every frequency before returning; no daemon is built from
// a partially valid schedule set.
func New(frequencies []string, recipient string, sources []string, sender Sender) (*Daemon, error) {
	set, err := schedule.Parse(frequencies)
	if err != nil {
		return nil, err
	}
	return &Daemon{
		schedules: set,
		sender:    sender,
		recipient: recipient,
		sources:   append([]string(nil), sources...),
		now:       time.Now,
		sleep:     sleepContext,
	}, nil
}

// NextFireTime returns the earliest fire across all schedules after now.
func (d *Daemon) NextFireTime(now time.Time) (time.Time, error) {
	return d.schedules.Next(now)
}

// Run blocks until ctx is cancelled. It returns an error only when no
// schedule can produce a next fire time.
func (d *Daemon) Run(ctx context.Context) error {
	slog.Info("Daemon started", "schedules", d.schedules.Expressions(), "sources", len(d.sources))

	for {
		now := d.now()
		next, err := d.NextFireTime(now)
		if err != nil {
			return fmt.Errorf("computing next fire time: %w", err)
		}
		metricNextFire.Set(float64(next.Unix()))
		slog.Info("Next newsletter scheduled", "at", next)

		if err := d.sleep(ctx, next.Sub(now)); err != nil {
			return nil
		}
		d.Dispatch(ctx)
	}
}

// Dispatch runs a single delivery pass and logs its outcome.
func (d *Daemon) Dispatch(ctx context.Context) {
	err := d.sender.Send(ctx, d.recipient, d.sources)
	switch {
	case err == nil:
		metricDispatchCount.WithLabelValues("sent").Inc()
	case errors.Is(err, newsletter.ErrNoArticles), errors.Is(err, newsletter.ErrNoSources):
		metricDispatchCount.WithLabelValues("empty").Inc()
		slog.Info("Nothing to deliver", "recipient", d.recipient, "reason", err)
	default:
		metricDispatchCount.WithLabelValues("error").Inc()
		slog.Error("Delivery pass failed", "recipient", d.recipient, "error", err)
	}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
