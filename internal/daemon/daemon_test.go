package daemon

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"yomu/internal/newsletter"
	"yomu/internal/schedule"
)

type fakeSender struct {
	calls   []time.Time
	clock   *fakeClock
	results []error
	stopAt  int
	cancel  context.CancelFunc
}

func (f *fakeSender) Send(_ context.Context, recipient string, sources []string) error {
	f.calls = append(f.calls, f.clock.now)
	var err error
	if i := len(f.calls) - 1; i < len(f.results) {
		err = f.results[i]
	}
	if len(f.calls) == f.stopAt {
		f.cancel()
	}
	return err
}

type fakeClock struct {
	now    time.Time
	sleeps []time.Duration
}

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) Sleep(ctx context.Context, d time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	c.sleeps = append(c.sleeps, d)
	c.now = c.now.Add(d)
	return nil
}

// saturday7am is 2024-01-06 07:00 UTC, a Saturday.
var saturday7am = time.Date(2024, 1, 6, 7, 0, 0, 0, time.UTC)

func newTestDaemon(t *testing.T, frequencies []string, sender *fakeSender, clock *fakeClock) *Daemon {
	t.Helper()
	d, err := New(frequencies, "reader@example.com", []string{"https://a.example"}, sender)
	require.NoError(t, err)
	d.now = clock.Now
	d.sleep = clock.Sleep
	return d
}

func TestNew_RejectsInvalidFrequency(t *testing.T) {
	d, err := New([]string{"not a cron"}, "reader@example.com", nil, &fakeSender{})
	assert.ErrorIs(t, err, schedule.ErrInvalidExpression)
	assert.Nil(t, d)

	d, err = New([]string{"0 8 * * *", "nope"}, "reader@example.com", nil, &fakeSender{})
	assert.Error(t, err)
	assert.Nil(t, d)
}

func TestNew_RejectsEmptySchedule(t *testing.T) {
	_, err := New(nil, "reader@example.com", nil, &fakeSender{})
	assert.ErrorIs(t, err, schedule.ErrNoSchedules)
}

func TestNextFireTime(t *testing.T) {
	d, err := New([]string{"0 8 * * *", "0 9 * * 0"}, "reader@example.com", nil, &fakeSender{})
	require.NoError(t, err)

	next, err := d.NextFireTime(saturday7am)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 1, 6, 8, 0, 0, 0, time.UTC), next)
}

func TestRun_FiresOncePerScheduledTime(t *testing.T) {
	clock := &fakeClock{now: saturday7am}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	sender := &fakeSender{clock: clock, stopAt: 3, cancel: cancel}
	d := newTestDaemon(t, []string{"0 8 * * *", "0 9 * * 0"}, sender, clock)

	require.NoError(t, d.Run(ctx))

	assert.Equal(t, []time.Time{
		time.Date(2024, 1, 6, 8, 0, 0, 0, time.UTC),
		time.Date(2024, 1, 7, 8, 0, 0, 0, time.UTC),
		time.Date(2024, 1, 7, 9, 0, 0, 0, time.UTC),
	}, sender.calls)
	assert.Equal(t, []time.Duration{time.Hour, 24 * time.Hour, time.Hour}, clock.sleeps)
}

func TestRun_ContinuesAfterFailedPass(t *testing.T) {
	clock := &fakeClock{now: saturday7am}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	sender := &fakeSender{
		clock:   clock,
		results: []error{errors.New("smtp down"), newsletter.ErrNoArticles, nil},
		stopAt:  3,
		cancel:  cancel,
	}
	d := newTestDaemon(t, []string{"0 8 * * *"}, sender, clock)

	require.NoError(t, d.Run(ctx))
	assert.Len(t, sender.calls, 3)
}

func TestRun_RecomputesFromCurrentTime(t *testing.T) {
	clock := &fakeClock{now: saturday7am}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	sender := &fakeSender{clock: clock, stopAt: 2, cancel: cancel}
	d := newTestDaemon(t, []string{"0 8 * * *"}, sender, clock)

	// The first pass takes three days, as if the process had been suspended.
	d.sender = senderFunc(func(ctx context.Context, r string, s []string) error {
		err := sender.Send(ctx, r, s)
		if len(sender.calls) == 1 {
			clock.now = clock.now.Add(72 * time.Hour)
		}
		return err
	})

	require.NoError(t, d.Run(ctx))
	assert.Equal(t, []time.Time{
		time.Date(2024, 1, 6, 8, 0, 0, 0, time.UTC),
		time.Date(2024, 1, 10, 8, 0, 0, 0, time.UTC),
	}, sender.calls)
}

func TestRun_StopsWhenCancelled(t *testing.T) {
	clock := &fakeClock{now: saturday7am}
	sender := &fakeSender{clock: clock}
	d := newTestDaemon(t, []string{"0 8 * * *"}, sender, clock)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.NoError(t, d.Run(ctx))
	assert.Empty(t, sender.calls)
}

func TestSleepContext(t *testing.T) {
	assert.NoError(t, sleepContext(context.Background(), time.Millisecond))
	assert.NoError(t, sleepContext(context.Background(), -time.Second))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, sleepContext(ctx, time.Hour), context.Canceled)
}

type senderFunc func(ctx context.Context, recipient string, sources []string) error

func (f senderFunc) Send(ctx context.Context, recipient string, sources []string) error {
	return f(ctx, recipient, sources)
}
