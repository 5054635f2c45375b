// Package schedule evaluates a fixed set of recurring cron schedules.
package schedule

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/adhocore/gronx"
)

var (
	ErrNoSchedules         = errors.New("no schedules configured")
	ErrInvalidExpression   = errors.New("invalid cron expression")
	errUnreachableSchedule = errors.New("schedule never fires")
)

// Set is an immutable, ordered list of 5-field cron expressions.
type Set struct {
	exprs []string
}

// Parse validates every expression and returns the set. A single invalid
// expression rejects the whole set.
func Parse(exprs []string) (*Set, error) {
	if len(exprs) == 0 {
		return nil, ErrNoSchedules
	}

	now := time.Now()
	valid := make([]string, 0, len(exprs))
	for _, expr := range exprs {
		if err := Validate(expr); err != nil {
			return nil, err
		}
		if !reachable(expr, now) {
			return nil, fmt.Errorf("%w %q: %w", ErrInvalidExpression, expr, errUnreachableSchedule)
		}
		valid = append(valid, strings.TrimSpace(expr))
	}
	return &Set{exprs: valid}, nil
}

// Validate checks a single expression. gronx also accepts 6 and 7 field
// forms, so the field count is enforced here.
func Validate(expr string) error {
	fields := strings.Fields(expr)
	if len(fields) != 5 {
		return fmt.Errorf("%w %q: expected 5 fields (minute hour day-of-month month day-of-week)", ErrInvalidExpression, expr)
	}
	if !gronx.IsValid(expr) {
		return fmt.Errorf("%w %q", ErrInvalidExpression, expr)
	}
	return nil
}

// reachable reports whether expr has a real fire time after now.
// NextTickAfter can return an instant the expression does not match, such
// as for "0 0 30 2 *", so the result is checked again.
func reachable(expr string, now time.Time) bool {
	next, err := gronx.NextTickAfter(expr, now, false)
	if err != nil {
		return false
	}
	g := gronx.New()
	due, err := g.IsDue(expr, next)
	return err == nil && due
}

// Expressions returns a copy of the configured expressions.
func (s *Set) Expressions() []string {
	out := make([]string, len(s.exprs))
	copy(out, s.exprs)
	return out
}

// Next returns the earliest instant strictly after now at which any
// schedule fires. Callers pass the current time on every call; the result
// never depends on a previous fire.
func (s *Set) Next(now time.Time) (time.Time, error) {
	var (
		next  time.Time
		found bool
		errs  []error
	)
	for _, expr := range s.exprs {
		t, err := gronx.NextTickAfter(expr, now, false)
		if err != nil {
			errs = append(errs, fmt.Errorf("%q: %w", expr, err))
			continue
		}
		if !found || t.Before(next) {
			next, found = t, true
		}
	}
	if !found {
		return time.Time{}, errors.Join(errs...)
	}
	return next, nil
}
