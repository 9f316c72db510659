// Package market decides whether trading is permitted at a given instant.
package market

import (
	"fmt"
	"time"
)

// Config describes one trading session. Times are "HH:MM" in the session's
// timezone; the window is inclusive on both ends. Holidays is recognized
// here but enforced by the stock catalog, which owns the holiday calendar.
type Config struct {
	OpenTime     string
	CloseTime    string
	Timezone     string
	WeekdaysOnly bool
	Holidays     bool
}

// Status is the clock's answer: open or not, and if not, why.
type Status struct {
	Open   bool
	Reason string
}

// Clock evaluates timestamps against a fixed session config. It holds no
// mutable state and is safe for concurrent use.
type Clock struct {
	openMinute  int // minutes since midnight in loc
	closeMinute int
	loc         *time.Location
	weekdays    bool
}

// NewClock validates the config and resolves the timezone once, up front.
func NewClock(cfg Config) (*Clock, error) {
	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		return nil, fmt.Errorf("load timezone %q: %w", cfg.Timezone, err)
	}

	openMinute, err := parseMinutes(cfg.OpenTime)
	if err != nil {
		return nil, fmt.Errorf("parse open time: %w", err)
	}
	closeMinute, err := parseMinutes(cfg.CloseTime)
	if err != nil {
		return nil, fmt.Errorf("parse close time: %w", err)
	}
	if closeMinute < openMinute {
		return nil, fmt.Errorf("close time %s precedes open time %s", cfg.CloseTime, cfg.OpenTime)
	}

	return &Clock{
		openMinute:  openMinute,
		closeMinute: closeMinute,
		loc:         loc,
		weekdays:    cfg.WeekdaysOnly,
	}, nil
}

// IsOpen converts now into the session timezone and checks the weekday rule
// and the [open, close] window, both boundaries inclusive.
func (c *Clock) IsOpen(now time.Time) Status {
	local := now.In(c.loc)

	if c.weekdays {
		switch local.Weekday() {
		case time.Saturday, time.Sunday:
			return Status{Reason: fmt.Sprintf("market is closed on %s", local.Weekday())}
		}
	}

	minute := local.Hour()*60 + local.Minute()
	if minute < c.openMinute {
		return Status{Reason: fmt.Sprintf("market opens at %s", formatMinutes(c.openMinute))}
	}
	if minute > c.closeMinute {
		return Status{Reason: fmt.Sprintf("market closed at %s", formatMinutes(c.closeMinute))}
	}

	return Status{Open: true}
}

func parseMinutes(s string) (int, error) {
	t, err := time.Parse("15:04", s)
	if err != nil {
		return 0, err
	}
	return t.Hour()*60 + t.Minute(), nil
}

func formatMinutes(m int) string {
	return fmt.Sprintf("%02d:%02d", m/60, m%60)
}
