// Copyright (C) 2026 the starrocks-frontend authors.
// See LICENSE for copying information.

package consistency

import (
	"strconv"
	"time"
)

// workWindow is the recurring daily span of wall-clock hours during which new
// verification jobs may be created. A window with start > end wraps past
// midnight; equal start and end means the window never opens.
type workWindow struct {
	start int
	end   int
}

// parseWorkWindow parses the configured start and end hours. Both must be
// whole hours in [0, 23]; anything else is a fatal configuration error.
func parseWorkWindow(start, end string) (workWindow, error) {
	startHour, err := parseHour(start)
	if err != nil {
		return workWindow{}, err
	}
	endHour, err := parseHour(end)
	if err != nil {
		return workWindow{}, err
	}
	return workWindow{start: startHour, end: endHour}, nil
}

func parseHour(value string) (int, error) {
	hour, err := strconv.Atoi(value)
	if err != nil {
		return 0, Error.New("invalid work window hour %q: %w", value, err)
	}
	if hour < 0 || hour > 23 {
		return 0, Error.New("work window hour %d out of range [0, 23]", hour)
	}
	return hour, nil
}

// contains reports whether the wall-clock hour of now falls inside the
// window.
func (w workWindow) contains(now time.Time) bool {
	if w.start == w.end {
		return false
	}
	hour := now.Hour()
	if w.start < w.end {
		return hour >= w.start && hour <= w.end
	}
	// window wraps past midnight
	return hour >= w.start || hour <= w.end
}
