// Copyright (C) 2026 the starrocks-frontend authors.
// See LICENSE for copying information.

package consistency

import "github.com/puzpuzpuz/xsync/v3"

// CreatingTableGuard reference-counts tables that are mid-creation. While a
// table's count is above zero its tablets are excluded from the tablet meta
// sweep: they exist in the inverted index before they are wired into the
// catalog tree and would otherwise look orphaned. Creation attempts for the
// same table id may overlap, hence a count rather than a flag.
type CreatingTableGuard struct {
	counters *xsync.MapOf[int64, int]
}

// NewCreatingTableGuard constructs an empty guard.
func NewCreatingTableGuard() *CreatingTableGuard {
	return &CreatingTableGuard{counters: xsync.NewMapOf[int64, int]()}
}

// AddCreatingTable increments the table's creation count. Called by the table
// creation workflow before it registers tablets in the inverted index.
func (guard *CreatingTableGuard) AddCreatingTable(tableID int64) {
	guard.counters.Compute(tableID, func(count int, loaded bool) (int, bool) {
		return count + 1, false
	})
}

// DeleteCreatingTable decrements the table's creation count, removing the
// entry when it reaches zero. Extra decrements are ignored.
func (guard *CreatingTableGuard) DeleteCreatingTable(tableID int64) {
	guard.counters.Compute(tableID, func(count int, loaded bool) (int, bool) {
		if !loaded || count <= 1 {
			return 0, true
		}
		return count - 1, false
	})
}

// Contains reports whether the table is currently mid-creation.
func (guard *CreatingTableGuard) Contains(tableID int64) bool {
	_, ok := guard.counters.Load(tableID)
	return ok
}
