// Copyright (C) 2026 the starrocks-frontend authors.
// See LICENSE for copying information.

package catalog

import (
	"sync/atomic"
	"time"
)

// MetaObject is the capability shared by every checkable level of the catalog
// tree (database, table, partition, materialized index, tablet). Consistency
// selection orders objects by ascending last check time.
type MetaObject interface {
	ID() int64
	LastCheckTime() time.Time
	SetLastCheckTime(t time.Time)
}

// checkMeta carries the identity and last-check bookkeeping shared by all
// catalog levels. The timestamp is read by the selection loop while finished
// verifications and replay write it, so it is kept atomic.
type checkMeta struct {
	id            int64
	lastCheckUnix atomic.Int64 // unix milliseconds
}

// ID returns the object's catalog identifier.
func (m *checkMeta) ID() int64 { return m.id }

// LastCheckTime returns the time the object was last covered by a finished
// consistency check. The zero time means it has never been checked.
func (m *checkMeta) LastCheckTime() time.Time {
	millis := m.lastCheckUnix.Load()
	if millis == 0 {
		return time.Time{}
	}
	return time.UnixMilli(millis)
}

// SetLastCheckTime records the time the object was last covered by a finished
// consistency check.
func (m *checkMeta) SetLastCheckTime(t time.Time) {
	m.lastCheckUnix.Store(t.UnixMilli())
}
