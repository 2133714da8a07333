// Copyright (C) 2026 the starrocks-frontend authors.
// See LICENSE for copying information.

package catalog

import "sync"

// Replica is one copy of a tablet hosted by a storage node.
type Replica struct {
	ID     int64
	NodeID int64
}

// Tablet is a replicated shard of a table partition. The checked state is
// written by finished verification jobs and by replay, and read by selection,
// so it carries its own mutex independent of the database lock.
type Tablet struct {
	checkMeta

	mu             sync.Mutex
	replicas       []*Replica
	checkedVersion int64
	consistent     bool
}

// NewTablet constructs a tablet with no replicas.
func NewTablet(id int64) *Tablet {
	return &Tablet{checkMeta: checkMeta{id: id}}
}

// AddReplica attaches a replica.
func (t *Tablet) AddReplica(replica *Replica) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.replicas = append(t.replicas, replica)
}

// Replicas returns a copy of the replica list.
func (t *Tablet) Replicas() []*Replica {
	t.mu.Lock()
	defer t.mu.Unlock()
	replicas := make([]*Replica, len(t.replicas))
	copy(replicas, t.replicas)
	return replicas
}

// CheckedVersion returns the data version covered by the last finished check.
func (t *Tablet) CheckedVersion() int64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.checkedVersion
}

// IsConsistent returns the verdict of the last finished check.
func (t *Tablet) IsConsistent() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.consistent
}

// SetCheckedState records the verdict of a finished check at a version.
func (t *Tablet) SetCheckedState(version int64, consistent bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.checkedVersion = version
	t.consistent = consistent
}
