// Copyright (C) 2026 the starrocks-frontend authors.
// See LICENSE for copying information.

package consistency

import "sync"

// Registry holds the in-flight verification job of each tablet. At most one
// job exists per tablet id at any time.
//
// Lock order across the controller is:
//
//	registry lock
//	job's internal lock
//	database lock
//
// A path that would acquire a database lock in the reverse order must use the
// database try-locks and skip on contention instead.
type Registry struct {
	mu   sync.RWMutex
	jobs map[int64]*Job
}

// NewRegistry constructs an empty registry.
func NewRegistry() *Registry {
	return &Registry{jobs: make(map[int64]*Job)}
}

// Add inserts a job, rejecting it when the tablet already has one.
func (reg *Registry) Add(job *Job) bool {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	if _, exists := reg.jobs[job.TabletID()]; exists {
		return false
	}
	reg.jobs[job.TabletID()] = job
	return true
}

// Get returns the tablet's job, or nil when none is registered.
func (reg *Registry) Get(tabletID int64) *Job {
	reg.mu.RLock()
	defer reg.mu.RUnlock()
	return reg.jobs[tabletID]
}

// Len returns the number of registered jobs.
func (reg *Registry) Len() int {
	reg.mu.RLock()
	defer reg.mu.RUnlock()
	return len(reg.jobs)
}

// advance calls fn for every registered job under the write lock, removing
// the jobs fn reports done. Holding the write lock across the pass keeps job
// creation and reply lookup out while the state machines move.
func (reg *Registry) advance(fn func(job *Job) (remove bool)) {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	for tabletID, job := range reg.jobs {
		if fn(job) {
			delete(reg.jobs, tabletID)
		}
	}
}
