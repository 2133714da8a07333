// Copyright (C) 2026 the starrocks-frontend authors.
// See LICENSE for copying information.

package catalog

import (
	"sort"
	"sync"
)

// Metastore is the live in-memory catalog: the set of databases and their
// subtrees. Databases carry their own subtree locks; the metastore lock only
// guards the database map itself.
type Metastore struct {
	mu        sync.RWMutex
	databases map[int64]*Database
}

// NewMetastore constructs an empty metastore.
func NewMetastore() *Metastore {
	return &Metastore{databases: make(map[int64]*Database)}
}

// AddDatabase registers a database.
func (store *Metastore) AddDatabase(db *Database) {
	store.mu.Lock()
	defer store.mu.Unlock()
	store.databases[db.ID()] = db
}

// DropDatabase removes a database and returns it, or nil when absent.
func (store *Metastore) DropDatabase(dbID int64) *Database {
	store.mu.Lock()
	defer store.mu.Unlock()
	db := store.databases[dbID]
	delete(store.databases, dbID)
	return db
}

// Database returns a database by id, or nil.
func (store *Metastore) Database(dbID int64) *Database {
	store.mu.RLock()
	defer store.mu.RUnlock()
	return store.databases[dbID]
}

// DatabaseIDs returns all database ids in stable order.
func (store *Metastore) DatabaseIDs() []int64 {
	store.mu.RLock()
	defer store.mu.RUnlock()
	ids := make([]int64, 0, len(store.databases))
	for id := range store.databases {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}
