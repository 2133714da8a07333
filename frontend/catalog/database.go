// Copyright (C) 2026 the starrocks-frontend authors.
// See LICENSE for copying information.

package catalog

import (
	"sync"
)

// SystemDatabaseID is the fixed id of the internal metadata database. Its
// objects are never selected for consistency checking.
const SystemDatabaseID int64 = 0

// Database is the root of a catalog subtree. A single reader/writer lock
// covers the whole subtree: DDL and replay take the write lock, readers
// traversing tables and below hold the read lock for the span of the
// traversal.
//
// Lock ordering across the controller is: job registry lock, then a job's
// internal lock, then the database lock. A path that cannot honor that order
// must use TryRLock/TryLock and skip on contention.
type Database struct {
	checkMeta
	name string

	rw     sync.RWMutex
	tables map[int64]*Table
}

// NewDatabase constructs an empty database.
func NewDatabase(id int64, name string) *Database {
	return &Database{
		checkMeta: checkMeta{id: id},
		name:      name,
		tables:    make(map[int64]*Table),
	}
}

// Name returns the database name.
func (db *Database) Name() string { return db.name }

// RLock acquires the database read lock.
func (db *Database) RLock() { db.rw.RLock() }

// RUnlock releases the database read lock.
func (db *Database) RUnlock() { db.rw.RUnlock() }

// TryRLock attempts the database read lock without blocking.
func (db *Database) TryRLock() bool { return db.rw.TryRLock() }

// Lock acquires the database write lock.
func (db *Database) Lock() { db.rw.Lock() }

// Unlock releases the database write lock.
func (db *Database) Unlock() { db.rw.Unlock() }

// TryLock attempts the database write lock without blocking.
func (db *Database) TryLock() bool { return db.rw.TryLock() }

// AddTable registers a table under the database write lock.
func (db *Database) AddTable(table *Table) {
	db.rw.Lock()
	defer db.rw.Unlock()
	db.tables[table.ID()] = table
}

// DropTable removes a table under the database write lock and returns it, or
// nil when absent.
func (db *Database) DropTable(tableID int64) *Table {
	db.rw.Lock()
	defer db.rw.Unlock()
	table := db.tables[tableID]
	delete(db.tables, tableID)
	return table
}

// Table looks up a table by id. The caller must hold the database lock.
func (db *Database) Table(tableID int64) *Table {
	return db.tables[tableID]
}

// Tables returns all tables. The caller must hold the database lock.
func (db *Database) Tables() []*Table {
	tables := make([]*Table, 0, len(db.tables))
	for _, table := range db.tables {
		tables = append(tables, table)
	}
	return tables
}
