// Copyright (C) 2026 the starrocks-frontend authors.
// See LICENSE for copying information.

// Package consistency implements the background verification of replicated
// tablets and the garbage collection of stale tablet metadata.
//
// A single control loop periodically selects the least-recently-checked
// tablets, dispatches checksum computation to the nodes hosting each replica,
// and reconciles the replies into a per-tablet verdict. The same loop
// cross-validates the tablet inverted index against the live catalog and the
// recycle bin, removing entries that stay unresolved past a grace period.
package consistency

import (
	"context"

	"github.com/spacemonkeygo/monkit/v3"
	"github.com/zeebo/errs"
)

var (
	// Error is the default consistency errs class.
	Error = errs.Class("consistency")

	mon = monkit.Package()
)

// ChecksumTask asks a storage node to compute the checksum of its replica of
// a tablet at a specific data version.
type ChecksumTask struct {
	NodeID   int64
	TabletID int64
	Version  int64
}

// TaskDispatcher submits checksum tasks to storage nodes. Submission is
// asynchronous: the reply arrives later through
// Checker.HandleChecksumReply, from the transport's own execution context.
//
// Implementations must not call back into the checker synchronously from
// SubmitChecksumTask.
type TaskDispatcher interface {
	SubmitChecksumTask(ctx context.Context, task ChecksumTask) error
}

// Journal persists finished-check records so that other controller replicas
// can apply the same verdict without re-auditing.
type Journal interface {
	LogFinishedConsistencyCheck(ctx context.Context, info *CheckInfo) error
}

// NodeLister enumerates the storage nodes known to the cluster.
type NodeLister interface {
	NodeIDs() []int64
}

// NullDispatcher discards checksum tasks. Used when no task transport is
// wired; jobs dispatched through it time out and are cancelled.
type NullDispatcher struct{}

// SubmitChecksumTask implements TaskDispatcher.
func (NullDispatcher) SubmitChecksumTask(ctx context.Context, task ChecksumTask) error {
	return nil
}

// NullJournal discards finished-check records.
type NullJournal struct{}

// LogFinishedConsistencyCheck implements Journal.
func (NullJournal) LogFinishedConsistencyCheck(ctx context.Context, info *CheckInfo) error {
	return nil
}

var (
	_ TaskDispatcher = NullDispatcher{}
	_ Journal        = NullJournal{}
)
