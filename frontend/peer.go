// Copyright (C) 2026 the starrocks-frontend authors.
// See LICENSE for copying information.

// Package frontend wires the metadata controller's background services
// together into a runnable peer.
package frontend

import (
	"context"

	"github.com/zeebo/errs"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/dorsegal/starrocks/frontend/catalog"
	"github.com/dorsegal/starrocks/frontend/consistency"
)

// Config is the composed configuration of all frontend services.
type Config struct {
	Consistency consistency.Config
}

// Peer owns the catalog state and the background services operating on it.
//
// architecture: Peer
type Peer struct {
	Log *zap.Logger

	Catalog struct {
		Metastore     *catalog.Metastore
		RecycleBin    *catalog.RecycleBin
		InvertedIndex *catalog.InvertedIndex
		Cluster       *catalog.Cluster
	}

	Consistency struct {
		Checker *consistency.Checker
	}
}

// New constructs a peer with an empty catalog. The task dispatcher and the
// journal are external collaborators supplied by the process.
func New(log *zap.Logger, dispatcher consistency.TaskDispatcher,
	journal consistency.Journal, config Config) (*Peer, error) {

	peer := &Peer{Log: log}
	peer.Catalog.Metastore = catalog.NewMetastore()
	peer.Catalog.RecycleBin = catalog.NewRecycleBin()
	peer.Catalog.InvertedIndex = catalog.NewInvertedIndex()
	peer.Catalog.Cluster = catalog.NewCluster()

	checker, err := consistency.NewChecker(log.Named("consistency"), config.Consistency,
		peer.Catalog.Metastore, peer.Catalog.RecycleBin,
		peer.Catalog.InvertedIndex, peer.Catalog.Cluster,
		dispatcher, journal)
	if err != nil {
		return nil, errs.Combine(err, peer.Close())
	}
	peer.Consistency.Checker = checker

	return peer, nil
}

// Run starts all services and blocks until the context is cancelled or a
// service fails.
func (peer *Peer) Run(ctx context.Context) error {
	group, ctx := errgroup.WithContext(ctx)
	group.Go(func() error {
		return peer.Consistency.Checker.Run(ctx)
	})
	return group.Wait()
}

// Close shuts the services down.
func (peer *Peer) Close() error {
	var group errs.Group
	if peer.Consistency.Checker != nil {
		group.Add(peer.Consistency.Checker.Close())
	}
	return group.Err()
}
