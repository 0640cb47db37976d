// Luna Social - Venue Recommendation and Social Compatibility Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lunasocial

// Package storage persists trained ranker models in BadgerDB so a restart
// can resume with the last published model instead of the heuristic only.
//
// # Storage Format
//
// Each snapshot is a single Badger value holding metadata plus the
// gzip-compressed JSON encoding of the model:
//
//	ranker:model:v00000000000000000007  -> snapshot (metadata + payload)
//	ranker:latest                       -> "7"
//
// Version keys are zero-padded so a prefix scan returns them in order.
//
// # Data Integrity
//
// The SHA-256 of the uncompressed JSON is stored in the metadata and checked
// on every load. A model that fails the checksum or ranker.Model.Validate is
// rejected with ErrCorrupt.
//
// # Usage
//
//	db, err := storage.OpenBadger("/data/models", false)
//	store := storage.NewModelStore(db, logger)
//	meta, err := store.Save(ctx, model)
//	model, err := store.LoadLatest(ctx)
//	removed, err := store.Prune(ctx, 5)
//
// # Thread Safety
//
// All operations run inside Badger transactions and are safe for concurrent
// use. Save is serialized so the latest pointer never moves backwards.
package storage
