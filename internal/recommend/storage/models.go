// Luna Social - Venue Recommendation and Social Compatibility Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lunasocial

package storage

import (
	"bytes"
	"compress/gzip"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/tomtom215/lunasocial/internal/recommend/ranker"
)

const (
	modelKeyPrefix = "ranker:model:v"
	latestKey      = "ranker:latest"
)

var (
	// ErrNoModel is returned when no snapshot has been saved yet.
	ErrNoModel = errors.New("no model snapshot stored")

	// ErrCorrupt is returned when a snapshot fails its checksum or decodes
	// into an unusable model.
	ErrCorrupt = errors.New("model snapshot corrupt")

	// ErrVersionExists is returned when Save would overwrite a snapshot.
	ErrVersionExists = errors.New("model snapshot version already stored")
)

// ModelMetadata describes a stored snapshot.
type ModelMetadata struct {
	ModelID   string    `json:"model_id"`
	Version   int64     `json:"version"`
	TrainedAt time.Time `json:"trained_at"`
	SavedAt   time.Time `json:"saved_at"`
	Samples   int       `json:"samples"`
	Trees     int       `json:"trees"`

	// Checksum is the SHA-256 of the uncompressed JSON payload.
	Checksum  string `json:"checksum"`
	SizeBytes int64  `json:"size_bytes"`
}

type snapshot struct {
	Metadata ModelMetadata `json:"metadata"`
	Payload  []byte        `json:"payload"`
}

// ModelStore saves and restores ranker models.
type ModelStore struct {
	db     *badger.DB
	logger zerolog.Logger
	mu     sync.Mutex
}

// OpenBadger opens a Badger database for model snapshots. With inMemory set
// the path is ignored and nothing touches disk.
func OpenBadger(path string, inMemory bool) (*badger.DB, error) {
	opts := badger.DefaultOptions(path)
	if inMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	}
	opts.Logger = nil

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger db for models: %w", err)
	}
	return db, nil
}

// NewModelStore wraps an open Badger database. The caller owns db.
func NewModelStore(db *badger.DB, logger zerolog.Logger) *ModelStore {
	return &ModelStore{
		db:     db,
		logger: logger.With().Str("component", "model_store").Logger(),
	}
}

func versionKey(v int64) []byte {
	return []byte(fmt.Sprintf("%s%020d", modelKeyPrefix, v))
}

func parseVersionKey(key []byte) (int64, bool) {
	v, err := strconv.ParseInt(strings.TrimPrefix(string(key), modelKeyPrefix), 10, 64)
	return v, err == nil
}

// Save writes m under its version and moves the latest pointer to it. A
// version that is already stored is never overwritten; Save returns
// ErrVersionExists instead.
func (s *ModelStore) Save(ctx context.Context, m *ranker.Model) (*ModelMetadata, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if m == nil || m.Version <= 0 {
		return nil, errors.New("model must be published before it is saved")
	}

	raw, err := json.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("encode model: %w", err)
	}
	sum := sha256.Sum256(raw)

	var compressed bytes.Buffer
	gzw := gzip.NewWriter(&compressed)
	if _, err := gzw.Write(raw); err != nil {
		return nil, fmt.Errorf("compress model: %w", err)
	}
	if err := gzw.Close(); err != nil {
		return nil, fmt.Errorf("finalize compression: %w", err)
	}

	meta := ModelMetadata{
		ModelID:   m.ID,
		Version:   m.Version,
		TrainedAt: m.TrainedAt,
		SavedAt:   time.Now().UTC(),
		Samples:   m.Samples,
		Trees:     len(m.Forest.Trees),
		Checksum:  hex.EncodeToString(sum[:]),
		SizeBytes: int64(compressed.Len()),
	}
	value, err := json.Marshal(snapshot{Metadata: meta, Payload: compressed.Bytes()})
	if err != nil {
		return nil, fmt.Errorf("encode snapshot: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	err = s.db.Update(func(txn *badger.Txn) error {
		key := versionKey(m.Version)
		switch _, err := txn.Get(key); {
		case err == nil:
			return fmt.Errorf("version %d: %w", m.Version, ErrVersionExists)
		case !errors.Is(err, badger.ErrKeyNotFound):
			return fmt.Errorf("check snapshot: %w", err)
		}
		if err := txn.Set(key, value); err != nil {
			return fmt.Errorf("set snapshot: %w", err)
		}
		latest, err := latestVersion(txn)
		if err != nil && !errors.Is(err, ErrNoModel) {
			return err
		}
		if m.Version >= latest {
			if err := txn.Set([]byte(latestKey), []byte(strconv.FormatInt(m.Version, 10))); err != nil {
				return fmt.Errorf("set latest pointer: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info().
		Int64("version", meta.Version).
		Int64("size_bytes", meta.SizeBytes).
		Int("samples", meta.Samples).
		Msg("Model snapshot saved")
	return &meta, nil
}

// LoadLatest returns the newest snapshot. It returns ErrNoModel when the
// store is empty.
func (s *ModelStore) LoadLatest(ctx context.Context) (*ranker.Model, *ModelMetadata, error) {
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}

	var version int64
	err := s.db.View(func(txn *badger.Txn) error {
		var err error
		version, err = latestVersion(txn)
		return err
	})
	if err != nil {
		return nil, nil, err
	}
	return s.Load(ctx, version)
}

// Load returns the snapshot stored under version.
func (s *ModelStore) Load(ctx context.Context, version int64) (*ranker.Model, *ModelMetadata, error) {
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}

	var snap snapshot
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(versionKey(version))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return fmt.Errorf("version %d: %w", version, ErrNoModel)
		}
		if err != nil {
			return fmt.Errorf("get snapshot: %w", err)
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &snap)
		})
	})
	if err != nil {
		return nil, nil, err
	}

	m, err := decodeModel(&snap)
	if err != nil {
		return nil, nil, err
	}
	return m, &snap.Metadata, nil
}

func decodeModel(snap *snapshot) (*ranker.Model, error) {
	gzr, err := gzip.NewReader(bytes.NewReader(snap.Payload))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	defer func() { _ = gzr.Close() }() //nolint:errcheck // read-only

	raw, err := io.ReadAll(gzr)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}

	sum := sha256.Sum256(raw)
	if hex.EncodeToString(sum[:]) != snap.Metadata.Checksum {
		return nil, fmt.Errorf("%w: checksum mismatch for version %d", ErrCorrupt, snap.Metadata.Version)
	}

	var m ranker.Model
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	if err := m.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	return &m, nil
}

// MaxVersion returns the highest version the store has ever recorded, or
// zero for an empty store. It reads keys only, so snapshots that no longer
// decode still count.
func (s *ModelStore) MaxVersion(ctx context.Context) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	var highest int64
	err := s.db.View(func(txn *badger.Txn) error {
		if v, err := latestVersion(txn); err == nil {
			highest = v
		}

		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()

		prefix := []byte(modelKeyPrefix)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			if v, ok := parseVersionKey(it.Item().Key()); ok && v > highest {
				highest = v
			}
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("scan snapshot versions: %w", err)
	}
	return highest, nil
}

// List returns metadata for every stored snapshot, oldest first.
func (s *ModelStore) List(ctx context.Context) ([]ModelMetadata, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var out []ModelMetadata
	err := s.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		prefix := []byte(modelKeyPrefix)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			var snap snapshot
			if err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &snap)
			}); err != nil {
				s.logger.Warn().Err(err).Str("key", string(it.Item().Key())).Msg("Skipping unreadable snapshot")
				continue
			}
			out = append(out, snap.Metadata)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list snapshots: %w", err)
	}
	return out, nil
}

// Prune keeps the newest keep snapshots and deletes the rest. It returns the
// number of snapshots removed.
func (s *ModelStore) Prune(ctx context.Context, keep int) (int, error) {
	if keep < 1 {
		return 0, fmt.Errorf("keep must be at least 1, got %d", keep)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	all, err := s.List(ctx)
	if err != nil {
		return 0, err
	}
	if len(all) <= keep {
		return 0, nil
	}

	stale := all[:len(all)-keep]
	err = s.db.Update(func(txn *badger.Txn) error {
		for _, meta := range stale {
			if err := txn.Delete(versionKey(meta.Version)); err != nil {
				return fmt.Errorf("delete version %d: %w", meta.Version, err)
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	s.logger.Debug().Int("removed", len(stale)).Int("kept", keep).Msg("Pruned model snapshots")
	return len(stale), nil
}

func latestVersion(txn *badger.Txn) (int64, error) {
	item, err := txn.Get([]byte(latestKey))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return 0, ErrNoModel
	}
	if err != nil {
		return 0, fmt.Errorf("get latest pointer: %w", err)
	}

	var v int64
	err = item.Value(func(val []byte) error {
		var perr error
		v, perr = strconv.ParseInt(string(val), 10, 64)
		return perr
	})
	if err != nil {
		return 0, fmt.Errorf("%w: latest pointer: %v", ErrCorrupt, err)
	}
	return v, nil
}
