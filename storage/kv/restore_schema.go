// Copyright 2026 The rollup-core Authors
// This file is part of the rollup-core library.
//
// The rollup-core library is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// The rollup-core library is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with the rollup-core library. If not, see <http://www.gnu.org/licenses/>.

package kv

import "encoding/binary"

var (
	keyPhase             = []byte("restore/phase")
	keyLastWatchedBlock  = []byte("restore/last_watched_block")
	keyTreeSnapshot      = []byte("restore/tree_snapshot")
	keyProcessedPriority = []byte("restore/processed_priority_ops")
)

// RestoreSchema persists Data-Restore's own bookkeeping (§4.7): which
// phase it's in, how far it has scanned L1, and the last account-tree
// snapshot taken so a restart can resume from Operations rather than
// replaying from genesis.
type RestoreSchema struct {
	db Database
}

// NewRestoreSchema wraps db.
func NewRestoreSchema(db Database) *RestoreSchema { return &RestoreSchema{db: db} }

// SavePhase persists the current phase.
func (s *RestoreSchema) SavePhase(phase byte) error {
	return s.db.Put(keyPhase, []byte{phase})
}

// LoadPhase returns the persisted phase, or 0 (None) if never set.
func (s *RestoreSchema) LoadPhase() (byte, error) {
	v, err := s.db.Get(keyPhase)
	if err == ErrNotFound {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return v[0], nil
}

// SaveLastWatchedBlock persists the highest L1 block number whose events
// have been fully ingested.
func (s *RestoreSchema) SaveLastWatchedBlock(blockNumber uint64) error {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], blockNumber)
	return s.db.Put(keyLastWatchedBlock, b[:])
}

// LoadLastWatchedBlock returns the persisted cursor, or 0 if never set.
func (s *RestoreSchema) LoadLastWatchedBlock() (uint64, error) {
	v, err := s.db.Get(keyLastWatchedBlock)
	if err == ErrNotFound {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint64(v), nil
}

// SaveProcessedPriorityOps persists how many priority ops have been
// folded into the restored tree, so Operations-phase resume knows where
// to cut the L1 priority-op log it replays.
func (s *RestoreSchema) SaveProcessedPriorityOps(count uint64) error {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], count)
	return s.db.Put(keyProcessedPriority, b[:])
}

// LoadProcessedPriorityOps returns the persisted count, or 0 if never set.
func (s *RestoreSchema) LoadProcessedPriorityOps() (uint64, error) {
	v, err := s.db.Get(keyProcessedPriority)
	if err == ErrNotFound {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint64(v), nil
}

// SaveBlob persists an arbitrary opaque value under a caller-chosen key,
// for driver-specific state (e.g. the in-flight window's decoded logs or
// RollupOpsBlock entries) that this package has no business knowing the
// shape of.
func (s *RestoreSchema) SaveBlob(key string, data []byte) error {
	return s.db.Put(append([]byte("restore/blob/"), key...), data)
}

// LoadBlob returns a previously-saved blob, or (nil, nil) if absent.
func (s *RestoreSchema) LoadBlob(key string) ([]byte, error) {
	v, err := s.db.Get(append([]byte("restore/blob/"), key...))
	if err == ErrNotFound {
		return nil, nil
	}
	return v, err
}

// SaveTreeSnapshot persists an opaque, already-serialized account-tree
// snapshot (produced by core/tree).
func (s *RestoreSchema) SaveTreeSnapshot(data []byte) error {
	return s.db.Put(keyTreeSnapshot, data)
}

// LoadTreeSnapshot returns the persisted snapshot, or (nil, nil) if none
// has been saved yet.
func (s *RestoreSchema) LoadTreeSnapshot() ([]byte, error) {
	v, err := s.db.Get(keyTreeSnapshot)
	if err == ErrNotFound {
		return nil, nil
	}
	return v, err
}
