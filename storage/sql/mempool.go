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

package sql

import (
	"bytes"
	"encoding/gob"
	"time"

	"github.com/jinzhu/gorm"
	"github.com/pkg/errors"

	rcommon "github.com/l2anchor/rollup-core/common"
	"github.com/l2anchor/rollup-core/core/types"
)

// MempoolTxRecord is one pending signed tx (§6 MempoolSchema), durable
// backing for the in-memory per-account queue so a restart doesn't lose
// admitted-but-not-yet-sealed transactions.
type MempoolTxRecord struct {
	Hash         string `gorm:"primary_key;size:66"`
	AccountID    uint32 `gorm:"index"`
	Nonce        uint32
	BatchID      uint64 `gorm:"index"`
	ValidFrom    uint64
	ValidUntil   uint64
	Signature    []byte `gorm:"type:blob"`
	EthSignature []byte `gorm:"type:blob"`
	OpGob        []byte `gorm:"type:blob"`
	ReceivedAt   time.Time
}

func (MempoolTxRecord) TableName() string { return "mempool_txs" }

// MempoolSchema persists the mempool's admitted-but-unsealed tx set.
type MempoolSchema struct {
	db *gorm.DB
}

// NewMempoolSchema wraps db.
func NewMempoolSchema(db *gorm.DB) *MempoolSchema { return &MempoolSchema{db: db} }

// SaveTx upserts one admitted tx.
func (s *MempoolSchema) SaveTx(accountID rcommon.AccountID, nonce uint32, tx *types.SignedTx) error {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(&tx.Op); err != nil {
		return errors.Wrap(err, "storage/sql: encode mempool tx op")
	}
	rec := MempoolTxRecord{
		Hash:         tx.Hash.String(),
		AccountID:    uint32(accountID),
		Nonce:        nonce,
		BatchID:      tx.BatchID,
		ValidFrom:    tx.TimeRange.ValidFrom,
		ValidUntil:   tx.TimeRange.ValidUntil,
		Signature:    tx.Signature,
		EthSignature: tx.EthSignature,
		OpGob:        buf.Bytes(),
		ReceivedAt:   tx.ReceivedAt,
	}
	if err := s.db.Save(&rec).Error; err != nil {
		return errors.Wrapf(err, "storage/sql: save mempool tx %s", rec.Hash)
	}
	return nil
}

// DeleteIncluded removes every row whose hash is in hashes, called once
// their block has sealed.
func (s *MempoolSchema) DeleteIncluded(hashes []rcommon.Hash) error {
	if len(hashes) == 0 {
		return nil
	}
	strs := make([]string, len(hashes))
	for i, h := range hashes {
		strs[i] = h.String()
	}
	if err := s.db.Where("hash in (?)", strs).Delete(&MempoolTxRecord{}).Error; err != nil {
		return errors.Wrap(err, "storage/sql: delete included mempool txs")
	}
	return nil
}

// LoadAll returns every persisted tx, for mempool startup recovery.
func (s *MempoolSchema) LoadAll() ([]MempoolTxRecord, error) {
	var recs []MempoolTxRecord
	if err := s.db.Find(&recs).Error; err != nil {
		return nil, errors.Wrap(err, "storage/sql: load mempool txs")
	}
	return recs, nil
}
