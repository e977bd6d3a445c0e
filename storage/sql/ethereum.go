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
	"encoding/hex"
	"math/big"

	"github.com/jinzhu/gorm"
	"github.com/pkg/errors"

	rcommon "github.com/l2anchor/rollup-core/common"
	"github.com/l2anchor/rollup-core/ethsender"
)

// EthOpRecord is the last known on-chain state of one Operation the ETH
// Sender is anchoring (§6 EthereumSchema): one row per opID, overwritten
// in place on each gas bump, so only the most recent attempt's tx hash
// survives a restart — matching the pipeline's own in-memory model, which
// only ever needs the latest SentTx to decide whether to bump again.
type EthOpRecord struct {
	OpID          uint64 `gorm:"primary_key"`
	Kind          int
	BlockNumber   uint64
	Calldata      []byte `gorm:"type:blob"`
	LastTxHash    string `gorm:"size:66"`
	Nonce         uint64 `gorm:"index"`
	LastGasPrice  string // decimal string; *big.Int has no native SQL column
	DeadlineBlock uint64
	SentAtUnix    int64
	Confirmed     bool
}

func (EthOpRecord) TableName() string { return "eth_operations" }

// nonceCounter is a single-row table handing out the next reservable
// nonce, standing in for a real chain-synced nonce tracker.
type nonceCounter struct {
	ID   uint64 `gorm:"primary_key"`
	Next uint64
}

func (nonceCounter) TableName() string { return "eth_nonce_counter" }

// EthereumSchema persists ETH Sender's in-flight and confirmed L1 txs,
// implementing ethsender.Store directly.
type EthereumSchema struct {
	db *gorm.DB
}

// NewEthereumSchema wraps db.
func NewEthereumSchema(db *gorm.DB) *EthereumSchema { return &EthereumSchema{db: db} }

// NextNonce returns the next nonce to be reserved without consuming it.
func (s *EthereumSchema) NextNonce() (uint64, error) {
	var c nonceCounter
	err := s.db.FirstOrCreate(&c, nonceCounter{ID: 1}).Error
	if err != nil {
		return 0, errors.Wrap(err, "storage/sql: next nonce")
	}
	return c.Next, nil
}

// ReserveNonce atomically hands out and advances the counter.
func (s *EthereumSchema) ReserveNonce() (uint64, error) {
	var reserved uint64
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var c nonceCounter
		if err := tx.Set("gorm:query_option", "FOR UPDATE").FirstOrCreate(&c, nonceCounter{ID: 1}).Error; err != nil {
			return err
		}
		reserved = c.Next
		return tx.Model(&c).Update("next", c.Next+1).Error
	})
	if err != nil {
		return 0, errors.Wrap(err, "storage/sql: reserve nonce")
	}
	return reserved, nil
}

// SaveUnconfirmed upserts the latest broadcast attempt for opID.
func (s *EthereumSchema) SaveUnconfirmed(opID uint64, tx ethsender.SentTx) error {
	rec := EthOpRecord{
		OpID:          opID,
		LastTxHash:    tx.Hash.String(),
		Nonce:         tx.Nonce,
		LastGasPrice:  tx.GasPrice.String(),
		DeadlineBlock: tx.DeadlineBlock,
		SentAtUnix:    tx.SentAt.Unix(),
	}
	err := s.db.Where(EthOpRecord{OpID: opID}).
		Assign(rec).
		FirstOrCreate(&EthOpRecord{}).Error
	if err != nil {
		return errors.Wrapf(err, "storage/sql: save unconfirmed eth op %d", opID)
	}
	return nil
}

// MarkConfirmed flags opID's row as confirmed.
func (s *EthereumSchema) MarkConfirmed(opID uint64) error {
	err := s.db.Model(&EthOpRecord{}).Where("op_id = ?", opID).Update("confirmed", true).Error
	if err != nil {
		return errors.Wrapf(err, "storage/sql: mark confirmed op %d", opID)
	}
	return nil
}

// LoadUnconfirmed returns every operation not yet marked confirmed,
// ordered by nonce, for ETH Sender startup recovery.
func (s *EthereumSchema) LoadUnconfirmed() ([]ethsender.OperationETHState, error) {
	var recs []EthOpRecord
	if err := s.db.Where("confirmed = ?", false).Order("nonce asc").Find(&recs).Error; err != nil {
		return nil, errors.Wrap(err, "storage/sql: load unconfirmed eth ops")
	}

	out := make([]ethsender.OperationETHState, 0, len(recs))
	for _, r := range recs {
		gasPrice, ok := new(big.Int).SetString(r.LastGasPrice, 10)
		if !ok {
			gasPrice = big.NewInt(0)
		}
		out = append(out, ethsender.OperationETHState{
			Op: ethsender.Operation{
				ID:          r.OpID,
				Kind:        ethsender.OperationKind(r.Kind),
				BlockNumber: r.BlockNumber,
				Calldata:    r.Calldata,
			},
			Txs: []ethsender.SentTx{{
				Hash:          hashFromHex(r.LastTxHash),
				Nonce:         r.Nonce,
				GasPrice:      gasPrice,
				DeadlineBlock: r.DeadlineBlock,
			}},
		})
	}
	return out, nil
}

func hashFromHex(s string) rcommon.Hash {
	var h rcommon.Hash
	if len(s) < 2 {
		return h
	}
	b, err := hex.DecodeString(s[2:])
	if err != nil {
		return h
	}
	copy(h[:], b)
	return h
}
