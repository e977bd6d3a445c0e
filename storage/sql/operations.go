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

	"github.com/jinzhu/gorm"
	"github.com/pkg/errors"

	"github.com/l2anchor/rollup-core/core/types"
)

// OperationRecord is one executed op's row within a sealed block (§6
// OperationsSchema), keyed by (block_number, index_in_block) so ops
// replay in the order they were chunk-packed.
type OperationRecord struct {
	ID           uint64 `gorm:"primary_key;auto_increment"`
	BlockNumber  uint64 `gorm:"index"`
	IndexInBlock int
	OpType       byte
	Success      bool
	FeeTokenID   uint16
	Fee          string // decimal string; *big.Int has no native SQL column type
	FailReason   string
	OpGob        []byte `gorm:"type:blob"`
}

func (OperationRecord) TableName() string { return "operations" }

func init() {
	gob.Register(&types.Deposit{})
	gob.Register(&types.Transfer{})
	gob.Register(&types.TransferToNew{})
	gob.Register(&types.Withdraw{})
	gob.Register(&types.ChangePubKey{})
	gob.Register(&types.ForcedExit{})
	gob.Register(&types.FullExit{})
	gob.Register(&types.Swap{})
	gob.Register(&types.MintNFT{})
	gob.Register(&types.WithdrawNFT{})
	gob.Register(types.Noop{})
}

// OperationsSchema persists executed ops.
type OperationsSchema struct {
	db *gorm.DB
}

// NewOperationsSchema wraps db.
func NewOperationsSchema(db *gorm.DB) *OperationsSchema { return &OperationsSchema{db: db} }

// SaveBlockOps replaces every row for blockNumber with ops, in order.
func (s *OperationsSchema) SaveBlockOps(blockNumber uint64, ops []types.ExecutedOp) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("block_number = ?", blockNumber).Delete(&OperationRecord{}).Error; err != nil {
			return err
		}
		for i, op := range ops {
			var buf bytes.Buffer
			if err := gob.NewEncoder(&buf).Encode(&op); err != nil {
				return err
			}
			fee := "0"
			if op.Fee != nil {
				fee = op.Fee.String()
			}
			rec := OperationRecord{
				BlockNumber:  blockNumber,
				IndexInBlock: i,
				OpType:       byte(op.Op.Type()),
				Success:      op.Success,
				FeeTokenID:   uint16(op.FeeTokenID),
				Fee:          fee,
				FailReason:   string(op.FailReason),
				OpGob:        buf.Bytes(),
			}
			if err := tx.Create(&rec).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// LoadBlockOps returns every op row for blockNumber, ordered by chunk
// position.
func (s *OperationsSchema) LoadBlockOps(blockNumber uint64) ([]OperationRecord, error) {
	var recs []OperationRecord
	err := s.db.Where("block_number = ?", blockNumber).Order("index_in_block asc").Find(&recs).Error
	if err != nil {
		return nil, errors.Wrapf(err, "storage/sql: load ops for block %d", blockNumber)
	}
	return recs, nil
}
