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
	"github.com/jinzhu/gorm"
	"github.com/pkg/errors"

	"github.com/l2anchor/rollup-core/core/types"
)

// BlockRecord is one sealed block's committed header row (§6 BlockSchema).
type BlockRecord struct {
	BlockNumber                uint64 `gorm:"primary_key"`
	NewRoot                    string `gorm:"size:66"`
	FeeAccount                 uint32
	BlockSize                  int
	ProcessedPriorityOpsBefore uint64
	ProcessedPriorityOpsAfter  uint64
	Timestamp                  uint64
	CommitGasLimit             uint64
	VerifyGasLimit             uint64
}

func (BlockRecord) TableName() string { return "blocks" }

// BlockSchema persists sealed block headers.
type BlockSchema struct {
	db *gorm.DB
}

// NewBlockSchema wraps db.
func NewBlockSchema(db *gorm.DB) *BlockSchema { return &BlockSchema{db: db} }

// SaveBlock upserts b's header row. The block's executed ops are saved
// separately through OperationsSchema.
func (s *BlockSchema) SaveBlock(b *types.Block) error {
	rec := BlockRecord{
		BlockNumber:                b.BlockNumber,
		NewRoot:                    b.NewRoot.String(),
		FeeAccount:                 uint32(b.FeeAccount),
		BlockSize:                  b.BlockSize,
		ProcessedPriorityOpsBefore: b.ProcessedPriorityOpsBefore,
		ProcessedPriorityOpsAfter:  b.ProcessedPriorityOpsAfter,
		Timestamp:                  b.Timestamp,
		CommitGasLimit:             b.CommitGasLimit,
		VerifyGasLimit:             b.VerifyGasLimit,
	}
	if err := s.db.Save(&rec).Error; err != nil {
		return errors.Wrapf(err, "storage/sql: save block %d", b.BlockNumber)
	}
	return nil
}

// LoadBlock returns the header row for blockNumber, or an error wrapping
// gorm.ErrRecordNotFound.
func (s *BlockSchema) LoadBlock(blockNumber uint64) (BlockRecord, error) {
	var rec BlockRecord
	if err := s.db.First(&rec, "block_number = ?", blockNumber).Error; err != nil {
		return rec, errors.Wrapf(err, "storage/sql: load block %d", blockNumber)
	}
	return rec, nil
}

// MaxBlockNumber returns the highest sealed block number, or 0 if none.
func (s *BlockSchema) MaxBlockNumber() (uint64, error) {
	var rec BlockRecord
	err := s.db.Order("block_number desc").First(&rec).Error
	if err == gorm.ErrRecordNotFound {
		return 0, nil
	}
	if err != nil {
		return 0, errors.Wrap(err, "storage/sql: max block number")
	}
	return rec.BlockNumber, nil
}
