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

package datarestore

import "github.com/l2anchor/rollup-core/core/types"

// applyOperations folds every staged RollupOpsBlock's ops into the tree,
// in block and chunk order, via the tree's unconditional restore-apply
// path and snapshots the result, completing one Operations -> Done
// transition (§4.7: "applying them to the tree and persisting the
// resulting account updates").
func (d *Driver) applyOperations() error {
	blob, err := d.schema.LoadBlob(opsBlobKey)
	if err != nil {
		return err
	}
	var blocks []RollupOpsBlock
	if err := decodeGob(blob, &blocks); err != nil {
		return err
	}

	var processed uint64
	if n, err := d.schema.LoadProcessedPriorityOps(); err == nil {
		processed = n
	}

	for _, block := range blocks {
		for _, op := range block.Ops {
			if op.Type() == 0 { // Noop tag; see core/types.OpNoop
				continue
			}
			d.tree.ApplyRestoredOp(op)
			if types.IsPriority(op.Type()) {
				processed++
			}
		}
		d.totalCommitted = uint32(block.BlockNumber)
		logger.Info("applied restored block", "block_number", block.BlockNumber, "ops", len(block.Ops))
	}

	if err := d.schema.SaveProcessedPriorityOps(processed); err != nil {
		return err
	}
	if err := d.persistTreeSnapshot(); err != nil {
		return err
	}
	d.opsBlocks = nil
	return nil
}
