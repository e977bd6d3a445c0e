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

package config

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefault_PopulatesEveryActor(t *testing.T) {
	cfg := Default()
	assert.NotZero(t, cfg.StateKeeper.MaxIterations)
	assert.NotZero(t, cfg.GasCounter.TxGasLimit)
	assert.NotZero(t, cfg.SQL.DSN)
	assert.NotZero(t, cfg.Cache.LRUSize)
	assert.NotZero(t, cfg.Prover.Addr)
}

func TestWriteTOML_ThenLoadTOML_RoundTrips(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "rollup-core.toml")

	cfg := Default()
	cfg.StateKeeper.FeeAccountID = 7
	cfg.FeeSubsidy.Enabled = true

	assert.Nil(t, WriteTOML(path, cfg))

	loaded, err := LoadTOML(path)
	assert.Nil(t, err)
	assert.Equal(t, uint32(7), loaded.StateKeeper.FeeAccountID)
	assert.True(t, loaded.FeeSubsidy.Enabled)
	assert.Equal(t, cfg.SQL.DSN, loaded.SQL.DSN)
}

func TestLoadTOML_MissingFileReturnsError(t *testing.T) {
	_, err := LoadTOML("/nonexistent/path/rollup-core.toml")
	assert.NotNil(t, err)
}
