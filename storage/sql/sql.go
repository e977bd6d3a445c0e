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

// Package sql implements the relational persistent-state schemas of §6 -
// Block, Operations, Ethereum and Mempool - concretely with jinzhu/gorm
// over go-sql-driver/mysql, one gorm.DB per process shared across schemas
// (§5: each actor opens and commits one transaction per call, never holding
// it across a suspension boundary).
package sql

import (
	"github.com/jinzhu/gorm"
	_ "github.com/go-sql-driver/mysql"
	"github.com/pkg/errors"

	"github.com/l2anchor/rollup-core/config"
	rlog "github.com/l2anchor/rollup-core/log"
)

var logger = rlog.NewModuleLogger(rlog.StorageSQL)

// Open dials MySQL through gorm and applies cfg's pool tunables.
func Open(cfg config.SQLConfig) (*gorm.DB, error) {
	db, err := gorm.Open("mysql", cfg.DSN)
	if err != nil {
		return nil, errors.Wrap(err, "storage/sql: open")
	}
	db.DB().SetMaxOpenConns(cfg.MaxOpenConns)
	db.DB().SetMaxIdleConns(cfg.MaxIdleConns)
	db.DB().SetConnMaxLifetime(cfg.ConnMaxLifetime)
	logger.Info("opened SQL store")
	return db, nil
}

// AutoMigrate creates/updates every table this package owns, for local
// development and test setup; production deployments are expected to run
// migrations out of band.
func AutoMigrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&BlockRecord{},
		&OperationRecord{},
		&EthOpRecord{},
		&nonceCounter{},
		&MempoolTxRecord{},
	).Error
	if err != nil {
		return errors.Wrap(err, "storage/sql: automigrate")
	}
	return nil
}
