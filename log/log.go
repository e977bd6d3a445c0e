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

// Package log provides the structured, per-module loggers used throughout
// the rollup core. Every subsystem pulls its own named logger via
// NewModuleLogger, tagged with its module name.
package log

import (
	"os"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// ModuleName identifies the subsystem a logger belongs to. Kept as a plain
// string (rather than an enum of fixed IDs) since the module set here is
// open-ended across actors, storage backends and CLI glue.
type ModuleName string

const (
	StateKeeper  ModuleName = "statekeeper"
	Mempool      ModuleName = "mempool"
	EthSender    ModuleName = "ethsender"
	DataRestore  ModuleName = "datarestore"
	AccountTree  ModuleName = "tree"
	GasCounter   ModuleName = "gas"
	Pubdata      ModuleName = "pubdata"
	StorageKV    ModuleName = "storage/kv"
	StorageSQL   ModuleName = "storage/sql"
	StorageCache ModuleName = "storage/cache"
	EventBus     ModuleName = "eventbus"
	ProverClient ModuleName = "proverclient"
	Config       ModuleName = "config"
	CLI          ModuleName = "cli"
)

var (
	mu      sync.RWMutex
	levels  = map[ModuleName]zapcore.Level{}
	base    *zap.Logger
	baseSet bool
)

func rootLogger() *zap.Logger {
	mu.RLock()
	if baseSet {
		defer mu.RUnlock()
		return base
	}
	mu.RUnlock()

	mu.Lock()
	defer mu.Unlock()
	if !baseSet {
		cfg := zap.NewProductionConfig()
		cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
		cfg.OutputPaths = []string{"stderr"}
		l, err := cfg.Build(zap.AddCallerSkip(1))
		if err != nil {
			// Logging must never be the reason the process can't start.
			l = zap.NewNop()
		}
		base = l
		baseSet = true
	}
	return base
}

// Logger is the interface every module logger implements. It deliberately
// matches the classic key/value structured-logging call shape (message
// followed by alternating key, value pairs) rather than zap's strongly
// typed Field API, so call sites stay terse.
type Logger interface {
	Trace(msg string, ctx ...interface{})
	Debug(msg string, ctx ...interface{})
	Info(msg string, ctx ...interface{})
	Warn(msg string, ctx ...interface{})
	Error(msg string, ctx ...interface{})
	Fatal(msg string, ctx ...interface{})
	NewWith(ctx ...interface{}) Logger
}

type moduleLogger struct {
	name   ModuleName
	sugar  *zap.SugaredLogger
	extras []interface{}
}

// NewModuleLogger returns the logger for the given module, pre-tagged with
// a "module" field so log aggregation can filter per subsystem.
func NewModuleLogger(name ModuleName) Logger {
	s := rootLogger().Sugar().With("module", string(name))
	return &moduleLogger{name: name, sugar: s}
}

func (l *moduleLogger) with(ctx []interface{}) *zap.SugaredLogger {
	if len(l.extras) == 0 {
		return l.sugar.With(ctx...)
	}
	all := make([]interface{}, 0, len(l.extras)+len(ctx))
	all = append(all, l.extras...)
	all = append(all, ctx...)
	return l.sugar.With(all...)
}

func (l *moduleLogger) Trace(msg string, ctx ...interface{}) { l.with(ctx).Debugw(msg) }
func (l *moduleLogger) Debug(msg string, ctx ...interface{}) { l.with(ctx).Debugw(msg) }
func (l *moduleLogger) Info(msg string, ctx ...interface{})  { l.with(ctx).Infow(msg) }
func (l *moduleLogger) Warn(msg string, ctx ...interface{})  { l.with(ctx).Warnw(msg) }
func (l *moduleLogger) Error(msg string, ctx ...interface{}) { l.with(ctx).Errorw(msg) }

// Fatal logs at error level, flushes buffered log entries, and terminates
// the process. Used by the fatal error paths of §7: a failed L1 anchor, a
// tree-root mismatch, or an unparseable Data-Restore event.
func (l *moduleLogger) Fatal(msg string, ctx ...interface{}) {
	l.with(ctx).Errorw(msg)
	_ = l.sugar.Desugar().Sync()
	os.Exit(1)
}

func (l *moduleLogger) NewWith(ctx ...interface{}) Logger {
	extras := make([]interface{}, 0, len(l.extras)+len(ctx))
	extras = append(extras, l.extras...)
	extras = append(extras, ctx...)
	return &moduleLogger{name: l.name, sugar: l.sugar, extras: extras}
}

// SetLevel records a level for a single module. The module loggers do not
// consult the recorded levels, so the verbosity of their output does not
// change.
func SetLevel(name ModuleName, lvl zapcore.Level) {
	mu.Lock()
	defer mu.Unlock()
	levels[name] = lvl
}
