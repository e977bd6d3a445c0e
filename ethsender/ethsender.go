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

// Package ethsender implements the L1 Anchor Pipeline of §4.6: the FIFO
// commit/verify/withdraw queue that turns finalized off-chain operations
// into confirmed L1 transactions, with stuck-tx gas bumping and a
// fatal-on-failed-receipt policy.
package ethsender

import (
	"context"
	"encoding/binary"
	"errors"
	"math/big"
	"time"

	rcommon "github.com/l2anchor/rollup-core/common"
	"github.com/l2anchor/rollup-core/config"
	rlog "github.com/l2anchor/rollup-core/log"
	"github.com/l2anchor/rollup-core/metrics"
)

var logger = rlog.NewModuleLogger(rlog.EthSender)

var (
	confirmedCounter = metrics.NewRegisteredCounter("ethsender/confirmed")
	bumpedCounter    = metrics.NewRegisteredCounter("ethsender/gas_bumped")
	inFlightGauge    = metrics.NewRegisteredGauge("ethsender/in_flight")
)

var (
	ErrRpcError          = errors.New("ethsender: rpc error")
	ErrSigningError      = errors.New("ethsender: signing error")
	ErrNonceConflict     = errors.New("ethsender: nonce conflict")
	ErrReceiptStatusFail = errors.New("ethsender: receipt status failure")
)

// OperationKind is the anchor operation families §4.6 streams separately:
// commit, verify (prove), execute (finalizes withdrawals on L1), and the
// completeWithdrawals call a confirmed Verify auto-enqueues.
type OperationKind int

const (
	OpCommit OperationKind = iota
	OpVerify
	OpExecute
	OpCompleteWithdrawals
)

// Operation is one finalized off-chain action waiting to be anchored.
type Operation struct {
	ID          uint64
	Kind        OperationKind
	BlockNumber uint64
	Calldata    []byte
}

// SentTx is one L1 tx broadcast for an Operation; an operation may
// accumulate several because of gas-price bumps.
type SentTx struct {
	Hash          rcommon.Hash
	Nonce         uint64
	GasPrice      *big.Int
	DeadlineBlock uint64
	SentAt        time.Time
}

// OperationETHState tracks one operation and every L1 tx sent for it
// (§4.6 "ongoing queue").
type OperationETHState struct {
	Op  Operation
	Txs []SentTx
}

// Receipt mirrors the subset of an L1 receipt the pipeline needs.
type Receipt struct {
	Found         bool
	Success       bool
	Confirmations uint64
}

// L1Client abstracts the Ethereum JSON-RPC surface the pipeline drives:
// broadcasting signed calldata and polling for receipts/gas price/block
// height. A real implementation wraps go-ethereum's ethclient; tests use
// an in-memory fake.
type L1Client interface {
	CurrentBlock(ctx context.Context) (uint64, error)
	GasPrice(ctx context.Context) (*big.Int, error)
	SendTransaction(ctx context.Context, nonce uint64, gasPrice *big.Int, calldata []byte) (rcommon.Hash, error)
	TransactionReceipt(ctx context.Context, hash rcommon.Hash, currentBlock uint64) (Receipt, error)
}

// Store abstracts the persisted state the pipeline needs to survive a
// restart (§4.6 "nonce source from the database", "on restart, unconfirmed
// ops are reloaded").
type Store interface {
	NextNonce() (uint64, error)
	ReserveNonce() (uint64, error)
	SaveUnconfirmed(opID uint64, tx SentTx) error
	MarkConfirmed(opID uint64) error
	LoadUnconfirmed() ([]OperationETHState, error)
}

// Pipeline is the L1 Anchor Pipeline actor. It is not safe for concurrent
// use; Run drives it from a single goroutine.
type Pipeline struct {
	cfg    config.EthSenderConfig
	client L1Client
	store  Store

	inbound chan Operation
	quit    chan struct{}

	ongoing []OperationETHState // FIFO, head is oldest
	pending []Operation         // not yet sent, FIFO per §4.6 "tx queue"

	onVerified func(Operation)

	// autoOpSeq hands out ids for operations the pipeline enqueues on its
	// own behalf (completeWithdrawals), kept well above any caller-assigned
	// id (those track block numbers) so the two id spaces never collide.
	autoOpSeq uint64
}

// New constructs a Pipeline, reloading any unconfirmed operations left
// over from a previous process lifetime.
func New(cfg config.EthSenderConfig, client L1Client, store Store, onVerified func(Operation)) (*Pipeline, error) {
	p := &Pipeline{
		cfg:        cfg,
		client:     client,
		store:      store,
		inbound:    make(chan Operation, 256),
		quit:       make(chan struct{}),
		onVerified: onVerified,
		autoOpSeq:  1 << 62,
	}
	ongoing, err := store.LoadUnconfirmed()
	if err != nil {
		return nil, err
	}
	p.ongoing = ongoing
	return p, nil
}

// Submit enqueues a finalized operation for anchoring.
func (p *Pipeline) Submit(op Operation) { p.inbound <- op }

// Stop ends Run.
func (p *Pipeline) Stop() { close(p.quit) }

// Run is the event loop of §4.6, firing every TxPollPeriod.
func (p *Pipeline) Run(ctx context.Context) {
	ticker := time.NewTicker(p.cfg.TxPollPeriod)
	defer ticker.Stop()
	for {
		select {
		case <-p.quit:
			return
		case <-ctx.Done():
			return
		case op := <-p.inbound:
			p.pending = append(p.pending, op)
		case <-ticker.C:
			p.tick(ctx)
		}
	}
}

func (p *Pipeline) tick(ctx context.Context) {
	for len(p.inbound) > 0 {
		p.pending = append(p.pending, <-p.inbound)
	}

	p.drainPending(ctx)
	p.checkHead(ctx)
	inFlightGauge.Update(int64(len(p.ongoing)))
}

// drainPending pops as many tx-queue entries as MaxTxsInFlight allows,
// assigns a nonce, signs, persists, and broadcasts each (§4.6 item 2).
func (p *Pipeline) drainPending(ctx context.Context) {
	for len(p.ongoing) < p.cfg.MaxTxsInFlight && len(p.pending) > 0 {
		op := p.pending[0]
		p.pending = p.pending[1:]

		nonce, err := p.store.ReserveNonce()
		if err != nil {
			logger.Error("failed to reserve nonce", "err", err)
			p.pending = append([]Operation{op}, p.pending...)
			return
		}
		gasPrice, err := p.client.GasPrice(ctx)
		if err != nil {
			logger.Warn("gas price rpc failed, retrying next tick", "err", err)
			p.pending = append([]Operation{op}, p.pending...)
			return
		}
		hash, err := p.client.SendTransaction(ctx, nonce, gasPrice, op.Calldata)
		if err != nil {
			logger.Warn("broadcast failed, retrying next tick", "err", err)
			p.pending = append([]Operation{op}, p.pending...)
			return
		}

		block, _ := p.client.CurrentBlock(ctx)
		sent := SentTx{Hash: hash, Nonce: nonce, GasPrice: gasPrice, DeadlineBlock: block + p.cfg.ExpectedWaitTimeBlocks, SentAt: time.Now()}
		if err := p.store.SaveUnconfirmed(op.ID, sent); err != nil {
			logger.Error("failed to persist unconfirmed op", "op_id", op.ID, "err", err)
		}
		p.ongoing = append(p.ongoing, OperationETHState{Op: op, Txs: []SentTx{sent}})
		logger.Info("broadcast L1 tx", "op_id", op.ID, "hash", hash, "nonce", nonce)
	}
}

// checkHead inspects only the head of the ongoing queue, matching the
// FIFO anchoring guarantee of §4.6 (each op must confirm in order).
func (p *Pipeline) checkHead(ctx context.Context) {
	if len(p.ongoing) == 0 {
		return
	}
	head := &p.ongoing[0]
	currentBlock, err := p.client.CurrentBlock(ctx)
	if err != nil {
		logger.Warn("failed to fetch current block", "err", err)
		return
	}

	for i := len(head.Txs) - 1; i >= 0; i-- {
		tx := head.Txs[i]
		rcpt, err := p.client.TransactionReceipt(ctx, tx.Hash, currentBlock)
		if err != nil {
			logger.Warn("receipt rpc failed", "hash", tx.Hash, "err", err)
			continue
		}
		if !rcpt.Found {
			continue
		}
		if !rcpt.Success {
			logger.Fatal("L1 anchor receipt failed", "op_id", head.Op.ID, "hash", tx.Hash)
			return
		}
		if rcpt.Confirmations < p.cfg.WaitConfirmations {
			return
		}

		if err := p.store.MarkConfirmed(head.Op.ID); err != nil {
			logger.Error("failed to mark op confirmed", "op_id", head.Op.ID, "err", err)
		}
		confirmedCounter.Inc(1)
		if head.Op.Kind == OpVerify {
			if p.onVerified != nil {
				p.onVerified(head.Op)
			}
			p.enqueueCompleteWithdrawals(head.Op)
		}
		p.ongoing = p.ongoing[1:]
		return
	}

	// None of the head's txs has a receipt yet; check for stuck-ness
	// against the most recent one.
	last := head.Txs[len(head.Txs)-1]
	if currentBlock >= last.DeadlineBlock {
		p.bumpAndReplace(ctx, head, last, currentBlock)
	}
}

// enqueueCompleteWithdrawals appends the completeWithdrawals(n) call a
// confirmed Verify triggers (§4.6 item 3), giving it an id from the
// pipeline's own sequence since no caller submitted it directly.
func (p *Pipeline) enqueueCompleteWithdrawals(verified Operation) {
	p.autoOpSeq++
	p.pending = append(p.pending, Operation{
		ID:          p.autoOpSeq,
		Kind:        OpCompleteWithdrawals,
		BlockNumber: verified.BlockNumber,
		Calldata:    completeWithdrawalsCalldata(p.cfg.WithdrawalsPerCompleteCall),
	})
	logger.Info("enqueued completeWithdrawals", "verified_op_id", verified.ID, "block", verified.BlockNumber)
}

// completeWithdrawalsCalldata encodes the `n` argument of
// completeWithdrawals(n) (§6) as a big-endian uint64, matching this
// package's encoding of every other fixed-width L1 argument.
func completeWithdrawalsCalldata(n uint64) []byte {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, n)
	return b
}

// bumpAndReplace creates a replacement tx at the head's current nonce
// using max(network_gas_price, previous_gas_price*1.15) (§4.6 "Stuck").
func (p *Pipeline) bumpAndReplace(ctx context.Context, head *OperationETHState, last SentTx, currentBlock uint64) {
	networkPrice, err := p.client.GasPrice(ctx)
	if err != nil {
		logger.Warn("gas price rpc failed while bumping stuck tx", "err", err)
		return
	}
	bumped := new(big.Int).Mul(last.GasPrice, big.NewInt(int64(p.cfg.GasPriceBumpNumerator)))
	bumped.Div(bumped, big.NewInt(int64(p.cfg.GasPriceBumpDenominator)))
	newPrice := networkPrice
	if bumped.Cmp(networkPrice) > 0 {
		newPrice = bumped
	}

	hash, err := p.client.SendTransaction(ctx, last.Nonce, newPrice, head.Op.Calldata)
	if err != nil {
		logger.Warn("replacement broadcast failed", "op_id", head.Op.ID, "err", err)
		return
	}
	sent := SentTx{Hash: hash, Nonce: last.Nonce, GasPrice: newPrice, DeadlineBlock: currentBlock + p.cfg.ExpectedWaitTimeBlocks, SentAt: time.Now()}
	if err := p.store.SaveUnconfirmed(head.Op.ID, sent); err != nil {
		logger.Error("failed to persist replacement tx", "op_id", head.Op.ID, "err", err)
	}
	head.Txs = append(head.Txs, sent)
	bumpedCounter.Inc(1)
	logger.Info("bumped stuck L1 tx", "op_id", head.Op.ID, "old_price", last.GasPrice, "new_price", newPrice)
}
