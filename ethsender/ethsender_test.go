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

package ethsender

import (
	"context"
	"math/big"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	rcommon "github.com/l2anchor/rollup-core/common"
	"github.com/l2anchor/rollup-core/config"
)

type fakeClient struct {
	mu       sync.Mutex
	block    uint64
	price    *big.Int
	sent     []rcommon.Hash
	receipts map[rcommon.Hash]Receipt
	nextHash byte
}

func newFakeClient() *fakeClient {
	return &fakeClient{block: 100, price: big.NewInt(10), receipts: map[rcommon.Hash]Receipt{}}
}

func (f *fakeClient) CurrentBlock(ctx context.Context) (uint64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.block, nil
}

func (f *fakeClient) GasPrice(ctx context.Context) (*big.Int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return new(big.Int).Set(f.price), nil
}

func (f *fakeClient) SendTransaction(ctx context.Context, nonce uint64, gasPrice *big.Int, calldata []byte) (rcommon.Hash, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextHash++
	h := rcommon.Hash{f.nextHash}
	f.sent = append(f.sent, h)
	return h, nil
}

func (f *fakeClient) TransactionReceipt(ctx context.Context, hash rcommon.Hash, currentBlock uint64) (Receipt, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.receipts[hash], nil
}

func (f *fakeClient) confirm(hash rcommon.Hash, confirmations uint64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.receipts[hash] = Receipt{Found: true, Success: true, Confirmations: confirmations}
}

func (f *fakeClient) fail(hash rcommon.Hash) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.receipts[hash] = Receipt{Found: true, Success: false}
}

type fakeStore struct {
	mu          sync.Mutex
	nonce       uint64
	unconfirmed map[uint64][]SentTx
	confirmed   map[uint64]bool
}

func newFakeStore() *fakeStore {
	return &fakeStore{unconfirmed: map[uint64][]SentTx{}, confirmed: map[uint64]bool{}}
}

func (s *fakeStore) NextNonce() (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.nonce, nil
}

func (s *fakeStore) ReserveNonce() (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := s.nonce
	s.nonce++
	return n, nil
}

func (s *fakeStore) SaveUnconfirmed(opID uint64, tx SentTx) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.unconfirmed[opID] = append(s.unconfirmed[opID], tx)
	return nil
}

func (s *fakeStore) MarkConfirmed(opID uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.confirmed[opID] = true
	delete(s.unconfirmed, opID)
	return nil
}

func (s *fakeStore) LoadUnconfirmed() ([]OperationETHState, error) {
	return nil, nil
}

func testConfig() config.EthSenderConfig {
	cfg := config.DefaultEthSenderConfig
	cfg.TxPollPeriod = time.Millisecond
	cfg.WaitConfirmations = 3
	cfg.MaxTxsInFlight = 2
	cfg.ExpectedWaitTimeBlocks = 5
	cfg.GasPriceBumpNumerator = 115
	cfg.GasPriceBumpDenominator = 100
	return cfg
}

func TestPipeline_DrainPendingBroadcastsUpToInFlightLimit(t *testing.T) {
	client := newFakeClient()
	store := newFakeStore()
	p, err := New(testConfig(), client, store, nil)
	assert.Nil(t, err)

	p.pending = []Operation{{ID: 1, Kind: OpCommit}, {ID: 2, Kind: OpCommit}, {ID: 3, Kind: OpCommit}}
	p.drainPending(context.Background())

	assert.Len(t, p.ongoing, 2)
	assert.Len(t, p.pending, 1)
	assert.Equal(t, uint64(0), p.ongoing[0].Txs[0].Nonce)
	assert.Equal(t, uint64(1), p.ongoing[1].Txs[0].Nonce)
}

func TestPipeline_CheckHeadConfirmsAfterEnoughConfirmations(t *testing.T) {
	client := newFakeClient()
	store := newFakeStore()
	var verified []Operation
	p, _ := New(testConfig(), client, store, func(op Operation) { verified = append(verified, op) })

	p.pending = []Operation{{ID: 1, Kind: OpVerify}}
	p.drainPending(context.Background())
	hash := p.ongoing[0].Txs[0].Hash

	client.confirm(hash, 1)
	p.checkHead(context.Background())
	assert.Len(t, p.ongoing, 1, "not enough confirmations yet")

	client.confirm(hash, 3)
	p.checkHead(context.Background())
	assert.Len(t, p.ongoing, 0)
	assert.True(t, store.confirmed[1])
	assert.Len(t, verified, 1)

	if assert.Len(t, p.pending, 1, "a confirmed Verify must auto-enqueue completeWithdrawals") {
		assert.Equal(t, OpCompleteWithdrawals, p.pending[0].Kind)
		assert.NotEqual(t, uint64(1), p.pending[0].ID, "auto-enqueued op must not reuse the verified op's id")
		assert.NotEmpty(t, p.pending[0].Calldata)
	}
}

func TestPipeline_CommitAndExecuteDoNotAutoEnqueue(t *testing.T) {
	client := newFakeClient()
	store := newFakeStore()
	p, _ := New(testConfig(), client, store, nil)

	p.pending = []Operation{{ID: 1, Kind: OpCommit}, {ID: 2, Kind: OpExecute}}
	p.drainPending(context.Background())

	for _, st := range p.ongoing {
		hash := st.Txs[0].Hash
		client.confirm(hash, 3)
	}
	p.checkHead(context.Background())
	p.checkHead(context.Background())

	assert.Empty(t, p.pending, "only a confirmed Verify triggers completeWithdrawals")
}

func TestPipeline_StuckTxIsBumpedAtDeadline(t *testing.T) {
	client := newFakeClient()
	store := newFakeStore()
	p, _ := New(testConfig(), client, store, nil)

	p.pending = []Operation{{ID: 1, Kind: OpCommit}}
	p.drainPending(context.Background())
	assert.Len(t, p.ongoing[0].Txs, 1)
	original := p.ongoing[0].Txs[0]

	client.block = original.DeadlineBlock // reached, but not yet past
	p.checkHead(context.Background())
	assert.Len(t, p.ongoing[0].Txs, 2, "deadline reached should trigger a bump")

	bumped := p.ongoing[0].Txs[1]
	assert.Equal(t, original.Nonce, bumped.Nonce)
	assert.True(t, bumped.GasPrice.Cmp(original.GasPrice) > 0)
}
