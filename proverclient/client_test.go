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

package proverclient

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"google.golang.org/grpc"

	"github.com/l2anchor/rollup-core/config"
)

// fakeProverService is a hand-rolled ProverServiceClient stand-in, since
// dialing a live prover isn't available in a unit test.
type fakeProverService struct {
	lastSubmitted *ProveBlockRequest
	status        *ProveBlockStatusResponse
}

func (f *fakeProverService) SubmitBlock(ctx context.Context, in *ProveBlockRequest, opts ...grpc.CallOption) (*ProveBlockResponse, error) {
	f.lastSubmitted = in
	return &ProveBlockResponse{BlockNumber: in.BlockNumber}, nil
}

func (f *fakeProverService) BlockStatus(ctx context.Context, in *ProveBlockStatusRequest, opts ...grpc.CallOption) (*ProveBlockStatusResponse, error) {
	return f.status, nil
}

func TestClient_SubmitBlockAndPollStatus(t *testing.T) {
	fake := &fakeProverService{status: &ProveBlockStatusResponse{Ready: true, Proof: []byte("proof")}}
	c := &Client{rpc: fake, cfg: config.ProverConfig{RequestTimeout: time.Second}}

	w := Witness{BlockNumber: 9, PublicData: []byte("pubdata"), Payload: []byte("witness")}
	assert.Nil(t, c.SubmitBlock(context.Background(), w))
	assert.Equal(t, uint64(9), fake.lastSubmitted.BlockNumber)
	assert.Equal(t, []byte("pubdata"), fake.lastSubmitted.PublicData)

	ready, proof, err := c.BlockStatus(context.Background(), 9)
	assert.Nil(t, err)
	assert.True(t, ready)
	assert.Equal(t, []byte("proof"), proof)
}
