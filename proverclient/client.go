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

// Package proverclient is the thin gRPC client by which the State Keeper
// hands off a sealed block's witness and ETH Sender later retrieves the
// resulting proof (§4.5, §2). Only this client side is in scope; the
// prover process that actually runs the SNARK circuit is out of scope.
package proverclient

import (
	"context"

	"github.com/pkg/errors"
	"google.golang.org/grpc"

	rcommon "github.com/l2anchor/rollup-core/common"
	"github.com/l2anchor/rollup-core/config"
	rlog "github.com/l2anchor/rollup-core/log"
)

var logger = rlog.NewModuleLogger(rlog.ProverClient)

// Witness is a sealed block's proof input, as the State Keeper hands it
// off once a block is sealed; the witness payload's internal structure is
// out of scope and carried opaquely.
type Witness struct {
	BlockNumber uint64
	OldRoot     rcommon.Hash
	NewRoot     rcommon.Hash
	PublicData  []byte
	Payload     []byte
}

// Client wraps a ProverServiceClient with the request timeout and error
// wrapping the rest of the pipeline expects.
type Client struct {
	conn *grpc.ClientConn
	rpc  ProverServiceClient
	cfg  config.ProverConfig
}

// Dial connects to the prover endpoint named in cfg. The connection is
// lazy (grpc.Dial doesn't block on the handshake), matching how the rest
// of the pipeline treats the prover as a slow, possibly-absent peer.
func Dial(cfg config.ProverConfig) (*Client, error) {
	conn, err := grpc.Dial(cfg.Addr, grpc.WithInsecure())
	if err != nil {
		return nil, errors.Wrap(err, "proverclient: dial")
	}
	return &Client{conn: conn, rpc: NewProverServiceClient(conn), cfg: cfg}, nil
}

// SubmitBlock hands w off to the prover, returning once the prover has
// accepted it for processing (not once the proof is ready — poll
// BlockStatus for that).
func (c *Client) SubmitBlock(ctx context.Context, w Witness) error {
	ctx, cancel := context.WithTimeout(ctx, c.cfg.RequestTimeout)
	defer cancel()

	_, err := c.rpc.SubmitBlock(ctx, &ProveBlockRequest{
		BlockNumber: w.BlockNumber,
		OldRoot:     w.OldRoot[:],
		NewRoot:     w.NewRoot[:],
		PublicData:  w.PublicData,
		Witness:     w.Payload,
	})
	if err != nil {
		return errors.Wrapf(err, "proverclient: submit block %d", w.BlockNumber)
	}
	logger.Info("submitted block witness", "block_number", w.BlockNumber)
	return nil
}

// BlockStatus polls whether blockNumber's proof is ready, returning the
// proof bytes once it is.
func (c *Client) BlockStatus(ctx context.Context, blockNumber uint64) (ready bool, proof []byte, err error) {
	ctx, cancel := context.WithTimeout(ctx, c.cfg.RequestTimeout)
	defer cancel()

	resp, err := c.rpc.BlockStatus(ctx, &ProveBlockStatusRequest{BlockNumber: blockNumber})
	if err != nil {
		return false, nil, errors.Wrapf(err, "proverclient: status for block %d", blockNumber)
	}
	return resp.Ready, resp.Proof, nil
}

// Close tears down the underlying connection.
func (c *Client) Close() error {
	return c.conn.Close()
}
