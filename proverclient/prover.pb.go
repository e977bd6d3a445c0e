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

// Code generated by protoc-gen-go; message and service shapes for the
// out-of-scope witness/proof generator. Hand-maintained pending an actual
// .proto source and build-time codegen step.

package proverclient

import (
	"context"
	"fmt"

	proto "github.com/golang/protobuf/proto"
	"google.golang.org/grpc"
)

// ProveBlockRequest carries one sealed block's witness input to the
// prover: the pubdata commitment and the chunk-packed op witnesses the
// circuit consumes (§4.5; the witness content itself is out of scope).
type ProveBlockRequest struct {
	BlockNumber uint64 `protobuf:"varint,1,opt,name=block_number,json=blockNumber,proto3" json:"block_number,omitempty"`
	OldRoot     []byte `protobuf:"bytes,2,opt,name=old_root,json=oldRoot,proto3" json:"old_root,omitempty"`
	NewRoot     []byte `protobuf:"bytes,3,opt,name=new_root,json=newRoot,proto3" json:"new_root,omitempty"`
	PublicData  []byte `protobuf:"bytes,4,opt,name=public_data,json=publicData,proto3" json:"public_data,omitempty"`
	Witness     []byte `protobuf:"bytes,5,opt,name=witness,proto3" json:"witness,omitempty"`
}

func (m *ProveBlockRequest) Reset()         { *m = ProveBlockRequest{} }
func (m *ProveBlockRequest) String() string { return fmt.Sprintf("%+v", *m) }
func (*ProveBlockRequest) ProtoMessage()    {}

// ProveBlockResponse carries back the SNARK proof ETH Sender attaches to
// proveBlocks, once the out-of-scope prover has produced it.
type ProveBlockResponse struct {
	BlockNumber uint64 `protobuf:"varint,1,opt,name=block_number,json=blockNumber,proto3" json:"block_number,omitempty"`
	Proof       []byte `protobuf:"bytes,2,opt,name=proof,proto3" json:"proof,omitempty"`
}

func (m *ProveBlockResponse) Reset()         { *m = ProveBlockResponse{} }
func (m *ProveBlockResponse) String() string { return fmt.Sprintf("%+v", *m) }
func (*ProveBlockResponse) ProtoMessage()    {}

// ProveBlockStatusRequest polls for a previously-submitted block's proof.
type ProveBlockStatusRequest struct {
	BlockNumber uint64 `protobuf:"varint,1,opt,name=block_number,json=blockNumber,proto3" json:"block_number,omitempty"`
}

func (m *ProveBlockStatusRequest) Reset()         { *m = ProveBlockStatusRequest{} }
func (m *ProveBlockStatusRequest) String() string { return fmt.Sprintf("%+v", *m) }
func (*ProveBlockStatusRequest) ProtoMessage()    {}

// ProveBlockStatusResponse reports whether a block's proof is ready yet.
type ProveBlockStatusResponse struct {
	Ready bool   `protobuf:"varint,1,opt,name=ready,proto3" json:"ready,omitempty"`
	Proof []byte `protobuf:"bytes,2,opt,name=proof,proto3" json:"proof,omitempty"`
}

func (m *ProveBlockStatusResponse) Reset()         { *m = ProveBlockStatusResponse{} }
func (m *ProveBlockStatusResponse) String() string { return fmt.Sprintf("%+v", *m) }
func (*ProveBlockStatusResponse) ProtoMessage()    {}

func init() {
	proto.RegisterType((*ProveBlockRequest)(nil), "proverclient.ProveBlockRequest")
	proto.RegisterType((*ProveBlockResponse)(nil), "proverclient.ProveBlockResponse")
	proto.RegisterType((*ProveBlockStatusRequest)(nil), "proverclient.ProveBlockStatusRequest")
	proto.RegisterType((*ProveBlockStatusResponse)(nil), "proverclient.ProveBlockStatusResponse")
}

// ProverServiceClient is the gRPC client stub for the witness/proof
// generator service; the server side lives in the out-of-scope prover
// process.
type ProverServiceClient interface {
	SubmitBlock(ctx context.Context, in *ProveBlockRequest, opts ...grpc.CallOption) (*ProveBlockResponse, error)
	BlockStatus(ctx context.Context, in *ProveBlockStatusRequest, opts ...grpc.CallOption) (*ProveBlockStatusResponse, error)
}

type proverServiceClient struct {
	cc *grpc.ClientConn
}

// NewProverServiceClient wraps an established connection.
func NewProverServiceClient(cc *grpc.ClientConn) ProverServiceClient {
	return &proverServiceClient{cc}
}

func (c *proverServiceClient) SubmitBlock(ctx context.Context, in *ProveBlockRequest, opts ...grpc.CallOption) (*ProveBlockResponse, error) {
	out := new(ProveBlockResponse)
	err := c.cc.Invoke(ctx, "/proverclient.ProverService/SubmitBlock", in, out, opts...)
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (c *proverServiceClient) BlockStatus(ctx context.Context, in *ProveBlockStatusRequest, opts ...grpc.CallOption) (*ProveBlockStatusResponse, error) {
	out := new(ProveBlockStatusResponse)
	err := c.cc.Invoke(ctx, "/proverclient.ProverService/BlockStatus", in, out, opts...)
	if err != nil {
		return nil, err
	}
	return out, nil
}
