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

// Package pubdata implements the canonical public-data encoding of §4.5:
// for every applied operation, the big-endian bit sequence committed to on
// L1 and proven consistent with the state transition by the SNARK. The
// layout is fixed per variant and chunk-aligned so Data-Restore can step
// through a block's pubdata purely from the first chunk byte of each
// window (§4.7).
package pubdata

import (
	"crypto/sha256"
	"encoding/binary"
	"errors"
	"math/big"

	rcommon "github.com/l2anchor/rollup-core/common"
	"github.com/l2anchor/rollup-core/core/numeric"
	"github.com/l2anchor/rollup-core/core/types"
)

// ChunkBits is the fixed width of one chunk in the pubdata stream (§6).
const ChunkBits = 64

// ChunkBytes is ChunkBits in bytes.
const ChunkBytes = ChunkBits / 8

var ErrUnknownVariant = errors.New("pubdata: unknown op variant byte")
var ErrTruncated = errors.New("pubdata: chunk window shorter than op width")

func chunksOf(t types.OpType) int { return types.Chunks(t) }

// Encode returns the canonical pubdata bytes for one operation, exactly
// Chunks(op.Type())*ChunkBytes long, tag byte first.
func Encode(op types.Op) []byte {
	n := chunksOf(op.Type()) * ChunkBytes
	buf := make([]byte, n)
	buf[0] = byte(op.Type())

	switch o := op.(type) {
	case *types.Deposit:
		putU32(buf[1:5], uint32(o.AccountID))
		putU16(buf[5:7], uint16(o.TokenID))
		putAmount(buf[7:12], o.Amount)
		copy(buf[12:32], o.Address[:])
	case *types.Transfer:
		putU32(buf[1:5], uint32(o.FromID))
		putU16(buf[5:7], uint16(o.TokenID))
		putU32(buf[7:11], uint32(o.ToID))
		putFee(buf[11:13], o.Fee)
	case *types.TransferToNew:
		putU32(buf[1:5], uint32(o.FromID))
		putU16(buf[5:7], uint16(o.TokenID))
		putAmount(buf[7:12], o.Amount)
		copy(buf[12:32], o.ToAddr[:])
		putFee(buf[32:34], o.Fee)
	case *types.Withdraw:
		putU32(buf[1:5], uint32(o.AccountID))
		putU16(buf[5:7], uint16(o.TokenID))
		putAmount(buf[7:12], o.Amount)
		putFee(buf[12:14], o.Fee)
		copy(buf[14:34], o.ToAddr[:])
	case *types.ChangePubKey:
		putU32(buf[1:5], uint32(o.AccountID))
		copy(buf[5:25], o.NewPubKeyHash[:])
		putU16(buf[25:27], uint16(o.FeeTokenID))
		putFee(buf[27:29], o.Fee)
	case *types.ForcedExit:
		putU32(buf[1:5], uint32(o.InitiatorID))
		putU32(buf[5:9], uint32(o.TargetID))
		putU16(buf[9:11], uint16(o.TokenID))
		putFee(buf[11:13], o.Fee)
	case *types.FullExit:
		putU32(buf[1:5], uint32(o.AccountID))
		copy(buf[5:25], o.Address[:])
		putU16(buf[25:27], uint16(o.TokenID))
	case *types.Swap:
		putU32(buf[1:5], uint32(o.AccountA))
		putU32(buf[5:9], uint32(o.AccountB))
		putAmount(buf[9:14], o.Amount1)
		putAmount(buf[14:19], o.Amount2)
		putFee(buf[19:21], o.Fee)
	case *types.MintNFT:
		putU32(buf[1:5], uint32(o.CreatorID))
		putU32(buf[5:9], uint32(o.RecipientID))
		copy(buf[9:29], o.ContentHash[:20])
		putFee(buf[29:31], o.Fee)
	case *types.WithdrawNFT:
		putU32(buf[1:5], uint32(o.AccountID))
		putU16(buf[5:7], uint16(o.NFTTokenID))
		copy(buf[7:27], o.ToAddr[:])
		putFee(buf[27:29], o.Fee)
	case types.Noop:
		// zero-filled beyond the tag byte.
	case *types.Close:
		panic("pubdata: Close operations are permanently disabled")
	}
	return buf
}

func putU16(dst []byte, v uint16) { binary.BigEndian.PutUint16(dst, v) }
func putU32(dst []byte, v uint32) { binary.BigEndian.PutUint32(dst, v) }

func putAmount(dst []byte, v *big.Int) {
	m, e, err := numeric.Pack(numeric.AmountField, v)
	if err != nil {
		return
	}
	packed := (e << 35) | m
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], packed)
	copy(dst, b[8-len(dst):])
}

func putFee(dst []byte, v *big.Int) {
	if v == nil {
		v = big.NewInt(0)
	}
	m, e, err := numeric.Pack(numeric.FeeField, v)
	if err != nil {
		return
	}
	packed := uint16((e << 11) | m)
	binary.BigEndian.PutUint16(dst, packed)
}

// PadNoops appends zero-filled Noop chunks to reach targetChunks total
// chunk count, implementing the Noop-fill described in §4.1/§6.
func PadNoops(pubdataSoFar []byte, currentChunks, targetChunks int) []byte {
	if targetChunks <= currentChunks {
		return pubdataSoFar
	}
	pad := make([]byte, (targetChunks-currentChunks)*ChunkBytes)
	return append(pubdataSoFar, pad...)
}

// BlockPubdata concatenates the pubdata of every op in order, then pads
// with Noop pubdata to blockSizeChunks, as committed on L1 (§4.1 pubdata(op)).
func BlockPubdata(ops []types.Op, blockSizeChunks int) []byte {
	var out []byte
	used := 0
	for _, op := range ops {
		out = append(out, Encode(op)...)
		used += chunksOf(op.Type())
	}
	return PadNoops(out, used, blockSizeChunks)
}

// Commitment computes the running SHA-256 public-data commitment of
// §4.5 item 5: sha256(blockNumber || pubdata || feeAccount || oldRoot || newRoot).
func Commitment(blockNumber uint64, data []byte, feeAccount rcommon.AccountID, oldRoot, newRoot rcommon.Hash) rcommon.Hash {
	h := sha256.New()
	var bn [8]byte
	binary.BigEndian.PutUint64(bn[:], blockNumber)
	h.Write(bn[:])
	h.Write(data)
	var fa [4]byte
	binary.BigEndian.PutUint32(fa[:], uint32(feeAccount))
	h.Write(fa[:])
	h.Write(oldRoot[:])
	h.Write(newRoot[:])
	var sum [32]byte
	copy(sum[:], h.Sum(nil))
	return rcommon.Hash(sum)
}

// Decode reconstructs the operation a ParsedOp's Raw bytes encode, the
// inverse of Encode. Fields pubdata never commits (nonces, L1 addresses
// recoverable only from the original tx, and a Transfer's Amount, which its
// 2-chunk layout does not carry) are left at their zero value; Data-Restore relies on replaying ops in their original
// commit order rather than on nonce re-validation (§4.7).
func Decode(raw []byte) (types.Op, error) {
	if len(raw) < ChunkBytes {
		return nil, ErrTruncated
	}
	t := types.OpType(raw[0])
	switch t {
	case types.OpDeposit:
		return &types.Deposit{
			AccountID: rcommon.AccountID(getU32(raw[1:5])),
			TokenID:   rcommon.TokenID(getU16(raw[5:7])),
			Amount:    getAmount(raw[7:12]),
			Address:   addressFrom(raw[12:32]),
		}, nil
	case types.OpTransfer:
		return &types.Transfer{
			FromID:  rcommon.AccountID(getU32(raw[1:5])),
			TokenID: rcommon.TokenID(getU16(raw[5:7])),
			ToID:    rcommon.AccountID(getU32(raw[7:11])),
			Fee:     getFee(raw[11:13]),
		}, nil
	case types.OpTransferToNew:
		return &types.TransferToNew{
			FromID:  rcommon.AccountID(getU32(raw[1:5])),
			TokenID: rcommon.TokenID(getU16(raw[5:7])),
			Amount:  getAmount(raw[7:12]),
			ToAddr:  addressFrom(raw[12:32]),
			Fee:     getFee(raw[32:34]),
		}, nil
	case types.OpWithdraw:
		return &types.Withdraw{
			AccountID: rcommon.AccountID(getU32(raw[1:5])),
			TokenID:   rcommon.TokenID(getU16(raw[5:7])),
			Amount:    getAmount(raw[7:12]),
			Fee:       getFee(raw[12:14]),
			ToAddr:    addressFrom(raw[14:34]),
		}, nil
	case types.OpChangePubKey:
		return &types.ChangePubKey{
			AccountID:     rcommon.AccountID(getU32(raw[1:5])),
			NewPubKeyHash: pubKeyHashFrom(raw[5:25]),
			FeeTokenID:    rcommon.TokenID(getU16(raw[25:27])),
			Fee:           getFee(raw[27:29]),
		}, nil
	case types.OpForcedExit:
		return &types.ForcedExit{
			InitiatorID: rcommon.AccountID(getU32(raw[1:5])),
			TargetID:    rcommon.AccountID(getU32(raw[5:9])),
			TokenID:     rcommon.TokenID(getU16(raw[9:11])),
			Fee:         getFee(raw[11:13]),
		}, nil
	case types.OpFullExit:
		return &types.FullExit{
			AccountID: rcommon.AccountID(getU32(raw[1:5])),
			Address:   addressFrom(raw[5:25]),
			TokenID:   rcommon.TokenID(getU16(raw[25:27])),
		}, nil
	case types.OpSwap:
		return &types.Swap{
			AccountA: rcommon.AccountID(getU32(raw[1:5])),
			AccountB: rcommon.AccountID(getU32(raw[5:9])),
			Amount1:  getAmount(raw[9:14]),
			Amount2:  getAmount(raw[14:19]),
			Fee:      getFee(raw[19:21]),
		}, nil
	case types.OpMintNFT:
		var contentHash rcommon.Hash
		copy(contentHash[:20], raw[9:29])
		return &types.MintNFT{
			CreatorID:   rcommon.AccountID(getU32(raw[1:5])),
			RecipientID: rcommon.AccountID(getU32(raw[5:9])),
			ContentHash: contentHash,
			Fee:         getFee(raw[29:31]),
		}, nil
	case types.OpWithdrawNFT:
		return &types.WithdrawNFT{
			AccountID:  rcommon.AccountID(getU32(raw[1:5])),
			NFTTokenID: rcommon.TokenID(getU16(raw[5:7])),
			ToAddr:     addressFrom(raw[7:27]),
			Fee:        getFee(raw[27:29]),
		}, nil
	case types.OpNoop:
		return types.Noop{}, nil
	default:
		return nil, ErrUnknownVariant
	}
}

func getU16(src []byte) uint16 { return binary.BigEndian.Uint16(src) }
func getU32(src []byte) uint32 { return binary.BigEndian.Uint32(src) }

func getAmount(src []byte) *big.Int {
	var b [8]byte
	copy(b[8-len(src):], src)
	packed := binary.BigEndian.Uint64(b[:])
	mantissa := packed & ((1 << 35) - 1)
	exponent := packed >> 35
	return numeric.Unpack(mantissa, exponent)
}

func getFee(src []byte) *big.Int {
	packed := binary.BigEndian.Uint16(src)
	mantissa := uint64(packed & ((1 << 11) - 1))
	exponent := uint64(packed >> 11)
	return numeric.Unpack(mantissa, exponent)
}

func addressFrom(src []byte) rcommon.Address {
	var a rcommon.Address
	copy(a[:], src)
	return a
}

func pubKeyHashFrom(src []byte) rcommon.PubKeyHash {
	var h rcommon.PubKeyHash
	copy(h[:], src)
	return h
}

// ParsedOp is one operation recovered from a pubdata stream by Data-Restore.
type ParsedOp struct {
	Type   types.OpType
	Chunks int
	Raw    []byte
}

// ParseNext reads the operation variant starting at the head of data by
// inspecting the first chunk's tag byte, returning the number of bytes it
// consumed (§4.7: "the first chunk byte of each window identifies the op
// variant, from which the per-variant bit layout determines its length").
func ParseNext(data []byte) (ParsedOp, int, error) {
	if len(data) < ChunkBytes {
		return ParsedOp{}, 0, ErrTruncated
	}
	t := types.OpType(data[0])
	n := chunksOf(t)
	if n == 0 && t != types.OpNoop {
		return ParsedOp{}, 0, ErrUnknownVariant
	}
	width := n * ChunkBytes
	if len(data) < width {
		return ParsedOp{}, 0, ErrTruncated
	}
	return ParsedOp{Type: t, Chunks: n, Raw: data[:width]}, width, nil
}

// ParseAll steps through an entire block's pubdata to its end; Noop padding
// chunks are returned as Noop entries like any other op. A malformed variant byte is a fatal Data-Restore parse
// failure per §7, surfaced here as an error for the caller to treat as such.
func ParseAll(data []byte) ([]ParsedOp, error) {
	var ops []ParsedOp
	for len(data) > 0 {
		op, n, err := ParseNext(data)
		if err != nil {
			return nil, err
		}
		ops = append(ops, op)
		data = data[n:]
	}
	return ops, nil
}
