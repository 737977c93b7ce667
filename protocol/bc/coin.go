package bc

import (
	"crypto/sha256"
	"encoding/binary"
)

// Coin is an unspent value-bearing unit. Its identity
// commits to its parent, its puzzle and its amount.
type Coin struct {
	ParentCoinInfo Bytes32 `json:"parent_coin_info"`
	PuzzleHash     Bytes32 `json:"puzzle_hash"`
	Amount         uint64  `json:"amount"`
}

// ID returns sha256(parent ‖ puzzle_hash ‖ amount), with the amount
// in canonical CLVM integer form (minimal big-endian, sign-padded).
func (c Coin) ID() Bytes32 {
	h := sha256.New()
	h.Write(c.ParentCoinInfo[:])
	h.Write(c.PuzzleHash[:])
	h.Write(amountBytes(c.Amount))
	var id Bytes32
	h.Sum(id[:0])
	return id
}

func amountBytes(v uint64) []byte {
	if v == 0 {
		return nil
	}
	var buf [9]byte
	binary.BigEndian.PutUint64(buf[1:], v)
	i := 1
	for i < 8 && buf[i] == 0 {
		i++
	}
	if buf[i]&0x80 != 0 {
		i--
	}
	return buf[i:]
}
