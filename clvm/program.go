// Package clvm builds, serializes and hashes CLVM program trees.
//
// A Program is either an atom (a byte string, possibly empty) or a
// pair of two programs. Lists are right-nested pairs terminated by
// the empty atom, nil. Programs are immutable once built; functions
// that "modify" a tree return a new one sharing unchanged subtrees.
//
// This package never evaluates programs. It produces the canonical
// encodings the on-chain interpreter consumes: serialization, tree
// hashes, curried templates and typed argument records.
package clvm

import (
	"bytes"
	"math/big"

	"github.com/ethereum/go-ethereum/common/hexutil"

	"github.com/Yakuhito/hermes/errors"
	"github.com/Yakuhito/hermes/protocol/bc"
)

// ErrNotList is returned when a proper list was expected.
var ErrNotList = errors.New("program is not a proper list")

// Program is a CLVM value.
type Program struct {
	atom  []byte
	first *Program
	rest  *Program
}

// Nil is the empty atom. It terminates lists and
// doubles as false and zero.
var Nil = &Program{}

// Atom returns an atom holding a copy of b.
func Atom(b []byte) *Program {
	if len(b) == 0 {
		return Nil
	}
	return &Program{atom: append([]byte(nil), b...)}
}

// Hash returns a 32-byte atom.
func Hash(h bc.Bytes32) *Program {
	return &Program{atom: append([]byte(nil), h[:]...)}
}

// Cons returns the pair (first . rest).
func Cons(first, rest *Program) *Program {
	return &Program{first: first, rest: rest}
}

// List returns the proper list of items.
func List(items ...*Program) *Program {
	p := Nil
	for i := len(items) - 1; i >= 0; i-- {
		p = Cons(items[i], p)
	}
	return p
}

// Int returns the canonical atom for v:
// minimal two's-complement big-endian.
func Int(v int64) *Program {
	return BigInt(big.NewInt(v))
}

// Uint is Int for unsigned values.
func Uint(v uint64) *Program {
	return BigInt(new(big.Int).SetUint64(v))
}

// BigInt is Int for arbitrary precision values.
func BigInt(v *big.Int) *Program {
	return Atom(intBytes(v))
}

// IsAtom reports whether p is an atom.
func (p *Program) IsAtom() bool { return p.first == nil }

// IsPair reports whether p is a pair.
func (p *Program) IsPair() bool { return p.first != nil }

// IsNil reports whether p is the empty atom.
func (p *Program) IsNil() bool { return p.first == nil && len(p.atom) == 0 }

// Bytes returns the contents of an atom.
// ok is false for pairs.
func (p *Program) Bytes() (b []byte, ok bool) {
	if p.IsPair() {
		return nil, false
	}
	return p.atom, true
}

// Pair returns the two halves of a pair.
// ok is false for atoms.
func (p *Program) Pair() (first, rest *Program, ok bool) {
	if p.IsAtom() {
		return nil, nil, false
	}
	return p.first, p.rest, true
}

// First returns the left half of a pair, or nil for an atom.
func (p *Program) First() *Program { return p.first }

// Rest returns the right half of a pair, or nil for an atom.
func (p *Program) Rest() *Program { return p.rest }

// ToList returns the elements of a proper list.
func (p *Program) ToList() ([]*Program, error) {
	var items []*Program
	for p.IsPair() {
		items = append(items, p.first)
		p = p.rest
	}
	if !p.IsNil() {
		return nil, ErrNotList
	}
	return items, nil
}

// AsInt decodes an atom as a signed integer.
func (p *Program) AsInt() (*big.Int, error) {
	b, ok := p.Bytes()
	if !ok {
		return nil, errors.WithDetail(ErrShape, "expected integer atom, got pair")
	}
	return intFromBytes(b), nil
}

// AsHash decodes a 32-byte atom.
func (p *Program) AsHash() (bc.Bytes32, error) {
	var h bc.Bytes32
	b, ok := p.Bytes()
	if !ok {
		return h, errors.WithDetail(ErrShape, "expected 32-byte atom, got pair")
	}
	if len(b) != len(h) {
		return h, errors.WithDetailf(ErrWidth, "atom is %d bytes, want 32", len(b))
	}
	copy(h[:], b)
	return h, nil
}

// Equal reports whether p and q are the same tree.
func (p *Program) Equal(q *Program) bool {
	for {
		if p.IsAtom() || q.IsAtom() {
			return p.IsAtom() && q.IsAtom() && bytes.Equal(p.atom, q.atom)
		}
		if !p.first.Equal(q.first) {
			return false
		}
		p, q = p.rest, q.rest
	}
}

// String returns the disassembled form of p.
func (p *Program) String() string {
	return Disassemble(p)
}

// MarshalText satisfies the TextMarshaler interface.
// It returns the serialized program in 0x-prefixed hex.
func (p *Program) MarshalText() ([]byte, error) {
	return []byte(hexutil.Encode(p.Serialize())), nil
}

// UnmarshalText satisfies the TextUnmarshaler interface.
func (p *Program) UnmarshalText(b []byte) error {
	q, err := DeserializeHex(string(b))
	if err != nil {
		return err
	}
	*p = *q
	return nil
}

func intBytes(v *big.Int) []byte {
	switch v.Sign() {
	case 0:
		return nil
	case 1:
		b := v.Bytes()
		if b[0]&0x80 != 0 {
			b = append([]byte{0}, b...)
		}
		return b
	}
	// Negative: two's complement in the fewest bytes that
	// keep the sign bit set.
	n := new(big.Int).Not(v).BitLen()/8 + 1
	mod := new(big.Int).Lsh(big.NewInt(1), uint(8*n))
	b := new(big.Int).Add(mod, v).Bytes()
	for len(b) < n {
		b = append([]byte{0xff}, b...)
	}
	return b
}

func intFromBytes(b []byte) *big.Int {
	v := new(big.Int).SetBytes(b)
	if len(b) > 0 && b[0]&0x80 != 0 {
		v.Sub(v, new(big.Int).Lsh(big.NewInt(1), uint(8*len(b))))
	}
	return v
}
