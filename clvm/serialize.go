package clvm

import (
	"bytes"
	"io"

	"github.com/ethereum/go-ethereum/common/hexutil"

	"github.com/Yakuhito/hermes/errors"
)

// ErrInvalidEncoding is returned for byte strings that are not
// a single canonical serialized program.
var ErrInvalidEncoding = errors.New("invalid program encoding")

const (
	consBox     = 0xff
	backrefBox  = 0xfe
	maxAtomSize = 1 << 32
)

// Serialize returns the canonical byte encoding of p.
func (p *Program) Serialize() []byte {
	var buf bytes.Buffer
	p.WriteTo(&buf)
	return buf.Bytes()
}

// WriteTo satisfies the io.WriterTo interface.
func (p *Program) WriteTo(w io.Writer) (int64, error) {
	var n int64
	for p.IsPair() {
		m, err := w.Write([]byte{consBox})
		n += int64(m)
		if err != nil {
			return n, err
		}
		m64, err := p.first.WriteTo(w)
		n += m64
		if err != nil {
			return n, err
		}
		p = p.rest
	}
	m, err := w.Write(atomPrefix(p.atom))
	n += int64(m)
	if err != nil || len(p.atom) == 0 || (len(p.atom) == 1 && p.atom[0] <= 0x7f) {
		return n, err
	}
	m, err = w.Write(p.atom)
	n += int64(m)
	return n, err
}

// atomPrefix returns the size prefix of an atom. For a
// single byte below 0x80 the prefix is the atom itself.
func atomPrefix(b []byte) []byte {
	size := len(b)
	switch {
	case size == 0:
		return []byte{0x80}
	case size == 1 && b[0] <= 0x7f:
		return b
	case size < 0x40:
		return []byte{0x80 | byte(size)}
	case size < 0x2000:
		return []byte{0xc0 | byte(size>>8), byte(size)}
	case size < 0x100000:
		return []byte{0xe0 | byte(size>>16), byte(size >> 8), byte(size)}
	case size < 0x8000000:
		return []byte{0xf0 | byte(size>>24), byte(size >> 16), byte(size >> 8), byte(size)}
	default:
		return []byte{0xf8 | byte(size>>32), byte(size >> 24), byte(size >> 16), byte(size >> 8), byte(size)}
	}
}

// Deserialize decodes exactly one program from b.
// Trailing bytes, truncated input and back-references
// are rejected.
func Deserialize(b []byte) (*Program, error) {
	r := errors.NewReader(bytes.NewReader(b))
	p, err := readProgram(r)
	if err != nil {
		return nil, err
	}
	if extra := int64(len(b)) - r.BytesRead(); extra > 0 {
		return nil, errors.WithDetailf(ErrInvalidEncoding, "%d trailing bytes", extra)
	}
	return p, nil
}

// DeserializeHex is Deserialize for hex input,
// with or without a 0x prefix.
func DeserializeHex(s string) (*Program, error) {
	if len(s) < 2 || s[:2] != "0x" {
		s = "0x" + s
	}
	b, err := hexutil.Decode(s)
	if err != nil {
		return nil, errors.Sub(ErrInvalidEncoding, err)
	}
	return Deserialize(b)
}

// MustDeserializeHex is DeserializeHex for program
// constants. It panics on malformed input.
func MustDeserializeHex(s string) *Program {
	p, err := DeserializeHex(s)
	if err != nil {
		panic(err)
	}
	return p
}

// ReadFrom decodes one program from r,
// reading no further than its end.
func ReadFrom(r io.Reader) (*Program, error) {
	return readProgram(errors.NewReader(r))
}

// readProgram decodes iteratively so deeply nested
// right spines (long lists) do not grow the stack.
func readProgram(r *errors.Reader) (*Program, error) {
	// pending holds the first halves of pairs whose
	// second half is still being read.
	var pending []*Program
	for {
		b, err := r.ReadByte()
		if err != nil {
			return nil, errors.Sub(ErrInvalidEncoding, err)
		}
		if b == consBox {
			first, err := readProgram(r)
			if err != nil {
				return nil, err
			}
			pending = append(pending, first)
			continue
		}
		if b == backrefBox {
			return nil, errors.WithDetail(ErrInvalidEncoding, "back-references are not supported")
		}
		atom, err := readAtom(r, b)
		if err != nil {
			return nil, err
		}
		p := atom
		for i := len(pending) - 1; i >= 0; i-- {
			p = Cons(pending[i], p)
		}
		return p, nil
	}
}

func readAtom(r *errors.Reader, b byte) (*Program, error) {
	if b == 0x80 {
		return Nil, nil
	}
	if b <= 0x7f {
		return &Program{atom: []byte{b}}, nil
	}

	// The number of leading one bits is the number
	// of bytes in the size prefix.
	var n int
	for mask := byte(0x80); mask != 0 && b&mask != 0; mask >>= 1 {
		n++
	}
	if n > 5 {
		return nil, errors.WithDetailf(ErrInvalidEncoding, "bad size prefix %#02x", b)
	}
	size := uint64(b & (0xff >> uint(n+1)))
	if n > 1 {
		ext := make([]byte, n-1)
		if err := r.ReadFull(ext); err != nil {
			return nil, errors.Sub(ErrInvalidEncoding, err)
		}
		for _, e := range ext {
			size = size<<8 | uint64(e)
		}
	}
	if size >= maxAtomSize {
		return nil, errors.WithDetailf(ErrInvalidEncoding, "atom of %d bytes", size)
	}
	// Copy rather than preallocate: the size comes from
	// untrusted input and may exceed what remains.
	var atom bytes.Buffer
	if _, err := io.CopyN(&atom, r, int64(size)); err != nil {
		return nil, errors.WithDetailf(ErrInvalidEncoding, "atom of %d bytes is truncated", size)
	}
	return &Program{atom: atom.Bytes()}, nil
}
