package clvm

import (
	"github.com/Yakuhito/hermes/errors"
	"github.com/Yakuhito/hermes/protocol/bc"
)

// ErrTailSet is returned by Build when SetTail
// was called more than once.
var ErrTailSet = errors.New("list tail already set")

// Builder accumulates the elements of a list.
// The zero tail is nil, giving a proper list.
type Builder struct {
	items []*Program
	tail  *Program
	tails int
}

func NewBuilder() *Builder {
	return &Builder{tail: Nil}
}

// AddAtom adds an atom holding a copy of data.
func (b *Builder) AddAtom(data []byte) *Builder {
	b.items = append(b.items, Atom(data))
	return b
}

// AddInt adds the canonical integer atom for n.
func (b *Builder) AddInt(n int64) *Builder {
	b.items = append(b.items, Int(n))
	return b
}

// AddUint adds the canonical integer atom for n.
func (b *Builder) AddUint(n uint64) *Builder {
	b.items = append(b.items, Uint(n))
	return b
}

// AddHash adds a 32-byte atom.
func (b *Builder) AddHash(h bc.Bytes32) *Builder {
	b.items = append(b.items, Hash(h))
	return b
}

// AddOp adds the given operator atom.
func (b *Builder) AddOp(op Op) *Builder {
	b.items = append(b.items, op.Program())
	return b
}

// AddProgram adds p as a single element.
func (b *Builder) AddProgram(p *Program) *Builder {
	b.items = append(b.items, p)
	return b
}

// AddQuoted adds (q . p), which evaluates to p.
func (b *Builder) AddQuoted(p *Program) *Builder {
	b.items = append(b.items, Cons(OpQuote.Program(), p))
	return b
}

// SetTail makes the list improper, ending in p
// instead of nil. Records whose last field is
// "the rest of the arguments" use it.
func (b *Builder) SetTail(p *Program) *Builder {
	b.tail = p
	b.tails++
	return b
}

// Build produces the list. It fails only if
// SetTail was called more than once.
func (b *Builder) Build() (*Program, error) {
	if b.tails > 1 {
		return nil, errors.Wrapf(ErrTailSet, "%d tails", b.tails)
	}
	p := b.tail
	for i := len(b.items) - 1; i >= 0; i-- {
		p = Cons(b.items[i], p)
	}
	return p, nil
}
