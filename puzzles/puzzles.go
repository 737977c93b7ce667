// Package puzzles holds the serialized programs for the member
// puzzles and verifies them against their published tree hashes
// before use.
package puzzles

import (
	"github.com/golang/groupcache/lru"

	"github.com/Yakuhito/hermes/clvm"
	"github.com/Yakuhito/hermes/errors"
	"github.com/Yakuhito/hermes/protocol/bc"
)

// ErrTemplateHash is returned when a template's serialized program does
// not hash to its published tree hash.
var ErrTemplateHash = errors.New("puzzle template hash mismatch")

// Template is a compiled, uncurried puzzle with its published tree hash.
type Template struct {
	Name string

	// Variant is the message puzzle version, or zero for
	// templates outside the message family.
	Variant int

	// Hex is the canonical serialization.
	Hex  string
	Hash bc.Bytes32

	// Superseded templates are recognized on chain
	// but have no layer.
	Superseded bool
}

func (t *Template) String() string { return t.Name }

// Program deserializes t and checks its tree hash.
// The returned program is freshly allocated.
func (t *Template) Program() (*clvm.Program, error) {
	p, err := clvm.DeserializeHex(t.Hex)
	if err != nil {
		return nil, errors.Wrapf(err, "decoding template %s", t.Name)
	}
	if got := p.TreeHash(); got != t.Hash {
		return nil, errors.WithDetailf(ErrTemplateHash, "%s: have %s, want %s", t.Name, got, t.Hash)
	}
	return p, nil
}

// All returns every known template.
func All() []*Template {
	return append([]*Template(nil), all...)
}

// Message returns the message template for variant v,
// or nil if there is none.
func Message(v int) *Template {
	for _, t := range all {
		if t.Variant != 0 && t.Variant == v {
			return t
		}
	}
	return nil
}

// Recognize returns the template whose tree hash is h,
// or nil if h matches none of them.
func Recognize(h bc.Bytes32) *Template {
	for _, t := range all {
		if t.Hash == h {
			return t
		}
	}
	return nil
}

// Cache memoizes verified template programs. It is not safe for
// concurrent use; each spend context owns one.
type Cache struct {
	lru *lru.Cache
}

// NewCache returns an empty cache holding up to n programs.
// If n is zero, the cache is unbounded.
func NewCache(n int) *Cache {
	return &Cache{lru: lru.New(n)}
}

// Load returns the program for t. The first load verifies the tree
// hash; a template that fails verification is never stored, so every
// later load fails the same way.
func (c *Cache) Load(t *Template) (*clvm.Program, error) {
	if v, ok := c.lru.Get(t.Hash); ok {
		return v.(*clvm.Program), nil
	}
	p, err := t.Program()
	if err != nil {
		return nil, err
	}
	c.lru.Add(t.Hash, p)
	return p, nil
}

// Len reports the number of cached programs.
func (c *Cache) Len() int {
	return c.lru.Len()
}
