// Package spend assembles the coin spends of one bundle.
package spend

import (
	"github.com/Yakuhito/hermes/clvm"
	"github.com/Yakuhito/hermes/errors"
	"github.com/Yakuhito/hermes/protocol/bc"
	"github.com/Yakuhito/hermes/puzzles"
)

// ErrDuplicateSpend is returned when a coin is
// spent twice in one context.
var ErrDuplicateSpend = errors.New("coin already spent in this bundle")

// Context is the construction state of a single spend bundle:
// its template cache and the coin spends inserted so far.
//
// A Context is not safe for concurrent use and must not
// be shared between bundles.
type Context struct {
	cache  *puzzles.Cache
	spends []bc.CoinSpend
	ids    map[bc.Bytes32]bool
}

// NewContext returns an empty context.
func NewContext() *Context {
	return &Context{
		cache: puzzles.NewCache(0),
		ids:   make(map[bc.Bytes32]bool),
	}
}

// Puzzle returns the verified program for t.
func (c *Context) Puzzle(t *puzzles.Template) (*clvm.Program, error) {
	return c.cache.Load(t)
}

// Curry loads t and curries the fields of the struct args into it.
func (c *Context) Curry(t *puzzles.Template, args interface{}) (*clvm.Program, error) {
	mod, err := c.Puzzle(t)
	if err != nil {
		return nil, err
	}
	p, err := clvm.MarshalCurried(mod, args)
	if err != nil {
		return nil, errors.Sub(bc.ErrMalformedArgument, errors.Wrapf(err, "currying %s", t))
	}
	return p, nil
}

// Insert adds a coin spend to the bundle. The puzzle reveal
// must hash to the coin's puzzle hash.
func (c *Context) Insert(coin bc.Coin, puzzle, solution *clvm.Program) error {
	if h := puzzle.TreeHash(); h != coin.PuzzleHash {
		return errors.WithDetailf(bc.ErrMalformedArgument, "puzzle reveal hashes to %s, coin puzzle hash is %s", h, coin.PuzzleHash)
	}
	id := coin.ID()
	if c.ids[id] {
		return errors.WithDetailf(ErrDuplicateSpend, "coin %s", id)
	}
	c.ids[id] = true
	c.spends = append(c.spends, bc.CoinSpend{
		Coin:         coin,
		PuzzleReveal: puzzle.Serialize(),
		Solution:     solution.Serialize(),
	})
	return nil
}

// Spent reports whether the coin with the given id
// has been inserted.
func (c *Context) Spent(id bc.Bytes32) bool {
	return c.ids[id]
}

// Take removes and returns the coin spends inserted so far.
// The template cache is kept.
func (c *Context) Take() []bc.CoinSpend {
	s := c.spends
	c.spends = nil
	c.ids = make(map[bc.Bytes32]bool)
	return s
}

// Bundle takes the inserted spends as a bundle
// with the identity aggregated signature.
func (c *Context) Bundle() *bc.SpendBundle {
	return bc.NewSpendBundle(c.Take()...)
}
