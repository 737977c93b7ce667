// Package txbuilder assembles spend bundles of coins locked by
// member layers: it collects the spends, tells external signers
// what to sign, and checks the result before producing the bundle.
package txbuilder

import (
	"github.com/Yakuhito/hermes/clvm"
	"github.com/Yakuhito/hermes/errors"
	"github.com/Yakuhito/hermes/layer"
	"github.com/Yakuhito/hermes/protocol/bc"
	"github.com/Yakuhito/hermes/protocol/conditions"
)

var (
	// ErrBadTemplate is returned by Finalize for a template
	// that cannot produce a valid bundle.
	ErrBadTemplate = errors.New("bad spend template")

	// ErrPuzzleHash is returned when a coin's puzzle hash is
	// not the hash of the layer it is spent with.
	ErrPuzzleHash = errors.New("coin puzzle hash does not match layer")

	// ErrMissingSignature is returned by Finalize when a
	// message spend has not been signed.
	ErrMissingSignature = errors.New("missing signature")

	// ErrMissingController is returned by Finalize when a
	// controller-delegated coin's controller is not spent
	// in the same bundle.
	ErrMissingController = errors.New("controller coin not spent in bundle")
)

// Spend is one coin to be spent through its member layer.
type Spend struct {
	Coin              bc.Coin
	Layer             layer.Layer
	DelegatedPuzzle   *clvm.Program
	DelegatedSolution *clvm.Program

	// Conditions is the output of the delegated puzzle.
	Conditions conditions.List
}

// Template is a partially- or fully-signed bundle.
type Template struct {
	Spends              []*Spend
	SigningInstructions []*SigningInstruction
}

// Builder accumulates spends into a Template.
type Builder struct {
	tpl *Template
}

// NewBuilder returns a builder with no spends.
func NewBuilder() *Builder {
	return &Builder{tpl: new(Template)}
}

func (b *Builder) add(coin bc.Coin, l layer.Layer, conds conditions.List) (*Spend, error) {
	if h := l.PuzzleHash(); h != coin.PuzzleHash {
		return nil, errors.WithDetailf(ErrPuzzleHash, "coin %s has puzzle hash %s, %s layer hashes to %s", coin.ID(), coin.PuzzleHash, l.Kind(), h)
	}
	for _, s := range b.tpl.Spends {
		if s.Coin == coin {
			return nil, errors.WithDetailf(ErrBadTemplate, "coin %s added twice", coin.ID())
		}
	}
	s := &Spend{
		Coin:              coin,
		Layer:             l,
		DelegatedPuzzle:   conditions.Quote(conds),
		DelegatedSolution: clvm.Nil,
		Conditions:        conds,
	}
	b.tpl.Spends = append(b.tpl.Spends, s)
	return s, nil
}

// AddMessageSpend adds a spend of coin, locked by l, whose delegated
// puzzle returns conds. The spend needs a signature before Finalize.
func (b *Builder) AddMessageSpend(coin bc.Coin, l *layer.MessageLayer, conds conditions.List) (*SigningInstruction, error) {
	s, err := b.add(coin, l, conds)
	if err != nil {
		return nil, err
	}
	id := coin.ID()
	dph := s.DelegatedPuzzle.TreeHash()
	si := &SigningInstruction{
		Position:            len(b.tpl.Spends) - 1,
		Variant:             l.Variant.String(),
		CoinID:              id,
		DelegatedPuzzleHash: dph,
		HashToSign:          l.HashToSign(id, dph),
		TypedData:           l.TypedData(id, dph),
	}
	if l.Variant.UsesAddress() {
		a := l.Address
		si.Address = &a
	} else {
		pk := l.PublicKey
		si.PublicKey = &pk
	}
	b.tpl.SigningInstructions = append(b.tpl.SigningInstructions, si)
	return si, nil
}

// AddControllerSpend adds a spend of coin, locked by l, whose
// delegated puzzle returns conds. It returns the condition the
// controller coin must emit in the same bundle.
func (b *Builder) AddControllerSpend(coin bc.Coin, l *layer.ControllerLayer, conds conditions.List) (conditions.Condition, error) {
	s, err := b.add(coin, l, conds)
	if err != nil {
		return conditions.Condition{}, err
	}
	return l.SendMessage(coin.ID(), s.DelegatedPuzzle.TreeHash()), nil
}

// Build returns the template. The builder must not be used after.
func (b *Builder) Build() *Template {
	tpl := b.tpl
	b.tpl = nil
	return tpl
}
