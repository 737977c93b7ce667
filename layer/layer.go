// Package layer builds and recognizes the member puzzles that
// authorize a coin spend.
//
// Two kinds of layer exist. A message layer requires a secp256k1
// signature, made by an Ethereum wallet over an EIP-712 typed
// message, committing to the coin and to a delegated puzzle. A
// controller layer defers to another coin: the spend is valid only if
// that coin sends a message naming the delegated puzzle in the same
// bundle.
//
// Both kinds implement Layer. Callers that need to recognize an
// arbitrary puzzle reveal use ParsePuzzle, which probes every kind.
package layer

import (
	"github.com/Yakuhito/hermes/clvm"
	"github.com/Yakuhito/hermes/errors"
	"github.com/Yakuhito/hermes/protocol/bc"
	"github.com/Yakuhito/hermes/protocol/consensus"
	"github.com/Yakuhito/hermes/puzzles"
	"github.com/Yakuhito/hermes/spend"
)

// ErrSolutionKind is returned when a layer is given
// a solution built for a different kind of layer.
var ErrSolutionKind = errors.New("solution does not belong to this layer")

// Kind identifies a layer implementation.
type Kind int

const (
	KindMessage Kind = iota + 1
	KindController
)

func (k Kind) String() string {
	switch k {
	case KindMessage:
		return "message"
	case KindController:
		return "controller"
	}
	return "invalid"
}

// Layer is a member puzzle: how to build it, its address,
// and how to build and read back its solution.
type Layer interface {
	Kind() Kind

	// ConstructPuzzle returns the curried puzzle, loading
	// its template through ctx.
	ConstructPuzzle(ctx *spend.Context) (*clvm.Program, error)

	// PuzzleHash returns the tree hash of the curried puzzle,
	// computed without building it.
	PuzzleHash() bc.Bytes32

	ConstructSolution(ctx *spend.Context, sol Solution) (*clvm.Program, error)
	ParseSolution(p *clvm.Program) (Solution, error)
}

// Solution is the witness of one kind of layer.
// It is implemented only by *MessageSolution and
// *ControllerSolution.
type Solution interface {
	solution()
}

// ParsePuzzle recognizes a curried member puzzle. It returns
// (nil, nil) if p is not built from a known template, and
// ErrUnrecognizedTemplate if the template is superseded. Message
// puzzles are matched against the known networks and any extra
// networks given.
func ParsePuzzle(p *clvm.Program, networks ...consensus.Network) (Layer, error) {
	mod, args, ok := clvm.Uncurry(p)
	if !ok {
		return nil, nil
	}
	switch t := puzzles.Recognize(mod.TreeHash()); t {
	case puzzles.EIP712MessageV1, puzzles.EIP712MessageV2, puzzles.EIP712MessageV3:
		l, err := parseMessage(Variant(t.Variant), args, networks)
		if err != nil {
			return nil, err
		}
		return l, nil
	case puzzles.ControllerMember:
		l, err := parseController(args)
		if err != nil {
			return nil, err
		}
		return l, nil
	case nil:
		return nil, nil
	default:
		if t.Superseded {
			return nil, errors.WithDetailf(bc.ErrUnrecognizedTemplate, "template %s is superseded", t)
		}
		panic(errors.Wrapf(bc.ErrUnrecognizedTemplate, "no layer for template %s", t))
	}
}

func decodeErr(err error, what string) error {
	return errors.WithDetailf(bc.ErrDecode, "%s: %v", what, err)
}
