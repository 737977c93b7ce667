package layer

import (
	"bytes"

	"github.com/Yakuhito/hermes/clvm"
	"github.com/Yakuhito/hermes/errors"
	"github.com/Yakuhito/hermes/protocol/bc"
	"github.com/Yakuhito/hermes/protocol/conditions"
	"github.com/Yakuhito/hermes/puzzles"
	"github.com/Yakuhito/hermes/spend"
)

// ControllerLayer is a member puzzle that defers to a controller
// coin. It emits
//
//	(RECEIVE_MESSAGE 0x17 delegatedPuzzleHash ControllerPuzzleHash)
//
// so the spend is valid only if a coin with puzzle hash
// ControllerPuzzleHash sends the matching message to this coin
// in the same bundle.
type ControllerLayer struct {
	ControllerPuzzleHash bc.Bytes32
}

var _ Layer = (*ControllerLayer)(nil)

type controllerArgs struct {
	ControllerPuzzleHash bc.Bytes32
}

func (l *ControllerLayer) Kind() Kind { return KindController }

func (l *ControllerLayer) ConstructPuzzle(ctx *spend.Context) (*clvm.Program, error) {
	return ctx.Curry(puzzles.ControllerMember, &controllerArgs{l.ControllerPuzzleHash})
}

func (l *ControllerLayer) PuzzleHash() bc.Bytes32 {
	return clvm.CurryTreeHash(puzzles.ControllerMember.Hash, clvm.HashAtom(l.ControllerPuzzleHash[:]))
}

func parseController(args []*clvm.Program) (*ControllerLayer, error) {
	var a controllerArgs
	if err := clvm.UnmarshalCurried(args, &a); err != nil {
		return nil, decodeErr(err, "controller layer arguments")
	}
	return &ControllerLayer{ControllerPuzzleHash: a.ControllerPuzzleHash}, nil
}

// ParseControllerLayer recognizes a controller puzzle.
// It returns (nil, nil) if p is not one.
func ParseControllerLayer(p *clvm.Program) (*ControllerLayer, error) {
	l, err := ParsePuzzle(p)
	if err != nil {
		return nil, err
	}
	cl, _ := l.(*ControllerLayer)
	return cl, nil
}

// ControllerSolution is the witness of a controller layer.
type ControllerSolution struct {
	DelegatedPuzzle   *clvm.Program
	DelegatedSolution *clvm.Program
}

func (*ControllerSolution) solution() {}

func (l *ControllerLayer) ConstructSolution(ctx *spend.Context, s Solution) (*clvm.Program, error) {
	sol, ok := s.(*ControllerSolution)
	if !ok {
		return nil, errors.WithDetailf(ErrSolutionKind, "controller layer given %T", s)
	}
	if sol == nil {
		return nil, errors.WithDetail(bc.ErrMalformedArgument, "nil controller solution")
	}
	p, err := clvm.Marshal(sol)
	return p, errors.Sub(bc.ErrMalformedArgument, err)
}

func (l *ControllerLayer) ParseSolution(p *clvm.Program) (Solution, error) {
	sol := new(ControllerSolution)
	if err := clvm.Unmarshal(p, sol); err != nil {
		return nil, decodeErr(err, "controller layer solution")
	}
	return sol, nil
}

// SendMessage returns the condition the controller must emit
// to authorize coinID to run the delegated puzzle with the
// given hash.
func (l *ControllerLayer) SendMessage(coinID, delegatedPuzzleHash bc.Bytes32) conditions.Condition {
	return conditions.NewSendMessage(conditions.ModePuzzleToCoin, delegatedPuzzleHash[:], clvm.Hash(coinID))
}

// ReceiveMessage returns the condition the puzzle emits
// before the delegated puzzle's output.
func (l *ControllerLayer) ReceiveMessage(delegatedPuzzleHash bc.Bytes32) conditions.Condition {
	return conditions.NewReceiveMessage(conditions.ModePuzzleToCoin, delegatedPuzzleHash[:], clvm.Hash(l.ControllerPuzzleHash))
}

// Verify checks that a coin with puzzle hash sender, emitting the
// conditions sent, authorizes coinID to be spent with sol.
func (l *ControllerLayer) Verify(coinID, sender bc.Bytes32, sent conditions.List, sol *ControllerSolution) error {
	if sender != l.ControllerPuzzleHash {
		return errors.WithDetailf(bc.ErrMessageMismatch, "sender %s is not controller %s", sender, l.ControllerPuzzleHash)
	}
	dph := treeHash(sol.DelegatedPuzzle)
	for _, c := range sent.Filter(conditions.SendMessage) {
		if matchesMessage(c, dph, coinID) {
			return nil
		}
	}
	return errors.WithDetailf(bc.ErrMessageMismatch, "controller sends no message for %s to coin %s", dph, coinID)
}

func matchesMessage(c conditions.Condition, msg, receiver bc.Bytes32) bool {
	if len(c.Args) != 3 {
		return false
	}
	mode, err := c.Arg(0).AsInt()
	if err != nil || !mode.IsInt64() || mode.Int64() != conditions.ModePuzzleToCoin {
		return false
	}
	m, ok := c.Arg(1).Bytes()
	if !ok || !bytes.Equal(m, msg[:]) {
		return false
	}
	r, ok := c.Arg(2).Bytes()
	return ok && bytes.Equal(r, receiver[:])
}
