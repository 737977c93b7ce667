package spend

import (
	"testing"

	"github.com/Yakuhito/hermes/clvm"
	"github.com/Yakuhito/hermes/errors"
	"github.com/Yakuhito/hermes/protocol/bc"
	"github.com/Yakuhito/hermes/puzzles"
	"github.com/Yakuhito/hermes/testutil"
)

type controllerArgs struct {
	PuzzleHash bc.Bytes32
}

type badArgs struct {
	Prefix []byte `clvm:"width=34"`
}

func TestCurry(t *testing.T) {
	ctx := NewContext()
	args := &controllerArgs{PuzzleHash: bc.Bytes32{1}}
	p, err := ctx.Curry(puzzles.ControllerMember, args)
	if err != nil {
		testutil.FatalErr(t, err)
	}
	want := clvm.CurryTreeHash(puzzles.ControllerMember.Hash, clvm.HashAtom(args.PuzzleHash[:]))
	if got := p.TreeHash(); got != want {
		t.Errorf("tree hash = %s want %s", got, want)
	}

	_, err = ctx.Curry(puzzles.ControllerMember, &badArgs{Prefix: []byte{1}})
	if errors.Root(err) != bc.ErrMalformedArgument {
		t.Errorf("width violation: err = %v want %v", err, bc.ErrMalformedArgument)
	}
}

func TestInsertTake(t *testing.T) {
	ctx := NewContext()
	puzzle, err := ctx.Puzzle(puzzles.ControllerMember)
	if err != nil {
		testutil.FatalErr(t, err)
	}
	coin := bc.Coin{ParentCoinInfo: bc.Bytes32{1}, PuzzleHash: puzzle.TreeHash(), Amount: 1}

	err = ctx.Insert(coin, puzzle, clvm.Nil)
	if err != nil {
		testutil.FatalErr(t, err)
	}
	if !ctx.Spent(coin.ID()) {
		t.Errorf("coin not marked spent")
	}

	err = ctx.Insert(coin, puzzle, clvm.Nil)
	if errors.Root(err) != ErrDuplicateSpend {
		t.Errorf("second insert: err = %v want %v", err, ErrDuplicateSpend)
	}

	other := coin
	other.PuzzleHash = bc.Bytes32{2}
	err = ctx.Insert(other, puzzle, clvm.Nil)
	if errors.Root(err) != bc.ErrMalformedArgument {
		t.Errorf("wrong reveal: err = %v want %v", err, bc.ErrMalformedArgument)
	}

	sb := ctx.Bundle()
	if len(sb.CoinSpends) != 1 {
		t.Fatalf("bundle has %d spends want 1", len(sb.CoinSpends))
	}
	cs := sb.CoinSpends[0]
	testutil.ExpectBytesEqual(t, cs.PuzzleReveal, puzzle.Serialize(), "puzzle reveal")
	testutil.ExpectBytesEqual(t, cs.Solution, []byte{0x80}, "solution")
	if sb.AggregatedSignature != bc.IdentityG2 {
		t.Errorf("aggregated signature = %x", sb.AggregatedSignature)
	}

	if len(ctx.Take()) != 0 || ctx.Spent(coin.ID()) {
		t.Errorf("Bundle did not empty the context")
	}
}

func TestPuzzleMemo(t *testing.T) {
	ctx := NewContext()
	p1, err := ctx.Puzzle(puzzles.EIP712MessageV3)
	if err != nil {
		testutil.FatalErr(t, err)
	}
	p2, err := ctx.Puzzle(puzzles.EIP712MessageV3)
	if err != nil {
		testutil.FatalErr(t, err)
	}
	if p1 != p2 {
		t.Errorf("template reloaded within one context")
	}
}
