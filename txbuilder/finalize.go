package txbuilder

import (
	"context"

	"github.com/Yakuhito/hermes/crypto/k1"
	"github.com/Yakuhito/hermes/errors"
	"github.com/Yakuhito/hermes/layer"
	"github.com/Yakuhito/hermes/log"
	"github.com/Yakuhito/hermes/protocol/bc"
	"github.com/Yakuhito/hermes/spend"
)

// Finalize builds the solution of every spend in tpl and returns
// the bundle. Each message spend is verified the way its puzzle
// will verify it, and each controller-delegated spend must have its
// controller in the bundle sending the matching message. Any failure
// rejects the whole bundle.
func Finalize(ctx context.Context, tpl *Template) (*bc.SpendBundle, error) {
	if len(tpl.Spends) == 0 {
		return nil, errors.WithDetail(ErrBadTemplate, "no spends")
	}
	ctx = log.WithBundle(ctx, tpl.Spends[0].Coin.ID().String()[:18])

	sigs := make(map[int]*SigningInstruction)
	for _, si := range tpl.SigningInstructions {
		if si.Position < 0 || si.Position >= len(tpl.Spends) {
			return nil, errors.WithDetailf(ErrBadTemplate, "signing instruction for spend %d of %d", si.Position, len(tpl.Spends))
		}
		if _, ok := sigs[si.Position]; ok {
			return nil, errors.WithDetailf(ErrBadTemplate, "two signing instructions for spend %d", si.Position)
		}
		sigs[si.Position] = si
	}

	sctx := spend.NewContext()
	for i, s := range tpl.Spends {
		puzzle, err := s.Layer.ConstructPuzzle(sctx)
		if err != nil {
			return nil, errors.Wrapf(err, "spend %d puzzle", i)
		}
		var sol layer.Solution
		switch l := s.Layer.(type) {
		case *layer.MessageLayer:
			sol, err = messageSolution(l, s, sigs[i])
		case *layer.ControllerLayer:
			sol, err = controllerSolution(l, s, tpl)
		default:
			err = errors.WithDetailf(ErrBadTemplate, "unknown layer %T", s.Layer)
		}
		if err != nil {
			return nil, errors.Wrapf(err, "spend %d", i)
		}
		solution, err := s.Layer.ConstructSolution(sctx, sol)
		if err != nil {
			return nil, errors.Wrapf(err, "spend %d solution", i)
		}
		err = sctx.Insert(s.Coin, puzzle, solution)
		if err != nil {
			return nil, errors.Wrapf(err, "spend %d", i)
		}
		log.Printkv(ctx, log.KeyCoin, s.Coin.ID(), "layer", s.Layer.Kind(), "amount", s.Coin.Amount)
	}

	sb := sctx.Bundle()
	log.Printkv(ctx, "spends", len(sb.CoinSpends))
	return sb, nil
}

func messageSolution(l *layer.MessageLayer, s *Spend, si *SigningInstruction) (*layer.MessageSolution, error) {
	if si == nil || len(si.Signature) == 0 || si.PublicKey == nil {
		return nil, errors.WithDetailf(ErrMissingSignature, "coin %s", s.Coin.ID())
	}
	sig, err := k1.ParseSignature(si.Signature)
	if err != nil {
		return nil, err
	}
	id := s.Coin.ID()
	sol, err := l.Solve(id, s.DelegatedPuzzle, s.DelegatedSolution, *si.PublicKey, sig)
	if err != nil {
		return nil, err
	}
	return sol, l.Verify(id, sol)
}

func controllerSolution(l *layer.ControllerLayer, s *Spend, tpl *Template) (*layer.ControllerSolution, error) {
	sol := &layer.ControllerSolution{
		DelegatedPuzzle:   s.DelegatedPuzzle,
		DelegatedSolution: s.DelegatedSolution,
	}
	id := s.Coin.ID()
	var err error = ErrMissingController
	for _, c := range tpl.Spends {
		if c == s || c.Coin.PuzzleHash != l.ControllerPuzzleHash {
			continue
		}
		err = l.Verify(id, c.Coin.PuzzleHash, c.Conditions, sol)
		if err == nil {
			return sol, nil
		}
	}
	if err == ErrMissingController {
		err = errors.WithDetailf(err, "no coin with puzzle hash %s", l.ControllerPuzzleHash)
	}
	return nil, err
}
