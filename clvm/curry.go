package clvm

import "github.com/Yakuhito/hermes/protocol/bc"

// Curry binds args into mod, producing
//
//	(a (q . mod) (c (q . arg1) (c (q . arg2) ... 1)))
//
// which runs mod with the environment (arg1 arg2 ... . solution).
func Curry(mod *Program, args ...*Program) *Program {
	env := oneAtom
	for i := len(args) - 1; i >= 0; i-- {
		env = List(OpCons.Program(), Cons(OpQuote.Program(), args[i]), env)
	}
	return List(OpApply.Program(), Cons(OpQuote.Program(), mod), env)
}

// CurryTreeHash returns TreeHash(Curry(mod, args...)) given only the
// tree hashes of mod and of each argument. Tools that know a template
// hash can derive a puzzle hash without materializing the template.
func CurryTreeHash(modHash bc.Bytes32, argHashes ...bc.Bytes32) bc.Bytes32 {
	env := oneHash
	for i := len(argHashes) - 1; i >= 0; i-- {
		quoted := HashPair(quoteHash, argHashes[i])
		env = TreeHashList(consHash, quoted, env)
	}
	return TreeHashList(applyHash, HashPair(quoteHash, modHash), env)
}

// Uncurry is the inverse of Curry. It returns the module and
// argument list of a curried program; ok is false when p does
// not have the curried shape.
func Uncurry(p *Program) (mod *Program, args []*Program, ok bool) {
	items, err := p.ToList()
	if err != nil || len(items) != 3 || !isOp(items[0], OpApply) {
		return nil, nil, false
	}
	q, mod, ok := items[1].Pair()
	if !ok || !isOp(q, OpQuote) {
		return nil, nil, false
	}
	env := items[2]
	for {
		if b, isAtom := env.Bytes(); isAtom {
			if len(b) == 1 && b[0] == 1 {
				return mod, args, true
			}
			return nil, nil, false
		}
		parts, err := env.ToList()
		if err != nil || len(parts) != 3 || !isOp(parts[0], OpCons) {
			return nil, nil, false
		}
		q, arg, ok := parts[1].Pair()
		if !ok || !isOp(q, OpQuote) {
			return nil, nil, false
		}
		args = append(args, arg)
		env = parts[2]
	}
}

var oneAtom = &Program{atom: []byte{1}}

func isOp(p *Program, op Op) bool {
	b, ok := p.Bytes()
	return ok && len(b) == 1 && b[0] == byte(op)
}
