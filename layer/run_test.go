package layer

import (
	"bytes"
	"crypto/sha256"
	"math/big"
	"testing"

	"github.com/Yakuhito/hermes/clvm"
	"github.com/Yakuhito/hermes/crypto/k1"
	"github.com/Yakuhito/hermes/crypto/keccak"
	"github.com/Yakuhito/hermes/errors"
	"github.com/Yakuhito/hermes/protocol/bc"
	"github.com/Yakuhito/hermes/protocol/conditions"
	"github.com/Yakuhito/hermes/protocol/consensus"
	"github.com/Yakuhito/hermes/spend"
	"github.com/Yakuhito/hermes/testutil"
)

// errRun is returned by run for any program that fails,
// including one that raises.
var errRun = errors.New("program failed")

// run evaluates prog against env with the operators the member
// puzzles use. Cost is not metered.
func run(prog, env *clvm.Program) (*clvm.Program, error) {
	if prog.IsAtom() {
		return envPath(prog, env)
	}
	op := prog.First()
	b, ok := op.Bytes()
	if !ok {
		return nil, errors.WithDetailf(errRun, "operator is a pair: %s", op)
	}
	if len(b) == 1 && clvm.Op(b[0]) == clvm.OpQuote {
		return prog.Rest(), nil
	}
	var args []*clvm.Program
	for a := prog.Rest(); a.IsPair(); a = a.Rest() {
		v, err := run(a.First(), env)
		if err != nil {
			return nil, err
		}
		args = append(args, v)
	}
	return apply(b, args)
}

func envPath(path, env *clvm.Program) (*clvm.Program, error) {
	b, _ := path.Bytes()
	n := new(big.Int).SetBytes(b)
	if n.Sign() == 0 {
		return clvm.Nil, nil
	}
	for n.Cmp(big.NewInt(1)) > 0 {
		if env.IsAtom() {
			return nil, errors.WithDetailf(errRun, "path %x into atom", b)
		}
		if n.Bit(0) == 1 {
			env = env.Rest()
		} else {
			env = env.First()
		}
		n.Rsh(n, 1)
	}
	return env, nil
}

func apply(op []byte, args []*clvm.Program) (*clvm.Program, error) {
	if bytes.Equal(op, clvm.Secp256k1Verify) {
		return secp256k1Verify(args)
	}
	if len(op) != 1 {
		return nil, errors.WithDetailf(errRun, "unknown operator %x", op)
	}
	argc := map[clvm.Op]int{
		clvm.OpApply: 2, clvm.OpIf: 3, clvm.OpCons: 2,
		clvm.OpFirst: 1, clvm.OpRest: 1, clvm.OpListp: 1, clvm.OpEq: 2,
	}
	if n, ok := argc[clvm.Op(op[0])]; ok && len(args) != n {
		return nil, errors.WithDetailf(errRun, "%s takes %d arguments, got %d", clvm.Op(op[0]), n, len(args))
	}

	switch clvm.Op(op[0]) {
	case clvm.OpApply:
		return run(args[0], args[1])
	case clvm.OpIf:
		if args[0].IsNil() {
			return args[2], nil
		}
		return args[1], nil
	case clvm.OpCons:
		return clvm.Cons(args[0], args[1]), nil
	case clvm.OpFirst, clvm.OpRest:
		first, rest, ok := args[0].Pair()
		if !ok {
			return nil, errors.WithDetailf(errRun, "%s of atom", clvm.Op(op[0]))
		}
		if clvm.Op(op[0]) == clvm.OpFirst {
			return first, nil
		}
		return rest, nil
	case clvm.OpListp:
		return truth(args[0].IsPair()), nil
	case clvm.OpRaise:
		return nil, errors.WithDetailf(errRun, "raise %s", clvm.List(args...))
	case clvm.OpAll:
		for _, a := range args {
			if a.IsNil() {
				return clvm.Nil, nil
			}
		}
		return clvm.Int(1), nil
	}

	atoms, err := atomArgs(args)
	if err != nil {
		return nil, err
	}
	switch clvm.Op(op[0]) {
	case clvm.OpEq:
		return truth(bytes.Equal(atoms[0], atoms[1])), nil
	case clvm.OpSha256:
		h := sha256.New()
		for _, a := range atoms {
			h.Write(a)
		}
		return clvm.Atom(h.Sum(nil)), nil
	case clvm.OpKeccak:
		h := keccak.Sum(atoms...)
		return clvm.Atom(h[:]), nil
	case clvm.OpConcat:
		return clvm.Atom(bytes.Join(atoms, nil)), nil
	case clvm.OpSubstr:
		if len(args) != 2 && len(args) != 3 {
			return nil, errors.WithDetailf(errRun, "substr takes 2 or 3 arguments, got %d", len(args))
		}
		s := atoms[0]
		from, to := intArg(args[1]), int64(len(s))
		if len(args) == 3 {
			to = intArg(args[2])
		}
		if from < 0 || from > to || to > int64(len(s)) {
			return nil, errors.WithDetailf(errRun, "substr %d %d of %d bytes", from, to, len(s))
		}
		return clvm.Atom(s[from:to]), nil
	case clvm.OpLogand:
		v := big.NewInt(-1)
		for _, a := range args {
			n, _ := a.AsInt()
			v.And(v, n)
		}
		return clvm.BigInt(v), nil
	}
	return nil, errors.WithDetailf(errRun, "unknown operator %x", op)
}

func secp256k1Verify(args []*clvm.Program) (*clvm.Program, error) {
	atoms, err := atomArgs(args)
	if err != nil {
		return nil, err
	}
	if len(atoms) != 3 || len(atoms[0]) != k1.PublicKeySize || len(atoms[1]) != 32 || len(atoms[2]) != k1.SignatureSize {
		return nil, errors.WithDetail(errRun, "secp256k1_verify argument sizes")
	}
	var (
		pk   k1.PublicKey
		hash bc.Bytes32
		sig  k1.Signature
	)
	copy(pk[:], atoms[0])
	copy(hash[:], atoms[1])
	copy(sig[:], atoms[2])
	if err := sig.Verify(pk, hash); err != nil {
		return nil, errors.WithDetailf(errRun, "secp256k1_verify: %v", err)
	}
	return clvm.Nil, nil
}

func atomArgs(args []*clvm.Program) ([][]byte, error) {
	var atoms [][]byte
	for _, a := range args {
		b, ok := a.Bytes()
		if !ok {
			return nil, errors.WithDetail(errRun, "pair where atom expected")
		}
		atoms = append(atoms, b)
	}
	return atoms, nil
}

func intArg(p *clvm.Program) int64 {
	n, err := p.AsInt()
	if err != nil || !n.IsInt64() {
		return -1
	}
	return n.Int64()
}

func truth(b bool) *clvm.Program {
	if b {
		return clvm.Int(1)
	}
	return clvm.Nil
}

func TestRunEvaluator(t *testing.T) {
	env := clvm.List(clvm.Atom([]byte{0, 0, 0, 0x0f}), clvm.Int(3))
	cases := []struct {
		prog string
		want *clvm.Program
	}{
		{"ff0180", clvm.Nil},                                  // (q)
		{"05", clvm.Int(3)},                                   // 5
		{"ff18ff02ffff010380", clvm.Int(3)},                   // (logand 2 (q . 3))
		{"ff18ffff0101ffff010280", clvm.Nil},                  // (logand (q . 1) (q . 2))
		{"ff0cff02ffff0103ffff010480", clvm.Atom([]byte{0xf})}, // (substr 2 (q . 3) (q . 4))
	}
	for _, c := range cases {
		got, err := run(clvm.MustDeserializeHex(c.prog), env)
		if err != nil {
			t.Errorf("run(%s): %v", c.prog, err)
			continue
		}
		if !got.Equal(c.want) {
			t.Errorf("run(%s) = %s want %s", c.prog, got, c.want)
		}
	}
	if _, err := run(clvm.MustDeserializeHex("ff0880"), env); errors.Root(err) != errRun {
		t.Errorf("run(x) err = %v want %v", err, errRun)
	}
}

// delegations returns two delegated spends with the same output:
// one quoting its conditions and one taking them from its solution.
func delegations(out conditions.List) [][2]*clvm.Program {
	return [][2]*clvm.Program{
		{conditions.Quote(out), clvm.Nil},
		{clvm.Int(1), out.Program()},
	}
}

// Every message puzzle, run against the solution built for it,
// asserts the coin id and returns the delegated conditions, for
// keys of both y parities. Any tampering makes the puzzle fail,
// and Verify agrees with the puzzle in every case.
func TestMessagePuzzleRun(t *testing.T) {
	ctx := spend.NewContext()
	parities := make(map[byte]int)
	for _, v := range Variants {
		for _, n := range []consensus.Network{consensus.Mainnet, consensus.Testnet11} {
			for i := uint32(0); i < 16; i++ {
				priv := testutil.TestKey(i)
				pk := k1.FromPrivate(priv)
				parities[pk[0]]++
				l, err := NewMessageLayer(v, n, pk)
				if err != nil {
					testutil.FatalErr(t, err)
				}
				puzzle, err := l.ConstructPuzzle(ctx)
				if err != nil {
					testutil.FatalErr(t, err)
				}

				coinID := bc.Bytes32{byte(v), byte(i), 0xc0}
				out := conditions.List{
					conditions.NewCreateCoin(bc.Bytes32{0xee}, uint64(1000+i)),
					conditions.NewReserveFee(1),
				}
				want := append(conditions.List{conditions.NewAssertMyCoinID(coinID)}, out...).Program()

				for _, d := range delegations(out) {
					sig := k1.Sign(priv, l.HashToSign(coinID, d[0].TreeHash()))
					sol, err := l.Solve(coinID, d[0], d[1], pk, sig)
					if err != nil {
						testutil.FatalErr(t, err)
					}
					solution, err := l.ConstructSolution(ctx, sol)
					if err != nil {
						testutil.FatalErr(t, err)
					}
					got, err := run(puzzle, solution)
					if err != nil {
						t.Errorf("%v %s key %d: %v", v, n.Name, i, err)
						continue
					}
					if !got.Equal(want) {
						t.Errorf("%v %s key %d output = %s want %s", v, n.Name, i, got, want)
					}
					if err := l.Verify(coinID, sol); err != nil {
						t.Errorf("%v %s key %d Verify: %v", v, n.Name, i, err)
					}

					for name, bad := range tamperings(t, l, sol, i) {
						solution, err := l.ConstructSolution(ctx, bad)
						if err != nil {
							testutil.FatalErr(t, err)
						}
						if got, err := run(puzzle, solution); err == nil {
							t.Errorf("%v %s key %d %s: puzzle returned %s", v, n.Name, i, name, got)
						}
						if l.Verify(bad.CoinID, bad) == nil {
							t.Errorf("%v %s key %d %s: Verify accepted", v, n.Name, i, name)
						}
					}
				}
			}
			if v == MessageV2 {
				// An embedded hash signed correctly but not
				// matching the recomputation is refused.
				l := knownLayer(t, v, n)
				solution, err := l.ConstructSolution(ctx, signedSolution(t, l, bc.Bytes32{0xc0}))
				if err != nil {
					testutil.FatalErr(t, err)
				}
				items, err := solution.ToList()
				if err != nil {
					testutil.FatalErr(t, err)
				}
				other := bc.Bytes32(keccak.Sum([]byte("another message")))
				otherSig := k1.Sign(testutil.KnownKey, other)
				items[1], items[2] = clvm.Hash(other), clvm.Atom(otherSig[:])
				if got, err := run(puzzleFor(t, ctx, l), clvm.List(items...)); err == nil {
					t.Errorf("%s embedded hash mismatch: puzzle returned %s", n.Name, got)
				}
			}
		}
	}
	if parities[0x02] == 0 || parities[0x03] == 0 {
		t.Errorf("test keys cover y parities %v, want both", parities)
	}
}

// tamperings returns copies of sol that a puzzle must refuse.
func tamperings(t testing.TB, l *MessageLayer, sol *MessageSolution, i uint32) map[string]*MessageSolution {
	cases := make(map[string]*MessageSolution)

	badSig := *sol
	badSig.Signature[40] ^= 1
	cases["signature"] = &badSig

	// The signed hash, where there is one, follows the change
	// so only the signature is left to catch it.
	rehash := func(s *MessageSolution) *MessageSolution {
		if l.Variant.EmbedsHash() {
			s.SignedHash = l.HashToSign(s.CoinID, s.DelegatedPuzzle.TreeHash())
		}
		return s
	}

	otherCoin := *sol
	otherCoin.CoinID[31] ^= 1
	cases["coin id"] = rehash(&otherCoin)

	otherPuzzle := *sol
	otherPuzzle.DelegatedPuzzle = conditions.Quote(conditions.List{conditions.NewReserveFee(2)})
	cases["delegated puzzle"] = rehash(&otherPuzzle)

	if l.Variant == MessageV3 {
		// A valid signature by a key that does not hash
		// to the committed address.
		other := testutil.TestKey(100 + i)
		u, err := k1.FromPrivate(other).Uncompressed()
		if err != nil {
			testutil.FatalErr(t, err)
		}
		otherKey := *sol
		otherKey.PublicKey = u
		otherKey.Signature = k1.Sign(other, l.HashToSign(sol.CoinID, sol.DelegatedPuzzle.TreeHash()))
		cases["key"] = &otherKey
	}
	return cases
}

func puzzleFor(t testing.TB, ctx *spend.Context, l Layer) *clvm.Program {
	p, err := l.ConstructPuzzle(ctx)
	if err != nil {
		testutil.FatalErr(t, err)
	}
	return p
}

func TestControllerPuzzleRun(t *testing.T) {
	ctx := spend.NewContext()
	l := &ControllerLayer{ControllerPuzzleHash: bc.Bytes32{0xc1}}
	puzzle := puzzleFor(t, ctx, l)
	out := conditions.List{conditions.NewCreateCoin(bc.Bytes32{0xee}, 1)}
	for _, d := range delegations(out) {
		solution, err := l.ConstructSolution(ctx, &ControllerSolution{d[0], d[1]})
		if err != nil {
			testutil.FatalErr(t, err)
		}
		got, err := run(puzzle, solution)
		if err != nil {
			testutil.FatalErr(t, err)
		}
		want := append(conditions.List{l.ReceiveMessage(d[0].TreeHash())}, out...).Program()
		if !got.Equal(want) {
			t.Errorf("output = %s want %s", got, want)
		}
	}
}
