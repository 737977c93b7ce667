// Package conditions builds and parses the condition lists a puzzle
// returns. The ledger enforces each condition when the spend is
// accepted; hermes only produces and inspects them.
package conditions

import (
	"fmt"

	"github.com/Yakuhito/hermes/clvm"
	"github.com/Yakuhito/hermes/errors"
	"github.com/Yakuhito/hermes/protocol/bc"
)

// Opcode identifies a condition.
type Opcode int64

const (
	CreateCoin     Opcode = 51
	ReserveFee     Opcode = 52
	SendMessage    Opcode = 66
	ReceiveMessage Opcode = 67
	AssertMyCoinID Opcode = 70
)

var opcodeNames = map[Opcode]string{
	CreateCoin:     "CREATE_COIN",
	ReserveFee:     "RESERVE_FEE",
	SendMessage:    "SEND_MESSAGE",
	ReceiveMessage: "RECEIVE_MESSAGE",
	AssertMyCoinID: "ASSERT_MY_COIN_ID",
}

func (op Opcode) String() string {
	if s, ok := opcodeNames[op]; ok {
		return s
	}
	return fmt.Sprintf("CONDITION_%d", int64(op))
}

// ModePuzzleToCoin is the message mode in which the sender
// is committed to by puzzle hash and the receiver by coin id.
// A controller coin uses it to authorize one specific coin.
const ModePuzzleToCoin = 0x17

// ErrMalformed is returned by Parse for programs that
// are not lists of conditions.
var ErrMalformed = errors.New("malformed condition")

// Condition is one opcode and its arguments.
type Condition struct {
	Op   Opcode
	Args []*clvm.Program
}

// Program returns the list (op arg1 arg2 ...).
func (c Condition) Program() *clvm.Program {
	b := clvm.NewBuilder().AddInt(int64(c.Op))
	for _, a := range c.Args {
		b.AddProgram(a)
	}
	p, _ := b.Build()
	return p
}

// Arg returns the i'th argument, or nil if there are fewer.
func (c Condition) Arg(i int) *clvm.Program {
	if i >= len(c.Args) {
		return nil
	}
	return c.Args[i]
}

func (c Condition) String() string {
	return c.Op.String() + " " + clvm.Disassemble(c.Program())
}

// NewCreateCoin returns CREATE_COIN, with an optional memo list.
func NewCreateCoin(puzzleHash bc.Bytes32, amount uint64, memos ...[]byte) Condition {
	c := Condition{Op: CreateCoin, Args: []*clvm.Program{clvm.Hash(puzzleHash), clvm.Uint(amount)}}
	if len(memos) > 0 {
		var m []*clvm.Program
		for _, memo := range memos {
			m = append(m, clvm.Atom(memo))
		}
		c.Args = append(c.Args, clvm.List(m...))
	}
	return c
}

// NewReserveFee returns RESERVE_FEE.
func NewReserveFee(amount uint64) Condition {
	return Condition{Op: ReserveFee, Args: []*clvm.Program{clvm.Uint(amount)}}
}

// NewAssertMyCoinID returns ASSERT_MY_COIN_ID.
func NewAssertMyCoinID(id bc.Bytes32) Condition {
	return Condition{Op: AssertMyCoinID, Args: []*clvm.Program{clvm.Hash(id)}}
}

// NewSendMessage returns SEND_MESSAGE with the given mode,
// message and receiver commitment.
func NewSendMessage(mode byte, msg []byte, receiver ...*clvm.Program) Condition {
	args := []*clvm.Program{clvm.Int(int64(mode)), clvm.Atom(msg)}
	return Condition{Op: SendMessage, Args: append(args, receiver...)}
}

// NewReceiveMessage returns RECEIVE_MESSAGE with the given
// mode, message and sender commitment.
func NewReceiveMessage(mode byte, msg []byte, sender ...*clvm.Program) Condition {
	args := []*clvm.Program{clvm.Int(int64(mode)), clvm.Atom(msg)}
	return Condition{Op: ReceiveMessage, Args: append(args, sender...)}
}

// List is an ordered condition list.
type List []Condition

// Program returns the list of condition programs.
func (l List) Program() *clvm.Program {
	var items []*clvm.Program
	for _, c := range l {
		items = append(items, c.Program())
	}
	return clvm.List(items...)
}

// Quote returns (q . conditions), a delegated puzzle that
// ignores its solution and returns l.
func Quote(l List) *clvm.Program {
	return clvm.Cons(clvm.OpQuote.Program(), l.Program())
}

// Filter returns the conditions with the given opcode.
func (l List) Filter(op Opcode) List {
	var out List
	for _, c := range l {
		if c.Op == op {
			out = append(out, c)
		}
	}
	return out
}

// Parse decodes a program returned by a puzzle.
func Parse(p *clvm.Program) (List, error) {
	items, err := p.ToList()
	if err != nil {
		return nil, errors.Sub(ErrMalformed, err)
	}
	var l List
	for i, item := range items {
		parts, err := item.ToList()
		if err != nil || len(parts) == 0 {
			return nil, errors.WithDetailf(ErrMalformed, "condition %d is not a non-empty list", i)
		}
		op, err := parts[0].AsInt()
		if err != nil || !op.IsInt64() {
			return nil, errors.WithDetailf(ErrMalformed, "condition %d has no opcode", i)
		}
		l = append(l, Condition{Op: Opcode(op.Int64()), Args: parts[1:]})
	}
	return l, nil
}

// Unquote returns the conditions of a delegated puzzle built
// by Quote. It reports ok=false for any other program, whose
// output cannot be known without running it.
func Unquote(p *clvm.Program) (l List, ok bool, err error) {
	first, rest, isPair := p.Pair()
	if !isPair || !first.Equal(clvm.OpQuote.Program()) {
		return nil, false, nil
	}
	l, err = Parse(rest)
	return l, err == nil, err
}
