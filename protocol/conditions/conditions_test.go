package conditions

import (
	"testing"

	"github.com/Yakuhito/hermes/clvm"
	"github.com/Yakuhito/hermes/errors"
	"github.com/Yakuhito/hermes/protocol/bc"
	"github.com/Yakuhito/hermes/testutil"
)

func TestQuote(t *testing.T) {
	dp := Quote(List{NewReserveFee(1)})
	if got := clvm.Disassemble(dp); got != "(q (52 1))" {
		t.Errorf("Quote = %s", got)
	}
	want := testutil.MustDecodeHash("307575f17ee0af16e0d4a1a44b44e81986aaf4992e6507fe20b4fc9c97967fca")
	if got := dp.TreeHash(); got != bc.Bytes32(want) {
		t.Errorf("TreeHash = %s want %x", got, want)
	}
}

func TestParse(t *testing.T) {
	id := bc.Bytes32{7}
	l := List{
		NewAssertMyCoinID(id),
		NewCreateCoin(bc.Bytes32{1}, 1000, []byte("memo")),
		NewReceiveMessage(ModePuzzleToCoin, id[:], clvm.Hash(bc.Bytes32{2})),
		NewSendMessage(ModePuzzleToCoin, id[:], clvm.Hash(bc.Bytes32{3})),
	}
	got, err := Parse(l.Program())
	if err != nil {
		testutil.FatalErr(t, err)
	}
	if len(got) != len(l) {
		t.Fatalf("Parse returned %d conditions want %d", len(got), len(l))
	}
	for i := range l {
		if got[i].Op != l[i].Op || !got[i].Program().Equal(l[i].Program()) {
			t.Errorf("condition %d = %s want %s", i, got[i], l[i])
		}
	}

	recv := got.Filter(ReceiveMessage)
	if len(recv) != 1 {
		t.Fatalf("Filter(RECEIVE_MESSAGE) = %d conditions", len(recv))
	}
	if mode, _ := recv[0].Arg(0).AsInt(); mode.Int64() != ModePuzzleToCoin {
		t.Errorf("mode = %s want %d", mode, ModePuzzleToCoin)
	}
	if recv[0].Arg(5) != nil {
		t.Error("Arg past the end is not nil")
	}
}

func TestParseMalformed(t *testing.T) {
	cases := []*clvm.Program{
		clvm.Int(1),
		clvm.List(clvm.Nil),
		clvm.List(clvm.Cons(clvm.Int(51), clvm.Int(1))),
		clvm.List(clvm.List(clvm.List(clvm.Int(1)))),
	}
	for _, c := range cases {
		_, err := Parse(c)
		if errors.Root(err) != ErrMalformed {
			t.Errorf("Parse(%s) error = %v want %v", c, err, ErrMalformed)
		}
	}
}

func TestOpcodeString(t *testing.T) {
	if CreateCoin.String() != "CREATE_COIN" || Opcode(99).String() != "CONDITION_99" {
		t.Errorf("Opcode names = %s, %s", CreateCoin, Opcode(99))
	}
}

func TestUnquote(t *testing.T) {
	want := List{NewReserveFee(1), NewAssertMyCoinID(bc.Bytes32{9})}
	got, ok, err := Unquote(Quote(want))
	if err != nil {
		testutil.FatalErr(t, err)
	}
	if !ok || got.Program().TreeHash() != want.Program().TreeHash() {
		t.Errorf("Unquote(Quote(l)) = %v, %v", got, ok)
	}

	_, ok, err = Unquote(clvm.List(clvm.Int(2), clvm.Int(1)))
	if ok || err != nil {
		t.Errorf("Unquote(non-quote) = %v, %v want false, nil", ok, err)
	}

	_, ok, err = Unquote(clvm.Cons(clvm.OpQuote.Program(), clvm.Int(5)))
	if ok || errors.Root(err) != ErrMalformed {
		t.Errorf("Unquote(q . 5) = %v, %v want false, %v", ok, err, ErrMalformed)
	}
}
