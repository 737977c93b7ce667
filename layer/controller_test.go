package layer

import (
	"testing"

	"github.com/Yakuhito/hermes/clvm"
	"github.com/Yakuhito/hermes/errors"
	"github.com/Yakuhito/hermes/protocol/bc"
	"github.com/Yakuhito/hermes/protocol/conditions"
	"github.com/Yakuhito/hermes/spend"
	"github.com/Yakuhito/hermes/testutil"
)

func TestControllerPuzzleHash(t *testing.T) {
	l := &ControllerLayer{ControllerPuzzleHash: testutil.MustDecodeHash("c1472135b14c77c8bef98e73f70208325fa0dcf1e6bd668ae9b31a9cea295fe7")}
	want := bc.Bytes32(testutil.MustDecodeHash("eaaf5a07ab6bd610f5306f83a775515a66a08e30828163480957e7912c37a16e"))
	if got := l.PuzzleHash(); got != want {
		t.Errorf("PuzzleHash = %s want %s", got, want)
	}
	p, err := l.ConstructPuzzle(spend.NewContext())
	if err != nil {
		testutil.FatalErr(t, err)
	}
	if got := p.TreeHash(); got != want {
		t.Errorf("puzzle tree hash = %s want %s", got, want)
	}

	parsed, err := ParseControllerLayer(p)
	if err != nil {
		testutil.FatalErr(t, err)
	}
	testutil.ExpectEqual(t, parsed, l, "ParseControllerLayer")
	if parsed.Kind() != KindController {
		t.Errorf("Kind = %v", parsed.Kind())
	}
}

func TestControllerSolutionRoundTrip(t *testing.T) {
	l := &ControllerLayer{ControllerPuzzleHash: bc.Bytes32{1}}
	want := &ControllerSolution{
		DelegatedPuzzle:   conditions.Quote(conditions.List{conditions.NewReserveFee(10)}),
		DelegatedSolution: clvm.Nil,
	}
	p, err := l.ConstructSolution(spend.NewContext(), want)
	if err != nil {
		testutil.FatalErr(t, err)
	}
	if got := clvm.Disassemble(p); got != "((q (52 10)) ())" {
		t.Errorf("solution = %s", got)
	}
	got, err := l.ParseSolution(p)
	if err != nil {
		testutil.FatalErr(t, err)
	}
	testutil.ExpectEqual(t, got, want, "ParseSolution")

	_, err = l.ParseSolution(clvm.List(clvm.Nil))
	if errors.Root(err) != bc.ErrDecode {
		t.Errorf("ParseSolution(short) err = %v want %v", err, bc.ErrDecode)
	}
	_, err = l.ConstructSolution(spend.NewContext(), &MessageSolution{})
	if errors.Root(err) != ErrSolutionKind {
		t.Errorf("ConstructSolution(message) err = %v want %v", err, ErrSolutionKind)
	}
	_, err = l.ConstructSolution(spend.NewContext(), (*ControllerSolution)(nil))
	if errors.Root(err) != bc.ErrMalformedArgument {
		t.Errorf("ConstructSolution(nil) err = %v want %v", err, bc.ErrMalformedArgument)
	}
}

func TestControllerMessages(t *testing.T) {
	controller := bc.Bytes32{0xcc}
	coinID := bc.Bytes32{0x01}
	l := &ControllerLayer{ControllerPuzzleHash: controller}
	sol := &ControllerSolution{
		DelegatedPuzzle:   conditions.Quote(conditions.List{conditions.NewCreateCoin(bc.Bytes32{2}, 1)}),
		DelegatedSolution: clvm.Nil,
	}
	dph := sol.DelegatedPuzzle.TreeHash()

	send := l.SendMessage(coinID, dph)
	want := "(66 23 " + dph.String() + " " + coinID.String() + ")"
	if got := clvm.Disassemble(send.Program()); got != want {
		t.Errorf("SendMessage = %s want %s", got, want)
	}
	recv := l.ReceiveMessage(dph)
	want = "(67 23 " + dph.String() + " " + controller.String() + ")"
	if got := clvm.Disassemble(recv.Program()); got != want {
		t.Errorf("ReceiveMessage = %s want %s", got, want)
	}

	emitted := conditions.List{conditions.NewReserveFee(0), send}
	if err := l.Verify(coinID, controller, emitted, sol); err != nil {
		testutil.FatalErr(t, err)
	}

	cases := []struct {
		name    string
		coinID  bc.Bytes32
		sender  bc.Bytes32
		emitted conditions.List
	}{
		{"no message", coinID, controller, conditions.List{conditions.NewReserveFee(0)}},
		{"wrong sender", coinID, bc.Bytes32{0xdd}, emitted},
		{"other coin", bc.Bytes32{0x02}, controller, emitted},
		{"other puzzle", coinID, controller, conditions.List{l.SendMessage(coinID, bc.Bytes32{3})}},
		{"other mode", coinID, controller, conditions.List{conditions.NewSendMessage(0x3f, dph[:], clvm.Hash(coinID))}},
		{"receive not send", coinID, controller, conditions.List{recv}},
	}
	for _, c := range cases {
		err := l.Verify(c.coinID, c.sender, c.emitted, sol)
		if errors.Root(err) != bc.ErrMessageMismatch {
			t.Errorf("%s: err = %v want %v", c.name, err, bc.ErrMessageMismatch)
		}
	}
}
