package bc

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/Yakuhito/hermes/errors"
)

func TestCoinID(t *testing.T) {
	var ph Bytes32
	for i := range ph {
		ph[i] = 1
	}
	c := Coin{PuzzleHash: ph, Amount: 1337}
	want := "0x77d6f0890e93711d2625d17dc15311e367425c59812f0e63630ecdf1bd4fbaea"
	if got := c.ID().String(); got != want {
		t.Errorf("Coin.ID() = %s want %s", got, want)
	}
}

func TestAmountBytes(t *testing.T) {
	cases := []struct {
		v    uint64
		want string
	}{
		{0, ""},
		{1, "01"},
		{127, "7f"},
		{128, "0080"},
		{255, "00ff"},
		{256, "0100"},
		{1337, "0539"},
		{1 << 63, "008000000000000000"},
		{1<<64 - 1, "00ffffffffffffffff"},
	}
	for _, c := range cases {
		got := HexBytes(amountBytes(c.v))
		b, _ := got.MarshalText()
		if string(b) != "0x"+c.want {
			t.Errorf("amountBytes(%d) = %s want 0x%s", c.v, b, c.want)
		}
	}
}

func TestBytes32Text(t *testing.T) {
	const s = "ccd5bb71183532bff220ba46c268991a3ff07eb358e8255a65c30a2dce0e5fbb"
	for _, in := range []string{s, "0x" + s} {
		b32, err := ParseBytes32(in)
		if err != nil {
			t.Fatalf("ParseBytes32(%q) error %v", in, err)
		}
		if b32.String() != "0x"+s {
			t.Errorf("ParseBytes32(%q) = %s", in, b32)
		}
	}

	_, err := ParseBytes32("0x1234")
	if errors.Root(err) != ErrMalformedArgument {
		t.Errorf("ParseBytes32(short) error = %v want %v", err, ErrMalformedArgument)
	}
	_, err = ParseBytes32(strings.Repeat("zz", 32))
	if errors.Root(err) != ErrMalformedArgument {
		t.Errorf("ParseBytes32(non-hex) error = %v want %v", err, ErrMalformedArgument)
	}
	_, err = BytesToBytes32(make([]byte, 33))
	if errors.Root(err) != ErrMalformedArgument {
		t.Errorf("BytesToBytes32(33 bytes) error = %v want %v", err, ErrMalformedArgument)
	}
}

func TestSpendBundleJSON(t *testing.T) {
	sb := NewSpendBundle(CoinSpend{
		Coin:         Coin{Amount: 1},
		PuzzleReveal: HexBytes{0x01},
		Solution:     HexBytes{0x80},
	})
	b, err := json.Marshal(sb)
	if err != nil {
		t.Fatal(err)
	}
	got := string(b)
	wants := []string{
		`"coin_spends":[{"coin":{"parent_coin_info":"0x0000`,
		`"amount":1}`,
		`"puzzle_reveal":"0x01"`,
		`"solution":"0x80"`,
		`"aggregated_signature":"0xc0` + strings.Repeat("00", 95) + `"`,
	}
	for _, w := range wants {
		if !strings.Contains(got, w) {
			t.Errorf("json = %s\nwant substring %s", got, w)
		}
	}

	var decoded SpendBundle
	if err := json.Unmarshal(b, &decoded); err != nil {
		t.Fatal(err)
	}
	if decoded.AggregatedSignature != IdentityG2 {
		t.Errorf("decoded aggregated signature = %x", decoded.AggregatedSignature)
	}
	if _, ok := decoded.Find(sb.CoinSpends[0].Coin.ID()); !ok {
		t.Errorf("Find did not locate the decoded spend")
	}
}
