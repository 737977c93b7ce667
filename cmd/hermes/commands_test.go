package main

import (
	"bytes"
	"context"
	"encoding/hex"
	"encoding/json"
	"strings"
	"testing"

	"github.com/Yakuhito/hermes/crypto/k1"
	"github.com/Yakuhito/hermes/errors"
	"github.com/Yakuhito/hermes/layer"
	"github.com/Yakuhito/hermes/protocol/bc"
	"github.com/Yakuhito/hermes/protocol/consensus"
	"github.com/Yakuhito/hermes/testutil"
)

const curriedV2Mainnet = "ff02ffff01ff02ffff01ff02ffff03ffff09ff5fffff3eff05ffff3eff0bff2fffff02ff06ffff04ff02ffff04ff82017fff8080808080" +
	"8080ffff01ff05ffff04ffff04ffff04ff04ffff04ff2fff808080ffff02ff82017fff8202ff8080ffff8413d61f00ff17ff5fff81bf808080ffff01ff" +
	"088080ff0180ffff04ffff01ff46ff02ffff03ffff07ff0580ffff01ff0bffff0102ffff02ff06ffff04ff02ffff04ff09ff80808080ffff02ff06ffff" +
	"04ff02ffff04ff0dff8080808080ffff01ff0bffff0101ff058080ff0180ff018080ffff04ffff01a2190138d765d3bce341eed11f92fc1311d575f34c" +
	"c9ee0fc0e1f03820e11aebf6b5b2ffff04ffff01a072930978f119c79f9de7a13bd50c9b3261132d7b4819bdf0d3ca4d4c37ade070ffff04ffff01a102" +
	"4e3b81af9c2234cad09d679ce6035ed1392347ce64ce405f5dcd36228a25de6eff0180808080"

// run calls fn with the given stdin and returns what it
// printed, decoded as a JSON object.
func run(t *testing.T, fn func(context.Context, []string) error, in string, args ...string) (map[string]interface{}, error) {
	t.Helper()
	var out bytes.Buffer
	stdin, stdout = strings.NewReader(in), &out
	err := fn(context.Background(), args)
	if err != nil {
		return nil, err
	}
	var m map[string]interface{}
	if err := json.Unmarshal(out.Bytes(), &m); err != nil {
		t.Fatalf("output %q: %v", out.String(), err)
	}
	return m, nil
}

func knownKeyHex() string {
	return k1.FromPrivate(testutil.KnownKey).String()
}

func TestAddressCommand(t *testing.T) {
	m, err := run(t, address, "", knownKeyHex())
	if err != nil {
		testutil.FatalErr(t, err)
	}
	if got, want := m["address"], "0x2c7536E3605D9C16a7a3D7b1898e529396a65c23"; got != want {
		t.Errorf("address = %v want %s", got, want)
	}
	if got, want := m["public_key"], knownKeyHex(); got != want {
		t.Errorf("public_key = %v want %s", got, want)
	}

	_, err = run(t, address, "", "0x02")
	if errors.Root(err) != bc.ErrMalformedArgument {
		t.Errorf("address(0x02) err = %v want %v", err, bc.ErrMalformedArgument)
	}
	_, err = run(t, address, "")
	if errors.Root(err) != ErrUsage {
		t.Errorf("address() err = %v want %v", err, ErrUsage)
	}
}

func TestPuzzleCommand(t *testing.T) {
	const addr = "0x2c7536E3605D9C16a7a3D7b1898e529396a65c23"
	cases := []struct {
		args []string
		want string
	}{
		{[]string{"-variant", "v1", knownKeyHex()}, "0x6598351f9bdac139dc88be9a5a5b04c4317d9a3a7e90796c9634b78b186aa175"},
		{[]string{"-variant", "v2", "-network", "testnet11", knownKeyHex()}, "0x36a4b01c060eb7117e9d577cb3832a40a51fe8ef252fa24acff0e9d8c7fef169"},
		{[]string{"-variant", "v3", knownKeyHex()}, "0xd4426a9eda6fff63cd5684a90ec361b425e70831d298dc0f05f1ee8dfa2890d5"},
		{[]string{"-variant", "v3", addr}, "0xd4426a9eda6fff63cd5684a90ec361b425e70831d298dc0f05f1ee8dfa2890d5"},
		{[]string{"-controller", "0xc1472135b01a9d3f5f9ce7e7ffd0a2a0e79dd7a1ccd2e0fda07ab2d2f82d5fe7"}, ""},
	}
	for _, c := range cases {
		m, err := run(t, puzzle, "", c.args...)
		if err != nil {
			t.Errorf("puzzle %v: %v", c.args, err)
			continue
		}
		if c.want != "" && m["puzzle_hash"] != c.want {
			t.Errorf("puzzle %v = %v want %s", c.args, m["puzzle_hash"], c.want)
		}
	}

	_, err := run(t, puzzle, "", "-variant", "v1", addr)
	if errors.Root(err) != bc.ErrMalformedArgument {
		t.Errorf("puzzle v1 address err = %v want %v", err, bc.ErrMalformedArgument)
	}
	_, err = run(t, puzzle, "", "-variant", "v9", knownKeyHex())
	if errors.Root(err) != layer.ErrVariant {
		t.Errorf("puzzle v9 err = %v want %v", err, layer.ErrVariant)
	}
	_, err = run(t, puzzle, "", "-network", "nowhere", knownKeyHex())
	if errors.Root(err) != consensus.ErrUnknownNetwork {
		t.Errorf("puzzle nowhere err = %v want %v", err, consensus.ErrUnknownNetwork)
	}
}

func TestPuzzleReveal(t *testing.T) {
	m, err := run(t, puzzle, "", "-variant", "v2", "-reveal", "0x024e3b81af9c2234cad09d679ce6035ed1392347ce64ce405f5dcd36228a25de6e")
	if err != nil {
		testutil.FatalErr(t, err)
	}
	if got, want := m["puzzle_reveal"], "0x"+curriedV2Mainnet; got != want {
		t.Errorf("puzzle_reveal = %v want %s", got, want)
	}
}

func TestHashRecover(t *testing.T) {
	coinID := bc.Bytes32{1}
	dph := bc.Bytes32{2}
	m, err := run(t, hash, "", "-variant", "v3", "-coin", coinID.String(), "-dph", dph.String())
	if err != nil {
		testutil.FatalErr(t, err)
	}
	l, err := layer.NewMessageLayer(layer.MessageV3, consensus.Mainnet, k1.FromPrivate(testutil.KnownKey))
	if err != nil {
		testutil.FatalErr(t, err)
	}
	h := l.HashToSign(coinID, dph)
	if got := m["hash_to_sign"]; got != h.String() {
		t.Fatalf("hash_to_sign = %v want %s", got, h)
	}

	sig := k1.SignRecoverable(testutil.KnownKey, h)
	sigHex := hex.EncodeToString(sig[:])
	m, err = run(t, recoverSigner, "", "-hash", h.String(), sigHex)
	if err != nil {
		testutil.FatalErr(t, err)
	}
	if got, want := m["address"], l.Address.String(); got != want {
		t.Errorf("recover -hash address = %v want %s", got, want)
	}

	// The typed data printed for the same spend recovers the same signer.
	var td bytes.Buffer
	stdout = &td
	err = typedData(context.Background(), []string{"-variant", "v3", "-coin", coinID.String(), "-dph", dph.String()})
	if err != nil {
		testutil.FatalErr(t, err)
	}
	m, err = run(t, recoverSigner, td.String(), sigHex)
	if err != nil {
		testutil.FatalErr(t, err)
	}
	if got, want := m["address"], l.Address.String(); got != want {
		t.Errorf("recover typed data address = %v want %s", got, want)
	}
}

func TestHashCoinFields(t *testing.T) {
	c := bc.Coin{ParentCoinInfo: bc.Bytes32{7}, PuzzleHash: bc.Bytes32{8}, Amount: 1000}
	m, err := run(t, hash, "",
		"-parent", c.ParentCoinInfo.String(),
		"-puzzlehash", c.PuzzleHash.String(),
		"-amount", "1000",
		"-dp", "ff0180",
	)
	if err != nil {
		testutil.FatalErr(t, err)
	}
	if got := m["coin_id"]; got != c.ID().String() {
		t.Errorf("coin_id = %v want %s", got, c.ID())
	}

	_, err = run(t, hash, "", "-coin", c.ID().String())
	if errors.Root(err) != ErrUsage {
		t.Errorf("hash without dph err = %v want %v", err, ErrUsage)
	}
}

func TestDecodeCommand(t *testing.T) {
	m, err := run(t, decode, curriedV2Mainnet+"\n")
	if err != nil {
		testutil.FatalErr(t, err)
	}
	want := map[string]string{
		"kind":        "message",
		"variant":     "v2",
		"network":     "mainnet",
		"public_key":  "0x024e3b81af9c2234cad09d679ce6035ed1392347ce64ce405f5dcd36228a25de6e",
		"puzzle_hash": "0xc015ecbb07a459eaf438a07876059fb14bf5cbed962387800b3e07ae2ab7b948",
	}
	for k, v := range want {
		if m[k] != v {
			t.Errorf("decode %s = %v want %s", k, m[k], v)
		}
	}

	_, err = run(t, decode, "ff0180")
	if errors.Root(err) != bc.ErrUnrecognizedTemplate {
		t.Errorf("decode (q) err = %v want %v", err, bc.ErrUnrecognizedTemplate)
	}
	_, err = run(t, decode, "ff01")
	if err == nil {
		t.Error("decode truncated puzzle succeeded")
	}
}

func TestKeygenCommand(t *testing.T) {
	m, err := run(t, keygen, "", "-seed", hex.EncodeToString(testutil.TestSeed), "-index", "2")
	if err != nil {
		testutil.FatalErr(t, err)
	}
	a, err := k1.FromPrivate(testutil.TestKey(2)).Address()
	if err != nil {
		testutil.FatalErr(t, err)
	}
	if got := m["address"]; got != a.String() {
		t.Errorf("keygen address = %v want %s", got, a)
	}
	if got, want := m["path"], "m/44'/60'/0'/0/2"; got != want {
		t.Errorf("keygen path = %v want %s", got, want)
	}

	_, err = run(t, keygen, "")
	if errors.Root(err) != ErrUsage {
		t.Errorf("keygen() err = %v want %v", err, ErrUsage)
	}
}
