package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/davecgh/go-spew/spew"
	"github.com/ethereum/go-ethereum/common/hexutil"

	"github.com/Yakuhito/hermes/clvm"
	"github.com/Yakuhito/hermes/crypto/k1"
	"github.com/Yakuhito/hermes/eip712"
	"github.com/Yakuhito/hermes/errors"
	"github.com/Yakuhito/hermes/layer"
	"github.com/Yakuhito/hermes/protocol/bc"
	"github.com/Yakuhito/hermes/protocol/conditions"
	"github.com/Yakuhito/hermes/protocol/consensus"
	"github.com/Yakuhito/hermes/spend"
)

var (
	stdin  io.Reader = os.Stdin
	stdout io.Writer = os.Stdout
)

// ErrUsage is returned for missing or extra arguments.
var ErrUsage = errors.New("usage")

func decodeHex(s string) ([]byte, error) {
	s = strings.TrimSpace(s)
	if len(s) >= 2 && s[0] == '0' && (s[1] == 'x' || s[1] == 'X') {
		s = s[2:]
	}
	b, err := hexutil.Decode("0x" + s)
	if err != nil {
		return nil, errors.WithDetailf(bc.ErrMalformedArgument, "hex %q: %v", s, err)
	}
	return b, nil
}

func address(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return errors.WithDetail(ErrUsage, "hermes address pubkey")
	}
	b, err := decodeHex(args[0])
	if err != nil {
		return err
	}
	pk, err := k1.ParsePublicKey(b)
	if err != nil {
		return err
	}
	u, err := pk.Uncompressed()
	if err != nil {
		return err
	}
	return prettyPrint(stdout, struct {
		PublicKey       k1.PublicKey       `json:"public_key"`
		UncompressedKey k1.UncompressedKey `json:"uncompressed_key"`
		Address         k1.Address         `json:"address"`
	}{pk, u, u.Address()})
}

func puzzle(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("puzzle", flag.ContinueOnError)
	nf := addNetworkFlags(fs)
	controller := fs.String("controller", "", "controller puzzle `hash`; build a controller member puzzle")
	reveal := fs.Bool("reveal", false, "also print the serialized puzzle")
	if err := fs.Parse(args); err != nil {
		return errors.Sub(ErrUsage, err)
	}

	var l layer.Layer
	if *controller != "" {
		if fs.NArg() != 0 {
			return errors.WithDetail(ErrUsage, "hermes puzzle -controller hash")
		}
		ph, err := bc.ParseBytes32(*controller)
		if err != nil {
			return err
		}
		l = &layer.ControllerLayer{ControllerPuzzleHash: ph}
	} else {
		if fs.NArg() != 1 {
			return errors.WithDetail(ErrUsage, "hermes puzzle [-network name] [-variant v] pubkey|address")
		}
		ml, err := messageLayer(nf, fs.Arg(0))
		if err != nil {
			return err
		}
		l = ml
	}

	out := describe(l)
	if *reveal {
		p, err := l.ConstructPuzzle(spend.NewContext())
		if err != nil {
			return err
		}
		out.PuzzleReveal = p
	}
	return prettyPrint(stdout, out)
}

// messageLayer builds the layer for a signer given as a public key
// or, for MessageV3, as an address.
func messageLayer(nf *networkFlags, signer string) (*layer.MessageLayer, error) {
	n, v, err := nf.resolve()
	if err != nil {
		return nil, err
	}
	b, err := decodeHex(signer)
	if err != nil {
		return nil, err
	}
	if len(b) == k1.AddressSize {
		if !v.UsesAddress() {
			return nil, errors.WithDetailf(bc.ErrMalformedArgument, "variant %s needs a public key, not an address", v)
		}
		var a k1.Address
		copy(a[:], b)
		return layer.NewAddressLayer(n, a), nil
	}
	pk, err := k1.ParsePublicKey(b)
	if err != nil {
		return nil, err
	}
	return layer.NewMessageLayer(v, n, pk)
}

type description struct {
	Kind                 string        `json:"kind"`
	Variant              string        `json:"variant,omitempty"`
	Network              string        `json:"network,omitempty"`
	GenesisChallenge     *bc.Bytes32   `json:"genesis_challenge,omitempty"`
	PublicKey            *k1.PublicKey `json:"public_key,omitempty"`
	Address              *k1.Address   `json:"address,omitempty"`
	ControllerPuzzleHash *bc.Bytes32   `json:"controller_puzzle_hash,omitempty"`
	PuzzleHash           bc.Bytes32    `json:"puzzle_hash"`
	PuzzleReveal         *clvm.Program `json:"puzzle_reveal,omitempty"`
	Solution             *solutionDesc `json:"solution,omitempty"`
}

type solutionDesc struct {
	CoinID            *bc.Bytes32         `json:"coin_id,omitempty"`
	SignedHash        *bc.Bytes32         `json:"signed_hash,omitempty"`
	PublicKey         *k1.UncompressedKey `json:"public_key,omitempty"`
	Signature         *k1.Signature       `json:"signature,omitempty"`
	DelegatedPuzzle   *clvm.Program       `json:"delegated_puzzle"`
	DelegatedSolution *clvm.Program       `json:"delegated_solution"`
	Conditions        []string            `json:"conditions,omitempty"`
}

func describe(l layer.Layer) *description {
	d := &description{Kind: l.Kind().String(), PuzzleHash: l.PuzzleHash()}
	switch l := l.(type) {
	case *layer.MessageLayer:
		d.Variant = l.Variant.String()
		d.Network = l.Network.Name
		gc := l.Network.GenesisChallenge
		d.GenesisChallenge = &gc
		if l.Variant.UsesAddress() {
			a := l.Address
			d.Address = &a
		} else {
			pk := l.PublicKey
			d.PublicKey = &pk
		}
	case *layer.ControllerLayer:
		ph := l.ControllerPuzzleHash
		d.ControllerPuzzleHash = &ph
	}
	return d
}

func describeSolution(sol layer.Solution) (*solutionDesc, error) {
	d := new(solutionDesc)
	switch sol := sol.(type) {
	case *layer.MessageSolution:
		d.CoinID = &sol.CoinID
		if sol.SignedHash != (bc.Bytes32{}) {
			d.SignedHash = &sol.SignedHash
		}
		if sol.PublicKey != (k1.UncompressedKey{}) {
			d.PublicKey = &sol.PublicKey
		}
		d.Signature = &sol.Signature
		d.DelegatedPuzzle, d.DelegatedSolution = sol.DelegatedPuzzle, sol.DelegatedSolution
	case *layer.ControllerSolution:
		d.DelegatedPuzzle, d.DelegatedSolution = sol.DelegatedPuzzle, sol.DelegatedSolution
	}
	conds, ok, err := conditions.Unquote(d.DelegatedPuzzle)
	if err != nil {
		return nil, err
	}
	if ok {
		for _, c := range conds {
			d.Conditions = append(d.Conditions, c.String())
		}
	}
	return d, nil
}

// spendFlags names the spend a digest is computed for.
type spendFlags struct {
	coin            *string
	parent          *string
	puzzleHash      *string
	amount          *uint64
	delegatedHash   *string
	delegatedPuzzle *string
}

func addSpendFlags(fs *flag.FlagSet) *spendFlags {
	return &spendFlags{
		coin:            fs.String("coin", "", "coin `id`"),
		parent:          fs.String("parent", "", "parent coin `id`, if -coin is not given"),
		puzzleHash:      fs.String("puzzlehash", "", "coin puzzle `hash`, if -coin is not given"),
		amount:          fs.Uint64("amount", 0, "coin `amount` in mojos, if -coin is not given"),
		delegatedHash:   fs.String("dph", "", "delegated puzzle `hash`"),
		delegatedPuzzle: fs.String("dp", "", "delegated puzzle serialized in `hex`, instead of -dph"),
	}
}

func (f *spendFlags) resolve() (coinID, dph bc.Bytes32, err error) {
	switch {
	case *f.coin != "":
		coinID, err = bc.ParseBytes32(*f.coin)
	case *f.parent != "" && *f.puzzleHash != "":
		var c bc.Coin
		c.Amount = *f.amount
		c.ParentCoinInfo, err = bc.ParseBytes32(*f.parent)
		if err == nil {
			c.PuzzleHash, err = bc.ParseBytes32(*f.puzzleHash)
		}
		coinID = c.ID()
	default:
		err = errors.WithDetail(ErrUsage, "need -coin, or -parent, -puzzlehash and -amount")
	}
	if err != nil {
		return coinID, dph, err
	}

	switch {
	case *f.delegatedHash != "" && *f.delegatedPuzzle == "":
		dph, err = bc.ParseBytes32(*f.delegatedHash)
	case *f.delegatedPuzzle != "" && *f.delegatedHash == "":
		var p *clvm.Program
		p, err = clvm.DeserializeHex(*f.delegatedPuzzle)
		if err == nil {
			dph = p.TreeHash()
		}
	default:
		err = errors.WithDetail(ErrUsage, "need exactly one of -dph and -dp")
	}
	return coinID, dph, err
}

func hash(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("hash", flag.ContinueOnError)
	nf := addNetworkFlags(fs)
	sf := addSpendFlags(fs)
	if err := fs.Parse(args); err != nil {
		return errors.Sub(ErrUsage, err)
	}
	n, v, err := nf.resolve()
	if err != nil {
		return err
	}
	coinID, dph, err := sf.resolve()
	if err != nil {
		return err
	}
	d := eip712.Domain{Scheme: v.Scheme(), Network: n}
	return prettyPrint(stdout, struct {
		CoinID              bc.Bytes32 `json:"coin_id"`
		DelegatedPuzzleHash bc.Bytes32 `json:"delegated_puzzle_hash"`
		DomainSeparator     bc.Bytes32 `json:"domain_separator"`
		MessageHash         bc.Bytes32 `json:"message_hash"`
		HashToSign          bc.Bytes32 `json:"hash_to_sign"`
	}{
		coinID,
		dph,
		d.Separator(),
		eip712.MessageHash(coinID, dph),
		d.HashToSign(coinID, dph),
	})
}

func typedData(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("typeddata", flag.ContinueOnError)
	nf := addNetworkFlags(fs)
	sf := addSpendFlags(fs)
	if err := fs.Parse(args); err != nil {
		return errors.Sub(ErrUsage, err)
	}
	n, v, err := nf.resolve()
	if err != nil {
		return err
	}
	coinID, dph, err := sf.resolve()
	if err != nil {
		return err
	}
	d := eip712.Domain{Scheme: v.Scheme(), Network: n}
	return prettyPrint(stdout, d.TypedData(coinID, dph))
}

func decode(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("decode", flag.ContinueOnError)
	verbose := fs.Bool("v", false, "dump the decoded values")
	solutionHex := fs.String("solution", "", "also decode this serialized `solution`")
	if err := fs.Parse(args); err != nil {
		return errors.Sub(ErrUsage, err)
	}
	if fs.NArg() != 0 {
		return errors.WithDetail(ErrUsage, "hermes decode [-v] [-solution hex] < puzzle")
	}

	data, err := io.ReadAll(stdin)
	if err != nil {
		return errors.Wrap(err, "reading stdin")
	}
	b, err := decodeHex(string(data))
	if err != nil {
		return err
	}
	p, err := clvm.Deserialize(b)
	if err != nil {
		return err
	}

	var extra []consensus.Network
	if genesisChallenge != (bc.Bytes32{}) {
		extra = append(extra, consensus.ForChallenge(genesisChallenge))
	}
	l, err := layer.ParsePuzzle(p, extra...)
	if err != nil {
		return err
	}
	if l == nil {
		return errors.WithDetailf(bc.ErrUnrecognizedTemplate, "puzzle %s is not a member puzzle", p.TreeHash())
	}
	out := describe(l)

	var sol layer.Solution
	if *solutionHex != "" {
		sb, err := decodeHex(*solutionHex)
		if err != nil {
			return err
		}
		sp, err := clvm.Deserialize(sb)
		if err != nil {
			return err
		}
		sol, err = l.ParseSolution(sp)
		if err != nil {
			return err
		}
		out.Solution, err = describeSolution(sol)
		if err != nil {
			return err
		}
	}

	if *verbose {
		fmt.Fprint(stdout, spew.Sdump(l))
		if sol != nil {
			fmt.Fprint(stdout, spew.Sdump(sol))
		}
	}
	return prettyPrint(stdout, out)
}

func recoverSigner(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("recover", flag.ContinueOnError)
	hashHex := fs.String("hash", "", "signed `digest`; if empty, typed data JSON is read from stdin")
	if err := fs.Parse(args); err != nil {
		return errors.Sub(ErrUsage, err)
	}
	if fs.NArg() != 1 {
		return errors.WithDetail(ErrUsage, "hermes recover [-hash digest] signature")
	}

	var h bc.Bytes32
	var err error
	if *hashHex != "" {
		h, err = bc.ParseBytes32(*hashHex)
	} else {
		var td eip712.TypedData
		err = json.NewDecoder(stdin).Decode(&td)
		if err != nil {
			return errors.Sub(bc.ErrMalformedArgument, err)
		}
		h, err = td.HashToSign()
	}
	if err != nil {
		return err
	}

	sig, err := decodeHex(fs.Arg(0))
	if err != nil {
		return err
	}
	pk, err := k1.RecoverPublicKey(h, sig)
	if err != nil {
		return err
	}
	a, err := pk.Address()
	if err != nil {
		return err
	}
	return prettyPrint(stdout, struct {
		HashToSign bc.Bytes32   `json:"hash_to_sign"`
		PublicKey  k1.PublicKey `json:"public_key"`
		Address    k1.Address   `json:"address"`
	}{h, pk, a})
}

func keygen(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("keygen", flag.ContinueOnError)
	seedHex := fs.String("seed", "", "BIP-32 `seed` in hex, 16 to 64 bytes")
	index := fs.Uint("index", 0, "account `index` under m/44'/60'/0'/0")
	if err := fs.Parse(args); err != nil {
		return errors.Sub(ErrUsage, err)
	}
	if *seedHex == "" || fs.NArg() != 0 {
		return errors.WithDetail(ErrUsage, "hermes keygen -seed hex [-index n]")
	}
	seed, err := decodeHex(*seedHex)
	if err != nil {
		return err
	}
	priv, err := k1.DeriveKey(seed, uint32(*index))
	if err != nil {
		return err
	}
	pk := k1.FromPrivate(priv)
	a, err := pk.Address()
	if err != nil {
		return err
	}
	return prettyPrint(stdout, struct {
		Path       string       `json:"path"`
		PrivateKey bc.HexBytes  `json:"private_key"`
		PublicKey  k1.PublicKey `json:"public_key"`
		Address    k1.Address   `json:"address"`
	}{fmt.Sprintf("m/44'/60'/0'/0/%d", *index), priv.Serialize(), pk, a})
}
