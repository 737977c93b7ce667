// Command hermes builds and inspects coins locked by Ethereum
// signatures.
//
// It computes the puzzle hash a signer's coins live at, the digest
// and typed-data request a wallet signs for a spend, and decodes
// member puzzles found on chain.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/Yakuhito/hermes/env"
	"github.com/Yakuhito/hermes/errors"
	"github.com/Yakuhito/hermes/layer"
	"github.com/Yakuhito/hermes/log"
	"github.com/Yakuhito/hermes/log/rotation"
	"github.com/Yakuhito/hermes/protocol/bc"
	"github.com/Yakuhito/hermes/protocol/consensus"
)

const help = `
Usage:

	hermes command [arguments]

The commands are:

	address    print the address of a public key
	puzzle     print the puzzle hash of a signer or controller
	hash       print the digest to sign for a spend
	typeddata  print the eth_signTypedData_v4 request for a spend
	decode     decode a member puzzle read from stdin
	recover    recover the signer of a wallet signature
	keygen     derive a key from a seed

Environment:

	HERMES_NETWORK            network name (mainnet, testnet11)
	HERMES_GENESIS_CHALLENGE  override the network's genesis challenge
	HERMES_VARIANT            message layer variant (v1, v2, v3)
	HERMES_LOG_PREFIX         prefix log entries with app=hermes
	HERMES_LOGFILE            write logs to a rotated file instead of stderr
`

var (
	networkName = env.Choice("HERMES_NETWORK", "mainnet", consensus.Names()...)
	variantName = env.Choice("HERMES_VARIANT", "v3", "v1", "v2", "v3")
	logPrefix   = env.Bool("HERMES_LOG_PREFIX", false)
	logFile     = env.String("HERMES_LOGFILE", "")
	logSize     = env.Int("HERMES_LOGSIZE", 5e6) // 5MB
	logCount    = env.Int("HERMES_LOGCOUNT", 9)

	genesisChallenge bc.Bytes32
)

func init() {
	env.HexVar(genesisChallenge[:], "HERMES_GENESIS_CHALLENGE")
}

type command struct {
	name string
	run  func(ctx context.Context, args []string) error
}

var commands = []command{
	{"address", address},
	{"puzzle", puzzle},
	{"hash", hash},
	{"typeddata", typedData},
	{"decode", decode},
	{"recover", recoverSigner},
	{"keygen", keygen},
}

func main() {
	env.Parse()
	flag.Usage = func() {
		fmt.Fprint(os.Stderr, strings.TrimSpace(help)+"\n")
	}
	flag.Parse()
	args := flag.Args()
	if len(args) < 1 {
		flag.Usage()
		os.Exit(2)
	}

	log.SetOutput(logWriter())
	if *logPrefix {
		log.SetPrefix("app", "hermes")
	}

	ctx := context.Background()
	for _, c := range commands {
		if c.name != args[0] {
			continue
		}
		log.Printkv(ctx, "command", c.name, "network", *networkName)
		err := c.run(ctx, args[1:])
		if err != nil {
			log.Error(ctx, err)
			fatalf("hermes %s: %s\n", c.name, userMessage(err))
		}
		return
	}
	fatalf("hermes: unknown command %q\n", args[0])
}

func logWriter() io.Writer {
	if *logFile == "" {
		return os.Stderr
	}
	return rotation.Create(*logFile, *logSize, *logCount)
}

func fatalf(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, format, args...)
	os.Exit(1)
}

func userMessage(err error) string {
	if d := errors.Detail(err); d != "" {
		return err.Error() + ": " + d
	}
	return err.Error()
}

func prettyPrint(w io.Writer, obj interface{}) error {
	j, err := json.MarshalIndent(obj, "", "  ")
	if err != nil {
		return errors.Wrap(err, "json-marshaling")
	}
	_, err = fmt.Fprintln(w, string(j))
	return err
}

// networkFlags adds the flags shared by commands that
// depend on the network and the message variant.
type networkFlags struct {
	network *string
	variant *string
}

func addNetworkFlags(fs *flag.FlagSet) *networkFlags {
	return &networkFlags{
		network: fs.String("network", *networkName, "network `name`"),
		variant: fs.String("variant", *variantName, "message layer `variant`"),
	}
}

func (f *networkFlags) resolve() (consensus.Network, layer.Variant, error) {
	v, err := layer.ParseVariant(*f.variant)
	if err != nil {
		return consensus.Network{}, 0, err
	}
	if genesisChallenge != (bc.Bytes32{}) {
		return consensus.ForChallenge(genesisChallenge), v, nil
	}
	n, err := consensus.Lookup(*f.network)
	return n, v, err
}
