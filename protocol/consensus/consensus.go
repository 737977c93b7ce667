// Package consensus names the networks hermes can build spends for.
// A network's genesis challenge is the discriminator bound into every
// structured-signing domain, so a signature made for one network
// cannot be replayed on another.
package consensus

import (
	"sort"

	"github.com/Yakuhito/hermes/errors"
	"github.com/Yakuhito/hermes/protocol/bc"
)

// ErrUnknownNetwork is returned by Lookup for names
// not in the table.
var ErrUnknownNetwork = errors.New("unknown network")

// Network is a named chain and its genesis challenge.
type Network struct {
	Name             string
	GenesisChallenge bc.Bytes32
}

var (
	Mainnet = Network{
		Name:             "mainnet",
		GenesisChallenge: mustHash("ccd5bb71183532bff220ba46c268991a3ff07eb358e8255a65c30a2dce0e5fbb"),
	}
	Testnet11 = Network{
		Name:             "testnet11",
		GenesisChallenge: mustHash("37a90eb5185a9c4439a91ddc98bbadce7b4feba060d50116a067de66bf236615"),
	}
)

var networks = map[string]Network{
	Mainnet.Name:   Mainnet,
	Testnet11.Name: Testnet11,
}

// Lookup returns the network with the given name.
func Lookup(name string) (Network, error) {
	n, ok := networks[name]
	if !ok {
		return Network{}, errors.WithDetailf(ErrUnknownNetwork, "network %q (known: %v)", name, Names())
	}
	return n, nil
}

// Names returns the known network names in sorted order.
func Names() []string {
	var names []string
	for name := range networks {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Known returns the named networks, sorted by name.
func Known() []Network {
	var ns []Network
	for _, name := range Names() {
		ns = append(ns, networks[name])
	}
	return ns
}

// Custom returns an unnamed network for a genesis
// challenge outside the table, such as a simulator.
func Custom(challenge bc.Bytes32) Network {
	return Network{Name: "custom", GenesisChallenge: challenge}
}

// ForChallenge returns the named network whose genesis challenge
// is c, or a custom network if there is none.
func ForChallenge(c bc.Bytes32) Network {
	for _, n := range networks {
		if n.GenesisChallenge == c {
			return n
		}
	}
	return Custom(c)
}

func mustHash(s string) bc.Bytes32 {
	h, err := bc.ParseBytes32(s)
	if err != nil {
		panic(err)
	}
	return h
}
