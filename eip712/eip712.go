// Package eip712 derives the structured-signing hashes that bind a
// coin spend to an Ethereum wallet signature.
//
// A wallet signs
//
//	keccak256(0x19 0x01 ‖ domainSeparator ‖ keccak256(typeHash ‖ coinID ‖ delegatedPuzzleHash))
//
// where the domain separator commits to the name "Chia Coin Spend",
// optionally the version "1", and the network's genesis challenge as
// the salt. The two domain schemes are distinct protocol versions: a
// signature made under one never verifies under the other.
package eip712

import (
	"github.com/Yakuhito/hermes/crypto/keccak"
	"github.com/Yakuhito/hermes/errors"
	"github.com/Yakuhito/hermes/protocol/bc"
	"github.com/Yakuhito/hermes/protocol/consensus"
)

// Literals of the typed message.
const (
	DomainName    = "Chia Coin Spend"
	DomainVersion = "1"
	PrimaryType   = "ChiaCoinSpend"
	TypeString    = "ChiaCoinSpend(bytes32 coin_id,bytes32 delegated_puzzle_hash)"

	unversionedDomainType = "EIP712Domain(string name,bytes32 salt)"
	versionedDomainType   = "EIP712Domain(string name,string version,bytes32 salt)"
)

// PrefixSize is the length of a domain prefix.
const PrefixSize = 2 + 32

// ErrScheme is returned for an unknown scheme name.
var ErrScheme = errors.New("unknown signing scheme")

// TypeHash is keccak256 of TypeString.
var TypeHash = bc.Bytes32(keccak.Sum([]byte(TypeString)))

// Scheme selects the domain separator layout.
type Scheme int

const (
	// Unversioned domains hash (name, salt).
	Unversioned Scheme = iota + 1

	// Versioned domains hash (name, version, salt).
	Versioned
)

func (s Scheme) String() string {
	switch s {
	case Unversioned:
		return "unversioned"
	case Versioned:
		return "versioned"
	}
	return "invalid"
}

// ParseScheme returns the scheme with the given name.
func ParseScheme(name string) (Scheme, error) {
	switch name {
	case "unversioned":
		return Unversioned, nil
	case "versioned":
		return Versioned, nil
	}
	return 0, errors.WithDetailf(ErrScheme, "scheme %q", name)
}

// Domain binds a scheme to a network.
type Domain struct {
	Scheme  Scheme
	Network consensus.Network
}

// Separator returns the EIP-712 domain separator.
// It panics if d.Scheme is not a known scheme.
func (d Domain) Separator() bc.Bytes32 {
	salt := d.Network.GenesisChallenge
	name := keccak.Sum([]byte(DomainName))
	switch d.Scheme {
	case Unversioned:
		th := keccak.Sum([]byte(unversionedDomainType))
		return keccak.Sum(th[:], name[:], salt[:])
	case Versioned:
		th := keccak.Sum([]byte(versionedDomainType))
		version := keccak.Sum([]byte(DomainVersion))
		return keccak.Sum(th[:], name[:], version[:], salt[:])
	}
	panic(errors.WithDetailf(ErrScheme, "scheme %d", int(d.Scheme)))
}

// Prefix returns 0x19 0x01 followed by the domain separator.
// It is the first curried argument of every message puzzle.
func (d Domain) Prefix() []byte {
	sep := d.Separator()
	p := make([]byte, 0, PrefixSize)
	p = append(p, 0x19, 0x01)
	return append(p, sep[:]...)
}

// MessageHash returns the struct hash of a ChiaCoinSpend message.
// It does not depend on the domain.
func MessageHash(coinID, delegatedPuzzleHash bc.Bytes32) bc.Bytes32 {
	return keccak.Sum(TypeHash[:], coinID[:], delegatedPuzzleHash[:])
}

// HashToSign returns the digest a wallet signs
// to authorize spending coinID with the given delegated puzzle.
func (d Domain) HashToSign(coinID, delegatedPuzzleHash bc.Bytes32) bc.Bytes32 {
	m := MessageHash(coinID, delegatedPuzzleHash)
	return keccak.Sum(d.Prefix(), m[:])
}
