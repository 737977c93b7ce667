package layer

import (
	"github.com/Yakuhito/hermes/eip712"
	"github.com/Yakuhito/hermes/errors"
	"github.com/Yakuhito/hermes/puzzles"
)

// ErrVariant is returned for an unknown message variant.
var ErrVariant = errors.New("unknown message layer variant")

// Variant is a version of the message puzzle. Each variant
// binds exactly one template and one domain scheme; constants
// are never mixed across variants.
type Variant int

const (
	// MessageV1 signs under the unversioned domain
	// and commits to a compressed public key.
	MessageV1 Variant = 1

	// MessageV2 signs under the versioned domain, commits to a
	// compressed public key, and carries the hash to sign in its
	// solution.
	MessageV2 Variant = 2

	// MessageV3 signs under the versioned domain and commits to an
	// Ethereum address. Its solution carries the signer's
	// uncompressed public key.
	MessageV3 Variant = 3
)

// Variants lists every message variant, oldest first.
var Variants = []Variant{MessageV1, MessageV2, MessageV3}

func (v Variant) String() string {
	switch v {
	case MessageV1:
		return "v1"
	case MessageV2:
		return "v2"
	case MessageV3:
		return "v3"
	}
	return "invalid"
}

// ParseVariant returns the variant named "v1", "v2" or "v3".
func ParseVariant(s string) (Variant, error) {
	for _, v := range Variants {
		if v.String() == s {
			return v, nil
		}
	}
	return 0, errors.WithDetailf(ErrVariant, "variant %q", s)
}

func (v Variant) valid() bool {
	return v >= MessageV1 && v <= MessageV3
}

// Template returns the puzzle template of v.
func (v Variant) Template() *puzzles.Template {
	return puzzles.Message(int(v))
}

// Scheme returns the domain scheme of v.
func (v Variant) Scheme() eip712.Scheme {
	if v == MessageV1 {
		return eip712.Unversioned
	}
	return eip712.Versioned
}

// UsesAddress reports whether v commits to an address
// rather than a public key.
func (v Variant) UsesAddress() bool {
	return v == MessageV3
}

// EmbedsHash reports whether v's solution carries
// the hash to sign.
func (v Variant) EmbedsHash() bool {
	return v == MessageV2
}
