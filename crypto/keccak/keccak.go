// Package keccak implements the Keccak-256 hash used by Ethereum.
//
// This is the original Keccak submission with 0x01 padding,
// not the NIST SHA3-256 standard. The two produce different
// digests for the same input.
package keccak

import (
	"hash"

	"golang.org/x/crypto/sha3"
)

// Size is the size of a Keccak-256 checksum in bytes.
const Size = 32

// New returns a new hash.Hash computing the Keccak-256 checksum.
func New() hash.Hash {
	return sha3.NewLegacyKeccak256()
}

// Sum returns the Keccak-256 checksum of the
// concatenation of data.
func Sum(data ...[]byte) (h [Size]byte) {
	d := sha3.NewLegacyKeccak256()
	for _, p := range data {
		d.Write(p)
	}
	d.Sum(h[:0])
	return h
}
