package testutil

import (
	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcutil/hdkeychain"
	"github.com/btcsuite/btcd/chaincfg"
)

// TestSeed is the fixed seed behind TestKey.
// Tests derive from it so golden vectors stay stable.
var TestSeed = MustDecodeHex("000102030405060708090a0b0c0d0e0f")

// KnownKey is a widely published secp256k1 test key.
// Its address is 0x2c7536E3605D9C16a7a3D7b1898e529396a65c23.
var KnownKey, _ = btcec.PrivKeyFromBytes(MustDecodeHex(
	"4c0883a69102937d6231471b5dbb6204fe5129617082792ae468d01a3f362318",
))

var testMaster *hdkeychain.ExtendedKey

func init() {
	var err error
	testMaster, err = hdkeychain.NewMaster(TestSeed, &chaincfg.MainNetParams)
	if err != nil {
		panic(err)
	}
}

// TestKey returns the i'th key on the Ethereum account path
// m/44'/60'/0'/0/i under TestSeed.
func TestKey(i uint32) *btcec.PrivateKey {
	k := testMaster
	path := []uint32{
		hdkeychain.HardenedKeyStart + 44,
		hdkeychain.HardenedKeyStart + 60,
		hdkeychain.HardenedKeyStart + 0,
		0,
		i,
	}
	for _, n := range path {
		var err error
		k, err = k.Derive(n)
		if err != nil {
			panic(err)
		}
	}
	priv, err := k.ECPrivKey()
	if err != nil {
		panic(err)
	}
	return priv
}
