package k1

import (
	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcutil/hdkeychain"
	"github.com/btcsuite/btcd/chaincfg"

	"github.com/Yakuhito/hermes/errors"
	"github.com/Yakuhito/hermes/protocol/bc"
)

// EthereumPath is the BIP-44 account path wallets use for
// Ethereum keys, m/44'/60'/0'/0, without the final index.
var EthereumPath = []uint32{
	hdkeychain.HardenedKeyStart + 44,
	hdkeychain.HardenedKeyStart + 60,
	hdkeychain.HardenedKeyStart + 0,
	0,
}

// DeriveKey returns the key at EthereumPath/index under the BIP-32
// master key of seed. This is the key a wallet restored from the
// same seed uses for its index'th account.
func DeriveKey(seed []byte, index uint32) (*btcec.PrivateKey, error) {
	k, err := hdkeychain.NewMaster(seed, &chaincfg.MainNetParams)
	if err != nil {
		return nil, errors.Sub(bc.ErrMalformedArgument, err)
	}
	for _, n := range append(EthereumPath[:len(EthereumPath):len(EthereumPath)], index) {
		k, err = k.Derive(n)
		if err != nil {
			return nil, errors.Wrapf(err, "deriving child %d", n)
		}
	}
	return k.ECPrivKey()
}
