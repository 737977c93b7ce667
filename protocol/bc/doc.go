/*
Package bc provides the fundamental ledger data structures shared by
the rest of hermes: fixed-width hashes, coins, coin spends and spend
bundles, plus the error values that describe why a spend could not be
built or would not be accepted.

The JSON forms match the Chia full node RPC so a SpendBundle can be
submitted with push_tx unchanged. Programs inside a CoinSpend are
carried as serialized bytes; package clvm builds and parses them.
*/
package bc
