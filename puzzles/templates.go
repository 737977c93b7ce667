package puzzles

import "github.com/Yakuhito/hermes/protocol/bc"

// EIP712MessageV1 authorizes a spend with a signature under the
// unversioned "Chia Coin Spend" domain by a compressed key.
//
//	(mod (PREFIX_AND_DOMAIN TYPE_HASH PUBKEY
//	      my_id signature delegated_puzzle delegated_solution)
//	  (f (c (c (list ASSERT_MY_COIN_ID my_id) (a delegated_puzzle delegated_solution))
//	        (secp256k1_verify PUBKEY
//	          (keccak256 PREFIX_AND_DOMAIN
//	            (keccak256 TYPE_HASH my_id (sha256tree delegated_puzzle)))
//	          signature))))
var EIP712MessageV1 = &Template{
	Name:    "eip712_message_v1",
	Variant: 1,
	Hex:     "ff02ffff01ff05ffff04ffff04ffff04ff04ffff04ff2fff808080ffff02ff81bfff82017f8080ffff8413d61f00ff17" +
		"ffff3eff05ffff3eff0bff2fffff02ff06ffff04ff02ffff04ff81bfff808080808080ff5f808080ffff04ffff01ff46" +
		"ff02ffff03ffff07ff0580ffff01ff0bffff0102ffff02ff06ffff04ff02ffff04ff09ff80808080ffff02ff06ffff04" +
		"ff02ffff04ff0dff8080808080ffff01ff0bffff0101ff058080ff0180ff018080",
	Hash:    mustHash("fa2196e8e3a35e5c4ca240a3f23d985e59782d9cc603aad12b225533f2973009"),
}

// EIP712MessageV2 signs under the versioned domain and carries the
// hash-to-sign in its solution. The embedded hash is compared with the
// recomputation before the signature is checked.
//
//	(mod (PREFIX_AND_DOMAIN TYPE_HASH PUBKEY
//	      my_id signed_hash signature delegated_puzzle delegated_solution)
//	  (if (= signed_hash (keccak256 PREFIX_AND_DOMAIN
//	                       (keccak256 TYPE_HASH my_id (sha256tree delegated_puzzle))))
//	    (f (c (c (list ASSERT_MY_COIN_ID my_id) (a delegated_puzzle delegated_solution))
//	          (secp256k1_verify PUBKEY signed_hash signature)))
//	    (x)))
var EIP712MessageV2 = &Template{
	Name:    "eip712_message_v2",
	Variant: 2,
	Hex:     "ff02ffff01ff02ffff03ffff09ff5fffff3eff05ffff3eff0bff2fffff02ff06ffff04ff02ffff04ff82017fff808080" +
		"80808080ffff01ff05ffff04ffff04ffff04ff04ffff04ff2fff808080ffff02ff82017fff8202ff8080ffff8413d61f" +
		"00ff17ff5fff81bf808080ffff01ff088080ff0180ffff04ffff01ff46ff02ffff03ffff07ff0580ffff01ff0bffff01" +
		"02ffff02ff06ffff04ff02ffff04ff09ff80808080ffff02ff06ffff04ff02ffff04ff0dff8080808080ffff01ff0bff" +
		"ff0101ff058080ff0180ff018080",
	Hash:    mustHash("f982ac8fdb3ae18afd9233045678a837a5c091ae74c720081005c5220276b286"),
}

// EIP712MessageV3 signs under the versioned domain and commits to
// an Ethereum address instead of a key. The solution carries the
// uncompressed key (without its format byte); the puzzle checks it
// hashes to ADDRESS and compresses it before verifying.
//
//	(mod (PREFIX_AND_DOMAIN TYPE_HASH ADDRESS
//	      my_id pubkey signature delegated_puzzle delegated_solution)
//	  (if (= ADDRESS (substr (keccak256 pubkey) 12 32))
//	    (f (c (c (list ASSERT_MY_COIN_ID my_id) (a delegated_puzzle delegated_solution))
//	          (secp256k1_verify
//	            (concat (if (logand (substr pubkey 63 64) 1) 3 2) (substr pubkey 0 32))
//	            (keccak256 PREFIX_AND_DOMAIN
//	              (keccak256 TYPE_HASH my_id (sha256tree delegated_puzzle)))
//	            signature)))
//	    (x)))
var EIP712MessageV3 = &Template{
	Name:    "eip712_message_v3",
	Variant: 3,
	Hex:     "ff02ffff01ff02ffff03ffff09ff17ffff0cffff3eff5f80ffff010cffff01208080ffff01ff05ffff04ffff04ffff04" +
		"ff04ffff04ff2fff808080ffff02ff82017fff8202ff8080ffff8413d61f00ffff0effff03ffff18ffff0cff5fffff01" +
		"3fffff014080ffff010180ffff0103ffff010280ffff0cff5fffff0180ffff01208080ffff3eff05ffff3eff0bff2fff" +
		"ff02ff06ffff04ff02ffff04ff82017fff808080808080ff81bf808080ffff01ff088080ff0180ffff04ffff01ff46ff" +
		"02ffff03ffff07ff0580ffff01ff0bffff0102ffff02ff06ffff04ff02ffff04ff09ff80808080ffff02ff06ffff04ff" +
		"02ffff04ff0dff8080808080ffff01ff0bffff0101ff058080ff0180ff018080",
	Hash:    mustHash("d61a68b8e118bcf7a820a528072ff0e74538ca4a084ebeb3a7d0b92c3e9a953a"),
}

// ControllerMember defers to a controller coin: the spend is valid
// only if a coin with puzzle hash CONTROLLER_PUZZLE_HASH sends this
// coin the tree hash of the delegated puzzle in the same bundle.
//
//	(mod (CONTROLLER_PUZZLE_HASH delegated_puzzle delegated_solution)
//	  (c (list RECEIVE_MESSAGE 0x17 (sha256tree delegated_puzzle) CONTROLLER_PUZZLE_HASH)
//	     (a delegated_puzzle delegated_solution)))
var ControllerMember = &Template{
	Name: "controller_member",
	Hex:  "ff02ffff01ff04ffff04ff04ffff04ffff0117ffff04ffff02ff06ffff04ff02ffff04ff0bff80808080ffff04ff05ff" +
		"8080808080ffff02ff0bff178080ffff04ffff01ff43ff02ffff03ffff07ff0580ffff01ff0bffff0102ffff02ff06ff" +
		"ff04ff02ffff04ff09ff80808080ffff02ff06ffff04ff02ffff04ff0dff8080808080ffff01ff0bffff0101ff058080" +
		"ff0180ff018080",
	Hash: mustHash("d5415713619e318bfa7820e06e2b163beef32d82294a5a7fcf9c3c69b0949c88"),
}

// EIP712MessageLegacy is the first published message puzzle. It
// checks an address and a signature in one (all ...) but builds the
// verifying key by concatenating curried and solution values, so it
// is recognized and reported but never constructed or solved.
var EIP712MessageLegacy = &Template{
	Name:       "eip712_message_legacy",
	Hex:        "ff02ffff01ff02ffff03ffff22ffff09ff17ffff0cffff3eff81bf80ffff010cffff01208080ffff8413d61f00ffff0e" +
		"ff17ff5f80ffff3eff05ffff3eff0bff2fffff02ff06ffff04ff02ffff04ff8202ffff808080808080ff82017f8080ff" +
		"ff01ff04ffff04ff04ffff04ff2fff808080ffff02ff8202ffff8205ff8080ffff01ff08ffff01846e6f70658080ff01" +
		"80ffff04ffff01ff46ff02ffff03ffff07ff0580ffff01ff0bffff0102ffff02ff06ffff04ff02ffff04ff09ff808080" +
		"80ffff02ff06ffff04ff02ffff04ff0dff8080808080ffff01ff0bffff0101ff058080ff0180ff018080",
	Hash:       mustHash("76b33566c2f473e69e6eecbacc9138e1d10f46c1607545aeab8f9a30b6c394e2"),
	Superseded: true,
}

var all = []*Template{
	EIP712MessageV1,
	EIP712MessageV2,
	EIP712MessageV3,
	ControllerMember,
	EIP712MessageLegacy,
}

func mustHash(s string) bc.Bytes32 {
	h, err := bc.ParseBytes32(s)
	if err != nil {
		panic(err)
	}
	return h
}
