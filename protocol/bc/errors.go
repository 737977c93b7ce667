package bc

import "github.com/Yakuhito/hermes/errors"

// Errors shared by every package that builds or checks a spend.
//
// Construction failures (ErrMalformedArgument, ErrDecode) are local to
// the one spend being built. ErrUnrecognizedTemplate is normally not
// returned at all; parsers report "no match" with a nil result instead.
// The three mismatch errors are the verdicts an on-chain verifier
// would reach; native checks return them so a bad bundle is never sent.
var (
	ErrMalformedArgument    = errors.New("malformed argument")
	ErrUnrecognizedTemplate = errors.New("unrecognized template")
	ErrDecode               = errors.New("decode error")
	ErrSignatureMismatch    = errors.New("signature mismatch")
	ErrAddressMismatch      = errors.New("address mismatch")
	ErrMessageMismatch      = errors.New("message mismatch")
)
