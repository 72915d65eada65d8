package workflow

import "errors"

// ErrInvalidOtp is returned when the submitted code does not match the one
// issued for the signature.
var ErrInvalidOtp = errors.New("invalid OTP code")

// ErrOtpExpired is returned when the OTP's 10 minute validity window has
// lapsed. Expiry is lazy: the row is not rewritten, only rejected here.
var ErrOtpExpired = errors.New("OTP code expired")

// ErrNotAParty is returned when the acting user is not one of the contract's
// registered parties.
var ErrNotAParty = errors.New("user is not a party to this contract")

// ErrAmbiguousParty is returned when a dispute's opposing party cannot be
// resolved by elimination, e.g. a contract with neither tenant nor buyer.
var ErrAmbiguousParty = errors.New("cannot resolve the opposing party")

// ErrNotFullySigned is returned when finalization is invoked before the
// required signature count is reached.
var ErrNotFullySigned = errors.New("contract is not fully signed")
