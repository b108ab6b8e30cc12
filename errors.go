package goToken

import (
	"errors"
	"fmt"
)

var (
	// ErrConfig reports invalid construction input: missing signing key, unsupported
	// algorithm, unusable key material or out-of-range durations. It is also returned
	// by Issue when the reserved-claims policy rejects caller input.
	ErrConfig = errors.New("invalid token service configuration")
	// ErrReservedClaim is returned by Issue under ReservedClaimsReject when the caller
	// supplies iat or exp. errors.Is(ErrReservedClaim, ErrConfig) holds.
	ErrReservedClaim = fmt.Errorf("%w: reserved claim supplied by caller", ErrConfig)
	// ErrEncoding is returned by Issue when the claims cannot be serialized to JSON.
	ErrEncoding = errors.New("claims encoding failed")
	// ErrInvalidToken is returned by Verify and Refresh for every rejection cause:
	// bad signature, expiry, malformed structure, wrong algorithm. It is returned
	// bare so callers cannot tell the causes apart.
	ErrInvalidToken = errors.New("invalid or expired token")
	// ErrBuilderUsed is returned when Build is called twice on the same Builder.
	ErrBuilderUsed = errors.New("builder already used")
)
