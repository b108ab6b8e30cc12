package jwt

// Failure classifies why Parse rejected a token. It is diagnostic only: callers
// exposing verification to untrusted parties should collapse it into a single error.
type Failure uint8

const (
	FailureNone Failure = iota
	// FailureMalformed covers wrong segment count, bad base64url and bad JSON.
	FailureMalformed
	// FailureSignature means the signature did not verify under the configured key.
	FailureSignature
	// FailureAlgorithm means the header named an algorithm other than the configured one.
	FailureAlgorithm
	// FailureExpired means now was at or after exp.
	FailureExpired
	// FailureClaims means exp was missing or not a number.
	FailureClaims
)

func (f Failure) String() string {
	switch f {
	case FailureNone:
		return "none"
	case FailureMalformed:
		return "malformed"
	case FailureSignature:
		return "signature"
	case FailureAlgorithm:
		return "algorithm"
	case FailureExpired:
		return "expired"
	case FailureClaims:
		return "claims"
	default:
		return "unknown"
	}
}

// ParseError is returned by Manager.Parse.
type ParseError struct {
	Failure Failure
	Err     error
}

func (e *ParseError) Error() string {
	if e.Err == nil {
		return "token rejected: " + e.Failure.String()
	}
	return "token rejected (" + e.Failure.String() + "): " + e.Err.Error()
}

func (e *ParseError) Unwrap() error {
	return e.Err
}
