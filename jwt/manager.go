package jwt

import (
	"bytes"
	"crypto/ed25519"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Algorithm identifies a compact-JWS signing algorithm by its "alg" header value.
//
// Algorithm values are validated once at construction and treated as immutable afterwards.
type Algorithm string

const (
	// AlgHS256 is HMAC-SHA256 with a shared secret. It is the default algorithm.
	AlgHS256 Algorithm = "HS256"
	// AlgHS384 is HMAC-SHA384 with a shared secret.
	AlgHS384 Algorithm = "HS384"
	// AlgHS512 is HMAC-SHA512 with a shared secret.
	AlgHS512 Algorithm = "HS512"
	// AlgEdDSA is Ed25519. The configured key is the private key; the verify key is derived from it.
	AlgEdDSA Algorithm = "EdDSA"
)

// SupportedAlgorithms lists the allow-list accepted by [NewManager], in preference order.
var SupportedAlgorithms = []Algorithm{AlgHS256, AlgHS384, AlgHS512, AlgEdDSA}

var (
	// ErrUnsupportedAlgorithm is returned when an algorithm is outside the allow-list.
	ErrUnsupportedAlgorithm = errors.New("unsupported signing algorithm")
	// ErrEmptyKey is returned when no signing key is configured.
	ErrEmptyKey = errors.New("signing key is empty")
	// ErrInvalidKey is returned when the key cannot be used with the configured algorithm.
	ErrInvalidKey = errors.New("invalid signing key")
	// ErrEncode is returned by Sign when the claims cannot be serialized.
	ErrEncode = errors.New("claims encoding failed")
	// ErrSign is returned by Sign when the signature primitive fails.
	ErrSign = errors.New("token signing failed")

	errAlgorithmMismatch = errors.New("unexpected signing algorithm")
	errMissingExpiry     = errors.New("missing exp claim")
)

// ParseAlgorithm maps a user-facing algorithm name onto the allow-list.
// Matching is case-insensitive; "ed25519" is accepted as an alias of EdDSA.
func ParseAlgorithm(name string) (Algorithm, error) {
	name = strings.TrimSpace(name)
	if strings.EqualFold(name, "ed25519") {
		return AlgEdDSA, nil
	}
	for _, alg := range SupportedAlgorithms {
		if strings.EqualFold(name, string(alg)) {
			return alg, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupportedAlgorithm, name)
}

// Config holds the signing primitive inputs.
type Config struct {
	Algorithm Algorithm
	Key       []byte
}

// Manager signs and verifies compact JWS tokens with a single key.
//
// Manager holds no mutable state after NewManager and is safe for concurrent use.
type Manager struct {
	method    jwt.SigningMethod
	signKey   interface{}
	verifyKey interface{}
}

// NewManager validates cfg and resolves the signing and verification keys.
//
// NewManager returns ErrEmptyKey, ErrUnsupportedAlgorithm or ErrInvalidKey (wrapped with detail)
// when cfg cannot produce a working signer.
func NewManager(cfg Config) (*Manager, error) {
	if len(cfg.Key) == 0 {
		return nil, ErrEmptyKey
	}

	key := make([]byte, len(cfg.Key))
	copy(key, cfg.Key)

	switch cfg.Algorithm {
	case AlgHS256:
		return &Manager{method: jwt.SigningMethodHS256, signKey: key, verifyKey: key}, nil
	case AlgHS384:
		return &Manager{method: jwt.SigningMethodHS384, signKey: key, verifyKey: key}, nil
	case AlgHS512:
		return &Manager{method: jwt.SigningMethodHS512, signKey: key, verifyKey: key}, nil
	case AlgEdDSA:
		priv, err := parseEdPrivateKey(key)
		if err != nil {
			return nil, err
		}
		pub, ok := priv.Public().(ed25519.PublicKey)
		if !ok {
			return nil, fmt.Errorf("%w: ed25519 public key derivation failed", ErrInvalidKey)
		}
		return &Manager{method: jwt.SigningMethodEdDSA, signKey: priv, verifyKey: pub}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedAlgorithm, cfg.Algorithm)
	}
}

// Algorithm returns the "alg" header value this manager signs with and accepts.
func (m *Manager) Algorithm() Algorithm {
	return Algorithm(m.method.Alg())
}

// Sign encodes claims as the payload of a compact JWS with header {"alg":...,"typ":"JWT"}
// and signs header and payload with the configured key.
//
// Sign returns ErrEncode when the claims are not JSON-serializable and ErrSign when the
// signature primitive rejects the key.
func (m *Manager) Sign(claims map[string]interface{}) (string, error) {
	token := jwt.NewWithClaims(m.method, jwt.MapClaims(claims))

	signing, err := token.SigningString()
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrEncode, err)
	}
	sig, err := token.Method.Sign(signing, m.signKey)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrSign, err)
	}

	return signing + "." + token.EncodeSegment(sig), nil
}

// Parse verifies tokenStr and returns its claims when the signature matches under the
// configured algorithm and now is strictly before the exp claim.
//
// Numeric claims are decoded as json.Number. Registered claims other than exp (nbf, iat,
// aud, iss) are returned as data and never affect validity. Every failure is a *ParseError
// carrying the classified cause.
func (m *Manager) Parse(tokenStr string, now time.Time) (map[string]interface{}, error) {
	parser := jwt.NewParser(
		jwt.WithJSONNumber(),
		jwt.WithStrictDecoding(),
		jwt.WithoutClaimsValidation(),
	)

	claims := jwt.MapClaims{}
	_, err := parser.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
		if t.Method == nil || t.Method.Alg() != m.method.Alg() {
			return nil, errAlgorithmMismatch
		}
		return m.verifyKey, nil
	})
	if err != nil {
		return nil, &ParseError{Failure: classify(err), Err: err}
	}

	exp, err := claims.GetExpirationTime()
	if err != nil {
		return nil, &ParseError{Failure: FailureClaims, Err: err}
	}
	if exp == nil {
		return nil, &ParseError{Failure: FailureClaims, Err: errMissingExpiry}
	}
	if !now.Before(exp.Time) {
		return nil, &ParseError{Failure: FailureExpired, Err: jwt.ErrTokenExpired}
	}

	return map[string]interface{}(claims), nil
}

func classify(err error) Failure {
	switch {
	case errors.Is(err, errAlgorithmMismatch), errors.Is(err, jwt.ErrTokenUnverifiable):
		return FailureAlgorithm
	case errors.Is(err, jwt.ErrTokenMalformed):
		return FailureMalformed
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		return FailureSignature
	default:
		return FailureMalformed
	}
}

func parseEdPrivateKey(key []byte) (ed25519.PrivateKey, error) {
	if len(key) == ed25519.PrivateKeySize {
		// The public half drives verification, so it must match the seed.
		if !bytes.Equal(ed25519.NewKeyFromSeed(key[:ed25519.SeedSize]), key) {
			return nil, fmt.Errorf("%w: ed25519 public half does not match seed", ErrInvalidKey)
		}
		return ed25519.PrivateKey(key), nil
	}
	parsed, err := jwt.ParseEdPrivateKeyFromPEM(key)
	if err != nil {
		return nil, fmt.Errorf("%w: ed25519 private key must be %d raw bytes or PKCS#8 PEM", ErrInvalidKey, ed25519.PrivateKeySize)
	}
	edKey, ok := parsed.(ed25519.PrivateKey)
	if !ok {
		return nil, fmt.Errorf("%w: invalid ed25519 private key type", ErrInvalidKey)
	}
	return edKey, nil
}
