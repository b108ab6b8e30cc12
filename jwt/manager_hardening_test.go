package jwt

import (
	"crypto/ed25519"
	"crypto/rand"
	"crypto/x509"
	"encoding/base64"
	"encoding/json"
	"encoding/pem"
	"errors"
	"strconv"
	"strings"
	"testing"
	"time"

	gjwt "github.com/golang-jwt/jwt/v5"
)

var testSecret = []byte("secret-secret-secret-secret-0123")

func newEdKeys(t *testing.T) (ed25519.PublicKey, ed25519.PrivateKey) {
	t.Helper()
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		t.Fatalf("generate ed25519 key: %v", err)
	}
	return pub, priv
}

func newHSManager(t *testing.T) *Manager {
	t.Helper()
	m, err := NewManager(Config{Algorithm: AlgHS256, Key: testSecret})
	if err != nil {
		t.Fatalf("new manager: %v", err)
	}
	return m
}

func failureOf(t *testing.T, err error) Failure {
	t.Helper()
	var pe *ParseError
	if !errors.As(err, &pe) {
		t.Fatalf("expected *ParseError, got %T (%v)", err, err)
	}
	return pe.Failure
}

func TestNewManagerRejectsBadConfig(t *testing.T) {
	if _, err := NewManager(Config{Algorithm: AlgHS256}); !errors.Is(err, ErrEmptyKey) {
		t.Fatalf("expected ErrEmptyKey, got %v", err)
	}
	if _, err := NewManager(Config{Algorithm: "none", Key: testSecret}); !errors.Is(err, ErrUnsupportedAlgorithm) {
		t.Fatalf("expected ErrUnsupportedAlgorithm, got %v", err)
	}
	if _, err := NewManager(Config{Algorithm: AlgEdDSA, Key: []byte("short")}); !errors.Is(err, ErrInvalidKey) {
		t.Fatalf("expected ErrInvalidKey, got %v", err)
	}

	_, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}
	mismatched := make([]byte, ed25519.PrivateKeySize)
	copy(mismatched, priv.Seed())
	if _, err := rand.Read(mismatched[ed25519.SeedSize:]); err != nil {
		t.Fatalf("rand: %v", err)
	}
	if _, err := NewManager(Config{Algorithm: AlgEdDSA, Key: mismatched}); !errors.Is(err, ErrInvalidKey) {
		t.Fatalf("expected ErrInvalidKey for mismatched public half, got %v", err)
	}
	if _, err := NewManager(Config{Algorithm: AlgEdDSA, Key: priv}); err != nil {
		t.Fatalf("valid raw key rejected: %v", err)
	}
}

func TestParseAlgorithm(t *testing.T) {
	cases := map[string]Algorithm{
		"HS256":   AlgHS256,
		"hs384":   AlgHS384,
		" HS512 ": AlgHS512,
		"eddsa":   AlgEdDSA,
		"ed25519": AlgEdDSA,
	}
	for in, want := range cases {
		got, err := ParseAlgorithm(in)
		if err != nil {
			t.Fatalf("ParseAlgorithm(%q): %v", in, err)
		}
		if got != want {
			t.Fatalf("ParseAlgorithm(%q) = %q, want %q", in, got, want)
		}
	}
	for _, bad := range []string{"", "none", "RS256", "HS1"} {
		if _, err := ParseAlgorithm(bad); !errors.Is(err, ErrUnsupportedAlgorithm) {
			t.Fatalf("ParseAlgorithm(%q) expected ErrUnsupportedAlgorithm, got %v", bad, err)
		}
	}
}

func TestSignProducesStandardHeader(t *testing.T) {
	m := newHSManager(t)
	token, err := m.Sign(map[string]interface{}{"sub": "u1", "exp": time.Now().Add(time.Minute).Unix()})
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		t.Fatalf("expected 3 segments, got %d", len(parts))
	}
	header, err := base64.RawURLEncoding.DecodeString(parts[0])
	if err != nil {
		t.Fatalf("decode header: %v", err)
	}
	if string(header) != `{"alg":"HS256","typ":"JWT"}` {
		t.Fatalf("unexpected header %s", header)
	}
}

func TestSignRejectsUnserializableClaims(t *testing.T) {
	m := newHSManager(t)
	_, err := m.Sign(map[string]interface{}{"ch": make(chan int)})
	if !errors.Is(err, ErrEncode) {
		t.Fatalf("expected ErrEncode, got %v", err)
	}
}

func TestParseAcceptsThirdPartyToken(t *testing.T) {
	m := newHSManager(t)

	exp := time.Now().Add(time.Minute).Unix()
	tok := gjwt.NewWithClaims(gjwt.SigningMethodHS256, gjwt.MapClaims{"sub": "u1", "exp": exp})
	signed, err := tok.SignedString(testSecret)
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}

	claims, err := m.Parse(signed, time.Now())
	if err != nil {
		t.Fatalf("expected third-party token to parse: %v", err)
	}
	if claims["sub"] != "u1" {
		t.Fatalf("unexpected sub %v", claims["sub"])
	}
	if n, ok := claims["exp"].(json.Number); !ok || n.String() != strconv.FormatInt(exp, 10) {
		t.Fatalf("expected exp as json.Number %d, got %#v", exp, claims["exp"])
	}
}

func TestParseRejectsWrongAlgorithm(t *testing.T) {
	_, priv := newEdKeys(t)
	m, err := NewManager(Config{Algorithm: AlgEdDSA, Key: priv})
	if err != nil {
		t.Fatalf("new manager: %v", err)
	}

	tok := gjwt.NewWithClaims(gjwt.SigningMethodHS256, gjwt.MapClaims{"exp": time.Now().Add(time.Minute).Unix()})
	token, err := tok.SignedString(testSecret)
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}

	_, err = m.Parse(token, time.Now())
	if got := failureOf(t, err); got != FailureAlgorithm {
		t.Fatalf("expected FailureAlgorithm, got %s", got)
	}
}

func TestParseRejectsNoneAlgorithm(t *testing.T) {
	m := newHSManager(t)

	tok := gjwt.NewWithClaims(gjwt.SigningMethodNone, gjwt.MapClaims{"exp": time.Now().Add(time.Minute).Unix()})
	token, err := tok.SignedString(gjwt.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatalf("sign none token: %v", err)
	}

	if _, err := m.Parse(token, time.Now()); err == nil {
		t.Fatal("expected alg=none token to be rejected")
	}
}

func TestParseExpiryIsExclusive(t *testing.T) {
	m := newHSManager(t)
	exp := time.Unix(1_700_000_100, 0)
	token, err := m.Sign(map[string]interface{}{"exp": exp.Unix()})
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	if _, err := m.Parse(token, exp.Add(-time.Nanosecond)); err != nil {
		t.Fatalf("expected token valid just before exp: %v", err)
	}
	_, err = m.Parse(token, exp)
	if got := failureOf(t, err); got != FailureExpired {
		t.Fatalf("expected FailureExpired at exp, got %s", got)
	}
}

func TestParseIgnoresNotBeforeAndAudience(t *testing.T) {
	m := newHSManager(t)
	now := time.Now()
	token, err := m.Sign(map[string]interface{}{
		"exp": now.Add(time.Minute).Unix(),
		"nbf": now.Add(time.Hour).Unix(),
		"aud": "someone-else",
	})
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if _, err := m.Parse(token, now); err != nil {
		t.Fatalf("expected nbf/aud to be opaque data: %v", err)
	}
}

func TestParseRequiresExpiry(t *testing.T) {
	m := newHSManager(t)

	token, err := m.Sign(map[string]interface{}{"sub": "u1"})
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	_, err = m.Parse(token, time.Now())
	if got := failureOf(t, err); got != FailureClaims {
		t.Fatalf("expected FailureClaims, got %s", got)
	}

	token, err = m.Sign(map[string]interface{}{"exp": "tomorrow"})
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	_, err = m.Parse(token, time.Now())
	if got := failureOf(t, err); got != FailureClaims {
		t.Fatalf("expected FailureClaims for string exp, got %s", got)
	}
}

func TestParseClassifiesMalformedAndSignature(t *testing.T) {
	m := newHSManager(t)

	_, err := m.Parse("not-a-token", time.Now())
	if got := failureOf(t, err); got != FailureMalformed {
		t.Fatalf("expected FailureMalformed, got %s", got)
	}

	other, err := NewManager(Config{Algorithm: AlgHS256, Key: []byte("another-secret-another-secret-00")})
	if err != nil {
		t.Fatalf("new manager: %v", err)
	}
	token, err := other.Sign(map[string]interface{}{"exp": time.Now().Add(time.Minute).Unix()})
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	_, err = m.Parse(token, time.Now())
	if got := failureOf(t, err); got != FailureSignature {
		t.Fatalf("expected FailureSignature, got %s", got)
	}
}

func TestEdDSARoundTripWithPEMKey(t *testing.T) {
	_, priv := newEdKeys(t)
	der, err := marshalPKCS8(priv)
	if err != nil {
		t.Fatalf("marshal pkcs8: %v", err)
	}

	m, err := NewManager(Config{Algorithm: AlgEdDSA, Key: der})
	if err != nil {
		t.Fatalf("new manager from pem: %v", err)
	}
	if m.Algorithm() != AlgEdDSA {
		t.Fatalf("unexpected algorithm %s", m.Algorithm())
	}

	token, err := m.Sign(map[string]interface{}{"sub": "u1", "exp": time.Now().Add(time.Minute).Unix()})
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if _, err := m.Parse(token, time.Now()); err != nil {
		t.Fatalf("parse: %v", err)
	}
}

func TestManagerKeyIsCopied(t *testing.T) {
	key := []byte("mutable-secret-mutable-secret-00")
	m, err := NewManager(Config{Algorithm: AlgHS256, Key: key})
	if err != nil {
		t.Fatalf("new manager: %v", err)
	}
	token, err := m.Sign(map[string]interface{}{"exp": time.Now().Add(time.Minute).Unix()})
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	for i := range key {
		key[i] = 0
	}
	if _, err := m.Parse(token, time.Now()); err != nil {
		t.Fatalf("expected caller mutation of key to have no effect: %v", err)
	}
}

func marshalPKCS8(priv ed25519.PrivateKey) ([]byte, error) {
	der, err := x509.MarshalPKCS8PrivateKey(priv)
	if err != nil {
		return nil, err
	}
	return pem.EncodeToMemory(&pem.Block{Type: "PRIVATE KEY", Bytes: der}), nil
}
