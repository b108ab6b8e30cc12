package goToken

import (
	"encoding/json"
	"math"
	"time"
)

const (
	// ClaimIssuedAt is the reserved issued-at claim, seconds since the Unix epoch.
	ClaimIssuedAt = "iat"
	// ClaimExpiresAt is the reserved expiry claim, seconds since the Unix epoch.
	ClaimExpiresAt = "exp"
	// ClaimSubject is the conventional subject claim. It has no special meaning to the
	// service beyond being copied into audit events.
	ClaimSubject = "sub"
)

// Claims is the application-defined key-value payload of a token.
//
// Values must be JSON-serializable. Claims returned by Verify decode numbers as
// json.Number, so integers of any magnitude survive a Refresh unchanged. Keys are
// encoded in sorted order, which makes the payload encoding deterministic.
type Claims map[string]any

// Clone returns a shallow copy of c. Clone of a nil Claims is an empty, non-nil Claims.
func (c Claims) Clone() Claims {
	out := make(Claims, len(c)+2)
	for k, v := range c {
		out[k] = v
	}
	return out
}

// IssuedAt returns the iat claim as a time.
func (c Claims) IssuedAt() (time.Time, bool) {
	return c.timestamp(ClaimIssuedAt)
}

// ExpiresAt returns the exp claim as a time.
func (c Claims) ExpiresAt() (time.Time, bool) {
	return c.timestamp(ClaimExpiresAt)
}

// Subject returns the sub claim when it is a string.
func (c Claims) Subject() string {
	sub, _ := c[ClaimSubject].(string)
	return sub
}

// withoutReserved returns a copy of c with iat and exp removed.
func (c Claims) withoutReserved() Claims {
	out := c.Clone()
	delete(out, ClaimIssuedAt)
	delete(out, ClaimExpiresAt)
	return out
}

func (c Claims) hasReserved() (string, bool) {
	if _, ok := c[ClaimIssuedAt]; ok {
		return ClaimIssuedAt, true
	}
	if _, ok := c[ClaimExpiresAt]; ok {
		return ClaimExpiresAt, true
	}
	return "", false
}

func (c Claims) timestamp(key string) (time.Time, bool) {
	var secs float64
	switch v := c[key].(type) {
	case json.Number:
		if i, err := v.Int64(); err == nil {
			return time.Unix(i, 0), true
		}
		f, err := v.Float64()
		if err != nil {
			return time.Time{}, false
		}
		secs = f
	case int64:
		return time.Unix(v, 0), true
	case int:
		return time.Unix(int64(v), 0), true
	case float64:
		secs = v
	default:
		return time.Time{}, false
	}
	if math.IsNaN(secs) || math.IsInf(secs, 0) {
		return time.Time{}, false
	}
	whole, frac := math.Modf(secs)
	return time.Unix(int64(whole), int64(frac*1e9)), true
}
