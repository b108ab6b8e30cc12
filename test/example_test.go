package test

import (
	"errors"
	"fmt"
	"time"

	goToken "github.com/MrEthical07/goToken"
)

// ExampleNew demonstrates service construction through the builder.
func ExampleNew() {
	svc, err := goToken.New().
		WithSigningKey([]byte("0123456789abcdef0123456789abcdef")).
		WithAlgorithm(goToken.AlgHS256).
		WithValidityDuration(time.Hour).
		Build()
	if err != nil {
		fmt.Println(err)
		return
	}
	defer svc.Close()

	fmt.Println(svc.Algorithm(), svc.ValidityDuration())
	// Output: HS256 1h0m0s
}

// ExampleService_Verify shows an issue/verify round trip and the unified rejection error.
func ExampleService_Verify() {
	svc, _ := goToken.NewService([]byte("0123456789abcdef0123456789abcdef"))
	defer svc.Close()

	token, _ := svc.Issue(goToken.Claims{"sub": "user-1", "role": "admin"})

	claims, err := svc.Verify(token)
	if err != nil {
		fmt.Println(err)
		return
	}
	fmt.Println(claims.Subject(), claims["role"])

	_, err = svc.Verify(token + "x")
	fmt.Println(errors.Is(err, goToken.ErrInvalidToken))
	// Output:
	// user-1 admin
	// true
}

// ExampleService_Refresh shows that a refreshed token keeps custom claims and moves exp.
func ExampleService_Refresh() {
	now := time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)
	svc, _ := goToken.New().
		WithSigningKey([]byte("0123456789abcdef0123456789abcdef")).
		WithValidityDuration(time.Hour).
		WithClock(func() time.Time { return now }).
		Build()
	defer svc.Close()

	token, _ := svc.Issue(goToken.Claims{"sub": "user-1"})

	now = now.Add(30 * time.Minute)
	refreshed, _ := svc.Refresh(token)

	claims, _ := svc.Verify(refreshed)
	exp, _ := claims.ExpiresAt()
	fmt.Println(claims.Subject(), exp.UTC().Format(time.RFC3339))
	// Output: user-1 2030-01-01T01:30:00Z
}

// ExampleService_MetricsSnapshot shows how to read in-process counters.
func ExampleService_MetricsSnapshot() {
	svc, _ := goToken.NewService([]byte("0123456789abcdef0123456789abcdef"))
	defer svc.Close()

	_, _ = svc.Verify("not-a-token")
	snap := svc.MetricsSnapshot()
	fmt.Println(snap.Counters[goToken.MetricVerifyFailure])
	// Output: 1
}
