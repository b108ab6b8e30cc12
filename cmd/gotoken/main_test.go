package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	goToken "github.com/MrEthical07/goToken"
)

// executeCommand runs a fresh command tree with args and returns stdout.
func executeCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()

	var out, errOut bytes.Buffer
	root := newRootCmd()
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetArgs(args)

	err := root.Execute()
	return out.String(), err
}

func mustExecute(t *testing.T, args ...string) string {
	t.Helper()
	out, err := executeCommand(t, args...)
	if err != nil {
		t.Fatalf("command %v failed: %v", args, err)
	}
	return strings.TrimSpace(out)
}

// isolate keeps config discovery and env vars from the host out of the test.
func isolate(t *testing.T) {
	t.Helper()
	dir := t.TempDir()
	t.Chdir(dir)
	t.Setenv("HOME", dir)
	for _, k := range []string{"GOTOKEN_SECRET", "GOTOKEN_SECRET_FILE", "GOTOKEN_ALGORITHM", "GOTOKEN_TTL"} {
		t.Setenv(k, "")
	}
}

func TestIssueVerifyRefreshRoundTrip(t *testing.T) {
	isolate(t)

	token := mustExecute(t, "issue", "--secret", "cli-secret", "--claim", "sub=alice", "--claims", `{"role":"admin","n":9007199254740993}`)
	if strings.Count(token, ".") != 2 {
		t.Fatalf("expected compact JWT, got %q", token)
	}

	out := mustExecute(t, "verify", "--secret", "cli-secret", token)
	var claims map[string]json.RawMessage
	if err := json.Unmarshal([]byte(out), &claims); err != nil {
		t.Fatalf("verify output is not JSON: %v\n%s", err, out)
	}
	if string(claims["sub"]) != `"alice"` || string(claims["n"]) != "9007199254740993" {
		t.Fatalf("unexpected claims %s", out)
	}

	refreshed := mustExecute(t, "refresh", "--secret", "cli-secret", token)
	if strings.Count(refreshed, ".") != 2 {
		t.Fatalf("expected compact JWT, got %q", refreshed)
	}
}

func TestVerifyInvalidTokenFails(t *testing.T) {
	isolate(t)

	token := mustExecute(t, "issue", "--secret", "one")
	_, err := executeCommand(t, "verify", "--secret", "two", token)
	if !errors.Is(err, goToken.ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestSecretFromEnvironment(t *testing.T) {
	isolate(t)
	t.Setenv("GOTOKEN_SECRET", "env-secret")
	t.Setenv("GOTOKEN_ALGORITHM", "hs512")

	token := mustExecute(t, "issue", "--claim", "sub=env")
	if _, err := executeCommand(t, "verify", "--secret", "env-secret", "--algorithm", "HS512", token); err != nil {
		t.Fatalf("verify with explicit flags failed: %v", err)
	}
	if _, err := executeCommand(t, "verify", "--algorithm", "HS256", token); err == nil {
		t.Fatal("expected algorithm mismatch to fail")
	}
}

func TestSecretFileAndConfigFile(t *testing.T) {
	isolate(t)
	dir := t.TempDir()

	secretPath := filepath.Join(dir, "secret")
	if err := os.WriteFile(secretPath, []byte("file-secret\n"), 0o600); err != nil {
		t.Fatalf("write secret: %v", err)
	}
	cfgPath := filepath.Join(dir, "gotoken.yaml")
	cfg := "secret-file: " + secretPath + "\nttl: 1h\n"
	if err := os.WriteFile(cfgPath, []byte(cfg), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	token := mustExecute(t, "--config", cfgPath, "issue")
	out := mustExecute(t, "verify", "--secret", "file-secret", token)

	var claims goToken.Claims
	dec := json.NewDecoder(strings.NewReader(out))
	dec.UseNumber()
	if err := dec.Decode(&claims); err != nil {
		t.Fatalf("decode: %v", err)
	}
	iat, _ := claims.IssuedAt()
	exp, _ := claims.ExpiresAt()
	if exp.Sub(iat).Hours() != 1 {
		t.Fatalf("expected 1h ttl from config file, got %s", exp.Sub(iat))
	}
}

func TestMissingSecret(t *testing.T) {
	isolate(t)
	if _, err := executeCommand(t, "issue"); err == nil || !strings.Contains(err.Error(), "secret") {
		t.Fatalf("expected missing secret error, got %v", err)
	}
	if _, err := executeCommand(t, "issue", "--secret", "a", "--secret-file", "b"); err == nil {
		t.Fatal("expected mutually exclusive error")
	}
}

func TestBadFlags(t *testing.T) {
	isolate(t)
	if _, err := executeCommand(t, "issue", "--secret", "a", "--algorithm", "RS256"); !errors.Is(err, goToken.ErrConfig) {
		t.Fatalf("expected ErrConfig, got %v", err)
	}
	if _, err := executeCommand(t, "issue", "--secret", "a", "--ttl", "500ms"); !errors.Is(err, goToken.ErrConfig) {
		t.Fatalf("expected ErrConfig for sub-second ttl, got %v", err)
	}
	if _, err := executeCommand(t, "issue", "--secret", "a", "--log-level", "chatty"); err == nil {
		t.Fatal("expected unknown log level error")
	}
	if _, err := executeCommand(t, "--config", "/does/not/exist.yaml", "issue", "--secret", "a"); err == nil {
		t.Fatal("expected missing config file error")
	}
}

func TestParseClaims(t *testing.T) {
	claims, err := parseClaims(`{"sub":"a","n":1}`, []string{"sub=b", "x=y=z"})
	if err != nil {
		t.Fatalf("parseClaims: %v", err)
	}
	if claims["sub"] != "b" || claims["x"] != "y=z" || claims["n"] != json.Number("1") {
		t.Fatalf("unexpected claims %v", claims)
	}

	for _, bad := range []struct {
		raw   string
		pairs []string
	}{
		{raw: "[1,2]"},
		{raw: `{"a":1} {"b":2}`},
		{pairs: []string{"novalue"}},
		{pairs: []string{"=v"}},
	} {
		if _, err := parseClaims(bad.raw, bad.pairs); err == nil {
			t.Fatalf("expected error for %+v", bad)
		}
	}
}

func TestVersionCommand(t *testing.T) {
	isolate(t)
	if out := mustExecute(t, "version"); out != "gotoken "+version {
		t.Fatalf("unexpected version output %q", out)
	}
}

func TestReportCommandWarnsOnShortKey(t *testing.T) {
	isolate(t)

	out := mustExecute(t, "report", "--secret", "short", "--algorithm", "HS384")
	if !strings.Contains(out, "algorithm:        HS384") || !strings.Contains(out, "minimum 48") {
		t.Fatalf("unexpected report %q", out)
	}
	if !strings.Contains(out, "warning: HS384 key is 5 bytes") {
		t.Fatalf("expected short key warning in %q", out)
	}

	out = mustExecute(t, "report", "--secret", strings.Repeat("k", 32))
	if strings.Contains(out, "warning") {
		t.Fatalf("unexpected warning in %q", out)
	}
}
