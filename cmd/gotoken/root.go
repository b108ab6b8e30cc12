package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	goToken "github.com/MrEthical07/goToken"
	"github.com/MrEthical07/goToken/internal/logging"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const envPrefix = "GOTOKEN"

// app carries per-invocation state so tests can build isolated command trees.
type app struct {
	v       *viper.Viper
	cfgFile string
	logger  *slog.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{v: viper.New()}

	cmd := &cobra.Command{
		Use:   "gotoken",
		Short: "Issue, verify and refresh signed JWTs",
		Long: `gotoken signs arbitrary JSON claims into compact JWTs with a fixed validity
window, verifies them against the same key and re-issues still-valid tokens
with a fresh window.

Every flag can also be set in a YAML config file or as a GOTOKEN_* environment
variable (GOTOKEN_SECRET, GOTOKEN_TTL, ...).`,
		SilenceUsage:  true,
		SilenceErrors: true,
		Version:       version,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.initConfig(cmd)
		},
	}

	pf := cmd.PersistentFlags()
	pf.StringVar(&a.cfgFile, "config", "", "config file (default ./gotoken.yaml or $HOME/.gotoken.yaml when present)")
	pf.String("secret", "", "signing secret")
	pf.String("secret-file", "", "file holding the signing secret or an Ed25519 PKCS#8 PEM key")
	pf.String("algorithm", string(goToken.AlgHS256), "signing algorithm: HS256, HS384, HS512 or EdDSA")
	pf.Duration("ttl", goToken.DefaultValidityDuration, "token validity duration")
	pf.String("log-level", "info", "log level: debug, info, warn, error")
	pf.String("log-format", "text", "log format: text or json")

	cmd.AddCommand(
		newIssueCmd(a),
		newVerifyCmd(a),
		newRefreshCmd(a),
		newServeCmd(a),
		newReportCmd(a),
		newVersionCmd(),
	)
	return cmd
}

// initConfig binds flags, environment and the optional config file into a.v.
// Precedence is flag, then environment, then file, then flag default.
func (a *app) initConfig(cmd *cobra.Command) error {
	if err := a.v.BindPFlags(cmd.Flags()); err != nil {
		return err
	}
	a.v.SetEnvPrefix(envPrefix)
	a.v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	a.v.AutomaticEnv()

	if a.cfgFile != "" {
		a.v.SetConfigFile(a.cfgFile)
	} else {
		a.v.SetConfigName("gotoken")
		a.v.SetConfigType("yaml")
		a.v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			a.v.AddConfigPath(home)
		}
	}
	if err := a.v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if a.cfgFile != "" || !errors.As(err, &notFound) {
			return fmt.Errorf("read config: %w", err)
		}
	}

	logger, err := logging.New(logging.Config{
		Level:  a.v.GetString("log-level"),
		Format: a.v.GetString("log-format"),
		Output: cmd.ErrOrStderr(),
	})
	if err != nil {
		return err
	}
	a.logger = logger
	return nil
}

// serviceBuilder returns a Builder populated from the resolved configuration.
func (a *app) serviceBuilder() (*goToken.Builder, error) {
	key, err := a.signingKey()
	if err != nil {
		return nil, err
	}
	alg, err := goToken.ParseAlgorithm(a.v.GetString("algorithm"))
	if err != nil {
		return nil, err
	}
	ttl := a.v.GetDuration("ttl")
	if ttl <= 0 {
		return nil, fmt.Errorf("ttl must be positive, got %s", a.v.GetString("ttl"))
	}

	return goToken.New().
		WithSigningKey(key).
		WithAlgorithm(alg).
		WithValidityDuration(ttl).
		WithLogger(a.logger), nil
}

func (a *app) newService() (*goToken.Service, error) {
	b, err := a.serviceBuilder()
	if err != nil {
		return nil, err
	}
	return b.Build()
}

func (a *app) signingKey() ([]byte, error) {
	secret := a.v.GetString("secret")
	path := a.v.GetString("secret-file")
	switch {
	case secret != "" && path != "":
		return nil, errors.New("--secret and --secret-file are mutually exclusive")
	case secret != "":
		return []byte(secret), nil
	case path != "":
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read secret file: %w", err)
		}
		raw = []byte(strings.TrimRight(string(raw), "\r\n"))
		if len(raw) == 0 {
			return nil, fmt.Errorf("secret file %s is empty", path)
		}
		return raw, nil
	default:
		return nil, fmt.Errorf("a signing secret is required (--secret, --secret-file or %s_SECRET)", envPrefix)
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the gotoken version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintln(cmd.OutOrStdout(), "gotoken", version)
		},
	}
}
