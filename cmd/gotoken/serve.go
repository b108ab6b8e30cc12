package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	goToken "github.com/MrEthical07/goToken"
	"github.com/MrEthical07/goToken/internal/rate"
	"github.com/MrEthical07/goToken/internal/server"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
)

func newServeCmd(a *app) *cobra.Command {
	defaults := rate.DefaultConfig()
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve issue, verify and refresh over HTTP",
		Long: `Serve the token API over HTTP.

Issuance is only enabled when --issuer-api-key is set. Refresh and issue are
rate limited per client IP when --redis-addr is set.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return a.serve(ctx)
		},
	}

	f := cmd.Flags()
	f.String("addr", ":8080", "listen address")
	f.String("issuer-api-key", "", "API key required by POST /v1/tokens; empty disables issuance")
	f.String("redis-addr", "", "redis address for rate limiting; empty disables limiting")
	f.Int("refresh-limit", defaults.RefreshLimit, "refresh calls per client per window (0 disables)")
	f.Duration("refresh-window", defaults.RefreshWindow, "refresh rate limit window")
	f.Int("issue-limit", defaults.IssueLimit, "issue calls per client per window (0 disables)")
	f.Duration("issue-window", defaults.IssueWindow, "issue rate limit window")
	f.Bool("audit", true, "log token audit events")
	f.Bool("trust-proxy-headers", false, "key rate limits on X-Forwarded-For/X-Real-IP (only behind a trusted proxy)")
	return cmd
}

func (a *app) serve(ctx context.Context) error {
	b, err := a.serviceBuilder()
	if err != nil {
		return err
	}
	b.WithLatencyHistograms(true)
	if a.v.GetBool("audit") {
		b.WithAuditSink(goToken.NewSlogSink(a.logger))
	}
	svc, err := b.Build()
	if err != nil {
		return err
	}
	defer svc.Close()
	for _, w := range svc.SecurityReport().Warnings {
		a.logger.Warn("security check", slog.String("finding", w))
	}

	var limiter *rate.Limiter
	if addr := a.v.GetString("redis-addr"); addr != "" {
		limits := rate.Config{
			IssueLimit:    a.v.GetInt("issue-limit"),
			IssueWindow:   a.v.GetDuration("issue-window"),
			RefreshLimit:  a.v.GetInt("refresh-limit"),
			RefreshWindow: a.v.GetDuration("refresh-window"),
		}
		if err := limits.Validate(); err != nil {
			return err
		}
		rdb := redis.NewClient(&redis.Options{Addr: addr})
		defer func() { _ = rdb.Close() }()

		limiter = rate.New(rdb, limits)
		pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
		err := limiter.Ping(pingCtx)
		cancel()
		if err != nil {
			return fmt.Errorf("redis %s: %w", addr, err)
		}
	} else {
		a.logger.Warn("rate limiting disabled: no redis address configured")
	}

	apiKey := a.v.GetString("issuer-api-key")
	if apiKey == "" {
		a.logger.Info("issuance over HTTP disabled: no issuer API key configured")
	}

	a.logger.Info("starting gotoken server",
		slog.String("algorithm", string(svc.Algorithm())),
		slog.Duration("ttl", svc.ValidityDuration()),
	)
	return server.New(a.v.GetString("addr"), server.Options{
		Service:           svc,
		Limiter:           limiter,
		IssuerAPIKey:      apiKey,
		Logger:            a.logger,
		TrustProxyHeaders: a.v.GetBool("trust-proxy-headers"),
	}).Run(ctx)
}
