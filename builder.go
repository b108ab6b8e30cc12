package goToken

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/MrEthical07/goToken/internal/audit"
	"github.com/MrEthical07/goToken/jwt"
)

// Builder assembles a Service. A Builder is single-use: the second Build returns
// ErrBuilderUsed.
type Builder struct {
	config    Config
	logger    *slog.Logger
	auditSink AuditSink
	clock     func() time.Time

	built bool
}

// New returns a Builder seeded with DefaultConfig.
func New() *Builder {
	return &Builder{
		config: DefaultConfig(),
	}
}

// WithConfig replaces the whole configuration. Zero-valued fields take defaults at Build.
func (b *Builder) WithConfig(cfg Config) *Builder {
	b.config = cloneConfig(cfg)
	return b
}

// WithSigningKey sets the signing secret (HMAC) or Ed25519 private key. The slice is copied.
func (b *Builder) WithSigningKey(key []byte) *Builder {
	b.config.SigningKey = cloneBytes(key)
	return b
}

// WithAlgorithm selects the signing algorithm.
func (b *Builder) WithAlgorithm(alg Algorithm) *Builder {
	b.config.Algorithm = alg
	return b
}

// WithValidityDuration sets the lifetime of issued and refreshed tokens. Build rejects
// durations that are not a whole number of seconds.
func (b *Builder) WithValidityDuration(d time.Duration) *Builder {
	b.config.ValidityDuration = d
	return b
}

// WithReservedClaimsPolicy selects whether Issue overwrites or rejects caller iat/exp.
func (b *Builder) WithReservedClaimsPolicy(p ReservedClaimsPolicy) *Builder {
	b.config.ReservedClaims = p
	return b
}

// WithLogger sets the logger used for rejection diagnostics. Defaults to a discard logger.
func (b *Builder) WithLogger(logger *slog.Logger) *Builder {
	b.logger = logger
	return b
}

// WithAuditSink enables audit delivery to sink.
func (b *Builder) WithAuditSink(sink AuditSink) *Builder {
	b.auditSink = sink
	b.config.Audit.Enabled = sink != nil
	return b
}

// WithMetricsEnabled toggles the in-process counters.
func (b *Builder) WithMetricsEnabled(enabled bool) *Builder {
	b.config.Metrics.Enabled = enabled
	return b
}

// WithLatencyHistograms toggles the verify latency histogram.
func (b *Builder) WithLatencyHistograms(enabled bool) *Builder {
	b.config.Metrics.EnableLatencyHistograms = enabled
	return b
}

// WithClock replaces time.Now as the source of iat and the expiry reference.
func (b *Builder) WithClock(now func() time.Time) *Builder {
	b.clock = now
	return b
}

// Build validates the configuration and returns an immutable Service.
func (b *Builder) Build() (*Service, error) {
	if b.built {
		return nil, ErrBuilderUsed
	}

	cfg := cloneConfig(b.config).withDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	signer, err := jwt.NewManager(jwt.Config{
		Algorithm: cfg.Algorithm,
		Key:       cfg.SigningKey,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfig, err)
	}

	logger := b.logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	clock := b.clock
	if clock == nil {
		clock = time.Now
	}

	var sink audit.Sink
	if b.auditSink != nil {
		sink = b.auditSink
	}

	svc := &Service{
		config:  cfg,
		signer:  signer,
		now:     clock,
		logger:  logger,
		metrics: NewMetrics(cfg.Metrics),
		audit: audit.NewDispatcher(audit.Config{
			Enabled:    cfg.Audit.Enabled,
			BufferSize: cfg.Audit.BufferSize,
			DropIfFull: cfg.Audit.DropIfFull,
		}, sink),
	}

	b.built = true
	logger.Debug("token service built", slog.Any("config", cfg))

	return svc, nil
}
