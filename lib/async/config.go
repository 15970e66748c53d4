package async

import (
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config holds the plain, environment-loadable orchestrator settings.
//
// Defaults live in the envDefault tags; DefaultConfig and ConfigFromEnv
// both read them, so there is a single source of truth.
type Config struct {
	// ShowLoadingOnRefetch keeps the placeholder visible while a refetch
	// runs. When false and data already exists, stale data stays on screen.
	ShowLoadingOnRefetch bool `env:"SHOW_LOADING_ON_REFETCH" envDefault:"false"`

	// RefetchOnInterval refires on a fixed period. Zero or negative disables.
	RefetchOnInterval time.Duration `env:"REFETCH_ON_INTERVAL" envDefault:"0s"`

	// RefetchOnReconnect refires when the reconnect source signals.
	RefetchOnReconnect bool `env:"REFETCH_ON_RECONNECT" envDefault:"true"`

	// RetryOnError enables the retry policy. Off by default.
	RetryOnError bool `env:"RETRY_ON_ERROR" envDefault:"false"`

	// Retries caps consecutive retries of one logical fetch.
	Retries int `env:"RETRIES" envDefault:"3"`

	// RetryTimeout is the delay before each retry.
	RetryTimeout time.Duration `env:"RETRY_TIMEOUT" envDefault:"1s"`
}

// DefaultConfig returns the documented defaults.
func DefaultConfig() Config {
	var cfg Config
	if err := env.ParseWithOptions(&cfg, env.Options{Environment: map[string]string{}}); err != nil {
		// Only reachable if a default tag above is malformed.
		panic(fmt.Sprintf("async: invalid config defaults: %v", err))
	}
	return cfg
}

// ConfigFromEnv loads Config from environment variables named prefix +
// tag, e.g. "HXWRAP_REFETCH_ON_INTERVAL" for prefix "HXWRAP_".
func ConfigFromEnv(prefix string) (Config, error) {
	var cfg Config
	if err := env.ParseWithOptions(&cfg, env.Options{Prefix: prefix}); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}

// Options configures one orchestrator.
type Options[V any] struct {
	Config

	// RefetchOnVarsChange decides whether new vars warrant a refetch once
	// data exists. Nil means Shallow.
	RefetchOnVarsChange Refetch[V]

	// Reconnect is the connectivity-regained signal. Nil disables the
	// reconnect trigger regardless of RefetchOnReconnect.
	Reconnect ReconnectSource

	// Logger receives debug records for fires, settlements and drops.
	// Nil discards.
	Logger *slog.Logger

	newTicker func(time.Duration) ticker
}

// DefaultOptions returns Options carrying DefaultConfig.
func DefaultOptions[V any]() Options[V] {
	return Options[V]{Config: DefaultConfig()}
}

// normalize fills unset collaborators. Malformed numbers are treated as
// disabled rather than rejected.
func (o Options[V]) normalize() Options[V] {
	if o.RefetchOnVarsChange == nil {
		o.RefetchOnVarsChange = Shallow[V]
	}
	if o.Logger == nil {
		o.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if o.newTicker == nil {
		o.newTicker = newTimeTicker
	}
	if o.RefetchOnInterval < 0 {
		o.RefetchOnInterval = 0
	}
	if o.Retries < 0 {
		o.Retries = 0
	}
	if o.RetryTimeout < 0 {
		o.RetryTimeout = 0
	}
	return o
}
