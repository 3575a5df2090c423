// Package mechkit assembles the toolkits, key pool, observer stack and
// WebSocket gateway into a single engine driven by one config file.
package mechkit

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/mechkit/mechkit/pkg/gateway"
	"github.com/mechkit/mechkit/pkg/keychain"
	"github.com/mechkit/mechkit/pkg/logging"
	"github.com/mechkit/mechkit/pkg/mech"
	"github.com/mechkit/mechkit/pkg/metrics"
	"github.com/mechkit/mechkit/pkg/redact"
	"github.com/mechkit/mechkit/pkg/resilience"
	"github.com/mechkit/mechkit/pkg/tools/coinbase"
	"github.com/mechkit/mechkit/pkg/tools/coingecko"
	"github.com/mechkit/mechkit/pkg/tools/irys"
	"github.com/mechkit/mechkit/pkg/upstream"
)

// Engine owns the runtime: every registered toolkit, the shared key
// pool and HTTP client, the metrics sinks and the gateway. It
// implements gateway.Dispatcher, so the WebSocket surface, the CLI and
// the MCP server all route through the same entry point.
type Engine struct {
	cfg      Config
	log      *slog.Logger
	keys     keychain.Pool
	observer metrics.Observer

	order    []string
	toolkits map[string]*mech.Toolkit

	gateway *gateway.Server
	rollup  *metrics.RollupObserver
	async   *metrics.AsyncObserver
	jsonl   *metrics.JSONLObserver
}

// EngineOptions carries the injectable pieces. Zero values select the
// production defaults: keys read from the environment and an HTTP
// client with the configured timeout.
type EngineOptions struct {
	Config     Config
	Keys       keychain.Pool
	HTTPClient *http.Client
	Observer   metrics.Observer
}

func NewEngine(opts EngineOptions) (*Engine, error) {
	cfg := opts.Config

	logging.SetDefaultLogger(cfg.Logging.Level)
	redact.SetEnabled(cfg.Redact.Enabled)

	keys := opts.Keys
	if keys == nil {
		chain, err := keychain.FromEnv()
		if err != nil {
			return nil, err
		}
		keys = chain
	}

	e := &Engine{
		cfg:      cfg,
		log:      logging.NewComponentLogger(slog.Default(), "engine"),
		keys:     keys,
		toolkits: make(map[string]*mech.Toolkit),
	}
	if err := e.buildObserver(opts.Observer); err != nil {
		return nil, err
	}

	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: time.Duration(cfg.Upstream.TimeoutSeconds) * time.Second}
	}
	retry := resilience.RetryPolicy{
		MaxRetries: cfg.Upstream.RetryAttempts,
		Backoff:    time.Duration(cfg.Upstream.RetryBackoffMS) * time.Millisecond,
	}
	up := upstream.New(httpClient, retry, logging.NewComponentLogger(slog.Default(), "upstream"))

	commerce := coinbase.NewClient(up)
	e.register(coinbase.Commerce(commerce))
	e.register(coinbase.CommerceRequest(commerce))
	e.register(coingecko.Market(coingecko.NewClient(up)))
	e.register(irys.Storage(irys.NewClient(up, cfg.Irys.Devnet)))

	e.gateway = gateway.New(cfg.Gateway, e,
		logging.NewComponentLogger(slog.Default(), "gateway"), e.observer)

	slog.Info("mechkit_init",
		"toolkits", strings.Join(e.order, ","),
		"redact", cfg.Redact.Enabled,
		"irys_devnet", cfg.Irys.Devnet,
	)
	return e, nil
}

func (e *Engine) register(tk *mech.Toolkit) {
	tk.Observer = e.observer
	tk.Log = logging.NewComponentLogger(slog.Default(), tk.Name)
	e.toolkits[tk.Name] = tk
	e.order = append(e.order, tk.Name)
}

// buildObserver assembles the sink stack: a debug logger and the
// rollup counters always, a JSONL file when configured, any extra sink
// from the options, all behind optional sampling and an optional async
// stage.
func (e *Engine) buildObserver(extra metrics.Observer) error {
	metricsLog := logging.NewComponentLogger(slog.Default(), "metrics")
	e.rollup = metrics.NewRollupObserver(metricsLog)
	list := []metrics.Observer{
		metrics.NewLoggerObserver(metricsLog),
		e.rollup,
	}
	if path := e.cfg.Metrics.JSONLPath; path != "" {
		jsonl, err := metrics.NewJSONLFileObserver(path)
		if err != nil {
			return err
		}
		e.jsonl = jsonl
		list = append(list, jsonl)
	}
	if extra != nil {
		list = append(list, extra)
	}

	var obs metrics.Observer = metrics.NewMultiObserver(list...)
	if rate := e.cfg.Metrics.SampleRate; rate < 1 {
		obs = metrics.NewSamplingObserver(obs, rate)
	}
	if buf := e.cfg.Metrics.AsyncBuffer; buf > 0 {
		e.async = metrics.NewAsyncObserver(obs, buf)
		obs = e.async
	}
	e.observer = obs
	return nil
}

// Dispatch routes one invocation to the named toolkit.
func (e *Engine) Dispatch(ctx context.Context, toolkit string, args mech.Args) (*mech.Response, error) {
	tk, ok := e.toolkits[toolkit]
	if !ok {
		return nil, fmt.Errorf("unknown toolkit %q, supported: %s", toolkit, strings.Join(e.order, ", "))
	}
	return tk.Run(ctx, e.keys, args)
}

// Toolkits returns the registered toolkits in registration order.
func (e *Engine) Toolkits() []*mech.Toolkit {
	out := make([]*mech.Toolkit, 0, len(e.order))
	for _, name := range e.order {
		out = append(out, e.toolkits[name])
	}
	return out
}

// Toolkit looks up a single toolkit by name.
func (e *Engine) Toolkit(name string) (*mech.Toolkit, bool) {
	tk, ok := e.toolkits[name]
	return tk, ok
}

// Start brings the gateway up. It returns once the listener goroutine
// is running; cancelling ctx shuts the listener down.
func (e *Engine) Start(ctx context.Context) error {
	e.log.Info("engine_starting", "addr", e.cfg.Gateway.Host, "port", e.cfg.Gateway.Port)
	return e.gateway.Start(ctx)
}

// Stop drains the gateway, then the metrics pipeline: the async stage
// first so queued events reach the rollup before its summary is
// flushed, and the JSONL file last.
func (e *Engine) Stop() error {
	var firstErr error
	if err := e.gateway.Stop(); err != nil {
		firstErr = err
	}
	if e.async != nil {
		e.async.Close()
	}
	if err := e.rollup.Flush(); err != nil && firstErr == nil {
		firstErr = err
	}
	if e.jsonl != nil {
		if err := e.jsonl.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	e.log.Info("engine_stopped")
	return firstErr
}
