// Package gateway serves toolkit invocations over WebSocket. Each
// connection carries JSON request envelopes and receives one reply per
// request, dispatched synchronously in arrival order.
package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/mechkit/mechkit/pkg/mech"
	"github.com/mechkit/mechkit/pkg/metrics"
	"github.com/mechkit/mechkit/pkg/redact"
	"github.com/mechkit/mechkit/pkg/resilience"
)

// Dispatcher resolves a toolkit by name and runs one invocation. The
// credential pool lives behind the implementation.
type Dispatcher interface {
	Dispatch(ctx context.Context, toolkit string, args mech.Args) (*mech.Response, error)
}

// Request is the inbound envelope.
type Request struct {
	ID      string    `json:"id"`
	Toolkit string    `json:"toolkit"`
	Args    mech.Args `json:"args"`
}

// Reply is the outbound envelope. Prompt keeps its pointer semantics
// on the wire: absent, empty string, or the echoed operation name.
type Reply struct {
	ID          string         `json:"id"`
	Text        string         `json:"text,omitempty"`
	Prompt      *string        `json:"prompt,omitempty"`
	Transaction map[string]any `json:"transaction,omitempty"`
	Cost        map[string]any `json:"cost,omitempty"`
	Error       string         `json:"error,omitempty"`
}

type Config struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
	Path string `mapstructure:"path"`
}

func (c Config) withDefaults() Config {
	if c.Host == "" {
		c.Host = "0.0.0.0"
	}
	if c.Port == 0 {
		c.Port = 8089
	}
	if c.Path == "" {
		c.Path = "/mech"
	}
	return c
}

func (c Config) addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

// Server is the WebSocket serve surface.
type Server struct {
	cfg        Config
	dispatcher Dispatcher
	log        *slog.Logger
	observer   metrics.Observer
	upgrader   websocket.Upgrader
	server     *http.Server

	draining atomic.Bool
}

func New(cfg Config, d Dispatcher, log *slog.Logger, obs metrics.Observer) *Server {
	if log == nil {
		log = slog.Default()
	}
	if obs == nil {
		obs = metrics.NoopObserver{}
	}
	return &Server{
		cfg:        cfg.withDefaults(),
		dispatcher: d,
		log:        log,
		observer:   obs,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

// Handler assembles the route table. Exposed so tests can mount the
// gateway on an ephemeral listener.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.Handle(s.cfg.Path, s)
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})
	return mux
}

// Start binds the listener and serves until ctx is canceled. It
// returns immediately; serve errors are logged, not returned.
func (s *Server) Start(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	s.server = &http.Server{
		Addr:              s.cfg.addr(),
		ReadHeaderTimeout: 5 * time.Second,
		Handler:           s.Handler(),
	}
	go func() {
		<-ctx.Done()
		_ = s.server.Close()
	}()
	go func() {
		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.log.Error("gateway_server_error", "error", err.Error())
		}
	}()
	s.log.Info("gateway_listening", "addr", s.cfg.addr(), "path", s.cfg.Path)
	return nil
}

// Stop refuses new connections and closes the listener. In-flight
// reads fail and their connections unwind on their own.
func (s *Server) Stop() error {
	s.draining.Store(true)
	if s.server != nil {
		_ = s.server.Close()
	}
	return nil
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if s.draining.Load() {
		w.WriteHeader(http.StatusServiceUnavailable)
		return
	}
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			return
		}
		reply := s.handle(r.Context(), msg)
		if err := conn.WriteJSON(reply); err != nil {
			return
		}
	}
}

func (s *Server) handle(ctx context.Context, raw []byte) Reply {
	traceID := uuid.NewString()

	var req Request
	if err := json.Unmarshal(raw, &req); err != nil {
		s.log.Warn("gateway_bad_envelope", "trace_id", traceID, "error", err.Error())
		return Reply{Error: "malformed request envelope"}
	}

	started := time.Now()
	resp, err := s.dispatcher.Dispatch(ctx, req.Toolkit, req.Args)
	elapsed := time.Since(started)

	outcome := metrics.OutcomeOK
	if err != nil {
		outcome = metrics.OutcomeError
		if resilience.IsRateLimit(err) {
			outcome = metrics.OutcomeExhausted
		}
	}
	s.observer.RecordEvent(metrics.MetricsEvent{
		Name:  metrics.EventGateway,
		Time:  started,
		Value: float64(elapsed.Milliseconds()),
		Tags: map[string]string{
			metrics.TagToolkit:   req.Toolkit,
			metrics.TagOutcome:   outcome,
			metrics.TagRequestID: traceID,
		},
	})

	if err != nil {
		s.log.Error("gateway_dispatch_failed",
			"trace_id", traceID,
			"toolkit", req.Toolkit,
			"error", redact.Text(err.Error()),
		)
		return Reply{ID: req.ID, Error: err.Error()}
	}

	s.log.Info("gateway_message",
		"trace_id", traceID,
		"toolkit", req.Toolkit,
		"elapsed_ms", elapsed.Milliseconds(),
	)
	return Reply{
		ID:          req.ID,
		Text:        resp.Text,
		Prompt:      resp.Prompt,
		Transaction: resp.Transaction,
		Cost:        resp.Cost,
	}
}
