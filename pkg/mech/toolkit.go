package mech

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/mechkit/mechkit/pkg/keychain"
	"github.com/mechkit/mechkit/pkg/metrics"
	"github.com/mechkit/mechkit/pkg/resilience"
)

// Toolkit is one deployable tool surface: a registry plus the retry
// controller in front of it. ArgField names the argument key the
// operation name arrives in, historically "prompt" for some toolkits
// and "command" for others.
type Toolkit struct {
	Name     string
	ArgField string
	Registry *Registry
	Observer metrics.Observer
	Log      *slog.Logger
}

func NewToolkit(name, argField string, reg *Registry) *Toolkit {
	return &Toolkit{Name: name, ArgField: argField, Registry: reg}
}

// Run executes one invocation to completion. Every outcome except an
// exhausted rate-limit budget comes back as a Response; exhaustion
// re-raises the upstream error unchanged, the single failure mode that
// propagates instead of folding into the response text.
func (t *Toolkit) Run(ctx context.Context, keys keychain.Pool, args Args) (*Response, error) {
	if keys == nil {
		return nil, errors.New("api_keys is required")
	}
	name, _ := args.String(t.ArgField)
	start := time.Now()
	budget := keys.RemainingRetries()
	for {
		resp, outcome, err := t.dispatch(ctx, keys, name, args)
		if err == nil {
			resp.Keys = keys
			t.recordDispatch(name, outcome, start)
			return resp, nil
		}
		if rl, ok := resilience.AsRateLimit(err); ok {
			if budget[rl.Service] > 0 {
				budget[rl.Service]--
				keys.Rotate(rl.Service)
				t.logger().Warn("rate_limited_rotating",
					"toolkit", t.Name,
					"operation", name,
					"service", rl.Service,
					"budget_left", budget[rl.Service],
				)
				t.record(metrics.MetricsEvent{
					Name: metrics.EventKeyRotate,
					Time: time.Now(),
					Tags: t.tags(name, metrics.TagService, rl.Service),
				})
				continue
			}
			t.logger().Error("rate_limit_budget_exhausted",
				"toolkit", t.Name,
				"operation", name,
				"service", rl.Service,
			)
			t.record(metrics.MetricsEvent{
				Name: metrics.EventExhausted,
				Time: time.Now(),
				Tags: t.tags(name, metrics.TagService, rl.Service),
			})
			t.recordDispatch(name, metrics.OutcomeExhausted, start)
			return nil, err
		}
		t.logger().Warn("operation_failed",
			"toolkit", t.Name,
			"operation", name,
			"error", err.Error(),
		)
		t.recordDispatch(name, metrics.OutcomeSoftError, start)
		empty := ""
		return &Response{Text: err.Error(), Prompt: &empty, Keys: keys}, nil
	}
}

// dispatch resolves and executes one attempt. Usage mistakes become
// plain-text responses here; handler errors pass through untouched for
// the retry controller to classify.
func (t *Toolkit) dispatch(ctx context.Context, keys keychain.Pool, name string, args Args) (*Response, string, error) {
	if name == "" {
		return &Response{Text: t.Registry.MissingNameMessage()}, metrics.OutcomeUsage, nil
	}
	desc, ok := t.Registry.Lookup(name)
	if !ok {
		return &Response{Text: t.Registry.UnknownNameMessage(name)}, metrics.OutcomeUsage, nil
	}
	text, err := desc.Run(ctx, keys, args)
	if err != nil {
		var usage UsageError
		if errors.As(err, &usage) {
			return &Response{Text: usage.Msg}, metrics.OutcomeUsage, nil
		}
		return nil, "", err
	}
	resp := &Response{Text: text}
	if desc.EchoPrompt {
		echoed := name
		resp.Prompt = &echoed
	}
	return resp, metrics.OutcomeOK, nil
}

func (t *Toolkit) recordDispatch(name, outcome string, start time.Time) {
	t.record(metrics.MetricsEvent{
		Name:  metrics.EventDispatch,
		Time:  time.Now(),
		Value: float64(time.Since(start).Milliseconds()),
		Tags:  t.tags(name, metrics.TagOutcome, outcome),
	})
}

func (t *Toolkit) tags(operation string, extra ...string) map[string]string {
	tags := map[string]string{
		metrics.TagToolkit:   t.Name,
		metrics.TagOperation: operation,
	}
	for i := 0; i+1 < len(extra); i += 2 {
		tags[extra[i]] = extra[i+1]
	}
	return tags
}

func (t *Toolkit) record(ev metrics.MetricsEvent) {
	if t.Observer != nil {
		t.Observer.RecordEvent(ev)
	}
}

func (t *Toolkit) logger() *slog.Logger {
	if t.Log != nil {
		return t.Log
	}
	return slog.Default()
}
