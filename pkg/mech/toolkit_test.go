package mech

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/mechkit/mechkit/pkg/keychain"
	"github.com/mechkit/mechkit/pkg/resilience"
)

type fakePool struct {
	budget  map[string]int
	current map[string]string
	rotated []string
}

func (p *fakePool) RemainingRetries() map[string]int {
	out := make(map[string]int, len(p.budget))
	for k, v := range p.budget {
		out[k] = v
	}
	return out
}

func (p *fakePool) Current(service string) string { return p.current[service] }

func (p *fakePool) Rotate(service string) { p.rotated = append(p.rotated, service) }

func newTestToolkit(descriptors ...Descriptor) *Toolkit {
	reg := NewRegistry("command", false, descriptors...)
	return NewToolkit("testkit", "command", reg)
}

func staticHandler(text string, err error) Handler {
	return func(ctx context.Context, keys keychain.Pool, args Args) (string, error) {
		return text, err
	}
}

func TestRunSuccessShape(t *testing.T) {
	tk := newTestToolkit(Descriptor{Name: "get_all_charges", Run: staticHandler(`{"data":[]}`, nil)})
	pool := &fakePool{budget: map[string]int{"svc": 1}}

	resp, err := tk.Run(context.Background(), pool, Args{"command": "get_all_charges"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Text != `{"data":[]}` {
		t.Fatalf("unexpected text: %q", resp.Text)
	}
	if resp.Prompt != nil {
		t.Fatalf("prompt should be unset, got %q", *resp.Prompt)
	}
	if resp.Transaction != nil || resp.Cost != nil {
		t.Fatalf("transaction and cost should be unset")
	}
	if resp.Keys != keychain.Pool(pool) {
		t.Fatalf("pool should ride back on the response")
	}
	if len(pool.rotated) != 0 {
		t.Fatalf("no rotation expected, got %v", pool.rotated)
	}
}

func TestRunMissingOperationName(t *testing.T) {
	tk := newTestToolkit(Descriptor{Name: "op", Run: staticHandler("ok", nil)})
	pool := &fakePool{}

	for _, args := range []Args{
		{},
		{"command": ""},
		{"command": 42},
		{"other": "op"},
	} {
		resp, err := tk.Run(context.Background(), pool, args)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if resp.Text != "No command has been specified." {
			t.Fatalf("unexpected text: %q", resp.Text)
		}
		if resp.Prompt != nil {
			t.Fatalf("usage response should not set prompt")
		}
	}
}

func TestRunUnknownOperationListsAll(t *testing.T) {
	tk := newTestToolkit(
		Descriptor{Name: "alpha", Run: staticHandler("", nil)},
		Descriptor{Name: "beta", Run: staticHandler("", nil)},
		Descriptor{Name: "gamma", Run: staticHandler("", nil)},
	)
	pool := &fakePool{}

	resp, err := tk.Run(context.Background(), pool, Args{"command": "delta"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, name := range []string{`"alpha"`, `"beta"`, `"gamma"`} {
		if !strings.Contains(resp.Text, name) {
			t.Fatalf("expected %s in %q", name, resp.Text)
		}
	}
	if !strings.Contains(resp.Text, `Command "delta" is not in supported commands`) {
		t.Fatalf("unexpected message: %q", resp.Text)
	}
}

func TestRunRotatesUntilSuccess(t *testing.T) {
	attempts := 0
	handler := func(ctx context.Context, keys keychain.Pool, args Args) (string, error) {
		attempts++
		if attempts <= 2 {
			return "", resilience.RateLimitError{Service: "svc", Message: "throttled"}
		}
		return "recovered", nil
	}
	tk := newTestToolkit(Descriptor{Name: "op", Run: handler})
	pool := &fakePool{budget: map[string]int{"svc": 3}}

	resp, err := tk.Run(context.Background(), pool, Args{"command": "op"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Text != "recovered" {
		t.Fatalf("unexpected text: %q", resp.Text)
	}
	if len(pool.rotated) != 2 {
		t.Fatalf("expected exactly 2 rotations, got %v", pool.rotated)
	}
	for _, service := range pool.rotated {
		if service != "svc" {
			t.Fatalf("rotated wrong service: %v", pool.rotated)
		}
	}
}

func TestRunExhaustedBudgetReRaises(t *testing.T) {
	limitErr := resilience.RateLimitError{Service: "svc", Message: "throttled hard"}
	tk := newTestToolkit(Descriptor{Name: "op", Run: staticHandler("", limitErr)})
	pool := &fakePool{budget: map[string]int{"svc": 0}}

	resp, err := tk.Run(context.Background(), pool, Args{"command": "op"})
	if resp != nil {
		t.Fatalf("expected no response, got %+v", resp)
	}
	var got resilience.RateLimitError
	if !errors.As(err, &got) || got != limitErr {
		t.Fatalf("expected original error back, got %v", err)
	}
	if len(pool.rotated) != 0 {
		t.Fatalf("expected zero rotations, got %v", pool.rotated)
	}
}

func TestRunExhaustedAfterBudgetSpent(t *testing.T) {
	limitErr := resilience.RateLimitError{Service: "svc", Message: "still throttled"}
	tk := newTestToolkit(Descriptor{Name: "op", Run: staticHandler("", limitErr)})
	pool := &fakePool{budget: map[string]int{"svc": 2}}

	_, err := tk.Run(context.Background(), pool, Args{"command": "op"})
	var got resilience.RateLimitError
	if !errors.As(err, &got) || got != limitErr {
		t.Fatalf("expected original error back, got %v", err)
	}
	if len(pool.rotated) != 2 {
		t.Fatalf("expected budget-many rotations, got %v", pool.rotated)
	}
}

func TestRunOtherFailureIsSoft(t *testing.T) {
	tk := newTestToolkit(Descriptor{Name: "op", Run: staticHandler("", errors.New("upstream exploded"))})
	pool := &fakePool{budget: map[string]int{"svc": 5}}

	resp, err := tk.Run(context.Background(), pool, Args{"command": "op"})
	if err != nil {
		t.Fatalf("soft failures must not propagate, got %v", err)
	}
	if resp.Text != "upstream exploded" {
		t.Fatalf("unexpected text: %q", resp.Text)
	}
	if resp.Prompt == nil || *resp.Prompt != "" {
		t.Fatalf("soft failure must carry empty-string prompt, got %v", resp.Prompt)
	}
	if resp.Keys == nil {
		t.Fatalf("pool should ride back on soft failures")
	}
	if len(pool.rotated) != 0 {
		t.Fatalf("non-rate-limit errors must not rotate, got %v", pool.rotated)
	}
}

func TestRunRateLimitForUnbudgetedService(t *testing.T) {
	limitErr := resilience.RateLimitError{Service: "unknown_svc"}
	tk := newTestToolkit(Descriptor{Name: "op", Run: staticHandler("", limitErr)})
	pool := &fakePool{budget: map[string]int{"svc": 3}}

	_, err := tk.Run(context.Background(), pool, Args{"command": "op"})
	var got resilience.RateLimitError
	if !errors.As(err, &got) || got != limitErr {
		t.Fatalf("expected re-raise for unbudgeted service, got %v", err)
	}
	if len(pool.rotated) != 0 {
		t.Fatalf("expected zero rotations, got %v", pool.rotated)
	}
}

func TestRunUsageErrorFromHandler(t *testing.T) {
	tk := newTestToolkit(Descriptor{Name: "op", Run: staticHandler("", UsageError{Msg: "No wallet has been specified."})})
	pool := &fakePool{}

	resp, err := tk.Run(context.Background(), pool, Args{"command": "op"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Text != "No wallet has been specified." {
		t.Fatalf("unexpected text: %q", resp.Text)
	}
	if resp.Prompt != nil {
		t.Fatalf("usage responses ride the success shape with no prompt")
	}
	if resp.Keys == nil {
		t.Fatalf("pool should ride back")
	}
}

func TestRunEchoesCallerSpelling(t *testing.T) {
	reg := NewRegistry("command", true, Descriptor{Name: "get_price", EchoPrompt: true, Run: staticHandler("42", nil)})
	tk := NewToolkit("echokit", "command", reg)
	pool := &fakePool{}

	resp, err := tk.Run(context.Background(), pool, Args{"command": "GET_PRICE"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Prompt == nil || *resp.Prompt != "GET_PRICE" {
		t.Fatalf("expected caller spelling echoed, got %v", resp.Prompt)
	}
	if resp.Text != "42" {
		t.Fatalf("unexpected text: %q", resp.Text)
	}
}

func TestRunCaseSensitivityIsPerRegistry(t *testing.T) {
	exact := NewToolkit("exact", "command",
		NewRegistry("command", false, Descriptor{Name: "get_price", Run: staticHandler("ok", nil)}))
	pool := &fakePool{}

	resp, err := exact.Run(context.Background(), pool, Args{"command": "GET_PRICE"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(resp.Text, "is not in supported commands") {
		t.Fatalf("exact registry should reject mixed case, got %q", resp.Text)
	}
}

func TestRunNilPoolFatal(t *testing.T) {
	tk := newTestToolkit(Descriptor{Name: "op", Run: staticHandler("ok", nil)})
	resp, err := tk.Run(context.Background(), nil, Args{"command": "op"})
	if err == nil || resp != nil {
		t.Fatalf("expected fatal error for missing pool, got %+v %v", resp, err)
	}
}

func TestRunIsDeterministic(t *testing.T) {
	tk := newTestToolkit(Descriptor{Name: "op", Run: staticHandler("stable output", nil)})
	pool := &fakePool{budget: map[string]int{"svc": 2}}

	first, err := tk.Run(context.Background(), pool, Args{"command": "op", "extra": "x"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := tk.Run(context.Background(), pool, Args{"command": "op", "extra": "x"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if first.Text != second.Text {
		t.Fatalf("expected identical responses, got %q vs %q", first.Text, second.Text)
	}
}

func TestRegistryRejectsDuplicates(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatalf("expected panic on duplicate registration")
		}
	}()
	NewRegistry("command", false,
		Descriptor{Name: "op", Run: staticHandler("", nil)},
		Descriptor{Name: "op", Run: staticHandler("", nil)},
	)
}

func TestRegistryNamesOrderStable(t *testing.T) {
	reg := NewRegistry("tool", false,
		Descriptor{Name: "zeta", Run: staticHandler("", nil)},
		Descriptor{Name: "alpha", Run: staticHandler("", nil)},
		Descriptor{Name: "mid", Run: staticHandler("", nil)},
	)
	names := reg.Names()
	want := []Name{"zeta", "alpha", "mid"}
	for i := range want {
		if names[i] != want[i] {
			t.Fatalf("expected registration order %v, got %v", want, names)
		}
	}
}
