package resilience

import (
	"errors"
	"testing"
)

func TestRetryPolicyStopsOnSuccess(t *testing.T) {
	policy := RetryPolicy{MaxRetries: 3}
	calls := 0
	err := policy.Do(func() error {
		calls++
		if calls < 2 {
			return errors.New("transient")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if calls != 2 {
		t.Fatalf("expected 2 calls, got %d", calls)
	}
}

func TestRetryPolicyRespectsRetryable(t *testing.T) {
	policy := RetryPolicy{
		MaxRetries: 5,
		Retryable:  func(err error) bool { return false },
	}
	calls := 0
	err := policy.Do(func() error {
		calls++
		return errors.New("fatal")
	})
	if err == nil {
		t.Fatalf("expected error")
	}
	if calls != 1 {
		t.Fatalf("expected single call, got %d", calls)
	}
}

func TestRetryPolicyExhaustsBudget(t *testing.T) {
	policy := RetryPolicy{MaxRetries: 2}
	calls := 0
	err := policy.Do(func() error {
		calls++
		return errors.New("still failing")
	})
	if err == nil {
		t.Fatalf("expected error after exhaustion")
	}
	if calls != 3 {
		t.Fatalf("expected 3 calls, got %d", calls)
	}
}

func TestAsRateLimit(t *testing.T) {
	base := RateLimitError{Service: "coingecko", Message: "too many requests"}
	rl, ok := AsRateLimit(base)
	if !ok || rl.Service != "coingecko" {
		t.Fatalf("expected rate limit with service, got %v %v", rl, ok)
	}
	if IsRateLimit(errors.New("other")) {
		t.Fatalf("expected plain error to not match")
	}
	if _, ok := AsRateLimit(errors.New("other")); ok {
		t.Fatalf("expected no match")
	}
}
