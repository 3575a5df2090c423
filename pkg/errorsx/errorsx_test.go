package errorsx

import "testing"

func TestWrapAndReason(t *testing.T) {
	err := Wrap(assertErr{}, ReasonUpstreamRequest)
	if Reason(err) != ReasonUpstreamRequest {
		t.Fatalf("expected reason %s, got %s", ReasonUpstreamRequest, Reason(err))
	}
	if !HasReason(err, ReasonUpstreamRequest) {
		t.Fatalf("expected HasReason true")
	}
}

func TestWrapPreservesExistingReason(t *testing.T) {
	first := Wrap(assertErr{}, ReasonKeychain)
	second := Wrap(first, ReasonConfig)
	if Reason(second) != ReasonKeychain {
		t.Fatalf("expected reason preserved, got %s", Reason(second))
	}
}

func TestWrapNil(t *testing.T) {
	if Wrap(nil, ReasonConfig) != nil {
		t.Fatalf("expected nil passthrough")
	}
	if Reason(nil) != ReasonUnknown {
		t.Fatalf("expected unknown reason for nil")
	}
}

type assertErr struct{}

func (assertErr) Error() string { return "boom" }
