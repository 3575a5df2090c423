package upstream

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/mechkit/mechkit/pkg/resilience"
)

func TestDoReturnsBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("X-CC-Api-Key") != "k1" {
			t.Errorf("missing api key header")
		}
		w.Write([]byte(`{"data":[]}`))
	}))
	defer srv.Close()

	client := New(srv.Client(), resilience.RetryPolicy{}, nil)
	header := http.Header{}
	header.Set("X-CC-Api-Key", "k1")
	got, err := client.Do(context.Background(), Request{
		Service: "coinbase_commerce",
		Method:  http.MethodGet,
		URL:     srv.URL + "/charges",
		Header:  header,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != `{"data":[]}` {
		t.Fatalf("unexpected body: %q", got)
	}
}

func TestDoMapsRateLimit(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte("slow down"))
	}))
	defer srv.Close()

	client := New(srv.Client(), resilience.RetryPolicy{}, nil)
	_, err := client.Do(context.Background(), Request{
		Service: "coingecko",
		Method:  http.MethodGet,
		URL:     srv.URL,
	})
	rl, ok := resilience.AsRateLimit(err)
	if !ok {
		t.Fatalf("expected rate limit error, got %v", err)
	}
	if rl.Service != "coingecko" {
		t.Fatalf("expected service tag, got %q", rl.Service)
	}
	if rl.Message != "slow down" {
		t.Fatalf("expected body message, got %q", rl.Message)
	}
}

func TestDoMapsAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"error":"not found"}`))
	}))
	defer srv.Close()

	client := New(srv.Client(), resilience.RetryPolicy{}, nil)
	_, err := client.Do(context.Background(), Request{
		Service: "coingecko",
		Method:  http.MethodGet,
		URL:     srv.URL,
	})
	var apiErr APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected APIError, got %v", err)
	}
	if apiErr.StatusCode != http.StatusNotFound {
		t.Fatalf("unexpected status: %d", apiErr.StatusCode)
	}
	if resilience.IsRateLimit(err) {
		t.Fatalf("404 must not look like a rate limit")
	}
}

type flakyTransport struct {
	failures int
	calls    int
	inner    http.RoundTripper
}

func (f *flakyTransport) RoundTrip(r *http.Request) (*http.Response, error) {
	f.calls++
	if f.calls <= f.failures {
		return nil, errors.New("connection reset")
	}
	return f.inner.RoundTrip(r)
}

func TestDoRetriesConnectionFailures(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	}))
	defer srv.Close()

	flaky := &flakyTransport{failures: 2, inner: http.DefaultTransport}
	httpClient := &http.Client{Transport: flaky, Timeout: 5 * time.Second}
	client := New(httpClient, resilience.RetryPolicy{MaxRetries: 2, Backoff: time.Millisecond}, nil)
	got, err := client.Do(context.Background(), Request{
		Service: "irys_wallet",
		Method:  http.MethodGet,
		URL:     srv.URL,
	})
	if err != nil {
		t.Fatalf("expected recovery, got %v", err)
	}
	if got != "ok" {
		t.Fatalf("unexpected body: %q", got)
	}
	if flaky.calls != 3 {
		t.Fatalf("expected 3 attempts, got %d", flaky.calls)
	}
}

func TestDoDoesNotRetryStatusErrors(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	client := New(srv.Client(), resilience.RetryPolicy{MaxRetries: 3, Backoff: time.Millisecond}, nil)
	_, err := client.Do(context.Background(), Request{Service: "coingecko", Method: http.MethodGet, URL: srv.URL})
	if !resilience.IsRateLimit(err) {
		t.Fatalf("expected rate limit, got %v", err)
	}
	if calls != 1 {
		t.Fatalf("status errors must not be retried, got %d calls", calls)
	}
}
