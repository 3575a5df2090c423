package metrics

import (
	"testing"
	"time"
)

func dispatchEvent(toolkit, operation, outcome string, ms float64) MetricsEvent {
	return MetricsEvent{
		Name:  EventDispatch,
		Time:  time.Now(),
		Value: ms,
		Tags: map[string]string{
			TagToolkit:   toolkit,
			TagOperation: operation,
			TagOutcome:   outcome,
		},
	}
}

func TestAsyncObserverDrainsOnClose(t *testing.T) {
	mem := NewMemoryObserver()
	async := NewAsyncObserver(mem, 16)
	for i := 0; i < 5; i++ {
		async.RecordEvent(dispatchEvent("coingecko", "coin_price", OutcomeOK, 10))
	}
	async.Close()
	if got := len(mem.Snapshot()); got != 5 {
		t.Fatalf("expected 5 events after close, got %d", got)
	}
	// Records after close are dropped silently.
	async.RecordEvent(dispatchEvent("coingecko", "coin_price", OutcomeOK, 10))
	if got := len(mem.Snapshot()); got != 5 {
		t.Fatalf("expected no events after close, got %d", got)
	}
}

func TestSamplingObserverRates(t *testing.T) {
	mem := NewMemoryObserver()
	all := NewSamplingObserver(mem, 1)
	for i := 0; i < 10; i++ {
		all.RecordEvent(dispatchEvent("irys", "upload", OutcomeOK, 5))
	}
	if got := len(mem.Snapshot()); got != 10 {
		t.Fatalf("rate 1 should forward all, got %d", got)
	}

	mem.Reset()
	none := NewSamplingObserver(mem, 0)
	for i := 0; i < 10; i++ {
		none.RecordEvent(dispatchEvent("irys", "upload", OutcomeOK, 5))
	}
	if got := len(mem.Snapshot()); got != 0 {
		t.Fatalf("rate 0 should drop all, got %d", got)
	}

	mem.Reset()
	half := NewSamplingObserver(mem, 0.5)
	for i := 0; i < 10; i++ {
		half.RecordEvent(dispatchEvent("irys", "upload", OutcomeOK, 5))
	}
	if got := len(mem.Snapshot()); got != 5 {
		t.Fatalf("rate 0.5 should forward every other event, got %d", got)
	}
}

func TestMultiObserverFansOut(t *testing.T) {
	a := NewMemoryObserver()
	b := NewMemoryObserver()
	multi := NewMultiObserver(a, nil, b)
	multi.RecordEvent(dispatchEvent("coinbase_commerce", "create_charge", OutcomeSoftError, 40))
	if len(a.Snapshot()) != 1 || len(b.Snapshot()) != 1 {
		t.Fatalf("expected both observers to record")
	}
}

func TestRollupObserverAggregates(t *testing.T) {
	roll := NewRollupObserver(nil)
	roll.RecordEvent(dispatchEvent("coingecko", "coin_price", OutcomeOK, 12))
	roll.RecordEvent(dispatchEvent("coingecko", "coin_price", OutcomeSoftError, 30))
	roll.RecordEvent(MetricsEvent{
		Name: EventKeyRotate,
		Tags: map[string]string{TagToolkit: "coingecko", TagOperation: "coin_price", TagService: "coingecko"},
	})

	roll.mu.Lock()
	row := roll.rows["coingecko/coin_price"]
	roll.mu.Unlock()
	if row == nil {
		t.Fatalf("missing rollup row")
	}
	if row.count != 2 || row.failures != 1 || row.rotations != 1 {
		t.Fatalf("unexpected row: %+v", row)
	}
	if row.maxMS != 30 || row.totalMS != 42 {
		t.Fatalf("unexpected durations: %+v", row)
	}

	if err := roll.Flush(); err != nil {
		t.Fatalf("flush failed: %v", err)
	}
	roll.mu.Lock()
	remaining := len(roll.rows)
	roll.mu.Unlock()
	if remaining != 0 {
		t.Fatalf("expected reset after flush, got %d rows", remaining)
	}
}
