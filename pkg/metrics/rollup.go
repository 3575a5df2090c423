package metrics

import (
	"log/slog"
	"sync"
)

// RollupObserver aggregates dispatch events per toolkit and operation
// and logs one summary row per pair when flushed.
type RollupObserver struct {
	mu   sync.Mutex
	rows map[string]*rollupRow
	log  *slog.Logger
}

type rollupRow struct {
	toolkit   string
	operation string
	count     int64
	failures  int64
	rotations int64
	totalMS   int64
	maxMS     int64
}

func NewRollupObserver(log *slog.Logger) *RollupObserver {
	if log == nil {
		log = slog.Default()
	}
	return &RollupObserver{
		rows: make(map[string]*rollupRow),
		log:  log,
	}
}

func (o *RollupObserver) RecordEvent(ev MetricsEvent) {
	if ev.Tags == nil {
		return
	}
	toolkit := ev.Tags[TagToolkit]
	if toolkit == "" {
		return
	}
	key := toolkit + "/" + ev.Tags[TagOperation]
	o.mu.Lock()
	defer o.mu.Unlock()
	row := o.rows[key]
	if row == nil {
		row = &rollupRow{toolkit: toolkit, operation: ev.Tags[TagOperation]}
		o.rows[key] = row
	}
	switch ev.Name {
	case EventDispatch:
		row.count++
		if ev.Tags[TagOutcome] != OutcomeOK {
			row.failures++
		}
		ms := int64(ev.Value)
		row.totalMS += ms
		if ms > row.maxMS {
			row.maxMS = ms
		}
	case EventKeyRotate:
		row.rotations++
	}
}

// Flush logs the accumulated rows and resets the table.
func (o *RollupObserver) Flush() error {
	o.mu.Lock()
	rows := o.rows
	o.rows = make(map[string]*rollupRow)
	o.mu.Unlock()
	for _, row := range rows {
		var avg int64
		if row.count > 0 {
			avg = row.totalMS / row.count
		}
		o.log.Info("dispatch_rollup",
			"toolkit", row.toolkit,
			"operation", row.operation,
			"count", row.count,
			"failures", row.failures,
			"rotations", row.rotations,
			"avg_ms", avg,
			"max_ms", row.maxMS,
		)
	}
	return nil
}
