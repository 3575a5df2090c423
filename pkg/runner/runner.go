// Package runner provides the process lifecycle for long-running
// commands: a startup banner, a guarded state machine and bounded
// draining on shutdown.
package runner

import (
	"bytes"
	"context"
	"os"

	"github.com/dimiro1/banner"
)

// State tracks the lifecycle position. Transitions only move forward.
type State int

const (
	StateNew State = iota
	StateStarting
	StateRunning
	StateDraining
	StateStopped
)

func (s State) String() string {
	switch s {
	case StateNew:
		return "new"
	case StateStarting:
		return "starting"
	case StateRunning:
		return "running"
	case StateDraining:
		return "draining"
	case StateStopped:
		return "stopped"
	}
	return "unknown"
}

// Runner is a blocking process loop with an external stop switch.
type Runner interface {
	Run(ctx context.Context) error
	Stop() error
	State() State
}

// Hooks bind the engine to the lifecycle. OnStart brings the serving
// surface up; a non-nil error aborts the run before the running state
// is reached. OnStop fires after draining.
type Hooks struct {
	OnStart func(ctx context.Context) error
	OnStop  func()
}

// Drainer finishes in-flight work during shutdown.
type Drainer interface {
	Drain() error
}

// DrainFunc adapts a plain function to the Drainer interface.
type DrainFunc func() error

func (f DrainFunc) Drain() error { return f() }

// Version is stamped by the release build; source builds report dev.
var Version = "dev"

func PrintBanner() {
	tpl := "{{ .Title \"MECHKIT\" \"\" 0 }}\nVersion: " + Version + "\n"
	banner.Init(os.Stdout, true, true, bytes.NewBufferString(tpl))
}
