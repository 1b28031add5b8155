package main

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"
)

type fakeApp struct {
	startErr error
	stopErr  error
	done     chan os.Signal
	stopped  bool
}

func (a *fakeApp) Start(context.Context) error { return a.startErr }

func (a *fakeApp) Stop(context.Context) error {
	a.stopped = true
	return a.stopErr
}

func (a *fakeApp) Done() <-chan os.Signal { return a.done }

func TestRunStopsOnContextCancel(t *testing.T) {
	app := &fakeApp{done: make(chan os.Signal)}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	if err := run(ctx, app); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !app.stopped {
		t.Fatal("expected app to be stopped")
	}
}

func TestRunStopsWhenAppIsDone(t *testing.T) {
	app := &fakeApp{done: make(chan os.Signal, 1)}
	app.done <- os.Interrupt

	if err := run(context.Background(), app); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !app.stopped {
		t.Fatal("expected app to be stopped")
	}
}

func TestRunErrors(t *testing.T) {
	startErr := errors.New("port in use")
	app := &fakeApp{startErr: startErr, done: make(chan os.Signal)}
	if err := run(context.Background(), app); !errors.Is(err, startErr) {
		t.Fatalf("expected start error, got %v", err)
	}
	if app.stopped {
		t.Fatal("did not expect stop after failed start")
	}

	stopErr := errors.New("timeout")
	app = &fakeApp{stopErr: stopErr, done: make(chan os.Signal, 1)}
	app.done <- os.Interrupt
	if err := run(context.Background(), app); !errors.Is(err, stopErr) {
		t.Fatalf("expected stop error, got %v", err)
	}
}
