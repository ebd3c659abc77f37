// Copyright 2025 Certen Protocol

package supervisor

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"
)

type fakeFollower struct {
	err     error
	started chan struct{}
}

func (f *fakeFollower) Run(ctx context.Context) error {
	close(f.started)
	<-ctx.Done()
	return f.err
}

type fakeServer struct {
	shutdownCalled chan struct{}
}

func (s *fakeServer) ListenAndServe() error {
	<-s.shutdownCalled
	return http.ErrServerClosed
}

func (s *fakeServer) Shutdown(ctx context.Context) error {
	close(s.shutdownCalled)
	return nil
}

func TestRunStopsOnContextCancel(t *testing.T) {
	follower := &fakeFollower{started: make(chan struct{})}
	server := &fakeServer{shutdownCalled: make(chan struct{})}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- Run(ctx, follower, server, nil) }()

	<-follower.started
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Run() = %v, want nil", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after context cancellation")
	}
}

type failingFollower struct {
	err error
}

func (f *failingFollower) Run(ctx context.Context) error { return f.err }

func TestRunPropagatesFollowerError(t *testing.T) {
	wantErr := errors.New("boom")
	follower := &failingFollower{err: wantErr}
	server := &fakeServer{shutdownCalled: make(chan struct{})}

	done := make(chan error, 1)
	go func() { done <- Run(context.Background(), follower, server, nil) }()

	select {
	case err := <-done:
		if !errors.Is(err, wantErr) {
			t.Fatalf("Run() = %v, want wrapping %v", err, wantErr)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after follower error")
	}
}
