// Copyright 2025 Certen Protocol

package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/certen/did-indexer/pkg/database"
)

type fakeStore struct {
	byDID   map[string]*database.DidRecord
	handles map[string]string
	byAddr  map[string][]string
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		byDID:   make(map[string]*database.DidRecord),
		handles: make(map[string]string),
		byAddr:  make(map[string][]string),
	}
}

func (s *fakeStore) FindLiveByDID(ctx context.Context, did string) (*database.DidRecord, error) {
	rec, ok := s.byDID[did]
	if !ok {
		return nil, database.ErrDidDocNotFound
	}
	return rec, nil
}

func (s *fakeStore) ResolveHandle(ctx context.Context, handle string) (string, error) {
	did, ok := s.handles[handle]
	if !ok {
		return "", database.ErrHandleNotFound
	}
	return did, nil
}

func (s *fakeStore) FindLiveByCkbAddress(ctx context.Context, addr string) ([]string, error) {
	return s.byAddr[addr], nil
}

type fakeHealthChecker struct{ err error }

func (p fakeHealthChecker) Health(ctx context.Context) (*database.HealthStatus, error) {
	if p.err != nil {
		return nil, p.err
	}
	return &database.HealthStatus{Healthy: true, Version: "test"}, nil
}

type fakeHeight struct{ h uint64 }

func (f fakeHeight) Height() uint64 { return f.h }

func TestHandleGetDIDFound(t *testing.T) {
	store := newFakeStore()
	store.byDID["did:ckb:abc"] = &database.DidRecord{DID: "did:ckb:abc", Document: []byte(`{"id":"did:ckb:abc"}`)}
	h := NewHandlers(store, fakeHealthChecker{}, fakeHeight{42})

	req := httptest.NewRequest(http.MethodGet, "/did:ckb:abc", nil)
	w := httptest.NewRecorder()
	h.HandleGetDID(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
}

func TestHandleGetDIDNotFound(t *testing.T) {
	store := newFakeStore()
	h := NewHandlers(store, fakeHealthChecker{}, fakeHeight{42})

	req := httptest.NewRequest(http.MethodGet, "/did:ckb:missing", nil)
	w := httptest.NewRecorder()
	h.HandleGetDID(w, req)

	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", w.Code)
	}
}

func TestHandleResolveHandleFound(t *testing.T) {
	store := newFakeStore()
	store.handles["alice"] = "did:ckb:abc"
	h := NewHandlers(store, fakeHealthChecker{}, fakeHeight{42})

	req := httptest.NewRequest(http.MethodGet, "/resolve-handle/alice", nil)
	w := httptest.NewRecorder()
	h.HandleResolveHandle(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if w.Body.String() != "did:ckb:abc" {
		t.Errorf("body = %q, want did:ckb:abc", w.Body.String())
	}
}

func TestHandleResolveHandleNotFound(t *testing.T) {
	store := newFakeStore()
	h := NewHandlers(store, fakeHealthChecker{}, fakeHeight{42})

	req := httptest.NewRequest(http.MethodGet, "/resolve-handle/nobody", nil)
	w := httptest.NewRecorder()
	h.HandleResolveHandle(w, req)

	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", w.Code)
	}
}

func TestHandleResolveCkbAddrEmpty(t *testing.T) {
	store := newFakeStore()
	h := NewHandlers(store, fakeHealthChecker{}, fakeHeight{42})

	req := httptest.NewRequest(http.MethodGet, "/resolve-ckb-addr/ckt1unregistered", nil)
	w := httptest.NewRecorder()
	h.HandleResolveCkbAddr(w, req)

	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", w.Code)
	}
}

func TestHandleResolveCkbAddrFound(t *testing.T) {
	store := newFakeStore()
	store.byAddr["ckt1abc"] = []string{"did:ckb:abc", "did:ckb:def"}
	h := NewHandlers(store, fakeHealthChecker{}, fakeHeight{42})

	req := httptest.NewRequest(http.MethodGet, "/resolve-ckb-addr/ckt1abc", nil)
	w := httptest.NewRecorder()
	h.HandleResolveCkbAddr(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	var dids []string
	if err := json.Unmarshal(w.Body.Bytes(), &dids); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(dids) != 2 {
		t.Errorf("len(dids) = %d, want 2", len(dids))
	}
}

func TestHandleHealthzOK(t *testing.T) {
	store := newFakeStore()
	h := NewHandlers(store, fakeHealthChecker{}, fakeHeight{42})

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	w := httptest.NewRecorder()
	h.HandleHealthz(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
}

func TestHandleHealthzDegraded(t *testing.T) {
	store := newFakeStore()
	h := NewHandlers(store, fakeHealthChecker{err: context.DeadlineExceeded}, fakeHeight{42})

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	w := httptest.NewRecorder()
	h.HandleHealthz(w, req)

	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503", w.Code)
	}
}

func TestHandleDefaultMethodNotAllowed(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/did:ckb:abc", nil)
	w := httptest.NewRecorder()
	HandleDefault(w, req)

	if w.Code != http.StatusMethodNotAllowed {
		t.Fatalf("status = %d, want 405", w.Code)
	}
}
