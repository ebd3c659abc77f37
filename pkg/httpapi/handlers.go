// Copyright 2025 Certen Protocol
//
// Three read-only HTTP handlers over the projection store, plus an
// operational health check. All writes belong to pkg/follower; handlers
// here never touch the live-cell set or issue anything but reads.

package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/certen/did-indexer/pkg/database"
)

// Store is the subset of database.Store the HTTP API reads from.
type Store interface {
	FindLiveByDID(ctx context.Context, did string) (*database.DidRecord, error)
	ResolveHandle(ctx context.Context, handle string) (string, error)
	FindLiveByCkbAddress(ctx context.Context, addr string) ([]string, error)
}

// HeightProvider reports the next height the follower will process, for
// the health endpoint.
type HeightProvider interface {
	Height() uint64
}

// HealthChecker reports connectivity and pool health for a dependency.
type HealthChecker interface {
	Health(ctx context.Context) (*database.HealthStatus, error)
}

// Handlers implements the three data endpoints plus /healthz.
type Handlers struct {
	store    Store
	db       HealthChecker
	follower HeightProvider
}

// NewHandlers constructs Handlers over store, a health-checkable database
// connection and the running follower.
func NewHandlers(store Store, db HealthChecker, follower HeightProvider) *Handlers {
	return &Handlers{store: store, db: db, follower: follower}
}

// checkDIDStr preserves the original's unconditional-accept behavior; a
// commented-out branch in the source this indexer is modeled on expected
// a "did:web5" prefix, but the shipped behavior accepts anything.
func checkDIDStr(string) bool {
	return true
}

// HandleGetDID serves GET /{did}.
func (h *Handlers) HandleGetDID(w http.ResponseWriter, r *http.Request) {
	did := strings.TrimPrefix(r.URL.Path, "/")
	if !checkDIDStr(did) {
		writeError(w, errIncompatibleDid)
		return
	}

	record, err := h.store.FindLiveByDID(r.Context(), did)
	if err != nil {
		if errors.Is(err, database.ErrDidDocNotFound) {
			writeMessage(w, http.StatusNotFound, fmt.Sprintf("Did not registered: %s", did))
			return
		}
		writeError(w, err)
		return
	}

	var doc json.RawMessage = record.Document
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(doc)
}

// HandleResolveHandle serves GET /resolve-handle/{handle}.
func (h *Handlers) HandleResolveHandle(w http.ResponseWriter, r *http.Request) {
	handle := strings.TrimPrefix(r.URL.Path, "/resolve-handle/")

	did, err := h.store.ResolveHandle(r.Context(), handle)
	if err != nil {
		if errors.Is(err, database.ErrHandleNotFound) {
			writeMessage(w, http.StatusNotFound, fmt.Sprintf("Handle not registered: %s", handle))
			return
		}
		writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Write([]byte(did))
}

// HandleResolveCkbAddr serves GET /resolve-ckb-addr/{addr}.
func (h *Handlers) HandleResolveCkbAddr(w http.ResponseWriter, r *http.Request) {
	addr := strings.TrimPrefix(r.URL.Path, "/resolve-ckb-addr/")

	dids, err := h.store.FindLiveByCkbAddress(r.Context(), addr)
	if err != nil {
		writeError(w, err)
		return
	}
	if len(dids) == 0 {
		writeMessage(w, http.StatusNotFound, fmt.Sprintf("Ckb address not registered: %s", addr))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(dids)
}

// healthResponse is the body of /healthz.
type healthResponse struct {
	Status          string `json:"status"`
	Database        string `json:"database"`
	DatabaseVersion string `json:"databaseVersion,omitempty"`
	OpenConnections int    `json:"openConnections"`
	FollowerHeight  uint64 `json:"followerHeight"`
	CheckedAt       string `json:"checkedAt"`
}

// HandleHealthz serves GET /healthz: database connectivity (via
// Client.Health, which also reports pool stats and server version) and
// the next height the follower will process. Not part of the three data
// endpoints, but every donor service in this codebase family ships one
// next to its data API.
func (h *Handlers) HandleHealthz(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	status := healthResponse{
		Status:         "ok",
		Database:       "connected",
		FollowerHeight: h.follower.Height(),
		CheckedAt:      time.Now().UTC().Format(time.RFC3339),
	}

	dbHealth, err := h.db.Health(ctx)
	if err != nil || !dbHealth.Healthy {
		status.Status = "degraded"
		status.Database = "disconnected"
	} else {
		status.DatabaseVersion = dbHealth.Version
		status.OpenConnections = dbHealth.OpenConnections
	}

	w.Header().Set("Content-Type", "application/json")
	if status.Status != "ok" {
		w.WriteHeader(http.StatusServiceUnavailable)
	}
	json.NewEncoder(w).Encode(status)
}

// HandleDefault produces the 405 response. The data routes and /healthz
// are wrapped in getOnly (server.go), which calls this handler for any
// non-GET method; unmatched GET paths fall to the "/" route instead.
// /metrics is registered without getOnly.
func HandleDefault(w http.ResponseWriter, r *http.Request) {
	writeError(w, errMethodNotAllowed)
}
