// Copyright 2025 Certen Protocol

package ckbrpc

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestGetTipBlockNumber(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req rpcRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if req.Method != "get_tip_block_number" {
			t.Fatalf("method = %q, want get_tip_block_number", req.Method)
		}
		json.NewEncoder(w).Encode(map[string]any{
			"jsonrpc": "2.0",
			"id":      req.ID,
			"result":  "0x64",
		})
	}))
	defer srv.Close()

	client := NewClient(srv.URL)
	tip, err := client.GetTipBlockNumber(context.Background())
	if err != nil {
		t.Fatalf("GetTipBlockNumber failed: %v", err)
	}
	if tip != 100 {
		t.Errorf("tip = %d, want 100", tip)
	}
}

func TestGetBlockByNumberAbsent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req rpcRequest
		json.NewDecoder(r.Body).Decode(&req)
		json.NewEncoder(w).Encode(map[string]any{
			"jsonrpc": "2.0",
			"id":      req.ID,
			"result":  nil,
		})
	}))
	defer srv.Close()

	client := NewClient(srv.URL)
	block, err := client.GetBlockByNumber(context.Background(), 500)
	if err != nil {
		t.Fatalf("GetBlockByNumber failed: %v", err)
	}
	if block != nil {
		t.Errorf("block = %+v, want nil", block)
	}
}

func TestGetBlockByNumberPresent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req rpcRequest
		json.NewDecoder(r.Body).Decode(&req)
		json.NewEncoder(w).Encode(map[string]any{
			"jsonrpc": "2.0",
			"id":      req.ID,
			"result": map[string]any{
				"header": map[string]any{
					"number":    "0x64",
					"timestamp": "0x17f3f2a1000",
				},
				"transactions": []any{
					map[string]any{
						"hash":         "0xabc",
						"inputs":       []any{},
						"outputs":      []any{},
						"outputs_data": []any{},
					},
				},
			},
		})
	}))
	defer srv.Close()

	client := NewClient(srv.URL)
	block, err := client.GetBlockByNumber(context.Background(), 100)
	if err != nil {
		t.Fatalf("GetBlockByNumber failed: %v", err)
	}
	if block == nil {
		t.Fatal("block is nil, want present")
	}
	if uint64(block.Header.Number) != 100 {
		t.Errorf("block number = %d, want 100", block.Header.Number)
	}
	if len(block.Transactions) != 1 {
		t.Fatalf("len(transactions) = %d, want 1", len(block.Transactions))
	}
}

func TestRPCErrorPropagates(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req rpcRequest
		json.NewDecoder(r.Body).Decode(&req)
		json.NewEncoder(w).Encode(map[string]any{
			"jsonrpc": "2.0",
			"id":      req.ID,
			"error":   map[string]any{"code": -32000, "message": "node unavailable"},
		})
	}))
	defer srv.Close()

	client := NewClient(srv.URL)
	if _, err := client.GetTipBlockNumber(context.Background()); err == nil {
		t.Fatal("expected error, got nil")
	}
}
