// Copyright 2025 Certen Protocol
//
// A thin JSON-RPC 2.0 wrapper around the CKB node's get_block_by_number
// and get_tip_block_number methods. No Go SDK for CKB exists anywhere in
// the retrieval pack this codebase was built from, so the client speaks
// JSON-RPC directly over net/http rather than delegating to one.

package ckbrpc

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// Client is a minimal JSON-RPC 2.0 client for a CKB node.
type Client struct {
	url        string
	httpClient *http.Client
	nextID     int
}

// NewClient returns a Client targeting url.
func NewClient(url string) *Client {
	return &Client{
		url: url,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

type rpcRequest struct {
	JSONRPC string `json:"jsonrpc"`
	Method  string `json:"method"`
	Params  []any  `json:"params"`
	ID      int    `json:"id"`
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e *rpcError) Error() string {
	return fmt.Sprintf("ckb rpc error %d: %s", e.Code, e.Message)
}

type rpcResponse struct {
	Result json.RawMessage `json:"result"`
	Error  *rpcError       `json:"error"`
}

func (c *Client) call(ctx context.Context, method string, params []any, out any) error {
	c.nextID++
	body, err := json.Marshal(rpcRequest{
		JSONRPC: "2.0",
		Method:  method,
		Params:  params,
		ID:      c.nextID,
	})
	if err != nil {
		return fmt.Errorf("ckbrpc: marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("ckbrpc: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("ckbrpc: %s: %w", method, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("ckbrpc: %s: unexpected status %d", method, resp.StatusCode)
	}

	var rpcResp rpcResponse
	if err := json.NewDecoder(resp.Body).Decode(&rpcResp); err != nil {
		return fmt.Errorf("ckbrpc: %s: decode response: %w", method, err)
	}
	if rpcResp.Error != nil {
		return fmt.Errorf("ckbrpc: %s: %w", method, rpcResp.Error)
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(rpcResp.Result, out); err != nil {
		return fmt.Errorf("ckbrpc: %s: unmarshal result: %w", method, err)
	}
	return nil
}

// GetBlockByNumber fetches the block at height, or (nil, nil) if the
// chain has not reached that height yet.
func (c *Client) GetBlockByNumber(ctx context.Context, height uint64) (*Block, error) {
	var block *Block
	if err := c.call(ctx, "get_block_by_number", []any{hexUint(height)}, &block); err != nil {
		return nil, err
	}
	return block, nil
}

// GetTipBlockNumber returns the current chain tip height.
func (c *Client) GetTipBlockNumber(ctx context.Context) (uint64, error) {
	var tipHex string
	if err := c.call(ctx, "get_tip_block_number", nil, &tipHex); err != nil {
		return 0, err
	}
	return parseHexUint(tipHex)
}

func hexUint(v uint64) string {
	return fmt.Sprintf("0x%x", v)
}

func parseHexUint(s string) (uint64, error) {
	var v uint64
	_, err := fmt.Sscanf(s, "0x%x", &v)
	if err != nil {
		return 0, fmt.Errorf("ckbrpc: parse hex uint %q: %w", s, err)
	}
	return v, nil
}
