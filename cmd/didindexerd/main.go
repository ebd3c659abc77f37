// Copyright 2025 Certen Protocol
//
// didindexerd is the DID-document indexer process: it wires
// configuration, the projection store, the CKB RPC client, the
// block-following state machine and the HTTP read API together and runs
// them under the supervisor until shutdown.
package main

import (
	"context"
	"encoding/hex"
	"flag"
	"fmt"
	"log"

	"github.com/certen/did-indexer/pkg/ckbaddr"
	"github.com/certen/did-indexer/pkg/ckbrpc"
	"github.com/certen/did-indexer/pkg/config"
	"github.com/certen/did-indexer/pkg/database"
	"github.com/certen/did-indexer/pkg/didset"
	"github.com/certen/did-indexer/pkg/follower"
	"github.com/certen/did-indexer/pkg/httpapi"
	"github.com/certen/did-indexer/pkg/metrics"
	"github.com/certen/did-indexer/pkg/supervisor"
)

func main() {
	configPath := flag.String("config", "", "path to an optional YAML config file")
	flag.Parse()

	if err := run(*configPath); err != nil {
		log.Fatalf("didindexerd: %v", err)
	}
}

func run(configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	codeHash, err := parseCodeHash(cfg.CodeHash)
	if err != nil {
		return fmt.Errorf("parse code_hash: %w", err)
	}
	network := ckbaddr.Mainnet
	if cfg.CkbNetwork == "ckb_testnet" {
		network = ckbaddr.Testnet
	}

	dbLogger := log.New(log.Writer(), "[Database] ", log.LstdFlags)
	dbClient, err := database.NewClient(cfg, database.WithLogger(dbLogger))
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer dbClient.Close()

	ctx := context.Background()
	if err := dbClient.MigrateUp(ctx); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}

	store := database.NewStore(dbClient)

	live := didset.New()
	refs, err := store.LoadLiveRefs(ctx)
	if err != nil {
		return fmt.Errorf("load live refs: %w", err)
	}
	live.Load(refs)
	log.Printf("Loaded %d live cell refs", live.Len())

	startHeight := cfg.StartHeight
	highest, err := store.CountHighestHeight(ctx)
	if err != nil && err != database.ErrCountNotFound {
		return fmt.Errorf("count highest height: %w", err)
	}
	if err == nil && highest > startHeight {
		startHeight = highest
	}

	rpcClient := ckbrpc.NewClient(cfg.CkbNode)
	m := metrics.New()

	followerLogger := log.New(log.Writer(), "[Follower] ", log.LstdFlags)
	f := follower.New(rpcClient, store, live, codeHash, network, startHeight,
		follower.WithLogger(followerLogger),
		follower.WithMetrics(m),
	)

	httpLogger := log.New(log.Writer(), "[HTTPAPI] ", log.LstdFlags)
	handlers := httpapi.NewHandlers(store, dbClient, f)
	server := httpapi.NewServer(fmt.Sprintf(":%d", cfg.ListenPort), handlers, m.Handler(), httpLogger)

	supervisorLogger := log.New(log.Writer(), "[Supervisor] ", log.LstdFlags)
	return supervisor.Run(context.Background(), f, server, supervisorLogger)
}

func parseCodeHash(s string) ([32]byte, error) {
	var out [32]byte
	trimmed := s
	if len(trimmed) >= 2 && trimmed[:2] == "0x" {
		trimmed = trimmed[2:]
	}
	b, err := hex.DecodeString(trimmed)
	if err != nil {
		return out, fmt.Errorf("invalid hex: %w", err)
	}
	if len(b) != 32 {
		return out, fmt.Errorf("code_hash must be 32 bytes, got %d", len(b))
	}
	copy(out[:], b)
	return out, nil
}
