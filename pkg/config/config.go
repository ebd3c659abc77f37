// Copyright 2025 Certen Protocol
//
// Configuration for the DID-document indexer service.

package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the indexer service.
type Config struct {
	// Database Configuration
	DataBaseURL         string
	DatabaseMaxConns    int
	DatabaseMinConns    int
	DatabaseMaxIdleTime int // seconds
	DatabaseMaxLifetime int // seconds

	// CKB Configuration
	CkbNode     string
	CkbNetwork  string // "ckb" or "ckb_testnet"
	CodeHash    string // hex, 32 bytes
	StartHeight uint64

	// Server Configuration
	ListenPort int
	WorkerNum  int

	// Logging
	LogLevel string
}

// fileConfig mirrors the subset of Config that may be set from a YAML file.
// Field names use lower_snake_case to match typical operator-authored YAML.
type fileConfig struct {
	DataBaseURL         string `yaml:"data_base_url"`
	DatabaseMaxConns    int    `yaml:"database_max_conns"`
	DatabaseMinConns    int    `yaml:"database_min_conns"`
	DatabaseMaxIdleTime int    `yaml:"database_max_idle_time"`
	DatabaseMaxLifetime int    `yaml:"database_max_lifetime"`
	CkbNode             string `yaml:"ckb_node"`
	CkbNetwork          string `yaml:"ckb_network"`
	CodeHash            string `yaml:"code_hash"`
	StartHeight         uint64 `yaml:"start_height"`
	ListenPort          int    `yaml:"listen_port"`
	WorkerNum           int    `yaml:"worker_num"`
	LogLevel            string `yaml:"log_level"`
}

// LoadFile reads a YAML config file and applies it on top of the defaults,
// before the environment overlay in Load. A missing path is not an error;
// operators that only use environment variables never need this file.
func LoadFile(path string) (*fileConfig, error) {
	if path == "" {
		return &fileConfig{}, nil
	}
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return &fileConfig{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	fc := &fileConfig{}
	if err := yaml.Unmarshal(data, fc); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return fc, nil
}

// Load reads configuration from an optional YAML file followed by
// environment variables, which always take precedence. The enumerated
// configuration surface is: data_base_url, ckb_node, ckb_network, code_hash,
// start_height, listen_port, worker_num, log_level.
func Load(filePath string) (*Config, error) {
	fc, err := LoadFile(filePath)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		DataBaseURL:         getEnv("DATA_BASE_URL", fc.DataBaseURL),
		DatabaseMaxConns:    getEnvInt("DATABASE_MAX_CONNS", orDefault(fc.DatabaseMaxConns, 10)),
		DatabaseMinConns:    getEnvInt("DATABASE_MIN_CONNS", orDefault(fc.DatabaseMinConns, 2)),
		DatabaseMaxIdleTime: getEnvInt("DATABASE_MAX_IDLE_TIME", orDefault(fc.DatabaseMaxIdleTime, 300)),
		DatabaseMaxLifetime: getEnvInt("DATABASE_MAX_LIFETIME", orDefault(fc.DatabaseMaxLifetime, 3600)),

		CkbNode:     getEnv("CKB_NODE", fc.CkbNode),
		CkbNetwork:  getEnv("CKB_NETWORK", orDefaultStr(fc.CkbNetwork, "ckb_testnet")),
		CodeHash:    getEnv("CODE_HASH", fc.CodeHash),
		StartHeight: getEnvUint64("START_HEIGHT", orDefaultU64(fc.StartHeight, 0)),

		ListenPort: getEnvInt("LISTEN_PORT", orDefault(fc.ListenPort, 8090)),
		WorkerNum:  getEnvInt("WORKER_NUM", orDefault(fc.WorkerNum, 4)),

		LogLevel: getEnv("LOG_LEVEL", orDefaultStr(fc.LogLevel, "info")),
	}

	return cfg, nil
}

// Validate checks that the configuration is complete enough to start.
func (c *Config) Validate() error {
	var missing []string
	if c.DataBaseURL == "" {
		missing = append(missing, "DATA_BASE_URL")
	}
	if c.CkbNode == "" {
		missing = append(missing, "CKB_NODE")
	}
	if c.CodeHash == "" {
		missing = append(missing, "CODE_HASH")
	}
	if c.CkbNetwork != "ckb" && c.CkbNetwork != "ckb_testnet" {
		return fmt.Errorf("CKB_NETWORK must be 'ckb' or 'ckb_testnet', got %q", c.CkbNetwork)
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required configuration: %v", missing)
	}
	return nil
}

func orDefault(v, d int) int {
	if v == 0 {
		return d
	}
	return v
}

func orDefaultU64(v, d uint64) uint64 {
	if v == 0 {
		return d
	}
	return v
}

func orDefaultStr(v, d string) string {
	if v == "" {
		return d
	}
	return v
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvUint64(key string, defaultValue uint64) uint64 {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.ParseUint(value, 10, 64); err == nil {
			return intValue
		}
	}
	return defaultValue
}
