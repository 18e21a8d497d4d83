// Package store is the persistence layer: a flat string-to-JSON key/value
// contract with Redis, Postgres, and in-memory backends. Every record in the
// journal lives under one key; backends must list keys by prefix in
// lexicographic order so date-stamped keys come back chronologically.
package store

import (
	"context"
	"errors"
	"time"
)

// ErrClosed is returned by operations on a closed store.
var ErrClosed = errors.New("store: closed")

// KV is the storage contract every backend implements. Get reports a missing
// key via the bool, never an error. List returns full keys matching the
// prefix, sorted lexicographically ascending.
type KV interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
	List(ctx context.Context, prefix string) ([]string, error)
	Ping(ctx context.Context) error
	Close() error
}

// Stats tracks backend health counters for the ops endpoints.
type Stats struct {
	TotalGets   int64     `json:"total_gets"`
	TotalSets   int64     `json:"total_sets"`
	TotalMisses int64     `json:"total_misses"`
	ErrorCount  int64     `json:"error_count"`
	LastError   string    `json:"last_error,omitempty"`
	Connected   bool      `json:"connected"`
	LastPing    time.Time `json:"last_ping"`
}
