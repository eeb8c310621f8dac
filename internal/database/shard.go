// Package database implements the persistence layer: a pool registry for
// the global shard and per-region shards, a transaction helper with
// optimistic-concurrency retry, and a migration runner. Repositories are
// typed Go structs over *sql.DB/*sql.Tx, never an ORM.
package database

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"sync"
	"time"

	_ "github.com/lib/pq"
)

// GlobalShardID names the non-regional, cross-region database: accounts,
// federation metadata, audit, travel-in-transit records.
const GlobalShardID = "global"

// Open establishes a PostgreSQL connection and verifies connectivity with
// a ping. The returned *sql.DB must be closed by the caller.
func Open(ctx context.Context, dsn string, maxConns int, idleTimeout time.Duration) (*sql.DB, error) {
	if strings.TrimSpace(dsn) == "" {
		return nil, fmt.Errorf("postgres DSN is required")
	}
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	db.SetMaxOpenConns(maxConns)
	db.SetConnMaxIdleTime(idleTimeout)

	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return db, nil
}

// Registry holds one connection pool for the global shard and one per
// active region shard, keyed by region id.
type Registry struct {
	mu      sync.RWMutex
	global  *sql.DB
	regions map[string]*sql.DB
}

// NewRegistry constructs a registry around an already-open global pool.
func NewRegistry(global *sql.DB) *Registry {
	return &Registry{global: global, regions: make(map[string]*sql.DB)}
}

// Global returns the global shard's connection pool.
func (r *Registry) Global() *sql.DB { return r.global }

// Region returns the connection pool for a region shard, or false if no
// pool has been registered for it (e.g. the region hasn't finished
// provisioning, or has been archived and torn down).
func (r *Registry) Region(regionID string) (*sql.DB, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	db, ok := r.regions[regionID]
	return db, ok
}

// RegisterRegion adds or replaces the pool for a region shard.
func (r *Registry) RegisterRegion(regionID string, db *sql.DB) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.regions[regionID] = db
}

// UnregisterRegion closes and removes a region shard's pool, e.g. after
// the region is archived.
func (r *Registry) UnregisterRegion(regionID string) error {
	r.mu.Lock()
	db, ok := r.regions[regionID]
	delete(r.regions, regionID)
	r.mu.Unlock()
	if !ok {
		return nil
	}
	return db.Close()
}

// CloseAll closes every registered pool, global included.
func (r *Registry) CloseAll() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	var lastErr error
	for _, db := range r.regions {
		if err := db.Close(); err != nil {
			lastErr = err
		}
	}
	if r.global != nil {
		if err := r.global.Close(); err != nil {
			lastErr = err
		}
	}
	return lastErr
}
