// Package store keeps one record per download request so clients can look
// up the outcome of a download after the request that started it is gone.
package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ManuGH/vidmux/internal/config"
)

// State is the lifecycle position of a download.
type State string

const (
	StatePending   State = "pending"
	StateRunning   State = "running"
	StateRetrying  State = "retrying"
	StateEmbedding State = "embedding"
	StateSucceeded State = "succeeded"
	StateFailed    State = "failed"
)

// Terminal reports whether no further transitions are expected.
func (s State) Terminal() bool {
	return s == StateSucceeded || s == StateFailed
}

// ErrNotFound is returned by Get for unknown ids.
var ErrNotFound = errors.New("download record not found")

// Record describes one download request.
type Record struct {
	ID            string    `json:"id"`
	URL           string    `json:"url"`
	VideoFormatID string    `json:"videoFormatId,omitempty"`
	AudioFormatID string    `json:"audioFormatId,omitempty"`
	State         State     `json:"state"`
	Attempts      int       `json:"attempts"`
	Filename      string    `json:"filename,omitempty"`
	LastError     string    `json:"lastError,omitempty"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// Store persists download records.
type Store interface {
	// Put inserts or replaces the record with rec.ID.
	Put(ctx context.Context, rec Record) error
	Get(ctx context.Context, id string) (Record, error)
	// List returns the most recently updated records first.
	List(ctx context.Context, limit int) ([]Record, error)
	// DeleteBefore removes terminal records last updated before cutoff.
	DeleteBefore(ctx context.Context, cutoff time.Time) (int, error)
	Ping(ctx context.Context) error
	Close() error
}

// New builds the configured backend.
func New(cfg config.StoreConfig) (Store, error) {
	switch cfg.Backend {
	case "", "memory":
		return NewMemoryStore(), nil
	case "sqlite":
		if cfg.Path == "" {
			return nil, fmt.Errorf("store: sqlite backend needs a path")
		}
		s, err := NewSqliteStore(cfg.Path)
		if err != nil {
			return nil, err
		}
		return s, nil
	default:
		return nil, fmt.Errorf("unknown store backend: %s (supported: memory, sqlite)", cfg.Backend)
	}
}
