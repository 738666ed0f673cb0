package bigquery

import (
	"context"
	"sync"

	"github.com/dfengine/bqbridge/lib/config"
)

// newJobClientFunc is indirected so tests can stand in for the real API client.
var newJobClientFunc = NewJobClient

var (
	sharedMu    sync.Mutex
	sharedStore *Store
)

// GetSharedStore hands out one process-wide store, built lazily from the first
// configuration that initializes successfully. Later calls return the same
// store and ignore their arguments entirely, even when the configuration
// differs - first config wins. A failed initialization is not latched; the
// next call retries with its own configuration. Callers that need isolation
// should use NewStore directly.
//
// A non-nil client skips building the real API client and is used for tests.
func GetSharedStore(ctx context.Context, cfg config.Config, client JobClient) (*Store, error) {
	sharedMu.Lock()
	defer sharedMu.Unlock()

	if sharedStore != nil {
		return sharedStore, nil
	}

	if client == nil {
		var err error
		if client, err = newJobClientFunc(ctx, cfg.BigQuery); err != nil {
			return nil, err
		}
	}

	sharedStore = NewStore(cfg, client)
	return sharedStore, nil
}
