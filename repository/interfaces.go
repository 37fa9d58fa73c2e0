// Package repository provides data access layer implementations and interfaces for the durable ID store
package repository

import "context"

type contextKey string

// TxContextKey carries an open gorm transaction through a context.
const TxContextKey contextKey = "tx"

// Durable ID store keys. Each key names one persisted set of integers.
const (
	KeySubmittedAccountIDs      = "submitted_account_ids"
	KeyActiveAccountIDs         = "active_account_ids"
	KeySubmittedSubscriptionIDs = "submitted_subscription_ids"
	KeyActiveSubscriptionIDs    = "active_subscription_ids"
)

// IDSetKeys lists every durable store key, in reset order.
var IDSetKeys = []string{
	KeySubmittedAccountIDs,
	KeyActiveAccountIDs,
	KeySubmittedSubscriptionIDs,
	KeyActiveSubscriptionIDs,
}

// IDSetRepository is the durable key-value store for identifier sets. Every
// write is a synchronous overwrite of the full set (last-writer-wins), which
// is safe under the single active session assumption. Implementations must
// survive process restarts within the same environment, except the in-memory
// one used for tests and ephemeral runs.
type IDSetRepository interface {
	// Get returns the set stored under key, empty (not nil error) when the
	// key has never been written.
	Get(ctx context.Context, key string) ([]int, error)
	// Set replaces the full set stored under key.
	Set(ctx context.Context, key string, ids []int) error
}
