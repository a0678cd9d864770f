// Package store holds the current customer list of the console.
//
// A Store owns exactly one snapshot. Mutations go through Update, which
// applies a reconcile function atomically and stamps a new revision.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/custadmin/custadmin/internal/model"
)

// ErrConflict is returned when an update lost every optimistic retry.
var ErrConflict = errors.New("customer list changed concurrently")

// Snapshot is one version of the customer list.
type Snapshot struct {
	Revision  string           `json:"revision"`
	Customers []model.Customer `json:"customers"`
	UpdatedAt time.Time        `json:"updated_at"`
}

// ReconcileFunc computes the next list from the current one.
// Returning an error leaves the stored list untouched.
type ReconcileFunc func(current []model.Customer) ([]model.Customer, error)

// Store keeps the current customer list.
type Store interface {
	// Get returns the current snapshot. An empty store has no revision.
	Get(ctx context.Context) (Snapshot, error)
	// Update applies fn to the current list and stores the result.
	Update(ctx context.Context, fn ReconcileFunc) (Snapshot, error)
	Ping(ctx context.Context) error
	Close() error
}

func emptySnapshot() Snapshot {
	return Snapshot{Customers: []model.Customer{}}
}

func nextSnapshot(customers []model.Customer) Snapshot {
	if customers == nil {
		customers = []model.Customer{}
	}
	return Snapshot{
		Revision:  ulid.Make().String(),
		Customers: customers,
		UpdatedAt: time.Now().UTC(),
	}
}
