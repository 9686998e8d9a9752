// Package store defines the backend record interface the engine consumes and
// a SQLite implementation of it. The engine treats the store as an opaque
// collaborator: failures are surfaced verbatim and never retried, and
// BulkReplace substitutes a canvas's whole item set in one transaction so a
// legacy import can never be applied partially.
package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/agentcanvas/engine/pkg/models"
)

// ErrNotFound is returned when an operation names an item id absent from the
// store. At this layer that is an integration error, not a user mistake.
var ErrNotFound = errors.New("item not found")

// StoreError wraps a backend failure. The underlying error is surfaced to
// the caller verbatim; the engine leaves its in-memory state untouched and
// never retries.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("store %s: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error { return e.Err }

// ItemPatch is a partial update; nil fields are left unchanged.
type ItemPatch struct {
	Name         *string
	Objective    *string
	Description  *string
	Tools        *[]string
	JourneySteps *[]string
	DemoLink     *string
	VideoLink    *string
	Metrics      *models.Metrics
	Tags         *map[string]string
	Phase        *string
	PhaseOrder   *int
	ItemOrder    *int
}

// Store is the flat record interface keyed by canvas and item id.
type Store interface {
	// List returns the live (non-soft-deleted) items of a canvas, ordered by
	// phase order then item order.
	List(ctx context.Context, canvasID string) ([]models.Item, error)

	// ListDeleted returns a canvas's soft-deleted items for audit history.
	ListDeleted(ctx context.Context, canvasID string) ([]models.Item, error)

	// Get retrieves one item by id, deleted or not.
	Get(ctx context.Context, id string) (*models.Item, error)

	// Create persists a new item and returns its id, allocating one when the
	// item carries none.
	Create(ctx context.Context, item *models.Item) (string, error)

	// Update applies a partial update to an existing item.
	Update(ctx context.Context, id string, patch ItemPatch) error

	// Delete soft-deletes an item; the row is retained for audit.
	Delete(ctx context.Context, id string) error

	// BulkReplace atomically substitutes the whole item set of a canvas.
	// Used only by the legacy import/export path.
	BulkReplace(ctx context.Context, canvasID string, items []models.Item) error
}
