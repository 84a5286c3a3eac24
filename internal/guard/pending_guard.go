package guard

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/tientrn/laptopstore/domain"
	"github.com/tientrn/laptopstore/internal/storage"
)

const (
	pendingOrderKey   = "pending_order"
	pendingRemovalKey = "pending_cart_removal"
)

var (
	ErrNoPendingOrder = errors.New("no pending order recorded")

	// ErrInventoryExceeded rejects an increment past the availability
	// snapshot. The operation leaves the cart unchanged.
	ErrInventoryExceeded = errors.New("quantity would exceed available stock")
)

// Guard mediates the durable records that make checkout idempotent
// across reloads and the gateway round-trip.
type Guard struct {
	store storage.Store
	now   func() time.Time
}

func NewGuard(store storage.Store) *Guard {
	return &Guard{store: store, now: time.Now}
}

// RecordPendingOrder writes the pending order marker with the current
// timestamp, replacing any previous record.
func (g *Guard) RecordPendingOrder(ctx context.Context, orderID int64, totalPrice float64, fingerprint string) error {
	record := domain.PendingOrderRecord{
		OrderID:    orderID,
		CreatedAt:  g.now(),
		TotalPrice: totalPrice,
		CartHash:   fingerprint,
	}
	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to marshal pending order: %w", err)
	}
	if err := g.store.Set(ctx, pendingOrderKey, data); err != nil {
		return fmt.Errorf("failed to persist pending order: %w", err)
	}
	return nil
}

// PendingOrder reads the current record, or ErrNoPendingOrder.
func (g *Guard) PendingOrder(ctx context.Context) (*domain.PendingOrderRecord, error) {
	data, err := g.store.Get(ctx, pendingOrderKey)
	if errors.Is(err, storage.ErrKeyNotFound) {
		return nil, ErrNoPendingOrder
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load pending order: %w", err)
	}

	var record domain.PendingOrderRecord
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, fmt.Errorf("failed to unmarshal pending order: %w", err)
	}
	return &record, nil
}

// IsStale reports whether the record is past the reuse window.
func (g *Guard) IsStale(record *domain.PendingOrderRecord) bool {
	return record.StaleAt(g.now())
}

// MarkOrderLinesCreated flags the pending order as having its line
// batch accepted by the server, so a later reuse does not resubmit.
func (g *Guard) MarkOrderLinesCreated(ctx context.Context) error {
	record, err := g.PendingOrder(ctx)
	if err != nil {
		return err
	}
	record.LinesCreated = true
	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to marshal pending order: %w", err)
	}
	if err := g.store.Set(ctx, pendingOrderKey, data); err != nil {
		return fmt.Errorf("failed to persist pending order: %w", err)
	}
	return nil
}

// ClearPendingOrder deletes the record. Clearing an absent record is
// fine; it happens on success, cancel and staleness paths alike.
func (g *Guard) ClearPendingOrder(ctx context.Context) error {
	if err := g.store.Delete(ctx, pendingOrderKey); err != nil {
		return fmt.Errorf("failed to clear pending order: %w", err)
	}
	return nil
}

// MatchPendingOrder returns a reusable record for the given fingerprint.
// A stale record, or one whose fingerprint no longer matches the staged
// selection, is discarded and nil is returned.
func (g *Guard) MatchPendingOrder(ctx context.Context, fingerprint string) (*domain.PendingOrderRecord, error) {
	record, err := g.PendingOrder(ctx)
	if errors.Is(err, ErrNoPendingOrder) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	if g.IsStale(record) || record.CartHash != fingerprint {
		log.Printf("discarding pending order %d (stale=%v)", record.OrderID, g.IsStale(record))
		if err := g.ClearPendingOrder(ctx); err != nil {
			return nil, err
		}
		return nil, nil
	}
	return record, nil
}

// RecordPendingRemoval stores the product ids slated for removal from
// the live cart once the gateway confirms payment.
func (g *Guard) RecordPendingRemoval(ctx context.Context, productIDs []string) error {
	data, err := json.Marshal(productIDs)
	if err != nil {
		return fmt.Errorf("failed to marshal pending removals: %w", err)
	}
	if err := g.store.Set(ctx, pendingRemovalKey, data); err != nil {
		return fmt.Errorf("failed to persist pending removals: %w", err)
	}
	return nil
}

// DrainPendingRemoval consumes and clears the removal set. Once drained
// the set cannot be replayed; an absent set drains to nothing.
func (g *Guard) DrainPendingRemoval(ctx context.Context) ([]string, error) {
	data, err := g.store.Get(ctx, pendingRemovalKey)
	if errors.Is(err, storage.ErrKeyNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load pending removals: %w", err)
	}

	var ids []string
	if err := json.Unmarshal(data, &ids); err != nil {
		return nil, fmt.Errorf("failed to unmarshal pending removals: %w", err)
	}
	if err := g.store.Delete(ctx, pendingRemovalKey); err != nil {
		return nil, fmt.Errorf("failed to clear pending removals: %w", err)
	}
	return ids, nil
}

// AllowIncrement enforces the availability ceiling on the add/increment
// path in the shop listing. line is nil when the product has no cart
// line yet.
func AllowIncrement(line *domain.CartLine, availableQuantity int) error {
	current := 0
	if line != nil {
		current = line.Quantity
	}
	if current+1 > availableQuantity {
		return ErrInventoryExceeded
	}
	return nil
}
