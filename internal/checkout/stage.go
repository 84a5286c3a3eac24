package checkout

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/tientrn/laptopstore/domain"
	"github.com/tientrn/laptopstore/internal/storage"
)

const stagedCheckoutKey = "checkout_products"

// StageForCheckout freezes the selected cart lines for one checkout
// attempt. Lines are deep-copied, so cart edits made while the shopper
// is away at the gateway do not reach the staged selection. The snapshot
// goes to the durable store because the gateway round-trip leaves the
// app entirely.
func (o *Orchestrator) StageForCheckout(ctx context.Context, selectedProductIDs []string) (*domain.StagedCheckout, error) {
	if len(selectedProductIDs) == 0 {
		return nil, ErrNoSelection
	}

	cart, err := o.cart.Current(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read cart for staging: %w", err)
	}

	selected := make(map[string]bool, len(selectedProductIDs))
	for _, id := range selectedProductIDs {
		selected[id] = true
	}

	staged := &domain.StagedCheckout{
		AttemptID: uuid.New().String(),
		StagedAt:  time.Now(),
	}
	for _, line := range cart.Lines {
		if selected[line.ProductID] {
			staged.Lines = append(staged.Lines, line)
			staged.TotalPrice += line.LineTotal
		}
	}
	if len(staged.Lines) == 0 {
		return nil, ErrNoSelection
	}

	data, err := json.Marshal(staged)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal staged checkout: %w", err)
	}
	if err := o.durable.Set(ctx, stagedCheckoutKey, data); err != nil {
		return nil, fmt.Errorf("failed to persist staged checkout: %w", err)
	}
	return staged, nil
}

// Staged reads back the staged selection, surviving a full page reload.
func (o *Orchestrator) Staged(ctx context.Context) (*domain.StagedCheckout, error) {
	data, err := o.durable.Get(ctx, stagedCheckoutKey)
	if errors.Is(err, storage.ErrKeyNotFound) {
		return nil, ErrNoSelection
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load staged checkout: %w", err)
	}

	var staged domain.StagedCheckout
	if err := json.Unmarshal(data, &staged); err != nil {
		return nil, fmt.Errorf("failed to unmarshal staged checkout: %w", err)
	}
	if len(staged.Lines) == 0 {
		return nil, ErrNoSelection
	}
	return &staged, nil
}

func (o *Orchestrator) clearStaged(ctx context.Context) error {
	if err := o.durable.Delete(ctx, stagedCheckoutKey); err != nil {
		return fmt.Errorf("failed to clear staged checkout: %w", err)
	}
	return nil
}
