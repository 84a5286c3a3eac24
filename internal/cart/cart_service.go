package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/tientrn/laptopstore/domain"
	"github.com/tientrn/laptopstore/internal/storage"
	"golang.org/x/sync/singleflight"
)

const cartKey = "cart"

// Service is the single source of truth for what the shopper currently
// intends to buy. Every mutation persists the full cart snapshot.
type Service struct {
	mu    sync.Mutex // Serializes read-modify-write mutations
	store storage.Store
	sfg   singleflight.Group // Collapses concurrent cold reads
}

func NewService(store storage.Store) *Service {
	return &Service{store: store}
}

// Current returns the live cart. A missing snapshot is an empty cart,
// not an error. Callers get their own copy; collapsed concurrent reads
// must not hand the same lines slice to everyone.
func (s *Service) Current(ctx context.Context) (*domain.Cart, error) {
	v, err, _ := s.sfg.Do(cartKey, func() (interface{}, error) {
		data, errGet := s.store.Get(ctx, cartKey)
		if errors.Is(errGet, storage.ErrKeyNotFound) {
			return &domain.Cart{UpdatedAt: time.Now()}, nil
		}
		if errGet != nil {
			return nil, fmt.Errorf("failed to load cart: %w", errGet)
		}

		var cart domain.Cart
		if errUnmarshal := json.Unmarshal(data, &cart); errUnmarshal != nil {
			return nil, fmt.Errorf("failed to unmarshal cart: %w", errUnmarshal)
		}
		return &cart, nil
	})
	if err != nil {
		return nil, err
	}
	return cloneCart(v.(*domain.Cart)), nil
}

// AddToCart increments the line for the product by one, creating it at
// quantity 1 on first add. Unit price is snapshotted at add time. The
// availability ceiling is the caller's check, not this one.
func (s *Service) AddToCart(ctx context.Context, product domain.Product) (*domain.Cart, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cart, err := s.Current(ctx)
	if err != nil {
		return nil, err
	}

	if line := cart.FindLine(product.ProductID); line != nil {
		line.Quantity++
		line.LineTotal = float64(line.Quantity) * line.UnitPrice
	} else {
		cart.Lines = append(cart.Lines, domain.CartLine{
			ProductID:         product.ProductID,
			Name:              product.Name,
			ImageURL:          product.ImageURL,
			ShortSpec:         product.ShortSpec,
			Quantity:          1,
			UnitPrice:         product.Price,
			LineTotal:         product.Price,
			AvailableQuantity: product.AvailableQuantity,
		})
	}

	if err := s.save(ctx, cart); err != nil {
		return nil, err
	}
	return cart, nil
}

// DecreaseQuantity decrements the line by one, removing it entirely at
// quantity 1. A missing line is a benign race, not an error.
func (s *Service) DecreaseQuantity(ctx context.Context, productID string) (*domain.Cart, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cart, err := s.Current(ctx)
	if err != nil {
		return nil, err
	}

	line := cart.FindLine(productID)
	if line == nil {
		return cart, nil
	}

	if line.Quantity <= 1 {
		removeLine(cart, productID)
	} else {
		line.Quantity--
		line.LineTotal = float64(line.Quantity) * line.UnitPrice
	}

	if err := s.save(ctx, cart); err != nil {
		return nil, err
	}
	return cart, nil
}

// RemoveFromCart deletes the line unconditionally, regardless of
// quantity. Removing an absent line leaves the cart unchanged.
func (s *Service) RemoveFromCart(ctx context.Context, productID string) (*domain.Cart, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cart, err := s.Current(ctx)
	if err != nil {
		return nil, err
	}

	if !removeLine(cart, productID) {
		return cart, nil
	}

	if err := s.save(ctx, cart); err != nil {
		return nil, err
	}
	return cart, nil
}

// ClearCart empties all lines.
func (s *Service) ClearCart(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.store.Delete(ctx, cartKey); err != nil {
		log.Printf("failed to clear cart: %v", err)
		return fmt.Errorf("failed to clear cart: %w", err)
	}
	return nil
}

// Count is the quantity sum across lines, recomputed on demand.
func (s *Service) Count(ctx context.Context) (int, error) {
	cart, err := s.Current(ctx)
	if err != nil {
		return 0, err
	}
	return cart.Count(), nil
}

// TotalPrice is the sum of derived line totals.
func (s *Service) TotalPrice(ctx context.Context) (float64, error) {
	cart, err := s.Current(ctx)
	if err != nil {
		return 0, err
	}
	return cart.TotalPrice(), nil
}

func (s *Service) save(ctx context.Context, cart *domain.Cart) error {
	cart.UpdatedAt = time.Now()
	data, err := json.Marshal(cart)
	if err != nil {
		return fmt.Errorf("failed to marshal cart: %w", err)
	}
	if err := s.store.Set(ctx, cartKey, data); err != nil {
		return fmt.Errorf("failed to persist cart: %w", err)
	}
	return nil
}

func cloneCart(cart *domain.Cart) *domain.Cart {
	out := &domain.Cart{UpdatedAt: cart.UpdatedAt}
	if len(cart.Lines) > 0 {
		out.Lines = make([]domain.CartLine, len(cart.Lines))
		copy(out.Lines, cart.Lines)
	}
	return out
}

func removeLine(cart *domain.Cart, productID string) bool {
	for i, l := range cart.Lines {
		if l.ProductID == productID {
			cart.Lines = append(cart.Lines[:i], cart.Lines[i+1:]...)
			return true
		}
	}
	return false
}
