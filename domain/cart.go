package domain

import "time"

// Product is the catalog view of an item as seen by the shop listing.
// Price and AvailableQuantity are snapshots taken when the listing was
// fetched, not live values.
type Product struct {
	ProductID         string  `json:"productId"`
	Name              string  `json:"name"`
	ImageURL          string  `json:"imageUrl,omitempty"`
	ShortSpec         string  `json:"shortSpec,omitempty"`
	Price             float64 `json:"price"`
	AvailableQuantity int     `json:"availableQuantity"`
}

// CartLine is one product entry in the cart. LineTotal is always derived
// from Quantity and UnitPrice, never mutated on its own.
type CartLine struct {
	ProductID         string  `json:"productId"`
	Name              string  `json:"name"`
	ImageURL          string  `json:"imageUrl,omitempty"`
	ShortSpec         string  `json:"shortSpec,omitempty"`
	Quantity          int     `json:"quantity"`
	UnitPrice         float64 `json:"unitPrice"`
	LineTotal         float64 `json:"lineTotal"`
	AvailableQuantity int     `json:"availableQuantity"`
}

// Cart holds the live cart lines in the order the shopper added them.
// At most one line exists per product id.
type Cart struct {
	Lines     []CartLine `json:"lines"`
	UpdatedAt time.Time  `json:"updatedAt"`
}

// FindLine returns a pointer into Lines for the given product, or nil.
func (c *Cart) FindLine(productID string) *CartLine {
	for i := range c.Lines {
		if c.Lines[i].ProductID == productID {
			return &c.Lines[i]
		}
	}
	return nil
}

// Count is the quantity sum across all lines, recomputed on demand.
func (c *Cart) Count() int {
	var n int
	for _, l := range c.Lines {
		n += l.Quantity
	}
	return n
}

// TotalPrice is the sum of derived line totals.
func (c *Cart) TotalPrice() float64 {
	var total float64
	for _, l := range c.Lines {
		total += l.LineTotal
	}
	return total
}
