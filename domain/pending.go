package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"
	"time"
)

// PendingOrderTTL is how long a pending order may be reused before a new
// one must be created.
const PendingOrderTTL = 2 * time.Hour

// PendingOrderRecord marks that an order was already created for a given
// cart selection, so a reload during the gateway round-trip does not
// create a duplicate.
type PendingOrderRecord struct {
	OrderID    int64     `json:"orderId"`
	CreatedAt  time.Time `json:"createdAt"`
	TotalPrice float64   `json:"totalPrice"`
	CartHash   string    `json:"cartHash"`

	// LinesCreated is set once the server accepted the line batch for
	// this order. A reused order with the flag unset must resubmit its
	// lines: the record is written right after order creation, so a
	// failure in the batch leaves an order header with no lines.
	LinesCreated bool `json:"linesCreated"`
}

// StaleAt reports whether the record is past its reuse window at the
// given instant.
func (r *PendingOrderRecord) StaleAt(now time.Time) bool {
	return now.Sub(r.CreatedAt) >= PendingOrderTTL
}

// Fingerprint hashes the staged line identifiers and quantities. Pairs are
// sorted by product id so the digest does not depend on selection order.
func (s *StagedCheckout) Fingerprint() string {
	pairs := make([]string, len(s.Lines))
	for i, l := range s.Lines {
		pairs[i] = fmt.Sprintf("%s:%d", l.ProductID, l.Quantity)
	}
	sort.Strings(pairs)
	sum := sha256.Sum256([]byte(strings.Join(pairs, "|")))
	return hex.EncodeToString(sum[:])
}
