// internal/models/item.go
package models

import "time"

// Item is the inventory record as stored by the surrounding inventory
// service. Attribute fields are raw strings exactly as staff entered or
// scanned them; the routing normalizer is the only component that
// interprets them.
type Item struct {
	ID       string `json:"id"`
	SKU      string `json:"sku,omitempty"`
	Title    string `json:"title,omitempty"`
	Brand    string `json:"brand,omitempty"`
	Category string `json:"category,omitempty"`

	BrandTier        string `json:"brandTier,omitempty"`
	Condition        string `json:"condition,omitempty"`
	WeightClass      string `json:"weightClass,omitempty"`
	WeightOunces     *int   `json:"weightOunces,omitempty"`
	RetailPriceCents *int   `json:"retailPriceCents,omitempty"`
	StockQuantity    int    `json:"stockQuantity,omitempty"`
	UPC              string `json:"upc,omitempty"`
	UPCMatched       bool   `json:"upcMatched,omitempty"`

	// Routing outcome, written back once per decision.
	PrimaryChannel   string     `json:"primaryChannel,omitempty"`
	SecondaryChannel string     `json:"secondaryChannel,omitempty"`
	NeedsReview      bool       `json:"needsReview,omitempty"`
	RoutedAt         *time.Time `json:"routedAt,omitempty"`

	// Quota bookkeeping for re-route release. Empty when the item has
	// never held a reservation.
	QuotaKey    string `json:"quotaKey,omitempty"`
	QuotaBucket string `json:"quotaBucket,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
