// internal/store/items.go

// Package store persists inventory items and their routing decisions in
// PostgreSQL.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	stderrors "marketplace-routing/internal/common/errors"
	"marketplace-routing/internal/common/logger"
	"marketplace-routing/internal/models"
	"marketplace-routing/internal/routing"
	"marketplace-routing/internal/routing/quota"
)

// ItemStore reads and writes the items table.
type ItemStore struct {
	db     *sql.DB
	logger logger.Logger
}

// NewItemStore creates a store on top of the given database handle.
func NewItemStore(db *sql.DB, log logger.Logger) *ItemStore {
	return &ItemStore{
		db:     db,
		logger: log.WithFields(map[string]interface{}{"component": "item-store"}),
	}
}

const itemColumns = `id, sku, title, brand, category, brand_tier, condition, weight_class,
	weight_ounces, retail_price_cents, stock_quantity, upc, upc_matched,
	primary_channel, secondary_channel, needs_review, routed_at,
	quota_key, quota_bucket, created_at, updated_at`

// GetItem loads one item by ID.
func (s *ItemStore) GetItem(ctx context.Context, id string) (*models.Item, error) {
	row := s.db.QueryRowContext(ctx, fmt.Sprintf(`
		SELECT %s FROM items WHERE id = $1`, itemColumns), id)

	var item models.Item
	var sku, title, brand, category, brandTier, condition, weightClass sql.NullString
	var primary, secondary, quotaKey, quotaBucket, upc sql.NullString
	var weightOunces, retailPriceCents sql.NullInt64
	var routedAt sql.NullTime

	err := row.Scan(
		&item.ID, &sku, &title, &brand, &category, &brandTier, &condition, &weightClass,
		&weightOunces, &retailPriceCents, &item.StockQuantity, &upc, &item.UPCMatched,
		&primary, &secondary, &item.NeedsReview, &routedAt,
		&quotaKey, &quotaBucket, &item.CreatedAt, &item.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, stderrors.NewItemNotFoundError(id)
	}
	if err != nil {
		return nil, fmt.Errorf("load item %s: %w", id, err)
	}

	item.SKU = sku.String
	item.Title = title.String
	item.Brand = brand.String
	item.Category = category.String
	item.BrandTier = brandTier.String
	item.Condition = condition.String
	item.WeightClass = weightClass.String
	item.UPC = upc.String
	item.PrimaryChannel = primary.String
	item.SecondaryChannel = secondary.String
	item.QuotaKey = quotaKey.String
	item.QuotaBucket = quotaBucket.String
	if weightOunces.Valid {
		v := int(weightOunces.Int64)
		item.WeightOunces = &v
	}
	if retailPriceCents.Valid {
		v := int(retailPriceCents.Int64)
		item.RetailPriceCents = &v
	}
	if routedAt.Valid {
		t := routedAt.Time
		item.RoutedAt = &t
	}

	return &item, nil
}

// CreateItem inserts a new inventory record.
func (s *ItemStore) CreateItem(ctx context.Context, item *models.Item) error {
	now := time.Now().UTC()
	item.CreatedAt = now
	item.UpdatedAt = now

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO items (id, sku, title, brand, category, brand_tier, condition, weight_class,
			weight_ounces, retail_price_cents, stock_quantity, upc, upc_matched, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`,
		item.ID, nullable(item.SKU), nullable(item.Title), nullable(item.Brand), nullable(item.Category),
		nullable(item.BrandTier), nullable(item.Condition), nullable(item.WeightClass),
		nullableInt(item.WeightOunces), nullableInt(item.RetailPriceCents), item.StockQuantity,
		nullable(item.UPC), item.UPCMatched, item.CreatedAt, item.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert item %s: %w", item.ID, err)
	}
	return nil
}

// SaveDecision writes the decision and quota bookkeeping onto the item in
// a single statement, so the decision and its reservation marker commit
// together.
func (s *ItemStore) SaveDecision(ctx context.Context, itemID string, d *routing.Decision, quotaKey string, bucket quota.Bucket) error {
	decisionJSON, err := json.Marshal(d)
	if err != nil {
		return fmt.Errorf("marshal decision: %w", err)
	}

	bucketStr := string(bucket)
	if quotaKey == "" {
		bucketStr = ""
	}

	res, err := s.db.ExecContext(ctx, `
		UPDATE items
		SET routing_decision = $2,
			primary_channel = $3,
			secondary_channel = $4,
			needs_review = $5,
			quota_key = $6,
			quota_bucket = $7,
			routed_at = NOW(),
			updated_at = NOW()
		WHERE id = $1`,
		itemID, decisionJSON,
		nullable(string(d.Primary)), nullable(string(d.Secondary)), d.NeedsReview,
		nullable(quotaKey), nullable(bucketStr),
	)
	if err != nil {
		return fmt.Errorf("save decision for item %s: %w", itemID, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return stderrors.NewItemNotFoundError(itemID)
	}

	s.logger.Debug("decision saved", map[string]interface{}{
		"itemId":   itemID,
		"primary":  string(d.Primary),
		"quotaKey": quotaKey,
	})
	return nil
}

func nullable(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullableInt(v *int) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*v), Valid: true}
}
