// internal/api/schema.go
package api

// intakeSchema validates routing request payloads at the HTTP boundary.
// It checks shapes and ranges only; enum interpretation (and the
// missing-field outcome) belongs to the routing normalizer.
const intakeSchema = `{
	"type": "object",
	"properties": {
		"id": {"type": "string"},
		"sku": {"type": "string"},
		"title": {"type": "string"},
		"brand": {"type": "string"},
		"category": {"type": "string"},
		"brandTier": {"type": "string"},
		"condition": {"type": "string"},
		"weightClass": {"type": "string"},
		"weightOunces": {"type": "integer", "minimum": 0},
		"retailPriceCents": {"type": "integer", "minimum": 0},
		"stockQuantity": {"type": "integer", "minimum": 1},
		"upc": {"type": "string"},
		"upcMatched": {"type": "boolean"}
	},
	"additionalProperties": false
}`
