// internal/routing/normalize.go
package routing

import (
	"sort"
	"strings"

	stderrors "marketplace-routing/internal/common/errors"

	"marketplace-routing/internal/models"
)

// Attributes is the raw, possibly partial attribute set read off an
// inventory record before validation.
type Attributes struct {
	Brand            string
	BrandTier        string
	Condition        string
	WeightClass      string
	WeightOunces     *int
	Category         string
	RetailPriceCents *int
	StockQuantity    int
	UPCMatched       bool
}

// AttributesFromItem projects an inventory record onto the raw attribute
// set the normalizer consumes.
func AttributesFromItem(item *models.Item) Attributes {
	return Attributes{
		Brand:            item.Brand,
		BrandTier:        item.BrandTier,
		Condition:        item.Condition,
		WeightClass:      item.WeightClass,
		WeightOunces:     item.WeightOunces,
		Category:         item.Category,
		RetailPriceCents: item.RetailPriceCents,
		StockQuantity:    item.StockQuantity,
		UPCMatched:       item.UPCMatched,
	}
}

// Normalize validates raw attributes into a RoutingInput. It returns the
// sorted list of missing mandatory fields when the record is incomplete
// (a routing outcome, not an error), or a validation error when a field
// carries an unknown enum value. The rest of the pipeline never sees a
// malformed enum. Pure function, no I/O.
func Normalize(attrs Attributes, cfg Config) (RoutingInput, []string, error) {
	var in RoutingInput
	var missing []string

	switch tier, ok := parseBrandTier(attrs.BrandTier); {
	case attrs.BrandTier == "":
		missing = append(missing, "brandTier")
	case !ok:
		return RoutingInput{}, nil, stderrors.NewInvalidAttributeError("brandTier", attrs.BrandTier)
	default:
		in.BrandTier = tier
	}

	switch cond, ok := parseCondition(attrs.Condition); {
	case attrs.Condition == "":
		missing = append(missing, "condition")
	case !ok:
		return RoutingInput{}, nil, stderrors.NewInvalidAttributeError("condition", attrs.Condition)
	default:
		in.Condition = cond
	}

	switch wc, ok := parseWeightClass(attrs.WeightClass); {
	case attrs.WeightClass != "" && !ok:
		return RoutingInput{}, nil, stderrors.NewInvalidAttributeError("weightClass", attrs.WeightClass)
	case attrs.WeightClass != "":
		in.WeightClass = wc
	case attrs.WeightOunces != nil:
		// Scanned records often carry only a raw weight. The explicit
		// class wins when both are present.
		in.WeightClass = classifyWeight(*attrs.WeightOunces, cfg.HeavyWeightThresholdOunces)
	default:
		missing = append(missing, "weightClass")
	}

	if len(missing) > 0 {
		sort.Strings(missing)
		return RoutingInput{}, missing, nil
	}

	if attrs.RetailPriceCents != nil && *attrs.RetailPriceCents < 0 {
		return RoutingInput{}, nil, stderrors.NewInvalidAttributeError("retailPriceCents", "negative")
	}

	in.Brand = strings.TrimSpace(attrs.Brand)
	in.Category = strings.TrimSpace(attrs.Category)
	in.RetailPriceCents = attrs.RetailPriceCents
	in.StockQuantity = attrs.StockQuantity
	if in.StockQuantity < 1 {
		in.StockQuantity = 1
	}
	in.UPCMatched = attrs.UPCMatched

	return in, nil, nil
}

func canonical(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.ReplaceAll(s, "-", "_")
	s = strings.ReplaceAll(s, " ", "_")
	return s
}

func parseBrandTier(s string) (BrandTier, bool) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "A":
		return TierA, true
	case "B":
		return TierB, true
	case "C":
		return TierC, true
	}
	return "", false
}

func parseCondition(s string) (Condition, bool) {
	switch canonical(s) {
	case "new":
		return ConditionNew, true
	case "like_new", "likenew":
		return ConditionLikeNew, true
	case "good":
		return ConditionGood, true
	case "acceptable":
		return ConditionAcceptable, true
	case "parts_damaged", "parts", "damaged":
		return ConditionPartsDamaged, true
	}
	return "", false
}

func parseWeightClass(s string) (WeightClass, bool) {
	switch canonical(s) {
	case "light":
		return WeightLight, true
	case "medium":
		return WeightMedium, true
	case "heavy":
		return WeightHeavy, true
	}
	return "", false
}

func classifyWeight(ounces, heavyThreshold int) WeightClass {
	if ounces >= heavyThreshold {
		return WeightHeavy
	}
	if ounces <= lightWeightMaxOunces {
		return WeightLight
	}
	return WeightMedium
}

// lightWeightMaxOunces caps the light bucket when the class is derived
// from a raw weight. One pound covers typical envelope shipping.
const lightWeightMaxOunces = 16
