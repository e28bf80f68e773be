// internal/routing/normalize_test.go
package routing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	stderrors "marketplace-routing/internal/common/errors"
)

func testConfig() Config {
	return Config{
		HeavyWeightThresholdOunces: 150,
		HighValueBrandRatio:        10,
		QuotaTrackedTiers:          []string{"A"},
	}
}

func intPtr(v int) *int { return &v }

func TestNormalize_Complete(t *testing.T) {
	attrs := Attributes{
		Brand:            "Acme",
		BrandTier:        "B",
		Condition:        "New",
		WeightClass:      "Light",
		Category:         "Toys",
		RetailPriceCents: intPtr(5000),
		StockQuantity:    10,
		UPCMatched:       true,
	}

	in, missing, err := Normalize(attrs, testConfig())
	require.NoError(t, err)
	assert.Empty(t, missing)
	assert.Equal(t, TierB, in.BrandTier)
	assert.Equal(t, ConditionNew, in.Condition)
	assert.Equal(t, WeightLight, in.WeightClass)
	assert.Equal(t, "Acme", in.Brand)
	assert.Equal(t, 10, in.StockQuantity)
	assert.True(t, in.UPCMatched)
	require.NotNil(t, in.RetailPriceCents)
	assert.Equal(t, 5000, *in.RetailPriceCents)
}

func TestNormalize_MissingFields(t *testing.T) {
	tests := []struct {
		name    string
		attrs   Attributes
		missing []string
	}{
		{
			name:    "everything missing",
			attrs:   Attributes{},
			missing: []string{"brandTier", "condition", "weightClass"},
		},
		{
			name:    "only tier present",
			attrs:   Attributes{BrandTier: "A"},
			missing: []string{"condition", "weightClass"},
		},
		{
			name:    "weight satisfied by ounces",
			attrs:   Attributes{WeightOunces: intPtr(12)},
			missing: []string{"brandTier", "condition"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, missing, err := Normalize(tt.attrs, testConfig())
			require.NoError(t, err)
			assert.Equal(t, tt.missing, missing)
		})
	}
}

func TestNormalize_InvalidEnums(t *testing.T) {
	tests := []struct {
		name  string
		attrs Attributes
	}{
		{"bad tier", Attributes{BrandTier: "S", Condition: "new", WeightClass: "light"}},
		{"bad condition", Attributes{BrandTier: "A", Condition: "mint", WeightClass: "light"}},
		{"bad weight class", Attributes{BrandTier: "A", Condition: "new", WeightClass: "feather"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, missing, err := Normalize(tt.attrs, testConfig())
			require.Error(t, err)
			assert.Empty(t, missing)
			assert.Equal(t, stderrors.ErrCodeInvalidAttributeValue, stderrors.CodeOf(err))
		})
	}
}

func TestNormalize_EnumAliases(t *testing.T) {
	in, missing, err := Normalize(Attributes{
		BrandTier:   "b",
		Condition:   "Like-New",
		WeightClass: "HEAVY",
	}, testConfig())
	require.NoError(t, err)
	assert.Empty(t, missing)
	assert.Equal(t, TierB, in.BrandTier)
	assert.Equal(t, ConditionLikeNew, in.Condition)
	assert.Equal(t, WeightHeavy, in.WeightClass)
}

func TestNormalize_WeightFromOunces(t *testing.T) {
	tests := []struct {
		name   string
		ounces int
		want   WeightClass
	}{
		{"envelope weight is light", 8, WeightLight},
		{"boundary of light", 16, WeightLight},
		{"between light and heavy", 40, WeightMedium},
		{"at heavy threshold", 150, WeightHeavy},
		{"over heavy threshold", 400, WeightHeavy},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in, missing, err := Normalize(Attributes{
				BrandTier:    "A",
				Condition:    "good",
				WeightOunces: intPtr(tt.ounces),
			}, testConfig())
			require.NoError(t, err)
			assert.Empty(t, missing)
			assert.Equal(t, tt.want, in.WeightClass)
		})
	}
}

func TestNormalize_ExplicitClassWinsOverOunces(t *testing.T) {
	in, _, err := Normalize(Attributes{
		BrandTier:    "A",
		Condition:    "good",
		WeightClass:  "light",
		WeightOunces: intPtr(999),
	}, testConfig())
	require.NoError(t, err)
	assert.Equal(t, WeightLight, in.WeightClass)
}

func TestNormalize_StockDefaultsToOne(t *testing.T) {
	in, _, err := Normalize(Attributes{
		BrandTier:   "C",
		Condition:   "good",
		WeightClass: "medium",
	}, testConfig())
	require.NoError(t, err)
	assert.Equal(t, 1, in.StockQuantity)
}

func TestNormalize_NegativePriceRejected(t *testing.T) {
	_, _, err := Normalize(Attributes{
		BrandTier:        "C",
		Condition:        "good",
		WeightClass:      "medium",
		RetailPriceCents: intPtr(-1),
	}, testConfig())
	require.Error(t, err)
	assert.Equal(t, stderrors.ErrCodeInvalidAttributeValue, stderrors.CodeOf(err))
}
