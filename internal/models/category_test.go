package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAllCategories_ClosedSetOfEight(t *testing.T) {
	categories := AllCategories()
	assert.Len(t, categories, 8)

	for _, category := range categories {
		assert.True(t, IsValidCategory(category), "%s should be valid", category)
	}
}

func TestIsValidCategory_RejectsUnknown(t *testing.T) {
	for _, category := range []string{"", "food", "FUEL", "bill payment"} {
		assert.False(t, IsValidCategory(category), "%q should be invalid", category)
	}
}

func TestCategoryLabelAndColor(t *testing.T) {
	assert.Equal(t, "Bill Payment", CategoryLabel(CategoryBillPayment))
	assert.Equal(t, "#f97316", CategoryColor(CategoryFuel))

	// Unknown keys fall back rather than returning empty presentation data.
	assert.Equal(t, "crypto", CategoryLabel("crypto"))
	assert.Equal(t, CategoryColor(CategoryOther), CategoryColor("crypto"))
}

func TestCategories_CatalogOrderMatchesEnum(t *testing.T) {
	catalog := Categories()
	keys := AllCategories()

	assert.Len(t, catalog, len(keys))
	for i, info := range catalog {
		assert.Equal(t, keys[i], info.Key)
		assert.NotEmpty(t, info.Label)
		assert.NotEmpty(t, info.Color)
	}
}
