package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMergeLinesSumsDuplicateItems(t *testing.T) {
	got := MergeLines([]ItemQty{
		{CatalogItemID: "b", Quantity: 2},
		{CatalogItemID: "a", Quantity: 1},
		{CatalogItemID: "b", Quantity: 1},
	})
	assert.Equal(t, []ItemQty{{CatalogItemID: "a", Quantity: 1}, {CatalogItemID: "b", Quantity: 3}}, got)
}

func TestMergeLinesEmpty(t *testing.T) {
	assert.Empty(t, MergeLines(nil))
}

func TestOrderStatusValid(t *testing.T) {
	for _, s := range []OrderStatus{OrderPending, OrderConfirmed, OrderOutOfStock, OrderCancelled, OrderCompleted} {
		assert.True(t, s.Valid(), s)
	}
	for _, s := range []OrderStatus{"", "reserved", "PENDING"} {
		assert.False(t, s.Valid(), s)
	}
}
