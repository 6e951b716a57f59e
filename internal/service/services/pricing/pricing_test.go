package pricing_test

import (
	"testing"
	"time"

	"github.com/lacarte/orderdesk/internal/service/models/catalog"
	"github.com/lacarte/orderdesk/internal/service/models/money"
	"github.com/lacarte/orderdesk/internal/service/models/order"
	"github.com/lacarte/orderdesk/internal/service/models/orderitem"
	"github.com/lacarte/orderdesk/internal/service/models/settings"
	"github.com/lacarte/orderdesk/internal/service/services/pricing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr(v int64) *int64 { return &v }

func testSnapshot() *catalog.Snapshot {
	return &catalog.Snapshot{
		Dishes: map[int64]catalog.Dish{
			1: {ID: 1, Title: "Tartiflette", PriceCents: 800, Available: true},
			2: {ID: 2, Title: "Retired dish", PriceCents: 700, Available: false},
		},
		Sauces: map[int64]catalog.Sauce{
			10: {ID: 10, Title: "Aioli", PriceCents: 450, Available: true},
			11: {ID: 11, Title: "House sauce", PriceCents: 0, Available: true},
			12: {ID: 12, Title: "Truffle sauce", PriceCents: 120, Available: true},
		},
		Versions: map[int64]catalog.Version{
			100: {ID: 100, DishID: 1, Size: "large", ExtraPriceCents: 200},
		},
		Extras: map[int64]catalog.Extra{
			20: {ID: 20, Title: "Cheese", PriceCents: 150, Available: true},
		},
		Ingredients: map[int64]catalog.Ingredient{
			30: {ID: 30, Title: "Onions"},
		},
		TakenAt: time.Now(),
	}
}

func TestItemPrice_Dish(t *testing.T) {
	it := &orderitem.OrderItem{DishID: ptr(1), Quantity: 2}

	unit, err := pricing.ItemPrice(it, testSnapshot())
	require.NoError(t, err)
	assert.Equal(t, money.Cents(800), unit)
}

func TestItemPrice_DishWithVersionAndPricedSauce(t *testing.T) {
	it := &orderitem.OrderItem{
		DishID:      ptr(1),
		VersionID:   ptr(100),
		DishSauceID: ptr(12),
		Quantity:    1,
	}

	unit, err := pricing.ItemPrice(it, testSnapshot())
	require.NoError(t, err)
	// 8.00 base + 2.00 size supplement + 1.20 priced sauce.
	assert.Equal(t, money.Cents(1120), unit)
}

func TestItemPrice_FreeDishSauceAddsNothing(t *testing.T) {
	it := &orderitem.OrderItem{DishID: ptr(1), DishSauceID: ptr(11), Quantity: 1}

	unit, err := pricing.ItemPrice(it, testSnapshot())
	require.NoError(t, err)
	assert.Equal(t, money.Cents(800), unit)
}

func TestItemPrice_SauceWithExtra(t *testing.T) {
	it := &orderitem.OrderItem{
		SauceID:       ptr(10),
		AddedExtraIDs: []int64{20},
		Quantity:      1,
	}

	unit, err := pricing.ItemPrice(it, testSnapshot())
	require.NoError(t, err)
	assert.Equal(t, money.Cents(600), unit)
}

func TestItemPrice_UnavailableDishIsRejected(t *testing.T) {
	it := &orderitem.OrderItem{DishID: ptr(2), Quantity: 1}

	_, err := pricing.ItemPrice(it, testSnapshot())
	assert.ErrorIs(t, err, catalog.ErrUnavailable)
}

func TestItemPrice_UnknownReferencesAreRejected(t *testing.T) {
	_, err := pricing.ItemPrice(&orderitem.OrderItem{DishID: ptr(99), Quantity: 1}, testSnapshot())
	assert.ErrorIs(t, err, catalog.ErrUnknownDish)

	_, err = pricing.ItemPrice(&orderitem.OrderItem{DishID: ptr(1), VersionID: ptr(999), Quantity: 1}, testSnapshot())
	assert.ErrorIs(t, err, catalog.ErrUnknownVersion)

	_, err = pricing.ItemPrice(&orderitem.OrderItem{DishID: ptr(1), AddedExtraIDs: []int64{99}, Quantity: 1}, testSnapshot())
	assert.ErrorIs(t, err, catalog.ErrUnknownExtra)

	_, err = pricing.ItemPrice(&orderitem.OrderItem{DishID: ptr(1), RemovedIngredientIDs: []int64{99}, Quantity: 1}, testSnapshot())
	assert.ErrorIs(t, err, catalog.ErrUnknownIngredient)
}

func TestItemPrice_VersionMustBelongToDish(t *testing.T) {
	snap := testSnapshot()
	snap.Dishes[3] = catalog.Dish{ID: 3, Title: "Other dish", PriceCents: 900, Available: true}

	_, err := pricing.ItemPrice(&orderitem.OrderItem{DishID: ptr(3), VersionID: ptr(100), Quantity: 1}, snap)
	assert.ErrorIs(t, err, catalog.ErrUnknownVersion)
}

func TestPriceItems_Subtotal(t *testing.T) {
	items := []orderitem.OrderItem{
		{DishID: ptr(1), Quantity: 2},
		{SauceID: ptr(10), AddedExtraIDs: []int64{20}, Quantity: 1},
	}

	subtotal, err := pricing.PriceItems(items, testSnapshot())
	require.NoError(t, err)

	// 8.00 x 2 + (4.50 + 1.50) x 1 = 22.00
	assert.Equal(t, money.Cents(2200), subtotal)
	assert.Equal(t, money.Cents(800), items[0].UnitPriceCents)
	assert.Equal(t, money.Cents(1600), items[0].TotalPriceCents)
	assert.Equal(t, money.Cents(600), items[1].TotalPriceCents)
	assert.Equal(t, money.CurrencyEUR, items[0].PriceCurrency)
}

func TestDeliveryFee(t *testing.T) {
	cfg := settings.Defaults()

	// Takeout never carries a fee.
	assert.Equal(t, money.Cents(0), pricing.DeliveryFee(order.TypeTakeout, 500, cfg))

	// Below the threshold the flat fee applies: 24.99 + 2.50 = 27.49.
	assert.Equal(t, money.Cents(250), pricing.DeliveryFee(order.TypeDelivery, 2499, cfg))

	// At the threshold delivery is free.
	assert.Equal(t, money.Cents(0), pricing.DeliveryFee(order.TypeDelivery, 2500, cfg))
}
