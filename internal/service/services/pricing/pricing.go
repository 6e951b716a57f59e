package pricing

import (
	"github.com/lacarte/orderdesk/internal/service/models/catalog"
	"github.com/lacarte/orderdesk/internal/service/models/money"
	"github.com/lacarte/orderdesk/internal/service/models/order"
	"github.com/lacarte/orderdesk/internal/service/models/orderitem"
	"github.com/lacarte/orderdesk/internal/service/models/settings"
)

// ItemPrice computes the authoritative unit price of a line from the catalog
// snapshot: base price, plus the size supplement, plus the dish sauce when
// it is a priced sauce, plus every added extra. Any client-supplied price is
// ignored. Returns the first referential error encountered, in which case
// nothing about the item is trusted.
func ItemPrice(it *orderitem.OrderItem, snap *catalog.Snapshot) (money.Cents, error) {
	if err := it.Validate(); err != nil {
		return 0, err
	}

	var unit money.Cents

	switch {
	case it.DishID != nil:
		dish, err := snap.Dish(*it.DishID)
		if err != nil {
			return 0, err
		}
		unit = dish.PriceCents

		if it.VersionID != nil {
			v, err := snap.Version(*it.VersionID, dish.ID)
			if err != nil {
				return 0, err
			}
			unit += v.ExtraPriceCents
		}

		if it.DishSauceID != nil {
			sauce, err := snap.Sauce(*it.DishSauceID)
			if err != nil {
				return 0, err
			}
			if sauce.PriceCents > 0 {
				unit += sauce.PriceCents
			}
		}

	case it.SauceID != nil:
		sauce, err := snap.Sauce(*it.SauceID)
		if err != nil {
			return 0, err
		}
		unit = sauce.PriceCents
	}

	for _, extraID := range it.AddedExtraIDs {
		extra, err := snap.Extra(extraID)
		if err != nil {
			return 0, err
		}
		unit += extra.PriceCents
	}

	for _, ingID := range it.RemovedIngredientIDs {
		// Removals are free but must still reference real ingredients.
		if _, err := snap.Ingredient(ingID); err != nil {
			return 0, err
		}
	}

	return unit, nil
}

// DeliveryFee is zero for takeout and for delivery orders at or above the
// free-delivery threshold; otherwise the configured flat fee applies.
func DeliveryFee(orderType order.Type, subtotal money.Cents, cfg settings.Settings) money.Cents {
	if orderType != order.TypeDelivery {
		return 0
	}
	if subtotal >= cfg.FreeDeliveryMinCents {
		return 0
	}

	return cfg.DeliveryFeeCents
}

// PriceItems stamps the unit and total price on every line and returns the
// order subtotal. Items are mutated in place.
func PriceItems(items []orderitem.OrderItem, snap *catalog.Snapshot) (money.Cents, error) {
	var subtotal money.Cents
	for i := range items {
		unit, err := ItemPrice(&items[i], snap)
		if err != nil {
			return 0, err
		}
		items[i].UnitPriceCents = unit
		items[i].TotalPriceCents = unit * money.Cents(items[i].Quantity)
		items[i].PriceCurrency = money.CurrencyEUR
		subtotal += items[i].TotalPriceCents
	}

	return subtotal, nil
}
