package catalog

import (
	"errors"
	"time"

	"github.com/lacarte/orderdesk/internal/service/models/money"
)

var (
	ErrUnknownDish       = errors.New("unknown dish")
	ErrUnknownSauce      = errors.New("unknown sauce")
	ErrUnknownVersion    = errors.New("unknown dish version")
	ErrUnknownExtra      = errors.New("unknown extra")
	ErrUnknownIngredient = errors.New("unknown ingredient")
	ErrUnavailable       = errors.New("product is not available")
)

// Dish is a menu dish.
type Dish struct {
	ID         int64       `json:"id"`
	Title      string      `json:"title"`
	PriceCents money.Cents `json:"priceCents"`
	Available  bool        `json:"available"`
}

// Sauce is a sauce sold on its own or attached to a dish.
type Sauce struct {
	ID         int64       `json:"id"`
	Title      string      `json:"title"`
	PriceCents money.Cents `json:"priceCents"`
	Available  bool        `json:"available"`
}

// Version is a size variant of a dish with a price supplement.
type Version struct {
	ID              int64       `json:"id"`
	DishID          int64       `json:"dishId"`
	Size            string      `json:"size"`
	ExtraPriceCents money.Cents `json:"extraPriceCents"`
}

// Extra is an optional paid addition to a dish.
type Extra struct {
	ID         int64       `json:"id"`
	Title      string      `json:"title"`
	PriceCents money.Cents `json:"priceCents"`
	Available  bool        `json:"available"`
}

// Ingredient is a default component of a dish that the customer may remove.
type Ingredient struct {
	ID    int64  `json:"id"`
	Title string `json:"title"`
}

// Snapshot is the catalog as it existed at a single point in time. An order
// is validated and priced against exactly one snapshot, so a price update
// racing with checkout cannot leave the order half-priced.
type Snapshot struct {
	Dishes      map[int64]Dish
	Sauces      map[int64]Sauce
	Versions    map[int64]Version
	Extras      map[int64]Extra
	Ingredients map[int64]Ingredient
	TakenAt     time.Time
}

// Dish resolves a dish reference. Unavailable dishes are treated the same as
// unknown ones: the submission is rejected.
func (s *Snapshot) Dish(id int64) (Dish, error) {
	d, ok := s.Dishes[id]
	if !ok {
		return Dish{}, ErrUnknownDish
	}
	if !d.Available {
		return Dish{}, ErrUnavailable
	}

	return d, nil
}

func (s *Snapshot) Sauce(id int64) (Sauce, error) {
	sc, ok := s.Sauces[id]
	if !ok {
		return Sauce{}, ErrUnknownSauce
	}
	if !sc.Available {
		return Sauce{}, ErrUnavailable
	}

	return sc, nil
}

// Version resolves a size variant and checks it belongs to the given dish.
func (s *Snapshot) Version(id, dishID int64) (Version, error) {
	v, ok := s.Versions[id]
	if !ok || v.DishID != dishID {
		return Version{}, ErrUnknownVersion
	}

	return v, nil
}

func (s *Snapshot) Extra(id int64) (Extra, error) {
	e, ok := s.Extras[id]
	if !ok {
		return Extra{}, ErrUnknownExtra
	}
	if !e.Available {
		return Extra{}, ErrUnavailable
	}

	return e, nil
}

func (s *Snapshot) Ingredient(id int64) (Ingredient, error) {
	ing, ok := s.Ingredients[id]
	if !ok {
		return Ingredient{}, ErrUnknownIngredient
	}

	return ing, nil
}
