package settings

import (
	"github.com/lacarte/orderdesk/internal/service/models/money"
)

// Settings are the admin-tunable platform switches. They live in the
// settings table, not in the service config: the back-office mutates them at
// runtime.
type Settings struct {
	EnableASAP           bool        `json:"enableASAP"`
	EnableOnlinePickup   bool        `json:"enableOnlinePickup"`
	EnableOnlineDelivery bool        `json:"enableOnlineDelivery"`
	SlotLeadMinutes      int         `json:"slotLeadMinutes"`
	DeliveryFeeCents     money.Cents `json:"deliveryFeeCents"`
	FreeDeliveryMinCents money.Cents `json:"freeDeliveryMinCents"`
}

// Defaults returns the values seeded by the migrations: 20 minutes of lead
// time, 2.50 flat delivery fee, free delivery from 25.00.
func Defaults() Settings {
	return Settings{
		EnableASAP:           true,
		EnableOnlinePickup:   true,
		EnableOnlineDelivery: true,
		SlotLeadMinutes:      20,
		DeliveryFeeCents:     250,
		FreeDeliveryMinCents: 2500,
	}
}
