package model

import "time"

// ShippingMethod selects delivery speed and fee.
type ShippingMethod string

const (
	ShippingStandard ShippingMethod = "Standard"
	ShippingExpress  ShippingMethod = "Express"
	ShippingNextDay  ShippingMethod = "Next Day"
)

// FreeShippingThreshold is the subtotal from which standard shipping is free.
const FreeShippingThreshold Money = 10000

// Valid reports whether method is offered at checkout.
func (m ShippingMethod) Valid() bool {
	switch m {
	case ShippingStandard, ShippingExpress, ShippingNextDay:
		return true
	}
	return false
}

// DeliveryWindow is the expected transit time once the order ships.
func (m ShippingMethod) DeliveryWindow() time.Duration {
	switch m {
	case ShippingExpress:
		return 2 * 24 * time.Hour
	case ShippingNextDay:
		return 24 * time.Hour
	default:
		return 5 * 24 * time.Hour
	}
}

// ShippingCost maps shipping method and order subtotal to the shipping fee.
func ShippingCost(method ShippingMethod, subtotal Money) Money {
	switch method {
	case ShippingStandard:
		if subtotal >= FreeShippingThreshold {
			return 0
		}
		return 1000
	case ShippingExpress:
		return 1500
	case ShippingNextDay:
		return 2500
	default:
		return 1000
	}
}
