package model

import "github.com/shopspring/decimal"

// Commission is the share of the delivery fee paid to the rider.
var Commission = decimal.RequireFromString("0.65")

func RiderEarning(deliveryFee decimal.Decimal) decimal.Decimal {
	return deliveryFee.Mul(Commission).Round(2)
}
