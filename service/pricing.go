package service

import (
	"taxidispatch/pkg/models"
)

// ComputeTotal computes the total fare for an order against a resolved price
// entry. Pure: the same inputs always yield the same total. Seat/type
// combinations are validated at creation, before pricing runs.
func ComputeTotal(order *models.Order, price *models.Price) int64 {
	if order.OrderType == models.OrderTypeLuggage {
		return price.LuggagePrice
	}

	var rate int64
	switch order.OrderType {
	case models.OrderTypePremiumRegular:
		rate = price.PremiumPricePerSeat
	case models.OrderTypeWomenDriver:
		rate = price.WomenDriverPricePerSeat
	default:
		rate = price.BasePricePerSeat
	}

	total := rate * int64(order.Seats)
	for _, seat := range order.SelectedSeats {
		if seat == models.SeatFront {
			total += price.FrontSeatExtraFee
		} else {
			total += price.OtherSeatExtraFee
		}
	}
	return total
}

// ComputeFee computes the platform commission debited from the driver wallet
// when an order completes.
func ComputeFee(order *models.Order, feePerSeat, luggageFlatFee int64) int64 {
	fee := feePerSeat * int64(order.Seats)
	if order.OrderType == models.OrderTypeLuggage {
		fee += luggageFlatFee
	}
	return fee
}
