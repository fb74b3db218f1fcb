package models

// Price is a route fare table entry keyed by the ordered (from, to) district
// pair. Amounts are integer sums in the smallest currency unit.
type Price struct {
	ID                      int64 `json:"id"`
	FromDistrictID          int64 `json:"from_district_id"`
	ToDistrictID            int64 `json:"to_district_id"`
	BasePricePerSeat        int64 `json:"base_price_per_seat"`
	WomenDriverPricePerSeat int64 `json:"women_driver_price_per_seat"`
	PremiumPricePerSeat     int64 `json:"premium_price_per_seat"`
	FrontSeatExtraFee       int64 `json:"front_seat_extra_fee"`
	OtherSeatExtraFee       int64 `json:"other_seat_extra_fee"`
	LuggagePrice            int64 `json:"luggage_price"`
}

// DefaultPrice is the system-wide fallback for routes with no explicit
// configuration. Absence of a price row is expected, not an error.
func DefaultPrice() *Price {
	return &Price{
		BasePricePerSeat:        150000,
		WomenDriverPricePerSeat: 150000,
		PremiumPricePerSeat:     200000,
		FrontSeatExtraFee:       20000,
		OtherSeatExtraFee:       10000,
		LuggagePrice:            10000,
	}
}
