package models

import "time"

type OrderType string

const (
	OrderTypeRegular        OrderType = "REGULAR"
	OrderTypeWomenDriver    OrderType = "WOMEN_DRIVER"
	OrderTypeLuggage        OrderType = "LUGGAGE"
	OrderTypePremiumRegular OrderType = "PREMIUM_REGULAR"
)

func (t OrderType) Valid() bool {
	switch t {
	case OrderTypeRegular, OrderTypeWomenDriver, OrderTypeLuggage, OrderTypePremiumRegular:
		return true
	}
	return false
}

type OrderStatus string

const (
	StatusPending   OrderStatus = "PENDING"
	StatusAccepted  OrderStatus = "ACCEPTED"
	StatusEnRoute   OrderStatus = "EN_ROUTE"
	StatusCompleted OrderStatus = "COMPLETED"
	StatusCanceled  OrderStatus = "CANCELED"
)

func (s OrderStatus) Valid() bool {
	switch s {
	case StatusPending, StatusAccepted, StatusEnRoute, StatusCompleted, StatusCanceled:
		return true
	}
	return false
}

// Terminal statuses accept no further transitions.
func (s OrderStatus) Terminal() bool {
	return s == StatusCompleted || s == StatusCanceled
}

// allowedTransitions is the order state flow as code. PENDING -> ACCEPTED is
// listed for completeness but is only ever performed by the assignment path,
// which sets driver_id in the same write.
var allowedTransitions = map[OrderStatus][]OrderStatus{
	StatusPending:  {StatusAccepted, StatusCanceled},
	StatusAccepted: {StatusEnRoute, StatusCanceled},
	StatusEnRoute:  {StatusCompleted, StatusCanceled},
}

func CanTransition(from, to OrderStatus) bool {
	next, ok := allowedTransitions[from]
	if !ok {
		return false
	}
	for _, s := range next {
		if s == to {
			return true
		}
	}
	return false
}

// SeatFront is the only seat selection token with its own surcharge.
const SeatFront = "front"

type Order struct {
	ID                 int64       `json:"id"`
	ClientID           int64       `json:"client_id"`
	DriverID           *int64      `json:"driver_id"`
	FromDistrictID     int64       `json:"from_district_id"`
	ToDistrictID       int64       `json:"to_district_id"`
	FromLocation       *string     `json:"from_location"`
	ToLocation         *string     `json:"to_location"`
	PickupTime         time.Time   `json:"pickup_time"`
	Seats              int         `json:"seats"`
	SelectedSeats      []string    `json:"selected_seats"`
	OrderType          OrderType   `json:"order_type"`
	LuggageContactInfo *string     `json:"luggage_contact_info"`
	ExtraInfo          *string     `json:"extra_info"`
	TotalCost          int64       `json:"total_cost"`
	Status             OrderStatus `json:"status"`
	CreatedAt          time.Time   `json:"created_at"`
}
