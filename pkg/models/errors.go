package models

import (
	"errors"
	"fmt"
)

// Domain error taxonomy. Flag-style failures are sentinels; failures that
// carry data are structs matched with errors.As.
var (
	ErrOrderNotFound    = errors.New("order not found")
	ErrDriverNotFound   = errors.New("driver not found")
	ErrPriceNotFound    = errors.New("no price configured for route")
	ErrDistrictNotFound = errors.New("district not found")

	// ErrNotAcceptable: the order left PENDING before the claim landed.
	ErrNotAcceptable = errors.New("order is not in an acceptable status")
	// ErrNotAuthorized: the actor does not own the order it is acting on.
	ErrNotAuthorized = errors.New("actor is not authorized for this order")
	// ErrNotEligible: driver is unapproved or has an incomplete profile.
	ErrNotEligible = errors.New("driver is not eligible for the order feed")
	// ErrOrderTerminal: COMPLETED and CANCELED orders accept no transitions.
	ErrOrderTerminal = errors.New("order is in a terminal status")
	// ErrDataIntegrity marks invariant violations. Never expected, never
	// retried, always surfaced.
	ErrDataIntegrity = errors.New("data integrity violation")
)

// ValidationError reports malformed or policy-violating request input.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

func Validationf(format string, args ...any) error {
	return &ValidationError{Msg: fmt.Sprintf(format, args...)}
}

// InvalidRouteError reports a district reference that does not resolve.
type InvalidRouteError struct {
	DistrictID int64
}

func (e *InvalidRouteError) Error() string {
	return fmt.Sprintf("invalid district id %d", e.DistrictID)
}

// IllegalTransitionError reports a status transition outside the table,
// including no-op transitions to the current status.
type IllegalTransitionError struct {
	From OrderStatus
	To   OrderStatus
}

func (e *IllegalTransitionError) Error() string {
	return fmt.Sprintf("illegal transition %s -> %s", e.From, e.To)
}

// AlreadyAssignedError is the expected outcome for the losing side of an
// assignment race. It names the winning driver.
type AlreadyAssignedError struct {
	DriverID int64
}

func (e *AlreadyAssignedError) Error() string {
	return fmt.Sprintf("order already assigned to driver %d", e.DriverID)
}
