package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"taxidispatch/pkg/logger"
	"taxidispatch/pkg/models"
	"taxidispatch/storage"
)

// Non-LUGGAGE orders carry between 1 and 4 passengers.
const maxSeatsPerOrder = 4

type CreateOrderRequest struct {
	ClientID           int64
	FromDistrictID     int64
	ToDistrictID       int64
	FromLocation       *string
	ToLocation         *string
	PickupTime         time.Time
	Seats              int
	SelectedSeats      []string
	OrderType          models.OrderType
	LuggageContactInfo *string
	ExtraInfo          *string
}

type OrderService interface {
	Create(ctx context.Context, req CreateOrderRequest) (*models.Order, error)
	Accept(ctx context.Context, orderID, driverID int64) (*models.Order, error)
	ManualAssign(ctx context.Context, orderID, driverID int64) (*models.Order, error)
	AdvanceStatus(ctx context.Context, actor models.Actor, orderID int64, target models.OrderStatus) (*models.Order, error)
	Get(ctx context.Context, actor models.Actor, orderID int64) (*models.Order, error)
	ResolvePrice(ctx context.Context, fromDistrictID, toDistrictID int64) (*models.Price, error)
	ClientHistory(ctx context.Context, clientID int64, status *models.OrderStatus) ([]*models.Order, error)
	ClientActiveOrders(ctx context.Context, clientID int64) ([]*models.Order, error)
	UnassignedPending(ctx context.Context, filter storage.UnassignedFilter) ([]*models.Order, error)
	OrdersByStatuses(ctx context.Context, statuses []models.OrderStatus) ([]*models.Order, error)
	StuckOrders(ctx context.Context, olderThan time.Time) ([]*models.Order, error)
}

type orderService struct {
	stg      storage.IStorage
	log      logger.ILogger
	notifier Notifier
	fees     Fees
}

func NewOrderService(stg storage.IStorage, log logger.ILogger, notifier Notifier, fees Fees) OrderService {
	return &orderService{
		stg:      stg,
		log:      log,
		notifier: notifier,
		fees:     fees,
	}
}

func (s *orderService) Create(ctx context.Context, req CreateOrderRequest) (*models.Order, error) {
	if !req.OrderType.Valid() {
		return nil, models.Validationf("unknown order type %q", req.OrderType)
	}
	if req.FromDistrictID == req.ToDistrictID {
		return nil, models.Validationf("from and to districts cannot be the same")
	}
	if req.PickupTime.Before(time.Now()) {
		return nil, models.Validationf("pickup time must be in the present or future")
	}

	if req.OrderType == models.OrderTypeLuggage {
		if req.LuggageContactInfo == nil || strings.TrimSpace(*req.LuggageContactInfo) == "" {
			return nil, models.Validationf("LUGGAGE orders must include contact information")
		}
		if req.Seats != 0 {
			return nil, models.Validationf("LUGGAGE orders carry no passenger seats")
		}
		if len(req.SelectedSeats) > 0 {
			return nil, models.Validationf("LUGGAGE orders cannot have seat selections")
		}
	} else {
		if req.Seats < 1 || req.Seats > maxSeatsPerOrder {
			return nil, models.Validationf("seats must be between 1 and %d", maxSeatsPerOrder)
		}
		if req.LuggageContactInfo != nil && strings.TrimSpace(*req.LuggageContactInfo) != "" {
			return nil, models.Validationf("contact information is only for LUGGAGE orders")
		}
	}

	price, err := s.ResolvePrice(ctx, req.FromDistrictID, req.ToDistrictID)
	if err != nil {
		return nil, err
	}

	order := &models.Order{
		ClientID:           req.ClientID,
		FromDistrictID:     req.FromDistrictID,
		ToDistrictID:       req.ToDistrictID,
		FromLocation:       req.FromLocation,
		ToLocation:         req.ToLocation,
		PickupTime:         req.PickupTime,
		Seats:              req.Seats,
		SelectedSeats:      req.SelectedSeats,
		OrderType:          req.OrderType,
		LuggageContactInfo: req.LuggageContactInfo,
		ExtraInfo:          req.ExtraInfo,
		Status:             models.StatusPending,
	}
	order.TotalCost = ComputeTotal(order, price)

	created, err := s.stg.Order().Create(ctx, order)
	if err != nil {
		return nil, err
	}

	s.log.Info("new order created",
		logger.Int64("order_id", created.ID),
		logger.Int64("client_id", created.ClientID),
		logger.Int64("from_district", created.FromDistrictID),
		logger.Int64("to_district", created.ToDistrictID),
		logger.Int64("total_cost", created.TotalCost),
	)
	s.notifier.OrderCreated(ctx, created)
	return created, nil
}

// ResolvePrice resolves the route fare entry, falling back to the system
// default when no explicit row exists. Missing configuration is expected;
// missing districts are not.
func (s *orderService) ResolvePrice(ctx context.Context, fromDistrictID, toDistrictID int64) (*models.Price, error) {
	if _, err := s.stg.District().GetByID(ctx, fromDistrictID); err != nil {
		if errors.Is(err, models.ErrDistrictNotFound) {
			return nil, &models.InvalidRouteError{DistrictID: fromDistrictID}
		}
		return nil, err
	}
	if _, err := s.stg.District().GetByID(ctx, toDistrictID); err != nil {
		if errors.Is(err, models.ErrDistrictNotFound) {
			return nil, &models.InvalidRouteError{DistrictID: toDistrictID}
		}
		return nil, err
	}

	price, err := s.stg.Price().GetByRoute(ctx, fromDistrictID, toDistrictID)
	if errors.Is(err, models.ErrPriceNotFound) {
		s.log.Warning("no price configured for route, using default",
			logger.Int64("from_district", fromDistrictID),
			logger.Int64("to_district", toDistrictID),
		)
		return models.DefaultPrice(), nil
	}
	if err != nil {
		return nil, err
	}
	return price, nil
}

func (s *orderService) Accept(ctx context.Context, orderID, driverID int64) (*models.Order, error) {
	order, err := s.claim(ctx, orderID, driverID)
	if err != nil {
		return nil, err
	}
	s.log.Info("driver accepted order",
		logger.Int64("order_id", orderID), logger.Int64("driver_id", driverID))
	s.notifier.OrderAccepted(ctx, order)
	return order, nil
}

func (s *orderService) ManualAssign(ctx context.Context, orderID, driverID int64) (*models.Order, error) {
	if _, err := s.stg.Driver().GetByID(ctx, driverID); err != nil {
		return nil, err
	}
	order, err := s.claim(ctx, orderID, driverID)
	if err != nil {
		return nil, err
	}
	s.log.Info("operator manually assigned order",
		logger.Int64("order_id", orderID), logger.Int64("driver_id", driverID))
	s.notifier.OrderAccepted(ctx, order)
	return order, nil
}

// claim serializes the PENDING -> ACCEPTED transition through a conditional
// write. Exactly one caller wins; losers re-read the order to learn why.
func (s *orderService) claim(ctx context.Context, orderID, driverID int64) (*models.Order, error) {
	won, err := s.stg.Order().Claim(ctx, orderID, driverID)
	if err != nil {
		return nil, err
	}
	if !won {
		order, err := s.stg.Order().GetByID(ctx, orderID)
		if err != nil {
			return nil, err
		}
		if order.DriverID != nil {
			return nil, &models.AlreadyAssignedError{DriverID: *order.DriverID}
		}
		return nil, models.ErrNotAcceptable
	}
	return s.stg.Order().GetByID(ctx, orderID)
}

func (s *orderService) AdvanceStatus(ctx context.Context, actor models.Actor, orderID int64, target models.OrderStatus) (*models.Order, error) {
	if !target.Valid() {
		return nil, models.Validationf("unknown order status %q", target)
	}

	order, err := s.stg.Order().GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.Status.Terminal() {
		return nil, models.ErrOrderTerminal
	}
	// Assignment never flows through here: it must set driver_id atomically.
	if target == models.StatusAccepted {
		return nil, &models.IllegalTransitionError{From: order.Status, To: target}
	}
	if !models.CanTransition(order.Status, target) {
		return nil, &models.IllegalTransitionError{From: order.Status, To: target}
	}
	if err := authorizeTransition(actor, order, target); err != nil {
		return nil, err
	}

	var won bool
	if target == models.StatusCompleted {
		if order.DriverID == nil {
			// The transition table forbids EN_ROUTE without a driver.
			return nil, models.ErrDataIntegrity
		}
		fee := ComputeFee(order, s.fees.PerSeat, s.fees.LuggageFlat)
		won, err = s.stg.Order().CompleteWithFee(ctx, orderID, *order.DriverID, fee)
	} else {
		won, err = s.stg.Order().UpdateStatus(ctx, orderID, order.Status, target)
	}
	if err != nil {
		return nil, err
	}
	if !won {
		current, err := s.stg.Order().GetByID(ctx, orderID)
		if err != nil {
			return nil, err
		}
		if current.Status.Terminal() {
			return nil, models.ErrOrderTerminal
		}
		return nil, &models.IllegalTransitionError{From: current.Status, To: target}
	}

	updated, err := s.stg.Order().GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	s.log.Info("order status updated",
		logger.Int64("order_id", orderID),
		logger.String("status", string(target)),
		logger.Int64("actor_id", actor.ID),
		logger.String("actor_role", string(actor.Role)),
	)
	switch target {
	case models.StatusCompleted:
		s.notifier.OrderCompleted(ctx, updated)
	case models.StatusCanceled:
		s.notifier.OrderCanceled(ctx, updated)
	}
	return updated, nil
}

func authorizeTransition(actor models.Actor, order *models.Order, target models.OrderStatus) error {
	ownsOrder := order.DriverID != nil && *order.DriverID == actor.ID

	switch target {
	case models.StatusEnRoute:
		if actor.Role != models.RoleDriver || !ownsOrder {
			return models.ErrNotAuthorized
		}
	case models.StatusCompleted:
		switch actor.Role {
		case models.RoleDriver:
			if !ownsOrder {
				return models.ErrNotAuthorized
			}
		case models.RoleOperator, models.RoleAdmin:
			// override path
		default:
			return models.ErrNotAuthorized
		}
	case models.StatusCanceled:
		switch actor.Role {
		case models.RoleDriver:
			if !ownsOrder {
				return models.ErrNotAuthorized
			}
		case models.RoleClient:
			if order.ClientID != actor.ID || order.Status != models.StatusPending {
				return models.ErrNotAuthorized
			}
		case models.RoleOperator, models.RoleAdmin:
		default:
			return models.ErrNotAuthorized
		}
	default:
		return models.ErrNotAuthorized
	}
	return nil
}

func (s *orderService) Get(ctx context.Context, actor models.Actor, orderID int64) (*models.Order, error) {
	order, err := s.stg.Order().GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	switch actor.Role {
	case models.RoleClient:
		if order.ClientID != actor.ID {
			return nil, models.ErrNotAuthorized
		}
	case models.RoleDriver:
		if order.DriverID == nil || *order.DriverID != actor.ID {
			return nil, models.ErrNotAuthorized
		}
	case models.RoleOperator, models.RoleAdmin:
	default:
		return nil, models.ErrNotAuthorized
	}
	return order, nil
}

func (s *orderService) ClientHistory(ctx context.Context, clientID int64, status *models.OrderStatus) ([]*models.Order, error) {
	return s.stg.Order().FindByClient(ctx, clientID, status)
}

func (s *orderService) ClientActiveOrders(ctx context.Context, clientID int64) ([]*models.Order, error) {
	accepted := models.StatusAccepted
	enRoute := models.StatusEnRoute
	out, err := s.stg.Order().FindByClient(ctx, clientID, &accepted)
	if err != nil {
		return nil, err
	}
	more, err := s.stg.Order().FindByClient(ctx, clientID, &enRoute)
	if err != nil {
		return nil, err
	}
	return append(out, more...), nil
}

func (s *orderService) UnassignedPending(ctx context.Context, filter storage.UnassignedFilter) ([]*models.Order, error) {
	return s.stg.Order().FindUnassigned(ctx, filter)
}

func (s *orderService) OrdersByStatuses(ctx context.Context, statuses []models.OrderStatus) ([]*models.Order, error) {
	for _, st := range statuses {
		if !st.Valid() {
			return nil, models.Validationf("unknown order status %q", st)
		}
	}
	if len(statuses) == 0 {
		statuses = []models.OrderStatus{models.StatusAccepted, models.StatusEnRoute}
	}
	return s.stg.Order().FindByStatuses(ctx, statuses)
}

func (s *orderService) StuckOrders(ctx context.Context, olderThan time.Time) ([]*models.Order, error) {
	return s.stg.Order().FindStuck(ctx, olderThan)
}
