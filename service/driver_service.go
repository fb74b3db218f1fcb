package service

import (
	"context"
	"errors"
	"time"

	"taxidispatch/pkg/logger"
	"taxidispatch/pkg/models"
	"taxidispatch/storage"
)

type FeedRequest struct {
	WindowStart time.Time
	WindowEnd   time.Time
	MaxSeats    int
}

type DriverService interface {
	Feed(ctx context.Context, driverID int64, req FeedRequest) ([]*models.Order, error)
	History(ctx context.Context, driverID int64, status *models.OrderStatus) ([]*models.Order, error)
	ActiveOrders(ctx context.Context, driverID int64) ([]*models.Order, error)
	Profile(ctx context.Context, driverID int64) (*models.Driver, error)
}

type driverService struct {
	stg storage.IStorage
	log logger.ILogger
}

func NewDriverService(stg storage.IStorage, log logger.ILogger) DriverService {
	return &driverService{stg: stg, log: log}
}

// Feed lists claimable orders for a driver: PENDING, unassigned, headed into
// the driver's region or leaving the driver's own district, picked up inside
// the requested window and fitting the vehicle's seat capacity.
func (s *driverService) Feed(ctx context.Context, driverID int64, req FeedRequest) ([]*models.Order, error) {
	if req.WindowEnd.Before(req.WindowStart) {
		return nil, models.Validationf("feed window end precedes its start")
	}
	if req.MaxSeats < 0 {
		return nil, models.Validationf("max seats cannot be negative")
	}

	driver, err := s.stg.Driver().GetByID(ctx, driverID)
	if err != nil {
		return nil, err
	}
	if driver.ApprovalStatus != models.ApprovalAccepted || !driver.ProfileComplete() {
		s.log.Warning("driver not eligible for feed",
			logger.Int64("driver_id", driverID),
			logger.String("approval_status", string(driver.ApprovalStatus)),
		)
		return nil, models.ErrNotEligible
	}

	district, err := s.stg.District().GetByID(ctx, *driver.DistrictID)
	if err != nil {
		if errors.Is(err, models.ErrDistrictNotFound) {
			return nil, models.ErrDataIntegrity
		}
		return nil, err
	}
	regionDistrictIDs, err := s.stg.District().IDsByRegion(ctx, district.RegionID)
	if err != nil {
		return nil, err
	}

	return s.stg.Order().FindForDriverFeed(ctx, regionDistrictIDs, *driver.DistrictID,
		req.WindowStart, req.WindowEnd, req.MaxSeats)
}

func (s *driverService) History(ctx context.Context, driverID int64, status *models.OrderStatus) ([]*models.Order, error) {
	return s.stg.Order().FindByDriver(ctx, driverID, status)
}

func (s *driverService) ActiveOrders(ctx context.Context, driverID int64) ([]*models.Order, error) {
	accepted := models.StatusAccepted
	enRoute := models.StatusEnRoute
	out, err := s.stg.Order().FindByDriver(ctx, driverID, &accepted)
	if err != nil {
		return nil, err
	}
	more, err := s.stg.Order().FindByDriver(ctx, driverID, &enRoute)
	if err != nil {
		return nil, err
	}
	return append(out, more...), nil
}

func (s *driverService) Profile(ctx context.Context, driverID int64) (*models.Driver, error) {
	return s.stg.Driver().GetByID(ctx, driverID)
}
