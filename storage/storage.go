package storage

import (
	"context"
	"time"

	"taxidispatch/pkg/models"
)

type IStorage interface {
	Order() IOrderStorage
	Driver() IDriverStorage
	Price() IPriceStorage
	District() IDistrictStorage
	Close()
}

// UnassignedFilter narrows the operator's view of unassigned PENDING orders.
// Nil fields are not applied.
type UnassignedFilter struct {
	FromDistrictID *int64
	FromLocation   string
	Start          *time.Time
	End            *time.Time
}

type IOrderStorage interface {
	Create(ctx context.Context, order *models.Order) (*models.Order, error)
	GetByID(ctx context.Context, id int64) (*models.Order, error)

	// Claim atomically moves an unassigned PENDING order to ACCEPTED with the
	// given driver. Reports whether this caller won the write; the loser must
	// re-read the order to diagnose why.
	Claim(ctx context.Context, orderID, driverID int64) (bool, error)

	// UpdateStatus performs a conditional from -> to transition and reports
	// whether exactly one row changed.
	UpdateStatus(ctx context.Context, orderID int64, from, to models.OrderStatus) (bool, error)

	// CompleteWithFee flips EN_ROUTE -> COMPLETED and debits the driver's
	// wallet by fee, clamped at zero, in one unit of work. A missing driver
	// row surfaces as models.ErrDataIntegrity.
	CompleteWithFee(ctx context.Context, orderID, driverID, fee int64) (bool, error)

	// FindForDriverFeed returns unassigned PENDING orders whose destination
	// lies in one of regionDistrictIDs or whose origin equals driverDistrictID,
	// with pickup time inside [start, end] and seats <= maxSeats, ordered by
	// pickup time ascending.
	FindForDriverFeed(ctx context.Context, regionDistrictIDs []int64, driverDistrictID int64, start, end time.Time, maxSeats int) ([]*models.Order, error)

	FindUnassigned(ctx context.Context, filter UnassignedFilter) ([]*models.Order, error)
	FindByClient(ctx context.Context, clientID int64, status *models.OrderStatus) ([]*models.Order, error)
	FindByDriver(ctx context.Context, driverID int64, status *models.OrderStatus) ([]*models.Order, error)
	FindByStatuses(ctx context.Context, statuses []models.OrderStatus) ([]*models.Order, error)
	FindStuck(ctx context.Context, olderThan time.Time) ([]*models.Order, error)
}

// IDriverStorage is read-only: the profile collaborator owns driver rows, and
// the only mutation the core performs (wallet debit) happens inside
// IOrderStorage.CompleteWithFee.
type IDriverStorage interface {
	GetByID(ctx context.Context, id int64) (*models.Driver, error)
}

type IPriceStorage interface {
	// GetByRoute resolves the ordered (from, to) pair. Returns
	// models.ErrPriceNotFound when no explicit row exists.
	GetByRoute(ctx context.Context, fromDistrictID, toDistrictID int64) (*models.Price, error)
}

type IDistrictStorage interface {
	GetByID(ctx context.Context, id int64) (*models.District, error)
	IDsByRegion(ctx context.Context, regionID int64) ([]int64, error)
}
