package postgres

import (
	"context"
	"errors"

	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"taxidispatch/pkg/logger"
	"taxidispatch/pkg/models"
	"taxidispatch/storage"
)

type orderRepo struct {
	db  *pgxpool.Pool
	log logger.ILogger
}

func NewOrderRepo(db *pgxpool.Pool, log logger.ILogger) storage.IOrderStorage {
	return &orderRepo{db: db, log: log}
}

const orderColumns = `
	id, client_id, driver_id, from_district_id, to_district_id,
	from_location, to_location, pickup_time, seats, selected_seats,
	order_type, luggage_contact_info, extra_info, total_cost, status, created_at`

func (r *orderRepo) Create(ctx context.Context, order *models.Order) (*models.Order, error) {
	query := `
		INSERT INTO orders (
			client_id, driver_id, from_district_id, to_district_id,
			from_location, to_location, pickup_time, seats, selected_seats,
			order_type, luggage_contact_info, extra_info, total_cost, status
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		RETURNING id, created_at
	`
	err := r.db.QueryRow(ctx, query,
		order.ClientID,
		order.DriverID,
		order.FromDistrictID,
		order.ToDistrictID,
		order.FromLocation,
		order.ToLocation,
		order.PickupTime,
		order.Seats,
		order.SelectedSeats,
		order.OrderType,
		order.LuggageContactInfo,
		order.ExtraInfo,
		order.TotalCost,
		order.Status,
	).Scan(&order.ID, &order.CreatedAt)

	if err != nil {
		r.log.Error("failed to create order", logger.Error(err))
		return nil, err
	}

	return order, nil
}

func (r *orderRepo) GetByID(ctx context.Context, id int64) (*models.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE id = $1`

	var o models.Order
	err := r.db.QueryRow(ctx, query, id).Scan(
		&o.ID, &o.ClientID, &o.DriverID, &o.FromDistrictID, &o.ToDistrictID,
		&o.FromLocation, &o.ToLocation, &o.PickupTime, &o.Seats, &o.SelectedSeats,
		&o.OrderType, &o.LuggageContactInfo, &o.ExtraInfo, &o.TotalCost, &o.Status, &o.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, models.ErrOrderNotFound
	}
	if err != nil {
		r.log.Error("failed to get order by id", logger.Int64("id", id), logger.Error(err))
		return nil, err
	}

	return &o, nil
}

// Claim is the sole path from unassigned PENDING to assigned ACCEPTED. The
// WHERE clause carries the whole precondition so that concurrent claims
// resolve to exactly one affected row.
func (r *orderRepo) Claim(ctx context.Context, orderID, driverID int64) (bool, error) {
	tag, err := r.db.Exec(ctx, `
		UPDATE orders
		SET driver_id = $1, status = $2
		WHERE id = $3 AND status = $4 AND driver_id IS NULL`,
		driverID, models.StatusAccepted, orderID, models.StatusPending,
	)
	if err != nil {
		r.log.Error("failed to claim order", logger.Int64("order_id", orderID), logger.Error(err))
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

func (r *orderRepo) UpdateStatus(ctx context.Context, orderID int64, from, to models.OrderStatus) (bool, error) {
	tag, err := r.db.Exec(ctx, `
		UPDATE orders
		SET status = $1
		WHERE id = $2 AND status = $3`,
		to, orderID, from,
	)
	if err != nil {
		r.log.Error("failed to update order status", logger.Int64("order_id", orderID), logger.Error(err))
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

// CompleteWithFee commits the COMPLETED flip and the wallet debit together:
// either both land or neither does.
func (r *orderRepo) CompleteWithFee(ctx context.Context, orderID, driverID, fee int64) (bool, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return false, err
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx, `
		UPDATE orders
		SET status = $1
		WHERE id = $2 AND status = $3 AND driver_id = $4`,
		models.StatusCompleted, orderID, models.StatusEnRoute, driverID,
	)
	if err != nil {
		return false, err
	}
	if tag.RowsAffected() != 1 {
		return false, nil
	}

	var balance int64
	err = tx.QueryRow(ctx,
		`SELECT wallet_balance FROM drivers WHERE id = $1 FOR UPDATE`, driverID,
	).Scan(&balance)
	if errors.Is(err, pgx.ErrNoRows) {
		r.log.Error("driver row missing for completed order",
			logger.Int64("order_id", orderID), logger.Int64("driver_id", driverID))
		return false, models.ErrDataIntegrity
	}
	if err != nil {
		return false, err
	}

	newBalance := balance - fee
	if newBalance < 0 {
		// Business rule: the deficit is forgiven, not carried as debt.
		r.log.Warning("driver balance insufficient for fee, clamping to zero",
			logger.Int64("driver_id", driverID),
			logger.Int64("balance", balance),
			logger.Int64("fee", fee),
		)
		newBalance = 0
	}
	if _, err := tx.Exec(ctx,
		`UPDATE drivers SET wallet_balance = $1 WHERE id = $2`, newBalance, driverID,
	); err != nil {
		return false, err
	}

	if err := tx.Commit(ctx); err != nil {
		return false, err
	}

	r.log.Info("order completed, fee settled",
		logger.Int64("order_id", orderID),
		logger.Int64("driver_id", driverID),
		logger.Int64("fee", fee),
		logger.Int64("new_balance", newBalance),
	)
	return true, nil
}

func (r *orderRepo) FindForDriverFeed(ctx context.Context, regionDistrictIDs []int64, driverDistrictID int64, start, end time.Time, maxSeats int) ([]*models.Order, error) {
	query := `SELECT ` + orderColumns + `
		FROM orders
		WHERE status = $1
		  AND driver_id IS NULL
		  AND (to_district_id = ANY($2) OR from_district_id = $3)
		  AND pickup_time BETWEEN $4 AND $5
		  AND seats <= $6
		ORDER BY pickup_time ASC, id ASC`
	return r.scanOrders(ctx, query, models.StatusPending, regionDistrictIDs, driverDistrictID, start, end, maxSeats)
}

func (r *orderRepo) FindUnassigned(ctx context.Context, filter storage.UnassignedFilter) ([]*models.Order, error) {
	query := `SELECT ` + orderColumns + `
		FROM orders
		WHERE status = $1
		  AND driver_id IS NULL
		  AND ($2::bigint IS NULL OR from_district_id = $2)
		  AND ($3 = '' OR from_location ILIKE '%' || $3 || '%')
		  AND ($4::timestamptz IS NULL OR pickup_time >= $4)
		  AND ($5::timestamptz IS NULL OR pickup_time <= $5)
		ORDER BY pickup_time ASC, id ASC`
	return r.scanOrders(ctx, query, models.StatusPending,
		filter.FromDistrictID, filter.FromLocation, filter.Start, filter.End)
}

func (r *orderRepo) FindByClient(ctx context.Context, clientID int64, status *models.OrderStatus) ([]*models.Order, error) {
	query := `SELECT ` + orderColumns + `
		FROM orders
		WHERE client_id = $1 AND ($2::text IS NULL OR status = $2)
		ORDER BY pickup_time DESC`
	return r.scanOrders(ctx, query, clientID, status)
}

func (r *orderRepo) FindByDriver(ctx context.Context, driverID int64, status *models.OrderStatus) ([]*models.Order, error) {
	query := `SELECT ` + orderColumns + `
		FROM orders
		WHERE driver_id = $1 AND ($2::text IS NULL OR status = $2)
		ORDER BY pickup_time DESC`
	return r.scanOrders(ctx, query, driverID, status)
}

func (r *orderRepo) FindByStatuses(ctx context.Context, statuses []models.OrderStatus) ([]*models.Order, error) {
	ss := make([]string, len(statuses))
	for i, s := range statuses {
		ss[i] = string(s)
	}
	query := `SELECT ` + orderColumns + `
		FROM orders
		WHERE status = ANY($1)
		ORDER BY created_at DESC`
	return r.scanOrders(ctx, query, ss)
}

func (r *orderRepo) FindStuck(ctx context.Context, olderThan time.Time) ([]*models.Order, error) {
	query := `SELECT ` + orderColumns + `
		FROM orders
		WHERE status <> $1 AND created_at < $2
		ORDER BY created_at ASC`
	return r.scanOrders(ctx, query, models.StatusCompleted, olderThan)
}

func (r *orderRepo) scanOrders(ctx context.Context, query string, args ...interface{}) ([]*models.Order, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var orders []*models.Order
	for rows.Next() {
		var o models.Order
		err := rows.Scan(
			&o.ID, &o.ClientID, &o.DriverID, &o.FromDistrictID, &o.ToDistrictID,
			&o.FromLocation, &o.ToLocation, &o.PickupTime, &o.Seats, &o.SelectedSeats,
			&o.OrderType, &o.LuggageContactInfo, &o.ExtraInfo, &o.TotalCost, &o.Status, &o.CreatedAt,
		)
		if err != nil {
			return nil, err
		}
		orders = append(orders, &o)
	}
	return orders, rows.Err()
}
