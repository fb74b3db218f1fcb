package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"taxidispatch/pkg/logger"
	"taxidispatch/pkg/models"
	"taxidispatch/storage"
)

type priceRepo struct {
	db  *pgxpool.Pool
	log logger.ILogger
}

func NewPriceRepo(db *pgxpool.Pool, log logger.ILogger) storage.IPriceStorage {
	return &priceRepo{db: db, log: log}
}

// GetByRoute matches the ordered pair only. (A,B) and (B,A) are independent
// rows with no reciprocal inference.
func (r *priceRepo) GetByRoute(ctx context.Context, fromDistrictID, toDistrictID int64) (*models.Price, error) {
	query := `
		SELECT id, from_district_id, to_district_id,
		       base_price_per_seat, women_driver_price_per_seat, premium_price_per_seat,
		       front_seat_extra_fee, other_seat_extra_fee, luggage_price
		FROM prices
		WHERE from_district_id = $1 AND to_district_id = $2
	`
	var p models.Price
	err := r.db.QueryRow(ctx, query, fromDistrictID, toDistrictID).Scan(
		&p.ID, &p.FromDistrictID, &p.ToDistrictID,
		&p.BasePricePerSeat, &p.WomenDriverPricePerSeat, &p.PremiumPricePerSeat,
		&p.FrontSeatExtraFee, &p.OtherSeatExtraFee, &p.LuggagePrice,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, models.ErrPriceNotFound
	}
	if err != nil {
		r.log.Error("failed to get price by route",
			logger.Int64("from", fromDistrictID), logger.Int64("to", toDistrictID), logger.Error(err))
		return nil, err
	}
	return &p, nil
}
