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

type driverRepo struct {
	db  *pgxpool.Pool
	log logger.ILogger
}

func NewDriverRepo(db *pgxpool.Pool, log logger.ILogger) storage.IDriverStorage {
	return &driverRepo{db: db, log: log}
}

func (r *driverRepo) GetByID(ctx context.Context, id int64) (*models.Driver, error) {
	query := `
		SELECT id, first_name, last_name, profile_picture_url,
		       license_number, license_picture_url,
		       car_name, car_number, car_picture_url, passport_picture_url,
		       district_id, rating, ride_count, wallet_balance,
		       approval_status, created_at
		FROM drivers
		WHERE id = $1
	`
	var d models.Driver
	err := r.db.QueryRow(ctx, query, id).Scan(
		&d.ID, &d.FirstName, &d.LastName, &d.ProfilePictureURL,
		&d.LicenseNumber, &d.LicensePictureURL,
		&d.CarName, &d.CarNumber, &d.CarPictureURL, &d.PassportPicURL,
		&d.DistrictID, &d.Rating, &d.RideCount, &d.WalletBalance,
		&d.ApprovalStatus, &d.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, models.ErrDriverNotFound
	}
	if err != nil {
		r.log.Error("failed to get driver by id", logger.Int64("id", id), logger.Error(err))
		return nil, err
	}
	return &d, nil
}
