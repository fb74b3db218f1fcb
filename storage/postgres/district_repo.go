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

type districtRepo struct {
	db  *pgxpool.Pool
	log logger.ILogger
}

func NewDistrictRepo(db *pgxpool.Pool, log logger.ILogger) storage.IDistrictStorage {
	return &districtRepo{db: db, log: log}
}

func (r *districtRepo) GetByID(ctx context.Context, id int64) (*models.District, error) {
	var d models.District
	query := `SELECT id, name, region_id FROM districts WHERE id = $1`
	err := r.db.QueryRow(ctx, query, id).Scan(&d.ID, &d.Name, &d.RegionID)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, models.ErrDistrictNotFound
	}
	if err != nil {
		r.log.Error("failed to get district by id", logger.Int64("id", id), logger.Error(err))
		return nil, err
	}
	return &d, nil
}

func (r *districtRepo) IDsByRegion(ctx context.Context, regionID int64) ([]int64, error) {
	rows, err := r.db.Query(ctx, `SELECT id FROM districts WHERE region_id = $1`, regionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
