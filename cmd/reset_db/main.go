package main

import (
	"context"
	"fmt"

	"taxidispatch/config"
	"taxidispatch/pkg/logger"
	"taxidispatch/storage/postgres"
)

func main() {
	cfg := config.Load()
	log := logger.New(cfg.ServiceName, cfg.LoggerLevel)

	pg, err := postgres.New(context.Background(), cfg, log)
	if err != nil {
		panic(err)
	}
	defer pg.Close()

	// Orders and drivers are operational data. Regions, districts and prices
	// are system data and survive the reset.
	_, err = pg.Pool().Exec(context.Background(), "TRUNCATE TABLE orders, drivers CASCADE")
	if err != nil {
		log.Error(fmt.Sprintf("failed to truncate tables: %v", err))
		return
	}
	log.Info("truncated orders and drivers tables")
}
