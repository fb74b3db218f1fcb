package service

import (
	"taxidispatch/pkg/logger"
	"taxidispatch/storage"
)

// Fees configures the completion settlement charged against driver wallets.
type Fees struct {
	PerSeat     int64
	LuggageFlat int64
}

type IServiceManager interface {
	Order() OrderService
	Driver() DriverService
}

type service struct {
	orderService  OrderService
	driverService DriverService
}

func New(stg storage.IStorage, log logger.ILogger, notifier Notifier, fees Fees) IServiceManager {
	return &service{
		orderService:  NewOrderService(stg, log, notifier, fees),
		driverService: NewDriverService(stg, log),
	}
}

func (s *service) Order() OrderService {
	return s.orderService
}

func (s *service) Driver() DriverService {
	return s.driverService
}
