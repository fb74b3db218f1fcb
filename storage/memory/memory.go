// Package memory provides a mutex-guarded in-memory IStorage with the same
// conditional-write semantics as the postgres implementation. It backs
// service-level tests and local development without external infrastructure.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"taxidispatch/pkg/models"
	"taxidispatch/storage"
)

type Store struct {
	mu sync.Mutex

	orders    map[int64]*models.Order
	drivers   map[int64]*models.Driver
	prices    map[[2]int64]*models.Price
	districts map[int64]*models.District

	nextOrderID int64
}

func New() *Store {
	return &Store{
		orders:    make(map[int64]*models.Order),
		drivers:   make(map[int64]*models.Driver),
		prices:    make(map[[2]int64]*models.Price),
		districts: make(map[int64]*models.District),
	}
}

func (s *Store) Order() storage.IOrderStorage       { return (*orderStore)(s) }
func (s *Store) Driver() storage.IDriverStorage     { return (*driverStore)(s) }
func (s *Store) Price() storage.IPriceStorage       { return (*priceStore)(s) }
func (s *Store) District() storage.IDistrictStorage { return (*districtStore)(s) }
func (s *Store) Close()                             {}

// Seed helpers write reference data owned by external collaborators.

func (s *Store) SeedDistrict(d models.District) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := d
	s.districts[d.ID] = &cp
}

func (s *Store) SeedPrice(p models.Price) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := p
	s.prices[[2]int64{p.FromDistrictID, p.ToDistrictID}] = &cp
}

func (s *Store) SeedDriver(d models.Driver) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := d
	s.drivers[d.ID] = &cp
}

// DriverBalance reads the wallet balance directly; test hook.
func (s *Store) DriverBalance(id int64) (int64, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.drivers[id]
	if !ok {
		return 0, false
	}
	return d.WalletBalance, true
}

func cloneOrder(o *models.Order) *models.Order {
	cp := *o
	if o.DriverID != nil {
		v := *o.DriverID
		cp.DriverID = &v
	}
	if o.SelectedSeats != nil {
		cp.SelectedSeats = append([]string(nil), o.SelectedSeats...)
	}
	return &cp
}

type orderStore Store

func (s *orderStore) Create(_ context.Context, order *models.Order) (*models.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextOrderID++
	order.ID = s.nextOrderID
	order.CreatedAt = time.Now()
	s.orders[order.ID] = cloneOrder(order)
	return cloneOrder(order), nil
}

func (s *orderStore) GetByID(_ context.Context, id int64) (*models.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.orders[id]
	if !ok {
		return nil, models.ErrOrderNotFound
	}
	return cloneOrder(o), nil
}

func (s *orderStore) Claim(_ context.Context, orderID, driverID int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.orders[orderID]
	if !ok || o.Status != models.StatusPending || o.DriverID != nil {
		return false, nil
	}
	d := driverID
	o.DriverID = &d
	o.Status = models.StatusAccepted
	return true, nil
}

func (s *orderStore) UpdateStatus(_ context.Context, orderID int64, from, to models.OrderStatus) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.orders[orderID]
	if !ok || o.Status != from {
		return false, nil
	}
	o.Status = to
	return true, nil
}

func (s *orderStore) CompleteWithFee(_ context.Context, orderID, driverID, fee int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.orders[orderID]
	if !ok || o.Status != models.StatusEnRoute || o.DriverID == nil || *o.DriverID != driverID {
		return false, nil
	}
	d, ok := s.drivers[driverID]
	if !ok {
		return false, models.ErrDataIntegrity
	}
	o.Status = models.StatusCompleted
	d.WalletBalance -= fee
	if d.WalletBalance < 0 {
		d.WalletBalance = 0
	}
	return true, nil
}

func (s *orderStore) FindForDriverFeed(_ context.Context, regionDistrictIDs []int64, driverDistrictID int64, start, end time.Time, maxSeats int) ([]*models.Order, error) {
	region := make(map[int64]bool, len(regionDistrictIDs))
	for _, id := range regionDistrictIDs {
		region[id] = true
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*models.Order
	for _, o := range s.orders {
		if o.Status != models.StatusPending || o.DriverID != nil {
			continue
		}
		if !region[o.ToDistrictID] && o.FromDistrictID != driverDistrictID {
			continue
		}
		if o.PickupTime.Before(start) || o.PickupTime.After(end) {
			continue
		}
		if o.Seats > maxSeats {
			continue
		}
		out = append(out, cloneOrder(o))
	}
	sortByPickupAsc(out)
	return out, nil
}

func (s *orderStore) FindUnassigned(_ context.Context, filter storage.UnassignedFilter) ([]*models.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*models.Order
	for _, o := range s.orders {
		if o.Status != models.StatusPending || o.DriverID != nil {
			continue
		}
		if filter.FromDistrictID != nil && o.FromDistrictID != *filter.FromDistrictID {
			continue
		}
		if filter.FromLocation != "" {
			if o.FromLocation == nil || !strings.Contains(strings.ToLower(*o.FromLocation), strings.ToLower(filter.FromLocation)) {
				continue
			}
		}
		if filter.Start != nil && o.PickupTime.Before(*filter.Start) {
			continue
		}
		if filter.End != nil && o.PickupTime.After(*filter.End) {
			continue
		}
		out = append(out, cloneOrder(o))
	}
	sortByPickupAsc(out)
	return out, nil
}

func (s *orderStore) FindByClient(_ context.Context, clientID int64, status *models.OrderStatus) ([]*models.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*models.Order
	for _, o := range s.orders {
		if o.ClientID != clientID {
			continue
		}
		if status != nil && o.Status != *status {
			continue
		}
		out = append(out, cloneOrder(o))
	}
	sortByPickupDesc(out)
	return out, nil
}

func (s *orderStore) FindByDriver(_ context.Context, driverID int64, status *models.OrderStatus) ([]*models.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*models.Order
	for _, o := range s.orders {
		if o.DriverID == nil || *o.DriverID != driverID {
			continue
		}
		if status != nil && o.Status != *status {
			continue
		}
		out = append(out, cloneOrder(o))
	}
	sortByPickupDesc(out)
	return out, nil
}

func (s *orderStore) FindByStatuses(_ context.Context, statuses []models.OrderStatus) ([]*models.Order, error) {
	want := make(map[models.OrderStatus]bool, len(statuses))
	for _, st := range statuses {
		want[st] = true
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*models.Order
	for _, o := range s.orders {
		if want[o.Status] {
			out = append(out, cloneOrder(o))
		}
	}
	sortByPickupDesc(out)
	return out, nil
}

func (s *orderStore) FindStuck(_ context.Context, olderThan time.Time) ([]*models.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*models.Order
	for _, o := range s.orders {
		if o.Status != models.StatusCompleted && o.CreatedAt.Before(olderThan) {
			out = append(out, cloneOrder(o))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func sortByPickupAsc(orders []*models.Order) {
	sort.SliceStable(orders, func(i, j int) bool {
		if orders[i].PickupTime.Equal(orders[j].PickupTime) {
			return orders[i].ID < orders[j].ID
		}
		return orders[i].PickupTime.Before(orders[j].PickupTime)
	})
}

func sortByPickupDesc(orders []*models.Order) {
	sort.SliceStable(orders, func(i, j int) bool {
		return orders[i].PickupTime.After(orders[j].PickupTime)
	})
}

type driverStore Store

func (s *driverStore) GetByID(_ context.Context, id int64) (*models.Driver, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.drivers[id]
	if !ok {
		return nil, models.ErrDriverNotFound
	}
	cp := *d
	if d.DistrictID != nil {
		v := *d.DistrictID
		cp.DistrictID = &v
	}
	return &cp, nil
}

type priceStore Store

func (s *priceStore) GetByRoute(_ context.Context, fromDistrictID, toDistrictID int64) (*models.Price, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.prices[[2]int64{fromDistrictID, toDistrictID}]
	if !ok {
		return nil, models.ErrPriceNotFound
	}
	cp := *p
	return &cp, nil
}

type districtStore Store

func (s *districtStore) GetByID(_ context.Context, id int64) (*models.District, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.districts[id]
	if !ok {
		return nil, models.ErrDistrictNotFound
	}
	cp := *d
	return &cp, nil
}

func (s *districtStore) IDsByRegion(_ context.Context, regionID int64) ([]int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var ids []int64
	for _, d := range s.districts {
		if d.RegionID == regionID {
			ids = append(ids, d.ID)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids, nil
}
