package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"taxidispatch/pkg/models"
)

func TestFeedEligibilityGate(t *testing.T) {
	stg, svc := newTestEnv(t)
	ctx := context.Background()
	window := FeedRequest{
		WindowStart: time.Now(),
		WindowEnd:   time.Now().Add(24 * time.Hour),
		MaxSeats:    4,
	}

	unapproved := eligibleDriver(1, 1, 1000)
	unapproved.ApprovalStatus = models.ApprovalPending
	stg.SeedDriver(unapproved)

	incomplete := eligibleDriver(2, 1, 1000)
	incomplete.CarNumber = ""
	stg.SeedDriver(incomplete)

	stg.SeedDriver(eligibleDriver(3, 1, 1000))

	if _, err := svc.Driver().Feed(ctx, 1, window); !errors.Is(err, models.ErrNotEligible) {
		t.Errorf("unapproved driver feed got %v, want ErrNotEligible", err)
	}
	if _, err := svc.Driver().Feed(ctx, 2, window); !errors.Is(err, models.ErrNotEligible) {
		t.Errorf("incomplete profile feed got %v, want ErrNotEligible", err)
	}
	if _, err := svc.Driver().Feed(ctx, 3, window); err != nil {
		t.Errorf("eligible driver feed got %v, want success", err)
	}
	if _, err := svc.Driver().Feed(ctx, 404, window); !errors.Is(err, models.ErrDriverNotFound) {
		t.Errorf("unknown driver feed got %v, want ErrDriverNotFound", err)
	}
}

func TestFeedWindowValidation(t *testing.T) {
	stg, svc := newTestEnv(t)
	stg.SeedDriver(eligibleDriver(1, 1, 1000))

	now := time.Now()
	_, err := svc.Driver().Feed(context.Background(), 1, FeedRequest{
		WindowStart: now,
		WindowEnd:   now.Add(-time.Hour),
		MaxSeats:    4,
	})
	var ve *models.ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("inverted window got %v, want ValidationError", err)
	}
}

// Driver in district 1 (region 1 holds districts 1 and 2). The feed shows
// PENDING unassigned orders heading into region 1 or leaving district 1,
// inside the window and within seat capacity, ordered by pickup time.
func TestFeedFilteringAndOrdering(t *testing.T) {
	stg, svc := newTestEnv(t)
	ctx := context.Background()
	stg.SeedDriver(eligibleDriver(1, 1, 1000))
	stg.SeedDriver(eligibleDriver(2, 3, 1000))

	base := time.Now().Add(2 * time.Hour)

	// included: destination inside the driver's region, later pickup
	intoRegion := createOrder(t, svc, CreateOrderRequest{
		FromDistrictID: 3, ToDistrictID: 2, Seats: 2, PickupTime: base.Add(2 * time.Hour),
	})
	// included: origin is the driver's own district, earliest pickup
	fromHome := createOrder(t, svc, CreateOrderRequest{
		FromDistrictID: 1, ToDistrictID: 3, Seats: 1, PickupTime: base,
	})
	// excluded: neither endpoint touches the driver's region or district
	createOrder(t, svc, CreateOrderRequest{
		FromDistrictID: 3, ToDistrictID: 4, Seats: 1, PickupTime: base.Add(time.Hour),
	})
	// excluded: too many seats for the vehicle
	createOrder(t, svc, CreateOrderRequest{
		FromDistrictID: 3, ToDistrictID: 2, Seats: 4, PickupTime: base.Add(time.Hour),
	})
	// excluded: pickup outside the window
	createOrder(t, svc, CreateOrderRequest{
		FromDistrictID: 3, ToDistrictID: 2, Seats: 1, PickupTime: base.Add(48 * time.Hour),
	})
	// excluded: already claimed by another driver
	claimed := createOrder(t, svc, CreateOrderRequest{
		FromDistrictID: 3, ToDistrictID: 2, Seats: 1, PickupTime: base.Add(time.Hour),
	})
	if _, err := svc.Order().Accept(ctx, claimed.ID, 2); err != nil {
		t.Fatalf("claim order: %v", err)
	}

	feed, err := svc.Driver().Feed(ctx, 1, FeedRequest{
		WindowStart: base.Add(-time.Hour),
		WindowEnd:   base.Add(24 * time.Hour),
		MaxSeats:    3,
	})
	if err != nil {
		t.Fatalf("feed: %v", err)
	}

	if len(feed) != 2 {
		ids := make([]int64, len(feed))
		for i, o := range feed {
			ids[i] = o.ID
		}
		t.Fatalf("feed has %d orders (%v), want 2", len(feed), ids)
	}
	if feed[0].ID != fromHome.ID || feed[1].ID != intoRegion.ID {
		t.Errorf("feed order = [%d %d], want pickup-ascending [%d %d]",
			feed[0].ID, feed[1].ID, fromHome.ID, intoRegion.ID)
	}
}

func TestDriverHistoryAndActive(t *testing.T) {
	stg, svc := newTestEnv(t)
	ctx := context.Background()
	stg.SeedDriver(eligibleDriver(1, 1, 1000))
	driver := models.Actor{ID: 1, Role: models.RoleDriver}

	first := createOrder(t, svc, CreateOrderRequest{FromDistrictID: 1, ToDistrictID: 2})
	second := createOrder(t, svc, CreateOrderRequest{FromDistrictID: 1, ToDistrictID: 2})

	if _, err := svc.Order().Accept(ctx, first.ID, 1); err != nil {
		t.Fatalf("accept first: %v", err)
	}
	if _, err := svc.Order().AdvanceStatus(ctx, driver, first.ID, models.StatusEnRoute); err != nil {
		t.Fatalf("en route: %v", err)
	}
	if _, err := svc.Order().AdvanceStatus(ctx, driver, first.ID, models.StatusCompleted); err != nil {
		t.Fatalf("complete: %v", err)
	}
	if _, err := svc.Order().Accept(ctx, second.ID, 1); err != nil {
		t.Fatalf("accept second: %v", err)
	}

	all, err := svc.Driver().History(ctx, 1, nil)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(all) != 2 {
		t.Errorf("history has %d orders, want 2", len(all))
	}

	completed := models.StatusCompleted
	onlyCompleted, err := svc.Driver().History(ctx, 1, &completed)
	if err != nil {
		t.Fatalf("filtered history: %v", err)
	}
	if len(onlyCompleted) != 1 || onlyCompleted[0].ID != first.ID {
		t.Errorf("completed history = %v, want just order %d", onlyCompleted, first.ID)
	}

	active, err := svc.Driver().ActiveOrders(ctx, 1)
	if err != nil {
		t.Fatalf("active: %v", err)
	}
	if len(active) != 1 || active[0].ID != second.ID {
		t.Errorf("active orders = %v, want just order %d", active, second.ID)
	}
}
