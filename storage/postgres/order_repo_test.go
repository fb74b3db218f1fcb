package postgres

import (
	"context"
	"errors"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"taxidispatch/pkg/logger"
	"taxidispatch/pkg/models"
)

// setupTestPool connects to a throwaway database. The schema is expected to
// exist (run the migrations first). Tests are skipped unless a DSN is given.
func setupTestPool(t *testing.T) *pgxpool.Pool {
	t.Helper()

	dsn := os.Getenv("DISPATCH_TEST_DSN")
	if dsn == "" {
		t.Skip("DISPATCH_TEST_DSN not set; skipping DB-backed tests")
	}

	ctx := context.Background()
	db, err := pgxpool.New(ctx, dsn)
	if err != nil {
		t.Fatalf("connect db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if _, err := db.Exec(ctx, "TRUNCATE TABLE orders, drivers, prices, districts, regions RESTART IDENTITY CASCADE"); err != nil {
		t.Fatalf("truncate tables: %v", err)
	}

	seed := []string{
		`INSERT INTO regions (id, name) VALUES (1, 'Tashkent')`,
		`INSERT INTO districts (id, name, region_id) VALUES (1, 'Chilonzor', 1), (2, 'Yunusobod', 1)`,
		`INSERT INTO drivers (id, first_name, last_name, profile_picture_url, license_number,
			license_picture_url, car_name, car_number, car_picture_url, passport_picture_url,
			district_id, wallet_balance, approval_status)
		 VALUES (1, 'Aziz', 'Karimov', 'p.jpg', 'AB1234567', 'l.jpg', 'Cobalt', '01A123BC',
			'c.jpg', 'pp.jpg', 1, 1000, 'ACCEPTED'),
			(2, 'Bobur', 'Toshev', 'p.jpg', 'AB7654321', 'l.jpg', 'Nexia', '01B321CB',
			'c.jpg', 'pp.jpg', 1, 1000, 'ACCEPTED')`,
	}
	for _, q := range seed {
		if _, err := db.Exec(ctx, q); err != nil {
			t.Fatalf("seed: %v", err)
		}
	}
	return db
}

func testOrder() *models.Order {
	return &models.Order{
		ClientID:       100,
		FromDistrictID: 1,
		ToDistrictID:   2,
		PickupTime:     time.Now().Add(2 * time.Hour),
		Seats:          2,
		SelectedSeats:  []string{models.SeatFront},
		OrderType:      models.OrderTypeRegular,
		TotalCost:      320000,
		Status:         models.StatusPending,
	}
}

func TestOrderRepoCreateAndGet(t *testing.T) {
	db := setupTestPool(t)
	repo := NewOrderRepo(db, logger.New("test", "error"))
	ctx := context.Background()

	created, err := repo.Create(ctx, testOrder())
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if created.ID == 0 || created.CreatedAt.IsZero() {
		t.Fatalf("create did not populate id/created_at: %+v", created)
	}

	got, err := repo.GetByID(ctx, created.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Status != models.StatusPending || got.DriverID != nil || got.TotalCost != 320000 {
		t.Errorf("round-tripped order mismatch: %+v", got)
	}

	if _, err := repo.GetByID(ctx, 999999); !errors.Is(err, models.ErrOrderNotFound) {
		t.Errorf("missing order got %v, want ErrOrderNotFound", err)
	}
}

func TestOrderRepoClaimRace(t *testing.T) {
	db := setupTestPool(t)
	repo := NewOrderRepo(db, logger.New("test", "error"))
	ctx := context.Background()

	created, err := repo.Create(ctx, testOrder())
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	var wg sync.WaitGroup
	wins := make(chan bool, 2)
	for _, driverID := range []int64{1, 2} {
		wg.Add(1)
		go func(d int64) {
			defer wg.Done()
			won, err := repo.Claim(ctx, created.ID, d)
			if err != nil {
				t.Errorf("claim: %v", err)
				return
			}
			wins <- won
		}(driverID)
	}
	wg.Wait()
	close(wins)

	winners := 0
	for won := range wins {
		if won {
			winners++
		}
	}
	if winners != 1 {
		t.Fatalf("got %d winners, want exactly 1", winners)
	}

	got, err := repo.GetByID(ctx, created.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Status != models.StatusAccepted || got.DriverID == nil {
		t.Fatalf("claimed order status=%s driver=%v, want ACCEPTED with driver", got.Status, got.DriverID)
	}
}

func TestOrderRepoConditionalUpdateStatus(t *testing.T) {
	db := setupTestPool(t)
	repo := NewOrderRepo(db, logger.New("test", "error"))
	ctx := context.Background()

	created, err := repo.Create(ctx, testOrder())
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	// from-status mismatch must not write
	won, err := repo.UpdateStatus(ctx, created.ID, models.StatusAccepted, models.StatusEnRoute)
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if won {
		t.Fatal("update with wrong from-status reported a write")
	}

	won, err = repo.UpdateStatus(ctx, created.ID, models.StatusPending, models.StatusCanceled)
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if !won {
		t.Fatal("valid conditional update reported no write")
	}
}

func TestOrderRepoCompleteWithFee(t *testing.T) {
	db := setupTestPool(t)
	repo := NewOrderRepo(db, logger.New("test", "error"))
	ctx := context.Background()

	created, err := repo.Create(ctx, testOrder())
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if won, err := repo.Claim(ctx, created.ID, 1); err != nil || !won {
		t.Fatalf("claim: won=%v err=%v", won, err)
	}
	if won, err := repo.UpdateStatus(ctx, created.ID, models.StatusAccepted, models.StatusEnRoute); err != nil || !won {
		t.Fatalf("en route: won=%v err=%v", won, err)
	}

	won, err := repo.CompleteWithFee(ctx, created.ID, 1, 40)
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if !won {
		t.Fatal("complete reported no write")
	}

	var balance int64
	if err := db.QueryRow(ctx, "SELECT wallet_balance FROM drivers WHERE id = 1").Scan(&balance); err != nil {
		t.Fatalf("read balance: %v", err)
	}
	if balance != 960 {
		t.Errorf("wallet balance = %d, want 960", balance)
	}

	// a second completion must lose the conditional write
	won, err = repo.CompleteWithFee(ctx, created.ID, 1, 40)
	if err != nil {
		t.Fatalf("re-complete: %v", err)
	}
	if won {
		t.Fatal("second completion reported a write")
	}
}
