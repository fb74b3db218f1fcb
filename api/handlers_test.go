package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"taxidispatch/pkg/logger"
	"taxidispatch/pkg/models"
	"taxidispatch/service"
	"taxidispatch/storage/memory"
)

func setupRouter(t *testing.T) (*memory.Store, *gin.Engine) {
	t.Helper()
	stg := memory.New()
	stg.SeedDistrict(models.District{ID: 1, Name: "Chilonzor", RegionID: 1})
	stg.SeedDistrict(models.District{ID: 2, Name: "Yunusobod", RegionID: 1})
	stg.SeedPrice(models.Price{
		FromDistrictID:   1,
		ToDistrictID:     2,
		BasePricePerSeat: 100000,
	})

	log := logger.New("test", "error")
	svc := service.New(stg, log, service.NopNotifier(), service.Fees{PerSeat: 20, LuggageFlat: 10})
	return stg, NewRouter(svc, log)
}

func doRequest(r *gin.Engine, method, path string, body any, actorID int64, role string) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if actorID != 0 {
		req.Header.Set("X-Actor-ID", fmt.Sprintf("%d", actorID))
		req.Header.Set("X-Actor-Role", role)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func createOrderBody() map[string]any {
	return map[string]any{
		"from_district_id": 1,
		"to_district_id":   2,
		"pickup_time":      time.Now().Add(2 * time.Hour).Format(time.RFC3339),
		"seats":            2,
		"order_type":       "REGULAR",
	}
}

func seedDriver(stg *memory.Store, id int64) {
	district := int64(1)
	stg.SeedDriver(models.Driver{
		ID: id, FirstName: "Test", LastName: "Driver",
		ProfilePictureURL: "p.jpg", LicenseNumber: "AB1234567",
		LicensePictureURL: "l.jpg", CarName: "Cobalt", CarNumber: "01A123BC",
		CarPictureURL: "c.jpg", PassportPicURL: "pp.jpg",
		DistrictID: &district, WalletBalance: 1000,
		ApprovalStatus: models.ApprovalAccepted,
	})
}

func TestCreateOrderEndpoint(t *testing.T) {
	_, r := setupRouter(t)

	w := doRequest(r, http.MethodPost, "/api/v1/orders", createOrderBody(), 100, "client")
	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}

	var order models.Order
	if err := json.Unmarshal(w.Body.Bytes(), &order); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if order.Status != models.StatusPending || order.ClientID != 100 || order.TotalCost != 200000 {
		t.Errorf("created order = %+v", order)
	}
}

func TestOperatorCreatesOnClientsBehalf(t *testing.T) {
	_, r := setupRouter(t)

	// operator without a client_id is rejected
	w := doRequest(r, http.MethodPost, "/api/v1/orders", createOrderBody(), 9, "operator")
	if w.Code != http.StatusBadRequest {
		t.Fatalf("operator without client_id: %d, want 400", w.Code)
	}

	body := createOrderBody()
	body["client_id"] = 55
	w = doRequest(r, http.MethodPost, "/api/v1/orders", body, 9, "operator")
	if w.Code != http.StatusCreated {
		t.Fatalf("operator create: %d %s", w.Code, w.Body.String())
	}
	var order models.Order
	_ = json.Unmarshal(w.Body.Bytes(), &order)
	if order.ClientID != 55 {
		t.Errorf("order client = %d, want 55", order.ClientID)
	}
}

func TestCreateOrderRequiresClientRole(t *testing.T) {
	_, r := setupRouter(t)

	w := doRequest(r, http.MethodPost, "/api/v1/orders", createOrderBody(), 1, "driver")
	if w.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want 403", w.Code)
	}
}

func TestMissingActorHeaders(t *testing.T) {
	_, r := setupRouter(t)

	w := doRequest(r, http.MethodPost, "/api/v1/orders", createOrderBody(), 0, "")
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", w.Code)
	}
}

func TestValidationMapsTo400(t *testing.T) {
	_, r := setupRouter(t)

	body := createOrderBody()
	body["to_district_id"] = 1 // same as from
	w := doRequest(r, http.MethodPost, "/api/v1/orders", body, 100, "client")
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
}

func TestAcceptAndConflictMapping(t *testing.T) {
	stg, r := setupRouter(t)
	seedDriver(stg, 1)
	seedDriver(stg, 2)

	w := doRequest(r, http.MethodPost, "/api/v1/orders", createOrderBody(), 100, "client")
	if w.Code != http.StatusCreated {
		t.Fatalf("create: %d %s", w.Code, w.Body.String())
	}
	var order models.Order
	_ = json.Unmarshal(w.Body.Bytes(), &order)

	accept := fmt.Sprintf("/api/v1/orders/%d/accept", order.ID)
	if w := doRequest(r, http.MethodPost, accept, nil, 1, "driver"); w.Code != http.StatusOK {
		t.Fatalf("accept: %d %s", w.Code, w.Body.String())
	}
	// losing claim maps to conflict
	if w := doRequest(r, http.MethodPost, accept, nil, 2, "driver"); w.Code != http.StatusConflict {
		t.Fatalf("second accept: %d, want 409", w.Code)
	}
}

func TestStatusUpdateAuthorizationMapping(t *testing.T) {
	stg, r := setupRouter(t)
	seedDriver(stg, 1)
	seedDriver(stg, 2)

	w := doRequest(r, http.MethodPost, "/api/v1/orders", createOrderBody(), 100, "client")
	var order models.Order
	_ = json.Unmarshal(w.Body.Bytes(), &order)

	accept := fmt.Sprintf("/api/v1/orders/%d/accept", order.ID)
	if w := doRequest(r, http.MethodPost, accept, nil, 1, "driver"); w.Code != http.StatusOK {
		t.Fatalf("accept: %d", w.Code)
	}

	statusPath := fmt.Sprintf("/api/v1/orders/%d/status", order.ID)
	body := map[string]any{"status": "EN_ROUTE"}

	// wrong driver is forbidden
	if w := doRequest(r, http.MethodPost, statusPath, body, 2, "driver"); w.Code != http.StatusForbidden {
		t.Fatalf("foreign driver: %d, want 403", w.Code)
	}
	if w := doRequest(r, http.MethodPost, statusPath, body, 1, "driver"); w.Code != http.StatusOK {
		t.Fatalf("owning driver: %d %s", w.Code, w.Body.String())
	}
	// illegal transition maps to conflict
	if w := doRequest(r, http.MethodPost, statusPath, body, 1, "driver"); w.Code != http.StatusConflict {
		t.Fatalf("no-op transition: %d, want 409", w.Code)
	}
}

func TestGetOrderNotFoundMapping(t *testing.T) {
	_, r := setupRouter(t)
	w := doRequest(r, http.MethodGet, "/api/v1/orders/999", nil, 100, "client")
	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", w.Code)
	}
}

func TestOperatorEndpointsGated(t *testing.T) {
	_, r := setupRouter(t)

	if w := doRequest(r, http.MethodGet, "/api/v1/operator/orders/unassigned", nil, 100, "client"); w.Code != http.StatusForbidden {
		t.Fatalf("client on operator endpoint: %d, want 403", w.Code)
	}
	if w := doRequest(r, http.MethodGet, "/api/v1/operator/orders/unassigned", nil, 9, "operator"); w.Code != http.StatusOK {
		t.Fatalf("operator: %d", w.Code)
	}
}

func TestHealthNeedsNoAuth(t *testing.T) {
	_, r := setupRouter(t)
	w := doRequest(r, http.MethodGet, "/health", nil, 0, "")
	if w.Code != http.StatusOK {
		t.Fatalf("health: %d", w.Code)
	}
}
