package api

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"taxidispatch/pkg/logger"
	"taxidispatch/pkg/models"
	"taxidispatch/service"
	"taxidispatch/storage"
)

type Handler struct {
	svc service.IServiceManager
	log logger.ILogger
}

func NewHandler(svc service.IServiceManager, log logger.ILogger) *Handler {
	return &Handler{svc: svc, log: log}
}

type createOrderRequest struct {
	// ClientID is only honored for operator/admin callers creating an order
	// on a client's behalf. Clients always book for themselves.
	ClientID           int64     `json:"client_id"`
	FromDistrictID     int64     `json:"from_district_id" binding:"required"`
	ToDistrictID       int64     `json:"to_district_id" binding:"required"`
	FromLocation       *string   `json:"from_location"`
	ToLocation         *string   `json:"to_location"`
	PickupTime         time.Time `json:"pickup_time" binding:"required"`
	Seats              int       `json:"seats"`
	SelectedSeats      []string  `json:"selected_seats"`
	OrderType          string    `json:"order_type" binding:"required"`
	LuggageContactInfo *string   `json:"luggage_contact_info"`
	ExtraInfo          *string   `json:"extra_info"`
}

func (h *Handler) CreateOrder(c *gin.Context) {
	var req createOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	actor := getActor(c)
	clientID := actor.ID
	if actor.Role != models.RoleClient {
		if req.ClientID <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "client_id is required when booking on a client's behalf"})
			return
		}
		clientID = req.ClientID
	}

	order, err := h.svc.Order().Create(c.Request.Context(), service.CreateOrderRequest{
		ClientID:           clientID,
		FromDistrictID:     req.FromDistrictID,
		ToDistrictID:       req.ToDistrictID,
		FromLocation:       req.FromLocation,
		ToLocation:         req.ToLocation,
		PickupTime:         req.PickupTime,
		Seats:              req.Seats,
		SelectedSeats:      req.SelectedSeats,
		OrderType:          models.OrderType(req.OrderType),
		LuggageContactInfo: req.LuggageContactInfo,
		ExtraInfo:          req.ExtraInfo,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, order)
}

func (h *Handler) GetOrder(c *gin.Context) {
	orderID, ok := pathID(c, "id")
	if !ok {
		return
	}
	order, err := h.svc.Order().Get(c.Request.Context(), getActor(c), orderID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

func (h *Handler) AcceptOrder(c *gin.Context) {
	orderID, ok := pathID(c, "id")
	if !ok {
		return
	}
	actor := getActor(c)
	order, err := h.svc.Order().Accept(c.Request.Context(), orderID, actor.ID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

type assignOrderRequest struct {
	DriverID int64 `json:"driver_id" binding:"required"`
}

func (h *Handler) AssignOrder(c *gin.Context) {
	orderID, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req assignOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	order, err := h.svc.Order().ManualAssign(c.Request.Context(), orderID, req.DriverID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

type updateStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

func (h *Handler) UpdateOrderStatus(c *gin.Context) {
	orderID, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req updateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	order, err := h.svc.Order().AdvanceStatus(c.Request.Context(), getActor(c), orderID, models.OrderStatus(req.Status))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

func (h *Handler) ClientHistory(c *gin.Context) {
	status, ok := optionalStatus(c)
	if !ok {
		return
	}
	actor := getActor(c)
	orders, err := h.svc.Order().ClientHistory(c.Request.Context(), actor.ID, status)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, orders)
}

func (h *Handler) ClientActiveOrders(c *gin.Context) {
	actor := getActor(c)
	orders, err := h.svc.Order().ClientActiveOrders(c.Request.Context(), actor.ID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, orders)
}

func (h *Handler) DriverFeed(c *gin.Context) {
	start, ok := timeQuery(c, "start")
	if !ok {
		return
	}
	end, ok := timeQuery(c, "end")
	if !ok {
		return
	}
	maxSeats, err := strconv.Atoi(c.DefaultQuery("max_seats", "4"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "max_seats must be an integer"})
		return
	}

	actor := getActor(c)
	orders, err := h.svc.Driver().Feed(c.Request.Context(), actor.ID, service.FeedRequest{
		WindowStart: start,
		WindowEnd:   end,
		MaxSeats:    maxSeats,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, orders)
}

func (h *Handler) DriverHistory(c *gin.Context) {
	status, ok := optionalStatus(c)
	if !ok {
		return
	}
	actor := getActor(c)
	orders, err := h.svc.Driver().History(c.Request.Context(), actor.ID, status)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, orders)
}

func (h *Handler) DriverActiveOrders(c *gin.Context) {
	actor := getActor(c)
	orders, err := h.svc.Driver().ActiveOrders(c.Request.Context(), actor.ID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, orders)
}

func (h *Handler) UnassignedOrders(c *gin.Context) {
	var filter storage.UnassignedFilter
	if raw := c.Query("from_district_id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "from_district_id must be an integer"})
			return
		}
		filter.FromDistrictID = &id
	}
	filter.FromLocation = c.Query("from_location")
	if raw := c.Query("start"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "start must be RFC3339"})
			return
		}
		filter.Start = &t
	}
	if raw := c.Query("end"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "end must be RFC3339"})
			return
		}
		filter.End = &t
	}

	orders, err := h.svc.Order().UnassignedPending(c.Request.Context(), filter)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, orders)
}

// ActiveOrders is the operator's live board. Without a statuses filter it
// shows everything currently assigned (ACCEPTED and EN_ROUTE).
func (h *Handler) ActiveOrders(c *gin.Context) {
	var statuses []models.OrderStatus
	if raw := c.Query("statuses"); raw != "" {
		for _, s := range strings.Split(raw, ",") {
			statuses = append(statuses, models.OrderStatus(s))
		}
	}
	orders, err := h.svc.Order().OrdersByStatuses(c.Request.Context(), statuses)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, orders)
}

func (h *Handler) StuckOrders(c *gin.Context) {
	hours, err := strconv.Atoi(c.DefaultQuery("hours", "24"))
	if err != nil || hours < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "hours must be a non-negative integer"})
		return
	}
	olderThan := time.Now().Add(-time.Duration(hours) * time.Hour)
	orders, err := h.svc.Order().StuckOrders(c.Request.Context(), olderThan)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, orders)
}

func pathID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid order id"})
		return 0, false
	}
	return id, true
}

func optionalStatus(c *gin.Context) (*models.OrderStatus, bool) {
	raw := c.Query("status")
	if raw == "" {
		return nil, true
	}
	status := models.OrderStatus(raw)
	if !status.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown status " + raw})
		return nil, false
	}
	return &status, true
}

func timeQuery(c *gin.Context, name string) (time.Time, bool) {
	t, err := time.Parse(time.RFC3339, c.Query(name))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": name + " must be RFC3339"})
		return time.Time{}, false
	}
	return t, true
}
