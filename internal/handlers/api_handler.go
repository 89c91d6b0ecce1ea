package handlers

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"time"

	"delivery_dispatch/internal/models"
	"delivery_dispatch/internal/repository"
	"delivery_dispatch/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type APIHandler struct {
	userService  services.UserService
	orderService services.OrderService
	eventService services.EventService
	driverRepo   repository.DriverRepository
	quoteRepo    repository.QuoteRepository
	customerRepo repository.CustomerRepository
}

func NewAPIHandler(
	userService services.UserService,
	orderService services.OrderService,
	eventService services.EventService,
	driverRepo repository.DriverRepository,
	quoteRepo repository.QuoteRepository,
	customerRepo repository.CustomerRepository,
) *APIHandler {
	return &APIHandler{
		userService:  userService,
		orderService: orderService,
		eventService: eventService,
		driverRepo:   driverRepo,
		quoteRepo:    quoteRepo,
		customerRepo: customerRepo,
	}
}

type loginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (h *APIHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Username and password are required"})
		return
	}

	token, user, err := h.userService.Login(req.Username, req.Password)
	if err != nil {
		if errors.Is(err, services.ErrInvalidCredentials) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid username or password"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Login failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"token": token,
		"user": gin.H{
			"id":       user.ID,
			"username": user.Username,
			"role":     user.Role,
		},
	})
}

func (h *APIHandler) requestIdentity(c *gin.Context) (uint, string) {
	userID, _ := c.Get("user_id")
	role, _ := c.Get("role")
	id, _ := userID.(uint)
	r, _ := role.(string)
	return id, r
}

// driverForUser resolves the driver profile bound to an authenticated user.
func (h *APIHandler) driverForUser(userID uint) (*models.Driver, error) {
	return h.driverRepo.GetByUserID(userID)
}

// ListOrders returns orders visible to the caller: drivers see their
// assignments, customers see their own orders, staff see everything.
func (h *APIHandler) ListOrders(c *gin.Context) {
	userID, role := h.requestIdentity(c)

	var (
		orders []models.Order
		err    error
	)
	switch role {
	case string(models.RoleDriver):
		driver, derr := h.driverForUser(userID)
		if derr != nil {
			c.JSON(http.StatusOK, gin.H{"orders": []services.ProjectedOrder{}})
			return
		}
		orders, err = h.orderService.GetByDriverID(driver.ID)
	case string(models.RoleCustomer):
		customer, cerr := h.customerForUser(userID)
		if cerr != nil {
			c.JSON(http.StatusOK, gin.H{"orders": []services.ProjectedOrder{}})
			return
		}
		orders, err = h.orderService.GetByCustomerID(customer.ID)
	default:
		orders, err = h.orderService.GetAll()
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch orders"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"orders": services.ProjectOrders(orders, role)})
}

// customerForUser matches a user account to a customer record by email.
// Customers created through quotes predate their login accounts.
func (h *APIHandler) customerForUser(userID uint) (*models.Customer, error) {
	user, err := h.userService.GetUserByID(userID)
	if err != nil {
		return nil, err
	}
	return h.customerRepo.GetByEmail(user.Email)
}

func (h *APIHandler) GetOrder(c *gin.Context) {
	order, ok := h.loadOrderForCaller(c)
	if !ok {
		return
	}
	_, role := h.requestIdentity(c)
	c.JSON(http.StatusOK, gin.H{"order": services.ProjectOrder(order, role)})
}

func (h *APIHandler) GetOrderTimeline(c *gin.Context) {
	order, ok := h.loadOrderForCaller(c)
	if !ok {
		return
	}

	events, err := h.eventService.Timeline(order.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch timeline"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"events": events})
}

// loadOrderForCaller fetches the :id order and enforces per-role visibility.
// Out-of-scope orders read as not found rather than forbidden.
func (h *APIHandler) loadOrderForCaller(c *gin.Context) (*models.Order, bool) {
	orderID, err := parseIDParam(c, "id")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid order ID"})
		return nil, false
	}

	order, err := h.orderService.GetByID(orderID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Order not found"})
		return nil, false
	}

	userID, role := h.requestIdentity(c)
	switch role {
	case string(models.RoleDriver):
		driver, derr := h.driverForUser(userID)
		if derr != nil || order.DriverID == nil || *order.DriverID != driver.ID {
			c.JSON(http.StatusNotFound, gin.H{"error": "Order not found"})
			return nil, false
		}
	case string(models.RoleCustomer):
		customer, cerr := h.customerForUser(userID)
		if cerr != nil || order.CustomerID != customer.ID {
			c.JSON(http.StatusNotFound, gin.H{"error": "Order not found"})
			return nil, false
		}
	}
	return order, true
}

type assignDriverRequest struct {
	DriverID uint `json:"driver_id" binding:"required"`
}

func (h *APIHandler) AssignDriver(c *gin.Context) {
	orderID, err := parseIDParam(c, "id")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid order ID"})
		return
	}

	var req assignDriverRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "driver_id is required"})
		return
	}

	userID, role := h.requestIdentity(c)
	order, err := h.orderService.AssignDriver(orderID, req.DriverID, actorTag(userID))
	if err != nil {
		if errors.Is(err, services.ErrInvalidTransition) {
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
			return
		}
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Order or driver not found"})
			return
		}
		log.Printf("Error: failed to assign driver %d to order %d: %v", req.DriverID, orderID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to assign driver"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"order": services.ProjectOrder(order, role)})
}

type updateStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

func (h *APIHandler) UpdateOrderStatus(c *gin.Context) {
	if _, role := h.requestIdentity(c); role == string(models.RoleCustomer) {
		c.JSON(http.StatusForbidden, gin.H{"error": "Insufficient permissions"})
		return
	}

	order, ok := h.loadOrderForCaller(c)
	if !ok {
		return
	}

	var req updateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "status is required"})
		return
	}

	next := models.OrderStatus(req.Status)
	if !models.IsValidStatus(next) {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("Unknown status %q", req.Status)})
		return
	}

	userID, role := h.requestIdentity(c)
	updated, err := h.orderService.AdvanceStatus(order.ID, next, actorTag(userID))
	if err != nil {
		if errors.Is(err, services.ErrInvalidTransition) {
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
			return
		}
		log.Printf("Error: failed to update order %d status: %v", order.ID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update order status"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"order": services.ProjectOrder(updated, role)})
}

type cancelOrderRequest struct {
	Reason string `json:"reason"`
}

func (h *APIHandler) CancelOrder(c *gin.Context) {
	orderID, err := parseIDParam(c, "id")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid order ID"})
		return
	}

	var req cancelOrderRequest
	_ = c.ShouldBindJSON(&req)

	userID, role := h.requestIdentity(c)
	order, err := h.orderService.Cancel(orderID, actorTag(userID), req.Reason)
	if err != nil {
		if errors.Is(err, services.ErrInvalidTransition) {
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
			return
		}
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Order not found"})
			return
		}
		log.Printf("Error: failed to cancel order %d: %v", orderID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to cancel order"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"order": services.ProjectOrder(order, role)})
}

// ListDrivers returns driver profiles annotated with availability. A driver
// with an active delivery is shown as unavailable for direct assignment.
func (h *APIHandler) ListDrivers(c *gin.Context) {
	drivers, err := h.driverRepo.GetAll()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch drivers"})
		return
	}

	result := make([]gin.H, 0, len(drivers))
	for i := range drivers {
		available := false
		if drivers[i].IsActive {
			available, err = h.orderService.DriverIsAvailable(drivers[i].ID)
			if err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch drivers"})
				return
			}
		}
		result = append(result, gin.H{
			"id":        drivers[i].ID,
			"name":      drivers[i].Name,
			"phone":     drivers[i].Phone,
			"vehicle":   drivers[i].Vehicle,
			"is_active": drivers[i].IsActive,
			"available": available,
		})
	}

	c.JSON(http.StatusOK, gin.H{"drivers": result})
}

type createQuoteRequest struct {
	CustomerEmail  string `json:"customer_email" binding:"required"`
	CustomerName   string `json:"customer_name"`
	CustomerPhone  string `json:"customer_phone"`
	PickupAddress  string `json:"pickup_address" binding:"required"`
	DropoffAddress string `json:"dropoff_address" binding:"required"`
	AmountCents    int64  `json:"amount_cents" binding:"required"`
	Currency       string `json:"currency"`
	DeliveryDate   string `json:"delivery_date"`
}

func (h *APIHandler) CreateQuote(c *gin.Context) {
	var req createQuoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "customer_email, pickup_address, dropoff_address and amount_cents are required"})
		return
	}

	customer := &models.Customer{
		Email: models.NormalizeEmail(req.CustomerEmail),
		Name:  req.CustomerName,
		Phone: req.CustomerPhone,
	}
	if err := h.customerRepo.UpsertByEmail(customer); err != nil {
		log.Printf("Error: failed to upsert customer %s: %v", customer.Email, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create quote"})
		return
	}

	quote := &models.Quote{
		PublicID:       uuid.NewString(),
		CustomerID:     customer.ID,
		PickupAddress:  req.PickupAddress,
		DropoffAddress: req.DropoffAddress,
		AmountCents:    req.AmountCents,
		Currency:       req.Currency,
		Status:         string(models.QuoteAwaitingPayment),
	}
	if quote.Currency == "" {
		quote.Currency = "USD"
	}
	if req.DeliveryDate != "" {
		t, err := time.Parse("2006-01-02", req.DeliveryDate)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "delivery_date must be YYYY-MM-DD"})
			return
		}
		quote.DeliveryDate = &t
	}

	if err := h.quoteRepo.Create(quote); err != nil {
		log.Printf("Error: failed to create quote: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create quote"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"quote": quote})
}

func parseIDParam(c *gin.Context, name string) (uint, error) {
	id, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil {
		return 0, err
	}
	return uint(id), nil
}

func actorTag(userID uint) string {
	return fmt.Sprintf("user:%d", userID)
}
