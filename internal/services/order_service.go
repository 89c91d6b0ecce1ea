package services

import (
	"errors"
	"fmt"
	"log"

	"delivery_dispatch/internal/metrics"
	"delivery_dispatch/internal/models"
	"delivery_dispatch/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ErrInvalidTransition is returned when a requested status move is not a
// legal single forward step (or a cancel of a non-terminal order). The order
// row is untouched when this is returned.
var ErrInvalidTransition = errors.New("invalid order status transition")

// Notifier delivers customer/driver notifications. All calls are post-commit
// and best-effort.
type Notifier interface {
	NotifyPaymentConfirmed(order *models.Order, customer *models.Customer) error
	NotifyDriverAssigned(order *models.Order, driver *models.Driver) error
	NotifyStatusChanged(order *models.Order, oldStatus string) error
}

// OrderSyncer mirrors an order into HubSpot. Post-commit and best-effort.
type OrderSyncer interface {
	SyncOrder(order *models.Order) SyncResult
}

// NoopSyncer is used when no CRM credentials are configured.
type NoopSyncer struct{}

func (NoopSyncer) SyncOrder(*models.Order) SyncResult { return SyncResult{Success: true} }

// CreateOrderParams is what the payment webhook hands over once the checkout
// session has been verified and parsed.
type CreateOrderParams struct {
	StripeSessionID string
	QuoteID         uint
	CustomerID      uint
	AmountCents     int64
	Currency        string
	PaymentEventID  string
}

type OrderService interface {
	// CreateFromPayment materializes the order for a successful checkout
	// session. Idempotent on the session id: a redelivered webhook finds
	// the existing order and creates nothing.
	CreateFromPayment(params CreateOrderParams) (*models.Order, error)
	AssignDriver(orderID, driverID uint, actor string) (*models.Order, error)
	AdvanceStatus(orderID uint, next models.OrderStatus, actor string) (*models.Order, error)
	Cancel(orderID uint, actor, reason string) (*models.Order, error)
	GetByID(id uint) (*models.Order, error)
	GetAll() ([]models.Order, error)
	GetByDriverID(driverID uint) ([]models.Order, error)
	GetByCustomerID(customerID uint) ([]models.Order, error)
	DriverIsAvailable(driverID uint) (bool, error)
}

type orderService struct {
	orderRepo    repository.OrderRepository
	quoteRepo    repository.QuoteRepository
	customerRepo repository.CustomerRepository
	driverRepo   repository.DriverRepository
	events       EventService
	notifier     Notifier
	syncer       OrderSyncer
}

func NewOrderService(
	orderRepo repository.OrderRepository,
	quoteRepo repository.QuoteRepository,
	customerRepo repository.CustomerRepository,
	driverRepo repository.DriverRepository,
	events EventService,
	notifier Notifier,
	syncer OrderSyncer,
) OrderService {
	return &orderService{
		orderRepo:    orderRepo,
		quoteRepo:    quoteRepo,
		customerRepo: customerRepo,
		driverRepo:   driverRepo,
		events:       events,
		notifier:     notifier,
		syncer:       syncer,
	}
}

// postCommitTask is one best-effort side effect executed after the
// authoritative database write. A task failure is logged and swallowed: the
// order record is never held hostage by a downstream outage.
type postCommitTask struct {
	name string
	run  func() error
}

func (s *orderService) runPostCommit(tasks []postCommitTask) {
	for _, task := range tasks {
		func() {
			defer func() {
				if r := recover(); r != nil {
					log.Printf("Warning: post-commit task %s panicked: %v", task.name, r)
				}
			}()
			if err := task.run(); err != nil {
				log.Printf("Warning: post-commit task %s failed: %v", task.name, err)
			}
		}()
	}
}

func (s *orderService) CreateFromPayment(params CreateOrderParams) (*models.Order, error) {
	// One order per checkout session.
	existing, err := s.orderRepo.GetByStripeSessionID(params.StripeSessionID)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	quote, err := s.quoteRepo.GetByID(params.QuoteID)
	if err != nil {
		return nil, fmt.Errorf("failed to load quote %d: %w", params.QuoteID, err)
	}

	order := &models.Order{
		PublicID:        uuid.NewString(),
		QuoteID:         quote.ID,
		CustomerID:      params.CustomerID,
		Status:          string(models.OrderReadyForDispatch),
		AmountCents:     params.AmountCents,
		Currency:        params.Currency,
		PickupAddress:   quote.PickupAddress,
		DropoffAddress:  quote.DropoffAddress,
		DeliveryDate:    quote.DeliveryDate,
		StripeSessionID: params.StripeSessionID,
	}
	if err := s.orderRepo.Create(order); err != nil {
		// A concurrent delivery of the same session may have won the race.
		if winner, lookupErr := s.orderRepo.GetByStripeSessionID(params.StripeSessionID); lookupErr == nil {
			return winner, nil
		}
		return nil, err
	}

	quote.Status = string(models.QuoteConverted)
	if err := s.quoteRepo.Update(quote); err != nil {
		log.Printf("Warning: failed to mark quote %d converted: %v", quote.ID, err)
	}

	if _, err := s.events.Record(
		models.SourceAPI, "payment_completed:"+params.StripeSessionID,
		&order.ID, "system", models.EventPaymentCompleted,
		map[string]interface{}{
			"stripe_session_id": params.StripeSessionID,
			"stripe_event_id":   params.PaymentEventID,
			"amount_cents":      params.AmountCents,
			"currency":          params.Currency,
		},
	); err != nil && !errors.Is(err, repository.ErrDuplicateEvent) {
		log.Printf("Warning: failed to record payment_completed event for order %d: %v", order.ID, err)
	}

	s.runPostCommit([]postCommitTask{
		{name: "hubspot_sync", run: func() error { return s.syncOrder(order) }},
		{name: "payment_confirmation", run: func() error {
			customer, err := s.customerRepo.GetByID(order.CustomerID)
			if err != nil {
				return err
			}
			return s.notifier.NotifyPaymentConfirmed(order, customer)
		}},
	})

	return order, nil
}

func (s *orderService) AssignDriver(orderID, driverID uint, actor string) (*models.Order, error) {
	order, err := s.orderRepo.GetByID(orderID)
	if err != nil {
		return nil, err
	}
	if models.OrderStatus(order.Status) != models.OrderReadyForDispatch {
		return nil, fmt.Errorf("%w: cannot assign driver while order is %s", ErrInvalidTransition, order.Status)
	}

	driver, err := s.driverRepo.GetByID(driverID)
	if err != nil {
		return nil, err
	}

	oldStatus := order.Status
	order.DriverID = &driver.ID
	order.Status = string(models.OrderAssigned)
	if err := s.orderRepo.Update(order); err != nil {
		return nil, err
	}

	if _, err := s.events.Record(
		models.SourceDispatcher, uuid.NewString(),
		&order.ID, actor, models.EventDriverAssigned,
		map[string]interface{}{
			"driver_id":   driver.ID,
			"driver_name": driver.Name,
			"old_status":  oldStatus,
			"new_status":  order.Status,
		},
	); err != nil {
		log.Printf("Warning: failed to record driver_assigned event for order %d: %v", order.ID, err)
	}

	s.runPostCommit([]postCommitTask{
		{name: "hubspot_sync", run: func() error { return s.syncOrder(order) }},
		{name: "driver_notification", run: func() error { return s.notifier.NotifyDriverAssigned(order, driver) }},
	})

	return order, nil
}

func (s *orderService) AdvanceStatus(orderID uint, next models.OrderStatus, actor string) (*models.Order, error) {
	if !models.IsValidStatus(next) {
		return nil, fmt.Errorf("%w: unknown status %q", ErrInvalidTransition, next)
	}
	if next == models.OrderCanceled {
		return nil, fmt.Errorf("%w: use cancel to terminate an order", ErrInvalidTransition)
	}

	order, err := s.orderRepo.GetByID(orderID)
	if err != nil {
		return nil, err
	}

	current := models.OrderStatus(order.Status)
	if !current.CanTransition(next) {
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, current, next)
	}

	return s.transition(order, next, actor, nil)
}

func (s *orderService) Cancel(orderID uint, actor, reason string) (*models.Order, error) {
	order, err := s.orderRepo.GetByID(orderID)
	if err != nil {
		return nil, err
	}

	current := models.OrderStatus(order.Status)
	if !current.CanTransition(models.OrderCanceled) {
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, current, models.OrderCanceled)
	}

	extra := map[string]interface{}{}
	if reason != "" {
		extra["reason"] = reason
	}
	return s.transition(order, models.OrderCanceled, actor, extra)
}

// transition performs the authoritative status write, records the ledger
// row, and then fires the best-effort side effects.
func (s *orderService) transition(order *models.Order, next models.OrderStatus, actor string, extra map[string]interface{}) (*models.Order, error) {
	oldStatus := order.Status
	order.Status = string(next)
	if err := s.orderRepo.Update(order); err != nil {
		return nil, err
	}

	payload := map[string]interface{}{
		"old_status": oldStatus,
		"new_status": order.Status,
	}
	for k, v := range extra {
		payload[k] = v
	}

	if _, err := s.events.Record(
		models.SourceAPI, uuid.NewString(),
		&order.ID, actor, models.EventStatusChanged, payload,
	); err != nil {
		log.Printf("Warning: failed to record status_changed event for order %d: %v", order.ID, err)
	}

	s.runPostCommit([]postCommitTask{
		{name: "hubspot_sync", run: func() error { return s.syncOrder(order) }},
		{name: "status_notification", run: func() error { return s.notifier.NotifyStatusChanged(order, oldStatus) }},
	})

	return order, nil
}

func (s *orderService) syncOrder(order *models.Order) error {
	metrics.HubspotSyncsTotal.Inc()
	result := s.syncer.SyncOrder(order)
	if !result.Success {
		metrics.HubspotSyncFailuresTotal.Inc()
		return fmt.Errorf("hubspot sync failed: %v", result.Errors)
	}
	for _, warning := range result.Warnings {
		log.Printf("Warning: hubspot sync for order %d: %s", order.ID, warning)
	}
	return nil
}

func (s *orderService) GetByID(id uint) (*models.Order, error) {
	return s.orderRepo.GetByID(id)
}

func (s *orderService) GetAll() ([]models.Order, error) {
	return s.orderRepo.GetAll()
}

func (s *orderService) GetByDriverID(driverID uint) ([]models.Order, error) {
	return s.orderRepo.GetByDriverID(driverID)
}

func (s *orderService) GetByCustomerID(customerID uint) ([]models.Order, error) {
	return s.orderRepo.GetByCustomerID(customerID)
}

// DriverIsAvailable reports whether the driver has no active orders.
func (s *orderService) DriverIsAvailable(driverID uint) (bool, error) {
	count, err := s.orderRepo.CountActiveByDriver(driverID)
	if err != nil {
		return false, err
	}
	return count == 0, nil
}
