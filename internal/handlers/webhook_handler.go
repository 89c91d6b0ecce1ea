package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"delivery_dispatch/internal/config"
	"delivery_dispatch/internal/hubspot"
	"delivery_dispatch/internal/metrics"
	"delivery_dispatch/internal/models"
	"delivery_dispatch/internal/repository"
	"delivery_dispatch/internal/services"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type WebhookHandler struct {
	cfg          *config.Config
	eventService services.EventService
	orderService services.OrderService
	orderRepo    repository.OrderRepository
	customerRepo repository.CustomerRepository
}

func NewWebhookHandler(
	cfg *config.Config,
	eventService services.EventService,
	orderService services.OrderService,
	orderRepo repository.OrderRepository,
	customerRepo repository.CustomerRepository,
) *WebhookHandler {
	return &WebhookHandler{
		cfg:          cfg,
		eventService: eventService,
		orderService: orderService,
		orderRepo:    orderRepo,
		customerRepo: customerRepo,
	}
}

func (h *WebhookHandler) tolerance() time.Duration {
	return time.Duration(h.cfg.WebhookTolerance) * time.Second
}

type stripeEvent struct {
	ID      string `json:"id"`
	Type    string `json:"type"`
	Created int64  `json:"created"`
	Data    struct {
		Object struct {
			ID          string            `json:"id"`
			AmountTotal int64             `json:"amount_total"`
			Currency    string            `json:"currency"`
			Metadata    map[string]string `json:"metadata"`
		} `json:"object"`
	} `json:"data"`
}

// HandleStripeWebhook ingests payment provider events. Signature first,
// ledger second, side effects last: a redelivered event short-circuits at
// the ledger and is acknowledged without reprocessing.
func (h *WebhookHandler) HandleStripeWebhook(c *gin.Context) {
	start := time.Now()
	defer func() {
		metrics.WebhookProcessingDuration.WithLabelValues(models.SourceStripe).Observe(time.Since(start).Seconds())
	}()
	metrics.WebhookEventsTotal.WithLabelValues(models.SourceStripe).Inc()

	body, err := c.GetRawData()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to read request body"})
		return
	}

	// A missing secret is a hard error, not a bypass.
	if h.cfg.StripeWebhookSecret == "" {
		log.Printf("Error: stripe webhook received but STRIPE_WEBHOOK_SECRET is not configured")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Webhook secret not configured"})
		return
	}

	if err := verifyStripeSignature(body, c.GetHeader("Stripe-Signature"), h.cfg.StripeWebhookSecret, h.tolerance()); err != nil {
		metrics.WebhookInvalidSignaturesTotal.WithLabelValues(models.SourceStripe).Inc()
		log.Printf("Warning: stripe webhook signature rejected: %v", err)
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid signature"})
		return
	}

	var event stripeEvent
	if err := json.Unmarshal(body, &event); err != nil || event.ID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Malformed payload"})
		return
	}

	_, err = h.eventService.Record(
		models.SourceStripe, event.ID, nil, "system", event.Type,
		map[string]interface{}{
			"object_id":   event.Data.Object.ID,
			"occurred_at": time.Unix(event.Created, 0).UTC().Format(time.RFC3339),
		},
	)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicateEvent) {
			// Providers retry on any non-2xx; a replay must be acknowledged
			// without applying side effects again.
			metrics.WebhookDuplicatesTotal.WithLabelValues(models.SourceStripe).Inc()
			c.JSON(http.StatusOK, gin.H{"received": true})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to record event"})
		return
	}

	switch event.Type {
	case "checkout.session.completed":
		h.handleCheckoutCompleted(c, &event)
	default:
		log.Printf("Ignoring unhandled stripe event type %s", event.Type)
		c.JSON(http.StatusOK, gin.H{"received": true})
	}
}

func (h *WebhookHandler) handleCheckoutCompleted(c *gin.Context, event *stripeEvent) {
	session := event.Data.Object

	quoteIDRaw := session.Metadata["quote_id"]
	customerIDRaw := session.Metadata["customer_id"]
	if quoteIDRaw == "" || customerIDRaw == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing quote_id or customer_id in session metadata"})
		return
	}

	quoteID, err := strconv.ParseUint(quoteIDRaw, 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid quote_id in session metadata"})
		return
	}
	customerID, err := strconv.ParseUint(customerIDRaw, 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid customer_id in session metadata"})
		return
	}

	order, err := h.orderService.CreateFromPayment(services.CreateOrderParams{
		StripeSessionID: session.ID,
		QuoteID:         uint(quoteID),
		CustomerID:      uint(customerID),
		AmountCents:     session.AmountTotal,
		Currency:        strings.ToUpper(session.Currency),
		PaymentEventID:  event.ID,
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// The provider should not retry something we don't recognize.
			log.Printf("Warning: checkout session %s references unknown quote %d", session.ID, quoteID)
			c.JSON(http.StatusOK, gin.H{"received": true})
			return
		}
		log.Printf("Error: failed to create order for session %s: %v", session.ID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create order"})
		return
	}

	log.Printf("Order %s created from checkout session %s", order.PublicID, session.ID)
	c.JSON(http.StatusOK, gin.H{"received": true})
}

type hubspotEvent struct {
	EventID          int64  `json:"eventId"`
	SubscriptionType string `json:"subscriptionType"`
	ObjectID         int64  `json:"objectId"`
	PropertyName     string `json:"propertyName"`
	PropertyValue    string `json:"propertyValue"`
	OccurredAt       int64  `json:"occurredAt"`
}

// HandleHubspotWebhook ingests CRM property-change events (reverse sync).
func (h *WebhookHandler) HandleHubspotWebhook(c *gin.Context) {
	start := time.Now()
	defer func() {
		metrics.WebhookProcessingDuration.WithLabelValues(models.SourceHubspot).Observe(time.Since(start).Seconds())
	}()
	metrics.WebhookEventsTotal.WithLabelValues(models.SourceHubspot).Inc()

	body, err := c.GetRawData()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to read request body"})
		return
	}

	if h.cfg.HubspotWebhookSecret == "" {
		log.Printf("Error: hubspot webhook received but HUBSPOT_WEBHOOK_SECRET is not configured")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Webhook secret not configured"})
		return
	}

	uri := "https://" + c.Request.Host + c.Request.RequestURI
	if err := verifyHubspotSignature(
		c.Request.Method, uri, body,
		c.GetHeader("X-HubSpot-Request-Timestamp"),
		c.GetHeader("X-HubSpot-Signature-v3"),
		h.cfg.HubspotWebhookSecret, h.tolerance(),
	); err != nil {
		metrics.WebhookInvalidSignaturesTotal.WithLabelValues(models.SourceHubspot).Inc()
		log.Printf("Warning: hubspot webhook signature rejected: %v", err)
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid signature"})
		return
	}

	var events []hubspotEvent
	if err := json.Unmarshal(body, &events); err != nil || len(events) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Malformed payload"})
		return
	}

	processed := 0
	duplicates := 0
	for i := range events {
		applied, duplicate := h.processHubspotEvent(&events[i])
		if duplicate {
			duplicates++
		} else if applied {
			processed++
		}
	}

	if processed == 0 && duplicates > 0 {
		metrics.WebhookDuplicatesTotal.WithLabelValues(models.SourceHubspot).Inc()
		c.JSON(http.StatusOK, gin.H{"message": "Event already processed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": fmt.Sprintf("Processed %d events", processed),
		"eventId": strconv.FormatInt(events[0].EventID, 10),
	})
}

// processHubspotEvent routes one property-change event. The ledger row is
// written before any mutation so redelivery dedups, and the computed diff is
// captured in its payload.
func (h *WebhookHandler) processHubspotEvent(event *hubspotEvent) (applied, duplicate bool) {
	eventID := strconv.FormatInt(event.EventID, 10)
	objectID := strconv.FormatInt(event.ObjectID, 10)
	changes := map[string]string{event.PropertyName: event.PropertyValue}

	switch {
	case strings.HasPrefix(event.SubscriptionType, "deal."):
		return h.applyDealChange(eventID, objectID, changes)
	case strings.HasPrefix(event.SubscriptionType, "contact."):
		return h.applyContactChange(eventID, objectID, changes)
	default:
		log.Printf("Ignoring unhandled hubspot subscription type %s", event.SubscriptionType)
		_, err := h.eventService.Record(models.SourceHubspot, eventID, nil, "hubspot", event.SubscriptionType, nil)
		return false, errors.Is(err, repository.ErrDuplicateEvent)
	}
}

func (h *WebhookHandler) applyDealChange(eventID, dealID string, changes map[string]string) (applied, duplicate bool) {
	order, err := h.orderRepo.GetByHubspotDealID(dealID)
	if err != nil {
		// The external entity isn't tracked internally; not an error.
		log.Printf("Warning: hubspot deal %s has no matching order, skipping", dealID)
		_, recErr := h.eventService.Record(models.SourceHubspot, eventID, nil, "hubspot", models.EventSyncFromHubspot,
			map[string]interface{}{"dealId": dealID, "propertyChanges": changes})
		return false, errors.Is(recErr, repository.ErrDuplicateEvent)
	}

	updates, metadata, ignored := hubspot.DealColumnUpdates(changes)
	for _, name := range ignored {
		log.Printf("Ignoring hubspot deal property %s with no reverse mapping", name)
	}

	_, err = h.eventService.Record(
		models.SourceHubspot, eventID, &order.ID, "hubspot", models.EventSyncFromHubspot,
		map[string]interface{}{
			"dealId":          dealID,
			"propertyChanges": changes,
			"updates":         updates,
			"metadata":        metadata,
		},
	)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicateEvent) {
			return false, true
		}
		log.Printf("Error: failed to record hubspot event %s: %v", eventID, err)
		return false, false
	}

	if len(metadata) > 0 {
		merged, err := hubspot.MergeMetadata(order.HubspotMetadata, metadata)
		if err != nil {
			log.Printf("Error: failed to merge metadata for order %d: %v", order.ID, err)
		} else {
			updates["hubspot_metadata"] = merged
		}
	}
	if len(updates) == 0 {
		return false, false
	}
	if err := h.orderRepo.UpdateColumns(order.ID, updates); err != nil {
		log.Printf("Error: failed to apply hubspot deal changes to order %d: %v", order.ID, err)
		return false, false
	}
	return true, false
}

func (h *WebhookHandler) applyContactChange(eventID, contactID string, changes map[string]string) (applied, duplicate bool) {
	customer, err := h.customerRepo.GetByHubspotContactID(contactID)
	if err != nil {
		log.Printf("Warning: hubspot contact %s has no matching customer, skipping", contactID)
		_, recErr := h.eventService.Record(models.SourceHubspot, eventID, nil, "hubspot", models.EventSyncFromHubspot,
			map[string]interface{}{"contactId": contactID, "propertyChanges": changes})
		return false, errors.Is(recErr, repository.ErrDuplicateEvent)
	}

	updates, ignored := hubspot.ContactColumnUpdates(customer, changes)
	for _, name := range ignored {
		log.Printf("Ignoring hubspot contact property %s with no reverse mapping", name)
	}

	_, err = h.eventService.Record(
		models.SourceHubspot, eventID, nil, "hubspot", models.EventSyncFromHubspot,
		map[string]interface{}{
			"contactId":       contactID,
			"propertyChanges": changes,
			"updates":         updates,
		},
	)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicateEvent) {
			return false, true
		}
		log.Printf("Error: failed to record hubspot event %s: %v", eventID, err)
		return false, false
	}

	if len(updates) == 0 {
		return false, false
	}
	if err := h.customerRepo.UpdateColumns(customer.ID, updates); err != nil {
		log.Printf("Error: failed to apply hubspot contact changes to customer %d: %v", customer.ID, err)
		return false, false
	}
	return true, false
}
