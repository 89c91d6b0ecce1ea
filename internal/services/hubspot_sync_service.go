package services

import (
	"errors"
	"fmt"
	"log"
	"regexp"

	internalhubspot "delivery_dispatch/internal/hubspot"
	"delivery_dispatch/internal/models"
	"delivery_dispatch/internal/repository"
	"delivery_dispatch/pkg/hubspot"
)

// SyncResult is always returned, never an error: partial and recoverable
// failures land in Errors/Warnings so the caller can log them without the
// sync path ever throwing.
type SyncResult struct {
	Success   bool     `json:"success"`
	ContactID string   `json:"contact_id,omitempty"`
	DealID    string   `json:"deal_id,omitempty"`
	Errors    []string `json:"errors,omitempty"`
	Warnings  []string `json:"warnings,omitempty"`
}

// HubspotAPI is the slice of the HubSpot client the orchestrator needs.
type HubspotAPI interface {
	CreateContact(properties map[string]string) (string, error)
	UpdateContact(id string, properties map[string]string) error
	CreateDeal(properties map[string]string) (string, error)
	UpdateDeal(id string, properties map[string]string) error
	AssociateDealWithContact(dealID, contactID string) error
}

// SchemaProvider serves the cached live property schema per object kind.
type SchemaProvider interface {
	Get(objectType string) (map[string]hubspot.Property, error)
}

type HubspotSyncService interface {
	SyncOrder(order *models.Order) SyncResult
}

type hubspotSyncService struct {
	api          HubspotAPI
	mapper       *internalhubspot.Mapper
	schemas      SchemaProvider
	customerRepo repository.CustomerRepository
	orderRepo    repository.OrderRepository
}

func NewHubspotSyncService(
	api HubspotAPI,
	mapper *internalhubspot.Mapper,
	schemas SchemaProvider,
	customerRepo repository.CustomerRepository,
	orderRepo repository.OrderRepository,
) HubspotSyncService {
	return &hubspotSyncService{
		api:          api,
		mapper:       mapper,
		schemas:      schemas,
		customerRepo: customerRepo,
		orderRepo:    orderRepo,
	}
}

// existingIDPattern pulls the record id out of a HubSpot conflict message,
// e.g. "Contact already exists. Existing ID: 12345".
var existingIDPattern = regexp.MustCompile(`(?i)ID:?\s*([0-9]+)`)

func (s *hubspotSyncService) SyncOrder(order *models.Order) (result SyncResult) {
	// The sync path never throws; anything unexpected becomes one error
	// entry in the result.
	defer func() {
		if r := recover(); r != nil {
			result.Success = false
			result.Errors = append(result.Errors, fmt.Sprintf("unexpected sync failure: %v", r))
		}
	}()

	customer, err := s.customerRepo.GetByID(order.CustomerID)
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("failed to load customer %d: %v", order.CustomerID, err))
		return result
	}

	data := internalhubspot.OrderSyncData{
		OrderNumber:    order.PublicID,
		Status:         order.Status,
		AmountCents:    order.AmountCents,
		Currency:       order.Currency,
		CustomerName:   customer.Name,
		CustomerEmail:  customer.Email,
		CustomerPhone:  customer.Phone,
		PickupAddress:  order.PickupAddress,
		DropoffAddress: order.DropoffAddress,
		DeliveryDate:   order.DeliveryDate,
		CreatedAt:      order.CreatedAt,
	}

	contactID, ok := s.syncContact(customer, data, &result)
	if !ok {
		return result
	}
	result.ContactID = contactID

	dealID, ok := s.syncDeal(order, contactID, data, &result)
	if !ok {
		return result
	}
	result.DealID = dealID

	// Write-back of external ids is best-effort: the CRM-side state is
	// already correct, so a failure here is only a warning.
	if customer.HubspotContactID != contactID {
		if err := s.customerRepo.UpdateColumns(customer.ID, map[string]interface{}{"hubspot_contact_id": contactID}); err != nil {
			result.Warnings = append(result.Warnings, fmt.Sprintf("failed to store contact id: %v", err))
		}
	}
	if order.HubspotDealID != dealID {
		if err := s.orderRepo.UpdateColumns(order.ID, map[string]interface{}{"hubspot_deal_id": dealID}); err != nil {
			result.Warnings = append(result.Warnings, fmt.Sprintf("failed to store deal id: %v", err))
		}
		order.HubspotDealID = dealID
	}

	result.Success = true
	return result
}

func (s *hubspotSyncService) syncContact(customer *models.Customer, data internalhubspot.OrderSyncData, result *SyncResult) (string, bool) {
	props, ok := s.validated(internalhubspot.ObjectContacts, s.mapper.ContactProperties(data), result)
	if !ok {
		return "", false
	}

	if customer.HubspotContactID != "" {
		if err := s.api.UpdateContact(customer.HubspotContactID, props); err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("failed to update contact: %v", err))
			return "", false
		}
		return customer.HubspotContactID, true
	}

	id, err := s.api.CreateContact(props)
	if err == nil {
		return id, true
	}

	// No native upsert endpoint: a conflict means the contact exists, and
	// the existing id rides along in the error message.
	var conflict *hubspot.ConflictError
	if errors.As(err, &conflict) {
		existing := parseExistingID(conflict.Message)
		if existing == "" {
			result.Errors = append(result.Errors, fmt.Sprintf("contact conflict without parseable id: %s", conflict.Message))
			return "", false
		}
		if updateErr := s.api.UpdateContact(existing, props); updateErr != nil {
			result.Warnings = append(result.Warnings, fmt.Sprintf("failed to update existing contact %s: %v", existing, updateErr))
		}
		return existing, true
	}

	result.Errors = append(result.Errors, fmt.Sprintf("failed to create contact: %v", err))
	return "", false
}

func (s *hubspotSyncService) syncDeal(order *models.Order, contactID string, data internalhubspot.OrderSyncData, result *SyncResult) (string, bool) {
	props, ok := s.validated(internalhubspot.ObjectDeals, s.mapper.DealProperties(data), result)
	if !ok {
		return "", false
	}

	if order.HubspotDealID != "" {
		if err := s.api.UpdateDeal(order.HubspotDealID, props); err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("failed to update deal: %v", err))
			return "", false
		}
		return order.HubspotDealID, true
	}

	dealID, err := s.api.CreateDeal(props)
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("failed to create deal: %v", err))
		return "", false
	}
	if err := s.api.AssociateDealWithContact(dealID, contactID); err != nil {
		result.Warnings = append(result.Warnings, fmt.Sprintf("failed to associate deal with contact: %v", err))
	}
	return dealID, true
}

// validated fetches the live schema and filters the bag through it.
// Validation errors never abort the sync; a missing schema does.
func (s *hubspotSyncService) validated(objectType string, bag internalhubspot.PropertyBag, result *SyncResult) (map[string]string, bool) {
	schema, err := s.schemas.Get(objectType)
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("failed to load %s schema: %v", objectType, err))
		return nil, false
	}

	v := internalhubspot.ValidateProperties(bag, schema)
	result.Warnings = append(result.Warnings, v.Warnings...)
	result.Errors = append(result.Errors, v.Errors...)
	for _, w := range v.Warnings {
		log.Printf("Warning: hubspot %s validation: %s", objectType, w)
	}
	return v.Properties, true
}

func parseExistingID(message string) string {
	match := existingIDPattern.FindStringSubmatch(message)
	if len(match) < 2 {
		return ""
	}
	return match[1]
}
