package services

import (
	"encoding/json"
	"fmt"

	"delivery_dispatch/internal/models"
	"delivery_dispatch/internal/repository"

	"gorm.io/datatypes"
)

// EventService is the write/read surface of the append-only event ledger.
type EventService interface {
	// Record inserts one ledger row. A second call with the same
	// (source, eventID) pair returns repository.ErrDuplicateEvent; callers
	// must treat that as "already handled" and stop.
	Record(source, eventID string, orderID *uint, actor, eventType string, payload map[string]interface{}) (*models.DispatchEvent, error)
	Timeline(orderID uint) ([]models.DispatchEvent, error)
}

type eventService struct {
	eventRepo repository.DispatchEventRepository
}

func NewEventService(eventRepo repository.DispatchEventRepository) EventService {
	return &eventService{eventRepo: eventRepo}
}

func (s *eventService) Record(source, eventID string, orderID *uint, actor, eventType string, payload map[string]interface{}) (*models.DispatchEvent, error) {
	var payloadJSON datatypes.JSON
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal event payload: %w", err)
		}
		payloadJSON = datatypes.JSON(data)
	}

	event := &models.DispatchEvent{
		OrderID:   orderID,
		Actor:     actor,
		EventType: eventType,
		Payload:   payloadJSON,
		Source:    source,
		EventID:   eventID,
	}

	if err := s.eventRepo.Create(event); err != nil {
		return nil, err
	}
	return event, nil
}

func (s *eventService) Timeline(orderID uint) ([]models.DispatchEvent, error) {
	return s.eventRepo.GetByOrderID(orderID)
}
