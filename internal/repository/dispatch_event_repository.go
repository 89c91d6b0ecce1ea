package repository

import (
	"errors"
	"strings"

	"delivery_dispatch/internal/models"

	"gorm.io/gorm"
)

// ErrDuplicateEvent signals that a row with the same (source, event_id)
// already exists. Callers treat it as "already handled", not a failure.
var ErrDuplicateEvent = errors.New("dispatch event already recorded")

// DispatchEventRepository is append-only: no update or delete is exposed.
type DispatchEventRepository interface {
	Create(event *models.DispatchEvent) error
	GetByOrderID(orderID uint) ([]models.DispatchEvent, error)
}

type dispatchEventRepository struct {
	db *gorm.DB
}

func NewDispatchEventRepository(db *gorm.DB) DispatchEventRepository {
	return &dispatchEventRepository{db: db}
}

// Create inserts the event. The unique index on (source, event_id) is the
// sole concurrency primitive: when two deliveries of the same event race,
// exactly one insert wins and the loser gets ErrDuplicateEvent.
func (r *dispatchEventRepository) Create(event *models.DispatchEvent) error {
	err := r.db.Create(event).Error
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) || strings.Contains(err.Error(), "23505") {
		return ErrDuplicateEvent
	}
	return err
}

func (r *dispatchEventRepository) GetByOrderID(orderID uint) ([]models.DispatchEvent, error) {
	var events []models.DispatchEvent
	err := r.db.Where("order_id = ?", orderID).Order("created_at ASC").Find(&events).Error
	return events, err
}
