package repository

import (
	"delivery_dispatch/internal/models"

	"gorm.io/gorm"
)

type OrderRepository interface {
	Create(order *models.Order) error
	GetByID(id uint) (*models.Order, error)
	GetByPublicID(publicID string) (*models.Order, error)
	GetByStripeSessionID(sessionID string) (*models.Order, error)
	GetByHubspotDealID(dealID string) (*models.Order, error)
	GetByDriverID(driverID uint) ([]models.Order, error)
	GetByCustomerID(customerID uint) ([]models.Order, error)
	GetByStatus(status models.OrderStatus) ([]models.Order, error)
	CountActiveByDriver(driverID uint) (int64, error)
	Update(order *models.Order) error
	UpdateColumns(id uint, updates map[string]interface{}) error
	GetAll() ([]models.Order, error)
}

type orderRepository struct {
	db *gorm.DB
}

func NewOrderRepository(db *gorm.DB) OrderRepository {
	return &orderRepository{db: db}
}

func (r *orderRepository) Create(order *models.Order) error {
	return r.db.Create(order).Error
}

func (r *orderRepository) GetByID(id uint) (*models.Order, error) {
	var order models.Order
	err := r.db.First(&order, id).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *orderRepository) GetByPublicID(publicID string) (*models.Order, error) {
	var order models.Order
	err := r.db.Where("public_id = ?", publicID).First(&order).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *orderRepository) GetByStripeSessionID(sessionID string) (*models.Order, error) {
	var order models.Order
	err := r.db.Where("stripe_session_id = ?", sessionID).First(&order).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *orderRepository) GetByHubspotDealID(dealID string) (*models.Order, error) {
	var order models.Order
	err := r.db.Where("hubspot_deal_id = ?", dealID).First(&order).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *orderRepository) GetByDriverID(driverID uint) ([]models.Order, error) {
	var orders []models.Order
	err := r.db.Where("driver_id = ?", driverID).Find(&orders).Error
	return orders, err
}

func (r *orderRepository) GetByCustomerID(customerID uint) ([]models.Order, error) {
	var orders []models.Order
	err := r.db.Where("customer_id = ?", customerID).Find(&orders).Error
	return orders, err
}

func (r *orderRepository) GetByStatus(status models.OrderStatus) ([]models.Order, error) {
	var orders []models.Order
	err := r.db.Where("status = ?", string(status)).Find(&orders).Error
	return orders, err
}

func (r *orderRepository) CountActiveByDriver(driverID uint) (int64, error) {
	var count int64
	err := r.db.Model(&models.Order{}).
		Where("driver_id = ? AND status NOT IN ?", driverID,
			[]string{string(models.OrderDelivered), string(models.OrderCanceled)}).
		Count(&count).Error
	return count, err
}

func (r *orderRepository) Update(order *models.Order) error {
	return r.db.Save(order).Error
}

func (r *orderRepository) UpdateColumns(id uint, updates map[string]interface{}) error {
	return r.db.Model(&models.Order{}).Where("id = ?", id).Updates(updates).Error
}

func (r *orderRepository) GetAll() ([]models.Order, error) {
	var orders []models.Order
	err := r.db.Order("created_at DESC").Find(&orders).Error
	return orders, err
}
