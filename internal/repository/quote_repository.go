package repository

import (
	"delivery_dispatch/internal/models"

	"gorm.io/gorm"
)

type QuoteRepository interface {
	Create(quote *models.Quote) error
	GetByID(id uint) (*models.Quote, error)
	GetByPublicID(publicID string) (*models.Quote, error)
	GetByCustomerID(customerID uint) ([]models.Quote, error)
	Update(quote *models.Quote) error
}

type quoteRepository struct {
	db *gorm.DB
}

func NewQuoteRepository(db *gorm.DB) QuoteRepository {
	return &quoteRepository{db: db}
}

func (r *quoteRepository) Create(quote *models.Quote) error {
	return r.db.Create(quote).Error
}

func (r *quoteRepository) GetByID(id uint) (*models.Quote, error) {
	var quote models.Quote
	err := r.db.First(&quote, id).Error
	if err != nil {
		return nil, err
	}
	return &quote, nil
}

func (r *quoteRepository) GetByPublicID(publicID string) (*models.Quote, error) {
	var quote models.Quote
	err := r.db.Where("public_id = ?", publicID).First(&quote).Error
	if err != nil {
		return nil, err
	}
	return &quote, nil
}

func (r *quoteRepository) GetByCustomerID(customerID uint) ([]models.Quote, error) {
	var quotes []models.Quote
	err := r.db.Where("customer_id = ?", customerID).Find(&quotes).Error
	return quotes, err
}

func (r *quoteRepository) Update(quote *models.Quote) error {
	return r.db.Save(quote).Error
}
