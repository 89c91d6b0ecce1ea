package repository

import (
	"errors"

	"delivery_dispatch/internal/models"

	"gorm.io/gorm"
)

type CustomerRepository interface {
	Create(customer *models.Customer) error
	GetByID(id uint) (*models.Customer, error)
	GetByEmail(email string) (*models.Customer, error)
	GetByHubspotContactID(contactID string) (*models.Customer, error)
	UpsertByEmail(customer *models.Customer) error
	Update(customer *models.Customer) error
	UpdateColumns(id uint, updates map[string]interface{}) error
}

type customerRepository struct {
	db *gorm.DB
}

func NewCustomerRepository(db *gorm.DB) CustomerRepository {
	return &customerRepository{db: db}
}

func (r *customerRepository) Create(customer *models.Customer) error {
	customer.Email = models.NormalizeEmail(customer.Email)
	return r.db.Create(customer).Error
}

func (r *customerRepository) GetByID(id uint) (*models.Customer, error) {
	var customer models.Customer
	err := r.db.First(&customer, id).Error
	if err != nil {
		return nil, err
	}
	return &customer, nil
}

func (r *customerRepository) GetByEmail(email string) (*models.Customer, error) {
	var customer models.Customer
	err := r.db.Where("email = ?", models.NormalizeEmail(email)).First(&customer).Error
	if err != nil {
		return nil, err
	}
	return &customer, nil
}

func (r *customerRepository) GetByHubspotContactID(contactID string) (*models.Customer, error) {
	var customer models.Customer
	err := r.db.Where("hubspot_contact_id = ?", contactID).First(&customer).Error
	if err != nil {
		return nil, err
	}
	return &customer, nil
}

// UpsertByEmail finds an existing customer by normalized email and fills in
// missing fields, or creates a new row.
func (r *customerRepository) UpsertByEmail(customer *models.Customer) error {
	customer.Email = models.NormalizeEmail(customer.Email)

	existing, err := r.GetByEmail(customer.Email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return r.db.Create(customer).Error
		}
		return err
	}

	if customer.Name != "" {
		existing.Name = customer.Name
	}
	if customer.Phone != "" {
		existing.Phone = customer.Phone
	}
	if err := r.db.Save(existing).Error; err != nil {
		return err
	}
	*customer = *existing
	return nil
}

func (r *customerRepository) Update(customer *models.Customer) error {
	return r.db.Save(customer).Error
}

func (r *customerRepository) UpdateColumns(id uint, updates map[string]interface{}) error {
	return r.db.Model(&models.Customer{}).Where("id = ?", id).Updates(updates).Error
}
