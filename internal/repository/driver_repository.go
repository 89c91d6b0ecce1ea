package repository

import (
	"delivery_dispatch/internal/models"

	"gorm.io/gorm"
)

type DriverRepository interface {
	Create(driver *models.Driver) error
	GetByID(id uint) (*models.Driver, error)
	GetByUserID(userID uint) (*models.Driver, error)
	GetAll() ([]models.Driver, error)
	Update(driver *models.Driver) error
}

type driverRepository struct {
	db *gorm.DB
}

func NewDriverRepository(db *gorm.DB) DriverRepository {
	return &driverRepository{db: db}
}

func (r *driverRepository) Create(driver *models.Driver) error {
	return r.db.Create(driver).Error
}

func (r *driverRepository) GetByID(id uint) (*models.Driver, error) {
	var driver models.Driver
	err := r.db.First(&driver, id).Error
	if err != nil {
		return nil, err
	}
	return &driver, nil
}

func (r *driverRepository) GetByUserID(userID uint) (*models.Driver, error) {
	var driver models.Driver
	err := r.db.Where("user_id = ?", userID).First(&driver).Error
	if err != nil {
		return nil, err
	}
	return &driver, nil
}

func (r *driverRepository) GetAll() ([]models.Driver, error) {
	var drivers []models.Driver
	err := r.db.Where("is_active = ?", true).Find(&drivers).Error
	return drivers, err
}

func (r *driverRepository) Update(driver *models.Driver) error {
	return r.db.Save(driver).Error
}
