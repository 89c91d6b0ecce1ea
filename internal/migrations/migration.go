package migrations

import (
	"log"

	"delivery_dispatch/internal/models"
	"delivery_dispatch/internal/repository"
	"delivery_dispatch/internal/services"

	"gorm.io/gorm"
)

// RunMigrations ensures the schema exists and seeds default data. Schema
// creation itself happens in database.Initialize via AutoMigrate; this only
// adds what a fresh install needs to be usable.
func RunMigrations(db *gorm.DB, jwtSecret string) error {
	log.Println("Running database migrations...")

	if err := db.AutoMigrate(
		&models.User{},
		&models.Customer{},
		&models.Quote{},
		&models.Driver{},
		&models.Order{},
		&models.DispatchEvent{},
	); err != nil {
		return err
	}

	if err := createDefaultData(db, jwtSecret); err != nil {
		log.Printf("Warning: Failed to create default data: %v", err)
	}

	log.Println("Database migrations completed successfully!")
	return nil
}

// createDefaultData creates the default admin user.
func createDefaultData(db *gorm.DB, jwtSecret string) error {
	userRepo := repository.NewUserRepository(db)
	userService := services.NewUserService(userRepo, jwtSecret)

	existingUser, err := userService.GetUserByUsername("admin")
	if err == nil && existingUser != nil {
		log.Println("Admin user already exists")
		return nil
	}

	log.Println("Creating default admin user...")
	admin := &models.User{
		Username: "admin",
		Email:    "admin@localhost",
		Role:     string(models.RoleAdmin),
		IsActive: true,
	}

	if err := userService.CreateUser(admin, "admin123"); err != nil {
		log.Printf("Warning: Failed to create admin user: %v", err)
		return err
	}

	log.Println("Admin user created successfully")
	log.Println("Username: admin")
	log.Println("Password: admin123")
	return nil
}
