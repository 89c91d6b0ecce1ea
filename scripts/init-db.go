package main

import (
	"fmt"
	"log"
	"time"

	"delivery_dispatch/internal/config"
	"delivery_dispatch/internal/database"
	"delivery_dispatch/internal/migrations"
	"delivery_dispatch/internal/models"
	"delivery_dispatch/internal/repository"

	"github.com/google/uuid"
)

func main() {
	fmt.Println("Initializing database...")

	// Load configuration
	cfg := config.Load()

	// Initialize database
	db, err := database.Initialize(cfg.DatabaseURL)
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}

	if err := migrations.RunMigrations(db, cfg.JWTSecret); err != nil {
		log.Fatal("Failed to migrate database:", err)
	}

	// Create sample data for local development
	fmt.Println("Creating sample data...")
	customerRepo := repository.NewCustomerRepository(db)
	quoteRepo := repository.NewQuoteRepository(db)
	driverRepo := repository.NewDriverRepository(db)

	customer := &models.Customer{
		Name:  "Jordan Baker",
		Email: "jordan.baker@example.com",
		Phone: "+15550100",
	}
	if err := customerRepo.UpsertByEmail(customer); err != nil {
		log.Printf("Warning: Failed to create sample customer: %v", err)
	}

	deliveryDate := time.Now().AddDate(0, 0, 3).Truncate(24 * time.Hour)
	quote := &models.Quote{
		PublicID:       uuid.NewString(),
		CustomerID:     customer.ID,
		Status:         string(models.QuoteAwaitingPayment),
		PickupAddress:  "12 Harbor St, Portland, OR",
		DropoffAddress: "400 Pine Ave, Portland, OR",
		AmountCents:    12500,
		Currency:       "USD",
		DeliveryDate:   &deliveryDate,
	}
	if err := quoteRepo.Create(quote); err != nil {
		log.Printf("Warning: Failed to create sample quote: %v", err)
	} else {
		fmt.Printf("Sample quote %s created (id %d)\n", quote.PublicID, quote.ID)
	}

	drivers := []models.Driver{
		{Name: "Sam Reyes", Phone: "+15550111", Vehicle: "Cargo van", IsActive: true},
		{Name: "Alex Okafor", Phone: "+15550112", Vehicle: "Box truck", IsActive: true},
	}
	for i := range drivers {
		if err := driverRepo.Create(&drivers[i]); err != nil {
			log.Printf("Warning: Failed to create sample driver %s: %v", drivers[i].Name, err)
		}
	}

	fmt.Println("Database initialization completed successfully!")
}
