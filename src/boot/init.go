package boot

import (
	"log"
	"os"
	"planngo/src/db"
	"planngo/src/models"
	"planngo/src/types"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

func InitDb() *gorm.DB {
	db := db.GetDb()

	err := db.AutoMigrate(
		&models.User{},
		&models.Client{},
		&models.Organizer{},
		&models.Venue{},
		&models.Event{},
		&models.Ticket{},
		&models.Payment{},
	)
	if err != nil {
		log.Fatalf("error migration: %s", err.Error())
	}

	return db
}

// SeedData creates the initial admin account and sample venues on a
// fresh database. Does nothing if any user already exists.
func SeedData() {
	db := db.GetDb()
	var count int64
	if err := db.Model(&models.User{}).Count(&count).Error; err != nil {
		log.Printf("Error checking for existing users: %s\n", err.Error())
		return
	}
	if count > 0 {
		return
	}

	adminPassword := os.Getenv("ADMIN_PASSWORD")
	if adminPassword == "" {
		adminPassword = "admin123"
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(adminPassword), bcrypt.DefaultCost)
	if err != nil {
		log.Printf("Error hashing admin password: %s\n", err.Error())
		return
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		admin := models.User{
			Name:           "Admin User",
			Email:          "admin@planngo.com",
			HashedPassword: string(hashed),
			Role:           string(types.ROLE_ADMIN),
			EmailVerified:  true,
		}
		if err := tx.Create(&admin).Error; err != nil {
			return err
		}

		venues := []models.Venue{
			{VenueName: "Grand Convention Center", Location: "Mumbai, Maharashtra", Capacity: 1000, IsAvailable: true},
			{VenueName: "Tech Hub Auditorium", Location: "Bangalore, Karnataka", Capacity: 500, IsAvailable: true},
			{VenueName: "Cultural Center", Location: "Delhi, NCR", Capacity: 800, IsAvailable: true},
			{VenueName: "Sports Complex", Location: "Pune, Maharashtra", Capacity: 2000, IsAvailable: true},
			{VenueName: "Art Gallery", Location: "Chennai, Tamil Nadu", Capacity: 300, IsAvailable: true},
		}
		if err := tx.Create(&venues).Error; err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		log.Printf("Error seeding database: %s\n", err.Error())
		return
	}
	log.Println("Database seeded with admin account and sample venues")
}
