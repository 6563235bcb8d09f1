package seeders

import (
	"log"

	"gorm.io/gorm"
)

// MainSeeder coordinates all seeding operations
type MainSeeder struct {
	db *gorm.DB
}

// NewMainSeeder creates a new main seeder
func NewMainSeeder(db *gorm.DB) *MainSeeder {
	return &MainSeeder{db: db}
}

// SeedAll runs all seeders
func (s *MainSeeder) SeedAll() error {
	log.Println("Starting database seeding...")

	memeSeeder := NewMemeSeeder(s.db)
	if err := memeSeeder.SeedMemes(); err != nil {
		log.Printf("Meme seeding failed: %v", err)
		return err
	}

	log.Println("Database seeding completed successfully!")
	return nil
}

// SeedMemesOnly seeds only the demo memes
func (s *MainSeeder) SeedMemesOnly() error {
	memeSeeder := NewMemeSeeder(s.db)
	return memeSeeder.SeedMemes()
}
