package seeders

import (
	"log"

	"github.com/airmems/meme_api/services"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// MemeSeeder handles seeding the demo meme set
type MemeSeeder struct {
	db *gorm.DB
}

// NewMemeSeeder creates a new meme seeder
func NewMemeSeeder(db *gorm.DB) *MemeSeeder {
	return &MemeSeeder{db: db}
}

// SeedMemes inserts the built-in demo memes so a fresh install has a
// browsable feed before the first live fetch.
func (s *MemeSeeder) SeedMemes() error {
	memes := services.PlaceholderMemes()

	for i := range memes {
		err := s.db.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			UpdateAll: true,
		}).Create(&memes[i]).Error
		if err != nil {
			log.Printf("Error seeding meme %s: %v", memes[i].ID, err)
			return err
		}
		log.Printf("Seeded meme: %s", memes[i].Title)
	}

	log.Println("Meme seeding completed successfully")
	return nil
}
