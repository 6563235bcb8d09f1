package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/airmems/meme_api/seed/seeders"
	"github.com/joho/godotenv"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/airmems/meme_api/model"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	var (
		seedType = flag.String("type", "all", "Type of seeding: all, memes")
		dbPath   = flag.String("db", "", "Database path (overrides DB_DATABASE env var)")
		help     = flag.Bool("help", false, "Show help message")
	)
	flag.Parse()

	if *help {
		showHelp()
		return
	}

	databasePath := *dbPath
	if databasePath == "" {
		databasePath = os.Getenv("DB_DATABASE")
		if databasePath == "" {
			databasePath = "airmems.db"
		}
	}

	db, err := gorm.Open(sqlite.Open(databasePath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Info),
	})
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	log.Printf("Connected to database: %s", databasePath)

	if err := db.AutoMigrate(
		&model.Meme{},
		&model.Lesson{},
		&model.Explanation{},
		&model.Progress{},
		&model.SavedLesson{},
	); err != nil {
		log.Fatalf("Failed to migrate schema: %v", err)
	}

	mainSeeder := seeders.NewMainSeeder(db)

	switch *seedType {
	case "all":
		log.Println("Running complete database seeding...")
		err = mainSeeder.SeedAll()
	case "memes":
		log.Println("Seeding demo memes...")
		err = mainSeeder.SeedMemesOnly()
	default:
		log.Fatalf("Unknown seed type: %s (use -help for options)", *seedType)
	}

	if err != nil {
		log.Fatalf("Seeding failed: %v", err)
	}
}

func showHelp() {
	fmt.Println("AirMems database seeder")
	fmt.Println()
	fmt.Println("Usage: seed [flags]")
	fmt.Println()
	fmt.Println("Flags:")
	flag.PrintDefaults()
}
