package services

import (
	"errors"
	"os"
	"strings"

	"github.com/alphabatem/common/context"
	"github.com/gofiber/fiber/v2"
	log "github.com/sirupsen/logrus"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/airmems/meme_api/services/repositories"
	"github.com/airmems/meme_api/shared"
)

// SqliteService owns the local database and the record store built on it.
// The store is the single owner of all persisted collections.
type SqliteService struct {
	context.DefaultService
	db    *gorm.DB
	store *repositories.Store

	database string
}

const SQLITE_SVC = "sqlite_svc"

// Id returns Service ID
func (ds SqliteService) Id() string {
	return SQLITE_SVC
}

// Db Access to raw SqliteService db
func (ds SqliteService) Db() *gorm.DB {
	return ds.db
}

// Store returns the initialized record store.
func (ds *SqliteService) Store() *repositories.Store {
	return ds.store
}

// Configure the service
func (ds *SqliteService) Configure(ctx *context.Context) error {
	ds.database = os.Getenv("DB_DATABASE")
	if ds.database == "" {
		ds.database = "airmems.db"
	}

	return ds.DefaultService.Configure(ctx)
}

// Start opens the database and initializes the store. Migration failures are
// storage-unavailable: the process still serves fresh feed content, but
// nothing persists.
func (ds *SqliteService) Start() (err error) {
	ds.db, err = gorm.Open(sqlite.Open(ds.database), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Error),
	})
	if err != nil {
		return err
	}

	ds.store = repositories.NewStore(ds.db)
	if err = ds.store.Initialize(); err != nil {
		log.Printf("Failed to migrate database: %v", err)
		return err
	}

	log.Println("Database connected and migrated successfully")
	return nil
}

func (ds *SqliteService) Shutdown() {
	if ds.store != nil {
		_ = ds.store.Close()
	}
}

// HandleError maps raw gorm/sqlite errors onto the AppError taxonomy so the
// HTTP layer renders a meaningful status instead of a blanket 500. AppError
// values already in the chain pass through untouched.
func (ds *SqliteService) HandleError(err error) error {
	if err == nil {
		return nil
	}
	if appErr, ok := shared.GetAppError(err); ok {
		return appErr
	}

	var statusCode int
	var errorType string
	var message string

	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		statusCode = fiber.StatusNotFound
		errorType = "NOT_FOUND"
		message = "Record not found"
	case errors.Is(err, gorm.ErrDuplicatedKey):
		statusCode = fiber.StatusConflict
		errorType = "CONFLICT"
		message = "Conflicting record"
	case errors.Is(err, gorm.ErrForeignKeyViolated):
		statusCode = fiber.StatusBadRequest
		errorType = "FOREIGN_KEY_VIOLATION"
		message = "Invalid record reference"
	case errors.Is(err, gorm.ErrInvalidTransaction):
		statusCode = fiber.StatusInternalServerError
		errorType = "TRANSACTION_ERROR"
		message = "Storage operation failed"
	default:
		// Check for SQLite-specific errors
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			statusCode = fiber.StatusConflict
			errorType = "UNIQUE_CONSTRAINT"
			message = "Conflicting record"
		} else if strings.Contains(err.Error(), "no such table") {
			statusCode = fiber.StatusInternalServerError
			errorType = "SCHEMA_ERROR"
			message = "Storage operation failed"
		} else {
			statusCode = fiber.StatusInternalServerError
			errorType = "INTERNAL_ERROR"
			message = "Storage operation failed"
		}
	}

	logEntry := log.WithFields(log.Fields{
		"status_code": statusCode,
		"error_type":  errorType,
		"error":       err.Error(),
	})

	if statusCode >= 500 {
		logEntry.Error("Database error occurred")
	} else {
		logEntry.Warn("Database operation failed")
	}

	return shared.NewAppError(statusCode, message, err.Error())
}
