package services

import (
	"errors"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/airmems/meme_api/shared"
)

func TestHandleErrorMapsGormErrors(t *testing.T) {
	svc := &SqliteService{}

	tests := []struct {
		name    string
		err     error
		status  int
		message string
	}{
		{"record not found", gorm.ErrRecordNotFound, fiber.StatusNotFound, "Record not found"},
		{"duplicated key", gorm.ErrDuplicatedKey, fiber.StatusConflict, "Conflicting record"},
		{"foreign key violated", gorm.ErrForeignKeyViolated, fiber.StatusBadRequest, "Invalid record reference"},
		{"invalid transaction", gorm.ErrInvalidTransaction, fiber.StatusInternalServerError, "Storage operation failed"},
		{"unique constraint", errors.New("UNIQUE constraint failed: memes.id"), fiber.StatusConflict, "Conflicting record"},
		{"missing table", errors.New("no such table: lessons"), fiber.StatusInternalServerError, "Storage operation failed"},
		{"unknown sqlite error", errors.New("disk I/O error"), fiber.StatusInternalServerError, "Storage operation failed"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mapped := svc.HandleError(tt.err)
			appErr, ok := shared.GetAppError(mapped)
			require.True(t, ok, "expected an AppError, got %v", mapped)
			assert.Equal(t, tt.status, appErr.StatusCode)
			assert.Equal(t, tt.message, appErr.Message)
			assert.Equal(t, tt.err.Error(), appErr.Data)
		})
	}
}

func TestHandleErrorPassthrough(t *testing.T) {
	svc := &SqliteService{}

	assert.NoError(t, svc.HandleError(nil))

	// AppError values already carry a status, so they pass through untouched.
	mapped := svc.HandleError(shared.ErrStoreNotInitialized)
	appErr, ok := shared.GetAppError(mapped)
	require.True(t, ok)
	assert.Equal(t, shared.ErrStoreNotInitialized, appErr)
}
