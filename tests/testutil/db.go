package testutil

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/facturaec/proforma-api/internal/auth"
	"github.com/facturaec/proforma-api/internal/domain"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// SetupTestDB creates an isolated in-memory SQLite database.
// A single connection keeps concurrent transactions serialized, which lets
// the allocation paths behave like they do against a real database.
func SetupTestDB(t *testing.T) *gorm.DB {
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	})
	require.NoError(t, err, "failed to open test database")

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	// User is excluded: its text[] roles column is postgres-only
	err = db.AutoMigrate(
		&domain.Client{},
		&domain.Proforma{},
		&domain.Item{},
		&domain.ProformaSequence{},
	)
	require.NoError(t, err, "failed to migrate test schema")

	t.Cleanup(func() { _ = sqlDB.Close() })

	return db
}

// NewTestLogger returns a no-op logger for service construction in tests
func NewTestLogger() *zap.Logger {
	return zap.NewNop()
}

// ContextForUser builds a request context authenticated as a plain user
func ContextForUser(userID string) context.Context {
	return auth.WithUserContext(context.Background(), &auth.UserContext{
		UserID:      userID,
		DisplayName: "Test User",
		Email:       "test@example.com",
		Roles:       []domain.UserRoleType{domain.RoleUser},
	})
}

// ContextForAdmin builds a request context authenticated as an admin
func ContextForAdmin(userID string) context.Context {
	return auth.WithUserContext(context.Background(), &auth.UserContext{
		UserID:      userID,
		DisplayName: "Test Admin",
		Email:       "admin@example.com",
		Roles:       []domain.UserRoleType{domain.RoleAdmin},
	})
}

// CreateTestClient inserts a client owned by userID and returns it
func CreateTestClient(t *testing.T, db *gorm.DB, userID, cedulaRUC string) *domain.Client {
	client := &domain.Client{
		UserID:    userID,
		FirstName: "Maria",
		LastName:  "Paredes",
		CedulaRUC: cedulaRUC,
		Email:     "maria@example.com",
		Phone:     "0991234567",
		Address:   "Av. Amazonas N24-03",
	}
	require.NoError(t, db.Create(client).Error)
	return client
}

// CreateTestProforma inserts a proforma header with one stored item
func CreateTestProforma(t *testing.T, db *gorm.DB, userID string, clientID uuid.UUID, number int, status domain.ProformaStatus) *domain.Proforma {
	proforma := &domain.Proforma{
		UserID:         userID,
		ProformaNumber: number,
		ClientID:       clientID,
		Status:         status,
		Date:           time.Now().UTC().Truncate(24 * time.Hour),
		IVAPercentage:  domain.DefaultIVAPercentage,
		Subtotal:       30,
		IVAAmount:      4.5,
		Total:          34.5,
	}
	require.NoError(t, db.Create(proforma).Error)

	item := &domain.Item{
		ProformaID:     proforma.ID,
		Description:    "Puerta metálica",
		Unit:           "u",
		Quantity:       2,
		UnitCost:       10,
		PercentageGain: 50,
		LineTotal:      30,
		DisplayOrder:   0,
	}
	require.NoError(t, db.Create(item).Error)

	return proforma
}
