package services

import (
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/whop-boardy/member-directory/models"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// SetupTestDB creates an isolated in-memory sqlite database with the schema
// migrated. Each call gets its own database; cache=shared keeps it visible
// across the pool's connections without leaking between tests.
//
// Exported for use in handler tests.
func SetupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:testdb_%s?mode=memory&cache=shared", uuid.New().String())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("could not open test database: %v", err)
	}

	if err := db.AutoMigrate(&models.Company{}, &models.Member{}); err != nil {
		t.Fatalf("could not migrate test database: %v", err)
	}

	return db
}

// CloseTestDB closes the underlying connection pool, releasing the in-memory
// database. Also used to force datastore errors in failure-path tests.
func CloseTestDB(t *testing.T, db *gorm.DB) {
	t.Helper()

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("could not get underlying sql.DB: %v", err)
	}
	if err := sqlDB.Close(); err != nil {
		t.Fatalf("could not close test database: %v", err)
	}
}
