package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func TestBaseModel_BeforeCreate(t *testing.T) {
	t.Run("BeforeCreate_SetsTimestamps", func(t *testing.T) {
		db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
		if err != nil {
			t.Skipf("Skipping test: could not connect to test database: %v", err)
			return
		}

		type TestModel struct {
			ID string `gorm:"primarykey"`
			BaseModel
			Name string
		}

		db.AutoMigrate(&TestModel{})
		defer db.Migrator().DropTable(&TestModel{})

		model := TestModel{
			ID:   "test-create-123",
			Name: "Test",
		}

		err = db.Create(&model).Error
		assert.NoError(t, err)

		assert.False(t, model.CreatedAt.IsZero())
		assert.False(t, model.UpdatedAt.IsZero())
		assert.WithinDuration(t, time.Now(), model.CreatedAt, 5*time.Second)
		assert.WithinDuration(t, time.Now(), model.UpdatedAt, 5*time.Second)
	})
}

func TestBaseModel_BeforeUpdate(t *testing.T) {
	t.Run("BeforeUpdate_UpdatesTimestamp", func(t *testing.T) {
		db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
		if err != nil {
			t.Skipf("Skipping test: could not connect to test database: %v", err)
			return
		}

		type TestModel struct {
			ID string `gorm:"primarykey"`
			BaseModel
			Name string
		}

		db.AutoMigrate(&TestModel{})
		defer db.Migrator().DropTable(&TestModel{})

		model := TestModel{
			ID:   "test-update-123",
			Name: "Original",
		}
		err = db.Create(&model).Error
		assert.NoError(t, err)
		originalCreatedAt := model.CreatedAt

		model.Name = "Updated"
		err = db.Save(&model).Error
		assert.NoError(t, err)

		assert.Equal(t, originalCreatedAt, model.CreatedAt)
		assert.False(t, model.UpdatedAt.Before(originalCreatedAt))
	})
}

func TestMemberTableName(t *testing.T) {
	assert.Equal(t, "members", Member{}.TableName())
	assert.Equal(t, "companies", Company{}.TableName())
}

func TestIsInvalidationEvent(t *testing.T) {
	assert.True(t, IsInvalidationEvent(EventMembershipWentInvalid))
	assert.True(t, IsInvalidationEvent(EventMembershipWentInvalidAlt))
	assert.False(t, IsInvalidationEvent("membership.created"))
	assert.False(t, IsInvalidationEvent(""))
}

func TestResolvedEventType(t *testing.T) {
	t.Run("PrefersEventType", func(t *testing.T) {
		req := WebhookRequest{EventType: "membership.created", Action: "other"}
		assert.Equal(t, "membership.created", req.ResolvedEventType())
	})

	t.Run("FallsBackToAction", func(t *testing.T) {
		req := WebhookRequest{Action: "membership.went_valid"}
		assert.Equal(t, "membership.went_valid", req.ResolvedEventType())
	})
}
