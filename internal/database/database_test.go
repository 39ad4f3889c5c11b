package database

import (
	"testing"

	"docfit/internal/models"
)

func TestInitialize(t *testing.T) {
	db, err := Initialize("")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	for _, model := range []any{&models.UserPreferences{}, &models.ExamRecord{}, &models.DocumentRecord{}} {
		if !db.Migrator().HasTable(model) {
			t.Errorf("Expected table for %T", model)
		}
	}

	// The single connection keeps the in-memory database shared between calls
	if _, err := models.GetOrCreatePreferences(db); err != nil {
		t.Fatalf("Expected preferences to be created, got %v", err)
	}
	var count int64
	if err := db.Model(&models.UserPreferences{}).Count(&count).Error; err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if count != 1 {
		t.Errorf("Expected 1 preferences row, got %d", count)
	}
}
