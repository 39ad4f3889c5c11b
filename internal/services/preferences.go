package services

import (
	"fmt"

	compressionDomain "docfit/internal/domain/compression"
	"docfit/internal/models"

	"gorm.io/gorm"
)

// PreferencesService handles user preferences operations
type PreferencesService struct {
	db *gorm.DB
}

// NewPreferencesService creates a new preferences service
func NewPreferencesService(db *gorm.DB) *PreferencesService {
	return &PreferencesService{db: db}
}

// GetPreferences gets the current user preferences
func (s *PreferencesService) GetPreferences() (*models.UserPreferencesData, error) {
	prefs, err := models.GetOrCreatePreferences(s.db)
	if err != nil {
		return nil, err
	}

	prefsData := prefs.GetPreferences()
	return &prefsData, nil
}

// UpdatePreferences updates user preferences from a partial map of JSON values
func (s *PreferencesService) UpdatePreferences(data map[string]any) error {
	prefs, err := models.GetOrCreatePreferences(s.db)
	if err != nil {
		return err
	}

	currentPrefs := prefs.GetPreferences()

	if val, ok := data["default_download_folder"]; ok {
		if folder, ok := val.(string); ok {
			currentPrefs.DefaultDownloadFolder = folder
		}
	}

	if val, ok := data["default_image_format"]; ok {
		if name, ok := val.(string); ok {
			format, err := compressionDomain.ParseFormat(name)
			if err != nil || !format.IsRaster() {
				return fmt.Errorf("invalid default image format %q", name)
			}
			currentPrefs.DefaultImageFormat = string(format)
		}
	}

	if val, ok := data["auto_crop"]; ok {
		if autoCrop, ok := val.(bool); ok {
			currentPrefs.AutoCrop = autoCrop
		}
	}

	if val, ok := data["last_exam_id"]; ok {
		if examID, ok := val.(string); ok {
			currentPrefs.LastExamID = examID
		}
	}

	if err := prefs.SetPreferences(currentPrefs); err != nil {
		return err
	}

	return s.db.Save(prefs).Error
}

// GetDownloadFolder returns the configured download folder, empty when unset
func (s *PreferencesService) GetDownloadFolder() (string, error) {
	prefs, err := s.GetPreferences()
	if err != nil {
		return "", err
	}
	return prefs.DefaultDownloadFolder, nil
}
