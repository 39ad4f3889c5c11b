package preferences

type Repository interface {
	GetPreferences() (*UserPreferencesData, error)
	UpdatePreferences(data map[string]any) error
	GetDownloadFolder() (string, error)
}

type UserPreferencesData struct {
	DefaultDownloadFolder string `json:"default_download_folder"`
	DefaultImageFormat    string `json:"default_image_format"`
	AutoCrop              bool   `json:"auto_crop"`
	LastExamID            string `json:"last_exam_id"`
}
