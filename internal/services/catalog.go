package services

import (
	"errors"
	"fmt"

	"docfit/internal/common"
	catalogDomain "docfit/internal/domain/catalog"
	"docfit/internal/models"

	"gorm.io/gorm"
)

// CatalogService stores the exam catalog in the session database
type CatalogService struct {
	db *gorm.DB
}

// NewCatalogService creates a new catalog service
func NewCatalogService(db *gorm.DB) *CatalogService {
	return &CatalogService{db: db}
}

// ReplaceAll swaps the stored catalog for exams in one transaction
func (s *CatalogService) ReplaceAll(exams []catalogDomain.Exam) error {
	records := make([]models.ExamRecord, 0, len(exams))
	for i, exam := range exams {
		record, err := models.NewExamRecord(i, exam)
		if err != nil {
			return fmt.Errorf("failed to convert exam %q: %w", exam.ID, err)
		}
		records = append(records, record)
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		all := tx.Session(&gorm.Session{AllowGlobalUpdate: true})
		if err := all.Delete(&models.DocumentRecord{}).Error; err != nil {
			return err
		}
		if err := all.Delete(&models.ExamRecord{}).Error; err != nil {
			return err
		}
		for i := range records {
			if err := tx.Create(&records[i]).Error; err != nil {
				return fmt.Errorf("failed to store exam %q: %w", records[i].ID, err)
			}
		}
		return nil
	})
}

// ListExams returns every exam in catalog order
func (s *CatalogService) ListExams() ([]catalogDomain.Exam, error) {
	var records []models.ExamRecord
	if err := s.withDocuments().Order("position").Find(&records).Error; err != nil {
		return nil, err
	}

	exams := make([]catalogDomain.Exam, 0, len(records))
	for i := range records {
		exams = append(exams, records[i].ToDomain())
	}
	return exams, nil
}

// GetExam returns one exam by id
func (s *CatalogService) GetExam(id string) (*catalogDomain.Exam, error) {
	var record models.ExamRecord
	err := s.withDocuments().Where("id = ?", id).First(&record).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: %s", common.ErrExamNotFound, id)
	}
	if err != nil {
		return nil, err
	}

	exam := record.ToDomain()
	return &exam, nil
}

func (s *CatalogService) withDocuments() *gorm.DB {
	return s.db.Preload("Documents", func(db *gorm.DB) *gorm.DB {
		return db.Order("position")
	})
}
