package models

import (
	"encoding/json"
	"time"

	catalogDomain "docfit/internal/domain/catalog"
)

// ExamRecord stores one exam of the catalog
type ExamRecord struct {
	ID          string           `gorm:"primaryKey" json:"id"`
	Position    int              `gorm:"index" json:"position"`
	Name        string           `json:"name"`
	Category    string           `json:"category"`
	Description string           `json:"description"`
	Documents   []DocumentRecord `gorm:"foreignKey:ExamID;constraint:OnDelete:CASCADE" json:"documents"`
	CreatedAt   time.Time        `json:"created_at"`
}

// DocumentRecord stores one document requirement of an exam
type DocumentRecord struct {
	ID                 uint     `gorm:"primaryKey" json:"id"`
	ExamID             string   `gorm:"index:idx_exam_document,unique" json:"exam_id"`
	DocumentID         string   `gorm:"index:idx_exam_document,unique" json:"document_id"`
	Position           int      `json:"position"`
	Name               string   `json:"name"`
	Required           bool     `json:"required"`
	FormatsJSON        string   `gorm:"type:text" json:"formats_json"`
	SizeMinKB          *float64 `json:"size_min_kb"`
	SizeMaxKB          *float64 `json:"size_max_kb"`
	SizeLimitMB        *float64 `json:"size_limit_mb"`
	Resolution         string   `json:"resolution"`
	Dimensions         string   `json:"dimensions"`
	OtherRequirements  string   `json:"other_requirements"`
	AcceptedProofsJSON string   `gorm:"type:text" json:"accepted_proofs_json"`
	AppliesTo          string   `json:"applies_to"`
}

// NewExamRecord converts a catalog exam into its database form
func NewExamRecord(position int, exam catalogDomain.Exam) (ExamRecord, error) {
	record := ExamRecord{
		ID:          exam.ID,
		Position:    position,
		Name:        exam.Name,
		Category:    exam.Category,
		Description: exam.Description,
	}

	for i, doc := range exam.Documents {
		formats, err := marshalStrings(doc.Formats)
		if err != nil {
			return ExamRecord{}, err
		}
		proofs, err := marshalStrings(doc.AcceptedProofs)
		if err != nil {
			return ExamRecord{}, err
		}

		record.Documents = append(record.Documents, DocumentRecord{
			ExamID:             exam.ID,
			DocumentID:         doc.ID,
			Position:           i,
			Name:               doc.Name,
			Required:           doc.Required,
			FormatsJSON:        formats,
			SizeMinKB:          doc.SizeMinKB,
			SizeMaxKB:          doc.SizeMaxKB,
			SizeLimitMB:        doc.SizeLimitMB,
			Resolution:         doc.Resolution,
			Dimensions:         doc.Dimensions,
			OtherRequirements:  doc.OtherRequirements,
			AcceptedProofsJSON: proofs,
			AppliesTo:          doc.AppliesTo,
		})
	}

	return record, nil
}

// ToDomain converts the record back into a catalog exam
func (r *ExamRecord) ToDomain() catalogDomain.Exam {
	exam := catalogDomain.Exam{
		ID:          r.ID,
		Name:        r.Name,
		Category:    r.Category,
		Description: r.Description,
		Documents:   make([]catalogDomain.Document, 0, len(r.Documents)),
	}

	for _, doc := range r.Documents {
		exam.Documents = append(exam.Documents, doc.ToDomain())
	}
	return exam
}

// ToDomain converts the record back into a catalog document
func (r *DocumentRecord) ToDomain() catalogDomain.Document {
	return catalogDomain.Document{
		ID:                r.DocumentID,
		Name:              r.Name,
		Required:          r.Required,
		Formats:           unmarshalStrings(r.FormatsJSON),
		SizeMinKB:         r.SizeMinKB,
		SizeMaxKB:         r.SizeMaxKB,
		SizeLimitMB:       r.SizeLimitMB,
		Resolution:        r.Resolution,
		Dimensions:        r.Dimensions,
		OtherRequirements: r.OtherRequirements,
		AcceptedProofs:    unmarshalStrings(r.AcceptedProofsJSON),
		AppliesTo:         r.AppliesTo,
	}
}

func marshalStrings(values []string) (string, error) {
	if len(values) == 0 {
		return "", nil
	}
	data, err := json.Marshal(values)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func unmarshalStrings(data string) []string {
	if data == "" {
		return nil
	}
	var values []string
	if err := json.Unmarshal([]byte(data), &values); err != nil {
		return nil
	}
	return values
}
