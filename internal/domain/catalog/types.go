package catalog

import (
	compressionDomain "docfit/internal/domain/compression"
)

// Exam is an entrance exam and the documents its application form asks for
type Exam struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Category    string     `json:"category,omitempty"`
	Description string     `json:"description,omitempty"`
	Documents   []Document `json:"documents"`
}

// Document is one upload slot of an exam application
type Document struct {
	ID                string   `json:"id"`
	Name              string   `json:"name"`
	Required          bool     `json:"required"`
	Formats           []string `json:"formats"`
	SizeMinKB         *float64 `json:"sizeMinKB,omitempty"`
	SizeMaxKB         *float64 `json:"sizeMaxKB,omitempty"`
	SizeLimitMB       *float64 `json:"sizeLimitMB,omitempty"`
	Resolution        string   `json:"resolution,omitempty"`
	Dimensions        string   `json:"dimensions,omitempty"`
	OtherRequirements string   `json:"otherRequirements,omitempty"`
	AcceptedProofs    []string `json:"acceptedProofs,omitempty"`
	AppliesTo         string   `json:"for,omitempty"`
}

// Defaults are the envelopes used when a document leaves a bound unspecified
type Defaults struct {
	Image    compressionDomain.Envelope
	Document compressionDomain.Envelope
}

// Requirement is a document resolved into something the converter can act on
type Requirement struct {
	ExamID       string                     `json:"exam_id"`
	Document     Document                   `json:"document"`
	Workflow     string                     `json:"workflow"`
	Workflows    []string                   `json:"workflows"`
	TargetFormat compressionDomain.Format   `json:"target_format"`
	Envelope     compressionDomain.Envelope `json:"envelope"`
}

// Repository stores the catalog
type Repository interface {
	ReplaceAll(exams []Exam) error
	ListExams() ([]Exam, error)
	GetExam(id string) (*Exam, error)
}

// Service answers catalog queries
type Service interface {
	ListExams() ([]Exam, error)
	GetExam(id string) (*Exam, error)
	GetDocument(examID, documentID string) (*Document, error)
	Requirement(examID, documentID, workflow string) (*Requirement, error)
}
