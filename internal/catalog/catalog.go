// Package catalog loads the exam requirement catalog and turns document
// requirements into conversion envelopes.
package catalog

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	catalogDomain "docfit/internal/domain/catalog"

	"github.com/tidwall/jsonc"
)

//go:embed data/exams.json
var embeddedExams []byte

// Embedded returns the catalog bundled with the binary
func Embedded() ([]catalogDomain.Exam, error) {
	return Parse(embeddedExams)
}

// Load reads a catalog file, or the embedded catalog when path is empty
func Load(path string) ([]catalogDomain.Exam, error) {
	if path == "" {
		return Embedded()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog: %w", err)
	}
	return Parse(data)
}

// Parse decodes a catalog document. Comments and trailing commas are allowed.
func Parse(data []byte) ([]catalogDomain.Exam, error) {
	var exams []catalogDomain.Exam
	if err := json.Unmarshal(jsonc.ToJSON(data), &exams); err != nil {
		return nil, fmt.Errorf("failed to parse catalog: %w", err)
	}

	if err := validate(exams); err != nil {
		return nil, err
	}
	return exams, nil
}

func validate(exams []catalogDomain.Exam) error {
	seen := make(map[string]bool, len(exams))
	for _, exam := range exams {
		if strings.TrimSpace(exam.ID) == "" {
			return fmt.Errorf("exam %q has no id", exam.Name)
		}
		if seen[exam.ID] {
			return fmt.Errorf("duplicate exam id %q", exam.ID)
		}
		seen[exam.ID] = true

		docs := make(map[string]bool, len(exam.Documents))
		for _, doc := range exam.Documents {
			if strings.TrimSpace(doc.ID) == "" {
				return fmt.Errorf("exam %q: document %q has no id", exam.ID, doc.Name)
			}
			if docs[doc.ID] {
				return fmt.Errorf("exam %q: duplicate document id %q", exam.ID, doc.ID)
			}
			docs[doc.ID] = true

			if len(doc.Formats) == 0 {
				return fmt.Errorf("exam %q: document %q lists no formats", exam.ID, doc.ID)
			}
		}
	}
	return nil
}
