package catalog

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"docfit/internal/common"
	catalogDomain "docfit/internal/domain/catalog"
	compressionDomain "docfit/internal/domain/compression"
)

func testDefaults() catalogDomain.Defaults {
	return catalogDomain.Defaults{
		Image: compressionDomain.Envelope{
			MinSizeKB: 1, MaxSizeKB: 1024,
			MinWidth: 140, MinHeight: 60, MaxWidth: 1000, MaxHeight: 1000,
		},
		Document: compressionDomain.Envelope{MinSizeKB: 10, MaxSizeKB: 1024},
	}
}

func kbPtr(v float64) *float64 {
	return &v
}

func TestEmbedded(t *testing.T) {
	exams, err := Embedded()
	if err != nil {
		t.Fatalf("Expected embedded catalog to parse, got %v", err)
	}
	if len(exams) == 0 {
		t.Fatal("Expected at least one exam")
	}

	defaults := testDefaults()
	for _, exam := range exams {
		for _, doc := range exam.Documents {
			workflows := Workflows(doc)
			if len(workflows) == 0 {
				t.Errorf("%s/%s: expected at least one workflow", exam.ID, doc.ID)
			}
			for _, workflow := range workflows {
				if _, err := EnvelopeFor(doc, workflow, defaults); err != nil {
					t.Errorf("%s/%s: envelope for %s: %v", exam.ID, doc.ID, workflow, err)
				}
			}
		}
	}
}

func TestParse(t *testing.T) {
	data := []byte(`
	// leading comment
	[
		{
			"id": "demo",
			"name": "Demo Exam",
			"documents": [
				{"id": "photo", "name": "Photo", "required": true, "formats": ["JPG"], "sizeMaxKB": 50,},
			],
		},
	]`)

	exams, err := Parse(data)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if len(exams) != 1 || exams[0].ID != "demo" {
		t.Fatalf("Unexpected exams %+v", exams)
	}
	doc := exams[0].Documents[0]
	if doc.SizeMaxKB == nil || *doc.SizeMaxKB != 50 {
		t.Errorf("Expected sizeMaxKB 50, got %v", doc.SizeMaxKB)
	}
	if doc.SizeMinKB != nil {
		t.Errorf("Expected absent sizeMinKB, got %v", *doc.SizeMinKB)
	}
}

func TestParse_Invalid(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"not json", `{{`},
		{"missing exam id", `[{"name": "x", "documents": []}]`},
		{"duplicate exam", `[{"id": "a", "documents": []}, {"id": "a", "documents": []}]`},
		{"missing document id", `[{"id": "a", "documents": [{"name": "p", "formats": ["PDF"]}]}]`},
		{"duplicate document", `[{"id": "a", "documents": [{"id": "p", "formats": ["PDF"]}, {"id": "p", "formats": ["PDF"]}]}]`},
		{"no formats", `[{"id": "a", "documents": [{"id": "p"}]}]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Parse([]byte(tt.data)); err == nil {
				t.Error("Expected error, got nil")
			}
		})
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "exams.json")
	if err := os.WriteFile(path, []byte(`[{"id": "x", "name": "X", "documents": []}]`), 0644); err != nil {
		t.Fatalf("Failed to write catalog: %v", err)
	}

	exams, err := Load(path)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if len(exams) != 1 || exams[0].ID != "x" {
		t.Errorf("Unexpected exams %+v", exams)
	}

	if _, err := Load(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Error("Expected error for missing file")
	}

	embedded, err := Load("")
	if err != nil || len(embedded) == 0 {
		t.Errorf("Expected empty path to load the embedded catalog, got %d exams, %v", len(embedded), err)
	}
}

func TestWorkflows(t *testing.T) {
	tests := []struct {
		formats  []string
		expected []string
	}{
		{[]string{"JPG", "JPEG"}, []string{common.WorkflowImage}},
		{[]string{"PDF"}, []string{common.WorkflowPDF}},
		{[]string{"JPG", "PDF"}, []string{common.WorkflowImageToPDF, common.WorkflowPDF}},
		{[]string{"DOCX"}, nil},
	}

	for _, tt := range tests {
		got := Workflows(catalogDomain.Document{Formats: tt.formats})
		if !reflect.DeepEqual(got, tt.expected) {
			t.Errorf("Workflows(%v): expected %v, got %v", tt.formats, tt.expected, got)
		}
	}
}

func TestTargetFormat(t *testing.T) {
	tests := []struct {
		formats  []string
		expected compressionDomain.Format
	}{
		{[]string{"PNG", "JPG"}, compressionDomain.FormatPNG},
		{[]string{"PDF", "JPEG"}, compressionDomain.FormatJPEG},
		{[]string{"PDF"}, compressionDomain.FormatJPEG},
	}

	for _, tt := range tests {
		if got := TargetFormat(catalogDomain.Document{Formats: tt.formats}); got != tt.expected {
			t.Errorf("TargetFormat(%v): expected %s, got %s", tt.formats, tt.expected, got)
		}
	}
}

func TestParseDimensions(t *testing.T) {
	tests := []struct {
		text     string
		expected PixelBounds
		ok       bool
	}{
		{"350x350 to 1000x1000 px", PixelBounds{MinWidth: 350, MinHeight: 350, MaxWidth: 1000, MaxHeight: 1000}, true},
		{"480x640 px minimum", PixelBounds{MinWidth: 480, MinHeight: 640}, true},
		{"200 × 230 pixels", PixelBounds{MaxWidth: 200, MaxHeight: 230}, true},
		{"4 x 6 inch", PixelBounds{}, false},
		{"", PixelBounds{}, false},
		{"passport size, px unknown", PixelBounds{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			got, ok := ParseDimensions(tt.text)
			if ok != tt.ok || got != tt.expected {
				t.Errorf("Expected %+v (%v), got %+v (%v)", tt.expected, tt.ok, got, ok)
			}
		})
	}
}

func TestEnvelopeFor(t *testing.T) {
	defaults := testDefaults()

	tests := []struct {
		name     string
		doc      catalogDomain.Document
		workflow string
		expected compressionDomain.Envelope
	}{
		{
			name:     "image with explicit sizes and default dimensions",
			doc:      catalogDomain.Document{ID: "sig", Formats: []string{"JPG"}, SizeMinKB: kbPtr(4), SizeMaxKB: kbPtr(30)},
			workflow: common.WorkflowImage,
			expected: compressionDomain.Envelope{MinSizeKB: 4, MaxSizeKB: 30, MinWidth: 140, MinHeight: 60, MaxWidth: 1000, MaxHeight: 1000},
		},
		{
			name:     "image with parsed dimensions",
			doc:      catalogDomain.Document{ID: "photo", Formats: []string{"JPG"}, SizeMinKB: kbPtr(20), SizeMaxKB: kbPtr(300), Dimensions: "350x350 to 1000x1000 px"},
			workflow: common.WorkflowImage,
			expected: compressionDomain.Envelope{MinSizeKB: 20, MaxSizeKB: 300, MinWidth: 350, MinHeight: 350, MaxWidth: 1000, MaxHeight: 1000},
		},
		{
			name:     "image minimum above default maximum",
			doc:      catalogDomain.Document{ID: "scan", Formats: []string{"JPG"}, SizeMaxKB: kbPtr(500), Dimensions: "1200x1600 px minimum"},
			workflow: common.WorkflowImage,
			expected: compressionDomain.Envelope{MinSizeKB: 1, MaxSizeKB: 500, MinWidth: 1200, MinHeight: 1600},
		},
		{
			name:     "pdf from size limit in MB",
			doc:      catalogDomain.Document{ID: "id", Formats: []string{"PDF"}, SizeLimitMB: kbPtr(1)},
			workflow: common.WorkflowPDF,
			expected: compressionDomain.Envelope{MinSizeKB: 10, MaxSizeKB: 1024},
		},
		{
			name:     "pdf default minimum dropped below tight maximum",
			doc:      catalogDomain.Document{ID: "tiny", Formats: []string{"PDF"}, SizeMaxKB: kbPtr(8)},
			workflow: common.WorkflowPDF,
			expected: compressionDomain.Envelope{MinSizeKB: 0, MaxSizeKB: 8},
		},
		{
			name:     "merge uses document sizes",
			doc:      catalogDomain.Document{ID: "cert", Formats: []string{"JPG", "PDF"}, SizeMinKB: kbPtr(50), SizeMaxKB: kbPtr(300)},
			workflow: common.WorkflowImageToPDF,
			expected: compressionDomain.Envelope{MinSizeKB: 50, MaxSizeKB: 300},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := EnvelopeFor(tt.doc, tt.workflow, defaults)
			if err != nil {
				t.Fatalf("Expected no error, got %v", err)
			}
			if got != tt.expected {
				t.Errorf("Expected %+v, got %+v", tt.expected, got)
			}
		})
	}
}

func TestEnvelopeFor_Errors(t *testing.T) {
	defaults := testDefaults()

	tests := []struct {
		name     string
		doc      catalogDomain.Document
		workflow string
		kind     error
	}{
		{"image workflow on pdf document", catalogDomain.Document{ID: "a", Formats: []string{"PDF"}}, common.WorkflowImage, common.ErrInputRejected},
		{"pdf workflow on image document", catalogDomain.Document{ID: "a", Formats: []string{"JPG"}}, common.WorkflowPDF, common.ErrInputRejected},
		{"unknown workflow", catalogDomain.Document{ID: "a", Formats: []string{"JPG"}}, "video", common.ErrInputRejected},
		{"inverted sizes", catalogDomain.Document{ID: "a", Formats: []string{"PDF"}, SizeMinKB: kbPtr(500), SizeMaxKB: kbPtr(100)}, common.WorkflowPDF, common.ErrEnvelopeUnsatisfiable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := EnvelopeFor(tt.doc, tt.workflow, defaults)
			if !errors.Is(err, tt.kind) {
				t.Errorf("Expected %v, got %v", tt.kind, err)
			}
		})
	}
}
