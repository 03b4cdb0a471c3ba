package extraction

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassifyKind(t *testing.T) {
	tests := []struct {
		name     string
		filename string
		mimeType string
		want     Kind
	}{
		{"csv extension", "fields.CSV", "", KindCSV},
		{"json extension", "data.json", "application/octet-stream", KindJSON},
		{"pdf extension", "form.pdf", "", KindPDF},
		{"markdown", "notes.md", "", KindText},
		{"tsv is plain text", "sheet.tsv", "", KindText},
		{"extension beats mime", "data.txt", "application/json", KindText},
		{"csv mime", "upload", "text/csv; charset=utf-8", KindCSV},
		{"json mime", "upload", "application/json", KindJSON},
		{"pdf mime", "upload.bin", "application/pdf", KindPDF},
		{"text mime", "upload", "text/plain", KindText},
		{"unknown", "image.png", "image/png", KindUnknown},
		{"nothing", "", "", KindUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ClassifyKind(tt.filename, tt.mimeType))
		})
	}
}
