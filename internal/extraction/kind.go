package extraction

import (
	"path/filepath"
	"strings"
)

var extensionKinds = map[string]Kind{
	".csv":  KindCSV,
	".json": KindJSON,
	".pdf":  KindPDF,
	".txt":  KindText,
	".md":   KindText,
	".tsv":  KindText,
}

// ClassifyKind decides how an upload is parsed. A recognized extension wins;
// otherwise the MIME type is checked for csv, json, pdf and text/* in that
// order.
func ClassifyKind(filename, mimeType string) Kind {
	if kind, ok := extensionKinds[strings.ToLower(filepath.Ext(strings.TrimSpace(filename)))]; ok {
		return kind
	}

	mt, _, _ := strings.Cut(strings.ToLower(strings.TrimSpace(mimeType)), ";")
	mt = strings.TrimSpace(mt)
	switch {
	case mt == "":
		return KindUnknown
	case strings.Contains(mt, "csv"):
		return KindCSV
	case strings.Contains(mt, "json"):
		return KindJSON
	case strings.Contains(mt, "pdf"):
		return KindPDF
	case strings.HasPrefix(mt, "text/"):
		return KindText
	default:
		return KindUnknown
	}
}
