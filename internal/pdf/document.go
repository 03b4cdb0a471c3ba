package pdf

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	lpdf "github.com/ledongthuc/pdf"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

// ErrDocumentClosed is returned by operations on a released document.
var ErrDocumentClosed = errors.New("pdf document is closed")

// Document is an opened PDF held in memory for text-layer extraction.
type Document struct {
	reader *lpdf.Reader
	pages  int
	closed bool
}

// Open validates data as a PDF and prepares its text layer. pdfcpu runs a
// relaxed structural pass first so malformed files fail before the text
// parser sees them.
func Open(data []byte) (doc *Document, err error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("empty pdf payload")
	}

	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed

	ctx, err := api.ReadContext(bytes.NewReader(data), conf)
	if err != nil {
		return nil, fmt.Errorf("failed to read PDF context: %w", err)
	}
	if err := ctx.EnsurePageCount(); err != nil {
		return nil, fmt.Errorf("failed to ensure page count: %w", err)
	}

	defer func() {
		if r := recover(); r != nil {
			doc = nil
			err = fmt.Errorf("pdf text parser panicked: %v", r)
		}
	}()

	reader, err := lpdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("failed to open PDF: %w", err)
	}

	return &Document{reader: reader, pages: ctx.PageCount}, nil
}

// PageCount returns the number of pages reported by the structural pass.
func (d *Document) PageCount() int {
	return d.pages
}

// Text returns the plain text of every page joined by blank lines. Pages
// whose content cannot be decoded are skipped.
func (d *Document) Text() (text string, err error) {
	if d.closed {
		return "", ErrDocumentClosed
	}

	defer func() {
		if r := recover(); r != nil {
			text = ""
			err = fmt.Errorf("pdf text extraction panicked: %v", r)
		}
	}()

	var builder strings.Builder
	for pageNum := 1; pageNum <= d.reader.NumPage(); pageNum++ {
		page := d.reader.Page(pageNum)
		if page.V.IsNull() {
			continue
		}

		content, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		if builder.Len() > 0 {
			builder.WriteString("\n\n")
		}
		builder.WriteString(content)
	}

	return builder.String(), nil
}

// Close releases the document. It is safe to call more than once.
func (d *Document) Close() error {
	d.closed = true
	d.reader = nil
	return nil
}
