// Package extraction turns uploaded documents into source questions.
package extraction

import "github.com/a3tai/mcp-form-drafter/internal/form"

// Kind is the recognized category of an uploaded file.
type Kind string

const (
	KindCSV     Kind = "csv"
	KindJSON    Kind = "json"
	KindPDF     Kind = "pdf"
	KindText    Kind = "text"
	KindUnknown Kind = "unknown"
)

// ParseIssue explains why a PDF produced no questions.
type ParseIssue string

const (
	IssueNone              ParseIssue = ""
	IssuePDFNoText         ParseIssue = "pdf_no_text"
	IssuePDFLowQualityText ParseIssue = "pdf_low_quality_text"
	IssuePDFParseFailed    ParseIssue = "pdf_parse_failed"
)

// Method records where the source text came from.
type Method string

const (
	MethodNone    Method = ""
	MethodRawText Method = "raw_text"
	MethodPDFText Method = "pdf_text"
	MethodPDFOCR  Method = "pdf_ocr"
)

// Upload is a document handed over by the caller.
type Upload struct {
	Filename string
	MIMEType string
	Data     []byte
}

// Result is the outcome of extracting one upload. It is built once and
// consumed by the draft builder; nothing is persisted.
type Result struct {
	Questions        []form.Question `json:"questions"`
	FileType         string          `json:"fileType"`
	TextLength       int             `json:"textLength"`
	ParseIssue       ParseIssue      `json:"parseIssue"`
	ReadabilityScore float64         `json:"readabilityScore"`
	UsedOCR          bool            `json:"usedOcr"`
	SourceText       string          `json:"sourceText"`
	ExtractMethod    Method          `json:"extractMethod"`
}
