package mcp

import (
	"encoding/base64"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/a3tai/mcp-form-drafter/internal/apperrors"
	"github.com/a3tai/mcp-form-drafter/internal/extraction"
)

const (
	encodingText   = "text"
	encodingBase64 = "base64"
)

var errPathDisabled = errors.New("the path argument is not available on this server; send the document as content")

// uploadFromRequest reads the document named by the path argument, or
// decodes the content argument. It returns nil when neither is given.
func (s *Server) uploadFromRequest(request mcp.CallToolRequest) (*extraction.Upload, error) {
	path := strings.TrimSpace(request.GetString("path", ""))
	content := request.GetString("content", "")
	filename := strings.TrimSpace(request.GetString("filename", ""))
	mimeType := strings.TrimSpace(request.GetString("mime_type", ""))

	switch {
	case path != "":
		data, err := s.readFile(path)
		if err != nil {
			return nil, err
		}
		if filename == "" {
			filename = filepath.Base(path)
		}
		return &extraction.Upload{Filename: filename, MIMEType: mimeType, Data: data}, nil
	case content != "":
		data, err := decodeContent(content, request.GetString("encoding", encodingText))
		if err != nil {
			return nil, err
		}
		if int64(len(data)) > s.config.MaxFileSize {
			return nil, apperrors.New(apperrors.CodeFileTooLarge, fmt.Errorf("%d bytes", len(data)))
		}
		return &extraction.Upload{Filename: filename, MIMEType: mimeType, Data: data}, nil
	default:
		return nil, nil
	}
}

// readFile reads a document from inside the configured upload directory.
func (s *Server) readFile(path string) ([]byte, error) {
	if s.paths == nil {
		return nil, errPathDisabled
	}
	path, err := s.paths.Resolve(path)
	if err != nil {
		return nil, err
	}

	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("cannot access file: %w", err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%s is a directory", path)
	}
	if info.Size() > s.config.MaxFileSize {
		return nil, apperrors.New(apperrors.CodeFileTooLarge, fmt.Errorf("%s: %d bytes", path, info.Size()))
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}
	return data, nil
}

func decodeContent(content, encoding string) ([]byte, error) {
	switch strings.ToLower(strings.TrimSpace(encoding)) {
	case "", encodingText:
		return []byte(content), nil
	case encodingBase64:
		data, err := base64.StdEncoding.DecodeString(strings.TrimSpace(content))
		if err != nil {
			return nil, fmt.Errorf("invalid base64 content: %w", err)
		}
		return data, nil
	default:
		return nil, fmt.Errorf("unsupported encoding %q", encoding)
	}
}
