package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strings"

	"github.com/a3tai/mcp-form-drafter/internal/apperrors"
	"github.com/a3tai/mcp-form-drafter/internal/draft"
	"github.com/a3tai/mcp-form-drafter/internal/extraction"
	"github.com/a3tai/mcp-form-drafter/internal/googleforms"
)

const (
	fieldPrompt = "prompt"
	fieldFile   = "file"
)

type errorResponse struct {
	Code      apperrors.Code `json:"code"`
	Message   string         `json:"message"`
	RequestID string         `json:"requestId,omitempty"`
}

type draftRequest struct {
	Prompt string `json:"prompt"`
}

func (s *Server) health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"service": s.cfg.ServerName,
		"version": s.cfg.Version,
	})
}

// extract accepts a multipart upload and returns what was extracted from it.
func (s *Server) extract(w http.ResponseWriter, r *http.Request) {
	_, up, err := s.readUpload(w, r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if up == nil {
		s.writeError(w, r, apperrors.New(apperrors.CodeInvalidRequest, errors.New("missing file")))
		return
	}
	writeJSON(w, http.StatusOK, s.extractor.Extract(r.Context(), *up))
}

// buildDraft accepts either a JSON body with a prompt or a multipart form
// with a prompt field and an optional file.
func (s *Server) buildDraft(w http.ResponseWriter, r *http.Request) {
	var (
		prompt string
		up     *extraction.Upload
		err    error
	)
	if isJSON(r) {
		var body draftRequest
		if err := json.NewDecoder(io.LimitReader(r.Body, multipartOverhead)).Decode(&body); err != nil {
			s.writeError(w, r, apperrors.New(apperrors.CodeInvalidRequest, err))
			return
		}
		prompt = body.Prompt
	} else {
		prompt, up, err = s.readUpload(w, r)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
	}

	out, err := s.builder.BuildDraft(r.Context(), draft.Request{Prompt: prompt, Upload: up})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

// createForm publishes a draft with the caller's bearer token.
func (s *Server) createForm(w http.ResponseWriter, r *http.Request) {
	token, ok := bearerToken(r)
	if !ok {
		s.writeError(w, r, apperrors.New(apperrors.CodeAuthExpired, errors.New("missing bearer token")))
		return
	}

	raw, err := io.ReadAll(io.LimitReader(r.Body, multipartOverhead))
	if err != nil {
		s.writeError(w, r, apperrors.New(apperrors.CodeInvalidRequest, err))
		return
	}
	d, err := googleforms.DecodeDraft(raw)
	if err != nil {
		s.writeError(w, r, apperrors.New(apperrors.CodeInvalidRequest, err))
		return
	}

	created, err := s.publisher.Publish(r.Context(), token, d)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

// readUpload parses a multipart form. The returned upload is nil when no
// file part was sent.
func (s *Server) readUpload(w http.ResponseWriter, r *http.Request) (string, *extraction.Upload, error) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxFileSize+multipartOverhead)
	if err := r.ParseMultipartForm(s.cfg.MaxFileSize + multipartOverhead); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return "", nil, apperrors.New(apperrors.CodeFileTooLarge, err)
		}
		return "", nil, apperrors.New(apperrors.CodeInvalidRequest, err)
	}
	prompt := r.FormValue(fieldPrompt)

	file, header, err := r.FormFile(fieldFile)
	if errors.Is(err, http.ErrMissingFile) {
		return prompt, nil, nil
	}
	if err != nil {
		return "", nil, apperrors.New(apperrors.CodeInvalidRequest, err)
	}
	defer file.Close()

	if header.Size > s.cfg.MaxFileSize {
		return "", nil, apperrors.New(apperrors.CodeFileTooLarge, fmt.Errorf("%s: %d bytes", header.Filename, header.Size))
	}
	data, err := io.ReadAll(file)
	if err != nil {
		return "", nil, apperrors.New(apperrors.CodeInvalidRequest, err)
	}

	return prompt, &extraction.Upload{
		Filename: header.Filename,
		MIMEType: header.Header.Get("Content-Type"),
		Data:     data,
	}, nil
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	appErr := apperrors.From(err)
	status := appErr.Status()
	if status >= http.StatusInternalServerError {
		s.log.Error("request failed", "path", r.URL.Path, "request_id", requestIDFrom(r.Context()), "code", string(appErr.Code), "error", err)
	} else {
		s.log.Warn("request rejected", "path", r.URL.Path, "request_id", requestIDFrom(r.Context()), "code", string(appErr.Code), "error", err)
	}
	writeJSON(w, status, errorResponse{
		Code:      appErr.Code,
		Message:   appErr.Message,
		RequestID: requestIDFrom(r.Context()),
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func isJSON(r *http.Request) bool {
	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	return err == nil && mediaType == "application/json"
}

func bearerToken(r *http.Request) (string, bool) {
	scheme, token, ok := strings.Cut(r.Header.Get("Authorization"), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
		return "", false
	}
	return strings.TrimSpace(token), true
}
