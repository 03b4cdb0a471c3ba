// Package apperrors defines the machine-readable error codes and localized
// messages reported to callers.
package apperrors

import (
	"errors"
	"fmt"
	"net/http"
)

// Code identifies an error category callers can branch on.
type Code string

const (
	CodeEmptyInput        Code = "empty_input"
	CodePDFNoText         Code = "pdf_no_text"
	CodePDFLowQualityText Code = "pdf_low_quality_text"
	CodePDFParseFailed    Code = "pdf_parse_failed"
	CodeQuizNeedsLLM      Code = "quiz_needs_llm"
	CodeAuthExpired       Code = "auth_expired"
	CodeFileTooLarge      Code = "file_too_large"
	CodeInvalidRequest    Code = "invalid_request"
	CodeInternal          Code = "internal"
)

var messages = map[Code]string{
	CodeEmptyInput:        "请输入表单需求描述，或上传包含字段的文件。",
	CodePDFNoText:         "PDF 中没有可提取的文字（可能是扫描件），OCR 也未能识别出有效内容。",
	CodePDFLowQualityText: "PDF 文字层质量过低（可能存在字体编码问题），无法可靠提取题目。",
	CodePDFParseFailed:    "PDF 解析失败，请确认文件未损坏且未加密。",
	CodeQuizNeedsLLM:      "该主题没有本地题库，需要可用的大模型来生成测验，请稍后重试或更换主题。",
	CodeAuthExpired:       "授权已过期，请重新登录 Google 账号后重试。",
	CodeFileTooLarge:      "上传的文件过大。",
	CodeInvalidRequest:    "请求格式不正确。",
	CodeInternal:          "生成表单失败，请稍后重试。",
}

var statuses = map[Code]int{
	CodeEmptyInput:        http.StatusBadRequest,
	CodePDFNoText:         http.StatusUnprocessableEntity,
	CodePDFLowQualityText: http.StatusUnprocessableEntity,
	CodePDFParseFailed:    http.StatusUnprocessableEntity,
	CodeQuizNeedsLLM:      http.StatusServiceUnavailable,
	CodeAuthExpired:       http.StatusUnauthorized,
	CodeFileTooLarge:      http.StatusRequestEntityTooLarge,
	CodeInvalidRequest:    http.StatusBadRequest,
	CodeInternal:          http.StatusInternalServerError,
}

// Error is a categorized, user-presentable error.
type Error struct {
	Code    Code   `json:"code"`
	Message string `json:"message"`
	Err     error  `json:"-"`
}

// New returns an Error with the localized message for code.
func New(code Code, cause error) *Error {
	return &Error{Code: code, Message: Message(code), Err: cause}
}

// Error implements the error interface
func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Status returns the HTTP status that best represents the error.
func (e *Error) Status() int {
	if s, ok := statuses[e.Code]; ok {
		return s
	}
	return http.StatusInternalServerError
}

// Message returns the localized message for code.
func Message(code Code) string {
	if m, ok := messages[code]; ok {
		return m
	}
	return messages[CodeInternal]
}

// From maps any error onto an *Error. Uncategorized errors become CodeInternal
// with the generic failure message.
func From(err error) *Error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return New(CodeInternal, err)
}

// Is reports whether err carries code.
func Is(err error, code Code) bool {
	var e *Error
	return errors.As(err, &e) && e.Code == code
}
