package domain

import (
	"errors"
	"fmt"
)

// DomainError represents a domain-specific error
type DomainError struct {
	Code    string
	Message string
	Err     error
}

// Error implements the error interface
func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error
func (e *DomainError) Unwrap() error {
	return e.Err
}

// NewDomainError creates a new DomainError
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
		Err:     nil,
	}
}

// NewDomainErrorWithCause creates a new DomainError with an underlying cause
func NewDomainErrorWithCause(code, message string, err error) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// Common domain error codes. Codes are part of the API surface: they are
// reported to callers as stable kind strings and never change meaning.
const (
	ErrCodeValidation         = "VALIDATION_ERROR"
	ErrCodeConfiguration      = "CONFIGURATION_ERROR"
	ErrCodeEmptyDocument      = "EMPTY_DOCUMENT"
	ErrCodeEmbeddingBackend   = "EMBEDDING_BACKEND_ERROR"
	ErrCodeGenerationBackend  = "GENERATION_BACKEND_ERROR"
	ErrCodeSessionNotFound    = "SESSION_NOT_FOUND"
	ErrCodeSessionDataMissing = "SESSION_DATA_MISSING"
	ErrCodeUnauthorized       = "UNAUTHORIZED"
	ErrCodeInternalError      = "INTERNAL_ERROR"
)

// Ingestion errors
var (
	ErrInvalidChunkConfig     = NewDomainError(ErrCodeConfiguration, "chunk overlap must be smaller than chunk size")
	ErrEmptyDocument          = NewDomainError(ErrCodeEmptyDocument, "no extractable text in document")
	ErrChunkEmbeddingMismatch = NewDomainError(ErrCodeInternalError, "chunk and embedding counts differ")
)

// Session errors
var (
	ErrSessionNotFound    = NewDomainError(ErrCodeSessionNotFound, "no indexed document found for this id")
	ErrSessionDataMissing = NewDomainError(ErrCodeSessionDataMissing, "session payload is missing, re-upload the document")
)

// Credential errors
var (
	ErrMissingCredential = NewDomainError(ErrCodeUnauthorized, "missing backend credential")
)

// CodeOf extracts the stable error kind from err, falling back to
// INTERNAL_ERROR for non-domain errors.
func CodeOf(err error) string {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Code
	}
	return ErrCodeInternalError
}
