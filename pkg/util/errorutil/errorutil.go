package errorutil

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Error codes surfaced to callers.
const (
	CodeValidation        = "VALIDATION_FAILED"
	CodeNotFound          = "NOT_FOUND"
	CodeInvalidTransition = "INVALID_TRANSITION"
	CodeInvalidAssignment = "INVALID_ASSIGNMENT"
	CodeAssetBusy         = "ASSET_BUSY"
	CodeUnauthorized      = "UNAUTHORIZED"
	CodeForbidden         = "FORBIDDEN"
	CodeInternal          = "INTERNAL_ERROR"
)

// DomainError standardizes application errors.
type DomainError struct {
	Code       string
	Message    string
	HTTPStatus int
	Details    map[string]any
	Err        error
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

// NewDomainError constructs a DomainError.
func NewDomainError(code, message string, status int, details map[string]any) *DomainError {
	return &DomainError{Code: code, Message: message, HTTPStatus: status, Details: details}
}

func NewValidationError(message string, details map[string]any) error {
	return NewDomainError(CodeValidation, message, http.StatusBadRequest, details)
}

// NewNotFound reports a missing or logically deleted entity of the given kind.
func NewNotFound(resource, id string) error {
	return NewDomainError(CodeNotFound, fmt.Sprintf("%s %s not found", resource, id), http.StatusNotFound,
		map[string]any{"entity": resource, "id": id})
}

// NewInvalidTransition reports a status change outside the transition graph.
func NewInvalidTransition(from, to string, allowed []string) error {
	allowedList := "none"
	if len(allowed) > 0 {
		allowedList = strings.Join(allowed, ", ")
	}
	return NewDomainError(CodeInvalidTransition,
		fmt.Sprintf("invalid status transition %s -> %s; allowed from %s: %s", from, to, from, allowedList),
		http.StatusConflict,
		map[string]any{"from": from, "to": to, "allowed": allowed})
}

// NewInvalidAssignment reports an attempt to assign a user that is not a technician.
func NewInvalidAssignment(userID, fullName, role string) error {
	return NewDomainError(CodeInvalidAssignment,
		fmt.Sprintf("user '%s' has role %s; only technicians can be assigned to tickets", fullName, role),
		http.StatusUnprocessableEntity,
		map[string]any{"user_id": userID, "user": fullName, "role": role})
}

// NewAssetBusy reports that an asset already has an active ticket.
func NewAssetBusy(assetID, inventoryTag string) error {
	return NewDomainError(CodeAssetBusy,
		fmt.Sprintf("asset %s already has an active ticket; close it before opening a new one", inventoryTag),
		http.StatusConflict,
		map[string]any{"asset_id": assetID, "inventory_tag": inventoryTag})
}

func NewUnauthorized(message string) error {
	return NewDomainError(CodeUnauthorized, message, http.StatusUnauthorized, nil)
}

func NewForbidden(message string) error {
	return NewDomainError(CodeForbidden, message, http.StatusForbidden, nil)
}

func NewInternalError(err error) error {
	return &DomainError{
		Code:       CodeInternal,
		Message:    "internal server error",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

// ToDomainError converts generic errors to DomainError.
func ToDomainError(err error) *DomainError {
	if err == nil {
		return nil
	}
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr
	}
	return &DomainError{
		Code:       CodeInternal,
		Message:    "internal server error",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

func MapError(err error) error {
	return ToDomainError(err)
}

// HasCode reports whether err carries a DomainError with the given code.
func HasCode(err error, code string) bool {
	var domainErr *DomainError
	if !errors.As(err, &domainErr) {
		return false
	}
	return domainErr.Code == code
}

// CodeForStatus picks the error code matching a bare HTTP status.
func CodeForStatus(status int) string {
	switch status {
	case http.StatusBadRequest:
		return CodeValidation
	case http.StatusUnauthorized:
		return CodeUnauthorized
	case http.StatusForbidden:
		return CodeForbidden
	case http.StatusNotFound:
		return CodeNotFound
	default:
		if status >= http.StatusInternalServerError {
			return CodeInternal
		}
		return strings.ToUpper(strings.ReplaceAll(http.StatusText(status), " ", "_"))
	}
}
