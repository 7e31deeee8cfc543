package common

import (
	"context"
	"fmt"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

type contextKey string

const (
	SubjectKey contextKey = "subject"
)

// ErrorResponse represents a standardized error response
type ErrorResponse struct {
	Error struct {
		Code    string            `json:"code"`
		Message string            `json:"message"`
		Details map[string]string `json:"details,omitempty"`
		Reasons []string          `json:"reasons,omitempty"`
	} `json:"error"`
}

// CreateErrorResponse creates a standardized error response
func CreateErrorResponse(code string, message string, details map[string]string) *ErrorResponse {
	var resp ErrorResponse
	resp.Error.Code = code
	resp.Error.Message = message
	resp.Error.Details = details
	return &resp
}

// SendValidationError sends a validation error response
func SendValidationError(c echo.Context, field, message string) error {
	details := map[string]string{
		field: message,
	}
	return c.JSON(http.StatusBadRequest, CreateErrorResponse("VALIDATION_ERROR", "Validation failed", details))
}

// SendInvalidLicense rejects a file that is not a license, listing why.
func SendInvalidLicense(c echo.Context, reasons []string) error {
	resp := CreateErrorResponse("INVALID_LICENSE", "File is not a valid license file", nil)
	resp.Error.Reasons = reasons
	return c.JSON(http.StatusBadRequest, resp)
}

// SendClientError sends a client error response
func SendClientError(c echo.Context, message string) error {
	return c.JSON(http.StatusBadRequest, CreateErrorResponse("CLIENT_ERROR", message, nil))
}

// SendServerError sends a server error response
func SendServerError(c echo.Context, message string) error {
	return c.JSON(http.StatusInternalServerError, CreateErrorResponse("SERVER_ERROR", message, nil))
}

// SendNotFoundError sends a not found error response
func SendNotFoundError(c echo.Context, resource string) error {
	return c.JSON(http.StatusNotFound, CreateErrorResponse("NOT_FOUND", fmt.Sprintf("%s not found", resource), nil))
}

// SendTooLargeError rejects an upload over the size limit.
func SendTooLargeError(c echo.Context, limit int64) error {
	return c.JSON(http.StatusRequestEntityTooLarge, CreateErrorResponse("FILE_TOO_LARGE",
		fmt.Sprintf("file exceeds the %d byte limit", limit), nil))
}

// SendUnauthorizedError sends an unauthorized error response
func SendUnauthorizedError(c echo.Context) error {
	return c.JSON(http.StatusUnauthorized, CreateErrorResponse("UNAUTHORIZED", "Unauthorized access", nil))
}

// ValidateUUID parses a path or query id
func ValidateUUID(idStr string, fieldName string) (uuid.UUID, error) {
	idStr = strings.TrimSpace(idStr)
	if idStr == "" {
		return uuid.Nil, fmt.Errorf("%s is required", fieldName)
	}

	id, err := uuid.Parse(idStr)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%s is not a valid UUID", fieldName)
	}
	return id, nil
}

// ValidateOptionalString bounds the length of an optional text field
func ValidateOptionalString(value *string, fieldName string, maxLength int) error {
	if value != nil && len(*value) > maxLength {
		return fmt.Errorf("%s cannot exceed %d characters", fieldName, maxLength)
	}
	return nil
}

// ValidateLicenseFileName accepts .lic and .txt files only
func ValidateLicenseFileName(name string) error {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".lic", ".txt":
		return nil
	default:
		return fmt.Errorf("only .lic and .txt files are accepted")
	}
}

// SanitizeSearchQuery strips LIKE wildcards and bounds the length
func SanitizeSearchQuery(query string) string {
	if strings.TrimSpace(query) == "" {
		return ""
	}

	query = strings.ReplaceAll(query, "%", "")
	query = strings.ReplaceAll(query, "_", "")

	if len(query) > 100 {
		query = query[:100]
	}

	return strings.TrimSpace(query)
}

// SafeString dereferences an optional string
func SafeString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// GetSubjectFromContext returns the authenticated token subject, if any
func GetSubjectFromContext(ctx context.Context) (string, bool) {
	subject, ok := ctx.Value(SubjectKey).(string)
	return subject, ok
}

// WithSubject stores the authenticated token subject
func WithSubject(ctx context.Context, subject string) context.Context {
	return context.WithValue(ctx, SubjectKey, subject)
}
