package handlers

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"licensewatch/internal/common"
	"licensewatch/internal/models"
	"licensewatch/internal/parser"
	"licensewatch/internal/services"
)

const (
	defaultExpiringDays = 30
	maxNameLength       = 200
	maxMemoLength       = 2000
)

// LicenseHandlers serves the license endpoints
type LicenseHandlers struct {
	licenseService services.LicenseService
	maxFileSize    int64
}

func NewLicenseHandlers(licenseService services.LicenseService, maxFileSize int64) *LicenseHandlers {
	return &LicenseHandlers{
		licenseService: licenseService,
		maxFileSize:    maxFileSize,
	}
}

// UploadLicense accepts a multipart "file" field with optional manager_name,
// department and client_name fields.
func (h *LicenseHandlers) UploadLicense(c echo.Context) error {
	fileHeader, content, err := h.readLicenseFile(c)
	if err != nil {
		return err
	}
	if content == nil {
		return nil
	}

	req := services.UploadRequest{
		FileName:    fileHeader.Filename,
		Content:     content,
		ManagerName: c.FormValue("manager_name"),
		Department:  c.FormValue("department"),
		ClientName:  c.FormValue("client_name"),
	}
	if len(req.ManagerName) > maxNameLength || len(req.ClientName) > maxNameLength || len(req.Department) > maxNameLength {
		return common.SendValidationError(c, "form", fmt.Sprintf("text fields cannot exceed %d characters", maxNameLength))
	}

	result, err := h.licenseService.Upload(c.Request().Context(), req)
	if err != nil {
		return handleServiceError(c, err, "License")
	}

	return c.JSON(http.StatusCreated, result)
}

// ValidateLicense checks a file without storing it
func (h *LicenseHandlers) ValidateLicense(c echo.Context) error {
	_, content, err := h.readLicenseFile(c)
	if err != nil {
		return err
	}
	if content == nil {
		return nil
	}

	return c.JSON(http.StatusOK, h.licenseService.Validate(content))
}

// readLicenseFile returns a nil content slice when it has already written an
// error response.
func (h *LicenseHandlers) readLicenseFile(c echo.Context) (*multipart.FileHeader, []byte, error) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		return nil, nil, common.SendValidationError(c, "file", "a license file is required")
	}
	if err := common.ValidateLicenseFileName(fileHeader.Filename); err != nil {
		return nil, nil, common.SendValidationError(c, "file", err.Error())
	}
	if fileHeader.Size > h.maxFileSize {
		return nil, nil, common.SendTooLargeError(c, h.maxFileSize)
	}

	file, err := fileHeader.Open()
	if err != nil {
		return nil, nil, common.SendServerError(c, "failed to read uploaded file")
	}
	defer file.Close()

	content, err := io.ReadAll(io.LimitReader(file, h.maxFileSize+1))
	if err != nil {
		return nil, nil, common.SendServerError(c, "failed to read uploaded file")
	}
	if int64(len(content)) > h.maxFileSize {
		return nil, nil, common.SendTooLargeError(c, h.maxFileSize)
	}
	return fileHeader, content, nil
}

// ListLicenses supports page, limit, site_id, department, status and search
func (h *LicenseHandlers) ListLicenses(c echo.Context) error {
	filter := services.ListFilter{
		Department: c.QueryParam("department"),
		Status:     c.QueryParam("status"),
		Search:     common.SanitizeSearchQuery(c.QueryParam("search")),
	}

	var err error
	if filter.Page, err = queryInt(c, "page", 1); err != nil {
		return common.SendValidationError(c, "page", err.Error())
	}
	if filter.Limit, err = queryInt(c, "limit", 20); err != nil {
		return common.SendValidationError(c, "limit", err.Error())
	}
	if raw := c.QueryParam("site_id"); raw != "" {
		siteID, err := common.ValidateUUID(raw, "site_id")
		if err != nil {
			return common.SendValidationError(c, "site_id", err.Error())
		}
		filter.SiteID = &siteID
	}

	result, err := h.licenseService.List(c.Request().Context(), filter)
	if err != nil {
		return handleServiceError(c, err, "License")
	}
	return c.JSON(http.StatusOK, result)
}

// ExpiringLicenses lists licenses with features expiring within ?days= (default 30)
func (h *LicenseHandlers) ExpiringLicenses(c echo.Context) error {
	days, err := queryInt(c, "days", defaultExpiringDays)
	if err != nil {
		return common.SendValidationError(c, "days", err.Error())
	}

	licenses, err := h.licenseService.Expiring(c.Request().Context(), days)
	if err != nil {
		return handleServiceError(c, err, "License")
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"days":     days,
		"count":    len(licenses),
		"licenses": licenses,
	})
}

func (h *LicenseHandlers) GetLicense(c echo.Context) error {
	id, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return common.SendValidationError(c, "id", err.Error())
	}

	detail, err := h.licenseService.Get(c.Request().Context(), id)
	if err != nil {
		return handleServiceError(c, err, "License")
	}
	return c.JSON(http.StatusOK, detail)
}

// GetLicenseContent returns the original file text
func (h *LicenseHandlers) GetLicenseContent(c echo.Context) error {
	id, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return common.SendValidationError(c, "id", err.Error())
	}

	content, err := h.licenseService.Content(c.Request().Context(), id)
	if err != nil {
		return handleServiceError(c, err, "License file")
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"license_id": id,
		"content":    content,
	})
}

// UpdateLicense replaces the manager, client and memo notes
func (h *LicenseHandlers) UpdateLicense(c echo.Context) error {
	id, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return common.SendValidationError(c, "id", err.Error())
	}

	var notes models.LicenseNotes
	if err := c.Bind(&notes); err != nil {
		return common.SendClientError(c, "invalid request body")
	}
	if err := validateNotes(notes); err != nil {
		return common.SendValidationError(c, "body", err.Error())
	}

	ctx := c.Request().Context()
	if err := h.licenseService.UpdateNotes(ctx, id, notes); err != nil {
		return handleServiceError(c, err, "License")
	}

	detail, err := h.licenseService.Get(ctx, id)
	if err != nil {
		return handleServiceError(c, err, "License")
	}
	return c.JSON(http.StatusOK, detail)
}

func (h *LicenseHandlers) DeleteLicense(c echo.Context) error {
	id, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return common.SendValidationError(c, "id", err.Error())
	}

	if err := h.licenseService.Delete(c.Request().Context(), id); err != nil {
		return handleServiceError(c, err, "License")
	}
	return c.NoContent(http.StatusNoContent)
}

func validateNotes(notes models.LicenseNotes) error {
	if err := common.ValidateOptionalString(notes.ManagerName, "manager_name", maxNameLength); err != nil {
		return err
	}
	if err := common.ValidateOptionalString(notes.ClientName, "client_name", maxNameLength); err != nil {
		return err
	}
	return common.ValidateOptionalString(notes.Memo, "memo", maxMemoLength)
}

func queryInt(c echo.Context, name string, fallback int) (int, error) {
	raw := c.QueryParam(name)
	if raw == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer", name)
	}
	return n, nil
}

func handleServiceError(c echo.Context, err error, resource string) error {
	var validationErr *services.ValidationError
	switch {
	case errors.As(err, &validationErr):
		return common.SendInvalidLicense(c, validationErr.Reasons)
	case errors.Is(err, parser.ErrMissingContentBlock):
		return common.SendInvalidLicense(c, []string{err.Error()})
	case errors.Is(err, services.ErrInvalidInput):
		return common.SendClientError(c, err.Error())
	case services.IsNotFound(err):
		return common.SendNotFoundError(c, resource)
	default:
		logrus.WithError(err).WithFields(logrus.Fields{
			"method": c.Request().Method,
			"path":   c.Path(),
		}).Error("request failed")
		return common.SendServerError(c, "internal server error")
	}
}
