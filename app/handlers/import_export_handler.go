// Package handlers contains HTTP request handlers and presentation layer logic for the API endpoints
package handlers

import (
	"context"
	"log"
	"mime/multipart"
	"path/filepath"
	"strings"
	"time"

	"github.com/lazparking/subscription-onboarding/app/dto"
	"github.com/lazparking/subscription-onboarding/app/middleware"
	businessflow "github.com/lazparking/subscription-onboarding/business_flow"
	"github.com/lazparking/subscription-onboarding/utils"
	"github.com/gofiber/fiber/v3"
)

// ImportExportHandlerInterface defines the contract for tabular import/export handlers
type ImportExportHandlerInterface interface {
	ExportWorkbook(c fiber.Ctx) error
	ExportCSV(c fiber.Ctx) error
	ImportAccounts(c fiber.Ctx) error
	ImportParkers(c fiber.Ctx) error
}

// ImportExportHandler handles tabular import and export HTTP requests
type ImportExportHandler struct {
	exportFlow businessflow.ExportFlow
	importFlow businessflow.ImportFlow
}

// NewImportExportHandler creates a new import/export handler
func NewImportExportHandler(exportFlow businessflow.ExportFlow, importFlow businessflow.ImportFlow) *ImportExportHandler {
	return &ImportExportHandler{
		exportFlow: exportFlow,
		importFlow: importFlow,
	}
}

func (h *ImportExportHandler) ErrorResponse(c fiber.Ctx, statusCode int, message, errorCode string, details any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: false,
		Message: message,
		Error: dto.ErrorDetail{
			Code:    errorCode,
			Details: details,
		},
	})
}

func (h *ImportExportHandler) SuccessResponse(c fiber.Ctx, statusCode int, message string, data any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: true,
		Message: message,
		Data:    data,
	})
}

func (h *ImportExportHandler) createRequestContext(c fiber.Ctx, endpoint string) context.Context {
	timeout := 60 * time.Second
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	ctx = context.WithValue(ctx, utils.RequestIDKey, c.Get("X-Request-ID"))
	ctx = context.WithValue(ctx, utils.UserAgentKey, c.Get("User-Agent"))
	ctx = context.WithValue(ctx, utils.IPAddressKey, c.IP())
	ctx = context.WithValue(ctx, utils.EndpointKey, endpoint)
	ctx = context.WithValue(ctx, utils.TimeoutKey, timeout)
	ctx = context.WithValue(ctx, utils.CancelFuncKey, cancel)
	return ctx
}

// ExportWorkbook flattens the session into an xlsx download and commits reserved IDs
// @Summary Export workbook
// @Tags Export
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Success 200 {string} string "xlsx file"
// @Failure 400 {object} dto.APIResponse "Session has validation errors"
// @Router /api/v1/export/workbook [get]
func (h *ImportExportHandler) ExportWorkbook(c fiber.Ctx) error {
	filename, data, err := h.exportFlow.ExportWorkbook(h.createRequestContext(c, "/api/v1/export/workbook"))
	if err != nil {
		return h.exportErrorResponse(c, err)
	}

	middleware.RecordExport("xlsx")
	c.Set("Content-Type", utils.ContentTypeXLSX)
	c.Set("Content-Disposition", "attachment; filename="+filename)
	return c.Send(data)
}

// ExportCSV flattens the session into a CSV download and commits reserved IDs
// @Summary Export CSV
// @Tags Export
// @Produce text/csv
// @Success 200 {string} string "CSV file"
// @Failure 400 {object} dto.APIResponse "Session has validation errors"
// @Router /api/v1/export/csv [get]
func (h *ImportExportHandler) ExportCSV(c fiber.Ctx) error {
	filename, data, err := h.exportFlow.ExportCSV(h.createRequestContext(c, "/api/v1/export/csv"))
	if err != nil {
		return h.exportErrorResponse(c, err)
	}

	middleware.RecordExport("csv")
	c.Set("Content-Type", utils.ContentTypeCSV+"; charset=utf-8")
	c.Set("Content-Disposition", "attachment; filename="+filename)
	return c.Send(data)
}

func (h *ImportExportHandler) exportErrorResponse(c fiber.Ctx, err error) error {
	if businessflow.IsValidationFailed(err) {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Session has validation errors", "VALIDATION_ERROR", nil)
	}
	log.Println("Export failed", err)
	return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to generate export", "EXPORT_FAILED", nil)
}

// ImportAccounts loads the account template and appends one account per data row
// @Summary Import accounts
// @Tags Import
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "Account template (xlsx or csv)"
// @Success 200 {object} dto.APIResponse{data=dto.ImportAccountsResponse} "Accounts imported"
// @Failure 400 {object} dto.APIResponse "Missing columns or empty file"
// @Failure 409 {object} dto.APIResponse "Import already in progress"
// @Router /api/v1/import/accounts [post]
func (h *ImportExportHandler) ImportAccounts(c fiber.Ctx) error {
	fh, format, errResp := h.openImportFile(c)
	if errResp != nil {
		return errResp
	}
	defer fh.Close()

	res, err := h.importFlow.ImportAccounts(h.createRequestContext(c, "/api/v1/import/accounts"), fh, format)
	if err != nil {
		return h.importErrorResponse(c, err, "accounts")
	}

	middleware.RecordImportRows("accounts", "accepted", res.Imported)
	return h.SuccessResponse(c, fiber.StatusOK, res.Message, res)
}

// ImportParkers loads the parker template into the active account's plans
// @Summary Import parkers
// @Tags Import
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "Parker template (xlsx or csv)"
// @Success 200 {object} dto.APIResponse{data=dto.ImportParkersResponse} "Parkers imported"
// @Failure 400 {object} dto.APIResponse "Missing columns or empty file"
// @Failure 409 {object} dto.APIResponse "Import already in progress"
// @Failure 422 {object} dto.APIResponse "Rows reference unknown subscription plans"
// @Router /api/v1/import/parkers [post]
func (h *ImportExportHandler) ImportParkers(c fiber.Ctx) error {
	fh, format, errResp := h.openImportFile(c)
	if errResp != nil {
		return errResp
	}
	defer fh.Close()

	res, err := h.importFlow.ImportParkers(h.createRequestContext(c, "/api/v1/import/parkers"), fh, format)
	if err != nil {
		return h.importErrorResponse(c, err, "parkers")
	}

	middleware.RecordImportRows("parkers", "accepted", res.Imported)
	return h.SuccessResponse(c, fiber.StatusOK, res.Message, res)
}

// openImportFile pulls the uploaded template out of the multipart form and
// derives the parse format from its extension.
func (h *ImportExportHandler) openImportFile(c fiber.Ctx) (multipart.File, string, error) {
	fileHeader, err := c.FormFile("file")
	if err != nil || fileHeader == nil {
		return nil, "", h.ErrorResponse(c, fiber.StatusBadRequest, "file is required", "INVALID_REQUEST", nil)
	}

	var format string
	switch strings.ToLower(filepath.Ext(fileHeader.Filename)) {
	case ".xlsx":
		format = businessflow.ImportFormatXLSX
	case ".csv":
		format = businessflow.ImportFormatCSV
	default:
		return nil, "", h.ErrorResponse(c, fiber.StatusBadRequest, "Unsupported file type, expected .xlsx or .csv", "UNSUPPORTED_FILE_TYPE", nil)
	}

	fh, err := fileHeader.Open()
	if err != nil {
		return nil, "", h.ErrorResponse(c, fiber.StatusBadRequest, "invalid file", "INVALID_FILE", err.Error())
	}
	return fh, format, nil
}

func (h *ImportExportHandler) importErrorResponse(c fiber.Ctx, err error, template string) error {
	if businessflow.IsImportInProgress(err) {
		return h.ErrorResponse(c, fiber.StatusConflict, "Another import is already in progress", "IMPORT_IN_PROGRESS", nil)
	}
	if businessflow.IsMissingRequiredColumns(err) {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Template is missing required columns", "MISSING_REQUIRED_COLUMNS", err.Error())
	}
	if businessflow.IsEmptyImport(err) {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Template contains no data rows", "EMPTY_IMPORT", nil)
	}
	if refErr := businessflow.AsImportReferenceError(err); refErr != nil {
		middleware.RecordImportRows(template, "rejected", len(refErr.Rows))
		return h.ErrorResponse(c, fiber.StatusUnprocessableEntity, "Rows reference unknown subscription plans", "UNKNOWN_PLAN_REFERENCES", refErr.Report())
	}
	log.Println("Import", template, "failed", err)
	return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to import "+template, "IMPORT_FAILED", nil)
}
