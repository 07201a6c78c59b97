package handlers

import (
	"context"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/SAP-F-2025/question-import-service/internal/models"
	"github.com/SAP-F-2025/question-import-service/internal/repositories"
	"github.com/SAP-F-2025/question-import-service/internal/services"
	"github.com/SAP-F-2025/question-import-service/internal/utils"
	"github.com/SAP-F-2025/question-import-service/internal/validator"
	"github.com/gin-gonic/gin"
)

const (
	uploadField = "file"

	DefaultMaxUploadBytes int64 = 10 << 20

	contentTypeCSV  = "text/csv; charset=utf-8"
	contentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

type ImportHandler struct {
	BaseHandler
	importService  services.ImportService
	validator      *validator.Validator
	maxUploadBytes int64
}

func NewImportHandler(
	importService services.ImportService,
	validator *validator.Validator,
	logger utils.Logger,
	maxUploadBytes int64,
) *ImportHandler {
	if maxUploadBytes <= 0 {
		maxUploadBytes = DefaultMaxUploadBytes
	}
	return &ImportHandler{
		BaseHandler:    NewBaseHandler(logger),
		importService:  importService,
		validator:      validator,
		maxUploadBytes: maxUploadBytes,
	}
}

// ImportQuestions imports questions from an uploaded CSV or XLSX file
// @Summary Import questions
// @Description Parses the uploaded spreadsheet and creates every valid question on the question API
// @Tags imports
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "CSV or XLSX file"
// @Success 200 {object} SuccessResponse{data=services.ImportResult}
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 413 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /questions/import [post]
func (h *ImportHandler) ImportQuestions(c *gin.Context) {
	userID, ok := RequireUserID(c)
	if !ok {
		return
	}

	header, file, ok := h.openUpload(c)
	if !ok {
		return
	}
	defer file.Close()

	h.LogRequest(c, "Importing questions", "filename", header.Filename, "size", header.Size)

	result, err := h.importService.ImportFile(c.Request.Context(), file, services.ImportRequest{
		UserID:   userID,
		FileName: header.Filename,
		FileSize: header.Size,
	})
	if err != nil {
		if result != nil && errors.Is(err, context.Canceled) {
			h.LogWarn(c, "Import abandoned by client", "job_id", result.JobID)
			return
		}
		h.handleServiceError(c, err)
		return
	}

	h.RespondWithSuccess(c, http.StatusOK, result.Message, result,
		"job_id", result.JobID,
		"status", result.Status,
		"success_count", result.SuccessCount,
		"failure_count", result.FailureCount,
		"skipped_count", result.SkippedCount)
}

// InspectFile reports the detected headers and column mapping of a file
// @Summary Inspect import file
// @Description Shows how the header row is understood without importing anything
// @Tags imports
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "CSV or XLSX file"
// @Success 200 {object} SuccessResponse{data=services.HeaderDiagnostics}
// @Failure 400 {object} ErrorResponse
// @Router /questions/import/inspect [post]
func (h *ImportHandler) InspectFile(c *gin.Context) {
	header, file, ok := h.openUpload(c)
	if !ok {
		return
	}
	defer file.Close()

	h.LogRequest(c, "Inspecting import file", "filename", header.Filename)

	diagnostics, err := h.importService.InspectFile(c.Request.Context(), file, header.Filename)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	message := "All required columns found"
	if !diagnostics.Valid {
		message = "Missing required columns: " + strings.Join(diagnostics.Missing, ", ")
	}
	h.RespondWithSuccess(c, http.StatusOK, message, diagnostics)
}

// DownloadTemplate returns an example import file
// @Summary Download import template
// @Tags imports
// @Produce octet-stream
// @Param format query string false "csv or xlsx" Enums(csv, xlsx)
// @Success 200 {file} file
// @Failure 400 {object} ErrorResponse
// @Router /questions/import/template [get]
func (h *ImportHandler) DownloadTemplate(c *gin.Context) {
	var req models.TemplateRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.RespondWithError(c, http.StatusBadRequest, "Invalid query parameters", err, err.Error())
		return
	}
	if err := h.validator.ValidateStruct(&req); err != nil {
		h.RespondWithError(c, http.StatusBadRequest, "Validation failed", err, validator.ToValidationErrors(err))
		return
	}
	if req.Format == "" {
		req.Format = "csv"
	}

	data, err := h.importService.ExportTemplate(c.Request.Context(), req.Format)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	contentType := contentTypeCSV
	if req.Format == "xlsx" {
		contentType = contentTypeXLSX
	}

	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="question_import_template.%s"`, req.Format))
	c.Data(http.StatusOK, contentType, data)
}

// ListImportJobs lists the caller's import jobs
// @Summary List import jobs
// @Tags imports
// @Produce json
// @Param status query string false "Job status"
// @Param limit query int false "Page size"
// @Param offset query int false "Offset"
// @Success 200 {object} SuccessResponse{data=ListResponse}
// @Router /imports [get]
func (h *ImportHandler) ListImportJobs(c *gin.Context) {
	userID, ok := RequireUserID(c)
	if !ok {
		return
	}

	limit, ok := ParseIntQuery(c, "limit", 20)
	if !ok {
		return
	}
	offset, ok := ParseIntQuery(c, "offset", 0)
	if !ok {
		return
	}

	filters := repositories.ImportJobFilters{Limit: limit, Offset: offset}
	if status := strings.TrimSpace(c.Query("status")); status != "" {
		s := models.ImportJobStatus(status)
		filters.Status = &s
	}

	jobs, total, err := h.importService.ListImportJobs(c.Request.Context(), userID, filters)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.RespondWithSuccess(c, http.StatusOK, "Import jobs retrieved", ListResponse{
		Items:  jobs,
		Total:  total,
		Limit:  limit,
		Offset: offset,
	})
}

// GetImportJob returns the stored record of an import run
// @Summary Get import job
// @Tags imports
// @Produce json
// @Param id path string true "Import job ID"
// @Success 200 {object} SuccessResponse{data=models.ImportJob}
// @Failure 404 {object} ErrorResponse
// @Router /imports/{id} [get]
func (h *ImportHandler) GetImportJob(c *gin.Context) {
	id := ParseStringIDParam(c, "id")
	if id == "" {
		return
	}

	job, err := h.importService.GetImportJob(c.Request.Context(), id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.RespondWithSuccess(c, http.StatusOK, "Import job retrieved", job, "job_id", id)
}

// GetImportProgress returns the live progress of an import run
// @Summary Get import progress
// @Tags imports
// @Produce json
// @Param id path string true "Import job ID"
// @Success 200 {object} SuccessResponse
// @Failure 404 {object} ErrorResponse
// @Router /imports/{id}/progress [get]
func (h *ImportHandler) GetImportProgress(c *gin.Context) {
	id := ParseStringIDParam(c, "id")
	if id == "" {
		return
	}

	progress, err := h.importService.GetImportProgress(c.Request.Context(), id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{
		Message: "Import progress retrieved",
		Data: gin.H{
			"progress": progress,
			"percent":  progress.Percent(),
		},
	})
}

func (h *ImportHandler) openUpload(c *gin.Context) (*multipart.FileHeader, multipart.File, bool) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUploadBytes)

	header, err := c.FormFile(uploadField)
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			h.RespondWithError(c, http.StatusRequestEntityTooLarge, "File too large", err,
				fmt.Sprintf("maximum upload size is %d bytes", h.maxUploadBytes))
			return nil, nil, false
		}
		h.RespondWithError(c, http.StatusBadRequest, "File is required", err,
			fmt.Sprintf("upload the spreadsheet in the %q form field", uploadField))
		return nil, nil, false
	}

	file, err := header.Open()
	if err != nil {
		h.RespondWithError(c, http.StatusBadRequest, "Could not read uploaded file", err)
		return nil, nil, false
	}

	return header, file, true
}

func (h *ImportHandler) handleServiceError(c *gin.Context, err error) {
	if headerErr, ok := services.AsHeaderError(err); ok {
		h.RespondWithError(c, http.StatusBadRequest, headerErr.Error(), err, map[string]interface{}{
			"missing":           headerErr.Missing,
			"found_headers":     headerErr.Found,
			"accepted_variants": headerErr.Accepted,
		})
		return
	}

	var validationErrors services.ValidationErrors
	if errors.As(err, &validationErrors) {
		h.RespondWithError(c, http.StatusBadRequest, "Validation failed", err, validationErrors)
		return
	}

	switch {
	case services.IsNotFound(err):
		h.RespondWithError(c, http.StatusNotFound, "Import job not found", err)
	case services.IsValidation(err):
		h.RespondWithError(c, http.StatusBadRequest, err.Error(), err)
	default:
		h.RespondWithError(c, http.StatusInternalServerError, "Internal server error", err)
	}
}
