package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	apperrors "github.com/SAP-F-2025/question-import-service/internal/errors"
	"github.com/SAP-F-2025/question-import-service/internal/models"
	"github.com/SAP-F-2025/question-import-service/internal/repositories"
	"github.com/SAP-F-2025/question-import-service/internal/services"
	"github.com/SAP-F-2025/question-import-service/internal/utils"
	"github.com/SAP-F-2025/question-import-service/internal/validator"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockImportService is a mock implementation of services.ImportService
type MockImportService struct {
	mock.Mock
}

func (m *MockImportService) ImportFile(ctx context.Context, reader io.Reader, req services.ImportRequest) (*services.ImportResult, error) {
	content, _ := io.ReadAll(reader)
	args := m.Called(ctx, string(content), req)
	result, _ := args.Get(0).(*services.ImportResult)
	return result, args.Error(1)
}

func (m *MockImportService) ImportCSV(ctx context.Context, reader io.Reader, req services.ImportRequest) (*services.ImportResult, error) {
	args := m.Called(ctx, reader, req)
	result, _ := args.Get(0).(*services.ImportResult)
	return result, args.Error(1)
}

func (m *MockImportService) ImportExcel(ctx context.Context, reader io.Reader, req services.ImportRequest) (*services.ImportResult, error) {
	args := m.Called(ctx, reader, req)
	result, _ := args.Get(0).(*services.ImportResult)
	return result, args.Error(1)
}

func (m *MockImportService) InspectFile(ctx context.Context, reader io.Reader, filename string) (*services.HeaderDiagnostics, error) {
	args := m.Called(ctx, reader, filename)
	diagnostics, _ := args.Get(0).(*services.HeaderDiagnostics)
	return diagnostics, args.Error(1)
}

func (m *MockImportService) ExportTemplate(ctx context.Context, format string) ([]byte, error) {
	args := m.Called(ctx, format)
	data, _ := args.Get(0).([]byte)
	return data, args.Error(1)
}

func (m *MockImportService) GetImportJob(ctx context.Context, jobID string) (*models.ImportJob, error) {
	args := m.Called(ctx, jobID)
	job, _ := args.Get(0).(*models.ImportJob)
	return job, args.Error(1)
}

func (m *MockImportService) ListImportJobs(ctx context.Context, userID string, filters repositories.ImportJobFilters) ([]*models.ImportJob, int64, error) {
	args := m.Called(ctx, userID, filters)
	jobs, _ := args.Get(0).([]*models.ImportJob)
	return jobs, args.Get(1).(int64), args.Error(2)
}

func (m *MockImportService) GetImportProgress(ctx context.Context, jobID string) (*models.ImportProgress, error) {
	args := m.Called(ctx, jobID)
	progress, _ := args.Get(0).(*models.ImportProgress)
	return progress, args.Error(1)
}

func setupRouter(service services.ImportService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	hm := NewHandlerManager(service, validator.New(), utils.NewNopLogger(), 0)
	return NewRouter(hm, utils.NewNopLogger())
}

func uploadRequest(t *testing.T, path, filename, content string) *http.Request {
	t.Helper()

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = part.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, path, &body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set(utils.UserIDHeader, "instructor-1")
	return req
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func TestImportQuestions(t *testing.T) {
	service := new(MockImportService)
	service.On("ImportFile", mock.Anything, "Question,A,B,C,D,Answer\nQ,a,b,c,d,A\n", mock.MatchedBy(func(req services.ImportRequest) bool {
		return req.UserID == "instructor-1" && req.FileName == "questions.csv" && req.FileSize > 0
	})).Return(&services.ImportResult{
		JobID:        "job-1",
		ParsedCount:  1,
		SuccessCount: 1,
		Status:       models.ImportCompleted,
		Message:      "Imported 1 of 1 questions: 1 succeeded, 0 failed, 0 rows skipped",
	}, nil)

	router := setupRouter(service)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, uploadRequest(t, "/api/v1/questions/import", "questions.csv", "Question,A,B,C,D,Answer\nQ,a,b,c,d,A\n"))

	require.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, "Imported 1 of 1 questions: 1 succeeded, 0 failed, 0 rows skipped", body["message"])
	data := body["data"].(map[string]interface{})
	assert.Equal(t, "job-1", data["job_id"])
	assert.Equal(t, float64(1), data["success_count"])
	assert.NotEmpty(t, w.Header().Get(utils.RequestIDHeader))

	service.AssertExpectations(t)
}

func TestImportQuestions_Unauthenticated(t *testing.T) {
	service := new(MockImportService)
	router := setupRouter(service)

	req := uploadRequest(t, "/api/v1/questions/import", "questions.csv", "x")
	req.Header.Del(utils.UserIDHeader)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	service.AssertNotCalled(t, "ImportFile", mock.Anything, mock.Anything, mock.Anything)
}

func TestImportQuestions_MissingFile(t *testing.T) {
	router := setupRouter(new(MockImportService))

	req := httptest.NewRequest(http.MethodPost, "/api/v1/questions/import", nil)
	req.Header.Set(utils.UserIDHeader, "instructor-1")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "File is required", decodeBody(t, w)["message"])
}

func TestImportQuestions_HeaderError(t *testing.T) {
	headerErr := apperrors.NewHeaderError(
		[]string{"correct_answer"},
		[]string{"Question", "A", "B", "C", "D"},
		map[string][]string{"correct_answer": {"correct_answer", "answer"}},
	)

	service := new(MockImportService)
	service.On("ImportFile", mock.Anything, mock.Anything, mock.Anything).Return(nil, headerErr)

	router := setupRouter(service)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, uploadRequest(t, "/api/v1/questions/import", "questions.csv", "Question,A,B,C,D\n"))

	require.Equal(t, http.StatusBadRequest, w.Code)
	body := decodeBody(t, w)
	assert.Contains(t, body["message"], "missing required columns: correct_answer")
	details := body["details"].(map[string]interface{})
	assert.Equal(t, []interface{}{"correct_answer"}, details["missing"])
	assert.Equal(t, []interface{}{"Question", "A", "B", "C", "D"}, details["found_headers"])
	assert.Contains(t, details, "accepted_variants")
}

func TestImportQuestions_ServiceErrors(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code int
	}{
		{"unsupported format", services.ErrUnsupportedFormat, http.StatusBadRequest},
		{"empty file", services.ErrEmptyFile, http.StatusBadRequest},
		{"store down", errors.New("connection reset"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service := new(MockImportService)
			service.On("ImportFile", mock.Anything, mock.Anything, mock.Anything).Return(nil, tt.err)

			router := setupRouter(service)
			w := httptest.NewRecorder()
			router.ServeHTTP(w, uploadRequest(t, "/api/v1/questions/import", "q.csv", "x"))

			assert.Equal(t, tt.code, w.Code)
		})
	}
}

func TestInspectFile(t *testing.T) {
	service := new(MockImportService)
	service.On("InspectFile", mock.Anything, mock.Anything, "questions.csv").Return(&services.HeaderDiagnostics{
		FileName: "questions.csv",
		Headers:  []string{"Question", "A"},
		Missing:  []string{"option_b", "option_c", "option_d", "correct_answer"},
		Valid:    false,
	}, nil)

	router := setupRouter(service)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, uploadRequest(t, "/api/v1/questions/import/inspect", "questions.csv", "Question,A\n"))

	require.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, "Missing required columns: option_b, option_c, option_d, correct_answer", body["message"])
	service.AssertNotCalled(t, "ImportFile", mock.Anything, mock.Anything, mock.Anything)
}

func TestDownloadTemplate(t *testing.T) {
	service := new(MockImportService)
	service.On("ExportTemplate", mock.Anything, "csv").Return([]byte("Question,Option A\n"), nil)
	service.On("ExportTemplate", mock.Anything, "xlsx").Return([]byte("PK"), nil)

	router := setupRouter(service)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/questions/import/template", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, contentTypeCSV, w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "question_import_template.csv")
	assert.Equal(t, "Question,Option A\n", w.Body.String())

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/questions/import/template?format=xlsx", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, contentTypeXLSX, w.Header().Get("Content-Type"))

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/questions/import/template?format=pdf", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Validation failed", decodeBody(t, w)["message"])
}

func TestGetImportJob(t *testing.T) {
	service := new(MockImportService)
	service.On("GetImportJob", mock.Anything, "job-1").Return(&models.ImportJob{ID: "job-1", Status: models.ImportCompleted}, nil)
	service.On("GetImportJob", mock.Anything, "nope").Return(nil, services.ErrImportJobNotFound)

	router := setupRouter(service)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/imports/job-1", nil))
	require.Equal(t, http.StatusOK, w.Code)
	data := decodeBody(t, w)["data"].(map[string]interface{})
	assert.Equal(t, "completed", data["status"])

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/imports/nope", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGetImportProgress(t *testing.T) {
	service := new(MockImportService)
	service.On("GetImportProgress", mock.Anything, "job-1").Return(&models.ImportProgress{
		JobID:     "job-1",
		Status:    models.ImportProcessing,
		Total:     20,
		Processed: 10,
	}, nil)

	router := setupRouter(service)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/imports/job-1/progress", nil))

	require.Equal(t, http.StatusOK, w.Code)
	data := decodeBody(t, w)["data"].(map[string]interface{})
	assert.Equal(t, float64(50), data["percent"])
}

func TestListImportJobs(t *testing.T) {
	failed := models.ImportFailed
	service := new(MockImportService)
	service.On("ListImportJobs", mock.Anything, "instructor-1", repositories.ImportJobFilters{
		Status: &failed,
		Limit:  5,
		Offset: 10,
	}).Return([]*models.ImportJob{{ID: "job-1"}}, int64(11), nil)

	router := setupRouter(service)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/imports?status=failed&limit=5&offset=10", nil)
	req.Header.Set(utils.UserIDHeader, "instructor-1")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	data := decodeBody(t, w)["data"].(map[string]interface{})
	assert.Equal(t, float64(11), data["total"])

	req = httptest.NewRequest(http.MethodGet, "/api/v1/imports?limit=-1", nil)
	req.Header.Set(utils.UserIDHeader, "instructor-1")
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHealthCheck(t *testing.T) {
	router := setupRouter(new(MockImportService))

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "healthy", decodeBody(t, w)["status"])
}
