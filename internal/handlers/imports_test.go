package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"client-feedback-admin/internal/config"
	"client-feedback-admin/internal/importer"
	"client-feedback-admin/internal/models"
	"client-feedback-admin/internal/services"
)

func newImportTestRouter(t *testing.T, svc *MockImportService, maxUploadMB int) *mux.Router {
	cfg := &config.Config{Import: config.ImportConfig{
		UploadDir:       t.TempDir(),
		MaxUploadMB:     maxUploadMB,
		UpdateExisting:  false,
		RemoveNotInFile: false,
	}}
	h := NewImportHandler(createTestLogger(), cfg, svc)
	return newTestRouter(h.RegisterRoutes)
}

func multipartUpload(t *testing.T, fileName, content string, fields map[string]string) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	for k, v := range fields {
		require.NoError(t, writer.WriteField(k, v))
	}
	if fileName != "" {
		part, err := writer.CreateFormFile("file", fileName)
		require.NoError(t, err)
		_, err = part.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, writer.Close())
	return body, writer.FormDataContentType()
}

func stagedSession() *services.ImportSession {
	return &services.ImportSession{
		ID:       "0b6f5c7e-6f0e-4b55-9a3a-3b7f0b0c9e11",
		AdminID:  testAdmin.ID,
		FileName: "clients.csv",
		State:    services.StateClassified,
		Batch: &importer.Batch{
			NewRecords: []importer.Candidate{
				{Row: 2, Name: "Ann", Email: "ann@x.com", ReferenceID: "C1"},
				{Row: 3, Name: "Bob", Email: "bob@x.com", ReferenceID: "C2"},
			},
			DuplicatesInFile: []importer.Candidate{{Row: 4, Name: "Ann", Email: "ann2@x.com", ReferenceID: "C1"}},
		},
		Skipped: []importer.SkippedRow{{Row: 5, Reason: importer.ReasonMissingEmail}},
	}
}

func TestUploadImport(t *testing.T) {
	t.Run("stages the upload with form options", func(t *testing.T) {
		svc := &MockImportService{}
		router := newImportTestRouter(t, svc, 1)

		var savedPath string
		svc.On("Stage", mock.Anything, testAdmin.ID,
			mock.MatchedBy(func(u services.Upload) bool {
				savedPath = u.Path
				data, err := os.ReadFile(u.Path)
				return err == nil && u.FileName == "clients.csv" &&
					strings.HasSuffix(u.Path, ".csv") && strings.Contains(string(data), "ann@x.com")
			}),
			services.ImportOptions{ReferenceField: "Client Ref", UpdateExisting: true, RemoveNotInFile: false},
		).Return(stagedSession(), nil)

		body, contentType := multipartUpload(t, "clients.csv", "Name,Email\nAnn,ann@x.com\n", map[string]string{
			"reference_field": " Client Ref ",
			"update_existing": "on",
		})
		req := httptest.NewRequest(http.MethodPost, "/api/v1/imports", body)
		req.Header.Set("Content-Type", contentType)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
		t.Cleanup(func() { os.Remove(savedPath) })

		var resp map[string]interface{}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, "0b6f5c7e-6f0e-4b55-9a3a-3b7f0b0c9e11", resp["id"])
		counts := resp["counts"].(map[string]interface{})
		assert.Equal(t, float64(2), counts["new"])
		assert.Equal(t, float64(1), counts["duplicates"])
		assert.Equal(t, float64(1), counts["skipped"])
		svc.AssertExpectations(t)
	})

	t.Run("missing file", func(t *testing.T) {
		svc := &MockImportService{}
		router := newImportTestRouter(t, svc, 1)

		body, contentType := multipartUpload(t, "", "", map[string]string{"reference_field": "x"})
		req := httptest.NewRequest(http.MethodPost, "/api/v1/imports", body)
		req.Header.Set("Content-Type", contentType)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		svc.AssertNotCalled(t, "Stage", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("invalid boolean option", func(t *testing.T) {
		svc := &MockImportService{}
		router := newImportTestRouter(t, svc, 1)

		body, contentType := multipartUpload(t, "clients.csv", "Name,Email\n", map[string]string{"remove_not_in_file": "maybe"})
		req := httptest.NewRequest(http.MethodPost, "/api/v1/imports", body)
		req.Header.Set("Content-Type", contentType)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), "remove_not_in_file")
	})

	t.Run("upload over the size cap", func(t *testing.T) {
		svc := &MockImportService{}
		router := newImportTestRouter(t, svc, 1)

		big := strings.Repeat("a", 2<<20)
		body, contentType := multipartUpload(t, "clients.csv", big, nil)
		req := httptest.NewRequest(http.MethodPost, "/api/v1/imports", body)
		req.Header.Set("Content-Type", contentType)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
	})

	rejections := []struct {
		name string
		err  error
	}{
		{"unsupported format", fmt.Errorf("%w: .pdf", importer.ErrUnsupportedFormat)},
		{"not a client list", importer.ErrNotClientList},
		{"no valid records", services.ErrNoValidRecords},
		{"empty file", importer.ErrEmptyFile},
	}
	for _, tt := range rejections {
		t.Run("rejected: "+tt.name, func(t *testing.T) {
			svc := &MockImportService{}
			router := newImportTestRouter(t, svc, 1)
			svc.On("Stage", mock.Anything, testAdmin.ID, mock.Anything, mock.Anything).
				Run(func(args mock.Arguments) { os.Remove(args.Get(2).(services.Upload).Path) }).
				Return(nil, tt.err)

			body, contentType := multipartUpload(t, "clients.csv", "Foo,Bar\n1,2\n", nil)
			req := httptest.NewRequest(http.MethodPost, "/api/v1/imports", body)
			req.Header.Set("Content-Type", contentType)
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Contains(t, rec.Body.String(), tt.err.Error())
		})
	}
}

func TestPreviewConfirmCancel(t *testing.T) {
	importID := "0b6f5c7e-6f0e-4b55-9a3a-3b7f0b0c9e11"

	t.Run("preview", func(t *testing.T) {
		svc := &MockImportService{}
		router := newImportTestRouter(t, svc, 1)
		svc.On("Preview", mock.Anything, testAdmin.ID, importID).Return(stagedSession(), nil)

		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/imports/"+importID, nil))

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `"new_records"`)
	})

	t.Run("preview of another admin's import", func(t *testing.T) {
		svc := &MockImportService{}
		router := newImportTestRouter(t, svc, 1)
		svc.On("Preview", mock.Anything, testAdmin.ID, importID).Return(nil, services.ErrImportForbidden)

		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/imports/"+importID, nil))

		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("confirm", func(t *testing.T) {
		svc := &MockImportService{}
		router := newImportTestRouter(t, svc, 1)
		result := &importer.Result{Created: 2, DuplicatesIgnored: 1}
		svc.On("Confirm", mock.Anything, testAdmin.ID, importID).Return(&services.ImportSummary{
			ImportID: importID,
			Result:   result,
			Message:  services.SummaryMessage(result, false),
		}, nil)

		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/imports/"+importID+"/confirm", nil))

		assert.Equal(t, http.StatusOK, rec.Code)
		var summary services.ImportSummary
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &summary))
		assert.Equal(t, 2, summary.Result.Created)
		assert.Equal(t, "Import completed: 2 clients created. 1 duplicates in file were ignored", summary.Message)
	})

	t.Run("confirm after expiry", func(t *testing.T) {
		svc := &MockImportService{}
		router := newImportTestRouter(t, svc, 1)
		svc.On("Confirm", mock.Anything, testAdmin.ID, importID).Return(nil, services.ErrImportNotFound)

		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/imports/"+importID+"/confirm", nil))

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("cancel", func(t *testing.T) {
		svc := &MockImportService{}
		router := newImportTestRouter(t, svc, 1)
		svc.On("Cancel", mock.Anything, testAdmin.ID, importID).Return(nil)

		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/imports/"+importID+"/cancel", nil))

		assert.Equal(t, http.StatusNoContent, rec.Code)
		svc.AssertExpectations(t)
	})
}

func TestListRuns(t *testing.T) {
	svc := &MockImportService{}
	router := newImportTestRouter(t, svc, 1)
	svc.On("RecentRuns", mock.Anything, 5).Return([]*models.ImportRun{{ImportID: "a", Created: 3}}, nil)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/imports/runs?limit=5", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"total":1`)
	svc.AssertNotCalled(t, "Preview", mock.Anything, mock.Anything, mock.Anything)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/imports/runs?limit=abc", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
