package loanapi

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"loan-wizard/internal/common/config"
	"loan-wizard/internal/common/errors"
	"loan-wizard/internal/common/logger"
	"loan-wizard/internal/models"
)

// ==========================
// Test Helper Functions
// ==========================

func createTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(config.BackendConfig{BaseURL: srv.URL + "/", Timeout: 2000}, logger.NewTestLogger(t))
}

func createTestRequest() models.LoanApplicationRequest {
	return models.LoanApplicationRequest{
		PersonalDetails: models.PersonalDetails{FirstName: "Asha", LastName: "Rao"},
		LoanDetails: models.LoanDetails{
			LoanType:           "PERSONAL_LOAN",
			LoanAmount:         models.AmountFromInt(500000),
			LoanDurationMonths: models.AmountFromInt(36),
		},
		References: []models.Reference{},
	}
}

func standardError(t *testing.T, err error) *errors.StandardError {
	t.Helper()
	se, ok := err.(*errors.StandardError)
	require.True(t, ok, "expected StandardError, got %T", err)
	return se
}

// ==========================
// Applications
// ==========================

func TestCreateApplication(t *testing.T) {
	client := createTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/customer/applications", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.Equal(t, "Bearer tok-123", r.Header.Get("Authorization"))

		var body map[string]map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, float64(500000), body["loanDetails"]["loanAmount"])

		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"id":9,"applicationId":"LA-2001","status":"PENDING"}`)
	})

	resp, err := client.WithToken("Bearer tok-123").CreateApplication(context.Background(), createTestRequest())

	require.NoError(t, err)
	assert.Equal(t, "LA-2001", resp.ApplicationID)
	assert.Equal(t, models.StatusPending, resp.Status)
}

func TestWithToken_DoesNotLeak(t *testing.T) {
	var seen []string
	client := createTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		seen = append(seen, r.Header.Get("Authorization"))
		_, _ = io.WriteString(w, `[]`)
	})

	_, err := client.WithToken("a").ListDocuments(context.Background(), "LA-1")
	require.NoError(t, err)
	_, err = client.ListDocuments(context.Background(), "LA-1")
	require.NoError(t, err)

	assert.Equal(t, []string{"Bearer a", ""}, seen)
}

func TestResubmitApplication(t *testing.T) {
	client := createTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		assert.Equal(t, "/api/customer/applications/LA 7", r.URL.Path)
		_, _ = io.WriteString(w, `{}`)
	})

	resp, err := client.ResubmitApplication(context.Background(), "LA 7", createTestRequest())

	require.NoError(t, err)
	assert.Empty(t, resp.ApplicationID, "an empty body is a response without an id")
}

func TestGetApplication(t *testing.T) {
	client := createTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/api/customer/applications/LA-1001", r.URL.Path)
		_, _ = io.WriteString(w, `{
			"applicationId": "LA-1001",
			"status": "REJECTED",
			"loanDetails": {"loanType": "HOME_LOAN", "loanAmount": 2500000.5, "loanDurationMonths": 240},
			"references": [{"referenceNumber": 1, "name": "Ravi"}]
		}`)
	})

	app, err := client.GetApplication(context.Background(), "LA-1001")

	require.NoError(t, err)
	assert.True(t, app.Status.IsRejected())
	require.NotNil(t, app.LoanDetails)
	assert.Equal(t, "2500000.5", app.LoanDetails.LoanAmount.String())
	require.Len(t, app.References, 1)
}

func TestGetApplication_NotFound(t *testing.T) {
	client := createTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "no such application", http.StatusNotFound)
	})

	_, err := client.GetApplication(context.Background(), "LA-404")

	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeApplicationAbsent, standardError(t, err).Code)
}

// ==========================
// Documents
// ==========================

func TestListDocuments(t *testing.T) {
	tests := []struct {
		name string
		body string
		want []models.DocumentRef
	}{
		{"list", `[{"id":1,"documentType":"PHOTOGRAPH"},{"id":2,"documentType":"CIBIL_REPORT"}]`,
			[]models.DocumentRef{{ID: 1, DocumentType: models.DocPhotograph}, {ID: 2, DocumentType: models.DocCIBILReport}}},
		{"null", `null`, nil},
		{"empty body", ``, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := createTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "/api/documents/application/LA-1/ids", r.URL.Path)
				_, _ = io.WriteString(w, tt.body)
			})

			refs, err := client.ListDocuments(context.Background(), "LA-1")

			require.NoError(t, err)
			assert.Equal(t, tt.want, refs)
		})
	}
}

func TestUploadDocument(t *testing.T) {
	client := createTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/documents/upload", r.URL.Path)
		require.NoError(t, r.ParseMultipartForm(1<<20))

		assert.Equal(t, "LA-2001", r.FormValue("applicationId"))
		assert.Equal(t, "CIBIL_REPORT", r.FormValue("documentType"))

		file, header, err := r.FormFile("file")
		require.NoError(t, err)
		defer file.Close()
		data, _ := io.ReadAll(file)
		assert.Equal(t, "cibil.pdf", header.Filename)
		assert.Equal(t, "pdf bytes", string(data))

		_, _ = io.WriteString(w, "Uploaded")
	})

	err := client.UploadDocument(context.Background(), "LA-2001", models.DocCIBILReport, "cibil.pdf", strings.NewReader("pdf bytes"))

	assert.NoError(t, err)
}

func TestOpenDocument(t *testing.T) {
	client := createTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/documents/42", r.URL.Path)
		w.Header().Set("Content-Type", "image/png")
		_, _ = io.WriteString(w, "png")
	})

	rc, contentType, err := client.OpenDocument(context.Background(), 42)

	require.NoError(t, err)
	defer rc.Close()
	data, _ := io.ReadAll(rc)
	assert.Equal(t, "png", string(data))
	assert.Equal(t, "image/png", contentType)
}

// ==========================
// Error Messages
// ==========================

func TestBackendErrors(t *testing.T) {
	tests := []struct {
		name        string
		status      int
		contentType string
		body        string
		wantCode    errors.ErrorCode
		wantDetails string
		retryable   bool
	}{
		{"json message", http.StatusBadRequest, "application/json", `{"message":"PAN already registered"}`,
			errors.ErrCodeBackendRequest, "PAN already registered", false},
		{"raw body", http.StatusInternalServerError, "text/plain", "database unavailable",
			errors.ErrCodeBackendRequest, "database unavailable", true},
		{"json without message", http.StatusConflict, "application/json", `{"error":"dup"}`,
			errors.ErrCodeBackendRequest, `{"error":"dup"}`, false},
		{"empty body", http.StatusBadGateway, "text/plain", "",
			errors.ErrCodeBackendRequest, "502 Bad Gateway", true},
		{"unauthorized", http.StatusUnauthorized, "application/json", `{"message":"token expired"}`,
			errors.ErrCodeUnauthorized, "token expired", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := createTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", tt.contentType)
				w.WriteHeader(tt.status)
				_, _ = io.WriteString(w, tt.body)
			})

			_, err := client.CreateApplication(context.Background(), createTestRequest())

			require.Error(t, err)
			se := standardError(t, err)
			assert.Equal(t, tt.wantCode, se.Code)
			assert.Equal(t, tt.wantDetails, se.Details)
			assert.Equal(t, tt.retryable, se.Retryable)
		})
	}
}

func TestTransportError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close()
	client := NewClient(config.BackendConfig{BaseURL: srv.URL}, logger.NewTestLogger(t))

	err := client.UploadDocument(context.Background(), "LA-1", models.DocPhotograph, "p.jpg", strings.NewReader("x"))

	require.Error(t, err)
	se := standardError(t, err)
	assert.Equal(t, errors.ErrCodeBackendRequest, se.Code)
	assert.True(t, se.Retryable)
	assert.NotEmpty(t, se.Details)
}

func TestErrorMessage(t *testing.T) {
	assert.Equal(t, "boom", errorMessage([]byte(`{"message":"boom"}`), "500"))
	assert.Equal(t, "plain", errorMessage([]byte("  plain \n"), "500"))
	assert.Equal(t, "500 Internal Server Error", errorMessage(nil, "500 Internal Server Error"))
}
