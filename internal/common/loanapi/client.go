// internal/common/loanapi/client.go
package loanapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"loan-wizard/internal/common/config"
	"loan-wizard/internal/common/errors"
	"loan-wizard/internal/common/logger"
	"loan-wizard/internal/models"
)

const defaultTimeout = 30 * time.Second

// Client talks to the loan REST backend. A Client carries at most one bearer
// token; use WithToken to derive a per-request client.
type Client struct {
	baseURL    string
	httpClient *http.Client
	token      string
	log        logger.Logger
}

func NewClient(cfg config.BackendConfig, log logger.Logger) *Client {
	timeout := time.Duration(cfg.Timeout) * time.Millisecond
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
		log: log.WithFields(map[string]interface{}{"component": "loanapi"}),
	}
}

// WithToken returns a copy of c that sends token as a bearer credential.
func (c *Client) WithToken(token string) *Client {
	cp := *c
	cp.token = strings.TrimSpace(strings.TrimPrefix(token, "Bearer "))
	return &cp
}

func (c *Client) CreateApplication(ctx context.Context, req models.LoanApplicationRequest) (*models.ApplicationResponse, error) {
	var out models.ApplicationResponse
	if err := c.doJSON(ctx, "create application", http.MethodPost, "/api/customer/applications", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) ResubmitApplication(ctx context.Context, applicationID string, req models.LoanApplicationRequest) (*models.ApplicationResponse, error) {
	var out models.ApplicationResponse
	path := "/api/customer/applications/" + url.PathEscape(applicationID)
	if err := c.doJSON(ctx, "resubmit application", http.MethodPut, path, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) GetApplication(ctx context.Context, applicationID string) (*models.ApplicationResponse, error) {
	var out models.ApplicationResponse
	path := "/api/customer/applications/" + url.PathEscape(applicationID)
	if err := c.doJSON(ctx, "get application", http.MethodGet, path, nil, &out); err != nil {
		if se, ok := err.(*errors.StandardError); ok && se.Metadata["status"] == http.StatusNotFound {
			return nil, errors.NewApplicationNotFoundError(applicationID)
		}
		return nil, err
	}
	return &out, nil
}

// ListDocuments returns the id and type of every document stored for the
// application. A null body is an empty list.
func (c *Client) ListDocuments(ctx context.Context, applicationID string) ([]models.DocumentRef, error) {
	var out []models.DocumentRef
	path := "/api/documents/application/" + url.PathEscape(applicationID) + "/ids"
	if err := c.doJSON(ctx, "list documents", http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// UploadDocument posts one file as multipart form data.
func (c *Client) UploadDocument(ctx context.Context, applicationID string, documentType models.DocumentType, filename string, content io.Reader) error {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	if err := mw.WriteField("applicationId", applicationID); err != nil {
		return err
	}
	if err := mw.WriteField("documentType", string(documentType)); err != nil {
		return err
	}
	part, err := mw.CreateFormFile("file", filename)
	if err != nil {
		return err
	}
	if _, err := io.Copy(part, content); err != nil {
		return fmt.Errorf("read %s: %w", filename, err)
	}
	if err := mw.Close(); err != nil {
		return err
	}

	req, err := c.newRequest(ctx, http.MethodPost, "/api/documents/upload", &body)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := c.send(req, "upload document")
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

// OpenDocument streams a stored document. The caller closes the reader.
func (c *Client) OpenDocument(ctx context.Context, documentID int) (io.ReadCloser, string, error) {
	req, err := c.newRequest(ctx, http.MethodGet, "/api/documents/"+strconv.Itoa(documentID), nil)
	if err != nil {
		return nil, "", err
	}
	resp, err := c.send(req, "get document")
	if err != nil {
		return nil, "", err
	}
	return resp.Body, resp.Header.Get("Content-Type"), nil
}

func (c *Client) doJSON(ctx context.Context, op, method, path string, in, out interface{}) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return errors.NewInternalError(err)
		}
		body = bytes.NewReader(data)
	}

	req, err := c.newRequest(ctx, method, path, body)
	if err != nil {
		return err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.send(req, op)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return errors.NewBackendRequestError(op, resp.StatusCode, err.Error())
	}
	if out == nil || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return errors.NewBackendRequestError(op, resp.StatusCode, "decode response: "+err.Error())
	}
	return nil
}

func (c *Client) newRequest(ctx context.Context, method, path string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, errors.NewInternalError(err)
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	return req, nil
}

// send executes req and converts transport failures and non-2xx responses
// into StandardErrors. On success the caller owns resp.Body.
func (c *Client) send(req *http.Request, op string) (*http.Response, error) {
	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.log.Warn("Backend request failed", map[string]interface{}{
			"operation": op,
			"error":     err.Error(),
		})
		return nil, errors.NewBackendRequestError(op, 0, err.Error())
	}

	c.log.Debug("Backend request completed", map[string]interface{}{
		"operation":  op,
		"method":     req.Method,
		"path":       req.URL.Path,
		"status":     resp.StatusCode,
		"durationMs": time.Since(start).Milliseconds(),
	})

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return resp, nil
	}
	defer resp.Body.Close()

	data, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	msg := errorMessage(data, resp.Status)
	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return nil, errors.NewUnauthorizedError(msg)
	}
	return nil, errors.NewBackendRequestError(op, resp.StatusCode, msg)
}

// errorMessage prefers the JSON message field, then the raw body, then the
// status line.
func errorMessage(body []byte, status string) string {
	var payload struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &payload); err == nil && payload.Message != "" {
		return payload.Message
	}
	if s := strings.TrimSpace(string(body)); s != "" {
		return s
	}
	return status
}
