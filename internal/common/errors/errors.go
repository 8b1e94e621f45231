// Package errors provides standardized error handling for the loan wizard,
// its HTTP front door and the review workflow workers.
package errors

import (
	"fmt"
	"strings"
	"time"
)

// ==========================
// 1. Standard Error Types
// ==========================

// ErrorCode represents standardized internal error codes.
type ErrorCode string

// Wizard and submission errors
const (
	ErrCodeValidationFailed     ErrorCode = "VALIDATION_FAILED"
	ErrCodeFieldLocked          ErrorCode = "FIELD_LOCKED"
	ErrCodeSubmissionFailed     ErrorCode = "SUBMISSION_FAILED"
	ErrCodeDocumentUploadFailed ErrorCode = "DOCUMENT_UPLOAD_FAILED"
	ErrCodePayloadInvalid       ErrorCode = "PAYLOAD_INVALID"

	ErrCodeSessionNotFound   ErrorCode = "SESSION_NOT_FOUND"
	ErrCodeDraftStoreFailed  ErrorCode = "DRAFT_STORE_FAILED"
	ErrCodeBackendRequest    ErrorCode = "BACKEND_REQUEST_FAILED"
	ErrCodeApplicationAbsent ErrorCode = "APPLICATION_NOT_FOUND"
	ErrCodeUnauthorized      ErrorCode = "UNAUTHORIZED"

	ErrCodeDatabaseInsertFailed   ErrorCode = "DATABASE_INSERT_FAILED"
	ErrCodeDuplicateSubmission    ErrorCode = "DUPLICATE_SUBMISSION"
	ErrCodeNotificationSendFailed ErrorCode = "NOTIFICATION_SEND_FAILED"
	ErrCodeIndexFailed            ErrorCode = "INDEX_FAILED"
	ErrCodeReviewStartFailed      ErrorCode = "REVIEW_START_FAILED"

	ErrCodeExternalService   ErrorCode = "EXTERNAL_SERVICE_ERROR"
	ErrCodeTimeout           ErrorCode = "TIMEOUT_ERROR"
	ErrCodeResourceNotFound  ErrorCode = "RESOURCE_NOT_FOUND"
	ErrCodeBusinessRule      ErrorCode = "BUSINESS_RULE_VIOLATION"
	ErrCodeInternal          ErrorCode = "INTERNAL_ERROR"
	ErrCodeInvalidRequest    ErrorCode = "INVALID_REQUEST"
	ErrCodeAuthentication    ErrorCode = "AUTHENTICATION_ERROR"
	ErrCodeUnsupportedUpload ErrorCode = "UNSUPPORTED_UPLOAD"
)

// StandardError represents a structured application error.
type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
}

func (e *StandardError) Error() string {
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

// WithMetadata attaches a key to the error and returns it for chaining.
func (e *StandardError) WithMetadata(key string, value interface{}) *StandardError {
	if e.Metadata == nil {
		e.Metadata = make(map[string]interface{})
	}
	e.Metadata[key] = value
	return e
}

// ==========================
// 2. BPMN Error Integration
// ==========================

// BPMNError represents an error that can be thrown to the Camunda workflow engine.
type BPMNError struct {
	Code           string                 `json:"code"`
	Message        string                 `json:"message"`
	Details        string                 `json:"details,omitempty"`
	Retryable      bool                   `json:"retryable"`
	Retries        int                    `json:"retries"`
	ErrorVariables map[string]interface{} `json:"errorVariables,omitempty"`
}

func (e *BPMNError) Error() string {
	return fmt.Sprintf("BPMNError[%s]: %s", e.Code, e.Message)
}

// ToErrorVariables returns a map suitable for setting Camunda job fail variables.
func (e *BPMNError) ToErrorVariables() map[string]interface{} {
	vars := map[string]interface{}{
		"errorCode":    e.Code,
		"errorMessage": e.Message,
		"errorDetails": e.Details,
		"retryable":    e.Retryable,
	}
	for k, v := range e.ErrorVariables {
		vars[k] = v
	}
	return vars
}

// ==========================
// 3. Error Constructors
// ==========================

func newError(code ErrorCode, message, details string, retryable bool) *StandardError {
	return &StandardError{
		Code:      code,
		Message:   message,
		Details:   details,
		Retryable: retryable,
		Timestamp: time.Now().UTC(),
	}
}

func errDetails(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}

// NewValidationFailedError reports a form that did not pass a step gate.
func NewValidationFailedError(step int, errorCount int) *StandardError {
	return newError(ErrCodeValidationFailed, "Application form has validation errors",
		fmt.Sprintf("step %d: %d errors", step, errorCount), false).
		WithMetadata("step", step).
		WithMetadata("errorCount", errorCount)
}

// NewFieldLockedError describes a rejected change to a field locked for
// resubmission.
func NewFieldLockedError(field, original string) *StandardError {
	return newError(ErrCodeFieldLocked, "Field is locked for resubmission",
		fmt.Sprintf("%s must stay %q", field, original), false)
}

// NewSubmissionFailedError wraps a failed create or resubmit call. The form
// is preserved so the caller may retry.
func NewSubmissionFailedError(mode string, err error) *StandardError {
	return newError(ErrCodeSubmissionFailed, "Submission failed", errDetails(err), true).
		WithMetadata("mode", mode)
}

func NewDocumentUploadFailedError(documentType string, err error) *StandardError {
	return newError(ErrCodeDocumentUploadFailed, "Document upload failed", errDetails(err), true).
		WithMetadata("documentType", documentType)
}

func NewPayloadInvalidError(details string) *StandardError {
	return newError(ErrCodePayloadInvalid, "Assembled payload does not match the loan application schema", details, false)
}

func NewSessionNotFoundError(sessionID string) *StandardError {
	return newError(ErrCodeSessionNotFound, "Wizard session not found", fmt.Sprintf("sessionId: %s", sessionID), false)
}

func NewDraftStoreFailedError(err error) *StandardError {
	return newError(ErrCodeDraftStoreFailed, "Draft store operation failed", errDetails(err), true)
}

func NewBackendRequestError(operation string, status int, message string) *StandardError {
	return newError(ErrCodeBackendRequest, fmt.Sprintf("Loan backend %s failed", operation), message, status == 0 || status >= 500).
		WithMetadata("status", status)
}

func NewApplicationNotFoundError(applicationID string) *StandardError {
	return newError(ErrCodeApplicationAbsent, "Application not found", fmt.Sprintf("applicationId: %s", applicationID), false)
}

func NewUnauthorizedError(details string) *StandardError {
	return newError(ErrCodeUnauthorized, "Unauthorized", details, false)
}

func NewDatabaseInsertFailedError(err error) *StandardError {
	return newError(ErrCodeDatabaseInsertFailed, "Failed to insert record", errDetails(err), true)
}

func NewDuplicateSubmissionError(applicationID string) *StandardError {
	return newError(ErrCodeDuplicateSubmission, "Application already recorded",
		fmt.Sprintf("applicationId: %s", applicationID), false)
}

func NewNotificationSendFailedError(channel string, err error) *StandardError {
	return newError(ErrCodeNotificationSendFailed, fmt.Sprintf("Failed to send %s notification", channel), errDetails(err), true)
}

func NewIndexFailedError(index string, err error) *StandardError {
	return newError(ErrCodeIndexFailed, fmt.Sprintf("Failed to index into %s", index), errDetails(err), true)
}

func NewReviewStartFailedError(processID string, err error) *StandardError {
	return newError(ErrCodeReviewStartFailed, "Failed to start review process", errDetails(err), true).
		WithMetadata("bpmnProcessId", processID)
}

func NewInvalidRequestError(details string) *StandardError {
	return newError(ErrCodeInvalidRequest, "Invalid request", details, false)
}

func NewUnsupportedUploadError(details string) *StandardError {
	return newError(ErrCodeUnsupportedUpload, "Uploaded file rejected", details, false)
}

// Generic constructors

func NewBusinessRuleError(message, details string) *StandardError {
	return newError(ErrCodeBusinessRule, message, details, false)
}

func NewExternalServiceError(service string, err error) *StandardError {
	return newError(ErrCodeExternalService, fmt.Sprintf("External service '%s' error", service), errDetails(err), true)
}

func NewTimeoutError(service string, err error) *StandardError {
	return newError(ErrCodeTimeout, fmt.Sprintf("Service '%s' timeout", service), errDetails(err), true)
}

func NewResourceNotFoundError(service, details string) *StandardError {
	return newError(ErrCodeResourceNotFound, fmt.Sprintf("Resource not found in %s", service), details, false)
}

func NewAuthenticationError(details string) *StandardError {
	return newError(ErrCodeAuthentication, "Authentication failed", details, false)
}

func NewInternalError(err error) *StandardError {
	return newError(ErrCodeInternal, "Unexpected error", errDetails(err), false)
}

// ==========================
// 4. Error Conversion to BPMN
// ==========================

// BPMNErrorMapping maps internal codes to the error codes caught by boundary
// events in the loan-application-review process.
var BPMNErrorMapping = map[ErrorCode]string{
	ErrCodeValidationFailed:       "LOAN_VALIDATION_FAILED",
	ErrCodeDatabaseInsertFailed:   "DATABASE_INSERT_FAILED",
	ErrCodeDuplicateSubmission:    "DUPLICATE_SUBMISSION",
	ErrCodeNotificationSendFailed: "NOTIFICATION_SEND_FAILED",
	ErrCodeIndexFailed:            "INDEX_FAILED",
	ErrCodePayloadInvalid:         "PAYLOAD_INVALID",
}

// GetRetryCount returns the recommended retry count for a code.
func GetRetryCount(code ErrorCode) int {
	switch code {
	case ErrCodeDatabaseInsertFailed,
		ErrCodeNotificationSendFailed,
		ErrCodeIndexFailed,
		ErrCodeExternalService,
		ErrCodeBackendRequest,
		ErrCodeReviewStartFailed,
		ErrCodeDraftStoreFailed:
		return 3

	case ErrCodeTimeout:
		return 2

	default:
		return 0
	}
}

// ConvertToBPMNError converts a StandardError to a BPMNError for Camunda.
func ConvertToBPMNError(stdErr *StandardError) *BPMNError {
	bpmnCode, exists := BPMNErrorMapping[stdErr.Code]
	if !exists {
		bpmnCode = string(stdErr.Code)
	}

	retries := GetRetryCount(stdErr.Code)
	if !stdErr.Retryable {
		retries = 0
	}

	vars := map[string]interface{}{
		"originalErrorCode": string(stdErr.Code),
		"timestamp":         stdErr.Timestamp.Format(time.RFC3339),
	}
	for k, v := range stdErr.Metadata {
		vars[k] = v
	}

	return &BPMNError{
		Code:           bpmnCode,
		Message:        stdErr.Message,
		Details:        stdErr.Details,
		Retryable:      stdErr.Retryable,
		Retries:        retries,
		ErrorVariables: vars,
	}
}

// ==========================
// 5. Utility Functions
// ==========================

// GetErrorCategory returns the category of the error code.
func GetErrorCategory(code ErrorCode) string {
	codeStr := string(code)
	switch {
	case strings.Contains(codeStr, "VALIDATION") || strings.Contains(codeStr, "INVALID") || codeStr == string(ErrCodeFieldLocked):
		return "VALIDATION"
	case strings.Contains(codeStr, "SUBMISSION") || strings.Contains(codeStr, "UPLOAD"):
		return "SUBMISSION"
	case strings.Contains(codeStr, "SESSION") || strings.Contains(codeStr, "DRAFT"):
		return "SESSION"
	case strings.Contains(codeStr, "DATABASE"):
		return "DATABASE"
	case strings.Contains(codeStr, "INDEX"):
		return "SEARCH"
	case strings.Contains(codeStr, "NOTIFICATION"):
		return "NOTIFICATION"
	case strings.Contains(codeStr, "BACKEND") || strings.Contains(codeStr, "EXTERNAL") || strings.Contains(codeStr, "TIMEOUT"):
		return "EXTERNAL"
	case strings.Contains(codeStr, "AUTH"):
		return "AUTH"
	default:
		return "OTHER"
	}
}
