package recordloansubmission

import "loan-wizard/internal/models"

type Input struct {
	ApplicationID     string                        `json:"applicationId"`
	SubmissionMode    string                        `json:"submissionMode"`
	LoanRequest       models.LoanApplicationRequest `json:"loanRequest"`
	UploadedDocuments []string                      `json:"uploadedDocuments"`
	FailedDocuments   []string                      `json:"failedDocuments"`
	SubmittedAt       string                        `json:"submittedAt"` // RFC 3339
}

type Output struct {
	SubmissionID string `json:"submissionId"`
	Attempt      int    `json:"attempt"`
	RecordedAt   string `json:"recordedAt"` // RFC 3339
}

const (
	ModeCreate   = "create"
	ModeResubmit = "resubmit"
)

// pgUniqueViolation is the SQLSTATE for a unique constraint violation.
const pgUniqueViolation = "23505"

var auditEvents = map[string]string{
	ModeCreate:   "loan_application_created",
	ModeResubmit: "loan_application_resubmitted",
}
