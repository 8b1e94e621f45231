// Package review hands successful submissions to the maker/checker review
// process.
package review

import (
	"context"
	"time"

	apperrors "loan-wizard/internal/common/errors"
	"loan-wizard/internal/common/logger"
	"loan-wizard/internal/models"
	"loan-wizard/internal/wizard"
)

const DefaultProcessID = "loan-application-review"

// ProcessStarter creates process instances. camunda.Client implements it.
type ProcessStarter interface {
	StartProcess(ctx context.Context, processID string, variables interface{}) (int64, error)
}

// Variables is the process payload. The review workers read these names.
type Variables struct {
	ApplicationID     string                        `json:"applicationId"`
	SubmissionMode    string                        `json:"submissionMode"`
	Application       map[string]string             `json:"application"`
	LoanRequest       models.LoanApplicationRequest `json:"loanRequest"`
	UploadedDocuments []string                      `json:"uploadedDocuments"`
	FailedDocuments   []string                      `json:"failedDocuments"`
	ExistingDocuments []string                      `json:"existingDocuments"`
	Email             string                        `json:"email"`
	Phone             string                        `json:"phone"`
	FirstName         string                        `json:"firstName"`
	SubmittedAt       string                        `json:"submittedAt"`
}

// Starter is a wizard.SubmissionListener.
type Starter struct {
	starter   ProcessStarter
	processID string
	log       logger.Logger
}

func NewStarter(starter ProcessStarter, processID string, log logger.Logger) *Starter {
	if processID == "" {
		processID = DefaultProcessID
	}
	return &Starter{
		starter:   starter,
		processID: processID,
		log:       log.WithFields(map[string]interface{}{"component": "review-starter", "processId": processID}),
	}
}

// BuildVariables flattens a submit result into process variables. Slot
// names identify documents, so the validator worker can rebuild the
// attached and existing sets.
func BuildVariables(r *wizard.SubmitResult) Variables {
	v := Variables{
		ApplicationID:     r.ApplicationID,
		SubmissionMode:    string(r.Mode),
		Application:       r.Form.Map(),
		LoanRequest:       r.Request,
		UploadedDocuments: []string{},
		FailedDocuments:   []string{},
		ExistingDocuments: []string{},
		Email:             r.Form[wizard.FieldEmail],
		Phone:             r.Form[wizard.FieldPhone],
		FirstName:         r.Form[wizard.FieldFirstName],
		SubmittedAt:       r.SubmittedAt.UTC().Format(time.RFC3339),
	}
	for _, slot := range r.Existing.Slots() {
		v.ExistingDocuments = append(v.ExistingDocuments, string(slot))
	}
	for _, u := range r.Uploaded() {
		v.UploadedDocuments = append(v.UploadedDocuments, string(u.Slot))
	}
	for _, u := range r.Failed() {
		v.FailedDocuments = append(v.FailedDocuments, string(u.Slot))
	}
	return v
}

// OnSubmitted starts one review instance per submission. Submissions
// without an application id cannot be reviewed and are skipped.
func (s *Starter) OnSubmitted(ctx context.Context, r *wizard.SubmitResult) error {
	if r.ApplicationID == "" {
		s.log.Warn("Submission has no application id, review not started", nil)
		return nil
	}

	key, err := s.starter.StartProcess(ctx, s.processID, BuildVariables(r))
	if err != nil {
		return apperrors.NewReviewStartFailedError(s.processID, err).
			WithMetadata("applicationId", r.ApplicationID)
	}

	s.log.Info("Review process started", map[string]interface{}{
		"applicationId":      r.ApplicationID,
		"processInstanceKey": key,
		"mode":               string(r.Mode),
	})
	return nil
}
