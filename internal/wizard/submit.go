package wizard

import (
	"context"
	"errors"
	"io"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	apperrors "loan-wizard/internal/common/errors"
	"loan-wizard/internal/common/logger"
	"loan-wizard/internal/common/observability"
	"loan-wizard/internal/common/validation"
	"loan-wizard/internal/models"
)

var (
	ErrNotOnReviewStep      = errors.New("NOT_ON_REVIEW_STEP")
	ErrConfirmationRequired = errors.New("CONFIRMATION_REQUIRED")
)

// ApplicationService is the backend the submitter talks to.
type ApplicationService interface {
	CreateApplication(ctx context.Context, req models.LoanApplicationRequest) (*models.ApplicationResponse, error)
	ResubmitApplication(ctx context.Context, applicationID string, req models.LoanApplicationRequest) (*models.ApplicationResponse, error)
	UploadDocument(ctx context.Context, applicationID string, documentType models.DocumentType, filename string, content io.Reader) error
}

// UploadResult is the outcome of one document upload. A failed upload does
// not fail the submission.
type UploadResult struct {
	Slot         Slot                `json:"slot"`
	DocumentType models.DocumentType `json:"documentType"`
	FileName     string              `json:"fileName"`
	Err          error               `json:"-"`
	Error        string              `json:"error,omitempty"`
}

// SubmitResult describes a submission that reached the backend.
type SubmitResult struct {
	ApplicationID string                        `json:"applicationId"`
	Mode          Mode                          `json:"mode"`
	Form          Form                          `json:"-"`
	Request       models.LoanApplicationRequest `json:"-"`
	Uploads       []UploadResult                `json:"uploads"`
	Existing      ExistingDocuments             `json:"-"`
	SubmittedAt   time.Time                     `json:"submittedAt"`
}

func (r *SubmitResult) Uploaded() []UploadResult {
	var out []UploadResult
	for _, u := range r.Uploads {
		if u.Err == nil {
			out = append(out, u)
		}
	}
	return out
}

func (r *SubmitResult) Failed() []UploadResult {
	var out []UploadResult
	for _, u := range r.Uploads {
		if u.Err != nil {
			out = append(out, u)
		}
	}
	return out
}

// SubmissionListener is told about every successful submission, after the
// wizard has been reset. Listener errors are logged only.
type SubmissionListener interface {
	OnSubmitted(ctx context.Context, result *SubmitResult) error
}

type Submitter struct {
	service   ApplicationService
	log       logger.Logger
	obs       *observability.Observability
	listeners []SubmissionListener
	now       func() time.Time
}

type SubmitterOption func(*Submitter)

func WithObservability(o *observability.Observability) SubmitterOption {
	return func(s *Submitter) { s.obs = o }
}

func WithListener(l SubmissionListener) SubmitterOption {
	return func(s *Submitter) { s.listeners = append(s.listeners, l) }
}

func WithSubmitClock(now func() time.Time) SubmitterOption {
	return func(s *Submitter) { s.now = now }
}

func NewSubmitter(service ApplicationService, log logger.Logger, opts ...SubmitterOption) *Submitter {
	s := &Submitter{
		service: service,
		log:     log.WithFields(map[string]interface{}{"component": "submitter"}),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Submit sends the application and then its newly attached documents. It
// requires the review step and an explicit confirmation. If the create or
// resubmit call fails the wizard is left untouched so the user can retry;
// otherwise the wizard is reset, even when some uploads failed.
func (s *Submitter) Submit(ctx context.Context, w *Wizard, confirmed bool) (*SubmitResult, error) {
	if w.Step() != StepReview {
		return nil, ErrNotOnReviewStep
	}
	if !confirmed {
		return nil, ErrConfirmationRequired
	}

	mode := w.Mode()
	start := s.now()
	ctx, span := s.obs.StartSpan(ctx, "wizard.submit", attribute.String("mode", string(mode)))
	defer span.End()

	if errs := Validate(StepReview, w.form, w.attached, w.existing); !errs.Empty() {
		w.errors = errs
		span.SetStatus(codes.Error, "validation failed")
		s.obs.RecordSubmission(ctx, string(mode), "invalid", s.now().Sub(start))
		return nil, apperrors.NewValidationFailedError(int(StepReview), len(errs))
	}

	req := BuildRequest(w.form)
	res, err := validation.ValidateLoanRequest(req)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	if !res.Valid {
		span.SetStatus(codes.Error, "payload invalid")
		s.obs.RecordSubmission(ctx, string(mode), "invalid", s.now().Sub(start))
		return nil, apperrors.NewPayloadInvalidError(strings.Join(res.GetErrorMessages(), "; "))
	}

	log := s.log.WithFields(map[string]interface{}{"mode": string(mode), "applicationId": w.applicationID})

	var resp *models.ApplicationResponse
	if mode == ModeResubmit {
		resp, err = s.service.ResubmitApplication(ctx, w.applicationID, req)
	} else {
		resp, err = s.service.CreateApplication(ctx, req)
	}
	if err != nil {
		log.Error("Application submission failed", map[string]interface{}{"error": err.Error()})
		span.RecordError(err)
		span.SetStatus(codes.Error, "submission failed")
		s.obs.RecordSubmission(ctx, string(mode), "failed", s.now().Sub(start))
		return nil, apperrors.NewSubmissionFailedError(string(mode), err)
	}

	appID := ""
	if resp != nil {
		appID = resp.ApplicationID
	}
	if appID == "" && w.applicationID != "" && w.existing != nil {
		appID = w.applicationID
	}
	span.SetAttributes(attribute.String("application.id", appID))

	result := &SubmitResult{
		ApplicationID: appID,
		Mode:          mode,
		Form:          w.form.Clone(),
		Request:       req,
		Existing:      w.existing.clone(),
		SubmittedAt:   s.now().UTC(),
	}

	if appID == "" {
		log.Warn("No application id returned, skipping document uploads", map[string]interface{}{
			"attached": len(w.attached),
		})
	} else {
		result.Uploads = s.uploadAll(ctx, log.WithFields(map[string]interface{}{"applicationId": appID}), appID, w.attached)
	}

	outcome := "submitted"
	if len(result.Failed()) > 0 {
		outcome = "partial"
	}
	s.obs.RecordSubmission(ctx, string(mode), outcome, s.now().Sub(start))
	log.Info("Application submitted", map[string]interface{}{
		"applicationId": appID,
		"uploaded":      len(result.Uploaded()),
		"failed":        len(result.Failed()),
	})

	w.Reset()

	for _, l := range s.listeners {
		if err := l.OnSubmitted(ctx, result); err != nil {
			log.Warn("Submission listener failed", map[string]interface{}{"error": err.Error()})
		}
	}
	return result, nil
}

// uploadAll uploads one slot at a time in table order. Failures are logged
// and recorded, and never stop the remaining uploads.
func (s *Submitter) uploadAll(ctx context.Context, log logger.Logger, appID string, attached Attachments) []UploadResult {
	var results []UploadResult
	for _, slot := range attached.Slots() {
		spec, _ := LookupSlot(slot)
		file := attached[slot]
		r := UploadResult{Slot: slot, DocumentType: spec.DocumentType, FileName: file.Name}

		outcome := "uploaded"
		if err := s.upload(ctx, appID, spec.DocumentType, file); err != nil {
			r.Err = apperrors.NewDocumentUploadFailedError(string(spec.DocumentType), err)
			r.Error = err.Error()
			outcome = "failed"
			log.Warn("Document upload failed", map[string]interface{}{
				"slot":          string(slot),
				"documentType":  string(spec.DocumentType),
				"applicationId": appID,
				"error":         err.Error(),
			})
		}
		s.obs.RecordUpload(ctx, string(spec.DocumentType), outcome)
		results = append(results, r)
	}
	return results
}

func (s *Submitter) upload(ctx context.Context, appID string, docType models.DocumentType, file *AttachedFile) error {
	ctx, span := s.obs.StartSpan(ctx, "wizard.upload", attribute.String("document.type", string(docType)))
	defer span.End()

	rc, err := file.Open()
	if err != nil {
		span.RecordError(err)
		return err
	}
	defer rc.Close()

	if err := s.service.UploadDocument(ctx, appID, docType, file.Name, rc); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "upload failed")
		return err
	}
	return nil
}
