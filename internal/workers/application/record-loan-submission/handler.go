package recordloansubmission

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/google/uuid"
	"github.com/lib/pq"

	apperrors "loan-wizard/internal/common/errors"
	"loan-wizard/internal/common/logger"
	"loan-wizard/internal/common/metrics"
)

const (
	TaskType = "record-loan-submission"
)

type Handler struct {
	config *Config
	db     *sql.DB
	errors *apperrors.ErrorHandler
	logger logger.Logger
	now    func() time.Time
}

type Option func(*Handler)

func WithClock(now func() time.Time) Option {
	return func(h *Handler) { h.now = now }
}

func NewHandler(config *Config, db *sql.DB, log logger.Logger, opts ...Option) *Handler {
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	h := &Handler{
		config: config,
		db:     db,
		errors: apperrors.NewErrorHandler(log),
		logger: log,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	h.logger.Info("processing job", map[string]interface{}{
		"jobKey":      job.Key,
		"workflowKey": job.ProcessInstanceKey,
	})

	var input Input
	if err := json.Unmarshal([]byte(job.Variables), &input); err != nil {
		h.failJob(client, job, "PARSE_ERROR", fmt.Sprintf("parse input: %v", err))
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	output, err := h.execute(ctx, &input)
	if err != nil {
		h.errors.HandleJobError(ctx, client, job, err)
		return
	}

	h.completeJob(client, job, output)
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	if input.ApplicationID == "" {
		return nil, apperrors.NewInvalidRequestError("applicationId is required")
	}
	mode := input.SubmissionMode
	if mode == "" {
		mode = ModeCreate
	}
	if mode != ModeCreate && mode != ModeResubmit {
		return nil, apperrors.NewInvalidRequestError(fmt.Sprintf("unknown submissionMode %q", input.SubmissionMode))
	}
	submittedAt, err := time.Parse(time.RFC3339, input.SubmittedAt)
	if err != nil {
		return nil, apperrors.NewInvalidRequestError(fmt.Sprintf("submittedAt: %v", err))
	}

	// A fresh application id may only be recorded once; resubmissions add
	// further attempts.
	if mode == ModeCreate {
		var exists bool
		err := h.db.QueryRowContext(ctx, `
			SELECT EXISTS(
				SELECT 1 FROM loan_submissions
				WHERE application_id = $1
			)`, input.ApplicationID).Scan(&exists)
		if err != nil {
			return nil, apperrors.NewDatabaseInsertFailedError(fmt.Errorf("duplicate check failed: %w", err))
		}
		if exists {
			return nil, apperrors.NewDuplicateSubmissionError(input.ApplicationID)
		}
	}

	var attempt int
	err = h.db.QueryRowContext(ctx, `
		SELECT COALESCE(MAX(attempt), 0) + 1 FROM loan_submissions
		WHERE application_id = $1`, input.ApplicationID).Scan(&attempt)
	if err != nil {
		return nil, apperrors.NewDatabaseInsertFailedError(fmt.Errorf("attempt lookup failed: %w", err))
	}

	payloadJSON, err := json.Marshal(input.LoanRequest)
	if err != nil {
		return nil, apperrors.NewDatabaseInsertFailedError(fmt.Errorf("marshal payload: %w", err))
	}
	uploadedJSON := docsJSON(input.UploadedDocuments)
	failedJSON := docsJSON(input.FailedDocuments)

	submissionID := uuid.New().String()
	recordedAt := h.now().UTC()

	_, err = h.db.ExecContext(ctx, `
		INSERT INTO loan_submissions (
			id, application_id, submission_mode, attempt, loan_type, occupation_type,
			loan_amount, payload, uploaded_docs, failed_docs, submitted_at, recorded_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		submissionID,
		input.ApplicationID,
		mode,
		attempt,
		input.LoanRequest.LoanDetails.LoanType,
		input.LoanRequest.EmploymentDetails.OccupationType,
		input.LoanRequest.LoanDetails.LoanAmount.String(),
		payloadJSON,
		uploadedJSON,
		failedJSON,
		submittedAt.UTC(),
		recordedAt,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == pgUniqueViolation {
			// A concurrent attempt took this number; a retry picks the next one.
			return nil, apperrors.NewDatabaseInsertFailedError(fmt.Errorf("attempt %d already recorded: %w", attempt, err)).
				WithMetadata("constraint", pqErr.Constraint)
		}
		return nil, apperrors.NewDatabaseInsertFailedError(fmt.Errorf("insert failed: %w", err))
	}

	auditDetailsJSON, err := json.Marshal(map[string]interface{}{
		"submissionId":    submissionID,
		"submissionMode":  mode,
		"attempt":         attempt,
		"failedDocuments": len(input.FailedDocuments),
	})
	if err != nil {
		auditDetailsJSON = []byte("{}")
	}

	_, err = h.db.ExecContext(ctx, `
		INSERT INTO audit_log (event_type, resource_type, resource_id, details, created_at)
		VALUES ($1, $2, $3, $4, $5)`,
		auditEvents[mode],
		"loan_application",
		input.ApplicationID,
		auditDetailsJSON,
		recordedAt,
	)
	if err != nil {
		h.logger.Warn("audit log insert failed", map[string]interface{}{
			"error":         err,
			"applicationId": input.ApplicationID,
		})
	}

	h.logger.Info("loan submission recorded", map[string]interface{}{
		"applicationId": input.ApplicationID,
		"submissionId":  submissionID,
		"mode":          mode,
		"attempt":       attempt,
	})

	return &Output{
		SubmissionID: submissionID,
		Attempt:      attempt,
		RecordedAt:   recordedAt.Format(time.RFC3339),
	}, nil
}

func docsJSON(names []string) []byte {
	if names == nil {
		names = []string{}
	}
	data, _ := json.Marshal(names)
	return data
}

func (h *Handler) completeJob(client worker.JobClient, job entities.Job, output *Output) {
	cmd, err := client.NewCompleteJobCommand().
		JobKey(job.Key).
		VariablesFromObject(output)
	if err != nil {
		h.logger.Error("failed to create complete job command", map[string]interface{}{
			"error": err,
		})
		return
	}
	if _, err = cmd.Send(context.Background()); err != nil {
		h.logger.Error("failed to send complete job command", map[string]interface{}{
			"error": err,
		})
		return
	}
	metrics.WorkerJobsCompleted.WithLabelValues(TaskType).Inc()
	h.logger.Info("job completed successfully", map[string]interface{}{
		"jobKey": job.Key,
	})
}

func (h *Handler) failJob(client worker.JobClient, job entities.Job, errorCode, errorMessage string) {
	metrics.WorkerJobsFailed.WithLabelValues(TaskType, errorCode).Inc()
	h.logger.Error("job failed", map[string]interface{}{
		"jobKey":       job.Key,
		"errorCode":    errorCode,
		"errorMessage": errorMessage,
	})

	_, err := client.NewThrowErrorCommand().
		JobKey(job.Key).
		ErrorCode(errorCode).
		ErrorMessage(errorMessage).
		Send(context.Background())
	if err != nil {
		h.logger.Error("failed to throw error", map[string]interface{}{
			"error": err,
		})
	}
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
