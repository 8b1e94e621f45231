package indexloanapplication

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"

	"loan-wizard/internal/common/database"
	apperrors "loan-wizard/internal/common/errors"
	"loan-wizard/internal/common/logger"
	"loan-wizard/internal/common/metrics"
)

const (
	TaskType = "index-loan-application"
)

type Indexer interface {
	IndexDocument(ctx context.Context, index, id string, doc interface{}) (*database.IndexResult, error)
}

type Handler struct {
	config  *Config
	indexer Indexer
	errors  *apperrors.ErrorHandler
	logger  logger.Logger
	now     func() time.Time
}

func NewHandler(config *Config, indexer Indexer, log logger.Logger) *Handler {
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:  config,
		indexer: indexer,
		errors:  apperrors.NewErrorHandler(log),
		logger:  log,
		now:     time.Now,
	}
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
		h.logger.Error("failed to complete job", map[string]interface{}{
			"error": err,
		})
		return
	}
	metrics.WorkerJobsCompleted.WithLabelValues(TaskType).Inc()
}

// execute upserts the summary under the application id, so a resubmission
// replaces the earlier document.
func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	if input.ApplicationID == "" {
		return nil, apperrors.NewInvalidRequestError("applicationId is required")
	}

	doc := buildDocument(input, h.now().UTC())
	res, err := h.indexer.IndexDocument(ctx, h.config.Index, input.ApplicationID, doc)
	if err != nil {
		return nil, apperrors.NewIndexFailedError(h.config.Index, err).
			WithMetadata("applicationId", input.ApplicationID)
	}

	h.logger.Info("application indexed", map[string]interface{}{
		"applicationId": input.ApplicationID,
		"index":         h.config.Index,
		"result":        res.Result,
		"version":       res.Version,
	})

	return &Output{
		Indexed: true,
		Index:   h.config.Index,
		Result:  res.Result,
	}, nil
}

func buildDocument(input *Input, now time.Time) Document {
	req := input.LoanRequest
	p := req.PersonalDetails
	name := strings.Join(strings.Fields(strings.Join([]string{p.FirstName, p.MiddleName, p.LastName}, " ")), " ")

	return Document{
		ApplicationID:      input.ApplicationID,
		SubmissionMode:     input.SubmissionMode,
		ApplicantName:      name,
		Email:              p.EmailAddress,
		Phone:              p.PhoneNumber,
		OccupationType:     req.EmploymentDetails.OccupationType,
		Employer:           req.EmploymentDetails.EmployerOrBusinessName,
		LoanType:           req.LoanDetails.LoanType,
		LoanAmount:         req.LoanDetails.LoanAmount,
		LoanDurationMonths: req.LoanDetails.LoanDurationMonths,
		Purpose:            req.LoanDetails.PurposeOfLoan,
		HasExistingLoans:   req.ExistingLoanDetails.HasExistingLoans,
		SubmittedAt:        input.SubmittedAt,
		IndexedAt:          now.Format(time.RFC3339),
	}
}

func (h *Handler) failJob(client worker.JobClient, job entities.Job, errorCode, errorMessage string) {
	metrics.WorkerJobsFailed.WithLabelValues(TaskType, errorCode).Inc()
	h.logger.Error("job failed", map[string]interface{}{
		"jobKey":       job.Key,
		"errorCode":    errorCode,
		"errorMessage": errorMessage,
	})

	_, _ = client.NewThrowErrorCommand().
		JobKey(job.Key).
		ErrorCode(errorCode).
		ErrorMessage(errorMessage).
		Send(context.Background())
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
