package notifyloanapplicant

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/google/uuid"

	"loan-wizard/internal/common/aws"
	apperrors "loan-wizard/internal/common/errors"
	"loan-wizard/internal/common/logger"
	"loan-wizard/internal/common/metrics"
	"loan-wizard/internal/wizard"
)

const (
	TaskType = "notify-loan-applicant"
)

type Mailer interface {
	SendEmail(ctx context.Context, to, subject, body string) (string, error)
}

type Texter interface {
	SendSMS(ctx context.Context, phone, message string) (string, error)
}

type Handler struct {
	config *Config
	mailer Mailer
	texter Texter
	errors *apperrors.ErrorHandler
	logger logger.Logger
	now    func() time.Time
}

// NewHandler builds the handler. mailer or texter may be nil when the
// channel is disabled.
func NewHandler(config *Config, mailer Mailer, texter Texter, log logger.Logger) *Handler {
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config: config,
		mailer: mailer,
		texter: texter,
		errors: apperrors.NewErrorHandler(log),
		logger: log,
		now:    time.Now,
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

	h.completeJob(client, job, output)
}

// execute sends on every enabled channel the applicant can be reached on.
// The job fails only when every attempted channel failed.
func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	tmpl, ok := templates[input.SubmissionMode]
	if !ok {
		tmpl = templates["create"]
	}
	data := map[string]interface{}{
		"applicationId": input.ApplicationID,
		"firstName":     input.FirstName,
		"failedNote":    failedNote(input.FailedDocuments),
	}
	if input.FirstName == "" {
		data["firstName"] = "Applicant"
	}

	out := &Output{
		NotificationID: uuid.New().String(),
		Channels:       []string{},
		SentAt:         h.now().UTC().Format(time.RFC3339),
	}

	var (
		attempted int
		lastErr   error
		lastChan  string
	)

	if h.config.EmailEnabled && h.mailer != nil && input.Email != "" {
		attempted++
		subject := renderTemplate(tmpl.subject, data)
		body := renderTemplate(tmpl.body, data)
		if _, err := h.mailer.SendEmail(ctx, input.Email, subject, body); err != nil {
			h.logger.Error("email send failed", map[string]interface{}{
				"error":         err,
				"applicationId": input.ApplicationID,
			})
			lastErr, lastChan = err, ChannelEmail
		} else {
			out.Channels = append(out.Channels, ChannelEmail)
		}
	}

	if h.config.SMSEnabled && h.texter != nil && input.Phone != "" {
		phone := aws.E164(input.Phone, h.config.CountryCode)
		if phone == "" {
			h.logger.Warn("phone number not usable for SMS", map[string]interface{}{
				"applicationId": input.ApplicationID,
			})
		} else {
			attempted++
			if _, err := h.texter.SendSMS(ctx, phone, renderTemplate(tmpl.sms, data)); err != nil {
				h.logger.Error("SMS send failed", map[string]interface{}{
					"error":         err,
					"applicationId": input.ApplicationID,
				})
				lastErr, lastChan = err, ChannelSMS
			} else {
				out.Channels = append(out.Channels, ChannelSMS)
			}
		}
	}

	switch {
	case attempted == 0:
		out.Status = StatusDisabled
	case len(out.Channels) == 0:
		return nil, apperrors.NewNotificationSendFailedError(lastChan, lastErr).
			WithMetadata("applicationId", input.ApplicationID)
	case len(out.Channels) < attempted:
		out.Status = StatusPartial
	default:
		out.Status = StatusSent
	}

	h.logger.Info("applicant notified", map[string]interface{}{
		"applicationId": input.ApplicationID,
		"status":        out.Status,
		"channels":      out.Channels,
	})
	return out, nil
}

// failedNote asks the applicant to upload again whatever did not make it.
func failedNote(slots []string) string {
	if len(slots) == 0 {
		return ""
	}
	labels := make([]string, 0, len(slots))
	for _, s := range slots {
		if spec, ok := wizard.LookupSlot(wizard.Slot(s)); ok {
			labels = append(labels, spec.Label)
		} else {
			labels = append(labels, s)
		}
	}
	return " Some documents could not be uploaded (" + strings.Join(labels, ", ") + "); please upload them again."
}

func renderTemplate(tmpl string, data map[string]interface{}) string {
	result := tmpl
	for k, v := range data {
		value := ""
		if v != nil {
			value = fmt.Sprintf("%v", v)
		}
		result = strings.ReplaceAll(result, "{{"+k+"}}", value)
	}

	// Drop placeholders nobody filled.
	for {
		start := strings.Index(result, "{{")
		if start == -1 {
			break
		}
		end := strings.Index(result[start:], "}}")
		if end == -1 {
			break
		}
		result = result[:start] + result[start+end+2:]
	}
	return result
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
