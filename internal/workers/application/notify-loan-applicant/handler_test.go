package notifyloanapplicant

import (
	"context"
	"errors"
	"testing"
	"time"

	awssdk "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"loan-wizard/internal/common/aws"
	apperrors "loan-wizard/internal/common/errors"
	"loan-wizard/internal/common/logger"
)

// ==========================
// Mock Services
// ==========================

type MockSESService struct {
	SendEmailFunc func(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error)
	calls         []*ses.SendEmailInput
}

func (m *MockSESService) SendEmail(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error) {
	m.calls = append(m.calls, params)
	if m.SendEmailFunc != nil {
		return m.SendEmailFunc(ctx, params, optFns...)
	}
	return &ses.SendEmailOutput{MessageId: awssdk.String("ses-1")}, nil
}

type MockSNSService struct {
	PublishFunc func(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
	calls       []*sns.PublishInput
}

func (m *MockSNSService) Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error) {
	m.calls = append(m.calls, params)
	if m.PublishFunc != nil {
		return m.PublishFunc(ctx, params, optFns...)
	}
	return &sns.PublishOutput{MessageId: awssdk.String("sns-1")}, nil
}

// ==========================
// Test Helper Functions
// ==========================

func createTestConfig() *Config {
	return &Config{
		EmailEnabled: true,
		SMSEnabled:   true,
		CountryCode:  "+91",
		Timeout:      5 * time.Second,
	}
}

func createTestInput(mode string) *Input {
	return &Input{
		ApplicationID:  "LA-2001",
		SubmissionMode: mode,
		Email:          "asha@example.com",
		Phone:          "9876543210",
		FirstName:      "Asha",
	}
}

func createTestHandler(t *testing.T, cfg *Config, sesAPI *MockSESService, snsAPI *MockSNSService) *Handler {
	t.Helper()
	h := NewHandler(cfg,
		aws.NewSESClientWithAPI(sesAPI, "loans@example.com"),
		aws.NewSNSClientWithAPI(snsAPI, "LOANS"),
		logger.NewTestLogger(t),
	)
	h.now = func() time.Time { return time.Date(2026, 10, 17, 12, 32, 0, 0, time.UTC) }
	return h
}

// ==========================
// Execute Tests
// ==========================

func TestHandler_Execute_Channels(t *testing.T) {
	tests := []struct {
		name         string
		emailEnabled bool
		smsEnabled   bool
		mutate       func(in *Input)
		wantStatus   string
		wantChannels []string
		wantEmails   int
		wantSMS      int
	}{
		{
			name: "email and SMS", emailEnabled: true, smsEnabled: true,
			wantStatus: StatusSent, wantChannels: []string{ChannelEmail, ChannelSMS}, wantEmails: 1, wantSMS: 1,
		},
		{
			name: "email only", emailEnabled: true, smsEnabled: false,
			wantStatus: StatusSent, wantChannels: []string{ChannelEmail}, wantEmails: 1,
		},
		{
			name: "no email address", emailEnabled: true, smsEnabled: true,
			mutate:     func(in *Input) { in.Email = "" },
			wantStatus: StatusSent, wantChannels: []string{ChannelSMS}, wantSMS: 1,
		},
		{
			name: "unusable phone", emailEnabled: false, smsEnabled: true,
			mutate:     func(in *Input) { in.Phone = "12345" },
			wantStatus: StatusDisabled, wantChannels: []string{},
		},
		{
			name: "everything disabled", emailEnabled: false, smsEnabled: false,
			wantStatus: StatusDisabled, wantChannels: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := createTestConfig()
			cfg.EmailEnabled = tt.emailEnabled
			cfg.SMSEnabled = tt.smsEnabled
			sesAPI, snsAPI := &MockSESService{}, &MockSNSService{}
			h := createTestHandler(t, cfg, sesAPI, snsAPI)
			input := createTestInput("create")
			if tt.mutate != nil {
				tt.mutate(input)
			}

			output, err := h.Execute(context.Background(), input)

			require.NoError(t, err)
			assert.Equal(t, tt.wantStatus, output.Status)
			assert.Equal(t, tt.wantChannels, output.Channels)
			assert.NotEmpty(t, output.NotificationID)
			assert.Equal(t, "2026-10-17T12:32:00Z", output.SentAt)
			assert.Len(t, sesAPI.calls, tt.wantEmails)
			assert.Len(t, snsAPI.calls, tt.wantSMS)
		})
	}
}

func TestHandler_Execute_MessageContent(t *testing.T) {
	sesAPI, snsAPI := &MockSESService{}, &MockSNSService{}
	h := createTestHandler(t, createTestConfig(), sesAPI, snsAPI)
	input := createTestInput("resubmit")
	input.FailedDocuments = []string{"cibilReport", "photograph"}

	_, err := h.Execute(context.Background(), input)
	require.NoError(t, err)

	require.Len(t, sesAPI.calls, 1)
	assert.Equal(t, "Loan application LA-2001 resubmitted", awssdk.ToString(sesAPI.calls[0].Message.Subject.Data))
	body := awssdk.ToString(sesAPI.calls[0].Message.Body.Text.Data)
	assert.Contains(t, body, "Dear Asha,")
	assert.Contains(t, body, "(CIBIL Report, Photograph)")
	assert.NotContains(t, body, "{{")

	require.Len(t, snsAPI.calls, 1)
	assert.Equal(t, "+919876543210", awssdk.ToString(snsAPI.calls[0].PhoneNumber))
	assert.Contains(t, awssdk.ToString(snsAPI.calls[0].Message), "resubmitted")
}

func TestHandler_Execute_Failures(t *testing.T) {
	sendErr := errors.New("throttled")

	t.Run("one channel fails", func(t *testing.T) {
		sesAPI := &MockSESService{SendEmailFunc: func(context.Context, *ses.SendEmailInput, ...func(*ses.Options)) (*ses.SendEmailOutput, error) {
			return nil, sendErr
		}}
		h := createTestHandler(t, createTestConfig(), sesAPI, &MockSNSService{})

		output, err := h.Execute(context.Background(), createTestInput("create"))

		require.NoError(t, err)
		assert.Equal(t, StatusPartial, output.Status)
		assert.Equal(t, []string{ChannelSMS}, output.Channels)
	})

	t.Run("every channel fails", func(t *testing.T) {
		snsAPI := &MockSNSService{PublishFunc: func(context.Context, *sns.PublishInput, ...func(*sns.Options)) (*sns.PublishOutput, error) {
			return nil, sendErr
		}}
		cfg := createTestConfig()
		cfg.EmailEnabled = false
		h := createTestHandler(t, cfg, &MockSESService{}, snsAPI)

		output, err := h.Execute(context.Background(), createTestInput("create"))

		assert.Nil(t, output)
		var se *apperrors.StandardError
		require.True(t, errors.As(err, &se))
		assert.Equal(t, apperrors.ErrCodeNotificationSendFailed, se.Code)
		assert.True(t, se.Retryable)
		assert.Equal(t, "LA-2001", se.Metadata["applicationId"])
	})
}

func TestRenderTemplate(t *testing.T) {
	got := renderTemplate("Hi {{firstName}}, ref {{applicationId}}{{unknown}}.", map[string]interface{}{
		"firstName":     "Asha",
		"applicationId": "LA-1",
	})
	assert.Equal(t, "Hi Asha, ref LA-1.", got)
}
