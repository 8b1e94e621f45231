package notifyloanapplicant

type Input struct {
	ApplicationID   string   `json:"applicationId"`
	SubmissionMode  string   `json:"submissionMode"`
	Email           string   `json:"email"`
	Phone           string   `json:"phone"`
	FirstName       string   `json:"firstName"`
	FailedDocuments []string `json:"failedDocuments"`
}

type Output struct {
	NotificationID string   `json:"notificationId"`
	Status         string   `json:"status"`
	Channels       []string `json:"channels"`
	SentAt         string   `json:"sentAt"` // RFC 3339
}

const (
	StatusSent     = "sent"
	StatusPartial  = "partial"
	StatusDisabled = "disabled"
)

const (
	ChannelEmail = "email"
	ChannelSMS   = "sms"
)

type template struct {
	subject string
	body    string
	sms     string
}

var templates = map[string]template{
	"create": {
		subject: "Loan application {{applicationId}} received",
		body: "Dear {{firstName}},\n\nWe have received your loan application {{applicationId}}. " +
			"Our team will review it and get back to you.{{failedNote}}\n\nRegards,\nLoan Desk",
		sms: "Your loan application {{applicationId}} has been received.{{failedNote}}",
	},
	"resubmit": {
		subject: "Loan application {{applicationId}} resubmitted",
		body: "Dear {{firstName}},\n\nYour loan application {{applicationId}} has been resubmitted " +
			"and is back in review.{{failedNote}}\n\nRegards,\nLoan Desk",
		sms: "Your loan application {{applicationId}} has been resubmitted.{{failedNote}}",
	},
}
