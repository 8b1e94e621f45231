package indexloanapplication

import "loan-wizard/internal/models"

type Input struct {
	ApplicationID  string                        `json:"applicationId"`
	SubmissionMode string                        `json:"submissionMode"`
	LoanRequest    models.LoanApplicationRequest `json:"loanRequest"`
	SubmittedAt    string                        `json:"submittedAt"`
}

type Output struct {
	Indexed bool   `json:"indexed"`
	Index   string `json:"index"`
	Result  string `json:"result"`
}

// Document is the searchable summary of one application. Identity numbers
// are not indexed.
type Document struct {
	ApplicationID      string        `json:"applicationId"`
	SubmissionMode     string        `json:"submissionMode"`
	ApplicantName      string        `json:"applicantName"`
	Email              string        `json:"email,omitempty"`
	Phone              string        `json:"phone,omitempty"`
	OccupationType     string        `json:"occupationType,omitempty"`
	Employer           string        `json:"employer,omitempty"`
	LoanType           string        `json:"loanType,omitempty"`
	LoanAmount         models.Amount `json:"loanAmount"`
	LoanDurationMonths models.Amount `json:"loanDurationMonths"`
	Purpose            string        `json:"purpose,omitempty"`
	HasExistingLoans   bool          `json:"hasExistingLoans"`
	SubmittedAt        string        `json:"submittedAt"`
	IndexedAt          string        `json:"indexedAt"`
}
