// internal/models/application.go
package models

import (
	"strings"

	"github.com/shopspring/decimal"
)

// ApplicationStatus is the lifecycle state the loan backend reports.
type ApplicationStatus string

const (
	StatusPending     ApplicationStatus = "PENDING"
	StatusWithMaker   ApplicationStatus = "WITH_MAKER"
	StatusWithChecker ApplicationStatus = "WITH_CHECKER"
	StatusApproved    ApplicationStatus = "APPROVED"
	StatusRejected    ApplicationStatus = "REJECTED"
)

// IsRejected compares case-insensitively; the backend is not consistent.
func (s ApplicationStatus) IsRejected() bool {
	return strings.EqualFold(strings.TrimSpace(string(s)), string(StatusRejected))
}

// Amount is a money or count value sent to the backend as a bare JSON number.
type Amount struct {
	decimal.Decimal
}

func NewAmount(d decimal.Decimal) Amount {
	return Amount{Decimal: d}
}

func AmountFromInt(n int64) Amount {
	return Amount{Decimal: decimal.NewFromInt(n)}
}

func (a Amount) MarshalJSON() ([]byte, error) {
	return []byte(a.Decimal.String()), nil
}

func (a *Amount) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	if s == "" || s == "null" {
		a.Decimal = decimal.Zero
		return nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return err
	}
	a.Decimal = d
	return nil
}

// LoanApplicationRequest is the nested payload accepted by the create and
// resubmit endpoints.
type LoanApplicationRequest struct {
	PersonalDetails     PersonalDetails     `json:"personalDetails"`
	EmploymentDetails   EmploymentDetails   `json:"employmentDetails"`
	LoanDetails         LoanDetails         `json:"loanDetails"`
	ExistingLoanDetails ExistingLoanDetails `json:"existingLoanDetails"`
	References          []Reference         `json:"references"`
}

type PersonalDetails struct {
	FirstName        string `json:"firstName"`
	MiddleName       string `json:"middleName"`
	LastName         string `json:"lastName"`
	PhoneNumber      string `json:"phoneNumber"`
	EmailAddress     string `json:"emailAddress"`
	CurrentAddress   string `json:"currentAddress"`
	PermanentAddress string `json:"permanentAddress"`
	MaritalStatus    string `json:"maritalStatus"`
	Gender           string `json:"gender"`
	DateOfBirth      string `json:"dateOfBirth"`
	AadhaarNumber    string `json:"aadhaarNumber"`
	PanNumber        string `json:"panNumber"`
	PassportNumber   string `json:"passportNumber"`
	FatherName       string `json:"fatherName"`
	EducationDetails string `json:"educationDetails"`
}

type EmploymentDetails struct {
	OccupationType           string `json:"occupationType"`
	EmployerOrBusinessName   string `json:"employerOrBusinessName"`
	Designation              string `json:"designation"`
	TotalWorkExperienceYears Amount `json:"totalWorkExperienceYears"`
	OfficeAddress            string `json:"officeAddress"`
}

type LoanDetails struct {
	LoanType           string `json:"loanType"`
	LoanAmount         Amount `json:"loanAmount"`
	LoanDurationMonths Amount `json:"loanDurationMonths"`
	PurposeOfLoan      string `json:"purposeOfLoan"`
}

type ExistingLoanDetails struct {
	HasExistingLoans      bool   `json:"hasExistingLoans"`
	ExistingLoanType      string `json:"existingLoanType"`
	LenderName            string `json:"lenderName"`
	OutstandingAmount     Amount `json:"outstandingAmount"`
	MonthlyEmi            Amount `json:"monthlyEmi"`
	TenureRemainingMonths Amount `json:"tenureRemainingMonths"`
}

type Reference struct {
	ReferenceNumber int    `json:"referenceNumber"`
	Name            string `json:"name"`
	Relationship    string `json:"relationship"`
	ContactNumber   string `json:"contactNumber"`
	Address         string `json:"address"`
}

// ApplicationResponse is what the backend returns for create, resubmit and
// fetch calls. Nested sections are pointers because partially filled
// applications omit them.
type ApplicationResponse struct {
	ID                  int                          `json:"id"`
	ApplicationID       string                       `json:"applicationId"`
	Status              ApplicationStatus            `json:"status"`
	SubmittedDate       string                       `json:"submittedDate,omitempty"`
	PersonalDetails     *PersonalDetailsResponse     `json:"personalDetails,omitempty"`
	EmploymentDetails   *EmploymentDetailsResponse   `json:"employmentDetails,omitempty"`
	LoanDetails         *LoanDetailsResponse         `json:"loanDetails,omitempty"`
	ExistingLoanDetails *ExistingLoanDetailsResponse `json:"existingLoanDetails,omitempty"`
	References          []Reference                  `json:"references,omitempty"`
	Comments            []Comment                    `json:"comments,omitempty"`
}

type PersonalDetailsResponse struct {
	PersonalDetails
	Age *int `json:"age,omitempty"`
}

type EmploymentDetailsResponse struct {
	OccupationType           string  `json:"occupationType"`
	EmployerOrBusinessName   string  `json:"employerOrBusinessName"`
	Designation              string  `json:"designation"`
	TotalWorkExperienceYears *Amount `json:"totalWorkExperienceYears,omitempty"`
	OfficeAddress            string  `json:"officeAddress"`
}

type LoanDetailsResponse struct {
	LoanType           string  `json:"loanType"`
	LoanAmount         *Amount `json:"loanAmount,omitempty"`
	LoanDurationMonths *Amount `json:"loanDurationMonths,omitempty"`
	PurposeOfLoan      string  `json:"purposeOfLoan"`
}

type ExistingLoanDetailsResponse struct {
	HasExistingLoans      *bool   `json:"hasExistingLoans,omitempty"`
	ExistingLoanType      string  `json:"existingLoanType"`
	LenderName            string  `json:"lenderName"`
	OutstandingAmount     *Amount `json:"outstandingAmount,omitempty"`
	MonthlyEmi            *Amount `json:"monthlyEmi,omitempty"`
	TenureRemainingMonths *Amount `json:"tenureRemainingMonths,omitempty"`
}

type Comment struct {
	CommentText string `json:"commentText"`
	CommentType string `json:"commentType"`
	UserName    string `json:"userName"`
	CreatedAt   string `json:"createdAt"`
}
