package wizard

import (
	"sort"
	"strings"
)

// Step identifies the current wizard step.
type Step int

const (
	StepPersonal Step = iota + 1
	StepEmployment
	StepLoan
	StepExistingLoan
	StepReferences
	StepReview
)

const (
	FirstStep = StepPersonal
	LastStep  = StepReview
)

var stepNames = map[Step]string{
	StepPersonal:     "Personal Details",
	StepEmployment:   "Employee Details",
	StepLoan:         "Loan Details",
	StepExistingLoan: "Existing Loan Details",
	StepReferences:   "References",
	StepReview:       "Review",
}

func (s Step) String() string {
	if name, ok := stepNames[s]; ok {
		return name
	}
	return "Unknown"
}

func (s Step) Valid() bool {
	return s >= FirstStep && s <= LastStep
}

// Field is a key of the flat application form.
type Field string

// Personal
const (
	FieldFirstName            Field = "firstName"
	FieldMiddleName           Field = "middleName"
	FieldLastName             Field = "lastName"
	FieldPhone                Field = "phone"
	FieldEmail                Field = "email"
	FieldCurrentAddress       Field = "currentAddress"
	FieldPermanentAddress     Field = "permanentAddress"
	FieldDOB                  Field = "dob"
	FieldAge                  Field = "age"
	FieldMaritalStatus        Field = "maritalStatus"
	FieldGender               Field = "gender"
	FieldAadharNumber         Field = "aadharNumber"
	FieldPanNumber            Field = "panNumber"
	FieldPassportNumber       Field = "passportNumber"
	FieldFatherName           Field = "fatherName"
	FieldHighestQualification Field = "highestQualification"
)

// Employment
const (
	FieldOccupationType  Field = "occupationType"
	FieldEmployer        Field = "employer"
	FieldDesignation     Field = "designation"
	FieldTotalExperience Field = "totalExperience"
	FieldOfficeAddress   Field = "officeAddress"
)

// Loan
const (
	FieldLoanType Field = "loanType"
	FieldAmount   Field = "amount"
	FieldDuration Field = "duration"
	FieldPurpose  Field = "purpose"
)

// Existing loan
const (
	FieldHasLoans          Field = "hasLoans"
	FieldExistingLoanType  Field = "existingLoanType"
	FieldExistingLender    Field = "existingLender"
	FieldOutstandingAmount Field = "outstandingAmount"
	FieldExistingEmi       Field = "existingEmi"
	FieldTenureRemaining   Field = "tenureRemaining"
)

// References
const (
	FieldRef1Name         Field = "ref1Name"
	FieldRef1Relationship Field = "ref1Relationship"
	FieldRef1Contact      Field = "ref1Contact"
	FieldRef1Address      Field = "ref1Address"
	FieldRef2Name         Field = "ref2Name"
	FieldRef2Relationship Field = "ref2Relationship"
	FieldRef2Contact      Field = "ref2Contact"
	FieldRef2Address      Field = "ref2Address"
)

// Enumerated values the rules branch on.
const (
	OccupationSalaried     = "Salaried"
	OccupationSelfEmployed = "Self-Employed"

	LoanTypePersonal = "Personal Loan"
	LoanTypeVehicle  = "Vehicle Loan"
	LoanTypeHome     = "Home Loan"

	AnswerYes = "Yes"
	AnswerNo  = "No"
)

// Section groups form fields for the review summary.
type Section struct {
	Name   string
	Fields []Field
}

// Sections lists every form field in display order.
var Sections = []Section{
	{Name: "Personal", Fields: []Field{
		FieldFirstName, FieldMiddleName, FieldLastName, FieldPhone, FieldEmail,
		FieldCurrentAddress, FieldPermanentAddress, FieldDOB, FieldAge,
		FieldMaritalStatus, FieldGender, FieldAadharNumber, FieldPanNumber,
		FieldPassportNumber, FieldFatherName, FieldHighestQualification,
	}},
	{Name: "Employment", Fields: []Field{
		FieldOccupationType, FieldEmployer, FieldDesignation, FieldTotalExperience, FieldOfficeAddress,
	}},
	{Name: "Loan", Fields: []Field{
		FieldLoanType, FieldAmount, FieldDuration, FieldPurpose,
	}},
	{Name: "Existing Loan", Fields: []Field{
		FieldHasLoans, FieldExistingLoanType, FieldExistingLender,
		FieldOutstandingAmount, FieldExistingEmi, FieldTenureRemaining,
	}},
	{Name: "References", Fields: []Field{
		FieldRef1Name, FieldRef1Relationship, FieldRef1Contact, FieldRef1Address,
		FieldRef2Name, FieldRef2Relationship, FieldRef2Contact, FieldRef2Address,
	}},
}

var knownFields = func() map[Field]bool {
	m := make(map[Field]bool)
	for _, s := range Sections {
		for _, f := range s.Fields {
			m[f] = true
		}
	}
	return m
}()

// KnownField reports whether f is part of the application form.
func KnownField(f Field) bool {
	return knownFields[f]
}

// Form is the flat application form. Every known field is always present.
type Form map[Field]string

// NewForm returns a form with every field set to the empty string.
func NewForm() Form {
	f := make(Form, len(knownFields))
	for k := range knownFields {
		f[k] = ""
	}
	return f
}

// FormFromMap builds a form from loosely keyed input, ignoring unknown keys.
func FormFromMap(values map[string]string) Form {
	f := NewForm()
	for k, v := range values {
		if KnownField(Field(k)) {
			f[Field(k)] = v
		}
	}
	return f
}

func (f Form) Get(field Field) string {
	return f[field]
}

// Filled reports whether the field is non-empty after trimming.
func (f Form) Filled(field Field) bool {
	return strings.TrimSpace(f[field]) != ""
}

func (f Form) Clone() Form {
	out := make(Form, len(f))
	for k, v := range f {
		out[k] = v
	}
	return out
}

// Map returns the form keyed by plain strings, for JSON and process variables.
func (f Form) Map() map[string]string {
	out := make(map[string]string, len(f))
	for k, v := range f {
		out[string(k)] = v
	}
	return out
}

// Errors maps field names and doc_<slot> keys to messages.
type Errors map[string]string

func (e Errors) Empty() bool {
	return len(e) == 0
}

// Keys returns the error keys in sorted order.
func (e Errors) Keys() []string {
	keys := make([]string, 0, len(e))
	for k := range e {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func (e Errors) clone() Errors {
	out := make(Errors, len(e))
	for k, v := range e {
		out[k] = v
	}
	return out
}
