package wizard

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"loan-wizard/internal/models"
)

// ==========================
// Step Field Rules
// ==========================

func TestValidate_PassesCompleteSteps(t *testing.T) {
	form := createTestForm()
	attached := createTestAttachments(salariedPersonalSlots...)

	for step := FirstStep; step <= LastStep; step++ {
		t.Run(step.String(), func(t *testing.T) {
			errs := Validate(step, form, attached, nil)
			assert.True(t, errs.Empty(), "unexpected errors: %v", errs)
		})
	}
}

func TestValidate_PersonalStep(t *testing.T) {
	tests := []struct {
		name    string
		field   Field
		value   string
		wantKey string
		wantMsg string
	}{
		{"missing first name", FieldFirstName, "", "firstName", "Required"},
		{"whitespace last name", FieldLastName, "   ", "lastName", "Required"},
		{"digits in first name", FieldFirstName, "Asha1", "firstName", "First name must contain only letters"},
		{"bad middle name", FieldMiddleName, "K.", "middleName", "Middle name must contain only letters"},
		{"bad father name", FieldFatherName, "V-Rao", "fatherName", "Father name must contain only letters"},
		{"phone bad leading digit", FieldPhone, "6123456789", "phone", "Mobile must be 10 digits starting with 7, 8, or 9"},
		{"phone too short", FieldPhone, "98765", "phone", "Mobile must be 10 digits starting with 7, 8, or 9"},
		{"missing email", FieldEmail, "", "email", "Required"},
		{"missing permanent address", FieldPermanentAddress, "", "permanentAddress", "Required"},
		{"missing gender", FieldGender, "", "gender", "Required"},
		{"missing dob", FieldDOB, "", "dob", "Required"},
		{"under age", FieldAge, "20", "age", "Age must be 21 or above"},
		{"aadhaar short", FieldAadharNumber, "1234 5678", "aadharNumber", "Aadhaar must be exactly 12 digits"},
		{"missing pan", FieldPanNumber, "", "panNumber", "Required"},
		{"bad passport", FieldPassportNumber, "A1", "passportNumber", "Invalid passport number format"},
		{"missing qualification", FieldHighestQualification, "", "highestQualification", "Required"},
	}

	attached := createTestAttachments(SlotPhotograph, SlotIDProof, SlotAddressProof)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			form := createTestForm()
			form[tt.field] = tt.value

			errs := Validate(StepPersonal, form, attached, nil)

			assert.Equal(t, tt.wantMsg, errs[tt.wantKey])
			assert.Len(t, errs, 1, "errors: %v", errs)
		})
	}
}

func TestValidate_PersonalStep_OptionalFields(t *testing.T) {
	form := createTestForm()
	form[FieldMiddleName] = ""
	form[FieldPassportNumber] = "k1234567"
	attached := createTestAttachments(SlotPhotograph, SlotIDProof, SlotAddressProof)

	errs := Validate(StepPersonal, form, attached, nil)

	assert.True(t, errs.Empty(), "errors: %v", errs)
}

func TestValidate_PhoneScenario(t *testing.T) {
	form := createTestForm()
	form[FieldPhone] = "6123456789"
	attached := createTestAttachments(SlotPhotograph, SlotIDProof, SlotAddressProof)

	errs := Validate(StepPersonal, form, attached, nil)

	assert.Equal(t, Errors{"phone": "Mobile must be 10 digits starting with 7, 8, or 9"}, errs)
}

func TestValidate_PhoneAcceptsSeparators(t *testing.T) {
	form := createTestForm()
	form[FieldPhone] = "98765-432 10"
	attached := createTestAttachments(SlotPhotograph, SlotIDProof, SlotAddressProof)

	assert.True(t, Validate(StepPersonal, form, attached, nil).Empty())
}

func TestValidate_EmploymentStep(t *testing.T) {
	salaried := createTestAttachments(SlotSalariedPayslip, SlotSalariedEmploymentProof, SlotSalariedITR, SlotSalariedBankStatements)
	selfEmployed := createTestAttachments(SlotSelfITR, SlotSelfGST, SlotSelfBankStatements)

	t.Run("employer required for salaried", func(t *testing.T) {
		form := createTestForm()
		form[FieldEmployer] = ""
		errs := Validate(StepEmployment, form, salaried, nil)
		assert.Equal(t, Errors{"employer": "Required"}, errs)
	})

	t.Run("employer optional for self-employed", func(t *testing.T) {
		form := createTestForm()
		form[FieldOccupationType] = OccupationSelfEmployed
		form[FieldEmployer] = ""
		errs := Validate(StepEmployment, form, selfEmployed, nil)
		assert.True(t, errs.Empty(), "errors: %v", errs)
	})

	t.Run("zero experience allowed", func(t *testing.T) {
		form := createTestForm()
		form[FieldTotalExperience] = "0"
		assert.True(t, Validate(StepEmployment, form, salaried, nil).Empty())
	})

	t.Run("fractional experience rejected", func(t *testing.T) {
		form := createTestForm()
		form[FieldTotalExperience] = "2.5"
		errs := Validate(StepEmployment, form, salaried, nil)
		assert.Equal(t, "Total experience must be a positive whole number", errs["totalExperience"])
	})

	t.Run("unknown occupation", func(t *testing.T) {
		form := createTestForm()
		form[FieldOccupationType] = "Retired"
		errs := Validate(StepEmployment, form, nil, nil)
		assert.Equal(t, "Occupation type must be Salaried or Self-Employed", errs["occupationType"])
		for _, spec := range SlotTable {
			assert.NotContains(t, errs, ErrorKey(spec.Slot))
		}
	})

	t.Run("salaried documents missing", func(t *testing.T) {
		errs := Validate(StepEmployment, createTestForm(), nil, nil)
		assert.Equal(t, Errors{
			"doc_salariedPayslip":         "Salary Slips is required for Salaried employees",
			"doc_salariedEmploymentProof": "Employment Proof is required for Salaried employees",
			"doc_salariedItr":             "ITR is required for Salaried employees",
			"doc_salariedBankStatements":  "Bank Statements is required for Salaried employees",
		}, errs)
	})

	t.Run("legacy business slot satisfies gst", func(t *testing.T) {
		form := createTestForm()
		form[FieldOccupationType] = OccupationSelfEmployed
		existing := ExistingDocuments{SlotSelfBusiness: {{ID: 7, DocumentType: models.DocBusinessProofGST}}}
		attached := createTestAttachments(SlotSelfITR, SlotSelfBankStatements)

		errs := Validate(StepEmployment, form, attached, existing)

		assert.True(t, errs.Empty(), "errors: %v", errs)
	})

	t.Run("self-employed gst missing", func(t *testing.T) {
		form := createTestForm()
		form[FieldOccupationType] = OccupationSelfEmployed
		attached := createTestAttachments(SlotSelfITR, SlotSelfBankStatements)

		errs := Validate(StepEmployment, form, attached, nil)

		assert.Equal(t, Errors{"doc_selfGst": "Business Proof/GST is required for Self-Employed"}, errs)
	})
}

func TestValidate_LoanStep(t *testing.T) {
	tests := []struct {
		name     string
		loanType string
		amount   string
		duration string
		attached Attachments
		want     Errors
	}{
		{
			name: "home loan documents", loanType: LoanTypeHome, amount: "2500000", duration: "240",
			want: Errors{
				"doc_homeEc":             "EC Certificate is required for Home Loan",
				"doc_homeSaleAgreements": "Sale Agreements is required for Home Loan",
			},
		},
		{
			name: "vehicle loan documents", loanType: LoanTypeVehicle, amount: "800000", duration: "60",
			attached: createTestAttachments(SlotVehicleInvoice),
			want:     Errors{"doc_vehicleQuotation": "Vehicle Quotation is required for Vehicle Loan"},
		},
		{
			name: "zero amount", loanType: LoanTypePersonal, amount: "0", duration: "12",
			attached: createTestAttachments(SlotPersonalLoanReport),
			want:     Errors{"amount": "Loan amount must be a positive number"},
		},
		{
			name: "fractional duration", loanType: LoanTypePersonal, amount: "1000", duration: "12.5",
			attached: createTestAttachments(SlotPersonalLoanReport),
			want:     Errors{"duration": "Loan duration must be a positive number of months"},
		},
		{
			name: "unknown loan type", loanType: "Gold Loan", amount: "1000", duration: "12",
			want: Errors{"loanType": "Loan type must be Personal Loan, Vehicle Loan or Home Loan"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			form := createTestForm()
			form[FieldLoanType] = tt.loanType
			form[FieldAmount] = tt.amount
			form[FieldDuration] = tt.duration

			assert.Equal(t, tt.want, Validate(StepLoan, form, tt.attached, nil))
		})
	}
}

func TestValidate_ExistingLoanStep(t *testing.T) {
	cibil := createTestAttachments(SlotCIBILReport)

	t.Run("cibil required even without loans", func(t *testing.T) {
		form := createTestForm()
		form[FieldHasLoans] = AnswerNo

		errs := Validate(StepExistingLoan, form, nil, nil)

		assert.Equal(t, Errors{"doc_cibilReport": "CIBIL Report is required"}, errs)
	})

	t.Run("cibil satisfied by stored document", func(t *testing.T) {
		existing := ExistingDocuments{SlotCIBILReport: {{ID: 3, DocumentType: models.DocCIBILReport}}}
		assert.True(t, Validate(StepExistingLoan, createTestForm(), nil, existing).Empty())
	})

	t.Run("details required when yes", func(t *testing.T) {
		form := createTestForm()
		form[FieldHasLoans] = AnswerYes

		errs := Validate(StepExistingLoan, form, cibil, nil)

		assert.Equal(t, Errors{
			"existingLoanType":  "Required",
			"existingLender":    "Required",
			"outstandingAmount": "Required",
			"existingEmi":       "Required",
			"tenureRemaining":   "Required",
		}, errs)
	})

	t.Run("details checked when yes", func(t *testing.T) {
		form := createTestForm()
		form[FieldHasLoans] = AnswerYes
		form[FieldExistingLoanType] = "Car loan 2"
		form[FieldExistingLender] = "HDFC Bank"
		form[FieldOutstandingAmount] = "-100"
		form[FieldExistingEmi] = "4500"
		form[FieldTenureRemaining] = "0"

		errs := Validate(StepExistingLoan, form, cibil, nil)

		assert.Equal(t, Errors{
			"existingLoanType":  "Loan type must contain only letters and spaces",
			"outstandingAmount": "Outstanding amount must be a positive number",
			"tenureRemaining":   "Tenure remaining must be a positive whole number (months)",
		}, errs)
	})

	t.Run("answer required", func(t *testing.T) {
		form := createTestForm()
		form[FieldHasLoans] = ""
		errs := Validate(StepExistingLoan, form, cibil, nil)
		assert.Equal(t, Errors{"hasLoans": "Required"}, errs)
	})
}

func TestValidate_ReferencesStep(t *testing.T) {
	t.Run("first reference incomplete reports all fields", func(t *testing.T) {
		form := createTestForm()
		form[FieldRef1Name] = "R2D2"
		form[FieldRef1Relationship] = ""
		form[FieldRef1Contact] = "12345"
		form[FieldRef1Address] = ""

		errs := Validate(StepReferences, form, nil, nil)

		assert.Equal(t, Errors{
			"ref1Name":         "Reference name must contain only letters and spaces",
			"ref1Relationship": "Required",
			"ref1Contact":      "Mobile must be 10 digits starting with 7, 8, or 9",
			"ref1Address":      "Required",
		}, errs)
	})

	t.Run("second reference optional when empty", func(t *testing.T) {
		assert.True(t, Validate(StepReferences, createTestForm(), nil, nil).Empty())
	})

	t.Run("second reference required once started", func(t *testing.T) {
		form := createTestForm()
		form[FieldRef2Contact] = "7654321098"

		errs := Validate(StepReferences, form, nil, nil)

		assert.Equal(t, Errors{
			"ref2Name":         "Required",
			"ref2Relationship": "Required",
			"ref2Address":      "Required",
		}, errs)
	})
}

// ==========================
// Document Reconciliation
// ==========================

func TestValidate_PartialDocumentSatisfaction(t *testing.T) {
	form := createTestForm()
	attached := createTestAttachments(SlotPhotograph)
	existing := ExistingDocuments{SlotIDProof: {{ID: 1, DocumentType: models.DocIdentityProof}}}

	errs := Validate(StepPersonal, form, attached, existing)

	assert.Equal(t, Errors{"doc_addressProof": "Address Proof is required"}, errs)
}

func TestValidate_ReviewStepUsesFullDocumentSet(t *testing.T) {
	form := createTestForm()

	errs := Validate(StepReview, form, nil, nil)

	assert.Len(t, errs, len(salariedPersonalSlots))
	assert.Equal(t, "Id Proof is required", errs["doc_idProof"])
	assert.Equal(t, "Salaried Payslip is required for Salaried employees", errs["doc_salariedPayslip"])
	assert.Equal(t, "Personal Loan Report is required for Personal Loan", errs["doc_personalLoanReport"])
	assert.NotContains(t, errs, "firstName")
}

func TestValidate_ReviewStepFollowsChangedOccupation(t *testing.T) {
	form := createTestForm()
	attached := createTestAttachments(salariedPersonalSlots...)
	form[FieldOccupationType] = OccupationSelfEmployed

	errs := Validate(StepReview, form, attached, nil)

	assert.Equal(t, Errors{
		"doc_selfItr":            "Self Itr is required for Self-Employed",
		"doc_selfGst":            "Business Proof/GST is required for Self-Employed",
		"doc_selfBankStatements": "Self Bank Statements is required for Self-Employed",
	}, errs)
}

func TestValidate_Idempotent(t *testing.T) {
	form := createTestForm()
	form[FieldPhone] = ""
	attached := createTestAttachments(SlotPhotograph)
	existing := ExistingDocuments{SlotIDProof: {{ID: 1, DocumentType: models.DocIdentityProof}}}

	for step := FirstStep; step <= LastStep; step++ {
		first := Validate(step, form, attached, existing)
		second := Validate(step, form, attached, existing)
		assert.Equal(t, first, second, "step %s", step)
	}
}

func TestValidate_NilForm(t *testing.T) {
	errs := Validate(StepPersonal, nil, nil, nil)
	assert.Equal(t, "Required", errs["firstName"])
	assert.Equal(t, "Photograph is required", errs["doc_photograph"])
}

func TestValidateAll_MergesSteps(t *testing.T) {
	form := createTestForm()
	form[FieldPhone] = ""
	form[FieldAmount] = "-1"

	errs := ValidateAll(form, nil, nil)

	assert.Equal(t, "Required", errs["phone"])
	assert.Equal(t, "Loan amount must be a positive number", errs["amount"])
	assert.Equal(t, "ID Proof is required", errs["doc_idProof"], "per-step label wins over review label")
	assert.Contains(t, errs, "doc_cibilReport")
}
