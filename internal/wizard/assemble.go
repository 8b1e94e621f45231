package wizard

import (
	"math"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"loan-wizard/internal/models"
)

// enumValue turns a display value into the backend vocabulary:
// "Self-Employed" becomes "SELF_EMPLOYED".
func enumValue(s string) string {
	if s == "" {
		return ""
	}
	return strings.NewReplacer("-", "_", " ", "_").Replace(strings.ToUpper(s))
}

// amount converts a numeric form value with the same reading the field
// rules use, so hex, octal and binary literals keep their value. Anything
// without a finite value is sent as 0.
func amount(s string) models.Amount {
	s = strings.TrimSpace(s)
	if s == "" {
		return models.AmountFromInt(0)
	}
	if d, err := decimal.NewFromString(s); err == nil {
		return models.NewAmount(d)
	}
	f := parseNumber(s)
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return models.AmountFromInt(0)
	}
	return models.NewAmount(decimal.NewFromFloat(f))
}

// BuildRequest assembles the nested backend payload from the flat form.
func BuildRequest(form Form) models.LoanApplicationRequest {
	g := form.Get
	req := models.LoanApplicationRequest{
		PersonalDetails: models.PersonalDetails{
			FirstName:        g(FieldFirstName),
			MiddleName:       g(FieldMiddleName),
			LastName:         g(FieldLastName),
			PhoneNumber:      g(FieldPhone),
			EmailAddress:     g(FieldEmail),
			CurrentAddress:   g(FieldCurrentAddress),
			PermanentAddress: g(FieldPermanentAddress),
			MaritalStatus:    enumValue(g(FieldMaritalStatus)),
			Gender:           enumValue(g(FieldGender)),
			DateOfBirth:      g(FieldDOB),
			AadhaarNumber:    g(FieldAadharNumber),
			PanNumber:        g(FieldPanNumber),
			PassportNumber:   g(FieldPassportNumber),
			FatherName:       g(FieldFatherName),
			EducationDetails: g(FieldHighestQualification),
		},
		EmploymentDetails: models.EmploymentDetails{
			OccupationType:           enumValue(g(FieldOccupationType)),
			EmployerOrBusinessName:   g(FieldEmployer),
			Designation:              g(FieldDesignation),
			TotalWorkExperienceYears: amount(g(FieldTotalExperience)),
			OfficeAddress:            g(FieldOfficeAddress),
		},
		LoanDetails: models.LoanDetails{
			LoanType:           enumValue(g(FieldLoanType)),
			LoanAmount:         amount(g(FieldAmount)),
			LoanDurationMonths: amount(g(FieldDuration)),
			PurposeOfLoan:      g(FieldPurpose),
		},
		ExistingLoanDetails: models.ExistingLoanDetails{
			HasExistingLoans:      strings.ToLower(g(FieldHasLoans)) == "yes",
			ExistingLoanType:      g(FieldExistingLoanType),
			LenderName:            g(FieldExistingLender),
			OutstandingAmount:     amount(g(FieldOutstandingAmount)),
			MonthlyEmi:            amount(g(FieldExistingEmi)),
			TenureRemainingMonths: amount(g(FieldTenureRemaining)),
		},
		References: []models.Reference{},
	}

	for i, r := range []referenceFields{reference1, reference2} {
		if form.Get(r.name) == "" && form.Get(r.relationship) == "" && form.Get(r.contact) == "" && form.Get(r.address) == "" {
			continue
		}
		req.References = append(req.References, models.Reference{
			ReferenceNumber: i + 1,
			Name:            g(r.name),
			Relationship:    g(r.relationship),
			ContactNumber:   g(r.contact),
			Address:         g(r.address),
		})
	}
	return req
}

// titleCase renders an unknown backend enum for display: "GOLD_LOAN"
// becomes "Gold Loan".
func titleCase(s string) string {
	words := strings.Fields(strings.ReplaceAll(strings.ToLower(s), "_", " "))
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}

func formatEnum(known map[string]string) func(string) string {
	return func(s string) string {
		if s == "" {
			return ""
		}
		u := strings.ToUpper(strings.TrimSpace(s))
		if v, ok := known[u]; ok {
			return v
		}
		return titleCase(u)
	}
}

var (
	FormatLoanType = formatEnum(map[string]string{
		"PERSONAL_LOAN": LoanTypePersonal,
		"PERSONAL LOAN": LoanTypePersonal,
		"HOME_LOAN":     LoanTypeHome,
		"HOME LOAN":     LoanTypeHome,
		"VEHICLE_LOAN":  LoanTypeVehicle,
		"VEHICLE LOAN":  LoanTypeVehicle,
	})
	FormatOccupationType = formatEnum(map[string]string{
		"SALARIED":      OccupationSalaried,
		"SELF_EMPLOYED": OccupationSelfEmployed,
		"SELF EMPLOYED": OccupationSelfEmployed,
		"SELF-EMPLOYED": OccupationSelfEmployed,
	})
	FormatMaritalStatus = formatEnum(map[string]string{
		"SINGLE":   "Single",
		"MARRIED":  "Married",
		"DIVORCED": "Divorced",
		"WIDOWED":  "Widowed",
	})
	FormatGender = formatEnum(map[string]string{
		"MALE":   "Male",
		"FEMALE": "Female",
		"OTHER":  "Other",
	})
)

func amountString(a *models.Amount) string {
	if a == nil {
		return ""
	}
	return a.String()
}

// FormFromApplication flattens a stored application back into form values.
func FormFromApplication(app *models.ApplicationResponse) Form {
	form := NewForm()
	if app == nil {
		return form
	}

	if p := app.PersonalDetails; p != nil {
		form[FieldFirstName] = p.FirstName
		form[FieldMiddleName] = p.MiddleName
		form[FieldLastName] = p.LastName
		form[FieldPhone] = p.PhoneNumber
		form[FieldEmail] = p.EmailAddress
		form[FieldCurrentAddress] = p.CurrentAddress
		form[FieldPermanentAddress] = p.PermanentAddress
		form[FieldDOB] = p.DateOfBirth
		if p.Age != nil {
			form[FieldAge] = strconv.Itoa(*p.Age)
		}
		form[FieldMaritalStatus] = FormatMaritalStatus(p.MaritalStatus)
		form[FieldGender] = FormatGender(p.Gender)
		form[FieldAadharNumber] = p.AadhaarNumber
		form[FieldPanNumber] = p.PanNumber
		form[FieldPassportNumber] = p.PassportNumber
		form[FieldFatherName] = p.FatherName
		form[FieldHighestQualification] = p.EducationDetails
	}

	if e := app.EmploymentDetails; e != nil {
		form[FieldOccupationType] = FormatOccupationType(e.OccupationType)
		form[FieldEmployer] = e.EmployerOrBusinessName
		form[FieldDesignation] = e.Designation
		form[FieldTotalExperience] = amountString(e.TotalWorkExperienceYears)
		form[FieldOfficeAddress] = e.OfficeAddress
	}

	if l := app.LoanDetails; l != nil {
		form[FieldLoanType] = FormatLoanType(l.LoanType)
		form[FieldAmount] = amountString(l.LoanAmount)
		form[FieldDuration] = amountString(l.LoanDurationMonths)
		form[FieldPurpose] = l.PurposeOfLoan
	}

	form[FieldHasLoans] = AnswerNo
	if x := app.ExistingLoanDetails; x != nil {
		if x.HasExistingLoans != nil && *x.HasExistingLoans {
			form[FieldHasLoans] = AnswerYes
		}
		form[FieldExistingLoanType] = x.ExistingLoanType
		form[FieldExistingLender] = x.LenderName
		form[FieldOutstandingAmount] = amountString(x.OutstandingAmount)
		form[FieldExistingEmi] = amountString(x.MonthlyEmi)
		form[FieldTenureRemaining] = amountString(x.TenureRemainingMonths)
	}

	seen := make(map[int]bool)
	for _, ref := range app.References {
		if seen[ref.ReferenceNumber] {
			continue
		}
		seen[ref.ReferenceNumber] = true
		var r referenceFields
		switch ref.ReferenceNumber {
		case 1:
			r = reference1
		case 2:
			r = reference2
		default:
			continue
		}
		form[r.name] = ref.Name
		form[r.relationship] = ref.Relationship
		form[r.contact] = ref.ContactNumber
		form[r.address] = ref.Address
	}
	return form
}
