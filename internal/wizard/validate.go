package wizard

import (
	"math"
	"regexp"
)

const msgRequired = "Required"

var (
	lettersRegex  = regexp.MustCompile(`^[a-zA-Z\s]+$`)
	phoneRegex    = regexp.MustCompile(`^[789]\d{9}$`)
	phoneStrip    = regexp.MustCompile(`\s|-`)
	aadhaarRegex  = regexp.MustCompile(`^\d{12}$`)
	whitespace    = regexp.MustCompile(`\s`)
	passportRegex = regexp.MustCompile(`(?i)^[A-Z0-9]{6,9}$`)
)

func isLetters(v string) bool {
	return lettersRegex.MatchString(v)
}

func isPhone(v string) bool {
	return phoneRegex.MatchString(phoneStrip.ReplaceAllString(v, ""))
}

func isAadhaar(v string) bool {
	return aadhaarRegex.MatchString(whitespace.ReplaceAllString(v, ""))
}

func isPassport(v string) bool {
	return passportRegex.MatchString(v)
}

func isPositive(v string) bool {
	n := parseNumber(v)
	return !math.IsNaN(n) && n > 0
}

func isWholeAtLeast(v string, least float64) bool {
	n := parseNumber(v)
	return isInteger(n) && n >= least
}

// Validate returns the errors blocking the given step. It reads only its
// arguments, so identical inputs always give identical results. StepReview
// checks the full mandatory document set for the current occupation and
// loan type.
func Validate(step Step, form Form, attached, existing SlotSet) Errors {
	if form == nil {
		form = NewForm()
	}
	v := &validator{form: form, errs: make(Errors)}

	switch step {
	case StepPersonal:
		v.personal()
	case StepEmployment:
		v.employment()
	case StepLoan:
		v.loan()
	case StepExistingLoan:
		v.existingLoan()
	case StepReferences:
		v.references()
	}

	for _, r := range applicableRequirements(step, form) {
		for _, slot := range r.Slots {
			if satisfied(slot, attached, existing) {
				continue
			}
			spec, _ := LookupSlot(slot)
			label := spec.Label
			if step == StepReview {
				label = spec.ReviewLabel
			}
			v.errs[ErrorKey(slot)] = label + " is required" + r.Suffix
		}
	}
	return v.errs
}

// ValidateAll runs every step and merges the results. Later steps never
// overwrite an earlier message for the same key.
func ValidateAll(form Form, attached, existing SlotSet) Errors {
	out := make(Errors)
	for step := FirstStep; step <= LastStep; step++ {
		for k, msg := range Validate(step, form, attached, existing) {
			if _, ok := out[k]; !ok {
				out[k] = msg
			}
		}
	}
	return out
}

type validator struct {
	form Form
	errs Errors
}

func (v *validator) filled(f Field) bool {
	return v.form.Filled(f)
}

func (v *validator) set(f Field, msg string) {
	v.errs[string(f)] = msg
}

// require marks an empty field and reports whether it was filled.
func (v *validator) require(f Field) bool {
	if !v.filled(f) {
		v.set(f, msgRequired)
		return false
	}
	return true
}

// check requires the field and then applies ok, setting msg on failure.
func (v *validator) check(f Field, ok func(string) bool, msg string) {
	if v.require(f) && !ok(v.form.Get(f)) {
		v.set(f, msg)
	}
}

func (v *validator) oneOf(f Field, msg string, allowed ...string) {
	if !v.require(f) {
		return
	}
	val := v.form.Get(f)
	for _, a := range allowed {
		if val == a {
			return
		}
	}
	v.set(f, msg)
}

func (v *validator) personal() {
	v.check(FieldFirstName, isLetters, "First name must contain only letters")
	v.check(FieldLastName, isLetters, "Last name must contain only letters")
	if v.filled(FieldMiddleName) && !isLetters(v.form.Get(FieldMiddleName)) {
		v.set(FieldMiddleName, "Middle name must contain only letters")
	}
	v.check(FieldFatherName, isLetters, "Father name must contain only letters")

	v.check(FieldPhone, isPhone, "Mobile must be 10 digits starting with 7, 8, or 9")
	v.require(FieldEmail)
	v.require(FieldCurrentAddress)
	v.require(FieldPermanentAddress)
	v.require(FieldMaritalStatus)
	v.require(FieldGender)
	v.require(FieldDOB)
	v.check(FieldAge, isAdult, "Age must be 21 or above")
	v.check(FieldAadharNumber, isAadhaar, "Aadhaar must be exactly 12 digits")
	v.require(FieldPanNumber)
	if v.filled(FieldPassportNumber) && !isPassport(v.form.Get(FieldPassportNumber)) {
		v.set(FieldPassportNumber, "Invalid passport number format")
	}
	v.require(FieldHighestQualification)
}

func isAdult(v string) bool {
	n := parseNumber(v)
	return !math.IsNaN(n) && n >= 21
}

func (v *validator) employment() {
	v.oneOf(FieldOccupationType, "Occupation type must be Salaried or Self-Employed",
		OccupationSalaried, OccupationSelfEmployed)
	if v.form.Get(FieldOccupationType) == OccupationSalaried {
		v.require(FieldEmployer)
	}
	v.require(FieldDesignation)
	v.check(FieldTotalExperience, func(s string) bool { return isWholeAtLeast(s, 0) },
		"Total experience must be a positive whole number")
	v.require(FieldOfficeAddress)
}

func (v *validator) loan() {
	v.oneOf(FieldLoanType, "Loan type must be Personal Loan, Vehicle Loan or Home Loan",
		LoanTypePersonal, LoanTypeVehicle, LoanTypeHome)
	v.check(FieldAmount, isPositive, "Loan amount must be a positive number")
	v.check(FieldDuration, func(s string) bool { return isWholeAtLeast(s, 1) },
		"Loan duration must be a positive number of months")
	v.require(FieldPurpose)
}

func (v *validator) existingLoan() {
	v.oneOf(FieldHasLoans, "Select Yes or No", AnswerYes, AnswerNo)
	if v.form.Get(FieldHasLoans) != AnswerYes {
		return
	}
	v.check(FieldExistingLoanType, isLetters, "Loan type must contain only letters and spaces")
	v.check(FieldExistingLender, isLetters, "Lender name must contain only letters and spaces")
	v.check(FieldOutstandingAmount, isPositive, "Outstanding amount must be a positive number")
	v.check(FieldExistingEmi, isPositive, "Monthly EMI must be a positive number")
	v.check(FieldTenureRemaining, func(s string) bool { return isWholeAtLeast(s, 1) },
		"Tenure remaining must be a positive whole number (months)")
}

type referenceFields struct {
	name, relationship, contact, address Field
}

var (
	reference1 = referenceFields{FieldRef1Name, FieldRef1Relationship, FieldRef1Contact, FieldRef1Address}
	reference2 = referenceFields{FieldRef2Name, FieldRef2Relationship, FieldRef2Contact, FieldRef2Address}
)

func (r referenceFields) all() []Field {
	return []Field{r.name, r.relationship, r.contact, r.address}
}

func (v *validator) references() {
	// Reference 1 is mandatory: checked whenever it is incomplete.
	complete := true
	for _, f := range reference1.all() {
		if !v.filled(f) {
			complete = false
		}
	}
	if !complete {
		v.reference(reference1)
	}

	// Reference 2 becomes mandatory once any of its fields is filled.
	for _, f := range reference2.all() {
		if v.filled(f) {
			v.reference(reference2)
			break
		}
	}
}

func (v *validator) reference(r referenceFields) {
	v.check(r.name, isLetters, "Reference name must contain only letters and spaces")
	v.check(r.relationship, isLetters, "Relationship must contain only letters and spaces")
	v.check(r.contact, isPhone, "Mobile must be 10 digits starting with 7, 8, or 9")
	v.require(r.address)
}
