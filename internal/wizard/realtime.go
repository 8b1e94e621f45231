package wizard

// realtimeRule checks a single field as it is typed. It returns the inline
// message, or "" when the value is acceptable.
type realtimeRule func(label, value string) string

func requiredThen(ok func(string) bool, msg func(label string) string) realtimeRule {
	return func(label, value string) string {
		if trimmedEmpty(value) {
			return msgRequired
		}
		if !ok(value) {
			return msg(label)
		}
		return ""
	}
}

func fixed(msg string) func(string) string {
	return func(string) string { return msg }
}

var (
	ruleAadhaar = requiredThen(isAadhaar, fixed("Aadhaar must be exactly 12 digits"))
	rulePhone   = requiredThen(isPhone, fixed("Mobile number must be 10 digits starting with 7, 8, or 9"))
	ruleLetters = requiredThen(isLetters, func(label string) string {
		return label + " must contain only letters and spaces"
	})
	ruleAge      = requiredThen(isAdult, fixed("Age must be 21 or above"))
	rulePositive = requiredThen(isPositive, func(label string) string {
		return label + " must be a positive number"
	})
	ruleWhole = requiredThen(func(s string) bool { return isWholeAtLeast(s, 1) }, func(label string) string {
		return label + " must be a positive whole number"
	})
	ruleWholeOrZero = requiredThen(func(s string) bool { return isWholeAtLeast(s, 0) }, func(label string) string {
		return label + " must be a positive whole number"
	})
)

func rulePassport(_, value string) string {
	if !trimmedEmpty(value) && !isPassport(value) {
		return "Invalid passport number format"
	}
	return ""
}

var realtimeRules = map[Field]realtimeRule{
	FieldAadharNumber: ruleAadhaar,

	FieldPhone:       rulePhone,
	FieldRef1Contact: rulePhone,
	FieldRef2Contact: rulePhone,

	FieldFirstName:        ruleLetters,
	FieldLastName:         ruleLetters,
	FieldMiddleName:       ruleLetters,
	FieldFatherName:       ruleLetters,
	FieldRef1Name:         ruleLetters,
	FieldRef2Name:         ruleLetters,
	FieldExistingLoanType: ruleLetters,
	FieldRef1Relationship: ruleLetters,
	FieldRef2Relationship: ruleLetters,

	FieldAge: ruleAge,

	FieldOutstandingAmount: rulePositive,
	FieldExistingEmi:       rulePositive,
	FieldAmount:            rulePositive,

	FieldTenureRemaining: ruleWhole,
	FieldDuration:        ruleWhole,
	FieldTotalExperience: ruleWholeOrZero,

	FieldPassportNumber: rulePassport,
}

// ValidateField runs the keystroke-level rule for a field. ok is false when
// the field has no such rule; otherwise msg is the inline error, empty when
// the value is valid.
func ValidateField(field Field, value string) (msg string, ok bool) {
	rule, ok := realtimeRules[field]
	if !ok {
		return "", false
	}
	return rule(fieldLabel(string(field)), value), true
}

func trimmedEmpty(s string) bool {
	for _, r := range s {
		switch r {
		case ' ', '\t', '\n', '\r', '\v', '\f':
		default:
			return false
		}
	}
	return true
}
