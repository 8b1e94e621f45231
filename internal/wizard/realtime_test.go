package wizard

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateField(t *testing.T) {
	tests := []struct {
		field Field
		value string
		want  string
	}{
		{FieldAadharNumber, "1234 5678 9012", ""},
		{FieldAadharNumber, "12345", "Aadhaar must be exactly 12 digits"},
		{FieldAadharNumber, "  ", "Required"},
		{FieldPhone, "6123456789", "Mobile number must be 10 digits starting with 7, 8, or 9"},
		{FieldRef2Contact, "98765-43210", ""},
		{FieldFirstName, "John3", "First Name must contain only letters and spaces"},
		{FieldRef1Relationship, "Brother in law", ""},
		{FieldExistingLoanType, "", "Required"},
		{FieldAge, "20", "Age must be 21 or above"},
		{FieldAge, "21", ""},
		{FieldAmount, "-5", "Amount must be a positive number"},
		{FieldExistingEmi, "abc", "Existing Emi must be a positive number"},
		{FieldOutstandingAmount, "1500.75", ""},
		{FieldDuration, "0", "Duration must be a positive whole number"},
		{FieldTenureRemaining, "2.5", "Tenure Remaining must be a positive whole number"},
		{FieldTotalExperience, "0", ""},
		{FieldPassportNumber, "", ""},
		{FieldPassportNumber, "A12", "Invalid passport number format"},
		{FieldPassportNumber, "z1234567", ""},
	}

	for _, tt := range tests {
		t.Run(string(tt.field)+"/"+tt.value, func(t *testing.T) {
			msg, ok := ValidateField(tt.field, tt.value)
			assert.True(t, ok)
			assert.Equal(t, tt.want, msg)
		})
	}
}

func TestValidateField_NoRule(t *testing.T) {
	for _, f := range []Field{FieldEmail, FieldPurpose, FieldLoanType, FieldDOB} {
		msg, ok := ValidateField(f, "anything")
		assert.False(t, ok, "field %s", f)
		assert.Empty(t, msg)
	}
}
