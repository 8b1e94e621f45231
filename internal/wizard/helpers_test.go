package wizard

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// ==========================
// Test Helper Functions
// ==========================

var fixedNow = time.Date(2026, 10, 17, 12, 0, 0, 0, time.UTC)

func fixedClock() time.Time { return fixedNow }

// createTestForm returns a form that passes every field rule for a salaried
// applicant asking for a personal loan.
func createTestForm() Form {
	return FormFromMap(map[string]string{
		"firstName":            "Asha",
		"lastName":             "Rao",
		"fatherName":           "Vikram Rao",
		"phone":                "9876543210",
		"email":                "asha@example.com",
		"currentAddress":       "12 MG Road, Bengaluru",
		"permanentAddress":     "12 MG Road, Bengaluru",
		"maritalStatus":        "Single",
		"gender":               "Female",
		"dob":                  "1990-05-15",
		"age":                  "36",
		"aadharNumber":         "1234 5678 9012",
		"panNumber":            "ABCDE1234F",
		"highestQualification": "Graduate",
		"occupationType":       OccupationSalaried,
		"employer":             "Acme Corp",
		"designation":          "Engineer",
		"totalExperience":      "8",
		"officeAddress":        "Whitefield, Bengaluru",
		"loanType":             LoanTypePersonal,
		"amount":               "500000",
		"duration":             "36",
		"purpose":              "Home renovation",
		"hasLoans":             AnswerNo,
		"ref1Name":             "Ravi Kumar",
		"ref1Relationship":     "Friend",
		"ref1Contact":          "8765432109",
		"ref1Address":          "5 Park Street, Kolkata",
	})
}

// salariedPersonalSlots are the mandatory slots for createTestForm.
var salariedPersonalSlots = []Slot{
	SlotPhotograph, SlotIDProof, SlotAddressProof, SlotCIBILReport,
	SlotSalariedPayslip, SlotSalariedEmploymentProof, SlotSalariedITR, SlotSalariedBankStatements,
	SlotPersonalLoanReport,
}

func createTestAttachments(slots ...Slot) Attachments {
	a := make(Attachments)
	for _, s := range slots {
		a[s] = MemoryFile(string(s)+".pdf", "application/pdf", []byte("content of "+string(s)))
	}
	return a
}

func attachAll(t *testing.T, w *Wizard, slots ...Slot) {
	t.Helper()
	for _, s := range slots {
		require.NoError(t, w.Attach(s, MemoryFile(string(s)+".pdf", "application/pdf", []byte("content of "+string(s)))))
	}
}

func fillForm(t *testing.T, w *Wizard, form Form) {
	t.Helper()
	for _, sec := range Sections {
		for _, f := range sec.Fields {
			if form[f] == "" {
				continue
			}
			res, err := w.SetField(f, form[f])
			require.NoError(t, err)
			require.True(t, res.Accepted, "field %s rejected", f)
		}
	}
}
