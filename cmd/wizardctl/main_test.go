package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"loan-wizard/internal/models"
	"loan-wizard/internal/wizard"
)

// ==========================
// Test Helper Functions
// ==========================

const validDraft = `form:
  firstName: Asha
  lastName: Rao
  fatherName: Vikram Rao
  phone: "9876543210"
  email: asha@example.com
  currentAddress: 12 MG Road, Bengaluru
  permanentAddress: 12 MG Road, Bengaluru
  maritalStatus: Single
  gender: Female
  dob: "1990-05-15"
  aadharNumber: 1234 5678 9012
  panNumber: ABCDE1234F
  highestQualification: Graduate
  occupationType: Salaried
  employer: Acme Corp
  designation: Engineer
  totalExperience: "8"
  officeAddress: Whitefield, Bengaluru
  loanType: Personal Loan
  amount: "500000"
  duration: "36"
  purpose: Home renovation
  hasLoans: "No"
  ref1Name: Ravi Kumar
  ref1Relationship: Friend
  ref1Contact: "8765432109"
  ref1Address: 5 Park Street, Kolkata
documents:
  - photograph
  - idProof
  - addressProof
  - salariedPayslip
  - salariedEmploymentProof
  - salariedItr
  - salariedBankStatements
  - personalLoanReport
existing:
  cibilReport:
    - id: 7
      documentType: cibil_report
`

func writeDraft(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "draft.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func fixClock(t *testing.T) {
	t.Helper()
	prev := now
	now = func() time.Time { return time.Date(2026, 10, 17, 0, 0, 0, 0, time.UTC) }
	t.Cleanup(func() { now = prev })
}

func runCmd(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	root := newRootCmd()
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	root.SetArgs(args)
	err := root.Execute()
	return stdout.String(), stderr.String(), err
}

// ==========================
// Draft Parsing Tests
// ==========================

func TestParseDraft(t *testing.T) {
	fixClock(t)

	d, err := parseDraft([]byte(validDraft))

	require.NoError(t, err)
	assert.Equal(t, "Asha", d.form.Get(wizard.FieldFirstName))
	assert.Equal(t, "36", d.form.Get(wizard.FieldAge))
	assert.True(t, d.attached.Has(wizard.SlotPhotograph))
	assert.False(t, d.attached.Has(wizard.SlotCIBILReport))
	assert.Equal(t, []models.DocumentRef{{ID: 7, DocumentType: models.DocCIBILReport}}, d.existing[wizard.SlotCIBILReport])
}

func TestParseDraft_Errors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{"unknown field", "form:\n  nickname: Ash\n", `unknown field "nickname"`},
		{"unknown attached slot", "documents: [selfie]\n", `unknown document slot "selfie"`},
		{"unknown existing slot", "existing:\n  selfie:\n    - id: 1\n", `unknown document slot "selfie"`},
		{"not yaml", "form: [unclosed\n", "parse draft"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parseDraft([]byte(tt.content))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestParseDraft_ExistingTypeDefaultsToSlot(t *testing.T) {
	d, err := parseDraft([]byte("existing:\n  photograph:\n    - id: 3\n"))

	require.NoError(t, err)
	assert.Equal(t, models.DocPhotograph, d.existing[wizard.SlotPhotograph][0].DocumentType)
}

// ==========================
// Command Tests
// ==========================

func TestValidateCmd_ValidDraft(t *testing.T) {
	fixClock(t)
	path := writeDraft(t, validDraft)

	out, _, err := runCmd(t, "validate", path)

	require.NoError(t, err)
	assert.Contains(t, out, "Step 1 Personal Details: ok")
	assert.Contains(t, out, "Step 5 References: ok")
	assert.NotContains(t, out, "Step 6")
}

func TestValidateCmd_ReportsErrors(t *testing.T) {
	fixClock(t)
	draft := strings.Replace(validDraft, `phone: "9876543210"`, `phone: "12345"`, 1)
	draft = strings.Replace(draft, "  - personalLoanReport\n", "", 1)
	path := writeDraft(t, draft)

	tests := []struct {
		name     string
		args     []string
		wantOut  []string
		wantErr  string
		notInOut []string
	}{
		{
			name:    "every step",
			args:    []string{"validate", path},
			wantOut: []string{"Step 1 Personal Details:\n  phone:", "doc_personalLoanReport: Income Certificate is required for Personal Loan"},
			wantErr: "draft has 2 validation error(s)",
		},
		{
			name:     "one step",
			args:     []string{"validate", "--step", "3", path},
			wantOut:  []string{"Step 3 Loan Details:", "doc_personalLoanReport"},
			notInOut: []string{"phone"},
			wantErr:  "draft has 1 validation error(s)",
		},
		{
			name:    "review gate",
			args:    []string{"validate", "--step", "6", path},
			wantOut: []string{"Step 6 Review:", "doc_personalLoanReport: Personal Loan Report is required for Personal Loan"},
			wantErr: "validation error(s)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, _, err := runCmd(t, tt.args...)

			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
			for _, want := range tt.wantOut {
				assert.Contains(t, out, want)
			}
			for _, not := range tt.notInOut {
				assert.NotContains(t, out, not)
			}
		})
	}
}

func TestValidateCmd_BadArguments(t *testing.T) {
	path := writeDraft(t, validDraft)

	_, _, err := runCmd(t, "validate", "--step", "7", path)
	assert.EqualError(t, err, "step must be between 1 and 6")

	_, _, err = runCmd(t, "validate", filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read draft")
}

func TestPayloadCmd(t *testing.T) {
	fixClock(t)
	path := writeDraft(t, validDraft)

	out, stderr, err := runCmd(t, "payload", path)

	require.NoError(t, err)
	assert.Empty(t, stderr)
	var req models.LoanApplicationRequest
	require.NoError(t, json.Unmarshal([]byte(out), &req))
	assert.Equal(t, "SALARIED", req.EmploymentDetails.OccupationType)
	assert.Equal(t, "PERSONAL_LOAN", req.LoanDetails.LoanType)
	assert.Equal(t, "Asha", req.PersonalDetails.FirstName)
}

func TestPayloadCmd_SchemaFailure(t *testing.T) {
	path := writeDraft(t, "form:\n  firstName: Asha\n")

	out, stderr, err := runCmd(t, "payload", path)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "schema validation")
	assert.Contains(t, out, `"firstName": "Asha"`)
	assert.NotEmpty(t, stderr)
}

func TestSlotsCmd(t *testing.T) {
	out, _, err := runCmd(t, "slots")

	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, len(wizard.SlotTable)+1)
	assert.Contains(t, lines[0], "DOCUMENT TYPE")
	assert.Contains(t, out, "always")
	assert.Contains(t, out, "occupationType = Salaried")
	assert.Regexp(t, `selfBusiness\s+Business Proof\s+BUSINESS_PROOF_GST\s+-\s+never`, out)
}
