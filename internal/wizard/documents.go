package wizard

import (
	"strings"

	"loan-wizard/internal/models"
)

// Slot is a document upload position in the form.
type Slot string

const (
	SlotPhotograph              Slot = "photograph"
	SlotIDProof                 Slot = "idProof"
	SlotAddressProof            Slot = "addressProof"
	SlotCIBILReport             Slot = "cibilReport"
	SlotSalariedPayslip         Slot = "salariedPayslip"
	SlotSalariedEmploymentProof Slot = "salariedEmploymentProof"
	SlotSalariedITR             Slot = "salariedItr"
	SlotSalariedBankStatements  Slot = "salariedBankStatements"
	SlotSelfITR                 Slot = "selfItr"
	SlotSelfGST                 Slot = "selfGst"
	SlotSelfBusiness            Slot = "selfBusiness"
	SlotSelfBankStatements      Slot = "selfBankStatements"
	SlotHomeEC                  Slot = "homeEc"
	SlotHomeSaleAgreements      Slot = "homeSaleAgreements"
	SlotVehicleInvoice          Slot = "vehicleInvoice"
	SlotVehicleQuotation        Slot = "vehicleQuotation"
	SlotPersonalLoanReport      Slot = "personalLoanReport"
)

// SlotSpec describes one slot: its labels and the backend document type it
// uploads as.
type SlotSpec struct {
	Slot         Slot
	Label        string
	ReviewLabel  string
	DocumentType models.DocumentType
}

// SlotTable is ordered; uploads run in this order.
var SlotTable = []SlotSpec{
	{SlotPhotograph, "Photograph", "Photograph", models.DocPhotograph},
	{SlotIDProof, "ID Proof", "Id Proof", models.DocIdentityProof},
	{SlotAddressProof, "Address Proof", "Address Proof", models.DocAddressProof},
	{SlotCIBILReport, "CIBIL Report", "Cibil Report", models.DocCIBILReport},
	{SlotSalariedPayslip, "Salary Slips", "Salaried Payslip", models.DocSalarySlips},
	{SlotSalariedEmploymentProof, "Employment Proof", "Salaried Employment Proof", models.DocEmploymentProof},
	{SlotSalariedITR, "ITR", "Salaried Itr", models.DocITRSalaried},
	{SlotSalariedBankStatements, "Bank Statements", "Salaried Bank Statements", models.DocBankStatementsSalaried},
	{SlotSelfITR, "ITR", "Self Itr", models.DocITRSelfEmployed},
	{SlotSelfGST, "Business Proof/GST", "Business Proof/GST", models.DocBusinessProofGST},
	{SlotSelfBusiness, "Business Proof", "Self Business", models.DocBusinessProofGST},
	{SlotSelfBankStatements, "Bank Statements", "Self Bank Statements", models.DocBankStatementsSelfEmployed},
	{SlotHomeEC, "EC Certificate", "Home Ec", models.DocECCertificate},
	{SlotHomeSaleAgreements, "Sale Agreements", "Home Sale Agreements", models.DocSaleAgreement},
	{SlotVehicleInvoice, "Vehicle Invoice", "Vehicle Invoice", models.DocInvoiceFromDealer},
	{SlotVehicleQuotation, "Vehicle Quotation", "Vehicle Quotation", models.DocQuotation},
	{SlotPersonalLoanReport, "Income Certificate", "Personal Loan Report", models.DocIncomeProof},
}

var slotIndex = func() map[Slot]int {
	m := make(map[Slot]int, len(SlotTable))
	for i, s := range SlotTable {
		m[s.Slot] = i
	}
	return m
}()

// LookupSlot returns the table row for a slot name.
func LookupSlot(slot Slot) (SlotSpec, bool) {
	i, ok := slotIndex[slot]
	if !ok {
		return SlotSpec{}, false
	}
	return SlotTable[i], true
}

// DocumentTypeFor maps a slot to the backend document type.
func DocumentTypeFor(slot Slot) (models.DocumentType, bool) {
	spec, ok := LookupSlot(slot)
	return spec.DocumentType, ok
}

// ErrorKey is the error map key for a missing document.
func ErrorKey(slot Slot) string {
	return "doc_" + string(slot)
}

// Requirement is one row of the document rule table: when Field equals
// Value (or unconditionally when Field is empty), every slot is mandatory.
type Requirement struct {
	Step   Step
	Field  Field
	Value  string
	Slots  []Slot
	Suffix string
}

// Requirements is consulted by both the per-step gates and the review gate.
var Requirements = []Requirement{
	{Step: StepPersonal, Slots: []Slot{SlotPhotograph, SlotIDProof, SlotAddressProof}},
	{Step: StepExistingLoan, Slots: []Slot{SlotCIBILReport}},
	{
		Step: StepEmployment, Field: FieldOccupationType, Value: OccupationSalaried,
		Slots:  []Slot{SlotSalariedPayslip, SlotSalariedEmploymentProof, SlotSalariedITR, SlotSalariedBankStatements},
		Suffix: " for Salaried employees",
	},
	{
		Step: StepEmployment, Field: FieldOccupationType, Value: OccupationSelfEmployed,
		Slots:  []Slot{SlotSelfITR, SlotSelfGST, SlotSelfBankStatements},
		Suffix: " for Self-Employed",
	},
	{
		Step: StepLoan, Field: FieldLoanType, Value: LoanTypeHome,
		Slots:  []Slot{SlotHomeEC, SlotHomeSaleAgreements},
		Suffix: " for Home Loan",
	},
	{
		Step: StepLoan, Field: FieldLoanType, Value: LoanTypeVehicle,
		Slots:  []Slot{SlotVehicleInvoice, SlotVehicleQuotation},
		Suffix: " for Vehicle Loan",
	},
	{
		Step: StepLoan, Field: FieldLoanType, Value: LoanTypePersonal,
		Slots:  []Slot{SlotPersonalLoanReport},
		Suffix: " for Personal Loan",
	},
}

func (r Requirement) applies(form Form) bool {
	return r.Field == "" || form.Get(r.Field) == r.Value
}

// applicableRequirements returns the rows for one step, or every row when
// step is StepReview.
func applicableRequirements(step Step, form Form) []Requirement {
	var out []Requirement
	for _, r := range Requirements {
		if step != StepReview && r.Step != step {
			continue
		}
		if r.applies(form) {
			out = append(out, r)
		}
	}
	return out
}

// RequiredSlots lists every mandatory slot for the form's current
// occupation and loan type.
func RequiredSlots(form Form) []Slot {
	var out []Slot
	for _, r := range applicableRequirements(StepReview, form) {
		out = append(out, r.Slots...)
	}
	return out
}

// SlotSet is anything that can tell whether a slot holds a document.
type SlotSet interface {
	Has(slot Slot) bool
}

// SlotNames is a plain set of slot names, used where only the fact of an
// attachment is known.
type SlotNames map[Slot]bool

func (s SlotNames) Has(slot Slot) bool {
	return s[slot]
}

// SlotNamesFrom builds a set from raw slot names, skipping unknown ones.
func SlotNamesFrom(names []string) SlotNames {
	out := make(SlotNames, len(names))
	for _, n := range names {
		if _, ok := LookupSlot(Slot(n)); ok {
			out[Slot(n)] = true
		}
	}
	return out
}

// ExistingDocuments maps slots to documents the backend already holds. A nil
// map means the wizard is not editing a stored application.
type ExistingDocuments map[Slot][]models.DocumentRef

func (e ExistingDocuments) Has(slot Slot) bool {
	return len(e[slot]) > 0
}

// Slots returns the slots with at least one stored document, in table order.
func (e ExistingDocuments) Slots() []Slot {
	var out []Slot
	for _, spec := range SlotTable {
		if e.Has(spec.Slot) {
			out = append(out, spec.Slot)
		}
	}
	return out
}

func (e ExistingDocuments) clone() ExistingDocuments {
	if e == nil {
		return nil
	}
	out := make(ExistingDocuments, len(e))
	for k, v := range e {
		out[k] = append([]models.DocumentRef(nil), v...)
	}
	return out
}

// ExistingFromRefs groups backend document references by slot. Business
// proof fills both GST slots. An empty list yields nil.
func ExistingFromRefs(refs []models.DocumentRef) ExistingDocuments {
	if len(refs) == 0 {
		return nil
	}
	out := make(ExistingDocuments)
	for _, ref := range refs {
		docType := models.DocumentType(strings.ToUpper(strings.TrimSpace(string(ref.DocumentType))))
		ref.DocumentType = docType
		for _, spec := range SlotTable {
			if spec.DocumentType == docType {
				out[spec.Slot] = append(out[spec.Slot], ref)
			}
		}
	}
	return out
}

// satisfied reports whether a slot has a document from either source. The
// legacy selfBusiness slot also satisfies selfGst.
func satisfied(slot Slot, attached, existing SlotSet) bool {
	if has(attached, slot) || has(existing, slot) {
		return true
	}
	if slot == SlotSelfGST {
		return has(attached, SlotSelfBusiness) || has(existing, SlotSelfBusiness)
	}
	return false
}

func has(set SlotSet, slot Slot) bool {
	return set != nil && set.Has(slot)
}
