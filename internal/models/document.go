// internal/models/document.go
package models

// DocumentType is the backend's document category enum.
type DocumentType string

const (
	DocPhotograph                 DocumentType = "PHOTOGRAPH"
	DocIdentityProof              DocumentType = "IDENTITY_PROOF"
	DocAddressProof               DocumentType = "ADDRESS_PROOF"
	DocSalarySlips                DocumentType = "SALARY_SLIPS"
	DocITRSalaried                DocumentType = "ITR_SALARIED"
	DocBankStatementsSalaried     DocumentType = "BANK_STATEMENTS_SALARIED"
	DocEmploymentProof            DocumentType = "EMPLOYMENT_PROOF"
	DocBusinessProofGST           DocumentType = "BUSINESS_PROOF_GST"
	DocITRSelfEmployed            DocumentType = "ITR_SELF_EMPLOYED"
	DocBankStatementsSelfEmployed DocumentType = "BANK_STATEMENTS_SELF_EMPLOYED"
	DocSaleAgreement              DocumentType = "SALE_AGREEMENT"
	DocECCertificate              DocumentType = "EC_CERTIFICATE"
	DocInvoiceFromDealer          DocumentType = "INVOICE_FROM_DEALER"
	DocQuotation                  DocumentType = "QUOTATION"
	DocIncomeProof                DocumentType = "INCOME_PROOF"
	DocCIBILReport                DocumentType = "CIBIL_REPORT"
)

// DocumentTypes lists every known type in backend declaration order.
var DocumentTypes = []DocumentType{
	DocPhotograph, DocIdentityProof, DocAddressProof,
	DocSalarySlips, DocITRSalaried, DocBankStatementsSalaried, DocEmploymentProof,
	DocBusinessProofGST, DocITRSelfEmployed, DocBankStatementsSelfEmployed,
	DocSaleAgreement, DocECCertificate,
	DocInvoiceFromDealer, DocQuotation,
	DocIncomeProof,
	DocCIBILReport,
}

func (t DocumentType) Valid() bool {
	for _, known := range DocumentTypes {
		if t == known {
			return true
		}
	}
	return false
}

// DocumentRef identifies a document already stored by the backend.
type DocumentRef struct {
	ID           int          `json:"id"`
	DocumentType DocumentType `json:"documentType"`
}
