package validateloanapplication

type Input struct {
	ApplicationID     string            `json:"applicationId"`
	Application       map[string]string `json:"application"`
	UploadedDocuments []string          `json:"uploadedDocuments"`
	ExistingDocuments []string          `json:"existingDocuments"`
}

type Output struct {
	ApplicationID    string            `json:"applicationId"`
	IsValid          bool              `json:"isValid"`
	ValidationErrors []ValidationError `json:"validationErrors"`
}

// ValidationError uses the same keys as the wizard: a field name, or
// doc_<slot> for a missing document.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}
