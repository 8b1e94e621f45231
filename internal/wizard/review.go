package wizard

import "loan-wizard/internal/models"

type ReviewField struct {
	Field Field  `json:"field"`
	Label string `json:"label"`
	Value string `json:"value"`
}

type ReviewSection struct {
	Name   string        `json:"name"`
	Fields []ReviewField `json:"fields"`
}

// DocumentStatus describes one slot on the review page.
type DocumentStatus struct {
	Slot         Slot                 `json:"slot"`
	Label        string               `json:"label"`
	DocumentType models.DocumentType  `json:"documentType"`
	Required     bool                 `json:"required"`
	Attached     string               `json:"attached,omitempty"`
	Existing     []models.DocumentRef `json:"existing,omitempty"`
	Satisfied    bool                 `json:"satisfied"`
}

type ReviewSummary struct {
	Sections  []ReviewSection  `json:"sections"`
	Documents []DocumentStatus `json:"documents"`
	Errors    Errors           `json:"errors"`
}

// Review builds the summary from the live state. Nothing is cached between
// calls.
func (w *Wizard) Review() ReviewSummary {
	sum := ReviewSummary{
		Errors: Validate(StepReview, w.form, w.attached, w.existing),
	}

	for _, sec := range Sections {
		rs := ReviewSection{Name: sec.Name}
		for _, f := range sec.Fields {
			rs.Fields = append(rs.Fields, ReviewField{Field: f, Label: fieldLabel(string(f)), Value: w.form[f]})
		}
		sum.Sections = append(sum.Sections, rs)
	}

	required := make(map[Slot]bool)
	for _, s := range RequiredSlots(w.form) {
		required[s] = true
	}
	for _, spec := range SlotTable {
		st := DocumentStatus{
			Slot:         spec.Slot,
			Label:        spec.ReviewLabel,
			DocumentType: spec.DocumentType,
			Required:     required[spec.Slot],
			Existing:     append([]models.DocumentRef(nil), w.existing[spec.Slot]...),
		}
		if f := w.attached[spec.Slot]; f != nil {
			st.Attached = f.Name
		}
		if !st.Required && st.Attached == "" && len(st.Existing) == 0 {
			continue
		}
		st.Satisfied = satisfied(spec.Slot, w.attached, w.existing)
		sum.Documents = append(sum.Documents, st)
	}
	return sum
}
