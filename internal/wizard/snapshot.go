package wizard

import "loan-wizard/internal/models"

// Snapshot is the persistable part of a wizard. Attached files are not
// included and have to be attached again after a restore.
type Snapshot struct {
	Step          Step                          `json:"step"`
	Form          map[string]string             `json:"form"`
	Errors        map[string]string             `json:"errors,omitempty"`
	SameAddress   bool                          `json:"sameAddress"`
	ApplicationID string                        `json:"applicationId,omitempty"`
	Status        models.ApplicationStatus      `json:"status,omitempty"`
	Existing      map[Slot][]models.DocumentRef `json:"existing,omitempty"`
	Locks         map[Field]string              `json:"locks,omitempty"`
}

func (w *Wizard) Snapshot() Snapshot {
	s := Snapshot{
		Step:          w.step,
		Form:          w.form.Map(),
		SameAddress:   w.sameAddress,
		ApplicationID: w.applicationID,
		Status:        w.status,
		Existing:      w.existing.clone(),
		Locks:         w.Locks(),
	}
	if len(w.errors) > 0 {
		s.Errors = w.errors.clone()
	}
	return s
}

// Restore rebuilds a wizard from a snapshot.
func Restore(s Snapshot, opts ...Option) *Wizard {
	w := New(opts...)
	w.form = FormFromMap(s.Form)
	if s.Step.Valid() {
		w.step = s.Step
	}
	for k, v := range s.Errors {
		w.errors[k] = v
	}
	w.sameAddress = s.SameAddress
	w.applicationID = s.ApplicationID
	w.status = s.Status
	if s.Existing != nil {
		w.existing = ExistingDocuments(s.Existing).clone()
	}
	for f, v := range s.Locks {
		if KnownField(f) {
			w.locks[f] = v
		}
	}
	return w
}
