package wizard

import (
	"errors"
	"fmt"
	"time"

	"loan-wizard/internal/models"
)

const DefaultWarningTTL = 5 * time.Second

var (
	ErrUnknownField = errors.New("UNKNOWN_FIELD")
	ErrUnknownSlot  = errors.New("UNKNOWN_SLOT")
	ErrNoAttachment = errors.New("NO_ATTACHMENT")
)

// Mode says which backend call a submit will make.
type Mode string

const (
	ModeCreate   Mode = "create"
	ModeResubmit Mode = "resubmit"
)

// lockableFields may not change while editing a stored application, since
// the documents on file were chosen for their original values.
var lockableFields = []Field{FieldOccupationType, FieldLoanType}

type Option func(*Wizard)

// WithClock replaces time.Now, for age derivation and warning expiry.
func WithClock(now func() time.Time) Option {
	return func(w *Wizard) { w.now = now }
}

// WithWarningTTL sets how long a lock warning stays visible.
func WithWarningTTL(d time.Duration) Option {
	return func(w *Wizard) {
		if d > 0 {
			w.warningTTL = d
		}
	}
}

type warning struct {
	text    string
	expires time.Time
}

// Wizard is the state of one loan application being filled in. It is not
// safe for concurrent use; callers serialise access per session.
type Wizard struct {
	step        Step
	form        Form
	errors      Errors
	attached    Attachments
	existing    ExistingDocuments
	sameAddress bool

	applicationID string
	status        models.ApplicationStatus
	locks         map[Field]string
	warnings      map[Field]warning

	now        func() time.Time
	warningTTL time.Duration
}

// New starts an empty application on the first step.
func New(opts ...Option) *Wizard {
	w := &Wizard{
		now:        time.Now,
		warningTTL: DefaultWarningTTL,
	}
	for _, opt := range opts {
		opt(w)
	}
	w.clear()
	return w
}

// NewFromExisting starts from a stored application. When existing is
// non-nil the occupation type and loan type are locked to their hydrated
// values.
func NewFromExisting(form Form, applicationID string, status models.ApplicationStatus, existing ExistingDocuments, opts ...Option) *Wizard {
	w := New(opts...)
	if form != nil {
		w.form = FormFromMap(form.Map())
	}
	if !w.form.Filled(FieldAge) && w.form.Filled(FieldDOB) {
		w.form[FieldAge] = ComputeAge(w.form[FieldDOB], w.now())
	}
	w.applicationID = applicationID
	w.status = status
	w.existing = existing.clone()

	cur := w.form[FieldCurrentAddress]
	w.sameAddress = cur != "" && cur == w.form[FieldPermanentAddress]

	if w.existing != nil {
		for _, f := range lockableFields {
			if v := w.form[f]; v != "" {
				w.locks[f] = v
			}
		}
	}
	return w
}

func (w *Wizard) clear() {
	w.step = FirstStep
	w.form = NewForm()
	w.errors = make(Errors)
	w.attached = make(Attachments)
	w.existing = nil
	w.sameAddress = false
	w.applicationID = ""
	w.status = ""
	w.locks = make(map[Field]string)
	w.warnings = make(map[Field]warning)
}

func (w *Wizard) Step() Step {
	return w.step
}

// Form returns a copy of the current values.
func (w *Wizard) Form() Form {
	return w.form.Clone()
}

// Errors returns a copy of the published error map.
func (w *Wizard) Errors() Errors {
	return w.errors.clone()
}

// Warnings returns the lock warnings that have not yet expired.
func (w *Wizard) Warnings() map[Field]string {
	now := w.now()
	out := make(map[Field]string, len(w.warnings))
	for f, warn := range w.warnings {
		if !now.Before(warn.expires) {
			delete(w.warnings, f)
			continue
		}
		out[f] = warn.text
	}
	return out
}

func (w *Wizard) ApplicationID() string {
	return w.applicationID
}

func (w *Wizard) Status() models.ApplicationStatus {
	return w.status
}

// Mode is resubmit only for a hydrated application the backend rejected.
func (w *Wizard) Mode() Mode {
	if w.applicationID != "" && w.status.IsRejected() {
		return ModeResubmit
	}
	return ModeCreate
}

func (w *Wizard) SameAddress() bool {
	return w.sameAddress
}

// Locks returns the locked fields and the only value each accepts.
func (w *Wizard) Locks() map[Field]string {
	out := make(map[Field]string, len(w.locks))
	for f, v := range w.locks {
		out[f] = v
	}
	return out
}

func (w *Wizard) Existing() ExistingDocuments {
	return w.existing.clone()
}

// AttachedSlots lists the slots holding a file from this session.
func (w *Wizard) AttachedSlots() []Slot {
	return w.attached.Slots()
}

// Attached returns the file held for a slot, or nil.
func (w *Wizard) Attached(slot Slot) *AttachedFile {
	return w.attached[slot]
}

// FieldResult reports what happened to a single edit.
type FieldResult struct {
	Field    Field  `json:"field"`
	Accepted bool   `json:"accepted"`
	Locked   bool   `json:"locked,omitempty"`
	Warning  string `json:"warning,omitempty"`
	Error    string `json:"error,omitempty"`
}

func lockWarning(original string) string {
	return `You can only select "` + original + `" as it matches your rejected application. Changing this would cause document conflicts.`
}

// SetField applies one edit along with its derived effects. A rejected edit
// to a locked field is reported in the result, not as an error; the error
// return is only for unknown fields.
func (w *Wizard) SetField(field Field, value string) (FieldResult, error) {
	if !KnownField(field) {
		return FieldResult{Field: field}, fmt.Errorf("%w: %s", ErrUnknownField, field)
	}

	if orig, ok := w.locks[field]; ok && value != orig {
		text := lockWarning(orig)
		w.warnings[field] = warning{text: text, expires: w.now().Add(w.warningTTL)}
		return FieldResult{Field: field, Locked: true, Warning: text}, nil
	}
	delete(w.warnings, field)

	w.form[field] = value
	res := FieldResult{Field: field, Accepted: true}

	switch field {
	case FieldDOB:
		w.form[FieldAge] = ComputeAge(value, w.now())
		w.revalidate(FieldAge)
	case FieldOccupationType:
		if value == OccupationSelfEmployed {
			w.form[FieldEmployer] = ""
		}
	case FieldCurrentAddress:
		if w.sameAddress {
			w.form[FieldPermanentAddress] = value
		}
	case FieldPermanentAddress:
		if w.sameAddress && value != w.form[FieldCurrentAddress] {
			w.sameAddress = false
		}
	}

	res.Error = w.revalidate(field)
	return res, nil
}

// revalidate applies the keystroke rule for a field, if it has one.
func (w *Wizard) revalidate(field Field) string {
	msg, ok := ValidateField(field, w.form[field])
	if !ok {
		return ""
	}
	if msg == "" {
		delete(w.errors, string(field))
	} else {
		w.errors[string(field)] = msg
	}
	return msg
}

// SetSameAddress toggles address mirroring. Enabling copies the current
// address; disabling leaves the permanent address as it is.
func (w *Wizard) SetSameAddress(enabled bool) {
	w.sameAddress = enabled
	if enabled {
		w.form[FieldPermanentAddress] = w.form[FieldCurrentAddress]
	}
}

// Attach puts a file in a slot, releasing any file it replaces.
func (w *Wizard) Attach(slot Slot, file *AttachedFile) error {
	if _, ok := LookupSlot(slot); !ok {
		return fmt.Errorf("%w: %s", ErrUnknownSlot, slot)
	}
	if file == nil {
		return w.Detach(slot)
	}
	if prev := w.attached[slot]; prev != nil && prev != file {
		_ = prev.Release()
	}
	w.attached[slot] = file
	return nil
}

// Detach clears a slot. Clearing an empty slot is not an error.
func (w *Wizard) Detach(slot Slot) error {
	if _, ok := LookupSlot(slot); !ok {
		return fmt.Errorf("%w: %s", ErrUnknownSlot, slot)
	}
	if prev := w.attached[slot]; prev != nil {
		_ = prev.Release()
	}
	delete(w.attached, slot)
	return nil
}

// Advance validates the current step. On success the published errors are
// cleared and the wizard moves on, staying put on the review step. On
// failure the step is unchanged and the errors are published.
func (w *Wizard) Advance() (Step, Errors) {
	errs := Validate(w.step, w.form, w.attached, w.existing)
	if !errs.Empty() {
		w.errors = errs
		return w.step, errs.clone()
	}
	w.errors = make(Errors)
	if w.step < LastStep {
		w.step++
	}
	return w.step, Errors{}
}

// Retreat goes back one step without validating.
func (w *Wizard) Retreat() Step {
	if w.step > FirstStep {
		w.step--
	}
	return w.step
}

// Preview opens the file attached to a slot.
func (w *Wizard) Preview(slot Slot) (*Preview, error) {
	f := w.attached[slot]
	if f == nil {
		return nil, fmt.Errorf("%w: %s", ErrNoAttachment, slot)
	}
	rc, err := f.Open()
	if err != nil {
		return nil, err
	}
	return newPreview(f.Name, f.ContentType, rc), nil
}

// Reset returns to an empty first step and releases every attached file.
func (w *Wizard) Reset() {
	w.attached.releaseAll()
	w.clear()
}
