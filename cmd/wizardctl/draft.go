package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"loan-wizard/internal/models"
	"loan-wizard/internal/wizard"
)

// now is swapped in tests so derived ages are stable.
var now = time.Now

type draftRef struct {
	ID           int    `yaml:"id"`
	DocumentType string `yaml:"documentType"`
}

type draftFile struct {
	Form      map[string]string     `yaml:"form"`
	Documents []string              `yaml:"documents"`
	Existing  map[string][]draftRef `yaml:"existing"`
}

// draft is a parsed draft file in wizard terms.
type draft struct {
	form     wizard.Form
	attached wizard.SlotNames
	existing wizard.ExistingDocuments
}

func loadDraft(path string) (*draft, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read draft: %w", err)
	}
	return parseDraft(data)
}

func parseDraft(data []byte) (*draft, error) {
	var f draftFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse draft: %w", err)
	}

	for k := range f.Form {
		if !wizard.KnownField(wizard.Field(k)) {
			return nil, fmt.Errorf("unknown field %q", k)
		}
	}
	form := wizard.FormFromMap(f.Form)
	if !form.Filled(wizard.FieldAge) {
		form[wizard.FieldAge] = wizard.ComputeAge(form.Get(wizard.FieldDOB), now())
	}

	d := &draft{form: form, attached: make(wizard.SlotNames)}
	for _, name := range f.Documents {
		slot := wizard.Slot(name)
		if _, ok := wizard.LookupSlot(slot); !ok {
			return nil, fmt.Errorf("unknown document slot %q", name)
		}
		d.attached[slot] = true
	}

	for name, refs := range f.Existing {
		slot := wizard.Slot(name)
		spec, ok := wizard.LookupSlot(slot)
		if !ok {
			return nil, fmt.Errorf("unknown document slot %q", name)
		}
		if d.existing == nil {
			d.existing = make(wizard.ExistingDocuments)
		}
		for _, r := range refs {
			docType := models.DocumentType(strings.ToUpper(strings.TrimSpace(r.DocumentType)))
			if docType == "" {
				docType = spec.DocumentType
			}
			d.existing[slot] = append(d.existing[slot], models.DocumentRef{ID: r.ID, DocumentType: docType})
		}
	}
	return d, nil
}
