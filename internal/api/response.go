package api

import (
	"encoding/json"
	"errors"
	"net/http"

	apperrors "loan-wizard/internal/common/errors"
	"loan-wizard/internal/models"
	"loan-wizard/internal/session"
	"loan-wizard/internal/wizard"
)

type errorBody struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Details string            `json:"details,omitempty"`
	Errors  map[string]string `json:"errors,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// toStandard maps package sentinels onto the API error vocabulary.
func toStandard(err error) *apperrors.StandardError {
	switch {
	case errors.Is(err, wizard.ErrUnknownField):
		return apperrors.NewInvalidRequestError(err.Error())
	case errors.Is(err, wizard.ErrUnknownSlot):
		return apperrors.NewInvalidRequestError(err.Error())
	case errors.Is(err, wizard.ErrNoAttachment):
		return apperrors.NewResourceNotFoundError("session", err.Error())
	case errors.Is(err, wizard.ErrNotOnReviewStep):
		return apperrors.NewBusinessRuleError("Submission is only possible from the review step", err.Error())
	case errors.Is(err, wizard.ErrConfirmationRequired):
		return apperrors.NewInvalidRequestError("confirmed must be true")
	case errors.Is(err, session.ErrFileTooLarge):
		return apperrors.NewUnsupportedUploadError(err.Error())
	}
	return apperrors.Normalize(err)
}

func statusFor(se *apperrors.StandardError) int {
	if se.Code == apperrors.ErrCodeUnsupportedUpload {
		return http.StatusRequestEntityTooLarge
	}
	return apperrors.HTTPStatus(se.Code)
}

func writeError(w http.ResponseWriter, err error) {
	writeErrorWith(w, err, nil)
}

// writeErrorWith adds the field error map, used when a step gate failed.
func writeErrorWith(w http.ResponseWriter, err error, fieldErrors wizard.Errors) {
	se := toStandard(err)
	body := errorBody{Code: string(se.Code), Message: se.Message, Details: se.Details}
	if len(fieldErrors) > 0 {
		body.Errors = fieldErrors
	}
	writeJSON(w, statusFor(se), body)
}

func decodeJSON(r *http.Request, v interface{}) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return apperrors.NewInvalidRequestError("invalid request body: " + err.Error())
	}
	return nil
}

type attachedView struct {
	Slot        wizard.Slot `json:"slot"`
	FileName    string      `json:"fileName"`
	ContentType string      `json:"contentType,omitempty"`
	Size        int64       `json:"size"`
}

type stateView struct {
	SessionID     string                   `json:"sessionId"`
	Step          int                      `json:"step"`
	StepName      string                   `json:"stepName"`
	Mode          wizard.Mode              `json:"mode"`
	ApplicationID string                   `json:"applicationId,omitempty"`
	Status        models.ApplicationStatus `json:"status,omitempty"`
	Form          map[string]string        `json:"form"`
	Errors        map[string]string        `json:"errors"`
	Warnings      map[wizard.Field]string  `json:"warnings"`
	SameAddress   bool                     `json:"sameAddress"`
	Locks         map[wizard.Field]string  `json:"locks"`
	Attached      []attachedView           `json:"attached"`
	Existing      []wizard.Slot            `json:"existing"`
}

func newStateView(id string, w *wizard.Wizard) stateView {
	v := stateView{
		SessionID:     id,
		Step:          int(w.Step()),
		StepName:      w.Step().String(),
		Mode:          w.Mode(),
		ApplicationID: w.ApplicationID(),
		Status:        w.Status(),
		Form:          w.Form().Map(),
		Errors:        w.Errors(),
		Warnings:      w.Warnings(),
		SameAddress:   w.SameAddress(),
		Locks:         w.Locks(),
		Attached:      []attachedView{},
		Existing:      w.Existing().Slots(),
	}
	if v.Existing == nil {
		v.Existing = []wizard.Slot{}
	}
	for _, slot := range w.AttachedSlots() {
		f := w.Attached(slot)
		v.Attached = append(v.Attached, attachedView{Slot: slot, FileName: f.Name, ContentType: f.ContentType, Size: f.Size})
	}
	return v
}
