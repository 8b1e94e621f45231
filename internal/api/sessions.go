package api

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	apperrors "loan-wizard/internal/common/errors"
	"loan-wizard/internal/common/metrics"
	"loan-wizard/internal/wizard"
)

type createSessionRequest struct {
	ApplicationID string `json:"applicationId"`
}

type fieldChange struct {
	Field string `json:"field"`
	Value string `json:"value"`
}

type setFieldsRequest struct {
	Changes []fieldChange `json:"changes"`
}

type setFieldsResponse struct {
	Results []wizard.FieldResult `json:"results"`
	State   stateView            `json:"state"`
}

type sameAddressRequest struct {
	Enabled bool `json:"enabled"`
}

type stepResponse struct {
	Advanced bool      `json:"advanced"`
	State    stateView `json:"state"`
}

type submitRequest struct {
	Confirmed bool `json:"confirmed"`
}

func (h *Handler) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	var req createSessionRequest
	if r.ContentLength != 0 {
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, err)
			return
		}
	}

	var wz *wizard.Wizard
	if req.ApplicationID != "" {
		resumed, err := wizard.Resume(r.Context(), h.backend(token(r)), req.ApplicationID, h.sessions.WizardOptions()...)
		if err != nil {
			h.requestLog(r).Warn("Hydration failed", map[string]interface{}{
				"applicationId": req.ApplicationID,
				"error":         err.Error(),
			})
			writeError(w, err)
			return
		}
		wz = resumed
	}

	s := h.sessions.Create(r.Context(), wz)
	var view stateView
	_ = h.sessions.View(r.Context(), s.ID, func(wz *wizard.Wizard) error {
		view = newStateView(s.ID, wz)
		return nil
	})
	writeJSON(w, http.StatusCreated, view)
}

func (h *Handler) handleGetSession(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "sessionID")
	var view stateView
	err := h.sessions.View(r.Context(), id, func(wz *wizard.Wizard) error {
		view = newStateView(id, wz)
		return nil
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (h *Handler) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	if err := h.sessions.Delete(r.Context(), chi.URLParam(r, "sessionID")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleSetFields applies changes in order. An unknown field aborts the
// remaining changes; earlier ones stay applied.
func (h *Handler) handleSetFields(w http.ResponseWriter, r *http.Request) {
	var req setFieldsRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	id := chi.URLParam(r, "sessionID")
	log := h.requestLog(r)
	var resp setFieldsResponse
	err := h.sessions.Do(r.Context(), id, func(wz *wizard.Wizard) error {
		resp.Results = make([]wizard.FieldResult, 0, len(req.Changes))
		for _, c := range req.Changes {
			res, err := wz.SetField(wizard.Field(c.Field), c.Value)
			if err != nil {
				return err
			}
			if res.Locked {
				metrics.WizardLockRejections.WithLabelValues(c.Field).Inc()
				lockErr := apperrors.NewFieldLockedError(c.Field, wz.Locks()[wizard.Field(c.Field)])
				log.Info("Locked field change rejected", map[string]interface{}{
					"field":     c.Field,
					"code":      string(lockErr.Code),
					"details":   lockErr.Details,
					"attempted": c.Value,
				})
			}
			resp.Results = append(resp.Results, res)
		}
		resp.State = newStateView(id, wz)
		return nil
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) handleSameAddress(w http.ResponseWriter, r *http.Request) {
	var req sameAddressRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	h.mutate(w, r, func(wz *wizard.Wizard) error {
		wz.SetSameAddress(req.Enabled)
		return nil
	})
}

func (h *Handler) handleAttach(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "sessionID")
	slot := wizard.Slot(chi.URLParam(r, "slot"))
	if _, ok := wizard.LookupSlot(slot); !ok {
		writeError(w, apperrors.NewInvalidRequestError("unknown document slot: "+string(slot)))
		return
	}
	// The session must exist before anything is written to disk.
	if err := h.sessions.View(r.Context(), id, func(*wizard.Wizard) error { return nil }); err != nil {
		writeError(w, err)
		return
	}

	src, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, apperrors.NewInvalidRequestError("multipart field 'file' is required"))
		return
	}
	defer src.Close()

	contentType := header.Header.Get("Content-Type")
	if err := h.sessions.Attach(r.Context(), id, slot, header.Filename, contentType, src); err != nil {
		h.requestLog(r).Warn("Attach failed", map[string]interface{}{"slot": string(slot), "error": err.Error()})
		writeError(w, err)
		return
	}
	h.handleGetSession(w, r)
}

func (h *Handler) handleDetach(w http.ResponseWriter, r *http.Request) {
	slot := wizard.Slot(chi.URLParam(r, "slot"))
	h.mutate(w, r, func(wz *wizard.Wizard) error {
		return wz.Detach(slot)
	})
}

func (h *Handler) handleAdvance(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "sessionID")
	var resp stepResponse
	err := h.sessions.Do(r.Context(), id, func(wz *wizard.Wizard) error {
		from := wz.Step()
		to, errs := wz.Advance()
		resp.Advanced = errs.Empty()
		outcome := "advanced"
		if !resp.Advanced {
			outcome = "blocked"
		} else if to == from {
			outcome = "stayed"
		}
		metrics.WizardStepTransitions.WithLabelValues(from.String(), outcome).Inc()
		resp.State = newStateView(id, wz)
		return nil
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) handleRetreat(w http.ResponseWriter, r *http.Request) {
	h.mutate(w, r, func(wz *wizard.Wizard) error {
		wz.Retreat()
		return nil
	})
}

func (h *Handler) handleReview(w http.ResponseWriter, r *http.Request) {
	var summary wizard.ReviewSummary
	err := h.sessions.View(r.Context(), chi.URLParam(r, "sessionID"), func(wz *wizard.Wizard) error {
		summary = wz.Review()
		return nil
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

func (h *Handler) handleSubmit(w http.ResponseWriter, r *http.Request) {
	var req submitRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	id := chi.URLParam(r, "sessionID")
	opts := []wizard.SubmitterOption{wizard.WithObservability(h.obs)}
	for _, l := range h.listeners {
		opts = append(opts, wizard.WithListener(l))
	}
	submitter := wizard.NewSubmitter(h.backend(token(r)), h.requestLog(r), opts...)

	var (
		result      *wizard.SubmitResult
		fieldErrors wizard.Errors
	)
	err := h.sessions.Do(r.Context(), id, func(wz *wizard.Wizard) error {
		var err error
		result, err = submitter.Submit(r.Context(), wz, req.Confirmed)
		if err != nil {
			fieldErrors = wz.Errors()
		}
		return err
	})
	if err != nil {
		var se *apperrors.StandardError
		if errors.As(err, &se) && se.Code == apperrors.ErrCodeValidationFailed {
			writeErrorWith(w, err, fieldErrors)
			return
		}
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *Handler) handlePreviewAttached(w http.ResponseWriter, r *http.Request) {
	slot := wizard.Slot(chi.URLParam(r, "slot"))
	var preview *wizard.Preview
	err := h.sessions.View(r.Context(), chi.URLParam(r, "sessionID"), func(wz *wizard.Wizard) error {
		var err error
		preview, err = wz.Preview(slot)
		return err
	})
	if err != nil {
		writeError(w, err)
		return
	}
	streamPreview(w, preview)
}

func (h *Handler) handlePreviewStored(w http.ResponseWriter, r *http.Request) {
	docID, err := strconv.Atoi(chi.URLParam(r, "documentID"))
	if err != nil || docID <= 0 {
		writeError(w, apperrors.NewInvalidRequestError("documentId must be a positive integer"))
		return
	}
	preview, err := wizard.OpenExisting(r.Context(), h.backend(token(r)), docID, "document-"+strconv.Itoa(docID))
	if err != nil {
		writeError(w, err)
		return
	}
	streamPreview(w, preview)
}

func streamPreview(w http.ResponseWriter, p *wizard.Preview) {
	defer p.Close()
	contentType := p.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", `inline; filename="`+p.Name+`"`)
	w.WriteHeader(http.StatusOK)
	_, _ = io.Copy(w, p)
}

// mutate runs fn on the session and answers with the resulting state.
func (h *Handler) mutate(w http.ResponseWriter, r *http.Request, fn func(*wizard.Wizard) error) {
	id := chi.URLParam(r, "sessionID")
	var view stateView
	err := h.sessions.Do(r.Context(), id, func(wz *wizard.Wizard) error {
		if err := fn(wz); err != nil {
			return err
		}
		view = newStateView(id, wz)
		return nil
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}
