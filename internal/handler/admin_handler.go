package handler

import (
	"net/http"

	"github.com/thenextevent/eventdesk/internal/backend"
	"github.com/thenextevent/eventdesk/internal/models"
)

// AdminHandler serves the dashboard endpoints under /admin.
type AdminHandler struct {
	dash  *backend.DashboardService
	forms *backend.SubmissionService
	email *backend.EmailService
}

func NewAdminHandler(dash *backend.DashboardService, forms *backend.SubmissionService, email *backend.EmailService) *AdminHandler {
	return &AdminHandler{dash: dash, forms: forms, email: email}
}

func (h *AdminHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.dash.Stats(r.Context())
	if err != nil {
		writeErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (h *AdminHandler) Submissions(w http.ResponseWriter, r *http.Request) {
	page, err := h.forms.List(r.Context(), dashboardFilters(r.URL.Query()))
	if err != nil {
		writeErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

func (h *AdminHandler) Submission(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	sub, err := h.forms.Get(r.Context(), id)
	if err != nil {
		writeErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, sub)
}

func (h *AdminHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	var req struct {
		Status models.Status `json:"status"`
		Notes  string        `json:"notes"`
	}
	if !readJSON(w, r, &req) {
		return
	}
	if !req.Status.Valid() {
		writeError(w, http.StatusBadRequest, "unknown status")
		return
	}
	sub, err := h.forms.UpdateStatus(r.Context(), id, req.Status, req.Notes)
	if err != nil {
		writeErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, sub)
}

func (h *AdminHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	if err := h.forms.SetRead(r.Context(), id, true); err != nil {
		writeErr(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *AdminHandler) Assign(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	var req struct {
		AssignedTo string `json:"assignedTo"`
	}
	if !readJSON(w, r, &req) {
		return
	}
	if err := h.forms.Assign(r.Context(), id, req.AssignedTo); err != nil {
		writeErr(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *AdminHandler) AddNote(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	var req struct {
		Note string `json:"note"`
	}
	if !readJSON(w, r, &req) {
		return
	}
	if err := h.forms.AddNote(r.Context(), id, req.Note); err != nil {
		writeErr(w, r, err)
		return
	}
	w.WriteHeader(http.StatusCreated)
}

func (h *AdminHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	if err := h.forms.Delete(r.Context(), id); err != nil {
		writeErr(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *AdminHandler) Export(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	f := dashboardFilters(q)
	f.Page, f.Limit = 0, 0
	blob, err := h.forms.Export(r.Context(), f, models.ExportFormat(q.Get("format")))
	if err != nil {
		writeErr(w, r, err)
		return
	}
	writeBlob(w, blob)
}

func (h *AdminHandler) Users(w http.ResponseWriter, r *http.Request) {
	users, err := h.dash.Users(r.Context())
	if err != nil {
		writeErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, users)
}

func (h *AdminHandler) Analytics(w http.ResponseWriter, r *http.Request) {
	data, err := h.dash.Analytics(r.Context(), r.URL.Query().Get("period"))
	if err != nil {
		writeErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, data)
}

// Reply emails the submitter. The language comes from ?lang and defaults
// to Arabic.
func (h *AdminHandler) Reply(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	var reply models.Reply
	if !readJSON(w, r, &reply) {
		return
	}
	sub, err := h.forms.Get(r.Context(), id)
	if err != nil {
		writeErr(w, r, err)
		return
	}
	lang := r.URL.Query().Get("lang")
	if lang == "" {
		lang = backend.DefaultLanguage
	}
	res, err := h.email.Reply(r.Context(), sub, reply, lang)
	if err != nil {
		writeErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}
