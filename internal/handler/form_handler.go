package handler

import (
	"io"
	"log/slog"
	"net/http"

	"github.com/thenextevent/eventdesk/internal/backend"
	"github.com/thenextevent/eventdesk/internal/models"
	"github.com/thenextevent/eventdesk/internal/ratelimit"
)

// FormHandler serves the public submit endpoint and the /forms staff API.
type FormHandler struct {
	svc     *backend.SubmissionService
	limiter ratelimit.Limiter
}

func NewFormHandler(svc *backend.SubmissionService, limiter ratelimit.Limiter) *FormHandler {
	return &FormHandler{svc: svc, limiter: limiter}
}

func (h *FormHandler) Submit(w http.ResponseWriter, r *http.Request) {
	allowed, err := h.limiter.Allow(r.Context(), "submit:"+clientIP(r))
	if err != nil {
		// Fail open when the limiter backend is unreachable.
		slog.WarnContext(r.Context(), "rate limiter unavailable", "error", err)
		allowed = true
	}
	if !allowed {
		writeError(w, http.StatusTooManyRequests, "too many submissions, try again later")
		return
	}

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	payload, err := models.UnmarshalPayload(body)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	sub, err := h.svc.Submit(r.Context(), payload)
	if err != nil {
		writeErr(w, r, err)
		return
	}
	slog.InfoContext(r.Context(), "submission received", "id", sub.ID, "form_type", sub.FormType)
	writeJSON(w, http.StatusCreated, sub)
}

func formFilters(r *http.Request) models.DashboardFilters {
	q := r.URL.Query()
	return models.FormListParams{
		Page:     queryInt(q, "page"),
		PageSize: queryInt(q, "pageSize"),
		FormType: q.Get("formType"),
		Status:   q.Get("status"),
		DateFrom: q.Get("dateFrom"),
		DateTo:   q.Get("dateTo"),
		Search:   q.Get("search"),
	}.Filters()
}

func (h *FormHandler) List(w http.ResponseWriter, r *http.Request) {
	page, err := h.svc.List(r.Context(), formFilters(r))
	if err != nil {
		writeErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, models.Items(page))
}

func (h *FormHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	sub, err := h.svc.Get(r.Context(), id)
	if err != nil {
		writeErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, sub)
}

func (h *FormHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	var req models.StatusUpdate
	if !readJSON(w, r, &req) {
		return
	}
	if !req.Status.Valid() {
		writeError(w, http.StatusBadRequest, "unknown status")
		return
	}
	sub, err := h.svc.UpdateStatus(r.Context(), id, req.Status, req.AdminNotes)
	if err != nil {
		writeErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, sub)
}

// UpdateReadStatus takes a bare JSON boolean body.
func (h *FormHandler) UpdateReadStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	var isRead bool
	if !readJSON(w, r, &isRead) {
		return
	}
	if err := h.svc.SetRead(r.Context(), id, isRead); err != nil {
		writeErr(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *FormHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	if err := h.svc.Delete(r.Context(), id); err != nil {
		writeErr(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *FormHandler) ExportCSV(w http.ResponseWriter, r *http.Request) {
	blob, err := h.svc.Export(r.Context(), formFilters(r), models.ExportCSV)
	if err != nil {
		writeErr(w, r, err)
		return
	}
	writeBlob(w, blob)
}

func (h *FormHandler) Statistics(w http.ResponseWriter, r *http.Request) {
	stats, err := h.svc.Statistics(r.Context(), models.FormType(r.URL.Query().Get("formType")))
	if err != nil {
		writeErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (h *FormHandler) DailyCounts(w http.ResponseWriter, r *http.Request) {
	counts, err := h.svc.DailyCounts(r.Context(), queryInt(r.URL.Query(), "days"))
	if err != nil {
		writeErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, counts)
}

func (h *FormHandler) BulkUpdate(w http.ResponseWriter, r *http.Request) {
	var req models.BulkStatusUpdate
	if !readJSON(w, r, &req) {
		return
	}
	if !req.Status.Valid() {
		writeError(w, http.StatusBadRequest, "unknown status")
		return
	}
	if err := h.svc.UpdateStatusMany(r.Context(), req.FormIDs, req.Status, req.AdminNotes); err != nil {
		writeErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"updated": len(req.FormIDs)})
}

func (h *FormHandler) BulkDelete(w http.ResponseWriter, r *http.Request) {
	var req models.BulkDelete
	if !readJSON(w, r, &req) {
		return
	}
	if err := h.svc.DeleteMany(r.Context(), req.FormIDs); err != nil {
		writeErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"deleted": len(req.FormIDs)})
}
