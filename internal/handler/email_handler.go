package handler

import (
	"net/http"

	"github.com/thenextevent/eventdesk/internal/backend"
	"github.com/thenextevent/eventdesk/internal/models"
)

type EmailHandler struct {
	svc *backend.EmailService
}

func NewEmailHandler(svc *backend.EmailService) *EmailHandler {
	return &EmailHandler{svc: svc}
}

func (h *EmailHandler) Send(w http.ResponseWriter, r *http.Request) {
	var msg models.EmailMessage
	if !readJSON(w, r, &msg) {
		return
	}
	res, err := h.svc.Send(r.Context(), msg)
	if err != nil {
		writeErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *EmailHandler) SendTemplate(w http.ResponseWriter, r *http.Request) {
	var req models.TemplateEmail
	if !readJSON(w, r, &req) {
		return
	}
	res, err := h.svc.SendTemplate(r.Context(), req)
	if err != nil {
		writeErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *EmailHandler) SendBulk(w http.ResponseWriter, r *http.Request) {
	var req models.BulkEmail
	if !readJSON(w, r, &req) {
		return
	}
	res, err := h.svc.SendBulk(r.Context(), req)
	if err != nil {
		writeErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *EmailHandler) Templates(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	items, err := h.svc.Templates(r.Context(), models.TemplateListParams{
		Page:     queryInt(q, "page"),
		PageSize: queryInt(q, "pageSize"),
		Language: q.Get("language"),
		Category: q.Get("category"),
		Search:   q.Get("search"),
	})
	if err != nil {
		writeErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

func (h *EmailHandler) Template(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	tpl, err := h.svc.Template(r.Context(), id)
	if err != nil {
		writeErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, tpl)
}

func (h *EmailHandler) CreateTemplate(w http.ResponseWriter, r *http.Request) {
	var in models.EmailTemplate
	if !readJSON(w, r, &in) {
		return
	}
	tpl, err := h.svc.CreateTemplate(r.Context(), in)
	if err != nil {
		writeErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, tpl)
}

func (h *EmailHandler) UpdateTemplate(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	var in models.EmailTemplate
	if !readJSON(w, r, &in) {
		return
	}
	tpl, err := h.svc.UpdateTemplate(r.Context(), id, in)
	if err != nil {
		writeErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, tpl)
}

func (h *EmailHandler) DeleteTemplate(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	if err := h.svc.DeleteTemplate(r.Context(), id); err != nil {
		writeErr(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *EmailHandler) Logs(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	items, err := h.svc.Logs(r.Context(), models.EmailLogParams{
		Page:      queryInt(q, "page"),
		PageSize:  queryInt(q, "pageSize"),
		Status:    q.Get("status"),
		Recipient: q.Get("recipient"),
		DateFrom:  q.Get("dateFrom"),
		DateTo:    q.Get("dateTo"),
	})
	if err != nil {
		writeErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

func (h *EmailHandler) Log(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	entry, err := h.svc.Log(r.Context(), id)
	if err != nil {
		writeErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, entry)
}

func (h *EmailHandler) Resend(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	res, err := h.svc.Resend(r.Context(), id)
	if err != nil {
		writeErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *EmailHandler) Statistics(w http.ResponseWriter, r *http.Request) {
	stats, err := h.svc.Statistics(r.Context(), r.URL.Query().Get("period"))
	if err != nil {
		writeErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (h *EmailHandler) StatusWebhook(w http.ResponseWriter, r *http.Request) {
	var ev models.StatusEvent
	if !readJSON(w, r, &ev) {
		return
	}
	if err := h.svc.HandleStatus(r.Context(), ev); err != nil {
		writeErr(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *EmailHandler) BounceWebhook(w http.ResponseWriter, r *http.Request) {
	var ev models.BounceEvent
	if !readJSON(w, r, &ev) {
		return
	}
	if err := h.svc.HandleBounce(r.Context(), ev); err != nil {
		writeErr(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *EmailHandler) ComplaintWebhook(w http.ResponseWriter, r *http.Request) {
	var ev models.ComplaintEvent
	if !readJSON(w, r, &ev) {
		return
	}
	if err := h.svc.HandleComplaint(r.Context(), ev); err != nil {
		writeErr(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
