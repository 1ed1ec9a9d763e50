package handler

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/thenextevent/eventdesk/internal/backend"
	"github.com/thenextevent/eventdesk/internal/models"
)

type ContentHandler struct {
	svc *backend.ContentService
}

func NewContentHandler(svc *backend.ContentService) *ContentHandler {
	return &ContentHandler{svc: svc}
}

func (h *ContentHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	p := models.ContentListParams{
		Page:       queryInt(q, "page"),
		PageSize:   queryInt(q, "pageSize"),
		Language:   q.Get("language"),
		SectionKey: q.Get("sectionKey"),
		ContentKey: q.Get("contentKey"),
	}
	if v, err := strconv.ParseBool(q.Get("isActive")); err == nil {
		p.IsActive = &v
	}
	items, err := h.svc.List(r.Context(), p)
	if err != nil {
		writeErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

func (h *ContentHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	item, err := h.svc.Get(r.Context(), id)
	if err != nil {
		writeErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, item)
}

func (h *ContentHandler) ByKey(w http.ResponseWriter, r *http.Request) {
	item, err := h.svc.ByKey(r.Context(), chi.URLParam(r, "key"), r.URL.Query().Get("lang"))
	if err != nil {
		writeErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, item)
}

func (h *ContentHandler) ByLanguage(w http.ResponseWriter, r *http.Request) {
	items, err := h.svc.ByLanguage(r.Context(), chi.URLParam(r, "lang"))
	if err != nil {
		writeErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

func (h *ContentHandler) BySection(w http.ResponseWriter, r *http.Request) {
	items, err := h.svc.BySection(r.Context(), chi.URLParam(r, "section"))
	if err != nil {
		writeErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

func (h *ContentHandler) Create(w http.ResponseWriter, r *http.Request) {
	var in models.ContentInput
	if !readJSON(w, r, &in) {
		return
	}
	item, err := h.svc.Create(r.Context(), in)
	if err != nil {
		writeErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, item)
}

func (h *ContentHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	var in models.ContentInput
	if !readJSON(w, r, &in) {
		return
	}
	item, err := h.svc.Update(r.Context(), id, in)
	if err != nil {
		writeErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, item)
}

func (h *ContentHandler) Delete(w http.ResponseWriter, r *http.Request) {
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

func (h *ContentHandler) SortOrder(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	var req struct {
		SortOrder int `json:"sortOrder"`
	}
	if !readJSON(w, r, &req) {
		return
	}
	if err := h.svc.SetSortOrder(r.Context(), id, req.SortOrder); err != nil {
		writeErr(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *ContentHandler) ToggleActive(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	item, err := h.svc.ToggleActive(r.Context(), id)
	if err != nil {
		writeErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, item)
}

func (h *ContentHandler) BulkUpdate(w http.ResponseWriter, r *http.Request) {
	var items []models.ContentInput
	if !readJSON(w, r, &items) {
		return
	}
	out, err := h.svc.BulkUpdate(r.Context(), items)
	if err != nil {
		writeErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}
