package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/thenextevent/eventdesk/internal/backend"
	"github.com/thenextevent/eventdesk/internal/models"
)

type SEOHandler struct {
	svc *backend.SEOService
}

func NewSEOHandler(svc *backend.SEOService) *SEOHandler {
	return &SEOHandler{svc: svc}
}

func (h *SEOHandler) Public(w http.ResponseWriter, r *http.Request) {
	configs, err := h.svc.Public(r.Context())
	if err != nil {
		writeErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, configs)
}

func (h *SEOHandler) ByPage(w http.ResponseWriter, r *http.Request) {
	cfg, err := h.svc.ByPage(r.Context(), chi.URLParam(r, "page"), r.URL.Query().Get("language"))
	if err != nil {
		writeErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, cfg)
}

func (h *SEOHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	items, err := h.svc.List(r.Context(), models.SEOListParams{
		Page:     queryInt(q, "page"),
		PageSize: queryInt(q, "pageSize"),
		Language: q.Get("language"),
		Search:   q.Get("search"),
	})
	if err != nil {
		writeErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

func (h *SEOHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	cfg, err := h.svc.Get(r.Context(), id)
	if err != nil {
		writeErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, cfg)
}

func (h *SEOHandler) Create(w http.ResponseWriter, r *http.Request) {
	var in models.SEOConfiguration
	if !readJSON(w, r, &in) {
		return
	}
	cfg, err := h.svc.Create(r.Context(), in)
	if err != nil {
		writeErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, cfg)
}

func (h *SEOHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	var in models.SEOConfiguration
	if !readJSON(w, r, &in) {
		return
	}
	cfg, err := h.svc.Update(r.Context(), id, in)
	if err != nil {
		writeErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, cfg)
}

func (h *SEOHandler) SetActive(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	var req struct {
		IsActive bool `json:"isActive"`
	}
	if !readJSON(w, r, &req) {
		return
	}
	if err := h.svc.SetActive(r.Context(), id, req.IsActive); err != nil {
		writeErr(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *SEOHandler) Delete(w http.ResponseWriter, r *http.Request) {
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
