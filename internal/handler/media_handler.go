package handler

import (
	"mime/multipart"
	"net/http"
	"sort"

	"github.com/thenextevent/eventdesk/internal/auth"
	"github.com/thenextevent/eventdesk/internal/backend"
	"github.com/thenextevent/eventdesk/internal/models"
)

type MediaHandler struct {
	svc      *backend.MediaService
	maxBytes int64
}

func NewMediaHandler(svc *backend.MediaService, maxBytes int64) *MediaHandler {
	return &MediaHandler{svc: svc, maxBytes: maxBytes}
}

// parseForm bounds the whole request at limit plus room for the form
// fields.
func (h *MediaHandler) parseForm(w http.ResponseWriter, r *http.Request, limit int64) bool {
	r.Body = http.MaxBytesReader(w, r.Body, limit+maxBodyBytes)
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart form")
		return false
	}
	return true
}

func (h *MediaHandler) Upload(w http.ResponseWriter, r *http.Request) {
	if !h.parseForm(w, r, h.maxBytes) {
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "file is required")
		return
	}
	defer file.Close()

	claims := auth.GetUser(r.Context())
	f, err := h.svc.Upload(r.Context(), backend.Upload{
		Name:        header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Body:        file,
	}, r.FormValue("category"), r.FormValue("altText"), claims.UserID)
	if err != nil {
		writeErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, f)
}

// UploadMultiple accepts every file part in the form, in field-name order.
func (h *MediaHandler) UploadMultiple(w http.ResponseWriter, r *http.Request) {
	if !h.parseForm(w, r, 10*h.maxBytes) {
		return
	}
	defer r.MultipartForm.RemoveAll()

	fields := make([]string, 0, len(r.MultipartForm.File))
	for field := range r.MultipartForm.File {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	var (
		ups   []backend.Upload
		files []multipart.File
	)
	defer func() {
		for _, f := range files {
			f.Close()
		}
	}()
	for _, field := range fields {
		for _, fh := range r.MultipartForm.File[field] {
			f, err := fh.Open()
			if err != nil {
				writeError(w, http.StatusBadRequest, "unreadable file "+fh.Filename)
				return
			}
			files = append(files, f)
			ups = append(ups, backend.Upload{Name: fh.Filename, ContentType: fh.Header.Get("Content-Type"), Body: f})
		}
	}

	claims := auth.GetUser(r.Context())
	out, err := h.svc.UploadMultiple(r.Context(), ups, r.FormValue("category"), claims.UserID)
	if err != nil {
		writeErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, out)
}

func (h *MediaHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	items, err := h.svc.List(r.Context(), models.MediaListParams{
		Page:     queryInt(q, "page"),
		PageSize: queryInt(q, "pageSize"),
		Category: q.Get("category"),
		FileType: q.Get("fileType"),
		Search:   q.Get("search"),
	})
	if err != nil {
		writeErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

func (h *MediaHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	f, err := h.svc.Get(r.Context(), id)
	if err != nil {
		writeErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, f)
}

func (h *MediaHandler) Public(w http.ResponseWriter, r *http.Request) {
	files, err := h.svc.Public(r.Context(), r.URL.Query().Get("category"))
	if err != nil {
		writeErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, files)
}

func (h *MediaHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	var upd models.MediaUpdate
	if !readJSON(w, r, &upd) {
		return
	}
	f, err := h.svc.Update(r.Context(), id, upd)
	if err != nil {
		writeErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, f)
}

func (h *MediaHandler) Delete(w http.ResponseWriter, r *http.Request) {
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

func (h *MediaHandler) BulkDelete(w http.ResponseWriter, r *http.Request) {
	var req struct {
		FileIDs []int64 `json:"fileIds"`
	}
	if !readJSON(w, r, &req) {
		return
	}
	if err := h.svc.DeleteMany(r.Context(), req.FileIDs); err != nil {
		writeErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"deleted": len(req.FileIDs)})
}

func (h *MediaHandler) SetPublic(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	var req struct {
		IsPublic bool `json:"isPublic"`
	}
	if !readJSON(w, r, &req) {
		return
	}
	if err := h.svc.SetPublic(r.Context(), id, req.IsPublic); err != nil {
		writeErr(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *MediaHandler) Statistics(w http.ResponseWriter, r *http.Request) {
	stats, err := h.svc.Statistics(r.Context())
	if err != nil {
		writeErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}
