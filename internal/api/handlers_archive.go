package api

import (
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"

	archivedto "prodman/internal/modules/archive/dto"
	archivein "prodman/internal/modules/archive/port/in"
)

// ArchiveHandler serves templates and recorded history.
type ArchiveHandler struct {
	archive archivein.Usecase
}

func NewArchiveHandler(archive archivein.Usecase) *ArchiveHandler {
	return &ArchiveHandler{archive: archive}
}

func templateID(r *http.Request) string {
	raw := chi.URLParam(r, "id")
	if v, err := url.PathUnescape(raw); err == nil {
		return v
	}
	return raw
}

// ListTemplates handles GET /templates
func (h *ArchiveHandler) ListTemplates(w http.ResponseWriter, r *http.Request) {
	out, err := h.archive.ListTemplates(r.Context())
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

// GetTemplate handles GET /templates/{id}
func (h *ArchiveHandler) GetTemplate(w http.ResponseWriter, r *http.Request) {
	out, err := h.archive.GetTemplate(r.Context(), templateID(r))
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

type templateRequest struct {
	Blocks []archivedto.Block `json:"blocks"`
}

// PutTemplate handles PUT /templates/{id}. An unusable name is reported in
// the body with 422 rather than as a transport error.
func (h *ArchiveHandler) PutTemplate(w http.ResponseWriter, r *http.Request) {
	var req templateRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	out, err := h.archive.SaveTemplate(r.Context(), archivedto.SaveTemplateInput{ID: templateID(r), Blocks: req.Blocks})
	if err != nil {
		writeErr(w, err)
		return
	}
	status := http.StatusOK
	if out.Result == "invalid_name" {
		status = http.StatusUnprocessableEntity
	}
	writeJSON(w, status, out)
}

// DeleteTemplate handles DELETE /templates/{id}
func (h *ArchiveHandler) DeleteTemplate(w http.ResponseWriter, r *http.Request) {
	if err := h.archive.DeleteTemplate(r.Context(), templateID(r)); err != nil {
		writeErr(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListHistory handles GET /history?from=&to=
func (h *ArchiveHandler) ListHistory(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	out, err := h.archive.QueryHistory(r.Context(), archivedto.HistoryQuery{From: q.Get("from"), To: q.Get("to")})
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

// GetHistory handles GET /history/{date}/{id}; the response is the summary.
func (h *ArchiveHandler) GetHistory(w http.ResponseWriter, r *http.Request) {
	key, err := archivedto.ParseHistoryKey(chi.URLParam(r, "date") + "#" + chi.URLParam(r, "id"))
	if err != nil {
		writeErr(w, err)
		return
	}
	out, err := h.archive.SummarizeHistory(r.Context(), key)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

type deleteHistoryRequest struct {
	Keys []archivedto.HistoryKey `json:"keys"`
}

// DeleteHistory handles DELETE /history
func (h *ArchiveHandler) DeleteHistory(w http.ResponseWriter, r *http.Request) {
	var req deleteHistoryRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	n, err := h.archive.DeleteHistory(r.Context(), req.Keys)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"deleted": n})
}
