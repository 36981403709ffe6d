package api

import (
	"net/http"

	trackerdto "prodman/internal/modules/tracker/dto"
	trackerin "prodman/internal/modules/tracker/port/in"
)

// SessionHandler drives the tracker: schedule, session lifecycle and commands.
type SessionHandler struct {
	tracker trackerin.Usecase
}

func NewSessionHandler(tracker trackerin.Usecase) *SessionHandler {
	return &SessionHandler{tracker: tracker}
}

type deployRequest struct {
	Blocks         []trackerdto.Block `json:"blocks"`
	SkipIncomplete bool               `json:"skip_incomplete"`
	Template       string             `json:"template"`
}

// PutSchedule handles PUT /schedule
func (h *SessionHandler) PutSchedule(w http.ResponseWriter, r *http.Request) {
	var req deployRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	var (
		out trackerdto.ScheduleOutput
		err error
	)
	switch {
	case req.Template != "" && len(req.Blocks) > 0:
		writeError(w, http.StatusBadRequest, "give either blocks or template, not both")
		return
	case req.Template != "":
		out, err = h.tracker.DeployTemplate(r.Context(), req.Template)
	default:
		out, err = h.tracker.Deploy(r.Context(), trackerdto.DeployInput{Blocks: req.Blocks, SkipIncomplete: req.SkipIncomplete})
	}
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

// GetSchedule handles GET /schedule
func (h *SessionHandler) GetSchedule(w http.ResponseWriter, r *http.Request) {
	out, err := h.tracker.Schedule(r.Context())
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

// Start handles POST /session/start
func (h *SessionHandler) Start(w http.ResponseWriter, r *http.Request) {
	out, err := h.tracker.Start(r.Context())
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, out)
}

type commandRequest struct {
	Command string `json:"command"`
}

// Command handles POST /session/commands
func (h *SessionHandler) Command(w http.ResponseWriter, r *http.Request) {
	var req commandRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if req.Command == "" {
		writeError(w, http.StatusBadRequest, "command is required")
		return
	}
	if err := h.tracker.Submit(r.Context(), req.Command); err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]string{"command": req.Command})
}

// Progress handles GET /session/progress
func (h *SessionHandler) Progress(w http.ResponseWriter, r *http.Request) {
	out, err := h.tracker.Progress(r.Context())
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

// Timeline handles GET /session/timeline
func (h *SessionHandler) Timeline(w http.ResponseWriter, r *http.Request) {
	out, err := h.tracker.Timeline(r.Context())
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

type recordRequest struct {
	Name string `json:"name"`
}

// Record handles POST /session/record. The body is optional.
func (h *SessionHandler) Record(w http.ResponseWriter, r *http.Request) {
	var req recordRequest
	if r.ContentLength > 0 {
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
			return
		}
	}
	out, err := h.tracker.Record(r.Context(), trackerdto.RecordInput{Name: req.Name})
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, out)
}
