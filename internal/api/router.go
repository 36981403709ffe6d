package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	hclog "github.com/hashicorp/go-hclog"

	archivein "prodman/internal/modules/archive/port/in"
	trackerin "prodman/internal/modules/tracker/port/in"
)

// NewRouter creates the control API router.
func NewRouter(tracker trackerin.Usecase, archive archivein.Usecase, logger hclog.Logger) *chi.Mux {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	r := chi.NewRouter()
	r.Use(RequestID)
	r.Use(Logger(logger))
	r.Use(Recovery(logger))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	sessionH := NewSessionHandler(tracker)
	r.Get("/schedule", sessionH.GetSchedule)
	r.Put("/schedule", sessionH.PutSchedule)
	r.Route("/session", func(r chi.Router) {
		r.Post("/start", sessionH.Start)
		r.Post("/commands", sessionH.Command)
		r.Get("/progress", sessionH.Progress)
		r.Get("/timeline", sessionH.Timeline)
		r.Post("/record", sessionH.Record)
	})

	if archive != nil {
		archiveH := NewArchiveHandler(archive)
		r.Route("/templates", func(r chi.Router) {
			r.Get("/", archiveH.ListTemplates)
			r.Get("/{id}", archiveH.GetTemplate)
			r.Put("/{id}", archiveH.PutTemplate)
			r.Delete("/{id}", archiveH.DeleteTemplate)
		})
		r.Route("/history", func(r chi.Router) {
			r.Get("/", archiveH.ListHistory)
			r.Delete("/", archiveH.DeleteHistory)
			r.Get("/{date}/{id}", archiveH.GetHistory)
		})
	}
	return r
}
