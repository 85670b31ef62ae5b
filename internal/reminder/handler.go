// internal/reminder/handler.go
package reminder

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
)

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

// Routes mounts the reminder endpoints on the given router.
func (h *Handler) Routes(r chi.Router) {
	r.Post("/reminders/sweep", h.handleRunSweep)
}

// handleRunSweep triggers a sweep outside the daily schedule. Dedup makes
// the extra run harmless.
func (h *Handler) handleRunSweep(w http.ResponseWriter, r *http.Request) {
	summary, err := h.service.RunSweep(r.Context(), time.Now().UTC())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	json.NewEncoder(w).Encode(summary)
}
