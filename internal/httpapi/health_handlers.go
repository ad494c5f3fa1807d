package httpapi

import (
	"net/http"
	"time"

	"beacon-dashboard/internal/gateway"
)

type HealthHandler struct{}

func (h HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, map[string]any{
		"ok":   true,
		"time": time.Now().UTC().Format(time.RFC3339),
	})
}

func (h HealthHandler) Test(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, map[string]any{
		"success":   true,
		"message":   "API is working!",
		"timestamp": gateway.FormatTime(time.Now()),
	})
}
