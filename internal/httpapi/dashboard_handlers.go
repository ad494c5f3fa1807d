package httpapi

import (
	"bytes"
	"log"
	"net/http"

	"beacon-dashboard/internal/dashboard"
)

type DashboardHandler struct {
	Poller   *dashboard.Poller
	Renderer *dashboard.Renderer
	Logger   *log.Logger
}

func (h DashboardHandler) State(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, h.Poller.State())
}

func (h DashboardHandler) Status(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, h.Poller.Status())
}

func (h DashboardHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	if !h.Poller.Refresh(r.Context()) {
		WriteJSON(w, http.StatusOK, map[string]any{"ok": false, "msg": "already running"})
		return
	}
	WriteJSON(w, http.StatusOK, map[string]any{"ok": true, "state": h.Poller.State()})
}

func (h DashboardHandler) Page(w http.ResponseWriter, r *http.Request) {
	var buf bytes.Buffer
	view := dashboard.ParseView(r.URL.Query())
	if err := h.Renderer.Render(&buf, h.Poller.State(), view); err != nil {
		h.Logger.Printf("[http] render dashboard: %v", err)
		WriteError(w, r, http.StatusInternalServerError, "render_failed", "could not render dashboard")
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	_, _ = buf.WriteTo(w)
}
