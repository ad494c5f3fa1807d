package httpapi

import (
	"net/http"
	"path/filepath"

	"beacon-dashboard/internal/config"
)

// ConfigHandler exposes the running configuration read-only. The API token
// never leaves the process.
type ConfigHandler struct {
	Cfg         config.Config
	UserCfgPath string
}

func (h ConfigHandler) Get(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, h.Cfg.Redacted())
}

func (h ConfigHandler) Path(w http.ResponseWriter, r *http.Request) {
	abs := ""
	if h.UserCfgPath != "" {
		abs, _ = filepath.Abs(h.UserCfgPath)
	}
	WriteJSON(w, http.StatusOK, map[string]any{"path": abs})
}

func (h ConfigHandler) Validate(w http.ResponseWriter, r *http.Request) {
	_, vr := config.NormalizeAndValidate(h.Cfg)
	WriteJSON(w, http.StatusOK, vr)
}
