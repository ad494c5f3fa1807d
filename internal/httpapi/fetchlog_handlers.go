package httpapi

import (
	"net/http"
	"strconv"
)

type FetchLogHandler struct {
	Log FetchLog
}

func (h FetchLogHandler) List(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if s := r.URL.Query().Get("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n <= 0 {
			WriteError(w, r, http.StatusBadRequest, "bad_request", "limit must be a positive integer")
			return
		}
		limit = n
	}

	attempts, err := h.Log.Recent(r.Context(), limit)
	if err != nil {
		WriteError(w, r, http.StatusInternalServerError, "fetch_log_failed", err.Error())
		return
	}
	WriteJSON(w, http.StatusOK, attempts)
}
