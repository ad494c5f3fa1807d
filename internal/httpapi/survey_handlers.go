package httpapi

import (
	"fmt"
	"net/http"
)

type SurveyHandler struct {
	Gateway    SurveySource
	TTLSeconds int
}

func (h SurveyHandler) Get(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "GET")

	res := h.Gateway.SurveyData(r.Context())
	if res.Status == http.StatusOK {
		ttl := h.TTLSeconds
		if ttl <= 0 {
			ttl = 30
		}
		w.Header().Set("Cache-Control", fmt.Sprintf("s-maxage=%d, stale-while-revalidate=%d", ttl, ttl*2))
	}
	WriteJSON(w, res.Status, res.Body)
}
