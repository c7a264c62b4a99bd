// v1
// handlers.go

package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
)

type handlersImpl struct {
	log *slog.Logger
	src StatusSource
}

func (h *handlersImpl) health(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ok"}`))
}

func (h *handlersImpl) status(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, h.src.Status())
}

func (h *handlersImpl) latest(w http.ResponseWriter, _ *http.Request) {
	env, okLatest := h.src.Latest()
	if !okLatest {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "no readings yet"})
		return
	}
	writeJSON(w, http.StatusOK, env)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
