package handlers

import (
	"log/slog"
	"net/http"
)

// Routes wires the API, metrics and health endpoints onto a new mux.
func (h *Handler) Routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/score", h.HandleScore)
	mux.HandleFunc("/api/types", h.HandleTypes)
	mux.HandleFunc("/api/types/", h.HandleTypeDetail)
	mux.HandleFunc("/api/comparisons", h.HandleComparisons)
	mux.HandleFunc("/api/comparisons/", h.HandleComparisonDetail)
	mux.Handle("/metrics", h.metrics.Handler())
	mux.HandleFunc("/healthcheck", func(w http.ResponseWriter, r *http.Request) {
		if _, err := w.Write([]byte("OK")); err != nil {
			slog.Error("Unable to write healthcheck", "err", err)
		}
	})
	return mux
}
