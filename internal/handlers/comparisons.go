package handlers

import (
	"net/http"
	"strconv"
	"strings"
)

func (h *Handler) HandleComparisons(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		h.writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	comparisons := h.comparisonStore.List()

	if raw := r.URL.Query().Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 0 {
			h.writeError(w, "limit must be a non-negative integer", http.StatusBadRequest)
			return
		}
		if limit < len(comparisons) {
			comparisons = comparisons[:limit]
		}
	}

	h.writeJSON(w, comparisons)
}

func (h *Handler) HandleComparisonDetail(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimPrefix(r.URL.Path, "/api/comparisons/")

	switch r.Method {
	case http.MethodGet:
		comparison, ok := h.comparisonStore.Get(id)
		if !ok {
			h.writeError(w, "Comparison not found", http.StatusNotFound)
			return
		}
		h.writeJSON(w, comparison)
	case http.MethodDelete:
		if !h.comparisonStore.Delete(id) {
			h.writeError(w, "Comparison not found", http.StatusNotFound)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	default:
		h.writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}
