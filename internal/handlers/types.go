package handlers

import (
	"net/http"
	"strings"

	"github.com/lehigh-university-libraries/partmatch/internal/models"
)

// HandleTypes lists the component types of a profile's catalog.
func (h *Handler) HandleTypes(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		h.writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	reg, _, ok, reason := h.resolveProfile(r.URL.Query().Get("profile"))
	if !ok {
		h.writeError(w, reason, http.StatusBadRequest)
		return
	}

	names := reg.ComponentTypes()
	types := make([]models.ComponentType, 0, len(names))
	for _, name := range names {
		md, err := reg.Lookup(name)
		if err != nil {
			continue
		}
		types = append(types, models.DescribeType(md))
	}
	h.writeJSON(w, types)
}

// HandleTypeDetail describes a single component type.
func (h *Handler) HandleTypeDetail(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		h.writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	reg, _, ok, reason := h.resolveProfile(r.URL.Query().Get("profile"))
	if !ok {
		h.writeError(w, reason, http.StatusBadRequest)
		return
	}

	name := strings.TrimPrefix(r.URL.Path, "/api/types/")
	md, err := reg.Lookup(name)
	if err != nil {
		h.writeError(w, err.Error(), http.StatusNotFound)
		return
	}
	h.writeJSON(w, models.DescribeType(md))
}
