package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/lehigh-university-libraries/partmatch/internal/metadata"
	"github.com/lehigh-university-libraries/partmatch/internal/models"
	"github.com/lehigh-university-libraries/partmatch/internal/scoring"
)

// HandleScore scores a candidate against an original and stores the result.
func (h *Handler) HandleScore(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		h.writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req models.ScoreRequest
	decoder := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBytes))
	if err := decoder.Decode(&req); err != nil {
		h.writeError(w, "Invalid JSON: "+err.Error(), http.StatusBadRequest)
		return
	}

	if strings.TrimSpace(req.ComponentType) == "" {
		h.writeError(w, "component_type is required", http.StatusBadRequest)
		return
	}

	reg, profile, ok, reason := h.resolveProfile(string(req.Profile))
	if !ok {
		h.writeError(w, reason, http.StatusBadRequest)
		return
	}

	md, err := reg.Lookup(req.ComponentType)
	if errors.Is(err, metadata.ErrUnknownComponentType) {
		h.writeError(w, err.Error(), http.StatusNotFound)
		return
	} else if err != nil {
		h.writeError(w, err.Error(), http.StatusInternalServerError)
		return
	}

	result := scoring.Compare(req.Original, req.Candidate, md)
	h.metrics.observe(string(profile), result)

	comparison := &models.Comparison{
		ID:            uuid.NewString(),
		ComponentType: md.ComponentType(),
		Profile:       profile,
		OriginalMPN:   req.OriginalMPN,
		CandidateMPN:  req.CandidateMPN,
		Original:      req.Original,
		Candidate:     req.Candidate,
		Result:        result,
		CreatedAt:     h.now(),
	}
	h.comparisonStore.Set(comparison.ID, comparison)

	slog.Info("Scored comparison",
		"id", comparison.ID,
		"component_type", comparison.ComponentType,
		"profile", profile,
		"score", result.Score,
		"acceptable", result.Acceptable,
		"vetoed_by", result.VetoedBy)

	h.writeJSONStatus(w, http.StatusCreated, comparison)
}
