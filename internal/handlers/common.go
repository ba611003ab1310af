package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/lehigh-university-libraries/partmatch/internal/metadata"
	"github.com/lehigh-university-libraries/partmatch/internal/storage"
)

// maxRequestBytes caps the size of a score request body.
const maxRequestBytes = 1 << 20

type registrySet map[metadata.Profile]*metadata.Registry

type Handler struct {
	comparisonStore *storage.ComparisonStore
	defaultProfile  metadata.Profile
	metrics         *Metrics

	// Readers load the current set without locking; writers swap in a copy.
	registries atomic.Pointer[registrySet]
	writeMu    sync.Mutex

	now func() time.Time
}

// New creates a handler serving the given registries, one per profile.
// Requests that name no profile use defaultProfile.
func New(defaultProfile metadata.Profile, registries ...*metadata.Registry) *Handler {
	h := &Handler{
		comparisonStore: storage.New(storage.DefaultCapacity),
		defaultProfile:  defaultProfile,
		metrics:         NewMetrics(),
		now:             time.Now,
	}
	empty := registrySet{}
	h.registries.Store(&empty)
	for _, reg := range registries {
		h.SetRegistry(reg)
	}
	return h
}

// SetRegistry installs reg for its profile, replacing any previous one.
// In-flight requests keep the registry they already loaded.
func (h *Handler) SetRegistry(reg *metadata.Registry) {
	if reg == nil {
		return
	}

	h.writeMu.Lock()
	defer h.writeMu.Unlock()

	current := *h.registries.Load()
	next := make(registrySet, len(current)+1)
	for k, v := range current {
		next[k] = v
	}
	next[reg.Profile()] = reg
	h.registries.Store(&next)

	h.metrics.catalogTypes.WithLabelValues(string(reg.Profile())).Set(float64(reg.Len()))
}

// Registry returns the registry serving profile.
func (h *Handler) Registry(profile metadata.Profile) (*metadata.Registry, bool) {
	reg, ok := (*h.registries.Load())[profile]
	return reg, ok
}

// Metrics exposes the handler's Prometheus collectors.
func (h *Handler) Metrics() *Metrics {
	return h.metrics
}

// resolveProfile maps an optional request profile onto a served registry.
func (h *Handler) resolveProfile(raw string) (*metadata.Registry, metadata.Profile, bool, string) {
	profile := h.defaultProfile
	if raw != "" {
		p, err := metadata.ParseProfile(raw)
		if err != nil {
			return nil, "", false, err.Error()
		}
		profile = p
	}
	reg, ok := h.Registry(profile)
	if !ok {
		return nil, profile, false, "No catalog loaded for profile " + string(profile)
	}
	return reg, profile, true, ""
}

// Response helpers
func (h *Handler) writeJSON(w http.ResponseWriter, data interface{}) {
	h.writeJSONStatus(w, http.StatusOK, data)
}

func (h *Handler) writeJSONStatus(w http.ResponseWriter, code int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("Unable to encode JSON response", "err", err)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, message string, code int) {
	if code >= http.StatusInternalServerError {
		slog.Error(message)
	} else {
		slog.Debug("Rejected request", "status", code, "reason", message)
	}
	h.metrics.requestErrors.WithLabelValues(http.StatusText(code)).Inc()
	http.Error(w, message, code)
}
