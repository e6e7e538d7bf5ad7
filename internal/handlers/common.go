package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/lehigh-university-libraries/labelaudit/internal/extract"
	"github.com/lehigh-university-libraries/labelaudit/internal/matcher"
	"github.com/lehigh-university-libraries/labelaudit/internal/models"
	"github.com/lehigh-university-libraries/labelaudit/internal/storage"
	"github.com/lehigh-university-libraries/labelaudit/internal/verify"
)

// maxBody bounds request bodies and uploads.
const maxBody = 10 * 1024 * 1024

type Handler struct {
	runStore  storage.RunStore
	matcher   *matcher.Matcher
	extractor *extract.Extractor
	verify    verify.Options
}

// New creates a Handler. extractor may be nil, which disables /api/extract.
func New(store storage.RunStore, m *matcher.Matcher, extractor *extract.Extractor, opts verify.Options) *Handler {
	return &Handler{
		runStore:  store,
		matcher:   m,
		extractor: extractor,
		verify:    opts,
	}
}

// Routes returns the API router.
func (h *Handler) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Get("/healthcheck", func(w http.ResponseWriter, r *http.Request) {
		if _, err := w.Write([]byte("OK")); err != nil {
			slog.Error("Unable to write healthcheck", "err", err)
		}
	})

	r.Route("/api", func(r chi.Router) {
		r.Post("/match", h.HandleMatch)
		r.Post("/extract", h.HandleExtract)
		r.Route("/runs", func(r chi.Router) {
			r.Get("/", h.HandleListRuns)
			r.Post("/", h.HandleCreateRun)
			r.Get("/{id}", h.HandleGetRun)
		})
	})
	return r
}

// Response helpers
func (h *Handler) writeJSON(w http.ResponseWriter, code int, data any) {
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
		slog.Debug(message, "code", code)
	}
	h.writeJSON(w, code, map[string]string{"error": message})
}

func (h *Handler) decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBody)).Decode(v); err != nil {
		h.writeError(w, "Invalid JSON: "+err.Error(), http.StatusBadRequest)
		return false
	}
	return true
}

// Run helpers
func (h *Handler) getRunOrError(w http.ResponseWriter, r *http.Request, id string) (*models.Run, bool) {
	run, err := h.runStore.Get(r.Context(), id)
	if errors.Is(err, storage.ErrRunNotFound) {
		h.writeError(w, "Run not found", http.StatusNotFound)
		return nil, false
	}
	if err != nil {
		h.writeError(w, "Failed to load run: "+err.Error(), http.StatusInternalServerError)
		return nil, false
	}
	return run, true
}
