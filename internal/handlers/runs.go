package handlers

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/lehigh-university-libraries/labelaudit/internal/dataset"
	"github.com/lehigh-university-libraries/labelaudit/internal/models"
	"github.com/lehigh-university-libraries/labelaudit/internal/verify"
)

func (h *Handler) HandleListRuns(w http.ResponseWriter, r *http.Request) {
	runs, err := h.runStore.List(r.Context())
	if err != nil {
		h.writeError(w, "Failed to list runs: "+err.Error(), http.StatusInternalServerError)
		return
	}
	h.writeJSON(w, http.StatusOK, runs)
}

func (h *Handler) HandleGetRun(w http.ResponseWriter, r *http.Request) {
	run, ok := h.getRunOrError(w, r, chi.URLParam(r, "id"))
	if !ok {
		return
	}
	h.writeJSON(w, http.StatusOK, run)
}

// HandleCreateRun verifies the submitted entries and stores the run.
func (h *Handler) HandleCreateRun(w http.ResponseWriter, r *http.Request) {
	var req models.RunRequest
	if !h.decodeJSON(w, r, &req) {
		return
	}
	if len(req.Entries) == 0 {
		h.writeError(w, "No entries submitted", http.StatusBadRequest)
		return
	}

	entries := make([]dataset.Entry, 0, len(req.Entries))
	for i, e := range req.Entries {
		if e.ID == "" {
			h.writeError(w, fmt.Sprintf("Entry %d has no id", i), http.StatusBadRequest)
			return
		}
		entry := dataset.Entry{ID: e.ID, Label: string(e.Record)}
		if e.Text != nil {
			entry.Text = *e.Text
		}
		entries = append(entries, entry)
	}

	bundle := dataset.NewBundle(entries)
	report, err := verify.New(bundle, bundle, h.matcher, h.verify).Run(r.Context(), bundle.IDs())
	if err != nil {
		h.writeError(w, "Verification failed: "+err.Error(), http.StatusInternalServerError)
		return
	}

	run := &models.Run{
		Records:   req.Records,
		Documents: req.Documents,
		Report:    report,
	}
	if err := h.runStore.Save(r.Context(), run); err != nil {
		h.writeError(w, "Failed to save run: "+err.Error(), http.StatusInternalServerError)
		return
	}
	slog.Info("Run created", "id", run.ID, "records", report.Records, "fields", report.Checkable)

	h.writeJSON(w, http.StatusCreated, run)
}
