package handlers

import (
	"net/http"

	"github.com/lehigh-university-libraries/labelaudit/internal/models"
	"github.com/lehigh-university-libraries/labelaudit/internal/record"
	"github.com/lehigh-university-libraries/labelaudit/internal/verify"
)

// HandleMatch matches a single value, or every field of a record, against
// the submitted text.
func (h *Handler) HandleMatch(w http.ResponseWriter, r *http.Request) {
	var req models.MatchRequest
	if !h.decodeJSON(w, r, &req) {
		return
	}

	switch {
	case req.Value != nil && len(req.Record) > 0:
		h.writeError(w, "Provide either value or record, not both", http.StatusBadRequest)
	case req.Value != nil:
		v := h.matcher.MatchString(*req.Value, req.Text, req.Field)
		h.writeJSON(w, http.StatusOK, models.MatchResponse{Verdict: &v})
	case len(req.Record) > 0:
		n, err := record.Parse(req.Record)
		if err != nil {
			h.writeError(w, err.Error(), http.StatusUnprocessableEntity)
			return
		}
		rows := verify.MatchRecord(h.matcher, "", n, req.Text)
		h.writeJSON(w, http.StatusOK, models.MatchResponse{Rows: rows})
	default:
		h.writeError(w, "Missing value or record", http.StatusBadRequest)
	}
}
