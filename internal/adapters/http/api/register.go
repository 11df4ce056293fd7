package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/okian/raidluck/internal/adapters/repository"
	"github.com/okian/raidluck/internal/domain/catalog"
	"github.com/okian/raidluck/internal/domain/validate"
)

// RegisterHandler handles submission requests.
type RegisterHandler struct {
	deps Dependencies
}

// NewRegisterHandler creates a new register handler.
func NewRegisterHandler(deps Dependencies) *RegisterHandler {
	return &RegisterHandler{deps: deps}
}

// HandleRegister handles POST /register requests. Submissions are
// validated and applied synchronously so callers learn the outcome in
// the response. An optional submissionId makes retries idempotent.
func (h *RegisterHandler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}

	// Idempotency check - mark as seen first.
	recorded := req.SubmissionID != ""
	if recorded && h.deps.SeenAndRecord(r.Context(), req.SubmissionID) {
		writeJSON(w, http.StatusOK, ackResponse{Status: "duplicate", SubmissionID: req.SubmissionID, Duplicate: true})
		return
	}

	rec, id, err := h.deps.Submit(r.Context(), req.raw(), req.SubmissionID)
	if err != nil {
		// Rollback the "seen" status so a retry of the same
		// submissionId is not swallowed as a duplicate.
		if recorded {
			h.deps.Unrecord(r.Context(), req.SubmissionID)
		}
		var verr *validate.ValidationError
		switch {
		case errors.As(err, &verr):
			writeJSON(w, http.StatusBadRequest, errorResponse{Code: "validation_error", Field: verr.Field, Message: verr.Reason})
		case errors.Is(err, catalog.ErrUnknownLocale):
			writeJSON(w, http.StatusBadRequest, errorResponse{Code: "unknown_locale", Field: "language", Message: err.Error()})
		case errors.Is(err, repository.ErrStorageUnavailable):
			writeError(w, http.StatusServiceUnavailable, "storage_unavailable", err)
		default:
			writeError(w, http.StatusInternalServerError, "internal_error", err)
		}
		return
	}

	writeJSON(w, http.StatusOK, ackResponse{
		Status:       "accepted",
		SubmissionID: id,
		Duplicate:    false,
		Record:       toPlayerPayload(rec),
	})
}
