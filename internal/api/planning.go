package api

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/Amitava-Data-Science-lab/deposit-saver/internal/domain"
	"github.com/Amitava-Data-Science-lab/deposit-saver/internal/identity"
	"github.com/Amitava-Data-Science-lab/deposit-saver/internal/planner"
	"github.com/Amitava-Data-Science-lab/deposit-saver/internal/store"
)

// maxRequestBodySize caps JSON request bodies. Transaction lists are the
// largest legitimate payload and stay well under this.
const maxRequestBodySize = 1 << 20 // 1MB

// PlanningHandler exposes the session planning operations over HTTP. Failed
// computations come back as error-status records with the mapped HTTP status,
// so callers always branch on the record's status field.
type PlanningHandler struct {
	svc *planner.Service
}

// NewPlanningHandler creates the planning handler.
func NewPlanningHandler(svc *planner.Service) *PlanningHandler {
	return &PlanningHandler{svc: svc}
}

// RegisterRoutes registers the planning routes.
func (h *PlanningHandler) RegisterRoutes(r chi.Router) {
	r.Route("/api/sessions", func(r chi.Router) {
		r.Post("/", h.CreateSession)
		r.Route("/{sessionID}", func(r chi.Router) {
			r.Get("/", h.GetSession)
			r.Delete("/", h.ArchiveSession)
			r.Get("/state", h.GetState)
			r.Post("/housing-goal/propose", h.ProposeGoal)
			r.Post("/housing-goal/confirm", h.ConfirmGoal)
			r.Post("/capacity", h.AssessCapacity)
			r.Post("/risk-profile", h.AssessRisk)
			r.Post("/plan", h.ComposePlan)
		})
	})
}

// statusForCode maps a record error code to the HTTP status it rides on.
func statusForCode(code domain.ErrorCode) int {
	switch code {
	case domain.CodeInvalidInput, domain.CodeMissingInput, domain.CodeInvalidPostcode, domain.CodeInsufficientData:
		return http.StatusBadRequest
	case domain.CodeNoPricesFound, domain.CodeSessionNotFound:
		return http.StatusNotFound
	case domain.CodeLookupUnavailable:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// decodeBody parses the JSON request body into v. An absent body leaves v at
// its zero value; every request type has usable defaults.
func decodeBody(w http.ResponseWriter, r *http.Request, v interface{}) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

// fail maps service-level errors: unknown sessions are 404, anything else is
// an internal fault that was already logged with its cause.
func fail(w http.ResponseWriter, err error) {
	if errors.Is(err, store.ErrNotFound) {
		Error(w, http.StatusNotFound, "session not found")
		return
	}
	slog.Error("Planning request failed", "error", err)
	Error(w, http.StatusInternalServerError, "internal error")
}

// CreateSession handles POST /api/sessions.
func (h *PlanningHandler) CreateSession(w http.ResponseWriter, r *http.Request) {
	userID := identity.UserIDFromContext(r.Context())
	if userID == "" {
		Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	summary, err := h.svc.Create(r.Context(), userID)
	if err != nil {
		fail(w, err)
		return
	}
	JSON(w, http.StatusCreated, summary)
}

// GetSession handles GET /api/sessions/{sessionID}.
func (h *PlanningHandler) GetSession(w http.ResponseWriter, r *http.Request) {
	userID := identity.UserIDFromContext(r.Context())
	sessionID := chi.URLParam(r, "sessionID")

	summary, err := h.svc.Get(r.Context(), userID, sessionID)
	if err != nil {
		fail(w, err)
		return
	}
	JSON(w, http.StatusOK, summary)
}

// GetState handles GET /api/sessions/{sessionID}/state.
func (h *PlanningHandler) GetState(w http.ResponseWriter, r *http.Request) {
	userID := identity.UserIDFromContext(r.Context())
	sessionID := chi.URLParam(r, "sessionID")

	state, err := h.svc.State(r.Context(), userID, sessionID)
	if err != nil {
		fail(w, err)
		return
	}
	JSON(w, http.StatusOK, state)
}

// ArchiveSession handles DELETE /api/sessions/{sessionID}.
func (h *PlanningHandler) ArchiveSession(w http.ResponseWriter, r *http.Request) {
	userID := identity.UserIDFromContext(r.Context())
	sessionID := chi.URLParam(r, "sessionID")

	if err := h.svc.Archive(r.Context(), userID, sessionID); err != nil {
		fail(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ProposeGoal handles POST /api/sessions/{sessionID}/housing-goal/propose.
func (h *PlanningHandler) ProposeGoal(w http.ResponseWriter, r *http.Request) {
	userID := identity.UserIDFromContext(r.Context())
	sessionID := chi.URLParam(r, "sessionID")

	var req planner.ProposeGoalRequest
	if err := decodeBody(w, r, &req); err != nil {
		Error(w, http.StatusBadRequest, "malformed JSON body")
		return
	}

	out, err := h.svc.ProposeGoal(r.Context(), userID, sessionID, req)
	if err != nil {
		fail(w, err)
		return
	}
	writeRecord(w, out.Status, out.ErrorCode, out)
}

// ConfirmGoal handles POST /api/sessions/{sessionID}/housing-goal/confirm.
func (h *PlanningHandler) ConfirmGoal(w http.ResponseWriter, r *http.Request) {
	userID := identity.UserIDFromContext(r.Context())
	sessionID := chi.URLParam(r, "sessionID")

	var req planner.ConfirmGoalRequest
	if err := decodeBody(w, r, &req); err != nil {
		Error(w, http.StatusBadRequest, "malformed JSON body")
		return
	}

	out, err := h.svc.ConfirmGoal(r.Context(), userID, sessionID, req)
	if err != nil {
		fail(w, err)
		return
	}
	writeRecord(w, out.Status, out.ErrorCode, out)
}

// AssessCapacity handles POST /api/sessions/{sessionID}/capacity.
func (h *PlanningHandler) AssessCapacity(w http.ResponseWriter, r *http.Request) {
	userID := identity.UserIDFromContext(r.Context())
	sessionID := chi.URLParam(r, "sessionID")

	var req planner.CapacityRequest
	if err := decodeBody(w, r, &req); err != nil {
		Error(w, http.StatusBadRequest, "malformed JSON body")
		return
	}

	out, err := h.svc.AssessCapacity(r.Context(), userID, sessionID, req)
	if err != nil {
		fail(w, err)
		return
	}
	writeRecord(w, out.Status, out.ErrorCode, out)
}

// AssessRisk handles POST /api/sessions/{sessionID}/risk-profile.
func (h *PlanningHandler) AssessRisk(w http.ResponseWriter, r *http.Request) {
	userID := identity.UserIDFromContext(r.Context())
	sessionID := chi.URLParam(r, "sessionID")

	var req planner.RiskRequest
	if err := decodeBody(w, r, &req); err != nil {
		Error(w, http.StatusBadRequest, "malformed JSON body")
		return
	}

	out, err := h.svc.AssessRisk(r.Context(), userID, sessionID, req)
	if err != nil {
		fail(w, err)
		return
	}
	writeRecord(w, out.Status, out.ErrorCode, out)
}

// ComposePlan handles POST /api/sessions/{sessionID}/plan.
func (h *PlanningHandler) ComposePlan(w http.ResponseWriter, r *http.Request) {
	userID := identity.UserIDFromContext(r.Context())
	sessionID := chi.URLParam(r, "sessionID")

	var req planner.PlanRequest
	if err := decodeBody(w, r, &req); err != nil {
		Error(w, http.StatusBadRequest, "malformed JSON body")
		return
	}

	out, err := h.svc.ComposePlan(r.Context(), userID, sessionID, req)
	if err != nil {
		fail(w, err)
		return
	}
	writeRecord(w, out.Status, out.ErrorCode, out)
}

// writeRecord sends a boundary record with the HTTP status implied by its
// own status field. Error records keep their full body so callers can read
// the code and message.
func writeRecord(w http.ResponseWriter, status domain.Status, code domain.ErrorCode, record interface{}) {
	if status == domain.StatusError {
		JSON(w, statusForCode(code), record)
		return
	}
	JSON(w, http.StatusOK, record)
}
