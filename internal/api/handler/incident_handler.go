package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"safecommute/internal/app/service"
	"safecommute/internal/common"
	"safecommute/internal/logging"
)

type IncidentHandler struct {
	incidents *service.IncidentService
	log       logging.Logger
}

func NewIncidentHandler(incidents *service.IncidentService, log logging.Logger) *IncidentHandler {
	return &IncidentHandler{incidents: incidents, log: log}
}

func (h *IncidentHandler) RegisterRoutes(r chi.Router) {
	r.Post("/report", h.report)
	r.Post("/retrieve", h.retrieve)
	r.Post("/incident/update", h.update)
}

type reportRequest struct {
	Type     string `json:"type"`
	Location string `json:"location"`
	Capture  string `json:"capture"`
}

// report is open ingestion: no auth, and the response is Success even when
// the store write fails. Clients in the field cannot retry meaningfully, so
// a failed write is an operator problem surfaced through logs, not theirs.
func (h *IncidentHandler) report(w http.ResponseWriter, r *http.Request) {
	var req reportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.RespondWithText(w, http.StatusBadRequest, "Invalid parameters")
		return
	}

	if _, err := h.incidents.Report(r.Context(), req.Type, req.Location, req.Capture); err != nil {
		h.log.Error(r.Context(), "incident report write failed", "error", err)
	}
	common.RespondWithText(w, http.StatusOK, "Success")
}

type retrieveRequest struct {
	User  string `json:"user"`
	Token string `json:"token"`
}

func (h *IncidentHandler) retrieve(w http.ResponseWriter, r *http.Request) {
	var req retrieveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.RespondWithText(w, http.StatusInternalServerError, serverErrorBody)
		return
	}

	incidents, err := h.incidents.List(r.Context(), req.User, req.Token)
	if err != nil {
		if errors.Is(err, common.ErrUnauthorized) {
			common.RespondWithText(w, http.StatusAccepted, codeUnverified)
			return
		}
		h.log.Error(r.Context(), "incident retrieval failed", "error", err)
		common.RespondWithText(w, http.StatusInternalServerError, serverErrorBody)
		return
	}

	// Canonical feed shape: the raw incident mapping, {} when empty.
	common.RespondWithJSON(w, http.StatusOK, incidents)
}

type updateRequest struct {
	User       string `json:"user"`
	Token      string `json:"token"`
	IncidentID string `json:"incidentId"`
	Action     string `json:"action"`
}

type updateResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

func (h *IncidentHandler) update(w http.ResponseWriter, r *http.Request) {
	var req updateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.RespondWithText(w, http.StatusBadRequest, "Invalid parameters")
		return
	}

	msg, err := h.incidents.UpdateStatus(r.Context(), req.User, req.Token, req.IncidentID, req.Action)
	if err != nil {
		switch status := common.HTTPStatusFromError(err); status {
		case http.StatusBadRequest:
			common.RespondWithText(w, status, "Invalid parameters")
		case http.StatusForbidden:
			common.RespondWithText(w, status, "Unauthorized: Admin rights required")
		case http.StatusNotFound:
			common.RespondWithText(w, status, "Incident not found")
		default:
			h.log.Error(r.Context(), "incident update failed", "error", err)
			common.RespondWithText(w, http.StatusInternalServerError, serverErrorBody)
		}
		return
	}

	common.RespondWithJSON(w, http.StatusOK, updateResponse{Success: true, Message: msg})
}
