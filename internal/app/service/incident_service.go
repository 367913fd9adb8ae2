package service

import (
	"context"
	"time"

	"safecommute/internal/app/notify"
	"safecommute/internal/common"
	"safecommute/internal/common/token"
	"safecommute/internal/domain/model"
	"safecommute/internal/domain/repository"
	"safecommute/internal/logging"
	"safecommute/internal/observability/metrics"
)

type IncidentService struct {
	incidents  repository.IncidentRepository
	activity   repository.ActivityLogRepository
	auth       *AuthService
	dispatcher notify.Dispatcher
	opsEmail   string
	log        logging.Logger
}

func NewIncidentService(
	incidents repository.IncidentRepository,
	activity repository.ActivityLogRepository,
	auth *AuthService,
	dispatcher notify.Dispatcher,
	opsEmail string,
	log logging.Logger,
) *IncidentService {
	return &IncidentService{
		incidents:  incidents,
		activity:   activity,
		auth:       auth,
		dispatcher: dispatcher,
		opsEmail:   opsEmail,
		log:        log,
	}
}

// Report ingests an incident with no authentication: reporting is
// intentionally open. The location string is stored as submitted; a malformed
// coordinate pair is the presentation layer's problem, not a reason to
// reject a report.
func (s *IncidentService) Report(ctx context.Context, incidentType, location, capture string) (string, error) {
	id := token.New()
	incident := &model.Incident{
		Type:       incidentType,
		Location:   location,
		Capture:    capture,
		Status:     model.IncidentStatusActive,
		ReportedAt: time.Now().UTC().Format(time.RFC3339),
	}
	if err := s.incidents.Create(ctx, id, incident); err != nil {
		return "", common.Errorf("IncidentService.Report: %w", err)
	}
	metrics.IncidentsReportedTotal.Inc()
	s.log.Info(ctx, "incident reported", "incidentId", id, "type", incidentType)
	return id, nil
}

// List returns the full incident mapping for any valid session. There is no
// pagination and no per-user scoping: every authenticated user sees the whole
// feed.
func (s *IncidentService) List(ctx context.Context, username, sessionToken string) (map[string]*model.Incident, error) {
	if !s.auth.ValidateSession(ctx, username, sessionToken) {
		return nil, common.Errorf("IncidentService.List: invalid session: %w", common.ErrUnauthorized)
	}
	return s.incidents.All(ctx)
}

// UpdateStatus applies the single dismiss-or-escalate transition: one merge
// write on the incident, an activity log append, and (for escalations only)
// a fire-and-forget alert to operations. The transition is not reversible
// and carries no concurrency token: concurrent updates are last-write-wins.
func (s *IncidentService) UpdateStatus(ctx context.Context, username, sessionToken, incidentID, action string) (string, error) {
	status, ok := model.StatusForAction(action)
	if !ok || incidentID == "" {
		metrics.IncidentUpdatesTotal.WithLabelValues(action, "invalid").Inc()
		return "", common.Errorf("IncidentService.UpdateStatus: action %q: %w", action, common.ErrValidation)
	}

	if !s.auth.CheckAdminRights(ctx, username, sessionToken) {
		metrics.IncidentUpdatesTotal.WithLabelValues(action, "forbidden").Inc()
		return "", common.Errorf("IncidentService.UpdateStatus: admin rights required: %w", common.ErrForbidden)
	}

	if _, err := s.incidents.Find(ctx, incidentID); err != nil {
		metrics.IncidentUpdatesTotal.WithLabelValues(action, "not_found").Inc()
		return "", common.Errorf("IncidentService.UpdateStatus: %w", err)
	}

	now := time.Now().UTC().Format(time.RFC3339)
	if err := s.incidents.ApplyTransition(ctx, incidentID, status, username, now); err != nil {
		metrics.IncidentUpdatesTotal.WithLabelValues(action, "error").Inc()
		return "", common.Errorf("IncidentService.UpdateStatus: %w", err)
	}

	entry := &model.ActivityLogEntry{
		User:       username,
		Action:     status + " incident",
		IncidentID: incidentID,
		Timestamp:  now,
	}
	if err := s.activity.Append(ctx, entry); err != nil {
		// The transition itself succeeded; the audit gap is logged, not
		// surfaced to the caller.
		s.log.Error(ctx, "activity log append failed", "incidentId", incidentID, "error", err)
	}

	if action == model.ActionEscalate {
		s.dispatcher.Enqueue(ctx, notify.EscalationMessage(s.opsEmail, incidentID))
	}

	metrics.IncidentUpdatesTotal.WithLabelValues(action, "ok").Inc()
	s.log.Info(ctx, "incident transition applied", "incidentId", incidentID, "status", status, "updatedBy", username)
	return "Incident " + status + " successfully", nil
}
