package service

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"safecommute/internal/common"
	"safecommute/internal/domain/model"
)

func newIncidentFixture(t *testing.T) *fixture {
	t.Helper()
	f := newFixture()
	seedUser(t, f, "root", &model.User{Password: "pw", Email: "r@x.com", Token: "roottok", Role: model.RoleAdmin})
	return f
}

func TestReportCreatesActiveIncident(t *testing.T) {
	ctx := context.Background()
	f := newIncidentFixture(t)

	id, err := f.incidentSvc.Report(ctx, "incident", "53.5,-113.5", "x")
	require.NoError(t, err)
	require.NotEmpty(t, id)

	incident, err := f.incidents.Find(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "incident", incident.Type)
	assert.Equal(t, "53.5,-113.5", incident.Location)
	assert.Equal(t, "x", incident.Capture)
	assert.Equal(t, model.IncidentStatusActive, incident.Status)
	assert.NotEmpty(t, incident.ReportedAt)
	assert.Empty(t, incident.UpdatedBy)
}

func TestReportAcceptsMalformedLocation(t *testing.T) {
	// Coordinate validation is a presentation concern; ingestion keeps the
	// string as submitted.
	f := newIncidentFixture(t)
	id, err := f.incidentSvc.Report(context.Background(), "incident", "not-a-coordinate", "")
	require.NoError(t, err)
	incident, err := f.incidents.Find(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, "not-a-coordinate", incident.Location)
}

func TestListRequiresSession(t *testing.T) {
	ctx := context.Background()
	f := newIncidentFixture(t)

	_, err := f.incidentSvc.List(ctx, "root", "wrong")
	require.ErrorIs(t, err, common.ErrUnauthorized)

	_, err = f.incidentSvc.List(ctx, "nobody", "roottok")
	require.ErrorIs(t, err, common.ErrUnauthorized)
}

func TestListReturnsFullMapping(t *testing.T) {
	ctx := context.Background()
	f := newIncidentFixture(t)

	all, err := f.incidentSvc.List(ctx, "root", "roottok")
	require.NoError(t, err)
	assert.Empty(t, all)
	assert.NotNil(t, all)

	id1, err := f.incidentSvc.Report(ctx, "incident", "53.5,-113.5", "x")
	require.NoError(t, err)
	id2, err := f.incidentSvc.Report(ctx, "hazard", "53.6,-113.4", "y")
	require.NoError(t, err)

	all, err = f.incidentSvc.List(ctx, "root", "roottok")
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, model.IncidentStatusActive, all[id1].Status)
	assert.Equal(t, model.IncidentStatusActive, all[id2].Status)
}

func TestUpdateStatusRejectsUnknownAction(t *testing.T) {
	ctx := context.Background()
	f := newIncidentFixture(t)
	id, err := f.incidentSvc.Report(ctx, "incident", "53.5,-113.5", "x")
	require.NoError(t, err)

	for _, action := range []string{"", "delete", "escalated", "DISMISS"} {
		_, err := f.incidentSvc.UpdateStatus(ctx, "root", "roottok", id, action)
		require.ErrorIs(t, err, common.ErrValidation, "action %q", action)
	}

	// Validation precedes auth: a bad action fails the same way for a bad
	// session.
	_, err = f.incidentSvc.UpdateStatus(ctx, "root", "wrong", id, "delete")
	require.ErrorIs(t, err, common.ErrValidation)
}

func TestUpdateStatusRequiresAdminRights(t *testing.T) {
	ctx := context.Background()
	f := newIncidentFixture(t)
	id, err := f.incidentSvc.Report(ctx, "incident", "53.5,-113.5", "x")
	require.NoError(t, err)

	_, err = f.incidentSvc.UpdateStatus(ctx, "root", "wrong", id, model.ActionEscalate)
	require.ErrorIs(t, err, common.ErrForbidden)

	incident, err := f.incidents.Find(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, model.IncidentStatusActive, incident.Status)
	assert.Empty(t, f.dispatcher.sent())
}

func TestUpdateStatusUnknownIncident(t *testing.T) {
	f := newIncidentFixture(t)
	_, err := f.incidentSvc.UpdateStatus(context.Background(), "root", "roottok", "missing", model.ActionDismiss)
	require.ErrorIs(t, err, common.ErrNotFound)
}

func TestEscalateUpdatesLogsAndNotifies(t *testing.T) {
	ctx := context.Background()
	f := newIncidentFixture(t)
	id, err := f.incidentSvc.Report(ctx, "incident", "53.5,-113.5", "x")
	require.NoError(t, err)

	msg, err := f.incidentSvc.UpdateStatus(ctx, "root", "roottok", id, model.ActionEscalate)
	require.NoError(t, err)
	assert.Equal(t, "Incident escalated successfully", msg)

	incident, err := f.incidents.Find(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, model.IncidentStatusEscalated, incident.Status)
	assert.Equal(t, "root", incident.UpdatedBy)
	assert.NotEmpty(t, incident.UpdatedAt)

	logs, err := f.store.List(ctx, "activity_logs")
	require.NoError(t, err)
	require.Len(t, logs, 1)
	for _, raw := range logs {
		var entry model.ActivityLogEntry
		require.NoError(t, json.Unmarshal(raw, &entry))
		assert.Equal(t, "root", entry.User)
		assert.Equal(t, "escalated incident", entry.Action)
		assert.Equal(t, id, entry.IncidentID)
	}

	sent := f.dispatcher.sent()
	require.Len(t, sent, 1)
	assert.Equal(t, "ops@example.com", sent[0].To)
	assert.Equal(t, "TRANSIT ALERT", sent[0].Subject)
	assert.Contains(t, sent[0].HTML, id)
}

func TestDismissLogsButDoesNotNotify(t *testing.T) {
	ctx := context.Background()
	f := newIncidentFixture(t)
	id, err := f.incidentSvc.Report(ctx, "incident", "53.5,-113.5", "x")
	require.NoError(t, err)

	msg, err := f.incidentSvc.UpdateStatus(ctx, "root", "roottok", id, model.ActionDismiss)
	require.NoError(t, err)
	assert.Equal(t, "Incident dismissed successfully", msg)

	incident, err := f.incidents.Find(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, model.IncidentStatusDismissed, incident.Status)

	logs, err := f.store.List(ctx, "activity_logs")
	require.NoError(t, err)
	assert.Len(t, logs, 1)
	assert.Empty(t, f.dispatcher.sent(), "dismissals do not alert operations")
}
