package model

// ActivityLogEntry is an append-only audit record pushed under activity_logs
// on every incident lifecycle transition.
type ActivityLogEntry struct {
	User       string `json:"user"`
	Action     string `json:"action"`
	IncidentID string `json:"incidentId"`
	Timestamp  string `json:"timestamp"`
}
