package model

const (
	IncidentStatusActive    = "active"
	IncidentStatusDismissed = "dismissed"
	IncidentStatusEscalated = "escalated"
)

const (
	ActionDismiss  = "dismiss"
	ActionEscalate = "escalate"
)

// Incident is the document stored at incidents/<id>. Type, location and
// capture are set once at report time; status, updatedBy and updatedAt change
// on the single dismiss-or-escalate transition.
type Incident struct {
	Type string `json:"type"`
	// Location is a "lat,lng" coordinate pair as submitted by the client.
	// The store layer does not validate the format.
	Location string `json:"location"`
	Capture  string `json:"capture"`

	Status     string `json:"status"`
	ReportedAt string `json:"reportedAt,omitempty"`
	UpdatedBy  string `json:"updatedBy,omitempty"`
	UpdatedAt  string `json:"updatedAt,omitempty"`
}

// StatusForAction maps a lifecycle action to the status it produces. The
// second return is false for anything outside {dismiss, escalate}.
func StatusForAction(action string) (string, bool) {
	switch action {
	case ActionDismiss:
		return IncidentStatusDismissed, true
	case ActionEscalate:
		return IncidentStatusEscalated, true
	default:
		return "", false
	}
}
