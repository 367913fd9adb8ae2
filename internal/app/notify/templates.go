package notify

import (
	"fmt"

	"safecommute/internal/platform/mail"
)

// VerificationMessage builds the account-verification mail. The link embeds
// the full marked verification token.
func VerificationMessage(to, link string) mail.Message {
	return mail.Message{
		To:      to,
		Subject: "TGH Verification",
		HTML: fmt.Sprintf(`<html> <head> <title>EMAIL</title> </head> <body> <div> <h1 style="text-align:center;">Welcome to TGH</h1> <hr> <p style= "text-align:center;">Click the link below to verify your account.</p> <a clicktracking=off href="%s" style="text-align:center; align-self:center;">%s</a> </div> </body> </html>`, link, link),
	}
}

// EscalationMessage builds the operations alert sent when an administrator
// escalates an incident.
func EscalationMessage(to, incidentID string) mail.Message {
	return mail.Message{
		To:      to,
		Subject: "TRANSIT ALERT",
		HTML: fmt.Sprintf(`<html> <head> <title>EMAIL</title> </head> <body> <div> <h1 style="text-align:center;">ADMIN ESCALATED TRANSIT ALERT</h1> <hr> <p style= "text-align:center;">INCIDENT HAS BEEN ESCALATED</p> <a clicktracking=off href="%s" style="text-align:center; align-self:center;">%s</a> </div> </body> </html>`, incidentID, incidentID),
	}
}
