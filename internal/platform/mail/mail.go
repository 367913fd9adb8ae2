// Package mail is the outbound email boundary. Delivery is best-effort; the
// services that trigger mail never depend on its outcome.
package mail

import "context"

type Message struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	HTML    string `json:"html"`
}

type Mailer interface {
	Send(ctx context.Context, msg Message) error
}
