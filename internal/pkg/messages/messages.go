package messages

import (
	"strings"

	amessages "github.com/airenas/async-api/pkg/messages"
)

const (
	st = "PRISM/"
	// Work queue name, processed by the worker
	Work = st + "Work"
	// Process message type - run the video pipeline
	Process = Work + ":process"
	// StatusChange queue name, processed by the status service
	StatusChange = st + "StatusChange"
	// Inform queue name, processed by the inform service
	Inform = st + "Inform"
	// Mail message type - quote and newsletter emails
	Mail = Inform + ":mail"
)

const (
	// MailQuote sends quote confirmation
	MailQuote = "Quote"
	// MailNewsletterConfirm sends newsletter double opt-in link
	MailNewsletterConfirm = "NewsletterConfirm"
)

// JobMessage main message passing through video job processing
type JobMessage struct {
	amessages.QueueMessage
	UserID string `json:"userID,omitempty"`
}

// NewMessageFrom creates a copy of a message
func NewMessageFrom(m *JobMessage) *JobMessage {
	return &JobMessage{QueueMessage: m.QueueMessage, UserID: m.UserID}
}

// MailMessage asks to send a non job email
type MailMessage struct {
	amessages.QueueMessage
	Kind  string `json:"kind"`
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
	Token string `json:"token,omitempty"`
	Text  string `json:"text,omitempty"`
}

// Split returns queue and job type from a message destination.
// Destination "queue:type" is put to the queue with the full name as type,
// a plain name is used for both
func Split(dest string) (string, string) {
	if i := strings.Index(dest, ":"); i > 0 {
		return dest[:i], dest
	}
	return dest, dest
}
