package mail

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// RawMail is a message as printed by "gt mail inbox --json".
type RawMail struct {
	ID        string `json:"id"`
	From      string `json:"from"`
	To        string `json:"to"`
	Subject   string `json:"subject"`
	Body      string `json:"body"`
	Timestamp string `json:"timestamp"`
	Read      bool   `json:"read"`
	// Priority is a name ("high") in gt output but a number in raw beads
	// output, so it is kept undecoded.
	Priority json.RawMessage `json:"priority,omitempty"`
	Type     string          `json:"type,omitempty"`
	ThreadID string          `json:"thread_id,omitempty"`
}

// Mail is the public message shape served by the gateway.
type Mail struct {
	ID       string `json:"id"`
	From     string `json:"from"`
	To       string `json:"to"`
	Subject  string `json:"subject"`
	Body     string `json:"body"`
	SentAt   string `json:"sent_at"`
	Read     bool   `json:"read"`
	ThreadID string `json:"thread_id,omitempty"`
}

// ToMail renames fields into the public schema. Contents are passed through untouched.
func (r RawMail) ToMail() Mail {
	return Mail{
		ID:       r.ID,
		From:     r.From,
		To:       r.To,
		Subject:  r.Subject,
		Body:     r.Body,
		SentAt:   r.Timestamp,
		Read:     r.Read,
		ThreadID: r.ThreadID,
	}
}

// ParseInbox decodes gt inbox output. Empty output and a literal "null" are an
// empty inbox. The result is never nil when err is nil.
func ParseInbox(out []byte) ([]Mail, error) {
	out = bytes.TrimSpace(out)
	if len(out) == 0 || string(out) == "null" {
		return []Mail{}, nil
	}

	var raw []RawMail
	if err := json.Unmarshal(out, &raw); err != nil {
		return nil, fmt.Errorf("decoding inbox JSON: %w", err)
	}

	messages := make([]Mail, 0, len(raw))
	for _, r := range raw {
		messages = append(messages, r.ToMail())
	}
	return messages, nil
}

// InboxResponse is the body of GET /api/mail.
type InboxResponse struct {
	Messages  []Mail `json:"messages"`
	Available bool   `json:"available"`
}

// SendRequest is the body of POST /api/mail.
type SendRequest struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

// SendResponse is the body of a successful POST /api/mail.
type SendResponse struct {
	Success bool `json:"success"`
}

// ErrorResponse is the body of every failed POST /api/mail.
type ErrorResponse struct {
	Error string `json:"error"`
}
