package client

import (
	"context"
	"fmt"
	"net/http"
)

const mailEndpoint = "/api/mail"

// Message mirrors the gateway's public mail schema.
type Message struct {
	ID       string `json:"id" yaml:"id"`
	From     string `json:"from" yaml:"from"`
	To       string `json:"to" yaml:"to"`
	Subject  string `json:"subject" yaml:"subject"`
	Body     string `json:"body" yaml:"body"`
	SentAt   string `json:"sent_at" yaml:"sent_at"`
	Read     bool   `json:"read" yaml:"read"`
	ThreadID string `json:"thread_id,omitempty" yaml:"thread_id,omitempty"`
}

type Inbox struct {
	Messages  []Message `json:"messages" yaml:"messages"`
	Available bool      `json:"available" yaml:"available"`
}

type InboxOptions struct {
	Agent string
	Rig   string
}

type SendRequest struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

type MailService struct {
	client *Client
}

func (c *Client) Mail() *MailService {
	return &MailService{client: c}
}

// Inbox lists messages. Empty options select the gateway's default inbox.
func (m *MailService) Inbox(ctx context.Context, opts InboxOptions) (*Inbox, error) {
	var inbox Inbox
	req := m.client.http.R().
		SetContext(ctx).
		SetResult(&inbox)
	if opts.Agent != "" {
		req.SetQueryParam("agent", opts.Agent)
	}
	if opts.Rig != "" {
		req.SetQueryParam("rig", opts.Rig)
	}

	resp, err := req.Get(mailEndpoint)
	if err != nil {
		return nil, fmt.Errorf("listing inbox: %w", err)
	}
	if resp.IsError() {
		return nil, decodeError(resp)
	}
	if inbox.Messages == nil {
		inbox.Messages = []Message{}
	}
	return &inbox, nil
}

func (m *MailService) Send(ctx context.Context, req SendRequest) error {
	resp, err := m.client.http.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(req).
		Post(mailEndpoint)
	if err != nil {
		return fmt.Errorf("sending mail: %w", err)
	}
	if resp.StatusCode() != http.StatusCreated {
		return decodeError(resp)
	}
	return nil
}
