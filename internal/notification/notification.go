// Package notification delivers templated email and SMS messages to staff.
package notification

import (
	"context"
	"errors"
	"strings"
)

const (
	TemplateSchedulePublished   = "schedule_published"
	TemplateScheduleUnpublished = "schedule_unpublished"
)

type Channel string

const (
	ChannelEmail Channel = "email"
	ChannelSMS   Channel = "sms"
)

var ErrNoRecipient = errors.New("notification: recipient is empty")

// Sender talks to the outside world. A nil error means the provider accepted
// the message.
type Sender interface {
	SendEmailTemplate(ctx context.Context, template, recipient string, data map[string]interface{}) error
	SendSMSTemplate(ctx context.Context, template, recipient string, data map[string]interface{}) error
}

type Message struct {
	Channel   Channel
	Template  string
	Recipient string
	Data      map[string]interface{}
}

// ChannelFor guesses the channel from the recipient: addresses with an @ are
// emails, anything else is a phone number.
func ChannelFor(recipient string) Channel {
	if strings.Contains(recipient, "@") {
		return ChannelEmail
	}
	return ChannelSMS
}

// Send routes m to the matching Sender method.
func Send(ctx context.Context, s Sender, m Message) error {
	if strings.TrimSpace(m.Recipient) == "" {
		return ErrNoRecipient
	}
	if m.Channel == ChannelSMS {
		return s.SendSMSTemplate(ctx, m.Template, m.Recipient, m.Data)
	}
	return s.SendEmailTemplate(ctx, m.Template, m.Recipient, m.Data)
}
