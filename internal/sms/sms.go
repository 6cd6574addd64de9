// Package sms provides the outbound SMS notification channel.
package sms

import "context"

// Sender delivers a text message to a phone number. A nil error means
// the channel accepted the message; any error is loggable but carries
// no structured detail beyond its cause.
type Sender interface {
	Send(ctx context.Context, to, body string) error
}
