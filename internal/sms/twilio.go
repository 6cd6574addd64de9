package sms

import (
	"context"
	"fmt"
	"regexp"

	"github.com/twilio/twilio-go"
	twilioapi "github.com/twilio/twilio-go/rest/api/v2010"
)

// e164Regex matches phone numbers in E.164 format (e.g. +15555555555).
var e164Regex = regexp.MustCompile(`^\+[1-9]\d{7,14}$`)

// TwilioSender sends SMS messages through the Twilio REST API.
type TwilioSender struct {
	client *twilio.RestClient
	from   string
}

// NewTwilioSender creates a TwilioSender using API key credentials.
func NewTwilioSender(accountSID, authToken, from string) *TwilioSender {
	client := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: accountSID,
		Password: authToken,
	})
	return &TwilioSender{client: client, from: from}
}

// Send delivers a single SMS. The destination must be in E.164 format.
func (s *TwilioSender) Send(_ context.Context, to, body string) error {
	if !e164Regex.MatchString(to) {
		return fmt.Errorf("invalid destination phone number %q", to)
	}

	params := &twilioapi.CreateMessageParams{}
	params.SetTo(to)
	params.SetFrom(s.from)
	params.SetBody(body)

	if _, err := s.client.Api.CreateMessage(params); err != nil {
		return fmt.Errorf("twilio send to %s: %w", to, err)
	}
	return nil
}
