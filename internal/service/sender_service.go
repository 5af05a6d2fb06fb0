package service

import (
	"fmt"
	"log"
	"strings"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
	"github.com/twilio/twilio-go"
	openapi "github.com/twilio/twilio-go/rest/api/v2010"
)

func sendEmailWithSendGrid(cfg NotifyConfig, toEmailAddress, toName, subject, plainTextContent, htmlContent string) error {
	if cfg.SendGridAPIKey == "" {
		return fmt.Errorf("SendGrid API key not configured")
	}
	if cfg.FromEmail == "" {
		return fmt.Errorf("SendGrid from address not configured")
	}

	fromName := cfg.FromName
	if fromName == "" {
		fromName = "CureVet"
	}

	from := mail.NewEmail(fromName, cfg.FromEmail)
	to := mail.NewEmail(toName, toEmailAddress)
	message := mail.NewSingleEmail(from, subject, to, plainTextContent, htmlContent)

	client := sendgrid.NewSendClient(cfg.SendGridAPIKey)
	response, err := client.Send(message)
	if err != nil {
		return fmt.Errorf("failed to send email through SendGrid: %w", err)
	}

	if response.StatusCode >= 200 && response.StatusCode < 300 {
		log.Printf("Confirmation email sent to %s (subject: %s), status %d", toEmailAddress, subject, response.StatusCode)
		return nil
	}
	return fmt.Errorf("SendGrid returned non-success status %d: %s", response.StatusCode, response.Body)
}

func sendSMS(cfg NotifyConfig, toNumber, messageBody string) error {
	if cfg.TwilioAccountSID == "" || cfg.TwilioAuthToken == "" || cfg.TwilioFromNumber == "" {
		return fmt.Errorf("Twilio credentials not fully configured")
	}

	if !strings.HasPrefix(toNumber, "+") {
		log.Printf("WARN: destination number '%s' is not in E.164 format, SMS may fail", toNumber)
	}

	client := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username:   cfg.TwilioAccountSID,
		Password:   cfg.TwilioAuthToken,
		AccountSid: cfg.TwilioAccountSID,
	})

	params := &openapi.CreateMessageParams{}
	params.SetTo(toNumber)
	params.SetFrom(cfg.TwilioFromNumber)
	params.SetBody(messageBody)

	resp, err := client.Api.CreateMessage(params)
	if err != nil {
		return fmt.Errorf("failed to send SMS: %w", err)
	}

	if resp != nil && resp.Sid != nil {
		log.Printf("Confirmation SMS sent to %s, message SID %s", toNumber, *resp.Sid)
	}
	return nil
}
