package service

import (
	"curevet/internal/entities"
	"fmt"
	"log"
	"time"
)

type NotifyConfig struct {
	SendGridAPIKey   string
	FromEmail        string
	FromName         string
	TwilioAccountSID string
	TwilioAuthToken  string
	TwilioFromNumber string
}

// NotifyService sends booking confirmations. Delivery is fire-and-forget:
// failures are logged and never surfaced, the reservation already committed.
type NotifyService struct {
	cfg NotifyConfig
}

func NewNotifyService(cfg NotifyConfig) *NotifyService {
	return &NotifyService{cfg: cfg}
}

func (s *NotifyService) ReservationCreated(res entities.ReservationResponse) {
	emailData := entities.ReservationEmailData{
		UserName:        res.UserName,
		ReservationCode: res.Code,
		ServiceName:     res.Service,
		DateFormatted:   res.Date,
		StartFormatted:  res.Start,
		CurrentYear:     time.Now().UTC().Year(),
	}

	emailSubject := fmt.Sprintf("Your CureVet booking is confirmed - Code: %s", emailData.ReservationCode)
	plainTextBody := fmt.Sprintf(
		"Hello %s,\n\nThank you for booking with CureVet. Here are your appointment details:\n\n"+
			"Booking Code: %s\n"+
			"Service: %s\n"+
			"Date: %s at %s\n\n"+
			"We look forward to seeing you and your pet.\n\n"+
			"CureVet. All rights reserved.",
		emailData.UserName, emailData.ReservationCode, emailData.ServiceName,
		emailData.DateFormatted, emailData.StartFormatted,
	)
	htmlBody := fmt.Sprintf(
		"<p>Hello %s,</p><p>Thank you for booking with CureVet.</p>"+
			"<p>Booking Code: <strong>%s</strong><br>Service: %s<br>Date: %s at %s</p>"+
			"<p>We look forward to seeing you and your pet.</p>",
		emailData.UserName, emailData.ReservationCode, emailData.ServiceName,
		emailData.DateFormatted, emailData.StartFormatted,
	)

	go func(toEmail, toName, subject, plainBody, htmlBodyContent string) {
		err := sendEmailWithSendGrid(s.cfg, toEmail, toName, subject, plainBody, htmlBodyContent)
		if err != nil {
			log.Printf("ALERT: booking %s confirmed but confirmation email failed: %v", emailData.ReservationCode, err)
		}
	}(res.UserEmail, res.UserName, emailSubject, plainTextBody, htmlBody)

	if res.UserPhone != "" && s.cfg.TwilioAccountSID != "" {
		smsMessage := fmt.Sprintf("CureVet: booking %s confirmed!\n%s on %s at %s.\nMore details in your email.",
			res.Code, res.Service, res.Date, res.Start)
		go func(toNumber, body string) {
			if err := sendSMS(s.cfg, toNumber, body); err != nil {
				log.Printf("ALERT: booking %s confirmed but confirmation SMS to %s failed: %v", res.Code, toNumber, err)
			}
		}(res.UserPhone, smsMessage)
	}
}
