package mailer

import (
	"errors"
	"fmt"
	"sync"

	"gopkg.in/gomail.v2"

	"medibook-server/internal/config"
	"medibook-server/internal/models"
	"medibook-server/internal/services"
)

// Mailer sends transactional email over SMTP. It implements
// services.Notifier for appointment events and also delivers OTP
// verification codes.
type Mailer struct {
	from string
	send func(m ...*gomail.Message) error
}

// New creates a Mailer from SMTP configuration.
func New(cfg config.MailerConfig) *Mailer {
	dialer := gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password)
	return &Mailer{from: cfg.From, send: dialer.DialAndSend}
}

// SendOTP emails a verification code to a registering address.
func (m *Mailer) SendOTP(email, code string) error {
	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", email)
	msg.SetHeader("Subject", "Email Verification OTP")
	msg.SetBody("text/plain", fmt.Sprintf("Your OTP for email verification is: %s", code))
	return m.send(msg)
}

// Notify emails both parties about an appointment event. The two sends run
// concurrently and each failure is reported without blocking the other.
func (m *Mailer) Notify(event services.NotificationEvent, appt *models.Appointment, patient, doctor *models.User) error {
	subject := subjectFor(event)

	messages := []*gomail.Message{
		m.message(patient.Email, subject, body(event, patient.Name, doctor.Name, appt)),
		m.message(doctor.Email, subject, body(event, doctor.Name, patient.Name, appt)),
	}

	errs := make([]error, len(messages))
	var wg sync.WaitGroup
	for i, msg := range messages {
		wg.Add(1)
		go func(i int, msg *gomail.Message) {
			defer wg.Done()
			errs[i] = m.send(msg)
		}(i, msg)
	}
	wg.Wait()

	return errors.Join(errs...)
}

func (m *Mailer) message(to, subject, bodyText string) *gomail.Message {
	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/plain", bodyText)
	return msg
}

func subjectFor(event services.NotificationEvent) string {
	switch event {
	case services.EventCreated:
		return "Appointment Confirmation"
	case services.EventCancelled:
		return "Appointment Cancellation"
	default:
		return "Appointment Update"
	}
}

func body(event services.NotificationEvent, recipient, counterpart string, appt *models.Appointment) string {
	date := appt.AppointmentDate.Format("Mon, 02 Jan 2006")
	slot := fmt.Sprintf("%s - %s", appt.StartTime, appt.EndTime)

	switch event {
	case services.EventCreated:
		return fmt.Sprintf("Hello %s,\n\nYour appointment with %s is confirmed for %s from %s (%s).\n\nThank you!",
			recipient, counterpart, date, slot, appt.Mode)
	case services.EventCancelled:
		return fmt.Sprintf("Hello %s,\n\nYour appointment with %s scheduled for %s from %s has been cancelled.\n\nThank you!",
			recipient, counterpart, date, slot)
	default:
		return fmt.Sprintf("Hello %s,\n\nYour appointment with %s on %s is now %s.\n\nThank you!",
			recipient, counterpart, date, appt.Status)
	}
}
