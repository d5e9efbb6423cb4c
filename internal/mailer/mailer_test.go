package mailer

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/gomail.v2"

	"medibook-server/internal/models"
	"medibook-server/internal/services"
)

func capturingMailer(sendErr error) (*Mailer, *[]*gomail.Message) {
	var mu sync.Mutex
	var sent []*gomail.Message
	m := &Mailer{
		from: "clinic@example.com",
		send: func(msgs ...*gomail.Message) error {
			mu.Lock()
			defer mu.Unlock()
			sent = append(sent, msgs...)
			return sendErr
		},
	}
	return m, &sent
}

func sampleAppointment() (*models.Appointment, *models.User, *models.User) {
	appt := &models.Appointment{
		AppointmentDate: time.Date(2025, 6, 2, 0, 0, 0, 0, time.Local),
		StartTime:       "10:00",
		EndTime:         "10:30",
		Mode:            models.ModeVideo,
		Status:          models.StatusScheduled,
	}
	patient := &models.User{Name: "Pat", Email: "pat@example.com"}
	doctor := &models.User{Name: "Doc", Email: "doc@example.com"}
	return appt, patient, doctor
}

func TestSendOTP(t *testing.T) {
	m, sent := capturingMailer(nil)

	require.NoError(t, m.SendOTP("new@example.com", "123456"))

	require.Len(t, *sent, 1)
	msg := (*sent)[0]
	assert.Equal(t, []string{"new@example.com"}, msg.GetHeader("To"))
	assert.Equal(t, []string{"Email Verification OTP"}, msg.GetHeader("Subject"))
}

func TestNotifyReachesBothParties(t *testing.T) {
	m, sent := capturingMailer(nil)
	appt, patient, doctor := sampleAppointment()

	require.NoError(t, m.Notify(services.EventCreated, appt, patient, doctor))

	require.Len(t, *sent, 2)
	recipients := map[string]bool{}
	for _, msg := range *sent {
		for _, to := range msg.GetHeader("To") {
			recipients[to] = true
		}
		assert.Equal(t, []string{"Appointment Confirmation"}, msg.GetHeader("Subject"))
	}
	assert.True(t, recipients["pat@example.com"])
	assert.True(t, recipients["doc@example.com"])
}

func TestNotifyReportsSendFailures(t *testing.T) {
	m, sent := capturingMailer(fmt.Errorf("connection refused"))
	appt, patient, doctor := sampleAppointment()

	err := m.Notify(services.EventCancelled, appt, patient, doctor)
	require.Error(t, err)

	// Both sends were still attempted.
	assert.Len(t, *sent, 2)
}

func TestSubjectFor(t *testing.T) {
	assert.Equal(t, "Appointment Confirmation", subjectFor(services.EventCreated))
	assert.Equal(t, "Appointment Cancellation", subjectFor(services.EventCancelled))
	assert.Equal(t, "Appointment Update", subjectFor(services.EventUpdated))
}
