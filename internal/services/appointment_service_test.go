package services

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"medibook-server/internal/models"
)

// fakeAppointmentRepo is an in-memory AppointmentRepository.
type fakeAppointmentRepo struct {
	appointments map[string]*models.Appointment
	nextID       int
	createErr    error
	updateErr    error
}

func newFakeAppointmentRepo() *fakeAppointmentRepo {
	return &fakeAppointmentRepo{appointments: make(map[string]*models.Appointment)}
}

func (r *fakeAppointmentRepo) Create(_ context.Context, appt *models.Appointment) error {
	if r.createErr != nil {
		return r.createErr
	}
	r.nextID++
	appt.ID = fmt.Sprintf("appt-%d", r.nextID)
	stored := *appt
	r.appointments[appt.ID] = &stored
	return nil
}

func (r *fakeAppointmentRepo) FindByID(_ context.Context, id string) (*models.Appointment, error) {
	appt, ok := r.appointments[id]
	if !ok {
		return nil, nil
	}
	cp := *appt
	return &cp, nil
}

func (r *fakeAppointmentRepo) Update(_ context.Context, appt *models.Appointment) error {
	if r.updateErr != nil {
		return r.updateErr
	}
	stored := *appt
	r.appointments[appt.ID] = &stored
	return nil
}

func (r *fakeAppointmentRepo) ListByPatient(_ context.Context, patientID string) ([]models.Appointment, error) {
	var out []models.Appointment
	for _, a := range r.appointments {
		if a.PatientID == patientID {
			out = append(out, *a)
		}
	}
	return out, nil
}

func (r *fakeAppointmentRepo) ListByDoctor(_ context.Context, doctorID string) ([]models.Appointment, error) {
	var out []models.Appointment
	for _, a := range r.appointments {
		if a.DoctorID == doctorID {
			out = append(out, *a)
		}
	}
	return out, nil
}

func (r *fakeAppointmentRepo) SlotTaken(_ context.Context, doctorID string, date time.Time, start, end string) (bool, error) {
	for _, a := range r.appointments {
		if a.DoctorID == doctorID && a.AppointmentDate.Equal(date) &&
			a.StartTime == start && a.EndTime == end && a.Status.HoldsSlot() {
			return true, nil
		}
	}
	return false, nil
}

// fakeDirectory resolves users from a fixed map.
type fakeDirectory struct {
	users map[string]*models.User
}

func (d *fakeDirectory) FindByID(_ context.Context, id string) (*models.User, error) {
	return d.users[id], nil
}

func (d *fakeDirectory) FindDoctor(_ context.Context, id string) (*models.User, error) {
	u := d.users[id]
	if u == nil || u.Role != models.RoleDoctor {
		return nil, nil
	}
	return u, nil
}

// fakeNotifier records events and optionally fails every call.
type fakeNotifier struct {
	events []NotificationEvent
	err    error
}

func (n *fakeNotifier) Notify(event NotificationEvent, _ *models.Appointment, _, _ *models.User) error {
	n.events = append(n.events, event)
	return n.err
}

func setupService() (*AppointmentService, *fakeAppointmentRepo, *fakeNotifier) {
	repo := newFakeAppointmentRepo()
	dir := &fakeDirectory{users: map[string]*models.User{
		"patient-1": {BaseModel: models.BaseModel{ID: "patient-1"}, Name: "Pat", Email: "pat@example.com", Role: models.RoleUser},
		"doctor-1":  {BaseModel: models.BaseModel{ID: "doctor-1"}, Name: "Doc", Email: "doc@example.com", Role: models.RoleDoctor},
	}}
	notifier := &fakeNotifier{}

	svc := NewAppointmentService(repo, dir, notifier)
	// Pin the clock to make past-date checks deterministic.
	svc.now = func() time.Time {
		return time.Date(2025, 6, 1, 9, 0, 0, 0, time.Local)
	}
	return svc, repo, notifier
}

func validInput() CreateAppointmentInput {
	return CreateAppointmentInput{
		PatientID:      "patient-1",
		DoctorID:       "doctor-1",
		Date:           "2025-06-02",
		StartTime:      "10:00",
		EndTime:        "10:30",
		Type:           models.TypeConsultation,
		Mode:           models.ModeVideo,
		Symptoms:       []string{"headache"},
		ReasonForVisit: "recurring headaches",
	}
}

func TestCreateAppointment(t *testing.T) {
	svc, repo, notifier := setupService()

	appt, err := svc.Create(context.Background(), validInput())
	require.NoError(t, err)

	assert.Equal(t, models.StatusScheduled, appt.Status)
	require.NotNil(t, appt.SlotActive)
	assert.True(t, *appt.SlotActive)
	assert.Equal(t, []NotificationEvent{EventCreated}, notifier.events)
	assert.Len(t, repo.appointments, 1)
}

func TestCreateAppointmentMissingFields(t *testing.T) {
	svc, _, _ := setupService()

	in := validInput()
	in.ReasonForVisit = ""
	_, err := svc.Create(context.Background(), in)

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
}

func TestCreateAppointmentUnknownDoctor(t *testing.T) {
	svc, _, _ := setupService()

	in := validInput()
	in.DoctorID = "nobody"
	_, err := svc.Create(context.Background(), in)

	var nferr *NotFoundError
	require.ErrorAs(t, err, &nferr)
	assert.Equal(t, "doctor not found", nferr.Error())
}

func TestCreateAppointmentPatientAsDoctor(t *testing.T) {
	svc, _, _ := setupService()

	in := validInput()
	in.DoctorID = "patient-1"
	_, err := svc.Create(context.Background(), in)

	var nferr *NotFoundError
	require.ErrorAs(t, err, &nferr)
}

func TestCreateAppointmentInPast(t *testing.T) {
	svc, repo, notifier := setupService()

	in := validInput()
	in.Date = "2025-05-30"
	_, err := svc.Create(context.Background(), in)

	var cerr *ConflictError
	require.ErrorAs(t, err, &cerr)
	assert.Empty(t, repo.appointments)
	assert.Empty(t, notifier.events)
}

func TestCreateAppointmentSameDayBeforeNow(t *testing.T) {
	svc, _, _ := setupService()

	// Clock is pinned at 09:00; an 08:00 slot today has already started.
	in := validInput()
	in.Date = "2025-06-01"
	in.StartTime = "08:00"
	in.EndTime = "08:30"
	_, err := svc.Create(context.Background(), in)

	var cerr *ConflictError
	require.ErrorAs(t, err, &cerr)
}

func TestCreateAppointmentSameDayAfterNow(t *testing.T) {
	svc, _, _ := setupService()

	in := validInput()
	in.Date = "2025-06-01"
	in.StartTime = "15:00"
	in.EndTime = "15:30"
	_, err := svc.Create(context.Background(), in)
	require.NoError(t, err)
}

func TestCreateAppointmentSlotTaken(t *testing.T) {
	svc, _, notifier := setupService()

	_, err := svc.Create(context.Background(), validInput())
	require.NoError(t, err)

	other := validInput()
	other.PatientID = "patient-2"
	_, err = svc.Create(context.Background(), other)

	var cerr *ConflictError
	require.ErrorAs(t, err, &cerr)
	assert.Equal(t, "this time slot is already booked", cerr.Error())
	assert.Equal(t, []NotificationEvent{EventCreated}, notifier.events)
}

func TestCreateAppointmentCancelledSlotReusable(t *testing.T) {
	svc, _, _ := setupService()

	first, err := svc.Create(context.Background(), validInput())
	require.NoError(t, err)

	_, err = svc.Cancel(context.Background(), first.ID, "patient-1", models.RoleUser, "cannot make it")
	require.NoError(t, err)

	other := validInput()
	other.PatientID = "patient-2"
	_, err = svc.Create(context.Background(), other)
	require.NoError(t, err)
}

func TestCreateAppointmentAdjacentSlot(t *testing.T) {
	svc, _, _ := setupService()

	_, err := svc.Create(context.Background(), validInput())
	require.NoError(t, err)

	// A touching-but-different window for the same doctor is not a
	// conflict; only the exact (date, start, end) triple collides.
	adjacent := validInput()
	adjacent.PatientID = "patient-2"
	adjacent.StartTime = "10:30"
	adjacent.EndTime = "11:00"
	_, err = svc.Create(context.Background(), adjacent)
	require.NoError(t, err)
}

func TestCreateAppointmentLostRace(t *testing.T) {
	svc, repo, _ := setupService()
	repo.createErr = gorm.ErrDuplicatedKey

	_, err := svc.Create(context.Background(), validInput())

	var cerr *ConflictError
	require.ErrorAs(t, err, &cerr)
	assert.Equal(t, "this time slot is already booked", cerr.Error())
}

func TestCreateAppointmentBadSlotFormats(t *testing.T) {
	svc, _, _ := setupService()

	cases := []struct {
		name   string
		mutate func(*CreateAppointmentInput)
	}{
		{"bad date", func(in *CreateAppointmentInput) { in.Date = "02-06-2025" }},
		{"bad start", func(in *CreateAppointmentInput) { in.StartTime = "10am" }},
		{"bad end", func(in *CreateAppointmentInput) { in.EndTime = "25:00" }},
		{"end before start", func(in *CreateAppointmentInput) { in.StartTime = "11:00"; in.EndTime = "10:30" }},
		{"zero length", func(in *CreateAppointmentInput) { in.EndTime = in.StartTime }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			in := validInput()
			tc.mutate(&in)
			_, err := svc.Create(context.Background(), in)

			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
		})
	}
}

func TestCreateAppointmentNotifierFailureSwallowed(t *testing.T) {
	svc, repo, notifier := setupService()
	notifier.err = fmt.Errorf("smtp down")

	appt, err := svc.Create(context.Background(), validInput())
	require.NoError(t, err)
	assert.NotNil(t, repo.appointments[appt.ID])
}

func TestUpdateStatus(t *testing.T) {
	svc, repo, notifier := setupService()

	appt, err := svc.Create(context.Background(), validInput())
	require.NoError(t, err)

	updated, err := svc.UpdateStatus(context.Background(), appt.ID, "doctor-1", models.StatusCompleted, "all clear")
	require.NoError(t, err)

	assert.Equal(t, models.StatusCompleted, updated.Status)
	assert.Equal(t, "all clear", updated.DoctorNotes)
	assert.Nil(t, updated.SlotActive)
	assert.Nil(t, repo.appointments[appt.ID].SlotActive)
	assert.Equal(t, []NotificationEvent{EventCreated, EventUpdated}, notifier.events)
}

func TestUpdateStatusNoShowKeepsSlot(t *testing.T) {
	svc, _, _ := setupService()

	appt, err := svc.Create(context.Background(), validInput())
	require.NoError(t, err)

	updated, err := svc.UpdateStatus(context.Background(), appt.ID, "doctor-1", models.StatusNoShow, "")
	require.NoError(t, err)
	assert.NotNil(t, updated.SlotActive)
}

func TestUpdateStatusRescheduledReleasesSlot(t *testing.T) {
	svc, repo, _ := setupService()

	appt, err := svc.Create(context.Background(), validInput())
	require.NoError(t, err)

	updated, err := svc.UpdateStatus(context.Background(), appt.ID, "doctor-1", models.StatusRescheduled, "")
	require.NoError(t, err)
	assert.Nil(t, updated.SlotActive)
	assert.Nil(t, repo.appointments[appt.ID].SlotActive)

	// The freed slot is bookable again.
	other := validInput()
	other.PatientID = "patient-2"
	_, err = svc.Create(context.Background(), other)
	require.NoError(t, err)
}

func TestUpdateStatusWrongDoctor(t *testing.T) {
	svc, repo, _ := setupService()

	appt, err := svc.Create(context.Background(), validInput())
	require.NoError(t, err)

	_, err = svc.UpdateStatus(context.Background(), appt.ID, "doctor-2", models.StatusCompleted, "")

	var aerr *AuthorizationError
	require.ErrorAs(t, err, &aerr)
	assert.Equal(t, models.StatusScheduled, repo.appointments[appt.ID].Status)
}

func TestUpdateStatusInvalid(t *testing.T) {
	svc, _, _ := setupService()

	_, err := svc.UpdateStatus(context.Background(), "whatever", "doctor-1", "postponed", "")

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
}

func TestUpdateStatusNotFound(t *testing.T) {
	svc, _, _ := setupService()

	_, err := svc.UpdateStatus(context.Background(), "missing", "doctor-1", models.StatusCompleted, "")

	var nferr *NotFoundError
	require.ErrorAs(t, err, &nferr)
}

func TestUpdateStatusAlreadyTerminal(t *testing.T) {
	svc, _, _ := setupService()

	appt, err := svc.Create(context.Background(), validInput())
	require.NoError(t, err)

	_, err = svc.UpdateStatus(context.Background(), appt.ID, "doctor-1", models.StatusCompleted, "")
	require.NoError(t, err)

	_, err = svc.UpdateStatus(context.Background(), appt.ID, "doctor-1", models.StatusNoShow, "")

	var cerr *ConflictError
	require.ErrorAs(t, err, &cerr)
}

func TestCancelByPatient(t *testing.T) {
	svc, _, notifier := setupService()

	appt, err := svc.Create(context.Background(), validInput())
	require.NoError(t, err)

	cancelled, err := svc.Cancel(context.Background(), appt.ID, "patient-1", models.RoleUser, "feeling better")
	require.NoError(t, err)

	assert.Equal(t, models.StatusCancelled, cancelled.Status)
	assert.Equal(t, models.CancelledByPatient, cancelled.CancelledBy)
	assert.Equal(t, "feeling better", cancelled.CancellationReason)
	assert.Nil(t, cancelled.SlotActive)
	assert.Equal(t, []NotificationEvent{EventCreated, EventCancelled}, notifier.events)
}

func TestCancelByDoctor(t *testing.T) {
	svc, _, _ := setupService()

	appt, err := svc.Create(context.Background(), validInput())
	require.NoError(t, err)

	cancelled, err := svc.Cancel(context.Background(), appt.ID, "doctor-1", models.RoleDoctor, "emergency surgery")
	require.NoError(t, err)
	assert.Equal(t, models.CancelledByDoctor, cancelled.CancelledBy)
}

func TestCancelMissingReason(t *testing.T) {
	svc, _, _ := setupService()

	_, err := svc.Cancel(context.Background(), "any", "patient-1", models.RoleUser, "")

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
}

func TestCancelTerminalStates(t *testing.T) {
	svc, repo, _ := setupService()

	for _, status := range []models.AppointmentStatus{models.StatusCancelled, models.StatusCompleted} {
		appt, err := svc.Create(context.Background(), validInput())
		require.NoError(t, err)
		repo.appointments[appt.ID].Status = status

		_, err = svc.Cancel(context.Background(), appt.ID, "patient-1", models.RoleUser, "changed my mind")

		var cerr *ConflictError
		require.ErrorAs(t, err, &cerr)
		assert.Contains(t, cerr.Error(), string(status))
	}
}

func TestReschedule(t *testing.T) {
	svc, repo, _ := setupService()

	appt, err := svc.Create(context.Background(), validInput())
	require.NoError(t, err)

	replacement, err := svc.Reschedule(context.Background(), appt.ID, "patient-1", models.RoleUser, RescheduleInput{
		Date:      "2025-06-03",
		StartTime: "14:00",
		EndTime:   "14:30",
	})
	require.NoError(t, err)

	assert.Equal(t, models.StatusScheduled, replacement.Status)
	require.NotNil(t, replacement.RescheduledFromID)
	assert.Equal(t, appt.ID, *replacement.RescheduledFromID)
	assert.Equal(t, appt.ReasonForVisit, replacement.ReasonForVisit)

	old := repo.appointments[appt.ID]
	assert.Equal(t, models.StatusRescheduled, old.Status)
	assert.Nil(t, old.SlotActive)
}

func TestRescheduleFreesOldSlot(t *testing.T) {
	svc, _, _ := setupService()

	appt, err := svc.Create(context.Background(), validInput())
	require.NoError(t, err)

	_, err = svc.Reschedule(context.Background(), appt.ID, "patient-1", models.RoleUser, RescheduleInput{
		Date: "2025-06-03", StartTime: "14:00", EndTime: "14:30",
	})
	require.NoError(t, err)

	// The original slot is free again for another patient.
	other := validInput()
	other.PatientID = "patient-2"
	_, err = svc.Create(context.Background(), other)
	require.NoError(t, err)
}

func TestRescheduleByOutsider(t *testing.T) {
	svc, _, _ := setupService()

	appt, err := svc.Create(context.Background(), validInput())
	require.NoError(t, err)

	_, err = svc.Reschedule(context.Background(), appt.ID, "patient-2", models.RoleUser, RescheduleInput{
		Date: "2025-06-03", StartTime: "14:00", EndTime: "14:30",
	})

	var aerr *AuthorizationError
	require.ErrorAs(t, err, &aerr)
}

func TestRescheduleNonScheduled(t *testing.T) {
	svc, _, _ := setupService()

	appt, err := svc.Create(context.Background(), validInput())
	require.NoError(t, err)
	_, err = svc.Cancel(context.Background(), appt.ID, "patient-1", models.RoleUser, "nope")
	require.NoError(t, err)

	_, err = svc.Reschedule(context.Background(), appt.ID, "patient-1", models.RoleUser, RescheduleInput{
		Date: "2025-06-03", StartTime: "14:00", EndTime: "14:30",
	})

	var cerr *ConflictError
	require.ErrorAs(t, err, &cerr)
}

func TestListForPatientEnrichment(t *testing.T) {
	svc, repo, _ := setupService()

	appt, err := svc.Create(context.Background(), validInput())
	require.NoError(t, err)

	// The repository loads the Doctor relation alongside each row.
	repo.appointments[appt.ID].Doctor = models.User{
		BaseModel: models.BaseModel{ID: "doctor-1"}, Name: "Doc", Email: "doc@example.com",
	}

	details, err := svc.ListForPatient(context.Background(), "patient-1")
	require.NoError(t, err)
	require.Len(t, details, 1)
	require.NotNil(t, details[0].Doctor)
	assert.Equal(t, "Doc", details[0].Doctor.Name)
	assert.Nil(t, details[0].Patient)
}

func TestListForDoctorEnrichment(t *testing.T) {
	svc, repo, _ := setupService()

	appt, err := svc.Create(context.Background(), validInput())
	require.NoError(t, err)

	repo.appointments[appt.ID].Patient = models.User{
		BaseModel: models.BaseModel{ID: "patient-1"}, Name: "Pat", Email: "pat@example.com",
	}

	details, err := svc.ListForDoctor(context.Background(), "doctor-1")
	require.NoError(t, err)
	require.Len(t, details, 1)
	require.NotNil(t, details[0].Patient)
	assert.Equal(t, "Pat", details[0].Patient.Name)
	assert.Nil(t, details[0].Doctor)
}
