package model_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"healthrecord-api/internal/model"
)

func strPtr(s string) *string { return &s }

func TestMedicationValidate(t *testing.T) {
	m := &model.Medication{OwnerID: "u1", Name: "Aspirin", Dosage: "100mg", Frequency: "Once daily"}
	require.NoError(t, m.Validate())

	m.Name = "   "
	err := m.Validate()
	require.Error(t, err)
	assert.ErrorIs(t, err, model.ErrValidation)
}

func TestAppointmentValidate(t *testing.T) {
	tests := []struct {
		name string
		appt model.Appointment
		ok   bool
	}{
		{"valid", model.Appointment{Date: "2023-06-01", Description: "Dental check-up"}, true},
		{"missing date", model.Appointment{Description: "Dental check-up"}, false},
		{"missing description", model.Appointment{Date: "2023-06-01"}, false},
		{"bad date format", model.Appointment{Date: "06/01/2023", Description: "x"}, false},
		{"impossible date", model.Appointment{Date: "2023-02-30", Description: "x"}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.appt.Validate()
			if tt.ok {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, model.ErrValidation)
			}
		})
	}
}

func TestHistoryEventValidate(t *testing.T) {
	ev := &model.HistoryEvent{Date: "2023-05-15", Description: "Annual check-up", Doctor: "Dr. Smith"}
	require.NoError(t, ev.Validate())

	ev.Description = ""
	assert.ErrorIs(t, ev.Validate(), model.ErrValidation)
}

func TestMedicationUpdateApply(t *testing.T) {
	m := model.Medication{ID: "m1", OwnerID: "u1", Name: "Aspirin", Dosage: "100mg", Frequency: "Once daily"}

	// partial: only dosage supplied
	require.NoError(t, model.MedicationUpdate{Dosage: strPtr("200mg")}.Apply(&m))
	assert.Equal(t, "Aspirin", m.Name)
	assert.Equal(t, "200mg", m.Dosage)
	assert.Equal(t, "Once daily", m.Frequency)
	assert.Equal(t, "m1", m.ID)
	assert.Equal(t, "u1", m.OwnerID)

	// clearing the name is rejected
	assert.ErrorIs(t, model.MedicationUpdate{Name: strPtr("")}.Apply(&m), model.ErrValidation)
}

func TestAppointmentUpdateApply(t *testing.T) {
	a := model.Appointment{ID: "a1", OwnerID: "u1", Date: "2023-06-01", Time: "09:00 AM", Description: "Dental check-up", Doctor: "Dr. Brown"}

	require.NoError(t, model.AppointmentUpdate{Date: strPtr("2023-06-15"), Doctor: strPtr("Dr. Davis")}.Apply(&a))
	assert.Equal(t, "2023-06-15", a.Date)
	assert.Equal(t, "Dr. Davis", a.Doctor)
	assert.Equal(t, "09:00 AM", a.Time)

	assert.ErrorIs(t, model.AppointmentUpdate{Date: strPtr("not-a-date")}.Apply(&a), model.ErrValidation)
}

func TestNormalizeEmail(t *testing.T) {
	assert.Equal(t, "john.doe@example.com", model.NormalizeEmail("  John.Doe@Example.COM "))
}
