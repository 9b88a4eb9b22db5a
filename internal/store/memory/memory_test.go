package memory_test

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"healthrecord-api/internal/model"
	"healthrecord-api/internal/store/memory"
)

func strPtr(s string) *string { return &s }

func farFuture() time.Time { return time.Now().Add(24 * time.Hour) }

func newMedication(owner, name string) *model.Medication {
	return &model.Medication{OwnerID: owner, Name: name, Dosage: "100mg", Frequency: "Once daily"}
}

func TestCreateMedicationEchoesFields(t *testing.T) {
	ctx := context.Background()
	st := memory.New()

	m := newMedication("owner-1", "Aspirin")
	require.NoError(t, st.CreateMedication(ctx, m))
	require.NotEmpty(t, m.ID)

	got, err := st.GetMedication(ctx, "owner-1", m.ID)
	require.NoError(t, err)
	assert.Equal(t, m.Name, got.Name)
	assert.Equal(t, m.Dosage, got.Dosage)
	assert.Equal(t, m.Frequency, got.Frequency)
	assert.Equal(t, "owner-1", got.OwnerID)
}

func TestCreateGeneratesUniqueIDs(t *testing.T) {
	ctx := context.Background()
	st := memory.New()

	seen := map[string]bool{}
	for i := 0; i < 50; i++ {
		m := newMedication("owner-1", fmt.Sprintf("med-%d", i))
		require.NoError(t, st.CreateMedication(ctx, m))
		require.False(t, seen[m.ID], "duplicate id %s", m.ID)
		seen[m.ID] = true
	}
}

func TestCreateMedicationValidation(t *testing.T) {
	ctx := context.Background()
	st := memory.New()

	err := st.CreateMedication(ctx, &model.Medication{OwnerID: "owner-1", Name: ""})
	assert.ErrorIs(t, err, model.ErrValidation)
}

func TestDuplicateMedicationNamesAllowed(t *testing.T) {
	ctx := context.Background()
	st := memory.New()

	// re-prescriptions may repeat a name
	require.NoError(t, st.CreateMedication(ctx, newMedication("owner-1", "Aspirin")))
	require.NoError(t, st.CreateMedication(ctx, newMedication("owner-1", "Aspirin")))

	meds, err := st.ListMedications(ctx, "owner-1")
	require.NoError(t, err)
	assert.Len(t, meds, 2)
}

func TestDeleteThenGetFails(t *testing.T) {
	ctx := context.Background()
	st := memory.New()

	m := newMedication("owner-1", "Aspirin")
	require.NoError(t, st.CreateMedication(ctx, m))
	require.NoError(t, st.DeleteMedication(ctx, "owner-1", m.ID))

	_, err := st.GetMedication(ctx, "owner-1", m.ID)
	assert.ErrorIs(t, err, model.ErrNotFound)

	// delete is not idempotent
	assert.ErrorIs(t, st.DeleteMedication(ctx, "owner-1", m.ID), model.ErrNotFound)
}

func TestUpdatePreservesIDAndOwner(t *testing.T) {
	ctx := context.Background()
	st := memory.New()

	m := newMedication("owner-1", "Aspirin")
	require.NoError(t, st.CreateMedication(ctx, m))

	got, err := st.UpdateMedication(ctx, "owner-1", m.ID, model.MedicationUpdate{
		Name:   strPtr("Lisinopril"),
		Dosage: strPtr("10mg"),
	})
	require.NoError(t, err)
	assert.Equal(t, m.ID, got.ID)
	assert.Equal(t, "owner-1", got.OwnerID)
	assert.Equal(t, "Lisinopril", got.Name)
	assert.Equal(t, "10mg", got.Dosage)
	assert.Equal(t, "Once daily", got.Frequency)
}

func TestListInsertionOrder(t *testing.T) {
	ctx := context.Background()
	st := memory.New()

	names := []string{"Aspirin", "Lisinopril", "Metformin"}
	for _, n := range names {
		require.NoError(t, st.CreateMedication(ctx, newMedication("owner-1", n)))
	}

	meds, err := st.ListMedications(ctx, "owner-1")
	require.NoError(t, err)
	require.Len(t, meds, 3)
	for i, n := range names {
		assert.Equal(t, n, meds[i].Name)
	}

	// a second call restarts the sequence from the top
	again, err := st.ListMedications(ctx, "owner-1")
	require.NoError(t, err)
	assert.Equal(t, meds, again)
}

func TestCrossOwnerIsolation(t *testing.T) {
	ctx := context.Background()
	st := memory.New()

	m := newMedication("owner-1", "Aspirin")
	require.NoError(t, st.CreateMedication(ctx, m))

	_, err := st.GetMedication(ctx, "owner-2", m.ID)
	assert.ErrorIs(t, err, model.ErrNotFound)

	_, err = st.UpdateMedication(ctx, "owner-2", m.ID, model.MedicationUpdate{Name: strPtr("Stolen")})
	assert.ErrorIs(t, err, model.ErrNotFound)

	assert.ErrorIs(t, st.DeleteMedication(ctx, "owner-2", m.ID), model.ErrNotFound)

	// the record is untouched
	got, err := st.GetMedication(ctx, "owner-1", m.ID)
	require.NoError(t, err)
	assert.Equal(t, "Aspirin", got.Name)

	meds, err := st.ListMedications(ctx, "owner-2")
	require.NoError(t, err)
	assert.Empty(t, meds)
}

func TestAppointmentLifecycle(t *testing.T) {
	ctx := context.Background()
	st := memory.New()

	a := &model.Appointment{
		OwnerID:     "owner-1",
		Date:        "2023-06-01",
		Time:        "09:00 AM",
		Description: "Dental check-up",
		Doctor:      "Dr. Brown",
	}
	require.NoError(t, st.CreateAppointment(ctx, a))

	// double booking the same slot is allowed
	dup := &model.Appointment{OwnerID: "owner-1", Date: "2023-06-01", Time: "09:00 AM", Description: "Second visit"}
	require.NoError(t, st.CreateAppointment(ctx, dup))

	got, err := st.GetAppointment(ctx, "owner-1", a.ID)
	require.NoError(t, err)
	assert.Equal(t, "Dental check-up", got.Description)

	upd, err := st.UpdateAppointment(ctx, "owner-1", a.ID, model.AppointmentUpdate{Time: strPtr("02:30 PM")})
	require.NoError(t, err)
	assert.Equal(t, "02:30 PM", upd.Time)
	assert.Equal(t, "2023-06-01", upd.Date)

	require.NoError(t, st.DeleteAppointment(ctx, "owner-1", a.ID))
	_, err = st.GetAppointment(ctx, "owner-1", a.ID)
	assert.ErrorIs(t, err, model.ErrNotFound)
}

func TestCreateAppointmentValidation(t *testing.T) {
	ctx := context.Background()
	st := memory.New()

	err := st.CreateAppointment(ctx, &model.Appointment{OwnerID: "owner-1", Description: "no date"})
	assert.ErrorIs(t, err, model.ErrValidation)

	err = st.CreateAppointment(ctx, &model.Appointment{OwnerID: "owner-1", Date: "2023-06-01"})
	assert.ErrorIs(t, err, model.ErrValidation)
}

func TestHistoryEventLifecycle(t *testing.T) {
	ctx := context.Background()
	st := memory.New()

	ev := &model.HistoryEvent{OwnerID: "owner-1", Date: "2023-05-15", Description: "Annual check-up", Doctor: "Dr. Smith"}
	require.NoError(t, st.CreateHistoryEvent(ctx, ev))

	got, err := st.GetHistoryEvent(ctx, "owner-1", ev.ID)
	require.NoError(t, err)
	assert.Equal(t, "Annual check-up", got.Description)

	_, err = st.GetHistoryEvent(ctx, "owner-2", ev.ID)
	assert.ErrorIs(t, err, model.ErrNotFound)

	require.NoError(t, st.DeleteHistoryEvent(ctx, "owner-1", ev.ID))
	assert.ErrorIs(t, st.DeleteHistoryEvent(ctx, "owner-1", ev.ID), model.ErrNotFound)
}

func TestUserLifecycle(t *testing.T) {
	ctx := context.Background()
	st := memory.New()

	u := &model.User{Email: "John.Doe@Example.com", DisplayName: "John Doe", PasswordHash: "x"}
	require.NoError(t, st.CreateUser(ctx, u))
	assert.Equal(t, "john.doe@example.com", u.Email)
	assert.Equal(t, model.StatusActive, u.Status)

	// email uniqueness is case-insensitive
	err := st.CreateUser(ctx, &model.User{Email: "JOHN.DOE@example.COM", PasswordHash: "y"})
	assert.ErrorIs(t, err, model.ErrConflict)

	byEmail, err := st.UserByEmail(ctx, "john.doe@EXAMPLE.com")
	require.NoError(t, err)
	assert.Equal(t, u.ID, byEmail.ID)

	upd, err := st.UpdateUser(ctx, u.ID, model.UserUpdate{DisplayName: strPtr("J. Doe")})
	require.NoError(t, err)
	assert.Equal(t, "J. Doe", upd.DisplayName)
	assert.Equal(t, u.ID, upd.ID)

	// soft disable keeps the row readable
	require.NoError(t, st.DisableUser(ctx, u.ID))
	got, err := st.GetUser(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusDisabled, got.Status)
}

func TestRefreshTokenRotation(t *testing.T) {
	ctx := context.Background()
	st := memory.New()

	u := &model.User{Email: "a@b.com", PasswordHash: "x"}
	require.NoError(t, st.CreateUser(ctx, u))

	id, err := st.CreateRefreshToken(ctx, u.ID, "hash-1", farFuture())
	require.NoError(t, err)

	rt, err := st.GetRefreshTokenByHash(ctx, "hash-1")
	require.NoError(t, err)
	assert.Equal(t, id, rt.ID)
	assert.False(t, rt.Revoked)

	require.NoError(t, st.RotateRefreshToken(ctx, id, "new-id", u.ID, "hash-2", farFuture()))

	old, err := st.GetRefreshTokenByHash(ctx, "hash-1")
	require.NoError(t, err)
	assert.True(t, old.Revoked)
	require.NotNil(t, old.ReplacedBy)
	assert.Equal(t, "new-id", *old.ReplacedBy)

	require.NoError(t, st.RevokeAllRefreshTokens(ctx, u.ID))
	nw, err := st.GetRefreshTokenByHash(ctx, "hash-2")
	require.NoError(t, err)
	assert.True(t, nw.Revoked)
}

func TestConcurrentCreatesAllSurvive(t *testing.T) {
	ctx := context.Background()
	st := memory.New()

	const n = 100
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			m := newMedication("owner-1", fmt.Sprintf("med-%d", i))
			if err := st.CreateMedication(ctx, m); err != nil {
				t.Errorf("create %d: %v", i, err)
			}
		}(i)
	}
	wg.Wait()

	meds, err := st.ListMedications(ctx, "owner-1")
	require.NoError(t, err)
	assert.Len(t, meds, n)
}

func TestListDoesNotAliasStoreState(t *testing.T) {
	ctx := context.Background()
	st := memory.New()

	m := newMedication("owner-1", "Aspirin")
	require.NoError(t, st.CreateMedication(ctx, m))

	meds, err := st.ListMedications(ctx, "owner-1")
	require.NoError(t, err)
	meds[0].Name = "Tampered"

	got, err := st.GetMedication(ctx, "owner-1", m.ID)
	require.NoError(t, err)
	assert.Equal(t, "Aspirin", got.Name)
}
