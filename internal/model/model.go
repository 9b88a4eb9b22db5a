package model

import (
	"fmt"
	"strings"
	"time"
)

// DateLayout is the wire and storage format for calendar dates. Dates are
// kept as plain YYYY-MM-DD strings, never instants, so there is no timezone
// ambiguity; ISO date strings also compare lexicographically in
// chronological order, which the query layer and aggregator rely on.
const DateLayout = "2006-01-02"

// User account statuses. Users are never hard-deleted; records must retain
// a resolvable owner reference.
const (
	StatusActive   = "active"
	StatusDisabled = "disabled"
)

type User struct {
	ID           string    `json:"userId"`
	Email        string    `json:"email"`
	DisplayName  string    `json:"displayName"`
	PasswordHash string    `json:"-"`
	Status       string    `json:"status"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// Medication is an owner-scoped prescription entry. Dosage and frequency
// are opaque display strings ("100mg", "Once daily") and are never parsed.
// (owner, name) is intentionally not unique: re-prescriptions may repeat
// a name.
type Medication struct {
	ID        string    `json:"id"`
	OwnerID   string    `json:"ownerId"`
	Name      string    `json:"name"`
	Dosage    string    `json:"dosage"`
	Frequency string    `json:"frequency"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Appointment is an owner-scoped scheduled visit. Time is an opaque local
// time-of-day display string in AM/PM convention ("09:00 AM"). Double
// booking is allowed, and past appointments stay queryable as history
// context.
type Appointment struct {
	ID          string    `json:"id"`
	OwnerID     string    `json:"ownerId"`
	Date        string    `json:"date"`
	Time        string    `json:"time"`
	Description string    `json:"description"`
	Doctor      string    `json:"doctor"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// HistoryEvent is an owner-scoped record of a past medical event. Events
// are immutable once created: there is no update operation anywhere in the
// system.
type HistoryEvent struct {
	ID          string    `json:"id"`
	OwnerID     string    `json:"ownerId"`
	Date        string    `json:"date"`
	Description string    `json:"description"`
	Doctor      string    `json:"doctor"`
	CreatedAt   time.Time `json:"createdAt"`
}

// RefreshToken is server-side session state. Only the sha256 hash of the
// raw token is stored.
type RefreshToken struct {
	ID         string
	UserID     string
	TokenHash  string
	ExpiresAt  time.Time
	Revoked    bool
	ReplacedBy *string
	CreatedAt  time.Time
}

// NormalizeEmail canonicalizes an address for the case-insensitive
// uniqueness rule.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// ValidDate reports whether s is a well-formed YYYY-MM-DD date.
func ValidDate(s string) bool {
	_, err := time.Parse(DateLayout, s)
	return err == nil
}

func (u *User) Validate() error {
	if NormalizeEmail(u.Email) == "" {
		return fmt.Errorf("%w: email required", ErrValidation)
	}
	return nil
}

func (m *Medication) Validate() error {
	if strings.TrimSpace(m.Name) == "" {
		return fmt.Errorf("%w: medication name required", ErrValidation)
	}
	return nil
}

func (a *Appointment) Validate() error {
	if a.Date == "" || strings.TrimSpace(a.Description) == "" {
		return fmt.Errorf("%w: date and description required", ErrValidation)
	}
	if !ValidDate(a.Date) {
		return fmt.Errorf("%w: date must be %s", ErrValidation, DateLayout)
	}
	return nil
}

func (h *HistoryEvent) Validate() error {
	if h.Date == "" || strings.TrimSpace(h.Description) == "" {
		return fmt.Errorf("%w: date and description required", ErrValidation)
	}
	if !ValidDate(h.Date) {
		return fmt.Errorf("%w: date must be %s", ErrValidation, DateLayout)
	}
	return nil
}

// Partial-update payloads. A nil field means "leave unchanged"; Apply
// merges the supplied fields into the record and re-validates. Apply never
// touches ID or OwnerID.

type UserUpdate struct {
	Email       *string `json:"email"`
	DisplayName *string `json:"displayName"`
}

func (u UserUpdate) Apply(target *User) error {
	if u.Email != nil {
		target.Email = NormalizeEmail(*u.Email)
	}
	if u.DisplayName != nil {
		target.DisplayName = *u.DisplayName
	}
	return target.Validate()
}

type MedicationUpdate struct {
	Name      *string `json:"name"`
	Dosage    *string `json:"dosage"`
	Frequency *string `json:"frequency"`
}

func (u MedicationUpdate) Apply(target *Medication) error {
	if u.Name != nil {
		target.Name = *u.Name
	}
	if u.Dosage != nil {
		target.Dosage = *u.Dosage
	}
	if u.Frequency != nil {
		target.Frequency = *u.Frequency
	}
	return target.Validate()
}

type AppointmentUpdate struct {
	Date        *string `json:"date"`
	Time        *string `json:"time"`
	Description *string `json:"description"`
	Doctor      *string `json:"doctor"`
}

func (u AppointmentUpdate) Apply(target *Appointment) error {
	if u.Date != nil {
		target.Date = *u.Date
	}
	if u.Time != nil {
		target.Time = *u.Time
	}
	if u.Description != nil {
		target.Description = *u.Description
	}
	if u.Doctor != nil {
		target.Doctor = *u.Doctor
	}
	return target.Validate()
}
