package queue

import (
	"time"

	"github.com/google/uuid"
)

// Status is the lifecycle state of a queue entry.
type Status string

const (
	// StatusWaiting is the initial state: the patient sits in line.
	StatusWaiting Status = "waiting"
	// StatusAccepted means a doctor claimed the entry and a consultation
	// record was created for it.
	StatusAccepted Status = "accepted"
	// StatusCalled means the doctor summoned the patient without creating a
	// consultation record.
	StatusCalled Status = "called"
	// StatusInSession means the visit is underway.
	StatusInSession Status = "in_session"
	// StatusDone and StatusCanceled are terminal.
	StatusDone     Status = "done"
	StatusCanceled Status = "canceled"
)

var validStatuses = map[Status]bool{
	StatusWaiting:   true,
	StatusAccepted:  true,
	StatusCalled:    true,
	StatusInSession: true,
	StatusDone:      true,
	StatusCanceled:  true,
}

// Valid reports whether s is a known lifecycle status.
func (s Status) Valid() bool {
	return validStatuses[s]
}

// Active reports whether the entry still occupies a place in line. A patient
// may hold several active entries; the most recent one is their ticket.
func (s Status) Active() bool {
	return s == StatusWaiting || s == StatusCalled || s == StatusInSession
}

// Terminal reports whether no further transition is allowed from s.
func (s Status) Terminal() bool {
	return s == StatusDone || s == StatusCanceled || s == StatusAccepted
}

// Entry is one patient's place in a doctor's consultation queue.
//
// DoctorID is nil for the unassigned pool: patients who requested a
// consultation without choosing a doctor. Position is assigned by the store
// at insert and is only meaningful while the entry is waiting.
type Entry struct {
	ID             uuid.UUID  `json:"id"`
	DoctorID       *uuid.UUID `json:"doctor_id,omitempty"`
	PatientID      uuid.UUID  `json:"patient_id"`
	Status         Status     `json:"status"`
	Position       *int       `json:"position,omitempty"`
	ExpectedMins   *int       `json:"expected_minutes,omitempty"`
	IsFree         bool       `json:"is_free"`
	Price          *float64   `json:"price,omitempty"`
	Currency       *string    `json:"currency,omitempty"`
	RequestedAt    time.Time  `json:"requested_at"`
	CalledAt       *time.Time `json:"called_at,omitempty"`
	StartedAt      *time.Time `json:"started_at,omitempty"`
	EndedAt        *time.Time `json:"ended_at,omitempty"`
	CanceledAt     *time.Time `json:"canceled_at,omitempty"`
	ConsultationID *uuid.UUID `json:"consultation_id,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

// CallUpdate carries the optional field changes a doctor may attach when
// calling a patient in. Nil fields keep the entry's current values.
type CallUpdate struct {
	ExpectedMins *int     `json:"expected_minutes,omitempty"`
	IsFree       *bool    `json:"is_free,omitempty"`
	Price        *float64 `json:"price,omitempty"`
	Currency     *string  `json:"currency,omitempty"`
}

// Estimate is the wait projection shown to a waiting patient.
type Estimate struct {
	WaitingAhead     int `json:"waiting_ahead"`
	EstimatedMinutes int `json:"estimated_minutes"`
}

// Ticket is the patient-facing view of their active queue entry.
type Ticket struct {
	Entry    *Entry    `json:"entry"`
	Estimate *Estimate `json:"estimate,omitempty"`
}
