package consultation

import (
	"time"

	"github.com/google/uuid"
)

// Consultation is the clinical record produced when a doctor accepts a queue
// entry. Status is free text on purpose: clinics run different pipelines
// (scheduled, paid, report_sent, closed, ...) and the lifecycle machine lives
// on the queue entry, not here.
type Consultation struct {
	ID          uuid.UUID `json:"id"`
	PatientID   uuid.UUID `json:"patient_id"`
	DoctorID    uuid.UUID `json:"doctor_id"`
	Status      string    `json:"status"`
	ScheduledAt time.Time `json:"scheduled_at"`
	SessionLink *string   `json:"session_link,omitempty"`
	Price       *float64  `json:"price,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// StatusScheduled is the initial status stamped on accept.
const StatusScheduled = "scheduled"
