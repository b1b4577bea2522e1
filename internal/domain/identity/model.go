package identity

import (
	"time"

	"github.com/google/uuid"
)

// Doctor is a practitioner who runs a consultation queue. DefaultPrice and
// DefaultCurrency seed a patient's request when the patient does not choose
// pricing; a doctor offering free consultations sets IsFree instead.
type Doctor struct {
	ID              uuid.UUID `json:"id"`
	FullName        string    `json:"full_name"`
	Specialty       string    `json:"specialty"`
	Bio             *string   `json:"bio,omitempty"`
	IsFree          bool      `json:"is_free"`
	DefaultPrice    *float64  `json:"default_price,omitempty"`
	DefaultCurrency *string   `json:"default_currency,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// Patient is a person who can hold a place in a queue.
type Patient struct {
	ID        uuid.UUID  `json:"id"`
	FullName  string     `json:"full_name"`
	Email     *string    `json:"email,omitempty"`
	Phone     *string    `json:"phone,omitempty"`
	BirthDate *time.Time `json:"birth_date,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}
