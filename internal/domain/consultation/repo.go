package consultation

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

// ErrNotFound is returned when no consultation exists for the given id.
var ErrNotFound = errors.New("consultation not found")

type Repository interface {
	Create(ctx context.Context, c *Consultation) error
	GetByID(ctx context.Context, id uuid.UUID) (*Consultation, error)
	ListByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*Consultation, int, error)
	ListByDoctor(ctx context.Context, doctorID uuid.UUID, limit, offset int) ([]*Consultation, int, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status string) error
	UpdateSessionLink(ctx context.Context, id uuid.UUID, link string) error
}
