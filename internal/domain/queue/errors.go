package queue

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

var (
	// ErrNotFound is returned when no queue entry exists for the given id.
	ErrNotFound = errors.New("queue entry not found")

	// ErrPermission is returned when the actor is not allowed to perform the
	// operation on this entry (e.g. canceling someone else's ticket).
	ErrPermission = errors.New("operation not permitted on this queue entry")

	// ErrPrecondition is returned when the entry is not in a state the
	// requested transition accepts, including when a concurrent writer won
	// the conditional update.
	ErrPrecondition = errors.New("queue entry state does not allow this transition")
)

// OrphanedConsultationError reports an accept that created a consultation
// record but then failed to transition the queue entry. The consultation
// exists with no accepted entry pointing at it and needs operator attention.
type OrphanedConsultationError struct {
	ConsultationID uuid.UUID
	Err            error
}

func (e *OrphanedConsultationError) Error() string {
	return fmt.Sprintf("accept failed after consultation %s was created: %v", e.ConsultationID, e.Err)
}

func (e *OrphanedConsultationError) Unwrap() error {
	return e.Err
}
