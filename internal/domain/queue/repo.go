package queue

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Repository is the persistence boundary for queue entries.
//
// The Mark* methods are conditional transitions: each updates the entry only
// when it is still in the state the transition expects, and returns
// ErrPrecondition when a concurrent writer moved it first. Create assigns the
// entry's position; callers never choose one.
type Repository interface {
	Create(ctx context.Context, e *Entry) error
	GetByID(ctx context.Context, id uuid.UUID) (*Entry, error)
	ListForDoctor(ctx context.Context, doctorID uuid.UUID, limit, offset int) ([]*Entry, int, error)
	ListActiveForPatient(ctx context.Context, patientID uuid.UUID) ([]*Entry, error)
	CountWaitingAhead(ctx context.Context, e *Entry) (int, error)
	CountWaitingByDoctor(ctx context.Context) (map[uuid.UUID]int, error)

	MarkAccepted(ctx context.Context, id, doctorID, consultationID uuid.UUID, at time.Time) error
	MarkCalled(ctx context.Context, id, doctorID uuid.UUID, upd CallUpdate, at time.Time) error
	MarkStarted(ctx context.Context, id uuid.UUID, at time.Time) error
	MarkEnded(ctx context.Context, id uuid.UUID, at time.Time) error
	MarkCanceled(ctx context.Context, id uuid.UUID, at time.Time) error
}
