package queue

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/teleclinic/teleclinic/internal/platform/settings"
	"github.com/teleclinic/teleclinic/internal/platform/telemetry"
)

// ConsultationCreator creates the consultation record an accept produces.
// Satisfied by the consultation service; kept as a local interface so the
// queue package does not import it.
type ConsultationCreator interface {
	CreateFromQueue(ctx context.Context, patientID, doctorID uuid.UUID, price *float64, scheduledAt time.Time) (uuid.UUID, error)
}

type Service struct {
	repo          Repository
	consultations ConsultationCreator
	settings      *settings.Service
	tel           *telemetry.Provider
}

func NewService(repo Repository, consultations ConsultationCreator, set *settings.Service) *Service {
	return &Service{repo: repo, consultations: consultations, settings: set}
}

// SetTelemetry attaches an optional telemetry provider to the service.
func (s *Service) SetTelemetry(tel *telemetry.Provider) {
	s.tel = tel
}

func (s *Service) countTransition(name string) {
	if s.tel != nil {
		s.tel.QueueTransitionCounter(name)
	}
}

// RequestInput carries a patient's consultation request.
type RequestInput struct {
	PatientID uuid.UUID
	DoctorID  *uuid.UUID
	IsFree    bool
	Price     *float64
	Currency  *string
}

// Request places the patient in line. Exactly one of is_free or a
// price/currency pair must be supplied. Concurrent active entries for the
// same patient are possible and not deduplicated; the patient-facing ticket
// is always the most recent one.
func (s *Service) Request(ctx context.Context, in RequestInput) (*Entry, error) {
	if in.PatientID == uuid.Nil {
		return nil, fmt.Errorf("patient_id is required")
	}
	if in.IsFree {
		if in.Price != nil || in.Currency != nil {
			return nil, fmt.Errorf("a free consultation cannot carry a price")
		}
	} else {
		if in.Price == nil || in.Currency == nil {
			return nil, fmt.Errorf("price and currency are required for a paid consultation")
		}
		if *in.Price <= 0 {
			return nil, fmt.Errorf("price must be positive")
		}
		if *in.Currency == "" {
			return nil, fmt.Errorf("currency must not be empty")
		}
	}

	e := &Entry{
		DoctorID:  in.DoctorID,
		PatientID: in.PatientID,
		IsFree:    in.IsFree,
		Price:     in.Price,
		Currency:  in.Currency,
	}
	if err := s.repo.Create(ctx, e); err != nil {
		return nil, err
	}
	s.countTransition("request")
	return e, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Entry, error) {
	return s.repo.GetByID(ctx, id)
}

// ListForDoctor returns the console view for a doctor: their own entries plus
// the unassigned pool, waiting entries first in position order.
func (s *Service) ListForDoctor(ctx context.Context, doctorID uuid.UUID, limit, offset int) ([]*Entry, int, error) {
	return s.repo.ListForDoctor(ctx, doctorID, limit, offset)
}

// ActiveTicket returns the patient's most recent active entry with a wait
// projection attached while the entry is still waiting. The projection counts
// entries still waiting ahead in the same doctor queue, so it is unaffected by
// earlier entries that were called or canceled. ErrNotFound means the patient
// is not in any queue.
func (s *Service) ActiveTicket(ctx context.Context, patientID uuid.UUID) (*Ticket, error) {
	entries, err := s.repo.ListActiveForPatient(ctx, patientID)
	if err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return nil, ErrNotFound
	}

	t := &Ticket{Entry: entries[0]}
	if t.Entry.Status == StatusWaiting && t.Entry.Position != nil {
		ahead, err := s.repo.CountWaitingAhead(ctx, t.Entry)
		if err != nil {
			return nil, err
		}
		avg := DefaultAvgVisitMinutes
		if s.settings != nil {
			avg = s.settings.GetInt(ctx, settings.KeyAvgVisitMinutes, DefaultAvgVisitMinutes)
		}
		est := EstimateWait(ahead, avg)
		t.Estimate = &est
	}
	return t, nil
}

// Accept claims a waiting entry for the doctor: a consultation record is
// created first, then the entry transitions conditionally. When the
// transition loses a race after the consultation was created, the failure is
// surfaced as an OrphanedConsultationError carrying the consultation id.
func (s *Service) Accept(ctx context.Context, id, doctorID uuid.UUID) (*Entry, error) {
	e, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if e.PatientID == uuid.Nil {
		return nil, fmt.Errorf("queue entry has no patient")
	}
	if e.DoctorID != nil && *e.DoctorID != doctorID {
		return nil, fmt.Errorf("%w: entry belongs to another doctor's queue", ErrPermission)
	}
	if e.Status != StatusWaiting {
		return nil, fmt.Errorf("%w: entry is %s", ErrPrecondition, e.Status)
	}

	now := time.Now().UTC()
	consultationID, err := s.consultations.CreateFromQueue(ctx, e.PatientID, doctorID, e.Price, now)
	if err != nil {
		return nil, fmt.Errorf("create consultation: %w", err)
	}

	if err := s.repo.MarkAccepted(ctx, id, doctorID, consultationID, now); err != nil {
		return nil, &OrphanedConsultationError{ConsultationID: consultationID, Err: err}
	}

	s.countTransition("accept")
	return s.repo.GetByID(ctx, id)
}

// Call summons a waiting patient without creating a consultation record.
func (s *Service) Call(ctx context.Context, id, doctorID uuid.UUID, upd CallUpdate) (*Entry, error) {
	e, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if e.DoctorID != nil && *e.DoctorID != doctorID {
		return nil, fmt.Errorf("%w: entry belongs to another doctor's queue", ErrPermission)
	}
	if e.Status != StatusWaiting {
		return nil, fmt.Errorf("%w: entry is %s", ErrPrecondition, e.Status)
	}
	if upd.ExpectedMins != nil && *upd.ExpectedMins <= 0 {
		return nil, fmt.Errorf("expected_minutes must be positive")
	}

	if err := s.repo.MarkCalled(ctx, id, doctorID, upd, time.Now().UTC()); err != nil {
		return nil, err
	}
	s.countTransition("call")
	return s.repo.GetByID(ctx, id)
}

// Start begins the session for a called patient.
func (s *Service) Start(ctx context.Context, id, doctorID uuid.UUID) (*Entry, error) {
	e, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if e.DoctorID != nil && doctorID != uuid.Nil && *e.DoctorID != doctorID {
		return nil, fmt.Errorf("%w: entry belongs to another doctor's queue", ErrPermission)
	}
	if e.Status != StatusCalled {
		return nil, fmt.Errorf("%w: entry is %s", ErrPrecondition, e.Status)
	}

	if err := s.repo.MarkStarted(ctx, id, time.Now().UTC()); err != nil {
		return nil, err
	}
	s.countTransition("start")
	return s.repo.GetByID(ctx, id)
}

// End finishes an in-session visit.
func (s *Service) End(ctx context.Context, id, doctorID uuid.UUID) (*Entry, error) {
	e, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if e.DoctorID != nil && doctorID != uuid.Nil && *e.DoctorID != doctorID {
		return nil, fmt.Errorf("%w: entry belongs to another doctor's queue", ErrPermission)
	}
	if e.Status != StatusInSession {
		return nil, fmt.Errorf("%w: entry is %s", ErrPrecondition, e.Status)
	}

	if err := s.repo.MarkEnded(ctx, id, time.Now().UTC()); err != nil {
		return nil, err
	}
	s.countTransition("end")
	return s.repo.GetByID(ctx, id)
}

// Cancel withdraws a waiting entry. Only the owning patient may cancel, and
// only while the entry is still waiting.
func (s *Service) Cancel(ctx context.Context, id, patientID uuid.UUID) (*Entry, error) {
	e, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if e.PatientID != patientID {
		return nil, fmt.Errorf("%w: only the owning patient may cancel", ErrPermission)
	}
	if e.Status != StatusWaiting {
		return nil, fmt.Errorf("%w: entry is %s", ErrPrecondition, e.Status)
	}

	if err := s.repo.MarkCanceled(ctx, id, time.Now().UTC()); err != nil {
		return nil, err
	}
	s.countTransition("cancel")
	return s.repo.GetByID(ctx, id)
}
