package consultation

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/google/uuid"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// CreateFromQueue records the consultation a doctor's accept produces. The
// queue service calls this before transitioning the entry; the price is
// copied from the entry at accept time so later price edits on the queue do
// not rewrite history.
func (s *Service) CreateFromQueue(ctx context.Context, patientID, doctorID uuid.UUID, price *float64, scheduledAt time.Time) (uuid.UUID, error) {
	if patientID == uuid.Nil {
		return uuid.Nil, fmt.Errorf("patient_id is required")
	}
	if doctorID == uuid.Nil {
		return uuid.Nil, fmt.Errorf("doctor_id is required")
	}
	c := &Consultation{
		PatientID:   patientID,
		DoctorID:    doctorID,
		Status:      StatusScheduled,
		ScheduledAt: scheduledAt,
		Price:       price,
	}
	if err := s.repo.Create(ctx, c); err != nil {
		return uuid.Nil, err
	}
	return c.ID, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Consultation, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) ListByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*Consultation, int, error) {
	return s.repo.ListByPatient(ctx, patientID, limit, offset)
}

func (s *Service) ListByDoctor(ctx context.Context, doctorID uuid.UUID, limit, offset int) ([]*Consultation, int, error) {
	return s.repo.ListByDoctor(ctx, doctorID, limit, offset)
}

// UpdateStatus sets the consultation's pipeline status. Any non-empty value
// is accepted; the set of statuses is clinic policy, not schema.
func (s *Service) UpdateStatus(ctx context.Context, id uuid.UUID, status string) error {
	if status == "" {
		return fmt.Errorf("status must not be empty")
	}
	return s.repo.UpdateStatus(ctx, id, status)
}

// SetSessionLink attaches the video-session URL patients join through.
func (s *Service) SetSessionLink(ctx context.Context, id uuid.UUID, link string) error {
	u, err := url.Parse(link)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("session link must be an absolute URL")
	}
	return s.repo.UpdateSessionLink(ctx, id, link)
}
