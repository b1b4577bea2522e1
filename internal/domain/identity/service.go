package identity

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// validateDoctorPricing enforces the same pricing rule the queue applies:
// a doctor is either free or carries a default price with a currency.
func validateDoctorPricing(d *Doctor) error {
	if d.IsFree {
		if d.DefaultPrice != nil || d.DefaultCurrency != nil {
			return fmt.Errorf("a free doctor cannot carry a default price")
		}
		return nil
	}
	if d.DefaultPrice != nil {
		if *d.DefaultPrice <= 0 {
			return fmt.Errorf("default_price must be positive")
		}
		if d.DefaultCurrency == nil || *d.DefaultCurrency == "" {
			return fmt.Errorf("default_currency is required with default_price")
		}
	}
	return nil
}

func (s *Service) CreateDoctor(ctx context.Context, d *Doctor) error {
	if d.FullName == "" {
		return fmt.Errorf("full_name is required")
	}
	if d.Specialty == "" {
		return fmt.Errorf("specialty is required")
	}
	if err := validateDoctorPricing(d); err != nil {
		return err
	}
	return s.repo.CreateDoctor(ctx, d)
}

func (s *Service) GetDoctor(ctx context.Context, id uuid.UUID) (*Doctor, error) {
	return s.repo.GetDoctor(ctx, id)
}

func (s *Service) UpdateDoctor(ctx context.Context, d *Doctor) error {
	if d.FullName == "" {
		return fmt.Errorf("full_name is required")
	}
	if err := validateDoctorPricing(d); err != nil {
		return err
	}
	return s.repo.UpdateDoctor(ctx, d)
}

func (s *Service) ListDoctors(ctx context.Context, limit, offset int) ([]*Doctor, int, error) {
	return s.repo.ListDoctors(ctx, limit, offset)
}

func (s *Service) CreatePatient(ctx context.Context, p *Patient) error {
	if p.FullName == "" {
		return fmt.Errorf("full_name is required")
	}
	return s.repo.CreatePatient(ctx, p)
}

func (s *Service) GetPatient(ctx context.Context, id uuid.UUID) (*Patient, error) {
	return s.repo.GetPatient(ctx, id)
}

func (s *Service) UpdatePatient(ctx context.Context, p *Patient) error {
	if p.FullName == "" {
		return fmt.Errorf("full_name is required")
	}
	return s.repo.UpdatePatient(ctx, p)
}

func (s *Service) ListPatients(ctx context.Context, limit, offset int) ([]*Patient, int, error) {
	return s.repo.ListPatients(ctx, limit, offset)
}
