package identity

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
)

// -- Mock Repository --

type mockRepo struct {
	doctors  map[uuid.UUID]*Doctor
	patients map[uuid.UUID]*Patient
}

func newMockRepo() *mockRepo {
	return &mockRepo{
		doctors:  make(map[uuid.UUID]*Doctor),
		patients: make(map[uuid.UUID]*Patient),
	}
}

func (m *mockRepo) CreateDoctor(_ context.Context, d *Doctor) error {
	d.ID = uuid.New()
	d.CreatedAt = time.Now()
	d.UpdatedAt = time.Now()
	m.doctors[d.ID] = d
	return nil
}

func (m *mockRepo) GetDoctor(_ context.Context, id uuid.UUID) (*Doctor, error) {
	d, ok := m.doctors[id]
	if !ok {
		return nil, ErrDoctorNotFound
	}
	return d, nil
}

func (m *mockRepo) UpdateDoctor(_ context.Context, d *Doctor) error {
	if _, ok := m.doctors[d.ID]; !ok {
		return ErrDoctorNotFound
	}
	m.doctors[d.ID] = d
	return nil
}

func (m *mockRepo) ListDoctors(_ context.Context, limit, offset int) ([]*Doctor, int, error) {
	var result []*Doctor
	for _, d := range m.doctors {
		result = append(result, d)
	}
	return result, len(result), nil
}

func (m *mockRepo) CreatePatient(_ context.Context, p *Patient) error {
	p.ID = uuid.New()
	p.CreatedAt = time.Now()
	p.UpdatedAt = time.Now()
	m.patients[p.ID] = p
	return nil
}

func (m *mockRepo) GetPatient(_ context.Context, id uuid.UUID) (*Patient, error) {
	p, ok := m.patients[id]
	if !ok {
		return nil, ErrPatientNotFound
	}
	return p, nil
}

func (m *mockRepo) UpdatePatient(_ context.Context, p *Patient) error {
	if _, ok := m.patients[p.ID]; !ok {
		return ErrPatientNotFound
	}
	m.patients[p.ID] = p
	return nil
}

func (m *mockRepo) ListPatients(_ context.Context, limit, offset int) ([]*Patient, int, error) {
	var result []*Patient
	for _, p := range m.patients {
		result = append(result, p)
	}
	return result, len(result), nil
}

// -- Tests --

func newTestService() *Service {
	return NewService(newMockRepo())
}

func TestCreateDoctor(t *testing.T) {
	svc := newTestService()

	price := 40.0
	currency := "EUR"
	d := &Doctor{
		FullName:        "Dr. Example",
		Specialty:       "cardiology",
		DefaultPrice:    &price,
		DefaultCurrency: &currency,
	}
	if err := svc.CreateDoctor(context.Background(), d); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d.ID == uuid.Nil {
		t.Error("expected ID to be set")
	}
}

func TestCreateDoctor_Validation(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	if err := svc.CreateDoctor(ctx, &Doctor{Specialty: "cardiology"}); err == nil {
		t.Error("expected error for missing full_name")
	}
	if err := svc.CreateDoctor(ctx, &Doctor{FullName: "Dr. X"}); err == nil {
		t.Error("expected error for missing specialty")
	}

	price := 40.0
	free := &Doctor{FullName: "Dr. X", Specialty: "gp", IsFree: true, DefaultPrice: &price}
	if err := svc.CreateDoctor(ctx, free); err == nil {
		t.Error("expected error for free doctor with price")
	}

	noCurrency := &Doctor{FullName: "Dr. X", Specialty: "gp", DefaultPrice: &price}
	if err := svc.CreateDoctor(ctx, noCurrency); err == nil {
		t.Error("expected error for price without currency")
	}
}

func TestCreatePatient(t *testing.T) {
	svc := newTestService()

	p := &Patient{FullName: "Pat Example"}
	if err := svc.CreatePatient(context.Background(), p); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.ID == uuid.Nil {
		t.Error("expected ID to be set")
	}

	if err := svc.CreatePatient(context.Background(), &Patient{}); err == nil {
		t.Error("expected error for missing full_name")
	}
}

func TestGetDoctor_NotFound(t *testing.T) {
	svc := newTestService()

	_, err := svc.GetDoctor(context.Background(), uuid.New())
	if !errors.Is(err, ErrDoctorNotFound) {
		t.Errorf("expected ErrDoctorNotFound, got %v", err)
	}
}
