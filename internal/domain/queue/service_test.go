package queue

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/teleclinic/teleclinic/internal/platform/settings"
)

// -- Mock Repository --

type mockRepo struct {
	entries map[uuid.UUID]*Entry
	maxPos  map[uuid.UUID]int // keyed by doctor id, uuid.Nil for unassigned
	seq     int               // keeps requested_at strictly increasing

	failAccept error // forced MarkAccepted failure, simulates a lost race
}

func newMockRepo() *mockRepo {
	return &mockRepo{
		entries: make(map[uuid.UUID]*Entry),
		maxPos:  make(map[uuid.UUID]int),
	}
}

func doctorKey(id *uuid.UUID) uuid.UUID {
	if id == nil {
		return uuid.Nil
	}
	return *id
}

func (m *mockRepo) Create(_ context.Context, e *Entry) error {
	e.ID = uuid.New()
	e.Status = StatusWaiting
	key := doctorKey(e.DoctorID)
	m.maxPos[key]++
	pos := m.maxPos[key]
	e.Position = &pos
	m.seq++
	now := time.Now().UTC().Add(time.Duration(m.seq) * time.Millisecond)
	e.RequestedAt = now
	e.CreatedAt = now
	e.UpdatedAt = now
	m.entries[e.ID] = e
	return nil
}

func (m *mockRepo) GetByID(_ context.Context, id uuid.UUID) (*Entry, error) {
	e, ok := m.entries[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *e
	return &cp, nil
}

func (m *mockRepo) ListForDoctor(_ context.Context, doctorID uuid.UUID, limit, offset int) ([]*Entry, int, error) {
	var result []*Entry
	for _, e := range m.entries {
		if e.DoctorID == nil || *e.DoctorID == doctorID {
			cp := *e
			result = append(result, &cp)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		a, b := result[i], result[j]
		if a.Status != b.Status {
			return a.Status < b.Status
		}
		ap, bp := posOrMax(a.Position), posOrMax(b.Position)
		if ap != bp {
			return ap < bp
		}
		return a.RequestedAt.Before(b.RequestedAt)
	})
	total := len(result)
	if offset > total {
		offset = total
	}
	end := offset + limit
	if end > total {
		end = total
	}
	return result[offset:end], total, nil
}

func posOrMax(p *int) int {
	if p == nil {
		return int(^uint(0) >> 1)
	}
	return *p
}

func (m *mockRepo) ListActiveForPatient(_ context.Context, patientID uuid.UUID) ([]*Entry, error) {
	var result []*Entry
	for _, e := range m.entries {
		if e.PatientID == patientID && e.Status.Active() {
			cp := *e
			result = append(result, &cp)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].RequestedAt.After(result[j].RequestedAt)
	})
	return result, nil
}

func (m *mockRepo) CountWaitingAhead(_ context.Context, e *Entry) (int, error) {
	n := 0
	for _, other := range m.entries {
		if other.Status == StatusWaiting &&
			doctorKey(other.DoctorID) == doctorKey(e.DoctorID) &&
			other.Position != nil && e.Position != nil && *other.Position < *e.Position {
			n++
		}
	}
	return n, nil
}

func (m *mockRepo) CountWaitingByDoctor(_ context.Context) (map[uuid.UUID]int, error) {
	counts := make(map[uuid.UUID]int)
	for _, e := range m.entries {
		if e.Status == StatusWaiting {
			counts[doctorKey(e.DoctorID)]++
		}
	}
	return counts, nil
}

func (m *mockRepo) transition(id uuid.UUID, from, to Status, at time.Time, mutate func(*Entry)) error {
	e, ok := m.entries[id]
	if !ok || e.Status != from {
		return ErrPrecondition
	}
	e.Status = to
	e.UpdatedAt = at
	if mutate != nil {
		mutate(e)
	}
	return nil
}

func (m *mockRepo) MarkAccepted(_ context.Context, id, doctorID, consultationID uuid.UUID, at time.Time) error {
	if m.failAccept != nil {
		return m.failAccept
	}
	return m.transition(id, StatusWaiting, StatusAccepted, at, func(e *Entry) {
		d := doctorID
		e.DoctorID = &d
		c := consultationID
		e.ConsultationID = &c
		e.CalledAt = &at
	})
}

func (m *mockRepo) MarkCalled(_ context.Context, id, doctorID uuid.UUID, upd CallUpdate, at time.Time) error {
	return m.transition(id, StatusWaiting, StatusCalled, at, func(e *Entry) {
		if e.DoctorID == nil {
			d := doctorID
			e.DoctorID = &d
		}
		e.CalledAt = &at
		if upd.ExpectedMins != nil {
			e.ExpectedMins = upd.ExpectedMins
		}
		if upd.IsFree != nil {
			e.IsFree = *upd.IsFree
		}
		if e.IsFree {
			e.Price = nil
			e.Currency = nil
		} else {
			if upd.Price != nil {
				e.Price = upd.Price
			}
			if upd.Currency != nil {
				e.Currency = upd.Currency
			}
		}
	})
}

func (m *mockRepo) MarkStarted(_ context.Context, id uuid.UUID, at time.Time) error {
	return m.transition(id, StatusCalled, StatusInSession, at, func(e *Entry) {
		e.StartedAt = &at
	})
}

func (m *mockRepo) MarkEnded(_ context.Context, id uuid.UUID, at time.Time) error {
	return m.transition(id, StatusInSession, StatusDone, at, func(e *Entry) {
		e.EndedAt = &at
	})
}

func (m *mockRepo) MarkCanceled(_ context.Context, id uuid.UUID, at time.Time) error {
	return m.transition(id, StatusWaiting, StatusCanceled, at, func(e *Entry) {
		e.CanceledAt = &at
	})
}

// -- Mock consultation creator --

type mockConsultations struct {
	created []uuid.UUID
	failErr error
}

func (m *mockConsultations) CreateFromQueue(_ context.Context, patientID, doctorID uuid.UUID, price *float64, scheduledAt time.Time) (uuid.UUID, error) {
	if m.failErr != nil {
		return uuid.Nil, m.failErr
	}
	id := uuid.New()
	m.created = append(m.created, id)
	return id, nil
}

// -- Mock settings store --

type mockSettingsStore struct {
	values map[string]string
}

func (m *mockSettingsStore) Get(_ context.Context, key string) (string, error) {
	v, ok := m.values[key]
	if !ok {
		return "", fmt.Errorf("setting %s not found", key)
	}
	return v, nil
}

func (m *mockSettingsStore) Set(_ context.Context, key, value string) error {
	m.values[key] = value
	return nil
}

func newTestService() (*Service, *mockRepo, *mockConsultations, *mockSettingsStore) {
	repo := newMockRepo()
	cons := &mockConsultations{}
	store := &mockSettingsStore{values: make(map[string]string)}
	svc := NewService(repo, cons, settings.NewService(store))
	return svc, repo, cons, store
}

func paidInput(patientID uuid.UUID, doctorID *uuid.UUID) RequestInput {
	price := 30.0
	currency := "EUR"
	return RequestInput{
		PatientID: patientID,
		DoctorID:  doctorID,
		Price:     &price,
		Currency:  &currency,
	}
}

// -- Estimation --

func TestEstimateWait(t *testing.T) {
	tests := []struct {
		ahead, avg int
		want       Estimate
	}{
		{0, 10, Estimate{WaitingAhead: 0, EstimatedMinutes: 0}},
		{3, 15, Estimate{WaitingAhead: 3, EstimatedMinutes: 45}},
		{1, 10, Estimate{WaitingAhead: 1, EstimatedMinutes: 10}},
		{-1, 10, Estimate{WaitingAhead: 0, EstimatedMinutes: 0}},
	}
	for _, tt := range tests {
		got := EstimateWait(tt.ahead, tt.avg)
		if got != tt.want {
			t.Errorf("EstimateWait(%d, %d) = %+v, want %+v", tt.ahead, tt.avg, got, tt.want)
		}
	}
}

// -- Request --

func TestRequest(t *testing.T) {
	svc, _, _, _ := newTestService()

	doctorID := uuid.New()
	e, err := svc.Request(context.Background(), paidInput(uuid.New(), &doctorID))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if e.Status != StatusWaiting {
		t.Errorf("expected waiting, got %s", e.Status)
	}
	if e.Position == nil || *e.Position != 1 {
		t.Errorf("expected position 1, got %v", e.Position)
	}
	if e.RequestedAt.IsZero() {
		t.Error("expected requested_at to be set")
	}
}

func TestRequest_PositionsIncrease(t *testing.T) {
	svc, _, _, _ := newTestService()

	doctorID := uuid.New()
	otherDoctor := uuid.New()

	first, err := svc.Request(context.Background(), paidInput(uuid.New(), &doctorID))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := svc.Request(context.Background(), paidInput(uuid.New(), &doctorID))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	other, err := svc.Request(context.Background(), paidInput(uuid.New(), &otherDoctor))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if *first.Position != 1 || *second.Position != 2 {
		t.Errorf("expected positions 1 and 2, got %d and %d", *first.Position, *second.Position)
	}
	if *other.Position != 1 {
		t.Errorf("expected independent position 1 for other doctor, got %d", *other.Position)
	}
}

func TestRequest_PricingInvariant(t *testing.T) {
	svc, _, _, _ := newTestService()
	ctx := context.Background()

	price := 30.0
	currency := "EUR"

	// Free entries cannot carry a price.
	_, err := svc.Request(ctx, RequestInput{PatientID: uuid.New(), IsFree: true, Price: &price})
	if err == nil {
		t.Error("expected error for free entry with price")
	}

	// Paid entries need both price and currency.
	_, err = svc.Request(ctx, RequestInput{PatientID: uuid.New(), Currency: &currency})
	if err == nil {
		t.Error("expected error for paid entry without price")
	}
	_, err = svc.Request(ctx, RequestInput{PatientID: uuid.New(), Price: &price})
	if err == nil {
		t.Error("expected error for paid entry without currency")
	}

	// Free with no pricing is fine.
	if _, err := svc.Request(ctx, RequestInput{PatientID: uuid.New(), IsFree: true}); err != nil {
		t.Errorf("unexpected error for free entry: %v", err)
	}
}

func TestRequest_PatientRequired(t *testing.T) {
	svc, _, _, _ := newTestService()

	_, err := svc.Request(context.Background(), RequestInput{IsFree: true})
	if err == nil {
		t.Error("expected error for missing patient_id")
	}
}

func TestRequest_MultipleActiveNotDeduplicated(t *testing.T) {
	svc, _, _, _ := newTestService()
	ctx := context.Background()

	patientID := uuid.New()
	if _, err := svc.Request(ctx, paidInput(patientID, nil)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := svc.Request(ctx, paidInput(patientID, nil))
	if err != nil {
		t.Fatalf("expected a second concurrent entry to be allowed, got %v", err)
	}

	// The patient-facing ticket is the most recent entry.
	ticket, err := svc.ActiveTicket(ctx, patientID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ticket.Entry.ID != second.ID {
		t.Error("expected the most recent entry to be the patient's ticket")
	}
}

// -- Accept --

func TestAccept(t *testing.T) {
	svc, _, cons, _ := newTestService()
	ctx := context.Background()

	doctorID := uuid.New()
	e, _ := svc.Request(ctx, paidInput(uuid.New(), &doctorID))

	accepted, err := svc.Accept(ctx, e.ID, doctorID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if accepted.Status != StatusAccepted {
		t.Errorf("expected accepted, got %s", accepted.Status)
	}
	if len(cons.created) != 1 {
		t.Fatalf("expected 1 consultation, got %d", len(cons.created))
	}
	if accepted.ConsultationID == nil || *accepted.ConsultationID != cons.created[0] {
		t.Error("expected entry to link the created consultation")
	}
	if accepted.CalledAt == nil {
		t.Error("expected called_at to be set on the accepted entry")
	}
}

func TestAccept_UnassignedEntry(t *testing.T) {
	svc, _, _, _ := newTestService()
	ctx := context.Background()

	e, _ := svc.Request(ctx, paidInput(uuid.New(), nil))

	doctorID := uuid.New()
	accepted, err := svc.Accept(ctx, e.ID, doctorID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if accepted.DoctorID == nil || *accepted.DoctorID != doctorID {
		t.Error("expected accepting doctor to claim the entry")
	}
}

func TestAccept_WrongDoctor(t *testing.T) {
	svc, _, cons, _ := newTestService()
	ctx := context.Background()

	doctorID := uuid.New()
	e, _ := svc.Request(ctx, paidInput(uuid.New(), &doctorID))

	_, err := svc.Accept(ctx, e.ID, uuid.New())
	if !errors.Is(err, ErrPermission) {
		t.Errorf("expected ErrPermission, got %v", err)
	}
	if len(cons.created) != 0 {
		t.Error("expected no consultation on rejected accept")
	}
}

func TestAccept_NotWaiting(t *testing.T) {
	svc, _, cons, _ := newTestService()
	ctx := context.Background()

	doctorID := uuid.New()
	e, _ := svc.Request(ctx, paidInput(uuid.New(), &doctorID))
	if _, err := svc.Accept(ctx, e.ID, doctorID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	_, err := svc.Accept(ctx, e.ID, doctorID)
	if !errors.Is(err, ErrPrecondition) {
		t.Errorf("expected ErrPrecondition for second accept, got %v", err)
	}
	if len(cons.created) != 1 {
		t.Errorf("expected no extra consultation, got %d", len(cons.created))
	}
}

func TestAccept_EmptyPatient(t *testing.T) {
	svc, repo, cons, _ := newTestService()

	// A corrupted row with no patient must be rejected before any
	// consultation is created.
	e := &Entry{ID: uuid.New(), Status: StatusWaiting}
	repo.entries[e.ID] = e

	_, err := svc.Accept(context.Background(), e.ID, uuid.New())
	if err == nil {
		t.Fatal("expected error for entry without patient")
	}
	if len(cons.created) != 0 {
		t.Error("expected no consultation for rejected accept")
	}
	if repo.entries[e.ID].Status != StatusWaiting {
		t.Error("expected entry to stay waiting")
	}
}

func TestAccept_LostRaceOrphansConsultation(t *testing.T) {
	svc, repo, cons, _ := newTestService()
	ctx := context.Background()

	doctorID := uuid.New()
	e, _ := svc.Request(ctx, paidInput(uuid.New(), &doctorID))

	// The conditional update loses: another writer moved the entry between
	// the consultation insert and the transition.
	repo.failAccept = ErrPrecondition

	_, err := svc.Accept(ctx, e.ID, doctorID)
	var orphan *OrphanedConsultationError
	if !errors.As(err, &orphan) {
		t.Fatalf("expected OrphanedConsultationError, got %v", err)
	}
	if len(cons.created) != 1 || orphan.ConsultationID != cons.created[0] {
		t.Error("expected the orphan error to carry the created consultation id")
	}
	if !errors.Is(err, ErrPrecondition) {
		t.Error("expected the orphan error to wrap the underlying cause")
	}
}

func TestAccept_ConsultationCreateFails(t *testing.T) {
	svc, repo, cons, _ := newTestService()
	ctx := context.Background()

	doctorID := uuid.New()
	e, _ := svc.Request(ctx, paidInput(uuid.New(), &doctorID))
	cons.failErr = errors.New("db down")

	_, err := svc.Accept(ctx, e.ID, doctorID)
	if err == nil {
		t.Fatal("expected error when consultation create fails")
	}
	var orphan *OrphanedConsultationError
	if errors.As(err, &orphan) {
		t.Error("a failed create leaves nothing orphaned")
	}
	if repo.entries[e.ID].Status != StatusWaiting {
		t.Error("expected entry to stay waiting")
	}
}

// -- Call / Start / End --

func TestCall(t *testing.T) {
	svc, _, _, _ := newTestService()
	ctx := context.Background()

	e, _ := svc.Request(ctx, paidInput(uuid.New(), nil))

	doctorID := uuid.New()
	mins := 15
	called, err := svc.Call(ctx, e.ID, doctorID, CallUpdate{ExpectedMins: &mins})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if called.Status != StatusCalled {
		t.Errorf("expected called, got %s", called.Status)
	}
	if called.DoctorID == nil || *called.DoctorID != doctorID {
		t.Error("expected calling doctor to claim the unassigned entry")
	}
	if called.ExpectedMins == nil || *called.ExpectedMins != 15 {
		t.Errorf("expected expected_minutes 15, got %v", called.ExpectedMins)
	}
	if called.CalledAt == nil {
		t.Error("expected called_at to be set")
	}
	if called.ConsultationID != nil {
		t.Error("call must not create a consultation")
	}
}

func TestCall_FreeClearsPrice(t *testing.T) {
	svc, _, _, _ := newTestService()
	ctx := context.Background()

	doctorID := uuid.New()
	e, _ := svc.Request(ctx, paidInput(uuid.New(), &doctorID))

	free := true
	called, err := svc.Call(ctx, e.ID, doctorID, CallUpdate{IsFree: &free})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !called.IsFree {
		t.Error("expected entry to become free")
	}
	if called.Price != nil || called.Currency != nil {
		t.Error("expected price and currency cleared on a free entry")
	}
}

func TestCall_WrongDoctor(t *testing.T) {
	svc, _, _, _ := newTestService()
	ctx := context.Background()

	doctorID := uuid.New()
	e, _ := svc.Request(ctx, paidInput(uuid.New(), &doctorID))

	_, err := svc.Call(ctx, e.ID, uuid.New(), CallUpdate{})
	if !errors.Is(err, ErrPermission) {
		t.Errorf("expected ErrPermission, got %v", err)
	}
}

func TestStartAndEnd(t *testing.T) {
	svc, _, _, _ := newTestService()
	ctx := context.Background()

	doctorID := uuid.New()
	e, _ := svc.Request(ctx, paidInput(uuid.New(), &doctorID))

	if _, err := svc.Start(ctx, e.ID, doctorID); !errors.Is(err, ErrPrecondition) {
		t.Errorf("expected ErrPrecondition starting a waiting entry, got %v", err)
	}

	if _, err := svc.Call(ctx, e.ID, doctorID, CallUpdate{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	started, err := svc.Start(ctx, e.ID, doctorID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if started.Status != StatusInSession || started.StartedAt == nil {
		t.Errorf("expected in_session with started_at, got %s", started.Status)
	}

	ended, err := svc.End(ctx, e.ID, doctorID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ended.Status != StatusDone || ended.EndedAt == nil {
		t.Errorf("expected done with ended_at, got %s", ended.Status)
	}

	if _, err := svc.End(ctx, e.ID, doctorID); !errors.Is(err, ErrPrecondition) {
		t.Errorf("expected ErrPrecondition ending a done entry, got %v", err)
	}
}

// -- Cancel --

func TestCancel(t *testing.T) {
	svc, _, _, _ := newTestService()
	ctx := context.Background()

	patientID := uuid.New()
	e, _ := svc.Request(ctx, paidInput(patientID, nil))

	canceled, err := svc.Cancel(ctx, e.ID, patientID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if canceled.Status != StatusCanceled || canceled.CanceledAt == nil {
		t.Errorf("expected canceled with canceled_at, got %s", canceled.Status)
	}
}

func TestCancel_OnlyOwner(t *testing.T) {
	svc, _, _, _ := newTestService()
	ctx := context.Background()

	e, _ := svc.Request(ctx, paidInput(uuid.New(), nil))

	_, err := svc.Cancel(ctx, e.ID, uuid.New())
	if !errors.Is(err, ErrPermission) {
		t.Errorf("expected ErrPermission, got %v", err)
	}
}

func TestCancel_OnlyWhileWaiting(t *testing.T) {
	svc, _, _, _ := newTestService()
	ctx := context.Background()

	patientID := uuid.New()
	doctorID := uuid.New()
	e, _ := svc.Request(ctx, paidInput(patientID, &doctorID))
	if _, err := svc.Call(ctx, e.ID, doctorID, CallUpdate{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	_, err := svc.Cancel(ctx, e.ID, patientID)
	if !errors.Is(err, ErrPrecondition) {
		t.Errorf("expected ErrPrecondition, got %v", err)
	}
}

// -- Tickets --

func TestActiveTicket(t *testing.T) {
	svc, _, _, store := newTestService()
	ctx := context.Background()

	doctorID := uuid.New()
	svc.Request(ctx, paidInput(uuid.New(), &doctorID))
	svc.Request(ctx, paidInput(uuid.New(), &doctorID))
	svc.Request(ctx, paidInput(uuid.New(), &doctorID))
	patientID := uuid.New()
	svc.Request(ctx, paidInput(patientID, &doctorID))

	store.values[settings.KeyAvgVisitMinutes] = "15"

	ticket, err := svc.ActiveTicket(ctx, patientID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ticket.Entry.Position == nil || *ticket.Entry.Position != 4 {
		t.Fatalf("expected position 4, got %v", ticket.Entry.Position)
	}
	if ticket.Estimate == nil {
		t.Fatal("expected an estimate for a waiting entry")
	}
	// Fourth in a full queue: three ahead, 45 minutes at 15 per visit.
	if ticket.Estimate.WaitingAhead != 3 || ticket.Estimate.EstimatedMinutes != 45 {
		t.Errorf("expected estimate {3 45}, got %+v", ticket.Estimate)
	}
}

func TestActiveTicket_DeparturesShrinkEstimate(t *testing.T) {
	svc, _, _, store := newTestService()
	ctx := context.Background()

	doctorID := uuid.New()
	firstPatient := uuid.New()
	first, _ := svc.Request(ctx, paidInput(firstPatient, &doctorID))
	second, _ := svc.Request(ctx, paidInput(uuid.New(), &doctorID))
	patientID := uuid.New()
	svc.Request(ctx, paidInput(patientID, &doctorID))

	store.values[settings.KeyAvgVisitMinutes] = "10"

	if _, err := svc.Cancel(ctx, first.ID, firstPatient); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := svc.Call(ctx, second.ID, doctorID, CallUpdate{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	ticket, err := svc.ActiveTicket(ctx, patientID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// The position keeps its slot, but the estimate only counts entries that
	// are actually still waiting ahead.
	if ticket.Entry.Position == nil || *ticket.Entry.Position != 3 {
		t.Fatalf("expected position 3, got %v", ticket.Entry.Position)
	}
	if ticket.Estimate.WaitingAhead != 0 || ticket.Estimate.EstimatedMinutes != 0 {
		t.Errorf("expected an empty line ahead, got %+v", ticket.Estimate)
	}
}

func TestActiveTicket_DefaultAverage(t *testing.T) {
	svc, _, _, _ := newTestService()
	ctx := context.Background()

	svc.Request(ctx, paidInput(uuid.New(), nil))
	patientID := uuid.New()
	svc.Request(ctx, paidInput(patientID, nil))

	ticket, err := svc.ActiveTicket(ctx, patientID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ticket.Estimate.EstimatedMinutes != DefaultAvgVisitMinutes {
		t.Errorf("expected default average %d, got %d", DefaultAvgVisitMinutes, ticket.Estimate.EstimatedMinutes)
	}
}

func TestActiveTicket_None(t *testing.T) {
	svc, _, _, _ := newTestService()

	_, err := svc.ActiveTicket(context.Background(), uuid.New())
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestActiveTicket_NoEstimateAfterCall(t *testing.T) {
	svc, _, _, _ := newTestService()
	ctx := context.Background()

	patientID := uuid.New()
	doctorID := uuid.New()
	e, _ := svc.Request(ctx, paidInput(patientID, &doctorID))
	if _, err := svc.Call(ctx, e.ID, doctorID, CallUpdate{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	ticket, err := svc.ActiveTicket(ctx, patientID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ticket.Estimate != nil {
		t.Error("expected no estimate once the patient is called")
	}
}

// -- Doctor console ordering --

func TestListForDoctor_Ordering(t *testing.T) {
	svc, _, _, _ := newTestService()
	ctx := context.Background()

	doctorID := uuid.New()
	first, _ := svc.Request(ctx, paidInput(uuid.New(), &doctorID))
	second, _ := svc.Request(ctx, paidInput(uuid.New(), &doctorID))
	third, _ := svc.Request(ctx, paidInput(uuid.New(), &doctorID))

	if _, err := svc.Call(ctx, first.ID, doctorID, CallUpdate{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	entries, total, err := svc.ListForDoctor(ctx, doctorID, 10, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if total != 3 {
		t.Fatalf("expected 3 entries, got %d", total)
	}
	// Called sorts before waiting; waiting entries keep position order.
	if entries[0].ID != first.ID {
		t.Error("expected the called entry first")
	}
	if entries[1].ID != second.ID || entries[2].ID != third.ID {
		t.Error("expected waiting entries in position order")
	}
}
