package queue

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/teleclinic/teleclinic/internal/platform/db"
)

type repoPG struct {
	pool *pgxpool.Pool
}

func NewRepo(pool *pgxpool.Pool) Repository {
	return &repoPG{pool: pool}
}

type querier interface {
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
}

func (r *repoPG) conn(ctx context.Context) querier {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

const entryCols = `id, doctor_id, patient_id, status, position, expected_minutes,
	is_free, price, currency,
	requested_at, called_at, started_at, ended_at, canceled_at,
	consultation_id, created_at, updated_at`

// Create inserts a waiting entry. The position is computed in the same
// statement as max+1 over the doctor's queue (all statuses, so positions
// stay monotonic per doctor even as earlier entries leave). A partial unique
// index on (doctor_id, position) WHERE status='waiting' backs this against
// concurrent inserts.
func (r *repoPG) Create(ctx context.Context, e *Entry) error {
	e.ID = uuid.New()
	return r.conn(ctx).QueryRow(ctx, `
		INSERT INTO queue_entry (id, doctor_id, patient_id, status, position, is_free, price, currency)
		VALUES (
			$1, $2, $3, 'waiting',
			(SELECT COALESCE(MAX(position), 0) + 1 FROM queue_entry WHERE doctor_id IS NOT DISTINCT FROM $2),
			$4, $5, $6
		)
		RETURNING status, position, requested_at, created_at, updated_at`,
		e.ID, e.DoctorID, e.PatientID, e.IsFree, e.Price, e.Currency,
	).Scan(&e.Status, &e.Position, &e.RequestedAt, &e.CreatedAt, &e.UpdatedAt)
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*Entry, error) {
	return scanEntry(r.conn(ctx).QueryRow(ctx,
		`SELECT `+entryCols+` FROM queue_entry WHERE id = $1`, id))
}

// ListForDoctor returns the doctor's console view: their own entries plus the
// unassigned pool, waiting first in position order.
func (r *repoPG) ListForDoctor(ctx context.Context, doctorID uuid.UUID, limit, offset int) ([]*Entry, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx,
		`SELECT COUNT(*) FROM queue_entry WHERE doctor_id = $1 OR doctor_id IS NULL`,
		doctorID).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT `+entryCols+` FROM queue_entry
		WHERE doctor_id = $1 OR doctor_id IS NULL
		ORDER BY status ASC, position ASC NULLS LAST, requested_at ASC
		LIMIT $2 OFFSET $3`,
		doctorID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	return collectEntries(rows, total)
}

func (r *repoPG) ListActiveForPatient(ctx context.Context, patientID uuid.UUID) ([]*Entry, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT `+entryCols+` FROM queue_entry
		WHERE patient_id = $1 AND status IN ('waiting', 'called', 'in_session')
		ORDER BY requested_at DESC`,
		patientID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	entries, _, err := collectEntries(rows, 0)
	return entries, err
}

// CountWaitingAhead reports how many entries are still waiting ahead of the
// given entry in its doctor queue. Entries that were called or canceled leave
// no trace here, so the wait projection shrinks as the line moves.
func (r *repoPG) CountWaitingAhead(ctx context.Context, e *Entry) (int, error) {
	var n int
	err := r.conn(ctx).QueryRow(ctx, `
		SELECT COUNT(*) FROM queue_entry
		WHERE status = 'waiting' AND doctor_id IS NOT DISTINCT FROM $1 AND position < $2`,
		e.DoctorID, e.Position).Scan(&n)
	return n, err
}

// CountWaitingByDoctor groups waiting entries per doctor queue. The
// unassigned pool is reported under uuid.Nil.
func (r *repoPG) CountWaitingByDoctor(ctx context.Context) (map[uuid.UUID]int, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT COALESCE(doctor_id, '00000000-0000-0000-0000-000000000000'::uuid), COUNT(*)
		FROM queue_entry WHERE status = 'waiting'
		GROUP BY 1`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[uuid.UUID]int)
	for rows.Next() {
		var id uuid.UUID
		var n int
		if err := rows.Scan(&id, &n); err != nil {
			return nil, err
		}
		counts[id] = n
	}
	return counts, rows.Err()
}

// MarkAccepted claims a waiting entry for the doctor and links the created
// consultation. The status predicate in the WHERE clause makes the update
// conditional: a concurrent accept or cancel that got there first leaves
// zero rows affected and the caller gets ErrPrecondition.
func (r *repoPG) MarkAccepted(ctx context.Context, id, doctorID, consultationID uuid.UUID, at time.Time) error {
	tag, err := r.conn(ctx).Exec(ctx, `
		UPDATE queue_entry SET
			status = 'accepted', doctor_id = $2, consultation_id = $3,
			called_at = $4, updated_at = $4
		WHERE id = $1 AND status = 'waiting'`,
		id, doctorID, consultationID, at)
	if err != nil {
		return err
	}
	return checkAffected(tag)
}

// MarkCalled summons a waiting patient. An unassigned entry is claimed by
// the calling doctor; pricing fields flip to NULL whenever the entry ends up
// free.
func (r *repoPG) MarkCalled(ctx context.Context, id, doctorID uuid.UUID, upd CallUpdate, at time.Time) error {
	tag, err := r.conn(ctx).Exec(ctx, `
		UPDATE queue_entry SET
			status = 'called',
			doctor_id = COALESCE(doctor_id, $7),
			called_at = $2,
			expected_minutes = COALESCE($3, expected_minutes),
			is_free = COALESCE($4, is_free),
			price = CASE WHEN COALESCE($4, is_free) THEN NULL ELSE COALESCE($5, price) END,
			currency = CASE WHEN COALESCE($4, is_free) THEN NULL ELSE COALESCE($6, currency) END,
			updated_at = $2
		WHERE id = $1 AND status = 'waiting'`,
		id, at, upd.ExpectedMins, upd.IsFree, upd.Price, upd.Currency, doctorID)
	if err != nil {
		return err
	}
	return checkAffected(tag)
}

func (r *repoPG) MarkStarted(ctx context.Context, id uuid.UUID, at time.Time) error {
	tag, err := r.conn(ctx).Exec(ctx, `
		UPDATE queue_entry SET status = 'in_session', started_at = $2, updated_at = $2
		WHERE id = $1 AND status = 'called'`,
		id, at)
	if err != nil {
		return err
	}
	return checkAffected(tag)
}

func (r *repoPG) MarkEnded(ctx context.Context, id uuid.UUID, at time.Time) error {
	tag, err := r.conn(ctx).Exec(ctx, `
		UPDATE queue_entry SET status = 'done', ended_at = $2, updated_at = $2
		WHERE id = $1 AND status = 'in_session'`,
		id, at)
	if err != nil {
		return err
	}
	return checkAffected(tag)
}

func (r *repoPG) MarkCanceled(ctx context.Context, id uuid.UUID, at time.Time) error {
	tag, err := r.conn(ctx).Exec(ctx, `
		UPDATE queue_entry SET status = 'canceled', canceled_at = $2, updated_at = $2
		WHERE id = $1 AND status = 'waiting'`,
		id, at)
	if err != nil {
		return err
	}
	return checkAffected(tag)
}

func checkAffected(tag pgconn.CommandTag) error {
	if tag.RowsAffected() == 0 {
		return ErrPrecondition
	}
	return nil
}

func scanEntry(row pgx.Row) (*Entry, error) {
	var e Entry
	err := row.Scan(
		&e.ID, &e.DoctorID, &e.PatientID, &e.Status, &e.Position, &e.ExpectedMins,
		&e.IsFree, &e.Price, &e.Currency,
		&e.RequestedAt, &e.CalledAt, &e.StartedAt, &e.EndedAt, &e.CanceledAt,
		&e.ConsultationID, &e.CreatedAt, &e.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func collectEntries(rows pgx.Rows, total int) ([]*Entry, int, error) {
	var entries []*Entry
	for rows.Next() {
		var e Entry
		err := rows.Scan(
			&e.ID, &e.DoctorID, &e.PatientID, &e.Status, &e.Position, &e.ExpectedMins,
			&e.IsFree, &e.Price, &e.Currency,
			&e.RequestedAt, &e.CalledAt, &e.StartedAt, &e.EndedAt, &e.CanceledAt,
			&e.ConsultationID, &e.CreatedAt, &e.UpdatedAt,
		)
		if err != nil {
			return nil, 0, err
		}
		entries = append(entries, &e)
	}
	return entries, total, rows.Err()
}
