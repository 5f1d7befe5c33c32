package reservation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository is the persistence contract of the admission engine. It holds
// live reservations only; evicted ones are deleted.
type Repository interface {
	// FindOverlapping returns live reservations in roomName intersecting
	// [start, end).
	FindOverlapping(ctx context.Context, roomName string, start, end time.Time) ([]*Reservation, error)
	// Insert stores r and fills in its ID and CreatedAt.
	Insert(ctx context.Context, r *Reservation) error
	// DeleteMany removes the given reservations. Unknown ids are ignored.
	DeleteMany(ctx context.Context, ids []string) error
	// List returns live reservations ordered by start time.
	List(ctx context.Context, filter Filter) ([]*Reservation, error)
	GetByID(ctx context.Context, id string) (*Reservation, error)

	// InTx runs fn against a repository whose writes commit together, or
	// not at all when fn returns an error. Implementations serialize units
	// for the same room.
	InTx(ctx context.Context, roomName string, fn func(tx Repository) error) error
}

// querier is satisfied by both *pgxpool.Pool and pgx.Tx.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type pgxRepository struct {
	pool *pgxpool.Pool // nil when bound to a transaction
	db   querier
}

// NewPgxRepository creates a Postgres-backed Repository.
func NewPgxRepository(pool *pgxpool.Pool) Repository {
	return &pgxRepository{pool: pool, db: pool}
}

var psql = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

var reservationColumns = []string{
	"id", "room_name", "start_time", "end_time", "priority_level", "type", "user_id", "created_at",
}

func scanReservation(row pgx.Row) (*Reservation, error) {
	var r Reservation
	if err := row.Scan(
		&r.ID, &r.RoomName, &r.StartTime, &r.EndTime,
		&r.PriorityLevel, &r.Type, &r.OwnerID, &r.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &r, nil
}

func (r *pgxRepository) queryMany(ctx context.Context, query squirrel.SelectBuilder, op string) ([]*Reservation, error) {
	sql, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build %s query failed: %w", op, err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("%s failed: %w", op, err)
	}
	defer rows.Close()

	var out []*Reservation
	for rows.Next() {
		res, err := scanReservation(rows)
		if err != nil {
			return nil, fmt.Errorf("scan reservation failed: %w", err)
		}
		out = append(out, res)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s failed: %w", op, err)
	}
	return out, nil
}

func (r *pgxRepository) FindOverlapping(ctx context.Context, roomName string, start, end time.Time) ([]*Reservation, error) {
	// Half-open overlap: existing.start < end AND existing.end > start
	query := psql.Select(reservationColumns...).
		From("public.reservations").
		Where(squirrel.Eq{"room_name": roomName}).
		Where(squirrel.Lt{"start_time": end}).
		Where(squirrel.Gt{"end_time": start}).
		OrderBy("start_time ASC")

	return r.queryMany(ctx, query, "find overlapping reservations")
}

func (r *pgxRepository) Insert(ctx context.Context, res *Reservation) error {
	query, args, err := psql.Insert("public.reservations").
		Columns("room_name", "start_time", "end_time", "priority_level", "type", "user_id").
		Values(res.RoomName, res.StartTime, res.EndTime, res.PriorityLevel, res.Type, res.OwnerID).
		Suffix("RETURNING id, created_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert reservation query failed: %w", err)
	}

	if err := r.db.QueryRow(ctx, query, args...).Scan(&res.ID, &res.CreatedAt); err != nil {
		return fmt.Errorf("insert reservation failed: %w", err)
	}
	return nil
}

func (r *pgxRepository) DeleteMany(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}

	query, args, err := psql.Delete("public.reservations").
		Where(squirrel.Eq{"id": ids}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build delete reservations query failed: %w", err)
	}

	if _, err := r.db.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("delete reservations failed: %w", err)
	}
	return nil
}

func (r *pgxRepository) List(ctx context.Context, filter Filter) ([]*Reservation, error) {
	if filter.matchesNothing() {
		return nil, nil
	}

	query := psql.Select(reservationColumns...).
		From("public.reservations")
	if filter.Rooms != nil {
		query = query.Where(squirrel.Eq{"room_name": filter.Rooms})
	}
	query = query.OrderBy("start_time ASC", "created_at ASC")

	return r.queryMany(ctx, query, "list reservations")
}

func (r *pgxRepository) GetByID(ctx context.Context, id string) (*Reservation, error) {
	query, args, err := psql.Select(reservationColumns...).
		From("public.reservations").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build get reservation query failed: %w", err)
	}

	res, err := scanReservation(r.db.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get reservation failed: %w", err)
	}
	return res, nil
}

func (r *pgxRepository) InTx(ctx context.Context, roomName string, fn func(tx Repository) error) error {
	if r.pool == nil {
		// Already inside a transaction.
		return fn(r)
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin reservation tx failed: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck // no-op after commit

	// Serializes admissions for the room across every process sharing the database.
	if _, err := tx.Exec(ctx, "SELECT pg_advisory_xact_lock(hashtext($1))", roomName); err != nil {
		return fmt.Errorf("lock room failed: %w", err)
	}

	if err := fn(&pgxRepository{db: tx}); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit reservation tx failed: %w", err)
	}
	return nil
}
