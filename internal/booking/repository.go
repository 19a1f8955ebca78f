package booking

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository owns booking records and the by-booker / by-item lookups.
type Repository interface {
	// Save inserts b when b.ID is zero and assigns the id.
	// Otherwise it persists b.Status; the other fields are immutable.
	Save(ctx context.Context, b *Booking) error
	GetByID(ctx context.Context, id int64) (*Booking, error)
	ListByBooker(ctx context.Context, bookerID int64) ([]*Booking, error)
	ListByItemIDs(ctx context.Context, itemIDs []int64) ([]*Booking, error)

	// ExistsApprovedEnded reports an APPROVED booking of the item by the booker with end < asOf.
	ExistsApprovedEnded(ctx context.Context, itemID, bookerID int64, asOf time.Time) (bool, error)

	// UpdateStatus moves the booking from one status to another atomically.
	// It returns ErrAlreadyProcessed when the stored status is no longer from.
	UpdateStatus(ctx context.Context, id int64, from, to Status) (*Booking, error)

	// Delete removes the booking. Deleting a missing id is not an error.
	Delete(ctx context.Context, id int64) error
}

var bookingColumns = []string{
	"id", "item_id", "booker_id", "start_time", "end_time", "status", "created_at", "updated_at",
}

type pgxRepository struct {
	pool *pgxpool.Pool
	psql squirrel.StatementBuilderType
}

func NewPgxRepository(pool *pgxpool.Pool) Repository {
	return &pgxRepository{
		pool: pool,
		psql: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

func scanBooking(row pgx.Row) (*Booking, error) {
	var b Booking
	var status string
	if err := row.Scan(
		&b.ID, &b.ItemID, &b.BookerID, &b.Start, &b.End, &status, &b.CreatedAt, &b.UpdatedAt,
	); err != nil {
		return nil, err
	}
	st, err := ParseStatus(status)
	if err != nil {
		return nil, err
	}
	b.Status = st
	return &b, nil
}

func (r *pgxRepository) Save(ctx context.Context, b *Booking) error {
	if b.ID != 0 {
		query, args, err := r.psql.Update("public.bookings").
			Set("status", b.Status.String()).
			Set("updated_at", squirrel.Expr("now()")).
			Where(squirrel.Eq{"id": b.ID}).
			Suffix("RETURNING updated_at").
			ToSql()
		if err != nil {
			return fmt.Errorf("build update booking query failed: %w", err)
		}
		if err := r.pool.QueryRow(ctx, query, args...).Scan(&b.UpdatedAt); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return ErrNotFound
			}
			return fmt.Errorf("update booking failed: %w", err)
		}
		return nil
	}

	query, args, err := r.psql.Insert("public.bookings").
		Columns("item_id", "booker_id", "start_time", "end_time", "status").
		Values(b.ItemID, b.BookerID, b.Start, b.End, b.Status.String()).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("build create booking query failed: %w", err)
	}

	if err := r.pool.QueryRow(ctx, query, args...).Scan(&b.ID, &b.CreatedAt, &b.UpdatedAt); err != nil {
		var e *pgconn.PgError
		if errors.As(err, &e) && e.Code == pgerrcode.ForeignKeyViolation {
			// The item or the booker vanished between the policy check and the insert.
			if e.ConstraintName == "bookings_booker_id_fkey" {
				return ErrUserNotFound
			}
			return ErrItemNotFound
		}
		return fmt.Errorf("create booking failed: %w", err)
	}
	return nil
}

func (r *pgxRepository) GetByID(ctx context.Context, id int64) (*Booking, error) {
	query, args, err := r.psql.Select(bookingColumns...).
		From("public.bookings").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build get booking query failed: %w", err)
	}

	b, err := scanBooking(r.pool.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get booking failed: %w", err)
	}
	return b, nil
}

func (r *pgxRepository) list(ctx context.Context, where squirrel.Sqlizer) ([]*Booking, error) {
	query, args, err := r.psql.Select(bookingColumns...).
		From("public.bookings").
		Where(where).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list bookings query failed: %w", err)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list bookings failed: %w", err)
	}
	defer rows.Close()

	var bookings []*Booking
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, fmt.Errorf("scan booking failed: %w", err)
		}
		bookings = append(bookings, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list bookings failed: %w", err)
	}
	return bookings, nil
}

func (r *pgxRepository) ListByBooker(ctx context.Context, bookerID int64) ([]*Booking, error) {
	return r.list(ctx, squirrel.Eq{"booker_id": bookerID})
}

func (r *pgxRepository) ListByItemIDs(ctx context.Context, itemIDs []int64) ([]*Booking, error) {
	if len(itemIDs) == 0 {
		return nil, nil
	}
	// squirrel.Eq with a slice renders as IN (...).
	return r.list(ctx, squirrel.Eq{"item_id": itemIDs})
}

func (r *pgxRepository) ExistsApprovedEnded(ctx context.Context, itemID, bookerID int64, asOf time.Time) (bool, error) {
	subQuery, args, err := r.psql.Select("1").
		From("public.bookings").
		Where(squirrel.Eq{"item_id": itemID, "booker_id": bookerID, "status": StatusApproved.String()}).
		Where(squirrel.Lt{"end_time": asOf}).
		ToSql()
	if err != nil {
		return false, fmt.Errorf("build completed rental query failed: %w", err)
	}

	var exists bool
	if err := r.pool.QueryRow(ctx, "SELECT EXISTS ("+subQuery+")", args...).Scan(&exists); err != nil {
		return false, fmt.Errorf("check completed rental failed: %w", err)
	}
	return exists, nil
}

func (r *pgxRepository) UpdateStatus(ctx context.Context, id int64, from, to Status) (*Booking, error) {
	query, args, err := r.psql.Update("public.bookings").
		Set("status", to.String()).
		Set("updated_at", squirrel.Expr("now()")).
		Where(squirrel.Eq{"id": id, "status": from.String()}).
		Suffix("RETURNING " + strings.Join(bookingColumns, ", ")).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build update status query failed: %w", err)
	}

	b, err := scanBooking(r.pool.QueryRow(ctx, query, args...))
	if err == nil {
		return b, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("update booking status failed: %w", err)
	}

	// Nothing matched: either the booking is gone or someone else already moved it.
	if _, err := r.GetByID(ctx, id); err != nil {
		return nil, err
	}
	return nil, ErrAlreadyProcessed
}

func (r *pgxRepository) Delete(ctx context.Context, id int64) error {
	query, args, err := r.psql.Delete("public.bookings").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build delete booking query failed: %w", err)
	}

	if _, err := r.pool.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("delete booking failed: %w", err)
	}
	return nil
}
