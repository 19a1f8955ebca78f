package itemrequest

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Repository interface {
	Create(ctx context.Context, r *Request) error
	GetByID(ctx context.Context, id int64) (*Request, error)
	// ListByRequester returns the user's requests, newest first.
	ListByRequester(ctx context.Context, requesterID int64) ([]*Request, error)
	// ListExcept pages through everyone else's requests, newest first.
	ListExcept(ctx context.Context, requesterID int64, from, size int) ([]*Request, int, error)
	Delete(ctx context.Context, id int64) error
}

var requestColumns = []string{"id", "requester_id", "description", "created_at"}

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

func (r *pgxRepository) Create(ctx context.Context, req *Request) error {
	query, args, err := r.psql.Insert("public.item_requests").
		Columns("requester_id", "description").
		Values(req.RequesterID, req.Description).
		Suffix("RETURNING id, created_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("build create request query failed: %w", err)
	}

	if err := r.pool.QueryRow(ctx, query, args...).Scan(&req.ID, &req.CreatedAt); err != nil {
		var e *pgconn.PgError
		if errors.As(err, &e) && e.Code == pgerrcode.ForeignKeyViolation {
			return ErrUserNotFound
		}
		return fmt.Errorf("create item request failed: %w", err)
	}
	return nil
}

func (r *pgxRepository) GetByID(ctx context.Context, id int64) (*Request, error) {
	query, args, err := r.psql.Select(requestColumns...).
		From("public.item_requests").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build get request query failed: %w", err)
	}

	var req Request
	if err := r.pool.QueryRow(ctx, query, args...).Scan(
		&req.ID, &req.RequesterID, &req.Description, &req.CreatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get item request failed: %w", err)
	}
	return &req, nil
}

func (r *pgxRepository) ListByRequester(ctx context.Context, requesterID int64) ([]*Request, error) {
	query, args, err := r.psql.Select(requestColumns...).
		From("public.item_requests").
		Where(squirrel.Eq{"requester_id": requesterID}).
		OrderBy("created_at DESC", "id DESC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list requests query failed: %w", err)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list item requests failed: %w", err)
	}
	reqs, err := pgx.CollectRows(rows, pgx.RowToAddrOfStructByPos[Request])
	if err != nil {
		return nil, fmt.Errorf("list item requests failed: %w", err)
	}
	return reqs, nil
}

func (r *pgxRepository) ListExcept(ctx context.Context, requesterID int64, from, size int) ([]*Request, int, error) {
	where := squirrel.NotEq{"requester_id": requesterID}
	query, args, err := r.psql.Select(append(requestColumns, "count(*) OVER() AS total_count")...).
		From("public.item_requests").
		Where(where).
		OrderBy("created_at DESC", "id DESC").
		Limit(uint64(size)).
		Offset(uint64(from)).
		ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build list requests query failed: %w", err)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list item requests failed: %w", err)
	}
	defer rows.Close()

	var reqs []*Request
	var total int
	for rows.Next() {
		var req Request
		if err := rows.Scan(&req.ID, &req.RequesterID, &req.Description, &req.CreatedAt, &total); err != nil {
			return nil, 0, fmt.Errorf("scan item request failed: %w", err)
		}
		reqs = append(reqs, &req)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("list item requests failed: %w", err)
	}

	// An offset past the end yields no rows and so no window count.
	if len(reqs) == 0 && from > 0 {
		countQuery, countArgs, err := r.psql.Select("count(*)").From("public.item_requests").Where(where).ToSql()
		if err != nil {
			return nil, 0, fmt.Errorf("build count requests query failed: %w", err)
		}
		if err := r.pool.QueryRow(ctx, countQuery, countArgs...).Scan(&total); err != nil {
			return nil, 0, fmt.Errorf("count item requests failed: %w", err)
		}
	}
	return reqs, total, nil
}

func (r *pgxRepository) Delete(ctx context.Context, id int64) error {
	query, args, err := r.psql.Delete("public.item_requests").Where(squirrel.Eq{"id": id}).ToSql()
	if err != nil {
		return fmt.Errorf("build delete request query failed: %w", err)
	}

	ct, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("delete item request failed: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
