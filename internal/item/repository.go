package item

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

// Repository persists items.
type Repository interface {
	Create(ctx context.Context, it *Item) error
	GetByID(ctx context.Context, id int64) (*Item, error)
	ListByOwner(ctx context.Context, ownerID int64, from, size int) ([]*Item, int, error)
	OwnerItemIDs(ctx context.Context, ownerID int64) ([]int64, error)
	// Search matches available items whose name or description contains text, ignoring case.
	Search(ctx context.Context, text string, from, size int) ([]*Item, int, error)
	Update(ctx context.Context, it *Item) error
	Delete(ctx context.Context, id int64) error

	// ListByRequestIDs returns the items listed in answer to any of the requests, by id.
	ListByRequestIDs(ctx context.Context, requestIDs []int64) ([]*Item, error)
	// ClearRequest unlinks every item from the request.
	ClearRequest(ctx context.Context, requestID int64) error
}

var itemColumns = []string{"id", "owner_id", "name", "description", "available", "request_id", "created_at"}

func scanItem(row pgx.Row, extra ...any) (*Item, error) {
	var it Item
	dest := append([]any{
		&it.ID, &it.OwnerID, &it.Name, &it.Description, &it.Available, &it.RequestID, &it.CreatedAt,
	}, extra...)
	if err := row.Scan(dest...); err != nil {
		return nil, err
	}
	return &it, nil
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

func (r *pgxRepository) Create(ctx context.Context, it *Item) error {
	query, args, err := r.psql.Insert("public.items").
		Columns("owner_id", "name", "description", "available", "request_id").
		Values(it.OwnerID, it.Name, it.Description, it.Available, it.RequestID).
		Suffix("RETURNING id, created_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("build create item query failed: %w", err)
	}

	if err := r.pool.QueryRow(ctx, query, args...).Scan(&it.ID, &it.CreatedAt); err != nil {
		var e *pgconn.PgError
		if errors.As(err, &e) && e.Code == pgerrcode.ForeignKeyViolation {
			if e.ConstraintName == "items_request_id_fkey" {
				return ErrRequestNotFound
			}
			return ErrOwnerNotFound
		}
		return fmt.Errorf("create item failed: %w", err)
	}
	return nil
}

func (r *pgxRepository) GetByID(ctx context.Context, id int64) (*Item, error) {
	query, args, err := r.psql.Select(itemColumns...).
		From("public.items").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build get item query failed: %w", err)
	}

	it, err := scanItem(r.pool.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get item failed: %w", err)
	}
	return it, nil
}

// page runs a filtered, id-ordered select with a window count.
func (r *pgxRepository) page(ctx context.Context, where squirrel.Sqlizer, from, size int) ([]*Item, int, error) {
	query, args, err := r.psql.Select(append(itemColumns, "count(*) OVER() AS total_count")...).
		From("public.items").
		Where(where).
		OrderBy("id").
		Limit(uint64(size)).
		Offset(uint64(from)).
		ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build list items query failed: %w", err)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list items failed: %w", err)
	}
	defer rows.Close()

	var items []*Item
	var total int
	for rows.Next() {
		it, err := scanItem(rows, &total)
		if err != nil {
			return nil, 0, fmt.Errorf("scan item failed: %w", err)
		}
		items = append(items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("list items failed: %w", err)
	}

	// An offset past the end yields no rows and so no window count.
	if len(items) == 0 && from > 0 {
		countQuery, countArgs, err := r.psql.Select("count(*)").From("public.items").Where(where).ToSql()
		if err != nil {
			return nil, 0, fmt.Errorf("build count items query failed: %w", err)
		}
		if err := r.pool.QueryRow(ctx, countQuery, countArgs...).Scan(&total); err != nil {
			return nil, 0, fmt.Errorf("count items failed: %w", err)
		}
	}
	return items, total, nil
}

func (r *pgxRepository) ListByOwner(ctx context.Context, ownerID int64, from, size int) ([]*Item, int, error) {
	return r.page(ctx, squirrel.Eq{"owner_id": ownerID}, from, size)
}

func (r *pgxRepository) OwnerItemIDs(ctx context.Context, ownerID int64) ([]int64, error) {
	query, args, err := r.psql.Select("id").
		From("public.items").
		Where(squirrel.Eq{"owner_id": ownerID}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build owner items query failed: %w", err)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list owner items failed: %w", err)
	}
	ids, err := pgx.CollectRows(rows, pgx.RowTo[int64])
	if err != nil {
		return nil, fmt.Errorf("list owner items failed: %w", err)
	}
	return ids, nil
}

func (r *pgxRepository) Search(ctx context.Context, text string, from, size int) ([]*Item, int, error) {
	pattern := "%" + text + "%"
	where := squirrel.And{
		squirrel.Eq{"available": true},
		squirrel.Or{
			squirrel.ILike{"name": pattern},
			squirrel.ILike{"description": pattern},
		},
	}
	return r.page(ctx, where, from, size)
}

func (r *pgxRepository) Update(ctx context.Context, it *Item) error {
	query, args, err := r.psql.Update("public.items").
		Set("name", it.Name).
		Set("description", it.Description).
		Set("available", it.Available).
		Where(squirrel.Eq{"id": it.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update item query failed: %w", err)
	}

	ct, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update item failed: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *pgxRepository) Delete(ctx context.Context, id int64) error {
	query, args, err := r.psql.Delete("public.items").Where(squirrel.Eq{"id": id}).ToSql()
	if err != nil {
		return fmt.Errorf("build delete item query failed: %w", err)
	}

	ct, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("delete item failed: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *pgxRepository) ListByRequestIDs(ctx context.Context, requestIDs []int64) ([]*Item, error) {
	if len(requestIDs) == 0 {
		return nil, nil
	}
	query, args, err := r.psql.Select(itemColumns...).
		From("public.items").
		Where(squirrel.Eq{"request_id": requestIDs}).
		OrderBy("id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build request items query failed: %w", err)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list request items failed: %w", err)
	}
	defer rows.Close()

	var items []*Item
	for rows.Next() {
		it, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scan item failed: %w", err)
		}
		items = append(items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list request items failed: %w", err)
	}
	return items, nil
}

func (r *pgxRepository) ClearRequest(ctx context.Context, requestID int64) error {
	query, args, err := r.psql.Update("public.items").
		Set("request_id", nil).
		Where(squirrel.Eq{"request_id": requestID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build clear request query failed: %w", err)
	}

	if _, err := r.pool.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("clear item request failed: %w", err)
	}
	return nil
}
