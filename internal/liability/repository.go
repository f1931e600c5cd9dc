package liability

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gharbeti/gharbeti/internal/shared"
)

type Repository interface {
	List(ctx context.Context, filter ListFilter) ([]Record, error)
	Settle(ctx context.Context, id int64, at time.Time) (Record, error)
}

type repository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) Repository {
	return &repository{db: db}
}

func (r *repository) List(ctx context.Context, filter ListFilter) ([]Record, error) {
	var (
		where []string
		args  []any
	)
	add := func(cond string, val any) {
		args = append(args, val)
		where = append(where, cond+"$"+strconv.Itoa(len(args)))
	}
	if filter.TenantID != nil {
		add("tenant_id=", *filter.TenantID)
	}
	if filter.PropertyID != nil {
		add("property_id=", *filter.PropertyID)
	}
	if filter.Status != "" {
		add("status=", filter.Status)
	}
	query := `SELECT id, tenant_id, property_id, kind, amount, description, reference_type, reference_id, status, created_at, settled_at FROM liabilities`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY created_at DESC, id DESC"

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var records []Record
	for rows.Next() {
		var rec Record
		if err := rows.Scan(&rec.ID, &rec.TenantID, &rec.PropertyID, &rec.Kind, &rec.Amount, &rec.Description,
			&rec.ReferenceType, &rec.ReferenceID, &rec.Status, &rec.CreatedAt, &rec.SettledAt); err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

func (r *repository) Settle(ctx context.Context, id int64, at time.Time) (Record, error) {
	var rec Record
	err := r.db.QueryRow(ctx, `UPDATE liabilities SET status=$2, settled_at=$3 WHERE id=$1 AND status=$4
RETURNING id, tenant_id, property_id, kind, amount, description, reference_type, reference_id, status, created_at, settled_at`,
		id, StatusSettled, at, StatusOpen).
		Scan(&rec.ID, &rec.TenantID, &rec.PropertyID, &rec.Kind, &rec.Amount, &rec.Description,
			&rec.ReferenceType, &rec.ReferenceID, &rec.Status, &rec.CreatedAt, &rec.SettledAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Record{}, shared.ErrNotFound
		}
		return Record{}, err
	}
	return rec, nil
}
