package billingrepo

import (
	"context"
	"fmt"
	"regexp"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/yanqian/billing-dashboard/internal/domain/billing"
	apperrors "github.com/yanqian/billing-dashboard/pkg/errors"
)

// DefaultTable is the view holding one aggregated row per user and month.
const DefaultTable = "monthly_billing_summary"

var tableName = regexp.MustCompile(`^[a-z_][a-z0-9_]*(\.[a-z_][a-z0-9_]*)?$`)

// PostgresRepository reads billing rows straight from the Supabase database.
type PostgresRepository struct {
	pool  *pgxpool.Pool
	query string
}

// NewPostgresRepository constructs the repository over table.
func NewPostgresRepository(pool *pgxpool.Pool, table string) (*PostgresRepository, error) {
	if table == "" {
		table = DefaultTable
	}
	if !tableName.MatchString(table) {
		return nil, fmt.Errorf("invalid billing table name %q", table)
	}
	query := fmt.Sprintf(`
		SELECT month::text, total_amount::float8, user_id::text
		FROM %s
		WHERE user_id = $1::uuid
		ORDER BY month ASC
	`, table)
	return &PostgresRepository{pool: pool, query: query}, nil
}

// ListMonthly returns the user's rows ordered by month ascending.
func (r *PostgresRepository) ListMonthly(ctx context.Context, userID string) ([]billing.Record, error) {
	rows, err := r.pool.Query(ctx, r.query, userID)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeQueryFailed, "query billing rows", err)
	}
	records, err := pgx.CollectRows(rows, scanRecord)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeQueryFailed, "scan billing rows", err)
	}
	return records, nil
}

func scanRecord(row pgx.CollectableRow) (billing.Record, error) {
	var rec billing.Record
	if err := row.Scan(&rec.Month, &rec.TotalAmount, &rec.UserID); err != nil {
		return billing.Record{}, err
	}
	return rec, nil
}

var _ billing.Repository = (*PostgresRepository)(nil)
