package postgres

import (
	"context"
	"fmt"

	"payrolled/internal/core/domain"
	"payrolled/internal/core/ports"

	"github.com/google/uuid"
)

// PaymentRepo implements ports.PaymentLedger. The ledger is append-only at
// the repository level too: there is no delete here, and the only update
// touches status and tx_hash.
type PaymentRepo struct {
	pool Pool
}

// NewPaymentRepo creates a new PaymentRepo.
func NewPaymentRepo(pool Pool) *PaymentRepo {
	return &PaymentRepo{pool: pool}
}

const paymentColumns = "id, employee_id, amount, chain, tx_hash, status, recipient_address, created_at"

// Append inserts one ledger row.
func (r *PaymentRepo) Append(ctx context.Context, p *domain.PaymentRecord) error {
	query := `INSERT INTO payment_history (id, employee_id, amount, chain, tx_hash, status, recipient_address, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	_, err := r.pool.Exec(ctx, query,
		p.ID, p.EmployeeID, p.Amount, p.Chain, p.TxHash, p.Status, p.RecipientAddress, p.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert payment record: %w", err)
	}
	return nil
}

// UpdateStatus moves one ledger row to a new status with its transaction
// reference.
func (r *PaymentRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.PaymentStatus, txHash string) error {
	query := `UPDATE payment_history SET status = $2, tx_hash = $3 WHERE id = $1`

	tag, err := r.pool.Exec(ctx, query, id, status, txHash)
	if err != nil {
		return fmt.Errorf("update payment status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("payment record %s not found", id)
	}
	return nil
}

// List returns a page of ledger rows, newest first, with the unpaged total.
func (r *PaymentRepo) List(ctx context.Context, params ports.PaymentListParams) ([]domain.PaymentRecord, int64, error) {
	where := ""
	args := []any{}
	if params.Status != nil {
		where = " WHERE status = $1"
		args = append(args, *params.Status)
	}

	var total int64
	countQuery := `SELECT COUNT(*) FROM payment_history` + where
	if err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count payment records: %w", err)
	}

	offset := (params.Page - 1) * params.PageSize
	query := fmt.Sprintf(`SELECT %s FROM payment_history%s ORDER BY created_at DESC LIMIT $%d OFFSET $%d`,
		paymentColumns, where, len(args)+1, len(args)+2)
	args = append(args, params.PageSize, offset)

	records, err := r.queryRecords(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	return records, total, nil
}

// ListByEmployee returns every ledger row for one employee, newest first.
func (r *PaymentRepo) ListByEmployee(ctx context.Context, employeeID uuid.UUID) ([]domain.PaymentRecord, error) {
	query := `SELECT ` + paymentColumns + ` FROM payment_history WHERE employee_id = $1 ORDER BY created_at DESC`
	return r.queryRecords(ctx, query, employeeID)
}

func (r *PaymentRepo) queryRecords(ctx context.Context, query string, args ...any) ([]domain.PaymentRecord, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query payment records: %w", err)
	}
	defer rows.Close()

	var records []domain.PaymentRecord
	for rows.Next() {
		var p domain.PaymentRecord
		if err := rows.Scan(
			&p.ID, &p.EmployeeID, &p.Amount, &p.Chain, &p.TxHash, &p.Status, &p.RecipientAddress, &p.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan payment record: %w", err)
		}
		records = append(records, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate payment records: %w", err)
	}
	return records, nil
}
