package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"payrolled/internal/core/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// EmployeeRepo implements ports.EmployeeRepository.
type EmployeeRepo struct {
	pool Pool
}

// NewEmployeeRepo creates a new EmployeeRepo.
func NewEmployeeRepo(pool Pool) *EmployeeRepo {
	return &EmployeeRepo{pool: pool}
}

const employeeColumns = "id, name, wallet_address, role, salary, status, joined_at, last_paid_at"

// Create inserts a new employee into the roster.
func (r *EmployeeRepo) Create(ctx context.Context, e *domain.Employee) error {
	query := `INSERT INTO employees (id, name, wallet_address, role, salary, status, joined_at, last_paid_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	_, err := r.pool.Exec(ctx, query,
		e.ID, e.Name, e.WalletAddress, e.Role, e.Salary, e.Status, e.JoinedAt, e.LastPaidAt,
	)
	if err != nil {
		return fmt.Errorf("insert employee: %w", err)
	}
	return nil
}

// GetByID fetches an employee by UUID. Returns nil when not found.
func (r *EmployeeRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Employee, error) {
	query := `SELECT ` + employeeColumns + ` FROM employees WHERE id = $1`

	e := &domain.Employee{}
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&e.ID, &e.Name, &e.WalletAddress, &e.Role, &e.Salary, &e.Status, &e.JoinedAt, &e.LastPaidAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get employee by id: %w", err)
	}
	return e, nil
}

// List returns the whole roster in roster order.
func (r *EmployeeRepo) List(ctx context.Context) ([]domain.Employee, error) {
	query := `SELECT ` + employeeColumns + ` FROM employees ORDER BY joined_at, id`
	return r.queryEmployees(ctx, query)
}

// ListPayable returns active employees in roster order. The payroll run
// submits the local batch in exactly this order, so the ORDER BY here is
// load-bearing, not cosmetic.
func (r *EmployeeRepo) ListPayable(ctx context.Context) ([]domain.Employee, error) {
	query := `SELECT ` + employeeColumns + ` FROM employees
		WHERE status = $1 AND salary >= 0
		ORDER BY joined_at, id`
	return r.queryEmployees(ctx, query, domain.EmployeeStatusActive)
}

// UpdateStatus changes an employee's roster status.
func (r *EmployeeRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.EmployeeStatus) error {
	query := `UPDATE employees SET status = $2 WHERE id = $1`

	tag, err := r.pool.Exec(ctx, query, id, status)
	if err != nil {
		return fmt.Errorf("update employee status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("employee %s not found", id)
	}
	return nil
}

// MarkPaid records the timestamp of the employee's latest successful payment.
func (r *EmployeeRepo) MarkPaid(ctx context.Context, id uuid.UUID, paidAt time.Time) error {
	query := `UPDATE employees SET last_paid_at = $2 WHERE id = $1`

	if _, err := r.pool.Exec(ctx, query, id, paidAt); err != nil {
		return fmt.Errorf("mark employee paid: %w", err)
	}
	return nil
}

func (r *EmployeeRepo) queryEmployees(ctx context.Context, query string, args ...any) ([]domain.Employee, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query employees: %w", err)
	}
	defer rows.Close()

	var employees []domain.Employee
	for rows.Next() {
		var e domain.Employee
		if err := rows.Scan(
			&e.ID, &e.Name, &e.WalletAddress, &e.Role, &e.Salary, &e.Status, &e.JoinedAt, &e.LastPaidAt,
		); err != nil {
			return nil, fmt.Errorf("scan employee: %w", err)
		}
		employees = append(employees, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate employees: %w", err)
	}
	return employees, nil
}
