package ports

import (
	"context"
	"time"

	"payrolled/internal/core/domain"

	"github.com/google/uuid"
)

// EmployeeRepository defines persistence operations for the employer roster.
type EmployeeRepository interface {
	Create(ctx context.Context, employee *domain.Employee) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Employee, error)
	List(ctx context.Context) ([]domain.Employee, error)
	// ListPayable returns active employees in roster order (joined_at, id).
	// Payroll runs submit the local batch in exactly this order.
	ListPayable(ctx context.Context) ([]domain.Employee, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status domain.EmployeeStatus) error
	MarkPaid(ctx context.Context, id uuid.UUID, paidAt time.Time) error
}

// PaymentLedger defines the durable payment history contract.
// Creation is append-only; post-creation updates are restricted to status and
// transaction reference. Rows are never deleted. The ledger performs no
// business validation; run-level invariants are the orchestrator's to uphold.
type PaymentLedger interface {
	Append(ctx context.Context, record *domain.PaymentRecord) error
	UpdateStatus(ctx context.Context, id uuid.UUID, status domain.PaymentStatus, txHash string) error
	List(ctx context.Context, params PaymentListParams) ([]domain.PaymentRecord, int64, error)
	ListByEmployee(ctx context.Context, employeeID uuid.UUID) ([]domain.PaymentRecord, error)
}

// PaymentListParams holds filter + pagination for listing ledger rows.
type PaymentListParams struct {
	Status   *domain.PaymentStatus
	Page     int
	PageSize int
}
