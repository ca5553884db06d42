package ports

import (
	"context"
	"time"

	"payrolled/internal/core/domain"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PreferenceResolver resolves an employee's delivery preference from the
// naming registry. It never returns an error: any lookup failure degrades to
// default values for that field only.
type PreferenceResolver interface {
	Resolve(ctx context.Context, address string) domain.DeliveryPreference
}

// RecipientClassifier partitions employees into local (home chain, batchable)
// and remote (needs bridging) groups, preserving roster order in each group.
type RecipientClassifier interface {
	Classify(ctx context.Context, employees []domain.Employee) domain.Classification
}

// PayrollOrchestrator is the run-level state machine. StartRun classifies the
// payable roster and parks the run in Review; ConfirmRun is the explicit gate
// that starts moving money. Execution is asynchronous; GetRun exposes
// progress until the run reaches a terminal state.
type PayrollOrchestrator interface {
	StartRun(ctx context.Context) (*domain.RunSnapshot, error)
	ConfirmRun(ctx context.Context, runID uuid.UUID) (*domain.RunSnapshot, error)
	GetRun(runID uuid.UUID) (*domain.RunSnapshot, error)
}

// RosterService manages the employee roster.
type RosterService interface {
	AddEmployee(ctx context.Context, req AddEmployeeRequest) (*domain.Employee, error)
	GetEmployee(ctx context.Context, id uuid.UUID) (*domain.Employee, error)
	ListEmployees(ctx context.Context) ([]domain.Employee, error)
	UpdateEmployeeStatus(ctx context.Context, id uuid.UUID, status domain.EmployeeStatus) error
}

// AddEmployeeRequest holds validated input for adding a roster entry.
type AddEmployeeRequest struct {
	Name          string
	WalletAddress string
	Role          string
	Salary        decimal.Decimal
}

// HistoryService exposes the payment ledger for reporting.
type HistoryService interface {
	ListPayments(ctx context.Context, params PaymentListParams) ([]domain.PaymentRecord, int64, error)
	ListEmployeePayments(ctx context.Context, employeeID uuid.UUID) ([]domain.PaymentRecord, error)
}

// AuthService authenticates the payroll operator.
type AuthService interface {
	Login(ctx context.Context, username, password string) (string, time.Time, error) // token, expiry, error
}

// TokenService handles JWT token operations.
type TokenService interface {
	Generate(subject string) (string, time.Time, error)
	Validate(tokenString string) (*TokenClaims, error)
}

// TokenClaims holds the parsed JWT claims.
type TokenClaims struct {
	Subject string
}

// HashService handles password hashing (Argon2id).
type HashService interface {
	Hash(password string) (string, error)
	Verify(password string, hash string) (bool, error)
}
