package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// EmployeeStatus represents an employee's roster state.
type EmployeeStatus string

const (
	EmployeeStatusActive     EmployeeStatus = "active"
	EmployeeStatusOnLeave    EmployeeStatus = "on_leave"
	EmployeeStatusTerminated EmployeeStatus = "terminated"
)

// Employee is one disbursement target from the employer's roster.
// Salary is denominated in the organization's settlement token (USDC).
type Employee struct {
	ID            uuid.UUID       `json:"id"`
	Name          string          `json:"name"`
	WalletAddress string          `json:"wallet_address"`
	Role          string          `json:"role"`
	Salary        decimal.Decimal `json:"salary"`
	Status        EmployeeStatus  `json:"status"`
	JoinedAt      time.Time       `json:"joined_at"`
	LastPaidAt    *time.Time      `json:"last_paid_at,omitempty"`
}

// IsPayable reports whether the employee should be included in a payroll run.
func (e *Employee) IsPayable() bool {
	return e.Status == EmployeeStatusActive && !e.Salary.IsNegative()
}
