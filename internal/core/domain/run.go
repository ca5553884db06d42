package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// RunState is the payroll orchestration state machine.
// Review -> PayingLocal -> PayingRemote -> Complete, with Failed reachable
// from PayingLocal only (remote failures are per-recipient and never halt the
// run).
type RunState string

const (
	RunStateReview       RunState = "review"
	RunStatePayingLocal  RunState = "paying_local"
	RunStatePayingRemote RunState = "paying_remote"
	RunStateComplete     RunState = "complete"
	RunStateFailed       RunState = "failed"
)

// RecipientResult is the terminal outcome of one recipient within a run.
type RecipientResult struct {
	EmployeeID   uuid.UUID       `json:"employee_id"`
	EmployeeName string          `json:"employee_name"`
	Amount       decimal.Decimal `json:"amount"`
	ChainID      int64           `json:"chain_id"`
	Chain        string          `json:"chain"`
	Status       PaymentStatus   `json:"status"`
	TxHash       string          `json:"tx_hash"`
	Error        string          `json:"error,omitempty"`
}

// RunSnapshot is a point-in-time view of a payroll run, safe to serialize for
// the progress API while the run executes in the background.
type RunSnapshot struct {
	ID          uuid.UUID         `json:"id"`
	State       RunState          `json:"state"`
	LocalCount  int               `json:"local_count"`
	RemoteCount int               `json:"remote_count"`
	TotalAmount decimal.Decimal   `json:"total_amount"`
	LocalTxHash string            `json:"local_tx_hash,omitempty"`
	Results     []RecipientResult `json:"results"`
	StartedAt   time.Time         `json:"started_at"`
	CompletedAt *time.Time        `json:"completed_at,omitempty"`
}

// Progress is one push-based orchestration event, emitted on every state
// transition and every terminal recipient result.
type Progress struct {
	RunID uuid.UUID
	State RunState
	// Result is non-nil when the event marks a recipient reaching a
	// terminal status.
	Result *RecipientResult
}
