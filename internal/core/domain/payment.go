package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PendingReference is the ledger sentinel used before a transaction hash exists.
const PendingReference = "pending"

// PaymentStatus represents the lifecycle state of one ledger row.
type PaymentStatus string

const (
	PaymentStatusProcessing PaymentStatus = "Processing"
	PaymentStatusPaid       PaymentStatus = "Paid"
	PaymentStatusFailed     PaymentStatus = "Failed"
)

// PaymentRecord is one row in the payment ledger: one disbursement attempt for
// one employee in one payroll run. Rows are never deleted; after creation only
// Status and TxHash may change.
type PaymentRecord struct {
	ID               uuid.UUID       `json:"id"`
	EmployeeID       uuid.UUID       `json:"employee_id"`
	Amount           decimal.Decimal `json:"amount"`
	Chain            string          `json:"chain"` // human-readable chain label
	TxHash           string          `json:"tx_hash"`
	Status           PaymentStatus   `json:"status"`
	RecipientAddress string          `json:"recipient_address"`
	CreatedAt        time.Time       `json:"created_at"`
}

// IsTerminal reports whether the record has reached a final state.
func (p *PaymentRecord) IsTerminal() bool {
	return p.Status == PaymentStatusPaid || p.Status == PaymentStatusFailed
}

// BridgeStep is one sub-transaction of a cross-chain transfer.
type BridgeStep struct {
	Name    string `json:"name"` // approve, burn, mint
	TxHash  string `json:"tx_hash"`
	ChainID int64  `json:"chain_id"`
}

// BridgeOutcome is the normalized terminal result of one cross-chain transfer.
// The bridge adapter is the only place allowed to interpret collaborator
// result shapes; everything downstream consumes this struct.
type BridgeOutcome struct {
	State        string       `json:"state"` // success or failed
	SourceTxHash string       `json:"source_tx_hash,omitempty"`
	Steps        []BridgeStep `json:"steps,omitempty"`
}

// BridgeStateSuccess is the terminal state of a completed transfer.
const BridgeStateSuccess = "success"

// Reference extracts the ledger transaction reference from a bridge outcome.
// Preference order: the source-chain burn step's hash, then the outcome's
// source hash, then the pending sentinel. Safe on nil outcomes.
func (o *BridgeOutcome) Reference() string {
	if o == nil {
		return PendingReference
	}
	for _, step := range o.Steps {
		if step.Name == "burn" && step.TxHash != "" {
			return step.TxHash
		}
	}
	if o.SourceTxHash != "" {
		return o.SourceTxHash
	}
	return PendingReference
}
