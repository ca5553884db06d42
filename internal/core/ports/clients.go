package ports

import (
	"context"
	"time"

	"payrolled/internal/core/domain"

	"github.com/shopspring/decimal"
)

// NameRegistry reads the on-chain naming system (ENS). Lookups are always
// fresh: preferences live in a mutable external registry and must not be
// cached across payroll runs.
type NameRegistry interface {
	// ReverseResolve maps a wallet address to its primary name.
	// Returns "" (no error) when the address has no reverse record.
	ReverseResolve(ctx context.Context, address string) (string, error)
	// TextRecord reads a text record under a name. Returns "" when absent.
	TextRecord(ctx context.Context, name string, key string) (string, error)
}

// Payee is one entry of a same-chain batch payment.
type Payee struct {
	Address string
	Amount  decimal.Decimal
}

// BatchHandle identifies a submitted batch transaction.
type BatchHandle struct {
	TxHash string
}

// BatchReceipt is the confirmation of a mined batch transaction.
type BatchReceipt struct {
	TxHash      string
	BlockNumber uint64
}

// SettlementClient drives the on-chain batch distributor contract.
// Signer rejection, on-chain revert and confirmation timeout all surface as a
// plain error; retry policy belongs to the caller.
type SettlementClient interface {
	// SubmitBatch broadcasts one atomic multi-recipient transfer. The
	// attached value is the exact sum of payee amounts at the settlement
	// token's precision. Payee order is preserved in the transaction.
	SubmitBatch(ctx context.Context, payees []Payee) (*BatchHandle, error)
	// AwaitConfirmation blocks until the transaction is mined or the
	// configured confirmation timeout elapses.
	AwaitConfirmation(ctx context.Context, handle *BatchHandle) (*BatchReceipt, error)
}

// BridgeTransfer is one cross-chain transfer order.
type BridgeTransfer struct {
	Amount             decimal.Decimal
	RecipientAddress   string
	DestinationChainID int64
}

// BridgeClient executes a cross-chain transfer end-to-end (burn, attestation
// wait, mint) and normalizes the collaborator's result into one
// domain.BridgeOutcome. The adapter owns its internal retry and polling.
type BridgeClient interface {
	Transfer(ctx context.Context, transfer BridgeTransfer) (*domain.BridgeOutcome, error)
}

// RunLock serializes payroll runs. Concurrent runs against the same roster
// are not safe against double-payment, so exactly one run may hold the lock.
type RunLock interface {
	// Acquire returns true when the lock was taken, false when another run
	// holds it.
	Acquire(ctx context.Context, ttl time.Duration) (bool, error)
	Release(ctx context.Context) error
}
