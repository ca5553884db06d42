package integration

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"payrolled/internal/core/domain"
	"payrolled/internal/core/ports"

	"github.com/google/uuid"
)

// In-memory implementations of the storage and chain ports. They let the
// integration tests exercise the real HTTP layer, services and orchestrator
// without PostgreSQL or an RPC endpoint.

// --- Employee repository ---

type inMemoryEmployeeRepo struct {
	mu        sync.RWMutex
	employees map[uuid.UUID]domain.Employee
}

func newInMemoryEmployeeRepo() *inMemoryEmployeeRepo {
	return &inMemoryEmployeeRepo{employees: make(map[uuid.UUID]domain.Employee)}
}

func (r *inMemoryEmployeeRepo) Create(_ context.Context, employee *domain.Employee) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.employees[employee.ID] = *employee
	return nil
}

func (r *inMemoryEmployeeRepo) GetByID(_ context.Context, id uuid.UUID) (*domain.Employee, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.employees[id]
	if !ok {
		return nil, nil
	}
	return &e, nil
}

func (r *inMemoryEmployeeRepo) List(_ context.Context) ([]domain.Employee, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.sorted(func(domain.Employee) bool { return true }), nil
}

func (r *inMemoryEmployeeRepo) ListPayable(_ context.Context) ([]domain.Employee, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.sorted(func(e domain.Employee) bool { return e.IsPayable() }), nil
}

// sorted replays the repository's roster order: joined_at, then id.
func (r *inMemoryEmployeeRepo) sorted(keep func(domain.Employee) bool) []domain.Employee {
	out := make([]domain.Employee, 0, len(r.employees))
	for _, e := range r.employees {
		if keep(e) {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].JoinedAt.Equal(out[j].JoinedAt) {
			return out[i].JoinedAt.Before(out[j].JoinedAt)
		}
		return strings.Compare(out[i].ID.String(), out[j].ID.String()) < 0
	})
	return out
}

func (r *inMemoryEmployeeRepo) UpdateStatus(_ context.Context, id uuid.UUID, status domain.EmployeeStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.employees[id]
	if !ok {
		return errors.New("employee not found")
	}
	e.Status = status
	r.employees[id] = e
	return nil
}

func (r *inMemoryEmployeeRepo) MarkPaid(_ context.Context, id uuid.UUID, paidAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.employees[id]
	if !ok {
		return errors.New("employee not found")
	}
	e.LastPaidAt = &paidAt
	r.employees[id] = e
	return nil
}

// --- Payment ledger ---

type inMemoryLedger struct {
	mu      sync.RWMutex
	records []domain.PaymentRecord
}

func newInMemoryLedger() *inMemoryLedger {
	return &inMemoryLedger{}
}

func (l *inMemoryLedger) Append(_ context.Context, record *domain.PaymentRecord) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.records = append(l.records, *record)
	return nil
}

func (l *inMemoryLedger) UpdateStatus(_ context.Context, id uuid.UUID, status domain.PaymentStatus, txHash string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	for i := range l.records {
		if l.records[i].ID == id {
			l.records[i].Status = status
			l.records[i].TxHash = txHash
			return nil
		}
	}
	return errors.New("payment record not found")
}

func (l *inMemoryLedger) List(_ context.Context, params ports.PaymentListParams) ([]domain.PaymentRecord, int64, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	filtered := make([]domain.PaymentRecord, 0, len(l.records))
	for _, rec := range l.records {
		if params.Status != nil && rec.Status != *params.Status {
			continue
		}
		filtered = append(filtered, rec)
	}
	// Newest first, like the SQL implementation.
	sort.SliceStable(filtered, func(i, j int) bool {
		return filtered[i].CreatedAt.After(filtered[j].CreatedAt)
	})

	total := int64(len(filtered))
	start := (params.Page - 1) * params.PageSize
	if start >= len(filtered) {
		return []domain.PaymentRecord{}, total, nil
	}
	end := start + params.PageSize
	if end > len(filtered) {
		end = len(filtered)
	}
	return filtered[start:end], total, nil
}

func (l *inMemoryLedger) ListByEmployee(_ context.Context, employeeID uuid.UUID) ([]domain.PaymentRecord, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]domain.PaymentRecord, 0)
	for _, rec := range l.records {
		if rec.EmployeeID == employeeID {
			out = append(out, rec)
		}
	}
	return out, nil
}

// snapshot returns a copy of every row, in append order.
func (l *inMemoryLedger) snapshot() []domain.PaymentRecord {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]domain.PaymentRecord, len(l.records))
	copy(out, l.records)
	return out
}

// --- Name registry ---

type fakeRegistry struct {
	mu      sync.RWMutex
	names   map[string]string            // lowercase address -> primary name
	records map[string]map[string]string // name -> key -> value
}

func newFakeRegistry() *fakeRegistry {
	return &fakeRegistry{
		names:   make(map[string]string),
		records: make(map[string]map[string]string),
	}
}

func (f *fakeRegistry) setName(address, name string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.names[strings.ToLower(address)] = name
}

func (f *fakeRegistry) setRecord(name, key, value string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.records[name] == nil {
		f.records[name] = make(map[string]string)
	}
	f.records[name][key] = value
}

func (f *fakeRegistry) ReverseResolve(_ context.Context, address string) (string, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.names[strings.ToLower(address)], nil
}

func (f *fakeRegistry) TextRecord(_ context.Context, name string, key string) (string, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.records[name][key], nil
}

// --- Settlement client ---

type fakeSettlement struct {
	mu       sync.Mutex
	batches  [][]ports.Payee
	failWith error
	txSeq    int
}

func newFakeSettlement() *fakeSettlement {
	return &fakeSettlement{}
}

func (f *fakeSettlement) SubmitBatch(_ context.Context, payees []ports.Payee) (*ports.BatchHandle, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failWith != nil {
		return nil, f.failWith
	}
	batch := make([]ports.Payee, len(payees))
	copy(batch, payees)
	f.batches = append(f.batches, batch)
	f.txSeq++
	return &ports.BatchHandle{TxHash: fmt.Sprintf("0xbatch%03d", f.txSeq)}, nil
}

func (f *fakeSettlement) AwaitConfirmation(_ context.Context, handle *ports.BatchHandle) (*ports.BatchReceipt, error) {
	return &ports.BatchReceipt{TxHash: handle.TxHash, BlockNumber: 42}, nil
}

func (f *fakeSettlement) submitted() [][]ports.Payee {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([][]ports.Payee, len(f.batches))
	copy(out, f.batches)
	return out
}

// --- Bridge client ---

type fakeBridge struct {
	mu        sync.Mutex
	transfers []ports.BridgeTransfer
	// failFor lists recipient addresses whose transfer should fail.
	failFor map[string]bool
	txSeq   int
}

func newFakeBridge() *fakeBridge {
	return &fakeBridge{failFor: make(map[string]bool)}
}

func (f *fakeBridge) Transfer(_ context.Context, transfer ports.BridgeTransfer) (*domain.BridgeOutcome, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.transfers = append(f.transfers, transfer)
	f.txSeq++
	burnHash := fmt.Sprintf("0xburn%03d", f.txSeq)

	if f.failFor[strings.ToLower(transfer.RecipientAddress)] {
		return &domain.BridgeOutcome{
			State:        "failed",
			SourceTxHash: burnHash,
			Steps: []domain.BridgeStep{
				{Name: "burn", TxHash: burnHash},
			},
		}, errors.New("attestation timed out")
	}

	return &domain.BridgeOutcome{
		State:        domain.BridgeStateSuccess,
		SourceTxHash: burnHash,
		Steps: []domain.BridgeStep{
			{Name: "approve", TxHash: fmt.Sprintf("0xapprove%03d", f.txSeq)},
			{Name: "burn", TxHash: burnHash},
			{Name: "mint", TxHash: fmt.Sprintf("0xmint%03d", f.txSeq)},
		},
	}, nil
}

func (f *fakeBridge) ordered() []ports.BridgeTransfer {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]ports.BridgeTransfer, len(f.transfers))
	copy(out, f.transfers)
	return out
}
