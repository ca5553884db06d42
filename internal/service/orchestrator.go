package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"payrolled/internal/core/domain"
	"payrolled/internal/core/ports"
	"payrolled/pkg/apperror"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// payrollRun is the in-memory state of one run. All mutation goes through the
// run's own mutex; snapshots are deep copies so handlers never observe a
// half-written run.
type payrollRun struct {
	mu             sync.Mutex
	id             uuid.UUID
	state          domain.RunState
	classification domain.Classification
	totalAmount    decimal.Decimal
	localTxHash    string
	results        []domain.RecipientResult
	startedAt      time.Time
	completedAt    *time.Time
	confirmed      bool
}

func (r *payrollRun) snapshot() *domain.RunSnapshot {
	r.mu.Lock()
	defer r.mu.Unlock()

	results := make([]domain.RecipientResult, len(r.results))
	copy(results, r.results)

	var completedAt *time.Time
	if r.completedAt != nil {
		t := *r.completedAt
		completedAt = &t
	}

	return &domain.RunSnapshot{
		ID:          r.id,
		State:       r.state,
		LocalCount:  len(r.classification.Local),
		RemoteCount: len(r.classification.Remote),
		TotalAmount: r.totalAmount,
		LocalTxHash: r.localTxHash,
		Results:     results,
		StartedAt:   r.startedAt,
		CompletedAt: completedAt,
	}
}

// OrchestratorService implements ports.PayrollOrchestrator. A run moves
// Review -> PayingLocal -> PayingRemote -> Complete; money only moves after
// the explicit ConfirmRun gate. Execution runs on a background context so an
// operator disconnect cannot abandon an in-flight disbursement.
type OrchestratorService struct {
	employees   ports.EmployeeRepository
	ledger      ports.PaymentLedger
	classifier  ports.RecipientClassifier
	settlement  ports.SettlementClient
	bridge      ports.BridgeClient
	runLock     ports.RunLock
	homeChainID int64
	lockTTL     time.Duration
	onProgress  func(domain.Progress)
	log         zerolog.Logger

	mu   sync.RWMutex
	runs map[uuid.UUID]*payrollRun
}

// OrchestratorOption customizes an OrchestratorService.
type OrchestratorOption func(*OrchestratorService)

// WithProgress registers a push-based progress listener. The listener is
// called synchronously from the execution goroutine and must not block.
func WithProgress(fn func(domain.Progress)) OrchestratorOption {
	return func(s *OrchestratorService) { s.onProgress = fn }
}

// NewOrchestratorService creates a new OrchestratorService.
func NewOrchestratorService(
	employees ports.EmployeeRepository,
	ledger ports.PaymentLedger,
	classifier ports.RecipientClassifier,
	settlement ports.SettlementClient,
	bridge ports.BridgeClient,
	runLock ports.RunLock,
	homeChainID int64,
	lockTTL time.Duration,
	log zerolog.Logger,
	opts ...OrchestratorOption,
) *OrchestratorService {
	s := &OrchestratorService{
		employees:   employees,
		ledger:      ledger,
		classifier:  classifier,
		settlement:  settlement,
		bridge:      bridge,
		runLock:     runLock,
		homeChainID: homeChainID,
		lockTTL:     lockTTL,
		log:         log,
		runs:        make(map[uuid.UUID]*payrollRun),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// StartRun loads the payable roster, classifies it and parks the run in
// Review. Nothing is signed or persisted yet; the run is a proposal until
// ConfirmRun.
func (s *OrchestratorService) StartRun(ctx context.Context) (*domain.RunSnapshot, error) {
	employees, err := s.employees.ListPayable(ctx)
	if err != nil {
		return nil, apperror.ErrDatabaseError(err)
	}
	if len(employees) == 0 {
		return nil, apperror.ErrEmptyRoster()
	}

	classification := s.classifier.Classify(ctx, employees)

	total := decimal.Zero
	for _, emp := range employees {
		total = total.Add(emp.Salary)
	}

	run := &payrollRun{
		id:             uuid.New(),
		state:          domain.RunStateReview,
		classification: classification,
		totalAmount:    total,
		startedAt:      time.Now().UTC(),
	}

	s.mu.Lock()
	s.runs[run.id] = run
	s.mu.Unlock()

	s.log.Info().
		Str("run_id", run.id.String()).
		Int("local", len(classification.Local)).
		Int("remote", len(classification.Remote)).
		Str("total", total.String()).
		Msg("payroll run prepared for review")

	return run.snapshot(), nil
}

// ConfirmRun is the one gate between reviewing a run and moving money. It
// takes the run lock, then executes the run on a detached background context.
func (s *OrchestratorService) ConfirmRun(ctx context.Context, runID uuid.UUID) (*domain.RunSnapshot, error) {
	run, err := s.lookup(runID)
	if err != nil {
		return nil, err
	}

	run.mu.Lock()
	if run.state != domain.RunStateReview || run.confirmed {
		run.mu.Unlock()
		return nil, apperror.ErrRunNotConfirmable()
	}

	acquired, err := s.runLock.Acquire(ctx, s.lockTTL)
	if err != nil {
		run.mu.Unlock()
		return nil, apperror.InternalError(err)
	}
	if !acquired {
		run.mu.Unlock()
		return nil, apperror.ErrRunInProgress()
	}

	run.confirmed = true
	run.mu.Unlock()

	s.log.Info().Str("run_id", runID.String()).Msg("payroll run confirmed, starting execution")

	// The HTTP request context dies with the connection; the run must not.
	go s.execute(context.Background(), run)

	return run.snapshot(), nil
}

// GetRun returns a point-in-time snapshot of a run.
func (s *OrchestratorService) GetRun(runID uuid.UUID) (*domain.RunSnapshot, error) {
	run, err := s.lookup(runID)
	if err != nil {
		return nil, err
	}
	return run.snapshot(), nil
}

func (s *OrchestratorService) lookup(runID uuid.UUID) (*payrollRun, error) {
	s.mu.RLock()
	run, ok := s.runs[runID]
	s.mu.RUnlock()
	if !ok {
		return nil, apperror.ErrRunNotFound()
	}
	return run, nil
}

func (s *OrchestratorService) execute(ctx context.Context, run *payrollRun) {
	defer func() {
		if err := s.runLock.Release(ctx); err != nil {
			s.log.Error().Err(err).Str("run_id", run.id.String()).Msg("failed to release run lock")
		}
	}()

	localFailed := s.payLocal(ctx, run)

	remote := run.classification.Remote
	if len(remote) > 0 {
		s.transition(run, domain.RunStatePayingRemote)
		s.payRemote(ctx, run)
	}

	// A failed local batch with nothing to bridge is the only terminal
	// failure; remote failures are recorded per recipient and the run
	// still completes.
	final := domain.RunStateComplete
	if localFailed && len(remote) == 0 {
		final = domain.RunStateFailed
	}

	run.mu.Lock()
	run.state = final
	now := time.Now().UTC()
	run.completedAt = &now
	run.mu.Unlock()

	s.emit(domain.Progress{RunID: run.id, State: final})
	s.log.Info().
		Str("run_id", run.id.String()).
		Str("state", string(final)).
		Msg("payroll run finished")
}

// payLocal settles the home-chain group in one atomic batch. Returns true when
// the batch failed.
func (s *OrchestratorService) payLocal(ctx context.Context, run *payrollRun) bool {
	s.transition(run, domain.RunStatePayingLocal)

	local := run.classification.Local
	if len(local) == 0 {
		return false
	}

	payees := make([]ports.Payee, 0, len(local))
	for _, recipient := range local {
		payees = append(payees, ports.Payee{
			Address: recipient.Employee.WalletAddress,
			Amount:  recipient.Employee.Salary,
		})
	}

	txHash := domain.PendingReference
	handle, err := s.settlement.SubmitBatch(ctx, payees)
	if err == nil {
		txHash = handle.TxHash
		var receipt *ports.BatchReceipt
		if receipt, err = s.settlement.AwaitConfirmation(ctx, handle); err == nil {
			txHash = receipt.TxHash
		}
	}

	status := domain.PaymentStatusPaid
	errMsg := ""
	if err != nil {
		status = domain.PaymentStatusFailed
		errMsg = err.Error()
		s.log.Error().Err(err).Str("run_id", run.id.String()).Msg("local batch settlement failed")
	} else {
		run.mu.Lock()
		run.localTxHash = txHash
		run.mu.Unlock()
	}

	// One ledger row per recipient, all sharing the batch outcome.
	now := time.Now().UTC()
	chainLabel := domain.ChainName(s.homeChainID)
	for _, recipient := range local {
		record := &domain.PaymentRecord{
			ID:               uuid.New(),
			EmployeeID:       recipient.Employee.ID,
			Amount:           recipient.Employee.Salary,
			Chain:            chainLabel,
			TxHash:           txHash,
			Status:           status,
			RecipientAddress: recipient.Employee.WalletAddress,
			CreatedAt:        now,
		}
		if lerr := s.ledger.Append(ctx, record); lerr != nil {
			s.log.Error().Err(lerr).
				Str("run_id", run.id.String()).
				Str("employee_id", recipient.Employee.ID.String()).
				Msg("failed to append ledger row")
		}
		if status == domain.PaymentStatusPaid {
			if merr := s.employees.MarkPaid(ctx, recipient.Employee.ID, now); merr != nil {
				s.log.Error().Err(merr).
					Str("employee_id", recipient.Employee.ID.String()).
					Msg("failed to update last paid timestamp")
			}
		}
		s.addResult(run, domain.RecipientResult{
			EmployeeID:   recipient.Employee.ID,
			EmployeeName: recipient.Employee.Name,
			Amount:       recipient.Employee.Salary,
			ChainID:      s.homeChainID,
			Chain:        chainLabel,
			Status:       status,
			TxHash:       txHash,
			Error:        errMsg,
		})
	}

	return err != nil
}

// payRemote bridges the remote group strictly one recipient at a time. Bridge
// rails serialize poorly (shared allowances, source-chain nonces), so there is
// no fan-out here. One failure never stops the queue.
func (s *OrchestratorService) payRemote(ctx context.Context, run *payrollRun) {
	for _, recipient := range run.classification.Remote {
		chainLabel := domain.ChainName(recipient.ChainID)
		record := &domain.PaymentRecord{
			ID:               uuid.New(),
			EmployeeID:       recipient.Employee.ID,
			Amount:           recipient.Employee.Salary,
			Chain:            chainLabel,
			TxHash:           domain.PendingReference,
			Status:           domain.PaymentStatusProcessing,
			RecipientAddress: recipient.Employee.WalletAddress,
			CreatedAt:        time.Now().UTC(),
		}
		if err := s.ledger.Append(ctx, record); err != nil {
			s.log.Error().Err(err).
				Str("run_id", run.id.String()).
				Str("employee_id", recipient.Employee.ID.String()).
				Msg("failed to append ledger row")
		}

		outcome, err := s.bridge.Transfer(ctx, ports.BridgeTransfer{
			Amount:             recipient.Employee.Salary,
			RecipientAddress:   recipient.Employee.WalletAddress,
			DestinationChainID: recipient.ChainID,
		})
		if err == nil && outcome.State != domain.BridgeStateSuccess {
			err = fmt.Errorf("bridge transfer ended in state %q", outcome.State)
		}

		status := domain.PaymentStatusPaid
		errMsg := ""
		if err != nil {
			status = domain.PaymentStatusFailed
			errMsg = err.Error()
			s.log.Error().Err(err).
				Str("run_id", run.id.String()).
				Str("employee_id", recipient.Employee.ID.String()).
				Int64("chain_id", recipient.ChainID).
				Msg("bridge transfer failed")
		}
		txHash := outcome.Reference()

		if uerr := s.ledger.UpdateStatus(ctx, record.ID, status, txHash); uerr != nil {
			s.log.Error().Err(uerr).
				Str("record_id", record.ID.String()).
				Msg("failed to update ledger row")
		}
		if status == domain.PaymentStatusPaid {
			if merr := s.employees.MarkPaid(ctx, recipient.Employee.ID, time.Now().UTC()); merr != nil {
				s.log.Error().Err(merr).
					Str("employee_id", recipient.Employee.ID.String()).
					Msg("failed to update last paid timestamp")
			}
		}
		s.addResult(run, domain.RecipientResult{
			EmployeeID:   recipient.Employee.ID,
			EmployeeName: recipient.Employee.Name,
			Amount:       recipient.Employee.Salary,
			ChainID:      recipient.ChainID,
			Chain:        chainLabel,
			Status:       status,
			TxHash:       txHash,
			Error:        errMsg,
		})
	}
}

func (s *OrchestratorService) transition(run *payrollRun, state domain.RunState) {
	run.mu.Lock()
	run.state = state
	run.mu.Unlock()
	s.emit(domain.Progress{RunID: run.id, State: state})
}

func (s *OrchestratorService) addResult(run *payrollRun, result domain.RecipientResult) {
	run.mu.Lock()
	run.results = append(run.results, result)
	state := run.state
	run.mu.Unlock()
	s.emit(domain.Progress{RunID: run.id, State: state, Result: &result})
}

func (s *OrchestratorService) emit(p domain.Progress) {
	if s.onProgress != nil {
		s.onProgress(p)
	}
}
