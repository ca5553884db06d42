package service

import (
	"context"

	"payrolled/internal/core/domain"
	"payrolled/internal/core/ports"
	"payrolled/pkg/apperror"

	"github.com/google/uuid"
)

type historyService struct {
	ledger    ports.PaymentLedger
	employees ports.EmployeeRepository
}

// NewHistoryService creates a new payment reporting service.
func NewHistoryService(ledger ports.PaymentLedger, employees ports.EmployeeRepository) ports.HistoryService {
	return &historyService{ledger: ledger, employees: employees}
}

func (s *historyService) ListPayments(ctx context.Context, params ports.PaymentListParams) ([]domain.PaymentRecord, int64, error) {
	if params.Page < 1 {
		params.Page = 1
	}
	if params.PageSize < 1 || params.PageSize > 100 {
		params.PageSize = 20
	}

	records, total, err := s.ledger.List(ctx, params)
	if err != nil {
		return nil, 0, apperror.ErrDatabaseError(err)
	}
	return records, total, nil
}

func (s *historyService) ListEmployeePayments(ctx context.Context, employeeID uuid.UUID) ([]domain.PaymentRecord, error) {
	employee, err := s.employees.GetByID(ctx, employeeID)
	if err != nil {
		return nil, apperror.ErrDatabaseError(err)
	}
	if employee == nil {
		return nil, apperror.ErrEmployeeNotFound()
	}

	records, err := s.ledger.ListByEmployee(ctx, employeeID)
	if err != nil {
		return nil, apperror.ErrDatabaseError(err)
	}
	return records, nil
}
