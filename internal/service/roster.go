package service

import (
	"context"
	"fmt"
	"time"

	"payrolled/internal/core/domain"
	"payrolled/internal/core/ports"
	"payrolled/pkg/apperror"

	"github.com/ethereum/go-ethereum/common"
	"github.com/google/uuid"
)

type rosterService struct {
	employees ports.EmployeeRepository
}

// NewRosterService creates a new roster management service.
func NewRosterService(employees ports.EmployeeRepository) ports.RosterService {
	return &rosterService{employees: employees}
}

func (s *rosterService) AddEmployee(ctx context.Context, req ports.AddEmployeeRequest) (*domain.Employee, error) {
	if req.Name == "" {
		return nil, apperror.Validation("name is required")
	}
	if !common.IsHexAddress(req.WalletAddress) {
		return nil, apperror.ErrInvalidWalletAddress()
	}
	if req.Salary.IsNegative() {
		return nil, apperror.ErrInvalidSalary()
	}

	employee := &domain.Employee{
		ID:            uuid.New(),
		Name:          req.Name,
		WalletAddress: common.HexToAddress(req.WalletAddress).Hex(),
		Role:          req.Role,
		Salary:        req.Salary,
		Status:        domain.EmployeeStatusActive,
		JoinedAt:      time.Now().UTC(),
	}

	if err := s.employees.Create(ctx, employee); err != nil {
		return nil, apperror.ErrDatabaseError(fmt.Errorf("create employee: %w", err))
	}
	return employee, nil
}

func (s *rosterService) GetEmployee(ctx context.Context, id uuid.UUID) (*domain.Employee, error) {
	employee, err := s.employees.GetByID(ctx, id)
	if err != nil {
		return nil, apperror.ErrDatabaseError(err)
	}
	if employee == nil {
		return nil, apperror.ErrEmployeeNotFound()
	}
	return employee, nil
}

func (s *rosterService) ListEmployees(ctx context.Context) ([]domain.Employee, error) {
	employees, err := s.employees.List(ctx)
	if err != nil {
		return nil, apperror.ErrDatabaseError(err)
	}
	return employees, nil
}

func (s *rosterService) UpdateEmployeeStatus(ctx context.Context, id uuid.UUID, status domain.EmployeeStatus) error {
	switch status {
	case domain.EmployeeStatusActive, domain.EmployeeStatusOnLeave, domain.EmployeeStatusTerminated:
	default:
		return apperror.Validation(fmt.Sprintf("unknown employee status %q", status))
	}

	employee, err := s.employees.GetByID(ctx, id)
	if err != nil {
		return apperror.ErrDatabaseError(err)
	}
	if employee == nil {
		return apperror.ErrEmployeeNotFound()
	}

	if err := s.employees.UpdateStatus(ctx, id, status); err != nil {
		return apperror.ErrDatabaseError(fmt.Errorf("update status: %w", err))
	}
	return nil
}
