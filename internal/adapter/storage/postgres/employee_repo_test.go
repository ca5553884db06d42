package postgres

import (
	"context"
	"testing"
	"time"

	"payrolled/internal/core/domain"

	"github.com/google/uuid"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRosterEmployee() *domain.Employee {
	return &domain.Employee{
		ID:            uuid.New(),
		Name:          "Alice",
		WalletAddress: "0x8ba1f109551bD432803012645Ac136ddd64DBA72",
		Role:          "Engineer",
		Salary:        decimal.RequireFromString("1500.25"),
		Status:        domain.EmployeeStatusActive,
		JoinedAt:      time.Now().UTC().Truncate(time.Microsecond),
	}
}

func employeeColumnNames() []string {
	return []string{"id", "name", "wallet_address", "role", "salary", "status", "joined_at", "last_paid_at"}
}

func employeeRow(e *domain.Employee) *pgxmock.Rows {
	return pgxmock.NewRows(employeeColumnNames()).AddRow(
		e.ID, e.Name, e.WalletAddress, e.Role, e.Salary, e.Status, e.JoinedAt, e.LastPaidAt,
	)
}

func TestEmployeeRepo_Create(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewEmployeeRepo(mock)
	e := newRosterEmployee()

	mock.ExpectExec("INSERT INTO employees").
		WithArgs(e.ID, e.Name, e.WalletAddress, e.Role, e.Salary, e.Status, e.JoinedAt, e.LastPaidAt).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	err = repo.Create(context.Background(), e)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEmployeeRepo_GetByID(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewEmployeeRepo(mock)
	e := newRosterEmployee()

	mock.ExpectQuery("SELECT (.+) FROM employees WHERE id").
		WithArgs(e.ID).
		WillReturnRows(employeeRow(e))

	got, err := repo.GetByID(context.Background(), e.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, e.Name, got.Name)
	assert.True(t, e.Salary.Equal(got.Salary))
}

func TestEmployeeRepo_GetByID_NotFound(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewEmployeeRepo(mock)
	id := uuid.New()

	mock.ExpectQuery("SELECT (.+) FROM employees WHERE id").
		WithArgs(id).
		WillReturnRows(pgxmock.NewRows(employeeColumnNames()))

	got, err := repo.GetByID(context.Background(), id)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestEmployeeRepo_ListPayable(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewEmployeeRepo(mock)
	first := newRosterEmployee()
	second := newRosterEmployee()
	second.Name = "Bob"

	rows := pgxmock.NewRows(employeeColumnNames()).
		AddRow(first.ID, first.Name, first.WalletAddress, first.Role, first.Salary, first.Status, first.JoinedAt, first.LastPaidAt).
		AddRow(second.ID, second.Name, second.WalletAddress, second.Role, second.Salary, second.Status, second.JoinedAt, second.LastPaidAt)

	mock.ExpectQuery("SELECT (.+) FROM employees").
		WithArgs(domain.EmployeeStatusActive).
		WillReturnRows(rows)

	got, err := repo.ListPayable(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "Alice", got[0].Name)
	assert.Equal(t, "Bob", got[1].Name)
}

func TestEmployeeRepo_UpdateStatus_NotFound(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewEmployeeRepo(mock)
	id := uuid.New()

	mock.ExpectExec("UPDATE employees SET status").
		WithArgs(id, domain.EmployeeStatusTerminated).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	err = repo.UpdateStatus(context.Background(), id, domain.EmployeeStatusTerminated)
	assert.Error(t, err)
}

func TestEmployeeRepo_MarkPaid(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewEmployeeRepo(mock)
	id := uuid.New()
	paidAt := time.Now().UTC()

	mock.ExpectExec("UPDATE employees SET last_paid_at").
		WithArgs(id, paidAt).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	err = repo.MarkPaid(context.Background(), id, paidAt)
	assert.NoError(t, err)
}
