package handler

import (
	"payrolled/internal/adapter/http/dto"
	"payrolled/internal/core/domain"
	"payrolled/internal/core/ports"
	"payrolled/pkg/apperror"
	"payrolled/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// EmployeeHandler handles roster management endpoints.
type EmployeeHandler struct {
	rosterSvc  ports.RosterService
	historySvc ports.HistoryService
}

// NewEmployeeHandler creates a new EmployeeHandler.
func NewEmployeeHandler(rosterSvc ports.RosterService, historySvc ports.HistoryService) *EmployeeHandler {
	return &EmployeeHandler{rosterSvc: rosterSvc, historySvc: historySvc}
}

// Add handles POST /api/v1/employees.
func (h *EmployeeHandler) Add(c *gin.Context) {
	var req dto.AddEmployeeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}
	dto.SanitizeStruct(&req)

	salary, err := decimal.NewFromString(req.Salary)
	if err != nil {
		response.Error(c, apperror.Validation("salary must be a decimal number"))
		return
	}

	employee, err := h.rosterSvc.AddEmployee(c.Request.Context(), ports.AddEmployeeRequest{
		Name:          req.Name,
		WalletAddress: req.WalletAddress,
		Role:          req.Role,
		Salary:        salary,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, dto.FromEmployee(*employee))
}

// Get handles GET /api/v1/employees/:id.
func (h *EmployeeHandler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, apperror.Validation("invalid employee id"))
		return
	}

	employee, err := h.rosterSvc.GetEmployee(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, dto.FromEmployee(*employee))
}

// List handles GET /api/v1/employees.
func (h *EmployeeHandler) List(c *gin.Context) {
	employees, err := h.rosterSvc.ListEmployees(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	out := make([]dto.EmployeeResponse, 0, len(employees))
	for _, e := range employees {
		out = append(out, dto.FromEmployee(e))
	}
	response.OK(c, out)
}

// UpdateStatus handles PATCH /api/v1/employees/:id/status.
func (h *EmployeeHandler) UpdateStatus(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, apperror.Validation("invalid employee id"))
		return
	}

	var req dto.UpdateEmployeeStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}
	dto.SanitizeStruct(&req)

	if err := h.rosterSvc.UpdateEmployeeStatus(c.Request.Context(), id, domain.EmployeeStatus(req.Status)); err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, gin.H{"id": id.String(), "status": req.Status})
}

// Payments handles GET /api/v1/employees/:id/payments.
func (h *EmployeeHandler) Payments(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, apperror.Validation("invalid employee id"))
		return
	}

	records, err := h.historySvc.ListEmployeePayments(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	out := make([]dto.PaymentResponse, 0, len(records))
	for _, p := range records {
		out = append(out, dto.FromPaymentRecord(p))
	}
	response.OK(c, out)
}
