package handler

import (
	"payrolled/internal/adapter/http/dto"
	"payrolled/internal/core/ports"
	"payrolled/pkg/apperror"
	"payrolled/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// PayrollHandler handles payroll run endpoints.
type PayrollHandler struct {
	orchestrator ports.PayrollOrchestrator
}

// NewPayrollHandler creates a new PayrollHandler.
func NewPayrollHandler(orchestrator ports.PayrollOrchestrator) *PayrollHandler {
	return &PayrollHandler{orchestrator: orchestrator}
}

// StartRun handles POST /api/v1/payroll/runs. The run is prepared and parked
// in review; no money moves until it is confirmed.
func (h *PayrollHandler) StartRun(c *gin.Context) {
	snapshot, err := h.orchestrator.StartRun(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, dto.FromRunSnapshot(snapshot))
}

// ConfirmRun handles POST /api/v1/payroll/runs/:id/confirm. Execution
// continues in the background; the response is accepted-for-processing.
func (h *PayrollHandler) ConfirmRun(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, apperror.Validation("invalid run id"))
		return
	}

	snapshot, err := h.orchestrator.ConfirmRun(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Accepted(c, dto.FromRunSnapshot(snapshot))
}

// GetRun handles GET /api/v1/payroll/runs/:id.
func (h *PayrollHandler) GetRun(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, apperror.Validation("invalid run id"))
		return
	}

	snapshot, err := h.orchestrator.GetRun(id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, dto.FromRunSnapshot(snapshot))
}
