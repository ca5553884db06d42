package handler

import (
	"strconv"

	"payrolled/internal/adapter/http/dto"
	"payrolled/internal/core/domain"
	"payrolled/internal/core/ports"
	"payrolled/pkg/apperror"
	"payrolled/pkg/response"

	"github.com/gin-gonic/gin"
)

// HistoryHandler handles payment ledger reporting endpoints.
type HistoryHandler struct {
	historySvc ports.HistoryService
}

// NewHistoryHandler creates a new HistoryHandler.
func NewHistoryHandler(historySvc ports.HistoryService) *HistoryHandler {
	return &HistoryHandler{historySvc: historySvc}
}

// List handles GET /api/v1/payments.
// Query params: status (Processing|Paid|Failed), page, page_size.
func (h *HistoryHandler) List(c *gin.Context) {
	params := ports.PaymentListParams{
		Page:     intQuery(c, "page", 1),
		PageSize: intQuery(c, "page_size", 20),
	}
	if raw := c.Query("status"); raw != "" {
		status := domain.PaymentStatus(raw)
		switch status {
		case domain.PaymentStatusProcessing, domain.PaymentStatusPaid, domain.PaymentStatusFailed:
			params.Status = &status
		default:
			response.Error(c, apperror.Validation("unknown payment status"))
			return
		}
	}

	records, total, err := h.historySvc.ListPayments(c.Request.Context(), params)
	if err != nil {
		response.Error(c, err)
		return
	}

	out := make([]dto.PaymentResponse, 0, len(records))
	for _, p := range records {
		out = append(out, dto.FromPaymentRecord(p))
	}
	response.OK(c, dto.PaymentListResponse{
		Payments: out,
		Total:    total,
		Page:     params.Page,
		PageSize: params.PageSize,
	})
}

func intQuery(c *gin.Context, key string, fallback int) int {
	raw := c.Query(key)
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return fallback
	}
	return n
}
