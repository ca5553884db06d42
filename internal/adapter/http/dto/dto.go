package dto

import (
	"time"

	"payrolled/internal/core/domain"
)

// LoginRequest is the request body for operator login.
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// LoginResponse is the response body for successful login.
type LoginResponse struct {
	Token  string `json:"token"`
	Expiry int64  `json:"expiry"` // Unix timestamp
}

// AddEmployeeRequest is the request body for adding a roster entry.
// Salary travels as a string to keep decimal precision out of float64.
type AddEmployeeRequest struct {
	Name          string `json:"name" binding:"required,min=1,max=100"`
	WalletAddress string `json:"wallet_address" binding:"required,eth_address"`
	Role          string `json:"role" binding:"max=100"`
	Salary        string `json:"salary" binding:"required"`
}

// UpdateEmployeeStatusRequest is the request body for roster status changes.
type UpdateEmployeeStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// EmployeeResponse is the response body for one roster entry.
type EmployeeResponse struct {
	ID            string  `json:"id"`
	Name          string  `json:"name"`
	WalletAddress string  `json:"wallet_address"`
	Role          string  `json:"role"`
	Salary        string  `json:"salary"`
	Status        string  `json:"status"`
	JoinedAt      string  `json:"joined_at"`
	LastPaidAt    *string `json:"last_paid_at,omitempty"`
}

// FromEmployee maps a domain employee to its response form.
func FromEmployee(e domain.Employee) EmployeeResponse {
	resp := EmployeeResponse{
		ID:            e.ID.String(),
		Name:          e.Name,
		WalletAddress: e.WalletAddress,
		Role:          e.Role,
		Salary:        e.Salary.String(),
		Status:        string(e.Status),
		JoinedAt:      e.JoinedAt.Format(time.RFC3339),
	}
	if e.LastPaidAt != nil {
		s := e.LastPaidAt.Format(time.RFC3339)
		resp.LastPaidAt = &s
	}
	return resp
}

// RecipientResultResponse is one recipient's terminal outcome within a run.
type RecipientResultResponse struct {
	EmployeeID   string `json:"employee_id"`
	EmployeeName string `json:"employee_name"`
	Amount       string `json:"amount"`
	ChainID      int64  `json:"chain_id"`
	Chain        string `json:"chain"`
	Status       string `json:"status"`
	TxHash       string `json:"tx_hash"`
	Error        string `json:"error,omitempty"`
}

// RunResponse is the response body for a payroll run snapshot.
type RunResponse struct {
	ID          string                    `json:"id"`
	State       string                    `json:"state"`
	LocalCount  int                       `json:"local_count"`
	RemoteCount int                       `json:"remote_count"`
	TotalAmount string                    `json:"total_amount"`
	LocalTxHash string                    `json:"local_tx_hash,omitempty"`
	Results     []RecipientResultResponse `json:"results"`
	StartedAt   string                    `json:"started_at"`
	CompletedAt *string                   `json:"completed_at,omitempty"`
}

// FromRunSnapshot maps a run snapshot to its response form.
func FromRunSnapshot(s *domain.RunSnapshot) RunResponse {
	resp := RunResponse{
		ID:          s.ID.String(),
		State:       string(s.State),
		LocalCount:  s.LocalCount,
		RemoteCount: s.RemoteCount,
		TotalAmount: s.TotalAmount.String(),
		LocalTxHash: s.LocalTxHash,
		Results:     make([]RecipientResultResponse, 0, len(s.Results)),
		StartedAt:   s.StartedAt.Format(time.RFC3339),
	}
	for _, r := range s.Results {
		resp.Results = append(resp.Results, RecipientResultResponse{
			EmployeeID:   r.EmployeeID.String(),
			EmployeeName: r.EmployeeName,
			Amount:       r.Amount.String(),
			ChainID:      r.ChainID,
			Chain:        r.Chain,
			Status:       string(r.Status),
			TxHash:       r.TxHash,
			Error:        r.Error,
		})
	}
	if s.CompletedAt != nil {
		c := s.CompletedAt.Format(time.RFC3339)
		resp.CompletedAt = &c
	}
	return resp
}

// PaymentResponse is the response body for one ledger row.
type PaymentResponse struct {
	ID               string `json:"id"`
	EmployeeID       string `json:"employee_id"`
	Amount           string `json:"amount"`
	Chain            string `json:"chain"`
	TxHash           string `json:"tx_hash"`
	Status           string `json:"status"`
	RecipientAddress string `json:"recipient_address"`
	CreatedAt        string `json:"created_at"`
}

// FromPaymentRecord maps a ledger row to its response form.
func FromPaymentRecord(p domain.PaymentRecord) PaymentResponse {
	return PaymentResponse{
		ID:               p.ID.String(),
		EmployeeID:       p.EmployeeID.String(),
		Amount:           p.Amount.String(),
		Chain:            p.Chain,
		TxHash:           p.TxHash,
		Status:           string(p.Status),
		RecipientAddress: p.RecipientAddress,
		CreatedAt:        p.CreatedAt.Format(time.RFC3339),
	}
}

// PaymentListResponse is a page of ledger rows.
type PaymentListResponse struct {
	Payments []PaymentResponse `json:"payments"`
	Total    int64             `json:"total"`
	Page     int               `json:"page"`
	PageSize int               `json:"page_size"`
}
