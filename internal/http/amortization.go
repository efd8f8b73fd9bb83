package httpapi

import (
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/denisok6893-rgb/property-underwriting/internal/underwriting"
)

type AmortizationRequest struct {
	LoanAmount decimal.Decimal `json:"loan_amount"`
	AnnualRate float64         `json:"annual_rate" validate:"gte=0,lte=1"`
	TermMonths int             `json:"term_months" validate:"omitempty,gt=0,lte=600"`
}

type AmortizationResponse struct {
	MonthlyPayment decimal.Decimal                  `json:"monthly_payment"`
	TotalInterest  decimal.Decimal                  `json:"total_interest"`
	Schedule       []underwriting.AmortizationEntry `json:"schedule"`
}

func (s *Server) handleAmortization(w http.ResponseWriter, r *http.Request) {
	var req AmortizationRequest
	if !s.decodeAndValidate(w, r, &req) {
		return
	}
	if !req.LoanAmount.IsPositive() {
		writeError(w, http.StatusBadRequest, "validation_failed", "loan_amount must be > 0")
		return
	}
	if req.TermMonths == 0 {
		req.TermMonths = underwriting.LoanTermMonths
	}

	schedule := underwriting.AmortizationSchedule(req.LoanAmount, req.AnnualRate, req.TermMonths)

	resp := AmortizationResponse{TotalInterest: decimal.Zero, Schedule: schedule}
	if len(schedule) > 0 {
		resp.MonthlyPayment = schedule[0].Payment
	}
	for _, e := range schedule {
		resp.TotalInterest = resp.TotalInterest.Add(e.Interest)
	}
	writeJSON(w, http.StatusOK, resp)
}
