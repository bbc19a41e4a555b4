package main

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/mcclellann/fredLedger/pkg/ledger"
	"github.com/mcclellann/fredLedger/pkg/models"
	"github.com/shopspring/decimal"
)

type scheduleResponse struct {
	PlanID  uuid.UUID                     `json:"plan_id"`
	Mode    string                        `json:"mode"`
	Summary ledger.InstallmentSummary     `json:"summary"`
	Entries []models.PaymentScheduleEntry `json:"entries"`
}

func (s *Server) createPlanHandler(w http.ResponseWriter, r *http.Request) {
	var req struct {
		AccountID           uuid.UUID       `json:"account_id"`
		Description         string          `json:"description"`
		Principal           decimal.Decimal `json:"principal"`
		TotalMonths         int             `json:"total_months"`
		InterestRatePercent decimal.Decimal `json:"interest_rate_percent"`
		AdminFee            decimal.Decimal `json:"admin_fee"`
		StartDate           time.Time       `json:"start_date"`
	}
	if !decode(w, r, &req) {
		return
	}

	plan, err := s.ledger.CreateInstallmentPlan(r.Context(), req.AccountID, req.Description, req.Principal,
		req.TotalMonths, req.InterestRatePercent, req.AdminFee, req.StartDate)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, plan)
}

func (s *Server) getPlanHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "installment plan")
	if !ok {
		return
	}

	plan, err := s.ledger.GetInstallmentPlan(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, plan)
}

func (s *Server) listPlansHandler(w http.ResponseWriter, r *http.Request) {
	plans, err := s.ledger.GetAllInstallmentPlans(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, plans)
}

func (s *Server) amendPlanHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "installment plan")
	if !ok {
		return
	}
	var amendment ledger.PlanAmendment
	if !decode(w, r, &amendment) {
		return
	}

	plan, err := s.ledger.AmendInstallmentPlan(r.Context(), id, amendment)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, plan)
}

func (s *Server) scheduleHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "installment plan")
	if !ok {
		return
	}

	summary, entries, err := s.ledger.InstallmentSchedule(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, scheduleResponse{
		PlanID:  id,
		Mode:    s.ledger.RecomputeMode().String(),
		Summary: summary,
		Entries: entries,
	})
}

func (s *Server) recordInstallmentPaymentHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "installment plan")
	if !ok {
		return
	}

	plan, err := s.ledger.RecordInstallmentPayment(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, plan)
}

func (s *Server) cancelPlanHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "installment plan")
	if !ok {
		return
	}

	plan, err := s.ledger.CancelInstallmentPlan(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, plan)
}

func (s *Server) accrualHandler(w http.ResponseWriter, r *http.Request) {
	var req struct {
		models.AccrualInstrument
		AsOf *time.Time `json:"as_of"`
	}
	if !decode(w, r, &req) {
		return
	}

	var (
		result models.AccrualResult
		err    error
	)
	if req.AsOf != nil {
		result, err = s.ledger.AccrueAsOf(req.AccrualInstrument, *req.AsOf)
	} else {
		result, err = s.ledger.Accrue(req.AccrualInstrument)
	}
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}
