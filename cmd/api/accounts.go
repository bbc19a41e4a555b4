package main

import (
	"net/http"

	"github.com/mcclellann/fredLedger/pkg/ledger"
	"github.com/shopspring/decimal"
)

func (s *Server) createAccountHandler(w http.ResponseWriter, r *http.Request) {
	var req ledger.AccountUpdate
	if !decode(w, r, &req) {
		return
	}

	account, err := s.ledger.CreateAccount(r.Context(), req.Type, req.Name, req.Balance, req.DailyLimit, req.MonthlyLimit)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, account)
}

func (s *Server) getAccountHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "account")
	if !ok {
		return
	}

	account, err := s.ledger.GetAccount(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, account)
}

func (s *Server) listAccountsHandler(w http.ResponseWriter, r *http.Request) {
	accounts, err := s.ledger.GetAllAccounts(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, accounts)
}

func (s *Server) updateAccountHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "account")
	if !ok {
		return
	}
	var update ledger.AccountUpdate
	if !decode(w, r, &update) {
		return
	}

	account, err := s.ledger.UpdateAccount(r.Context(), id, update)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, account)
}

func (s *Server) deleteAccountHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "account")
	if !ok {
		return
	}

	if err := s.ledger.DeleteAccount(r.Context(), id); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) accountTransfersHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "account")
	if !ok {
		return
	}

	transfers, err := s.ledger.GetTransfersForAccount(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, transfers)
}

func (s *Server) recordCashbackHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "account")
	if !ok {
		return
	}
	var req struct {
		Amount      decimal.Decimal `json:"amount"`
		RatePercent decimal.Decimal `json:"rate_percent"`
		Description string          `json:"description"`
	}
	if !decode(w, r, &req) {
		return
	}

	record, err := s.ledger.RecordCashback(r.Context(), id, req.Amount, req.RatePercent, req.Description)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, record)
}

func (s *Server) listCashbackHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "account")
	if !ok {
		return
	}

	records, err := s.ledger.GetCashbackForAccount(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, records)
}
