package main

import (
	"net/http"

	"github.com/mcclellann/fredLedger/pkg/models"
	"github.com/shopspring/decimal"
)

func (s *Server) createInvestmentHandler(w http.ResponseWriter, r *http.Request) {
	var req models.Investment
	if !decode(w, r, &req) {
		return
	}

	investment, err := s.ledger.CreateInvestment(r.Context(), req.Name, req.Currency, req.Holding)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, investment)
}

func (s *Server) getInvestmentHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "investment")
	if !ok {
		return
	}

	investment, err := s.ledger.GetInvestment(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, investment)
}

func (s *Server) listInvestmentsHandler(w http.ResponseWriter, r *http.Request) {
	investments, err := s.ledger.GetAllInvestments(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, investments)
}

func (s *Server) deleteInvestmentHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "investment")
	if !ok {
		return
	}

	if err := s.ledger.DeleteInvestment(r.Context(), id); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) portfolioHandler(w http.ResponseWriter, r *http.Request) {
	valuation, err := s.ledger.ValuePortfolio(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, valuation)
}

type exchangeRate struct {
	Rate         decimal.Decimal `json:"rate"`
	BaseCurrency string          `json:"base_currency"`
}

func (s *Server) getExchangeRateHandler(w http.ResponseWriter, r *http.Request) {
	rate, err := s.ledger.ExchangeRate(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, exchangeRate{Rate: rate, BaseCurrency: s.ledger.BaseCurrency()})
}

func (s *Server) setExchangeRateHandler(w http.ResponseWriter, r *http.Request) {
	var req exchangeRate
	if !decode(w, r, &req) {
		return
	}

	if err := s.ledger.SetExchangeRate(r.Context(), req.Rate); err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, exchangeRate{Rate: req.Rate, BaseCurrency: s.ledger.BaseCurrency()})
}
