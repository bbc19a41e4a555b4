package main

import (
	"net/http"

	"github.com/mcclellann/fredLedger/pkg/models"
)

func (s *Server) quoteTransferHandler(w http.ResponseWriter, r *http.Request) {
	var req models.TransferRequest
	if !decode(w, r, &req) {
		return
	}

	quote, err := s.ledger.QuoteTransfer(r.Context(), req)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, quote)
}

func (s *Server) executeTransferHandler(w http.ResponseWriter, r *http.Request) {
	var req struct {
		models.TransferRequest
		Status      models.TransferStatus `json:"status"`
		Description string                `json:"description"`
	}
	if !decode(w, r, &req) {
		return
	}

	transfer, err := s.ledger.ExecuteTransfer(r.Context(), req.TransferRequest, req.Status, req.Description)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, transfer)
}

func (s *Server) getTransferHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "transfer")
	if !ok {
		return
	}

	transfer, err := s.ledger.GetTransfer(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, transfer)
}

func (s *Server) completeTransferHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "transfer")
	if !ok {
		return
	}

	transfer, err := s.ledger.CompletePendingTransfer(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, transfer)
}
