package main

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/mcclellann/fredLedger/pkg/ledger"
	"github.com/mcclellann/fredLedger/pkg/logging"
	"github.com/mcclellann/fredLedger/pkg/store"
	"go.uber.org/zap"
)

// Server holds the ledger instance.
type Server struct {
	ledger  *ledger.Ledger
	storage store.Storage // Keep a reference to the storage to close it
	logger  *logging.Logger
	metrics http.Handler
}

func NewServer(l *ledger.Ledger, s store.Storage, logger *logging.Logger, metrics http.Handler) *Server {
	if logger == nil {
		logger = logging.NewNoOpLogger()
	}
	return &Server{
		ledger:  l,
		storage: s,
		logger:  logger.Named("api"),
		metrics: metrics,
	}
}

// Routes registers every handler on a new router.
func (s *Server) Routes() *mux.Router {
	router := mux.NewRouter()
	router.Use(s.logRequests)

	router.HandleFunc("/health", s.healthHandler).Methods("GET")
	if s.metrics != nil {
		router.Handle("/metrics", s.metrics).Methods("GET")
	}

	router.HandleFunc("/accounts", s.listAccountsHandler).Methods("GET")
	router.HandleFunc("/accounts", s.createAccountHandler).Methods("POST")
	router.HandleFunc("/accounts/{id}", s.getAccountHandler).Methods("GET")
	router.HandleFunc("/accounts/{id}", s.updateAccountHandler).Methods("PUT")
	router.HandleFunc("/accounts/{id}", s.deleteAccountHandler).Methods("DELETE")
	router.HandleFunc("/accounts/{id}/transfers", s.accountTransfersHandler).Methods("GET")
	router.HandleFunc("/accounts/{id}/cashback", s.listCashbackHandler).Methods("GET")
	router.HandleFunc("/accounts/{id}/cashback", s.recordCashbackHandler).Methods("POST")

	router.HandleFunc("/transfers/quote", s.quoteTransferHandler).Methods("POST")
	router.HandleFunc("/transfers", s.executeTransferHandler).Methods("POST")
	router.HandleFunc("/transfers/{id}", s.getTransferHandler).Methods("GET")
	router.HandleFunc("/transfers/{id}/complete", s.completeTransferHandler).Methods("POST")

	router.HandleFunc("/installments", s.listPlansHandler).Methods("GET")
	router.HandleFunc("/installments", s.createPlanHandler).Methods("POST")
	router.HandleFunc("/installments/{id}", s.getPlanHandler).Methods("GET")
	router.HandleFunc("/installments/{id}", s.amendPlanHandler).Methods("PUT")
	router.HandleFunc("/installments/{id}/schedule", s.scheduleHandler).Methods("GET")
	router.HandleFunc("/installments/{id}/payments", s.recordInstallmentPaymentHandler).Methods("POST")
	router.HandleFunc("/installments/{id}/cancel", s.cancelPlanHandler).Methods("POST")

	router.HandleFunc("/accruals", s.accrualHandler).Methods("POST")

	router.HandleFunc("/investments", s.listInvestmentsHandler).Methods("GET")
	router.HandleFunc("/investments", s.createInvestmentHandler).Methods("POST")
	router.HandleFunc("/investments/{id}", s.getInvestmentHandler).Methods("GET")
	router.HandleFunc("/investments/{id}", s.deleteInvestmentHandler).Methods("DELETE")
	router.HandleFunc("/portfolio", s.portfolioHandler).Methods("GET")

	router.HandleFunc("/settings/exchange-rate", s.getExchangeRateHandler).Methods("GET")
	router.HandleFunc("/settings/exchange-rate", s.setExchangeRateHandler).Methods("PUT")

	return router
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		s.logger.Debug("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", rec.status),
			zap.Duration("duration", time.Since(start)),
		)
	})
}

type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// writeError maps ledger errors onto HTTP statuses: 404 for missing records,
// 409 when the rate source cannot be written, 422 for rejected input, 503
// when no exchange rate is available and 500 for everything else.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	code := ledger.Code(err)
	status := http.StatusInternalServerError
	switch {
	case code == "not_found":
		status = http.StatusNotFound
	case code == "rate_unavailable":
		status = http.StatusServiceUnavailable
	case code == "rate_read_only":
		status = http.StatusConflict
	case ledger.IsValidation(err):
		status = http.StatusUnprocessableEntity
	}

	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Error(err),
		)
	}
	writeJSON(w, status, errorResponse{Error: code, Message: err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return false
	}
	return true
}

func pathID(w http.ResponseWriter, r *http.Request, what string) (uuid.UUID, bool) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "Invalid "+what+" ID", http.StatusBadRequest)
		return uuid.Nil, false
	}
	return id, true
}
