package metrics

import (
	"time"
)

// Collector defines the interface for collecting ledger metrics.
type Collector interface {
	// RecordTransfer counts an allocation attempt. Outcome is "ok" or the
	// error code that rejected it.
	RecordTransfer(outcome, bearer string)
	// RecordSchedule counts a generated installment schedule.
	RecordSchedule(mode string, months int)
	// RecordAccrual counts an accrual calculation.
	RecordAccrual(matured bool)
	// RecordRateLookup records an exchange-rate lookup against a source.
	RecordRateLookup(source string, ok bool, duration time.Duration)
	// RecordCircuitState records the breaker state of a rate source.
	RecordCircuitState(source string, state CircuitState)
}

// CircuitState represents the state of a circuit breaker.
type CircuitState int

const (
	// CircuitClosed means the circuit breaker is allowing requests through.
	CircuitClosed CircuitState = iota
	// CircuitOpen means the circuit breaker is blocking requests.
	CircuitOpen
	// CircuitHalfOpen means the circuit breaker is testing if the source has recovered.
	CircuitHalfOpen
)

// String returns the string representation of the circuit state.
func (s CircuitState) String() string {
	switch s {
	case CircuitClosed:
		return "closed"
	case CircuitOpen:
		return "open"
	case CircuitHalfOpen:
		return "half-open"
	default:
		return "unknown"
	}
}

// NoOpCollector is the default collector when metrics are not needed.
type NoOpCollector struct{}

// RecordTransfer does nothing.
func (NoOpCollector) RecordTransfer(outcome, bearer string) {}

// RecordSchedule does nothing.
func (NoOpCollector) RecordSchedule(mode string, months int) {}

// RecordAccrual does nothing.
func (NoOpCollector) RecordAccrual(matured bool) {}

// RecordRateLookup does nothing.
func (NoOpCollector) RecordRateLookup(source string, ok bool, duration time.Duration) {}

// RecordCircuitState does nothing.
func (NoOpCollector) RecordCircuitState(source string, state CircuitState) {}
