package service

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"payment-forecast/internal/core/domain"
	"payment-forecast/internal/core/ports"
	"payment-forecast/pkg/apperror"
)

// IngestService is the explicit per-run context: it owns the registries, the
// validator and the aggregator for exactly one pass over a feed. Sharing one
// instance across goroutines is not supported; processing is synchronous and
// in file order.
type IngestService struct {
	runID     uuid.UUID
	merchants *MerchantRegistry
	payers    *PayerRegistry
	validator *RecordValidator
	forecast  *ForecastAggregator
	sink      ports.DiagnosticSink
	log       zerolog.Logger
}

// NewIngestService creates a fresh run context. Every run gets empty
// registries and an empty aggregate; there is no state carried between runs.
func NewIngestService(digests ports.DigestService, sink ports.DiagnosticSink, log zerolog.Logger) *IngestService {
	merchants := NewMerchantRegistry()
	payers := NewPayerRegistry()
	runID := uuid.New()
	return &IngestService{
		runID:     runID,
		merchants: merchants,
		payers:    payers,
		validator: NewRecordValidator(merchants, payers, digests),
		forecast:  NewForecastAggregator(),
		sink:      sink,
		log:       log.With().Str("run_id", runID.String()).Logger(),
	}
}

// Run consumes the source to exhaustion. The first line is the feed header
// and is skipped. Each remaining line either aggregates or is reported to
// the diagnostic sink; a rejected record never aborts the run. Only a source
// read failure is fatal.
func (s *IngestService) Run(src ports.RecordSource) (ports.IngestReport, error) {
	report := ports.IngestReport{RunID: s.runID}
	started := time.Now()
	headerSkipped := false

	for {
		line, lineNumber, ok, err := src.Next()
		if err != nil {
			return report, apperror.InternalError(fmt.Errorf("reading record source: %w", err))
		}
		if !ok {
			break
		}
		if !headerSkipped {
			headerSkipped = true
			continue
		}

		report.Lines++
		payment, err := s.validator.Validate(line)
		if err != nil {
			report.Rejected++
			s.sink.Reject(lineNumber, err)
			continue
		}

		s.forecast.Add(payment.Day, payment.MerchantID, payment.Amount)
		report.Accepted++
	}

	report.Duration = time.Since(started)
	s.log.Info().
		Int("lines", report.Lines).
		Int("accepted", report.Accepted).
		Int("rejected", report.Rejected).
		Int("merchants", s.merchants.Len()).
		Dur("duration", report.Duration).
		Msg("ingestion run complete")
	return report, nil
}

// Snapshot implements ports.ForecastReader over the run's aggregate.
func (s *IngestService) Snapshot() domain.ForecastTable {
	return s.forecast.Snapshot()
}

// MerchantName implements ports.MerchantDirectory for the report layer.
func (s *IngestService) MerchantName(id int64) (string, bool) {
	return s.merchants.MerchantName(id)
}

// LogDiagnosticSink reports rejected records through a zerolog logger, one
// warning per line the way the original error log carried one message per
// line.
type LogDiagnosticSink struct {
	log zerolog.Logger
}

// NewLogDiagnosticSink creates a sink writing to the given logger.
func NewLogDiagnosticSink(log zerolog.Logger) *LogDiagnosticSink {
	return &LogDiagnosticSink{log: log}
}

// Reject logs one rejected record with its line number and taxonomy code.
func (s *LogDiagnosticSink) Reject(lineNumber int, err error) {
	s.log.Warn().
		Int("line", lineNumber).
		Str("code", apperror.CodeOf(err)).
		Msgf("failed to parse line %d: %v", lineNumber, err)
}
