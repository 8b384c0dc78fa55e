package ports

import (
	"time"

	"github.com/google/uuid"

	"payment-forecast/internal/core/domain"
)

// DigestService computes and verifies the integrity digest binding the five
// raw record fields together.
type DigestService interface {
	// Digest hashes the byte-for-byte concatenation of the five raw field
	// values, in this exact order, with no separators.
	Digest(merchantPubKey, payerPubKey, debitPermissionID, dueEpoch, amount string) []byte
	// ToHex encodes a digest as a lowercase hex string.
	ToHex(digest []byte) string
	// FromHex decodes a 64-character hex digest, case-insensitively.
	FromHex(hexDigest string) ([]byte, error)
	// Verify recomputes the digest over the five fields and requires
	// byte-exact equality with the provided hex digest.
	Verify(merchantPubKey, payerPubKey, debitPermissionID, dueEpoch, amount, providedHex string) error
}

// RecordSource streams raw feed lines with their 1-based line numbers.
type RecordSource interface {
	// Next returns the next line. ok is false once the source is
	// exhausted; err reports a source read failure, which is fatal to the
	// run (unlike per-record validation errors).
	Next() (line string, lineNumber int, ok bool, err error)
}

// DiagnosticSink receives one entry per rejected record. Rejections never
// abort a run.
type DiagnosticSink interface {
	Reject(lineNumber int, err error)
}

// ForecastReader is the read side of the aggregate, consumed by the report
// layer after a run.
type ForecastReader interface {
	Snapshot() domain.ForecastTable
}

// MerchantDirectory resolves merchant ids to their registered names for
// report column headers.
type MerchantDirectory interface {
	MerchantName(id int64) (string, bool)
}

// IngestReport summarises one completed ingestion run.
type IngestReport struct {
	RunID    uuid.UUID     `json:"run_id"`
	Lines    int           `json:"lines"`
	Accepted int           `json:"accepted"`
	Rejected int           `json:"rejected"`
	Duration time.Duration `json:"duration_ns"`
}
