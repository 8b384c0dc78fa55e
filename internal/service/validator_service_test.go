package service

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"payment-forecast/internal/core/domain"
	"payment-forecast/pkg/apperror"
)

// record is a test fixture holding the eleven payload fields of one line;
// line() appends the matching integrity digest as the twelfth.
type record struct {
	received     string
	merchantID   string
	merchantName string
	merchantKey  string
	payerID      string
	payerKey     string
	permissionID string
	dueUTC       string
	dueEpoch     string
	currency     string
	amount       string
}

func validRecord() record {
	return record{
		received:     "2017-05-01T10:00:00Z",
		merchantID:   "7",
		merchantName: "Milliways",
		merchantKey:  testPubKey,
		payerID:      "12",
		payerKey:     "payer-public-key",
		permissionID: "555",
		dueUTC:       "2017-05-01T15:59:59Z",
		dueEpoch:     "1493654399",
		currency:     "GBP",
		amount:       "10.50",
	}
}

func (r record) line() string {
	svc := NewSHA256DigestService()
	hash := svc.ToHex(svc.Digest(r.merchantKey, r.payerKey, r.permissionID, r.dueEpoch, r.amount))
	return r.lineWithHash(hash)
}

func (r record) lineWithHash(hash string) string {
	return strings.Join([]string{
		r.received, r.merchantID, r.merchantName, r.merchantKey,
		r.payerID, r.payerKey, r.permissionID,
		r.dueUTC, r.dueEpoch, r.currency, r.amount, hash,
	}, ",")
}

func newTestValidator() *RecordValidator {
	return NewRecordValidator(NewMerchantRegistry(), NewPayerRegistry(), NewSHA256DigestService())
}

func TestRecordValidator_ValidRecord(t *testing.T) {
	v := newTestValidator()

	payment, err := v.Validate(validRecord().line())
	require.NoError(t, err)

	assert.Equal(t, domain.CalendarDay{Year: 2017, Month: 4, Day: 1}, payment.Day)
	assert.Equal(t, int64(7), payment.MerchantID)
	assert.Equal(t, "10.50", payment.Amount.String())
}

func TestRecordValidator_AfterCutoffShiftsDay(t *testing.T) {
	v := newTestValidator()

	r := validRecord()
	r.dueUTC = "2017-05-01T16:00:00Z"
	r.dueEpoch = "1493654400"

	payment, err := v.Validate(r.line())
	require.NoError(t, err)
	assert.Equal(t, domain.CalendarDay{Year: 2017, Month: 4, Day: 2}, payment.Day)
}

func TestRecordValidator_FieldCount(t *testing.T) {
	v := newTestValidator()

	_, err := v.Validate("too,few,fields")
	require.Error(t, err)
	assert.Equal(t, apperror.CodeFieldCountMismatch, apperror.CodeOf(err))

	var appErr *apperror.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Contains(t, appErr.Message, "got 3")
	assert.Contains(t, appErr.Message, "expected 12")

	_, err = v.Validate(validRecord().line() + ",extra")
	assert.Equal(t, apperror.CodeFieldCountMismatch, apperror.CodeOf(err))
}

func TestRecordValidator_FailureTaxonomy(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*record)
		code   string
	}{
		{"bad received timestamp", func(r *record) { r.received = "yesterday" }, apperror.CodeInvalidTimestamp},
		{"bad due timestamp", func(r *record) { r.dueUTC = "2017-05-01" }, apperror.CodeInvalidTimestamp},
		{"received after due", func(r *record) { r.received = "2017-05-01T16:00:00Z" }, apperror.CodeReceivedAfterDue},
		{"bad epoch", func(r *record) { r.dueEpoch = "soon" }, apperror.CodeInvalidEpoch},
		{"epoch disagrees with due", func(r *record) { r.dueEpoch = "1493654398" }, apperror.CodeDueTimeMismatch},
		{"bad merchant id", func(r *record) { r.merchantID = "seven" }, apperror.CodeInvalidMerchantID},
		{"short merchant key", func(r *record) { r.merchantKey = "short" }, apperror.CodeInvalidPublicKeyLength},
		{"bad payer id", func(r *record) { r.payerID = "twelve" }, apperror.CodeInvalidPayerID},
		{"bad permission id", func(r *record) { r.permissionID = "perm-1" }, apperror.CodeInvalidDebitPermissionID},
		{"wrong currency", func(r *record) { r.currency = "USD" }, apperror.CodeUnsupportedCurrency},
		{"one decimal digit", func(r *record) { r.amount = "10.5" }, apperror.CodeInvalidAmountFormat},
		{"zero amount", func(r *record) { r.amount = "0.00" }, apperror.CodeNonPositiveAmount},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := newTestValidator()
			r := validRecord()
			tt.mutate(&r)

			// The digest is recomputed over the mutated fields, so only
			// the targeted check can fail.
			_, err := v.Validate(r.line())
			require.Error(t, err)
			assert.Equal(t, tt.code, apperror.CodeOf(err))
		})
	}
}

func TestRecordValidator_DigestChecks(t *testing.T) {
	v := newTestValidator()

	r := validRecord()
	_, err := v.Validate(r.lineWithHash(strings.Repeat("a", 63)))
	assert.Equal(t, apperror.CodeInvalidHexDigest, apperror.CodeOf(err))

	_, err = v.Validate(r.lineWithHash(strings.Repeat("a", 64)))
	assert.Equal(t, apperror.CodeIntegrityMismatch, apperror.CodeOf(err))
}

func TestRecordValidator_DigestOverRawText(t *testing.T) {
	// The digest binds the raw amount text: a reformatted but numerically
	// equal amount must break it.
	v := newTestValidator()

	r := validRecord()
	r.amount = "10.50"
	stated := NewSHA256DigestService()
	hash := stated.ToHex(stated.Digest(r.merchantKey, r.payerKey, r.permissionID, r.dueEpoch, "10.5000"))

	_, err := v.Validate(r.lineWithHash(hash))
	assert.Equal(t, apperror.CodeIntegrityMismatch, apperror.CodeOf(err))
}

func TestRecordValidator_TemporalCheckedBeforeIdentity(t *testing.T) {
	// Checks run in fixed order; with two broken fields the earlier
	// failure wins.
	v := newTestValidator()

	r := validRecord()
	r.received = "garbage"
	r.merchantID = "also-garbage"

	_, err := v.Validate(r.line())
	assert.Equal(t, apperror.CodeInvalidTimestamp, apperror.CodeOf(err))
}

func TestRecordValidator_DebitPermissionNotUnique(t *testing.T) {
	// The same permission id across records is accepted.
	v := newTestValidator()

	_, err := v.Validate(validRecord().line())
	require.NoError(t, err)
	_, err = v.Validate(validRecord().line())
	require.NoError(t, err)
}

func TestRecordValidator_MerchantConflictAcrossLines(t *testing.T) {
	v := newTestValidator()

	_, err := v.Validate(validRecord().line())
	require.NoError(t, err)

	r := validRecord()
	r.merchantName = "Big Bang Burger Bar"
	_, err = v.Validate(r.line())
	require.Error(t, err)
	assert.Equal(t, apperror.CodeIdentityConflict, apperror.CodeOf(err))
}

func TestRecordValidator_CanonicalIdentityReused(t *testing.T) {
	merchants := NewMerchantRegistry()
	v := NewRecordValidator(merchants, NewPayerRegistry(), NewSHA256DigestService())

	p1, err := v.Validate(validRecord().line())
	require.NoError(t, err)
	p2, err := v.Validate(validRecord().line())
	require.NoError(t, err)

	assert.Equal(t, p1.MerchantID, p2.MerchantID)
	assert.Equal(t, 1, merchants.Len())
}
