package service

import (
	"strconv"
	"strings"

	"payment-forecast/internal/core/domain"
	"payment-forecast/internal/core/ports"
	"payment-forecast/pkg/apperror"
)

// Field positions within one comma-separated record.
const (
	fieldReceivedUTC = iota
	fieldMerchantID
	fieldMerchantName
	fieldMerchantPubKey
	fieldPayerID
	fieldPayerPubKey
	fieldDebitPermissionID
	fieldDueUTC
	fieldDueEpoch
	fieldCurrency
	fieldAmount
	fieldSHA256
	expectedFieldCount
)

// RecordValidator turns one raw feed line into a ValidatedPayment, or the
// first typed failure encountered. It consults the run's registries and the
// digest service; it never mutates the aggregate itself.
type RecordValidator struct {
	merchants *MerchantRegistry
	payers    *PayerRegistry
	digests   ports.DigestService
}

// NewRecordValidator creates a validator bound to one run's registries.
func NewRecordValidator(merchants *MerchantRegistry, payers *PayerRegistry, digests ports.DigestService) *RecordValidator {
	return &RecordValidator{
		merchants: merchants,
		payers:    payers,
		digests:   digests,
	}
}

// Validate runs every cross-field check in a fixed order. Checks that are
// cheap or likely to fail come first; the digest check runs last, both
// because it is the most expensive and because an upstream field failure is
// the more actionable diagnostic. The first failing check wins, and a failed
// record leaves all run state untouched apart from registry entries created
// before the failing step.
func (v *RecordValidator) Validate(line string) (domain.ValidatedPayment, error) {
	fields := strings.Split(line, ",")
	if len(fields) != expectedFieldCount {
		return domain.ValidatedPayment{}, apperror.ErrFieldCountMismatch(len(fields), expectedFieldCount)
	}

	day, err := domain.ResolveSettlementDay(fields[fieldReceivedUTC], fields[fieldDueUTC], fields[fieldDueEpoch])
	if err != nil {
		return domain.ValidatedPayment{}, err
	}

	merchant, err := v.merchants.RegisterOrVerify(fields[fieldMerchantID], fields[fieldMerchantName], fields[fieldMerchantPubKey])
	if err != nil {
		return domain.ValidatedPayment{}, err
	}

	if err := v.payers.RegisterOrVerify(fields[fieldPayerID], fields[fieldPayerPubKey]); err != nil {
		return domain.ValidatedPayment{}, err
	}

	// Uniqueness is not enforced; only that the permission id is a number.
	if _, err := strconv.ParseInt(fields[fieldDebitPermissionID], 10, 64); err != nil {
		return domain.ValidatedPayment{}, apperror.ErrInvalidDebitPermissionID(fields[fieldDebitPermissionID])
	}

	amount, err := domain.ParseMoney(fields[fieldAmount], fields[fieldCurrency])
	if err != nil {
		return domain.ValidatedPayment{}, err
	}

	if err := v.digests.Verify(
		fields[fieldMerchantPubKey],
		fields[fieldPayerPubKey],
		fields[fieldDebitPermissionID],
		fields[fieldDueEpoch],
		fields[fieldAmount],
		fields[fieldSHA256],
	); err != nil {
		return domain.ValidatedPayment{}, err
	}

	return domain.ValidatedPayment{
		Day:        day,
		MerchantID: merchant.ID,
		Amount:     amount,
	}, nil
}
