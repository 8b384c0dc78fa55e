package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

// AppError is a structured error carrying a stable taxonomy code for each
// validation failure, plus an HTTP status for the few errors that surface
// through the report API.
type AppError struct {
	Code       string `json:"error_code"`
	Message    string `json:"message"`
	HTTPStatus int    `json:"-"`
	Err        error  `json:"-"` // Wrapped internal error (not exposed to client)
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// New creates a new AppError.
func New(code string, message string, httpStatus int) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
	}
}

// Wrap wraps an internal error with an AppError.
func Wrap(code string, message string, httpStatus int, err error) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
		Err:        err,
	}
}

// CodeOf returns the taxonomy code of err, or an empty string if err is not
// an *AppError. Every per-record failure maps to exactly one code, so
// diagnostic sinks and tests can switch on this.
func CodeOf(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return ""
}

// Taxonomy codes, one per validation failure, grouped by concern.
const (
	CodeFieldCountMismatch       = "REC_001"
	CodeInvalidTimestamp         = "TIME_001"
	CodeInvalidEpoch             = "TIME_002"
	CodeReceivedAfterDue         = "TIME_003"
	CodeDueTimeMismatch          = "TIME_004"
	CodeInvalidMerchantID        = "IDN_001"
	CodeInvalidPublicKeyLength   = "IDN_002"
	CodeIdentityConflict         = "IDN_003"
	CodeInvalidPayerID           = "IDN_004"
	CodeInvalidDebitPermissionID = "IDN_005"
	CodeUnsupportedCurrency      = "AMT_001"
	CodeInvalidAmountFormat      = "AMT_002"
	CodeNonPositiveAmount        = "AMT_003"
	CodeInvalidHexDigest         = "HSH_001"
	CodeIntegrityMismatch        = "HSH_002"
	CodeInternal                 = "SYS_001"
)

// ---- Record structure (REC) ----

func ErrFieldCountMismatch(got, want int) *AppError {
	return New(CodeFieldCountMismatch,
		fmt.Sprintf("invalid record length, got %d fields, expected %d", got, want),
		http.StatusUnprocessableEntity)
}

// ---- Temporal consistency (TIME) ----

func ErrInvalidTimestamp(text string) *AppError {
	return New(CodeInvalidTimestamp,
		fmt.Sprintf("failed to parse UTC timestamp %q", text),
		http.StatusUnprocessableEntity)
}

func ErrInvalidEpoch(text string) *AppError {
	return New(CodeInvalidEpoch,
		fmt.Sprintf("failed to parse seconds since epoch %q", text),
		http.StatusUnprocessableEntity)
}

func ErrReceivedAfterDue(receivedText, dueText string) *AppError {
	return New(CodeReceivedAfterDue,
		fmt.Sprintf("received UTC time (%s) is after due UTC time (%s)", receivedText, dueText),
		http.StatusUnprocessableEntity)
}

func ErrDueTimeMismatch(dueText string, dueSeconds, epochSeconds int64) *AppError {
	return New(CodeDueTimeMismatch,
		fmt.Sprintf("due UTC (%s, %d) and due epoch (%d) times don't match", dueText, dueSeconds, epochSeconds),
		http.StatusUnprocessableEntity)
}

// ---- Identity & referential consistency (IDN) ----

func ErrInvalidMerchantID(text string) *AppError {
	return New(CodeInvalidMerchantID,
		fmt.Sprintf("failed to parse merchant id %q", text),
		http.StatusUnprocessableEntity)
}

func ErrInvalidPublicKeyLength(merchantName, merchantID string, got, want int) *AppError {
	return New(CodeInvalidPublicKeyLength,
		fmt.Sprintf("public key for merchant %s with id %s is %d characters long, expected %d",
			merchantName, merchantID, got, want),
		http.StatusUnprocessableEntity)
}

func ErrMerchantConflict(parsed, stored string) *AppError {
	return New(CodeIdentityConflict,
		fmt.Sprintf("parsed merchant data (%s) does not match existing merchant data (%s)", parsed, stored),
		http.StatusConflict)
}

func ErrPayerConflict(payerID int64, parsedKey, storedKey string) *AppError {
	return New(CodeIdentityConflict,
		fmt.Sprintf("parsed payer public key for id %d (%s) does not match existing payer public key (%s)",
			payerID, parsedKey, storedKey),
		http.StatusConflict)
}

func ErrInvalidPayerID(text string) *AppError {
	return New(CodeInvalidPayerID,
		fmt.Sprintf("failed to parse payer id %q", text),
		http.StatusUnprocessableEntity)
}

func ErrInvalidDebitPermissionID(text string) *AppError {
	return New(CodeInvalidDebitPermissionID,
		fmt.Sprintf("failed to parse debit permission id %q", text),
		http.StatusUnprocessableEntity)
}

// ---- Amount & currency (AMT) ----

func ErrUnsupportedCurrency(code string) *AppError {
	return New(CodeUnsupportedCurrency,
		fmt.Sprintf("unrecognised currency type %q", code),
		http.StatusUnprocessableEntity)
}

func ErrInvalidAmountFormat(amount, currency string) *AppError {
	return New(CodeInvalidAmountFormat,
		fmt.Sprintf("invalid amount (%s) for currency type %s", amount, currency),
		http.StatusUnprocessableEntity)
}

func ErrNonPositiveAmount(amount string) *AppError {
	return New(CodeNonPositiveAmount,
		fmt.Sprintf("invalid amount (%s), must be greater than zero", amount),
		http.StatusUnprocessableEntity)
}

// ---- Integrity digest (HSH) ----

func ErrInvalidHexDigest(detail string) *AppError {
	return New(CodeInvalidHexDigest, detail, http.StatusUnprocessableEntity)
}

func ErrIntegrityMismatch(computedHex, expectedHex string) *AppError {
	return New(CodeIntegrityMismatch,
		fmt.Sprintf("hash mismatch, got %s, expected %s", computedHex, expectedHex),
		http.StatusUnprocessableEntity)
}

// ---- System & Infrastructure (SYS) ----

// InternalError wraps an internal error as a SYS_001 error.
func InternalError(err error) *AppError {
	return Wrap(CodeInternal, "Internal server error", http.StatusInternalServerError, err)
}
