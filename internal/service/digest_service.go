package service

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"payment-forecast/pkg/apperror"
)

const (
	digestByteLength = sha256.Size
	digestHexLength  = 2 * digestByteLength
)

// SHA256DigestService implements ports.DigestService using SHA-256 over the
// raw textual field values.
type SHA256DigestService struct{}

// NewSHA256DigestService creates a new SHA-256 digest service.
func NewSHA256DigestService() *SHA256DigestService {
	return &SHA256DigestService{}
}

// Digest hashes the concatenation of the five raw field values in this
// exact order, no separators. The inputs are the original record text,
// never reparsed or reformatted values.
func (s *SHA256DigestService) Digest(merchantPubKey, payerPubKey, debitPermissionID, dueEpoch, amount string) []byte {
	h := sha256.New()
	h.Write([]byte(merchantPubKey))
	h.Write([]byte(payerPubKey))
	h.Write([]byte(debitPermissionID))
	h.Write([]byte(dueEpoch))
	h.Write([]byte(amount))
	return h.Sum(nil)
}

// ToHex encodes a digest as a lowercase hex string.
func (s *SHA256DigestService) ToHex(digest []byte) string {
	return hex.EncodeToString(digest)
}

// FromHex decodes a stated digest. Each pair of hex characters maps to one
// byte; parsing is case-insensitive. The string must be exactly 64
// characters, so a truncated or padded digest is rejected up front instead
// of silently comparing unequal lengths.
func (s *SHA256DigestService) FromHex(hexDigest string) ([]byte, error) {
	if len(hexDigest) != digestHexLength {
		return nil, apperror.ErrInvalidHexDigest(
			fmt.Sprintf("invalid hash length, got %d, expected %d", len(hexDigest), digestHexLength))
	}
	digest, err := hex.DecodeString(hexDigest)
	if err != nil {
		return nil, apperror.ErrInvalidHexDigest(
			fmt.Sprintf("failed to parse %q as a hex digest", hexDigest))
	}
	return digest, nil
}

// Verify recomputes the digest over the five raw fields and requires
// byte-exact equality with the record's stated digest.
func (s *SHA256DigestService) Verify(merchantPubKey, payerPubKey, debitPermissionID, dueEpoch, amount, providedHex string) error {
	provided, err := s.FromHex(providedHex)
	if err != nil {
		return err
	}
	computed := s.Digest(merchantPubKey, payerPubKey, debitPermissionID, dueEpoch, amount)
	if !bytes.Equal(computed, provided) {
		return apperror.ErrIntegrityMismatch(s.ToHex(computed), providedHex)
	}
	return nil
}
