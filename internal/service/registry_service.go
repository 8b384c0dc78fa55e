package service

import (
	"strconv"

	"payment-forecast/internal/core/domain"
	"payment-forecast/pkg/apperror"
)

// MerchantRegistry is the idempotent, append-only merchant identity store
// for one ingestion run. The first record for an id registers its identity;
// every later record must match it exactly. Not safe for concurrent use:
// a run mutates it from a single goroutine only.
type MerchantRegistry struct {
	byID map[int64]*domain.MerchantIdentity
}

// NewMerchantRegistry creates an empty merchant registry.
func NewMerchantRegistry() *MerchantRegistry {
	return &MerchantRegistry{byID: make(map[int64]*domain.MerchantIdentity)}
}

// RegisterOrVerify parses the raw merchant fields and either registers a new
// identity or verifies them against the stored one. On success it returns
// the canonical stored instance, so repeated records for an id always
// observe one shared identity and aggregation keys stay stable.
func (r *MerchantRegistry) RegisterOrVerify(idText, name, publicKey string) (*domain.MerchantIdentity, error) {
	id, err := strconv.ParseInt(idText, 10, 64)
	if err != nil {
		return nil, apperror.ErrInvalidMerchantID(idText)
	}
	if len(publicKey) != domain.MerchantPublicKeyLength {
		return nil, apperror.ErrInvalidPublicKeyLength(name, idText, len(publicKey), domain.MerchantPublicKeyLength)
	}

	stored, ok := r.byID[id]
	if !ok {
		stored = &domain.MerchantIdentity{ID: id, Name: name, PublicKey: publicKey}
		r.byID[id] = stored
		return stored, nil
	}
	if !stored.Matches(id, name, publicKey) {
		parsed := &domain.MerchantIdentity{ID: id, Name: name, PublicKey: publicKey}
		return nil, apperror.ErrMerchantConflict(parsed.String(), stored.String())
	}
	return stored, nil
}

// MerchantName implements ports.MerchantDirectory for the report layer.
func (r *MerchantRegistry) MerchantName(id int64) (string, bool) {
	if identity, ok := r.byID[id]; ok {
		return identity.Name, true
	}
	return "", false
}

// Len returns the number of registered merchants.
func (r *MerchantRegistry) Len() int {
	return len(r.byID)
}

// PayerRegistry is the payer-side counterpart of MerchantRegistry. Payers
// contribute nothing to the forecast; the registry exists only to catch
// records that disagree about a payer's public key.
type PayerRegistry struct {
	byID map[int64]*domain.PayerIdentity
}

// NewPayerRegistry creates an empty payer registry.
func NewPayerRegistry() *PayerRegistry {
	return &PayerRegistry{byID: make(map[int64]*domain.PayerIdentity)}
}

// RegisterOrVerify parses the raw payer fields and either registers the
// public key for a new id or verifies it against the stored one.
func (r *PayerRegistry) RegisterOrVerify(idText, publicKey string) error {
	id, err := strconv.ParseInt(idText, 10, 64)
	if err != nil {
		return apperror.ErrInvalidPayerID(idText)
	}

	stored, ok := r.byID[id]
	if !ok {
		r.byID[id] = &domain.PayerIdentity{ID: id, PublicKey: publicKey}
		return nil
	}
	if stored.PublicKey != publicKey {
		return apperror.ErrPayerConflict(id, publicKey, stored.PublicKey)
	}
	return nil
}
