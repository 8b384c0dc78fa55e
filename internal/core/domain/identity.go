package domain

import "fmt"

// MerchantPublicKeyLength is the fixed length of every merchant public key
// in the feed.
const MerchantPublicKeyLength = 20

// MerchantIdentity is the immutable identity registered for a merchant id.
// Once stored, any later record claiming the same id with a different name
// or key is a validation failure, never a silent update.
type MerchantIdentity struct {
	ID        int64
	Name      string
	PublicKey string
}

// Matches reports whether the given fields all equal the stored identity.
func (m *MerchantIdentity) Matches(id int64, name, publicKey string) bool {
	return m.ID == id && m.Name == name && m.PublicKey == publicKey
}

func (m *MerchantIdentity) String() string {
	return fmt.Sprintf("ID: %d, Name: %s, PubKey: %s", m.ID, m.Name, m.PublicKey)
}

// PayerIdentity binds a payer id to its public key. It never surfaces beyond
// validation; it exists purely to catch inconsistent feed data.
type PayerIdentity struct {
	ID        int64
	PublicKey string
}
