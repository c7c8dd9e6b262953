package domain

import (
	"fmt"

	"github.com/google/uuid"
)

// PaymentRequest is an immutable signed value-transfer request issued by
// an agent. Timestamp is Unix seconds; Amount is integer minor units so
// signer and verifier agree byte for byte on the signed payload.
type PaymentRequest struct {
	RequestID string    `json:"request_id"`
	WalletID  uuid.UUID `json:"wallet_id"`
	Amount    int64     `json:"amount"`
	Currency  string    `json:"currency"`
	Nonce     string    `json:"nonce"`
	Timestamp int64     `json:"timestamp"`
	Signature string    `json:"signature"` // hex-encoded ed25519 signature
	SignerDID string    `json:"signer_did"`
}

// CanonicalPayload builds the byte string the signature covers.
// Format: REQUEST_ID|WALLET_ID|AMOUNT|CURRENCY|NONCE|TIMESTAMP.
// Field order is fixed and amounts are base-10 integers.
func (r *PaymentRequest) CanonicalPayload() []byte {
	return []byte(fmt.Sprintf("%s|%s|%d|%s|%s|%d",
		r.RequestID, r.WalletID.String(), r.Amount, r.Currency, r.Nonce, r.Timestamp))
}
