package types

import "strings"

type DocumentStatus string

const (
	StatusUnsigned        DocumentStatus = "unsigned"
	StatusPartiallySigned DocumentStatus = "partially_signed"
	StatusSigned          DocumentStatus = "signed"
)

type Decision string

const (
	DecisionAccepted Decision = "accepted"
	DecisionRejected Decision = "rejected"
)

// ParseDecision normalizes a client supplied decision value
func ParseDecision(s string) (Decision, error) {
	switch Decision(strings.ToLower(strings.TrimSpace(s))) {
	case DecisionAccepted:
		return DecisionAccepted, nil
	case DecisionRejected:
		return DecisionRejected, nil
	}
	return "", ErrBadRequest
}

// SignatureRecord is a single party decision on a document. Immutable once appended.
type SignatureRecord struct {
	Email            string   `json:"email"`
	Name             string   `json:"name"`
	WalletAddress    string   `json:"walletAddress"` // lowercase, the per-party identity key
	Decision         Decision `json:"decision"`
	DocumentHash     string   `json:"documentHash"`
	SignaturePayload *string  `json:"signaturePayload,omitempty"` // off-chain signature, nil when rejected
	TxRef            *string  `json:"txRef,omitempty"`            // on-chain transaction reference, if any
	PublicCredential string   `json:"publicCredential"`
	IP               *string  `json:"ip,omitempty"`
	Location         *string  `json:"location,omitempty"`
	UserAgent        *string  `json:"userAgent,omitempty"`
	DecidedAt        int64    `json:"decidedAt"`  // unix ms
	RecordedAt       int64    `json:"recordedAt"` // unix ms, server observed
}

// Document metadata plus the ordered, append-only decision list. The binary
// content lives in object storage under ObjectKey.
type Document struct {
	BaseDocument
	Name               string            `json:"name"`
	Hash               string            `json:"hash"` // sha256 of the content, lowercase hex, no 0x
	ObjectKey          string            `json:"objectKey"`
	UploadedAt         int64             `json:"uploadedAt"`
	Signatures         []SignatureRecord `json:"signatures"`
	AcceptedSignatures int               `json:"acceptedSignatures"`
	RequiredSignatures int               `json:"requiredSignatures"`
	Status             DocumentStatus    `json:"status"`
}

// HasDecisionFrom reports whether the wallet already holds a decision on the
// document, regardless of the decision value. Wallet comparison is case
// insensitive.
func (d *Document) HasDecisionFrom(wallet string) bool {
	w := strings.ToLower(strings.TrimSpace(wallet))
	for _, s := range d.Signatures {
		if strings.ToLower(strings.TrimSpace(s.WalletAddress)) == w {
			return true
		}
	}
	return false
}

// RecomputeStatus re-derives the accepted count and status from the full
// signature list. The cached fields are never trusted across calls.
func (d *Document) RecomputeStatus() {
	accepted := 0
	for _, s := range d.Signatures {
		if s.Decision == DecisionAccepted {
			accepted++
		}
	}
	d.AcceptedSignatures = accepted
	switch {
	case accepted == 0:
		d.Status = StatusUnsigned
	case accepted < d.RequiredSignatures:
		d.Status = StatusPartiallySigned
	default:
		d.Status = StatusSigned
	}
}
