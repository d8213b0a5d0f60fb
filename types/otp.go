package types

// OtpChallenge is a stored one-time passcode challenge bound to an
// (email, wallet) pair. Only the salted hash of the code is persisted.
// A challenge is never mutated after Used is set.
type OtpChallenge struct {
	BaseDocument
	Email         string `json:"email"`
	WalletAddress string `json:"walletAddress"`
	CodeHash      string `json:"codeHash"` // sha256(code+salt), hex
	Salt          string `json:"salt"`     // per-challenge random salt, hex
	Used          bool   `json:"used"`
	Attempts      int    `json:"attempts"`
	ExpiresAt     int64  `json:"expiresAt"` // unix ms
	Created       int64  `json:"created"`   // unix ms
}
