package types

// SessionClaims is the payload of a session token. Sessions are stateless:
// the client holds the only copy, the server verifies the signature.
type SessionClaims struct {
	Email         string `json:"sub"`
	WalletAddress string `json:"wallet"`
	Issuer        string `json:"iss"`
	IssuedAt      int64  `json:"iat"` // unix seconds
	ExpiresAt     int64  `json:"exp"` // unix seconds
}
