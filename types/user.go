package types

// User is an identity binding: one email maps to exactly one authorized
// wallet address. Created at registration, immutable afterwards.
type User struct {
	BaseDocument
	Email         string `json:"email" validate:"required,email"`
	WalletAddress string `json:"walletAddress" validate:"required"`
	Created       int64  `json:"created"`
}
