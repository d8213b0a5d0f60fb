package types

// OTP request and registration share the identity pair
type InputOtpRequest struct {
	Email         string `json:"email" validate:"required,email"`
	WalletAddress string `json:"wallet" validate:"required"`
}

type InputOtpVerify struct {
	InputOtpRequest
	Code string `json:"code" validate:"required,numeric"`
}

type InputRegister struct {
	Email         string `json:"email" validate:"required,email"`
	WalletAddress string `json:"wallet" validate:"required"`
}

// InputDecision is the body of a signing decision. The evidence sub-fields
// (signature payload, tx reference, client metadata) are optional.
type InputDecision struct {
	Email            string  `json:"email" validate:"required,email"`
	Name             string  `json:"name" validate:"required"`
	WalletAddress    string  `json:"wallet" validate:"required"`
	Decision         string  `json:"decision" validate:"required"`
	SignaturePayload *string `json:"signaturePayload,omitempty"`
	DocumentHash     string  `json:"documentHash" validate:"required"`
	TxRef            *string `json:"txRef,omitempty"`
	PublicCredential string  `json:"publicCredential,omitempty"`
	IP               *string `json:"ip,omitempty"`
	Location         *string `json:"location,omitempty"`
	UserAgent        *string `json:"userAgent,omitempty"`
}
