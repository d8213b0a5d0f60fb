package types

type ServerKeys struct {
	Type       string `json:"type"`
	PrivateKey string `json:"privateKey"` // base64, public key is the last 32 bytes
	Created    int64  `json:"created"`
}
