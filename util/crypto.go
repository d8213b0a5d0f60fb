package util

import (
	"crypto/ed25519"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"encoding/hex"
	"math/big"

	"github.com/walletsign/go-walletsign-server/types"
)

// GenerateOtpCode draws a numeric code of the given length from a
// cryptographically secure source, uniform over [10^(length-1), 10^length).
func GenerateOtpCode(length int) (string, error) {
	if length < 4 || length > 10 {
		return "", types.ErrBadRequest
	}
	min := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(length-1)), nil)
	max := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(length)), nil)
	n, err := rand.Int(rand.Reader, new(big.Int).Sub(max, min))
	if err != nil {
		return "", err
	}
	return new(big.Int).Add(n, min).String(), nil
}

// GenerateSalt returns n random bytes hex encoded
func GenerateSalt(n int) (string, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

// HashOtpCode is the stored form of a passcode: sha256 over code+salt, hex.
// The plaintext code is never persisted.
func HashOtpCode(code, salt string) string {
	return Sha256Hex([]byte(code + salt))
}

// SecureCompare is a constant-time string equality check, resistant to
// response-time side channels during code guessing.
func SecureCompare(a, b string) bool {
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}

// Sha256Hex returns the sha256 hash of the data as a hex string
func Sha256Hex(data []byte) string {
	hash := sha256.New()
	hash.Write(data)
	sum := hash.Sum(nil)
	return hex.EncodeToString(sum)
}

// Generates ed25519 signing key pair and returns base64 public key, private key
// returns publicKey, privateKey, error
func GenerateEd25519KeyPair() (*string, *string, error) {
	pubKey, privKey, err := ed25519.GenerateKey(nil)
	if err != nil {
		return nil, nil, err
	}

	pubKeyBase64 := base64.StdEncoding.EncodeToString(pubKey)
	privKeyBase64 := base64.StdEncoding.EncodeToString(privKey)
	return &pubKeyBase64, &privKeyBase64, nil
}
