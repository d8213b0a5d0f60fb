package util

import (
	"regexp"
	"strings"
)

var walletAddressRe = regexp.MustCompile("^0x[0-9a-fA-F]{40}$")

// NormalizeEmail lowercases and trims an email address before it is used as
// a comparison or storage key
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// NormalizeWalletAddress lowercases and trims a wallet address
func NormalizeWalletAddress(address string) string {
	return strings.ToLower(strings.TrimSpace(address))
}

// NormalizeHash lowercases a content hash and strips the 0x prefix
func NormalizeHash(hash string) string {
	h := strings.ToLower(strings.TrimSpace(hash))
	return strings.TrimPrefix(h, "0x")
}

// helper to check if the wallet address is valid
func IsValidWalletAddress(address string) bool {
	return walletAddressRe.MatchString(address)
}

func IsNilOrEmpty(s *string) bool {
	return s == nil || *s == ""
}
