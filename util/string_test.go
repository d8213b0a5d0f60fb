package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeEmail(t *testing.T) {
	assert.Equal(t, "alice@example.com", NormalizeEmail("  Alice@Example.COM "))
}

func TestNormalizeWalletAddress(t *testing.T) {
	assert.Equal(t, "0xabcdef", NormalizeWalletAddress(" 0xABCdef\t"))
}

func TestNormalizeHash(t *testing.T) {
	assert.Equal(t, "deadbeef", NormalizeHash("0xDEADBEEF"))
	assert.Equal(t, "deadbeef", NormalizeHash("deadbeef"))
}

func TestIsValidWalletAddress(t *testing.T) {
	assert.True(t, IsValidWalletAddress("0x52908400098527886E0F7030069857D2E4169EE7"))
	assert.False(t, IsValidWalletAddress("52908400098527886E0F7030069857D2E4169EE7"))
	assert.False(t, IsValidWalletAddress("0x1234"))
	assert.False(t, IsValidWalletAddress("0x52908400098527886E0F7030069857D2E4169EEZ"))
}
