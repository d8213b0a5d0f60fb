package util

import (
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGenerateOtpCodeLength(t *testing.T) {
	for _, length := range []int{4, 6, 8} {
		for i := 0; i < 50; i++ {
			code, err := GenerateOtpCode(length)
			if err != nil {
				t.Fatal(err)
			}
			assert.Equal(t, length, len(code))
			n, convErr := strconv.Atoi(code)
			if convErr != nil {
				t.Fatalf("code is not numeric: %s", code)
			}
			// full digit range for the length, no leading zeros
			min := 1
			for j := 0; j < length-1; j++ {
				min *= 10
			}
			assert.GreaterOrEqual(t, n, min)
			assert.Less(t, n, min*10)
		}
	}
}

func TestGenerateOtpCodeInvalidLength(t *testing.T) {
	_, err := GenerateOtpCode(0)
	assert.Error(t, err)
}

func TestHashOtpCode(t *testing.T) {
	salt, err := GenerateSalt(16)
	if err != nil {
		t.Fatal(err)
	}
	assert.Equal(t, 32, len(salt)) // 16 bytes hex encoded

	h1 := HashOtpCode("314159", salt)
	h2 := HashOtpCode("314159", salt)
	assert.Equal(t, h1, h2)
	assert.NotEqual(t, h1, HashOtpCode("314158", salt))

	otherSalt, _ := GenerateSalt(16)
	assert.NotEqual(t, h1, HashOtpCode("314159", otherSalt))
}

func TestSecureCompare(t *testing.T) {
	assert.True(t, SecureCompare("abc", "abc"))
	assert.False(t, SecureCompare("abc", "abd"))
	assert.False(t, SecureCompare("abc", "abcd"))
}

func TestSha256Hex(t *testing.T) {
	assert.Equal(t, "9f86d081884c7d659a2feaa0c55ad015a3bf4f1b2b0b822cd15d6c15b0f00a08", Sha256Hex([]byte("test")))
}
