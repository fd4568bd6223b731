package authutil

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"math/big"
)

const (
	// PasscodeLength is the number of digits in a signup passcode.
	PasscodeLength = 6
	// ResetTokenBytes is the entropy of a password reset token.
	ResetTokenBytes = 32
)

var passcodeSpan = big.NewInt(900000)

// GeneratePasscode returns a uniformly random code in 100000..999999.
func GeneratePasscode() (string, error) {
	n, err := rand.Int(rand.Reader, passcodeSpan)
	if err != nil {
		return "", fmt.Errorf("generate passcode: %w", err)
	}
	return fmt.Sprintf("%06d", n.Int64()+100000), nil
}

// GenerateResetToken returns a hex-encoded random token and its SHA-256
// for storage.
func GenerateResetToken() (token, hash string, err error) {
	b := make([]byte, ResetTokenBytes)
	if _, err := rand.Read(b); err != nil {
		return "", "", fmt.Errorf("generate reset token: %w", err)
	}
	token = hex.EncodeToString(b)
	return token, HashToken(token), nil
}

// HashToken computes the SHA-256 of a token in hex.
func HashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
