// Package authutil holds credential helpers: password rules, bcrypt hashing
// and the random secrets mailed to users.
package authutil

import (
	"errors"
	"strings"
	"unicode"

	"golang.org/x/crypto/bcrypt"
)

const (
	// MinPasswordLength applies to password resets and changes.
	MinPasswordLength = 6
	// MinStrongPasswordLength applies at signup.
	MinStrongPasswordLength = 8
	// MaxPasswordLength keeps inputs under bcrypt's 72-byte ceiling with room
	// for multi-byte runes to be rejected explicitly.
	MaxPasswordLength = 128
	// BcryptCost is shared by passwords and passcodes.
	BcryptCost = 10
)

var (
	ErrPasswordTooShort = errors.New("Password must be at least 6 characters.")
	ErrPasswordTooLong  = errors.New("Password must be at most 128 characters.")
	ErrPasswordCommon   = errors.New("Password is too common. Please choose another.")
	ErrPasswordWeak     = errors.New("Please enter a strong password: at least 8 characters with upper and lower case letters, a number and a symbol.")
)

var commonPasswords = map[string]struct{}{
	"123456": {}, "1234567": {}, "12345678": {}, "123456789": {}, "password": {},
	"qwerty": {}, "abc123": {}, "iloveyou": {}, "letmein": {}, "football": {},
	"welcome": {}, "monkey": {}, "dragon": {}, "111111": {}, "sunshine": {},
	"princess": {}, "admin": {}, "passw0rd": {}, "password1": {}, "qwerty123": {},
}

// ValidatePassword applies the baseline rules used for resets and changes.
func ValidatePassword(pw string) error {
	n := len([]rune(pw))
	if n < MinPasswordLength {
		return ErrPasswordTooShort
	}
	if n > MaxPasswordLength {
		return ErrPasswordTooLong
	}
	if _, common := commonPasswords[strings.ToLower(pw)]; common {
		return ErrPasswordCommon
	}
	return nil
}

// ValidateStrongPassword applies the signup rules: the baseline plus at
// least 8 characters mixing upper case, lower case, digits and symbols.
func ValidateStrongPassword(pw string) error {
	if err := ValidatePassword(pw); err != nil {
		if err == ErrPasswordTooShort {
			return ErrPasswordWeak
		}
		return err
	}
	if len([]rune(pw)) < MinStrongPasswordLength {
		return ErrPasswordWeak
	}
	var upper, lower, digit, symbol bool
	for _, r := range pw {
		switch {
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsLower(r):
			lower = true
		case unicode.IsDigit(r):
			digit = true
		case unicode.IsPunct(r) || unicode.IsSymbol(r):
			symbol = true
		}
	}
	if !upper || !lower || !digit || !symbol {
		return ErrPasswordWeak
	}
	return nil
}

// PasswordRules describes the baseline rules for forms and API docs.
func PasswordRules() string {
	return "Passwords must be 6 to 128 characters and not a commonly used password."
}

// HashPassword bcrypt-hashes pw.
func HashPassword(pw string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(pw), BcryptCost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// CheckPassword reports whether pw matches the bcrypt hash.
func CheckPassword(pw, hash string) bool {
	if pw == "" || hash == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(pw)) == nil
}

// Bcrypt is the credential hasher handed to services.
type Bcrypt struct{}

// Hash implements the services' Hasher.
func (Bcrypt) Hash(plain string) (string, error) { return HashPassword(plain) }

// Verify implements the services' Hasher.
func (Bcrypt) Verify(plain, hash string) bool { return CheckPassword(plain, hash) }
