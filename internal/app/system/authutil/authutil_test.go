package authutil

import (
	"strings"
	"testing"
)

// Test password validation

func TestValidatePassword_Valid(t *testing.T) {
	validPasswords := []string{
		"secure123",
		"MyP@ssw0rd",
		"abcdef1", // 7 chars, just above minimum
	}

	for _, pw := range validPasswords {
		if err := ValidatePassword(pw); err != nil {
			t.Errorf("expected %q to be valid, got error: %v", pw, err)
		}
	}
}

func TestValidatePassword_TooShort(t *testing.T) {
	for _, pw := range []string{"", "a", "abcde"} {
		if err := ValidatePassword(pw); err != ErrPasswordTooShort {
			t.Errorf("expected ErrPasswordTooShort for %q, got %v", pw, err)
		}
	}
}

func TestValidatePassword_TooLong(t *testing.T) {
	if err := ValidatePassword(strings.Repeat("a", 129)); err != ErrPasswordTooLong {
		t.Errorf("expected ErrPasswordTooLong, got %v", err)
	}
	if err := ValidatePassword(strings.Repeat("a", 128)); err != nil {
		t.Errorf("expected password at max length to be valid, got %v", err)
	}
}

func TestValidatePassword_CommonCaseInsensitive(t *testing.T) {
	for _, pw := range []string{"password", "PASSWORD", "Qwerty", "ILoveYou", "123456"} {
		if err := ValidatePassword(pw); err != ErrPasswordCommon {
			t.Errorf("expected ErrPasswordCommon for %q, got %v", pw, err)
		}
	}
}

func TestValidateStrongPassword(t *testing.T) {
	tests := []struct {
		pw   string
		want error
	}{
		{"Str0ng!pass", nil},
		{"Ab1!", ErrPasswordWeak},           // too short
		{"alllower1!", ErrPasswordWeak},     // no upper
		{"ALLUPPER1!", ErrPasswordWeak},     // no lower
		{"NoDigits!!", ErrPasswordWeak},     // no digit
		{"NoSymbol12", ErrPasswordWeak},     // no symbol
		{"password1", ErrPasswordCommon},    // common wins
	}
	for _, tt := range tests {
		t.Run(tt.pw, func(t *testing.T) {
			if got := ValidateStrongPassword(tt.pw); got != tt.want {
				t.Errorf("ValidateStrongPassword(%q) = %v, want %v", tt.pw, got, tt.want)
			}
		})
	}
}

// Test password hashing

func TestHashPassword_RoundTrip(t *testing.T) {
	password := "SecurePassword123"

	hash, err := HashPassword(password)
	if err != nil {
		t.Fatalf("HashPassword failed: %v", err)
	}
	if hash == "" || hash == password || hash[0] != '$' {
		t.Fatalf("unexpected bcrypt hash %q", hash)
	}

	if !CheckPassword(password, hash) {
		t.Error("expected CheckPassword to return true for correct password")
	}
	if CheckPassword("WrongPassword456", hash) {
		t.Error("expected CheckPassword to return false for wrong password")
	}
	if CheckPassword("", hash) {
		t.Error("expected CheckPassword to return false for empty password")
	}
}

func TestHashPassword_DifferentHashesForSamePassword(t *testing.T) {
	h1, _ := HashPassword("SecurePassword123")
	h2, _ := HashPassword("SecurePassword123")
	if h1 == h2 {
		t.Error("expected different hashes for same password (random salt)")
	}
}

func TestCheckPassword_InvalidHash(t *testing.T) {
	if CheckPassword("password", "not-a-valid-hash") {
		t.Error("expected CheckPassword to return false for invalid hash")
	}
}

func TestBcrypt_ImplementsHasher(t *testing.T) {
	var h Bcrypt
	hash, err := h.Hash("123456")
	if err != nil {
		t.Fatalf("Hash failed: %v", err)
	}
	if !h.Verify("123456", hash) {
		t.Error("Verify should accept the hashed value")
	}
}

func TestPasswordRules(t *testing.T) {
	if !strings.Contains(PasswordRules(), "6") {
		t.Error("expected PasswordRules to mention minimum length of 6")
	}
}

// Test secrets

func TestGeneratePasscode_Format(t *testing.T) {
	for i := 0; i < 200; i++ {
		code, err := GeneratePasscode()
		if err != nil {
			t.Fatalf("GeneratePasscode failed: %v", err)
		}
		if len(code) != PasscodeLength {
			t.Fatalf("expected %d digits, got %q", PasscodeLength, code)
		}
		if code[0] == '0' {
			t.Fatalf("expected code in 100000..999999, got %q", code)
		}
		for _, c := range code {
			if c < '0' || c > '9' {
				t.Fatalf("expected only digits, got %q", code)
			}
		}
	}
}

func TestGenerateResetToken(t *testing.T) {
	token, hash, err := GenerateResetToken()
	if err != nil {
		t.Fatalf("GenerateResetToken failed: %v", err)
	}
	if len(token) != ResetTokenBytes*2 {
		t.Errorf("expected %d hex chars, got %d", ResetTokenBytes*2, len(token))
	}
	if hash != HashToken(token) {
		t.Error("hash should be the SHA-256 of the token")
	}
	if hash == token {
		t.Error("hash should differ from token")
	}
}
