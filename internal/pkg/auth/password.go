package auth

import (
	"fmt"
	"unicode"

	"golang.org/x/crypto/bcrypt"
)

var bcryptCost = 12

// HashPassword returns bcrypt hash
func HashPassword(p string) (string, error) {
	res, err := bcrypt.GenerateFromPassword([]byte(p), bcryptCost)
	if err != nil {
		return "", fmt.Errorf("can't hash password: %w", err)
	}
	return string(res), nil
}

// CheckPassword compares password with the hash
func CheckPassword(hash, p string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(p)) == nil
}

// ValidatePassword checks password strength: 8+ chars, a letter and a digit
func ValidatePassword(p string) error {
	if len(p) < 8 {
		return fmt.Errorf("password must be at least 8 characters")
	}
	if len(p) > 72 {
		return fmt.Errorf("password too long")
	}
	var letter, digit bool
	for _, r := range p {
		switch {
		case unicode.IsLetter(r):
			letter = true
		case unicode.IsDigit(r):
			digit = true
		}
	}
	if !letter || !digit {
		return fmt.Errorf("password must contain a letter and a digit")
	}
	return nil
}
