package utils

import (
	"fmt"
	"regexp"
	"strings"
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// Common throwaway passwords rejected outright.
var passwordDenylist = []string{"password", "123456", "qwerty", "admin"}

func ValidEmail(email string) bool {
	return emailPattern.MatchString(email)
}

func ValidatePassword(password string) error {
	if len(password) < 8 {
		return fmt.Errorf("password must be at least 8 characters")
	}
	lowered := strings.ToLower(password)
	for _, banned := range passwordDenylist {
		if lowered == banned {
			return fmt.Errorf("password is too common")
		}
	}
	return nil
}
