package utils

import (
	"crypto/rand"
	"fmt"

	"github.com/google/uuid"
)

func GenerateOTP() string {
	// Generate a 6-digit OTP
	var buf [4]byte
	rand.Read(buf[:])
	n := uint32(buf[0])<<24 | uint32(buf[1])<<16 | uint32(buf[2])<<8 | uint32(buf[3])
	return fmt.Sprintf("%06d", n%1000000)
}

// ThrowawayPassword generates the random placeholder credential used when
// the booking wizard creates an account for an unauthenticated customer.
// The customer is expected to reset it via the email flow.
func ThrowawayPassword() string {
	return uuid.NewString()
}
