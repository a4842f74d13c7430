package usecase

import (
	"crypto/rand"
	"io"
)

// A character set that avoids ambiguous characters like O/0, I/1, l.
const tokenChars = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// generateToken creates a secure, random, opaque token of the given length.
func generateToken(length int) (string, error) {
	buffer := make([]byte, length)
	if _, err := io.ReadFull(rand.Reader, buffer); err != nil {
		return "", err
	}
	for i := 0; i < length; i++ {
		buffer[i] = tokenChars[int(buffer[i])%len(tokenChars)]
	}
	return string(buffer), nil
}

// generateActivationToken creates a human-readable single-use token.
// Format: XXXX-XXXX-XXXX-XXXX
func generateActivationToken() (string, error) {
	raw, err := generateToken(16)
	if err != nil {
		return "", err
	}
	return raw[0:4] + "-" + raw[4:8] + "-" + raw[8:12] + "-" + raw[12:16], nil
}

// generatePassword creates the never-surfaced password for a new identity.
// Login always happens via magic link, so nobody ever types this.
func generatePassword() (string, error) {
	const pwChars = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	buffer := make([]byte, 32)
	if _, err := io.ReadFull(rand.Reader, buffer); err != nil {
		return "", err
	}
	for i := range buffer {
		buffer[i] = pwChars[int(buffer[i])%len(pwChars)]
	}
	return string(buffer), nil
}
