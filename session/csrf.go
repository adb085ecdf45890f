package session

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
)

const csrfTokenBytes = 32

// CSRFToken returns the session token generating one on first use
func CSRFToken(s *Session) string {
	if token := s.GetString(csrfKey); token != "" {
		return token
	}

	buf := make([]byte, csrfTokenBytes)
	if _, err := rand.Read(buf); err != nil {
		panic(err)
	}

	token := hex.EncodeToString(buf)
	s.Set(csrfKey, token)
	return token
}

// ValidCSRFToken compares token with the one stored on the session
func ValidCSRFToken(s *Session, token string) bool {
	expected := s.GetString(csrfKey)
	if expected == "" || token == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(expected), []byte(token)) == 1
}
