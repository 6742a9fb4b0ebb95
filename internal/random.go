package internal

import (
	"crypto/rand"
	"encoding/hex"
)

const tokenRawSize = 32

// NewToken returns 32 bytes of crypto/rand output as 64 lowercase hex
// characters. Session and reset tokens share this shape.
func NewToken() (string, error) {
	var raw [tokenRawSize]byte
	if _, err := rand.Read(raw[:]); err != nil {
		return "", err
	}
	return hex.EncodeToString(raw[:]), nil
}

// ValidToken reports whether token has the shape NewToken produces.
func ValidToken(token string) bool {
	if len(token) != tokenRawSize*2 {
		return false
	}
	for i := 0; i < len(token); i++ {
		c := token[i]
		if (c < '0' || c > '9') && (c < 'a' || c > 'f') {
			return false
		}
	}
	return true
}
