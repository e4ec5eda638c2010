package utils

import (
	"crypto/rand"
	"encoding/base64"
)

const DefaultTokenBytes = 32

// NewOpaqueToken returns nBytes of CSPRNG output encoded as unpadded base64url,
// safe to embed in a URL path segment.
func NewOpaqueToken(nBytes int) (string, error) {
	if nBytes <= 0 {
		nBytes = DefaultTokenBytes
	}
	b := make([]byte, nBytes)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
