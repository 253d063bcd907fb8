package services

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"strings"
)

// Signer signs opaque values, such as session ids carried in cookies, with an
// HMAC so that clients cannot forge them.
type Signer struct {
	secret string
}

func NewSigner(secret string) *Signer {
	return &Signer{secret: secret}
}

// Sign returns "<value>.<signature>".
func (s *Signer) Sign(value string) string {
	return value + "." + computeSignature(value, s.secret)
}

// Verify returns the original value of a token produced by Sign.
func (s *Signer) Verify(token string) (string, bool) {
	idx := strings.LastIndexByte(token, '.')
	if idx <= 0 || idx == len(token)-1 {
		return "", false
	}
	value, signature := token[:idx], token[idx+1:]
	expected := computeSignature(value, s.secret)
	if !hmac.Equal([]byte(signature), []byte(expected)) {
		return "", false
	}
	return value, true
}

func computeSignature(value, secret string) string {
	h := hmac.New(sha256.New, []byte(secret))
	h.Write([]byte(value))
	sig := h.Sum(nil)
	return base64.URLEncoding.WithPadding(base64.NoPadding).EncodeToString(sig)
}
