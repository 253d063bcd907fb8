package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSignerRoundTrip(t *testing.T) {
	s := NewSigner("secret")

	token := s.Sign("3f2a.session")
	value, ok := s.Verify(token)
	assert.True(t, ok)
	assert.Equal(t, "3f2a.session", value)
}

func TestSignerRejectsTampering(t *testing.T) {
	s := NewSigner("secret")
	token := s.Sign("abc")

	cases := map[string]string{
		"empty":        "",
		"no signature": "abc",
		"trailing dot": "abc.",
		"leading dot":  ".sig",
		"other value":  "abd" + token[3:],
		"other secret": NewSigner("other").Sign("abc"),
	}
	for name, tok := range cases {
		t.Run(name, func(t *testing.T) {
			_, ok := s.Verify(tok)
			assert.False(t, ok)
		})
	}
}
