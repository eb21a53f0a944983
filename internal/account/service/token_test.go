package service_test

import (
	"testing"

	"github.com/PYROP3/pets-io/internal/account/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func isHex(s string) bool {
	for _, c := range s {
		if (c < '0' || c > '9') && (c < 'a' || c > 'f') {
			return false
		}
	}
	return true
}

func TestHexTokenService_Generate_LengthAndAlphabet(t *testing.T) {
	g := service.NewHexTokenService()

	for _, length := range []int{8, 32, 64} {
		token := g.Generate(length)
		require.Len(t, token, length)
		assert.True(t, isHex(token), "token %q contains non-hex characters", token)
	}
}

func TestHexTokenService_Generate_OddLength(t *testing.T) {
	g := service.NewHexTokenService()

	token := g.Generate(7)
	require.Len(t, token, 7)
	assert.True(t, isHex(token))
}

func TestHexTokenService_Generate_IndependentDraws(t *testing.T) {
	g := service.NewHexTokenService()

	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		token := g.Generate(64)
		assert.False(t, seen[token], "token %q drawn twice", token)
		seen[token] = true
	}
}

func TestHexTokenService_Generate_InvalidLengthPanics(t *testing.T) {
	g := service.NewHexTokenService()

	assert.Panics(t, func() { g.Generate(0) })
	assert.Panics(t, func() { g.Generate(-1) })
}
