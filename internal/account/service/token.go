package service

//go:generate mockgen -destination=../../mocks/mock_token_generator.go -package=mocks github.com/PYROP3/pets-io/internal/account/service TokenGenerator

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
)

// TokenGenerator produces fixed-length random hex identifiers. It gives no
// uniqueness guarantee of its own; callers rely on the entropy of the draw.
type TokenGenerator interface {
	Generate(length int) string
}

// HexTokenService draws tokens from crypto/rand. Each call reads independent
// random bytes, so arbitrary lengths are covered by concatenating draws.
type HexTokenService struct{}

func NewHexTokenService() *HexTokenService {
	return &HexTokenService{}
}

// Generate returns a string of exactly length hex characters. It panics on a
// non-positive length or an exhausted entropy source, both of which are
// programming or platform faults rather than runtime outcomes.
func (g *HexTokenService) Generate(length int) string {
	if length <= 0 {
		panic(fmt.Sprintf("token length must be positive, got %d", length))
	}

	buf := make([]byte, (length+1)/2)
	if _, err := rand.Read(buf); err != nil {
		panic(fmt.Sprintf("entropy source unavailable: %v", err))
	}

	return hex.EncodeToString(buf)[:length]
}
