package token

import (
	"context"
	"errors"
	"fmt"

	"github.com/mcoot/arkham-companion/internal/dependencies/random"
)

const (
	// Alphabet is used for alphanumeric tokens (avoid confusing chars)
	Alphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"
	// Letters is used for letters-only tokens
	Letters = "ABCDEFGHJKLMNPQRSTUVWXYZ"
	// MaxAttempts bounds the collision retry loop
	MaxAttempts = 32
)

// ErrTokenSpaceExhausted is returned when no unused token was found
var ErrTokenSpaceExhausted = errors.New("could not generate an unused token")

// ExistsFunc reports whether a candidate token is already taken
type ExistsFunc func(ctx context.Context, candidate string) (bool, error)

// Generator produces random human-enterable tokens
type Generator struct {
	random random.Random
}

// NewGenerator creates a new Generator
func NewGenerator(random random.Random) *Generator {
	return &Generator{random: random}
}

// Generate returns an alphanumeric token of the given length
func (g *Generator) Generate(length int) string {
	return g.random.String(length, Alphabet)
}

// GenerateLetters returns a letters-only token of the given length
func (g *Generator) GenerateLetters(length int) string {
	return g.random.String(length, Letters)
}

// Unique generates alphanumeric candidates until exists reports one as unused
func (g *Generator) Unique(ctx context.Context, length int, exists ExistsFunc) (string, error) {
	for range MaxAttempts {
		candidate := g.Generate(length)
		taken, err := exists(ctx, candidate)
		if err != nil {
			return "", fmt.Errorf("check token: %w", err)
		}
		if !taken {
			return candidate, nil
		}
	}
	return "", ErrTokenSpaceExhausted
}
