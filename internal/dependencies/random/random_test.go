package random

import (
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIntnStaysInRange(t *testing.T) {
	r := New()
	for range 200 {
		n := r.Intn(7)
		assert.GreaterOrEqual(t, n, 0)
		assert.Less(t, n, 7)
	}
	assert.Equal(t, 0, r.Intn(0))
}

func TestStringUsesAlphabet(t *testing.T) {
	r := New()
	s := r.String(32, "AB")
	require.Len(t, s, 32)
	assert.Empty(t, strings.Trim(s, "AB"))
	assert.Empty(t, r.String(0, "AB"))
	assert.Empty(t, r.String(4, ""))
}

func TestUUIDIsValid(t *testing.T) {
	r := New()
	a, b := r.UUID(), r.UUID()
	_, err := uuid.Parse(a)
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}
