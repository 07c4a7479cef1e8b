package utils

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateSessionCodeLength(t *testing.T) {
	for _, length := range []int{4, 6, 8, 12} {
		code, err := GenerateSessionCode(length)
		require.NoError(t, err)
		assert.Len(t, code, length)
	}
}

func TestGenerateSessionCodeCharset(t *testing.T) {
	code, err := GenerateSessionCode(64)
	require.NoError(t, err)
	for _, ch := range code {
		assert.True(t, strings.ContainsRune(codeAlphabet, ch), "unexpected character %q", ch)
	}
}

func TestGenerateSessionCodeDefaultsOnBadLength(t *testing.T) {
	code, err := GenerateSessionCode(0)
	require.NoError(t, err)
	assert.Len(t, code, 6)

	code, err = GenerateSessionCode(-3)
	require.NoError(t, err)
	assert.Len(t, code, 6)
}

func TestGenerateSessionCodeVaries(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 50; i++ {
		code, err := GenerateSessionCode(8)
		require.NoError(t, err)
		seen[code] = true
	}
	assert.Greater(t, len(seen), 45)
}
