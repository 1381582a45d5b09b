package random

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCode(t *testing.T) {
	code, err := NewCode(6)
	require.NoError(t, err)
	assert.Len(t, code, 6)
	assert.Regexp(t, `^[a-z0-9]+$`, code)
}

func TestNewCode_InvalidLength(t *testing.T) {
	_, err := NewCode(0)
	assert.Error(t, err)
}

func TestNewCode_Uniqueness(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		code, err := NewCode(8)
		require.NoError(t, err)
		assert.False(t, seen[code], "generated duplicate code %q", code)
		seen[code] = true
	}
}
