package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMemoryStore(t *testing.T) {
	s := NewMemoryStore()
	_, ok := s.Get()
	assert.False(t, ok)

	assert.NoError(t, s.Set("abc"))
	tok, ok := s.Get()
	assert.True(t, ok)
	assert.Equal(t, "abc", tok)

	assert.NoError(t, s.Clear())
	assert.NoError(t, s.Clear())
	_, ok = s.Get()
	assert.False(t, ok)
}
