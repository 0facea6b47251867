package uuid

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRandom(t *testing.T) {
	id, err := NewRandom()
	require.NoError(t, err)
	assert.NotEqual(t, Nil, id)
	assert.Equal(t, uuid.Version(7), id.Version())
}

func TestNewRequestID(t *testing.T) {
	a := NewRequestID()
	b := NewRequestID()
	assert.NotEqual(t, a, b)
	assert.True(t, IsRequestID(a))
	assert.Less(t, a, b, "v7 identifiers sort by creation time")
}

func TestIsRequestID(t *testing.T) {
	assert.True(t, IsRequestID("123e4567-e89b-12d3-a456-426614174000"))
	assert.False(t, IsRequestID("not-a-uuid"))
	assert.False(t, IsRequestID(""))
	assert.False(t, IsRequestID("00000000-0000-0000-0000-000000000000"))
}
