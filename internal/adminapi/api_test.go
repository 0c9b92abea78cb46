package adminapi

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPageBounds(t *testing.T) {
	lo, hi := pageBounds(10, 1, 4)
	assert.Equal(t, 0, lo)
	assert.Equal(t, 4, hi)

	lo, hi = pageBounds(10, 3, 4)
	assert.Equal(t, 8, lo)
	assert.Equal(t, 10, hi)

	// past the end yields an empty window, never a panic
	lo, hi = pageBounds(10, 9, 4)
	assert.Equal(t, 10, lo)
	assert.Equal(t, 10, hi)

	lo, hi = pageBounds(0, 1, 20)
	assert.Equal(t, 0, lo)
	assert.Equal(t, 0, hi)
}
