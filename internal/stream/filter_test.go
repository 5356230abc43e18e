// ABOUTME: Tests for the active-chat filter
// ABOUTME: Verifies exact id matching and change reporting
package stream

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestActiveChat(t *testing.T) {
	a := NewActiveChat(7)

	assert.True(t, a.IsRelevant(7))
	assert.False(t, a.IsRelevant(8))
	assert.Equal(t, int64(7), a.Current())

	assert.True(t, a.Set(8))
	assert.False(t, a.Set(8))
	assert.True(t, a.IsRelevant(8))
	assert.False(t, a.IsRelevant(7))
}

func TestActiveChat_NoChatOpen(t *testing.T) {
	a := NewActiveChat(0)

	assert.False(t, a.IsRelevant(1))
}
