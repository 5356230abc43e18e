// ABOUTME: Tests for the per-operation request sequencer
// ABOUTME: A slower earlier response must not overwrite a later one
package client

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSequencer_LatestWins(t *testing.T) {
	s := NewSequencer()

	first := s.Next(OpChats)
	second := s.Next(OpChats)

	assert.False(t, s.IsCurrent(OpChats, first), "earlier response is stale")
	assert.True(t, s.IsCurrent(OpChats, second))
}

func TestSequencer_OperationsAreIndependent(t *testing.T) {
	s := NewSequencer()

	models := s.Next(OpModels)
	s.Next(OpChats)
	s.Next(OpChats)

	assert.True(t, s.IsCurrent(OpModels, models))
}

func TestSequencer_Invalidate(t *testing.T) {
	s := NewSequencer()
	seq := s.Next(OpLoad)

	s.Invalidate(OpLoad)

	assert.False(t, s.IsCurrent(OpLoad, seq))
}
