package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInit(t *testing.T) {
	l := New()

	require.NoError(t, l.Init("info"))
	assert.NotNil(t, l.Log)
}

func TestInitBadLevel(t *testing.T) {
	l := New()

	assert.Error(t, l.Init("shouting"))
}
