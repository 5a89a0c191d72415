package fake

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerator_Deterministic(t *testing.T) {
	g := New()
	ctx := context.Background()

	a, err := g.Generate(ctx, "gemini-2.5-flash", "Name: Kubota M7, Model: M7 Series, Year: 2023")
	require.NoError(t, err)
	b, err := g.Generate(ctx, "gemini-2.5-flash", "Name: Kubota M7, Model: M7 Series, Year: 2023")
	require.NoError(t, err)

	assert.Equal(t, a, b)
	assert.Contains(t, a, "Kubota M7")
	assert.Contains(t, a, "gemini-2.5-flash")
}

func TestGenerator_FirstLineOnly(t *testing.T) {
	out, err := New().Generate(context.Background(), "m", "line one\nline two")
	require.NoError(t, err)
	assert.Contains(t, out, "line one")
	assert.NotContains(t, out, "line two")
}

func TestGenerator_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New().Generate(ctx, "m", "p")
	assert.ErrorIs(t, err, context.Canceled)
}
