package calculator

import (
	"context"
	"testing"

	"calc-pro/internal/history"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistryLifecycle(t *testing.T) {
	ctx := context.Background()
	rec := history.NewRecorder(ctx, history.NewMemoryStore())
	reg := NewRegistry(rec, &fakeSolver{})

	a := reg.Create(ctx)
	b := reg.Create(ctx)
	assert.NotEqual(t, a.ID, b.ID)
	assert.Equal(t, 2, reg.Len())

	got, err := reg.Get(a.ID)
	require.NoError(t, err)
	assert.Same(t, a, got)

	require.NoError(t, reg.Delete(ctx, a.ID))
	_, err = reg.Get(a.ID)
	assert.ErrorIs(t, err, ErrSessionNotFound)
	assert.ErrorIs(t, reg.Delete(ctx, a.ID), ErrSessionNotFound)
	assert.Equal(t, 1, reg.Len())
}

func TestRegistrySessionsShareHistory(t *testing.T) {
	ctx := context.Background()
	rec := history.NewRecorder(ctx, history.NewMemoryStore())
	reg := NewRegistry(rec, &fakeSolver{})

	a := reg.Create(ctx)
	b := reg.Create(ctx)
	pressAll(t, a, "8", "-", "3", "=")

	snap := b.Snapshot()
	assert.Equal(t, 1, snap.HistorySize)
	require.NoError(t, b.SelectHistory(rec.List()[0].ID))
	assert.Equal(t, "5", b.Snapshot().Display)
}
