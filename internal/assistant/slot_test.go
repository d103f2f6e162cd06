package assistant

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSlotNewestWins(t *testing.T) {
	var s Slot

	ctx1, t1 := s.Begin(context.Background())
	assert.True(t, s.Busy())

	ctx2, t2 := s.Begin(context.Background())
	assert.ErrorIs(t, ctx1.Err(), context.Canceled, "older inquiry is cancelled")
	assert.NoError(t, ctx2.Err())

	assert.False(t, s.Finish(t1), "stale ticket must not apply")
	assert.True(t, s.Busy(), "newer inquiry still in flight")

	assert.True(t, s.Finish(t2))
	assert.False(t, s.Busy())
	assert.ErrorIs(t, ctx2.Err(), context.Canceled, "context released after finish")
}

func TestSlotFinishTwice(t *testing.T) {
	var s Slot
	_, tk := s.Begin(context.Background())

	assert.True(t, s.Finish(tk))
	assert.False(t, s.Finish(tk))
}

func TestSlotAbort(t *testing.T) {
	var s Slot
	ctx, tk := s.Begin(context.Background())

	s.Abort()

	assert.ErrorIs(t, ctx.Err(), context.Canceled)
	assert.False(t, s.Busy())
	assert.False(t, s.Finish(tk))
}
