package tx

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	dErrors "poolpay/pkg/domain-errors"
)

func TestJournalRollbackOrder(t *testing.T) {
	var order []int
	j := &Journal{}
	ctx := WithJournal(context.Background(), j)

	RecordUndo(ctx, func() { order = append(order, 1) })
	RecordUndo(ctx, func() { order = append(order, 2) })
	RecordUndo(ctx, func() { order = append(order, 3) })
	j.Rollback()

	assert.Equal(t, []int{3, 2, 1}, order)

	j.Rollback()
	assert.Len(t, order, 3, "second rollback must be a no-op")
}

func TestRecordUndoWithoutJournal(t *testing.T) {
	called := false
	RecordUndo(context.Background(), func() { called = true })
	assert.False(t, called)
}

func TestFromWithoutTx(t *testing.T) {
	_, ok := From(context.Background())
	assert.False(t, ok)
	assert.Equal(t, context.Background(), WithTx(context.Background(), nil))
}

func TestMemoryRunner(t *testing.T) {
	t.Run("rolls back recorded steps on error", func(t *testing.T) {
		r := NewMemoryRunner()
		state := 0
		err := r.RunInTx(context.Background(), func(ctx context.Context) error {
			state = 1
			RecordUndo(ctx, func() { state = 0 })
			return errors.New("boom")
		})
		assert.EqualError(t, err, "boom")
		assert.Equal(t, 0, state)
	})

	t.Run("keeps mutations on success", func(t *testing.T) {
		r := NewMemoryRunner()
		state := 0
		err := r.RunInTx(context.Background(), func(ctx context.Context) error {
			state = 1
			RecordUndo(ctx, func() { state = 0 })
			return nil
		})
		assert.NoError(t, err)
		assert.Equal(t, 1, state)
	})

	t.Run("refuses a cancelled context", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		called := false
		err := NewMemoryRunner().RunInTx(ctx, func(context.Context) error {
			called = true
			return nil
		})
		assert.True(t, dErrors.HasCode(err, dErrors.CodeTimeout))
		assert.False(t, called)
	})

	t.Run("applies default deadline", func(t *testing.T) {
		var hasDeadline bool
		_ = NewMemoryRunner().RunInTx(context.Background(), func(ctx context.Context) error {
			_, hasDeadline = ctx.Deadline()
			return nil
		})
		assert.True(t, hasDeadline)
	})
}
