package webhook

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVerifySignature(t *testing.T) {
	secret := []byte("sk_test")
	body := []byte(`{"event":"charge.success"}`)
	sig := Sign(secret, body)

	assert.Len(t, sig, 128)
	assert.True(t, VerifySignature(secret, body, sig))
	assert.False(t, VerifySignature(secret, body, sig[:126]))
	assert.False(t, VerifySignature(secret, body, "zz"))
	assert.False(t, VerifySignature(nil, body, Sign(nil, body)), "empty secret never verifies")
}

func TestParseNotification(t *testing.T) {
	t.Run("charge.success", func(t *testing.T) {
		n, err := ParseNotification([]byte(`{"event":"charge.success","data":{"id":42,"reference":" pl_a ","amount":700,"currency":"KES","paid_at":"2026-03-01T10:00:00+01:00"}}`))
		require.NoError(t, err)
		assert.True(t, n.IsSuccess())
		assert.Equal(t, "pl_a", n.Reference)
		assert.Equal(t, "42", n.ProviderReference)
		assert.Equal(t, int64(700), n.Amount)
		assert.Equal(t, "KES", n.Currency)
		assert.Equal(t, time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC), n.PaidAt)
	})

	t.Run("charge.success without reference", func(t *testing.T) {
		_, err := ParseNotification([]byte(`{"event":"charge.success","data":{}}`))
		assert.Error(t, err)
	})

	t.Run("other event without reference is fine", func(t *testing.T) {
		n, err := ParseNotification([]byte(`{"event":"subscription.create","data":{"paid_at":null}}`))
		require.NoError(t, err)
		assert.False(t, n.IsSuccess())
	})

	t.Run("not json", func(t *testing.T) {
		_, err := ParseNotification([]byte(`nope`))
		assert.Error(t, err)
	})
}

func TestMemoryReplayCache(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	c := NewMemoryReplayCache()
	c.now = func() time.Time { return now }

	seen, err := c.Seen(ctx, "k")
	require.NoError(t, err)
	assert.False(t, seen)

	require.NoError(t, c.Remember(ctx, "k", time.Minute))
	seen, _ = c.Seen(ctx, "k")
	assert.True(t, seen)

	now = now.Add(time.Minute)
	seen, _ = c.Seen(ctx, "k")
	assert.False(t, seen, "expired at ttl")

	assert.Error(t, c.Remember(ctx, "k", 0))
}
