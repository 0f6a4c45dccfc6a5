package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCourtesyGate_WaitWithoutHold(t *testing.T) {
	g := NewCourtesyGate()

	start := time.Now()
	require.NoError(t, g.Wait(context.Background(), "shop.example.com"))
	assert.Less(t, time.Since(start), 50*time.Millisecond)
}

func TestCourtesyGate_WaitBlocksUntilRelease(t *testing.T) {
	g := NewCourtesyGate()
	ctx := context.Background()

	require.NoError(t, g.Hold(ctx, "shop.example.com", 80*time.Millisecond))

	start := time.Now()
	require.NoError(t, g.Wait(ctx, "shop.example.com"))
	assert.GreaterOrEqual(t, time.Since(start), 60*time.Millisecond)
}

func TestCourtesyGate_HostsAreIndependent(t *testing.T) {
	g := NewCourtesyGate()
	ctx := context.Background()

	require.NoError(t, g.Hold(ctx, "a.example.com", time.Hour))

	start := time.Now()
	require.NoError(t, g.Wait(ctx, "b.example.com"))
	assert.Less(t, time.Since(start), 50*time.Millisecond)
}

func TestCourtesyGate_WaitHonorsContext(t *testing.T) {
	g := NewCourtesyGate()

	require.NoError(t, g.Hold(context.Background(), "shop.example.com", time.Hour))

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()

	err := g.Wait(ctx, "shop.example.com")
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestCourtesyGate_HoldKeepsLongerDeadline(t *testing.T) {
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	g := NewCourtesyGate()
	g.now = func() time.Time { return now }
	ctx := context.Background()

	require.NoError(t, g.Hold(ctx, "shop.example.com", time.Minute))
	require.NoError(t, g.Hold(ctx, "shop.example.com", time.Second))
	assert.Equal(t, time.Minute, g.remaining("shop.example.com"))

	now = now.Add(2 * time.Minute)
	assert.LessOrEqual(t, g.remaining("shop.example.com"), time.Duration(0))
	assert.NotContains(t, g.releaseAt, "shop.example.com")
}

func TestCourtesyGate_NonPositiveHoldIsNoop(t *testing.T) {
	g := NewCourtesyGate()

	require.NoError(t, g.Hold(context.Background(), "shop.example.com", 0))
	assert.Empty(t, g.releaseAt)
}
