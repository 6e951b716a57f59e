package ws_test

import (
	"testing"

	"github.com/lacarte/orderdesk/internal/transport/ws"
	"github.com/stretchr/testify/assert"
)

func TestDedup(t *testing.T) {
	d := ws.NewDedup()

	assert.True(t, d.Observe(1, 1))
	assert.True(t, d.Observe(1, 2))

	// Replays and stragglers are stale.
	assert.False(t, d.Observe(1, 2))
	assert.False(t, d.Observe(1, 1))

	// Gaps are fine; only monotonicity matters.
	assert.True(t, d.Observe(1, 5))
	assert.False(t, d.Observe(1, 4))
}

func TestDedup_OrdersAreIndependent(t *testing.T) {
	d := ws.NewDedup()

	assert.True(t, d.Observe(1, 3))
	assert.True(t, d.Observe(2, 1))
	assert.False(t, d.Observe(2, 1))
	assert.True(t, d.Observe(2, 2))
}
