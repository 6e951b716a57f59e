package status_test

import (
	"testing"

	"github.com/lacarte/orderdesk/internal/service/models/status"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	s, err := status.Parse(3)
	require.NoError(t, err)
	assert.Equal(t, status.Ready, s)

	_, err = status.Parse(-1)
	assert.ErrorIs(t, err, status.ErrUnknownStatus)

	_, err = status.Parse(8)
	assert.ErrorIs(t, err, status.ErrUnknownStatus)
}

func TestText(t *testing.T) {
	assert.Equal(t, "pending", status.Pending.Text())
	assert.Equal(t, "out_for_delivery", status.OutForDelivery.Text())
	assert.Equal(t, "cancelled", status.Cancelled.Text())
}

func TestCanTransitionTo_ForwardOnly(t *testing.T) {
	assert.True(t, status.Pending.CanTransitionTo(status.Confirmed))
	// Skipping intermediate steps is allowed.
	assert.True(t, status.Pending.CanTransitionTo(status.Ready))
	assert.True(t, status.Confirmed.CanTransitionTo(status.Cancelled))

	// Never backwards.
	assert.False(t, status.Ready.CanTransitionTo(status.Confirmed))
	assert.False(t, status.Confirmed.CanTransitionTo(status.Pending))

	// Self-transitions are not transitions.
	assert.False(t, status.Pending.CanTransitionTo(status.Pending))
}

func TestCanTransitionTo_TerminalStatesAreClosed(t *testing.T) {
	for _, s := range []status.Status{status.Delivered, status.Completed, status.Cancelled} {
		assert.True(t, s.IsTerminal())
		assert.Empty(t, s.AllowedNext(), "terminal status %s must admit no transitions", s.Text())
	}
}

func TestAllowedNext(t *testing.T) {
	next := status.OutForDelivery.AllowedNext()
	assert.Equal(t, []status.Status{status.Delivered, status.Completed, status.Cancelled}, next)
}
