package order

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanTransition(t *testing.T) {
	tests := []struct {
		name    string
		from    Status
		to      Status
		allowed bool
	}{
		{name: "Pending to confirmed", from: StatusPending, to: StatusConfirmed, allowed: true},
		{name: "Confirmed to processing", from: StatusConfirmed, to: StatusProcessing, allowed: true},
		{name: "Processing to delivered", from: StatusProcessing, to: StatusDelivered, allowed: true},
		{name: "Pending to cancelled", from: StatusPending, to: StatusCancelled, allowed: true},
		{name: "Confirmed to cancelled", from: StatusConfirmed, to: StatusCancelled, allowed: true},
		{name: "Processing to cancelled", from: StatusProcessing, to: StatusCancelled, allowed: true},
		{name: "No skipping ahead", from: StatusPending, to: StatusProcessing, allowed: false},
		{name: "No going backwards", from: StatusProcessing, to: StatusConfirmed, allowed: false},
		{name: "Delivered is terminal", from: StatusDelivered, to: StatusCancelled, allowed: false},
		{name: "Cancelled is terminal", from: StatusCancelled, to: StatusPending, allowed: false},
		{name: "Self transition rejected", from: StatusPending, to: StatusPending, allowed: false},
		{name: "Unknown source rejected", from: Status("shipped"), to: StatusDelivered, allowed: false},
		{name: "Unknown target rejected", from: StatusPending, to: Status("archived"), allowed: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.allowed, CanTransition(tt.from, tt.to))
		})
	}
}

func TestTransitions(t *testing.T) {
	assert.Equal(t, []Status{StatusConfirmed, StatusCancelled}, Transitions(StatusPending))
	assert.Equal(t, []Status{StatusProcessing, StatusCancelled}, Transitions(StatusConfirmed))
	assert.Equal(t, []Status{StatusDelivered, StatusCancelled}, Transitions(StatusProcessing))
	assert.Nil(t, Transitions(StatusDelivered))
	assert.Nil(t, Transitions(StatusCancelled))
	assert.Nil(t, Transitions(Status("shipped")))
}

func TestStatus_IsTerminal(t *testing.T) {
	assert.False(t, StatusPending.IsTerminal())
	assert.False(t, StatusConfirmed.IsTerminal())
	assert.False(t, StatusProcessing.IsTerminal())
	assert.True(t, StatusDelivered.IsTerminal())
	assert.True(t, StatusCancelled.IsTerminal())
}
