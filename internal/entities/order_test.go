package entities_test

import (
	"testing"

	"github.com/localbazaar/market-service/internal/entities"
	"github.com/stretchr/testify/assert"
)

func TestCanTransition(t *testing.T) {
	testCases := []struct {
		name string
		from entities.OrderStatus
		to   entities.OrderStatus
		want bool
	}{
		{"pending to quoted", entities.OrderPending, entities.OrderQuoted, true},
		{"pending to accepted", entities.OrderPending, entities.OrderAccepted, true},
		{"pending to cancelled", entities.OrderPending, entities.OrderCancelled, true},
		{"pending to delivered skips accepted", entities.OrderPending, entities.OrderDelivered, false},
		{"quoted to accepted", entities.OrderQuoted, entities.OrderAccepted, true},
		{"quoted to cancelled", entities.OrderQuoted, entities.OrderCancelled, true},
		{"quoted to delivered", entities.OrderQuoted, entities.OrderDelivered, false},
		{"accepted to delivered", entities.OrderAccepted, entities.OrderDelivered, true},
		{"accepted to cancelled", entities.OrderAccepted, entities.OrderCancelled, true},
		{"accepted back to pending", entities.OrderAccepted, entities.OrderPending, false},
		{"delivered is terminal", entities.OrderDelivered, entities.OrderCancelled, false},
		{"cancelled is terminal", entities.OrderCancelled, entities.OrderPending, false},
		{"no self loop", entities.OrderPending, entities.OrderPending, false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, entities.CanTransition(tc.from, tc.to))
		})
	}
}

func TestTerminal(t *testing.T) {
	assert.True(t, entities.OrderDelivered.Terminal())
	assert.True(t, entities.OrderCancelled.Terminal())
	assert.False(t, entities.OrderPending.Terminal())
	assert.False(t, entities.OrderQuoted.Terminal())
	assert.False(t, entities.OrderAccepted.Terminal())
}

func TestValidOrderStatus(t *testing.T) {
	assert.True(t, entities.ValidOrderStatus(entities.OrderQuoted))
	assert.False(t, entities.ValidOrderStatus("shipped"))
	assert.False(t, entities.ValidOrderStatus(""))
}
