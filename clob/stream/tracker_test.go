package stream

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func placementEvent(id string, size string) *OrderEvent {
	return &OrderEvent{
		EventType:    EventOrder,
		ID:           id,
		AssetID:      "123",
		Market:       "0xabc",
		Side:         "BUY",
		Price:        "0.55",
		OriginalSize: FlexNumber(size),
		SizeMatched:  "0",
		Status:       "LIVE",
		Type:         "PLACEMENT",
	}
}

func updateEvent(id string, matched string) *OrderEvent {
	return &OrderEvent{
		EventType:   EventOrder,
		ID:          id,
		SizeMatched: FlexNumber(matched),
		Status:      "MATCHED",
		Type:        "UPDATE",
	}
}

func cancellationEvent(id string) *OrderEvent {
	return &OrderEvent{
		EventType: EventOrder,
		ID:        id,
		Status:    "CANCELED",
		Type:      "CANCELLATION",
	}
}

func TestTrackerPlacement(t *testing.T) {
	tr := NewOrderTracker()

	var placed *TrackedOrder
	tr.OnPlaced(func(o *TrackedOrder) { placed = o })

	tr.Apply(placementEvent("o1", "100"))

	assert.Equal(t, 1, tr.Len())
	require.NotNil(t, placed)
	assert.Equal(t, "o1", placed.ID)
	assert.Equal(t, 100.0, placed.OriginalSize)
	assert.Equal(t, 100.0, placed.Remaining())
}

func TestTrackerPartialThenFullFill(t *testing.T) {
	tr := NewOrderTracker()

	var filled *TrackedOrder
	tr.OnFilled(func(o *TrackedOrder) { filled = o })

	tr.Apply(placementEvent("o1", "100"))
	tr.Apply(updateEvent("o1", "40"))

	order, ok := tr.Get("o1")
	require.True(t, ok)
	assert.Equal(t, 60.0, order.Remaining())
	assert.Nil(t, filled)

	tr.Apply(updateEvent("o1", "100"))
	assert.Equal(t, 0, tr.Len())
	require.NotNil(t, filled)
	assert.Equal(t, 0.0, filled.Remaining())
}

func TestTrackerCancellation(t *testing.T) {
	tr := NewOrderTracker()

	var canceled *TrackedOrder
	tr.OnCanceled(func(o *TrackedOrder) { canceled = o })

	tr.Apply(placementEvent("o1", "100"))
	tr.Apply(cancellationEvent("o1"))

	assert.Equal(t, 0, tr.Len())
	require.NotNil(t, canceled)
	assert.Equal(t, "CANCELED", canceled.Status)
}

func TestTrackerUpdateBeforePlacement(t *testing.T) {
	tr := NewOrderTracker()

	tr.Apply(updateEvent("o1", "40"))
	assert.Equal(t, 0, tr.Len(), "update without placement must not open an order")

	tr.Apply(placementEvent("o1", "100"))

	order, ok := tr.Get("o1")
	require.True(t, ok)
	assert.Equal(t, 40.0, order.SizeMatched, "parked update must be reconciled")
}

func TestTrackerParkedFillSettlesOnPlacement(t *testing.T) {
	tr := NewOrderTracker()

	var filled *TrackedOrder
	tr.OnFilled(func(o *TrackedOrder) { filled = o })

	tr.Apply(updateEvent("o1", "100"))
	tr.Apply(placementEvent("o1", "100"))

	assert.Equal(t, 0, tr.Len())
	require.NotNil(t, filled)
}

func TestTrackerIgnoresStaleMatchedSize(t *testing.T) {
	tr := NewOrderTracker()

	tr.Apply(placementEvent("o1", "100"))
	tr.Apply(updateEvent("o1", "40"))
	tr.Apply(updateEvent("o1", "20"))

	order, ok := tr.Get("o1")
	require.True(t, ok)
	assert.Equal(t, 40.0, order.SizeMatched, "matched size never goes backwards")
}

func TestTrackerGracefulCancel(t *testing.T) {
	tr := NewOrderTracker()
	tr.Apply(placementEvent("o1", "100"))
	tr.Apply(placementEvent("o2", "50"))

	canceled := make(chan string, 2)
	cancelFunc := func(ctx context.Context, orderID string) error {
		canceled <- orderID
		return nil
	}

	// confirmations arrive over the stream while GracefulCancel waits
	go func() {
		for i := 0; i < 2; i++ {
			tr.Apply(cancellationEvent(<-canceled))
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, tr.GracefulCancel(ctx, cancelFunc))
	assert.Equal(t, 0, tr.Len())
}

func TestTrackerGracefulCancelTimesOutOnContext(t *testing.T) {
	tr := NewOrderTracker()
	tr.Apply(placementEvent("o1", "100"))

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	err := tr.GracefulCancel(ctx, func(context.Context, string) error { return nil })
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
