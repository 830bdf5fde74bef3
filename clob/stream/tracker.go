package stream

import (
	"context"
	"sync"
	"time"

	"github.com/pkg/errors"
)

const (
	defaultCancelPollInterval = 50 * time.Millisecond
	defaultCancelTimeout      = 15 * time.Second
)

// TrackedOrder is the tracker's view of one resting order, built from user
// channel events.
type TrackedOrder struct {
	ID           string
	AssetID      string
	Market       string
	Side         string
	Price        string
	OriginalSize float64
	SizeMatched  float64
	Status       string
}

// Remaining reports the unmatched share size.
func (o *TrackedOrder) Remaining() float64 {
	if o.SizeMatched >= o.OriginalSize {
		return 0
	}
	return o.OriginalSize - o.SizeMatched
}

// OrderTracker maintains the set of open orders from a user event stream.
// Feed it every OrderEvent; it keeps orders from placement until they fill
// or cancel, and fires the registered callbacks on each transition. Updates
// that arrive before their placement are parked and reconciled when the
// placement lands, since the feed does not order events across reconnects.
type OrderTracker struct {
	orders  map[string]*TrackedOrder
	pending map[string]*OrderEvent
	mu      sync.RWMutex

	placedCallbacks   []func(*TrackedOrder)
	filledCallbacks   []func(*TrackedOrder)
	canceledCallbacks []func(*TrackedOrder)

	// changed gets a non-blocking pulse on every mutation
	changed chan struct{}
}

// NewOrderTracker builds an empty tracker.
func NewOrderTracker() *OrderTracker {
	return &OrderTracker{
		orders:  make(map[string]*TrackedOrder),
		pending: make(map[string]*OrderEvent),
		changed: make(chan struct{}, 1),
	}
}

// OnPlaced registers a callback for new order placements.
func (t *OrderTracker) OnPlaced(cb func(*TrackedOrder)) {
	t.placedCallbacks = append(t.placedCallbacks, cb)
}

// OnFilled registers a callback for fully matched orders.
func (t *OrderTracker) OnFilled(cb func(*TrackedOrder)) {
	t.filledCallbacks = append(t.filledCallbacks, cb)
}

// OnCanceled registers a callback for cancellations.
func (t *OrderTracker) OnCanceled(cb func(*TrackedOrder)) {
	t.canceledCallbacks = append(t.canceledCallbacks, cb)
}

// Changed returns a channel that pulses after each mutation. The channel is
// buffered and coalesces; it is for wakeups, not counting.
func (t *OrderTracker) Changed() <-chan struct{} { return t.changed }

func (t *OrderTracker) pulse() {
	select {
	case t.changed <- struct{}{}:
	default:
	}
}

// Apply folds one order event into the tracked set.
func (t *OrderTracker) Apply(ev *OrderEvent) {
	if ev == nil || ev.ID == "" {
		return
	}

	switch ev.Type {
	case "PLACEMENT":
		t.applyPlacement(ev)
	case "CANCELLATION":
		t.applyCancellation(ev)
	default:
		t.applyUpdate(ev)
	}
}

func (t *OrderTracker) applyPlacement(ev *OrderEvent) {
	order := orderFromEvent(ev)

	t.mu.Lock()
	if parked, ok := t.pending[ev.ID]; ok {
		delete(t.pending, ev.ID)
		mergeEvent(order, parked)
	}
	t.orders[ev.ID] = order
	t.mu.Unlock()

	for _, cb := range t.placedCallbacks {
		cb(order)
	}
	t.pulse()

	// a parked update may already have completed the order
	t.settleIfDone(order)
}

func (t *OrderTracker) applyUpdate(ev *OrderEvent) {
	t.mu.Lock()
	order, ok := t.orders[ev.ID]
	if !ok {
		t.pending[ev.ID] = ev
		t.mu.Unlock()
		return
	}
	mergeEvent(order, ev)
	t.mu.Unlock()

	t.pulse()
	t.settleIfDone(order)
}

func (t *OrderTracker) applyCancellation(ev *OrderEvent) {
	t.mu.Lock()
	order, ok := t.orders[ev.ID]
	if !ok {
		delete(t.pending, ev.ID)
		t.mu.Unlock()
		return
	}
	delete(t.orders, ev.ID)
	mergeEvent(order, ev)
	t.mu.Unlock()

	for _, cb := range t.canceledCallbacks {
		cb(order)
	}
	t.pulse()
}

// settleIfDone removes a fully matched order and fires the fill callbacks.
func (t *OrderTracker) settleIfDone(order *TrackedOrder) {
	t.mu.Lock()
	if order.OriginalSize <= 0 || order.SizeMatched < order.OriginalSize {
		t.mu.Unlock()
		return
	}
	if _, ok := t.orders[order.ID]; !ok {
		t.mu.Unlock()
		return
	}
	delete(t.orders, order.ID)
	t.mu.Unlock()

	for _, cb := range t.filledCallbacks {
		cb(order)
	}
	t.pulse()
}

// Get returns one tracked order.
func (t *OrderTracker) Get(orderID string) (*TrackedOrder, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	order, ok := t.orders[orderID]
	return order, ok
}

// Len reports the number of open orders.
func (t *OrderTracker) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.orders)
}

// Open returns a snapshot of the open orders.
func (t *OrderTracker) Open() []*TrackedOrder {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make([]*TrackedOrder, 0, len(t.orders))
	for _, order := range t.orders {
		out = append(out, order)
	}
	return out
}

// GracefulCancel requests cancellation of every open order through
// cancelFunc and waits for the stream to confirm the book is empty. It
// returns an error when the confirmation does not arrive before the timeout
// or the context ends.
func (t *OrderTracker) GracefulCancel(ctx context.Context, cancelFunc func(ctx context.Context, orderID string) error) error {
	for _, order := range t.Open() {
		if err := cancelFunc(ctx, order.ID); err != nil {
			return errors.Wrapf(err, "cancel order %s", order.ID)
		}
	}
	return t.waitEmpty(ctx)
}

func (t *OrderTracker) waitEmpty(ctx context.Context) error {
	if t.Len() == 0 {
		return nil
	}

	ticker := time.NewTicker(defaultCancelPollInterval)
	defer ticker.Stop()
	timeout := time.NewTimer(defaultCancelTimeout)
	defer timeout.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timeout.C:
			return errors.Errorf("%d orders still open after cancel timeout", t.Len())
		case <-ticker.C:
			if t.Len() == 0 {
				return nil
			}
		case <-t.changed:
			if t.Len() == 0 {
				return nil
			}
		}
	}
}

func orderFromEvent(ev *OrderEvent) *TrackedOrder {
	order := &TrackedOrder{
		ID:      ev.ID,
		AssetID: ev.AssetID,
		Market:  ev.Market,
		Side:    ev.Side,
		Price:   ev.Price.String(),
		Status:  ev.Status,
	}
	if v, err := ev.OriginalSize.Float64(); err == nil {
		order.OriginalSize = v
	}
	if v, err := ev.SizeMatched.Float64(); err == nil {
		order.SizeMatched = v
	}
	return order
}

// mergeEvent folds an event's mutable fields into an existing order.
func mergeEvent(order *TrackedOrder, ev *OrderEvent) {
	if ev.Status != "" {
		order.Status = ev.Status
	}
	if v, err := ev.SizeMatched.Float64(); err == nil && v > order.SizeMatched {
		order.SizeMatched = v
	}
	if v, err := ev.OriginalSize.Float64(); err == nil && v > 0 {
		order.OriginalSize = v
	}
}
