package orchestration

import (
	"sync"

	"github.com/koscakluka/ema-voice/core/events"
)

// eventDispatcher delivers events to a handler on its own goroutine, in the
// order they were emitted. Emit never blocks, so it is safe to call while
// holding the controller lock, and handlers may call back into the
// controller.
type eventDispatcher struct {
	handler func(events.Event)

	mu      sync.Mutex
	pending []events.Event
	stopped bool

	wake    chan struct{}
	closeCh chan struct{}
	done    chan struct{}

	endOnce sync.Once
}

func newEventDispatcher(handler func(events.Event)) *eventDispatcher {
	d := &eventDispatcher{
		handler: handler,
		wake:    make(chan struct{}, 1),
		closeCh: make(chan struct{}),
		done:    make(chan struct{}),
	}
	go d.loop()
	return d
}

func (d *eventDispatcher) Emit(event events.Event) {
	if d == nil || d.handler == nil {
		return
	}

	d.mu.Lock()
	if d.stopped {
		d.mu.Unlock()
		return
	}
	d.pending = append(d.pending, event)
	d.mu.Unlock()

	select {
	case d.wake <- struct{}{}:
	default:
	}
}

// Stop rejects further events. Events emitted before Stop are still
// delivered.
func (d *eventDispatcher) Stop() {
	if d == nil {
		return
	}

	d.endOnce.Do(func() {
		d.mu.Lock()
		d.stopped = true
		d.mu.Unlock()
		close(d.closeCh)
	})
}

func (d *eventDispatcher) AwaitDone() {
	if d == nil {
		return
	}
	<-d.done
}

func (d *eventDispatcher) loop() {
	defer close(d.done)

	for {
		select {
		case <-d.wake:
			d.deliverPending()
		case <-d.closeCh:
			d.deliverPending()
			return
		}
	}
}

func (d *eventDispatcher) deliverPending() {
	for {
		d.mu.Lock()
		if len(d.pending) == 0 {
			d.mu.Unlock()
			return
		}
		batch := d.pending
		d.pending = nil
		d.mu.Unlock()

		for _, event := range batch {
			d.deliver(event)
		}
	}
}

func (d *eventDispatcher) deliver(event events.Event) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("event handler panicked", "event", string(event.Kind()), "panic", r)
		}
	}()

	d.handler(event)
}
