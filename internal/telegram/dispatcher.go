package telegram

import (
	"context"
	"sync"

	"oiscanner/internal/logger"
)

// Sender is the outbound "send text" capability.
type Sender interface {
	SendText(text string) error
}

// Dispatcher decouples alert dispatch from the ingest path: Enqueue never
// blocks, and a slow or failing channel only costs dropped alerts, never
// stalled state updates. A single worker drains the queue in order.
type Dispatcher struct {
	sender Sender
	queue  chan string
	wg     sync.WaitGroup
}

// NewDispatcher creates a dispatcher with a bounded queue.
func NewDispatcher(sender Sender, queueSize int) *Dispatcher {
	if queueSize < 1 {
		queueSize = 1
	}
	return &Dispatcher{
		sender: sender,
		queue:  make(chan string, queueSize),
	}
}

// Start launches the sender worker. It drains the queue until ctx is
// cancelled; in-flight sends are allowed to finish.
func (d *Dispatcher) Start(ctx context.Context) {
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		for {
			select {
			case <-ctx.Done():
				return
			case msg := <-d.queue:
				if err := d.sender.SendText(msg); err != nil {
					logger.Error("Failed to dispatch alert: %v", err)
				}
			}
		}
	}()
}

// Enqueue hands a rendered alert to the worker. When the queue is full the
// alert is dropped with a warning.
func (d *Dispatcher) Enqueue(msg string) {
	select {
	case d.queue <- msg:
	default:
		logger.Warn("Dispatch queue full, dropping alert")
	}
}

// Wait blocks until the worker has exited after cancellation.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}
