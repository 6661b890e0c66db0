package telegram

import (
	"context"
	"sync"
	"testing"
	"time"
)

type fakeSender struct {
	mu    sync.Mutex
	sent  []string
	block chan struct{}
}

func (f *fakeSender) SendText(text string) error {
	if f.block != nil {
		<-f.block
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, text)
	return nil
}

func (f *fakeSender) messages() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.sent...)
}

func TestDispatcher_DeliversInOrder(t *testing.T) {
	sender := &fakeSender{}
	d := NewDispatcher(sender, 8)

	ctx, cancel := context.WithCancel(context.Background())
	d.Start(ctx)

	d.Enqueue("first")
	d.Enqueue("second")
	d.Enqueue("third")

	deadline := time.Now().Add(2 * time.Second)
	for len(sender.messages()) < 3 {
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for delivery, got %v", sender.messages())
		}
		time.Sleep(5 * time.Millisecond)
	}

	cancel()
	d.Wait()

	got := sender.messages()
	want := []string{"first", "second", "third"}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("message %d: got %q, want %q", i, got[i], want[i])
		}
	}
}

func TestDispatcher_DropsWhenFull(t *testing.T) {
	sender := &fakeSender{block: make(chan struct{})}
	d := NewDispatcher(sender, 1)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	d.Start(ctx)

	// First message may be picked up by the worker and parked on the
	// blocked sender; the rest fill and then overflow the queue.
	for i := 0; i < 5; i++ {
		d.Enqueue("msg")
	}

	close(sender.block)

	deadline := time.Now().Add(2 * time.Second)
	for len(sender.messages()) < 1 {
		if time.Now().After(deadline) {
			t.Fatal("timed out waiting for any delivery")
		}
		time.Sleep(5 * time.Millisecond)
	}
	// Let the worker drain whatever survived in the queue.
	time.Sleep(50 * time.Millisecond)

	if n := len(sender.messages()); n > 2 {
		t.Errorf("expected overflow to be dropped, %d messages delivered", n)
	}

	cancel()
	d.Wait()
}

func TestDispatcher_MinimumQueueSize(t *testing.T) {
	d := NewDispatcher(&fakeSender{}, 0)
	if cap(d.queue) != 1 {
		t.Errorf("got queue capacity %d, want 1", cap(d.queue))
	}
}
