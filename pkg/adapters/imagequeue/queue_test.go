package imagequeue

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/user/screenrec/pkg/ports"
)

func image(seq uint32) ports.CapturedImage {
	return ports.CapturedImage{Width: seq, Height: 1}
}

func TestQueue_ReceiveInOrder(t *testing.T) {
	q := New(4)
	for i := uint32(1); i <= 3; i++ {
		q.Push(image(i))
	}

	for want := uint32(1); want <= 3; want++ {
		img, err := q.Receive(context.Background(), time.Second)
		if err != nil {
			t.Fatalf("Receive failed: %v", err)
		}
		if img.Width != want {
			t.Errorf("got image %d, want %d", img.Width, want)
		}
	}
}

func TestQueue_DropsOldestWhenFull(t *testing.T) {
	q := New(2)
	for i := uint32(1); i <= 5; i++ {
		if !q.Push(image(i)) {
			t.Fatal("Push on open queue returned false")
		}
	}

	if q.Dropped() != 3 {
		t.Errorf("dropped = %d, want 3", q.Dropped())
	}
	img, _ := q.Receive(context.Background(), time.Second)
	if img.Width != 4 {
		t.Errorf("oldest kept image = %d, want 4", img.Width)
	}
}

func TestQueue_Timeout(t *testing.T) {
	q := New(1)
	start := time.Now()
	_, err := q.Receive(context.Background(), 20*time.Millisecond)
	if !errors.Is(err, ports.ErrCaptureTimeout) {
		t.Fatalf("expected ErrCaptureTimeout, got %v", err)
	}
	if time.Since(start) < 20*time.Millisecond {
		t.Error("returned before the timeout")
	}
}

func TestQueue_CloseDrainsThenDisconnects(t *testing.T) {
	q := New(2)
	q.Push(image(1))
	q.Close()
	q.Close()

	if q.Push(image(2)) {
		t.Error("Push after Close should return false")
	}
	if _, err := q.Receive(context.Background(), time.Second); err != nil {
		t.Fatalf("buffered image lost: %v", err)
	}
	if _, err := q.Receive(context.Background(), time.Second); !errors.Is(err, ports.ErrSourceDisconnected) {
		t.Errorf("expected ErrSourceDisconnected, got %v", err)
	}
}

func TestQueue_ContextCancelled(t *testing.T) {
	q := New(1)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := q.Receive(ctx, time.Second); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}
