package debounce

import (
	"sync/atomic"
	"testing"
	"time"
)

func TestBurstCollapsesToSingleCall(t *testing.T) {
	var calls int32
	d := New(20 * time.Millisecond)

	for i := 0; i < 10; i++ {
		d.Trigger(func() { atomic.AddInt32(&calls, 1) })
		time.Sleep(2 * time.Millisecond)
	}

	time.Sleep(100 * time.Millisecond)
	if got := atomic.LoadInt32(&calls); got != 1 {
		t.Fatalf("expected 1 call, got %d", got)
	}
}

func TestLatestActionWins(t *testing.T) {
	var got atomic.Value
	d := New(10 * time.Millisecond)

	d.Trigger(func() { got.Store("first") })
	d.Trigger(func() { got.Store("second") })

	time.Sleep(50 * time.Millisecond)
	if v := got.Load(); v != "second" {
		t.Fatalf("expected second action, got %v", v)
	}
}

func TestStopCancelsPending(t *testing.T) {
	var calls int32
	d := New(10 * time.Millisecond)

	d.Trigger(func() { atomic.AddInt32(&calls, 1) })
	d.Stop()

	time.Sleep(50 * time.Millisecond)
	if got := atomic.LoadInt32(&calls); got != 0 {
		t.Fatalf("expected cancelled action, got %d calls", got)
	}
}

func TestZeroDelayRunsSynchronously(t *testing.T) {
	var calls int32
	d := New(0)
	d.Trigger(func() { atomic.AddInt32(&calls, 1) })
	if got := atomic.LoadInt32(&calls); got != 1 {
		t.Fatalf("expected synchronous call, got %d", got)
	}
}

func TestSeparateBurstsEachFire(t *testing.T) {
	var calls int32
	d := New(10 * time.Millisecond)

	d.Trigger(func() { atomic.AddInt32(&calls, 1) })
	time.Sleep(40 * time.Millisecond)
	d.Trigger(func() { atomic.AddInt32(&calls, 1) })
	time.Sleep(40 * time.Millisecond)

	if got := atomic.LoadInt32(&calls); got != 2 {
		t.Fatalf("expected 2 calls, got %d", got)
	}
}
