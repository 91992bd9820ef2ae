package worker

import (
	"sync/atomic"
	"testing"
)

func TestPool_RunsSubmittedTasks(t *testing.T) {
	p := NewPool(2)
	var n atomic.Int64
	for i := 0; i < 10; i++ {
		p.Submit(func() { n.Add(1) })
	}
	p.Stop()
	if got := n.Load(); got != 10 {
		t.Fatalf("ran %d tasks, want 10", got)
	}
}

func TestPool_SubmitAfterStopIsDropped(t *testing.T) {
	p := NewPool(1)
	p.Stop()

	var ran atomic.Bool
	p.Submit(func() { ran.Store(true) })
	if ran.Load() {
		t.Fatal("task ran after Stop")
	}
}

func TestPool_StopIsIdempotent(t *testing.T) {
	p := NewPool(1)
	p.Stop()
	p.Stop()
}
