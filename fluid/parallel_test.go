package fluid

import (
	"sync/atomic"
	"testing"
)

func TestWorkerPool_CoversEveryIndexOnce(t *testing.T) {
	pool := newWorkerPool(4)
	defer pool.stop()

	const n = 1000
	marks := make([]int32, n)
	pool.run(n, func(_, start, end int) {
		for i := start; i < end; i++ {
			atomic.AddInt32(&marks[i], 1)
		}
	})

	for i, m := range marks {
		if m != 1 {
			t.Fatalf("expected index %d visited once, got %d visits", i, m)
		}
	}
}

func TestWorkerPool_SmallCountRunsInline(t *testing.T) {
	pool := newWorkerPool(4)
	defer pool.stop()

	type call struct{ worker, start, end int }
	var calls []call
	pool.run(10, func(worker, start, end int) {
		calls = append(calls, call{worker, start, end})
	})

	if len(calls) != 1 {
		t.Fatalf("expected one inline call, got %d", len(calls))
	}
	if calls[0].worker != 0 || calls[0].start != 0 || calls[0].end != 10 {
		t.Errorf("expected worker 0 over [0,10), got worker %d over [%d,%d)", calls[0].worker, calls[0].start, calls[0].end)
	}
}

func TestWorkerPool_SingleWorkerRunsInline(t *testing.T) {
	pool := newWorkerPool(1)
	defer pool.stop()

	count := 0
	pool.run(500, func(worker, start, end int) {
		count++
		if worker != 0 || start != 0 || end != 500 {
			t.Errorf("expected worker 0 over the whole range, got worker %d over [%d,%d)", worker, start, end)
		}
	})
	if count != 1 {
		t.Errorf("expected one call, got %d", count)
	}
}

func TestWorkerPool_ZeroCountSkipsWork(t *testing.T) {
	pool := newWorkerPool(2)
	defer pool.stop()

	for _, n := range []int{0, -5} {
		called := false
		pool.run(n, func(_, _, _ int) { called = true })
		if called {
			t.Errorf("expected no calls for count %d", n)
		}
	}
}

func TestWorkerPool_ReusableAcrossStages(t *testing.T) {
	pool := newWorkerPool(3)
	defer pool.stop()

	const n = 300
	var first, second int64
	pool.run(n, func(_, start, end int) {
		atomic.AddInt64(&first, int64(end-start))
	})
	pool.run(n, func(_, start, end int) {
		atomic.AddInt64(&second, int64(end-start))
	})

	if first != n || second != n {
		t.Errorf("expected both stages to cover %d indices, got %d and %d", n, first, second)
	}
}

func TestWorkerPool_StopIdempotent(t *testing.T) {
	fresh := newWorkerPool(2)
	fresh.stop() // never started

	pool := newWorkerPool(2)
	pool.run(128, func(_, _, _ int) {})
	pool.stop()
	pool.stop()
}

func TestWorkerPool_DefaultWorkerCount(t *testing.T) {
	if pool := newWorkerPool(0); pool.numWorkers < 1 {
		t.Errorf("expected at least one worker by default, got %d", pool.numWorkers)
	}
}
