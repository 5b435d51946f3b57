package ringbuf

import (
	"reflect"
	"sync"
	"testing"
	"time"
)

type bar struct {
	key   string
	close float64
}

func TestRing_BasicPushPop(t *testing.T) {
	r := NewRing[bar](4)

	if !r.Push(bar{key: "A", close: 100}) {
		t.Fatal("push A should succeed")
	}
	if !r.Push(bar{key: "B", close: 200}) {
		t.Fatal("push B should succeed")
	}

	if r.Len() != 2 {
		t.Fatalf("expected len=2, got %d", r.Len())
	}

	got, ok := r.Pop()
	if !ok || got.key != "A" {
		t.Fatalf("expected A, got %v ok=%v", got.key, ok)
	}

	got, ok = r.Pop()
	if !ok || got.key != "B" {
		t.Fatalf("expected B, got %v ok=%v", got.key, ok)
	}

	if _, ok = r.Pop(); ok {
		t.Fatal("pop from empty should return false")
	}
}

func TestRing_Overflow(t *testing.T) {
	r := NewRing[int](2)

	r.Push(1)
	r.Push(2)

	if r.Push(3) {
		t.Fatal("push to full queue should return false")
	}
	if r.Overflow() != 1 {
		t.Fatalf("expected overflow=1, got %d", r.Overflow())
	}
}

func TestRing_Wraparound(t *testing.T) {
	r := NewRing[int](4)

	for round := 0; round < 5; round++ {
		for i := 0; i < 4; i++ {
			if !r.Push(round*10 + i) {
				t.Fatalf("round %d push %d failed", round, i)
			}
		}
		for i := 0; i < 4; i++ {
			v, ok := r.Pop()
			if !ok {
				t.Fatalf("round %d pop %d failed", round, i)
			}
			if v != round*10+i {
				t.Fatalf("round %d pop %d: expected %d, got %d", round, i, round*10+i, v)
			}
		}
	}
}

func TestRing_SPSC_Concurrent(t *testing.T) {
	const count = 100_000
	r := NewRing[int](1024)

	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		for i := 0; i < count; i++ {
			for !r.Push(i) {
			}
		}
	}()

	received := make([]int, 0, count)
	go func() {
		defer wg.Done()
		for len(received) < count {
			if v, ok := r.Pop(); ok {
				received = append(received, v)
			}
		}
	}()

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(10 * time.Second):
		t.Fatal("SPSC test timed out")
	}

	for i, v := range received {
		if v != i {
			t.Fatalf("at index %d: expected %d, got %d", i, i, v)
		}
	}
}

func TestRing_Drain(t *testing.T) {
	r := NewRing[int](4)
	for i := 1; i <= 3; i++ {
		r.Push(i)
	}

	got := r.Drain(make([]int, 0, 2))
	if !reflect.DeepEqual(got, []int{1, 2}) {
		t.Fatalf("Drain into room for 2 = %v", got)
	}
	if r.Len() != 1 {
		t.Fatalf("expected 1 left, got %d", r.Len())
	}

	// freed slots are reusable across the wrap
	for i := 4; i <= 6; i++ {
		if !r.Push(i) {
			t.Fatalf("push %d failed", i)
		}
	}
	got = r.Drain(make([]int, 0, 8))
	if !reflect.DeepEqual(got, []int{3, 4, 5, 6}) {
		t.Fatalf("Drain = %v", got)
	}
	if got = r.Drain(got[:0]); len(got) != 0 {
		t.Fatalf("Drain of empty ring = %v", got)
	}
}

func TestRing_Capacity(t *testing.T) {
	cases := []struct{ in, want int }{
		{0, 2}, {1, 2}, {2, 2}, {3, 4}, {5, 8}, {7, 8}, {8, 8}, {9, 16}, {1023, 1024},
	}
	for _, tc := range cases {
		if got := NewRing[int](tc.in).Cap(); got != tc.want {
			t.Errorf("NewRing(%d).Cap() = %d, want %d", tc.in, got, tc.want)
		}
	}
}
