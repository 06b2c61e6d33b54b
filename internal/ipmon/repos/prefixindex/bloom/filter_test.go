package bloom

import (
	"sync"
	"testing"
)

func TestFilter_AddTestClear(t *testing.T) {
	f := NewFactory().New(32, 0.05)

	key := []byte("34.64.0.0/10")
	if f.MightContain(key) {
		t.Fatalf("unexpected positive before add")
	}

	f.Add(key)
	if !f.MightContain(key) {
		t.Fatalf("expected maybe after add")
	}

	f.Clear()
	if f.MightContain(key) {
		t.Fatalf("expected negative after clear")
	}
}

func TestFilter_ConcurrentReadsDuringWrites(t *testing.T) {
	f := NewFactory().New(256, 0.01)

	var wg sync.WaitGroup
	done := make(chan struct{})
	keys := [][]byte{[]byte("10.0.0.0/8"), []byte("2001:db8::/32"), []byte("192.0.2.0/24")}

	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < 10_000; i++ {
			f.Add(keys[i%3])
		}
		close(done)
	}()

	for r := 0; r < 8; r++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-done:
					return
				default:
					_ = f.MightContain([]byte("198.51.100.0/24"))
				}
			}
		}()
	}

	wg.Wait()
}
