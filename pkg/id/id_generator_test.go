package id

import (
	"sync"
	"testing"
)

func TestSnowflakeUnique(t *testing.T) {
	sf, err := NewSnowflake(1)
	if err != nil {
		t.Fatalf("NewSnowflake: %v", err)
	}

	const n = 5000
	seen := make(map[string]struct{}, n)
	var mu sync.Mutex
	var wg sync.WaitGroup

	for w := 0; w < 4; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < n/4; i++ {
				id := sf.Generate()
				mu.Lock()
				if _, dup := seen[id]; dup {
					t.Errorf("duplicate id generated: %s", id)
				}
				seen[id] = struct{}{}
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
}

func TestSnowflakeRejectsInvalidNode(t *testing.T) {
	if _, err := NewSnowflake(-1); err == nil {
		t.Fatal("expected error for negative node id")
	}
	if _, err := NewSnowflake(1 << 12); err == nil {
		t.Fatal("expected error for oversized node id")
	}
}
