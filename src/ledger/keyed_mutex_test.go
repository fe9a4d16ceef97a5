package ledger

import (
	"context"
	"sync"
	"testing"
	"time"
)

func TestKeyedMutexSerializesSameKey(t *testing.T) {
	km := newKeyedMutex()
	ctx := context.Background()

	counter := 0
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := km.Lock(ctx, "user-1/asset-1"); err != nil {
				t.Errorf("lock failed: %v", err)
				return
			}
			// read-modify-write that would lose updates without the lock
			v := counter
			time.Sleep(time.Microsecond)
			counter = v + 1
			km.Unlock("user-1/asset-1")
		}()
	}
	wg.Wait()

	if counter != 50 {
		t.Fatalf("lost updates: counter = %d, want 50", counter)
	}
}

func TestKeyedMutexLockTimesOut(t *testing.T) {
	km := newKeyedMutex()

	if err := km.Lock(context.Background(), "busy"); err != nil {
		t.Fatalf("first lock failed: %v", err)
	}
	defer km.Unlock("busy")

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	err := km.Lock(ctx, "busy")
	if err == nil {
		t.Fatal("expected the second lock to time out")
	}
}

func TestKeyedMutexIndependentKeysDoNotBlock(t *testing.T) {
	km := newKeyedMutex()

	if err := km.Lock(context.Background(), "key-a"); err != nil {
		t.Fatalf("lock a failed: %v", err)
	}
	defer km.Unlock("key-a")

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := km.Lock(ctx, "key-b"); err != nil {
		t.Fatalf("independent key should not block: %v", err)
	}
	km.Unlock("key-b")
}
