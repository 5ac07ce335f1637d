package redis

import (
	"context"
	"errors"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func TestLockerSetsAndClearsKeys(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	locker := NewLocker(client, time.Minute, time.Second)

	unlock, err := locker.Lock(context.Background(), "hardcore:u1:quiz-1")
	if err != nil {
		t.Fatalf("lock: %v", err)
	}
	if !mr.Exists("quiz:lock:hardcore:u1:quiz-1") {
		t.Fatalf("expected redis key to be set")
	}

	unlock()
	if mr.Exists("quiz:lock:hardcore:u1:quiz-1") {
		t.Fatalf("expected redis key to be removed")
	}
}

func TestLockerBlocksSecondHolder(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	locker := NewLocker(client, time.Minute, time.Second)

	unlock, err := locker.Lock(context.Background(), "k")
	if err != nil {
		t.Fatalf("lock: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	if _, err := locker.Lock(ctx, "k"); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded, got %v", err)
	}

	unlock()
	unlock2, err := locker.Lock(context.Background(), "k")
	if err != nil {
		t.Fatalf("lock after release: %v", err)
	}
	unlock2()
}

func TestLockerReleaseKeepsForeignLock(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	locker := NewLocker(client, time.Second, time.Second)

	unlock, err := locker.Lock(context.Background(), "k")
	if err != nil {
		t.Fatalf("lock: %v", err)
	}
	// the first holder's lease runs out and another instance takes over
	mr.FastForward(2 * time.Second)
	if err := mr.Set("quiz:lock:k", "someone-else"); err != nil {
		t.Fatalf("set: %v", err)
	}

	unlock()
	got, err := mr.Get("quiz:lock:k")
	if err != nil || got != "someone-else" {
		t.Fatalf("stale holder released a foreign lock: %q %v", got, err)
	}
}
