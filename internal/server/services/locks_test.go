package services

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestKeyedLocks_ExclusivePerKey(t *testing.T) {
	l := newKeyedLocks()

	var inside, maxInside int32
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock := l.Lock(7)
			defer unlock()
			n := atomic.AddInt32(&inside, 1)
			for {
				m := atomic.LoadInt32(&maxInside)
				if n <= m || atomic.CompareAndSwapInt32(&maxInside, m, n) {
					break
				}
			}
			time.Sleep(time.Millisecond)
			atomic.AddInt32(&inside, -1)
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), maxInside)
	assert.Equal(t, 0, l.len())
}

func TestKeyedLocks_ReadersShare(t *testing.T) {
	l := newKeyedLocks()

	r1 := l.RLock(1)
	done := make(chan struct{})
	go func() {
		r2 := l.RLock(1)
		r2()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("second reader blocked")
	}
	r1()
	assert.Equal(t, 0, l.len())
}

func TestKeyedLocks_WriterWaitsForReaders(t *testing.T) {
	l := newKeyedLocks()

	r := l.RLock(1)
	acquired := make(chan struct{})
	go func() {
		unlock := l.Lock(1)
		close(acquired)
		unlock()
	}()

	select {
	case <-acquired:
		t.Fatal("writer acquired while reader held the lock")
	case <-time.After(20 * time.Millisecond):
	}

	r()
	<-acquired
}

func TestKeyedLocks_KeysIndependent(t *testing.T) {
	l := newKeyedLocks()

	a := l.Lock(1)
	b := l.Lock(2)
	assert.Equal(t, 2, l.len())
	a()
	b()
	assert.Equal(t, 0, l.len())
}
