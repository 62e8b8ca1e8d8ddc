package service

import (
	"sync"
	"testing"
)

func TestProjectLocks_Serializes(t *testing.T) {
	locks := newProjectLocks()

	const workers = 8
	const iterations = 100
	counter := 0

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < iterations; j++ {
				locks.lock("project-a")
				counter++
				locks.unlock("project-a")
			}
		}()
	}
	wg.Wait()

	if counter != workers*iterations {
		t.Errorf("expected %d increments, got %d", workers*iterations, counter)
	}
}

func TestProjectLocks_ReleasesEntries(t *testing.T) {
	locks := newProjectLocks()

	locks.lock("project-a")
	locks.unlock("project-a")

	locks.mu.Lock()
	defer locks.mu.Unlock()
	if len(locks.locks) != 0 {
		t.Errorf("expected no retained entries, got %d", len(locks.locks))
	}
}

func TestProjectLocks_IndependentProjects(t *testing.T) {
	locks := newProjectLocks()

	locks.lock("project-a")
	done := make(chan struct{})
	go func() {
		locks.lock("project-b")
		locks.unlock("project-b")
		close(done)
	}()

	<-done
	locks.unlock("project-a")
}
