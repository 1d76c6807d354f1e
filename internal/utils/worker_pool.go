package utils

import (
	"sync"
)

// WorkerPool bounds how many device workers run at once. The supervisor
// submits one task per claimed device; with a full queue Submit blocks, which
// in turn delays the scan until a slot frees up.
type WorkerPool struct {
	tasks chan func()
	wg    sync.WaitGroup
}

// NewWorkerPool starts size workers draining the task queue.
func NewWorkerPool(size int) *WorkerPool {
	pool := &WorkerPool{
		tasks: make(chan func(), size),
	}

	pool.wg.Add(size)
	for i := 0; i < size; i++ {
		go pool.worker()
	}

	return pool
}

func (wp *WorkerPool) worker() {
	defer wp.wg.Done()
	for task := range wp.tasks {
		task()
	}
}

// Submit queues a task for execution, blocking while the queue is full.
func (wp *WorkerPool) Submit(task func()) {
	wp.tasks <- task
}

// Shutdown stops accepting tasks and waits for queued ones to finish.
func (wp *WorkerPool) Shutdown() {
	close(wp.tasks)
	wp.wg.Wait()
}
