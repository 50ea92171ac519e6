package execution

import "ctp/internal/driver"

// Scheduler distributes executables across workers. Items of one
// executable always stay on the same worker.
type Scheduler interface {
	Schedule(files []*driver.File, workerCount int) [][]*driver.File
}

// RoundRobinScheduler distributes executables evenly across workers
type RoundRobinScheduler struct{}

// NewRoundRobinScheduler creates a new RoundRobinScheduler
func NewRoundRobinScheduler() *RoundRobinScheduler {
	return &RoundRobinScheduler{}
}

// Schedule distributes executables evenly across workers using round-robin
func (s *RoundRobinScheduler) Schedule(files []*driver.File, workerCount int) [][]*driver.File {
	if workerCount <= 0 {
		workerCount = 1
	}

	distribution := make([][]*driver.File, workerCount)
	for i := range distribution {
		distribution[i] = make([]*driver.File, 0)
	}

	for i, file := range files {
		workerIndex := i % workerCount
		distribution[workerIndex] = append(distribution[workerIndex], file)
	}

	return distribution
}
