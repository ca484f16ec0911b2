package archive

import (
	"fmt"
	"os"
	"sync"
)

// Opener supplies archive bytes on request. ok is false when the user
// cancelled or nothing is available.
type Opener interface {
	Open() (data []byte, ok bool, err error)
}

// PathQueue is an Opener that hands out files from a fixed list, one per
// call, in order.
type PathQueue struct {
	mu    sync.Mutex
	paths []string
}

// NewPathQueue creates a queue over paths.
func NewPathQueue(paths ...string) *PathQueue {
	return &PathQueue{paths: append([]string(nil), paths...)}
}

// Open reads the next queued file. An empty queue reports ok=false.
func (q *PathQueue) Open() ([]byte, bool, error) {
	q.mu.Lock()
	if len(q.paths) == 0 {
		q.mu.Unlock()
		return nil, false, nil
	}
	path := q.paths[0]
	q.paths = q.paths[1:]
	q.mu.Unlock()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, false, fmt.Errorf("read archive %s: %w", path, err)
	}
	return data, true, nil
}

// Remaining returns the number of queued paths.
func (q *PathQueue) Remaining() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.paths)
}
