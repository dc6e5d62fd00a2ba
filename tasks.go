package rotatingfile

import (
	"fmt"
	"sync"

	"go.uber.org/multierr"
	"golift.io/rotatingfile/compressor"
)

// taskList holds the handles of dispatched background compressions until Close joins them.
type taskList struct {
	mu    sync.Mutex
	tasks []*compressor.Task
}

// add registers a task. Finished tasks that succeeded are dropped on the way;
// failed ones stay so their errors reach Close.
func (t *taskList) add(task *compressor.Task) {
	t.mu.Lock()
	defer t.mu.Unlock()

	keep := t.tasks[:0]

	for _, pending := range t.tasks {
		if pending.Finished() {
			if _, err := pending.Wait(); err == nil {
				continue
			}
		}

		keep = append(keep, pending)
	}

	clear(t.tasks[len(keep):])
	t.tasks = append(keep, task)
}

// pending returns the number of retained tasks.
func (t *taskList) pending() int {
	t.mu.Lock()
	defer t.mu.Unlock()

	return len(t.tasks)
}

// wait joins every task and returns their combined errors.
// The list is empty afterward.
func (t *taskList) wait() error {
	t.mu.Lock()
	tasks := t.tasks
	t.tasks = nil
	t.mu.Unlock()

	var errs error

	for _, task := range tasks {
		if _, err := task.Wait(); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("compressing %s: %w", task.FileName(), err))
		}
	}

	return errs
}
