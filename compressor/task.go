package compressor

// Task is a handle on a background compression started by Compressor.Background.
type Task struct {
	fileName string
	done     chan struct{}
	report   *Report
	err      error
}

// FileName returns the name of the file being compressed.
func (t *Task) FileName() string {
	return t.fileName
}

// Done is closed when the compression finishes.
func (t *Task) Done() <-chan struct{} {
	return t.done
}

// Wait blocks until the compression finishes and returns its outcome.
func (t *Task) Wait() (*Report, error) {
	<-t.done

	return t.report, t.err
}

// Finished reports whether the task completed, without blocking.
func (t *Task) Finished() bool {
	select {
	case <-t.done:
		return true
	default:
		return false
	}
}
