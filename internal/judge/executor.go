package judge

import "context"

// Request describes one execution of user code against one input.
type Request struct {
	Code             string
	Language         string
	Input            string
	Args             Args
	TimeLimitMs      int64
	MemoryLimitBytes int64
}

// ExecutionResult is the outcome of a single execution. Time and memory are
// always populated, even on failure: TimeMs is at least 1 so the caller never
// sees a zero-duration run, MemoryBytes is never negative.
type ExecutionResult struct {
	Output            string
	Success           bool
	TimeMs            int64
	MemoryBytes       int64
	Error             string
	TimedOut          bool
	CompilationFailed bool
}

// Executor runs user code for one language against one input. User-code
// failures (compile errors, crashes, timeouts) are reported inside the
// ExecutionResult; a non-nil error is reserved for infrastructure problems
// such as an unwritable work directory. Implementations must not retain any
// state between invocations.
type Executor interface {
	Execute(ctx context.Context, req Request) (*ExecutionResult, error)
}
