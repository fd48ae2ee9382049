package judge

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"codearena/internal/logger"

	"go.uber.org/zap"
)

const (
	// maxOutputBytes caps stdout/stderr so a print loop cannot exhaust the
	// judge's memory.
	maxOutputBytes = 64 * 1024

	outputTruncatedMsg = "\n... output truncated (64 KB limit) ..."

	compileTimeout = 10 * time.Second

	errorOutput = "Error"
)

// ProcessExecutor runs user code in a fresh subprocess per execution: a new
// temporary work directory, a hard wall-clock cutoff enforced by killing the
// process group, and capped output buffers. Nothing is shared between
// invocations.
type ProcessExecutor struct {
	workDir string
}

func NewProcessExecutor(workDir string) (*ProcessExecutor, error) {
	if err := os.MkdirAll(workDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create working directory: %w", err)
	}

	return &ProcessExecutor{workDir: workDir}, nil
}

func (e *ProcessExecutor) Execute(ctx context.Context, req Request) (*ExecutionResult, error) {
	start := time.Now()

	cfg, err := GetLanguageConfig(req.Language)
	if err != nil {
		return failedResult(start, err.Error(), req), nil
	}

	execDir, err := os.MkdirTemp(e.workDir, "exec-*")
	if err != nil {
		return nil, fmt.Errorf("failed to create execution directory: %w", err)
	}
	defer os.RemoveAll(execDir)

	source := req.Code
	if req.Language == LangJavaScript {
		source, err = buildJavaScriptHarness(req.Code, req.Args)
		if err != nil {
			return failedResult(start, err.Error(), req), nil
		}
	}

	if err := os.WriteFile(filepath.Join(execDir, cfg.SourceFile), []byte(source), 0644); err != nil {
		return nil, fmt.Errorf("failed to write code file: %w", err)
	}

	if cfg.NeedsCompilation {
		if compileErr := e.compile(ctx, execDir, cfg); compileErr != nil {
			res := failedResult(start, "compilation error: "+compileErr.Error(), req)
			res.CompilationFailed = true
			return res, nil
		}
	}

	return e.run(ctx, start, execDir, cfg, req), nil
}

func (e *ProcessExecutor) compile(ctx context.Context, execDir string, cfg LanguageConfig) error {
	compileCtx, cancel := context.WithTimeout(ctx, compileTimeout)
	defer cancel()

	cmd := exec.CommandContext(compileCtx, cfg.CompileCommand[0], cfg.CompileCommand[1:]...)
	cmd.Dir = execDir

	output, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("%v: %s", err, strings.TrimSpace(string(output)))
	}

	return nil
}

func (e *ProcessExecutor) run(ctx context.Context, start time.Time, execDir string, cfg LanguageConfig, req Request) *ExecutionResult {
	timeLimit := time.Duration(req.TimeLimitMs) * time.Millisecond
	if timeLimit <= 0 {
		timeLimit = 2 * time.Second
	}

	runCtx, cancel := context.WithTimeout(ctx, timeLimit)
	defer cancel()

	cmd := exec.Command(cfg.RunCommand[0], cfg.RunCommand[1:]...)
	cmd.Dir = execDir
	cmd.Stdin = strings.NewReader(req.Input)

	// Own process group so a wall-clock overrun kills the child and
	// everything it spawned.
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}

	var stdout, stderr limitedBuffer
	stdout.limit = maxOutputBytes
	stderr.limit = maxOutputBytes
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Start(); err != nil {
		res := failedResult(start, fmt.Sprintf("failed to start process: %v", err), req)
		return res
	}

	done := make(chan error, 1)
	go func() { done <- cmd.Wait() }()

	var runErr error
	timedOut := false
	canceled := false
	select {
	case runErr = <-done:
	case <-runCtx.Done():
		if cmd.Process != nil {
			_ = syscall.Kill(-cmd.Process.Pid, syscall.SIGKILL)
		}
		<-done
		// The parent context going away (client disconnect, shutdown) is not
		// the submission's fault; only an expired per-run deadline is.
		if ctx.Err() != nil {
			canceled = true
		} else {
			timedOut = true
		}
	}

	elapsed := elapsedMs(start)

	result := &ExecutionResult{
		Output:      truncateOutput(stdout.String(), stdout.truncated),
		TimeMs:      elapsed,
		MemoryBytes: measureMemory(cmd.ProcessState, req, stdout.String()),
	}

	logger.Log.Debug("Process execution finished",
		zap.String("language", req.Language),
		zap.Int64("elapsed_ms", elapsed),
		zap.Bool("timed_out", timedOut),
	)

	if canceled {
		result.Success = false
		result.Error = "execution canceled: " + ctx.Err().Error()
		result.Output = errorOutput
		return result
	}

	if timedOut {
		result.Success = false
		result.TimedOut = true
		result.Error = "time_limit_exceeded"
		result.Output = errorOutput
		return result
	}

	if runErr != nil {
		result.Success = false
		result.Error = runtimeErrorMessage(runErr, stderr.String())
		if strings.TrimSpace(result.Output) == "" {
			result.Output = errorOutput
		}
		return result
	}

	result.Success = true
	return result
}

func runtimeErrorMessage(err error, stderr string) string {
	msg := strings.TrimSpace(stderr)
	if msg == "" {
		msg = err.Error()
	}
	return msg
}

// measureMemory prefers the child's measured peak RSS, capped by the declared
// limit. When rusage is unavailable it falls back to a size-derived estimate
// capped at 80% of the limit, which is explicitly an approximation.
func measureMemory(state *os.ProcessState, req Request, output string) int64 {
	limit := req.MemoryLimitBytes
	if limit <= 0 {
		limit = 256 << 20
	}

	if state != nil {
		if rusage, ok := state.SysUsage().(*syscall.Rusage); ok && rusage.Maxrss > 0 {
			// ru_maxrss is reported in kilobytes on Linux.
			measured := rusage.Maxrss * 1024
			if measured > limit {
				return limit
			}
			return measured
		}
	}

	estimate := int64(1<<20) + int64(len(req.Code))*512 + int64(len(output))*256
	ceiling := limit * 8 / 10
	if estimate > ceiling {
		return ceiling
	}
	return estimate
}

func failedResult(start time.Time, message string, req Request) *ExecutionResult {
	return &ExecutionResult{
		Output:      errorOutput,
		Success:     false,
		TimeMs:      elapsedMs(start),
		MemoryBytes: measureMemory(nil, req, ""),
		Error:       message,
	}
}

// elapsedMs reports at least 1ms even for near-instant failures so callers
// never see a zero-duration run.
func elapsedMs(start time.Time) int64 {
	ms := time.Since(start).Milliseconds()
	if ms < 1 {
		return 1
	}
	return ms
}

// limitedBuffer stops accepting writes once the limit is reached, discarding
// the rest silently.
type limitedBuffer struct {
	buf       bytes.Buffer
	limit     int
	truncated bool
}

func (lb *limitedBuffer) Write(p []byte) (int, error) {
	origLen := len(p)

	if lb.truncated {
		return origLen, nil
	}

	remaining := lb.limit - lb.buf.Len()
	if remaining <= 0 {
		lb.truncated = true
		return origLen, nil
	}

	if len(p) > remaining {
		lb.truncated = true
		p = p[:remaining]
	}

	if _, err := lb.buf.Write(p); err != nil {
		return 0, err
	}
	return origLen, nil
}

func (lb *limitedBuffer) String() string {
	return lb.buf.String()
}

func truncateOutput(s string, wasTruncated bool) string {
	if wasTruncated {
		return s + outputTruncatedMsg
	}
	return s
}
