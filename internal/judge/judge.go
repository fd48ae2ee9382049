package judge

import (
	"context"

	"codearena/internal/logger"
	"codearena/internal/models"

	"go.uber.org/zap"
)

// TestResult pairs one test case with the outcome of running the submitted
// code against it. Results are reported in the exact order the test cases
// were supplied.
type TestResult struct {
	TestCaseID int    `json:"test_case_id"`
	Input      string `json:"input,omitempty"`
	Expected   string `json:"expected,omitempty"`
	Output     string `json:"output"`
	Passed     bool   `json:"passed"`
	TimeMs     int64  `json:"time_ms"`
	Error      string `json:"error,omitempty"`
}

// Verdict aggregates a full judging pass. TotalTimeMs is the sum of per-test
// times (the persisted metric), MaxTimeMs the worst single test (the
// representative figure shown to users); the two are distinct on purpose.
// MemoryUsedBytes is the peak across all tests.
type Verdict struct {
	Status          string       `json:"status"`
	TotalTimeMs     int64        `json:"total_time_ms"`
	MaxTimeMs       int64        `json:"max_time_ms"`
	MemoryUsedBytes int64        `json:"memory_used_bytes"`
	TestResults     []TestResult `json:"test_results"`
}

// SubmissionStore persists finished submissions. Append-only: the judging
// path never updates or deletes.
type SubmissionStore interface {
	Save(ctx context.Context, submission *models.Submission) error
}

// JudgeRequest carries everything needed to judge one piece of code against
// a set of test cases.
type JudgeRequest struct {
	Code             string
	Language         string
	ProblemType      string
	TestCases        []models.TestCase
	TimeLimitMs      int64
	MemoryLimitBytes int64
}

// Service drives the executor across all test cases and aggregates the
// per-test outcomes into a verdict.
type Service struct {
	executor Executor
}

func NewService(executor Executor) *Service {
	return &Service{executor: executor}
}

// Judge runs the code against every test case, in order, without
// short-circuiting on failure, so the caller always gets a complete result
// list. Per-test executor failures are absorbed into the corresponding
// TestResult; they never abort the remaining test cases.
func (s *Service) Judge(ctx context.Context, req JudgeRequest) *Verdict {
	verdict := &Verdict{
		TestResults: make([]TestResult, 0, len(req.TestCases)),
	}

	// A pass with no test cases says nothing about the code; it means the
	// problem's data is broken. Never a vacuous accept.
	if len(req.TestCases) == 0 {
		verdict.Status = models.StatusInternalError
		logger.Log.Warn("Judging requested with no test cases",
			zap.String("language", req.Language),
			zap.String("problem_type", req.ProblemType),
		)
		return verdict
	}

	allPassed := true
	anyTimeout := false
	anyCompileError := false
	anyRuntimeError := false

	for _, tc := range req.TestCases {
		args := ParseInput(req.ProblemType, tc.Input)

		res, err := s.executor.Execute(ctx, Request{
			Code:             req.Code,
			Language:         req.Language,
			Input:            tc.Input,
			Args:             args,
			TimeLimitMs:      req.TimeLimitMs,
			MemoryLimitBytes: req.MemoryLimitBytes,
		})
		if err != nil {
			// Infrastructure failure on one test case becomes a failed
			// result for that case; the rest still run.
			res = &ExecutionResult{
				Output:  errorOutput,
				Success: false,
				TimeMs:  1,
				Error:   err.Error(),
			}
		}

		passed := Normalize(res.Output) == Normalize(tc.ExpectedOutput)

		verdict.TestResults = append(verdict.TestResults, TestResult{
			TestCaseID: tc.ID,
			Input:      tc.Input,
			Expected:   tc.ExpectedOutput,
			Output:     res.Output,
			Passed:     passed,
			TimeMs:     res.TimeMs,
			Error:      res.Error,
		})

		allPassed = allPassed && passed
		anyTimeout = anyTimeout || res.TimedOut
		anyCompileError = anyCompileError || res.CompilationFailed
		if !res.Success && !res.TimedOut && !res.CompilationFailed {
			anyRuntimeError = true
		}

		verdict.TotalTimeMs += res.TimeMs
		if res.TimeMs > verdict.MaxTimeMs {
			verdict.MaxTimeMs = res.TimeMs
		}
		if res.MemoryBytes > verdict.MemoryUsedBytes {
			verdict.MemoryUsedBytes = res.MemoryBytes
		}
	}

	switch {
	case allPassed:
		verdict.Status = models.StatusAccepted
	case anyCompileError:
		verdict.Status = models.StatusCompilationError
	case anyTimeout:
		verdict.Status = models.StatusTimeLimitExceeded
	case anyRuntimeError:
		verdict.Status = models.StatusRuntimeError
	default:
		verdict.Status = models.StatusWrongAnswer
	}

	logger.Log.Info("Judging pass finished",
		zap.String("language", req.Language),
		zap.String("status", verdict.Status),
		zap.Int("test_cases", len(req.TestCases)),
		zap.Int64("total_time_ms", verdict.TotalTimeMs),
		zap.Int64("max_time_ms", verdict.MaxTimeMs),
	)

	return verdict
}

// Run is the preview path: identical judging, no persistence.
func (s *Service) Run(ctx context.Context, req JudgeRequest) *Verdict {
	return s.Judge(ctx, req)
}

// Submit judges and hands one finished Submission to the store. The record
// carries the summed time as its persisted execution time plus the max-time
// and peak-memory figures.
func (s *Service) Submit(ctx context.Context, req JudgeRequest, userID, problemID int, store SubmissionStore) (*Verdict, *models.Submission, error) {
	verdict := s.Judge(ctx, req)

	submission := &models.Submission{
		UserID:          userID,
		ProblemID:       problemID,
		Language:        req.Language,
		SourceCode:      req.Code,
		Status:          verdict.Status,
		TotalTimeMs:     verdict.TotalTimeMs,
		MaxTimeMs:       verdict.MaxTimeMs,
		MemoryUsedBytes: verdict.MemoryUsedBytes,
	}

	if err := store.Save(ctx, submission); err != nil {
		return verdict, nil, err
	}

	return verdict, submission, nil
}
