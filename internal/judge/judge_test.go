package judge

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"codearena/internal/models"
)

// fakeExecutor scripts per-invocation outcomes for orchestrator tests.
type fakeExecutor struct {
	fn    func(call int, req Request) (*ExecutionResult, error)
	calls int
}

func (f *fakeExecutor) Execute(ctx context.Context, req Request) (*ExecutionResult, error) {
	f.calls++
	return f.fn(f.calls, req)
}

func passingResult(output string) *ExecutionResult {
	return &ExecutionResult{Output: output, Success: true, TimeMs: 10, MemoryBytes: 1 << 20}
}

func testCases(n int) []models.TestCase {
	tcs := make([]models.TestCase, n)
	for i := range tcs {
		tcs[i] = models.TestCase{
			ID:             i + 1,
			Input:          fmt.Sprintf("input-%d", i+1),
			ExpectedOutput: fmt.Sprintf("expected-%d", i+1),
		}
	}
	return tcs
}

// Verdict is accepted iff every test result passed.
func TestJudgeVerdictConsistency(t *testing.T) {
	// Every case passes except #2, which echoes the wrong output.
	exec := &fakeExecutor{fn: func(call int, req Request) (*ExecutionResult, error) {
		if call == 2 {
			return passingResult("not what was expected"), nil
		}
		return passingResult(fmt.Sprintf("expected-%d", call)), nil
	}}

	svc := NewService(exec)
	verdict := svc.Judge(context.Background(), JudgeRequest{
		Code:      "code",
		Language:  LangPython,
		TestCases: testCases(3),
	})

	if verdict.Status != models.StatusWrongAnswer {
		t.Errorf("expected wrong_answer, got %s", verdict.Status)
	}
	if len(verdict.TestResults) != 3 {
		t.Fatalf("expected 3 results, got %d", len(verdict.TestResults))
	}
	if verdict.TestResults[1].Passed {
		t.Error("test 2 should have failed")
	}
	if !verdict.TestResults[0].Passed || !verdict.TestResults[2].Passed {
		t.Error("tests 1 and 3 should have passed")
	}
}

// An empty test-case set must never read as an accept; the executor is not
// even consulted.
func TestJudgeNoTestCasesIsInternalError(t *testing.T) {
	exec := &fakeExecutor{fn: func(call int, req Request) (*ExecutionResult, error) {
		t.Fatal("executor must not run without test cases")
		return nil, nil
	}}

	svc := NewService(exec)
	verdict := svc.Judge(context.Background(), JudgeRequest{
		Code:     "code",
		Language: LangPython,
	})

	if verdict.Status != models.StatusInternalError {
		t.Errorf("expected internal_error, got %s", verdict.Status)
	}
	if len(verdict.TestResults) != 0 {
		t.Errorf("expected no results, got %d", len(verdict.TestResults))
	}
	if exec.calls != 0 {
		t.Errorf("executor invoked %d times", exec.calls)
	}
}

func TestJudgeAllPassedAccepted(t *testing.T) {
	exec := &fakeExecutor{fn: func(call int, req Request) (*ExecutionResult, error) {
		return passingResult(fmt.Sprintf("expected-%d", call)), nil
	}}

	svc := NewService(exec)
	verdict := svc.Judge(context.Background(), JudgeRequest{TestCases: testCases(4)})

	if verdict.Status != models.StatusAccepted {
		t.Errorf("expected accepted, got %s", verdict.Status)
	}
	for i, tr := range verdict.TestResults {
		if !tr.Passed {
			t.Errorf("result %d should have passed", i)
		}
	}
}

// Results are reported in the exact order the test cases were supplied,
// regardless of which fail.
func TestJudgeOrderPreservation(t *testing.T) {
	tcs := []models.TestCase{
		{ID: 7, Input: "A", ExpectedOutput: "a"},
		{ID: 3, Input: "B", ExpectedOutput: "b"},
		{ID: 9, Input: "C", ExpectedOutput: "c"},
	}

	exec := &fakeExecutor{fn: func(call int, req Request) (*ExecutionResult, error) {
		if call == 1 {
			return passingResult("mismatch"), nil
		}
		return passingResult(map[string]string{"A": "a", "B": "b", "C": "c"}[req.Input]), nil
	}}

	svc := NewService(exec)
	verdict := svc.Judge(context.Background(), JudgeRequest{TestCases: tcs})

	wantIDs := []int{7, 3, 9}
	for i, tr := range verdict.TestResults {
		if tr.TestCaseID != wantIDs[i] {
			t.Errorf("position %d: expected test case %d, got %d", i, wantIDs[i], tr.TestCaseID)
		}
	}
}

// An executor failure on one test case never aborts the remaining cases.
func TestJudgeErrorContainment(t *testing.T) {
	exec := &fakeExecutor{fn: func(call int, req Request) (*ExecutionResult, error) {
		if call == 2 {
			return nil, errors.New("sandbox blew up")
		}
		return passingResult(fmt.Sprintf("expected-%d", call)), nil
	}}

	svc := NewService(exec)
	verdict := svc.Judge(context.Background(), JudgeRequest{TestCases: testCases(4)})

	if len(verdict.TestResults) != 4 {
		t.Fatalf("expected 4 results, got %d", len(verdict.TestResults))
	}

	second := verdict.TestResults[1]
	if second.Passed {
		t.Error("failed execution must not pass")
	}
	if second.Error != "sandbox blew up" {
		t.Errorf("expected error message preserved, got %q", second.Error)
	}

	for _, i := range []int{0, 2, 3} {
		if !verdict.TestResults[i].Passed {
			t.Errorf("test %d should have been evaluated normally", i+1)
		}
	}

	if verdict.Status != models.StatusRuntimeError {
		t.Errorf("executor failure should aggregate to runtime_error, got %s", verdict.Status)
	}
}

// Scenario: two-sum judged through output normalization.
func TestJudgeTwoSumScenario(t *testing.T) {
	tc := models.TestCase{ID: 1, Input: "[2,7,11,15]\n9", ExpectedOutput: "[0,1]"}

	t.Run("correct answer passes", func(t *testing.T) {
		exec := &fakeExecutor{fn: func(call int, req Request) (*ExecutionResult, error) {
			// Executor receives parsed arguments for the two-sum shape.
			if len(req.Args.Nums) != 4 || req.Args.Target != 9 {
				t.Errorf("expected parsed args, got %+v", req.Args)
			}
			return passingResult("[0, 1]"), nil
		}}

		verdict := NewService(exec).Judge(context.Background(), JudgeRequest{
			ProblemType: ProblemTypeTwoSum,
			TestCases:   []models.TestCase{tc},
		})

		if verdict.Status != models.StatusAccepted {
			t.Errorf("expected accepted, got %s", verdict.Status)
		}
	})

	t.Run("reversed indices fail order-sensitive comparison", func(t *testing.T) {
		exec := &fakeExecutor{fn: func(call int, req Request) (*ExecutionResult, error) {
			return passingResult("[1,0]"), nil
		}}

		verdict := NewService(exec).Judge(context.Background(), JudgeRequest{
			ProblemType: ProblemTypeTwoSum,
			TestCases:   []models.TestCase{tc},
		})

		if verdict.Status != models.StatusWrongAnswer {
			t.Errorf("comparator is order-sensitive, expected wrong_answer, got %s", verdict.Status)
		}
	})
}

// Scenario: empty input never crashes judging.
func TestJudgeEmptyInput(t *testing.T) {
	exec := &fakeExecutor{fn: func(call int, req Request) (*ExecutionResult, error) {
		if req.Args.Nums == nil {
			t.Error("parsed args should carry an empty slice, not nil")
		}
		return passingResult("executed successfully but produced no output"), nil
	}}

	verdict := NewService(exec).Judge(context.Background(), JudgeRequest{
		ProblemType: ProblemTypeTwoSum,
		TestCases:   []models.TestCase{{ID: 1, Input: "", ExpectedOutput: "[0,1]"}},
	})

	if len(verdict.TestResults) != 1 {
		t.Fatalf("expected 1 result, got %d", len(verdict.TestResults))
	}
	if verdict.TestResults[0].Passed {
		t.Error("placeholder output should not match the expectation")
	}
}

// Scenario: 5 cases, 3 pass, 2 fail.
func TestJudgePartialFailures(t *testing.T) {
	failing := map[int]bool{2: true, 4: true}

	exec := &fakeExecutor{fn: func(call int, req Request) (*ExecutionResult, error) {
		if failing[call] {
			return passingResult("wrong"), nil
		}
		return passingResult(fmt.Sprintf("expected-%d", call)), nil
	}}

	verdict := NewService(exec).Judge(context.Background(), JudgeRequest{TestCases: testCases(5)})

	if verdict.Status != models.StatusWrongAnswer {
		t.Errorf("expected wrong_answer, got %s", verdict.Status)
	}
	if len(verdict.TestResults) != 5 {
		t.Fatalf("expected 5 results, got %d", len(verdict.TestResults))
	}

	passed := 0
	for _, tr := range verdict.TestResults {
		if tr.Passed {
			passed++
		}
	}
	if passed != 3 {
		t.Errorf("expected 3 passing results, got %d", passed)
	}
}

// Total time is the sum of per-test times; max time is the worst single test;
// memory is the peak.
func TestJudgeAggregateMetrics(t *testing.T) {
	times := []int64{10, 50, 20}
	memories := []int64{1 << 20, 8 << 20, 2 << 20}

	exec := &fakeExecutor{fn: func(call int, req Request) (*ExecutionResult, error) {
		return &ExecutionResult{
			Output:      fmt.Sprintf("expected-%d", call),
			Success:     true,
			TimeMs:      times[call-1],
			MemoryBytes: memories[call-1],
		}, nil
	}}

	verdict := NewService(exec).Judge(context.Background(), JudgeRequest{TestCases: testCases(3)})

	if verdict.TotalTimeMs != 80 {
		t.Errorf("expected total 80ms, got %d", verdict.TotalTimeMs)
	}
	if verdict.MaxTimeMs != 50 {
		t.Errorf("expected max 50ms, got %d", verdict.MaxTimeMs)
	}
	if verdict.MemoryUsedBytes != 8<<20 {
		t.Errorf("expected peak memory %d, got %d", int64(8<<20), verdict.MemoryUsedBytes)
	}
}

func TestJudgeStatusPromotion(t *testing.T) {
	cases := []struct {
		name   string
		result *ExecutionResult
		want   string
	}{
		{
			name:   "timeout",
			result: &ExecutionResult{Output: "Error", TimeMs: 2000, TimedOut: true, Error: "time_limit_exceeded"},
			want:   models.StatusTimeLimitExceeded,
		},
		{
			name:   "runtime error",
			result: &ExecutionResult{Output: "Error", TimeMs: 5, Error: "segfault"},
			want:   models.StatusRuntimeError,
		},
		{
			name:   "compilation error",
			result: &ExecutionResult{Output: "Error", TimeMs: 5, Error: "compilation error: syntax", CompilationFailed: true},
			want:   models.StatusCompilationError,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			exec := &fakeExecutor{fn: func(call int, req Request) (*ExecutionResult, error) {
				if call == 1 {
					return tc.result, nil
				}
				return passingResult(fmt.Sprintf("expected-%d", call)), nil
			}}

			verdict := NewService(exec).Judge(context.Background(), JudgeRequest{TestCases: testCases(2)})
			if verdict.Status != tc.want {
				t.Errorf("expected %s, got %s", tc.want, verdict.Status)
			}
		})
	}
}

type fakeStore struct {
	saved []*models.Submission
	err   error
}

func (f *fakeStore) Save(ctx context.Context, s *models.Submission) error {
	if f.err != nil {
		return f.err
	}
	s.ID = len(f.saved) + 1
	f.saved = append(f.saved, s)
	return nil
}

func TestSubmitPersistsVerdict(t *testing.T) {
	exec := &fakeExecutor{fn: func(call int, req Request) (*ExecutionResult, error) {
		return passingResult(fmt.Sprintf("expected-%d", call)), nil
	}}
	store := &fakeStore{}

	svc := NewService(exec)
	verdict, submission, err := svc.Submit(context.Background(), JudgeRequest{
		Code:      "print(1)",
		Language:  LangPython,
		TestCases: testCases(2),
	}, 42, 7, store)

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if verdict.Status != models.StatusAccepted {
		t.Errorf("expected accepted, got %s", verdict.Status)
	}
	if len(store.saved) != 1 {
		t.Fatalf("expected 1 saved submission, got %d", len(store.saved))
	}

	saved := store.saved[0]
	if saved.UserID != 42 || saved.ProblemID != 7 {
		t.Errorf("identity fields wrong: %+v", saved)
	}
	if saved.Status != verdict.Status {
		t.Errorf("status mismatch: %s vs %s", saved.Status, verdict.Status)
	}
	if saved.TotalTimeMs != verdict.TotalTimeMs || saved.MaxTimeMs != verdict.MaxTimeMs {
		t.Error("time aggregates not carried onto the submission")
	}
	if submission.ID == 0 {
		t.Error("expected store-assigned ID on the returned submission")
	}
}

func TestSubmitStoreFailure(t *testing.T) {
	exec := &fakeExecutor{fn: func(call int, req Request) (*ExecutionResult, error) {
		return passingResult(fmt.Sprintf("expected-%d", call)), nil
	}}
	store := &fakeStore{err: errors.New("db down")}

	verdict, submission, err := NewService(exec).Submit(context.Background(),
		JudgeRequest{TestCases: testCases(1)}, 1, 1, store)

	if err == nil {
		t.Fatal("expected error from store")
	}
	if submission != nil {
		t.Error("no submission should be returned on store failure")
	}
	if verdict == nil {
		t.Error("verdict should still be returned so the caller can report it")
	}
}
