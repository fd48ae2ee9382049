package handlers

import (
	"net/http"
	"strings"

	config "codearena/configs"
	"codearena/internal/judge"
	"codearena/internal/logger"
	"codearena/internal/models"
	"codearena/internal/repositories"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// JudgeRequest is the remote judging contract: with `input` set it performs a
// single-execution preview; with `problem_id` set it judges against every
// stored test case, and additionally persists a submission when `user_id` is
// present.
type JudgeRequest struct {
	Code             string  `json:"code" binding:"required"`
	Language         string  `json:"language" binding:"required"`
	ProblemID        *int    `json:"problem_id,omitempty"`
	UserID           *int    `json:"user_id,omitempty"`
	Input            *string `json:"input,omitempty"`
	ExpectedOutput   *string `json:"expected_output,omitempty"`
	TimeLimitMs      int64   `json:"time_limit_ms,omitempty"`
	MemoryLimitBytes int64   `json:"memory_limit_bytes,omitempty"`
}

// RunRequest is the preview trigger: judge against stored or inline test
// cases, never persist.
type RunRequest struct {
	Code      string `json:"code" binding:"required"`
	Language  string `json:"language" binding:"required"`
	ProblemID *int   `json:"problem_id,omitempty"`
	TestCases []struct {
		Input          string `json:"input"`
		ExpectedOutput string `json:"expected_output"`
	} `json:"test_cases,omitempty"`
}

type JudgeHandler struct {
	problemRepo    repositories.ProblemRepository
	submissionRepo repositories.SubmissionRepository
	judgeService   *judge.Service
	cfg            *config.Config
}

func NewJudgeHandler(problemRepo repositories.ProblemRepository, submissionRepo repositories.SubmissionRepository,
	judgeService *judge.Service, cfg *config.Config) *JudgeHandler {
	return &JudgeHandler{
		problemRepo:    problemRepo,
		submissionRepo: submissionRepo,
		judgeService:   judgeService,
		cfg:            cfg,
	}
}

// Judge handles POST /judge.
func (h *JudgeHandler) Judge(c *gin.Context) {
	var req JudgeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if _, err := judge.GetLanguageConfig(req.Language); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if req.Input != nil {
		h.judgePreview(c, &req)
		return
	}

	if req.ProblemID != nil {
		h.judgeProblem(c, &req)
		return
	}

	c.JSON(http.StatusBadRequest, gin.H{"error": "either input or problem_id is required"})
}

// judgePreview runs the code once against an ad-hoc input.
func (h *JudgeHandler) judgePreview(c *gin.Context, req *JudgeRequest) {
	expected := ""
	if req.ExpectedOutput != nil {
		expected = *req.ExpectedOutput
	}

	jr := judge.JudgeRequest{
		Code:             req.Code,
		Language:         req.Language,
		ProblemType:      judge.ProblemTypeRaw,
		TestCases:        []models.TestCase{{ID: 1, Input: *req.Input, ExpectedOutput: expected}},
		TimeLimitMs:      h.timeLimit(req.TimeLimitMs, 0),
		MemoryLimitBytes: h.memoryLimit(req.MemoryLimitBytes, 0),
	}

	verdict := h.judgeService.Run(c.Request.Context(), jr)

	c.JSON(http.StatusOK, verdictResponse(verdict, uuid.NewString()))
}

// judgeProblem judges against every stored test case for the problem and
// persists a submission when a user identity is supplied.
func (h *JudgeHandler) judgeProblem(c *gin.Context, req *JudgeRequest) {
	ctx := c.Request.Context()

	problem, err := h.problemRepo.GetProblemByID(ctx, *req.ProblemID)
	if err != nil {
		if strings.Contains(err.Error(), "not found") {
			c.JSON(http.StatusNotFound, gin.H{"error": "Problem not found"})
			return
		}
		logger.Log.Error("Failed to get problem",
			zap.Int("problem_id", *req.ProblemID),
			zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve problem"})
		return
	}

	testCases, err := h.problemRepo.GetTestCases(ctx, *req.ProblemID)
	if err != nil {
		logger.Log.Error("Failed to get test cases",
			zap.Int("problem_id", *req.ProblemID),
			zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve test cases"})
		return
	}
	if len(testCases) == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "No test cases found for problem"})
		return
	}

	jr := judge.JudgeRequest{
		Code:             req.Code,
		Language:         req.Language,
		ProblemType:      problem.ProblemType,
		TestCases:        testCases,
		TimeLimitMs:      h.timeLimit(req.TimeLimitMs, problem.TimeLimitMs),
		MemoryLimitBytes: h.memoryLimit(req.MemoryLimitBytes, problem.MemoryLimitBytes),
	}

	var verdict *judge.Verdict
	if req.UserID != nil {
		var saveErr error
		verdict, _, saveErr = h.judgeService.Submit(ctx, jr, *req.UserID, *req.ProblemID, h.submissionRepo)
		if saveErr != nil {
			logger.Log.Error("Failed to persist submission",
				zap.Int("user_id", *req.UserID),
				zap.Int("problem_id", *req.ProblemID),
				zap.Error(saveErr))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save submission"})
			return
		}
	} else {
		verdict = h.judgeService.Run(ctx, jr)
	}

	redactHiddenCases(verdict, testCases)

	c.JSON(http.StatusOK, verdictResponse(verdict, uuid.NewString()))
}

// Run handles POST /run: same judging as submit, never persisted.
func (h *JudgeHandler) Run(c *gin.Context) {
	var req RunRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if _, err := judge.GetLanguageConfig(req.Language); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx := c.Request.Context()

	var (
		testCases   []models.TestCase
		problemType = judge.ProblemTypeRaw
		timeLimit   int64
		memoryLimit int64
	)

	switch {
	case req.ProblemID != nil:
		problem, err := h.problemRepo.GetProblemByID(ctx, *req.ProblemID)
		if err != nil {
			if strings.Contains(err.Error(), "not found") {
				c.JSON(http.StatusNotFound, gin.H{"error": "Problem not found"})
				return
			}
			logger.Log.Error("Failed to get problem", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve problem"})
			return
		}

		problemType = problem.ProblemType
		timeLimit = problem.TimeLimitMs
		memoryLimit = problem.MemoryLimitBytes

		testCases, err = h.problemRepo.GetTestCases(ctx, *req.ProblemID)
		if err != nil {
			logger.Log.Error("Failed to get test cases", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve test cases"})
			return
		}
	case len(req.TestCases) > 0:
		for i, tc := range req.TestCases {
			testCases = append(testCases, models.TestCase{
				ID:             i + 1,
				Input:          tc.Input,
				ExpectedOutput: tc.ExpectedOutput,
				IsSample:       true,
			})
		}
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "either problem_id or test_cases is required"})
		return
	}

	if len(testCases) == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "No test cases found for problem"})
		return
	}

	verdict := h.judgeService.Run(ctx, judge.JudgeRequest{
		Code:             req.Code,
		Language:         req.Language,
		ProblemType:      problemType,
		TestCases:        testCases,
		TimeLimitMs:      h.timeLimit(0, timeLimit),
		MemoryLimitBytes: h.memoryLimit(0, memoryLimit),
	})

	redactHiddenCases(verdict, testCases)

	c.JSON(http.StatusOK, verdictResponse(verdict, uuid.NewString()))
}

// Languages handles GET /languages.
func (h *JudgeHandler) Languages(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"languages": judge.SupportedLanguages()})
}

func (h *JudgeHandler) timeLimit(requested, problem int64) int64 {
	if requested > 0 {
		return requested
	}
	if problem > 0 {
		return problem
	}
	return h.cfg.DefaultTimeLimitMs
}

func (h *JudgeHandler) memoryLimit(requested, problem int64) int64 {
	if requested > 0 {
		return requested
	}
	if problem > 0 {
		return problem
	}
	return h.cfg.DefaultMemoryLimitBytes
}

// redactHiddenCases blanks input and expected output for non-sample test
// cases so hidden data never leaves the judging path.
func redactHiddenCases(verdict *judge.Verdict, testCases []models.TestCase) {
	sample := make(map[int]bool, len(testCases))
	for _, tc := range testCases {
		sample[tc.ID] = tc.IsSample
	}

	for i := range verdict.TestResults {
		if !sample[verdict.TestResults[i].TestCaseID] {
			verdict.TestResults[i].Input = ""
			verdict.TestResults[i].Expected = ""
		}
	}
}

func verdictResponse(verdict *judge.Verdict, runID string) gin.H {
	return gin.H{
		"run_id":            runID,
		"status":            verdict.Status,
		"execution_time_ms": verdict.TotalTimeMs,
		"max_time_ms":       verdict.MaxTimeMs,
		"memory_used_bytes": verdict.MemoryUsedBytes,
		"test_results":      verdict.TestResults,
	}
}

// RegisterRoutes registers the judging endpoints.
func (h *JudgeHandler) RegisterRoutes(router *gin.Engine) {
	router.POST("/judge", h.Judge)
	router.POST("/run", h.Run)
	router.GET("/languages", h.Languages)
}
