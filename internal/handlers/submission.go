package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"codearena/internal/judge"
	"codearena/internal/logger"
	"codearena/internal/models"
	"codearena/internal/repositories"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// SubmissionStream is the Redis stream the worker pool consumes.
const SubmissionStream = "code_submissions"

type SubmissionHandler struct {
	submissionRepo repositories.SubmissionRepository
	redis          *redis.Client
}

// NewSubmissionHandler creates a new submission handler
func NewSubmissionHandler(submissionRepo repositories.SubmissionRepository, redisClient *redis.Client) *SubmissionHandler {
	return &SubmissionHandler{
		submissionRepo: submissionRepo,
		redis:          redisClient,
	}
}

// CreateSubmission queues a submission for asynchronous judging: the record
// is inserted as pending and its ID pushed onto the stream.
func (h *SubmissionHandler) CreateSubmission(c *gin.Context) {
	var req models.SubmissionRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := req.ValidateRequest(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if _, err := judge.GetLanguageConfig(req.Language); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	submission := models.Submission{
		UserID:     req.UserID,
		ProblemID:  req.ProblemID,
		Language:   req.Language,
		SourceCode: req.SourceCode,
	}

	ctx := c.Request.Context()

	if err := h.submissionRepo.CreatePending(ctx, &submission); err != nil {
		logger.Log.Error("Failed to create submission", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to process submission"})
		return
	}

	err := h.redis.XAdd(ctx, &redis.XAddArgs{
		Stream: SubmissionStream,
		ID:     "*", // Auto-generate ID
		Values: map[string]interface{}{
			"submission_id": submission.ID,
		},
	}).Err()

	if err != nil {
		logger.Log.Error("Failed to add submission to Redis stream",
			zap.Int("submission_id", submission.ID),
			zap.Error(err))

		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to queue submission"})
		return
	}

	c.JSON(http.StatusAccepted, gin.H{
		"message":       "Submission queued for processing",
		"submission_id": submission.ID,
	})
}

func (h *SubmissionHandler) GetSubmission(c *gin.Context) {
	idStr := c.Param("id")
	id, err := strconv.Atoi(idStr)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid submission ID"})
		return
	}

	submission, err := h.submissionRepo.GetByID(c.Request.Context(), id)
	if err != nil {
		logger.Log.Error("Failed to get submission",
			zap.Int("submission_id", id),
			zap.Error(err))

		if strings.Contains(err.Error(), "not found") {
			c.JSON(http.StatusNotFound, gin.H{"error": "Submission not found"})
			return
		}

		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve submission details"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"id":                submission.ID,
		"status":            submission.Status,
		"language":          submission.Language,
		"source_code":       submission.SourceCode,
		"execution_time_ms": submission.TotalTimeMs,
		"max_time_ms":       submission.MaxTimeMs,
		"memory_used_bytes": submission.MemoryUsedBytes,
		"submitted_at":      submission.SubmittedAt,
	})
}

func (h *SubmissionHandler) GetUserSubmissions(c *gin.Context) {
	userIDStr := c.Query("user_id")
	problemIDStr := c.Query("problem_id")

	if userIDStr == "" || problemIDStr == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Both user_id and problem_id query parameters are required"})
		return
	}

	userID, err := strconv.Atoi(userIDStr)
	if err != nil || userID <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user ID"})
		return
	}

	problemID, err := strconv.Atoi(problemIDStr)
	if err != nil || problemID <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid problem ID"})
		return
	}

	submissions, err := h.submissionRepo.ListByUserAndProblem(c.Request.Context(), userID, problemID)
	if err != nil {
		logger.Log.Error("Failed to get user submissions",
			zap.Int("user_id", userID),
			zap.Int("problem_id", problemID),
			zap.Error(err))

		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve submission history"})
		return
	}

	for i := range submissions {
		submissions[i].FormattedTime = submissions[i].SubmittedAt.Format("Jan 2, 2006 at 3:04 PM")
	}

	c.JSON(http.StatusOK, gin.H{
		"submissions": submissions,
		"count":       len(submissions),
	})
}

func (h *SubmissionHandler) RegisterRoutes(router *gin.Engine) {
	submissionGroup := router.Group("/submissions")
	{
		submissionGroup.POST("", h.CreateSubmission)
		submissionGroup.GET("/:id", h.GetSubmission)
		submissionGroup.GET("", h.GetUserSubmissions)
	}
}
