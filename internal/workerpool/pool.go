package workerpool

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"codearena/internal/judge"
	"codearena/internal/logger"
	"codearena/internal/models"
	"codearena/internal/repositories"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// JudgeWorker consumes queued submissions from a Redis stream and judges them.
type JudgeWorker struct {
	id             string
	quit           chan bool
	rdb            *redis.Client
	stream         string
	group          string
	problemRepo    repositories.ProblemRepository
	submissionRepo repositories.SubmissionRepository
	judgeService   *judge.Service
}

func NewJudgeWorker(id string, rdb *redis.Client, stream, group string,
	problemRepo repositories.ProblemRepository, submissionRepo repositories.SubmissionRepository,
	judgeService *judge.Service) *JudgeWorker {
	return &JudgeWorker{
		id:             id,
		quit:           make(chan bool),
		rdb:            rdb,
		stream:         stream,
		group:          group,
		problemRepo:    problemRepo,
		submissionRepo: submissionRepo,
		judgeService:   judgeService,
	}
}

// Start begins processing jobs from the stream
func (w *JudgeWorker) Start(ctx context.Context) {
	go func() {
		for {
			select {
			case <-w.quit:
				return
			default:
				entries, err := w.rdb.XReadGroup(ctx, &redis.XReadGroupArgs{
					Group:    w.group,
					Consumer: w.id,
					Streams:  []string{w.stream, ">"},
					Count:    1,
					Block:    5 * time.Second,
				}).Result()

				if err != nil {
					if err != redis.Nil {
						logger.Log.Error("Redis operation failed",
							zap.String("worker_id", w.id),
							zap.Error(err))
					}
					continue
				}

				for _, stream := range entries {
					for _, msg := range stream.Messages {
						w.processSubmission(ctx, msg)
					}
				}
			}
		}
	}()
}

func (w *JudgeWorker) Stop() {
	logger.Log.Info("Closing worker",
		zap.String("worker_id", w.id))
	w.quit <- true
	close(w.quit)
}

func (w *JudgeWorker) processSubmission(ctx context.Context, msg redis.XMessage) {
	logger.Log.Info("Processing submission job",
		zap.String("worker_id", w.id),
		zap.String("job_id", msg.ID))

	if err := w.rdb.XAck(ctx, w.stream, w.group, msg.ID).Err(); err != nil {
		logger.Log.Error("Failed to acknowledge job",
			zap.String("worker_id", w.id),
			zap.Error(err))
	}

	submissionIDStr, ok := msg.Values["submission_id"].(string)
	if !ok {
		logger.Log.Error("Invalid submission ID in message",
			zap.String("worker_id", w.id),
			zap.Any("values", msg.Values))
		return
	}

	submissionID, err := strconv.Atoi(submissionIDStr)
	if err != nil {
		logger.Log.Error("Failed to parse submission ID",
			zap.String("worker_id", w.id),
			zap.String("submission_id", submissionIDStr),
			zap.Error(err))
		return
	}

	w.judgeSubmission(ctx, submissionID)

	logger.Log.Info("Finished processing submission job",
		zap.String("worker_id", w.id),
		zap.String("job_id", msg.ID),
		zap.Int("submission_id", submissionID))
}

// judgeSubmission drives one queued submission through its lifecycle: load it,
// mark it running, judge it, write the verdict exactly once. Missing problem
// data ends the record as internal_error.
func (w *JudgeWorker) judgeSubmission(ctx context.Context, submissionID int) {
	submission, err := w.submissionRepo.GetByID(ctx, submissionID)
	if err != nil {
		logger.Log.Error("Failed to get submission",
			zap.String("worker_id", w.id),
			zap.Int("submission_id", submissionID),
			zap.Error(err))
		return
	}

	problem, err := w.problemRepo.GetProblemByID(ctx, submission.ProblemID)
	if err != nil {
		logger.Log.Error("Failed to get problem",
			zap.String("worker_id", w.id),
			zap.Int("submission_id", submissionID),
			zap.Int("problem_id", submission.ProblemID),
			zap.Error(err))
		w.failSubmission(ctx, submissionID)
		return
	}

	testCases, err := w.problemRepo.GetTestCases(ctx, submission.ProblemID)
	if err != nil || len(testCases) == 0 {
		logger.Log.Error("Failed to get test cases",
			zap.String("worker_id", w.id),
			zap.Int("submission_id", submissionID),
			zap.Int("problem_id", submission.ProblemID),
			zap.Error(err))
		w.failSubmission(ctx, submissionID)
		return
	}

	if err := w.submissionRepo.MarkRunning(ctx, submissionID); err != nil {
		logger.Log.Error("Failed to mark submission running",
			zap.String("worker_id", w.id),
			zap.Int("submission_id", submissionID),
			zap.Error(err))
	}

	verdict := w.judgeService.Judge(ctx, judge.JudgeRequest{
		Code:             submission.SourceCode,
		Language:         submission.Language,
		ProblemType:      problem.ProblemType,
		TestCases:        testCases,
		TimeLimitMs:      problem.TimeLimitMs,
		MemoryLimitBytes: problem.MemoryLimitBytes,
	})

	err = w.submissionRepo.SaveVerdict(ctx, submissionID,
		verdict.Status, verdict.TotalTimeMs, verdict.MaxTimeMs, verdict.MemoryUsedBytes)
	if err != nil {
		logger.Log.Error("Failed to save verdict",
			zap.String("worker_id", w.id),
			zap.Int("submission_id", submissionID),
			zap.Error(err))
		return
	}

	logger.Log.Info("Submission judged",
		zap.String("worker_id", w.id),
		zap.Int("submission_id", submissionID),
		zap.String("status", verdict.Status),
		zap.Int64("total_time_ms", verdict.TotalTimeMs),
		zap.Int64("max_time_ms", verdict.MaxTimeMs))
}

func (w *JudgeWorker) failSubmission(ctx context.Context, submissionID int) {
	if err := w.submissionRepo.SaveVerdict(ctx, submissionID, models.StatusInternalError, 0, 0, 0); err != nil {
		logger.Log.Error("Failed to update submission status", zap.Error(err))
	}
}

type JudgeWorkerPool struct {
	workers        []*JudgeWorker
	numWorkers     int
	rdb            *redis.Client
	stream         string
	group          string
	problemRepo    repositories.ProblemRepository
	submissionRepo repositories.SubmissionRepository
	judgeService   *judge.Service
}

func NewJudgeWorkerPool(numWorkers int, rdb *redis.Client, stream, group string,
	problemRepo repositories.ProblemRepository, submissionRepo repositories.SubmissionRepository,
	judgeService *judge.Service) *JudgeWorkerPool {
	return &JudgeWorkerPool{
		workers:        make([]*JudgeWorker, numWorkers),
		numWorkers:     numWorkers,
		rdb:            rdb,
		stream:         stream,
		group:          group,
		problemRepo:    problemRepo,
		submissionRepo: submissionRepo,
		judgeService:   judgeService,
	}
}

func (p *JudgeWorkerPool) Start(ctx context.Context) error {
	// Create consumer group if it doesn't exist
	_, err := p.rdb.XGroupCreateMkStream(ctx, p.stream, p.group, "$").Result()
	if err != nil && err.Error() != "BUSYGROUP Consumer Group name already exists" {
		return fmt.Errorf("failed to create consumer group: %w", err)
	}

	for i := 0; i < p.numWorkers; i++ {
		worker := NewJudgeWorker(
			fmt.Sprintf("JudgeWorker-%d-%s", i+1, uuid.NewString()[:8]),
			p.rdb,
			p.stream,
			p.group,
			p.problemRepo,
			p.submissionRepo,
			p.judgeService,
		)

		worker.Start(ctx)
		p.workers[i] = worker

		logger.Log.Info("Starting judge worker",
			zap.String("worker_id", worker.id))
	}

	logger.Log.Info("Judge worker pool started",
		zap.Int("num_workers", p.numWorkers))

	return nil
}

// Stop terminates all workers in the pool
func (p *JudgeWorkerPool) Stop() {
	for _, worker := range p.workers {
		worker.Stop()
	}
}
