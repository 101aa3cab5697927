package handlers

import (
	"codearena/internal/judge0"
	"codearena/internal/judging"
	"codearena/internal/logger"
	"codearena/internal/middlewares"
	"codearena/internal/models"
	"codearena/internal/repositories"
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const DispatchStream = "judge_dispatch"

type SubmissionHandler struct {
	submissionRepo repositories.SubmissionRepository
	problemRepo    repositories.ProblemRepository
	orchestrator   *judging.Orchestrator
	poller         *judging.Poller
	judge          *judge0.Client
	redis          *redis.Client
}

// NewSubmissionHandler creates a new submission handler
func NewSubmissionHandler(
	submissionRepo repositories.SubmissionRepository,
	problemRepo repositories.ProblemRepository,
	orchestrator *judging.Orchestrator,
	poller *judging.Poller,
	judge *judge0.Client,
	redisClient *redis.Client,
) *SubmissionHandler {
	return &SubmissionHandler{
		submissionRepo: submissionRepo,
		problemRepo:    problemRepo,
		orchestrator:   orchestrator,
		poller:         poller,
		judge:          judge,
		redis:          redisClient,
	}
}

// CreateSubmission admits, records and judges a new submission. The
// default path judges synchronously across all test cases and returns
// the aggregate verdict with per-case diagnostics. With ?wait=false the
// submission is accepted immediately and dispatched out-of-band.
func (h *SubmissionHandler) CreateSubmission(c *gin.Context) {
	problemID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid problem ID"})
		return
	}

	var req models.SubmissionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := req.ValidateRequest(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	userID, ok := middlewares.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
		return
	}

	ctx := context.Background()

	problem, err := h.problemRepo.GetProblem(ctx, problemID)
	if err != nil {
		if strings.Contains(err.Error(), "not found") {
			c.JSON(http.StatusNotFound, gin.H{"error": "Problem not found"})
			return
		}
		logger.Log.Error("Failed to get problem", zap.Int("problem_id", problemID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to process submission"})
		return
	}

	languageID := h.judge.ResolveLanguage(req.Language)
	if !problem.AllowMultipleLanguages {
		languageID = problem.DefaultLanguageID
	}

	async := c.Query("wait") == "false"
	initialStatus := models.StatusProcessing
	if async {
		initialStatus = models.StatusInQueue
	}

	submission := models.Submission{
		UserID:          userID,
		ProblemID:       problem.ID,
		LanguageID:      languageID,
		SourceCode:      req.SourceCode,
		Stdin:           req.Stdin,
		Status:          initialStatus,
		IPAddress:       c.ClientIP(),
		UserAgent:       c.Request.UserAgent(),
		SessionID:       uuid.NewString(),
		TimeSpentCoding: req.TimeSpentCoding,
		KeystrokesCount: req.KeystrokesCount,
		CopyPasteEvents: req.CopyPasteEvents,
		TabSwitches:     req.TabSwitches,
	}

	decision, err := h.submissionRepo.AdmitAndCreate(ctx, &submission, problem.MaxSubmissions)
	if err != nil {
		logger.Log.Error("Failed to create submission", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to process submission"})
		return
	}

	if !decision.Allowed {
		message := "Maximum submissions reached for this problem"
		if decision.Reason == judging.DenyReasonPending {
			message = "Previous submission is still being processed"
		}
		c.JSON(http.StatusBadRequest, gin.H{
			"error":            message,
			"reason":           decision.Reason,
			"submissions_made": decision.CompletedCount,
			"max_submissions":  decision.MaxSubmissions,
			"last_status":      decision.LastStatus,
		})
		return
	}

	if async {
		h.enqueueDispatch(c, &submission)
		return
	}

	testCases, err := h.problemRepo.GetTestCases(ctx, problem.ID)
	if err != nil {
		logger.Log.Error("Failed to get test cases",
			zap.Int("problem_id", problem.ID),
			zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to process submission"})
		return
	}

	verdict, err := h.orchestrator.Judge(ctx, &submission, problem, testCases)
	if err != nil {
		if errors.Is(err, judge0.ErrQuotaExceeded) {
			c.JSON(http.StatusTooManyRequests, gin.H{
				"error":         "Execution service quota exceeded, try again later",
				"submission_id": submission.ID,
			})
			return
		}
		logger.Log.Error("Judging failed",
			zap.Int("submission_id", submission.ID),
			zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to judge submission"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"submission_id": verdict.SubmissionID,
		"status":        verdict.Status,
		"all_passed":    verdict.AllPassed,
		"results":       verdict.Results,
	})
}

func (h *SubmissionHandler) enqueueDispatch(c *gin.Context, submission *models.Submission) {
	err := h.redis.XAdd(context.Background(), &redis.XAddArgs{
		Stream: DispatchStream,
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

// GetSubmission returns the submission's current state. Pending
// submissions with a provider token are reconciled against the
// execution service first.
func (h *SubmissionHandler) GetSubmission(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid submission ID"})
		return
	}

	ctx := context.Background()

	submission, err := h.submissionRepo.GetSubmission(ctx, id)
	if err != nil {
		if strings.Contains(err.Error(), "not found") {
			c.JSON(http.StatusNotFound, gin.H{"error": "Submission not found"})
			return
		}
		logger.Log.Error("Failed to get submission",
			zap.Int("submission_id", id),
			zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve submission details"})
		return
	}

	if models.IsPending(submission.Status) && submission.ExternalToken != "" {
		if err := h.poller.Refresh(ctx, submission); err != nil {
			logger.Log.Error("Failed to refresh submission state",
				zap.Int("submission_id", id),
				zap.Error(err))
		}
	}

	response := gin.H{
		"id":           submission.ID,
		"status":       submission.Status,
		"source_code":  submission.SourceCode,
		"submitted_at": submission.SubmittedAt,
	}
	if submission.Stdout != "" {
		response["stdout"] = submission.Stdout
	}
	if submission.Stderr != "" {
		response["stderr"] = submission.Stderr
	}
	if submission.CompileOutput != "" {
		response["compile_output"] = submission.CompileOutput
	}
	if submission.Time != nil {
		response["time"] = *submission.Time
	}
	if submission.Memory != nil {
		response["memory"] = *submission.Memory
	}

	c.JSON(http.StatusOK, response)
}

// GetUserSubmissions lists a user's submission history for one problem.
func (h *SubmissionHandler) GetUserSubmissions(c *gin.Context) {
	userID, ok := middlewares.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
		return
	}

	problemID, err := strconv.Atoi(c.Query("problem_id"))
	if err != nil || problemID <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid problem ID"})
		return
	}

	submissions, err := h.submissionRepo.GetSubmissionsByUserAndProblem(context.Background(), userID, problemID)
	if err != nil {
		logger.Log.Error("Failed to get user submissions",
			zap.Int("user_id", userID),
			zap.Int("problem_id", problemID),
			zap.Error(err))

		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve submission history"})
		return
	}

	for i := range submissions {
		// Format time as "Jan 2, 2006 at 3:04 PM"
		submissions[i].FormattedTime = submissions[i].SubmittedAt.Format("Jan 2, 2006 at 3:04 PM")
	}

	c.JSON(http.StatusOK, gin.H{
		"submissions": submissions,
		"count":       len(submissions),
	})
}

// GetQuota previews the admission decision for the authenticated user
// without creating anything.
func (h *SubmissionHandler) GetQuota(c *gin.Context) {
	problemID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid problem ID"})
		return
	}

	userID, ok := middlewares.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
		return
	}

	ctx := context.Background()

	problem, err := h.problemRepo.GetProblem(ctx, problemID)
	if err != nil {
		if strings.Contains(err.Error(), "not found") {
			c.JSON(http.StatusNotFound, gin.H{"error": "Problem not found"})
			return
		}
		logger.Log.Error("Failed to get problem", zap.Int("problem_id", problemID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve quota"})
		return
	}

	decision, err := h.submissionRepo.PreviewAdmission(ctx, userID, problemID, problem.MaxSubmissions)
	if err != nil {
		logger.Log.Error("Failed to preview admission",
			zap.Int("user_id", userID),
			zap.Int("problem_id", problemID),
			zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve quota"})
		return
	}

	c.JSON(http.StatusOK, decision)
}

func (h *SubmissionHandler) RegisterRoutes(router *gin.Engine, auth gin.HandlerFunc) {
	problemGroup := router.Group("/problems", auth)
	{
		problemGroup.POST("/:id/submissions", h.CreateSubmission)
		problemGroup.GET("/:id/quota", h.GetQuota)
	}

	submissionGroup := router.Group("/submissions", auth)
	{
		submissionGroup.GET("/:id", h.GetSubmission)
		submissionGroup.GET("", h.GetUserSubmissions)
	}
}
