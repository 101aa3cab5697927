package handlers

import (
	"codearena/internal/logger"
	"codearena/internal/models"
	"codearena/internal/plagiarism"
	"codearena/internal/repositories"
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type PlagiarismHandler struct {
	detector       *plagiarism.Detector
	plagiarismRepo repositories.PlagiarismRepository
}

func NewPlagiarismHandler(detector *plagiarism.Detector, plagiarismRepo repositories.PlagiarismRepository) *PlagiarismHandler {
	return &PlagiarismHandler{
		detector:       detector,
		plagiarismRepo: plagiarismRepo,
	}
}

// RunDetection runs the pairwise similarity batch over accepted
// submissions in the requested scope. Re-runs are idempotent: pairs
// already recorded are skipped.
func (h *PlagiarismHandler) RunDetection(c *gin.Context) {
	var req models.PlagiarismRunRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if req.ContestID <= 0 && req.ProblemID <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Either contest_id or problem_id must be provided"})
		return
	}

	created, err := h.detector.Run(c.Request.Context(), req.ContestID, req.ProblemID)
	if err != nil {
		logger.Log.Error("Plagiarism detection run failed",
			zap.Int("contest_id", req.ContestID),
			zap.Int("problem_id", req.ProblemID),
			zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":          "Plagiarism detection failed",
			"checks_created": created,
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":        "Plagiarism detection completed",
		"checks_created": created,
	})
}

// ListChecks returns recorded similarity pairs, optionally filtered to
// one contest, ordered by score descending.
func (h *PlagiarismHandler) ListChecks(c *gin.Context) {
	contestID := 0
	if idStr := c.Query("contest_id"); idStr != "" {
		id, err := strconv.Atoi(idStr)
		if err != nil || id <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid contest ID"})
			return
		}
		contestID = id
	}

	checks, err := h.plagiarismRepo.ListChecks(context.Background(), contestID)
	if err != nil {
		logger.Log.Error("Failed to list plagiarism checks", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve plagiarism checks"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"checks": checks,
		"count":  len(checks),
	})
}

// MarkReviewed flags one check as reviewed by an admin.
func (h *PlagiarismHandler) MarkReviewed(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid check ID"})
		return
	}

	if err := h.plagiarismRepo.MarkReviewed(context.Background(), id); err != nil {
		if strings.Contains(err.Error(), "not found") {
			c.JSON(http.StatusNotFound, gin.H{"error": "Plagiarism check not found"})
			return
		}
		logger.Log.Error("Failed to mark plagiarism check reviewed",
			zap.Int("check_id", id),
			zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update plagiarism check"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"reviewed": true})
}

func (h *PlagiarismHandler) RegisterRoutes(router *gin.Engine, auth, admin gin.HandlerFunc) {
	plagiarismGroup := router.Group("/plagiarism", auth, admin)
	{
		plagiarismGroup.POST("/run", h.RunDetection)
		plagiarismGroup.GET("", h.ListChecks)
		plagiarismGroup.PATCH("/:id/review", h.MarkReviewed)
	}
}
