package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/CityQuest-2025/quest-service/internal/services"
	"github.com/CityQuest-2025/quest-service/internal/utils"
)

// TaskHandler covers photo-task submission and the admin rating flow.
type TaskHandler struct {
	BaseHandler
	submissions services.SubmissionService
	scoring     services.ScoringService
}

func NewTaskHandler(submissions services.SubmissionService, scoring services.ScoringService, logger utils.Logger) *TaskHandler {
	return &TaskHandler{
		BaseHandler: NewBaseHandler(logger),
		submissions: submissions,
		scoring:     scoring,
	}
}

// Submit accepts a multipart photo upload for a task.
func (h *TaskHandler) Submit(c *gin.Context) {
	sessionID := c.PostForm("session_id")
	questionIDStr := c.PostForm("question_id")
	questionID, err := strconv.ParseUint(questionIDStr, 10, 32)
	if sessionID == "" || err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "session_id and question_id are required",
		})
		return
	}

	filename, payload, ok := readUploadFile(c, "file")
	if !ok {
		return
	}

	h.LogRequest(c, "Processing task submission",
		"session_id", sessionID,
		"question_id", questionID,
		"size", len(payload))

	submission, err := h.submissions.SubmitTask(c.Request.Context(), sessionID, uint(questionID), filename, payload)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, submission)
}

func (h *TaskHandler) Summary(c *gin.Context) {
	summary, err := h.submissions.Summary(c.Request.Context())
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"tasks": summary})
}

func (h *TaskHandler) ListSubmissions(c *gin.Context) {
	questionID := parseUintParam(c, "question_id")
	if questionID == 0 {
		return
	}

	submissions, err := h.submissions.ListByQuestion(c.Request.Context(), questionID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"submissions": submissions})
}

type RateRequest struct {
	SubmissionID uint `json:"submission_id" binding:"required"`
	Points       *int `json:"points" binding:"required"`
}

func (h *TaskHandler) Rate(c *gin.Context) {
	var req RateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request body",
			Details: err.Error(),
		})
		return
	}

	h.LogRequest(c, "Rating submission", "submission_id", req.SubmissionID, "points", *req.Points)

	if err := h.submissions.Rate(c.Request.Context(), req.SubmissionID, *req.Points); err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.scoring.InvalidateCache(c.Request.Context())
	c.JSON(http.StatusOK, SuccessResponse{Message: "Rating saved"})
}

func (h *TaskHandler) handleServiceError(c *gin.Context, err error) {
	var validationErrors services.ValidationErrors
	if errors.As(err, &validationErrors) {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Validation failed",
			Details: validationErrors,
		})
		return
	}
	var validationError *services.ValidationError
	if errors.As(err, &validationError) {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: validationError.Message,
			Details: validationError,
		})
		return
	}

	switch {
	case errors.Is(err, services.ErrTaskNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Message: "Task not found"})
	case errors.Is(err, services.ErrSubmissionNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Message: "Submission not found"})
	case errors.Is(err, services.ErrSessionNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Message: "Session not found"})
	case errors.Is(err, services.ErrAlreadySubmitted):
		c.JSON(http.StatusConflict, ErrorResponse{Message: "Task already submitted"})
	case errors.Is(err, services.ErrAlreadyRated):
		c.JSON(http.StatusConflict, ErrorResponse{Message: "Submission already rated"})
	case errors.Is(err, services.ErrNoParticipantForSession):
		c.JSON(http.StatusUnprocessableEntity, ErrorResponse{Message: "No participant associated with this submission"})
	case errors.Is(err, services.ErrInvalidFileType):
		c.JSON(http.StatusBadRequest, ErrorResponse{Message: "Only jpeg, png and webp images are accepted"})
	case errors.Is(err, services.ErrFileTooLarge):
		c.JSON(http.StatusRequestEntityTooLarge, ErrorResponse{Message: "File too large"})
	default:
		h.LogError(c, err, "Unhandled service error")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Message: "Internal server error"})
	}
}
