package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/CityQuest-2025/quest-service/internal/services"
	"github.com/CityQuest-2025/quest-service/internal/utils"
)

// PlayHandler serves the participant-facing endpoints: scanning, answering,
// session binding and the public read views.
type PlayHandler struct {
	BaseHandler
	assignments  services.AssignmentService
	submissions  services.SubmissionService
	participants services.ParticipantService
	scoring      services.ScoringService
	game         services.GameService
	questions    services.QuestionService
	boxes        services.BoxService
}

func NewPlayHandler(
	assignments services.AssignmentService,
	submissions services.SubmissionService,
	participants services.ParticipantService,
	scoring services.ScoringService,
	game services.GameService,
	questions services.QuestionService,
	boxes services.BoxService,
	logger utils.Logger,
) *PlayHandler {
	return &PlayHandler{
		BaseHandler:  NewBaseHandler(logger),
		assignments:  assignments,
		submissions:  submissions,
		participants: participants,
		scoring:      scoring,
		game:         game,
		questions:    questions,
		boxes:        boxes,
	}
}

type ScanRequest struct {
	SessionID string `json:"session_id" binding:"required"`
	Code      string `json:"code" binding:"required"`
}

// Scan resolves a scanned QR payload or code word into a question.
func (h *PlayHandler) Scan(c *gin.Context) {
	var req ScanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request body",
			Details: err.Error(),
		})
		return
	}

	h.LogRequest(c, "Processing scan", "session_id", req.SessionID)

	result, err := h.assignments.Assign(c.Request.Context(), req.SessionID, req.Code)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

type AnswerRequest struct {
	SessionID  string `json:"session_id" binding:"required"`
	QuestionID uint   `json:"question_id" binding:"required"`
	Answer     string `json:"answer"`
}

func (h *PlayHandler) SubmitAnswer(c *gin.Context) {
	var req AnswerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request body",
			Details: err.Error(),
		})
		return
	}

	h.LogRequest(c, "Processing answer", "session_id", req.SessionID, "question_id", req.QuestionID)

	result, err := h.submissions.SubmitAnswer(c.Request.Context(), req.SessionID, req.QuestionID, req.Answer)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.scoring.InvalidateCache(c.Request.Context())
	c.JSON(http.StatusOK, result)
}

func (h *PlayHandler) Leaderboard(c *gin.Context) {
	entries, err := h.scoring.Leaderboard(c.Request.Context())
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"leaderboard": entries})
}

type SessionRequest struct {
	SessionID string `json:"session_id" binding:"required"`
	Username  string `json:"username" binding:"required"`
}

func (h *PlayHandler) CreateSession(c *gin.Context) {
	var req SessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request body",
			Details: err.Error(),
		})
		return
	}

	if err := h.participants.BindSession(c.Request.Context(), req.Username, req.SessionID); err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, SuccessResponse{Message: "Session saved"})
}

type RegisterRequest struct {
	SessionID string `json:"session_id" binding:"required"`
	Username  string `json:"username" binding:"required"`
	Password  string `json:"password" binding:"required"`
}

func (h *PlayHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request body",
			Details: err.Error(),
		})
		return
	}

	h.LogRequest(c, "Participant login", "username", req.Username)

	if err := h.participants.Login(c.Request.Context(), req.Username, req.Password, req.SessionID); err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, SuccessResponse{Message: "Logged in"})
}

func (h *PlayHandler) GameStatus(c *gin.Context) {
	status, err := h.game.Status(c.Request.Context())
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, status)
}

func (h *PlayHandler) DefaultLanguage(c *gin.Context) {
	language, err := h.game.DefaultLanguage(c.Request.Context())
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"language": language})
}

// QuestPreview returns a random question of a quest without consuming it.
func (h *PlayHandler) QuestPreview(c *gin.Context) {
	questID, ok := parseIntParam(c, "quest_id")
	if !ok {
		return
	}

	question, err := h.questions.Preview(c.Request.Context(), questID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, question)
}

func (h *PlayHandler) ListBoxes(c *gin.Context) {
	boxes, err := h.boxes.List(c.Request.Context())
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	type boxView struct {
		BoxIndex int     `json:"box_index"`
		HintURL  *string `json:"hint_url"`
	}
	views := make([]boxView, 0, len(boxes))
	for _, box := range boxes {
		view := boxView{BoxIndex: box.BoxIndex}
		if box.HintFilename != nil {
			url := "/uploads/" + *box.HintFilename
			view.HintURL = &url
		}
		views = append(views, view)
	}
	c.JSON(http.StatusOK, gin.H{"boxes": views})
}

func (h *PlayHandler) handleServiceError(c *gin.Context, err error) {
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
	case errors.Is(err, services.ErrSessionNotFound):
		c.JSON(http.StatusUnauthorized, ErrorResponse{Message: "Unknown session"})
	case errors.Is(err, services.ErrQuestionNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Message: "Question not found"})
	case errors.Is(err, services.ErrRegistrationDisabled):
		c.JSON(http.StatusForbidden, ErrorResponse{Message: "Registration disabled; contact an administrator"})
	case errors.Is(err, services.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, ErrorResponse{Message: "Invalid credentials"})
	default:
		h.LogError(c, err, "Unhandled service error")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Message: "Internal server error"})
	}
}
