package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/CityQuest-2025/quest-service/internal/services"
	"github.com/CityQuest-2025/quest-service/internal/utils"
)

// AdminHandler covers the authenticated management surface: game control,
// content management, imports and the raffle.
type AdminHandler struct {
	BaseHandler
	game         services.GameService
	participants services.ParticipantService
	questions    services.QuestionService
	raffle       services.RaffleService
	scoring      services.ScoringService
	export       services.ExportService
	boxes        services.BoxService
	admins       services.AdminService
}

func NewAdminHandler(
	game services.GameService,
	participants services.ParticipantService,
	questions services.QuestionService,
	raffle services.RaffleService,
	scoring services.ScoringService,
	export services.ExportService,
	boxes services.BoxService,
	admins services.AdminService,
	logger utils.Logger,
) *AdminHandler {
	return &AdminHandler{
		BaseHandler:  NewBaseHandler(logger),
		game:         game,
		participants: participants,
		questions:    questions,
		raffle:       raffle,
		scoring:      scoring,
		export:       export,
		boxes:        boxes,
		admins:       admins,
	}
}

// ===== GAME CONTROL =====

func (h *AdminHandler) StartGame(c *gin.Context) {
	h.LogRequest(c, "Starting game")
	if err := h.game.Start(c.Request.Context()); err != nil {
		h.handleServiceError(c, err)
		return
	}
	h.scoring.InvalidateCache(c.Request.Context())
	c.JSON(http.StatusOK, SuccessResponse{Message: "Game started"})
}

func (h *AdminHandler) EndGame(c *gin.Context) {
	h.LogRequest(c, "Ending game")
	if err := h.game.End(c.Request.Context()); err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, SuccessResponse{Message: "Game ended"})
}

func (h *AdminHandler) GameStatus(c *gin.Context) {
	status, err := h.game.Status(c.Request.Context())
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, status)
}

// ===== SETTINGS =====

type LanguageRequest struct {
	Language string `json:"language" binding:"required"`
}

func (h *AdminHandler) SetLanguage(c *gin.Context) {
	var req LanguageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Message: "Invalid request body", Details: err.Error()})
		return
	}
	if err := h.game.SetDefaultLanguage(c.Request.Context(), req.Language); err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, SuccessResponse{Message: "Language updated"})
}

func (h *AdminHandler) Timeouts(c *gin.Context) {
	settings, err := h.game.Timeouts(c.Request.Context())
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, settings)
}

func (h *AdminHandler) SetTimeouts(c *gin.Context) {
	var settings services.TimeoutSettings
	if err := c.ShouldBindJSON(&settings); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Message: "Invalid request body", Details: err.Error()})
		return
	}
	if err := h.game.SetTimeouts(c.Request.Context(), &settings); err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, SuccessResponse{Message: "Timeouts updated"})
}

type PasswordRequest struct {
	Username    string `json:"username"`
	NewPassword string `json:"new_password" binding:"required"`
}

func (h *AdminHandler) ChangePassword(c *gin.Context) {
	var req PasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Message: "Invalid request body", Details: err.Error()})
		return
	}
	username := req.Username
	if username == "" {
		username = c.GetString(adminUsernameKey)
	}

	if err := h.admins.ChangePassword(c.Request.Context(), username, req.NewPassword); err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, SuccessResponse{Message: "Password changed"})
}

// ===== PARTICIPANTS =====

type CreateParticipantRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (h *AdminHandler) CreateParticipant(c *gin.Context) {
	var req CreateParticipantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Message: "Invalid request body", Details: err.Error()})
		return
	}

	id, err := h.participants.Create(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"id": id, "username": req.Username})
}

func (h *AdminHandler) ListParticipants(c *gin.Context) {
	participants, err := h.participants.List(c.Request.Context())
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	type participantView struct {
		ID           uint   `json:"id"`
		Username     string `json:"username"`
		Language     string `json:"language"`
		CorrectCount int    `json:"correct_count"`
	}
	views := make([]participantView, 0, len(participants))
	for _, p := range participants {
		views = append(views, participantView{
			ID:           p.ID,
			Username:     p.Username,
			Language:     p.Language,
			CorrectCount: p.CorrectCount,
		})
	}
	c.JSON(http.StatusOK, gin.H{"participants": views})
}

func (h *AdminHandler) DeleteParticipant(c *gin.Context) {
	id := parseUintParam(c, "id")
	if id == 0 {
		return
	}
	if err := h.participants.Delete(c.Request.Context(), id); err != nil {
		h.handleServiceError(c, err)
		return
	}
	h.scoring.InvalidateCache(c.Request.Context())
	c.JSON(http.StatusOK, SuccessResponse{Message: "Participant deleted"})
}

func (h *AdminHandler) DeleteAllParticipants(c *gin.Context) {
	if err := h.participants.DeleteAll(c.Request.Context()); err != nil {
		h.handleServiceError(c, err)
		return
	}
	h.scoring.InvalidateCache(c.Request.Context())
	c.JSON(http.StatusOK, SuccessResponse{Message: "All participants deleted"})
}

func (h *AdminHandler) ImportParticipants(c *gin.Context) {
	content, ok := readUploadText(c, "file")
	if !ok {
		return
	}

	summary, err := h.participants.ImportFromText(c.Request.Context(), content)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

// ===== QUESTIONS & CODES =====

func (h *AdminHandler) CreateQuestion(c *gin.Context) {
	var input services.CreateQuestionInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Message: "Invalid request body", Details: err.Error()})
		return
	}

	question, err := h.questions.Create(c.Request.Context(), &input)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, question)
}

func (h *AdminHandler) ListQuestions(c *gin.Context) {
	questions, err := h.questions.ListQuestions(c.Request.Context())
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"questions": questions})
}

func (h *AdminHandler) ListTasks(c *gin.Context) {
	tasks, err := h.questions.ListTasks(c.Request.Context())
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"tasks": tasks})
}

func (h *AdminHandler) DeleteQuestion(c *gin.Context) {
	id := parseUintParam(c, "id")
	if id == 0 {
		return
	}
	if err := h.questions.Delete(c.Request.Context(), id); err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, SuccessResponse{Message: "Question deleted"})
}

func (h *AdminHandler) DeleteAllQuestions(c *gin.Context) {
	if err := h.questions.DeleteAllQuestions(c.Request.Context()); err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, SuccessResponse{Message: "All questions deleted"})
}

func (h *AdminHandler) DeleteAllTasks(c *gin.Context) {
	if err := h.questions.DeleteAllTasks(c.Request.Context()); err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, SuccessResponse{Message: "All tasks deleted"})
}

func (h *AdminHandler) ResetUsed(c *gin.Context) {
	if err := h.questions.ResetUsed(c.Request.Context()); err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, SuccessResponse{Message: "Used flags reset"})
}

func (h *AdminHandler) ImportSurvey(c *gin.Context) {
	content, ok := readUploadText(c, "file")
	if !ok {
		return
	}
	questID := parseIntQuery(c, "quest_id", 0)

	summary, err := h.questions.ImportSurvey(c.Request.Context(), content, questID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

func (h *AdminHandler) ImportTasks(c *gin.Context) {
	content, ok := readUploadText(c, "file")
	if !ok {
		return
	}
	questID := parseIntQuery(c, "quest_id", 0)

	summary, err := h.questions.ImportTasks(c.Request.Context(), content, questID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

func (h *AdminHandler) ImportQuestionsExcel(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Message: "Missing file upload", Details: err.Error()})
		return
	}
	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Message: "Invalid file upload", Details: err.Error()})
		return
	}
	defer file.Close()

	summary, err := h.export.ImportQuestionsFromExcel(c.Request.Context(), file)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

func (h *AdminHandler) ExportLeaderboard(c *gin.Context) {
	data, err := h.export.ExportLeaderboard(c.Request.Context())
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="leaderboard.xlsx"`)
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", data)
}

type CreateQRCodeRequest struct {
	Code    int `json:"code" binding:"required"`
	QuestID int `json:"quest_id"`
}

func (h *AdminHandler) CreateQRCode(c *gin.Context) {
	var req CreateQRCodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Message: "Invalid request body", Details: err.Error()})
		return
	}

	qr, err := h.questions.CreateQRCode(c.Request.Context(), req.Code, req.QuestID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, qr)
}

func (h *AdminHandler) ListQRCodes(c *gin.Context) {
	codes, err := h.questions.ListQRCodes(c.Request.Context())
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"qrcodes": codes})
}

type CreateCodeWordRequest struct {
	Word string `json:"word" binding:"required"`
}

func (h *AdminHandler) CreateCodeWord(c *gin.Context) {
	var req CreateCodeWordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Message: "Invalid request body", Details: err.Error()})
		return
	}

	word, err := h.questions.CreateCodeWord(c.Request.Context(), req.Word)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, word)
}

func (h *AdminHandler) ListCodeWords(c *gin.Context) {
	words, err := h.questions.ListCodeWords(c.Request.Context())
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"code_words": words})
}

func (h *AdminHandler) DeleteCodeWord(c *gin.Context) {
	id := parseUintParam(c, "id")
	if id == 0 {
		return
	}
	if err := h.questions.DeleteCodeWord(c.Request.Context(), id); err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, SuccessResponse{Message: "Code word deleted"})
}

func (h *AdminHandler) DeleteAllCodeWords(c *gin.Context) {
	if err := h.questions.DeleteAllCodeWords(c.Request.Context()); err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, SuccessResponse{Message: "All code words deleted"})
}

func (h *AdminHandler) ImportCodeWords(c *gin.Context) {
	content, ok := readUploadText(c, "file")
	if !ok {
		return
	}

	summary, err := h.questions.ImportCodeWords(c.Request.Context(), content)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

// ===== RAFFLE =====

type RaffleRequest struct {
	WinnerCount int `json:"winner_count" binding:"required"`
}

func (h *AdminHandler) DrawRaffle(c *gin.Context) {
	var req RaffleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Message: "Invalid request body", Details: err.Error()})
		return
	}

	h.LogRequest(c, "Drawing raffle", "winner_count", req.WinnerCount)

	winners, err := h.raffle.Draw(c.Request.Context(), req.WinnerCount)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"winners": winners})
}

// ===== BOXES =====

func (h *AdminHandler) ListBoxes(c *gin.Context) {
	boxes, err := h.boxes.List(c.Request.Context())
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"boxes": boxes})
}

type BoxCountRequest struct {
	Count *int `json:"count" binding:"required"`
}

func (h *AdminHandler) SetBoxCount(c *gin.Context) {
	var req BoxCountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Message: "Invalid request body", Details: err.Error()})
		return
	}
	if err := h.boxes.SetCount(c.Request.Context(), *req.Count); err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, SuccessResponse{Message: "Box count updated"})
}

func (h *AdminHandler) UploadBoxHint(c *gin.Context) {
	boxIndex, ok := parseIntParam(c, "box_index")
	if !ok {
		return
	}
	filename, payload, ok := readUploadFile(c, "file")
	if !ok {
		return
	}

	box, err := h.boxes.SetHint(c.Request.Context(), boxIndex, filename, payload)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, box)
}

// ===== ERROR MAPPING =====

func (h *AdminHandler) handleServiceError(c *gin.Context, err error) {
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
	var conflictError *services.ConflictError
	if errors.As(err, &conflictError) {
		c.JSON(http.StatusConflict, ErrorResponse{Message: conflictError.Message})
		return
	}

	switch {
	case errors.Is(err, services.ErrParticipantNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Message: "Participant not found"})
	case errors.Is(err, services.ErrParticipantExists):
		c.JSON(http.StatusConflict, ErrorResponse{Message: "Username already exists"})
	case errors.Is(err, services.ErrQuestionNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Message: "Question not found"})
	case errors.Is(err, services.ErrQRCodeExists):
		c.JSON(http.StatusConflict, ErrorResponse{Message: "Code already exists"})
	case errors.Is(err, services.ErrCodeWordExists):
		c.JSON(http.StatusConflict, ErrorResponse{Message: "Word already exists"})
	case errors.Is(err, services.ErrCodeWordNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Message: "Code word not found"})
	case errors.Is(err, services.ErrAdminNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Message: "Admin user not found"})
	case errors.Is(err, services.ErrNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Message: "Not found"})
	case errors.Is(err, services.ErrInvalidFileType):
		c.JSON(http.StatusBadRequest, ErrorResponse{Message: "Only jpeg, png and webp images are accepted"})
	case errors.Is(err, services.ErrFileTooLarge):
		c.JSON(http.StatusRequestEntityTooLarge, ErrorResponse{Message: "File too large"})
	default:
		h.LogError(c, err, "Unhandled service error")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Message: "Internal server error"})
	}
}
