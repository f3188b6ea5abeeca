package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/CityQuest-2025/quest-service/internal/services"
	"github.com/CityQuest-2025/quest-service/internal/storage"
	"github.com/CityQuest-2025/quest-service/internal/utils"
)

type HandlerManager struct {
	playHandler  *PlayHandler
	taskHandler  *TaskHandler
	adminHandler *AdminHandler

	adminAuth gin.HandlerFunc
	uploads   storage.UploadStore
}

type Services struct {
	Assignment  services.AssignmentService
	Scoring     services.ScoringService
	Raffle      services.RaffleService
	Game        services.GameService
	Participant services.ParticipantService
	Question    services.QuestionService
	Submission  services.SubmissionService
	Export      services.ExportService
	Box         services.BoxService
	Admin       services.AdminService
}

func NewHandlerManager(svc Services, uploads storage.UploadStore, logger utils.Logger) *HandlerManager {
	return &HandlerManager{
		playHandler: NewPlayHandler(
			svc.Assignment, svc.Submission, svc.Participant,
			svc.Scoring, svc.Game, svc.Question, svc.Box, logger),
		taskHandler: NewTaskHandler(svc.Submission, svc.Scoring, logger),
		adminHandler: NewAdminHandler(
			svc.Game, svc.Participant, svc.Question, svc.Raffle,
			svc.Scoring, svc.Export, svc.Box, svc.Admin, logger),
		adminAuth: AdminAuth(svc.Admin, logger),
		uploads:   uploads,
	}
}

// SetupRoutes sets up all API routes
func (hm *HandlerManager) SetupRoutes(router *gin.Engine) {
	router.GET("/health", HealthCheck)
	router.Static("/uploads", hm.uploads.Dir())

	api := router.Group("/api")
	{
		api.POST("/scan", hm.playHandler.Scan)
		api.POST("/answer", hm.playHandler.SubmitAnswer)
		api.GET("/leaderboard", hm.playHandler.Leaderboard)
		api.POST("/session", hm.playHandler.CreateSession)
		api.POST("/participant/register", hm.playHandler.Register)
		api.GET("/game/status", hm.playHandler.GameStatus)
		api.GET("/settings/language", hm.playHandler.DefaultLanguage)
		api.GET("/quest/:quest_id", hm.playHandler.QuestPreview)
		api.GET("/boxes", hm.playHandler.ListBoxes)
		api.POST("/tasks/submit", hm.taskHandler.Submit)

		admin := api.Group("/admin", hm.adminAuth)
		{
			admin.POST("/game/start", hm.adminHandler.StartGame)
			admin.POST("/game/end", hm.adminHandler.EndGame)
			admin.GET("/game/status", hm.adminHandler.GameStatus)

			admin.POST("/settings/language", hm.adminHandler.SetLanguage)
			admin.GET("/settings/timeouts", hm.adminHandler.Timeouts)
			admin.POST("/settings/timeouts", hm.adminHandler.SetTimeouts)
			admin.POST("/password", hm.adminHandler.ChangePassword)

			admin.POST("/participants", hm.adminHandler.CreateParticipant)
			admin.GET("/participants", hm.adminHandler.ListParticipants)
			admin.DELETE("/participants/:id", hm.adminHandler.DeleteParticipant)
			admin.DELETE("/participants", hm.adminHandler.DeleteAllParticipants)
			admin.POST("/participants/import", hm.adminHandler.ImportParticipants)

			admin.POST("/questions", hm.adminHandler.CreateQuestion)
			admin.GET("/questions", hm.adminHandler.ListQuestions)
			admin.GET("/tasks", hm.adminHandler.ListTasks)
			admin.DELETE("/questions/:id", hm.adminHandler.DeleteQuestion)
			admin.DELETE("/questions", hm.adminHandler.DeleteAllQuestions)
			admin.DELETE("/tasks", hm.adminHandler.DeleteAllTasks)
			admin.POST("/questions/reset-used", hm.adminHandler.ResetUsed)
			admin.POST("/questions/import/survey", hm.adminHandler.ImportSurvey)
			admin.POST("/questions/import/tasks", hm.adminHandler.ImportTasks)
			admin.POST("/questions/import/excel", hm.adminHandler.ImportQuestionsExcel)
			admin.GET("/leaderboard/export", hm.adminHandler.ExportLeaderboard)

			admin.POST("/qrcodes", hm.adminHandler.CreateQRCode)
			admin.GET("/qrcodes", hm.adminHandler.ListQRCodes)

			admin.POST("/codewords", hm.adminHandler.CreateCodeWord)
			admin.GET("/codewords", hm.adminHandler.ListCodeWords)
			admin.DELETE("/codewords/:id", hm.adminHandler.DeleteCodeWord)
			admin.DELETE("/codewords", hm.adminHandler.DeleteAllCodeWords)
			admin.POST("/codewords/import", hm.adminHandler.ImportCodeWords)

			admin.POST("/raffle", hm.adminHandler.DrawRaffle)

			admin.GET("/tasks/summary", hm.taskHandler.Summary)
			admin.GET("/tasks/:question_id/submissions", hm.taskHandler.ListSubmissions)
			admin.POST("/tasks/rate", hm.taskHandler.Rate)

			admin.GET("/boxes", hm.adminHandler.ListBoxes)
			admin.POST("/boxes/count", hm.adminHandler.SetBoxCount)
			admin.POST("/boxes/:box_index/hint", hm.adminHandler.UploadBoxHint)
		}
	}
}

func HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
