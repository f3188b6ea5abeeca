package repositories

import (
	"context"

	"github.com/CityQuest-2025/quest-service/internal/models"
)

// ===== SHARED FILTER STRUCTS =====

type QuestionFilters struct {
	IsTask  *bool `json:"is_task"`
	QuestID *int  `json:"quest_id"`
	Limit   int   `json:"limit"`
	Offset  int   `json:"offset"`
}

// CandidateFilters selects the questions eligible for an assignment: nothing
// already answered by or served to the session, and only tasks or globally
// unused questions. A nil QuestID spans all quests (word / "random" triggers).
type CandidateFilters struct {
	SessionID string `json:"session_id"`
	QuestID   *int   `json:"quest_id"`
}

// ===== SHARED AGGREGATE ROWS =====

// ScoreRow is one leaderboard aggregation row per username.
type ScoreRow struct {
	Username     string `json:"username"`
	TotalAnswers int    `json:"total_answers"`
	AutoCorrect  int    `json:"auto_correct"`
	Awarded      int    `json:"awarded"`
}

// RaffleRow carries the auto-scored correct count feeding raffle weights.
// Admin-awarded points are deliberately absent.
type RaffleRow struct {
	Username    string `json:"username"`
	AutoCorrect int    `json:"auto_correct"`
}

// TaskSummaryRow aggregates submissions per task question.
type TaskSummaryRow struct {
	QuestionID uint `json:"question_id"`
	Total      int  `json:"total"`
	Rated      int  `json:"rated"`
}

// ===== REPOSITORY INTERFACES =====

type SessionRepository interface {
	Upsert(ctx context.Context, username, sessionID string) error
	GetBySessionID(ctx context.Context, sessionID string) (*models.UserSession, error)
	GetByUsernames(ctx context.Context, usernames []string) ([]*models.UserSession, error)
	DeleteBySessionIDs(ctx context.Context, sessionIDs []string) error
}

type QuestionRepository interface {
	Create(ctx context.Context, question *models.Question) error
	GetByID(ctx context.Context, id uint) (*models.Question, error)
	List(ctx context.Context, filters QuestionFilters) ([]*models.Question, error)
	ExistsByText(ctx context.Context, text string, isTask bool) (bool, error)
	// FindCandidates must be called inside a transaction; the postgres
	// implementation locks the returned rows so a concurrent assignment
	// cannot select the same not-yet-used question.
	FindCandidates(ctx context.Context, filters CandidateFilters) ([]*models.Question, error)
	MarkUsed(ctx context.Context, id uint) error
	ResetUsed(ctx context.Context) error
	Delete(ctx context.Context, id uint) error
	DeleteByIDs(ctx context.Context, ids []uint) error
}

type QRCodeRepository interface {
	Create(ctx context.Context, code *models.QRCode) error
	GetByCode(ctx context.Context, code int) (*models.QRCode, error)
	List(ctx context.Context) ([]*models.QRCode, error)
	Delete(ctx context.Context, id uint) error
}

type CodeWordRepository interface {
	Create(ctx context.Context, word *models.CodeWord) error
	GetByID(ctx context.Context, id uint) (*models.CodeWord, error)
	// GetByWord matches case-insensitively.
	GetByWord(ctx context.Context, word string) (*models.CodeWord, error)
	List(ctx context.Context) ([]*models.CodeWord, error)
	MarkUsed(ctx context.Context, id uint) error
	Delete(ctx context.Context, id uint) error
	DeleteAll(ctx context.Context) error
}

type ScanRepository interface {
	Create(ctx context.Context, scan *models.UserScan) error
	Exists(ctx context.Context, sessionID, code string) (bool, error)
	DeleteBySessionIDs(ctx context.Context, sessionIDs []string) error
}

type ServedQuestionRepository interface {
	Create(ctx context.Context, served *models.ServedQuestion) error
	DeleteByQuestionIDs(ctx context.Context, questionIDs []uint) error
	DeleteBySessionIDs(ctx context.Context, sessionIDs []string) error
}

type AnswerRepository interface {
	Create(ctx context.Context, answer *models.UserAnswer) error
	DeleteByQuestionIDs(ctx context.Context, questionIDs []uint) error
	DeleteBySessionIDs(ctx context.Context, sessionIDs []string) error
}

type ParticipantRepository interface {
	Create(ctx context.Context, participant *models.Participant) error
	GetByID(ctx context.Context, id uint) (*models.Participant, error)
	GetByUsername(ctx context.Context, username string) (*models.Participant, error)
	List(ctx context.Context) ([]*models.Participant, error)
	Update(ctx context.Context, participant *models.Participant) error
	UpdateLanguageAll(ctx context.Context, language string) error
	Delete(ctx context.Context, id uint) error
}

type GameStateRepository interface {
	// Get returns nil without error when the singleton row does not exist yet.
	Get(ctx context.Context) (*models.GameState, error)
	Save(ctx context.Context, state *models.GameState) error
}

type SubmissionRepository interface {
	Create(ctx context.Context, submission *models.TaskSubmission) error
	GetByID(ctx context.Context, id uint) (*models.TaskSubmission, error)
	Exists(ctx context.Context, sessionID string, questionID uint) (bool, error)
	ListByQuestion(ctx context.Context, questionID uint) ([]*models.TaskSubmission, error)
	ListByQuestionIDs(ctx context.Context, questionIDs []uint) ([]*models.TaskSubmission, error)
	ListBySessionIDs(ctx context.Context, sessionIDs []string) ([]*models.TaskSubmission, error)
	Update(ctx context.Context, submission *models.TaskSubmission) error
	TaskSummary(ctx context.Context) ([]*TaskSummaryRow, error)
	DeleteByIDs(ctx context.Context, ids []uint) error
}

type BoxRepository interface {
	Create(ctx context.Context, box *models.Box) error
	GetByIndex(ctx context.Context, index int) (*models.Box, error)
	List(ctx context.Context) ([]*models.Box, error)
	Update(ctx context.Context, box *models.Box) error
	DeleteAboveIndex(ctx context.Context, index int) error
}

type AdminRepository interface {
	Create(ctx context.Context, admin *models.AdminUser) error
	GetByUsername(ctx context.Context, username string) (*models.AdminUser, error)
	Update(ctx context.Context, admin *models.AdminUser) error
}

// ScoreRepository exposes the cross-table aggregations used by the leaderboard
// and the raffle. Rows are produced with a left outer join over sessions so
// zero-answer usernames still appear.
type ScoreRepository interface {
	LeaderboardRows(ctx context.Context) ([]*ScoreRow, error)
	RaffleRows(ctx context.Context) ([]*RaffleRow, error)
}

// Repository bundles every store behind one handle. WithTx runs fn against a
// transactional view of the same stores; mutations roll back when fn fails.
type Repository interface {
	Sessions() SessionRepository
	Questions() QuestionRepository
	QRCodes() QRCodeRepository
	CodeWords() CodeWordRepository
	Scans() ScanRepository
	Served() ServedQuestionRepository
	Answers() AnswerRepository
	Participants() ParticipantRepository
	GameState() GameStateRepository
	Submissions() SubmissionRepository
	Boxes() BoxRepository
	Admins() AdminRepository
	Scores() ScoreRepository

	WithTx(ctx context.Context, fn func(Repository) error) error
}
