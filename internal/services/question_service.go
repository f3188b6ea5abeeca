package services

import (
	"bufio"
	"context"
	"fmt"
	"math/rand"
	"strconv"
	"strings"
	"sync"

	"gorm.io/datatypes"

	"github.com/CityQuest-2025/quest-service/internal/models"
	"github.com/CityQuest-2025/quest-service/internal/repositories"
	"github.com/CityQuest-2025/quest-service/internal/utils"
)

type CreateQuestionInput struct {
	Text          string   `json:"text" validate:"required,min=1"`
	CorrectAnswer string   `json:"correct_answer"`
	Options       []string `json:"options"`
	QuestID       int      `json:"quest_id" validate:"min=0"`
	IsTask        bool     `json:"is_task"`
}

type QuestionService interface {
	Create(ctx context.Context, input *CreateQuestionInput) (*models.Question, error)
	ListQuestions(ctx context.Context) ([]*models.Question, error)
	ListTasks(ctx context.Context) ([]*models.Question, error)
	// Delete removes a question with everything referencing it: answers,
	// served records and, for tasks, submissions plus their uploaded files.
	Delete(ctx context.Context, id uint) error
	DeleteAllQuestions(ctx context.Context) error
	DeleteAllTasks(ctx context.Context) error
	// ResetUsed clears the global used flag on every question so a new game
	// can reuse the same pool.
	ResetUsed(ctx context.Context) error

	// Preview returns a uniformly random question of a quest without touching
	// scan or served state.
	Preview(ctx context.Context, questID int) (*models.Question, error)

	CreateQRCode(ctx context.Context, code, questID int) (*models.QRCode, error)
	ListQRCodes(ctx context.Context) ([]*models.QRCode, error)

	CreateCodeWord(ctx context.Context, word string) (*models.CodeWord, error)
	ListCodeWords(ctx context.Context) ([]*models.CodeWord, error)
	DeleteCodeWord(ctx context.Context, id uint) error
	DeleteAllCodeWords(ctx context.Context) error

	// ImportSurvey parses 6-line blocks: question text, four options, and the
	// 1-based index of the correct option.
	ImportSurvey(ctx context.Context, content string, questID int) (*ImportSummary, error)
	// ImportTasks reads one task description per line.
	ImportTasks(ctx context.Context, content string, questID int) (*ImportSummary, error)
	// ImportCodeWords reads one word per line, deduplicating case-insensitively.
	ImportCodeWords(ctx context.Context, content string) (*ImportSummary, error)
}

type questionService struct {
	repo    repositories.Repository
	uploads uploadRemover
	logger  utils.Logger

	randMu sync.Mutex
	rng    *rand.Rand
}

// uploadRemover is the slice of storage.UploadStore the cascade needs.
type uploadRemover interface {
	Remove(filename string) error
}

func NewQuestionService(repo repositories.Repository, uploads uploadRemover, logger utils.Logger, rng *rand.Rand) QuestionService {
	return &questionService{
		repo:    repo,
		uploads: uploads,
		logger:  logger,
		rng:     rng,
	}
}

func (s *questionService) Create(ctx context.Context, input *CreateQuestionInput) (*models.Question, error) {
	if strings.TrimSpace(input.Text) == "" {
		return nil, NewValidationError("text", "is required", input.Text)
	}

	question := &models.Question{
		Text:          strings.TrimSpace(input.Text),
		CorrectAnswer: strings.TrimSpace(input.CorrectAnswer),
		Options:       datatypes.JSONSlice[string](input.Options),
		QuestID:       input.QuestID,
		IsTask:        input.IsTask,
	}
	if err := s.repo.Questions().Create(ctx, question); err != nil {
		return nil, fmt.Errorf("creating question failed: %w", err)
	}
	return question, nil
}

func (s *questionService) ListQuestions(ctx context.Context) ([]*models.Question, error) {
	isTask := false
	return s.repo.Questions().List(ctx, repositories.QuestionFilters{IsTask: &isTask})
}

func (s *questionService) ListTasks(ctx context.Context) ([]*models.Question, error) {
	isTask := true
	return s.repo.Questions().List(ctx, repositories.QuestionFilters{IsTask: &isTask})
}

func (s *questionService) Delete(ctx context.Context, id uint) error {
	question, err := s.repo.Questions().GetByID(ctx, id)
	if err != nil {
		return fmt.Errorf("question lookup failed: %w", err)
	}
	if question == nil {
		return ErrQuestionNotFound
	}
	return s.deleteQuestions(ctx, []*models.Question{question})
}

func (s *questionService) DeleteAllQuestions(ctx context.Context) error {
	isTask := false
	questions, err := s.repo.Questions().List(ctx, repositories.QuestionFilters{IsTask: &isTask})
	if err != nil {
		return fmt.Errorf("question list failed: %w", err)
	}
	return s.deleteQuestions(ctx, questions)
}

func (s *questionService) DeleteAllTasks(ctx context.Context) error {
	isTask := true
	tasks, err := s.repo.Questions().List(ctx, repositories.QuestionFilters{IsTask: &isTask})
	if err != nil {
		return fmt.Errorf("task list failed: %w", err)
	}
	return s.deleteQuestions(ctx, tasks)
}

func (s *questionService) deleteQuestions(ctx context.Context, questions []*models.Question) error {
	if len(questions) == 0 {
		return nil
	}
	ids := make([]uint, 0, len(questions))
	for _, question := range questions {
		ids = append(ids, question.ID)
	}

	var orphanFiles []string
	err := s.repo.WithTx(ctx, func(tx repositories.Repository) error {
		submissions, err := tx.Submissions().ListByQuestionIDs(ctx, ids)
		if err != nil {
			return err
		}
		var submissionIDs []uint
		for _, submission := range submissions {
			orphanFiles = append(orphanFiles, submission.Filename)
			submissionIDs = append(submissionIDs, submission.ID)
		}
		if err := tx.Submissions().DeleteByIDs(ctx, submissionIDs); err != nil {
			return err
		}
		if err := tx.Answers().DeleteByQuestionIDs(ctx, ids); err != nil {
			return err
		}
		if err := tx.Served().DeleteByQuestionIDs(ctx, ids); err != nil {
			return err
		}
		return tx.Questions().DeleteByIDs(ctx, ids)
	})
	if err != nil {
		return err
	}

	if s.uploads != nil {
		for _, filename := range orphanFiles {
			if err := s.uploads.Remove(filename); err != nil {
				s.logger.Warn("removing upload failed", "filename", filename, "error", err)
			}
		}
	}
	s.logger.Info("questions deleted", "count", len(ids))
	return nil
}

func (s *questionService) ResetUsed(ctx context.Context) error {
	return s.repo.Questions().ResetUsed(ctx)
}

func (s *questionService) Preview(ctx context.Context, questID int) (*models.Question, error) {
	questions, err := s.repo.Questions().List(ctx, repositories.QuestionFilters{QuestID: &questID})
	if err != nil {
		return nil, fmt.Errorf("question list failed: %w", err)
	}
	if len(questions) == 0 {
		return nil, ErrQuestionNotFound
	}
	s.randMu.Lock()
	idx := s.rng.Intn(len(questions))
	s.randMu.Unlock()
	return questions[idx], nil
}

func (s *questionService) CreateQRCode(ctx context.Context, code, questID int) (*models.QRCode, error) {
	if code <= 0 {
		return nil, NewValidationError("code", "must be a positive number", code)
	}
	existing, err := s.repo.QRCodes().GetByCode(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("qr lookup failed: %w", err)
	}
	if existing != nil {
		return nil, ErrQRCodeExists
	}

	qr := &models.QRCode{Code: code, QuestID: questID}
	if err := s.repo.QRCodes().Create(ctx, qr); err != nil {
		return nil, fmt.Errorf("creating qr code failed: %w", err)
	}
	return qr, nil
}

func (s *questionService) ListQRCodes(ctx context.Context) ([]*models.QRCode, error) {
	return s.repo.QRCodes().List(ctx)
}

func (s *questionService) CreateCodeWord(ctx context.Context, word string) (*models.CodeWord, error) {
	word = strings.TrimSpace(word)
	if word == "" {
		return nil, NewValidationError("word", "is required", word)
	}
	existing, err := s.repo.CodeWords().GetByWord(ctx, word)
	if err != nil {
		return nil, fmt.Errorf("code word lookup failed: %w", err)
	}
	if existing != nil {
		return nil, ErrCodeWordExists
	}

	codeWord := &models.CodeWord{Word: word}
	if err := s.repo.CodeWords().Create(ctx, codeWord); err != nil {
		return nil, fmt.Errorf("creating code word failed: %w", err)
	}
	return codeWord, nil
}

func (s *questionService) ListCodeWords(ctx context.Context) ([]*models.CodeWord, error) {
	return s.repo.CodeWords().List(ctx)
}

func (s *questionService) DeleteCodeWord(ctx context.Context, id uint) error {
	existing, err := s.repo.CodeWords().GetByID(ctx, id)
	if err != nil {
		return fmt.Errorf("code word lookup failed: %w", err)
	}
	if existing == nil {
		return ErrCodeWordNotFound
	}
	return s.repo.CodeWords().Delete(ctx, id)
}

func (s *questionService) DeleteAllCodeWords(ctx context.Context) error {
	return s.repo.CodeWords().DeleteAll(ctx)
}

func (s *questionService) ImportSurvey(ctx context.Context, content string, questID int) (*ImportSummary, error) {
	summary := &ImportSummary{Errors: []ImportError{}}

	lines, err := readLines(content)
	if err != nil {
		return nil, err
	}

	for start := 0; start+6 <= len(lines); start += 6 {
		block := lines[start : start+6]
		text := block[0]
		options := block[1:5]

		correctIdx, err := strconv.Atoi(block[5])
		if err != nil || correctIdx < 1 || correctIdx > 4 {
			summary.Errors = append(summary.Errors, ImportError{
				Line:   start + 6,
				Reason: "Correct index must be 1-4",
			})
			continue
		}

		exists, err := s.repo.Questions().ExistsByText(ctx, text, false)
		if err != nil {
			return nil, fmt.Errorf("question lookup failed: %w", err)
		}
		if exists {
			summary.Skipped++
			continue
		}

		question := &models.Question{
			Text:          text,
			CorrectAnswer: options[correctIdx-1],
			Options:       datatypes.JSONSlice[string](options),
			QuestID:       questID,
		}
		if err := s.repo.Questions().Create(ctx, question); err != nil {
			summary.Errors = append(summary.Errors, ImportError{Line: start + 1, Reason: err.Error()})
			continue
		}
		summary.Created++
	}
	if rem := len(lines) % 6; rem != 0 {
		summary.Errors = append(summary.Errors, ImportError{
			Line:   len(lines),
			Reason: fmt.Sprintf("Incomplete block of %d lines", rem),
		})
	}

	s.logger.Info("survey imported", "created", summary.Created, "skipped", summary.Skipped)
	return summary, nil
}

func (s *questionService) ImportTasks(ctx context.Context, content string, questID int) (*ImportSummary, error) {
	summary := &ImportSummary{Errors: []ImportError{}}

	lines, err := readLines(content)
	if err != nil {
		return nil, err
	}

	for i, text := range lines {
		exists, err := s.repo.Questions().ExistsByText(ctx, text, true)
		if err != nil {
			return nil, fmt.Errorf("task lookup failed: %w", err)
		}
		if exists {
			summary.Skipped++
			continue
		}
		task := &models.Question{
			Text:    text,
			QuestID: questID,
			IsTask:  true,
		}
		if err := s.repo.Questions().Create(ctx, task); err != nil {
			summary.Errors = append(summary.Errors, ImportError{Line: i + 1, Reason: err.Error()})
			continue
		}
		summary.Created++
	}

	s.logger.Info("tasks imported", "created", summary.Created, "skipped", summary.Skipped)
	return summary, nil
}

func (s *questionService) ImportCodeWords(ctx context.Context, content string) (*ImportSummary, error) {
	summary := &ImportSummary{Errors: []ImportError{}}

	lines, err := readLines(content)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool)
	for i, word := range lines {
		key := strings.ToLower(word)
		if seen[key] {
			summary.Skipped++
			continue
		}
		seen[key] = true

		existing, err := s.repo.CodeWords().GetByWord(ctx, word)
		if err != nil {
			return nil, fmt.Errorf("code word lookup failed: %w", err)
		}
		if existing != nil {
			summary.Skipped++
			continue
		}
		if err := s.repo.CodeWords().Create(ctx, &models.CodeWord{Word: word}); err != nil {
			summary.Errors = append(summary.Errors, ImportError{Line: i + 1, Reason: err.Error()})
			continue
		}
		summary.Created++
	}

	s.logger.Info("code words imported", "created", summary.Created, "skipped", summary.Skipped)
	return summary, nil
}

// readLines splits an upload into trimmed non-empty lines.
func readLines(content string) ([]string, error) {
	var lines []string
	scanner := bufio.NewScanner(strings.NewReader(content))
	for scanner.Scan() {
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}
		lines = append(lines, text)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading import failed: %w", err)
	}
	return lines, nil
}
