package services

import (
	"context"
	"fmt"
	"time"

	"github.com/CityQuest-2025/quest-service/internal/events"
	"github.com/CityQuest-2025/quest-service/internal/models"
	"github.com/CityQuest-2025/quest-service/internal/repositories"
	"github.com/CityQuest-2025/quest-service/internal/storage"
	"github.com/CityQuest-2025/quest-service/internal/utils"
)

// AnswerResult is returned to the player after grading.
type AnswerResult struct {
	IsCorrect bool `json:"is_correct"`
}

// SubmissionView is a rated or pending submission joined with its username.
type SubmissionView struct {
	ID         uint      `json:"id"`
	QuestionID uint      `json:"question_id"`
	Username   string    `json:"username"`
	Filename   string    `json:"filename"`
	Rating     *int      `json:"rating"`
	CreatedAt  time.Time `json:"created_at"`
}

// TaskSummary aggregates submissions for one task.
type TaskSummary struct {
	QuestionID uint   `json:"question_id"`
	Text       string `json:"text"`
	Total      int    `json:"total"`
	Rated      int    `json:"rated"`
}

type SubmissionService interface {
	// SubmitAnswer grades an answer against the question's correct answer and
	// records it. Every call inserts a row; answers are never deduplicated.
	SubmitAnswer(ctx context.Context, sessionID string, questionID uint, answer string) (*AnswerResult, error)

	// SubmitTask stores one photo per (session, task). The payload must sniff
	// as jpeg, png or webp and fit the upload cap.
	SubmitTask(ctx context.Context, sessionID string, questionID uint, originalName string, payload []byte) (*models.TaskSubmission, error)

	// Rate assigns 0..5 points to an unrated submission and credits them to
	// the participant behind the submitting session.
	Rate(ctx context.Context, submissionID uint, points int) error

	ListByQuestion(ctx context.Context, questionID uint) ([]*SubmissionView, error)
	Summary(ctx context.Context) ([]*TaskSummary, error)
}

type submissionService struct {
	repo      repositories.Repository
	uploads   storage.UploadStore
	publisher events.EventPublisher
	logger    utils.Logger
	validator *utils.Validator
}

func NewSubmissionService(repo repositories.Repository, uploads storage.UploadStore, publisher events.EventPublisher, logger utils.Logger, validator *utils.Validator) SubmissionService {
	return &submissionService{
		repo:      repo,
		uploads:   uploads,
		publisher: publisher,
		logger:    logger,
		validator: validator,
	}
}

type ratingInput struct {
	Points int `json:"points" validate:"rating_points"`
}

func (s *submissionService) SubmitAnswer(ctx context.Context, sessionID string, questionID uint, answer string) (*AnswerResult, error) {
	if sessionID == "" {
		return nil, ErrSessionNotFound
	}
	question, err := s.repo.Questions().GetByID(ctx, questionID)
	if err != nil {
		return nil, fmt.Errorf("question lookup failed: %w", err)
	}
	if question == nil {
		return nil, ErrQuestionNotFound
	}

	isCorrect := question.CorrectAnswer != "" && answer == question.CorrectAnswer

	record := &models.UserAnswer{
		SessionID:  sessionID,
		QuestionID: questionID,
		Answer:     answer,
		IsCorrect:  isCorrect,
	}
	if err := s.repo.Answers().Create(ctx, record); err != nil {
		return nil, fmt.Errorf("recording answer failed: %w", err)
	}

	s.publish(ctx, events.EventAnswerSubmitted, events.AnswerSubmittedEvent{
		SessionID:  sessionID,
		QuestionID: questionID,
		IsCorrect:  isCorrect,
	})
	return &AnswerResult{IsCorrect: isCorrect}, nil
}

func (s *submissionService) SubmitTask(ctx context.Context, sessionID string, questionID uint, originalName string, payload []byte) (*models.TaskSubmission, error) {
	if sessionID == "" {
		return nil, ErrSessionNotFound
	}
	question, err := s.repo.Questions().GetByID(ctx, questionID)
	if err != nil {
		return nil, fmt.Errorf("task lookup failed: %w", err)
	}
	if question == nil || !question.IsTask {
		return nil, ErrTaskNotFound
	}

	exists, err := s.repo.Submissions().Exists(ctx, sessionID, questionID)
	if err != nil {
		return nil, fmt.Errorf("submission lookup failed: %w", err)
	}
	if exists {
		return nil, ErrAlreadySubmitted
	}

	if len(payload) > storage.MaxUploadBytes {
		return nil, ErrFileTooLarge
	}
	if !storage.ValidContentType(payload) {
		return nil, ErrInvalidFileType
	}

	name := fmt.Sprintf("%s_%d_%d_%s", sessionID, questionID, time.Now().Unix(), originalName)
	saved, err := s.uploads.Save(name, payload)
	if err != nil {
		return nil, fmt.Errorf("storing upload failed: %w", err)
	}

	submission := &models.TaskSubmission{
		SessionID:  sessionID,
		QuestionID: questionID,
		Filename:   saved,
	}
	if err := s.repo.Submissions().Create(ctx, submission); err != nil {
		// keep the disk consistent with the database
		if rmErr := s.uploads.Remove(saved); rmErr != nil {
			s.logger.Warn("removing orphan upload failed", "filename", saved, "error", rmErr)
		}
		return nil, fmt.Errorf("recording submission failed: %w", err)
	}

	s.publish(ctx, events.EventTaskSubmitted, events.TaskSubmittedEvent{
		SessionID:  sessionID,
		QuestionID: questionID,
		Filename:   saved,
	})
	return submission, nil
}

func (s *submissionService) Rate(ctx context.Context, submissionID uint, points int) error {
	if err := s.validator.Struct(&ratingInput{Points: points}); err != nil {
		return err
	}

	var username string
	err := s.repo.WithTx(ctx, func(tx repositories.Repository) error {
		submission, err := tx.Submissions().GetByID(ctx, submissionID)
		if err != nil {
			return fmt.Errorf("submission lookup failed: %w", err)
		}
		if submission == nil {
			return ErrSubmissionNotFound
		}
		if submission.Rating != nil {
			return ErrAlreadyRated
		}

		session, err := tx.Sessions().GetBySessionID(ctx, submission.SessionID)
		if err != nil {
			return fmt.Errorf("session lookup failed: %w", err)
		}
		if session == nil {
			return ErrNoParticipantForSession
		}
		participant, err := tx.Participants().GetByUsername(ctx, session.Username)
		if err != nil {
			return fmt.Errorf("participant lookup failed: %w", err)
		}
		if participant == nil {
			return ErrNoParticipantForSession
		}
		username = participant.Username

		submission.Rating = &points
		if err := tx.Submissions().Update(ctx, submission); err != nil {
			return fmt.Errorf("updating submission failed: %w", err)
		}

		participant.CorrectCount += points
		return tx.Participants().Update(ctx, participant)
	})
	if err != nil {
		return err
	}

	s.publish(ctx, events.EventTaskRated, events.TaskRatedEvent{
		SubmissionID: submissionID,
		Username:     username,
		Points:       points,
	})
	s.logger.Info("submission rated", "submission_id", submissionID, "points", points)
	return nil
}

func (s *submissionService) ListByQuestion(ctx context.Context, questionID uint) ([]*SubmissionView, error) {
	submissions, err := s.repo.Submissions().ListByQuestion(ctx, questionID)
	if err != nil {
		return nil, fmt.Errorf("submission list failed: %w", err)
	}

	views := make([]*SubmissionView, 0, len(submissions))
	for _, submission := range submissions {
		view := &SubmissionView{
			ID:         submission.ID,
			QuestionID: submission.QuestionID,
			Filename:   submission.Filename,
			Rating:     submission.Rating,
			CreatedAt:  submission.CreatedAt,
		}
		session, err := s.repo.Sessions().GetBySessionID(ctx, submission.SessionID)
		if err != nil {
			return nil, fmt.Errorf("session lookup failed: %w", err)
		}
		if session != nil {
			view.Username = session.Username
		}
		views = append(views, view)
	}
	return views, nil
}

func (s *submissionService) Summary(ctx context.Context) ([]*TaskSummary, error) {
	rows, err := s.repo.Submissions().TaskSummary(ctx)
	if err != nil {
		return nil, fmt.Errorf("task summary failed: %w", err)
	}

	summaries := make([]*TaskSummary, 0, len(rows))
	for _, row := range rows {
		summary := &TaskSummary{
			QuestionID: row.QuestionID,
			Total:      row.Total,
			Rated:      row.Rated,
		}
		question, err := s.repo.Questions().GetByID(ctx, row.QuestionID)
		if err != nil {
			return nil, fmt.Errorf("question lookup failed: %w", err)
		}
		if question != nil {
			summary.Text = question.Text
		}
		summaries = append(summaries, summary)
	}
	return summaries, nil
}

func (s *submissionService) publish(ctx context.Context, eventType events.EventType, data interface{}) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishGameEvent(ctx, events.NewGameEvent(eventType, data)); err != nil {
		s.logger.Warn("publishing event failed", "event_type", eventType, "error", err)
	}
}
