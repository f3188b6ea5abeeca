package services

import (
	"context"
	"fmt"

	"github.com/CityQuest-2025/quest-service/internal/events"
	"github.com/CityQuest-2025/quest-service/internal/models"
	"github.com/CityQuest-2025/quest-service/internal/repositories"
	"github.com/CityQuest-2025/quest-service/internal/utils"
)

type GameService interface {
	Start(ctx context.Context) error
	End(ctx context.Context) error
	Status(ctx context.Context) (*GameStatus, error)

	DefaultLanguage(ctx context.Context) (string, error)
	// SetDefaultLanguage stores the new default and applies it to every
	// participant.
	SetDefaultLanguage(ctx context.Context, language string) error

	Timeouts(ctx context.Context) (*TimeoutSettings, error)
	SetTimeouts(ctx context.Context, settings *TimeoutSettings) error
}

type GameStatus struct {
	IsActive     bool             `json:"is_active"`
	CurrentPhase models.GamePhase `json:"current_phase"`
	UpdatedAt    *string          `json:"updated_at"`
}

type TimeoutSettings struct {
	QuestionTimeoutSeconds int `json:"question_timeout_seconds" validate:"timeout_seconds"`
	TaskTimeoutSeconds     int `json:"task_timeout_seconds" validate:"timeout_seconds"`
}

type gameService struct {
	repo      repositories.Repository
	publisher events.EventPublisher
	logger    utils.Logger
	validator *utils.Validator
}

func NewGameService(repo repositories.Repository, publisher events.EventPublisher, logger utils.Logger, validator *utils.Validator) GameService {
	return &gameService{
		repo:      repo,
		publisher: publisher,
		logger:    logger,
		validator: validator,
	}
}

// load returns the singleton row, creating the default one when absent.
func (s *gameService) load(ctx context.Context) (*models.GameState, error) {
	state, err := s.repo.GameState().Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("game state lookup failed: %w", err)
	}
	if state == nil {
		state = &models.GameState{
			CurrentPhase:           models.PhaseIdle,
			DefaultLanguage:        "en",
			QuestionTimeoutSeconds: models.DefaultQuestionTimeoutSeconds,
			TaskTimeoutSeconds:     models.DefaultTaskTimeoutSeconds,
		}
	}
	return state, nil
}

func (s *gameService) Start(ctx context.Context) error {
	state, err := s.load(ctx)
	if err != nil {
		return err
	}
	state.IsActive = true
	state.CurrentPhase = models.PhaseRunning
	if err := s.repo.GameState().Save(ctx, state); err != nil {
		return fmt.Errorf("saving game state failed: %w", err)
	}

	s.logger.Info("game started")
	s.emitPhase(ctx, events.EventGameStarted, models.PhaseRunning)
	return nil
}

func (s *gameService) End(ctx context.Context) error {
	state, err := s.repo.GameState().Get(ctx)
	if err != nil {
		return fmt.Errorf("game state lookup failed: %w", err)
	}
	if state == nil {
		// ending a never-started game is a no-op, matching the lazy singleton
		return nil
	}
	state.IsActive = false
	state.CurrentPhase = models.PhaseEnded
	if err := s.repo.GameState().Save(ctx, state); err != nil {
		return fmt.Errorf("saving game state failed: %w", err)
	}

	s.logger.Info("game ended")
	s.emitPhase(ctx, events.EventGameEnded, models.PhaseEnded)
	return nil
}

func (s *gameService) Status(ctx context.Context) (*GameStatus, error) {
	state, err := s.repo.GameState().Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("game state lookup failed: %w", err)
	}
	if state == nil {
		return &GameStatus{IsActive: false, CurrentPhase: models.PhaseIdle}, nil
	}
	updated := state.UpdatedAt.Format("2006-01-02T15:04:05Z07:00")
	return &GameStatus{
		IsActive:     state.IsActive,
		CurrentPhase: state.CurrentPhase,
		UpdatedAt:    &updated,
	}, nil
}

func (s *gameService) DefaultLanguage(ctx context.Context) (string, error) {
	state, err := s.repo.GameState().Get(ctx)
	if err != nil {
		return "", fmt.Errorf("game state lookup failed: %w", err)
	}
	if state == nil {
		return "en", nil
	}
	return state.DefaultLanguage, nil
}

func (s *gameService) SetDefaultLanguage(ctx context.Context, language string) error {
	if language == "" {
		return NewValidationError("default_language", "is required", language)
	}

	return s.repo.WithTx(ctx, func(tx repositories.Repository) error {
		state, err := tx.GameState().Get(ctx)
		if err != nil {
			return fmt.Errorf("game state lookup failed: %w", err)
		}
		if state == nil {
			state = &models.GameState{
				CurrentPhase:           models.PhaseIdle,
				QuestionTimeoutSeconds: models.DefaultQuestionTimeoutSeconds,
				TaskTimeoutSeconds:     models.DefaultTaskTimeoutSeconds,
			}
		}
		state.DefaultLanguage = language
		if err := tx.GameState().Save(ctx, state); err != nil {
			return fmt.Errorf("saving game state failed: %w", err)
		}
		if err := tx.Participants().UpdateLanguageAll(ctx, language); err != nil {
			return fmt.Errorf("applying language to participants failed: %w", err)
		}
		return nil
	})
}

func (s *gameService) Timeouts(ctx context.Context) (*TimeoutSettings, error) {
	state, err := s.repo.GameState().Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("game state lookup failed: %w", err)
	}
	if state == nil {
		return &TimeoutSettings{
			QuestionTimeoutSeconds: models.DefaultQuestionTimeoutSeconds,
			TaskTimeoutSeconds:     models.DefaultTaskTimeoutSeconds,
		}, nil
	}
	return &TimeoutSettings{
		QuestionTimeoutSeconds: state.QuestionTimeoutSeconds,
		TaskTimeoutSeconds:     state.TaskTimeoutSeconds,
	}, nil
}

func (s *gameService) SetTimeouts(ctx context.Context, settings *TimeoutSettings) error {
	if err := s.validator.Struct(settings); err != nil {
		return err
	}

	state, err := s.load(ctx)
	if err != nil {
		return err
	}
	state.QuestionTimeoutSeconds = settings.QuestionTimeoutSeconds
	state.TaskTimeoutSeconds = settings.TaskTimeoutSeconds
	if err := s.repo.GameState().Save(ctx, state); err != nil {
		return fmt.Errorf("saving game state failed: %w", err)
	}
	return nil
}

func (s *gameService) emitPhase(ctx context.Context, eventType events.EventType, phase models.GamePhase) {
	if s.publisher == nil {
		return
	}
	event := events.NewGameEvent(eventType, events.GamePhaseEvent{Phase: string(phase)})
	if err := s.publisher.PublishGameEvent(ctx, event); err != nil {
		s.logger.Warn("event publish failed", "event_type", event.Type, "error", err)
	}
}
