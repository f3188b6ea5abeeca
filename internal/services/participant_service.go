package services

import (
	"bufio"
	"context"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/CityQuest-2025/quest-service/internal/models"
	"github.com/CityQuest-2025/quest-service/internal/repositories"
	"github.com/CityQuest-2025/quest-service/internal/storage"
	"github.com/CityQuest-2025/quest-service/internal/utils"
)

type ParticipantService interface {
	// BindSession attaches a session id to a username, creating or updating
	// the session row.
	BindSession(ctx context.Context, username, sessionID string) error
	// Login verifies an admin-provisioned participant and binds the session.
	// Self-registration is refused.
	Login(ctx context.Context, username, password, sessionID string) error

	Create(ctx context.Context, username, password string) (uint, error)
	List(ctx context.Context) ([]*models.Participant, error)
	// Delete removes a participant and everything hanging off their sessions:
	// submissions (with files), answers, served records, scans, sessions.
	Delete(ctx context.Context, id uint) error
	DeleteAll(ctx context.Context) error

	// ImportFromText reads "username password" lines; blank and # lines are
	// skipped, duplicates are skipped, malformed lines are reported.
	ImportFromText(ctx context.Context, content string) (*ImportSummary, error)
}

// ImportSummary reports the outcome of a bulk text import.
type ImportSummary struct {
	Created int           `json:"created"`
	Skipped int           `json:"skipped"`
	Errors  []ImportError `json:"errors"`
}

type ImportError struct {
	Line   int    `json:"line"`
	Reason string `json:"reason"`
}

type participantService struct {
	repo    repositories.Repository
	uploads storage.UploadStore
	logger  utils.Logger
}

func NewParticipantService(repo repositories.Repository, uploads storage.UploadStore, logger utils.Logger) ParticipantService {
	return &participantService{
		repo:    repo,
		uploads: uploads,
		logger:  logger,
	}
}

func (s *participantService) BindSession(ctx context.Context, username, sessionID string) error {
	if username == "" || sessionID == "" {
		return NewValidationError("session_id", "is required", sessionID)
	}
	return s.repo.Sessions().Upsert(ctx, username, sessionID)
}

func (s *participantService) Login(ctx context.Context, username, password, sessionID string) error {
	if username == "" || password == "" || sessionID == "" {
		return NewValidationError("username", "is required", username)
	}

	participant, err := s.repo.Participants().GetByUsername(ctx, username)
	if err != nil {
		return fmt.Errorf("participant lookup failed: %w", err)
	}
	if participant == nil {
		return ErrRegistrationDisabled
	}
	if bcrypt.CompareHashAndPassword([]byte(participant.PasswordHash), []byte(password)) != nil {
		return ErrInvalidCredentials
	}

	return s.repo.Sessions().Upsert(ctx, username, sessionID)
}

func (s *participantService) Create(ctx context.Context, username, password string) (uint, error) {
	if username == "" || password == "" {
		return 0, NewValidationError("username", "is required", username)
	}

	existing, err := s.repo.Participants().GetByUsername(ctx, username)
	if err != nil {
		return 0, fmt.Errorf("participant lookup failed: %w", err)
	}
	if existing != nil {
		return 0, ErrParticipantExists
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return 0, fmt.Errorf("hashing password failed: %w", err)
	}

	participant := &models.Participant{
		Username:     username,
		PasswordHash: string(hash),
		Language:     "en",
	}
	if err := s.repo.Participants().Create(ctx, participant); err != nil {
		return 0, fmt.Errorf("creating participant failed: %w", err)
	}

	s.logger.Info("participant created", "username", username)
	return participant.ID, nil
}

func (s *participantService) List(ctx context.Context) ([]*models.Participant, error) {
	return s.repo.Participants().List(ctx)
}

func (s *participantService) Delete(ctx context.Context, id uint) error {
	participant, err := s.repo.Participants().GetByID(ctx, id)
	if err != nil {
		return fmt.Errorf("participant lookup failed: %w", err)
	}
	if participant == nil {
		return ErrParticipantNotFound
	}

	var orphanFiles []string
	err = s.repo.WithTx(ctx, func(tx repositories.Repository) error {
		files, err := s.cascadeSessions(ctx, tx, []string{participant.Username})
		if err != nil {
			return err
		}
		orphanFiles = files
		return tx.Participants().Delete(ctx, id)
	})
	if err != nil {
		return err
	}

	s.removeFiles(orphanFiles)
	s.logger.Info("participant deleted", "username", participant.Username)
	return nil
}

func (s *participantService) DeleteAll(ctx context.Context) error {
	participants, err := s.repo.Participants().List(ctx)
	if err != nil {
		return fmt.Errorf("participant list failed: %w", err)
	}
	if len(participants) == 0 {
		return nil
	}

	usernames := make([]string, 0, len(participants))
	for _, participant := range participants {
		usernames = append(usernames, participant.Username)
	}

	var orphanFiles []string
	err = s.repo.WithTx(ctx, func(tx repositories.Repository) error {
		files, err := s.cascadeSessions(ctx, tx, usernames)
		if err != nil {
			return err
		}
		orphanFiles = files
		for _, participant := range participants {
			if err := tx.Participants().Delete(ctx, participant.ID); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.removeFiles(orphanFiles)
	return nil
}

// cascadeSessions deletes all rows tied to the usernames' sessions and
// returns the submission filenames left behind for cleanup after commit.
func (s *participantService) cascadeSessions(ctx context.Context, tx repositories.Repository, usernames []string) ([]string, error) {
	sessions, err := tx.Sessions().GetByUsernames(ctx, usernames)
	if err != nil {
		return nil, fmt.Errorf("session lookup failed: %w", err)
	}
	if len(sessions) == 0 {
		return nil, nil
	}

	sessionIDs := make([]string, 0, len(sessions))
	for _, session := range sessions {
		sessionIDs = append(sessionIDs, session.SessionID)
	}

	submissions, err := tx.Submissions().ListBySessionIDs(ctx, sessionIDs)
	if err != nil {
		return nil, fmt.Errorf("submission lookup failed: %w", err)
	}
	var files []string
	var submissionIDs []uint
	for _, submission := range submissions {
		files = append(files, submission.Filename)
		submissionIDs = append(submissionIDs, submission.ID)
	}
	if err := tx.Submissions().DeleteByIDs(ctx, submissionIDs); err != nil {
		return nil, err
	}
	if err := tx.Answers().DeleteBySessionIDs(ctx, sessionIDs); err != nil {
		return nil, err
	}
	if err := tx.Served().DeleteBySessionIDs(ctx, sessionIDs); err != nil {
		return nil, err
	}
	if err := tx.Scans().DeleteBySessionIDs(ctx, sessionIDs); err != nil {
		return nil, err
	}
	if err := tx.Sessions().DeleteBySessionIDs(ctx, sessionIDs); err != nil {
		return nil, err
	}
	return files, nil
}

func (s *participantService) removeFiles(filenames []string) {
	if s.uploads == nil {
		return
	}
	for _, filename := range filenames {
		if err := s.uploads.Remove(filename); err != nil {
			s.logger.Warn("removing upload failed", "filename", filename, "error", err)
		}
	}
}

func (s *participantService) ImportFromText(ctx context.Context, content string) (*ImportSummary, error) {
	summary := &ImportSummary{Errors: []ImportError{}}

	scanner := bufio.NewScanner(strings.NewReader(content))
	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			summary.Skipped++
			continue
		}
		// split on first whitespace so passwords may contain spaces
		parts := strings.SplitN(text, " ", 2)
		if len(parts) < 2 || strings.TrimSpace(parts[1]) == "" {
			summary.Errors = append(summary.Errors, ImportError{Line: line, Reason: "Invalid format"})
			continue
		}
		username := strings.TrimSpace(parts[0])
		password := strings.TrimSpace(parts[1])

		existing, err := s.repo.Participants().GetByUsername(ctx, username)
		if err != nil {
			return nil, fmt.Errorf("participant lookup failed: %w", err)
		}
		if existing != nil {
			summary.Skipped++
			continue
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
		if err != nil {
			summary.Errors = append(summary.Errors, ImportError{Line: line, Reason: err.Error()})
			continue
		}
		if err := s.repo.Participants().Create(ctx, &models.Participant{
			Username:     username,
			PasswordHash: string(hash),
			Language:     "en",
		}); err != nil {
			summary.Errors = append(summary.Errors, ImportError{Line: line, Reason: err.Error()})
			continue
		}
		summary.Created++
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading import failed: %w", err)
	}

	s.logger.Info("participants imported",
		"created", summary.Created,
		"skipped", summary.Skipped,
		"errors", len(summary.Errors))
	return summary, nil
}
