package services

import (
	"context"
	"fmt"
	"math/rand"
	"strconv"
	"strings"
	"sync"

	"github.com/CityQuest-2025/quest-service/internal/events"
	"github.com/CityQuest-2025/quest-service/internal/models"
	"github.com/CityQuest-2025/quest-service/internal/repositories"
	"github.com/CityQuest-2025/quest-service/internal/utils"
)

// Messages returned to the scanning client. These are part of the API
// contract; clients match on them.
const (
	MsgGameNotActive   = "Game not active"
	MsgWordAlreadyUsed = "Word already used"
	MsgInvalidFormat   = "Invalid code format"
	MsgInvalidCode     = "Invalid or inactive code"
	MsgAlreadyScanned  = "Code already scanned"
	MsgNoQuestions     = "No available questions for this QR"
)

// RandomTrigger is the literal payload that selects from the whole pool.
const RandomTrigger = "random"

type AssignmentService interface {
	// Assign resolves a scanned payload for a session and serves a question
	// or task, consuming the scan and flipping exhaustion flags atomically.
	Assign(ctx context.Context, sessionID, rawCode string) (*ScanResult, error)
}

type ScanResult struct {
	Question         *QuestionPayload `json:"question"`
	TimeLimitSeconds int              `json:"time_limit_seconds"`
	Message          string           `json:"message"`
}

type QuestionPayload struct {
	ID      uint     `json:"id"`
	Text    string   `json:"text"`
	Options []string `json:"options"`
	IsTask  bool     `json:"is_task"`
}

// codeTrigger is the resolved form of a scanned payload: an admin code word,
// the literal "random", or a numeric QR code.
type codeTrigger struct {
	word *models.CodeWord // set for word triggers
	qr   *models.QRCode   // set for numeric triggers
}

func (t codeTrigger) poolWide() bool {
	return t.qr == nil
}

type assignmentService struct {
	repo      repositories.Repository
	publisher events.EventPublisher
	logger    utils.Logger

	randMu sync.Mutex
	rng    *rand.Rand
}

// NewAssignmentService wires the engine. rng drives the uniform candidate
// choice; tests pass a seeded source.
func NewAssignmentService(repo repositories.Repository, publisher events.EventPublisher, logger utils.Logger, rng *rand.Rand) AssignmentService {
	return &assignmentService{
		repo:      repo,
		publisher: publisher,
		logger:    logger,
		rng:       rng,
	}
}

func (s *assignmentService) Assign(ctx context.Context, sessionID, rawCode string) (*ScanResult, error) {
	session, err := s.repo.Sessions().GetBySessionID(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("session lookup failed: %w", err)
	}
	if session == nil {
		return nil, ErrSessionNotFound
	}

	var result *ScanResult
	var served *models.Question
	var triggerLabel string

	// The selection read, the scan insert, the served-question insert and the
	// used-flag flips all commit or roll back together. FindCandidates locks
	// candidate rows, so two concurrent scans cannot both claim the last
	// unused question.
	err = s.repo.WithTx(ctx, func(tx repositories.Repository) error {
		state, err := tx.GameState().Get(ctx)
		if err != nil {
			return fmt.Errorf("game state lookup failed: %w", err)
		}
		if state == nil || !state.IsActive {
			result = &ScanResult{Message: MsgGameNotActive}
			return nil
		}

		trigger, earlyExit, err := s.resolveTrigger(ctx, tx, rawCode)
		if err != nil {
			return err
		}
		if earlyExit != nil {
			result = earlyExit
			return nil
		}

		exists, err := tx.Scans().Exists(ctx, sessionID, rawCode)
		if err != nil {
			return fmt.Errorf("scan ledger lookup failed: %w", err)
		}
		if exists {
			result = &ScanResult{Message: MsgAlreadyScanned}
			return nil
		}

		// The scan is consumed from here on, even when no question is left.
		if err := tx.Scans().Create(ctx, &models.UserScan{
			SessionID: sessionID,
			Code:      rawCode,
		}); err != nil {
			return fmt.Errorf("recording scan failed: %w", err)
		}

		filters := repositories.CandidateFilters{SessionID: sessionID}
		if !trigger.poolWide() {
			filters.QuestID = &trigger.qr.QuestID
		}
		candidates, err := tx.Questions().FindCandidates(ctx, filters)
		if err != nil {
			return fmt.Errorf("candidate lookup failed: %w", err)
		}
		if len(candidates) == 0 {
			result = &ScanResult{Message: MsgNoQuestions}
			return nil
		}

		chosen := candidates[s.pick(len(candidates))]

		if err := tx.Served().Create(ctx, &models.ServedQuestion{
			SessionID:  sessionID,
			QuestionID: chosen.ID,
		}); err != nil {
			return fmt.Errorf("recording served question failed: %w", err)
		}
		// Regular questions exhaust globally on first serve; tasks stay in
		// the pool for other sessions.
		if !chosen.IsTask {
			if err := tx.Questions().MarkUsed(ctx, chosen.ID); err != nil {
				return fmt.Errorf("marking question used failed: %w", err)
			}
		}
		if trigger.word != nil {
			if err := tx.CodeWords().MarkUsed(ctx, trigger.word.ID); err != nil {
				return fmt.Errorf("marking code word used failed: %w", err)
			}
		}

		result = &ScanResult{
			Question: &QuestionPayload{
				ID:      chosen.ID,
				Text:    chosen.Text,
				Options: chosen.Options,
				IsTask:  chosen.IsTask,
			},
			TimeLimitSeconds: timeLimitFor(state, chosen.IsTask),
		}
		served = chosen
		triggerLabel = rawCode
		return nil
	})
	if err != nil {
		return nil, err
	}

	if served != nil {
		s.logger.Info("question served",
			"session_id", sessionID,
			"question_id", served.ID,
			"is_task", served.IsTask)
		s.publish(ctx, events.NewGameEvent(events.EventQuestionServed, events.QuestionServedEvent{
			SessionID:  sessionID,
			QuestionID: served.ID,
			IsTask:     served.IsTask,
			Trigger:    triggerLabel,
		}))
	}

	return result, nil
}

// resolveTrigger classifies the raw payload as word, random or numeric. A
// non-nil ScanResult is an early exit without side effects.
func (s *assignmentService) resolveTrigger(ctx context.Context, tx repositories.Repository, rawCode string) (codeTrigger, *ScanResult, error) {
	word, err := tx.CodeWords().GetByWord(ctx, rawCode)
	if err != nil {
		return codeTrigger{}, nil, fmt.Errorf("code word lookup failed: %w", err)
	}
	if word != nil {
		if word.Used {
			return codeTrigger{}, &ScanResult{Message: MsgWordAlreadyUsed}, nil
		}
		return codeTrigger{word: word}, nil, nil
	}

	if strings.EqualFold(rawCode, RandomTrigger) {
		return codeTrigger{}, nil, nil
	}

	numeric, err := strconv.Atoi(strings.TrimSpace(rawCode))
	if err != nil {
		return codeTrigger{}, &ScanResult{Message: MsgInvalidFormat}, nil
	}
	qr, err := tx.QRCodes().GetByCode(ctx, numeric)
	if err != nil {
		return codeTrigger{}, nil, fmt.Errorf("qr code lookup failed: %w", err)
	}
	if qr == nil {
		return codeTrigger{}, &ScanResult{Message: MsgInvalidCode}, nil
	}
	return codeTrigger{qr: qr}, nil, nil
}

func (s *assignmentService) pick(n int) int {
	s.randMu.Lock()
	defer s.randMu.Unlock()
	return s.rng.Intn(n)
}

func (s *assignmentService) publish(ctx context.Context, event *events.GameEvent) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishGameEvent(ctx, event); err != nil {
		s.logger.Warn("event publish failed", "event_type", event.Type, "error", err)
	}
}

func timeLimitFor(state *models.GameState, isTask bool) int {
	if isTask {
		if state != nil && state.TaskTimeoutSeconds > 0 {
			return state.TaskTimeoutSeconds
		}
		return models.DefaultTaskTimeoutSeconds
	}
	if state != nil && state.QuestionTimeoutSeconds > 0 {
		return state.QuestionTimeoutSeconds
	}
	return models.DefaultQuestionTimeoutSeconds
}
