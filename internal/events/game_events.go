package events

import (
	"time"

	"github.com/ThreeDotsLabs/watermill"
)

type EventType string

const (
	EventGameStarted     EventType = "game.started"
	EventGameEnded       EventType = "game.ended"
	EventQuestionServed  EventType = "game.question_served"
	EventAnswerSubmitted EventType = "game.answer_submitted"
	EventTaskSubmitted   EventType = "game.task_submitted"
	EventTaskRated       EventType = "game.task_rated"
	EventRaffleDrawn     EventType = "game.raffle_drawn"
)

// GameEvent is the envelope published for every game occurrence.
type GameEvent struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	Source    string      `json:"source"`
	Version   string      `json:"version"`
	Timestamp time.Time   `json:"timestamp"`
	Data      interface{} `json:"data"`
}

func NewGameEvent(eventType EventType, data interface{}) *GameEvent {
	return &GameEvent{
		ID:        watermill.NewUUID(),
		Type:      eventType,
		Source:    "quest-service",
		Version:   "1.0",
		Timestamp: time.Now().UTC(),
		Data:      data,
	}
}

type QuestionServedEvent struct {
	SessionID  string `json:"session_id"`
	QuestionID uint   `json:"question_id"`
	IsTask     bool   `json:"is_task"`
	Trigger    string `json:"trigger"`
}

type AnswerSubmittedEvent struct {
	SessionID  string `json:"session_id"`
	QuestionID uint   `json:"question_id"`
	IsCorrect  bool   `json:"is_correct"`
}

type TaskSubmittedEvent struct {
	SessionID  string `json:"session_id"`
	QuestionID uint   `json:"question_id"`
	Filename   string `json:"filename"`
}

type TaskRatedEvent struct {
	SubmissionID uint   `json:"submission_id"`
	Username     string `json:"username"`
	Points       int    `json:"points"`
}

type RaffleDrawnEvent struct {
	Winners []string `json:"winners"`
}

type GamePhaseEvent struct {
	Phase string `json:"phase"`
}
