package services

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/CityQuest-2025/quest-service/internal/events"
	"github.com/CityQuest-2025/quest-service/internal/repositories/memory"
)

func newAssignmentFixture(t *testing.T) (*memory.Store, *events.MockEventPublisher, AssignmentService) {
	t.Helper()
	store := memory.NewStore()
	publisher := events.NewMockEventPublisher(slog.Default())
	service := NewAssignmentService(store, publisher, testLogger(), testRand(1))
	return store, publisher, service
}

func TestAssign_UnknownSession(t *testing.T) {
	_, _, service := newAssignmentFixture(t)

	_, err := service.Assign(context.Background(), "ghost", "random")
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestAssign_GameNotActive(t *testing.T) {
	store, _, service := newAssignmentFixture(t)
	seedSession(t, store, "alice", "s1")

	t.Run("no game state", func(t *testing.T) {
		result, err := service.Assign(context.Background(), "s1", "random")
		require.NoError(t, err)
		assert.Equal(t, MsgGameNotActive, result.Message)
		assert.Nil(t, result.Question)
	})

	t.Run("inactive game state", func(t *testing.T) {
		seedActiveGame(t, store)
		state, err := store.GameState().Get(context.Background())
		require.NoError(t, err)
		state.IsActive = false
		require.NoError(t, store.GameState().Save(context.Background(), state))

		result, err := service.Assign(context.Background(), "s1", "random")
		require.NoError(t, err)
		assert.Equal(t, MsgGameNotActive, result.Message)
	})
}

func TestAssign_TriggerResolution(t *testing.T) {
	store, _, service := newAssignmentFixture(t)
	seedSession(t, store, "alice", "s1")
	seedActiveGame(t, store)
	seedQuestion(t, store, "capital of France?", 1, false)

	t.Run("non-numeric garbage", func(t *testing.T) {
		result, err := service.Assign(context.Background(), "s1", "not-a-code")
		require.NoError(t, err)
		assert.Equal(t, MsgInvalidFormat, result.Message)
	})

	t.Run("unknown numeric code", func(t *testing.T) {
		result, err := service.Assign(context.Background(), "s1", "999")
		require.NoError(t, err)
		assert.Equal(t, MsgInvalidCode, result.Message)
	})

	t.Run("random serves from whole pool", func(t *testing.T) {
		result, err := service.Assign(context.Background(), "s1", "random")
		require.NoError(t, err)
		require.NotNil(t, result.Question)
		assert.Equal(t, "capital of France?", result.Question.Text)
	})
}

func TestAssign_ScanLedgerIdempotency(t *testing.T) {
	store, _, service := newAssignmentFixture(t)
	seedSession(t, store, "alice", "s1")
	seedActiveGame(t, store)
	seedQRCode(t, store, 101, 1)
	seedQuestion(t, store, "q1", 1, false)
	seedQuestion(t, store, "q2", 1, false)

	first, err := service.Assign(context.Background(), "s1", "101")
	require.NoError(t, err)
	require.NotNil(t, first.Question)

	second, err := service.Assign(context.Background(), "s1", "101")
	require.NoError(t, err)
	assert.Equal(t, MsgAlreadyScanned, second.Message)
	assert.Nil(t, second.Question)
}

func TestAssign_ScanConsumedEvenWithoutQuestions(t *testing.T) {
	store, _, service := newAssignmentFixture(t)
	seedSession(t, store, "alice", "s1")
	seedActiveGame(t, store)
	seedQRCode(t, store, 101, 1)

	first, err := service.Assign(context.Background(), "s1", "101")
	require.NoError(t, err)
	assert.Equal(t, MsgNoQuestions, first.Message)

	// even an empty result consumes the scan
	second, err := service.Assign(context.Background(), "s1", "101")
	require.NoError(t, err)
	assert.Equal(t, MsgAlreadyScanned, second.Message)
}

func TestAssign_QuestFilter(t *testing.T) {
	store, _, service := newAssignmentFixture(t)
	seedSession(t, store, "alice", "s1")
	seedActiveGame(t, store)
	seedQRCode(t, store, 101, 1)
	seedQuestion(t, store, "quest one question", 1, false)
	seedQuestion(t, store, "quest two question", 2, false)

	result, err := service.Assign(context.Background(), "s1", "101")
	require.NoError(t, err)
	require.NotNil(t, result.Question)
	assert.Equal(t, "quest one question", result.Question.Text)
}

func TestAssign_QuestionExhaustsGlobally(t *testing.T) {
	store, _, service := newAssignmentFixture(t)
	seedSession(t, store, "alice", "s1")
	seedSession(t, store, "bob", "s2")
	seedActiveGame(t, store)
	seedQRCode(t, store, 101, 1)
	seedQRCode(t, store, 102, 1)
	question := seedQuestion(t, store, "only question", 1, false)

	first, err := service.Assign(context.Background(), "s1", "101")
	require.NoError(t, err)
	require.NotNil(t, first.Question)
	assert.Equal(t, question.ID, first.Question.ID)

	stored, err := store.Questions().GetByID(context.Background(), question.ID)
	require.NoError(t, err)
	assert.True(t, stored.Used)

	second, err := service.Assign(context.Background(), "s2", "102")
	require.NoError(t, err)
	assert.Equal(t, MsgNoQuestions, second.Message)
}

func TestAssign_TaskStaysAvailableAcrossSessions(t *testing.T) {
	store, _, service := newAssignmentFixture(t)
	seedSession(t, store, "alice", "s1")
	seedSession(t, store, "bob", "s2")
	seedActiveGame(t, store)
	seedQRCode(t, store, 101, 1)
	seedQRCode(t, store, 102, 1)
	task := seedQuestion(t, store, "photo task", 1, true)

	first, err := service.Assign(context.Background(), "s1", "101")
	require.NoError(t, err)
	require.NotNil(t, first.Question)
	assert.True(t, first.Question.IsTask)

	stored, err := store.Questions().GetByID(context.Background(), task.ID)
	require.NoError(t, err)
	assert.False(t, stored.Used)

	second, err := service.Assign(context.Background(), "s2", "102")
	require.NoError(t, err)
	require.NotNil(t, second.Question)
	assert.Equal(t, task.ID, second.Question.ID)
}

func TestAssign_ServedQuestionNotRepeatedForSession(t *testing.T) {
	store, _, service := newAssignmentFixture(t)
	seedSession(t, store, "alice", "s1")
	seedActiveGame(t, store)
	seedQRCode(t, store, 101, 1)
	seedQRCode(t, store, 102, 1)
	seedQuestion(t, store, "photo task", 1, true)

	first, err := service.Assign(context.Background(), "s1", "101")
	require.NoError(t, err)
	require.NotNil(t, first.Question)

	// the only task was already served to this session
	second, err := service.Assign(context.Background(), "s1", "102")
	require.NoError(t, err)
	assert.Equal(t, MsgNoQuestions, second.Message)
}

func TestAssign_CodeWordConsumedGlobally(t *testing.T) {
	store, _, service := newAssignmentFixture(t)
	seedSession(t, store, "alice", "s1")
	seedSession(t, store, "bob", "s2")
	seedActiveGame(t, store)
	seedCodeWord(t, store, "Sunrise")
	seedQuestion(t, store, "q1", 1, false)
	seedQuestion(t, store, "q2", 1, false)

	first, err := service.Assign(context.Background(), "s1", "sunrise")
	require.NoError(t, err)
	require.NotNil(t, first.Question)

	second, err := service.Assign(context.Background(), "s2", "SUNRISE")
	require.NoError(t, err)
	assert.Equal(t, MsgWordAlreadyUsed, second.Message)
}

func TestAssign_CodeWordNotConsumedWhenPoolEmpty(t *testing.T) {
	store, _, service := newAssignmentFixture(t)
	seedSession(t, store, "alice", "s1")
	seedSession(t, store, "bob", "s2")
	seedActiveGame(t, store)
	seedCodeWord(t, store, "sunrise")

	first, err := service.Assign(context.Background(), "s1", "sunrise")
	require.NoError(t, err)
	assert.Equal(t, MsgNoQuestions, first.Message)

	// the word survives an empty pool and still works once questions exist
	seedQuestion(t, store, "late question", 1, false)
	second, err := service.Assign(context.Background(), "s2", "sunrise")
	require.NoError(t, err)
	require.NotNil(t, second.Question)
}

func TestAssign_TimeLimits(t *testing.T) {
	store, _, service := newAssignmentFixture(t)
	seedSession(t, store, "alice", "s1")
	seedSession(t, store, "bob", "s2")
	seedActiveGame(t, store)
	seedQRCode(t, store, 101, 1)
	seedQRCode(t, store, 102, 2)
	seedQuestion(t, store, "regular", 1, false)
	seedQuestion(t, store, "task", 2, true)

	question, err := service.Assign(context.Background(), "s1", "101")
	require.NoError(t, err)
	require.NotNil(t, question.Question)
	assert.Equal(t, 10, question.TimeLimitSeconds)

	task, err := service.Assign(context.Background(), "s2", "102")
	require.NoError(t, err)
	require.NotNil(t, task.Question)
	assert.Equal(t, 300, task.TimeLimitSeconds)
}

func TestAssign_PublishesQuestionServedEvent(t *testing.T) {
	store, publisher, service := newAssignmentFixture(t)
	seedSession(t, store, "alice", "s1")
	seedActiveGame(t, store)
	seedQuestion(t, store, "q1", 1, false)

	result, err := service.Assign(context.Background(), "s1", "random")
	require.NoError(t, err)
	require.NotNil(t, result.Question)

	published := publisher.GetPublishedEvents()
	require.Len(t, published, 1)
	assert.Equal(t, events.EventQuestionServed, published[0].Type)
}

func TestAssign_NoEventOnEarlyExit(t *testing.T) {
	store, publisher, service := newAssignmentFixture(t)
	seedSession(t, store, "alice", "s1")

	_, err := service.Assign(context.Background(), "s1", "random")
	require.NoError(t, err)
	assert.Empty(t, publisher.GetPublishedEvents())
}
