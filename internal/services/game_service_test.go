package services

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/CityQuest-2025/quest-service/internal/events"
	"github.com/CityQuest-2025/quest-service/internal/models"
	"github.com/CityQuest-2025/quest-service/internal/repositories/memory"
	"github.com/CityQuest-2025/quest-service/internal/utils"
)

func newGameFixture(t *testing.T) (*memory.Store, *events.MockEventPublisher, GameService) {
	t.Helper()
	store := memory.NewStore()
	publisher := events.NewMockEventPublisher(slog.Default())
	service := NewGameService(store, publisher, testLogger(), utils.NewValidator())
	return store, publisher, service
}

func TestGameLifecycle(t *testing.T) {
	store, publisher, service := newGameFixture(t)
	ctx := context.Background()

	status, err := service.Status(ctx)
	require.NoError(t, err)
	assert.False(t, status.IsActive)
	assert.Equal(t, models.PhaseIdle, status.CurrentPhase)
	assert.Nil(t, status.UpdatedAt)

	require.NoError(t, service.Start(ctx))
	status, err = service.Status(ctx)
	require.NoError(t, err)
	assert.True(t, status.IsActive)
	assert.Equal(t, models.PhaseRunning, status.CurrentPhase)
	require.NotNil(t, status.UpdatedAt)

	require.NoError(t, service.End(ctx))
	status, err = service.Status(ctx)
	require.NoError(t, err)
	assert.False(t, status.IsActive)
	assert.Equal(t, models.PhaseEnded, status.CurrentPhase)

	state, err := store.GameState().Get(ctx)
	require.NoError(t, err)
	require.NotNil(t, state)

	published := publisher.GetPublishedEvents()
	require.Len(t, published, 2)
	assert.Equal(t, events.EventGameStarted, published[0].Type)
	assert.Equal(t, events.EventGameEnded, published[1].Type)
}

func TestGameEnd_NeverStartedIsNoop(t *testing.T) {
	store, publisher, service := newGameFixture(t)
	ctx := context.Background()

	require.NoError(t, service.End(ctx))

	state, err := store.GameState().Get(ctx)
	require.NoError(t, err)
	assert.Nil(t, state)
	assert.Empty(t, publisher.GetPublishedEvents())
}

func TestSetDefaultLanguage_AppliesToParticipants(t *testing.T) {
	store, _, service := newGameFixture(t)
	ctx := context.Background()
	err := store.Participants().Create(ctx, &models.Participant{
		Username:     "alice",
		PasswordHash: "x",
		Language:     "en",
	})
	require.NoError(t, err)

	require.NoError(t, service.SetDefaultLanguage(ctx, "de"))

	language, err := service.DefaultLanguage(ctx)
	require.NoError(t, err)
	assert.Equal(t, "de", language)

	participant, err := store.Participants().GetByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, "de", participant.Language)
}

func TestSetTimeouts(t *testing.T) {
	_, _, service := newGameFixture(t)
	ctx := context.Background()

	t.Run("defaults before any write", func(t *testing.T) {
		settings, err := service.Timeouts(ctx)
		require.NoError(t, err)
		assert.Equal(t, models.DefaultQuestionTimeoutSeconds, settings.QuestionTimeoutSeconds)
		assert.Equal(t, models.DefaultTaskTimeoutSeconds, settings.TaskTimeoutSeconds)
	})

	t.Run("write creates the singleton lazily", func(t *testing.T) {
		err := service.SetTimeouts(ctx, &TimeoutSettings{
			QuestionTimeoutSeconds: 20,
			TaskTimeoutSeconds:     600,
		})
		require.NoError(t, err)

		settings, err := service.Timeouts(ctx)
		require.NoError(t, err)
		assert.Equal(t, 20, settings.QuestionTimeoutSeconds)
		assert.Equal(t, 600, settings.TaskTimeoutSeconds)
	})

	t.Run("rejects out-of-range values", func(t *testing.T) {
		err := service.SetTimeouts(ctx, &TimeoutSettings{
			QuestionTimeoutSeconds: 0,
			TaskTimeoutSeconds:     300,
		})
		assert.Error(t, err)
	})
}
