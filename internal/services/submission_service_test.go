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
	"github.com/CityQuest-2025/quest-service/internal/storage"
	"github.com/CityQuest-2025/quest-service/internal/utils"
)

// pngPayload sniffs as image/png.
var pngPayload = []byte("\x89PNG\r\n\x1a\n0000000000")

func newSubmissionFixture(t *testing.T) (*memory.Store, *fakeUploadStore, *events.MockEventPublisher, SubmissionService) {
	t.Helper()
	store := memory.NewStore()
	uploads := newFakeUploadStore()
	publisher := events.NewMockEventPublisher(slog.Default())
	service := NewSubmissionService(store, uploads, publisher, testLogger(), utils.NewValidator())
	return store, uploads, publisher, service
}

func TestSubmitAnswer_Grading(t *testing.T) {
	store, _, publisher, service := newSubmissionFixture(t)
	seedSession(t, store, "alice", "s1")
	question := seedQuestion(t, store, "q1", 0, false)

	t.Run("exact match is correct", func(t *testing.T) {
		result, err := service.SubmitAnswer(context.Background(), "s1", question.ID, "42")
		require.NoError(t, err)
		assert.True(t, result.IsCorrect)
	})

	t.Run("wrong answer", func(t *testing.T) {
		result, err := service.SubmitAnswer(context.Background(), "s1", question.ID, "41")
		require.NoError(t, err)
		assert.False(t, result.IsCorrect)
	})

	t.Run("grading tolerates no whitespace variance", func(t *testing.T) {
		for _, answer := range []string{" 42 ", "42 ", "4 2"} {
			result, err := service.SubmitAnswer(context.Background(), "s1", question.ID, answer)
			require.NoError(t, err)
			assert.False(t, result.IsCorrect, "answer %q must not grade as correct", answer)
		}
	})

	t.Run("grading is case-sensitive", func(t *testing.T) {
		capital := &models.Question{Text: "capital", CorrectAnswer: "Paris"}
		require.NoError(t, store.Questions().Create(context.Background(), capital))

		result, err := service.SubmitAnswer(context.Background(), "s1", capital.ID, "paris")
		require.NoError(t, err)
		assert.False(t, result.IsCorrect)

		result, err = service.SubmitAnswer(context.Background(), "s1", capital.ID, "Paris")
		require.NoError(t, err)
		assert.True(t, result.IsCorrect)
	})

	t.Run("unknown question", func(t *testing.T) {
		_, err := service.SubmitAnswer(context.Background(), "s1", 9999, "42")
		assert.ErrorIs(t, err, ErrQuestionNotFound)
	})

	t.Run("answers are append-only", func(t *testing.T) {
		events := publisher.GetPublishedEvents()
		assert.Len(t, events, 7)
	})
}

func TestSubmitTask(t *testing.T) {
	store, uploads, publisher, service := newSubmissionFixture(t)
	seedSession(t, store, "alice", "s1")
	task := seedQuestion(t, store, "photo task", 0, true)
	question := seedQuestion(t, store, "regular", 0, false)
	ctx := context.Background()

	t.Run("stores file and row", func(t *testing.T) {
		submission, err := service.SubmitTask(ctx, "s1", task.ID, "me.png", pngPayload)
		require.NoError(t, err)
		assert.Contains(t, submission.Filename, "s1_")
		assert.Contains(t, submission.Filename, "me.png")
		assert.Len(t, uploads.files, 1)

		published := publisher.GetPublishedEvents()
		require.Len(t, published, 1)
		assert.Equal(t, events.EventTaskSubmitted, published[0].Type)
	})

	t.Run("second submission rejected", func(t *testing.T) {
		_, err := service.SubmitTask(ctx, "s1", task.ID, "again.png", pngPayload)
		assert.ErrorIs(t, err, ErrAlreadySubmitted)
	})

	t.Run("non-task question rejected", func(t *testing.T) {
		_, err := service.SubmitTask(ctx, "s1", question.ID, "me.png", pngPayload)
		assert.ErrorIs(t, err, ErrTaskNotFound)
	})

	t.Run("invalid content type rejected", func(t *testing.T) {
		seedSession(t, store, "bob", "s2")
		_, err := service.SubmitTask(ctx, "s2", task.ID, "notes.txt", []byte("plain text"))
		assert.ErrorIs(t, err, ErrInvalidFileType)
	})

	t.Run("oversized upload rejected", func(t *testing.T) {
		seedSession(t, store, "carol", "s3")
		big := make([]byte, storage.MaxUploadBytes+1)
		copy(big, pngPayload)
		_, err := service.SubmitTask(ctx, "s3", task.ID, "huge.png", big)
		assert.ErrorIs(t, err, ErrFileTooLarge)
	})
}

func TestRate(t *testing.T) {
	store, _, publisher, service := newSubmissionFixture(t)
	seedSession(t, store, "alice", "s1")
	task := seedQuestion(t, store, "photo task", 0, true)
	ctx := context.Background()

	err := store.Participants().Create(ctx, &models.Participant{
		Username:     "alice",
		PasswordHash: "x",
	})
	require.NoError(t, err)

	submission, err := service.SubmitTask(ctx, "s1", task.ID, "me.png", pngPayload)
	require.NoError(t, err)
	publisher.ClearEvents()

	t.Run("points out of range", func(t *testing.T) {
		err := service.Rate(ctx, submission.ID, 6)
		var validationErrors ValidationErrors
		require.ErrorAs(t, err, &validationErrors)
		assert.Equal(t, "rating_points", validationErrors[0].Rule)
	})

	t.Run("unknown submission", func(t *testing.T) {
		err := service.Rate(ctx, 9999, 3)
		assert.ErrorIs(t, err, ErrSubmissionNotFound)
	})

	t.Run("rating credits the participant", func(t *testing.T) {
		require.NoError(t, service.Rate(ctx, submission.ID, 4))

		participant, err := store.Participants().GetByUsername(ctx, "alice")
		require.NoError(t, err)
		assert.Equal(t, 4, participant.CorrectCount)

		published := publisher.GetPublishedEvents()
		require.Len(t, published, 1)
		assert.Equal(t, events.EventTaskRated, published[0].Type)
	})

	t.Run("second rating rejected and nothing changes", func(t *testing.T) {
		err := service.Rate(ctx, submission.ID, 5)
		assert.ErrorIs(t, err, ErrAlreadyRated)

		participant, err := store.Participants().GetByUsername(ctx, "alice")
		require.NoError(t, err)
		assert.Equal(t, 4, participant.CorrectCount)
	})

	t.Run("zero is a valid rating", func(t *testing.T) {
		seedSession(t, store, "bob", "s2")
		err := store.Participants().Create(ctx, &models.Participant{Username: "bob", PasswordHash: "x"})
		require.NoError(t, err)
		second, err := service.SubmitTask(ctx, "s2", task.ID, "bob.png", pngPayload)
		require.NoError(t, err)

		require.NoError(t, service.Rate(ctx, second.ID, 0))
		participant, err := store.Participants().GetByUsername(ctx, "bob")
		require.NoError(t, err)
		assert.Equal(t, 0, participant.CorrectCount)
	})
}

func TestTaskSummaryAndListing(t *testing.T) {
	store, _, _, service := newSubmissionFixture(t)
	seedSession(t, store, "alice", "s1")
	seedSession(t, store, "bob", "s2")
	task := seedQuestion(t, store, "photo task", 0, true)
	ctx := context.Background()

	err := store.Participants().Create(ctx, &models.Participant{Username: "alice", PasswordHash: "x"})
	require.NoError(t, err)

	first, err := service.SubmitTask(ctx, "s1", task.ID, "a.png", pngPayload)
	require.NoError(t, err)
	_, err = service.SubmitTask(ctx, "s2", task.ID, "b.png", pngPayload)
	require.NoError(t, err)
	require.NoError(t, service.Rate(ctx, first.ID, 3))

	summary, err := service.Summary(ctx)
	require.NoError(t, err)
	require.Len(t, summary, 1)
	assert.Equal(t, task.ID, summary[0].QuestionID)
	assert.Equal(t, "photo task", summary[0].Text)
	assert.Equal(t, 2, summary[0].Total)
	assert.Equal(t, 1, summary[0].Rated)

	views, err := service.ListByQuestion(ctx, task.ID)
	require.NoError(t, err)
	require.Len(t, views, 2)
	usernames := []string{views[0].Username, views[1].Username}
	assert.ElementsMatch(t, []string{"alice", "bob"}, usernames)
}
