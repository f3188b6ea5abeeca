package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/CityQuest-2025/quest-service/internal/repositories/memory"
	"github.com/CityQuest-2025/quest-service/internal/utils"
)

func newParticipantFixture(t *testing.T) (*memory.Store, *fakeUploadStore, ParticipantService) {
	t.Helper()
	store := memory.NewStore()
	uploads := newFakeUploadStore()
	service := NewParticipantService(store, uploads, testLogger())
	return store, uploads, service
}

func TestParticipantLogin(t *testing.T) {
	store, _, service := newParticipantFixture(t)
	ctx := context.Background()

	_, err := service.Create(ctx, "alice", "secret")
	require.NoError(t, err)

	t.Run("unknown username refused", func(t *testing.T) {
		err := service.Login(ctx, "mallory", "whatever", "s9")
		assert.ErrorIs(t, err, ErrRegistrationDisabled)
	})

	t.Run("wrong password", func(t *testing.T) {
		err := service.Login(ctx, "alice", "nope", "s1")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("valid login binds session", func(t *testing.T) {
		require.NoError(t, service.Login(ctx, "alice", "secret", "s1"))

		session, err := store.Sessions().GetBySessionID(ctx, "s1")
		require.NoError(t, err)
		require.NotNil(t, session)
		assert.Equal(t, "alice", session.Username)
	})
}

func TestParticipantCreate_Duplicate(t *testing.T) {
	_, _, service := newParticipantFixture(t)
	ctx := context.Background()

	_, err := service.Create(ctx, "alice", "secret")
	require.NoError(t, err)

	_, err = service.Create(ctx, "alice", "other")
	assert.ErrorIs(t, err, ErrParticipantExists)
}

func TestParticipantDelete_Cascade(t *testing.T) {
	store, uploads, service := newParticipantFixture(t)
	ctx := context.Background()

	id, err := service.Create(ctx, "alice", "secret")
	require.NoError(t, err)
	require.NoError(t, service.Login(ctx, "alice", "secret", "s1"))

	task := seedQuestion(t, store, "photo task", 0, true)
	submissions := NewSubmissionService(store, uploads, nil, testLogger(), utils.NewValidator())
	_, err = submissions.SubmitTask(ctx, "s1", task.ID, "me.png", pngPayload)
	require.NoError(t, err)
	_, err = submissions.SubmitAnswer(ctx, "s1", task.ID, "x")
	require.NoError(t, err)

	require.NoError(t, service.Delete(ctx, id))

	session, err := store.Sessions().GetBySessionID(ctx, "s1")
	require.NoError(t, err)
	assert.Nil(t, session)

	participant, err := store.Participants().GetByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.Nil(t, participant)

	remaining, err := store.Submissions().ListBySessionIDs(ctx, []string{"s1"})
	require.NoError(t, err)
	assert.Empty(t, remaining)
	assert.Empty(t, uploads.files, "uploaded files removed with the participant")
}

func TestParticipantDelete_Unknown(t *testing.T) {
	_, _, service := newParticipantFixture(t)
	err := service.Delete(context.Background(), 42)
	assert.ErrorIs(t, err, ErrParticipantNotFound)
}

func TestParticipantImportFromText(t *testing.T) {
	store, _, service := newParticipantFixture(t)
	ctx := context.Background()

	_, err := service.Create(ctx, "existing", "pw")
	require.NoError(t, err)

	content := "alice password1\n" +
		"\n" +
		"# roster from the venue\n" +
		"bob password2\n" +
		"existing something\n" +
		"nopassword\n"

	summary, err := service.ImportFromText(ctx, content)
	require.NoError(t, err)
	assert.Equal(t, 2, summary.Created)
	assert.Equal(t, 3, summary.Skipped) // blank, comment, duplicate
	require.Len(t, summary.Errors, 1)
	assert.Equal(t, 6, summary.Errors[0].Line)

	participants, err := store.Participants().List(ctx)
	require.NoError(t, err)
	assert.Len(t, participants, 3)
}
