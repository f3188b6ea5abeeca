package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/CityQuest-2025/quest-service/internal/repositories/memory"
	"github.com/CityQuest-2025/quest-service/internal/utils"
)

func newQuestionFixture(t *testing.T) (*memory.Store, *fakeUploadStore, QuestionService) {
	t.Helper()
	store := memory.NewStore()
	uploads := newFakeUploadStore()
	service := NewQuestionService(store, uploads, testLogger(), testRand(1))
	return store, uploads, service
}

func TestQuestionCreate_Validation(t *testing.T) {
	_, _, service := newQuestionFixture(t)

	_, err := service.Create(context.Background(), &CreateQuestionInput{Text: "   "})
	var validationErr *ValidationError
	assert.ErrorAs(t, err, &validationErr)
}

func TestQuestionListing_SplitsTasksFromQuestions(t *testing.T) {
	store, _, service := newQuestionFixture(t)
	ctx := context.Background()

	seedQuestion(t, store, "capital of France?", 0, false)
	seedQuestion(t, store, "photo of the fountain", 0, true)

	questions, err := service.ListQuestions(ctx)
	require.NoError(t, err)
	require.Len(t, questions, 1)
	assert.Equal(t, "capital of France?", questions[0].Text)

	tasks, err := service.ListTasks(ctx)
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.True(t, tasks[0].IsTask)
}

func TestQuestionDelete_Cascade(t *testing.T) {
	store, uploads, service := newQuestionFixture(t)
	ctx := context.Background()

	seedSession(t, store, "alice", "s1")
	task := seedQuestion(t, store, "photo task", 0, true)

	submissions := NewSubmissionService(store, uploads, nil, testLogger(), utils.NewValidator())
	_, err := submissions.SubmitTask(ctx, "s1", task.ID, "me.png", pngPayload)
	require.NoError(t, err)
	_, err = submissions.SubmitAnswer(ctx, "s1", task.ID, "x")
	require.NoError(t, err)

	require.NoError(t, service.Delete(ctx, task.ID))

	question, err := store.Questions().GetByID(ctx, task.ID)
	require.NoError(t, err)
	assert.Nil(t, question)

	remaining, err := store.Submissions().ListByQuestionIDs(ctx, []uint{task.ID})
	require.NoError(t, err)
	assert.Empty(t, remaining)
	assert.Empty(t, uploads.files, "uploaded files removed with the task")
}

func TestQuestionDelete_Unknown(t *testing.T) {
	_, _, service := newQuestionFixture(t)
	err := service.Delete(context.Background(), 42)
	assert.ErrorIs(t, err, ErrQuestionNotFound)
}

func TestQuestionPreview(t *testing.T) {
	store, _, service := newQuestionFixture(t)
	ctx := context.Background()

	t.Run("empty quest", func(t *testing.T) {
		_, err := service.Preview(ctx, 7)
		assert.ErrorIs(t, err, ErrQuestionNotFound)
	})

	t.Run("returns a question from the quest", func(t *testing.T) {
		seedQuestion(t, store, "quest 7 question", 7, false)
		seedQuestion(t, store, "quest 2 question", 2, false)

		question, err := service.Preview(ctx, 7)
		require.NoError(t, err)
		assert.Equal(t, "quest 7 question", question.Text)
	})
}

func TestCreateQRCode(t *testing.T) {
	_, _, service := newQuestionFixture(t)
	ctx := context.Background()

	_, err := service.CreateQRCode(ctx, 0, 1)
	var validationErr *ValidationError
	assert.ErrorAs(t, err, &validationErr)

	qr, err := service.CreateQRCode(ctx, 12, 1)
	require.NoError(t, err)
	assert.Equal(t, 12, qr.Code)

	_, err = service.CreateQRCode(ctx, 12, 2)
	assert.ErrorIs(t, err, ErrQRCodeExists)
}

func TestCreateCodeWord(t *testing.T) {
	_, _, service := newQuestionFixture(t)
	ctx := context.Background()

	word, err := service.CreateCodeWord(ctx, "  sunrise  ")
	require.NoError(t, err)
	assert.Equal(t, "sunrise", word.Word)

	_, err = service.CreateCodeWord(ctx, "sunrise")
	assert.ErrorIs(t, err, ErrCodeWordExists)
}

func TestDeleteCodeWord(t *testing.T) {
	_, _, service := newQuestionFixture(t)
	ctx := context.Background()

	err := service.DeleteCodeWord(ctx, 42)
	assert.ErrorIs(t, err, ErrCodeWordNotFound)

	word, err := service.CreateCodeWord(ctx, "sunrise")
	require.NoError(t, err)
	require.NoError(t, service.DeleteCodeWord(ctx, word.ID))

	words, err := service.ListCodeWords(ctx)
	require.NoError(t, err)
	assert.Empty(t, words)
}

func TestImportSurvey(t *testing.T) {
	_, _, service := newQuestionFixture(t)
	ctx := context.Background()

	content := "Capital of France?\nBerlin\nParis\nMadrid\nRome\n2\n" +
		"Largest planet?\nJupiter\nMars\nVenus\nEarth\n9\n" +
		"Capital of France?\nBerlin\nParis\nMadrid\nRome\n2\n" +
		"dangling text\n"

	summary, err := service.ImportSurvey(ctx, content, 3)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Created)
	assert.Equal(t, 1, summary.Skipped, "duplicate text skipped")
	require.Len(t, summary.Errors, 2)
	assert.Equal(t, "Correct index must be 1-4", summary.Errors[0].Reason)
	assert.Contains(t, summary.Errors[1].Reason, "Incomplete block")

	questions, err := service.ListQuestions(ctx)
	require.NoError(t, err)
	require.Len(t, questions, 1)
	assert.Equal(t, "Paris", questions[0].CorrectAnswer)
	assert.Equal(t, 3, questions[0].QuestID)
}

func TestImportTasks(t *testing.T) {
	_, _, service := newQuestionFixture(t)
	ctx := context.Background()

	summary, err := service.ImportTasks(ctx, "take a selfie\n\ntake a selfie\nfind the statue\n", 1)
	require.NoError(t, err)
	assert.Equal(t, 2, summary.Created)
	assert.Equal(t, 1, summary.Skipped)

	tasks, err := service.ListTasks(ctx)
	require.NoError(t, err)
	assert.Len(t, tasks, 2)
	for _, task := range tasks {
		assert.True(t, task.IsTask)
		assert.Empty(t, task.CorrectAnswer)
	}
}

func TestImportCodeWords(t *testing.T) {
	_, _, service := newQuestionFixture(t)
	ctx := context.Background()

	_, err := service.CreateCodeWord(ctx, "existing")
	require.NoError(t, err)

	summary, err := service.ImportCodeWords(ctx, "Sunrise\nSUNRISE\nexisting\nlantern\n")
	require.NoError(t, err)
	assert.Equal(t, 2, summary.Created)
	assert.Equal(t, 2, summary.Skipped)

	words, err := service.ListCodeWords(ctx)
	require.NoError(t, err)
	assert.Len(t, words, 3)
}
