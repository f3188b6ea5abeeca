package services

import (
	"context"
	"io"
	"log/slog"
	"math/rand"
	"testing"

	"github.com/CityQuest-2025/quest-service/internal/models"
	"github.com/CityQuest-2025/quest-service/internal/repositories/memory"
	"github.com/CityQuest-2025/quest-service/internal/utils"
	"gorm.io/datatypes"
)

// fakeUploadStore keeps uploads in memory for tests.
type fakeUploadStore struct {
	files map[string][]byte
}

func newFakeUploadStore() *fakeUploadStore {
	return &fakeUploadStore{files: make(map[string][]byte)}
}

func (f *fakeUploadStore) Save(filename string, payload []byte) (string, error) {
	f.files[filename] = payload
	return filename, nil
}

func (f *fakeUploadStore) Remove(filename string) error {
	delete(f.files, filename)
	return nil
}

func (f *fakeUploadStore) Dir() string { return "testdata" }

func testLogger() utils.Logger {
	return utils.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func testRand(seed int64) *rand.Rand {
	return rand.New(rand.NewSource(seed))
}

func seedActiveGame(t *testing.T, store *memory.Store) {
	t.Helper()
	err := store.GameState().Save(context.Background(), &models.GameState{
		IsActive:               true,
		CurrentPhase:           models.PhaseRunning,
		DefaultLanguage:        "en",
		QuestionTimeoutSeconds: models.DefaultQuestionTimeoutSeconds,
		TaskTimeoutSeconds:     models.DefaultTaskTimeoutSeconds,
	})
	if err != nil {
		t.Fatalf("seeding game state: %v", err)
	}
}

func seedSession(t *testing.T, store *memory.Store, username, sessionID string) {
	t.Helper()
	if err := store.Sessions().Upsert(context.Background(), username, sessionID); err != nil {
		t.Fatalf("seeding session: %v", err)
	}
}

func seedQuestion(t *testing.T, store *memory.Store, text string, questID int, isTask bool) *models.Question {
	t.Helper()
	question := &models.Question{
		Text:          text,
		CorrectAnswer: "42",
		Options:       datatypes.JSONSlice[string]{"41", "42", "43", "44"},
		QuestID:       questID,
		IsTask:        isTask,
	}
	if err := store.Questions().Create(context.Background(), question); err != nil {
		t.Fatalf("seeding question: %v", err)
	}
	return question
}

func seedQRCode(t *testing.T, store *memory.Store, code, questID int) *models.QRCode {
	t.Helper()
	qr := &models.QRCode{Code: code, QuestID: questID}
	if err := store.QRCodes().Create(context.Background(), qr); err != nil {
		t.Fatalf("seeding qr code: %v", err)
	}
	return qr
}

func seedCodeWord(t *testing.T, store *memory.Store, word string) *models.CodeWord {
	t.Helper()
	codeWord := &models.CodeWord{Word: word}
	if err := store.CodeWords().Create(context.Background(), codeWord); err != nil {
		t.Fatalf("seeding code word: %v", err)
	}
	return codeWord
}
