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
)

// seedAnswers records correct answers so a username carries raffle weight.
func seedAnswers(t *testing.T, store *memory.Store, sessionID string, correct int) {
	t.Helper()
	for i := 0; i < correct; i++ {
		question := seedQuestion(t, store, sessionID+"-q-"+string(rune('a'+i)), 0, false)
		err := store.Answers().Create(context.Background(), &models.UserAnswer{
			SessionID:  sessionID,
			QuestionID: question.ID,
			Answer:     "42",
			IsCorrect:  true,
		})
		require.NoError(t, err)
	}
}

func TestDraw_ValidatesWinnerCount(t *testing.T) {
	store := memory.NewStore()
	service := NewRaffleService(store, nil, testLogger(), testRand(1))

	_, err := service.Draw(context.Background(), 0)
	var validationError *ValidationError
	assert.ErrorAs(t, err, &validationError)
}

func TestDraw_EmptyPool(t *testing.T) {
	store := memory.NewStore()
	service := NewRaffleService(store, nil, testLogger(), testRand(1))

	winners, err := service.Draw(context.Background(), 3)
	require.NoError(t, err)
	assert.Equal(t, []string{}, winners)
}

func TestDraw_NoDuplicateWinners(t *testing.T) {
	store := memory.NewStore()
	seedSession(t, store, "alice", "s1")
	seedSession(t, store, "bob", "s2")
	seedSession(t, store, "carol", "s3")
	service := NewRaffleService(store, nil, testLogger(), testRand(7))

	winners, err := service.Draw(context.Background(), 3)
	require.NoError(t, err)
	require.Len(t, winners, 3)

	seen := make(map[string]bool)
	for _, winner := range winners {
		assert.False(t, seen[winner], "winner %q drawn twice", winner)
		seen[winner] = true
	}
}

func TestDraw_MoreWinnersThanEntrants(t *testing.T) {
	store := memory.NewStore()
	seedSession(t, store, "alice", "s1")
	seedSession(t, store, "bob", "s2")
	service := NewRaffleService(store, nil, testLogger(), testRand(3))

	winners, err := service.Draw(context.Background(), 10)
	require.NoError(t, err)
	assert.Len(t, winners, 2)
}

func TestDraw_ZeroScoreStillEligible(t *testing.T) {
	store := memory.NewStore()
	seedSession(t, store, "alice", "s1")
	service := NewRaffleService(store, nil, testLogger(), testRand(1))

	winners, err := service.Draw(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, []string{"alice"}, winners)
}

func TestDraw_AwardedPointsDoNotAffectWeights(t *testing.T) {
	store := memory.NewStore()
	seedSession(t, store, "alice", "s1")
	seedSession(t, store, "bob", "s2")
	// bob holds a pile of admin-awarded points but zero auto-scored answers
	err := store.Participants().Create(context.Background(), &models.Participant{
		Username:     "bob",
		PasswordHash: "x",
		CorrectCount: 1000,
	})
	require.NoError(t, err)
	service := NewRaffleService(store, nil, testLogger(), testRand(11))

	// both carry the floor weight of 1, so over many draws bob wins roughly
	// half of the time rather than nearly always
	bobFirst := 0
	const draws = 2000
	for i := 0; i < draws; i++ {
		winners, err := service.Draw(context.Background(), 1)
		require.NoError(t, err)
		require.Len(t, winners, 1)
		if winners[0] == "bob" {
			bobFirst++
		}
	}
	ratio := float64(bobFirst) / draws
	assert.InDelta(t, 0.5, ratio, 0.05)
}

func TestDraw_WeightedDistribution(t *testing.T) {
	store := memory.NewStore()
	seedSession(t, store, "alice", "s1")
	seedSession(t, store, "bob", "s2")
	seedAnswers(t, store, "s2", 5)
	service := NewRaffleService(store, nil, testLogger(), testRand(42))

	// alice 1 vs bob 5: alice should take the first slot about 1/6 of the time
	aliceFirst := 0
	const draws = 10000
	for i := 0; i < draws; i++ {
		winners, err := service.Draw(context.Background(), 1)
		require.NoError(t, err)
		require.Len(t, winners, 1)
		if winners[0] == "alice" {
			aliceFirst++
		}
	}
	ratio := float64(aliceFirst) / draws
	assert.InDelta(t, 1.0/6.0, ratio, 0.02)
}

func TestDraw_PublishesEvent(t *testing.T) {
	store := memory.NewStore()
	seedSession(t, store, "alice", "s1")
	publisher := events.NewMockEventPublisher(slog.Default())
	service := NewRaffleService(store, publisher, testLogger(), testRand(1))

	_, err := service.Draw(context.Background(), 1)
	require.NoError(t, err)

	published := publisher.GetPublishedEvents()
	require.Len(t, published, 1)
	assert.Equal(t, events.EventRaffleDrawn, published[0].Type)
}
