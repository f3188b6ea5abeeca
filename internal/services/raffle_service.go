package services

import (
	"context"
	"fmt"
	"math/rand"
	"sync"

	"github.com/CityQuest-2025/quest-service/internal/events"
	"github.com/CityQuest-2025/quest-service/internal/repositories"
	"github.com/CityQuest-2025/quest-service/internal/utils"
)

type RaffleService interface {
	// Draw selects up to winnerCount distinct usernames, weighted by the
	// auto-scored correct count with a floor of 1 so everyone stays in.
	Draw(ctx context.Context, winnerCount int) ([]string, error)
}

type raffleService struct {
	repo      repositories.Repository
	publisher events.EventPublisher
	logger    utils.Logger

	randMu sync.Mutex
	rng    *rand.Rand
}

func NewRaffleService(repo repositories.Repository, publisher events.EventPublisher, logger utils.Logger, rng *rand.Rand) RaffleService {
	return &raffleService{
		repo:      repo,
		publisher: publisher,
		logger:    logger,
		rng:       rng,
	}
}

type raffleEntrant struct {
	username string
	weight   int
}

func (s *raffleService) Draw(ctx context.Context, winnerCount int) ([]string, error) {
	if winnerCount < 1 {
		return nil, NewValidationError("winners", "must be at least 1", winnerCount)
	}

	rows, err := s.repo.Scores().RaffleRows(ctx)
	if err != nil {
		return nil, fmt.Errorf("raffle weight aggregation failed: %w", err)
	}

	pool := make([]raffleEntrant, 0, len(rows))
	for _, row := range rows {
		if row.Username == "" {
			continue
		}
		weight := row.AutoCorrect
		if weight < 1 {
			weight = 1
		}
		pool = append(pool, raffleEntrant{username: row.Username, weight: weight})
	}
	if len(pool) == 0 {
		return []string{}, nil
	}

	winners := s.sampleWithoutReplacement(pool, winnerCount)

	s.logger.Info("raffle drawn", "requested", winnerCount, "selected", len(winners))
	if s.publisher != nil {
		event := events.NewGameEvent(events.EventRaffleDrawn, events.RaffleDrawnEvent{Winners: winners})
		if err := s.publisher.PublishGameEvent(ctx, event); err != nil {
			s.logger.Warn("event publish failed", "event_type", event.Type, "error", err)
		}
	}

	return winners, nil
}

// sampleWithoutReplacement rescans the remaining pool each round. O(n*k) is
// fine at live-event scale.
func (s *raffleService) sampleWithoutReplacement(pool []raffleEntrant, count int) []string {
	winners := make([]string, 0, count)

	for len(winners) < count && len(pool) > 0 {
		total := 0
		for _, entrant := range pool {
			total += entrant.weight
		}
		if total <= 0 {
			break
		}

		r := s.uniform(float64(total))
		cum := 0.0
		chosen := len(pool) - 1
		for i, entrant := range pool {
			cum += float64(entrant.weight)
			if r <= cum {
				chosen = i
				break
			}
		}

		winners = append(winners, pool[chosen].username)
		pool = append(pool[:chosen], pool[chosen+1:]...)
	}

	return winners
}

func (s *raffleService) uniform(max float64) float64 {
	s.randMu.Lock()
	defer s.randMu.Unlock()
	return s.rng.Float64() * max
}
