package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/CityQuest-2025/quest-service/internal/cache"
	"github.com/CityQuest-2025/quest-service/internal/repositories"
	"github.com/CityQuest-2025/quest-service/internal/utils"
)

const (
	leaderboardCacheKey = "leaderboard"
	leaderboardCacheTTL = 5 * time.Second
)

type ScoringService interface {
	// Leaderboard returns rows ordered by total correct descending, username
	// ascending on ties.
	Leaderboard(ctx context.Context) ([]*LeaderboardEntry, error)
	// InvalidateCache drops the cached leaderboard after score-changing writes.
	InvalidateCache(ctx context.Context)
}

type LeaderboardEntry struct {
	Username      string  `json:"username"`
	CorrectCount  int     `json:"correct_count"`
	CompletionPct float64 `json:"completion_pct"`
}

type scoringService struct {
	repo   repositories.Repository
	cache  cache.CacheService
	logger utils.Logger
}

func NewScoringService(repo repositories.Repository, cacheService cache.CacheService, logger utils.Logger) ScoringService {
	return &scoringService{
		repo:   repo,
		cache:  cacheService,
		logger: logger,
	}
}

func (s *scoringService) Leaderboard(ctx context.Context) ([]*LeaderboardEntry, error) {
	if s.cache != nil {
		var cached []*LeaderboardEntry
		err := s.cache.Get(ctx, leaderboardCacheKey, &cached)
		if err == nil {
			return cached, nil
		}
		if !errors.Is(err, cache.ErrCacheMiss) {
			s.logger.Warn("leaderboard cache read failed", "error", err)
		}
	}

	rows, err := s.repo.Scores().LeaderboardRows(ctx)
	if err != nil {
		return nil, fmt.Errorf("leaderboard aggregation failed: %w", err)
	}

	entries := make([]*LeaderboardEntry, 0, len(rows))
	for _, row := range rows {
		totalCorrect := row.AutoCorrect + row.Awarded
		pct := 0.0
		if row.TotalAnswers > 0 {
			pct = roundOneDecimal(float64(totalCorrect) / float64(row.TotalAnswers) * 100)
		}
		entries = append(entries, &LeaderboardEntry{
			Username:      row.Username,
			CorrectCount:  totalCorrect,
			CompletionPct: pct,
		})
	}

	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].CorrectCount != entries[j].CorrectCount {
			return entries[i].CorrectCount > entries[j].CorrectCount
		}
		return entries[i].Username < entries[j].Username
	})

	if s.cache != nil {
		if err := s.cache.Set(ctx, leaderboardCacheKey, entries, leaderboardCacheTTL); err != nil {
			s.logger.Warn("leaderboard cache write failed", "error", err)
		}
	}

	return entries, nil
}

func (s *scoringService) InvalidateCache(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, leaderboardCacheKey); err != nil {
		s.logger.Warn("leaderboard cache invalidation failed", "error", err)
	}
}

func roundOneDecimal(v float64) float64 {
	return math.Round(v*10) / 10
}
