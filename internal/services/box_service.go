package services

import (
	"context"
	"fmt"
	"time"

	"github.com/CityQuest-2025/quest-service/internal/models"
	"github.com/CityQuest-2025/quest-service/internal/repositories"
	"github.com/CityQuest-2025/quest-service/internal/storage"
	"github.com/CityQuest-2025/quest-service/internal/utils"
)

type BoxService interface {
	List(ctx context.Context) ([]*models.Box, error)
	// SetCount grows or shrinks the box list to count entries. Removed boxes
	// lose their hint images.
	SetCount(ctx context.Context, count int) error
	// SetHint stores a hint image for one box, replacing any previous file.
	SetHint(ctx context.Context, boxIndex int, originalName string, payload []byte) (*models.Box, error)
}

type boxService struct {
	repo      repositories.Repository
	uploads   storage.UploadStore
	logger    utils.Logger
	validator *utils.Validator
}

func NewBoxService(repo repositories.Repository, uploads storage.UploadStore, logger utils.Logger, validator *utils.Validator) BoxService {
	return &boxService{repo: repo, uploads: uploads, logger: logger, validator: validator}
}

type boxCountInput struct {
	Count int `json:"count" validate:"box_count"`
}

func (s *boxService) List(ctx context.Context) ([]*models.Box, error) {
	return s.repo.Boxes().List(ctx)
}

func (s *boxService) SetCount(ctx context.Context, count int) error {
	if err := s.validator.Struct(&boxCountInput{Count: count}); err != nil {
		return err
	}

	boxes, err := s.repo.Boxes().List(ctx)
	if err != nil {
		return fmt.Errorf("box list failed: %w", err)
	}

	var orphanFiles []string
	for _, box := range boxes {
		if box.BoxIndex > count && box.HintFilename != nil {
			orphanFiles = append(orphanFiles, *box.HintFilename)
		}
	}

	err = s.repo.WithTx(ctx, func(tx repositories.Repository) error {
		if err := tx.Boxes().DeleteAboveIndex(ctx, count); err != nil {
			return err
		}
		have := make(map[int]bool, len(boxes))
		for _, box := range boxes {
			have[box.BoxIndex] = true
		}
		for i := 1; i <= count; i++ {
			if have[i] {
				continue
			}
			if err := tx.Boxes().Create(ctx, &models.Box{BoxIndex: i}); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	for _, filename := range orphanFiles {
		if err := s.uploads.Remove(filename); err != nil {
			s.logger.Warn("removing hint image failed", "filename", filename, "error", err)
		}
	}
	return nil
}

func (s *boxService) SetHint(ctx context.Context, boxIndex int, originalName string, payload []byte) (*models.Box, error) {
	box, err := s.repo.Boxes().GetByIndex(ctx, boxIndex)
	if err != nil {
		return nil, fmt.Errorf("box lookup failed: %w", err)
	}
	if box == nil {
		return nil, ErrNotFound
	}

	if len(payload) > storage.MaxUploadBytes {
		return nil, ErrFileTooLarge
	}
	if !storage.ValidContentType(payload) {
		return nil, ErrInvalidFileType
	}

	name := fmt.Sprintf("box_%d_%d_%s", boxIndex, time.Now().Unix(), originalName)
	saved, err := s.uploads.Save(name, payload)
	if err != nil {
		return nil, fmt.Errorf("storing hint image failed: %w", err)
	}

	previous := box.HintFilename
	box.HintFilename = &saved
	if err := s.repo.Boxes().Update(ctx, box); err != nil {
		if rmErr := s.uploads.Remove(saved); rmErr != nil {
			s.logger.Warn("removing orphan upload failed", "filename", saved, "error", rmErr)
		}
		return nil, fmt.Errorf("updating box failed: %w", err)
	}
	if previous != nil && *previous != saved {
		if err := s.uploads.Remove(*previous); err != nil {
			s.logger.Warn("removing replaced hint image failed", "filename", *previous, "error", err)
		}
	}
	return box, nil
}
