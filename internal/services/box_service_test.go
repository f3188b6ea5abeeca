package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/CityQuest-2025/quest-service/internal/models"
	"github.com/CityQuest-2025/quest-service/internal/repositories/memory"
	"github.com/CityQuest-2025/quest-service/internal/utils"
)

func newBoxFixture(t *testing.T) (*memory.Store, *fakeUploadStore, BoxService) {
	t.Helper()
	store := memory.NewStore()
	uploads := newFakeUploadStore()
	service := NewBoxService(store, uploads, testLogger(), utils.NewValidator())
	return store, uploads, service
}

func TestSetBoxCount(t *testing.T) {
	_, uploads, service := newBoxFixture(t)
	ctx := context.Background()

	t.Run("count out of range", func(t *testing.T) {
		err := service.SetCount(ctx, 101)
		var validationErrors ValidationErrors
		require.ErrorAs(t, err, &validationErrors)
		assert.Equal(t, "box_count", validationErrors[0].Rule)
	})

	t.Run("grows to the requested count", func(t *testing.T) {
		require.NoError(t, service.SetCount(ctx, 3))
		boxes, err := service.List(ctx)
		require.NoError(t, err)
		require.Len(t, boxes, 3)
	})

	t.Run("shrinking removes hint files of dropped boxes", func(t *testing.T) {
		_, err := service.SetHint(ctx, 3, "hint.png", pngPayload)
		require.NoError(t, err)
		require.Len(t, uploads.files, 1)

		require.NoError(t, service.SetCount(ctx, 1))
		boxes, err := service.List(ctx)
		require.NoError(t, err)
		assert.Len(t, boxes, 1)
		assert.Empty(t, uploads.files)
	})
}

func TestSetHint(t *testing.T) {
	store, uploads, service := newBoxFixture(t)
	ctx := context.Background()

	require.NoError(t, store.Boxes().Create(ctx, &models.Box{BoxIndex: 1}))

	t.Run("unknown box", func(t *testing.T) {
		_, err := service.SetHint(ctx, 9, "hint.png", pngPayload)
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("rejects non-image payload", func(t *testing.T) {
		_, err := service.SetHint(ctx, 1, "hint.txt", []byte("plain text"))
		assert.ErrorIs(t, err, ErrInvalidFileType)
	})

	t.Run("stores the hint and replaces a previous one", func(t *testing.T) {
		box, err := service.SetHint(ctx, 1, "first.png", pngPayload)
		require.NoError(t, err)
		require.NotNil(t, box.HintFilename)
		assert.Contains(t, *box.HintFilename, "box_1_")

		box, err = service.SetHint(ctx, 1, "second.png", pngPayload)
		require.NoError(t, err)
		assert.Contains(t, *box.HintFilename, "second.png")
		assert.Len(t, uploads.files, 1, "replaced hint image removed")
	})
}
