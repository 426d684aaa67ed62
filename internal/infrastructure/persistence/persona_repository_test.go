package persistence

import (
	"context"
	"testing"

	"github.com/alfred/backend/internal/domain/persona"
	"github.com/alfred/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func passthrough(s string) string { return s }

func TestGormPersonaRepository(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	repo := NewGormPersonaRepository(db)
	jobs := NewGormRenderJobRepository(db)
	owner := uuid.New()

	p, err := persona.NewPersona(owner, "Ada", "Patient tutor", "Explain step by step.", "", passthrough)
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, p))

	dup, err := persona.NewPersona(owner, "ada", "", "", "", passthrough)
	require.NoError(t, err)
	assert.ErrorIs(t, repo.Save(ctx, dup), shared.ErrAlreadyExists)

	exists, err := repo.ExistsByName(ctx, owner, "ADA", nil)
	require.NoError(t, err)
	assert.True(t, exists)

	count, err := repo.CountForOwner(ctx, owner)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	t.Run("render jobs keep their json columns", func(t *testing.T) {
		p.SetAvatar("https://cdn.example.com/ada.png")
		job, err := persona.NewRenderJob(p, persona.RenderRequest{JobType: persona.JobPersonaBuild})
		require.NoError(t, err)
		job.Submitted("rp-123")
		require.NoError(t, jobs.Save(ctx, job))

		job.Complete(map[string]string{"video": "https://cdn.example.com/out.mp4"}, map[string]any{"fps": 30.0}, 1200)
		require.NoError(t, jobs.Save(ctx, job))

		found, err := jobs.FindByIDForOwner(ctx, owner, job.ID)
		require.NoError(t, err)
		assert.Equal(t, persona.JobCompleted, found.Status)
		assert.Equal(t, "https://cdn.example.com/out.mp4", found.OutputURLs["video"])
		assert.Equal(t, 30.0, found.Metadata["fps"])
		assert.Equal(t, "rp-123", found.ExternalJobID)

		list, err := jobs.ListByPersona(ctx, owner, p.ID)
		require.NoError(t, err)
		assert.Len(t, list, 1)
	})

	t.Run("delete hides the persona", func(t *testing.T) {
		require.NoError(t, repo.Delete(ctx, owner, p.ID))
		_, err := repo.FindByIDForOwner(ctx, owner, p.ID)
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})
}
