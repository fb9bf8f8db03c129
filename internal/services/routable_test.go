package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jsonzilla/template-go-mongodb/internal/apperrors"
	"github.com/jsonzilla/template-go-mongodb/internal/models"
	"github.com/jsonzilla/template-go-mongodb/internal/repositories/repotest"
)

func seedPerson(t *testing.T, repo *repotest.Memory[models.Person], name string, age int) models.Person {
	t.Helper()
	p := models.Person{
		Name:       name,
		Age:        age,
		Occupation: "engineer",
		Hobbies:    []string{"Sleeping"},
		Friends:    []models.Friend{{Name: "Bob"}},
	}
	p.Prepare(time.Now().UTC().Truncate(time.Millisecond))
	_, err := repo.Insert(context.Background(), p)
	require.NoError(t, err)
	return p
}

func newPersonRoutable() (*Routable[models.Person, models.PersonUpdate], *repotest.Memory[models.Person]) {
	repo := repotest.NewMemory[models.Person]()
	return NewRoutable[models.Person, models.PersonUpdate](repo, "person"), repo
}

func TestRoutableGetByID(t *testing.T) {
	r, repo := newPersonRoutable()
	p := seedPerson(t, repo, "Alice", 30)

	found, err := r.GetByID(context.Background(), p.ID)
	require.NoError(t, err)
	assert.Equal(t, "Alice", found.Name)

	_, err = r.GetByID(context.Background(), "fake")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	assert.EqualError(t, err, "person fake not found")
}

func TestRoutableDelete(t *testing.T) {
	r, repo := newPersonRoutable()
	p := seedPerson(t, repo, "Alice", 30)

	require.NoError(t, r.Delete(context.Background(), p.ID))
	assert.Equal(t, 0, repo.Len())

	err := r.Delete(context.Background(), p.ID)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestRoutableUpdateOne(t *testing.T) {
	r, repo := newPersonRoutable()
	p := seedPerson(t, repo, "Alice", 30)

	updated, err := r.UpdateOne(context.Background(), p.ID, models.PersonUpdate{Age: models.Some(31)})
	require.NoError(t, err)
	assert.Equal(t, 31, updated.Age)
	assert.Equal(t, "Alice", updated.Name)

	t.Run("unchanged document is not found", func(t *testing.T) {
		_, err := r.UpdateOne(context.Background(), p.ID, models.PersonUpdate{Age: models.Some(31)})
		assert.ErrorIs(t, err, apperrors.ErrNotFound)
		assert.NotErrorIs(t, err, apperrors.ErrNothingToUpdate)
	})

	t.Run("missing document", func(t *testing.T) {
		_, err := r.UpdateOne(context.Background(), "fake", models.PersonUpdate{Age: models.Some(40)})
		assert.ErrorIs(t, err, apperrors.ErrNotFound)
	})
}

func TestRoutableUpdateOneWithEmptyPatchNeverReachesStore(t *testing.T) {
	r, repo := newPersonRoutable()
	p := seedPerson(t, repo, "Alice", 30)
	repo.FailWith(errors.New("store must not be called"))

	_, err := r.UpdateOne(context.Background(), p.ID, models.PersonUpdate{Name: models.Null[string]()})

	assert.ErrorIs(t, err, apperrors.ErrNothingToUpdate)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	assert.Equal(t, 404, apperrors.StatusCode(err))
}

func TestRoutableUpdateList(t *testing.T) {
	ctx := context.Background()

	t.Run("empty list", func(t *testing.T) {
		r, _ := newPersonRoutable()

		_, err := r.UpdateList(ctx, nil)
		assert.ErrorIs(t, err, apperrors.ErrNotFound)
		assert.EqualError(t, err, "person not found")
	})

	t.Run("all updated", func(t *testing.T) {
		r, repo := newPersonRoutable()
		a := seedPerson(t, repo, "A", 1)
		b := seedPerson(t, repo, "B", 2)

		updated, err := r.UpdateList(ctx, []models.PersonUpdate{
			{ID: a.ID, Occupation: models.Some("pilot")},
			{ID: b.ID},
		})
		require.NoError(t, err)
		require.Len(t, updated, 2)
		assert.Equal(t, "pilot", updated[0].Occupation)
		assert.Equal(t, "engineer", updated[1].Occupation)
	})

	t.Run("missing element", func(t *testing.T) {
		r, repo := newPersonRoutable()
		a := seedPerson(t, repo, "A", 1)

		_, err := r.UpdateList(ctx, []models.PersonUpdate{
			{ID: a.ID, Occupation: models.Some("pilot")},
			{ID: "fake", Occupation: models.Some("pilot")},
		})
		assert.ErrorIs(t, err, apperrors.ErrPartialFailure)
		assert.EqualError(t, err, "persons not complete updated")

		kept, err := repo.GetByID(ctx, a.ID)
		require.NoError(t, err)
		assert.Equal(t, "pilot", kept.Occupation)
	})

	t.Run("store failure is terminal", func(t *testing.T) {
		r, repo := newPersonRoutable()
		a := seedPerson(t, repo, "A", 1)
		boom := errors.New("boom")
		repo.FailWith(boom)

		_, err := r.UpdateList(ctx, []models.PersonUpdate{{ID: a.ID, Occupation: models.Some("pilot")}})
		assert.ErrorIs(t, err, boom)
	})
}

func TestRoutableCreateList(t *testing.T) {
	r, repo := newPersonRoutable()
	people := []models.Person{{Name: "A", Age: 1}, {Name: "B", Age: 2}}
	for i := range people {
		people[i].Prepare(time.Now())
	}

	created, err := r.CreateList(context.Background(), people)
	require.NoError(t, err)
	assert.Len(t, created, 2)
	assert.Equal(t, 2, repo.Len())
}
