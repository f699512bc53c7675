package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"recipeshare/internal/models"
	"recipeshare/internal/store"
)

var (
	aliceIdent = &models.Identity{Username: "alice"}
	bobIdent   = &models.Identity{Username: "bob"}
)

func newRecipeService(t *testing.T) RecipeService {
	t.Helper()
	return NewRecipeService(store.NewMemoryCollection(), zap.NewNop())
}

func soup() *models.Recipe {
	return &models.Recipe{
		Title:        "Soup",
		Ingredients:  []string{"water", "salt"},
		Instructions: "boil",
		Categories:   []string{"easy"},
	}
}

func TestRecipeService_CreateStampsAuthor(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	svc := newRecipeService(t)

	input := soup()
	input.Author = "mallory"
	input.Comments = []models.Comment{{ID: "x", Content: "smuggled", Author: "mallory"}}

	created, err := svc.Create(ctx, aliceIdent, input)
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, "alice", created.Author)
	assert.Empty(t, created.Comments)

	fetched, err := svc.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice", fetched.Author)
	assert.Empty(t, fetched.Comments)
	assert.Equal(t, []string{"water", "salt"}, fetched.Ingredients)
}

func TestRecipeService_ListAndGet(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	svc := newRecipeService(t)

	recipes, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, recipes)

	created, err := svc.Create(ctx, aliceIdent, soup())
	require.NoError(t, err)

	recipes, err = svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, recipes, 1)
	assert.Equal(t, created.ID, recipes[0].ID)

	_, err = svc.Get(ctx, uuid.NewString())
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = svc.Get(ctx, "not-a-uuid")
	assert.ErrorIs(t, err, ErrInvalidID)
}

func TestRecipeService_UpdateRequiresOwnership(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	svc := newRecipeService(t)

	created, err := svc.Create(ctx, aliceIdent, soup())
	require.NoError(t, err)

	update := soup()
	update.Title = "Better Soup"

	// Someone else's attempt reads as not found, not forbidden.
	_, err = svc.Update(ctx, bobIdent, created.ID, update)
	assert.ErrorIs(t, err, ErrNotFound)

	updated, err := svc.Update(ctx, aliceIdent, created.ID, update)
	require.NoError(t, err)
	assert.Equal(t, "Better Soup", updated.Title)
	assert.Equal(t, "alice", updated.Author)

	_, err = svc.Update(ctx, aliceIdent, uuid.NewString(), update)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = svc.Update(ctx, aliceIdent, "not-a-uuid", update)
	assert.ErrorIs(t, err, ErrInvalidID)
}

func TestRecipeService_UpdatePreservesComments(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	svc := newRecipeService(t)

	created, err := svc.Create(ctx, aliceIdent, soup())
	require.NoError(t, err)
	_, err = svc.AddComment(ctx, bobIdent, created.ID, "nice")
	require.NoError(t, err)

	updated, err := svc.Update(ctx, aliceIdent, created.ID, soup())
	require.NoError(t, err)
	require.Len(t, updated.Comments, 1)
	assert.Equal(t, "nice", updated.Comments[0].Content)
}

func TestRecipeService_DeleteRequiresOwnership(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	svc := newRecipeService(t)

	created, err := svc.Create(ctx, aliceIdent, soup())
	require.NoError(t, err)

	assert.ErrorIs(t, svc.Delete(ctx, bobIdent, created.ID), ErrNotFound)

	require.NoError(t, svc.Delete(ctx, aliceIdent, created.ID))
	_, err = svc.Get(ctx, created.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	assert.ErrorIs(t, svc.Delete(ctx, aliceIdent, created.ID), ErrNotFound)
	assert.ErrorIs(t, svc.Delete(ctx, aliceIdent, "not-a-uuid"), ErrInvalidID)
}

func TestRecipeService_CommentsAreOrderedAndAuthored(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	svc := newRecipeService(t)

	created, err := svc.Create(ctx, aliceIdent, soup())
	require.NoError(t, err)

	// Any authenticated user may comment, including non-owners.
	_, err = svc.AddComment(ctx, bobIdent, created.ID, "first")
	require.NoError(t, err)
	withSecond, err := svc.AddComment(ctx, aliceIdent, created.ID, "second")
	require.NoError(t, err)
	require.Len(t, withSecond.Comments, 2)

	comments, err := svc.Comments(ctx, created.ID)
	require.NoError(t, err)
	require.Len(t, comments, 2)
	assert.Equal(t, "first", comments[0].Content)
	assert.Equal(t, "bob", comments[0].Author)
	assert.Equal(t, "second", comments[1].Content)
	assert.Equal(t, "alice", comments[1].Author)
	assert.NotEqual(t, comments[0].ID, comments[1].ID)

	_, err = svc.Comments(ctx, uuid.NewString())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRecipeService_DeleteCommentBindsToRecipeAuthor(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	svc := newRecipeService(t)

	created, err := svc.Create(ctx, aliceIdent, soup())
	require.NoError(t, err)
	withComment, err := svc.AddComment(ctx, bobIdent, created.ID, "mine")
	require.NoError(t, err)
	commentID := withComment.Comments[0].ID

	// The comment's own author cannot delete it; only the recipe's author
	// can, and that asymmetry is intentional.
	err = svc.DeleteComment(ctx, bobIdent, created.ID, commentID)
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, svc.DeleteComment(ctx, aliceIdent, created.ID, commentID))

	// The comment is gone, the recipe is not.
	remaining, err := svc.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Empty(t, remaining.Comments)

	// Deleting it again matches nothing.
	err = svc.DeleteComment(ctx, aliceIdent, created.ID, commentID)
	assert.ErrorIs(t, err, ErrNotFound)
}
