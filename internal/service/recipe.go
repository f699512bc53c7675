package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"recipeshare/internal/models"
	"recipeshare/internal/store"
)

// RecipeService implements ownership-scoped recipe and comment operations.
// Reads are public; every mutation is conditioned on the acting identity
// matching the recipe's author, and a zero-match outcome surfaces as
// ErrNotFound whether the recipe is missing or owned by someone else.
type RecipeService interface {
	List(ctx context.Context) ([]models.Recipe, error)
	Get(ctx context.Context, recipeID string) (*models.Recipe, error)
	Create(ctx context.Context, identity *models.Identity, input *models.Recipe) (*models.Recipe, error)
	Update(ctx context.Context, identity *models.Identity, recipeID string, input *models.Recipe) (*models.Recipe, error)
	Delete(ctx context.Context, identity *models.Identity, recipeID string) error
	AddComment(ctx context.Context, identity *models.Identity, recipeID, content string) (*models.Recipe, error)
	Comments(ctx context.Context, recipeID string) ([]models.Comment, error)
	DeleteComment(ctx context.Context, identity *models.Identity, recipeID, commentID string) error
}

type recipeService struct {
	recipes store.Collection
	logger  *zap.Logger
}

func NewRecipeService(recipes store.Collection, logger *zap.Logger) RecipeService {
	return &recipeService{recipes: recipes, logger: logger}
}

func (s *recipeService) List(ctx context.Context) ([]models.Recipe, error) {
	docs, err := s.recipes.FindMany(ctx, store.Filter{})
	if err != nil {
		s.logger.Error("Failed to list recipes", zap.Error(err))
		return nil, fmt.Errorf("failed to list recipes: %w", err)
	}

	recipes := make([]models.Recipe, 0, len(docs))
	for _, raw := range docs {
		var recipe models.Recipe
		if err := json.Unmarshal(raw, &recipe); err != nil {
			return nil, fmt.Errorf("failed to decode recipe: %w", err)
		}
		recipes = append(recipes, recipe)
	}
	return recipes, nil
}

func (s *recipeService) Get(ctx context.Context, recipeID string) (*models.Recipe, error) {
	if _, err := uuid.Parse(recipeID); err != nil {
		return nil, ErrInvalidID
	}
	return s.fetch(ctx, recipeID)
}

// Create stamps the author from the resolved identity and starts the comment
// list empty, ignoring whatever the client put in those fields.
func (s *recipeService) Create(ctx context.Context, identity *models.Identity, input *models.Recipe) (*models.Recipe, error) {
	input.ID = ""
	input.Author = identity.Username
	input.Comments = []models.Comment{}

	id, err := s.recipes.Insert(ctx, input)
	if err != nil {
		s.logger.Error("Failed to create recipe", zap.Error(err))
		return nil, fmt.Errorf("failed to create recipe: %w", err)
	}

	input.ID = id
	return input, nil
}

func (s *recipeService) Update(ctx context.Context, identity *models.Identity, recipeID string, input *models.Recipe) (*models.Recipe, error) {
	if _, err := uuid.Parse(recipeID); err != nil {
		return nil, ErrInvalidID
	}

	affected, err := s.recipes.UpdateConditional(ctx,
		store.Filter{ID: recipeID, Eq: map[string]string{"author": identity.Username}},
		store.Patch{Set: map[string]any{
			"title":        input.Title,
			"author":       identity.Username,
			"ingredients":  input.Ingredients,
			"instructions": input.Instructions,
			"categories":   input.Categories,
		}},
	)
	if err != nil {
		s.logger.Error("Failed to update recipe", zap.String("recipe_id", recipeID), zap.Error(err))
		return nil, fmt.Errorf("failed to update recipe: %w", err)
	}
	if affected == 0 {
		return nil, ErrNotFound
	}

	return s.fetch(ctx, recipeID)
}

func (s *recipeService) Delete(ctx context.Context, identity *models.Identity, recipeID string) error {
	if _, err := uuid.Parse(recipeID); err != nil {
		return ErrInvalidID
	}

	deleted, err := s.recipes.DeleteConditional(ctx, store.Filter{
		ID: recipeID,
		Eq: map[string]string{"author": identity.Username},
	})
	if err != nil {
		s.logger.Error("Failed to delete recipe", zap.String("recipe_id", recipeID), zap.Error(err))
		return fmt.Errorf("failed to delete recipe: %w", err)
	}
	if deleted == 0 {
		return ErrNotFound
	}
	return nil
}

// AddComment appends a server-identified comment authored by the acting
// identity. Any authenticated user may comment on any recipe.
func (s *recipeService) AddComment(ctx context.Context, identity *models.Identity, recipeID, content string) (*models.Recipe, error) {
	if _, err := uuid.Parse(recipeID); err != nil {
		return nil, ErrInvalidID
	}

	comment := models.Comment{
		ID:      uuid.NewString(),
		Content: content,
		Author:  identity.Username,
	}

	affected, err := s.recipes.UpdateConditional(ctx,
		store.Filter{ID: recipeID},
		store.Patch{Push: &store.ElemPush{Field: "comments", Value: comment}},
	)
	if err != nil {
		s.logger.Error("Failed to add comment", zap.String("recipe_id", recipeID), zap.Error(err))
		return nil, fmt.Errorf("failed to add comment: %w", err)
	}
	if affected == 0 {
		return nil, ErrNotFound
	}

	return s.fetch(ctx, recipeID)
}

func (s *recipeService) Comments(ctx context.Context, recipeID string) ([]models.Comment, error) {
	if _, err := uuid.Parse(recipeID); err != nil {
		return nil, ErrInvalidID
	}

	recipe, err := s.fetch(ctx, recipeID)
	if err != nil {
		return nil, err
	}
	if recipe.Comments == nil {
		return []models.Comment{}, nil
	}
	return recipe.Comments, nil
}

// DeleteComment pulls the comment out of the recipe's comment list. The
// filter binds to the recipe's author, not the comment's: only the recipe
// owner may delete comments on it, and that is intentional.
func (s *recipeService) DeleteComment(ctx context.Context, identity *models.Identity, recipeID, commentID string) error {
	if _, err := uuid.Parse(recipeID); err != nil {
		return ErrInvalidID
	}

	affected, err := s.recipes.UpdateConditional(ctx,
		store.Filter{
			ID:   recipeID,
			Eq:   map[string]string{"author": identity.Username},
			Elem: &store.ElemMatch{Field: "comments", Key: "id", Value: commentID},
		},
		store.Patch{Pull: &store.ElemMatch{Field: "comments", Key: "id", Value: commentID}},
	)
	if err != nil {
		s.logger.Error("Failed to delete comment",
			zap.String("recipe_id", recipeID), zap.String("comment_id", commentID), zap.Error(err))
		return fmt.Errorf("failed to delete comment: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *recipeService) fetch(ctx context.Context, recipeID string) (*models.Recipe, error) {
	raw, err := s.recipes.FindOne(ctx, store.Filter{ID: recipeID})
	if err != nil {
		if errors.Is(err, store.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		s.logger.Error("Failed to get recipe", zap.String("recipe_id", recipeID), zap.Error(err))
		return nil, fmt.Errorf("failed to retrieve recipe: %w", err)
	}

	var recipe models.Recipe
	if err := json.Unmarshal(raw, &recipe); err != nil {
		return nil, fmt.Errorf("failed to decode recipe: %w", err)
	}
	return &recipe, nil
}
